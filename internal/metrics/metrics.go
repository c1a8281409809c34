// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Model loading and artifact downloads
// - Prediction latency and outcomes
// - Weather proxy client calls
// - Cache efficiency (BadgerDB response cache)
// - Database query performance (DuckDB)
// - Event publishing/consumption (NATS JetStream)
// - API endpoint latency and throughput
// - WebSocket connections

var (
	// Model Loader Metrics
	ModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_loads_total",
			Help: "Total number of model load attempts",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	ModelLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_load_duration_seconds",
			Help:    "Duration of model load attempts (download + deserialize)",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ModelState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_state",
			Help: "Model cache state (0=unloaded, 1=loading, 2=ready, 3=failed)",
		},
	)

	BundleFormatLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_bundle_format_loads_total",
			Help: "Successful bundle deserializations by format path",
		},
		[]string{"format"}, // "packed_mmap", "packed_stream", "legacy_json"
	)

	// Artifact Download Metrics
	ArtifactDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_downloads_total",
			Help: "Total number of artifact download attempts",
		},
		[]string{"transport", "outcome"}, // transport: "primary", "mirror"; outcome: "success", "failure"
	)

	ArtifactDownloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artifact_download_duration_seconds",
			Help:    "Duration of artifact downloads in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Prediction Metrics
	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of prediction requests by outcome",
		},
		[]string{"outcome"}, // "success", "invalid_input", "not_ready", "failed", "heuristic"
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "Duration of prediction requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	PredictedAQI = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "predicted_aqi",
			Help:    "Distribution of predicted AQI values across the CPCB bands",
			Buckets: []float64{50, 100, 200, 300, 400, 500},
		},
	)

	// Weather Proxy Client Metrics
	WeatherRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_requests_total",
			Help: "Total number of upstream OpenWeather API requests",
		},
		[]string{"endpoint", "status_code"},
	)

	WeatherRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_request_duration_seconds",
			Help:    "Duration of upstream OpenWeather API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	WeatherRateLimitWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_rate_limit_waits_total",
			Help: "Requests that had to wait on the outbound rate limiter",
		},
	)

	// Cache Metrics (General)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "weather", "geocode", "aqi", "authz"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (TTL expiry)",
		},
		[]string{"cache_type"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Event Processing Metrics (NATS JetStream)
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to JetStream",
		},
		[]string{"subject"},
	)

	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_errors_total",
			Help: "Total number of failed event publishes",
		},
		[]string{"subject"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Total number of events consumed from JetStream",
		},
		[]string{"subject", "result"}, // result: "processed", "failed", "skipped"
	)

	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "event_processing_duration_seconds",
			Help:    "Duration of event consumer processing",
			Buckets: prometheus.DefBuckets,
		},
	)

	// City Refresher Metrics
	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "city_refresh_runs_total",
			Help: "Total number of city refresher cycles",
		},
		[]string{"outcome"}, // "success", "partial", "failure"
	)

	RefreshedCities = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "city_refresh_cities_total",
			Help: "Total number of city readings fetched by the refresher",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Authentication Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"operation", "result"}, // operation: "login", "signup"; result: "success", "failure"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped on slow clients",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// Model cache states as exported by the ModelState gauge.
const (
	ModelStateUnloaded = 0
	ModelStateLoading  = 1
	ModelStateReady    = 2
	ModelStateFailed   = 3
)

// RecordModelLoad records a model load attempt and its duration.
func RecordModelLoad(success bool, duration time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	ModelLoads.WithLabelValues(outcome).Inc()
	ModelLoadDuration.Observe(duration.Seconds())
}

// SetModelState updates the model state gauge.
func SetModelState(state float64) {
	ModelState.Set(state)
}

// RecordBundleFormat records which deserialization path produced the bundle.
func RecordBundleFormat(format string) {
	BundleFormatLoads.WithLabelValues(format).Inc()
}

// RecordArtifactDownload records an artifact download attempt.
func RecordArtifactDownload(transport string, success bool, duration time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	ArtifactDownloads.WithLabelValues(transport, outcome).Inc()
	ArtifactDownloadDuration.Observe(duration.Seconds())
}

// RecordPrediction records a prediction request outcome. The AQI histogram
// is only fed on success so failures don't skew the distribution.
func RecordPrediction(outcome string, aqi float64, duration time.Duration) {
	Predictions.WithLabelValues(outcome).Inc()
	PredictionDuration.Observe(duration.Seconds())
	if outcome == "success" || outcome == "heuristic" {
		PredictedAQI.Observe(aqi)
	}
}

// RecordWeatherRequest records an upstream OpenWeather API call.
func RecordWeatherRequest(endpoint, statusCode string, duration time.Duration) {
	WeatherRequests.WithLabelValues(endpoint, statusCode).Inc()
	WeatherRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit for the given cache type.
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss for the given cache type.
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordEventPublished records an event publish and its outcome.
func RecordEventPublished(subject string, err error) {
	if err != nil {
		EventPublishErrors.WithLabelValues(subject).Inc()
		return
	}
	EventsPublished.WithLabelValues(subject).Inc()
}

// RecordEventConsumed records a consumed event and how processing went.
func RecordEventConsumed(subject, result string, duration time.Duration) {
	EventsConsumed.WithLabelValues(subject, result).Inc()
	EventProcessingDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordAuthAttempt records a login or signup attempt.
func RecordAuthAttempt(operation string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	AuthAttempts.WithLabelValues(operation, result).Inc()
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
