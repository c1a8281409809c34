// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
)

// Middleware bundles the Chi ecosystem middleware configured from the
// auth section: CORS and the per-route rate limit tiers.
type Middleware struct {
	cfg  *config.AuthConfig
	cors func(http.Handler) http.Handler
}

// NewMiddleware builds the middleware set. CORS origins default to
// empty, so cross-origin access requires explicit configuration.
func NewMiddleware(cfg *config.AuthConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	})

	return &Middleware{cfg: cfg, cors: corsHandler}
}

// CORS returns the global CORS handler. It must run on every route so
// OPTIONS preflight requests succeed.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit is the default per-IP limit for API endpoints.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	reqs := m.cfg.RateLimitReqs
	if reqs <= 0 {
		reqs = 100
	}
	return m.limit(reqs, m.window())
}

// RateLimitAuth is the strict limit for signup and login, sized to slow
// brute-force attempts without locking out a fumbled password.
func (m *Middleware) RateLimitAuth() func(http.Handler) http.Handler {
	reqs := m.cfg.AuthRateLimitReqs
	if reqs <= 0 {
		reqs = 5
	}
	return m.limit(reqs, m.window())
}

// RateLimitHealth is permissive so monitoring can poll frequently while
// still capping abuse.
func (m *Middleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limit(1000, time.Minute)
}

func (m *Middleware) window() time.Duration {
	if m.cfg.RateLimitWindow > 0 {
		return m.cfg.RateLimitWindow
	}
	return time.Minute
}

func (m *Middleware) limit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, http.StatusTooManyRequests,
				codeRateLimited, "rate limit exceeded, retry later", nil)
		}),
	)
}

// RequestIDWithLogging assigns every request an ID and seeds the zerolog
// context with it, so all lines from one request correlate.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiRequestID := chimiddleware.RequestID(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
				r.Header.Set("X-Request-ID", requestID)
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			chiRequestID.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Instrument records Prometheus metrics per request. The label is the
// Chi route pattern rather than the raw path, keeping cardinality flat
// across {city} values.
func Instrument() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			ww := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(ww.statusCode), time.Since(start))
		})
	}
}

// AccessLog writes one structured line per request at debug level.
func AccessLog() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logging.Ctx(r.Context()).Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.statusCode).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Msg("Request handled")
		})
	}
}

// statusResponseWriter captures the status code for metrics and logs.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
