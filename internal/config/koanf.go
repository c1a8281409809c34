// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/aerographus/config.yaml",
	"/etc/aerographus/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        5000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/aerographus.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			SeedTips:               true,
		},
		Model: ModelConfig{
			Path:              "/data/models/aqi_model.bundle",
			URL:               "",
			MirrorURL:         "",
			DownloadTimeout:   60 * time.Second,
			WarmupDelay:       2 * time.Second,
			HeuristicFallback: false,
		},
		Weather: WeatherConfig{
			APIKey:          "",
			BaseURL:         "https://api.openweathermap.org",
			Timeout:         30 * time.Second,
			RetryAttempts:   3,
			RetryDelay:      500 * time.Millisecond,
			RateLimit:       1, // OpenWeather free tier allows 60 calls/minute
			RateBurst:       10,
			CacheTTL:        10 * time.Minute,
			GeocodeCacheTTL: 24 * time.Hour,
			Concurrency:     8,
			RefreshInterval: 15 * time.Minute,
			TrackedCities:   []string{},
		},
		Events: EventsConfig{
			Enabled:          true,
			URL:              "nats://127.0.0.1:4222",
			EmbeddedServer:   true,
			StoreDir:         "/data/nats/jetstream",
			MaxMemory:        256 << 20, // 256MB
			MaxStore:         2 << 30,   // 2GB
			RetentionDays:    7,
			DurableName:      "aqi-processor",
			QueueGroup:       "processors",
			SubscribersCount: 2,
			AckWaitTimeout:   30 * time.Second,
			MaxReconnects:    60,
			ReconnectWait:    2 * time.Second,
		},
		Cache: CacheConfig{
			Path:       "/data/cache",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			MaxMessageSize: 512 * 1024, // 512KB
			WriteTimeout:   10 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:         "",
			TokenExpiry:       24 * time.Hour,
			BcryptCost:        12,
			AdminEmail:        "",
			AdminPassword:     "",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			AuthRateLimitReqs: 10,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
		Authz: AuthzConfig{
			DefaultRole:  "user",
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
//   - Backward compatibility with flat environment variable names
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// MODEL_URL -> model.url
	// OPENWEATHER_API_KEY -> weather.api_key
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices.
var sliceConfigPaths = []string{
	"auth.cors_origins",
	"auth.trusted_proxies",
	"weather.tracked_cities",
}

// processSliceFields converts comma-separated string values to slices for known
// slice fields. This is necessary because env vars come in as strings, but the
// config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
// It handles the mapping from flat deployment-facing environment variable
// names to the nested configuration structure.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - MODEL_URL -> model.url
//   - OPENWEATHER_API_KEY -> weather.api_key
//   - NATS_STORE_DIR -> events.store_dir
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Database mappings
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",
		"seed_tips":         "database.seed_tips",

		// Model mappings
		"model_path":               "model.path",
		"model_url":                "model.url",
		"model_mirror_url":         "model.mirror_url",
		"model_download_timeout":   "model.download_timeout",
		"model_warmup_delay":       "model.warmup_delay",
		"model_heuristic_fallback": "model.heuristic_fallback",

		// Weather proxy mappings
		"openweather_api_key":       "weather.api_key",
		"openweather_base_url":      "weather.base_url",
		"weather_timeout":           "weather.timeout",
		"weather_retry_attempts":    "weather.retry_attempts",
		"weather_retry_delay":       "weather.retry_delay",
		"weather_rate_limit":        "weather.rate_limit",
		"weather_rate_burst":        "weather.rate_burst",
		"weather_cache_ttl":         "weather.cache_ttl",
		"weather_geocode_cache_ttl": "weather.geocode_cache_ttl",
		"weather_concurrency":       "weather.concurrency",
		"refresh_interval":          "weather.refresh_interval",
		"tracked_cities":            "weather.tracked_cities",

		// NATS mappings
		"nats_enabled":        "events.enabled",
		"nats_url":            "events.url",
		"nats_embedded":       "events.embedded_server",
		"nats_store_dir":      "events.store_dir",
		"nats_max_memory":     "events.max_memory",
		"nats_max_store":      "events.max_store",
		"nats_retention_days": "events.retention_days",
		"nats_durable_name":   "events.durable_name",
		"nats_queue_group":    "events.queue_group",
		"nats_subscribers":    "events.subscribers_count",
		"nats_ack_wait":       "events.ack_wait_timeout",
		"nats_max_reconnects": "events.max_reconnects",
		"nats_reconnect_wait": "events.reconnect_wait",

		// Cache mappings
		"cache_path":        "cache.path",
		"cache_in_memory":   "cache.in_memory",
		"cache_gc_interval": "cache.gc_interval",

		// WebSocket mappings
		"ws_enabled":          "websocket.enabled",
		"ws_max_message_size": "websocket.max_message_size",
		"ws_write_timeout":    "websocket.write_timeout",

		// Auth mappings
		"jwt_secret":          "auth.jwt_secret",
		"token_expiry":        "auth.token_expiry",
		"bcrypt_cost":         "auth.bcrypt_cost",
		"admin_email":         "auth.admin_email",
		"admin_password":      "auth.admin_password",
		"rate_limit_requests": "auth.rate_limit_reqs",
		"rate_limit_window":   "auth.rate_limit_window",
		"auth_rate_limit":     "auth.auth_rate_limit_reqs",
		"disable_rate_limit":  "auth.rate_limit_disabled",
		"cors_origins":        "auth.cors_origins",
		"trusted_proxies":     "auth.trusted_proxies",

		// Authz mappings
		"authz_default_role":  "authz.default_role",
		"authz_cache_enabled": "authz.cache_enabled",
		"authz_cache_ttl":     "authz.cache_ttl",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them.
	// This prevents random environment variables from polluting config.
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// Note: The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
