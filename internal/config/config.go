// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and config files. Provides centralized configuration management for every
// component: HTTP server, DuckDB storage, model loading, weather proxy, NATS
// event processing, response cache, websocket hub, security, and logging.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Model.Path, cfg.Database.Path, etc. are now populated
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Model     ModelConfig     `koanf:"model"`
	Weather   WeatherConfig   `koanf:"weather"`
	Events    EventsConfig    `koanf:"events"`
	Cache     CacheConfig     `koanf:"cache"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Auth      AuthConfig      `koanf:"auth"`
	Authz     AuthzConfig     `koanf:"authz"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// DatabaseConfig holds DuckDB storage settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Whether to preserve insertion order (default true)
	SeedTips               bool   `koanf:"seed_tips"`                // Seed the health tip catalog on first start
}

// ModelConfig holds model artifact and loader settings.
//
// The loader resolves the artifact in this order: local file at Path, then
// download from URL, then download from MirrorURL. A download lands in
// Path + ".tmp" and is renamed into place only when complete, so a crashed
// download never leaves a partial artifact behind.
type ModelConfig struct {
	Path              string        `koanf:"path"`               // Local artifact path (download target and cache)
	URL               string        `koanf:"url"`                // Primary download URL (optional when Path exists)
	MirrorURL         string        `koanf:"mirror_url"`         // Secondary download URL tried after the primary fails
	DownloadTimeout   time.Duration `koanf:"download_timeout"`   // Per-attempt download timeout
	WarmupDelay       time.Duration `koanf:"warmup_delay"`       // Delay before the background warm-up load kicks off
	HeuristicFallback bool          `koanf:"heuristic_fallback"` // Serve sub-index estimates while the model is unavailable
}

// WeatherConfig holds the OpenWeather proxy client settings.
//
// Without an API key the proxy endpoints degrade to errors but the rest of
// the service (prediction, accounts, tips) keeps working.
type WeatherConfig struct {
	APIKey          string        `koanf:"api_key"`
	BaseURL         string        `koanf:"base_url"`
	Timeout         time.Duration `koanf:"timeout"`
	RetryAttempts   int           `koanf:"retry_attempts"`
	RetryDelay      time.Duration `koanf:"retry_delay"`
	RateLimit       float64       `koanf:"rate_limit"` // Outbound requests per second toward OpenWeather
	RateBurst       int           `koanf:"rate_burst"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`         // Weather and AQI response cache lifetime
	GeocodeCacheTTL time.Duration `koanf:"geocode_cache_ttl"` // Geocoding results change rarely; cache longer
	Concurrency     int           `koanf:"concurrency"`       // Parallel city fetches for the top-cities view
	RefreshInterval time.Duration `koanf:"refresh_interval"`  // City refresher cadence (0 disables)
	TrackedCities   []string      `koanf:"tracked_cities"`    // Extra cities refreshed beyond favorites and the map list
}

// EventsConfig holds NATS JetStream event processing settings.
type EventsConfig struct {
	Enabled          bool          `koanf:"enabled"`
	URL              string        `koanf:"url"`
	EmbeddedServer   bool          `koanf:"embedded_server"`
	StoreDir         string        `koanf:"store_dir"`
	MaxMemory        int64         `koanf:"max_memory"`
	MaxStore         int64         `koanf:"max_store"`
	RetentionDays    int           `koanf:"retention_days"`
	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers_count"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout"`
	MaxReconnects    int           `koanf:"max_reconnects"`
	ReconnectWait    time.Duration `koanf:"reconnect_wait"`
}

// CacheConfig holds the persistent response cache settings.
type CacheConfig struct {
	Path       string        `koanf:"path"`        // BadgerDB directory
	InMemory   bool          `koanf:"in_memory"`   // Run Badger without files (tests, ephemeral deploys)
	GCInterval time.Duration `koanf:"gc_interval"` // Value-log garbage collection cadence
}

// WebSocketConfig holds live-update hub settings.
type WebSocketConfig struct {
	Enabled        bool          `koanf:"enabled"`
	MaxMessageSize int64         `koanf:"max_message_size"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

// AuthConfig holds authentication settings.
//
// Aerographus uses first-party email/password accounts with JWT access
// tokens. JWTSecret must be at least 32 characters; token validation rejects
// any signing algorithm other than HMAC.
type AuthConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenExpiry       time.Duration `koanf:"token_expiry"`
	BcryptCost        int           `koanf:"bcrypt_cost"`
	AdminEmail        string        `koanf:"admin_email"`    // Bootstrap admin account (created on first start when set)
	AdminPassword     string        `koanf:"admin_password"` // Bootstrap admin password (8+ characters)
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	AuthRateLimitReqs int           `koanf:"auth_rate_limit_reqs"` // Stricter limit applied to login/signup
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// AuthzConfig holds Casbin RBAC authorization settings.
type AuthzConfig struct {
	DefaultRole  string        `koanf:"default_role"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // trace, debug, info, warn, error
	Format string `koanf:"format"` // "json" or "console"
	Caller bool   `koanf:"caller"` // Include file:line in log output
}

// Load loads configuration using Koanf v2 with layered sources.
// See LoadWithKoanf for the layering details.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateWeather(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging, or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateModel() error {
	if c.Model.Path == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}
	if err := validateOptionalURL("MODEL_URL", c.Model.URL); err != nil {
		return err
	}
	if err := validateOptionalURL("MODEL_MIRROR_URL", c.Model.MirrorURL); err != nil {
		return err
	}
	if c.Model.DownloadTimeout <= 0 {
		return fmt.Errorf("MODEL_DOWNLOAD_TIMEOUT must be positive, got %s", c.Model.DownloadTimeout)
	}
	if c.Model.WarmupDelay < 0 {
		return fmt.Errorf("MODEL_WARMUP_DELAY must not be negative, got %s", c.Model.WarmupDelay)
	}
	return nil
}

func (c *Config) validateWeather() error {
	if err := validateOptionalURL("OPENWEATHER_BASE_URL", c.Weather.BaseURL); err != nil {
		return err
	}
	if c.Weather.RateLimit <= 0 {
		return fmt.Errorf("WEATHER_RATE_LIMIT must be positive, got %g", c.Weather.RateLimit)
	}
	if c.Weather.Concurrency < 1 {
		return fmt.Errorf("WEATHER_CONCURRENCY must be at least 1, got %d", c.Weather.Concurrency)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.EmbeddedServer && c.Events.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	if !c.Events.EmbeddedServer && c.Events.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_EMBEDDED=false")
	}
	if c.Events.RetentionDays < 1 {
		return fmt.Errorf("NATS_RETENTION_DAYS must be at least 1, got %d", c.Events.RetentionDays)
	}
	return nil
}

func (c *Config) validateAuth() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for adequate entropy, got %d", len(c.Auth.JWTSecret))
	}
	if c.Auth.TokenExpiry <= 0 {
		return fmt.Errorf("TOKEN_EXPIRY must be positive, got %s", c.Auth.TokenExpiry)
	}
	// bcrypt rejects costs outside [4, 31]; fail here rather than on the
	// first signup request.
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.Auth.AdminEmail != "" && len(c.Auth.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateOptionalURL checks that a URL, when set, parses and uses an
// http(s) scheme. Empty values are allowed.
func validateOptionalURL(name, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}

// ListenAddr returns the host:port pair the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the server runs in production mode.
// Some validation (TLS-only cookies, CORS wildcard warnings) is stricter
// in production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
