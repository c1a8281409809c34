// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package main is the entry point for the Aerographus server.
//
// Aerographus is an air quality analytics service that serves AQI
// predictions from a trained model, proxies live city air quality data
// from OpenWeather, and manages user accounts, favorite cities, and a
// health tip catalog.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and config file via Koanf v2
//  2. Database: DuckDB with schema migrations, tip seeding, admin bootstrap
//  3. Events (optional): embedded or external NATS JetStream broker
//  4. Cache: BadgerDB response cache with background value-log GC
//  5. Weather: OpenWeather proxy with circuit breaker and rate limiting
//  6. Inference: model artifact store, lazy-loading cache, prediction engine
//  7. WebSocket hub: live reading and prediction broadcasts
//  8. HTTP server: Chi REST API with Swagger documentation
//
// All long-running components run under a suture supervisor tree and
// restart independently on failure.
//
// # Configuration
//
// Configuration layers (highest priority wins):
//   - Environment variables (AERO_ prefix, see .env.example)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Required settings:
//   - JWT_SECRET: 32+ character secret for token signing
//
// Common optional settings:
//   - OPENWEATHER_API_KEY: enables the live city data endpoints
//   - MODEL_PATH / MODEL_URL: prediction model artifact location
//   - ADMIN_EMAIL / ADMIN_PASSWORD: bootstrap admin account
//   - NATS_ENABLED / NATS_EMBEDDED: event-driven prediction pipeline
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server stops accepting connections and drains in-flight requests
// (10s timeout), then the supervisor tree stops the consumer, the
// refresher, and the websocket hub.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/aerographus/docs" // Generated swagger docs
	"github.com/tomtom215/aerographus/internal/api"
	"github.com/tomtom215/aerographus/internal/auth"
	"github.com/tomtom215/aerographus/internal/authz"
	"github.com/tomtom215/aerographus/internal/cache"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/events"
	"github.com/tomtom215/aerographus/internal/inference"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/supervisor"
	"github.com/tomtom215/aerographus/internal/weather"
	ws "github.com/tomtom215/aerographus/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, use the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Aerographus")

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("weather_enabled", cfg.Weather.APIKey != "").
		Bool("events_enabled", cfg.Events.Enabled).
		Str("model_path", cfg.Model.Path).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.SeedTips {
		if err := db.SeedTips(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed tip catalog")
		}
	}

	// Events layer. The embedded broker covers single-node deployments;
	// pointing NATS_URL at an external cluster covers the rest.
	var embedded *events.EmbeddedServer
	readingPub, predictionPub := weather.ReadingPublisher(events.NoopPublisher{}), api.EventPublisher(events.NoopPublisher{})
	var publisher *events.Publisher
	if cfg.Events.Enabled {
		if cfg.Events.EmbeddedServer {
			embedded, err = events.NewEmbeddedServer(&cfg.Events)
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to start embedded NATS server")
			}
			defer embedded.Shutdown()
			cfg.Events.URL = embedded.ClientURL()
			logging.Info().Str("url", cfg.Events.URL).Msg("Embedded NATS server started")
		}

		if err := events.EnsureStream(ctx, &cfg.Events); err != nil {
			logging.Fatal().Err(err).Msg("Failed to provision event stream")
		}

		publisher, err = events.NewPublisher(&cfg.Events)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect event publisher")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event publisher")
			}
		}()
		readingPub, predictionPub = publisher, publisher
		logging.Info().Msg("Event publishing enabled")
	} else {
		logging.Info().Msg("Events disabled, predictions persist synchronously")
	}

	store, err := cache.New(&cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open response cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing response cache")
		}
	}()
	if cfg.Cache.GCInterval > 0 {
		gcStop := make(chan struct{})
		defer close(gcStop)
		store.StartGC(cfg.Cache.GCInterval, gcStop)
	}

	weatherSvc := weather.NewService(weather.NewClient(&cfg.Weather), store, db, &cfg.Weather)
	if cfg.Weather.APIKey == "" {
		logging.Warn().Msg("OPENWEATHER_API_KEY not set, live city data endpoints will return errors")
	}

	modelCache := inference.NewModelCache(inference.NewStore(cfg.Model))
	modelCache.WarmUp(cfg.Model.WarmupDelay)
	engine := inference.NewEngine(modelCache)

	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	authSvc := auth.NewService(
		db,
		auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		jwtManager,
		auth.NewLockoutTracker(auth.DefaultLockoutConfig()),
	)
	if cfg.Auth.AdminEmail != "" {
		if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			logging.Fatal().Err(err).Msg("Failed to bootstrap admin account")
		}
		logging.Info().Str("email", cfg.Auth.AdminEmail).Msg("Admin account ensured")
	}

	enforcer, err := authz.NewEnforcer(&cfg.Authz)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}

	hub := ws.NewHub()
	var wsHandler http.Handler
	if cfg.WebSocket.Enabled {
		wsHandler = ws.NewHandler(hub, &cfg.WebSocket)
	}

	handlers := api.NewHandlers(cfg, authSvc, db, weatherSvc, engine, predictionPub, version)
	router := api.NewRouter(
		handlers,
		api.NewMiddleware(&cfg.Auth),
		auth.NewMiddleware(jwtManager),
		authz.NewMiddleware(enforcer),
		wsHandler,
	)

	if cfg.Auth.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true), for test environments only")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())

	if cfg.Events.Enabled {
		tree.AddDataService(events.NewConsumer(&cfg.Events, db, hub))
	}
	if cfg.Weather.RefreshInterval > 0 && cfg.Weather.APIKey != "" {
		tree.AddDataService(weather.NewRefresher(weatherSvc, readingPub, cfg.Weather.RefreshInterval, cfg.Weather.TrackedCities))
		logging.Info().
			Dur("interval", cfg.Weather.RefreshInterval).
			Int("extra_cities", len(cfg.Weather.TrackedCities)).
			Msg("City refresher enabled")
	}
	tree.AddAPIService(hub)
	tree.AddAPIService(supervisor.NewHTTPService(server, server.Addr, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
