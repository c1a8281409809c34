// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/aerographus/internal/auth"
	"github.com/tomtom215/aerographus/internal/authz"
)

// Router assembles the HTTP surface: handlers plus the middleware
// stacks that gate them.
type Router struct {
	handler    *Handlers
	middleware *Middleware
	authMW     *auth.Middleware
	authzMW    *authz.Middleware
	wsHandler  http.Handler
}

// NewRouter wires the route tree. wsHandler may be nil when live
// updates are disabled; the /ws route is then not registered.
func NewRouter(handler *Handlers, mw *Middleware, authMW *auth.Middleware, authzMW *authz.Middleware, wsHandler http.Handler) *Router {
	return &Router{
		handler:    handler,
		middleware: mw,
		authMW:     authMW,
		authzMW:    authzMW,
		wsHandler:  wsHandler,
	}
}

// Setup builds the Chi route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global stack, applied to every route in order. CORS must be
	// global so OPTIONS preflight succeeds on all paths.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())
	r.Use(AccessLog())

	// Health endpoints: permissive limits so monitors can poll often.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Auth endpoints: strict limits against credential stuffing.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(Instrument())

		r.With(router.middleware.RateLimitAuth()).Post("/signup", router.handler.Signup)
		r.With(router.middleware.RateLimitAuth()).Post("/login", router.handler.Login)

		r.With(router.middleware.RateLimit(), router.authMW.RequireAuth).
			Get("/me", router.handler.Me)
	})

	// Public data endpoints: the weather/AQI proxy surface and the
	// tips catalog need no account.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(Instrument())

		r.Route("/cities", func(r chi.Router) {
			r.Get("/top", router.handler.TopCities)
			r.Get("/map", router.handler.MapCities)
			r.Get("/autocomplete", router.handler.Autocomplete)
			r.Get("/reverse", router.handler.ReverseGeocode)

			r.Route("/{city}", func(r chi.Router) {
				r.Get("/", router.handler.CityOverview)
				r.Get("/aqi", router.handler.CityAQI)
				r.Get("/weather", router.handler.CityWeather)
				r.Get("/forecast", router.handler.CityForecast)
				r.Get("/history", router.handler.CityHistory)
			})
		})

		r.Get("/pollutants", router.handler.Pollutants)

		r.Get("/tips", router.handler.ListTips)
		r.Post("/tips/relevant", router.handler.RelevantTips)

		r.Get("/model/status", router.handler.ModelStatus)

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(router.authMW.RequireAuth)

			r.Put("/users/me/city", router.handler.UpdateCity)

			r.Get("/favorites", router.handler.ListFavorites)
			r.Post("/favorites", router.handler.AddFavorite)
			r.Delete("/favorites/{city}", router.handler.RemoveFavorite)

			r.Post("/predict", router.handler.Predict)

			// Admin-only writes, gated by the Casbin policy.
			r.With(router.authzMW.Require("tips", "create")).
				Post("/tips", router.handler.CreateTip)
			r.With(router.authzMW.Require("model", "reload")).
				Post("/model/reload", router.handler.ModelReload)
		})
	})

	// Live updates. The websocket handshake must not pass through the
	// metrics writer wrapper, which does not implement http.Hijacker.
	if router.wsHandler != nil {
		r.Handle("/ws", router.wsHandler)
	}

	// Observability.
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))

	return r
}
