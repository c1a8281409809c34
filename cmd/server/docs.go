// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package main provides the Aerographus HTTP server
//
// Aerographus serves AQI predictions from a trained model and live air
// quality data for cities worldwide via OpenWeather.
//
// @title Aerographus API
// @version 1.0
// @description Air quality analytics and AQI inference service
// @description
// @description ## Features
// @description
// @description - **AQI Prediction**: Predict the Air Quality Index from twelve pollutant readings using a trained model, with a CPCB sub-index heuristic fallback
// @description - **Live City Data**: Current AQI, weather, forecasts, and per-pollutant concentrations for any city via OpenWeather
// @description - **Accounts & Favorites**: Email/password accounts with JWT tokens, favorite city lists, and a home city
// @description - **Health Tips**: AQI-level and pollutant-specific health advice
// @description - **Real-time Updates**: WebSocket broadcasts of readings and predictions
// @description
// @description ## Authentication
// @description
// @description Protected endpoints require a JWT bearer token in the Authorization header.
// @description Obtain a token via `/api/v1/auth/signup` or `/api/v1/auth/login`.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address; login and
// @description signup are limited to 5 requests per minute. Rate limit headers are
// @description included in responses: `X-RateLimit-Limit`, `X-RateLimit-Remaining`, `X-RateLimit-Reset`.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-25T12:34:56Z"
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/aerographus/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT bearer token, prefixed with "Bearer ". Obtain via /api/v1/auth/login.
//
// @tag.name Auth
// @tag.description Account signup, login, and profile management
//
// @tag.name Cities
// @tag.description Live city air quality, weather, forecasts, and geocoding
//
// @tag.name Predictions
// @tag.description Model-backed AQI prediction and model lifecycle
//
// @tag.name Tips
// @tag.description Health tip catalog and AQI-relevant advice
//
// @tag.name Favorites
// @tag.description Per-user favorite city lists
//
// @tag.name Core
// @tag.description Health checks, readiness, and system status
package main
