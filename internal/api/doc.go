// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package api is the HTTP surface of the service: a Chi router over the
// auth, weather, tips and inference layers.
//
// Every endpoint answers with the models.APIResponse envelope. Handlers
// return domain errors; respond.go maps the sentinel errors of the
// lower layers onto stable machine-readable codes (NOT_FOUND,
// MODEL_NOT_READY, UPSTREAM_ERROR, ...) so clients never have to parse
// message text.
//
// Middleware is assembled from the Chi ecosystem: go-chi/cors for
// CORS, go-chi/httprate for per-route rate limits (strict on the auth
// endpoints), chi middleware for RealIP and panic recovery, plus a
// request-ID middleware that seeds the zerolog context.
package api
