// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package models defines the domain types shared across the application:
// users and roles, air quality readings, tips, and the request/response
// shapes of the HTTP API.
//
// # Organization
//
//   - api_responses.go: APIResponse envelope, Metadata and APIError used by
//     every HTTP endpoint
//   - user.go: User, role constants, and the auth request/response types
//   - aqi.go: city air quality snapshots, pollutant concentrations, weather,
//     forecast and map/top-city shapes
//   - prediction.go: the inference endpoint response
//   - tips.go: health tip catalog types
//
// Types here carry JSON tags and go-playground/validator tags but no
// behavior beyond small accessors; persistence lives in internal/database
// and HTTP handling in internal/api.
package models
