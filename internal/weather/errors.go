// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package weather

import "errors"

var (
	// ErrNoAPIKey is returned when the proxy is used without an
	// OpenWeather API key configured. The rest of the service works
	// without one; only the proxy endpoints degrade.
	ErrNoAPIKey = errors.New("no weather API key configured")

	// ErrCityNotFound is returned when geocoding resolves no match.
	ErrCityNotFound = errors.New("city not found")

	// ErrUpstream is returned when OpenWeather answered with an
	// unexpected status or the circuit breaker rejected the call.
	ErrUpstream = errors.New("weather provider unavailable")
)
