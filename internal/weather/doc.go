// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package weather proxies OpenWeather for city air quality, current
// conditions, forecasts and geocoding.
//
// All upstream calls go through one shared rate limiter and circuit
// breaker; responses are cached in Badger so repeated city lookups do
// not burn API quota. City AQI is computed server-side as the maximum
// CPCB sub-index over the components the upstream reports, because
// OpenWeather's own 1-5 scale is too coarse to be useful here.
//
// A background refresher keeps a tracked set of cities warm (the fixed
// map list plus every favorited city) and publishes a reading event for
// each refresh.
package weather
