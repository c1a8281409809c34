// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package cache provides a BadgerDB-backed response cache with TTL.
//
// The weather proxy stores upstream responses here so repeated city
// lookups do not burn OpenWeather quota. Entries expire through
// Badger's native TTL support; expired value-log space is reclaimed by
// a periodic garbage collection loop. The store can run fully
// in-memory for tests and ephemeral deployments.
package cache
