// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package metrics provides Prometheus instrumentation for Aerographus.
//
// All collectors are package-level promauto variables registered with the
// default registry and exposed on /metrics. Components either touch the
// collectors directly (circuit breakers, websocket hub) or go through the
// Record* helpers when one observation spans several collectors.
package metrics
