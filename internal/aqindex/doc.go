// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package aqindex implements the Indian national AQI (CPCB) math: per-pollutant
// sub-indices from piecewise-linear breakpoint tables, severity classification
// with presentation metadata, and decomposition of a predicted AQI across
// contributing pollutants.
//
// Everything in this package is pure computation: no I/O, no shared state,
// safe for concurrent use.
package aqindex
