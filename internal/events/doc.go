// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package events carries readings and predictions over NATS JetStream.
//
// A single-instance deployment runs the embedded NATS server; pointing
// the URL at an external cluster works the same way. All messages flow
// through the AQI_EVENTS stream (subjects aqi.>): the refresher and the
// predict handler publish, the consumer service persists each event to
// DuckDB and forwards it to the websocket hub.
//
// With events disabled in config the publisher degrades to a no-op and
// nothing else changes; predictions are then persisted synchronously by
// the API handler instead.
package events
