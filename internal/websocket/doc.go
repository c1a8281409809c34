// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package websocket pushes live AQI updates to connected browsers.
//
// The hub fans consumed events out to every client: the events
// consumer calls BroadcastReading/BroadcastPrediction, each client
// gets typed JSON messages ({type: "aqi_update"|"prediction", data}).
// Slow clients are dropped rather than allowed to back-pressure the
// hub. The hub runs as a suture service under the api supervisor.
package websocket
