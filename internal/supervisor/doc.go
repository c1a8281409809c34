// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package supervisor builds the suture tree that runs the long-lived
// services.
//
// The tree has two layers under the root:
//
//   - data: events consumer, city refresher, cache GC
//   - api: websocket hub, HTTP server
//
// The split isolates failures: a crashing consumer restarts without
// taking down the HTTP server, and vice versa. Supervisor events are
// logged through sutureslog over the zerolog-backed slog handler.
package supervisor
