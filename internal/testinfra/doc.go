// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package testinfra provides container-backed infrastructure for
// integration tests.
//
// The helpers use testcontainers-go to run a real NATS JetStream broker
// when Docker is available; tests call SkipIfNoDocker first so suites
// stay green on machines without a daemon. Everything except this doc
// is gated behind the integration build tag:
//
//	go test -tags integration ./...
package testinfra
