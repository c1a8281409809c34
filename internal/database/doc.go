// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package database provides DuckDB-backed persistence for Aerographus.
//
// It owns the embedded DuckDB database file and every table in it:
// user accounts, favorite cities, the health tip catalog, persisted
// city readings, and prediction history. All access goes through the DB
// type; queries are parameterized and run under bounded contexts.
//
// The schema is created on startup and evolved through versioned
// migrations tracked in the schema_migrations table.
package database
