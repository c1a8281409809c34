// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables and sequences.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements.
//
// Schema strategy: all columns are defined in the initial CREATE TABLE
// statements; post-release changes go through versioned migrations in
// migrations.go.
func tableCreationQueries() []string {
	return []string{
		// Registered accounts. Email is stored normalized (lowercase,
		// trimmed) and is the login key.
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			city TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Favorite cities, one row per (user, city). City names are
		// stored trimmed; lookups are case-insensitive.
		`CREATE TABLE IF NOT EXISTS favorites (
			user_id UUID NOT NULL,
			city TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, city)
		);`,

		`CREATE SEQUENCE IF NOT EXISTS tips_id_seq;`,

		// Health tip catalog. A tip applies when the current AQI falls
		// inside [min_aqi, max_aqi]; pollutant optionally narrows it to
		// readings dominated by that pollutant.
		`CREATE TABLE IF NOT EXISTS tips (
			id BIGINT PRIMARY KEY DEFAULT nextval('tips_id_seq'),
			category TEXT NOT NULL,
			pollutant TEXT,
			min_aqi DOUBLE NOT NULL,
			max_aqi DOUBLE NOT NULL,
			text TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE SEQUENCE IF NOT EXISTS city_readings_id_seq;`,

		// Persisted per-city readings fed by the refresher via the event
		// consumer. Pollutant columns are nullable; the upstream
		// provider does not report every species.
		`CREATE TABLE IF NOT EXISTS city_readings (
			id BIGINT PRIMARY KEY DEFAULT nextval('city_readings_id_seq'),
			city TEXT NOT NULL,
			observed_at TIMESTAMP NOT NULL,
			aqi DOUBLE NOT NULL,
			pm25 DOUBLE, pm10 DOUBLE,
			no DOUBLE, no2 DOUBLE, nox DOUBLE, nh3 DOUBLE,
			co DOUBLE, so2 DOUBLE, o3 DOUBLE,
			benzene DOUBLE, toluene DOUBLE, xylene DOUBLE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,

		// Every successful prediction, for auditing and the history
		// view. reading is the raw request body as JSON text.
		`CREATE TABLE IF NOT EXISTS prediction_history (
			id UUID PRIMARY KEY,
			user_id UUID,
			predicted_aqi DOUBLE NOT NULL,
			category TEXT NOT NULL,
			reading TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
}

// createIndexes creates indexes for frequently filtered columns.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tips_range ON tips(min_aqi, max_aqi);`,
		`CREATE INDEX IF NOT EXISTS idx_readings_city_time ON city_readings(city, observed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_user_time ON prediction_history(user_id, created_at);`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
