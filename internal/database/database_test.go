// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/models"
)

// testDBSemaphore serializes DuckDB lifecycles across parallel tests.
// Concurrent CGO database creation can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates an in-memory test database. The semaphore is held
// for the entire test lifecycle (released via t.Cleanup) so only one
// test has an active DuckDB connection at a time.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return db
}

// testUser inserts a fresh account and returns it.
func testUser(t *testing.T, db *DB) *models.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         "Asha Rao",
		Email:        models.NormalizeEmail(uuid.NewString() + "@example.com"),
		PasswordHash: "$2a$10$fakehashfortesting0000000000000000000000000000000000",
		City:         models.DefaultCity,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return u
}

func TestNewInitializesSchema(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() failed: %v", err)
	}

	// Every core table must exist and be queryable.
	for _, table := range []string{"users", "favorites", "tips", "city_readings", "prediction_history", "schema_migrations"} {
		var count int64
		query := "SELECT COUNT(*) FROM " + table
		if err := db.Conn().QueryRow(query).Scan(&count); err != nil {
			t.Errorf("table %s not queryable: %v", table, err)
		}
	}
}

func TestMigrationsApplyOnce(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.GetCurrentSchemaVersion()
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion() failed: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}

	// Re-running must be a no-op, not a duplicate-key failure.
	if err := db.runVersionedMigrations(); err != nil {
		t.Fatalf("second runVersionedMigrations() failed: %v", err)
	}

	history, err := db.GetMigrationHistory()
	if err != nil {
		t.Fatalf("GetMigrationHistory() failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("migration history has %d entries, want 1", len(history))
	}
}

func TestCheckpoint(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Checkpoint(context.Background()); err != nil {
		t.Fatalf("Checkpoint() failed: %v", err)
	}
}
