// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/aerographus/internal/metrics"
)

// ListFavorites returns the caller's favorite cities in insertion order.
// Always returns a non-nil slice so the API serializes [] rather than null.
func (db *DB) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT city FROM favorites WHERE user_id = ? ORDER BY created_at, city`,
		userID,
	)
	metrics.RecordDBQuery("select", "favorites", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()

	cities := []string{}
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// AddFavorite records a favorite city for the user. Adding a city that
// is already a favorite is a success no-op; the second return value
// reports whether a new row was written.
func (db *DB) AddFavorite(ctx context.Context, userID, city string) (bool, error) {
	city = strings.TrimSpace(city)

	// Case-insensitive duplicate check so "delhi" and "Delhi" are one
	// favorite.
	existing, err := db.ListFavorites(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, c := range existing {
		if strings.EqualFold(c, city) {
			return false, nil
		}
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO favorites (user_id, city) VALUES (?, ?)
		ON CONFLICT DO NOTHING`,
		userID, city,
	)
	metrics.RecordDBQuery("insert", "favorites", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to insert favorite: %w", err)
	}
	return true, nil
}

// DistinctFavoriteCities returns every city any user has favorited,
// deduplicated case-insensitively. The city refresher unions this with
// the fixed map list to decide what to keep warm.
func (db *DB) DistinctFavoriteCities(ctx context.Context) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT min(city) FROM favorites GROUP BY lower(city) ORDER BY 1`)
	metrics.RecordDBQuery("select", "favorites", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite cities: %w", err)
	}
	defer rows.Close()

	cities := []string{}
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("failed to scan favorite city: %w", err)
		}
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

// RemoveFavorite deletes a favorite city. Removing an absent favorite
// is a success no-op; the return value reports whether a row existed.
func (db *DB) RemoveFavorite(ctx context.Context, userID, city string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = ? AND lower(city) = lower(?)`,
		userID, strings.TrimSpace(city),
	)
	metrics.RecordDBQuery("delete", "favorites", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}
