// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/aerographus/internal/database/query"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// InsertCityReading persists one observed city reading.
func (db *DB) InsertCityReading(ctx context.Context, r *models.HistoricalReading) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	p := r.Pollutants
	if p == nil {
		p = &models.PollutantConcentrations{}
	}

	start := time.Now()
	stmt, err := db.getStmt(ctx, `
		INSERT INTO city_readings (
			city, observed_at, aqi,
			pm25, pm10, no, no2, nox, nh3, co, so2, o3, benzene, toluene, xylene
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx,
		r.City, r.Time.UTC(), r.AQI,
		p.PM25, p.PM10, p.NO, p.NO2, p.NOx, p.NH3, p.CO, p.SO2, p.O3,
		p.Benzene, p.Toluene, p.Xylene,
	)
	metrics.RecordDBQuery("insert", "city_readings", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert city reading: %w", err)
	}
	return nil
}

// CityHistory returns the persisted readings for a city in the given
// window, newest first, capped at limit rows.
func (db *DB) CityHistory(ctx context.Context, city string, since time.Time, limit int) ([]models.HistoricalReading, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	where, args := query.NewWhereBuilder().
		AddCity(city).
		AddTimeRange(&since, nil).
		BuildWithPrefix()
	args = append(args, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT city, observed_at, aqi,
			pm25, pm10, no, no2, nox, nh3, co, so2, o3, benzene, toluene, xylene
		FROM city_readings`+where+`
		ORDER BY observed_at DESC
		LIMIT ?`,
		args...,
	)
	metrics.RecordDBQuery("select", "city_readings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query city history: %w", err)
	}
	defer rows.Close()

	history := []models.HistoricalReading{}
	for rows.Next() {
		var r models.HistoricalReading
		var p models.PollutantConcentrations
		if err := rows.Scan(&r.City, &r.Time, &r.AQI,
			&p.PM25, &p.PM10, &p.NO, &p.NO2, &p.NOx, &p.NH3,
			&p.CO, &p.SO2, &p.O3, &p.Benzene, &p.Toluene, &p.Xylene); err != nil {
			return nil, fmt.Errorf("failed to scan city reading: %w", err)
		}
		r.Pollutants = &p
		history = append(history, r)
	}
	return history, rows.Err()
}

// PredictionRecord is one persisted prediction for the audit trail.
type PredictionRecord struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id,omitempty"`
	PredictedAQI float64   `json:"predicted_aqi"`
	Category     string    `json:"category"`
	Source       string    `json:"source"`
	Reading      string    `json:"reading"`
	CreatedAt    time.Time `json:"created_at"`
}

// InsertPrediction records one served prediction. Reading is the raw
// request body as JSON text; UserID may be empty for unauthenticated
// internal callers.
func (db *DB) InsertPrediction(ctx context.Context, rec *PredictionRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO prediction_history (id, user_id, predicted_aqi, category, source, reading)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, nullIfEmpty(rec.UserID), rec.PredictedAQI, rec.Category, rec.Source, rec.Reading,
	)
	metrics.RecordDBQuery("insert", "prediction_history", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// RecentPredictions returns the newest predictions for a user, newest
// first, capped at limit rows.
func (db *DB) RecentPredictions(ctx context.Context, userID string, limit int) ([]PredictionRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 || limit > 500 {
		limit = 50
	}

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, COALESCE(user_id::VARCHAR, ''), predicted_aqi, category, source, reading, created_at
		FROM prediction_history
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		userID, limit,
	)
	metrics.RecordDBQuery("select", "prediction_history", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	records := []PredictionRecord{}
	for rows.Next() {
		var rec PredictionRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.PredictedAQI, &rec.Category,
			&rec.Source, &rec.Reading, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
