// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// ListTips returns the full tip catalog ordered by AQI range.
func (db *DB) ListTips(ctx context.Context) ([]models.Tip, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, category, COALESCE(pollutant, ''), min_aqi, max_aqi, text, created_at
		FROM tips ORDER BY min_aqi, max_aqi, id`,
	)
	metrics.RecordDBQuery("select", "tips", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query tips: %w", err)
	}
	defer rows.Close()

	return scanTips(rows)
}

// RelevantTips returns the tips whose AQI range covers the given value.
// When pollutant is non-empty, tips narrowed to a different pollutant
// are excluded; tips with no pollutant restriction always match.
func (db *DB) RelevantTips(ctx context.Context, aqi float64, pollutant string) ([]models.Tip, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, category, COALESCE(pollutant, ''), min_aqi, max_aqi, text, created_at
		FROM tips
		WHERE min_aqi <= ? AND max_aqi >= ?
		  AND (pollutant IS NULL OR pollutant = '' OR pollutant = ?)
		ORDER BY category, id`,
		aqi, aqi, pollutant,
	)
	metrics.RecordDBQuery("select", "tips", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query relevant tips: %w", err)
	}
	defer rows.Close()

	return scanTips(rows)
}

// CreateTip adds a tip to the catalog and returns its assigned ID.
func (db *DB) CreateTip(ctx context.Context, req *models.CreateTipRequest) (*models.Tip, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO tips (category, pollutant, min_aqi, max_aqi, text)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, category, COALESCE(pollutant, ''), min_aqi, max_aqi, text, created_at`,
		req.Category, nullIfEmpty(req.Pollutant), req.MinAQI, req.MaxAQI, req.Text,
	)

	var t models.Tip
	err := row.Scan(&t.ID, &t.Category, &t.Pollutant, &t.MinAQI, &t.MaxAQI, &t.Text, &t.CreatedAt)
	metrics.RecordDBQuery("insert", "tips", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tip: %w", err)
	}
	return &t, nil
}

// SeedTips inserts the built-in tip catalog when the table is empty.
// Idempotent across restarts.
func (db *DB) SeedTips(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tips`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count tips: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, tip := range seedTipCatalog {
		_, err := db.conn.ExecContext(ctx, `
			INSERT INTO tips (category, pollutant, min_aqi, max_aqi, text)
			VALUES (?, ?, ?, ?, ?)`,
			tip.Category, nullIfEmpty(tip.Pollutant), tip.MinAQI, tip.MaxAQI, tip.Text,
		)
		if err != nil {
			return fmt.Errorf("failed to seed tip %q: %w", tip.Text, err)
		}
	}

	logging.Info().Int("count", len(seedTipCatalog)).Msg("Seeded health tip catalog")
	return nil
}

// seedTipCatalog is the built-in advice catalog inserted on first start.
var seedTipCatalog = []models.Tip{
	{Category: models.TipCategoryGeneral, MinAQI: 0, MaxAQI: 50,
		Text: "Air quality is good. Enjoy outdoor activities and ventilate your home."},
	{Category: models.TipCategoryOutdoor, MinAQI: 51, MaxAQI: 100,
		Text: "Air quality is acceptable. Unusually sensitive people should consider shorter outdoor workouts."},
	{Category: models.TipCategoryHealth, MinAQI: 101, MaxAQI: 200,
		Text: "People with asthma, children and the elderly should limit prolonged outdoor exertion."},
	{Category: models.TipCategoryOutdoor, MinAQI: 101, MaxAQI: 200, Pollutant: "O3",
		Text: "Ozone peaks in the afternoon. Schedule runs and cycling for early morning."},
	{Category: models.TipCategoryHome, MinAQI: 201, MaxAQI: 300, Pollutant: "PM2.5",
		Text: "Run an air purifier with a HEPA filter and keep windows closed during traffic hours."},
	{Category: models.TipCategoryHealth, MinAQI: 201, MaxAQI: 300,
		Text: "Wear an N95 mask outdoors. Everyone may begin to experience health effects."},
	{Category: models.TipCategoryOutdoor, MinAQI: 201, MaxAQI: 300, Pollutant: "PM10",
		Text: "Avoid dusty roads and construction areas; coarse particles irritate the airways."},
	{Category: models.TipCategoryHealth, MinAQI: 301, MaxAQI: 400,
		Text: "Avoid all outdoor physical activity. Move workouts indoors with filtered air."},
	{Category: models.TipCategoryHome, MinAQI: 301, MaxAQI: 400,
		Text: "Seal gaps around doors and windows; recirculate indoor air instead of drawing from outside."},
	{Category: models.TipCategoryHealth, MinAQI: 401, MaxAQI: 1000,
		Text: "Severe pollution emergency. Stay indoors; seek medical help if you experience breathing difficulty."},
	{Category: models.TipCategoryHome, MinAQI: 401, MaxAQI: 1000, Pollutant: "CO",
		Text: "Do not run generators or burn fuel indoors; carbon monoxide builds up fast in closed rooms."},
	{Category: models.TipCategoryGeneral, MinAQI: 101, MaxAQI: 1000, Pollutant: "SO2",
		Text: "Sulfur dioxide aggravates asthma within minutes. Keep a reliever inhaler at hand."},
}

func scanTips(rows *sql.Rows) ([]models.Tip, error) {
	tips := []models.Tip{}
	for rows.Next() {
		var t models.Tip
		if err := rows.Scan(&t.ID, &t.Category, &t.Pollutant, &t.MinAQI, &t.MaxAQI, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tip: %w", err)
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}

// nullIfEmpty maps "" to SQL NULL for optional text columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
