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

	"github.com/tomtom215/aerographus/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestCityReadingHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		r := &models.HistoricalReading{
			City: "Delhi",
			Time: base.Add(-time.Duration(i) * time.Hour),
			AQI:  200 + float64(i),
			Pollutants: &models.PollutantConcentrations{
				PM25: floatPtr(90 + float64(i)),
				PM10: floatPtr(180),
			},
		}
		if err := db.InsertCityReading(ctx, r); err != nil {
			t.Fatalf("InsertCityReading() failed: %v", err)
		}
	}
	// A reading for another city must not leak into Delhi's history.
	other := &models.HistoricalReading{City: "Mumbai", Time: base, AQI: 90}
	if err := db.InsertCityReading(ctx, other); err != nil {
		t.Fatalf("InsertCityReading(Mumbai) failed: %v", err)
	}

	history, err := db.CityHistory(ctx, "delhi", base.Add(-3*time.Hour), 100)
	if err != nil {
		t.Fatalf("CityHistory() failed: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("CityHistory() returned %d rows, want 4", len(history))
	}
	// Newest first.
	for i := 1; i < len(history); i++ {
		if history[i].Time.After(history[i-1].Time) {
			t.Errorf("history not sorted newest first at index %d", i)
		}
	}
	if history[0].Pollutants == nil || history[0].Pollutants.PM25 == nil {
		t.Fatal("pollutants not round-tripped")
	}
	if *history[0].Pollutants.PM25 != 90 {
		t.Errorf("PM2.5 = %g, want 90", *history[0].Pollutants.PM25)
	}
	// NOx was never reported and must stay null.
	if history[0].Pollutants.NOx != nil {
		t.Errorf("NOx = %v, want nil", *history[0].Pollutants.NOx)
	}
}

func TestCityHistoryLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		r := &models.HistoricalReading{City: "Pune", Time: base.Add(-time.Duration(i) * time.Minute), AQI: 100}
		if err := db.InsertCityReading(ctx, r); err != nil {
			t.Fatalf("InsertCityReading() failed: %v", err)
		}
	}

	history, err := db.CityHistory(ctx, "Pune", base.Add(-time.Hour), 3)
	if err != nil {
		t.Fatalf("CityHistory() failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("CityHistory() returned %d rows, want 3", len(history))
	}
}

func TestPredictionHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	u := testUser(t, db)

	rec := &PredictionRecord{
		ID:           uuid.NewString(),
		UserID:       u.ID,
		PredictedAQI: 182.45,
		Category:     "Moderate",
		Source:       "model",
		Reading:      `{"PM2.5":35,"PM10":80}`,
	}
	if err := db.InsertPrediction(ctx, rec); err != nil {
		t.Fatalf("InsertPrediction() failed: %v", err)
	}

	// Anonymous prediction with no user attached.
	anon := &PredictionRecord{
		ID:           uuid.NewString(),
		PredictedAQI: 60,
		Category:     "Satisfactory",
		Source:       "heuristic",
		Reading:      `{}`,
	}
	if err := db.InsertPrediction(ctx, anon); err != nil {
		t.Fatalf("InsertPrediction(anonymous) failed: %v", err)
	}

	records, err := db.RecentPredictions(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("RecentPredictions() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("RecentPredictions() returned %d rows, want 1", len(records))
	}
	got := records[0]
	if got.PredictedAQI != 182.45 {
		t.Errorf("predicted_aqi = %g, want 182.45", got.PredictedAQI)
	}
	if got.Source != "model" {
		t.Errorf("source = %q, want model", got.Source)
	}
}
