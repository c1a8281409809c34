// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/models"
)

type fakeStore struct {
	mu          sync.Mutex
	readings    []*models.HistoricalReading
	predictions []*database.PredictionRecord
	failWith    error
}

func (s *fakeStore) InsertCityReading(_ context.Context, r *models.HistoricalReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.readings = append(s.readings, r)
	return nil
}

func (s *fakeStore) InsertPrediction(_ context.Context, rec *database.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.predictions = append(s.predictions, rec)
	return nil
}

type fakeBroadcaster struct {
	mu          sync.Mutex
	readings    []*models.ReadingEvent
	predictions []*models.PredictionEvent
}

func (b *fakeBroadcaster) BroadcastReading(event *models.ReadingEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readings = append(b.readings, event)
}

func (b *fakeBroadcaster) BroadcastPrediction(event *models.PredictionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.predictions = append(b.predictions, event)
}

func TestHandleReading(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	broadcaster := &fakeBroadcaster{}
	consumer := NewConsumer(&config.EventsConfig{}, store, broadcaster)

	pm := 42.5
	event := models.ReadingEvent{
		EventID:    "evt-1",
		City:       "Delhi",
		AQI:        142,
		Category:   "Moderate",
		Pollutants: &models.PollutantConcentrations{PM25: &pm},
		ObservedAt: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
	}
	payload, _ := json.Marshal(event)

	if err := consumer.handleReading(context.Background(), payload); err != nil {
		t.Fatalf("handleReading() failed: %v", err)
	}

	if len(store.readings) != 1 {
		t.Fatalf("len(readings) = %d, want 1", len(store.readings))
	}
	r := store.readings[0]
	if r.City != "Delhi" || r.AQI != 142 || !r.Time.Equal(event.ObservedAt) {
		t.Errorf("persisted reading = %+v", r)
	}
	if r.Pollutants == nil || r.Pollutants.PM25 == nil || *r.Pollutants.PM25 != 42.5 {
		t.Errorf("persisted pollutants = %+v", r.Pollutants)
	}

	if len(broadcaster.readings) != 1 {
		t.Errorf("len(broadcast readings) = %d, want 1", len(broadcaster.readings))
	}
}

func TestHandlePrediction(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	consumer := NewConsumer(&config.EventsConfig{}, store, nil)

	event := models.PredictionEvent{
		EventID:      "evt-2",
		UserID:       "user-1",
		PredictedAQI: 187.42,
		Category:     "Moderate",
		Reading:      map[string]float64{"PM2.5": 80, "PM10": 150},
		Source:       "model",
		PredictedAt:  time.Now().UTC(),
	}
	payload, _ := json.Marshal(event)

	if err := consumer.handlePrediction(context.Background(), payload); err != nil {
		t.Fatalf("handlePrediction() failed: %v", err)
	}

	if len(store.predictions) != 1 {
		t.Fatalf("len(predictions) = %d, want 1", len(store.predictions))
	}
	rec := store.predictions[0]
	if rec.ID != "evt-2" || rec.UserID != "user-1" || rec.Source != "model" {
		t.Errorf("persisted record = %+v", rec)
	}

	var reading map[string]float64
	if err := json.Unmarshal([]byte(rec.Reading), &reading); err != nil {
		t.Fatalf("persisted reading is not JSON: %v", err)
	}
	if reading["PM2.5"] != 80 {
		t.Errorf("reading[PM2.5] = %v, want 80", reading["PM2.5"])
	}
}

func TestHandleReadingMalformed(t *testing.T) {
	t.Parallel()
	consumer := NewConsumer(&config.EventsConfig{}, &fakeStore{}, nil)

	err := consumer.handleReading(context.Background(), []byte("{broken"))
	if err == nil {
		t.Fatal("handleReading() succeeded on malformed payload")
	}
	if !isDecodeError(err) {
		t.Errorf("error %v not classified as decode error", err)
	}
}

func TestHandleReadingStoreFailureIsRetryable(t *testing.T) {
	t.Parallel()
	store := &fakeStore{failWith: errors.New("db locked")}
	consumer := NewConsumer(&config.EventsConfig{}, store, nil)

	payload, _ := json.Marshal(models.ReadingEvent{EventID: "evt-3", City: "Pune"})
	err := consumer.handleReading(context.Background(), payload)
	if err == nil {
		t.Fatal("handleReading() succeeded despite store failure")
	}
	// Store faults must not be classified as malformed, so the message
	// gets redelivered.
	if isDecodeError(err) {
		t.Errorf("store failure %v misclassified as decode error", err)
	}
}
