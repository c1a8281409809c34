// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package weather

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/tomtom215/aerographus/internal/models"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []*models.ReadingEvent
}

func (p *capturingPublisher) PublishReading(_ context.Context, event *models.ReadingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) captured() []*models.ReadingEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.ReadingEvent{}, p.events...)
}

func TestRefreshCityPublishesEvent(t *testing.T) {
	t.Parallel()
	svc := setupTestService(t, &fakeUpstream{})
	pub := &capturingPublisher{}
	refresher := NewRefresher(svc, pub, 0, nil)

	if err := refresher.refreshCity(context.Background(), "Delhi"); err != nil {
		t.Fatalf("refreshCity() failed: %v", err)
	}

	events := pub.captured()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	e := events[0]
	if e.City != "Delhi" {
		t.Errorf("City = %q, want Delhi", e.City)
	}
	if e.AQI != 200 {
		t.Errorf("AQI = %v, want 200", e.AQI)
	}
	if e.Category != "Moderate" {
		t.Errorf("Category = %q, want Moderate", e.Category)
	}
	if e.EventID == "" {
		t.Error("EventID is empty")
	}
	if e.Pollutants == nil {
		t.Error("Pollutants is nil")
	}
}

func TestRefreshCityNotFound(t *testing.T) {
	t.Parallel()
	svc := setupTestService(t, &fakeUpstream{})
	pub := &capturingPublisher{}
	refresher := NewRefresher(svc, pub, 0, nil)

	if err := refresher.refreshCity(context.Background(), "Nowhere"); err == nil {
		t.Error("refreshCity() succeeded for unknown city")
	}
	if len(pub.captured()) != 0 {
		t.Error("event published for failed refresh")
	}
}

func TestTrackedCitiesDedupes(t *testing.T) {
	t.Parallel()
	svc := setupTestService(t, &fakeUpstream{})
	refresher := NewRefresher(svc, nil, 0, []string{"delhi", "Gurugram", " Gurugram ", ""})

	cities := refresher.trackedCities(context.Background())

	seen := map[string]int{}
	for _, city := range cities {
		seen[strings.ToLower(city)]++
	}
	for city, count := range seen {
		if count > 1 {
			t.Errorf("city %q appears %d times", city, count)
		}
	}
	// "delhi" is already on the map list; "Gurugram" is new.
	if seen["gurugram"] != 1 {
		t.Error("extra city missing from tracked set")
	}
	if len(cities) != len(mapCities)+1 {
		t.Errorf("len(cities) = %d, want %d", len(cities), len(mapCities)+1)
	}
}

func TestRefresherDisabledParksUntilShutdown(t *testing.T) {
	t.Parallel()
	svc := setupTestService(t, &fakeUpstream{})
	refresher := NewRefresher(svc, nil, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- refresher.Serve(ctx) }()

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}
