// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package weather

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/models"
)

// ReadingPublisher emits a reading event for downstream consumers (the
// persistence consumer and the websocket hub). The events package
// satisfies it.
type ReadingPublisher interface {
	PublishReading(ctx context.Context, event *models.ReadingEvent) error
}

// Refresher periodically fetches AQI for the tracked city set and
// publishes a reading event per city. Runs under the data supervisor;
// restart on failure is the supervisor's job, so Serve only returns on
// context cancellation or a setup-level fault.
type Refresher struct {
	service   *Service
	publisher ReadingPublisher
	interval  time.Duration
	extra     []string
}

// NewRefresher creates the city refresher. interval <= 0 disables it;
// Serve then just parks until shutdown so the supervision tree shape
// stays the same either way.
func NewRefresher(service *Service, publisher ReadingPublisher, interval time.Duration, extraCities []string) *Refresher {
	return &Refresher{
		service:   service,
		publisher: publisher,
		interval:  interval,
		extra:     extraCities,
	}
}

// Serve implements suture.Service.
func (r *Refresher) Serve(ctx context.Context) error {
	if r.interval <= 0 {
		logging.Info().Msg("City refresher disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	logging.Info().Dur("interval", r.interval).Msg("City refresher started")

	// First pass immediately so the map view has data right after boot.
	r.refreshAll(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.refreshAll(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (r *Refresher) String() string {
	return "city-refresher"
}

func (r *Refresher) refreshAll(ctx context.Context) {
	cities := r.trackedCities(ctx)
	refreshed := 0
	for _, city := range cities {
		if ctx.Err() != nil {
			return
		}
		if err := r.refreshCity(ctx, city); err != nil {
			logging.Warn().Err(err).Str("city", city).Msg("City refresh failed")
			continue
		}
		refreshed++
	}
	logging.Info().Int("refreshed", refreshed).Int("tracked", len(cities)).Msg("City refresh pass complete")
}

// trackedCities is the map list, configured extras and every favorited
// city, deduplicated case-insensitively.
func (r *Refresher) trackedCities(ctx context.Context) []string {
	seen := map[string]bool{}
	cities := []string{}
	add := func(city string) {
		city = strings.TrimSpace(city)
		key := strings.ToLower(city)
		if city == "" || seen[key] {
			return
		}
		seen[key] = true
		cities = append(cities, city)
	}

	for _, city := range mapCities {
		add(city.Name)
	}
	for _, city := range r.extra {
		add(city)
	}

	if r.service.db != nil {
		favorites, err := r.service.db.DistinctFavoriteCities(ctx)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to load favorited cities for refresh")
		} else {
			for _, city := range favorites {
				add(city)
			}
		}
	}
	return cities
}

func (r *Refresher) refreshCity(ctx context.Context, city string) error {
	snapshot, err := r.service.CityAQI(ctx, city)
	if err != nil {
		return err
	}
	if r.publisher == nil {
		return nil
	}

	event := &models.ReadingEvent{
		EventID:    uuid.NewString(),
		City:       snapshot.City,
		AQI:        snapshot.AQI,
		Category:   snapshot.Category.Category,
		Dominant:   snapshot.Dominant,
		Pollutants: snapshot.Pollutants,
		ObservedAt: snapshot.FetchedAt,
	}
	return r.publisher.PublishReading(ctx, event)
}
