// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package weather

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/aerographus/internal/aqindex"
	"github.com/tomtom215/aerographus/internal/cache"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/models"
)

// Cache kinds. Each kind is an independent key namespace and metrics
// label.
const (
	cacheKindGeocode = "geocode"
	cacheKindCityAQI = "city_aqi"
	cacheKindWeather = "weather"
	cacheKindFcst    = "forecast"
)

// Service is the cached weather/AQI proxy the API handlers call.
type Service struct {
	client *Client
	store  *cache.Store
	db     *database.DB
	cfg    *config.WeatherConfig
}

// NewService wires the proxy from its parts. db may be nil when history
// persistence is not wanted (tests).
func NewService(client *Client, store *cache.Store, db *database.DB, cfg *config.WeatherConfig) *Service {
	return &Service{client: client, store: store, db: db, cfg: cfg}
}

// cachedFetch looks kind:key up in the store and falls back to fetch,
// caching the result for ttl. Cache errors other than a miss degrade to
// a fetch, never to a request failure.
func cachedFetch[T any](ctx context.Context, s *Service, kind, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	err := s.store.GetJSON(kind, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logging.Warn().Err(err).Str("kind", kind).Msg("Cache read failed")
	}

	fresh, err := fetch(ctx)
	if err != nil {
		return fresh, err
	}
	if err := s.store.SetJSON(kind, key, fresh, ttl); err != nil {
		logging.Warn().Err(err).Str("kind", kind).Msg("Cache write failed")
	}
	return fresh, nil
}

// resolveCity geocodes a city name through the long-TTL cache.
func (s *Service) resolveCity(ctx context.Context, city string) (*models.GeocodeResult, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrCityNotFound
	}

	ttl := s.cfg.GeocodeCacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	result, err := cachedFetch(ctx, s, cacheKindGeocode, strings.ToLower(city), ttl,
		func(ctx context.Context) (models.GeocodeResult, error) {
			matches, err := s.client.Geocode(ctx, city, 1)
			if err != nil {
				return models.GeocodeResult{}, err
			}
			if len(matches) == 0 {
				return models.GeocodeResult{}, ErrCityNotFound
			}
			return matches[0], nil
		})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CityAQI returns the computed air quality snapshot for a city.
func (s *Service) CityAQI(ctx context.Context, city string) (*models.CityAQI, error) {
	loc, err := s.resolveCity(ctx, city)
	if err != nil {
		return nil, err
	}
	return s.cityAQIAt(ctx, displayName(city, loc.Name), loc.Lat, loc.Lon)
}

// cityAQIAt computes the AQI snapshot for known coordinates. The map
// view calls this directly with its pinned coordinates.
func (s *Service) cityAQIAt(ctx context.Context, name string, lat, lon float64) (*models.CityAQI, error) {
	result, err := cachedFetch(ctx, s, cacheKindCityAQI, strings.ToLower(name), s.cacheTTL(),
		func(ctx context.Context) (models.CityAQI, error) {
			sample, err := s.client.AirPollution(ctx, lat, lon)
			if err != nil {
				return models.CityAQI{}, err
			}
			snapshot := buildCityAQI(name, &sample.Components)
			snapshot.Coord = &models.Coordinates{Lat: lat, Lon: lon}
			snapshot.FetchedAt = sample.Time
			return snapshot, nil
		})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// buildCityAQI derives the CPCB view from component concentrations:
// AQI is the maximum sub-index over the reported components, the
// dominant pollutant the one that produced it.
func buildCityAQI(name string, pollutants *models.PollutantConcentrations) models.CityAQI {
	subs := aqindex.AllSubIndices(pollutants.ToMap())

	var maxAQI float64
	var dominant string
	for pollutant, si := range subs {
		if si > maxAQI || (si == maxAQI && pollutant < dominant) {
			maxAQI = si
			dominant = pollutant
		}
	}

	return models.CityAQI{
		City:       name,
		AQI:        maxAQI,
		Category:   aqindex.ClassifyValue(maxAQI),
		Dominant:   dominant,
		SubIndices: subs,
		Pollutants: pollutants,
	}
}

// CityWeather returns current conditions for a city.
func (s *Service) CityWeather(ctx context.Context, city string) (*models.WeatherSnapshot, error) {
	loc, err := s.resolveCity(ctx, city)
	if err != nil {
		return nil, err
	}

	name := displayName(city, loc.Name)
	result, err := cachedFetch(ctx, s, cacheKindWeather, strings.ToLower(name), s.cacheTTL(),
		func(ctx context.Context) (models.WeatherSnapshot, error) {
			snapshot, err := s.client.CurrentWeather(ctx, loc.Lat, loc.Lon)
			if err != nil {
				return models.WeatherSnapshot{}, err
			}
			snapshot.City = name
			return *snapshot, nil
		})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Forecast is the city air quality outlook: an hourly slice plus a
// per-day rollup.
type Forecast struct {
	City   string                 `json:"city"`
	Hourly []models.ForecastEntry `json:"hourly"`
	Daily  []DailySummary         `json:"daily"`
}

// DailySummary aggregates one forecast day.
type DailySummary struct {
	Date     string           `json:"date"`
	AvgAQI   float64          `json:"avg_aqi"`
	MaxAQI   float64          `json:"max_aqi"`
	Category aqindex.Category `json:"category"`
}

// hourlyForecastWindow caps the hourly slice served to clients; the
// daily rollup still covers the full upstream horizon.
const hourlyForecastWindow = 24

// CityForecast returns the air quality forecast for a city.
func (s *Service) CityForecast(ctx context.Context, city string) (*Forecast, error) {
	loc, err := s.resolveCity(ctx, city)
	if err != nil {
		return nil, err
	}

	name := displayName(city, loc.Name)
	result, err := cachedFetch(ctx, s, cacheKindFcst, strings.ToLower(name), s.cacheTTL(),
		func(ctx context.Context) (Forecast, error) {
			samples, err := s.client.AirPollutionForecast(ctx, loc.Lat, loc.Lon)
			if err != nil {
				return Forecast{}, err
			}
			return buildForecast(name, samples), nil
		})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func buildForecast(name string, samples []PollutionSample) Forecast {
	forecast := Forecast{City: name, Hourly: []models.ForecastEntry{}, Daily: []DailySummary{}}

	type dayAgg struct {
		sum   float64
		max   float64
		count int
	}
	days := map[string]*dayAgg{}
	var dayOrder []string

	for _, sample := range samples {
		pollutants := sample.Components
		snapshot := buildCityAQI(name, &pollutants)

		if len(forecast.Hourly) < hourlyForecastWindow {
			forecast.Hourly = append(forecast.Hourly, models.ForecastEntry{
				Time:       sample.Time,
				AQI:        snapshot.AQI,
				Category:   snapshot.Category,
				Pollutants: &pollutants,
			})
		}

		date := sample.Time.UTC().Format("2006-01-02")
		agg, ok := days[date]
		if !ok {
			agg = &dayAgg{}
			days[date] = agg
			dayOrder = append(dayOrder, date)
		}
		agg.sum += snapshot.AQI
		agg.count++
		if snapshot.AQI > agg.max {
			agg.max = snapshot.AQI
		}
	}

	for _, date := range dayOrder {
		agg := days[date]
		avg := agg.sum / float64(agg.count)
		forecast.Daily = append(forecast.Daily, DailySummary{
			Date:     date,
			AvgAQI:   round1(avg),
			MaxAQI:   agg.max,
			Category: aqindex.ClassifyValue(agg.max),
		})
	}
	return forecast
}

// CityOverview bundles AQI and current weather. A weather failure
// degrades to an AQI-only view; an AQI failure fails the request.
func (s *Service) CityOverview(ctx context.Context, city string) (*models.CityOverview, error) {
	snapshot, err := s.CityAQI(ctx, city)
	if err != nil {
		return nil, err
	}

	overview := &models.CityOverview{City: snapshot.City, AQI: snapshot}
	weather, err := s.CityWeather(ctx, city)
	if err != nil {
		logging.Warn().Err(err).Str("city", city).Msg("Weather unavailable for city overview")
	} else {
		overview.Weather = weather
	}
	return overview, nil
}

// CityHistory returns persisted readings for a city.
func (s *Service) CityHistory(ctx context.Context, city string, since time.Time, limit int) ([]models.HistoricalReading, error) {
	if s.db == nil {
		return []models.HistoricalReading{}, nil
	}
	return s.db.CityHistory(ctx, city, since, limit)
}

// Pollutants returns the raw component concentrations at a point,
// mapped to the 12-pollutant form. Components the upstream does not
// provide stay null.
func (s *Service) Pollutants(ctx context.Context, lat, lon float64) (*models.PollutantConcentrations, error) {
	sample, err := s.client.AirPollution(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return &sample.Components, nil
}

// TopCitiesView is the ranked city listing: fixed Indian and world
// lists, each sorted descending by AQI.
type TopCitiesView struct {
	Indian []models.TopCityEntry `json:"indian"`
	World  []models.TopCityEntry `json:"world"`
}

// TopCities fetches the fixed city lists concurrently. Cities whose
// fetch fails are skipped, not errors; an empty upstream still yields
// empty lists rather than a failure.
func (s *Service) TopCities(ctx context.Context) (*TopCitiesView, error) {
	return &TopCitiesView{
		Indian: s.fetchRanked(ctx, indianCities),
		World:  s.fetchRanked(ctx, worldCities),
	}, nil
}

func (s *Service) fetchRanked(ctx context.Context, cities []trackedCity) []models.TopCityEntry {
	concurrency := s.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	var mu sync.Mutex
	entries := []models.TopCityEntry{}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	for _, city := range cities {
		wg.Add(1)
		sem <- struct{}{}
		go func(city trackedCity) {
			defer wg.Done()
			defer func() { <-sem }()

			snapshot, err := s.CityAQI(ctx, city.Name)
			if err != nil {
				logging.Debug().Err(err).Str("city", city.Name).Msg("Skipping city in ranked listing")
				return
			}
			mu.Lock()
			entries = append(entries, models.TopCityEntry{
				City:     snapshot.City,
				Country:  city.Country,
				AQI:      snapshot.AQI,
				Category: snapshot.Category,
			})
			mu.Unlock()
		}(city)
	}
	wg.Wait()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AQI != entries[j].AQI {
			return entries[i].AQI > entries[j].AQI
		}
		return entries[i].City < entries[j].City
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// MapCities returns the fixed map list with AQI attached. Failed
// cities are skipped.
func (s *Service) MapCities(ctx context.Context) ([]models.CityMapPoint, error) {
	points := []models.CityMapPoint{}
	for _, city := range mapCities {
		snapshot, err := s.cityAQIAt(ctx, city.Name, city.Lat, city.Lon)
		if err != nil {
			logging.Debug().Err(err).Str("city", city.Name).Msg("Skipping city on map view")
			continue
		}
		points = append(points, models.CityMapPoint{
			City:     city.Name,
			Lat:      city.Lat,
			Lon:      city.Lon,
			AQI:      snapshot.AQI,
			Category: snapshot.Category,
		})
	}
	return points, nil
}

// autocompleteDefaultLimit applies when the caller passes no limit.
const autocompleteDefaultLimit = 5

// Autocomplete suggests city names for a partial query. Queries under
// two characters return an empty list without touching the upstream.
func (s *Service) Autocomplete(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return []string{}, nil
	}
	if limit <= 0 {
		limit = autocompleteDefaultLimit
	}

	// Over-fetch so deduplication still fills the limit.
	matches, err := s.client.Geocode(ctx, query, limit*2)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	suggestions := []string{}
	for _, m := range matches {
		key := strings.ToLower(m.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		suggestions = append(suggestions, formatSuggestion(m))
		if len(suggestions) >= limit {
			break
		}
	}
	return suggestions, nil
}

func formatSuggestion(m models.GeocodeResult) string {
	parts := []string{m.Name}
	if m.State != "" {
		parts = append(parts, m.State)
	}
	if m.Country != "" {
		parts = append(parts, m.Country)
	}
	return strings.Join(parts, ", ")
}

// ReverseGeocode resolves coordinates to the nearest known place.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodeResult, error) {
	matches, err := s.client.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrCityNotFound
	}
	return &matches[0], nil
}

func (s *Service) cacheTTL() time.Duration {
	if s.cfg.CacheTTL > 0 {
		return s.cfg.CacheTTL
	}
	return 10 * time.Minute
}

// displayName prefers the geocoder's canonical spelling but keeps the
// caller's query when the geocoder returns something unusable.
func displayName(query, resolved string) string {
	if resolved != "" {
		return resolved
	}
	return strings.TrimSpace(query)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
