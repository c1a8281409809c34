// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/aerographus/internal/models"
)

// cityParam extracts and bounds-checks the {city} route parameter.
func cityParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	city := strings.TrimSpace(chi.URLParam(r, "city"))
	if city == "" || len(city) > 50 {
		writeError(w, r, http.StatusBadRequest, codeValidation,
			"city must be 1-50 characters", nil)
		return "", false
	}
	return city, true
}

// coordParams extracts lat/lon query parameters.
func coordParams(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	var err error
	lat, err = strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		writeError(w, r, http.StatusBadRequest, codeValidation,
			"lat must be a number in [-90, 90]", nil)
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		writeError(w, r, http.StatusBadRequest, codeValidation,
			"lon must be a number in [-180, 180]", nil)
		return 0, 0, false
	}
	return lat, lon, true
}

// CityAQI handles GET /api/v1/cities/{city}/aqi.
func (h *Handlers) CityAQI(w http.ResponseWriter, r *http.Request) {
	city, ok := cityParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	current, err := h.weather.CityAQI(r.Context(), city)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, current, time.Since(start), false)
}

// CityWeather handles GET /api/v1/cities/{city}/weather.
func (h *Handlers) CityWeather(w http.ResponseWriter, r *http.Request) {
	city, ok := cityParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	snapshot, err := h.weather.CityWeather(r.Context(), city)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, snapshot, time.Since(start), false)
}

// CityForecast handles GET /api/v1/cities/{city}/forecast.
func (h *Handlers) CityForecast(w http.ResponseWriter, r *http.Request) {
	city, ok := cityParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	forecast, err := h.weather.CityForecast(r.Context(), city)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, forecast, time.Since(start), false)
}

// CityHistory handles GET /api/v1/cities/{city}/history?hours=&limit=.
func (h *Handlers) CityHistory(w http.ResponseWriter, r *http.Request) {
	city, ok := cityParam(w, r)
	if !ok {
		return
	}

	hours := 24
	if raw := r.URL.Query().Get("hours"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 24*30 {
			writeError(w, r, http.StatusBadRequest, codeValidation,
				"hours must be an integer in [1, 720]", nil)
			return
		}
		hours = v
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 1000 {
			writeError(w, r, http.StatusBadRequest, codeValidation,
				"limit must be an integer in [1, 1000]", nil)
			return
		}
		limit = v
	}

	start := time.Now()
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	history, err := h.weather.CityHistory(r.Context(), city, since, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if history == nil {
		history = []models.HistoricalReading{}
	}
	writeSuccess(w, r, http.StatusOK, history, time.Since(start), false)
}

// CityOverview handles GET /api/v1/cities/{city}.
func (h *Handlers) CityOverview(w http.ResponseWriter, r *http.Request) {
	city, ok := cityParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	overview, err := h.weather.CityOverview(r.Context(), city)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, overview, time.Since(start), false)
}

// Pollutants handles GET /api/v1/pollutants?lat=&lon=.
func (h *Handlers) Pollutants(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coordParams(w, r)
	if !ok {
		return
	}

	start := time.Now()
	concentrations, err := h.weather.Pollutants(r.Context(), lat, lon)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, concentrations, time.Since(start), false)
}

// TopCities handles GET /api/v1/cities/top.
func (h *Handlers) TopCities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	view, err := h.weather.TopCities(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, view, time.Since(start), false)
}

// MapCities handles GET /api/v1/cities/map.
func (h *Handlers) MapCities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	points, err := h.weather.MapCities(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if points == nil {
		points = []models.CityMapPoint{}
	}
	writeSuccess(w, r, http.StatusOK, points, time.Since(start), false)
}

// Autocomplete handles GET /api/v1/cities/autocomplete?query=&limit=.
func (h *Handlers) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 25 {
			writeError(w, r, http.StatusBadRequest, codeValidation,
				"limit must be an integer in [1, 25]", nil)
			return
		}
		limit = v
	}

	start := time.Now()
	suggestions, err := h.weather.Autocomplete(r.Context(), query, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeSuccess(w, r, http.StatusOK, suggestions, time.Since(start), false)
}

// ReverseGeocode handles GET /api/v1/cities/reverse?lat=&lon=.
func (h *Handlers) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := coordParams(w, r)
	if !ok {
		return
	}

	start := time.Now()
	place, err := h.weather.ReverseGeocode(r.Context(), lat, lon)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, place, time.Since(start), false)
}
