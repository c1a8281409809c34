// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/aerographus/internal/models"
)

// ListTips handles GET /api/v1/tips.
func (h *Handlers) ListTips(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	tips, err := h.db.ListTips(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if tips == nil {
		tips = []models.Tip{}
	}
	writeSuccess(w, r, http.StatusOK, tips, time.Since(start), false)
}

// relevantTipsResult pairs the matched tips with the conditions they
// were matched against, so a client can render "at AQI 287 (PM10)".
type relevantTipsResult struct {
	City      string       `json:"city,omitempty"`
	AQI       float64      `json:"aqi"`
	Pollutant string       `json:"pollutant,omitempty"`
	Tips      []models.Tip `json:"tips"`
}

// RelevantTips handles POST /api/v1/tips/relevant. With a city in the
// request the live reading decides AQI and dominant pollutant;
// otherwise both come from the request body.
func (h *Handlers) RelevantTips(w http.ResponseWriter, r *http.Request) {
	var req models.RelevantTipsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	aqi, pollutant := req.AQI, req.Pollutant
	if req.City != "" {
		current, err := h.weather.CityAQI(r.Context(), req.City)
		if err != nil {
			respondError(w, r, err)
			return
		}
		aqi, pollutant = current.AQI, current.Dominant
	}

	tips, err := h.db.RelevantTips(r.Context(), aqi, pollutant)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if tips == nil {
		tips = []models.Tip{}
	}

	result := relevantTipsResult{City: req.City, AQI: aqi, Pollutant: pollutant, Tips: tips}
	writeSuccess(w, r, http.StatusOK, result, time.Since(start), false)
}

// CreateTip handles POST /api/v1/tips (admin only; the authz middleware
// gates the route).
func (h *Handlers) CreateTip(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTipRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	tip, err := h.db.CreateTip(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, tip, time.Since(start), false)
}
