// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/aerographus/internal/auth"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/inference"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/models"
)

// Predict handles POST /api/v1/predict. The request body is the raw
// pollutant reading, a JSON object keyed by pollutant name. All twelve
// features are validated up front so the client learns about every
// missing and malformed field in one round trip.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, codeAuth, "not authenticated", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil || len(body) > maxBodySize {
		writeError(w, r, http.StatusBadRequest, codeValidation, "failed to read request body", nil)
		return
	}
	var reading map[string]any
	if err := json.Unmarshal(body, &reading); err != nil {
		writeError(w, r, http.StatusBadRequest, codeValidation, "request body must be a JSON object of pollutant readings", nil)
		return
	}

	// Validate against the canonical feature order before touching the
	// model, so input errors never depend on loader state.
	if _, err := inference.BuildVector(reading, inference.DefaultFeatureOrder()); err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	pred, err := h.engine.Predict(r.Context(), reading)
	if err != nil {
		if errors.Is(err, inference.ErrModelNotReady) && h.cfg.Model.HeuristicFallback {
			pred = h.engine.HeuristicEstimate(reading)
		} else {
			respondError(w, r, err)
			return
		}
	}

	h.recordPrediction(r, claims.UserID, pred, reading)

	resp := models.PredictionResponse{
		Success:       true,
		PredictedAQI:  pred.AQI,
		CategoryInfo:  pred.Category,
		SubIndices:    pred.SubIndices,
		Contributions: pred.Contributions,
		Source:        pred.Source,
	}
	writeSuccess(w, r, http.StatusOK, resp, time.Since(start), false)
}

// recordPrediction emits the prediction event, or persists it directly
// when the event stream is disabled. Neither path may fail the request;
// the client already has its answer.
func (h *Handlers) recordPrediction(r *http.Request, userID string, pred *inference.Prediction, reading map[string]any) {
	numeric := make(map[string]float64, len(reading))
	for name, raw := range reading {
		if v, ok := raw.(float64); ok {
			numeric[name] = v
		}
	}

	if h.publisher != nil && h.cfg.Events.Enabled {
		event := &models.PredictionEvent{
			EventID:      uuid.NewString(),
			UserID:       userID,
			PredictedAQI: pred.AQI,
			Category:     pred.Category.Category,
			SubIndices:   pred.SubIndices,
			Reading:      numeric,
			Source:       pred.Source,
			PredictedAt:  time.Now().UTC(),
		}
		err := h.publisher.PublishPrediction(r.Context(), event)
		if err == nil {
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Prediction event publish failed, persisting directly")
	}

	readingJSON, err := json.Marshal(numeric)
	if err != nil {
		readingJSON = []byte("{}")
	}
	record := &database.PredictionRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		PredictedAQI: pred.AQI,
		Category:     pred.Category.Category,
		Source:       pred.Source,
		Reading:      string(readingJSON),
	}
	if err := h.db.InsertPrediction(r.Context(), record); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to persist prediction")
	}
}

// ModelStatus handles GET /api/v1/model/status.
func (h *Handlers) ModelStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.engine.Cache().Status()
	writeSuccess(w, r, http.StatusOK, status, time.Since(start), false)
}

// modelReloadResult reports whether the reload was actually triggered;
// a load already in flight is left alone.
type modelReloadResult struct {
	Triggered bool             `json:"triggered"`
	Status    inference.Status `json:"status"`
}

// ModelReload handles POST /api/v1/model/reload (admin only).
func (h *Handlers) ModelReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	triggered := h.engine.Cache().ForceReload()
	if triggered {
		h.engine.Cache().WarmUp(0)
		logging.Ctx(r.Context()).Info().Msg("Model reload triggered")
	}

	result := modelReloadResult{Triggered: triggered, Status: h.engine.Cache().Status()}
	writeSuccess(w, r, http.StatusOK, result, time.Since(start), false)
}
