// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package models

import (
	"github.com/tomtom215/aerographus/internal/aqindex"
)

// PredictionResponse is the payload of the predict endpoint. The request
// body is the raw pollutant reading itself (a JSON object keyed by
// pollutant name), so there is no request struct.
//
// Source is "model" for real inference and "heuristic" when the service
// answered from the sub-index fallback while no model bundle was loaded.
type PredictionResponse struct {
	Success       bool               `json:"success"`
	PredictedAQI  float64            `json:"predicted_aqi"`
	CategoryInfo  aqindex.Category   `json:"category_info"`
	SubIndices    map[string]float64 `json:"subindices"`
	Contributions map[string]float64 `json:"contributions,omitempty"`
	Source        string             `json:"source"`
}
