// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package models

import "time"

// Event subjects under the AQI_EVENTS stream.
const (
	SubjectPredictions = "aqi.predictions"
	SubjectReadings    = "aqi.readings"
)

// ReadingEvent is published when the city refresher (or any other
// producer) observes a fresh air quality reading for a city. The
// consumer persists it to city_readings and pushes it to websocket
// subscribers.
type ReadingEvent struct {
	EventID    string                   `json:"event_id"`
	City       string                   `json:"city"`
	AQI        float64                  `json:"aqi"`
	Category   string                   `json:"category"`
	Dominant   string                   `json:"dominant_pollutant,omitempty"`
	Pollutants *PollutantConcentrations `json:"pollutants,omitempty"`
	ObservedAt time.Time                `json:"observed_at"`
}

// PredictionEvent is published after each successful prediction. The
// consumer persists it to prediction_history and pushes it to
// websocket subscribers.
type PredictionEvent struct {
	EventID      string             `json:"event_id"`
	UserID       string             `json:"user_id,omitempty"`
	PredictedAQI float64            `json:"predicted_aqi"`
	Category     string             `json:"category"`
	SubIndices   map[string]float64 `json:"subindices,omitempty"`
	Reading      map[string]float64 `json:"reading,omitempty"`
	Source       string             `json:"source"`
	PredictedAt  time.Time          `json:"predicted_at"`
}
