// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package models

import (
	"time"
)

// Tip categories group advice by where it applies.
const (
	TipCategoryHealth  = "health"
	TipCategoryOutdoor = "outdoor"
	TipCategoryHome    = "home"
	TipCategoryGeneral = "general"
)

// Tip is one entry of the advice catalog. A tip applies when the current
// AQI falls inside [MinAQI, MaxAQI]; Pollutant optionally narrows it to
// readings dominated by that pollutant.
type Tip struct {
	ID        int64     `json:"id"`
	Category  string    `json:"category"`
	Pollutant string    `json:"pollutant,omitempty"`
	MinAQI    float64   `json:"min_aqi"`
	MaxAQI    float64   `json:"max_aqi"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Matches reports whether the tip applies at the given AQI.
func (t *Tip) Matches(aqi float64) bool {
	return aqi >= t.MinAQI && aqi <= t.MaxAQI
}

// CreateTipRequest adds a tip to the catalog (admin only).
type CreateTipRequest struct {
	Category  string  `json:"category" validate:"required,oneof=health outdoor home general"`
	Pollutant string  `json:"pollutant" validate:"omitempty,pollutant"`
	MinAQI    float64 `json:"min_aqi" validate:"gte=0"`
	MaxAQI    float64 `json:"max_aqi" validate:"gtefield=MinAQI"`
	Text      string  `json:"text" validate:"required,min=10,max=500"`
}

// RelevantTipsRequest asks for the tips that apply right now. When City
// is set the server resolves the live AQI and dominant pollutant for it;
// otherwise AQI and Pollutant are taken from the request as-is.
type RelevantTipsRequest struct {
	City      string  `json:"city" validate:"omitempty,max=50"`
	AQI       float64 `json:"aqi" validate:"gte=0"`
	Pollutant string  `json:"pollutant" validate:"omitempty,pollutant"`
}
