// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package inference

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// BuildVector assembles the ordered numeric vector for a reading. Every
// feature is inspected before the function fails, so a client learns
// about all missing and all malformed fields in one response.
func BuildVector(reading map[string]any, order []string) ([]float64, error) {
	vec := make([]float64, 0, len(order))
	var missing, invalid []string

	for _, name := range order {
		raw, ok := reading[name]
		if !ok || raw == nil {
			missing = append(missing, name)
			continue
		}
		v, ok := coerceNumeric(raw)
		if !ok {
			invalid = append(invalid, name)
			continue
		}
		vec = append(vec, v)
	}

	if len(missing) > 0 || len(invalid) > 0 {
		return nil, &InvalidFeatureInputError{Missing: missing, Invalid: invalid}
	}
	return vec, nil
}

// coerceNumeric accepts the numeric shapes a decoded JSON body can carry.
// Booleans and non-finite values are rejected rather than silently cast.
func coerceNumeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, isFinite(v)
	case float32:
		return float64(v), isFinite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil && isFinite(f)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil && isFinite(f)
	default:
		return 0, false
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
