// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package aqindex

// Decompose allocates a predicted AQI across the features that produced it,
// returning a feature -> contribution map with every value rounded to 2
// decimals.
//
// When the predictor exposes per-feature importance weights matching the
// feature order in length, each contribution is predicted * importance_i
// normalized by the importance sum; a non-positive sum degrades to a uniform
// split. Without usable importances the allocation is proportional to the
// clamped (non-negative) input values; an all-zero reading also degrades to a
// uniform split.
//
// features and values must be positionally aligned. An empty feature list
// returns an empty map.
func Decompose(predicted float64, features []string, values, importances []float64) map[string]float64 {
	n := len(features)
	if n == 0 {
		return map[string]float64{}
	}

	out := make(map[string]float64, n)

	if len(importances) == n {
		var sum float64
		for _, imp := range importances {
			sum += imp
		}
		if sum <= 0 {
			uniform(out, features, predicted)
			return out
		}
		for i, f := range features {
			out[f] = round2(predicted * importances[i] / sum)
		}
		return out
	}

	// Proportional fallback on the raw reading.
	clamped := make([]float64, n)
	var total float64
	for i := range features {
		v := 0.0
		if i < len(values) && values[i] > 0 {
			v = values[i]
		}
		clamped[i] = v
		total += v
	}
	if total <= 0 {
		uniform(out, features, predicted)
		return out
	}
	for i, f := range features {
		out[f] = round2(predicted * clamped[i] / total)
	}
	return out
}

func uniform(out map[string]float64, features []string, predicted float64) {
	per := round2(predicted / float64(len(features)))
	for _, f := range features {
		out[f] = per
	}
}
