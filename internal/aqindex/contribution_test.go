// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package aqindex

import (
	"math"
	"testing"
)

func TestDecomposeWithImportances(t *testing.T) {
	t.Parallel()

	features := []string{"PM2.5", "PM10", "CO"}
	values := []float64{35, 80, 900}
	importances := []float64{0.5, 0.3, 0.2}

	got := Decompose(200, features, values, importances)

	want := map[string]float64{"PM2.5": 100, "PM10": 60, "CO": 40}
	for k, w := range want {
		if !almostEqual(got[k], w) {
			t.Errorf("Decompose[%q] = %v, want %v", k, got[k], w)
		}
	}
}

// TestDecomposeUnnormalizedImportances verifies the importance sum is the
// normalizer, not an assumed 1.0.
func TestDecomposeUnnormalizedImportances(t *testing.T) {
	t.Parallel()

	features := []string{"a", "b"}
	got := Decompose(100, features, []float64{1, 1}, []float64{3, 1})

	if !almostEqual(got["a"], 75) || !almostEqual(got["b"], 25) {
		t.Errorf("Decompose = %v, want a=75 b=25", got)
	}
}

func TestDecomposeZeroImportanceSum(t *testing.T) {
	t.Parallel()

	features := []string{"PM2.5", "PM10", "CO", "SO2"}
	got := Decompose(100, features, []float64{1, 2, 3, 4}, []float64{0, 0, 0, 0})

	for _, f := range features {
		if !almostEqual(got[f], 25) {
			t.Errorf("Decompose[%q] = %v, want uniform 25", f, got[f])
		}
	}
}

func TestDecomposeProportionalFallback(t *testing.T) {
	t.Parallel()

	features := []string{"PM2.5", "PM10", "NO"}
	values := []float64{30, 60, 10}

	// nil importances: allocate by clamped value share.
	got := Decompose(100, features, values, nil)

	if !almostEqual(got["PM2.5"], 30) || !almostEqual(got["PM10"], 60) || !almostEqual(got["NO"], 10) {
		t.Errorf("Decompose = %v, want proportional 30/60/10", got)
	}
}

// TestDecomposeLengthMismatch verifies mismatched importances fall through to
// the proportional path instead of being trusted.
func TestDecomposeLengthMismatch(t *testing.T) {
	t.Parallel()

	features := []string{"PM2.5", "PM10"}
	got := Decompose(90, features, []float64{1, 2}, []float64{0.5})

	if !almostEqual(got["PM2.5"], 30) || !almostEqual(got["PM10"], 60) {
		t.Errorf("Decompose = %v, want proportional 30/60", got)
	}
}

func TestDecomposeNegativeValuesClamped(t *testing.T) {
	t.Parallel()

	features := []string{"PM2.5", "PM10"}
	got := Decompose(100, features, []float64{-40, 50}, nil)

	// -40 clamps to 0, so PM10 carries the whole allocation.
	if !almostEqual(got["PM2.5"], 0) || !almostEqual(got["PM10"], 100) {
		t.Errorf("Decompose = %v, want PM2.5=0 PM10=100", got)
	}
}

func TestDecomposeAllZeroValues(t *testing.T) {
	t.Parallel()

	features := []string{"PM2.5", "PM10", "CO"}
	got := Decompose(100, features, []float64{0, 0, 0}, nil)

	want := round2(100.0 / 3)
	for _, f := range features {
		if !almostEqual(got[f], want) {
			t.Errorf("Decompose[%q] = %v, want even split %v", f, got[f], want)
		}
	}
}

func TestDecomposeRounding(t *testing.T) {
	t.Parallel()

	got := Decompose(100, []string{"a", "b", "c"}, []float64{1, 1, 1}, nil)
	for f, v := range got {
		scaled := v * 100
		if !almostEqual(scaled, math.Round(scaled)) {
			t.Errorf("Decompose[%q] = %v, not rounded to 2 decimals", f, v)
		}
	}
}

func TestDecomposeEmptyFeatures(t *testing.T) {
	t.Parallel()

	got := Decompose(100, nil, nil, nil)
	if len(got) != 0 {
		t.Errorf("Decompose with no features = %v, want empty map", got)
	}
}
