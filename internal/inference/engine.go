// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package inference

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/aerographus/internal/aqindex"
	"github.com/tomtom215/aerographus/internal/metrics"
)

// Prediction sources reported to clients.
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
)

// Prediction is a complete inference result: the AQI estimate plus the
// context a client renders alongside it.
type Prediction struct {
	AQI           float64
	Category      aqindex.Category
	SubIndices    map[string]float64
	Contributions map[string]float64
	Source        string
}

// Engine turns pollutant readings into AQI predictions.
type Engine struct {
	cache *ModelCache
}

// NewEngine builds an engine over the given model cache.
func NewEngine(cache *ModelCache) *Engine {
	return &Engine{cache: cache}
}

// Cache exposes the underlying model cache for status and reload
// endpoints.
func (e *Engine) Cache() *ModelCache {
	return e.cache
}

// Predict runs the full inference path for one reading. It blocks on a
// model load when no bundle is published yet; the returned AQI is always
// finite and rounded to two decimals.
func (e *Engine) Predict(ctx context.Context, reading map[string]any) (*Prediction, error) {
	start := time.Now()

	if !e.cache.EnsureReady(ctx, true) {
		metrics.RecordPrediction("not_ready", 0, time.Since(start))
		return nil, ErrModelNotReady
	}
	bundle := e.cache.Bundle()
	if bundle == nil {
		metrics.RecordPrediction("not_ready", 0, time.Since(start))
		return nil, ErrModelNotReady
	}

	vec, err := BuildVector(reading, bundle.FeatureOrder)
	if err != nil {
		metrics.RecordPrediction("invalid_input", 0, time.Since(start))
		return nil, err
	}

	if bundle.Imputer != nil {
		vec, err = bundle.Imputer.Transform(vec)
		if err != nil {
			metrics.RecordPrediction("failed", 0, time.Since(start))
			return nil, fmt.Errorf("%w: impute: %v", ErrPredictionFailed, err)
		}
	} else if i := firstNonFinite(vec); i >= 0 {
		// Without an imputer there is nothing to fill gaps with.
		metrics.RecordPrediction("failed", 0, time.Since(start))
		return nil, fmt.Errorf("%w: feature %s is not finite and no imputer is fitted", ErrPredictionFailed, bundle.FeatureOrder[i])
	}

	raw, err := bundle.Predictor.Predict(vec)
	if err != nil {
		metrics.RecordPrediction("failed", 0, time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	if !isFinite(raw) {
		metrics.RecordPrediction("failed", 0, time.Since(start))
		return nil, fmt.Errorf("%w: predictor produced a non-finite value", ErrPredictionFailed)
	}

	aqi := round2(raw)

	byName := make(map[string]float64, len(vec))
	for i, name := range bundle.FeatureOrder {
		byName[name] = vec[i]
	}

	var importances []float64
	if rep, ok := bundle.Predictor.(ImportanceReporter); ok {
		importances = rep.FeatureImportances()
	}

	p := &Prediction{
		AQI:           aqi,
		Category:      aqindex.ClassifyValue(aqi),
		SubIndices:    aqindex.AllSubIndices(byName),
		Contributions: aqindex.Decompose(aqi, bundle.FeatureOrder, vec, importances),
		Source:        SourceModel,
	}
	metrics.RecordPrediction("success", aqi, time.Since(start))
	return p, nil
}

// HeuristicEstimate approximates AQI as the dominant sub-index of the
// reading. It needs no model and serves as the degraded-mode answer
// while no bundle is available. Unparseable fields are skipped rather
// than rejected.
func (e *Engine) HeuristicEstimate(reading map[string]any) *Prediction {
	start := time.Now()

	byName := make(map[string]float64)
	for name, raw := range reading {
		if v, ok := coerceNumeric(raw); ok && v > 0 {
			byName[name] = v
		}
	}

	sub := aqindex.AllSubIndices(byName)
	var aqi float64
	for _, v := range sub {
		if v > aqi {
			aqi = v
		}
	}
	aqi = round2(aqi)

	metrics.RecordPrediction("heuristic", aqi, time.Since(start))
	return &Prediction{
		AQI:        aqi,
		Category:   aqindex.ClassifyValue(aqi),
		SubIndices: sub,
		Source:     SourceHeuristic,
	}
}

func firstNonFinite(vec []float64) int {
	for i, v := range vec {
		if !isFinite(v) {
			return i
		}
	}
	return -1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
