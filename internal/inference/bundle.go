// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package inference

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/aerographus/internal/aqindex"
)

// Predictor produces an AQI estimate from an ordered feature vector.
type Predictor interface {
	Predict(features []float64) (float64, error)
}

// ImportanceReporter is implemented by predictors that expose per-feature
// importances, which drive the contribution breakdown in responses.
type ImportanceReporter interface {
	FeatureImportances() []float64
}

// Imputer fills gaps in a feature vector with fitted statistics.
type Imputer interface {
	Transform(features []float64) ([]float64, error)
}

// ModelBundle is a fully deserialized model artifact. A bundle is never
// mutated after construction; a reload publishes a new bundle wholesale.
type ModelBundle struct {
	Predictor    Predictor
	Imputer      Imputer // nil when the artifact carries none
	FeatureOrder []string

	Format   string // codec that produced this bundle
	Checksum string // hex SHA-256 of the artifact payload
	LoadedAt time.Time
}

// DefaultFeatureOrder returns the canonical pollutant ordering used when
// an artifact does not declare its own.
func DefaultFeatureOrder() []string {
	out := make([]string, len(aqindex.Pollutants))
	copy(out, aqindex.Pollutants)
	return out
}

// TreeNode is one node of a flattened regression tree. Leaves have
// Feature == -1 and carry the prediction in Value.
type TreeNode struct {
	Feature   int     // split feature index, -1 for leaves
	Threshold float64 // split threshold, unused for leaves
	Left      int     // index of the left child within Nodes
	Right     int     // index of the right child within Nodes
	Value     float64 // prediction, meaningful for leaves only
}

// RegressionTree is a flattened decision tree. Node 0 is the root.
type RegressionTree struct {
	Nodes []TreeNode
}

// Evaluate walks the tree for one feature vector.
func (t *RegressionTree) Evaluate(features []float64) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, errors.New("empty tree")
	}
	idx := 0
	// A well-formed tree terminates in at most len(Nodes) steps; a
	// malformed one must not walk forever.
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.Feature < 0 {
			return n.Value, nil
		}
		if n.Feature >= len(features) {
			return 0, fmt.Errorf("node %d references feature %d of %d", idx, n.Feature, len(features))
		}
		next := n.Left
		if features[n.Feature] > n.Threshold {
			next = n.Right
		}
		if next <= idx || next >= len(t.Nodes) {
			return 0, fmt.Errorf("node %d has invalid child %d", idx, next)
		}
		idx = next
	}
	return 0, errors.New("tree walk did not terminate")
}

// ForestPredictor averages an ensemble of regression trees.
type ForestPredictor struct {
	Trees       []RegressionTree
	Importances []float64 // per-feature, aligned with the bundle's FeatureOrder
}

// Predict returns the mean prediction across all trees.
func (p *ForestPredictor) Predict(features []float64) (float64, error) {
	if len(p.Trees) == 0 {
		return 0, errors.New("forest has no trees")
	}
	var sum float64
	for i := range p.Trees {
		v, err := p.Trees[i].Evaluate(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += v
	}
	return sum / float64(len(p.Trees)), nil
}

// FeatureImportances returns the fitted per-feature importances, which
// may be empty for artifacts trained without them.
func (p *ForestPredictor) FeatureImportances() []float64 {
	return p.Importances
}

// MedianImputer replaces NaN entries with fitted per-feature statistics.
type MedianImputer struct {
	Statistics []float64
}

// Transform returns a copy of features with every NaN filled from the
// fitted statistics.
func (im *MedianImputer) Transform(features []float64) ([]float64, error) {
	if len(im.Statistics) != len(features) {
		return nil, fmt.Errorf("imputer fitted for %d features, got %d", len(im.Statistics), len(features))
	}
	out := make([]float64, len(features))
	for i, v := range features {
		if math.IsNaN(v) {
			out[i] = im.Statistics[i]
			continue
		}
		out[i] = v
	}
	return out, nil
}
