// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package inference

import (
	"errors"
	"strings"
)

// Sentinel errors for the model lifecycle. Handlers map these onto HTTP
// status codes, so callers wrap rather than replace them.
var (
	// ErrArtifactUnavailable means no usable artifact exists locally and
	// every configured download source failed.
	ErrArtifactUnavailable = errors.New("model artifact unavailable")

	// ErrDeserializationFailed means an artifact was present but no
	// supported format produced a usable bundle from it.
	ErrDeserializationFailed = errors.New("model bundle deserialization failed")

	// ErrModelNotReady means no bundle is published and the caller did
	// not (or could not) wait for a load to finish.
	ErrModelNotReady = errors.New("model not ready")

	// ErrPredictionFailed means the predictor itself misbehaved: it
	// returned an error or a non-finite value.
	ErrPredictionFailed = errors.New("prediction failed")

	// ErrInvalidFeatureInput is the errors.Is target for
	// *InvalidFeatureInputError.
	ErrInvalidFeatureInput = errors.New("invalid feature input")
)

// InvalidFeatureInputError reports every offending field of a reading in
// one pass, so a client can fix its request in a single round trip
// instead of discovering problems one at a time.
type InvalidFeatureInputError struct {
	Missing []string // required features absent from the reading
	Invalid []string // features present but not coercible to a number
}

func (e *InvalidFeatureInputError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing features: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "non-numeric features: "+strings.Join(e.Invalid, ", "))
	}
	if len(parts) == 0 {
		return "invalid feature input"
	}
	return "invalid feature input: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidFeatureInput) match without losing the
// per-field detail.
func (e *InvalidFeatureInputError) Is(target error) bool {
	return target == ErrInvalidFeatureInput
}
