// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package inference owns the AQI model: fetching the trained artifact,
// decoding it into an immutable bundle, and serving predictions from it.
//
// # Overview
//
// The model artifact is produced by an offline training pipeline and
// published over HTTP. This package materializes it on local disk,
// deserializes it into a ModelBundle and answers predictions, keeping the
// request path free of network and disk I/O once a bundle is published.
//
// # Architecture
//
// The package is organized by lifecycle stage:
//   - artifact.go: Store downloads and validates the on-disk artifact
//     (primary URL first, mirror second, atomic temp-file publish)
//   - codec.go: Deserialize decodes an artifact, trying the packed format
//     via mmap, the packed format via plain file I/O, then legacy JSON
//   - bundle.go: ModelBundle plus the concrete predictor and imputer types
//   - cache.go: ModelCache serializes loads behind a single load right and
//     publishes bundles atomically
//   - features.go: BuildVector turns a named reading into an ordered,
//     fully validated feature vector
//   - engine.go: Engine composes the above into Predict, and offers a
//     model-free heuristic estimate for degraded operation
//
// # Concurrency
//
// ModelCache guarantees at most one load in flight. Blocking callers
// share the outcome of the in-flight load; non-blocking callers get an
// immediate answer and at most schedule background work. Published
// bundles are immutable and swapped through an atomic pointer, so the
// prediction path never takes the load lock.
package inference
