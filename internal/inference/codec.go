// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package inference

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/exp/mmap"
)

// Bundle formats, in the order Deserialize attempts them. The eventprocessor
// and metrics use the same labels.
const (
	FormatPackedMmap   = "packed_mmap"
	FormatPackedStream = "packed_stream"
	FormatLegacyJSON   = "legacy_json"
)

// Packed artifact layout: an 8-byte magic, a version byte, the SHA-256
// of the compressed payload, then a gzip stream holding a gob-encoded
// packedBundle.
const (
	packedMagic      = "AEROBNDL"
	packedVersion    = 1
	packedHeaderSize = len(packedMagic) + 1 + sha256.Size
)

// packedBundle is the gob payload of the packed artifact format.
type packedBundle struct {
	Model    ForestPredictor
	Imputer  *MedianImputer
	Features []string
}

// Deserialize loads a model bundle from disk, trying each supported
// format in order: the packed format through a memory map, the packed
// format through plain file I/O, then legacy JSON artifacts from older
// training pipelines.
//
// The first format whose parse succeeds decides the outcome. If that
// parse yields content that fails validation (no predictor, mismatched
// imputer), the error is final; later formats are not consulted.
func Deserialize(path string) (*ModelBundle, error) {
	var attempts []error

	b, err := deserializePackedMmap(path)
	if err == nil {
		return b, nil
	}
	if errors.Is(err, ErrDeserializationFailed) {
		return nil, err
	}
	attempts = append(attempts, fmt.Errorf("packed mmap: %w", err))

	b, err = deserializePackedStream(path)
	if err == nil {
		return b, nil
	}
	if errors.Is(err, ErrDeserializationFailed) {
		return nil, err
	}
	attempts = append(attempts, fmt.Errorf("packed stream: %w", err))

	b, err = deserializeLegacyJSON(path)
	if err == nil {
		return b, nil
	}
	if errors.Is(err, ErrDeserializationFailed) {
		return nil, err
	}
	attempts = append(attempts, fmt.Errorf("legacy json: %w", err))

	return nil, fmt.Errorf("%w: no supported format matched: %w", ErrDeserializationFailed, errors.Join(attempts...))
}

// deserializePackedMmap reads the packed format through a memory map, so
// large artifacts decode without a full extra copy in the heap.
func deserializePackedMmap(path string) (*ModelBundle, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	bundle, err := parsePacked(io.NewSectionReader(r, 0, int64(r.Len())))
	if err != nil {
		return nil, err
	}
	bundle.Format = FormatPackedMmap
	return bundle, nil
}

// deserializePackedStream reads the packed format through ordinary file
// I/O, covering filesystems where mmap is unavailable.
func deserializePackedStream(path string) (*ModelBundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	bundle, err := parsePacked(f)
	if err != nil {
		return nil, err
	}
	bundle.Format = FormatPackedStream
	return bundle, nil
}

// parsePacked reads the packed envelope in two passes: one to verify the
// payload checksum, one to decode. Both passes stream, keeping peak
// memory at the decoded bundle size rather than twice the file size.
func parsePacked(r io.ReadSeeker) (*ModelBundle, error) {
	header := make([]byte, packedHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if string(header[:len(packedMagic)]) != packedMagic {
		return nil, errors.New("magic mismatch")
	}
	if header[len(packedMagic)] != packedVersion {
		return nil, fmt.Errorf("unsupported version %d", header[len(packedMagic)])
	}
	wantSum := header[len(packedMagic)+1:]

	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return nil, fmt.Errorf("checksum payload: %w", err)
	}
	gotSum := h.Sum(nil)
	if !bytes.Equal(gotSum, wantSum) {
		return nil, errors.New("payload checksum mismatch")
	}

	if _, err := r.Seek(int64(packedHeaderSize), io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind payload: %w", err)
	}
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer func() { _ = zr.Close() }()

	var packed packedBundle
	if err := gob.NewDecoder(zr).Decode(&packed); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	// The envelope parsed; failures from here on are final.
	return buildBundle(&packed.Model, packed.Imputer, packed.Features, hex.EncodeToString(gotSum))
}

// legacyBundle mirrors the JSON artifacts produced by older training
// pipelines. The predictor historically lived under several keys, and
// some dumps are a bare predictor object with no wrapper at all.
type legacyBundle struct {
	Model     json.RawMessage `json:"model"`
	Estimator json.RawMessage `json:"estimator"`
	Pipeline  json.RawMessage `json:"pipeline"`
	Imputer   *legacyImputer  `json:"imputer"`
	Features  []string        `json:"features"`
	Trees     json.RawMessage `json:"trees"`
}

type legacyForest struct {
	Trees       []legacyTree `json:"trees"`
	Importances []float64    `json:"importances"`
}

type legacyTree struct {
	Nodes []legacyNode `json:"nodes"`
}

type legacyNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

type legacyImputer struct {
	Strategy   string    `json:"strategy"`
	Statistics []float64 `json:"statistics"`
}

func deserializeLegacyJSON(path string) (*ModelBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var env legacyBundle
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	// Bare predictor dumps put the trees at the top level. They carry no
	// feature list, so the default ordering applies.
	if raw := firstPresent(env.Model, env.Estimator, env.Pipeline); raw != nil {
		forest, err := decodeLegacyForest(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeserializationFailed, err)
		}
		var imp *MedianImputer
		if env.Imputer != nil && len(env.Imputer.Statistics) > 0 {
			imp = &MedianImputer{Statistics: env.Imputer.Statistics}
		}
		bundle, err := buildBundle(forest, imp, env.Features, checksum)
		if err != nil {
			return nil, err
		}
		bundle.Format = FormatLegacyJSON
		return bundle, nil
	}
	if len(env.Trees) > 0 {
		forest, err := decodeLegacyForest(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeserializationFailed, err)
		}
		bundle, err := buildBundle(forest, nil, nil, checksum)
		if err != nil {
			return nil, err
		}
		bundle.Format = FormatLegacyJSON
		return bundle, nil
	}

	return nil, fmt.Errorf("%w: no predictor under model, estimator or pipeline keys", ErrDeserializationFailed)
}

// firstPresent returns the first raw message that holds a real value.
func firstPresent(candidates ...json.RawMessage) json.RawMessage {
	for _, raw := range candidates {
		if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
			return raw
		}
	}
	return nil
}

func decodeLegacyForest(raw []byte) (*ForestPredictor, error) {
	var lf legacyForest
	if err := json.Unmarshal(raw, &lf); err != nil {
		return nil, fmt.Errorf("decode predictor: %w", err)
	}
	forest := &ForestPredictor{
		Trees:       make([]RegressionTree, len(lf.Trees)),
		Importances: lf.Importances,
	}
	for i, lt := range lf.Trees {
		nodes := make([]TreeNode, len(lt.Nodes))
		for j, ln := range lt.Nodes {
			nodes[j] = TreeNode{
				Feature:   ln.Feature,
				Threshold: ln.Threshold,
				Left:      ln.Left,
				Right:     ln.Right,
				Value:     ln.Value,
			}
		}
		forest.Trees[i].Nodes = nodes
	}
	return forest, nil
}

// buildBundle validates decoded components and assembles the published
// bundle. A bundle without a predictor is unusable, so that is a hard
// failure rather than a fall-through to another format.
func buildBundle(forest *ForestPredictor, imputer *MedianImputer, features []string, checksum string) (*ModelBundle, error) {
	if forest == nil || len(forest.Trees) == 0 {
		return nil, fmt.Errorf("%w: bundle carries no predictor", ErrDeserializationFailed)
	}
	if len(features) == 0 {
		features = DefaultFeatureOrder()
	}
	if imputer != nil && len(imputer.Statistics) != len(features) {
		return nil, fmt.Errorf("%w: imputer fitted for %d features, bundle declares %d",
			ErrDeserializationFailed, len(imputer.Statistics), len(features))
	}

	b := &ModelBundle{
		Predictor:    forest,
		FeatureOrder: features,
		Checksum:     checksum,
		LoadedAt:     time.Now().UTC(),
	}
	if imputer != nil {
		b.Imputer = imputer
	}
	return b, nil
}

// EncodePacked writes a packed artifact containing the given predictor.
// The training tooling and tests use this to produce bundles that
// Deserialize accepts.
func EncodePacked(w io.Writer, forest *ForestPredictor, imputer *MedianImputer, features []string) error {
	if forest == nil || len(forest.Trees) == 0 {
		return errors.New("refusing to pack a bundle without a predictor")
	}

	var payload bytes.Buffer
	zw := gzip.NewWriter(&payload)
	if err := gob.NewEncoder(zw).Encode(packedBundle{
		Model:    *forest,
		Imputer:  imputer,
		Features: features,
	}); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress payload: %w", err)
	}

	sum := sha256.Sum256(payload.Bytes())

	header := make([]byte, 0, packedHeaderSize)
	header = append(header, packedMagic...)
	header = append(header, packedVersion)
	header = append(header, sum[:]...)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}
