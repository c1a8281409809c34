// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package inference

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
)

// State is the lifecycle of the cached model.
//
// Unloaded and Failed both permit a new load attempt; Loading means one
// is in flight and nobody else may start another; Ready means a bundle
// is published.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// loader produces a ready bundle, normally by ensuring the artifact
// exists and deserializing it. Tests substitute their own.
type loader interface {
	Load(ctx context.Context) (*ModelBundle, error)
}

// storeLoader is the production loader: artifact store plus codec.
type storeLoader struct {
	store *Store
}

func (l *storeLoader) Load(ctx context.Context) (*ModelBundle, error) {
	if err := l.store.Ensure(ctx); err != nil {
		return nil, err
	}
	return Deserialize(l.store.Path())
}

// ModelCache holds the single published bundle and serializes loads.
// Exactly one goroutine runs a load at a time. Concurrent blocking
// callers wait for that load and share its outcome; non-blocking callers
// return immediately and never touch the network themselves.
type ModelCache struct {
	loader loader

	mu       sync.Mutex
	state    State
	loadDone chan struct{} // closed when the in-flight load finishes; nil outside Loading
	lastErr  error
	attempts int

	bundle atomic.Pointer[ModelBundle]
}

// NewModelCache builds a cache backed by the artifact store.
func NewModelCache(store *Store) *ModelCache {
	return &ModelCache{loader: &storeLoader{store: store}}
}

func newModelCacheWithLoader(l loader) *ModelCache {
	return &ModelCache{loader: l}
}

// PeekReady reports whether a bundle is published, without triggering or
// waiting for a load.
func (c *ModelCache) PeekReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady
}

// Bundle returns the published bundle, or nil before the first
// successful load.
func (c *ModelCache) Bundle() *ModelBundle {
	return c.bundle.Load()
}

// EnsureReady reports whether a bundle is published, loading one first
// when necessary.
//
// With blocking=true the caller either runs the load itself or waits for
// the load already in flight, and gets that load's outcome. With
// blocking=false the caller never waits: if a load is needed it is
// kicked off in the background and the call reports false immediately.
func (c *ModelCache) EnsureReady(ctx context.Context, blocking bool) bool {
	c.mu.Lock()
	switch c.state {
	case StateReady:
		c.mu.Unlock()
		return true

	case StateLoading:
		done := c.loadDone
		c.mu.Unlock()
		if !blocking {
			return false
		}
		select {
		case <-done:
		case <-ctx.Done():
			return false
		}
		// Report the finished load's outcome rather than looping into a
		// fresh attempt of our own.
		return c.PeekReady()

	default: // Unloaded or Failed: take the load right
		c.state = StateLoading
		c.loadDone = make(chan struct{})
		c.attempts++
		c.mu.Unlock()

		if !blocking {
			go c.runLoad(context.WithoutCancel(ctx))
			return false
		}
		return c.runLoad(ctx)
	}
}

// WarmUp schedules a background load after delay without blocking the
// caller. Failures are logged and absorbed; a later request or an
// explicit reload retries.
func (c *ModelCache) WarmUp(delay time.Duration) {
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), warmUpTimeout)
		defer cancel()
		if !c.EnsureReady(ctx, true) {
			logging.Warn().Msg("Model warm-up did not produce a ready bundle")
		}
	}()
}

const warmUpTimeout = 5 * time.Minute

// ForceReload starts a fresh load regardless of the current state. The
// previously published bundle stays visible through Bundle until the new
// load replaces it. Returns false when a load is already in flight.
func (c *ModelCache) ForceReload() bool {
	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return false
	}
	c.state = StateLoading
	c.loadDone = make(chan struct{})
	c.attempts++
	c.mu.Unlock()

	go c.runLoad(context.Background())
	return true
}

// runLoad executes one load attempt. Only the goroutine that moved the
// cache into Loading may call it.
func (c *ModelCache) runLoad(ctx context.Context) bool {
	start := time.Now()
	metrics.SetModelState(metrics.ModelStateLoading)

	bundle, err := c.loader.Load(ctx)

	c.mu.Lock()
	done := c.loadDone
	c.loadDone = nil
	if err != nil {
		c.state = StateFailed
		c.lastErr = err
	} else {
		c.bundle.Store(bundle)
		c.state = StateReady
		c.lastErr = nil
	}
	c.mu.Unlock()
	close(done)

	elapsed := time.Since(start)
	metrics.RecordModelLoad(err == nil, elapsed)
	if err != nil {
		metrics.SetModelState(metrics.ModelStateFailed)
		logging.Error().Err(err).Dur("elapsed", elapsed).Msg("Model load failed")
		return false
	}
	metrics.SetModelState(metrics.ModelStateReady)
	metrics.RecordBundleFormat(bundle.Format)
	logging.Info().
		Str("format", bundle.Format).
		Str("checksum", bundle.Checksum).
		Int("features", len(bundle.FeatureOrder)).
		Dur("elapsed", elapsed).
		Msg("Model bundle loaded")
	return true
}

// Status is a point-in-time snapshot for the model status endpoint.
type Status struct {
	State        string     `json:"state"`
	LoadAttempts int        `json:"load_attempts"`
	LastError    string     `json:"last_error,omitempty"`
	Format       string     `json:"format,omitempty"`
	Checksum     string     `json:"checksum,omitempty"`
	FeatureOrder []string   `json:"feature_order,omitempty"`
	LoadedAt     *time.Time `json:"loaded_at,omitempty"`
}

// Status reports the cache state together with metadata of the currently
// published bundle, if any.
func (c *ModelCache) Status() Status {
	c.mu.Lock()
	st := Status{
		State:        c.state.String(),
		LoadAttempts: c.attempts,
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	c.mu.Unlock()

	if b := c.bundle.Load(); b != nil {
		st.Format = b.Format
		st.Checksum = b.Checksum
		st.FeatureOrder = b.FeatureOrder
		t := b.LoadedAt
		st.LoadedAt = &t
	}
	return st
}
