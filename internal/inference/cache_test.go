// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package inference

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubLoader counts load attempts and returns a configurable outcome
// after an optional delay.
type stubLoader struct {
	delay time.Duration
	loads atomic.Int32

	mu     sync.Mutex
	err    error
	bundle *ModelBundle
}

func (l *stubLoader) Load(ctx context.Context) (*ModelBundle, error) {
	l.loads.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return l.bundle, nil
}

func (l *stubLoader) setOutcome(b *ModelBundle, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bundle, l.err = b, err
}

func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestEnsureReadyLoadsExactlyOnce(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{delay: 50 * time.Millisecond, bundle: testBundle(100, "a")}
	c := newModelCacheWithLoader(loader)

	const goroutines = 16
	results := make([]bool, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.EnsureReady(context.Background(), true)
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		if !ok {
			t.Errorf("goroutine %d: EnsureReady() = false, want true", i)
		}
	}
	if got := loader.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want exactly 1", got)
	}
	if !c.PeekReady() {
		t.Error("PeekReady() = false after successful load")
	}
	if c.Bundle() == nil {
		t.Error("Bundle() = nil after successful load")
	}
}

func TestEnsureReadyNonBlockingColdCache(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{delay: 30 * time.Millisecond, bundle: testBundle(100, "a")}
	c := newModelCacheWithLoader(loader)

	if c.EnsureReady(context.Background(), false) {
		t.Error("EnsureReady(false) = true on a cold cache")
	}

	// The background load it kicked off must complete on its own.
	waitFor(t, 2*time.Second, "background load", c.PeekReady)
	if got := loader.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestEnsureReadyNonBlockingDuringLoad(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{delay: 300 * time.Millisecond, bundle: testBundle(100, "a")}
	c := newModelCacheWithLoader(loader)

	go c.EnsureReady(context.Background(), true)
	waitFor(t, 2*time.Second, "load to start", func() bool {
		return c.Status().State == "loading"
	})

	start := time.Now()
	got := c.EnsureReady(context.Background(), false)
	elapsed := time.Since(start)

	if got {
		t.Error("EnsureReady(false) = true while a load is in flight")
	}
	if elapsed > 100*time.Millisecond {
		t.Errorf("EnsureReady(false) took %v, want an immediate return", elapsed)
	}
	if got := loader.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1 (non-blocking caller must not start another)", got)
	}
}

func TestBlockingCallersShareFailure(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{delay: 50 * time.Millisecond, err: errors.New("artifact host offline")}
	c := newModelCacheWithLoader(loader)

	const goroutines = 8
	results := make([]bool, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.EnsureReady(context.Background(), true)
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		if ok {
			t.Errorf("goroutine %d: EnsureReady() = true for a failed load", i)
		}
	}
	if got := loader.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1 shared attempt", got)
	}

	st := c.Status()
	if st.State != "failed" {
		t.Errorf("State = %q, want failed", st.State)
	}
	if !strings.Contains(st.LastError, "offline") {
		t.Errorf("LastError = %q, want load error surfaced", st.LastError)
	}
}

func TestFailedStateAllowsRetry(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{err: errors.New("boom")}
	c := newModelCacheWithLoader(loader)

	if c.EnsureReady(context.Background(), true) {
		t.Fatal("EnsureReady() = true with a failing loader")
	}
	loader.setOutcome(testBundle(100, "a"), nil)

	if !c.EnsureReady(context.Background(), true) {
		t.Fatal("EnsureReady() = false after the loader recovered")
	}
	if got := loader.loads.Load(); got != 2 {
		t.Errorf("loads = %d, want 2 (one failure, one retry)", got)
	}
}

func TestPeekReadyNeverLoads(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{bundle: testBundle(100, "a")}
	c := newModelCacheWithLoader(loader)

	for i := 0; i < 5; i++ {
		if c.PeekReady() {
			t.Fatal("PeekReady() = true on a cold cache")
		}
	}
	if got := loader.loads.Load(); got != 0 {
		t.Errorf("loads = %d, want 0 (peek must not trigger a load)", got)
	}
}

func TestWarmUp(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{bundle: testBundle(100, "a")}
	c := newModelCacheWithLoader(loader)

	c.WarmUp(0)
	waitFor(t, 2*time.Second, "warm-up load", c.PeekReady)
	if got := loader.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestEnsureReadyContextCancelled(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{delay: 500 * time.Millisecond, bundle: testBundle(100, "a")}
	c := newModelCacheWithLoader(loader)

	go c.EnsureReady(context.Background(), true)
	waitFor(t, 2*time.Second, "load to start", func() bool {
		return c.Status().State == "loading"
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if c.EnsureReady(ctx, true) {
		t.Error("EnsureReady() = true for a caller whose context expired mid-load")
	}

	// The in-flight load is not cancelled by a waiter giving up.
	waitFor(t, 2*time.Second, "original load", c.PeekReady)
	if got := loader.loads.Load(); got != 1 {
		t.Errorf("loads = %d, want 1", got)
	}
}

func TestForceReloadSwapsBundle(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{bundle: testBundle(100, "first")}
	c := newModelCacheWithLoader(loader)

	if !c.EnsureReady(context.Background(), true) {
		t.Fatal("initial load failed")
	}
	loader.setOutcome(testBundle(200, "second"), nil)

	if !c.ForceReload() {
		t.Fatal("ForceReload() = false with no load in flight")
	}
	waitFor(t, 2*time.Second, "reload", func() bool {
		b := c.Bundle()
		return b != nil && b.Checksum == "second"
	})

	st := c.Status()
	if st.LoadAttempts != 2 {
		t.Errorf("LoadAttempts = %d, want 2", st.LoadAttempts)
	}
}

func TestForceReloadWhileLoading(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{delay: 300 * time.Millisecond, bundle: testBundle(100, "a")}
	c := newModelCacheWithLoader(loader)

	go c.EnsureReady(context.Background(), true)
	waitFor(t, 2*time.Second, "load to start", func() bool {
		return c.Status().State == "loading"
	})

	if c.ForceReload() {
		t.Error("ForceReload() = true while a load is in flight")
	}
}

func TestStatusLifecycle(t *testing.T) {
	t.Parallel()

	loader := &stubLoader{err: errors.New("no artifact")}
	c := newModelCacheWithLoader(loader)

	st := c.Status()
	if st.State != "unloaded" || st.LoadAttempts != 0 {
		t.Errorf("initial Status() = %+v, want unloaded with 0 attempts", st)
	}

	c.EnsureReady(context.Background(), true)
	st = c.Status()
	if st.State != "failed" || st.LastError == "" {
		t.Errorf("Status() after failure = %+v", st)
	}

	loader.setOutcome(testBundle(100, "ok"), nil)
	c.EnsureReady(context.Background(), true)
	st = c.Status()
	if st.State != "ready" {
		t.Errorf("State = %q, want ready", st.State)
	}
	if st.Format != FormatPackedMmap || st.Checksum != "ok" {
		t.Errorf("Status() bundle metadata = %+v", st)
	}
	if st.LoadedAt == nil {
		t.Error("LoadedAt = nil for a ready bundle")
	}
	if len(st.FeatureOrder) != 12 {
		t.Errorf("FeatureOrder has %d entries, want 12", len(st.FeatureOrder))
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateUnloaded, "unloaded"},
		{StateLoading, "loading"},
		{StateReady, "ready"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
