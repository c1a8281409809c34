// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package auth

import (
	"testing"
	"time"
)

func testLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:        3,
		LockoutDuration:    time.Minute,
		MaxLockoutDuration: 4 * time.Minute,
		CleanupInterval:    time.Minute,
	}
}

func TestLockoutAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	tracker := NewLockoutTracker(testLockoutConfig())

	for i := 0; i < 2; i++ {
		if locked, _ := tracker.RecordFailure("a@example.com"); locked {
			t.Fatalf("locked after %d attempts, want lock only at 3", i+1)
		}
	}
	locked, remaining := tracker.RecordFailure("a@example.com")
	if !locked {
		t.Fatal("not locked after MaxAttempts failures")
	}
	if remaining != time.Minute {
		t.Errorf("lockout duration = %s, want 1m", remaining)
	}

	if locked, _ := tracker.Locked("a@example.com"); !locked {
		t.Error("Locked() = false right after lockout")
	}
	// Other subjects are unaffected.
	if locked, _ := tracker.Locked("b@example.com"); locked {
		t.Error("unrelated subject locked")
	}
}

func TestLockoutExponentialBackoff(t *testing.T) {
	t.Parallel()
	tracker := NewLockoutTracker(testLockoutConfig())

	durations := []time.Duration{}
	for round := 0; round < 4; round++ {
		var d time.Duration
		for i := 0; i < 3; i++ {
			_, d = tracker.RecordFailure("a@example.com")
		}
		durations = append(durations, d)
		// Expire the lock so the next round can run.
		tracker.mu.Lock()
		tracker.entries["a@example.com"].lockedUntil = time.Now().Add(-time.Second)
		tracker.mu.Unlock()
	}

	want := []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute, 4 * time.Minute}
	for i, d := range durations {
		if d != want[i] {
			t.Errorf("lockout %d duration = %s, want %s (cap applies)", i+1, d, want[i])
		}
	}
}

func TestRecordSuccessClearsFailures(t *testing.T) {
	t.Parallel()
	tracker := NewLockoutTracker(testLockoutConfig())

	tracker.RecordFailure("a@example.com")
	tracker.RecordFailure("a@example.com")
	tracker.RecordSuccess("a@example.com")

	// Counter restarted: two more failures must not lock.
	tracker.RecordFailure("a@example.com")
	if locked, _ := tracker.RecordFailure("a@example.com"); locked {
		t.Error("locked even though success reset the counter")
	}
}
