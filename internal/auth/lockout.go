// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package auth

import (
	"sync"
	"time"

	"github.com/tomtom215/aerographus/internal/logging"
)

// LockoutConfig holds configuration for the login lockout tracker.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration

	// MaxLockoutDuration caps the period; each subsequent lockout of
	// the same subject doubles the previous one up to this cap.
	MaxLockoutDuration time.Duration

	// CleanupInterval is how often stale entries are dropped.
	CleanupInterval time.Duration
}

// DefaultLockoutConfig returns the settings used in production.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:        5,
		LockoutDuration:    15 * time.Minute,
		MaxLockoutDuration: 24 * time.Hour,
		CleanupInterval:    5 * time.Minute,
	}
}

// lockoutEntry tracks failed login attempts for one subject (a
// normalized email address).
type lockoutEntry struct {
	failedAttempts int
	lockoutCount   int
	lastAttempt    time.Time
	lockedUntil    time.Time
}

// LockoutTracker slows online brute force by locking a subject out
// after repeated failed logins. State is in-memory; a restart clears
// it, which is acceptable for a rate-slowing control.
type LockoutTracker struct {
	cfg LockoutConfig

	mu      sync.Mutex
	entries map[string]*lockoutEntry
}

// NewLockoutTracker builds a tracker with the given settings.
func NewLockoutTracker(cfg LockoutConfig) *LockoutTracker {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultLockoutConfig()
	}
	return &LockoutTracker{
		cfg:     cfg,
		entries: make(map[string]*lockoutEntry),
	}
}

// Locked reports whether the subject is currently locked out and for
// how much longer.
func (t *LockoutTracker) Locked(subject string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[subject]
	if !ok {
		return false, 0
	}
	remaining := time.Until(entry.lockedUntil)
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

// RecordFailure registers a failed login. When the failure count
// reaches MaxAttempts the subject is locked; the lockout period doubles
// on each subsequent lockout up to MaxLockoutDuration.
func (t *LockoutTracker) RecordFailure(subject string) (locked bool, remaining time.Duration) {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[subject]
	if !ok {
		entry = &lockoutEntry{}
		t.entries[subject] = entry
	}
	entry.failedAttempts++
	entry.lastAttempt = now

	if entry.failedAttempts < t.cfg.MaxAttempts {
		return false, 0
	}

	duration := t.cfg.LockoutDuration
	for i := 0; i < entry.lockoutCount; i++ {
		duration *= 2
		if duration >= t.cfg.MaxLockoutDuration {
			duration = t.cfg.MaxLockoutDuration
			break
		}
	}
	entry.lockoutCount++
	entry.failedAttempts = 0
	entry.lockedUntil = now.Add(duration)

	logging.Warn().
		Str("subject", subject).
		Dur("duration", duration).
		Int("lockouts", entry.lockoutCount).
		Msg("Account locked out after repeated failed logins")

	return true, duration
}

// RecordSuccess clears the failure count after a successful login. A
// still-active lockout is not lifted; Locked is checked before the
// password, so this only runs for unlocked subjects.
func (t *LockoutTracker) RecordSuccess(subject string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, subject)
}

// StartCleanup prunes stale entries periodically until stop is closed.
func (t *LockoutTracker) StartCleanup(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(t.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				t.cleanup()
			case <-stop:
				return
			}
		}
	}()
}

// cleanup drops entries that are neither locked nor recently active.
func (t *LockoutTracker) cleanup() {
	threshold := time.Now().Add(-t.cfg.MaxLockoutDuration)

	t.mu.Lock()
	defer t.mu.Unlock()
	for subject, entry := range t.entries {
		if entry.lockedUntil.Before(time.Now()) && entry.lastAttempt.Before(threshold) {
			delete(t.entries, subject)
		}
	}
}
