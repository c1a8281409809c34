// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package cache

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/aerographus/internal/config"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(&config.CacheConfig{InMemory: true})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return s
}

func TestSetGetRoundtrip(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	want := []byte(`{"aqi":142}`)
	if err := s.Set("weather", "delhi", want, time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := s.Get("weather", "delhi")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestGetMiss(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if _, err := s.Get("weather", "nowhere"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() error = %v, want ErrMiss", err)
	}
}

func TestKindIsolation(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.Set("geocode", "delhi", []byte("a"), time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, err := s.Get("weather", "delhi"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() with different kind error = %v, want ErrMiss", err)
	}
}

func TestTTLExpiry(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.Set("weather", "ttl", []byte("v"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// Badger TTLs have second granularity internally; poll instead of a
	// single fixed sleep.
	deadline := time.Now().Add(3 * time.Second)
	for {
		_, err := s.Get("weather", "ttl")
		if errors.Is(err, ErrMiss) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("entry did not expire within deadline")
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.Set("weather", "gone", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if err := s.Delete("weather", "gone"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := s.Get("weather", "gone"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() after delete error = %v, want ErrMiss", err)
	}

	// Absent keys delete cleanly.
	if err := s.Delete("weather", "never-existed"); err != nil {
		t.Errorf("Delete() of absent key failed: %v", err)
	}
}

func TestJSONRoundtrip(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	type payload struct {
		City string  `json:"city"`
		AQI  float64 `json:"aqi"`
	}

	want := payload{City: "Mumbai", AQI: 87.5}
	if err := s.SetJSON("weather", "mumbai", want, time.Minute); err != nil {
		t.Fatalf("SetJSON() failed: %v", err)
	}

	var got payload
	if err := s.GetJSON("weather", "mumbai", &got); err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if got != want {
		t.Errorf("GetJSON() = %+v, want %+v", got, want)
	}
}

func TestGetJSONCorruptEntry(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.Set("weather", "bad", []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	var dst map[string]any
	if err := s.GetJSON("weather", "bad", &dst); !errors.Is(err, ErrMiss) {
		t.Errorf("GetJSON() on corrupt entry error = %v, want ErrMiss", err)
	}
}
