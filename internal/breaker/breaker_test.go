// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package breaker

import (
	"errors"
	"fmt"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestExecuteSuccess(t *testing.T) {
	b := New[int]("test-success")

	got, err := b.Execute(func() (int, error) { return 42, nil })
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Execute() = %d, want 42", got)
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", b.State())
	}
}

func TestExecutePropagatesError(t *testing.T) {
	b := New[string]("test-error")
	wantErr := errors.New("upstream down")

	_, err := b.Execute(func() (string, error) { return "", wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("Execute() error = %v, want %v", err, wantErr)
	}
	if Rejected(err) {
		t.Error("Rejected() = true for an upstream error")
	}
}

func TestOpensAfterFailureThreshold(t *testing.T) {
	b := New[struct{}]("test-trip")
	upstreamErr := errors.New("boom")

	// 10 consecutive failures takes the failure ratio to 100% with the
	// minimum request count satisfied, which must open the circuit.
	for i := 0; i < 10; i++ {
		_, err := b.Execute(func() (struct{}, error) { return struct{}{}, upstreamErr })
		if !errors.Is(err, upstreamErr) {
			t.Fatalf("call %d: error = %v, want %v", i, err, upstreamErr)
		}
	}

	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v after 10 failures, want open", b.State())
	}

	_, err := b.Execute(func() (struct{}, error) { return struct{}{}, nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Execute() on open circuit error = %v, want ErrOpenState", err)
	}
	if !Rejected(err) {
		t.Error("Rejected() = false for ErrOpenState")
	}
}

func TestStaysClosedBelowMinimumRequests(t *testing.T) {
	b := New[struct{}]("test-minimum")

	// 9 failures is below the 10-request minimum, so the circuit must
	// stay closed regardless of the 100% failure ratio.
	for i := 0; i < 9; i++ {
		_, _ = b.Execute(func() (struct{}, error) { return struct{}{}, fmt.Errorf("fail %d", i) })
	}

	if b.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v after 9 failures, want closed", b.State())
	}
}

func TestName(t *testing.T) {
	b := New[int]("test-name")
	if b.Name() != "test-name" {
		t.Errorf("Name() = %q, want %q", b.Name(), "test-name")
	}
}
