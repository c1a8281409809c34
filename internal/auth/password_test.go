// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndCompare(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := h.Compare(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Compare() with right password failed: %v", err)
	}
	if err := h.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Compare() with wrong password = %v, want ErrPasswordMismatch", err)
	}
}

func TestPasswordHashRejectsOverlong(t *testing.T) {
	t.Parallel()
	h := NewPasswordHasher(bcrypt.MinCost)

	if _, err := h.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() accepted a 73-byte password")
	}
}

func TestNewPasswordHasherClampsInvalidCost(t *testing.T) {
	t.Parallel()

	// Out-of-range cost falls back to the default rather than failing
	// at hash time.
	h := NewPasswordHasher(99)
	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash() failed: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost() failed: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want default %d", cost, bcrypt.DefaultCost)
	}
}
