// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/models"
)

const testSecret = "test-secret-0123456789abcdef0123456789abcdef"

func testJWTManager(t *testing.T, expiry time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.AuthConfig{JWTSecret: testSecret, TokenExpiry: expiry})
	if err != nil {
		t.Fatalf("NewJWTManager() failed: %v", err)
	}
	return m
}

func testAccount() *models.User {
	return &models.User{
		ID:    "11111111-2222-3333-4444-555555555555",
		Email: "asha@example.com",
		Role:  models.RoleUser,
	}
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager(&config.AuthConfig{}); err == nil {
		t.Error("NewJWTManager() with empty secret should fail")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	m := testJWTManager(t, time.Hour)

	token, err := m.GenerateToken(testAccount())
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() failed: %v", err)
	}
	if claims.UserID != testAccount().ID {
		t.Errorf("UserID = %q, want %q", claims.UserID, testAccount().ID)
	}
	if claims.Email != "asha@example.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != models.RoleUser {
		t.Errorf("Role = %q, want user", claims.Role)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()
	m := testJWTManager(t, -time.Minute)

	token, err := m.GenerateToken(testAccount())
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted an expired token")
	}
}

func TestValidateTokenTampered(t *testing.T) {
	t.Parallel()
	m := testJWTManager(t, time.Hour)

	token, err := m.GenerateToken(testAccount())
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	tampered := token[:len(token)-4] + "AAAA"
	if _, err := m.ValidateToken(tampered); err == nil {
		t.Error("ValidateToken() accepted a tampered token")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Parallel()
	m := testJWTManager(t, time.Hour)

	other, err := NewJWTManager(&config.AuthConfig{
		JWTSecret:   strings.Repeat("x", 32),
		TokenExpiry: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager() failed: %v", err)
	}
	token, err := other.GenerateToken(testAccount())
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted a token signed with another secret")
	}
}

func TestValidateTokenRejectsNonHMAC(t *testing.T) {
	t.Parallel()
	m := testJWTManager(t, time.Hour)

	// alg=none tokens must be rejected outright.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "x"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() failed: %v", err)
	}
	if _, err := m.ValidateToken(token); err == nil {
		t.Error("ValidateToken() accepted an unsigned token")
	}
}
