// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	appconfig "github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/models"
)

// serviceDBSemaphore serializes DuckDB lifecycles across parallel tests
// in this package, matching the database package's test discipline.
var serviceDBSemaphore = make(chan struct{}, 1)

func setupService(t *testing.T) *Service {
	t.Helper()

	serviceDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-serviceDBSemaphore })

	db, err := database.New(&appconfig.DatabaseConfig{Path: ":memory:", MaxMemory: "1GB"})
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})

	jwtManager := testJWTManager(t, time.Hour)
	return NewService(db, NewPasswordHasher(bcrypt.MinCost), jwtManager, NewLockoutTracker(testLockoutConfig()))
}

func signupReq() *models.SignupRequest {
	return &models.SignupRequest{
		Name:            "Asha Rao",
		Email:           "Asha@Example.com",
		Password:        "sufficiently-long-pw",
		ConfirmPassword: "sufficiently-long-pw",
	}
}

func TestSignupAndLogin(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signupReq())
	if err != nil {
		t.Fatalf("Signup() failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("Signup() returned empty token")
	}
	if resp.User.Email != "asha@example.com" {
		t.Errorf("email not normalized: %q", resp.User.Email)
	}
	if resp.User.City != models.DefaultCity {
		t.Errorf("city = %q, want default %q", resp.User.City, models.DefaultCity)
	}
	if resp.User.Role != models.RoleUser {
		t.Errorf("role = %q, want user", resp.User.Role)
	}

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "ASHA@example.com", Password: "sufficiently-long-pw"})
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if login.User.ID != resp.User.ID {
		t.Errorf("login user ID = %q, want %q", login.User.ID, resp.User.ID)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupReq()); err != nil {
		t.Fatalf("first Signup() failed: %v", err)
	}
	_, err := svc.Signup(ctx, signupReq())
	if !errors.Is(err, database.ErrEmailTaken) {
		t.Errorf("duplicate Signup() error = %v, want ErrEmailTaken", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupReq()); err != nil {
		t.Fatalf("Signup() failed: %v", err)
	}

	_, err := svc.Login(ctx, &models.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginLockout(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, signupReq()); err != nil {
		t.Fatalf("Signup() failed: %v", err)
	}

	// Exhaust the failure budget.
	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, &models.LoginRequest{Email: "asha@example.com", Password: "wrong"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}

	// Even the correct password is refused while locked.
	_, err := svc.Login(ctx, &models.LoginRequest{Email: "asha@example.com", Password: "sufficiently-long-pw"})
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("Login() while locked error = %v, want ErrAccountLocked", err)
	}
}

func TestUpdateCityAndProfile(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, signupReq())
	if err != nil {
		t.Fatalf("Signup() failed: %v", err)
	}

	profile, err := svc.UpdateCity(ctx, resp.User.ID, "  Mumbai ")
	if err != nil {
		t.Fatalf("UpdateCity() failed: %v", err)
	}
	if profile.City != "Mumbai" {
		t.Errorf("city = %q, want Mumbai", profile.City)
	}

	got, err := svc.Profile(ctx, resp.User.ID)
	if err != nil {
		t.Fatalf("Profile() failed: %v", err)
	}
	if got.City != "Mumbai" {
		t.Errorf("Profile().City = %q, want Mumbai", got.City)
	}
	if got.Favorites == nil {
		t.Error("Profile().Favorites is nil, want empty slice")
	}
}

func TestEnsureAdminBootstrap(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "root@example.com", "admin-password"); err != nil {
		t.Fatalf("EnsureAdmin() failed: %v", err)
	}

	login, err := svc.Login(ctx, &models.LoginRequest{Email: "root@example.com", Password: "admin-password"})
	if err != nil {
		t.Fatalf("Login() as admin failed: %v", err)
	}
	if login.User.Role != models.RoleAdmin {
		t.Errorf("role = %q, want admin", login.User.Role)
	}
}
