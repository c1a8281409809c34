// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// Sentinel errors surfaced by the service. The API layer maps them to
// response codes.
var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password, so login failures do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountLocked is returned while the lockout window is active.
	ErrAccountLocked = errors.New("account temporarily locked")
)

// Service implements signup, login and profile operations on top of
// the user store.
type Service struct {
	db      *database.DB
	hasher  *PasswordHasher
	jwt     *JWTManager
	lockout *LockoutTracker
}

// NewService wires the account service.
func NewService(db *database.DB, hasher *PasswordHasher, jwt *JWTManager, lockout *LockoutTracker) *Service {
	return &Service{db: db, hasher: hasher, jwt: jwt, lockout: lockout}
}

// Signup creates an account and returns a signed token plus the
// profile. Duplicate emails fail with database.ErrEmailTaken.
func (s *Service) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	city := strings.TrimSpace(req.City)
	if city == "" {
		city = models.DefaultCity
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        models.NormalizeEmail(req.Email),
		PasswordHash: hash,
		City:         city,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.CreateUser(ctx, user); err != nil {
		metrics.RecordAuthAttempt("signup", false)
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	metrics.RecordAuthAttempt("signup", true)
	logging.Info().Str("user_id", user.ID).Msg("Account created")
	return &models.AuthResponse{Token: token, User: user.Profile(nil)}, nil
}

// Login authenticates an account and returns a signed token plus the
// profile. Repeated failures lock the subject out for a while.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := models.NormalizeEmail(req.Email)

	if locked, remaining := s.lockout.Locked(email); locked {
		metrics.RecordAuthAttempt("login", false)
		return nil, fmt.Errorf("%w: retry in %s", ErrAccountLocked, remaining.Round(time.Second))
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrUserNotFound) {
		// Burn a comparison against a constant hash so unknown emails
		// take as long as wrong passwords.
		_ = s.hasher.Compare(timingDummyHash, req.Password)
		s.lockout.RecordFailure(email)
		metrics.RecordAuthAttempt("login", false)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, ErrPasswordMismatch) {
			return nil, err
		}
		s.lockout.RecordFailure(email)
		metrics.RecordAuthAttempt("login", false)
		return nil, ErrInvalidCredentials
	}

	s.lockout.RecordSuccess(email)

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	favorites, err := s.db.ListFavorites(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	metrics.RecordAuthAttempt("login", true)
	return &models.AuthResponse{Token: token, User: user.Profile(favorites)}, nil
}

// Profile loads the caller's profile with favorites.
func (s *Service) Profile(ctx context.Context, userID string) (*models.UserProfile, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorites, err := s.db.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile(favorites)
	return &profile, nil
}

// UpdateCity changes the caller's home city and returns the refreshed
// profile.
func (s *Service) UpdateCity(ctx context.Context, userID, city string) (*models.UserProfile, error) {
	if err := s.db.UpdateUserCity(ctx, userID, strings.TrimSpace(city)); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// EnsureAdmin provisions the bootstrap admin account at startup.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}
	now := time.Now().UTC()
	return s.db.EnsureAdmin(ctx, &models.User{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        models.NormalizeEmail(email),
		PasswordHash: hash,
		City:         models.DefaultCity,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// timingDummyHash is a bcrypt hash of a random string, used to equalize
// response time for unknown emails.
const timingDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
