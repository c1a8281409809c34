// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package models

import (
	"strings"
	"time"
)

// Role constants define the standard roles in the system.
// These align with the Casbin policy definitions in internal/authz.
const (
	// RoleUser is the default role assigned at signup.
	RoleUser = "user"

	// RoleAdmin can manage the tip catalog and trigger model reloads.
	RoleAdmin = "admin"
)

// ValidRoles contains all valid role names for validation.
var ValidRoles = []string{RoleUser, RoleAdmin}

// IsValidRole checks if a role name is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// DefaultCity is assigned to accounts that sign up without naming one.
const DefaultCity = "Delhi"

// User is a registered account. PasswordHash is the bcrypt hash and is
// never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	City         string    `json:"city"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile builds the client-facing view of a user, including the
// favorite cities loaded alongside the account row.
func (u *User) Profile(favorites []string) UserProfile {
	if favorites == nil {
		favorites = []string{}
	}
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		City:      u.City,
		Role:      u.Role,
		Favorites: favorites,
		CreatedAt: u.CreatedAt,
	}
}

// UserProfile is the user shape returned by the API. It never carries
// credential material.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	City      string    `json:"city"`
	Role      string    `json:"role"`
	Favorites []string  `json:"favorites"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeEmail lowercases and trims an email for storage and lookup,
// so login is case-insensitive on the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupRequest creates a new account. City is optional and defaults to
// DefaultCity.
type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	City            string `json:"city" validate:"omitempty,max=50"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the signed token and profile returned by signup
// and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// UpdateCityRequest changes the account's home city.
type UpdateCityRequest struct {
	City string `json:"city" validate:"required,min=1,max=50"`
}

// FavoriteRequest adds or removes a favorite city.
type FavoriteRequest struct {
	City string `json:"city" validate:"required,min=1,max=50"`
}
