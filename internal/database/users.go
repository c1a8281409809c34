// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// Sentinel errors for account operations. The API layer maps these to
// stable response codes.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// CreateUser inserts a new account. The caller supplies a populated
// User with ID, normalized email and bcrypt hash already set.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, city, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.City, user.Role,
		user.CreatedAt, user.UpdatedAt,
	)
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByEmail looks up an account by normalized email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, city, role, created_at, updated_at
		FROM users WHERE email = ?`,
		models.NormalizeEmail(email),
	)
	user, err := scanUser(row)
	metrics.RecordDBQuery("select", "users", time.Since(start), err)
	return user, err
}

// GetUserByID looks up an account by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, city, role, created_at, updated_at
		FROM users WHERE id = ?`,
		id,
	)
	user, err := scanUser(row)
	metrics.RecordDBQuery("select", "users", time.Since(start), err)
	return user, err
}

// UpdateUserCity changes the account's home city.
func (db *DB) UpdateUserCity(ctx context.Context, userID, city string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		UPDATE users SET city = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		city, userID,
	)
	metrics.RecordDBQuery("update", "users", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update city: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountUsers returns the number of registered accounts.
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not
// exist yet, or promotes an existing account with that email to admin.
// Called once at startup when ADMIN_EMAIL is configured.
func (db *DB) EnsureAdmin(ctx context.Context, admin *models.User) error {
	existing, err := db.GetUserByEmail(ctx, admin.Email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return db.CreateUser(ctx, admin)
	case err != nil:
		return err
	case existing.Role == models.RoleAdmin:
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	_, err = db.conn.ExecContext(ctx, `
		UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		models.RoleAdmin, existing.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to promote admin: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.City, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// isUniqueViolation reports whether an error is a DuckDB unique
// constraint failure. DuckDB does not expose structured error codes
// through database/sql, so this matches on the message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate key") || strings.Contains(msg, "violates unique constraint")
}
