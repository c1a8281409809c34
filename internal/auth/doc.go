// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

// Package auth implements first-party account authentication.
//
// Accounts are email/password pairs stored in DuckDB with bcrypt
// hashes. Successful login issues a stateless HS256 JWT carrying the
// user ID, email and role; the HTTP middleware validates the token and
// exposes the claims through the request context. A fixed-window
// lockout tracker slows online brute force against single accounts.
package auth
