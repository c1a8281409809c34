// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/aerographus/internal/auth"
	"github.com/tomtom215/aerographus/internal/models"
)

// Signup handles POST /api/v1/auth/signup.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	resp, err := h.auth.Signup(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, resp, time.Since(start), false)
}

// Login handles POST /api/v1/auth/login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, resp, time.Since(start), false)
}

// Me handles GET /api/v1/auth/me.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, codeAuth, "not authenticated", nil)
		return
	}

	start := time.Now()
	profile, err := h.auth.Profile(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, profile, time.Since(start), false)
}

// UpdateCity handles PUT /api/v1/users/me/city.
func (h *Handlers) UpdateCity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, codeAuth, "not authenticated", nil)
		return
	}

	var req models.UpdateCityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	start := time.Now()
	profile, err := h.auth.UpdateCity(r.Context(), claims.UserID, req.City)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, profile, time.Since(start), false)
}
