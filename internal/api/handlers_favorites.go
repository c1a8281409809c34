// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/aerographus/internal/auth"
	"github.com/tomtom215/aerographus/internal/models"
)

// favoriteResult is the payload of the add/remove endpoints. Both are
// idempotent; Changed tells the client whether anything happened.
type favoriteResult struct {
	City    string `json:"city"`
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

// ListFavorites handles GET /api/v1/favorites.
func (h *Handlers) ListFavorites(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, codeAuth, "not authenticated", nil)
		return
	}

	start := time.Now()
	favorites, err := h.db.ListFavorites(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if favorites == nil {
		favorites = []string{}
	}
	writeSuccess(w, r, http.StatusOK, favorites, time.Since(start), false)
}

// AddFavorite handles POST /api/v1/favorites.
func (h *Handlers) AddFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, codeAuth, "not authenticated", nil)
		return
	}

	var req models.FavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	city := strings.TrimSpace(req.City)

	start := time.Now()
	added, err := h.db.AddFavorite(r.Context(), claims.UserID, city)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result := favoriteResult{City: city, Changed: added, Message: "added to favorites"}
	if !added {
		result.Message = "already in favorites"
	}
	writeSuccess(w, r, http.StatusOK, result, time.Since(start), false)
}

// RemoveFavorite handles DELETE /api/v1/favorites/{city}.
func (h *Handlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, codeAuth, "not authenticated", nil)
		return
	}

	city := strings.TrimSpace(chi.URLParam(r, "city"))
	if city == "" || len(city) > 50 {
		writeError(w, r, http.StatusBadRequest, codeValidation,
			"city must be 1-50 characters", nil)
		return
	}

	start := time.Now()
	removed, err := h.db.RemoveFavorite(r.Context(), claims.UserID, city)
	if err != nil {
		respondError(w, r, err)
		return
	}

	result := favoriteResult{City: city, Changed: removed, Message: "removed from favorites"}
	if !removed {
		result.Message = "not in favorites"
	}
	writeSuccess(w, r, http.StatusOK, result, time.Since(start), false)
}
