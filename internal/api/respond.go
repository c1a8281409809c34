// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/aerographus/internal/auth"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/inference"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/models"
	"github.com/tomtom215/aerographus/internal/validation"
	"github.com/tomtom215/aerographus/internal/weather"
)

// Error codes carried in the response envelope. These are the API
// contract; messages may change, codes may not.
const (
	codeValidation    = "VALIDATION_ERROR"
	codeAuth          = "AUTHENTICATION_ERROR"
	codeForbidden     = "AUTHORIZATION_ERROR"
	codeNotFound      = "NOT_FOUND"
	codeConflict      = "CONFLICT"
	codeModelNotReady = "MODEL_NOT_READY"
	codeUpstream      = "UPSTREAM_ERROR"
	codeRateLimited   = "RATE_LIMIT_EXCEEDED"
	codeInternal      = "INTERNAL_ERROR"
)

// maxBodySize caps request bodies. The largest legitimate body is a
// 12-field pollutant reading; 1 MiB leaves generous slack.
const maxBodySize = 1 << 20

// writeSuccess emits the success envelope. elapsed feeds query_time_ms.
func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any, elapsed time.Duration, cached bool) {
	resp := models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: elapsed.Milliseconds(),
			Cached:      cached,
		},
	}
	encode(w, r, status, resp)
}

// writeError emits the error envelope with the given code.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	resp := models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	}
	encode(w, r, status, resp)
}

// respondError maps a domain error onto a status code and envelope.
// Unknown errors become opaque 500s; the detail goes to the log, not
// the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *validation.RequestValidationError
	if errors.As(err, &reqErr) {
		apiErr := reqErr.ToAPIError()
		writeError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	var featErr *inference.InvalidFeatureInputError
	if errors.As(err, &featErr) {
		details := map[string]interface{}{}
		if len(featErr.Missing) > 0 {
			details["missing"] = featErr.Missing
		}
		if len(featErr.Invalid) > 0 {
			details["invalid"] = featErr.Invalid
		}
		writeError(w, r, http.StatusBadRequest, codeValidation, featErr.Error(), details)
		return
	}

	switch {
	case errors.Is(err, inference.ErrModelNotReady):
		writeError(w, r, http.StatusServiceUnavailable, codeModelNotReady,
			"no model bundle is loaded yet, retry shortly", nil)
	case errors.Is(err, weather.ErrCityNotFound):
		writeError(w, r, http.StatusNotFound, codeNotFound, "city not found", nil)
	case errors.Is(err, weather.ErrNoAPIKey), errors.Is(err, weather.ErrUpstream):
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Upstream weather request failed")
		writeError(w, r, http.StatusBadGateway, codeUpstream,
			"weather provider unavailable", nil)
	case errors.Is(err, database.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, codeConflict, "email already registered", nil)
	case errors.Is(err, database.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, codeNotFound, "user not found", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, codeAuth, "invalid email or password", nil)
	case errors.Is(err, auth.ErrAccountLocked):
		writeError(w, r, http.StatusTooManyRequests, codeRateLimited, err.Error(), nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("Unhandled error in request")
		writeError(w, r, http.StatusInternalServerError, codeInternal,
			"internal server error", nil)
	}
}

// decodeJSON reads and decodes a request body into dst, then validates
// struct tags. Returns false after writing the error response itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeValidation, "failed to read request body", nil)
		return false
	}
	if len(body) > maxBodySize {
		writeError(w, r, http.StatusRequestEntityTooLarge, codeValidation, "request body too large", nil)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, r, http.StatusBadRequest, codeValidation,
			fmt.Sprintf("malformed JSON body: %v", err), nil)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		respondError(w, r, verr)
		return false
	}
	return true
}

func encode(w http.ResponseWriter, r *http.Request, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}
