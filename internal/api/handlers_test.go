// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/models"
)

// pollutantReading returns a full 12-feature reading.
func pollutantReading() map[string]any {
	return map[string]any{
		"PM2.5": 30.0, "PM10": 250.0, "NO": 10.0, "NO2": 20.0,
		"NOx": 15.0, "NH3": 2.0, "CO": 500.0, "SO2": 10.0,
		"O3": 30.0, "Benzene": 1.0, "Toluene": 2.0, "Xylene": 0.5,
	}
}

func TestCityAQIEndpoint(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/cities/Delhi/aqi", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, envelope = %+v", status, envelope)
	}
	data := envelope.Data.(map[string]any)
	if data["aqi"] != 200.0 {
		t.Errorf("aqi = %v, want 200", data["aqi"])
	}
	if data["dominant_pollutant"] != "PM10" {
		t.Errorf("dominant_pollutant = %v, want PM10", data["dominant_pollutant"])
	}
}

func TestCityAQIUnknownCity(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/cities/Nowhere/aqi", "", nil)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if errorCode(envelope) != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", errorCode(envelope))
	}
}

func TestCityOverviewEndpoint(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/cities/Delhi", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	data := envelope.Data.(map[string]any)
	if data["aqi"] == nil || data["weather"] == nil {
		t.Errorf("overview missing sections: %v", data)
	}
}

func TestPollutantsEndpoint(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/pollutants?lat=28.6&lon=77.2", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	data := envelope.Data.(map[string]any)
	if data["PM10"] != 250.0 {
		t.Errorf("PM10 = %v, want 250", data["PM10"])
	}
	// Not provided by the upstream; must stay null rather than zero.
	if v, present := data["NOx"]; present && v != nil {
		t.Errorf("NOx = %v, want null", v)
	}
}

func TestPollutantsRejectsBadCoords(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/pollutants?lat=999&lon=10", "", nil)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
	if errorCode(envelope) != "VALIDATION_ERROR" {
		t.Errorf("code = %q", errorCode(envelope))
	}
}

func TestAutocompleteShortQuery(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/cities/autocomplete?query=D", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if list := envelope.Data.([]any); len(list) != 0 {
		t.Errorf("suggestions = %v, want empty", list)
	}
}

func TestTipsCatalog(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/tips", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if list := envelope.Data.([]any); len(list) == 0 {
		t.Error("seeded catalog is empty")
	}
}

func TestRelevantTipsByCity(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	// Delhi resolves to AQI 200 dominated by PM10 via the fake upstream.
	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/tips/relevant", "",
		models.RelevantTipsRequest{City: "Delhi"})
	if status != http.StatusOK {
		t.Fatalf("status = %d, envelope = %+v", status, envelope)
	}
	data := envelope.Data.(map[string]any)
	if data["aqi"] != 200.0 {
		t.Errorf("aqi = %v, want 200", data["aqi"])
	}
	if data["pollutant"] != "PM10" {
		t.Errorf("pollutant = %v, want PM10", data["pollutant"])
	}
	if tips := data["tips"].([]any); len(tips) == 0 {
		t.Error("no tips matched AQI 200")
	}
}

func TestRelevantTipsByLevel(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/tips/relevant", "",
		models.RelevantTipsRequest{AQI: 350})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	data := envelope.Data.(map[string]any)
	if data["aqi"] != 350.0 {
		t.Errorf("aqi = %v, want 350", data["aqi"])
	}
}

func TestCreateTipRequiresAdmin(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)
	token := env.signup(t, "user-tip@example.com")

	status, _ := env.doJSON(t, http.MethodPost, "/api/v1/tips", token, models.CreateTipRequest{
		Category: "health",
		MinAQI:   200,
		MaxAQI:   500,
		Text:     "Wear an N95 mask when stepping outside today.",
	})
	if status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", status)
	}
}

func TestPredictHeuristicFallback(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)
	token := env.signup(t, "predict@example.com")

	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/predict", token, pollutantReading())
	if status != http.StatusOK {
		t.Fatalf("status = %d, envelope = %+v", status, envelope)
	}
	data := envelope.Data.(map[string]any)
	if data["source"] != "heuristic" {
		t.Errorf("source = %v, want heuristic", data["source"])
	}
	// PM10 250 dominates: sub-index 200.
	if data["predicted_aqi"] != 200.0 {
		t.Errorf("predicted_aqi = %v, want 200", data["predicted_aqi"])
	}

	// Events are disabled in the test config, so the prediction must be
	// persisted synchronously under the caller's account.
	_, me := env.doJSON(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	userID, _ := me.Data.(map[string]any)["id"].(string)
	records, err := env.db.RecentPredictions(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("RecentPredictions() failed: %v", err)
	}
	found := false
	for _, rec := range records {
		if rec.Source == "heuristic" && rec.PredictedAQI == 200 {
			found = true
		}
	}
	if !found {
		t.Errorf("prediction not persisted, records = %+v", records)
	}
}

func TestPredictReportsMissingAndInvalid(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)
	token := env.signup(t, "invalid@example.com")

	reading := pollutantReading()
	delete(reading, "Xylene")
	reading["CO"] = "not a number"

	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/predict", token, reading)
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, envelope = %+v", status, envelope)
	}
	if errorCode(envelope) != "VALIDATION_ERROR" {
		t.Fatalf("code = %q", errorCode(envelope))
	}

	details := envelope.Error.Details
	missing, _ := details["missing"].([]any)
	invalid, _ := details["invalid"].([]any)
	if len(missing) != 1 || missing[0] != "Xylene" {
		t.Errorf("missing = %v, want [Xylene]", missing)
	}
	if len(invalid) != 1 || invalid[0] != "CO" {
		t.Errorf("invalid = %v, want [CO]", invalid)
	}
}

func TestPredictNotReadyWithoutFallback(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, func(cfg *config.Config) {
		cfg.Model.HeuristicFallback = false
	})
	token := env.signup(t, "noready@example.com")

	status, envelope := env.doJSON(t, http.MethodPost, "/api/v1/predict", token, pollutantReading())
	if status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
	if errorCode(envelope) != "MODEL_NOT_READY" {
		t.Errorf("code = %q, want MODEL_NOT_READY", errorCode(envelope))
	}
}

func TestModelStatusEndpoint(t *testing.T) {
	t.Parallel()
	env := setupTestServer(t, nil)

	status, envelope := env.doJSON(t, http.MethodGet, "/api/v1/model/status", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	data := envelope.Data.(map[string]any)
	if data["state"] == "" {
		t.Errorf("state missing: %v", data)
	}
}
