// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/aerographus/internal/models"
)

// Health handles GET /api/v1/health. Liveness only; it answers as long
// as the process serves requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatus{
		Status:    "ok",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
	writeSuccess(w, r, http.StatusOK, status, 0, false)
}

// HealthReady handles GET /api/v1/health/ready. Readiness requires a
// reachable database; the model is reported but not required, since the
// proxy endpoints and the heuristic fallback work without it.
func (h *Handlers) HealthReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if err := h.db.Ping(r.Context()); err != nil {
		checks["database"] = err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if h.engine.Cache().PeekReady() {
		checks["model"] = "ok"
	} else {
		checks["model"] = "degraded: " + h.engine.Cache().Status().State
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeSuccess(w, r, status, models.ReadinessStatus{Ready: ready, Checks: checks}, 0, false)
}
