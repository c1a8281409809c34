// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
)

// Handler upgrades /ws requests and attaches clients to the hub.
type Handler struct {
	hub      *Hub
	cfg      *config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewHandler creates the /ws endpoint handler. Origin checking is left
// permissive; the dashboard is served from arbitrary hosts and the
// endpoint only pushes public readings.
func NewHandler(hub *Hub, cfg *config.WebSocketConfig) *Handler {
	return &Handler{
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Enabled {
		http.Error(w, "websocket disabled", http.StatusNotImplemented)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		logging.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	NewClient(h.hub, conn, h.cfg.MaxMessageSize).Start()
}
