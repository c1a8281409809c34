// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package api

import (
	"context"
	"time"

	"github.com/tomtom215/aerographus/internal/auth"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/inference"
	"github.com/tomtom215/aerographus/internal/models"
	"github.com/tomtom215/aerographus/internal/weather"
)

// EventPublisher is the slice of the events layer the predict handler
// needs. The real publisher and NoopPublisher both satisfy it.
type EventPublisher interface {
	PublishPrediction(ctx context.Context, event *models.PredictionEvent) error
}

// Handlers carries every endpoint's dependencies. One instance serves
// all routes.
type Handlers struct {
	cfg       *config.Config
	auth      *auth.Service
	db        *database.DB
	weather   *weather.Service
	engine    *inference.Engine
	publisher EventPublisher

	version   string
	startTime time.Time
}

// NewHandlers wires the handler set. publisher may be a NoopPublisher;
// in that case predictions are persisted synchronously instead of
// flowing through the event stream.
func NewHandlers(
	cfg *config.Config,
	authSvc *auth.Service,
	db *database.DB,
	weatherSvc *weather.Service,
	engine *inference.Engine,
	publisher EventPublisher,
	version string,
) *Handlers {
	return &Handlers{
		cfg:       cfg,
		auth:      authSvc,
		db:        db,
		weather:   weatherSvc,
		engine:    engine,
		publisher: publisher,
		version:   version,
		startTime: time.Now(),
	}
}
