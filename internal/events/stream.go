// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package events

import (
	"context"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/logging"
)

// StreamName is the JetStream stream holding every aqi.> subject.
const StreamName = "AQI_EVENTS"

// EnsureStream creates or updates the AQI_EVENTS stream. Idempotent;
// publishers and the consumer both call it on startup so ordering does
// not matter.
func EnsureStream(ctx context.Context, cfg *config.EventsConfig) error {
	nc, err := natsgo.Connect(cfg.URL,
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
	)
	if err != nil {
		return fmt.Errorf("failed to connect for stream setup: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	maxAge := time.Duration(cfg.RetentionDays) * 24 * time.Hour
	if cfg.RetentionDays <= 0 {
		maxAge = 7 * 24 * time.Hour
	}

	streamCfg := jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{"aqi.>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      maxAge,
		Duplicates:  2 * time.Minute,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		AllowDirect: true,
	}

	if _, err := js.CreateOrUpdateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", StreamName, err)
	}

	logging.Info().Str("stream", StreamName).Dur("max_age", maxAge).Msg("JetStream stream ready")
	return nil
}
