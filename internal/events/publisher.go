// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/aerographus/internal/breaker"
	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// Publisher emits reading and prediction events to JetStream. A
// circuit breaker guards publishes so a broker outage cannot stall the
// request path; dropped events only cost history rows and live
// updates.
type Publisher struct {
	publisher message.Publisher
	breaker   *breaker.Breaker[struct{}]

	mu     sync.Mutex
	closed bool
}

// NewPublisher creates the JetStream publisher. The AQI_EVENTS stream
// must already exist (EnsureStream); auto-provisioning is off because
// the publisher would otherwise try to create a stream per subject.
func NewPublisher(cfg *config.EventsConfig) (*Publisher, error) {
	logger := newWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS publisher disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS publisher reconnected")
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}

	return &Publisher{
		publisher: pub,
		breaker:   breaker.New[struct{}]("nats-publish"),
	}, nil
}

// PublishReading emits one city reading event.
func (p *Publisher) PublishReading(ctx context.Context, event *models.ReadingEvent) error {
	return p.publish(ctx, models.SubjectReadings, event.EventID, event)
}

// PublishPrediction emits one prediction event.
func (p *Publisher) PublishPrediction(ctx context.Context, event *models.PredictionEvent) error {
	return p.publish(ctx, models.SubjectPredictions, event.EventID, event)
}

func (p *Publisher) publish(_ context.Context, subject, eventID string, payload any) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	msg := message.NewMessage(eventID, data)
	// The event ID doubles as the JetStream dedup key.
	msg.Metadata.Set(natsgo.MsgIdHdr, eventID)

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(subject, msg)
	})
	metrics.RecordEventPublished(subject, err)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close shuts the publisher down. Safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

// NoopPublisher satisfies the publishing interfaces when events are
// disabled.
type NoopPublisher struct{}

// PublishReading discards the event.
func (NoopPublisher) PublishReading(context.Context, *models.ReadingEvent) error { return nil }

// PublishPrediction discards the event.
func (NoopPublisher) PublishPrediction(context.Context, *models.PredictionEvent) error { return nil }
