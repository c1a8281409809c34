// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/database"
	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// Store is the persistence surface the consumer writes through.
// *database.DB satisfies it.
type Store interface {
	InsertCityReading(ctx context.Context, r *models.HistoricalReading) error
	InsertPrediction(ctx context.Context, rec *database.PredictionRecord) error
}

// Broadcaster pushes consumed events to live websocket clients. The
// websocket hub satisfies it; nil disables forwarding.
type Broadcaster interface {
	BroadcastReading(event *models.ReadingEvent)
	BroadcastPrediction(event *models.PredictionEvent)
}

// Consumer is the durable JetStream consumer service. It persists each
// event to DuckDB and forwards it to the websocket hub. Runs under the
// data supervisor.
type Consumer struct {
	cfg         *config.EventsConfig
	store       Store
	broadcaster Broadcaster
}

// NewConsumer creates the consumer service.
func NewConsumer(cfg *config.EventsConfig, store Store, broadcaster Broadcaster) *Consumer {
	return &Consumer{cfg: cfg, store: store, broadcaster: broadcaster}
}

// Serve implements suture.Service. It subscribes to both event
// subjects and processes messages until the context is canceled; any
// subscription fault returns so the supervisor restarts the service.
func (c *Consumer) Serve(ctx context.Context) error {
	subscriber, err := c.newSubscriber()
	if err != nil {
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	defer func() {
		if cerr := subscriber.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close event subscriber")
		}
	}()

	readings, err := subscriber.Subscribe(ctx, models.SubjectReadings)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", models.SubjectReadings, err)
	}
	predictions, err := subscriber.Subscribe(ctx, models.SubjectPredictions)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", models.SubjectPredictions, err)
	}

	logging.Info().Msg("Event consumer started")

	for {
		select {
		case msg, ok := <-readings:
			if !ok {
				return fmt.Errorf("readings subscription closed")
			}
			c.process(ctx, models.SubjectReadings, msg, c.handleReading)
		case msg, ok := <-predictions:
			if !ok {
				return fmt.Errorf("predictions subscription closed")
			}
			c.process(ctx, models.SubjectPredictions, msg, c.handlePrediction)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (c *Consumer) String() string {
	return "events-consumer"
}

// process runs one handler and acks on success. Malformed payloads are
// acked too; redelivery cannot fix them and they would otherwise loop
// until MaxDeliver.
func (c *Consumer) process(ctx context.Context, subject string, msg *message.Message, handle func(context.Context, []byte) error) {
	start := time.Now()
	err := handle(ctx, msg.Payload)
	switch {
	case err == nil:
		metrics.RecordEventConsumed(subject, "ok", time.Since(start))
		msg.Ack()
	case isDecodeError(err):
		metrics.RecordEventConsumed(subject, "malformed", time.Since(start))
		logging.Error().Err(err).Str("subject", subject).Str("event_id", msg.UUID).Msg("Dropping malformed event")
		msg.Ack()
	default:
		metrics.RecordEventConsumed(subject, "error", time.Since(start))
		logging.Warn().Err(err).Str("subject", subject).Str("event_id", msg.UUID).Msg("Event handling failed, nacking")
		msg.Nack()
	}
}

func (c *Consumer) handleReading(ctx context.Context, payload []byte) error {
	var event models.ReadingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return &decodeError{err}
	}

	reading := &models.HistoricalReading{
		City:       event.City,
		Time:       event.ObservedAt,
		AQI:        event.AQI,
		Pollutants: event.Pollutants,
	}
	if err := c.store.InsertCityReading(ctx, reading); err != nil {
		return err
	}

	if c.broadcaster != nil {
		c.broadcaster.BroadcastReading(&event)
	}
	return nil
}

func (c *Consumer) handlePrediction(ctx context.Context, payload []byte) error {
	var event models.PredictionEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return &decodeError{err}
	}

	readingJSON, err := json.Marshal(event.Reading)
	if err != nil {
		return &decodeError{err}
	}

	record := &database.PredictionRecord{
		ID:           event.EventID,
		UserID:       event.UserID,
		PredictedAQI: event.PredictedAQI,
		Category:     event.Category,
		Source:       event.Source,
		Reading:      string(readingJSON),
	}
	if err := c.store.InsertPrediction(ctx, record); err != nil {
		return err
	}

	if c.broadcaster != nil {
		c.broadcaster.BroadcastPrediction(&event)
	}
	return nil
}

func (c *Consumer) newSubscriber() (message.Subscriber, error) {
	logger := newWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(c.cfg.MaxReconnects),
		natsgo.ReconnectWait(c.cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS consumer disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS consumer reconnected")
		}),
	}

	ackWait := c.cfg.AckWaitTimeout
	if ackWait <= 0 {
		ackWait = 30 * time.Second
	}
	subscribers := c.cfg.SubscribersCount
	if subscribers <= 0 {
		subscribers = 1
	}

	subOpts := []natsgo.SubOpt{
		natsgo.MaxDeliver(5),
		natsgo.AckWait(ackWait),
		natsgo.DeliverNew(),
		// The stream already exists; binding avoids the subscriber
		// trying to provision one per subject.
		natsgo.BindStream(StreamName),
	}

	return wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              c.cfg.URL,
		QueueGroupPrefix: c.cfg.QueueGroup,
		SubscribersCount: subscribers,
		AckWaitTimeout:   ackWait,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision:    false,
			DurablePrefix:    c.cfg.DurableName,
			SubscribeOptions: subOpts,
		},
	}, logger)
}

// decodeError marks payloads that can never be processed.
type decodeError struct{ err error }

func (e *decodeError) Error() string { return "failed to decode event: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func isDecodeError(err error) bool {
	var de *decodeError
	return errors.As(err, &de)
}
