// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package events

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/aerographus/internal/config"
	"github.com/tomtom215/aerographus/internal/models"
)

// TestPublishConsumeRoundtrip exercises the full event path against a
// real embedded NATS server: stream provisioning, JetStream publish,
// durable consume, persistence and broadcast.
func TestPublishConsumeRoundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping NATS roundtrip in short mode")
	}

	srv, err := NewEmbeddedServer(&config.EventsConfig{StoreDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewEmbeddedServer() failed: %v", err)
	}
	t.Cleanup(srv.Shutdown)

	cfg := &config.EventsConfig{
		Enabled:          true,
		URL:              srv.ClientURL(),
		DurableName:      "test-durable",
		QueueGroup:       "test-group",
		SubscribersCount: 1,
		AckWaitTimeout:   5 * time.Second,
		MaxReconnects:    3,
		ReconnectWait:    100 * time.Millisecond,
		RetentionDays:    1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := EnsureStream(ctx, cfg); err != nil {
		t.Fatalf("EnsureStream() failed: %v", err)
	}

	store := &fakeStore{}
	broadcaster := &fakeBroadcaster{}
	consumer := NewConsumer(cfg, store, broadcaster)

	serveDone := make(chan error, 1)
	go func() { serveDone <- consumer.Serve(ctx) }()

	// DeliverNew consumers only see messages published after the
	// subscription exists; give it a moment to come up.
	time.Sleep(time.Second)

	publisher, err := NewPublisher(cfg)
	if err != nil {
		t.Fatalf("NewPublisher() failed: %v", err)
	}
	t.Cleanup(func() { _ = publisher.Close() })

	event := &models.ReadingEvent{
		EventID:    "roundtrip-1",
		City:       "Delhi",
		AQI:        231,
		Category:   "Poor",
		ObservedAt: time.Now().UTC(),
	}
	if err := publisher.PublishReading(ctx, event); err != nil {
		t.Fatalf("PublishReading() failed: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		store.mu.Lock()
		persisted := len(store.readings)
		store.mu.Unlock()
		if persisted >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("event not consumed within deadline")
		}
		time.Sleep(100 * time.Millisecond)
	}

	store.mu.Lock()
	got := store.readings[0]
	store.mu.Unlock()
	if got.City != "Delhi" || got.AQI != 231 {
		t.Errorf("persisted reading = %+v", got)
	}

	broadcaster.mu.Lock()
	forwarded := len(broadcaster.readings)
	broadcaster.mu.Unlock()
	if forwarded != 1 {
		t.Errorf("broadcast count = %d, want 1", forwarded)
	}

	cancel()
	select {
	case <-serveDone:
	case <-time.After(10 * time.Second):
		t.Error("consumer did not stop after cancel")
	}
}
