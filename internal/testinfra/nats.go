// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

//go:build integration

package testinfra

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNATSImage is the official NATS server image.
	DefaultNATSImage = "nats:2.12-alpine"

	// natsClientPort is the client connection port inside the container.
	natsClientPort = "4222"
)

// NATSContainer is a running NATS JetStream broker for integration
// tests against a real external server rather than the embedded one.
type NATSContainer struct {
	container testcontainers.Container

	// URL is the client connection URL (nats://host:port).
	URL string
}

// NewNATSContainer starts a NATS container with JetStream enabled and
// waits until it accepts client connections.
func NewNATSContainer(ctx context.Context) (*NATSContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultNATSImage,
		Cmd:          []string{"-js"},
		ExposedPorts: []string{natsClientPort + "/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(natsClientPort+"/tcp"),
			wait.ForLog("Server is ready"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start nats container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to resolve container host: %w", err)
	}
	port, err := container.MappedPort(ctx, natsClientPort+"/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to resolve mapped port: %w", err)
	}

	return &NATSContainer{
		container: container,
		URL:       fmt.Sprintf("nats://%s:%s", host, port.Port()),
	}, nil
}

// Terminate stops and removes the container.
func (c *NATSContainer) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}
