// Aerographus - Air Quality Analytics and AQI Inference
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/aerographus/internal/logging"
	"github.com/tomtom215/aerographus/internal/metrics"
	"github.com/tomtom215/aerographus/internal/models"
)

// Message types pushed to clients.
const (
	MessageTypeAQIUpdate  = "aqi_update"
	MessageTypePrediction = "prediction"
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
)

// Message is the envelope every websocket frame carries.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub tracks connected clients and fans broadcasts out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates an empty hub. Run it under a supervisor via Serve.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Serve implements suture.Service. Lifecycle events take priority over
// broadcasts so client state is settled before messages fan out; Go's
// select picks randomly among ready channels, which would otherwise
// make delivery order depend on scheduling.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.register:
			h.addClient(client)
			continue
		case client := <-h.unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "websocket-hub"
}

// BroadcastReading pushes a city reading to every client.
func (h *Hub) BroadcastReading(event *models.ReadingEvent) {
	h.enqueue(Message{Type: MessageTypeAQIUpdate, Data: event})
}

// BroadcastPrediction pushes a prediction to every client.
func (h *Hub) BroadcastPrediction(event *models.PredictionEvent) {
	h.enqueue(Message{Type: MessageTypePrediction, Data: event})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// enqueue hands a message to the hub loop. The hub never blocks a
// producer; when the broadcast buffer is full the message is dropped.
func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("type", message.Type).Msg("Broadcast buffer full, dropping message")
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("clients", total).Msg("Websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("clients", total).Msg("Websocket client disconnected")
}

// fanOut delivers one message to every client in ID order. Clients
// whose send buffer is full are disconnected; a stalled browser must
// not hold up the rest.
func (h *Hub) fanOut(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			metrics.WSMessagesDropped.Inc()
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	closed := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	// Cancellation is the normal shutdown path, so the reason is a
	// plain field rather than an error.
	reason := "canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "deadline"
	}

	metrics.WSConnections.Set(0)
	logging.Info().
		Int("clients_closed", closed).
		Str("reason", reason).
		Msg("Websocket hub stopped")
}
