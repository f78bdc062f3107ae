// Package streaming delivers live ingest progress to browsers over SSE.
package streaming

import (
	"context"
	"log"
	"sync"
	"time"
)

// Client represents a connected SSE client
type Client struct {
	Events chan SSEEvent
}

// NewClient creates a new SSE client
func NewClient() *Client {
	return &Client{
		Events: make(chan SSEEvent, 10),
	}
}

// IngestBroadcaster broadcasts events to multiple clients following a single
// ingest run.
type IngestBroadcaster struct {
	mu       sync.RWMutex
	clients  map[*Client]bool
	events   chan SSEEvent
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopped  bool
}

// NewIngestBroadcaster creates a new ingest broadcaster
func NewIngestBroadcaster(ctx context.Context) *IngestBroadcaster {
	ctx, cancel := context.WithCancel(ctx)
	return &IngestBroadcaster{
		clients: make(map[*Client]bool),
		events:  make(chan SSEEvent, 100),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a client to the broadcaster
func (b *IngestBroadcaster) Register(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = true
	log.Printf("INFO: Client registered, total clients: %d", len(b.clients))
}

// Unregister removes a client from the broadcaster
func (b *IngestBroadcaster) Unregister(client *Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		// Only close the channel if the broadcaster hasn't been stopped
		// (Stop() already closes all client channels)
		if !b.stopped {
			close(client.Events)
		}
		log.Printf("INFO: Client unregistered, total clients: %d", len(b.clients))
	}
}

// ClientCount returns the number of connected clients
func (b *IngestBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Broadcast sends an event to all registered clients
func (b *IngestBroadcaster) Broadcast(event SSEEvent) {
	b.mu.RLock()
	if b.stopped {
		b.mu.RUnlock()
		return
	}
	b.mu.RUnlock()

	// For terminal events (Complete, Error), try harder to deliver
	if event.Type == EventTypeComplete || event.Type == EventTypeError {
		select {
		case b.events <- event:
			return
		case <-b.ctx.Done():
			return
		case <-time.After(100 * time.Millisecond):
			log.Printf("ERROR: Failed to send terminal event type %s - clients may hang. Channel capacity: %d", event.Type, cap(b.events))
		}
		return
	}

	// Non-terminal events are dropped when the channel is full
	select {
	case b.events <- event:
	case <-b.ctx.Done():
	default:
		log.Printf("WARN: Event channel full, dropping event type: %s", event.Type)
	}
}

// Stop stops the broadcaster and cleans up resources
func (b *IngestBroadcaster) Stop() {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.stopped = true
		for client := range b.clients {
			close(client.Events)
			delete(b.clients, client)
		}
		b.mu.Unlock()
		b.cancel()
		close(b.events)
	})
}

// Start starts broadcasting events to all clients
func (b *IngestBroadcaster) Start() {
	go func() {
		defer b.Stop()
		for {
			select {
			case <-b.ctx.Done():
				return
			case event, ok := <-b.events:
				if !ok {
					return
				}
				b.broadcastToClients(event)

				// Terminal events end the stream after a short drain delay
				if event.Type == EventTypeComplete || event.Type == EventTypeError {
					time.Sleep(100 * time.Millisecond)
					return
				}
			}
		}
	}()
}

// broadcastToClients sends an event to all registered clients
func (b *IngestBroadcaster) broadcastToClients(event SSEEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		// For terminal events (Complete, Error), try harder to deliver
		if event.Type == EventTypeComplete || event.Type == EventTypeError {
			select {
			case client.Events <- event:
			case <-time.After(50 * time.Millisecond):
				log.Printf("ERROR: Failed to send terminal event type %s to client - client may hang. Channel capacity: %d", event.Type, cap(client.Events))
			}
			continue
		}

		// Non-terminal events skip clients with full channels
		select {
		case client.Events <- event:
		default:
			log.Printf("WARN: Client channel full, skipping event type: %s", event.Type)
		}
	}
}

// StreamHub manages broadcasters for multiple concurrent ingest runs.
type StreamHub struct {
	mu           sync.RWMutex
	broadcasters map[string]*IngestBroadcaster
}

// NewStreamHub creates a new stream hub
func NewStreamHub() *StreamHub {
	return &StreamHub{
		broadcasters: make(map[string]*IngestBroadcaster),
	}
}

// Register registers a client for an ingest run and returns the client
func (h *StreamHub) Register(ctx context.Context, ingestID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := NewClient()

	broadcaster, exists := h.broadcasters[ingestID]
	if !exists {
		broadcaster = NewIngestBroadcaster(ctx)
		h.broadcasters[ingestID] = broadcaster
		broadcaster.Start()
		log.Printf("INFO: Created new broadcaster for ingest %s", ingestID)
	}

	broadcaster.Register(client)
	return client
}

// Unregister removes a client from an ingest run
func (h *StreamHub) Unregister(ingestID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	broadcaster, exists := h.broadcasters[ingestID]
	if !exists {
		return
	}

	broadcaster.Unregister(client)

	// If this was the last client, clean up the broadcaster
	if broadcaster.ClientCount() == 0 {
		log.Printf("INFO: Last client disconnected from ingest %s, stopping broadcaster", ingestID)
		broadcaster.Stop()
		delete(h.broadcasters, ingestID)
	}
}

// Broadcast sends an event to all clients following an ingest run. Runs with
// no connected clients are silently skipped.
func (h *StreamHub) Broadcast(ingestID string, event SSEEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	broadcaster, exists := h.broadcasters[ingestID]
	if !exists {
		return
	}

	broadcaster.Broadcast(event)
}

// IsRunning checks if an ingest broadcaster exists
func (h *StreamHub) IsRunning(ingestID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.broadcasters[ingestID]
	return exists
}
