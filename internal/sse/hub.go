// Package sse fans gallery change notifications out to connected
// event-stream clients so public pages know when to refetch.
package sse

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dimitrije/folio-api/internal/models"
	"go.uber.org/zap"
)

const (
	EventArtworkCreated  = "artwork_created"
	EventArtworkDeleted  = "artwork_deleted"
	EventSiteInfoUpdated = "site_info_updated"
)

const clientBuffer = 16

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type ArtworkCreatedEvent struct {
	Artwork models.Artwork `json:"artwork"`
}

type ArtworkDeletedEvent struct {
	ID string `json:"id"`
}

type Client struct {
	ID   string
	Send chan []byte
}

func NewClient(id string) *Client {
	return &Client{ID: id, Send: make(chan []byte, clientBuffer)}
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client's Send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to encode event", zap.String("type", event.Type), zap.Error(err))
				continue
			}
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- data:
				default:
					h.logger.Debug("client buffer full, dropping event",
						zap.String("client_id", client.ID), zap.String("type", event.Type))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an event for every connected client without blocking. The
// event is dropped when the queue is full.
func (h *Hub) Publish(eventType string, data any) {
	select {
	case h.broadcast <- Event{Type: eventType, Data: data}:
	default:
		h.logger.Warn("event queue full, dropping event", zap.String("type", eventType))
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) ArtworkCreated(artwork models.Artwork) {
	h.Publish(EventArtworkCreated, ArtworkCreatedEvent{Artwork: artwork})
}

func (h *Hub) ArtworkDeleted(id string) {
	h.Publish(EventArtworkDeleted, ArtworkDeletedEvent{ID: id})
}

func (h *Hub) SiteInfoUpdated(info models.SiteInfo) {
	h.Publish(EventSiteInfoUpdated, info)
}
