package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ViniZap4/notepads/domain"
)

const (
	TypeRefresh = "refresh"

	// TypeConnected is sent once to each new websocket client.
	TypeConnected = "connected"

	clientBuffer = 16
)

// Event tells connected shells that a scope changed and should be listed
// again.
type Event struct {
	ID     string       `json:"id"`
	Type   string       `json:"type"`
	Intent string       `json:"intent"`
	Scope  domain.Scope `json:"scope"`
	File   string       `json:"file,omitempty"`
}

// Hub fans events out to subscribers from a single goroutine. Subscribers that
// fall behind are dropped and their channel closed.
type Hub struct {
	clients    map[chan Event]bool
	broadcast  chan Event
	register   chan chan Event
	unregister chan chan Event
	done       chan struct{}
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[chan Event]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan chan Event),
		unregister: make(chan chan Event),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run delivers events until ctx ends, then closes every subscriber channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c)
			}

		case ev := <-h.broadcast:
			for c := range h.clients {
				select {
				case c <- ev:
				default:
					h.log.Warn().Str("event", ev.ID).Msg("subscriber too slow, dropping it")
					delete(h.clients, c)
					close(c)
				}
			}
		}
	}
}

// Publish queues an event. It never blocks once the hub has stopped.
func (h *Hub) Publish(ev Event) {
	select {
	case h.broadcast <- ev:
	case <-h.done:
	}
}

// Subscribe returns a channel of events and a function that ends the
// subscription. The channel is closed when the subscription ends.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	c := make(chan Event, clientBuffer)
	select {
	case h.register <- c:
	case <-h.done:
		close(c)
		return c, func() {}
	}
	return c, func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}
}
