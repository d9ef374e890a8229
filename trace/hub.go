package trace

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const maxWSConnections = 200

// Hub broadcasts Events to connected websocket observers. A single
// broadcaster loop avoids one ticker per connection.
type Hub struct {
	clients    map[*websocket.Conn]struct{}
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	publish    chan Event
	mu         sync.RWMutex
}

// NewHub returns an idle Hub; call Run to start its broadcast loop.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]struct{}),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		publish:    make(chan Event, 256),
	}
}

// Publish enqueues e for broadcast to every connected client. It never
// blocks the caller: a full buffer drops the event.
func (h *Hub) Publish(e Event) {
	select {
	case h.publish <- e:
	default:
		log.Printf("trace hub: dropping event, publish buffer full")
	}
}

// Run drives the hub until ctx is canceled, closing every connection on
// the way out.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if len(h.clients) >= maxWSConnections {
				h.mu.Unlock()
				conn.Close()
				log.Printf("trace hub: connection rejected, max connections (%d) reached", maxWSConnections)
				continue
			}
			h.clients[conn] = struct{}{}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case e := <-h.publish:
			h.broadcast(e)
		}
	}
}

func (h *Hub) broadcast(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(e); err != nil {
			log.Printf("trace hub: write error: %v", err)
			go h.Unregister(conn)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]struct{})
}

// Register adds a newly-upgraded connection to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) { h.register <- conn }

// Unregister removes and closes conn.
func (h *Hub) Unregister(conn *websocket.Conn) { h.unregister <- conn }

// ClientCount returns the number of currently connected observers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
