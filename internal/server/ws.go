package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/atrium/internal/weather"
)

// Hub tracks websocket subscribers and pushes weather updates to them.
// Writes are serialized through the hub mutex; gorilla connections do not
// support concurrent writers.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader
	logger   hclog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger hclog.Logger) *Hub {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends the parameter set to every subscriber, dropping
// connections that fail to accept the write.
func (h *Hub) Broadcast(p weather.Params) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(p); err != nil {
			h.logger.Debug("dropping subscriber", "error", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		conn.Close()
		delete(h.clients, conn)
	}
}

// serve upgrades the request, sends the initial parameter set when one
// exists, then blocks reading until the client disconnects.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, initial *weather.Params) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	if initial != nil {
		if err := conn.WriteJSON(initial); err != nil {
			conn.Close()
			delete(h.clients, conn)
			h.mu.Unlock()
			return
		}
	}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		if h.clients[conn] {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}()

	// Inbound messages are ignored; the read loop only detects disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
