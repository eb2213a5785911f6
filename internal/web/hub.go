// Package web serves the dashboard page and streams board events to it.
package web

import (
	"log"
	"sync"

	"StockPulse/internal/display"
	"StockPulse/internal/metrics"

	"github.com/gorilla/websocket"
)

const sendBuffer = 256

// Hub manages WebSocket clients. Each client holds its own board
// subscription; the hub only tracks membership.
type Hub struct {
	Board   *display.Board
	Metrics *metrics.Metrics

	mu      sync.RWMutex
	clients map[*Client]bool
}

// NewHub creates a Hub that streams board.
func NewHub(board *display.Board, m *metrics.Metrics) *Hub {
	return &Hub{
		Board:   board,
		Metrics: m,
		clients: make(map[*Client]bool),
	}
}

// HandleWSRequest registers an upgraded connection. The client first receives
// the board snapshot, then every later event in order.
func (h *Hub) HandleWSRequest(conn *websocket.Conn) {
	snap, events, cancel := h.Board.SubscribeWithSnapshot(sendBuffer)
	client := &Client{
		conn:     conn,
		hub:      h,
		snapshot: snap,
		events:   events,
		cancel:   cancel,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()
	if h.Metrics != nil {
		h.Metrics.WSClients.Set(float64(count))
	}
	log.Printf("[INFO] ws client connected (%d total)", count)

	go client.writePump()
	go client.readPump()
}

// RemoveClient drops a client and ends its subscription.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.cancel()
	if h.Metrics != nil {
		h.Metrics.WSClients.Set(float64(count))
	}
	log.Printf("[INFO] ws client disconnected (%d total)", count)
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.RemoveClient(c)
	}
}
