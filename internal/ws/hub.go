package ws

import (
	"encoding/json"
	"sync"

	"trail_miniapp/internal/logger"
)

// Event is a server push sent to connected Mini App clients so they can
// refresh without polling.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

const (
	// EventAccountUpdate carries a fresh balance/status/level snapshot for
	// one account; delivered only to that account's connections.
	EventAccountUpdate = "account_update"

	// EventLeaderboard signals that balances moved and the leaderboard view
	// should be refetched; broadcast to everyone.
	EventLeaderboard = "leaderboard"
)

// Hub fans events out to connected clients. Connections register per account
// id; the same account may hold several (multiple devices).
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends the event to every connection. Slow clients are dropped
// rather than blocking the sender.
func (h *Hub) Broadcast(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// send buffer full, the client is too slow
			go h.unregister(c)
		}
	}
}

// Notify sends the event to the given account's connections only.
func (h *Hub) Notify(accountID int64, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.accountID != accountID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			go h.unregister(c)
		}
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
