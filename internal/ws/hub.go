// Package ws provides the WebSocket transport: per-connection message
// channels with room-scoped multicast.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// sendBuffer is the per-connection outbound queue size. A client that
// cannot drain this many events is considered slow and starts losing
// deliveries rather than blocking the room.
const sendBuffer = 256

// envelope is the outbound wire frame.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type client struct {
	id   string
	send chan []byte
}

// Hub tracks live connections and their room membership and implements the
// coordinator's Channel interface. Delivery order to one connection matches
// send order; fan-out happens synchronously so the coordinator's per-room
// lock also serializes broadcast order.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*client
	rooms map[string]map[string]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*client),
		rooms: make(map[string]map[string]bool),
	}
}

// Register adds a connection and returns its outbound queue.
func (h *Hub) Register(connID string) <-chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &client{id: connID, send: make(chan []byte, sendBuffer)}
	h.conns[connID] = c
	slog.Info("Connection registered", "conn_id", connID)
	return c.send
}

// Unregister removes a connection, closing its outbound queue and dropping
// it from any room it was still indexed in.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)
	for roomID, members := range h.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	close(c.send)
	slog.Info("Connection unregistered", "conn_id", connID)
}

// Join adds a connection to a room's multicast group.
func (h *Hub) Join(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]bool)
	}
	h.rooms[roomID][connID] = true
}

// Leave removes a connection from a room's multicast group.
func (h *Hub) Leave(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// SendToConnection delivers an event to a single connection.
func (h *Hub) SendToConnection(connID, event string, payload any) {
	data, ok := encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, exists := h.conns[connID]; exists {
		c.deliver(data)
	}
}

// SendToRoom delivers an event to every connection in a room.
func (h *Hub) SendToRoom(roomID, event string, payload any) {
	h.sendToRoom(roomID, event, payload, "")
}

// SendToRoomExcept delivers an event to every connection in a room except
// the named one.
func (h *Hub) SendToRoomExcept(roomID, event string, payload any, exceptConnID string) {
	h.sendToRoom(roomID, event, payload, exceptConnID)
}

func (h *Hub) sendToRoom(roomID, event string, payload any, exceptConnID string) {
	data, ok := encode(event, payload)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID := range h.rooms[roomID] {
		if connID == exceptConnID {
			continue
		}
		if c, exists := h.conns[connID]; exists {
			c.deliver(data)
		}
	}
}

func (c *client) deliver(data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("Dropping event for slow connection", "conn_id", c.id)
	}
}

func encode(event string, payload any) ([]byte, bool) {
	data, err := json.Marshal(envelope{Type: event, Payload: payload})
	if err != nil {
		slog.Error("Failed to encode event", "event", event, "error", err)
		return nil, false
	}
	return data, true
}
