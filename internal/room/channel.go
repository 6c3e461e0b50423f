// Package room implements the session coordinator: the authoritative
// per-room state machine and the broadcast protocol that keeps every
// connected client's view consistent.
package room

// Event names on the wire. Inbound and outbound names deliberately mirror
// each other where the semantics match (code-change in both directions).
const (
	EventRoomState      = "room-state"
	EventUsers          = "users"
	EventCodeChange     = "code-change"
	EventChatMessage    = "chat-message"
	EventUserLeft       = "user-left"
	EventLanguageChange = "language-change"
)

// Channel is the transport the coordinator broadcasts through: a duplex
// per-connection message channel with room-scoped multicast. The websocket
// hub implements it; tests substitute a recording fake.
type Channel interface {
	// Join adds a connection to a room's multicast group.
	Join(roomID, connID string)

	// Leave removes a connection from a room's multicast group.
	Leave(roomID, connID string)

	// SendToConnection delivers an event to a single connection.
	SendToConnection(connID, event string, payload any)

	// SendToRoom delivers an event to every connection in a room.
	SendToRoom(roomID, event string, payload any)

	// SendToRoomExcept delivers an event to every connection in a room
	// except the named one (typically the sender, which already holds
	// the value it just sent).
	SendToRoomExcept(roomID, event string, payload any, exceptConnID string)
}
