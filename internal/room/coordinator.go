package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shanti-jangam/collaborative-code-env/internal/domain"
	"github.com/shanti-jangam/collaborative-code-env/internal/store"
)

// State is the full room snapshot sent to a joining connection only.
type State struct {
	Users    []domain.User    `json:"users"`
	Messages []domain.Message `json:"messages"`
	Code     string           `json:"code"`
	Language string           `json:"language"`
}

// Coordinator owns room lifecycle and the join/leave/update protocol. Every
// operation is a load-mutate-store cycle against the room store under a
// per-room lock, so the store stays the single source of truth and two
// concurrent operations on the same room never interleave their read and
// write halves. Operations on different rooms proceed in parallel.
type Coordinator struct {
	store   store.Store
	channel Channel

	// connID -> current roomID, owned here rather than stashed on
	// transport objects.
	mu    sync.Mutex
	conns map[string]string

	// roomID -> *sync.Mutex. Entries are never removed: two concurrent
	// operations must always agree on the mutex for a room id.
	locks sync.Map
}

// NewCoordinator creates a coordinator over the given store and channel.
func NewCoordinator(s store.Store, ch Channel) *Coordinator {
	return &Coordinator{
		store:   s,
		channel: ch,
		conns:   make(map[string]string),
	}
}

func (c *Coordinator) lockRoom(roomID string) func() {
	l, _ := c.locks.LoadOrStore(roomID, &sync.Mutex{})
	mutex := l.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}

// Join registers a connection in a room, creating the room lazily on first
// join. A connection previously joined to a different room leaves it first.
// The joiner gets the full room snapshot; the whole room (joiner included)
// gets the refreshed roster.
func (c *Coordinator) Join(ctx context.Context, roomID, connID, name, color string) error {
	c.mu.Lock()
	prev := c.conns[connID]
	c.mu.Unlock()

	if prev != "" && prev != roomID {
		if err := c.Leave(ctx, prev, connID); err != nil {
			slog.Warn("Failed to leave previous room", "error", err, "room_id", prev, "conn_id", connID)
		}
	}

	unlock := c.lockRoom(roomID)
	defer unlock()

	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return fmt.Errorf("load room %s: %w", roomID, err)
	}
	if room == nil {
		room = domain.NewRoom(roomID)
		slog.Info("Creating room", "room_id", roomID)
	}

	room.UpsertUser(domain.User{ID: connID, Name: name, Color: color})

	if err := c.store.Put(ctx, room); err != nil {
		return fmt.Errorf("store room %s: %w", roomID, err)
	}

	c.channel.Join(roomID, connID)
	c.mu.Lock()
	c.conns[connID] = roomID
	c.mu.Unlock()

	c.channel.SendToConnection(connID, EventRoomState, State{
		Users:    room.Users,
		Messages: room.Messages,
		Code:     room.Code,
		Language: room.Language,
	})
	c.channel.SendToRoom(roomID, EventUsers, room.Users)

	slog.Info("User joined room", "room_id", roomID, "conn_id", connID, "name", name, "users", len(room.Users))
	return nil
}

// UpdateCode overwrites the shared code buffer. Last write wins: no merge,
// no version check. An update for a room nobody has joined is silently
// dropped. The new code is broadcast to everyone except the sender.
func (c *Coordinator) UpdateCode(ctx context.Context, roomID, senderID, code string) error {
	unlock := c.lockRoom(roomID)
	defer unlock()

	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return fmt.Errorf("load room %s: %w", roomID, err)
	}
	if room == nil {
		return nil
	}

	room.Code = code
	if err := c.store.Put(ctx, room); err != nil {
		return fmt.Errorf("store room %s: %w", roomID, err)
	}

	c.channel.SendToRoomExcept(roomID, EventCodeChange, code, senderID)
	return nil
}

// PostMessage appends a chat message, applies the retention cap, and
// broadcasts the stored copy to the entire room including the sender. A
// message for an absent room is silently dropped.
func (c *Coordinator) PostMessage(ctx context.Context, roomID string, msg domain.Message) error {
	unlock := c.lockRoom(roomID)
	defer unlock()

	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return fmt.Errorf("load room %s: %w", roomID, err)
	}
	if room == nil {
		return nil
	}

	room.AppendMessage(msg)
	if err := c.store.Put(ctx, room); err != nil {
		return fmt.Errorf("store room %s: %w", roomID, err)
	}

	c.channel.SendToRoom(roomID, EventChatMessage, msg)
	return nil
}

// UpdateLanguage switches the room's language tag and notifies everyone
// except the sender. Silently dropped for absent rooms.
func (c *Coordinator) UpdateLanguage(ctx context.Context, roomID, senderID, language string) error {
	unlock := c.lockRoom(roomID)
	defer unlock()

	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return fmt.Errorf("load room %s: %w", roomID, err)
	}
	if room == nil {
		return nil
	}

	room.Language = language
	if err := c.store.Put(ctx, room); err != nil {
		return fmt.Errorf("store room %s: %w", roomID, err)
	}

	c.channel.SendToRoomExcept(roomID, EventLanguageChange, language, senderID)
	return nil
}

// Leave removes the connection's participant from the room. The room is
// deleted the instant its last user leaves; otherwise the remaining members
// get a user-left notice (carrying the departed identity) followed by the
// refreshed roster.
func (c *Coordinator) Leave(ctx context.Context, roomID, connID string) error {
	unlock := c.lockRoom(roomID)
	defer unlock()

	c.channel.Leave(roomID, connID)
	c.mu.Lock()
	if c.conns[connID] == roomID {
		delete(c.conns, connID)
	}
	c.mu.Unlock()

	room, err := c.store.Get(ctx, roomID)
	if err != nil {
		return fmt.Errorf("load room %s: %w", roomID, err)
	}
	if room == nil {
		return nil
	}

	removed, found := room.RemoveUser(connID)

	if room.Empty() {
		if err := c.store.Delete(ctx, roomID); err != nil {
			return fmt.Errorf("delete room %s: %w", roomID, err)
		}
		slog.Info("Room closed (empty)", "room_id", roomID)
		return nil
	}

	if err := c.store.Put(ctx, room); err != nil {
		return fmt.Errorf("store room %s: %w", roomID, err)
	}

	if found {
		c.channel.SendToRoom(roomID, EventUserLeft, removed)
	}
	c.channel.SendToRoom(roomID, EventUsers, room.Users)

	slog.Info("User left room", "room_id", roomID, "conn_id", connID, "remaining", len(room.Users))
	return nil
}

// Disconnect handles connection teardown: leaves whatever room the
// connection last joined, then sweeps any room left with zero users.
func (c *Coordinator) Disconnect(ctx context.Context, connID string) error {
	c.mu.Lock()
	roomID := c.conns[connID]
	c.mu.Unlock()

	if roomID != "" {
		if err := c.Leave(ctx, roomID, connID); err != nil {
			return err
		}
	}

	if _, err := c.store.CleanupEmpty(ctx); err != nil {
		return fmt.Errorf("cleanup empty rooms: %w", err)
	}
	return nil
}

// CurrentRoom returns the room a connection is joined to, or "" when unbound.
func (c *Coordinator) CurrentRoom(connID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conns[connID]
}
