// Package domain contains core domain types for the collaborative code environment.
package domain

import (
	"time"

	"github.com/samber/lo"
)

// MaxMessages is the maximum number of chat messages retained per room.
// When exceeded, the oldest messages are dropped.
const MaxMessages = 100

// DefaultLanguage is the language a freshly created room starts with.
const DefaultLanguage = "javascript"

// User represents one connected participant inside a room. ID equals the
// owning connection's identity, so there is at most one User per connection
// per room.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Message is a single chat entry. Immutable once appended.
type Message struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Room holds the authoritative collaborative state for one shared workspace:
// the roster of present users, the chat log, and the shared code buffer.
type Room struct {
	ID        string    `json:"id"`
	Users     []User    `json:"users"`
	Messages  []Message `json:"messages"`
	Code      string    `json:"code"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRoom creates an empty room with the given ID and default language.
func NewRoom(id string) *Room {
	now := time.Now()
	return &Room{
		ID:        id,
		Users:     make([]User, 0),
		Messages:  make([]Message, 0),
		Language:  DefaultLanguage,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpsertUser adds a user to the roster. A user with the same connection ID
// (e.g. a reconnect) replaces the earlier entry instead of duplicating it.
func (r *Room) UpsertUser(user User) {
	r.Users = lo.Filter(r.Users, func(u User, _ int) bool {
		return u.ID != user.ID
	})
	r.Users = append(r.Users, user)
}

// RemoveUser removes the user with the given connection ID from the roster.
// It returns the removed user and whether it was present.
func (r *Room) RemoveUser(userID string) (User, bool) {
	removed, found := lo.Find(r.Users, func(u User) bool {
		return u.ID == userID
	})
	if !found {
		return User{}, false
	}
	r.Users = lo.Filter(r.Users, func(u User, _ int) bool {
		return u.ID != userID
	})
	return removed, true
}

// Empty reports whether the room has no users left.
func (r *Room) Empty() bool {
	return len(r.Users) == 0
}

// AppendMessage appends a chat message and applies the retention cap,
// keeping the newest MaxMessages entries in arrival order.
func (r *Room) AppendMessage(msg Message) {
	r.Messages = append(r.Messages, msg)
	if len(r.Messages) > MaxMessages {
		r.Messages = r.Messages[len(r.Messages)-MaxMessages:]
	}
}

// Clone returns a deep copy of the room so callers can hand out room state
// without sharing the underlying slices.
func (r *Room) Clone() *Room {
	clone := *r
	clone.Users = make([]User, len(r.Users))
	copy(clone.Users, r.Users)
	clone.Messages = make([]Message, len(r.Messages))
	copy(clone.Messages, r.Messages)
	return &clone
}
