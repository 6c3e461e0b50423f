package store

import (
	"context"
	"sync"

	"github.com/shanti-jangam/collaborative-code-env/internal/domain"
)

// MemoryStore implements Store with an in-process map. Room state is lost
// on restart, which the persistence model explicitly allows.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
}

// NewMemory creates an empty in-memory room store.
func NewMemory() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*domain.Room)}
}

// Get retrieves a room by ID. Returns (nil, nil) when the room does not exist.
func (s *MemoryStore) Get(_ context.Context, roomID string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, nil
	}
	// Hand out a deep copy so callers never share slices with the store.
	return room.Clone(), nil
}

// Put creates or fully replaces a room record.
func (s *MemoryStore) Put(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[room.ID] = room.Clone()
	return nil
}

// Delete removes a room. Deleting an absent room is not an error.
func (s *MemoryStore) Delete(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rooms, roomID)
	return nil
}

// CleanupEmpty removes every room left with zero users.
func (s *MemoryStore) CleanupEmpty(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, room := range s.rooms {
		if room.Empty() {
			delete(s.rooms, id)
			deleted++
		}
	}
	return deleted, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
