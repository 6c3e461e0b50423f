// Package store provides room persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/shanti-jangam/collaborative-code-env/internal/domain"
)

// Store defines the interface for persisting room state. It is the single
// source of truth: the coordinator re-reads, mutates, and writes back on
// every operation rather than caching rooms.
type Store interface {
	// Get retrieves a room by ID. Returns (nil, nil) when the room does
	// not exist.
	Get(ctx context.Context, roomID string) (*domain.Room, error)

	// Put creates or fully replaces a room record.
	Put(ctx context.Context, room *domain.Room) error

	// Delete removes a room. Deleting an absent room is not an error.
	Delete(ctx context.Context, roomID string) error

	// CleanupEmpty removes every room left with zero users and returns how
	// many were deleted. In normal operation the coordinator deletes a
	// room the moment its last user leaves; this catches rooms stranded
	// by a crash mid-cycle.
	CleanupEmpty(ctx context.Context) (int64, error)

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing storage.
	Close() error
}
