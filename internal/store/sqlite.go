package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shanti-jangam/collaborative-code-env/internal/domain"
	"github.com/shanti-jangam/collaborative-code-env/internal/shared"
	_ "modernc.org/sqlite"
)

const (
	writeMaxRetries = 3
	writeRetryDelay = 50 * time.Millisecond
)

// SQLiteStore implements Store using SQLite. Users and messages are stored
// as JSON columns: rooms are read and written whole, matching the
// load-mutate-store cycle of the coordinator.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed room store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS rooms (
		room_id TEXT PRIMARY KEY,
		users_json TEXT NOT NULL,
		messages_json TEXT NOT NULL,
		code TEXT NOT NULL,
		language TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rooms_updated ON rooms(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get retrieves a room by ID. Returns (nil, nil) when the room does not exist.
func (s *SQLiteStore) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	query := `
		SELECT room_id, users_json, messages_json, code, language, created_at, updated_at
		FROM rooms WHERE room_id = ?`

	row := s.db.QueryRowContext(ctx, query, roomID)

	var room domain.Room
	var usersJSON, messagesJSON string
	var createdAt, updatedAt int64

	err := row.Scan(&room.ID, &usersJSON, &messagesJSON, &room.Code, &room.Language, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan room row: %w", err)
	}

	if err := json.Unmarshal([]byte(usersJSON), &room.Users); err != nil {
		return nil, fmt.Errorf("decode users for room %s: %w", roomID, err)
	}
	if err := json.Unmarshal([]byte(messagesJSON), &room.Messages); err != nil {
		return nil, fmt.Errorf("decode messages for room %s: %w", roomID, err)
	}

	room.CreatedAt = time.Unix(createdAt, 0)
	room.UpdatedAt = time.Unix(updatedAt, 0)

	return &room, nil
}

// Put creates or fully replaces a room record.
func (s *SQLiteStore) Put(ctx context.Context, room *domain.Room) error {
	usersJSON, err := json.Marshal(room.Users)
	if err != nil {
		return fmt.Errorf("encode users for room %s: %w", room.ID, err)
	}
	messagesJSON, err := json.Marshal(room.Messages)
	if err != nil {
		return fmt.Errorf("encode messages for room %s: %w", room.ID, err)
	}

	query := `
	INSERT INTO rooms (room_id, users_json, messages_json, code, language, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(room_id) DO UPDATE SET
		users_json = excluded.users_json,
		messages_json = excluded.messages_json,
		code = excluded.code,
		language = excluded.language,
		updated_at = excluded.updated_at`

	err = s.execWithRetry(ctx, query,
		room.ID, string(usersJSON), string(messagesJSON),
		room.Code, room.Language,
		room.CreatedAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert room: %w", err)
	}
	return nil
}

// execWithRetry retries writes that hit SQLITE_BUSY with exponential backoff.
// Concurrent room updates from different connections can briefly contend on
// the write lock even in WAL mode.
func (s *SQLiteStore) execWithRetry(ctx context.Context, query string, args ...interface{}) error {
	var err error
	for i := 0; i < writeMaxRetries; i++ {
		_, err = s.db.ExecContext(ctx, query, args...)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || ctx.Err() != nil {
			return err
		}
		if i < writeMaxRetries-1 {
			delay := writeRetryDelay * time.Duration(1<<i)
			slog.Debug("Database locked, retrying write", "attempt", i+1, "delay", delay)
			time.Sleep(delay)
		}
	}
	return err
}

// Delete removes a room. Deleting an absent room is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, roomID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id = ?`, roomID); err != nil {
		return fmt.Errorf("delete room %s: %w", roomID, err)
	}
	return nil
}

// CleanupEmpty removes every room left with zero users.
func (s *SQLiteStore) CleanupEmpty(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE users_json = '[]'`)
	if err != nil {
		return 0, fmt.Errorf("cleanup empty rooms: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	if deleted > 0 {
		slog.Info("Cleaned up empty rooms", "count", deleted)
	}
	return deleted, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
