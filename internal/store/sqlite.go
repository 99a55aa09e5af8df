package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/devaloi/meowww/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path.
// Use ":memory:" for an in-memory database.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Every pooled connection to ":memory:" would get its own database.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable wal: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create tables: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS room_stats (
			room TEXT PRIMARY KEY,
			messages INTEGER NOT NULL DEFAULT 0,
			connections INTEGER NOT NULL DEFAULT 0,
			last_active DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_room_stats_last_active ON room_stats(last_active);
	`)
	return err
}

// RecordMessage increments the message counter for room.
func (s *SQLiteStore) RecordMessage(room string, at time.Time) error {
	return s.bump(room, 1, 0, at)
}

// RecordConnection increments the connection counter for room.
func (s *SQLiteStore) RecordConnection(room string, at time.Time) error {
	return s.bump(room, 0, 1, at)
}

func (s *SQLiteStore) bump(room string, messages, connections int, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO room_stats (room, messages, connections, last_active) VALUES (?, ?, ?, ?)
		ON CONFLICT(room) DO UPDATE SET
			messages = messages + excluded.messages,
			connections = connections + excluded.connections,
			last_active = excluded.last_active
	`, room, messages, connections, at.UTC())
	if err != nil {
		return fmt.Errorf("store: record %s: %w", room, err)
	}
	return nil
}

// Stats returns per-room counters, most recently active first.
func (s *SQLiteStore) Stats(limit int) ([]domain.RoomStats, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT room, messages, connections, last_active FROM room_stats
		ORDER BY last_active DESC, room ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	defer rows.Close()

	stats := []domain.RoomStats{}
	for rows.Next() {
		var st domain.RoomStats
		if err := rows.Scan(&st.Name, &st.Messages, &st.Connections, &st.LastActive); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: stats: %w", err)
	}
	return stats, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
