package store

import (
	"time"

	"github.com/devaloi/meowww/internal/domain"
)

// Store keeps lifetime activity counters per room. It never sees message
// bodies.
type Store interface {
	// RecordMessage counts one accepted message for room.
	RecordMessage(room string, at time.Time) error
	// RecordConnection counts one notification connection for room.
	RecordConnection(room string, at time.Time) error
	// Stats returns up to limit rooms, most recently active first.
	// A limit <= 0 returns every room.
	Stats(limit int) ([]domain.RoomStats, error)
	// Close releases any resources held by the store.
	Close() error
}
