// Package storage defines the persistence boundary for save slots.
//
// The engine treats storage as an opaque adapter: it hands over encoded
// envelope bytes keyed by slot ID and reads them back. Durability is the
// adapter's concern, not the engine's.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested slot is missing.
var ErrNotFound = errors.New("slot not found")

// SlotInfo describes one stored save slot.
type SlotInfo struct {
	SlotID    string
	Timestamp time.Time
	Size      int64
}

// Adapter persists encoded save payloads keyed by slot ID.
type Adapter interface {
	Save(ctx context.Context, slotID string, data []byte) error
	Load(ctx context.Context, slotID string) ([]byte, error)
	Delete(ctx context.Context, slotID string) error
	List(ctx context.Context) ([]SlotInfo, error)
}
