// Package memstore provides an in-memory storage adapter.
//
// It backs tests and ephemeral sessions where saves should not outlive the
// process.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/louisbranch/continuity/internal/storage"
)

type record struct {
	data      []byte
	timestamp time.Time
}

// Store is an in-memory slot store safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	slots map[string]record
	clock func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		slots: make(map[string]record),
		clock: time.Now,
	}
}

// Save stores a copy of data under slotID.
func (s *Store) Save(ctx context.Context, slotID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.slots[slotID] = record{data: buf, timestamp: s.clock().UTC()}
	return nil
}

// Load returns a copy of the payload stored under slotID.
func (s *Store) Load(ctx context.Context, slotID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.slots[slotID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	buf := make([]byte, len(rec.data))
	copy(buf, rec.data)
	return buf, nil
}

// Delete removes a slot. Deleting a missing slot returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[slotID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.slots, slotID)
	return nil
}

// List returns all slots ordered by slot ID.
func (s *Store) List(ctx context.Context) ([]storage.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.SlotInfo, 0, len(s.slots))
	for id, rec := range s.slots {
		out = append(out, storage.SlotInfo{
			SlotID:    id,
			Timestamp: rec.timestamp,
			Size:      int64(len(rec.data)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotID < out[j].SlotID })
	return out, nil
}
