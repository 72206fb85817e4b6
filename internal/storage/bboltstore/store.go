// Package bboltstore provides a BoltDB-backed storage adapter for save slots.
package bboltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/louisbranch/continuity/internal/storage"
)

const slotBucket = "saves"

// record is the stored form of one slot: payload bytes plus the write time.
type record struct {
	Timestamp int64  `json:"timestamp"`
	Data      []byte `json:"data"`
}

// Store provides a BoltDB-backed slot store.
type Store struct {
	db    *bbolt.DB
	clock func() time.Time
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db, clock: time.Now}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save persists a slot payload.
func (s *Store) Save(ctx context.Context, slotID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(slotID) == "" {
		return fmt.Errorf("slot id is required")
	}

	payload, err := json.Marshal(record{
		Timestamp: s.clock().UTC().UnixMilli(),
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("marshal slot record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotBucket))
		if bucket == nil {
			return fmt.Errorf("slot bucket is missing")
		}
		return bucket.Put([]byte(slotID), payload)
	})
}

// Load fetches a slot payload by ID.
func (s *Store) Load(ctx context.Context, slotID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(slotID) == "" {
		return nil, fmt.Errorf("slot id is required")
	}

	var rec record
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotBucket))
		if bucket == nil {
			return fmt.Errorf("slot bucket is missing")
		}
		payload := bucket.Get([]byte(slotID))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &rec); err != nil {
			return fmt.Errorf("unmarshal slot record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.Data, nil
}

// Delete removes a slot. Deleting a missing slot returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(slotID) == "" {
		return fmt.Errorf("slot id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotBucket))
		if bucket == nil {
			return fmt.Errorf("slot bucket is missing")
		}
		if bucket.Get([]byte(slotID)) == nil {
			return storage.ErrNotFound
		}
		return bucket.Delete([]byte(slotID))
	})
}

// List enumerates stored slots ordered by slot ID.
func (s *Store) List(ctx context.Context) ([]storage.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var out []storage.SlotInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotBucket))
		if bucket == nil {
			return fmt.Errorf("slot bucket is missing")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal slot record %q: %w", k, err)
			}
			out = append(out, storage.SlotInfo{
				SlotID:    string(k),
				Timestamp: time.UnixMilli(rec.Timestamp).UTC(),
				Size:      int64(len(rec.Data)),
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotID < out[j].SlotID })
	return out, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(slotBucket))
		if err != nil {
			return fmt.Errorf("create slot bucket: %w", err)
		}
		return nil
	})
}
