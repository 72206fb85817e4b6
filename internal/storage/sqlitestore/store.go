// Package sqlitestore provides a SQLite-backed storage adapter for save slots.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/continuity/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/continuity/internal/storage"
	"github.com/louisbranch/continuity/internal/storage/sqlitestore/migrations"
)

// Store provides a SQLite-backed slot store.
type Store struct {
	sqlDB *sql.DB
	clock func() time.Time
}

// Open opens a SQLite slot store at the provided path and applies embedded
// migrations before the store is handed to higher layers.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, clock: time.Now}, nil
}

// Close closes the underlying SQLite database.
//
// Close is intentionally nil-safe so callers can defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts a slot payload.
func (s *Store) Save(ctx context.Context, slotID string, data []byte) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(slotID) == "" {
		return fmt.Errorf("slot id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO save_slots (slot_id, payload, saved_at)
VALUES (?, ?, ?)
ON CONFLICT(slot_id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
`, slotID, data, s.clock().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("persist slot %s: %w", slotID, err)
	}
	return nil
}

// Load fetches a slot payload by ID.
func (s *Store) Load(ctx context.Context, slotID string) ([]byte, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(slotID) == "" {
		return nil, fmt.Errorf("slot id is required")
	}

	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx, "SELECT payload FROM save_slots WHERE slot_id = ?", slotID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read slot %s: %w", slotID, err)
	}
	return payload, nil
}

// Delete removes a slot. Deleting a missing slot returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(slotID) == "" {
		return fmt.Errorf("slot id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, "DELETE FROM save_slots WHERE slot_id = ?", slotID)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", slotID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", slotID, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List enumerates stored slots ordered by slot ID.
func (s *Store) List(ctx context.Context) ([]storage.SlotInfo, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, "SELECT slot_id, saved_at, LENGTH(payload) FROM save_slots ORDER BY slot_id")
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []storage.SlotInfo
	for rows.Next() {
		var info storage.SlotInfo
		var savedAt int64
		if err := rows.Scan(&info.SlotID, &savedAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan slot row: %w", err)
		}
		info.Timestamp = time.UnixMilli(savedAt).UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slot rows: %w", err)
	}
	return out, nil
}
