// Package filestore provides a directory-backed storage adapter with one
// JSON document per save slot.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/louisbranch/continuity/internal/storage"
)

const slotExtension = ".json"

// Store persists each slot as <dir>/<slotID>.json.
type Store struct {
	dir string
}

// Open prepares a file store rooted at dir, creating it when missing.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	cleanDir := filepath.Clean(dir)
	if err := os.MkdirAll(cleanDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: cleanDir}, nil
}

// Save writes the slot atomically: the payload lands in a temp file first
// and is renamed into place, so a crash mid-write never truncates an
// existing save.
func (s *Store) Save(ctx context.Context, slotID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.slotPath(slotID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+slotID+"-*")
	if err != nil {
		return fmt.Errorf("create temp save file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write save file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close save file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit save file: %w", err)
	}
	return nil
}

// Load reads the slot payload.
func (s *Store) Load(ctx context.Context, slotID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.slotPath(slotID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("read save file: %w", err)
	}
	return data, nil
}

// Delete removes the slot file.
func (s *Store) Delete(ctx context.Context, slotID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.slotPath(slotID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("delete save file: %w", err)
	}
	return nil
}

// List enumerates slot files ordered by slot ID. Modification time stands in
// for the save timestamp.
func (s *Store) List(ctx context.Context) ([]storage.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	var out []storage.SlotInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, slotExtension) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, storage.SlotInfo{
			SlotID:    strings.TrimSuffix(name, slotExtension),
			Timestamp: info.ModTime().UTC(),
			Size:      info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotID < out[j].SlotID })
	return out, nil
}

// slotPath validates the slot ID and returns its file path. IDs that could
// escape the storage directory are rejected.
func (s *Store) slotPath(slotID string) (string, error) {
	slotID = strings.TrimSpace(slotID)
	if slotID == "" {
		return "", fmt.Errorf("slot id is required")
	}
	if strings.ContainsAny(slotID, `/\`) || slotID == "." || slotID == ".." || strings.HasPrefix(slotID, ".") {
		return "", fmt.Errorf("slot id %q is not a valid file name", slotID)
	}
	return filepath.Join(s.dir, slotID+slotExtension), nil
}
