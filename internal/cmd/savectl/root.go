// Package savectl implements the save slot inspection CLI.
//
// The tool operates directly on a storage backend and never mutates game
// state: it lists, shows, verifies and deletes save slots so operators can
// debug player saves without running the game.
package savectl

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/louisbranch/continuity/internal/platform/config"
	apperrors "github.com/louisbranch/continuity/internal/platform/errors"
	"github.com/louisbranch/continuity/internal/storage"
	"github.com/louisbranch/continuity/internal/storage/bboltstore"
	"github.com/louisbranch/continuity/internal/storage/filestore"
	"github.com/louisbranch/continuity/internal/storage/memstore"
	"github.com/louisbranch/continuity/internal/storage/sqlitestore"
)

var rootCmd = &cobra.Command{
	Use:           "savectl",
	Short:         "Inspect and manage game save slots",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cfg is the environment configuration active for the current Execute call.
// Flag defaults come from it, so registration waits for the first call.
var (
	cfg           config.Config
	registerFlags sync.Once
)

// Execute runs the selected subcommand against the given configuration.
func Execute(ctx context.Context, c config.Config) error {
	cfg = c
	registerFlags.Do(func() {
		rootCmd.PersistentFlags().String("backend", cfg.Backend, "storage backend: file, bbolt, sqlite or memory")
		rootCmd.PersistentFlags().String("data", cfg.DataPath, "save directory or database file path")
	})
	return rootCmd.ExecuteContext(ctx)
}

// openStore builds the storage adapter selected by the persistent flags.
// The returned closer is a no-op for backends without a handle to release.
func openStore(cmd *cobra.Command) (storage.Adapter, func() error, error) {
	backend, err := cmd.Flags().GetString("backend")
	if err != nil {
		return nil, nil, err
	}
	path, err := cmd.Flags().GetString("data")
	if err != nil {
		return nil, nil, err
	}

	noop := func() error { return nil }
	switch backend {
	case "file":
		store, err := filestore.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return store, noop, nil
	case "bbolt":
		store, err := bboltstore.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open bbolt store: %w", err)
		}
		return store, store.Close, nil
	case "sqlite":
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, store.Close, nil
	case "memory":
		return memstore.New(), noop, nil
	default:
		return nil, nil, apperrors.WithMetadata(apperrors.CodeNotFound, "unknown storage backend", map[string]string{"backend": backend})
	}
}
