// Package registry tracks the serializable systems and migration graph that
// make up a save.
//
// The registry is the single source of truth for what gets saved and for how
// a payload moves between schema versions. Systems are opaque: the engine
// only cares that they honor the Serialize/Deserialize contract.
package registry

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/louisbranch/continuity/internal/platform/errors"
	"github.com/louisbranch/continuity/internal/save/migrate"
	"github.com/louisbranch/continuity/internal/save/value"
)

// System is any component whose state the engine persists. Implementers own
// their internal state exclusively; the engine holds the reference only for
// the duration of a save or load call.
type System interface {
	Serialize() (value.Value, error)
	Deserialize(value.Value) error
}

// SceneController is the scene subsystem boundary: the one named external
// collaborator this core touches, used to persist and restore where the
// player currently is.
type SceneController interface {
	CurrentSceneID() string
	RestoreScene(ctx context.Context, sceneID string) error
}

// Registry maps stable string keys to serializable systems and holds the
// registered migration graph.
type Registry struct {
	mu          sync.RWMutex
	gameVersion string
	scene       SceneController
	systems     map[string]System
	migrations  map[migrate.Key]migrate.Func
	logger      *log.Logger
}

// New creates a registry for the given running build version. The scene
// controller may be nil when the host has no scene concept.
func New(gameVersion string, scene SceneController, logger *log.Logger) (*Registry, error) {
	if strings.TrimSpace(gameVersion) == "" {
		return nil, apperrors.New(apperrors.CodeRegistryInvalidVersion, "game version is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		gameVersion: gameVersion,
		scene:       scene,
		systems:     make(map[string]System),
		migrations:  make(map[migrate.Key]migrate.Func),
		logger:      logger,
	}, nil
}

// GameVersion returns the running build version stamped into new envelopes.
func (r *Registry) GameVersion() string {
	return r.gameVersion
}

// RegisterSerializable inserts or overwrites a system under key. Overwriting
// an existing registration is a logged anomaly, not an error: last
// registration wins.
func (r *Registry) RegisterSerializable(key string, system System) error {
	if strings.TrimSpace(key) == "" {
		return apperrors.New(apperrors.CodeRegistryEmptyKey, "serializable key is required")
	}
	if system == nil {
		return apperrors.WithMetadata(apperrors.CodeRegistryNilSystem, "serializable system is required", map[string]string{"key": key})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.systems[key]; exists {
		r.logger.Printf("WARN serializable %q re-registered; last registration wins", key)
	}
	r.systems[key] = system
	return nil
}

// UnregisterSerializable removes a system. Saves produced afterward omit the
// key; old saves still containing it are skipped on load with a warning.
func (r *Registry) UnregisterSerializable(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.systems, key)
}

// Serializable returns the system registered under key.
func (r *Registry) Serializable(key string) (System, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	system, ok := r.systems[key]
	return system, ok
}

// HasSerializable reports whether key is registered.
func (r *Registry) HasSerializable(key string) bool {
	_, ok := r.Serializable(key)
	return ok
}

// Keys returns the registered system keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.systems))
	for key := range r.systems {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// RegisterMigration registers a migration step from one version to the next.
// Branching graphs are not supported: at most one out-edge per version lies
// on any resolved path.
func (r *Registry) RegisterMigration(from, to string, fn migrate.Func) error {
	if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return apperrors.New(apperrors.CodeRegistryInvalidVersion, "migration versions are required")
	}
	if fn == nil {
		return apperrors.New(apperrors.CodeRegistryNilSystem, "migration function is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := migrate.Key{From: from, To: to}
	if _, exists := r.migrations[key]; exists {
		r.logger.Printf("WARN migration %s -> %s re-registered; last registration wins", from, to)
	}
	r.migrations[key] = fn
	return nil
}

// Migrations returns a copy of the migration graph. Mutating the returned
// map does not affect the registry.
func (r *Registry) Migrations() map[migrate.Key]migrate.Func {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[migrate.Key]migrate.Func, len(r.migrations))
	for key, fn := range r.migrations {
		out[key] = fn
	}
	return out
}

// CurrentSceneID returns the active scene from the scene subsystem, or the
// empty string when no controller is wired.
func (r *Registry) CurrentSceneID() string {
	if r.scene == nil {
		return ""
	}
	return r.scene.CurrentSceneID()
}

// RestoreScene delegates scene restoration to the scene subsystem. It is a
// no-op when no controller is wired.
func (r *Registry) RestoreScene(ctx context.Context, sceneID string) error {
	if r.scene == nil {
		return nil
	}
	return r.scene.RestoreScene(ctx, sceneID)
}
