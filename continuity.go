// Package continuity is a transactional save/load engine for games.
//
// A host application registers serializable systems and migrations on a
// Registry, picks a storage adapter, and drives saves and loads through a
// Manager. Loads are transactional: every targeted system is snapshotted
// before it is touched, the notification bus is suppressed for the duration,
// and any restore failure rolls all systems back to their pre-load state.
//
// The package re-exports the engine's building blocks; implementations live
// under internal.
package continuity

import (
	"github.com/louisbranch/continuity/internal/bus"
	"github.com/louisbranch/continuity/internal/save"
	"github.com/louisbranch/continuity/internal/save/envelope"
	"github.com/louisbranch/continuity/internal/save/migrate"
	"github.com/louisbranch/continuity/internal/save/registry"
	"github.com/louisbranch/continuity/internal/save/value"
	"github.com/louisbranch/continuity/internal/storage"
	"github.com/louisbranch/continuity/internal/storage/bboltstore"
	"github.com/louisbranch/continuity/internal/storage/filestore"
	"github.com/louisbranch/continuity/internal/storage/memstore"
	"github.com/louisbranch/continuity/internal/storage/sqlitestore"
)

// Serialized state values.
type (
	Value  = value.Value
	Null   = value.Null
	Bool   = value.Bool
	Number = value.Number
	String = value.String
	List   = value.List
	Object = value.Object
	Map    = value.Map
	Set    = value.Set
)

// NewMap creates an empty insertion-ordered map value.
func NewMap() *Map { return value.NewMap() }

// NewSet creates an insertion-ordered set value, dropping duplicates.
func NewSet(elems ...Value) *Set { return value.NewSet(elems...) }

// Equal reports deep equality of two values.
var Equal = value.Equal

// Registry, systems and migrations.
type (
	Registry        = registry.Registry
	System          = registry.System
	SceneController = registry.SceneController
	Envelope        = envelope.Envelope
	MigrationFunc   = migrate.Func
)

// NewRegistry creates a registry for the given running build version.
var NewRegistry = registry.New

// LoadMigrationScript wraps a Lua migration script as a MigrationFunc.
var LoadMigrationScript = migrate.LoadScript

// Notification bus.
type (
	Bus   = bus.Bus
	Event = bus.Event
	Topic = bus.Topic
)

const (
	TopicSaveCompleted  = bus.TopicSaveCompleted
	TopicSaveFailed     = bus.TopicSaveFailed
	TopicSaveLoaded     = bus.TopicSaveLoaded
	TopicSaveLoadFailed = bus.TopicSaveLoadFailed
	TopicCriticalError  = bus.TopicCriticalError
)

// NewBus creates an empty notification bus.
func NewBus() *Bus { return bus.New() }

// Storage adapters.
type (
	StorageAdapter = storage.Adapter
	SlotInfo       = storage.SlotInfo
)

// ErrNotFound reports a missing save slot.
var ErrNotFound = storage.ErrNotFound

// NewMemStore creates an in-memory adapter for tests and ephemeral sessions.
func NewMemStore() *memstore.Store { return memstore.New() }

// OpenFileStore opens a directory-backed adapter with one file per slot.
var OpenFileStore = filestore.Open

// OpenBoltStore opens a BoltDB-backed adapter.
var OpenBoltStore = bboltstore.Open

// OpenSQLiteStore opens a SQLite-backed adapter.
var OpenSQLiteStore = sqlitestore.Open

// Save manager and its load failure phases.
type (
	Manager    = save.Manager
	Option     = save.Option
	Phase      = save.Phase
	PhaseError = save.PhaseError
)

const (
	PhaseRead     = save.PhaseRead
	PhaseDecode   = save.PhaseDecode
	PhaseSnapshot = save.PhaseSnapshot
	PhaseRestore  = save.PhaseRestore
	PhaseRollback = save.PhaseRollback
)

// NewManager creates a save manager over the given collaborators.
var NewManager = save.NewManager

// WithLogger overrides the manager's logger.
var WithLogger = save.WithLogger

// WithClock overrides the manager's time source.
var WithClock = save.WithClock
