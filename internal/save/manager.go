// Package save orchestrates the save and load protocols.
//
// A save collects every registered system's serialized state into a fresh
// versioned envelope and hands the encoded bytes to the storage adapter. A
// load runs a four-phase protocol: read, decode and migrate, then a
// suppressed-bus transaction that snapshots each targeted system before
// touching it, so any restore failure rolls every system back to its
// pre-load state. Only a failed rollback leaves the engine unable to vouch
// for the running state, and that case is surfaced as a distinct critical
// notification rather than an ordinary load failure.
package save

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/continuity/internal/bus"
	apperrors "github.com/louisbranch/continuity/internal/platform/errors"
	"github.com/louisbranch/continuity/internal/platform/id"
	"github.com/louisbranch/continuity/internal/save/envelope"
	"github.com/louisbranch/continuity/internal/save/migrate"
	"github.com/louisbranch/continuity/internal/save/registry"
	"github.com/louisbranch/continuity/internal/save/value"
	"github.com/louisbranch/continuity/internal/storage"
)

const tracerName = "github.com/louisbranch/continuity"

// metadataSaveID is the metadata key under which Save records the unique ID
// stamped on each save. Caller-provided metadata under the same key wins.
const metadataSaveID = "saveId"

// Manager coordinates the registry, migration manager, notification bus and
// storage adapter. Save and Load are serialized by a per-manager mutex so
// two calls can never interleave their transactions.
type Manager struct {
	mu       sync.Mutex
	registry *registry.Registry
	store    storage.Adapter
	bus      *bus.Bus
	migrator *migrate.Manager
	logger   *log.Logger
	clock    func() time.Time
	tracer   trace.Tracer
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger overrides the default logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewManager creates a save manager over the given collaborators.
func NewManager(reg *registry.Registry, store storage.Adapter, eventBus *bus.Bus, opts ...Option) *Manager {
	m := &Manager{
		registry: reg,
		store:    store,
		bus:      eventBus,
		logger:   log.Default(),
		clock:    time.Now,
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.migrator = migrate.New(reg, m.logger)
	return m
}

// Save serializes every registered system into a fresh envelope and persists
// it under slotID. Each envelope is stamped with a unique save ID in its
// metadata. A single system failing to serialize is logged and omitted; it
// never aborts the save. All failures are reported through the bus as well
// as the returned error.
func (m *Manager) Save(ctx context.Context, slotID string, metadata map[string]value.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, span := m.tracer.Start(ctx, "continuity.save",
		trace.WithAttributes(attribute.String("continuity.slot", slotID)))
	defer span.End()

	meta := make(map[string]value.Value, len(metadata)+1)
	for key, v := range metadata {
		meta[key] = v
	}
	if _, ok := meta[metadataSaveID]; !ok {
		saveID, err := id.NewID()
		if err != nil {
			m.logger.Printf("WARN generate save ID: %v", err)
		} else {
			meta[metadataSaveID] = value.String(saveID)
		}
	}

	env := envelope.Envelope{
		Version:        m.registry.GameVersion(),
		Timestamp:      m.clock().UTC(),
		CurrentSceneID: m.registry.CurrentSceneID(),
		Systems:        make(map[string]value.Value),
		Metadata:       meta,
	}

	for _, key := range m.registry.Keys() {
		system, ok := m.registry.Serializable(key)
		if !ok {
			continue
		}
		state, err := system.Serialize()
		if err != nil {
			m.logger.Printf("WARN serialize %q failed; omitting from save: %v", key, err)
			continue
		}
		env.Systems[key] = state
	}
	span.SetAttributes(attribute.Int("continuity.systems", len(env.Systems)))

	data, err := envelope.Encode(env)
	if err != nil {
		return m.failSave(span, slotID, err)
	}
	if err := m.store.Save(ctx, slotID, data); err != nil {
		return m.failSave(span, slotID, apperrors.Wrap(apperrors.CodeSaveStorage, "persist save slot "+slotID, err))
	}

	span.SetStatus(otelcodes.Ok, "")
	m.bus.Publish(bus.Event{
		Topic:     bus.TopicSaveCompleted,
		SlotID:    slotID,
		Timestamp: env.Timestamp,
	})
	return nil
}

// Load restores the slot's envelope into the registered systems.
//
// Read and decode failures touch nothing. Once the transaction starts the
// bus is suppressed and an incremental snapshot is taken of exactly the
// systems the envelope targets; any restore failure rolls those systems
// back. A nil return means the load committed.
func (m *Manager) Load(ctx context.Context, slotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, span := m.tracer.Start(ctx, "continuity.load",
		trace.WithAttributes(attribute.String("continuity.slot", slotID)))
	defer span.End()

	// Suppression must never outlive the call, whatever path exits it.
	defer func() {
		if m.bus.Suppressed() {
			m.bus.Resume()
		}
	}()

	// Phase 1: storage read. Bus stays live; nothing is touched.
	data, err := m.store.Load(ctx, slotID)
	if err != nil {
		code := apperrors.CodeLoadStorage
		if errors.Is(err, storage.ErrNotFound) {
			code = apperrors.CodeNotFound
		}
		return m.failLoad(span, slotID, &PhaseError{
			Phase: PhaseRead,
			Err:   apperrors.Wrap(code, "read save slot "+slotID, err),
		})
	}
	span.AddEvent("read")

	// Phase 2: decode and migrate. Still nothing touched.
	env, err := envelope.Decode(data)
	if err != nil {
		return m.failLoad(span, slotID, &PhaseError{
			Phase: PhaseDecode,
			Err:   apperrors.Wrap(apperrors.CodeLoadDecode, "decode save slot "+slotID, err),
		})
	}
	m.migrator.Apply(&env, m.registry.GameVersion())
	span.AddEvent("migrated", trace.WithAttributes(attribute.String("continuity.version", env.Version)))

	// Phase 3: transaction. No subscriber may observe partial state.
	m.bus.Suppress()
	span.AddEvent("transaction")

	snapshot := make(map[string]value.Value)
	defer clear(snapshot)

	var targets []string
	for key := range env.Systems {
		if !m.registry.HasSerializable(key) {
			m.logger.Printf("WARN save slot %s contains unknown system %q; skipping", slotID, key)
			continue
		}
		targets = append(targets, key)
	}

	for _, key := range targets {
		system, _ := m.registry.Serializable(key)
		pre, err := system.Serialize()
		if err != nil {
			// Nothing has been mutated yet; abort without rollback.
			m.bus.Resume()
			return m.failLoad(span, slotID, &PhaseError{
				Phase: PhaseSnapshot,
				Err:   apperrors.WrapWithMetadata(apperrors.CodeLoadSnapshot, "snapshot system "+key, map[string]string{"system": key}, err),
			})
		}
		if pre == nil {
			pre = value.Null{}
		}
		snapshot[key] = pre.Clone()
	}

	restoreErr := m.restore(ctx, env, targets)
	if restoreErr == nil {
		m.bus.Resume()
		span.SetStatus(otelcodes.Ok, "")
		m.bus.Publish(bus.Event{
			Topic:     bus.TopicSaveLoaded,
			SlotID:    slotID,
			Timestamp: env.Timestamp,
		})
		return nil
	}

	// Phase 4: rollback.
	span.AddEvent("rollback")
	if err := m.rollback(snapshot); err != nil {
		m.bus.Resume()
		critical := apperrors.Wrap(apperrors.CodeLoadCorrupted, "rollback failed; running state is unverifiable", err)
		span.RecordError(critical)
		span.SetStatus(otelcodes.Error, critical.Error())
		m.bus.Publish(bus.Event{
			Topic:     bus.TopicCriticalError,
			SlotID:    slotID,
			Timestamp: m.clock().UTC(),
			Message:   "save load rollback failed; application state may be corrupted",
			Err:       critical,
		})
		return &PhaseError{Phase: PhaseRollback, Err: critical}
	}

	m.bus.Resume()
	return m.failLoad(span, slotID, &PhaseError{Phase: PhaseRestore, Err: restoreErr})
}

// restore applies the envelope to every targeted system, then the scene.
func (m *Manager) restore(ctx context.Context, env envelope.Envelope, targets []string) error {
	for _, key := range targets {
		system, ok := m.registry.Serializable(key)
		if !ok {
			continue
		}
		if err := system.Deserialize(env.Systems[key]); err != nil {
			return apperrors.WrapWithMetadata(apperrors.CodeLoadDeserialize, "deserialize system "+key, map[string]string{"system": key}, err)
		}
	}
	if env.CurrentSceneID != "" {
		if err := m.registry.RestoreScene(ctx, env.CurrentSceneID); err != nil {
			return apperrors.Wrap(apperrors.CodeLoadScene, "restore scene "+env.CurrentSceneID, err)
		}
	}
	return nil
}

// rollback replays the snapshot into every system it covers.
func (m *Manager) rollback(snapshot map[string]value.Value) error {
	for key, pre := range snapshot {
		system, ok := m.registry.Serializable(key)
		if !ok {
			continue
		}
		if err := system.Deserialize(pre); err != nil {
			return apperrors.WrapWithMetadata(apperrors.CodeLoadCorrupted, "roll back system "+key, map[string]string{"system": key}, err)
		}
	}
	return nil
}

func (m *Manager) failSave(span trace.Span, slotID string, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	m.bus.Publish(bus.Event{
		Topic:     bus.TopicSaveFailed,
		SlotID:    slotID,
		Timestamp: m.clock().UTC(),
		Err:       err,
	})
	return err
}

func (m *Manager) failLoad(span trace.Span, slotID string, err error) error {
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	m.bus.Publish(bus.Event{
		Topic:     bus.TopicSaveLoadFailed,
		SlotID:    slotID,
		Timestamp: m.clock().UTC(),
		Err:       err,
	})
	return err
}
