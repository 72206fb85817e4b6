// Package bus provides the in-process notification bus for engine events.
//
// The bus carries operational notifications (save completed, load failed,
// critical errors) to host-application listeners. It supports a suppression
// mode used by the load transaction: while suppressed, every publish is
// dropped outright, never queued, so no listener can observe an event that
// was produced against partially-restored state.
package bus

import (
	"sync"
	"time"
)

// Topic names a notification stream.
type Topic string

const (
	// TopicSaveCompleted fires after a save is persisted.
	TopicSaveCompleted Topic = "save.completed"
	// TopicSaveFailed fires when a save attempt fails at any step.
	TopicSaveFailed Topic = "save.failed"
	// TopicSaveLoaded fires after a load commits.
	TopicSaveLoaded Topic = "save.loaded"
	// TopicSaveLoadFailed fires when a load fails and rollback succeeded.
	TopicSaveLoadFailed Topic = "save.loadFailed"
	// TopicCriticalError fires when rollback itself failed and the running
	// state can no longer be trusted.
	TopicCriticalError Topic = "engine.criticalError"
)

// Event is a single notification.
type Event struct {
	Topic     Topic
	SlotID    string
	Timestamp time.Time
	Message   string
	Err       error
}

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine.
type Handler func(Event)

// Bus is a topic-keyed publish/subscribe hub with a suppression flag.
// The zero value is not usable; construct with New.
type Bus struct {
	mu         sync.RWMutex
	suppressed bool
	nextID     int
	subs       map[Topic]map[int]Handler
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns an unsubscribe
// function.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	if b == nil || h == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers evt to every subscriber of its topic. While the bus is
// suppressed the event is silently dropped.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	if b.suppressed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]Handler, 0, len(b.subs[evt.Topic]))
	for _, h := range b.subs[evt.Topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}

// Suppress switches the bus into drop mode.
func (b *Bus) Suppress() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.suppressed = true
	b.mu.Unlock()
}

// Resume lifts suppression. Events dropped while suppressed are gone; none
// are delivered retroactively.
func (b *Bus) Resume() {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.suppressed = false
	b.mu.Unlock()
}

// Suppressed reports whether the bus is currently dropping events.
func (b *Bus) Suppressed() bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.suppressed
}
