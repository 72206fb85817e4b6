// Package migrate resolves and applies save-schema migration chains.
//
// Migrations are keyed by an ordered (from, to) version pair and operate on
// the decoded wire payload only: a migration function must never depend on
// running system state and must never fail. A step that cannot complete
// leaves the payload unchanged and relies on downstream validation.
package migrate

import (
	"log"
	"sort"

	"golang.org/x/mod/semver"

	"github.com/louisbranch/continuity/internal/save/envelope"
)

// Key identifies one migration edge.
type Key struct {
	From string
	To   string
}

// Func transforms a decoded payload in place from Key.From's schema to
// Key.To's. The manager advances the payload's version after each applied
// step; the function itself must not touch it.
type Func func(env *envelope.Envelope)

// Source exposes the registered migration graph.
type Source interface {
	Migrations() map[Key]Func
}

// Manager computes and applies the migration chain between two versions.
type Manager struct {
	source Source
	logger *log.Logger
}

// New creates a migration manager reading edges from source.
func New(source Source, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{source: source, logger: logger}
}

// Plan returns the version path from from to to, inclusive.
//
// The path is the sorted subsequence of every well-formed version mentioned
// by the endpoints or any registered migration edge. When either endpoint is
// not a valid semantic version, or is referenced by no edge, the plan falls
// back to the direct two-element path.
func (m *Manager) Plan(from, to string) []string {
	if from == to {
		return []string{from}
	}

	seen := map[string]struct{}{}
	add := func(v string) {
		if semver.IsValid("v" + v) {
			seen[v] = struct{}{}
		}
	}
	add(from)
	add(to)
	if m.source != nil {
		for key := range m.source.Migrations() {
			add(key.From)
			add(key.To)
		}
	}

	versions := make([]string, 0, len(seen))
	for v := range seen {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare("v"+versions[i], "v"+versions[j]) < 0
	})

	fromIdx, toIdx := -1, -1
	for i, v := range versions {
		if v == from {
			fromIdx = i
		}
		if v == to {
			toIdx = i
		}
	}
	if fromIdx == -1 || toIdx == -1 || fromIdx > toIdx {
		return []string{from, to}
	}
	return versions[fromIdx : toIdx+1]
}

// Apply migrates env toward target, applying each registered step along the
// planned path in increasing-version order. A missing step logs a warning
// and leaves both the content and the recorded version untouched for that
// hop; callers must tolerate a payload whose version lags the target.
func (m *Manager) Apply(env *envelope.Envelope, target string) {
	if env == nil || env.Version == target {
		return
	}

	migrations := map[Key]Func{}
	if m.source != nil {
		migrations = m.source.Migrations()
	}

	path := m.Plan(env.Version, target)
	for i := 0; i+1 < len(path); i++ {
		key := Key{From: path[i], To: path[i+1]}
		fn, ok := migrations[key]
		if !ok {
			m.logger.Printf("WARN no migration registered for %s -> %s; payload left at version %s", key.From, key.To, env.Version)
			continue
		}
		fn(env)
		env.Version = key.To
	}
}
