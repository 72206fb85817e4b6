package registry

import (
	"bytes"
	"context"
	"log"
	"reflect"
	"testing"

	"github.com/louisbranch/continuity/internal/save/envelope"
	"github.com/louisbranch/continuity/internal/save/migrate"
	"github.com/louisbranch/continuity/internal/save/value"
)

type stubSystem struct {
	state value.Value
}

func (s *stubSystem) Serialize() (value.Value, error) { return s.state, nil }
func (s *stubSystem) Deserialize(v value.Value) error { s.state = v; return nil }

type stubScene struct {
	current  string
	restored []string
}

func (s *stubScene) CurrentSceneID() string { return s.current }
func (s *stubScene) RestoreScene(_ context.Context, id string) error {
	s.restored = append(s.restored, id)
	return nil
}

func newTestRegistry(t *testing.T) (*Registry, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r, err := New("1.0.0", nil, log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r, &buf
}

func TestNewRequiresVersion(t *testing.T) {
	if _, err := New("  ", nil, nil); err == nil {
		t.Fatal("expected error for blank version")
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r, _ := newTestRegistry(t)
	sys := &stubSystem{state: value.Number(1)}

	if err := r.RegisterSerializable("inventory", sys); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !r.HasSerializable("inventory") {
		t.Fatal("expected registered key to be present")
	}
	got, ok := r.Serializable("inventory")
	if !ok || got != sys {
		t.Fatal("expected lookup to return the registered system")
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.RegisterSerializable("", &stubSystem{}); err == nil {
		t.Fatal("expected error for empty key")
	}
	if err := r.RegisterSerializable("x", nil); err == nil {
		t.Fatal("expected error for nil system")
	}
}

func TestRegisterOverwriteWarnsAndWins(t *testing.T) {
	r, buf := newTestRegistry(t)
	first := &stubSystem{}
	second := &stubSystem{}

	if err := r.RegisterSerializable("inventory", first); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := r.RegisterSerializable("inventory", second); err != nil {
		t.Fatalf("register second: %v", err)
	}

	got, _ := r.Serializable("inventory")
	if got != second {
		t.Fatal("expected last registration to win")
	}
	if !bytes.Contains(buf.Bytes(), []byte("re-registered")) {
		t.Fatalf("expected overwrite warning, got %q", buf.String())
	}
}

func TestUnregisterRemovesKey(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.RegisterSerializable("audio", &stubSystem{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	r.UnregisterSerializable("audio")
	if r.HasSerializable("audio") {
		t.Fatal("expected key to be gone")
	}
	// Unregistering an absent key is harmless.
	r.UnregisterSerializable("audio")
}

func TestKeysAreSorted(t *testing.T) {
	r, _ := newTestRegistry(t)
	for _, key := range []string{"c", "a", "b"} {
		if err := r.RegisterSerializable(key, &stubSystem{}); err != nil {
			t.Fatalf("register %s: %v", key, err)
		}
	}
	if got := r.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestMigrationsReturnsCopy(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.RegisterMigration("1.0.0", "1.1.0", func(*envelope.Envelope) {}); err != nil {
		t.Fatalf("register migration: %v", err)
	}

	got := r.Migrations()
	delete(got, migrate.Key{From: "1.0.0", To: "1.1.0"})

	if len(r.Migrations()) != 1 {
		t.Fatal("expected registry migration graph to be unaffected by caller mutation")
	}
}

func TestRegisterMigrationValidation(t *testing.T) {
	r, _ := newTestRegistry(t)
	if err := r.RegisterMigration("", "1.1.0", func(*envelope.Envelope) {}); err == nil {
		t.Fatal("expected error for empty from version")
	}
	if err := r.RegisterMigration("1.0.0", "1.1.0", nil); err == nil {
		t.Fatal("expected error for nil migration")
	}
}

func TestSceneDelegation(t *testing.T) {
	scene := &stubScene{current: "dungeon"}
	r, err := New("1.0.0", scene, nil)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if got := r.CurrentSceneID(); got != "dungeon" {
		t.Fatalf("unexpected scene %q", got)
	}
	if err := r.RestoreScene(context.Background(), "castle"); err != nil {
		t.Fatalf("restore scene: %v", err)
	}
	if !reflect.DeepEqual(scene.restored, []string{"castle"}) {
		t.Fatalf("unexpected restore calls %v", scene.restored)
	}
}

func TestNilSceneIsNoop(t *testing.T) {
	r, _ := newTestRegistry(t)
	if got := r.CurrentSceneID(); got != "" {
		t.Fatalf("expected empty scene id, got %q", got)
	}
	if err := r.RestoreScene(context.Background(), "anywhere"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
