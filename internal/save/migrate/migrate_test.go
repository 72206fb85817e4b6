package migrate

import (
	"bytes"
	"log"
	"reflect"
	"testing"

	"github.com/louisbranch/continuity/internal/save/envelope"
	"github.com/louisbranch/continuity/internal/save/value"
)

type sourceMap map[Key]Func

func (s sourceMap) Migrations() map[Key]Func { return s }

func testLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func setCounter(env *envelope.Envelope, key string, n float64) {
	if env.Systems == nil {
		env.Systems = map[string]value.Value{}
	}
	env.Systems[key] = value.Number(n)
}

func TestPlanIdentity(t *testing.T) {
	logger, _ := testLogger()
	m := New(sourceMap{}, logger)

	path := m.Plan("1.0.0", "1.0.0")
	if !reflect.DeepEqual(path, []string{"1.0.0"}) {
		t.Fatalf("unexpected identity path %v", path)
	}
}

func TestPlanIncludesIntermediateVersions(t *testing.T) {
	logger, _ := testLogger()
	m := New(sourceMap{
		{From: "1.0.0", To: "1.1.0"}: func(*envelope.Envelope) {},
		{From: "1.1.0", To: "2.0.0"}: func(*envelope.Envelope) {},
	}, logger)

	path := m.Plan("1.0.0", "2.0.0")
	if !reflect.DeepEqual(path, []string{"1.0.0", "1.1.0", "2.0.0"}) {
		t.Fatalf("unexpected path %v", path)
	}
}

func TestPlanDiscardsInvalidVersions(t *testing.T) {
	logger, _ := testLogger()
	m := New(sourceMap{
		{From: "not-a-version", To: "1.1.0"}: func(*envelope.Envelope) {},
		{From: "1.1.0", To: "2.0.0"}:         func(*envelope.Envelope) {},
	}, logger)

	path := m.Plan("1.1.0", "2.0.0")
	if !reflect.DeepEqual(path, []string{"1.1.0", "2.0.0"}) {
		t.Fatalf("unexpected path %v", path)
	}
}

func TestPlanFallsBackForUnknownEndpoint(t *testing.T) {
	logger, _ := testLogger()
	m := New(sourceMap{}, logger)

	path := m.Plan("abc", "2.0.0")
	if !reflect.DeepEqual(path, []string{"abc", "2.0.0"}) {
		t.Fatalf("unexpected fallback path %v", path)
	}
}

func TestPlanFallsBackForDowngrade(t *testing.T) {
	logger, _ := testLogger()
	m := New(sourceMap{
		{From: "1.0.0", To: "2.0.0"}: func(*envelope.Envelope) {},
	}, logger)

	path := m.Plan("2.0.0", "1.0.0")
	if !reflect.DeepEqual(path, []string{"2.0.0", "1.0.0"}) {
		t.Fatalf("unexpected downgrade path %v", path)
	}
}

func TestApplyChainsInOrder(t *testing.T) {
	logger, _ := testLogger()
	var order []string
	m := New(sourceMap{
		{From: "1.0.0", To: "1.1.0"}: func(env *envelope.Envelope) {
			order = append(order, "first")
			setCounter(env, "stage", 1)
		},
		{From: "1.1.0", To: "2.0.0"}: func(env *envelope.Envelope) {
			order = append(order, "second")
			setCounter(env, "stage", 2)
		},
	}, logger)

	env := &envelope.Envelope{Version: "1.0.0"}
	m.Apply(env, "2.0.0")

	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Fatalf("unexpected application order %v", order)
	}
	if env.Version != "2.0.0" {
		t.Fatalf("expected version advanced to 2.0.0, got %s", env.Version)
	}
	if !value.Equal(env.Systems["stage"], value.Number(2)) {
		t.Fatalf("expected final stage 2, got %v", env.Systems["stage"])
	}
}

func TestApplyMissingHopDoesNotAdvanceVersion(t *testing.T) {
	logger, buf := testLogger()
	m := New(sourceMap{
		{From: "1.0.0", To: "1.1.0"}: func(env *envelope.Envelope) {
			setCounter(env, "stage", 1)
		},
	}, logger)

	env := &envelope.Envelope{Version: "1.0.0"}
	m.Apply(env, "2.0.0")

	if env.Version != "1.1.0" {
		t.Fatalf("expected version to stop at 1.1.0, got %s", env.Version)
	}
	if !value.Equal(env.Systems["stage"], value.Number(1)) {
		t.Fatalf("expected first hop applied, got %v", env.Systems["stage"])
	}
	if !bytes.Contains(buf.Bytes(), []byte("no migration registered")) {
		t.Fatalf("expected missing-hop warning, got %q", buf.String())
	}
}

func TestApplyIdentityIsNoop(t *testing.T) {
	logger, _ := testLogger()
	called := false
	m := New(sourceMap{
		{From: "1.0.0", To: "1.0.0"}: func(*envelope.Envelope) { called = true },
	}, logger)

	env := &envelope.Envelope{Version: "1.0.0"}
	m.Apply(env, "1.0.0")

	if called {
		t.Fatal("expected no migration for identical versions")
	}
	if env.Version != "1.0.0" {
		t.Fatalf("expected version unchanged, got %s", env.Version)
	}
}

func TestApplyNilEnvelope(t *testing.T) {
	logger, _ := testLogger()
	m := New(sourceMap{}, logger)
	m.Apply(nil, "1.0.0")
}
