package savectl

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbranch/continuity/internal/platform/config"
	"github.com/louisbranch/continuity/internal/save/envelope"
	"github.com/louisbranch/continuity/internal/save/value"
	"github.com/louisbranch/continuity/internal/storage/filestore"
)

// setConfig swaps the package configuration for one test.
func setConfig(t *testing.T, c config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func newTestCmd(t *testing.T, dir string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("backend", "file", "")
	cmd.Flags().String("data", dir, "")
	cmd.Flags().Bool("raw", false, "")
	cmd.Flags().String("target", "", "")
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	cmd.SetOut(&out)
	return cmd, &out
}

func seedSlot(t *testing.T, dir, slotID string, env envelope.Envelope) {
	t.Helper()
	store, err := filestore.Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	data, err := envelope.Encode(env)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := store.Save(context.Background(), slotID, data); err != nil {
		t.Fatalf("seed slot: %v", err)
	}
}

func TestListShowsSeededSlots(t *testing.T) {
	dir := t.TempDir()
	seedSlot(t, dir, "slot-1", envelope.Envelope{
		Version:   "1.0.0",
		Timestamp: time.UnixMilli(1000).UTC(),
		Systems:   map[string]value.Value{"inventory": value.Number(3)},
	})

	cmd, out := newTestCmd(t, dir)
	if err := runList(cmd, nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "slot-1") {
		t.Fatalf("expected slot-1 in output, got %q", out.String())
	}
}

func TestListEmptyBackend(t *testing.T) {
	cmd, out := newTestCmd(t, t.TempDir())
	if err := runList(cmd, nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "no save slots") {
		t.Fatalf("expected empty message, got %q", out.String())
	}
}

func TestShowPrintsEnvelopeSummary(t *testing.T) {
	dir := t.TempDir()
	seedSlot(t, dir, "slot-1", envelope.Envelope{
		Version:        "2.1.0",
		Timestamp:      time.UnixMilli(1000).UTC(),
		CurrentSceneID: "overworld",
		Systems:        map[string]value.Value{"inventory": value.Number(3)},
	})

	cmd, out := newTestCmd(t, dir)
	if err := runShow(cmd, []string{"slot-1"}); err != nil {
		t.Fatalf("show: %v", err)
	}
	got := out.String()
	for _, want := range []string{"version: 2.1.0", "scene:   overworld", "inventory"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output, got %q", want, got)
		}
	}
}

func TestShowMissingSlot(t *testing.T) {
	cmd, _ := newTestCmd(t, t.TempDir())
	if err := runShow(cmd, []string{"ghost"}); err == nil {
		t.Fatal("expected error for missing slot")
	}
}

func TestVerifyReportsOlderVersion(t *testing.T) {
	dir := t.TempDir()
	seedSlot(t, dir, "slot-1", envelope.Envelope{
		Version: "1.0.0",
		Systems: map[string]value.Value{"inventory": value.NewSet().Add(value.String("sword"))},
	})

	cmd, out := newTestCmd(t, dir)
	if err := cmd.Flags().Set("target", "2.0.0"); err != nil {
		t.Fatalf("set target: %v", err)
	}
	if err := runVerify(cmd, []string{"slot-1"}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "older than target 2.0.0") {
		t.Fatalf("expected migration note, got %q", got)
	}
	if !strings.Contains(got, "ok: 1 systems") {
		t.Fatalf("expected ok line, got %q", got)
	}
}

func TestVerifyTargetDefaultsToConfiguredVersion(t *testing.T) {
	dir := t.TempDir()
	seedSlot(t, dir, "slot-1", envelope.Envelope{
		Version: "1.0.0",
		Systems: map[string]value.Value{},
	})
	setConfig(t, config.Config{GameVersion: "2.0.0"})

	cmd, out := newTestCmd(t, dir)
	if err := runVerify(cmd, []string{"slot-1"}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out.String(), "older than target 2.0.0") {
		t.Fatalf("expected configured version used as target, got %q", out.String())
	}
}

func TestVerifySkipsComparisonWithoutTarget(t *testing.T) {
	dir := t.TempDir()
	seedSlot(t, dir, "slot-1", envelope.Envelope{
		Version: "1.0.0",
		Systems: map[string]value.Value{},
	})
	setConfig(t, config.Config{})

	cmd, out := newTestCmd(t, dir)
	if err := runVerify(cmd, []string{"slot-1"}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if strings.Contains(out.String(), "target") {
		t.Fatalf("expected no version comparison, got %q", out.String())
	}
}

func TestExecuteTwiceDoesNotRedefineFlags(t *testing.T) {
	dir := t.TempDir()
	seedSlot(t, dir, "slot-1", envelope.Envelope{
		Version: "1.0.0",
		Systems: map[string]value.Value{},
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"list"})

	for i := 0; i < 2; i++ {
		if err := Execute(context.Background(), config.Config{Backend: "file", DataPath: dir}); err != nil {
			t.Fatalf("execute run %d: %v", i+1, err)
		}
	}
	if !strings.Contains(out.String(), "slot-1") {
		t.Fatalf("expected listing output, got %q", out.String())
	}
}

func TestDeleteRemovesSlot(t *testing.T) {
	dir := t.TempDir()
	seedSlot(t, dir, "slot-1", envelope.Envelope{
		Version: "1.0.0",
		Systems: map[string]value.Value{},
	})

	cmd, _ := newTestCmd(t, dir)
	if err := runDelete(cmd, []string{"slot-1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := runShow(cmd, []string{"slot-1"}); err == nil {
		t.Fatal("expected slot gone after delete")
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	cmd, _ := newTestCmd(t, t.TempDir())
	if err := cmd.Flags().Set("backend", "carrier-pigeon"); err != nil {
		t.Fatalf("set backend: %v", err)
	}
	if _, _, err := openStore(cmd); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
