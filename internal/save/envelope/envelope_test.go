package envelope

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/continuity/internal/platform/errors"
	"github.com/louisbranch/continuity/internal/save/value"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	env := Envelope{
		Version:        "1.4.0",
		Timestamp:      time.UnixMilli(1700000000000).UTC(),
		CurrentSceneID: "overworld",
		Systems: map[string]value.Value{
			"inventory": value.NewMap().Set("sword", value.Number(1)),
			"quests":    value.NewSet(value.String("intro")),
		},
		Metadata: map[string]value.Value{
			"playtime": value.Number(42),
		},
	}

	data, err := Encode(env)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Version != "1.4.0" {
		t.Fatalf("unexpected version %q", decoded.Version)
	}
	if !decoded.Timestamp.Equal(env.Timestamp) {
		t.Fatalf("unexpected timestamp %v", decoded.Timestamp)
	}
	if decoded.CurrentSceneID != "overworld" {
		t.Fatalf("unexpected scene %q", decoded.CurrentSceneID)
	}
	if !value.Equal(env.Systems["inventory"], decoded.Systems["inventory"]) {
		t.Fatal("inventory did not round trip")
	}
	if !value.Equal(env.Systems["quests"], decoded.Systems["quests"]) {
		t.Fatal("quests did not round trip")
	}
	if !value.Equal(env.Metadata["playtime"], decoded.Metadata["playtime"]) {
		t.Fatal("metadata did not round trip")
	}
}

func TestEncodeWireShape(t *testing.T) {
	env := Envelope{
		Version:   "2.0.0",
		Timestamp: time.UnixMilli(123).UTC(),
	}
	data, err := Encode(env)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal wire: %v", err)
	}
	for _, field := range []string{"version", "timestamp", "currentSceneId", "systems", "metadata"} {
		if _, ok := wire[field]; !ok {
			t.Fatalf("missing wire field %q in %s", field, data)
		}
	}
	if string(wire["timestamp"]) != "123" {
		t.Fatalf("expected integer millisecond timestamp, got %s", wire["timestamp"])
	}
}

func TestDecodeRequiresVersion(t *testing.T) {
	_, err := Decode([]byte(`{"timestamp":1,"systems":{}}`))
	if !errors.Is(err, apperrors.New(apperrors.CodeEnvelopeMissingVersion, "")) {
		t.Fatalf("expected missing version error, got %v", err)
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestDecodeMalformedSystemValue(t *testing.T) {
	_, err := Decode([]byte(`{"version":"1.0.0","systems":{"inv":{"$type":"Map","value":[[1,2]]}}}`))
	if err == nil {
		t.Fatal("expected error for bad map key")
	}
	if !strings.Contains(err.Error(), "inv") {
		t.Fatalf("expected failing system key in error, got %v", err)
	}
}
