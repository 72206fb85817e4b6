// Package envelope defines the persisted save unit and its wire codec.
package envelope

import (
	"encoding/json"
	"time"

	apperrors "github.com/louisbranch/continuity/internal/platform/errors"
	"github.com/louisbranch/continuity/internal/save/value"
)

// Envelope is the versioned, timestamped container holding every serialized
// system plus scene and metadata. A fresh envelope is constructed on every
// save; none persists across calls.
type Envelope struct {
	// Version is the application version active when the save was produced.
	// Only a successful migration step may advance it.
	Version        string
	Timestamp      time.Time
	CurrentSceneID string
	Systems        map[string]value.Value
	Metadata       map[string]value.Value
}

// wireEnvelope is the JSON shape. Timestamps travel as integer milliseconds.
type wireEnvelope struct {
	Version        string                     `json:"version"`
	Timestamp      int64                      `json:"timestamp"`
	CurrentSceneID string                     `json:"currentSceneId"`
	Systems        map[string]value.Value     `json:"systems"`
	Metadata       map[string]value.Value     `json:"metadata"`
}

type rawEnvelope struct {
	Version        string                     `json:"version"`
	Timestamp      int64                      `json:"timestamp"`
	CurrentSceneID string                     `json:"currentSceneId"`
	Systems        map[string]json.RawMessage `json:"systems"`
	Metadata       map[string]json.RawMessage `json:"metadata"`
}

// Encode renders the envelope in its wire form.
func Encode(env Envelope) ([]byte, error) {
	systems := env.Systems
	if systems == nil {
		systems = map[string]value.Value{}
	}
	metadata := env.Metadata
	if metadata == nil {
		metadata = map[string]value.Value{}
	}
	data, err := json.Marshal(wireEnvelope{
		Version:        env.Version,
		Timestamp:      env.Timestamp.UTC().UnixMilli(),
		CurrentSceneID: env.CurrentSceneID,
		Systems:        systems,
		Metadata:       metadata,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEnvelopeEncode, "encode envelope", err)
	}
	return data, nil
}

// Decode parses wire data into an Envelope, reconstructing tagged container
// values inside systems and metadata.
func Decode(data []byte) (Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return Envelope{}, apperrors.Wrap(apperrors.CodeEnvelopeDecode, "decode envelope", err)
	}
	if raw.Version == "" {
		return Envelope{}, apperrors.New(apperrors.CodeEnvelopeMissingVersion, "envelope version is required")
	}

	env := Envelope{
		Version:        raw.Version,
		Timestamp:      time.UnixMilli(raw.Timestamp).UTC(),
		CurrentSceneID: raw.CurrentSceneID,
		Systems:        make(map[string]value.Value, len(raw.Systems)),
		Metadata:       make(map[string]value.Value, len(raw.Metadata)),
	}
	for key, rawVal := range raw.Systems {
		v, err := value.Decode(rawVal)
		if err != nil {
			return Envelope{}, apperrors.Wrap(apperrors.CodeEnvelopeDecode, "decode system "+key, err)
		}
		env.Systems[key] = v
	}
	for key, rawVal := range raw.Metadata {
		v, err := value.Decode(rawVal)
		if err != nil {
			return Envelope{}, apperrors.Wrap(apperrors.CodeEnvelopeDecode, "decode metadata "+key, err)
		}
		env.Metadata[key] = v
	}
	return env, nil
}
