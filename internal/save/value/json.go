package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/louisbranch/continuity/internal/platform/errors"
)

// Tagged variant markers for containers JSON cannot express natively.
const (
	typeKey     = "$type"
	typeTagMap  = "Map"
	typeTagSet  = "Set"
	valueKey    = "value"
	mapPairSize = 2
)

func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(l))
}

func (o Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Value(o))
}

// taggedVariant is the wire shape for ordered maps and sets. Field order
// matters only cosmetically: the $type discriminator leads.
type taggedVariant struct {
	Type  string `json:"$type"`
	Value any    `json:"value"`
}

func (m *Map) MarshalJSON() ([]byte, error) {
	pairs := make([][mapPairSize]any, 0, len(m.entries))
	for _, e := range m.entries {
		pairs = append(pairs, [mapPairSize]any{e.Key, e.Val})
	}
	return json.Marshal(taggedVariant{Type: typeTagMap, Value: pairs})
}

func (s *Set) MarshalJSON() ([]byte, error) {
	elems := s.elems
	if elems == nil {
		elems = []Value{}
	}
	return json.Marshal(taggedVariant{Type: typeTagSet, Value: elems})
}

// Encode renders a value in its wire form.
func Encode(v Value) ([]byte, error) {
	if v == nil {
		v = Null{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValueUnsupported, "encode value", err)
	}
	return data, nil
}

// Decode parses wire data back into a Value, reconstructing tagged Map and
// Set variants.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEnvelopeDecode, "decode value", err)
	}
	return FromWire(raw)
}

// FromWire converts an already-unmarshalled JSON document into a Value.
// map[string]any nodes carrying a "$type" discriminator become ordered maps
// or sets; everything else maps structurally.
func FromWire(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case float64:
		return Number(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeEnvelopeDecode, fmt.Sprintf("decode number %q", v.String()), err)
		}
		return Number(f), nil
	case []any:
		out := make(List, 0, len(v))
		for _, e := range v {
			ev, err := FromWire(e)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	case map[string]any:
		if tag, ok := v[typeKey].(string); ok {
			switch tag {
			case typeTagMap:
				return mapFromWire(v[valueKey])
			case typeTagSet:
				return setFromWire(v[valueKey])
			}
		}
		out := make(Object, len(v))
		for k, e := range v {
			ev, err := FromWire(e)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	default:
		return nil, apperrors.New(apperrors.CodeValueUnsupported, fmt.Sprintf("unsupported wire type %T", raw))
	}
}

func mapFromWire(raw any) (Value, error) {
	pairs, ok := raw.([]any)
	if !ok {
		return nil, apperrors.New(apperrors.CodeEnvelopeDecode, "map variant value must be a pair list")
	}
	out := NewMap()
	for _, p := range pairs {
		pair, ok := p.([]any)
		if !ok || len(pair) != mapPairSize {
			return nil, apperrors.New(apperrors.CodeEnvelopeDecode, "map variant entry must be a [key, value] pair")
		}
		key, ok := pair[0].(string)
		if !ok {
			return nil, apperrors.New(apperrors.CodeValueNonStringKey, fmt.Sprintf("map key %v is not a string", pair[0]))
		}
		val, err := FromWire(pair[1])
		if err != nil {
			return nil, err
		}
		out.Set(key, val)
	}
	return out, nil
}

func setFromWire(raw any) (Value, error) {
	elems, ok := raw.([]any)
	if !ok {
		return nil, apperrors.New(apperrors.CodeEnvelopeDecode, "set variant value must be a list")
	}
	out := NewSet()
	for _, e := range elems {
		ev, err := FromWire(e)
		if err != nil {
			return nil, err
		}
		out.Add(ev)
	}
	return out, nil
}

// canonical returns a deterministic wire rendering used for set membership.
// Object keys are sorted by encoding/json, so equal values share a key.
func canonical(v Value) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("!%v", err)
	}
	return string(data)
}
