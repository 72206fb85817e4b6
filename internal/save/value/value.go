// Package value models the structurally-serializable data that crosses the
// save boundary.
//
// A Value is an explicit tagged union: primitives, lists, plain objects,
// insertion-ordered maps and sets, nested arbitrarily. Ordered maps and sets
// survive the JSON wire format through a tagged variant encoding (see
// json.go), so serializable systems can hand back native containers without
// hand-rolling their own encoding.
package value

// Kind discriminates the concrete type behind a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
	KindMap
	KindSet
)

// String returns the kind name for logs and error metadata.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Value is a single node of serialized system state.
//
// Clone must return a deep copy with fully independent ownership: mutating
// the clone or anything reachable from it never affects the original. The
// load transaction relies on this for its rollback snapshots.
type Value interface {
	Kind() Kind
	Clone() Value
}

// Null is the absent value.
type Null struct{}

func (Null) Kind() Kind   { return KindNull }
func (Null) Clone() Value { return Null{} }

// Bool is a boolean value.
type Bool bool

func (b Bool) Kind() Kind   { return KindBool }
func (b Bool) Clone() Value { return b }

// Number is a numeric value. The wire format is JSON, so all numbers travel
// as float64.
type Number float64

func (n Number) Kind() Kind   { return KindNumber }
func (n Number) Clone() Value { return n }

// String is a string value.
type String string

func (s String) Kind() Kind   { return KindString }
func (s String) Clone() Value { return s }

// List is an ordered sequence of values.
type List []Value

func (l List) Kind() Kind { return KindList }

func (l List) Clone() Value {
	if l == nil {
		return List(nil)
	}
	out := make(List, len(l))
	for i, v := range l {
		out[i] = cloneOrNull(v)
	}
	return out
}

// Object is a plain string-keyed mapping with no ordering guarantee, the
// direct analogue of a JSON object.
type Object map[string]Value

func (o Object) Kind() Kind { return KindObject }

func (o Object) Clone() Value {
	if o == nil {
		return Object(nil)
	}
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = cloneOrNull(v)
	}
	return out
}

// MapEntry is one key/value pair of an ordered map.
type MapEntry struct {
	Key string
	Val Value
}

// Map is a string-keyed mapping that preserves insertion order. Re-setting
// an existing key updates it in place without moving it.
type Map struct {
	entries []MapEntry
	index   map[string]int
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

func (m *Map) Kind() Kind { return KindMap }

// Set inserts or updates a key and returns the map for chaining.
func (m *Map) Set(key string, v Value) *Map {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].Val = v
		return m
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: key, Val: v})
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Val, true
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns the entries in insertion order. The slice is a copy; the
// values are not.
func (m *Map) Entries() []MapEntry {
	out := make([]MapEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Map) Clone() Value {
	out := NewMap()
	for _, e := range m.entries {
		out.Set(e.Key, cloneOrNull(e.Val))
	}
	return out
}

// Set is a collection of distinct values that preserves insertion order.
// Distinctness is judged on the wire encoding of each element.
type Set struct {
	elems []Value
	index map[string]struct{}
}

// NewSet creates a set from the given elements, dropping duplicates.
func NewSet(elems ...Value) *Set {
	s := &Set{index: make(map[string]struct{})}
	for _, e := range elems {
		s.Add(e)
	}
	return s
}

func (s *Set) Kind() Kind { return KindSet }

// Add inserts v unless an equal element is already present.
func (s *Set) Add(v Value) *Set {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	key := canonical(v)
	if _, ok := s.index[key]; ok {
		return s
	}
	s.index[key] = struct{}{}
	s.elems = append(s.elems, v)
	return s
}

// Has reports whether an element equal to v is present.
func (s *Set) Has(v Value) bool {
	_, ok := s.index[canonical(v)]
	return ok
}

// Len returns the number of elements.
func (s *Set) Len() int {
	return len(s.elems)
}

// Elems returns the elements in insertion order. The slice is a copy; the
// values are not.
func (s *Set) Elems() []Value {
	out := make([]Value, len(s.elems))
	copy(out, s.elems)
	return out
}

func (s *Set) Clone() Value {
	out := NewSet()
	for _, e := range s.elems {
		out.Add(cloneOrNull(e))
	}
	return out
}

// cloneOrNull guards against nil interface values inside containers.
func cloneOrNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v.Clone()
}

// Equal reports deep equality of two values. Ordered containers (List, Map,
// Set) compare order-sensitively; Objects compare by key set.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case String:
		return av == b.(String)
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv := b.(Object)
		if len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !Equal(v, bvv) {
				return false
			}
		}
		return true
	case *Map:
		bv := b.(*Map)
		if av.Len() != bv.Len() {
			return false
		}
		for i, e := range av.entries {
			be := bv.entries[i]
			if e.Key != be.Key || !Equal(e.Val, be.Val) {
				return false
			}
		}
		return true
	case *Set:
		bv := b.(*Set)
		if av.Len() != bv.Len() {
			return false
		}
		for i := range av.elems {
			if !Equal(av.elems[i], bv.elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
