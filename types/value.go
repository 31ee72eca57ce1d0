// Package types defines the core data model shared across the benchmarking
// engine: the Context/Action value representation, interactions, results,
// run metadata, and the error taxonomy.
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind discriminates the closed set of shapes a Context or Action can take.
type Kind int

const (
	// KindNone represents an absent context (a "no context" bandit arm).
	KindNone Kind = iota
	// KindNumber is a scalar float64.
	KindNumber
	// KindString is a string scalar.
	KindString
	// KindTuple is an ordered sequence of scalars/strings.
	KindTuple
	// KindMap is a keyed mapping of scalars/strings, keyed by string.
	KindMap
)

// Value is a tagged union over {None, Number, String, Tuple, Map}, the
// closed Context/Action representation. Action never takes KindNone.
// Equality is structural; Key returns a stable string usable as a map key
// or hash input.
type Value struct {
	kind   Kind
	number float64
	str    string
	tuple  []Value
	keys   []string
	values map[string]Value
}

// None returns the absent value.
func None() Value { return Value{kind: KindNone} }

// Number wraps a float64 scalar.
func Number(f float64) Value { return Value{kind: KindNumber, number: f} }

// String wraps a string scalar.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Tuple wraps an ordered sequence of scalars/strings.
func Tuple(vs ...Value) Value {
	cp := make([]Value, len(vs))
	copy(cp, vs)
	return Value{kind: KindTuple, tuple: cp}
}

// Map wraps a keyed mapping. Keys are sorted internally so that two Maps
// built from the same key/value pairs in different insertion order compare
// and hash identically.
func Map(m map[string]Value) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: KindMap, keys: keys, values: cp}
}

// Kind returns the value's discriminant.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the absent value.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Number returns the underlying float64. Only valid when Kind() == KindNumber.
func (v Value) Number() float64 { return v.number }

// Str returns the underlying string. Only valid when Kind() == KindString.
func (v Value) Str() string { return v.str }

// Tuple returns the underlying ordered sequence. Only valid when Kind() == KindTuple.
func (v Value) Tuple() []Value { return v.tuple }

// Map returns the underlying keyed mapping and its sorted keys. Only valid
// when Kind() == KindMap.
func (v Value) Map() (keys []string, values map[string]Value) { return v.keys, v.values }

// Len reports the feature count of v: len(tuple) for KindTuple, len(map) for
// KindMap, 0 for KindNone, 1 otherwise. Used for median_feature_count/
// median_action_count per spec.
func (v Value) Len() int {
	switch v.kind {
	case KindNone:
		return 0
	case KindTuple:
		return len(v.tuple)
	case KindMap:
		return len(v.keys)
	default:
		return 1
	}
}

// Key returns a structurally stable string encoding of v, suitable as a
// hash map key or for equality comparison across Values built independently.
func (v Value) Key() string {
	var b strings.Builder
	v.writeKey(&b)
	return b.String()
}

func (v Value) writeKey(b *strings.Builder) {
	switch v.kind {
	case KindNone:
		b.WriteString("N")
	case KindNumber:
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(v.number, 'g', -1, 64))
	case KindString:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(v.str))
	case KindTuple:
		b.WriteString("t[")
		for i, e := range v.tuple {
			if i > 0 {
				b.WriteByte(',')
			}
			e.writeKey(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteString("m{")
		for i, k := range v.keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			v.values[k].writeKey(b)
		}
		b.WriteByte('}')
	}
}

// Equal reports structural equality between v and o.
func (v Value) Equal(o Value) bool { return v.Key() == o.Key() }

func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "<none>"
	case KindNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case KindString:
		return v.str
	case KindTuple:
		parts := make([]string, len(v.tuple))
		for i, e := range v.tuple {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindMap:
		parts := make([]string, len(v.keys))
		for i, k := range v.keys {
			parts[i] = fmt.Sprintf("%s=%s", k, v.values[k].String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<invalid>"
	}
}
