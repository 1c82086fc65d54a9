// Package value models loosely-typed configuration data as a recursive tagged
// variant: null, scalar, sequence or mapping.
//
// Mappings keep the key order of the source document so that anything iterating
// over configuration sections (validation, summaries, templates) is deterministic.
package value

import (
	"fmt"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a node of a configuration tree. The zero Value is null.
type Value struct {
	kind   Kind
	scalar any
	items  []Value
	m      *mapping
}

type mapping struct {
	keys   []string
	fields map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Scalar wraps a string, bool, number or timestamp. A nil scalar is null.
func Scalar(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: KindScalar, scalar: v}
}

// Sequence builds a sequence from items.
func Sequence(items ...Value) Value {
	return Value{kind: KindSequence, items: append([]Value(nil), items...)}
}

// Mapping returns an empty mapping.
func Mapping() Value {
	return Value{kind: KindMapping, m: &mapping{fields: map[string]Value{}}}
}

// MappingOf builds a mapping from alternating key/value pairs.
// It panics on an odd argument count or non-string keys; it is meant for
// literals in code and tests.
func MappingOf(kv ...any) Value {
	if len(kv)%2 != 0 {
		panic("value.MappingOf: odd number of arguments")
	}
	out := Mapping()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("value.MappingOf: key %v is not a string", kv[i]))
		}
		out.Set(key, From(kv[i+1]))
	}
	return out
}

// From converts plain Go data (as produced by encoding packages) into a Value.
// Maps with string keys become mappings with sorted key order.
func From(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case map[string]any:
		out := Mapping()
		for _, k := range sortedKeys(t) {
			out.Set(k, From(t[k]))
		}
		return out
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = From(item)
		}
		return Value{kind: KindSequence, items: items}
	case []string:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = Scalar(item)
		}
		return Value{kind: KindSequence, items: items}
	default:
		return Scalar(v)
	}
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsMapping reports whether v is a mapping.
func (v Value) IsMapping() bool { return v.kind == KindMapping }

// IsSequence reports whether v is a sequence.
func (v Value) IsSequence() bool { return v.kind == KindSequence }

// Raw returns the scalar payload, or nil for non-scalars.
func (v Value) Raw() any {
	if v.kind != KindScalar {
		return nil
	}
	return v.scalar
}

// String renders scalars the way a template would print them.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindScalar:
		return fmt.Sprint(v.scalar)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// Len returns the number of entries of a mapping or sequence.
func (v Value) Len() int {
	switch v.kind {
	case KindMapping:
		return len(v.m.keys)
	case KindSequence:
		return len(v.items)
	default:
		return 0
	}
}

// Items returns the elements of a sequence.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	return v.items
}

// Keys returns mapping keys in document order.
func (v Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	return append([]string(nil), v.m.keys...)
}

// Get returns the entry stored under key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping {
		return Null(), false
	}
	item, ok := v.m.fields[key]
	return item, ok
}

// Has reports whether a mapping contains key, even if its value is null.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Set stores item under key, appending new keys at the end. Set on a
// non-mapping turns v into an empty mapping first.
func (v *Value) Set(key string, item Value) {
	if v.kind != KindMapping {
		*v = Mapping()
	}
	if _, exists := v.m.fields[key]; !exists {
		v.m.keys = append(v.m.keys, key)
	}
	v.m.fields[key] = item
}

// Delete removes key from a mapping.
func (v *Value) Delete(key string) {
	if v.kind != KindMapping {
		return
	}
	if _, exists := v.m.fields[key]; !exists {
		return
	}
	delete(v.m.fields, key)
	for i, k := range v.m.keys {
		if k == key {
			v.m.keys = append(v.m.keys[:i:i], v.m.keys[i+1:]...)
			break
		}
	}
}

// Lookup resolves a dot-separated path through nested mappings. Walking into a
// non-mapping, a missing key, or a null value all yield not found.
func (v Value) Lookup(path string) (Value, bool) {
	cur := v
	for _, key := range strings.Split(path, ".") {
		next, ok := cur.Get(key)
		if !ok {
			return Null(), false
		}
		cur = next
	}
	if cur.IsNull() {
		return Null(), false
	}
	return cur, true
}

// Truthy applies the usual scripting-language notion of truth: false, zero,
// empty strings, empty collections and null are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindSequence, KindMapping:
		return v.Len() > 0
	}
	switch s := v.scalar.(type) {
	case bool:
		return s
	case string:
		return s != ""
	case int:
		return s != 0
	case int64:
		return s != 0
	case uint64:
		return s != 0
	case float64:
		return s != 0
	default:
		return true
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindMapping:
		out := Mapping()
		for _, k := range v.m.keys {
			out.Set(k, v.m.fields[k].Clone())
		}
		return out
	case KindSequence:
		items := make([]Value, len(v.items))
		for i, item := range v.items {
			items[i] = item.Clone()
		}
		return Value{kind: KindSequence, items: items}
	default:
		return v
	}
}

// Interface converts v into plain Go data: map[string]any, []any, scalars and nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindMapping:
		out := make(map[string]any, len(v.m.keys))
		for _, k := range v.m.keys {
			out[k] = v.m.fields[k].Interface()
		}
		return out
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindScalar:
		return v.scalar
	default:
		return nil
	}
}

// Equal reports structural equality. Mapping key order is ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		return v.scalar == other.scalar
	case KindSequence:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	default:
		if v.Len() != other.Len() {
			return false
		}
		for _, k := range v.m.keys {
			o, ok := other.m.fields[k]
			if !ok || !v.m.fields[k].Equal(o) {
				return false
			}
		}
		return true
	}
}
