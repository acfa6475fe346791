package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the recursive node-value variant used for trait arguments and
// model metadata: null, boolean, number, string, array, or object. Values
// are pure data; the only behavior is construction, structural equality, and
// traversal.
type Value interface {
	fmt.Stringer
	isValue()
}

// Null is the explicit null value.
type Null struct{}

func (Null) isValue()       {}
func (Null) String() string { return "null" }

// Boolean is a true/false value.
type Boolean bool

func (Boolean) isValue() {}

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }

// Number is a numeric value that preserves integer versus floating identity
// exactly; an Integer and a Float are never structurally equal even when
// they denote the same quantity.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

// Integer constructs an integer Number.
func Integer(v int64) Number { return Number{i: v} }

// Float constructs a floating-point Number.
func Float(v float64) Number { return Number{isFloat: true, f: v} }

func (Number) isValue() {}

// IsFloat reports whether the number carries floating-point semantics.
func (n Number) IsFloat() bool { return n.isFloat }

// Int returns the integer value; the bool is false for floats.
func (n Number) Int() (int64, bool) {
	if n.isFloat {
		return 0, false
	}
	return n.i, true
}

// AsFloat widens either representation to float64, for ordering comparisons
// where numeric identity does not matter.
func (n Number) AsFloat() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n Number) String() string {
	if n.isFloat {
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	}
	return strconv.FormatInt(n.i, 10)
}

// String is a text value.
type String string

func (String) isValue() {}

func (s String) String() string { return strconv.Quote(string(s)) }

// Array is an ordered sequence of values; equality is order-sensitive.
type Array []Value

func (Array) isValue() {}

func (a Array) String() string {
	parts := make([]string, len(a))
	for i, v := range a {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Object is an ordered mapping from unique string keys to values. Insertion
// order is preserved for stable re-serialization, but equality ignores it.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject constructs an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// ObjectOf constructs an object from alternating key, value pairs, in order.
// It panics on an odd number of arguments or a non-string key; it is meant
// for literals in tests and the prelude.
func ObjectOf(pairs ...any) *Object {
	if len(pairs)%2 != 0 {
		panic("model.ObjectOf: odd number of arguments")
	}
	o := NewObject()
	for i := 0; i < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1].(Value))
	}
	return o
}

func (*Object) isValue() {}

// Set inserts or updates key. A new key is appended to the iteration order;
// updating an existing key keeps its original position.
func (o *Object) Set(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value for key, if present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice must not be mutated.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

func (o *Object) String() string {
	parts := make([]string, len(o.keys))
	for i, k := range o.keys {
		parts[i] = strconv.Quote(k) + ": " + o.values[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ValuesEqual reports structural equality: same variant and recursively
// equal contents. Object comparison ignores key order; array comparison is
// order-sensitive; numbers never coerce between integer and float.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, k := range av.keys {
			bval, ok := bv.Get(k)
			if !ok || !ValuesEqual(av.values[k], bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
