// Package model defines the in-memory semantic model for anvil IDL
// definitions: identifiers and namespaces, node values, shape bodies, trait
// applications, and the Model container that merges independently parsed
// artifacts into one consistent registry.
package model

import (
	"fmt"
	"strings"
)

// Identifier is a single validated name token. Valid identifiers match
// (letter|'_')(letter|digit|'_')* and are compared case-sensitively.
type Identifier string

// ParseIdentifier validates s and returns it as an Identifier.
func ParseIdentifier(s string) (Identifier, error) {
	if !IsValidIdentifier(s) {
		return "", &SyntaxError{Kind: "identifier", Text: s}
	}
	return Identifier(s), nil
}

// IsValidIdentifier reports whether s is a well-formed identifier token.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (i Identifier) String() string { return string(i) }

// Namespace is a non-empty dotted path of identifiers, such as
// "example.weather". It qualifies shape names to make them globally unique.
type Namespace string

// ParseNamespace validates s and returns it as a Namespace.
func ParseNamespace(s string) (Namespace, error) {
	if !IsValidNamespace(s) {
		return "", &SyntaxError{Kind: "namespace", Text: s}
	}
	return Namespace(s), nil
}

// IsValidNamespace reports whether s is a dot-separated sequence of valid
// identifiers.
func IsValidNamespace(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if !IsValidIdentifier(part) {
			return false
		}
	}
	return true
}

func (n Namespace) String() string { return string(n) }

// Parts returns the namespace's identifier segments in order.
func (n Namespace) Parts() []Identifier {
	raw := strings.Split(string(n), ".")
	parts := make([]Identifier, len(raw))
	for i, p := range raw {
		parts[i] = Identifier(p)
	}
	return parts
}

// ShapeID identifies a shape, or a member of a shape, within a model.
//
//	com.foo.baz#ShapeName$memberName
//	\_________/ \_______/ \________/
//	     |          |          |
//	 Namespace  Shape name  Member name
//
// A ShapeID with a namespace is absolute; relative IDs exist only transiently
// while a single artifact is being resolved. ShapeID is an immutable value
// type and is usable directly as a map key.
type ShapeID struct {
	namespace Namespace
	name      Identifier
	member    Identifier
}

// NewShapeID constructs an absolute shape ID. The member name may be empty.
// It panics on malformed input; use ParseShapeID for untrusted text.
func NewShapeID(namespace, name, member string) ShapeID {
	id, err := makeShapeID(namespace, name, member)
	if err != nil {
		panic(err)
	}
	return id
}

// RelativeShapeID constructs a shape ID with no namespace. Relative IDs are
// only legal as input to Resolve; the Model container stores absolute IDs
// exclusively.
func RelativeShapeID(name string) (ShapeID, error) {
	n, err := ParseIdentifier(name)
	if err != nil {
		return ShapeID{}, err
	}
	return ShapeID{name: n}, nil
}

// ParseShapeID parses the canonical text form "ns#shapeName" or
// "ns#shapeName$memberName". Text with no "#" parses as a relative ID.
func ParseShapeID(s string) (ShapeID, error) {
	var namespace, rest string
	switch parts := strings.Split(s, "#"); len(parts) {
	case 1:
		rest = parts[0]
	case 2:
		namespace, rest = parts[0], parts[1]
		if !IsValidNamespace(namespace) {
			return ShapeID{}, &SyntaxError{Kind: "shape id", Text: s}
		}
	default:
		return ShapeID{}, &SyntaxError{Kind: "shape id", Text: s}
	}

	var name, member string
	switch parts := strings.Split(rest, "$"); len(parts) {
	case 1:
		name = parts[0]
	case 2:
		name, member = parts[0], parts[1]
		if !IsValidIdentifier(member) {
			return ShapeID{}, &SyntaxError{Kind: "shape id", Text: s}
		}
	default:
		return ShapeID{}, &SyntaxError{Kind: "shape id", Text: s}
	}
	if !IsValidIdentifier(name) {
		return ShapeID{}, &SyntaxError{Kind: "shape id", Text: s}
	}
	return ShapeID{namespace: Namespace(namespace), name: Identifier(name), member: Identifier(member)}, nil
}

// MustShapeID is ParseShapeID that panics on error, for literals in tests
// and the prelude.
func MustShapeID(s string) ShapeID {
	id, err := ParseShapeID(s)
	if err != nil {
		panic(err)
	}
	return id
}

func makeShapeID(namespace, name, member string) (ShapeID, error) {
	if !IsValidNamespace(namespace) {
		return ShapeID{}, &SyntaxError{Kind: "namespace", Text: namespace}
	}
	if !IsValidIdentifier(name) {
		return ShapeID{}, &SyntaxError{Kind: "identifier", Text: name}
	}
	if member != "" && !IsValidIdentifier(member) {
		return ShapeID{}, &SyntaxError{Kind: "identifier", Text: member}
	}
	return ShapeID{namespace: Namespace(namespace), name: Identifier(name), member: Identifier(member)}, nil
}

// Namespace returns the ID's namespace, empty for relative IDs.
func (id ShapeID) Namespace() Namespace { return id.namespace }

// Name returns the shape name.
func (id ShapeID) Name() Identifier { return id.name }

// Member returns the member name, empty when the ID names a top-level shape.
func (id ShapeID) Member() Identifier { return id.member }

// IsAbsolute reports whether the ID carries a namespace.
func (id ShapeID) IsAbsolute() bool { return id.namespace != "" }

// IsRelative reports whether the ID has no namespace.
func (id ShapeID) IsRelative() bool { return id.namespace == "" }

// IsMember reports whether the ID names a member rather than a shape.
func (id ShapeID) IsMember() bool { return id.member != "" }

// IsZero reports whether the ID is the zero value.
func (id ShapeID) IsZero() bool { return id == ShapeID{} }

// ToShape returns the ID with any member name dropped.
func (id ShapeID) ToShape() ShapeID {
	id.member = ""
	return id
}

// ToMember returns the ID with its member name replaced by name.
func (id ShapeID) ToMember(name Identifier) ShapeID {
	id.member = name
	return id
}

// WithNamespace returns the ID with its namespace replaced, keeping the
// shape and member names.
func (id ShapeID) WithNamespace(ns Namespace) ShapeID {
	id.namespace = ns
	return id
}

// String renders the canonical text form, which is also the key used for
// cross-model referencing.
func (id ShapeID) String() string {
	var b strings.Builder
	if id.namespace != "" {
		b.WriteString(string(id.namespace))
		b.WriteByte('#')
	}
	b.WriteString(string(id.name))
	if id.member != "" {
		b.WriteByte('$')
		b.WriteString(string(id.member))
	}
	return b.String()
}

// GoString makes test failures readable.
func (id ShapeID) GoString() string { return fmt.Sprintf("model.MustShapeID(%q)", id.String()) }
