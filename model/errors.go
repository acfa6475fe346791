package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for known conditions. Typed errors below wrap these so
// callers can classify with errors.Is without matching concrete types.
var (
	// ErrSyntax indicates malformed identifier, namespace, or shape-id text.
	ErrSyntax = errors.New("syntax error")

	// ErrResolution indicates a relative name that could not be resolved.
	ErrResolution = errors.New("resolution error")

	// ErrConflict indicates two incompatible definitions for the same
	// shape, trait application, or metadata key.
	ErrConflict = errors.New("merge conflict")
)

// SyntaxError reports malformed identifier, namespace, or shape-id text.
type SyntaxError struct {
	// Kind names the production that failed ("identifier", "namespace",
	// "shape id").
	Kind string

	// Text is the offending input.
	Text string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Kind, e.Text)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ResolutionErrorKind classifies a resolution failure.
type ResolutionErrorKind int

const (
	// UnresolvedName means no candidate matched the relative name.
	UnresolvedName ResolutionErrorKind = iota

	// AmbiguousName means more than one import matched the bare name.
	AmbiguousName
)

// ResolutionError reports a relative name that failed to resolve against the
// current namespace, imports, and prelude.
type ResolutionError struct {
	Kind ResolutionErrorKind

	// Name is the relative name as written in the artifact.
	Name string

	// Namespace is the artifact's declared namespace, the resolution context.
	Namespace Namespace

	// Candidates holds the conflicting import IDs for AmbiguousName.
	Candidates []ShapeID
}

func (e *ResolutionError) Error() string {
	switch e.Kind {
	case AmbiguousName:
		return fmt.Sprintf("ambiguous name %q in namespace %s: matches %d imports", e.Name, e.Namespace, len(e.Candidates))
	default:
		return fmt.Sprintf("unresolved name %q in namespace %s", e.Name, e.Namespace)
	}
}

func (e *ResolutionError) Unwrap() error { return ErrResolution }

// ShapeConflictError reports two concrete, structurally different
// definitions for the same shape ID.
type ShapeConflictError struct {
	ID ShapeID

	// Locus describes which part of the definition differed, for diagnostics.
	Locus string
}

func (e *ShapeConflictError) Error() string {
	if e.Locus == "" {
		return fmt.Sprintf("conflicting definitions for shape %s", e.ID)
	}
	return fmt.Sprintf("conflicting definitions for shape %s: %s", e.ID, e.Locus)
}

func (e *ShapeConflictError) Unwrap() error { return ErrConflict }

// TraitConflictError reports a trait applied twice with differing values.
type TraitConflictError struct {
	Shape ShapeID
	Trait ShapeID
}

func (e *TraitConflictError) Error() string {
	return fmt.Sprintf("conflicting values for trait %s on %s", e.Trait, e.Shape)
}

func (e *TraitConflictError) Unwrap() error { return ErrConflict }

// MetadataConflictError reports two unequal, non-array values for the same
// metadata key.
type MetadataConflictError struct {
	Key string
}

func (e *MetadataConflictError) Error() string {
	return fmt.Sprintf("conflicting values for metadata key %q", e.Key)
}

func (e *MetadataConflictError) Unwrap() error { return ErrConflict }
