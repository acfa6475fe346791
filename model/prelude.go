package model

import "sync"

// PreludeNamespace is the fixed namespace of the built-in shapes and traits
// available in every model without explicit import.
const PreludeNamespace Namespace = "anvil.api"

var (
	preludeOnce  sync.Once
	preludeModel *Model
)

// Prelude returns the process-wide prelude model: built-in simple shapes and
// the standard trait definitions. It is loaded once and never mutated;
// callers pass it explicitly into Resolve rather than treating it as
// ambient state.
func Prelude() *Model {
	preludeOnce.Do(func() {
		preludeModel = buildPrelude()
	})
	return preludeModel
}

// NewPrelude builds a fresh prelude. Merging a prelude into an assembled
// model aliases its shapes, so callers that merge must not use the shared
// instance Prelude returns.
func NewPrelude() *Model { return buildPrelude() }

// Standard trait IDs defined by the prelude.
var (
	TraitBoxed         = NewShapeID(string(PreludeNamespace), "boxed", "")
	TraitDeprecated    = NewShapeID(string(PreludeNamespace), "deprecated", "")
	TraitDocumentation = NewShapeID(string(PreludeNamespace), "documentation", "")
	TraitError         = NewShapeID(string(PreludeNamespace), "error", "")
	TraitIdempotent    = NewShapeID(string(PreludeNamespace), "idempotent", "")
	TraitLength        = NewShapeID(string(PreludeNamespace), "length", "")
	TraitPaginated     = NewShapeID(string(PreludeNamespace), "paginated", "")
	TraitPattern       = NewShapeID(string(PreludeNamespace), "pattern", "")
	TraitRange         = NewShapeID(string(PreludeNamespace), "range", "")
	TraitReadonly      = NewShapeID(string(PreludeNamespace), "readonly", "")
	TraitRequired      = NewShapeID(string(PreludeNamespace), "required", "")
	TraitSensitive     = NewShapeID(string(PreludeNamespace), "sensitive", "")
	TraitSince         = NewShapeID(string(PreludeNamespace), "since", "")
	TraitTags          = NewShapeID(string(PreludeNamespace), "tags", "")
	TraitTitle         = NewShapeID(string(PreludeNamespace), "title", "")
	TraitTrait         = NewShapeID(string(PreludeNamespace), "trait", "")
	TraitUniqueItems   = NewShapeID(string(PreludeNamespace), "uniqueItems", "")
)

func buildPrelude() *Model {
	m := NewModel(DefaultVersion)

	simple := func(name string, kind SimpleKind, boxed bool) {
		shape := NewShape(NewShapeID(string(PreludeNamespace), name, ""), &SimpleShape{Kind: kind})
		if boxed {
			shape.Traits.Apply(TraitBoxed, nil)
		}
		mustAdd(m, shape)
	}

	simple("String", SimpleString, false)
	simple("Blob", SimpleBlob, false)
	simple("BigInteger", SimpleBigInteger, false)
	simple("BigDecimal", SimpleBigDecimal, false)
	simple("Timestamp", SimpleTimestamp, false)
	simple("Document", SimpleDocument, false)
	simple("Boolean", SimpleBoolean, true)
	simple("PrimitiveBoolean", SimpleBoolean, false)
	simple("Byte", SimpleByte, true)
	simple("PrimitiveByte", SimpleByte, false)
	simple("Short", SimpleShort, true)
	simple("PrimitiveShort", SimpleShort, false)
	simple("Integer", SimpleInteger, true)
	simple("PrimitiveInteger", SimpleInteger, false)
	simple("Long", SimpleLong, true)
	simple("PrimitiveLong", SimpleLong, false)
	simple("Float", SimpleFloat, true)
	simple("PrimitiveFloat", SimpleFloat, false)
	simple("Double", SimpleDouble, true)
	simple("PrimitiveDouble", SimpleDouble, false)

	// Trait definition shapes. Annotation traits are empty structures; the
	// value-carrying traits use the simplest body that fits their argument.
	annotation := func(id ShapeID) {
		shape := NewShape(id, &StructureShape{Members: NewMembers()})
		shape.Traits.Apply(TraitTrait, nil)
		mustAdd(m, shape)
	}
	stringTrait := func(id ShapeID) {
		shape := NewShape(id, &SimpleShape{Kind: SimpleString})
		shape.Traits.Apply(TraitTrait, nil)
		mustAdd(m, shape)
	}

	annotation(TraitTrait)
	annotation(TraitBoxed)
	annotation(TraitRequired)
	annotation(TraitReadonly)
	annotation(TraitIdempotent)
	annotation(TraitSensitive)
	annotation(TraitUniqueItems)
	stringTrait(TraitError)
	stringTrait(TraitDocumentation)
	stringTrait(TraitPattern)
	stringTrait(TraitSince)
	stringTrait(TraitTitle)
	annotation(TraitDeprecated)
	annotation(TraitLength)
	annotation(TraitRange)
	annotation(TraitPaginated)

	tags := NewShape(TraitTags, &ListShape{
		Member: NewMember("member", NewShapeID(string(PreludeNamespace), "String", "")),
	})
	tags.Traits.Apply(TraitTrait, nil)
	mustAdd(m, tags)

	return m
}

func mustAdd(m *Model, shape *TopLevelShape) {
	if err := m.AddShape(shape); err != nil {
		panic(err)
	}
}
