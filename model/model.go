package model

import "errors"

// DefaultVersion is the model version assumed when an artifact does not
// declare one.
const DefaultVersion = "1.0"

// Model owns the full shape registry and metadata map for an assembled
// model. Every stored ShapeID is absolute. Mutation happens only during the
// single-writer assembly phase; once assembled, a Model is treated as
// immutable and may be queried concurrently without synchronization.
type Model struct {
	version  string
	order    []ShapeID
	shapes   map[ShapeID]*TopLevelShape
	metadata *Object
}

// NewModel constructs an empty model. An empty version falls back to
// DefaultVersion.
func NewModel(version string) *Model {
	if version == "" {
		version = DefaultVersion
	}
	return &Model{
		version:  version,
		shapes:   make(map[ShapeID]*TopLevelShape),
		metadata: NewObject(),
	}
}

// Version returns the model's declared version string.
func (m *Model) Version() string { return m.version }

// Len returns the number of top-level shapes.
func (m *Model) Len() int { return len(m.order) }

// HasShape reports whether a top-level shape exists at id (the member name,
// if any, is ignored).
func (m *Model) HasShape(id ShapeID) bool {
	_, ok := m.shapes[id.ToShape()]
	return ok
}

// Shape resolves id to its top-level shape. For a member ID the owning
// shape is returned only if the member exists. Absence is not an error at
// this layer; orphan-reference detection is a validator's job.
func (m *Model) Shape(id ShapeID) (*TopLevelShape, bool) {
	shape, ok := m.shapes[id.ToShape()]
	if !ok {
		return nil, false
	}
	if id.IsMember() {
		if _, ok := shape.Member(id.Member()); !ok {
			return nil, false
		}
	}
	return shape, true
}

// Member resolves a member ID to its member shape.
func (m *Model) Member(id ShapeID) (*MemberShape, bool) {
	if !id.IsMember() {
		return nil, false
	}
	shape, ok := m.shapes[id.ToShape()]
	if !ok {
		return nil, false
	}
	return shape.Member(id.Member())
}

// ShapeIDs returns every top-level shape ID in insertion order. The slice
// must not be mutated.
func (m *Model) ShapeIDs() []ShapeID { return m.order }

// Metadata returns the model's metadata map. The returned object is owned
// by the model; mutate it only through AddMetadata.
func (m *Model) Metadata() *Object { return m.metadata }

// AddShape inserts shape into the registry. If no shape exists at the ID it
// is inserted as-is; an unresolved placeholder is replaced by a concrete
// definition (keeping any traits already applied to the placeholder). If a
// concrete shape already exists, the call succeeds only when the two
// definitions have the same structure, merging trait applications under the
// AddTrait rules; a structural mismatch is a ShapeConflictError. The shape
// ID must be absolute.
func (m *Model) AddShape(shape *TopLevelShape) error {
	return errors.Join(m.mergeShape(shape)...)
}

func (m *Model) mergeShape(shape *TopLevelShape) []error {
	id := shape.ID
	existing, ok := m.shapes[id]
	if !ok {
		m.order = append(m.order, id)
		m.shapes[id] = shape
		return nil
	}

	switch {
	case existing.IsUnresolved() && !shape.IsUnresolved():
		// Placeholder replaced by the real definition; traits applied to
		// the placeholder, including pending member applications, move
		// onto it.
		carried := existing
		m.shapes[id] = shape
		errs := carried.Traits.mergeInto(shape.Traits, id)
		return append(errs, replayPending(carried.Body.(*UnresolvedShape), shape)...)
	case shape.IsUnresolved():
		// A later placeholder never degrades a concrete definition.
		errs := shape.Traits.mergeInto(existing.Traits, id)
		return append(errs, replayPending(shape.Body.(*UnresolvedShape), existing)...)
	}

	if same, locus := sameStructure(existing.Body, shape.Body); !same {
		return []error{&ShapeConflictError{ID: id, Locus: locus}}
	}

	errs := shape.Traits.mergeInto(existing.Traits, id)
	for _, member := range existing.members() {
		incoming, ok := shape.Member(member.Name)
		if !ok {
			continue
		}
		errs = append(errs, incoming.Traits.mergeInto(member.Traits, id.ToMember(member.Name))...)
	}
	return errs
}

// AddTrait applies a trait to the shape or member named by id. Re-applying
// with an equal value (or both absent) is a no-op; a differing value fails
// with a TraitConflictError. The target shape must already exist.
func (m *Model) AddTrait(id ShapeID, trait ShapeID, value Value) error {
	target, err := m.traitTarget(id)
	if err != nil {
		return err
	}
	if existing, ok := target.Get(trait); ok {
		if !ValuesEqual(existing, value) {
			return &TraitConflictError{Shape: id, Trait: trait}
		}
		return nil
	}
	target.Apply(trait, value)
	return nil
}

func (m *Model) traitTarget(id ShapeID) (*Traits, error) {
	shape, ok := m.shapes[id.ToShape()]
	if !ok {
		// Trait applied to a shape this artifact has not defined yet:
		// record a placeholder so the application is not lost.
		shape = NewShape(id.ToShape(), &UnresolvedShape{})
		m.order = append(m.order, shape.ID)
		m.shapes[shape.ID] = shape
	}
	if !id.IsMember() {
		return shape.Traits, nil
	}
	member, ok := shape.Member(id.Member())
	if !ok {
		// A member of a shape defined elsewhere: pend the application on
		// the placeholder alongside shape-level traits.
		if placeholder, unresolved := shape.Body.(*UnresolvedShape); unresolved {
			return pendingMember(placeholder, id.Member()).Traits, nil
		}
		return nil, &ResolutionError{Kind: UnresolvedName, Name: id.String(), Namespace: id.Namespace()}
	}
	return member.Traits, nil
}

// pendingMember returns the placeholder's pending entry for name, creating
// it on first use.
func pendingMember(placeholder *UnresolvedShape, name Identifier) *MemberShape {
	if placeholder.Pending == nil {
		placeholder.Pending = NewMembers()
	}
	if member, ok := placeholder.Pending.Get(name); ok {
		return member
	}
	member := NewMember(name, ShapeID{})
	placeholder.Pending.Set(member)
	return member
}

// replayPending moves a placeholder's pending member trait applications onto
// shape. A concrete shape missing one of the pending members is a resolution
// error; a shape that is itself still a placeholder pools the applications
// instead.
func replayPending(placeholder *UnresolvedShape, shape *TopLevelShape) []error {
	var errs []error
	for _, pending := range orderedMembers(placeholder.Pending) {
		mid := shape.ID.ToMember(pending.Name)
		member, ok := shape.Member(pending.Name)
		if !ok {
			if target, unresolved := shape.Body.(*UnresolvedShape); unresolved {
				member = pendingMember(target, pending.Name)
			} else {
				errs = append(errs, &ResolutionError{Kind: UnresolvedName, Name: mid.String(), Namespace: mid.Namespace()})
				continue
			}
		}
		errs = append(errs, pending.Traits.mergeInto(member.Traits, mid)...)
	}
	return errs
}

// AddMetadata inserts a metadata entry. An existing key succeeds when both
// values are structurally equal, or when both are arrays, in which case the
// values merge by set union (deduplicated by structural equality, order
// stable). Anything else is a MetadataConflictError.
func (m *Model) AddMetadata(key string, value Value) error {
	existing, ok := m.metadata.Get(key)
	if !ok {
		m.metadata.Set(key, value)
		return nil
	}
	ea, eok := existing.(Array)
	va, vok := value.(Array)
	if eok && vok {
		m.metadata.Set(key, unionArrays(ea, va))
		return nil
	}
	if !ValuesEqual(existing, value) {
		return &MetadataConflictError{Key: key}
	}
	return nil
}

// unionArrays appends the elements of b not already structurally present
// in a, preserving a's order then b's.
func unionArrays(a, b Array) Array {
	merged := make(Array, len(a), len(a)+len(b))
	copy(merged, a)
	for _, v := range b {
		found := false
		for _, existing := range merged {
			if ValuesEqual(existing, v) {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, v)
		}
	}
	return merged
}

// Merge applies every shape, trait application, and metadata entry of other
// into m, collecting all conflicts rather than stopping at the first. The
// container is left in the state reached after applying every
// non-conflicting change, so a caller can inspect everything wrong with a
// multi-artifact assembly in one pass. Merging a model into itself, or the
// same artifact twice, produces no conflicts.
func (m *Model) Merge(other *Model) []error {
	var errs []error
	for _, id := range other.order {
		errs = append(errs, m.mergeShape(other.shapes[id])...)
	}
	for _, key := range other.metadata.Keys() {
		v, _ := other.metadata.Get(key)
		if err := m.AddMetadata(key, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
