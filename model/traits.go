package model

// Traits is the set of trait applications on a shape or member. The trait's
// shape ID is the map key, so a trait can be applied at most once; re-adding
// the same trait with an equal value is a no-op, and a differing value is a
// conflict, never a silent overwrite. Application order is preserved for
// stable serialization, but equality is set-based.
type Traits struct {
	ids    []ShapeID
	values map[ShapeID]Value
}

// NewTraits constructs an empty trait-application set.
func NewTraits() *Traits {
	return &Traits{values: make(map[ShapeID]Value)}
}

// Apply adds or updates a trait unconditionally. The conflict-checked path
// is Model.AddTrait; Apply is for artifact parsers and builders assembling a
// shape before it enters a container. A nil value records an annotation
// trait with no argument.
func (t *Traits) Apply(id ShapeID, value Value) {
	if t.values == nil {
		t.values = make(map[ShapeID]Value)
	}
	if _, ok := t.values[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.values[id] = value
}

// Get returns the trait's value and whether the trait is applied. The value
// is nil for annotation traits.
func (t *Traits) Get(id ShapeID) (Value, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[id]
	return v, ok
}

// Has reports whether the trait is applied.
func (t *Traits) Has(id ShapeID) bool {
	_, ok := t.Get(id)
	return ok
}

// IDs returns the applied trait IDs in application order. The slice must not
// be mutated.
func (t *Traits) IDs() []ShapeID {
	if t == nil {
		return nil
	}
	return t.ids
}

// Len returns the number of applied traits.
func (t *Traits) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ids)
}

// Equal reports whether two trait sets apply the same traits with
// structurally equal values, ignoring application order.
func (t *Traits) Equal(other *Traits) bool {
	if t.Len() != other.Len() {
		return false
	}
	for _, id := range t.IDs() {
		ov, ok := other.Get(id)
		if !ok {
			return false
		}
		tv, _ := t.Get(id)
		if !ValuesEqual(tv, ov) {
			return false
		}
	}
	return true
}

// mergeInto applies every trait in t onto dst, reporting a conflict for each
// trait already present with a differing value. on identifies the annotated
// shape or member for error loci.
func (t *Traits) mergeInto(dst *Traits, on ShapeID) []error {
	var errs []error
	for _, id := range t.IDs() {
		v, _ := t.Get(id)
		if existing, ok := dst.Get(id); ok {
			if !ValuesEqual(existing, v) {
				errs = append(errs, &TraitConflictError{Shape: on, Trait: id})
			}
			continue
		}
		dst.Apply(id, v)
	}
	return errs
}
