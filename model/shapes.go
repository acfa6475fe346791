package model

import "fmt"

// SimpleKind is the scalar tag carried by a simple shape.
type SimpleKind uint8

// Scalar kinds.
const (
	SimpleBlob SimpleKind = iota
	SimpleBoolean
	SimpleString
	SimpleByte
	SimpleShort
	SimpleInteger
	SimpleLong
	SimpleFloat
	SimpleDouble
	SimpleBigInteger
	SimpleBigDecimal
	SimpleTimestamp
	SimpleDocument
)

var simpleKindNames = map[SimpleKind]string{
	SimpleBlob:       "blob",
	SimpleBoolean:    "boolean",
	SimpleString:     "string",
	SimpleByte:       "byte",
	SimpleShort:      "short",
	SimpleInteger:    "integer",
	SimpleLong:       "long",
	SimpleFloat:      "float",
	SimpleDouble:     "double",
	SimpleBigInteger: "bigInteger",
	SimpleBigDecimal: "bigDecimal",
	SimpleTimestamp:  "timestamp",
	SimpleDocument:   "document",
}

func (k SimpleKind) String() string { return simpleKindNames[k] }

// ParseSimpleKind maps a scalar kind name to its tag.
func ParseSimpleKind(s string) (SimpleKind, bool) {
	for k, name := range simpleKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// IsNumeric reports whether the scalar kind is one of the number kinds.
func (k SimpleKind) IsNumeric() bool {
	switch k {
	case SimpleByte, SimpleShort, SimpleInteger, SimpleLong,
		SimpleFloat, SimpleDouble, SimpleBigInteger, SimpleBigDecimal:
		return true
	}
	return false
}

// ShapeBody is the closed tagged union of shape kinds. Exhaustive
// type-switching over the concrete bodies keeps per-kind logic total; no
// implementations exist outside this package's set.
type ShapeBody interface {
	// KindName returns the kind's lexical name ("structure", "service", ...)
	// as used by selector filters and the JSON form.
	KindName() string

	isBody()
}

// MemberShape is a named, traited reference from an aggregate or
// service-family shape to another shape. It is exclusively owned by its
// containing shape body; the Target field is a reference by identifier into
// the model's registry, never an ownership edge, so reference cycles are
// legal.
type MemberShape struct {
	Name   Identifier
	Target ShapeID
	Traits *Traits
}

// NewMember constructs a member with an empty trait set.
func NewMember(name Identifier, target ShapeID) *MemberShape {
	return &MemberShape{Name: name, Target: target, Traits: NewTraits()}
}

func (m *MemberShape) sameStructure(other *MemberShape) bool {
	return m.Name == other.Name && m.Target == other.Target
}

// Members is an ordered mapping from member name to member shape, as used
// by structure and union bodies.
type Members struct {
	names  []Identifier
	byName map[Identifier]*MemberShape
}

// NewMembers constructs an empty member map.
func NewMembers() *Members {
	return &Members{byName: make(map[Identifier]*MemberShape)}
}

// Set inserts or replaces a member, preserving first-insertion order.
func (m *Members) Set(member *MemberShape) {
	if m.byName == nil {
		m.byName = make(map[Identifier]*MemberShape)
	}
	if _, ok := m.byName[member.Name]; !ok {
		m.names = append(m.names, member.Name)
	}
	m.byName[member.Name] = member
}

// Get returns the named member, if present.
func (m *Members) Get(name Identifier) (*MemberShape, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.byName[name]
	return v, ok
}

// Names returns member names in declaration order.
func (m *Members) Names() []Identifier {
	if m == nil {
		return nil
	}
	return m.names
}

// Len returns the number of members.
func (m *Members) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

func (m *Members) sameStructure(other *Members) bool {
	if m.Len() != other.Len() {
		return false
	}
	for _, name := range m.Names() {
		a, _ := m.Get(name)
		b, ok := other.Get(name)
		if !ok || !a.sameStructure(b) {
			return false
		}
	}
	return true
}

// SimpleShape is a scalar shape body.
type SimpleShape struct {
	Kind SimpleKind
}

func (*SimpleShape) isBody()            {}
func (s *SimpleShape) KindName() string { return s.Kind.String() }

// ListShape is an ordered collection of one target type.
type ListShape struct {
	Member *MemberShape
}

func (*ListShape) isBody()          {}
func (*ListShape) KindName() string { return "list" }

// SetShape is an unordered collection of unique values of one target type.
type SetShape struct {
	Member *MemberShape
}

func (*SetShape) isBody()          {}
func (*SetShape) KindName() string { return "set" }

// MapShape maps keys of one target type to values of another.
type MapShape struct {
	Key   *MemberShape
	Value *MemberShape
}

func (*MapShape) isBody()          {}
func (*MapShape) KindName() string { return "map" }

// StructureShape is a fixed set of named, independently targeted members.
type StructureShape struct {
	Members *Members
}

func (*StructureShape) isBody()          {}
func (*StructureShape) KindName() string { return "structure" }

// UnionShape is a tagged union over named members.
type UnionShape struct {
	Members *Members
}

func (*UnionShape) isBody()          {}
func (*UnionShape) KindName() string { return "union" }

// ServiceShape is the root of a service closure: a version string plus
// references to bound resources and operations, and optional per-shape
// renames used when shape names collide in generated artifacts.
type ServiceShape struct {
	Version    string
	Operations []ShapeID
	Resources  []ShapeID
	Renames    map[ShapeID]Identifier
}

func (*ServiceShape) isBody()          {}
func (*ServiceShape) KindName() string { return "service" }

// OperationShape references its input, output, and error structures.
// Input and output are zero ShapeIDs when absent.
type OperationShape struct {
	Input  ShapeID
	Output ShapeID
	Errors []ShapeID
}

func (*OperationShape) isBody()          {}
func (*OperationShape) KindName() string { return "operation" }

// ResourceShape declares identifiers, lifecycle operations, and child
// bindings. Lifecycle fields are zero ShapeIDs when absent; Identifiers
// preserves declaration order.
type ResourceShape struct {
	Identifiers   *Members
	Create        ShapeID
	Put           ShapeID
	Read          ShapeID
	Update        ShapeID
	Delete        ShapeID
	List          ShapeID
	Operations    []ShapeID
	CollectionOps []ShapeID
	Resources     []ShapeID
}

func (*ResourceShape) isBody()          {}
func (*ResourceShape) KindName() string { return "resource" }

// UnresolvedShape is the placeholder body for a shape that has been
// referenced but not yet defined. Pending holds trait applications aimed at
// members of the eventual definition; they replay onto the concrete shape
// when it arrives. Placeholders are valid only transiently during assembly;
// final validation reports any that remain.
type UnresolvedShape struct {
	Pending *Members
}

func (*UnresolvedShape) isBody()          {}
func (*UnresolvedShape) KindName() string { return "apply" }

// TopLevelShape is a named shape: an absolute ID, a body, and the traits
// applied to the shape itself (member traits live on the members).
type TopLevelShape struct {
	ID     ShapeID
	Body   ShapeBody
	Traits *Traits
}

// NewShape constructs a shape with an empty trait set. The ID must be an
// absolute shape (not member) ID.
func NewShape(id ShapeID, body ShapeBody) *TopLevelShape {
	if id.IsRelative() || id.IsMember() {
		panic(fmt.Sprintf("model.NewShape: id %q must be an absolute shape id", id))
	}
	return &TopLevelShape{ID: id, Body: body, Traits: NewTraits()}
}

// IsUnresolved reports whether the shape is still a placeholder.
func (s *TopLevelShape) IsUnresolved() bool {
	_, ok := s.Body.(*UnresolvedShape)
	return ok
}

// Member returns the shape's named member, searching the aggregate bodies
// that carry members (list/set member, map key/value, structure and union
// members, resource identifiers).
func (s *TopLevelShape) Member(name Identifier) (*MemberShape, bool) {
	switch body := s.Body.(type) {
	case *ListShape:
		if body.Member != nil && body.Member.Name == name {
			return body.Member, true
		}
	case *SetShape:
		if body.Member != nil && body.Member.Name == name {
			return body.Member, true
		}
	case *MapShape:
		if body.Key != nil && body.Key.Name == name {
			return body.Key, true
		}
		if body.Value != nil && body.Value.Name == name {
			return body.Value, true
		}
	case *StructureShape:
		return body.Members.Get(name)
	case *UnionShape:
		return body.Members.Get(name)
	case *ResourceShape:
		return body.Identifiers.Get(name)
	}
	return nil, false
}

// members returns every member owned by the body, in declaration order.
func (s *TopLevelShape) members() []*MemberShape {
	switch body := s.Body.(type) {
	case *ListShape:
		if body.Member != nil {
			return []*MemberShape{body.Member}
		}
	case *SetShape:
		if body.Member != nil {
			return []*MemberShape{body.Member}
		}
	case *MapShape:
		var out []*MemberShape
		if body.Key != nil {
			out = append(out, body.Key)
		}
		if body.Value != nil {
			out = append(out, body.Value)
		}
		return out
	case *StructureShape:
		return orderedMembers(body.Members)
	case *UnionShape:
		return orderedMembers(body.Members)
	case *ResourceShape:
		return orderedMembers(body.Identifiers)
	}
	return nil
}

func orderedMembers(m *Members) []*MemberShape {
	out := make([]*MemberShape, 0, m.Len())
	for _, name := range m.Names() {
		member, _ := m.Get(name)
		out = append(out, member)
	}
	return out
}

// Reference is one structural edge of the shape graph: a relationship kind
// and the referenced shape.
type Reference struct {
	Rel    Identifier
	Target ShapeID
}

// Relationship kinds used by References and by directed selector traversal.
const (
	RelMember       Identifier = "member"
	RelInput        Identifier = "input"
	RelOutput       Identifier = "output"
	RelError        Identifier = "error"
	RelOperation    Identifier = "operation"
	RelCollectionOp Identifier = "collectionOperation"
	RelResource     Identifier = "resource"
	RelIdentifier   Identifier = "identifier"
	RelCreate       Identifier = "create"
	RelPut          Identifier = "put"
	RelRead         Identifier = "read"
	RelUpdate       Identifier = "update"
	RelDelete       Identifier = "delete"
	RelList         Identifier = "list"
)

// References returns every outgoing structural edge of the shape: member
// targets, service and resource cross-references, lifecycle bindings, and
// resource identifier targets, in declaration order.
func (s *TopLevelShape) References() []Reference {
	var out []Reference
	add := func(rel Identifier, target ShapeID) {
		if !target.IsZero() {
			out = append(out, Reference{Rel: rel, Target: target})
		}
	}
	switch body := s.Body.(type) {
	case *ServiceShape:
		for _, id := range body.Operations {
			add(RelOperation, id)
		}
		for _, id := range body.Resources {
			add(RelResource, id)
		}
	case *OperationShape:
		add(RelInput, body.Input)
		add(RelOutput, body.Output)
		for _, id := range body.Errors {
			add(RelError, id)
		}
	case *ResourceShape:
		for _, m := range orderedMembers(body.Identifiers) {
			add(RelIdentifier, m.Target)
		}
		add(RelCreate, body.Create)
		add(RelPut, body.Put)
		add(RelRead, body.Read)
		add(RelUpdate, body.Update)
		add(RelDelete, body.Delete)
		add(RelList, body.List)
		for _, id := range body.Operations {
			add(RelOperation, id)
		}
		for _, id := range body.CollectionOps {
			add(RelCollectionOp, id)
		}
		for _, id := range body.Resources {
			add(RelResource, id)
		}
	default:
		for _, m := range s.members() {
			add(RelMember, m.Target)
		}
	}
	return out
}

// sameStructure reports whether two bodies have the same kind and the same
// member structure (names and targets). Trait applications, on the shape or
// its members, are compared separately because they may still merge after a
// shape's structure is fixed.
func sameStructure(a, b ShapeBody) (bool, string) {
	switch ab := a.(type) {
	case *SimpleShape:
		bb, ok := b.(*SimpleShape)
		if !ok || ab.Kind != bb.Kind {
			return false, "kind"
		}
	case *ListShape:
		bb, ok := b.(*ListShape)
		if !ok {
			return false, "kind"
		}
		if !ab.Member.sameStructure(bb.Member) {
			return false, "member"
		}
	case *SetShape:
		bb, ok := b.(*SetShape)
		if !ok {
			return false, "kind"
		}
		if !ab.Member.sameStructure(bb.Member) {
			return false, "member"
		}
	case *MapShape:
		bb, ok := b.(*MapShape)
		if !ok {
			return false, "kind"
		}
		if !ab.Key.sameStructure(bb.Key) || !ab.Value.sameStructure(bb.Value) {
			return false, "members"
		}
	case *StructureShape:
		bb, ok := b.(*StructureShape)
		if !ok {
			return false, "kind"
		}
		if !ab.Members.sameStructure(bb.Members) {
			return false, "members"
		}
	case *UnionShape:
		bb, ok := b.(*UnionShape)
		if !ok {
			return false, "kind"
		}
		if !ab.Members.sameStructure(bb.Members) {
			return false, "members"
		}
	case *ServiceShape:
		bb, ok := b.(*ServiceShape)
		if !ok {
			return false, "kind"
		}
		if ab.Version != bb.Version {
			return false, "version"
		}
		if !sameIDSet(ab.Operations, bb.Operations) || !sameIDSet(ab.Resources, bb.Resources) {
			return false, "bindings"
		}
		if !sameRenames(ab.Renames, bb.Renames) {
			return false, "renames"
		}
	case *OperationShape:
		bb, ok := b.(*OperationShape)
		if !ok {
			return false, "kind"
		}
		if ab.Input != bb.Input || ab.Output != bb.Output {
			return false, "input/output"
		}
		if !sameIDList(ab.Errors, bb.Errors) {
			return false, "errors"
		}
	case *ResourceShape:
		bb, ok := b.(*ResourceShape)
		if !ok {
			return false, "kind"
		}
		if !ab.Identifiers.sameStructure(bb.Identifiers) {
			return false, "identifiers"
		}
		if ab.Create != bb.Create || ab.Put != bb.Put || ab.Read != bb.Read ||
			ab.Update != bb.Update || ab.Delete != bb.Delete || ab.List != bb.List {
			return false, "lifecycle"
		}
		if !sameIDSet(ab.Operations, bb.Operations) ||
			!sameIDSet(ab.CollectionOps, bb.CollectionOps) ||
			!sameIDSet(ab.Resources, bb.Resources) {
			return false, "bindings"
		}
	case *UnresolvedShape:
		if _, ok := b.(*UnresolvedShape); !ok {
			return false, "kind"
		}
	default:
		return false, "kind"
	}
	return true, ""
}

func sameIDList(a, b []ShapeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameIDSet(a, b []ShapeID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[ShapeID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

func sameRenames(a, b map[ShapeID]Identifier) bool {
	if len(a) != len(b) {
		return false
	}
	for id, name := range a {
		if other, ok := b[id]; !ok || other != name {
			return false
		}
	}
	return true
}
