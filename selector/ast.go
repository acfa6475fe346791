// Package selector implements the graph pattern-matching query language
// evaluated over an assembled model: a parser for the published selector
// grammar and an evaluator producing ordered sets of shape IDs. The
// comparator and traversal tokens are a versioned surface and round-trip
// bit-for-bit through String.
package selector

import (
	"strings"

	"github.com/anvil-idl/anvil/model"
)

// Selector is a parsed query: a pipeline of expressions evaluated left to
// right over a candidate set of shapes.
type Selector struct {
	Expressions []Expression
}

func (s *Selector) String() string {
	parts := make([]string, len(s.Expressions))
	for i, e := range s.Expressions {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// Expression is one step of a selector pipeline.
type Expression interface {
	String() string
	isExpression()
}

// ShapeType is a shape-type filter: a kind name, one of the grouping names
// (number, simpleType, collection), or `*` which retains every shape.
type ShapeType int

// Shape type filters.
const (
	TypeAll ShapeType = iota
	TypeNumber
	TypeSimpleType
	TypeCollection
	TypeBlob
	TypeBoolean
	TypeDocument
	TypeString
	TypeByte
	TypeShort
	TypeInteger
	TypeLong
	TypeFloat
	TypeDouble
	TypeBigDecimal
	TypeBigInteger
	TypeTimestamp
	TypeList
	TypeSet
	TypeMap
	TypeStructure
	TypeUnion
	TypeService
	TypeOperation
	TypeResource
	TypeMember
)

var shapeTypeNames = map[ShapeType]string{
	TypeAll:        "*",
	TypeNumber:     "number",
	TypeSimpleType: "simpleType",
	TypeCollection: "collection",
	TypeBlob:       "blob",
	TypeBoolean:    "boolean",
	TypeDocument:   "document",
	TypeString:     "string",
	TypeByte:       "byte",
	TypeShort:      "short",
	TypeInteger:    "integer",
	TypeLong:       "long",
	TypeFloat:      "float",
	TypeDouble:     "double",
	TypeBigDecimal: "bigDecimal",
	TypeBigInteger: "bigInteger",
	TypeTimestamp:  "timestamp",
	TypeList:       "list",
	TypeSet:        "set",
	TypeMap:        "map",
	TypeStructure:  "structure",
	TypeUnion:      "union",
	TypeService:    "service",
	TypeOperation:  "operation",
	TypeResource:   "resource",
	TypeMember:     "member",
}

func (t ShapeType) String() string { return shapeTypeNames[t] }
func (ShapeType) isExpression()    {}

// ParseShapeType maps a filter token to its ShapeType.
func ParseShapeType(s string) (ShapeType, bool) {
	for t, name := range shapeTypeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}

// Comparator names one of the published comparison operators.
type Comparator int

// Comparators, grouped as in the grammar: string, numeric, projection.
const (
	ComparatorEqual Comparator = iota
	ComparatorNotEqual
	ComparatorStartsWith
	ComparatorEndsWith
	ComparatorContains
	ComparatorExists
	ComparatorGT
	ComparatorGTE
	ComparatorLT
	ComparatorLTE
	ComparatorProjEqual
	ComparatorProjNotEqual
	ComparatorProjSubset
	ComparatorProjProperSubset
)

var comparatorTokens = map[Comparator]string{
	ComparatorEqual:            "=",
	ComparatorNotEqual:         "!=",
	ComparatorStartsWith:       "^=",
	ComparatorEndsWith:         "$=",
	ComparatorContains:         "*=",
	ComparatorExists:           "?=",
	ComparatorGT:               ">",
	ComparatorGTE:              ">=",
	ComparatorLT:               "<",
	ComparatorLTE:              "<=",
	ComparatorProjEqual:        "{=}",
	ComparatorProjNotEqual:     "{!=}",
	ComparatorProjSubset:       "{<}",
	ComparatorProjProperSubset: "{<<}",
}

func (c Comparator) String() string { return comparatorTokens[c] }

// IsNumeric reports whether the comparator applies numeric ordering.
func (c Comparator) IsNumeric() bool {
	switch c {
	case ComparatorGT, ComparatorGTE, ComparatorLT, ComparatorLTE:
		return true
	}
	return false
}

// IsProjection reports whether the comparator compares value sets.
func (c Comparator) IsProjection() bool {
	switch c {
	case ComparatorProjEqual, ComparatorProjNotEqual, ComparatorProjSubset, ComparatorProjProperSubset:
		return true
	}
	return false
}

// Literal is a literal value in an attribute comparison: quoted text, a
// number, or a (possibly absolute) shape identifier.
type Literal interface {
	String() string
	isLiteral()
}

// TextLiteral is a quoted string literal.
type TextLiteral string

func (TextLiteral) isLiteral() {}

func (l TextLiteral) String() string { return "\"" + string(l) + "\"" }

// NumberLiteral is a numeric literal.
type NumberLiteral struct {
	Value model.Number
}

func (NumberLiteral) isLiteral() {}

func (l NumberLiteral) String() string { return l.Value.String() }

// IDLiteral is a bare identifier or absolute shape-id literal.
type IDLiteral struct {
	ID model.ShapeID
}

func (IDLiteral) isLiteral() {}

func (l IDLiteral) String() string { return l.ID.String() }

// PathSegment is one step of an attribute key path: either a literal
// (object key, array index) or a function property such as "(values)".
type PathSegment struct {
	Literal  Literal
	Property model.Identifier
}

func (p PathSegment) String() string {
	if p.Property != "" {
		return "(" + p.Property.String() + ")"
	}
	return p.Literal.String()
}

// Key is an attribute key: a root identifier (a pseudo-attribute such as
// "id" or "trait", or a trait name directly) plus an optional |-separated
// path into the resolved value.
type Key struct {
	Identifier model.Identifier
	Path       []PathSegment
}

func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.Identifier.String())
	for _, seg := range k.Path {
		b.WriteByte('|')
		b.WriteString(seg.String())
	}
	return b.String()
}

// Comparison is the comparator half of an attribute selector.
type Comparison struct {
	Comparator      Comparator
	Values          []Literal
	CaseInsensitive bool
}

func (c *Comparison) String() string {
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		parts[i] = v.String()
	}
	s := " " + c.Comparator.String() + " " + strings.Join(parts, ", ")
	if c.CaseInsensitive {
		s += " i"
	}
	return s
}

// AttributeSelector filters shapes by an attribute value, or by attribute
// existence when the comparison is absent. A missing attribute makes the
// filter false, never an error.
type AttributeSelector struct {
	Key        Key
	Comparison *Comparison
}

func (*AttributeSelector) isExpression() {}

func (a *AttributeSelector) String() string {
	if a.Comparison == nil {
		return "[" + a.Key.String() + "]"
	}
	return "[" + a.Key.String() + a.Comparison.String() + "]"
}

// ScopedValue is one side of a scoped assertion: a literal, or a context
// read `@{path}` against the selector's bound context value.
type ScopedValue struct {
	Literal   Literal
	Context   []PathSegment
	IsContext bool
}

func (v ScopedValue) String() string {
	if !v.IsContext {
		return v.Literal.String()
	}
	parts := make([]string, len(v.Context))
	for i, seg := range v.Context {
		parts[i] = seg.String()
	}
	return "@{" + strings.Join(parts, "|") + "}"
}

// Assertion is one conjunct of a scoped attribute selector.
type Assertion struct {
	LHS             ScopedValue
	Comparator      Comparator
	RHS             []ScopedValue
	CaseInsensitive bool
}

func (a Assertion) String() string {
	parts := make([]string, len(a.RHS))
	for i, v := range a.RHS {
		parts[i] = v.String()
	}
	s := a.LHS.String() + " " + a.Comparator.String() + " " + strings.Join(parts, ", ")
	if a.CaseInsensitive {
		s += " i"
	}
	return s
}

// ScopedAttributeSelector evaluates a conjunction of assertions against one
// shared context value, enabling correlated multi-field comparisons.
type ScopedAttributeSelector struct {
	Key        *Key
	Assertions []Assertion
}

func (*ScopedAttributeSelector) isExpression() {}

func (s *ScopedAttributeSelector) String() string {
	parts := make([]string, len(s.Assertions))
	for i, a := range s.Assertions {
		parts[i] = a.String()
	}
	key := ""
	if s.Key != nil {
		key = s.Key.String()
	}
	return "[@" + key + ": " + strings.Join(parts, " && ") + "]"
}

// NeighborDirection distinguishes forward from reverse traversal.
type NeighborDirection int

// Traversal directions.
const (
	Forward NeighborDirection = iota
	Reverse
)

// Neighbor replaces the candidate set with shapes one structural edge away.
// With Relations set, only edges of the named relationship kinds are
// followed; Recursive marks the transitive forward closure `~>`.
type Neighbor struct {
	Direction NeighborDirection
	Recursive bool
	Relations []model.Identifier
}

func (*Neighbor) isExpression() {}

func (n *Neighbor) String() string {
	if n.Recursive {
		return "~>"
	}
	if len(n.Relations) == 0 {
		if n.Direction == Forward {
			return ">"
		}
		return "<"
	}
	parts := make([]string, len(n.Relations))
	for i, r := range n.Relations {
		parts[i] = r.String()
	}
	rels := strings.Join(parts, ", ")
	if n.Direction == Forward {
		return "-[" + rels + "]->"
	}
	return "<-[" + rels + "]-"
}

// Function is a call to one of the closed set of built-in structural
// combinators, parameterized by nested selectors.
type Function struct {
	Name model.Identifier
	Args []*Selector
}

func (*Function) isExpression() {}

func (f *Function) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return ":" + f.Name.String() + "(" + strings.Join(parts, ", ") + ")"
}

// VariableDefinition binds the result of a nested selector to a name and
// yields its input candidates unchanged.
type VariableDefinition struct {
	Name     model.Identifier
	Selector *Selector
}

func (*VariableDefinition) isExpression() {}

func (v *VariableDefinition) String() string {
	return "$" + v.Name.String() + "(" + v.Selector.String() + ")"
}

// VariableReference yields the candidate set previously bound to a name.
type VariableReference struct {
	Name model.Identifier
}

func (*VariableReference) isExpression() {}

func (v *VariableReference) String() string {
	return "${" + v.Name.String() + "}"
}
