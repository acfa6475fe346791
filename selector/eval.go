package selector

import (
	"strconv"
	"strings"

	"github.com/anvil-idl/anvil/model"
)

// Evaluate runs a parsed selector over every top-level shape of the model
// and returns the matching shape IDs as an ordered set: insertion-ordered,
// no duplicates. Missing attributes and unmatched filters simply drop
// candidates; the only evaluation errors are unknown functions and
// references to unbound variables.
func Evaluate(sel *Selector, m *model.Model) ([]model.ShapeID, error) {
	return EvaluateFrom(sel, m, m.ShapeIDs())
}

// EvaluateFrom runs a parsed selector with an explicit starting candidate
// set instead of every shape in the model.
func EvaluateFrom(sel *Selector, m *model.Model, start []model.ShapeID) ([]model.ShapeID, error) {
	e := &evaluator{model: m, vars: make(map[model.Identifier][]model.ShapeID)}
	return e.run(sel, start)
}

type evaluator struct {
	model   *model.Model
	vars    map[model.Identifier][]model.ShapeID
	reverse map[model.ShapeID][]reverseEdge
	topdown map[string]map[model.ShapeID]int8
}

type reverseEdge struct {
	From model.ShapeID
	Rel  model.Identifier
}

func (e *evaluator) run(sel *Selector, candidates []model.ShapeID) ([]model.ShapeID, error) {
	current := dedupIDs(candidates)
	for _, expr := range sel.Expressions {
		next, err := e.step(expr, current)
		if err != nil {
			return nil, err
		}
		current = next
		if len(current) == 0 && !usesVariables(sel) {
			break
		}
	}
	return current, nil
}

// usesVariables reports whether the pipeline contains a variable definition
// or reference; if so every step must run even over an empty candidate set,
// so downstream ${name} references resolve and an unbound reference always
// surfaces as an error instead of an empty result.
func usesVariables(sel *Selector) bool {
	for _, expr := range sel.Expressions {
		switch expr.(type) {
		case *VariableDefinition, *VariableReference:
			return true
		}
	}
	return false
}

func (e *evaluator) step(expr Expression, candidates []model.ShapeID) ([]model.ShapeID, error) {
	switch x := expr.(type) {
	case ShapeType:
		return e.filter(candidates, func(shape *model.TopLevelShape, id model.ShapeID) (bool, error) {
			return typeMatches(x, shape, id), nil
		})
	case *AttributeSelector:
		return e.filter(candidates, func(shape *model.TopLevelShape, _ model.ShapeID) (bool, error) {
			return e.matchAttribute(shape, x), nil
		})
	case *ScopedAttributeSelector:
		return e.filter(candidates, func(shape *model.TopLevelShape, _ model.ShapeID) (bool, error) {
			return e.matchScoped(shape, x), nil
		})
	case *Neighbor:
		return e.neighbors(x, candidates), nil
	case *Function:
		return e.callFunction(x, candidates)
	case *VariableDefinition:
		bound, err := e.run(x.Selector, candidates)
		if err != nil {
			return nil, err
		}
		e.vars[x.Name] = bound
		return candidates, nil
	case *VariableReference:
		bound, ok := e.vars[x.Name]
		if !ok {
			return nil, &UndefinedVariableError{Name: string(x.Name)}
		}
		return dedupIDs(bound), nil
	default:
		return candidates, nil
	}
}

func (e *evaluator) filter(candidates []model.ShapeID, keep func(*model.TopLevelShape, model.ShapeID) (bool, error)) ([]model.ShapeID, error) {
	var out []model.ShapeID
	for _, id := range candidates {
		shape, ok := e.model.Shape(id)
		if !ok {
			continue
		}
		matched, err := keep(shape, id)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, id)
		}
	}
	return out, nil
}

func typeMatches(t ShapeType, shape *model.TopLevelShape, id model.ShapeID) bool {
	if t == TypeAll {
		return true
	}
	if id.IsMember() {
		return t == TypeMember
	}
	switch body := shape.Body.(type) {
	case *model.SimpleShape:
		switch t {
		case TypeSimpleType:
			return true
		case TypeNumber:
			return body.Kind.IsNumeric()
		}
		return shapeTypeNames[t] == body.Kind.String()
	case *model.ListShape:
		return t == TypeList || t == TypeCollection
	case *model.SetShape:
		return t == TypeSet || t == TypeCollection
	case *model.MapShape:
		return t == TypeMap
	case *model.StructureShape:
		return t == TypeStructure
	case *model.UnionShape:
		return t == TypeUnion
	case *model.ServiceShape:
		return t == TypeService
	case *model.OperationShape:
		return t == TypeOperation
	case *model.ResourceShape:
		return t == TypeResource
	}
	return false
}

// neighbors maps the candidate set through the shape graph. Forward edges
// are the structural references of each shape; member shapes are not
// surfaced as intermediate nodes, the edge goes straight to the target.
func (e *evaluator) neighbors(n *Neighbor, candidates []model.ShapeID) []model.ShapeID {
	if n.Recursive {
		return e.closure(candidates)
	}
	var out []model.ShapeID
	seen := make(map[model.ShapeID]struct{})
	add := func(id model.ShapeID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range candidates {
		if n.Direction == Forward {
			shape, ok := e.model.Shape(id)
			if !ok {
				continue
			}
			for _, ref := range shape.References() {
				if relSelected(n.Relations, ref.Rel) {
					add(ref.Target)
				}
			}
			continue
		}
		for _, edge := range e.reverseEdges(id) {
			if relSelected(n.Relations, edge.Rel) {
				add(edge.From)
			}
		}
	}
	return out
}

// closure is the transitive forward closure `~>`: breadth-first over all
// structural edges, visiting each shape once so cyclic references
// terminate.
func (e *evaluator) closure(candidates []model.ShapeID) []model.ShapeID {
	var out []model.ShapeID
	seen := make(map[model.ShapeID]struct{})
	queue := append([]model.ShapeID(nil), candidates...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		shape, ok := e.model.Shape(id)
		if !ok {
			continue
		}
		for _, ref := range shape.References() {
			if _, visited := seen[ref.Target]; visited {
				continue
			}
			seen[ref.Target] = struct{}{}
			out = append(out, ref.Target)
			queue = append(queue, ref.Target)
		}
	}
	return out
}

func relSelected(rels []model.Identifier, rel model.Identifier) bool {
	if len(rels) == 0 {
		return true
	}
	for _, r := range rels {
		if r == rel {
			return true
		}
	}
	return false
}

// reverseEdges builds the reverse reference index on first use and reuses
// it for the rest of the evaluation.
func (e *evaluator) reverseEdges(id model.ShapeID) []reverseEdge {
	if e.reverse == nil {
		e.reverse = make(map[model.ShapeID][]reverseEdge)
		for _, from := range e.model.ShapeIDs() {
			shape, ok := e.model.Shape(from)
			if !ok {
				continue
			}
			for _, ref := range shape.References() {
				e.reverse[ref.Target] = append(e.reverse[ref.Target], reverseEdge{From: from, Rel: ref.Rel})
			}
		}
	}
	return e.reverse[id]
}

func dedupIDs(ids []model.ShapeID) []model.ShapeID {
	out := make([]model.ShapeID, 0, len(ids))
	seen := make(map[model.ShapeID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// --- attribute resolution ---

// resolveKey resolves an attribute key against a shape. The second result
// reports whether the attribute exists at all; a missing attribute makes
// every comparison false rather than erroring.
func (e *evaluator) resolveKey(shape *model.TopLevelShape, key Key) ([]model.Value, bool) {
	switch key.Identifier {
	case "id":
		return resolveIDKey(shape.ID, key.Path)
	case "service":
		body, ok := shape.Body.(*model.ServiceShape)
		if !ok {
			return nil, false
		}
		if len(key.Path) == 0 {
			return []model.Value{model.String(shape.ID.String())}, true
		}
		switch segmentText(key.Path[0]) {
		case "version":
			return walkValues([]model.Value{model.String(body.Version)}, key.Path[1:])
		case "id":
			return resolveIDKey(shape.ID, key.Path[1:])
		}
		return nil, false
	case "trait":
		return e.resolveTraitKey(shape, key.Path)
	case "var":
		if len(key.Path) == 0 {
			return nil, false
		}
		bound, ok := e.vars[model.Identifier(segmentText(key.Path[0]))]
		if !ok {
			return nil, false
		}
		ids := make(model.Array, len(bound))
		for i, id := range bound {
			ids[i] = model.String(id.String())
		}
		return walkValues([]model.Value{ids}, key.Path[1:])
	default:
		// A bare identifier is shorthand for trait access by name.
		path := append([]PathSegment{{Literal: TextLiteral(key.Identifier)}}, key.Path...)
		return e.resolveTraitKey(shape, path)
	}
}

func resolveIDKey(id model.ShapeID, path []PathSegment) ([]model.Value, bool) {
	if len(path) == 0 {
		return []model.Value{model.String(id.String())}, true
	}
	var part string
	switch segmentText(path[0]) {
	case "namespace":
		part = id.Namespace().String()
	case "name":
		part = id.Name().String()
	case "member":
		if !id.IsMember() {
			return nil, false
		}
		part = id.Member().String()
	default:
		return nil, false
	}
	return walkValues([]model.Value{model.String(part)}, path[1:])
}

// resolveTraitKey resolves trait|<name>|<path...>. Without a path the value
// is an object of every applied trait keyed by absolute trait ID, so the
// (keys), (values), and (length) properties work on it. The trait name
// matches by absolute ID, or by shape name when the name is relative.
func (e *evaluator) resolveTraitKey(shape *model.TopLevelShape, path []PathSegment) ([]model.Value, bool) {
	traits := shape.Traits
	if len(path) == 0 || path[0].Property != "" {
		if traits.Len() == 0 {
			return nil, false
		}
		all := model.NewObject()
		for _, id := range traits.IDs() {
			v, _ := traits.Get(id)
			all.Set(id.String(), orNull(v))
		}
		return walkValues([]model.Value{all}, path)
	}
	name := segmentText(path[0])
	for _, id := range traits.IDs() {
		if id.String() == name || (!strings.Contains(name, "#") && id.Name().String() == name) {
			v, _ := traits.Get(id)
			return walkValues([]model.Value{orNull(v)}, path[1:])
		}
	}
	return nil, false
}

func orNull(v model.Value) model.Value {
	if v == nil {
		return model.Null{}
	}
	return v
}

// walkValues applies path segments to each resolved value. The (keys) and
// (values) properties project, spreading their results so later segments
// apply per element.
func walkValues(vals []model.Value, path []PathSegment) ([]model.Value, bool) {
	for _, seg := range path {
		var next []model.Value
		for _, v := range vals {
			next = append(next, applySegment(v, seg)...)
		}
		if len(next) == 0 {
			return nil, false
		}
		vals = next
	}
	return vals, true
}

func applySegment(v model.Value, seg PathSegment) []model.Value {
	if seg.Property != "" {
		switch seg.Property {
		case "keys":
			if obj, ok := v.(*model.Object); ok {
				out := make([]model.Value, 0, obj.Len())
				for _, k := range obj.Keys() {
					out = append(out, model.String(k))
				}
				return out
			}
		case "values":
			if obj, ok := v.(*model.Object); ok {
				out := make([]model.Value, 0, obj.Len())
				for _, k := range obj.Keys() {
					elem, _ := obj.Get(k)
					out = append(out, orNull(elem))
				}
				return out
			}
		case "length":
			switch val := v.(type) {
			case *model.Object:
				return []model.Value{model.Integer(int64(val.Len()))}
			case model.Array:
				return []model.Value{model.Integer(int64(len(val)))}
			case model.String:
				return []model.Value{model.Integer(int64(len(val)))}
			}
		}
		return nil
	}
	switch val := v.(type) {
	case *model.Object:
		if elem, ok := val.Get(segmentText(seg)); ok {
			return []model.Value{orNull(elem)}
		}
	case model.Array:
		if num, ok := seg.Literal.(NumberLiteral); ok {
			if i, isInt := num.Value.Int(); isInt && i >= 0 && int(i) < len(val) {
				return []model.Value{orNull(val[i])}
			}
		}
	}
	return nil
}

func segmentText(seg PathSegment) string {
	if seg.Property != "" {
		return string(seg.Property)
	}
	return literalText(seg.Literal)
}

func literalText(l Literal) string {
	switch lit := l.(type) {
	case TextLiteral:
		return string(lit)
	case NumberLiteral:
		return lit.Value.String()
	case IDLiteral:
		return lit.ID.String()
	}
	return ""
}

func literalValue(l Literal) model.Value {
	switch lit := l.(type) {
	case TextLiteral:
		return model.String(string(lit))
	case NumberLiteral:
		return lit.Value
	case IDLiteral:
		return model.String(lit.ID.String())
	}
	return model.Null{}
}

// --- attribute matching ---

func (e *evaluator) matchAttribute(shape *model.TopLevelShape, attr *AttributeSelector) bool {
	vals, ok := e.resolveKey(shape, attr.Key)
	if attr.Comparison == nil {
		return ok
	}
	cmp := attr.Comparison
	rhs := make([]model.Value, len(cmp.Values))
	for i, lit := range cmp.Values {
		rhs[i] = literalValue(lit)
	}
	if cmp.Comparator == ComparatorExists {
		return matchExists(ok && len(vals) > 0, rhs)
	}
	if !ok {
		return false
	}
	return compareSets(cmp.Comparator, flattenArrays(vals), rhs, cmp.CaseInsensitive)
}

func (e *evaluator) matchScoped(shape *model.TopLevelShape, scoped *ScopedAttributeSelector) bool {
	var contexts []model.Value
	if scoped.Key == nil {
		// No key scopes the assertions to the shape itself; context paths
		// then start at a root attribute name.
		contexts = []model.Value{nil}
	} else {
		vals, ok := e.resolveKey(shape, *scoped.Key)
		if !ok {
			return false
		}
		contexts = flattenArrays(vals)
	}
	for _, ctx := range contexts {
		if e.contextHolds(shape, ctx, scoped.Assertions) {
			return true
		}
	}
	return false
}

func (e *evaluator) contextHolds(shape *model.TopLevelShape, ctx model.Value, assertions []Assertion) bool {
	for _, a := range assertions {
		lhs, lok := e.scopedValues(shape, ctx, a.LHS)
		var rhs []model.Value
		for _, sv := range a.RHS {
			if vals, ok := e.scopedValues(shape, ctx, sv); ok {
				rhs = append(rhs, vals...)
			}
		}
		if a.Comparator == ComparatorExists {
			if !matchExists(lok && len(lhs) > 0, rhs) {
				return false
			}
			continue
		}
		if !lok || !compareSets(a.Comparator, lhs, rhs, a.CaseInsensitive) {
			return false
		}
	}
	return true
}

func (e *evaluator) scopedValues(shape *model.TopLevelShape, ctx model.Value, sv ScopedValue) ([]model.Value, bool) {
	if !sv.IsContext {
		return []model.Value{literalValue(sv.Literal)}, true
	}
	if ctx != nil {
		vals, ok := walkValues([]model.Value{ctx}, sv.Context)
		if !ok {
			return nil, false
		}
		return flattenArrays(vals), true
	}
	if len(sv.Context) == 0 {
		return nil, false
	}
	key := Key{Identifier: model.Identifier(segmentText(sv.Context[0])), Path: sv.Context[1:]}
	vals, ok := e.resolveKey(shape, key)
	if !ok {
		return nil, false
	}
	return flattenArrays(vals), true
}

// flattenArrays spreads top-level arrays so comparisons and projections see
// their elements.
func flattenArrays(vals []model.Value) []model.Value {
	var out []model.Value
	for _, v := range vals {
		if arr, ok := v.(model.Array); ok {
			out = append(out, arr...)
			continue
		}
		out = append(out, v)
	}
	return out
}

func matchExists(exists bool, rhs []model.Value) bool {
	for _, v := range rhs {
		want := valueText(v) == "true"
		if exists == want {
			return true
		}
	}
	return false
}

// compareSets applies a comparator between resolved attribute values and
// comparison values. For the plain comparators a match between any pair
// suffices; the projection comparators use set semantics.
func compareSets(cmp Comparator, lhs, rhs []model.Value, ci bool) bool {
	if cmp.IsProjection() {
		sub := subsetOf(lhs, rhs, ci)
		sup := subsetOf(rhs, lhs, ci)
		switch cmp {
		case ComparatorProjEqual:
			return sub && sup
		case ComparatorProjNotEqual:
			return !(sub && sup)
		case ComparatorProjSubset:
			return sub
		case ComparatorProjProperSubset:
			return sub && !sup
		}
	}
	for _, l := range lhs {
		for _, r := range rhs {
			if comparePair(cmp, l, r, ci) {
				return true
			}
		}
	}
	return false
}

func subsetOf(a, b []model.Value, ci bool) bool {
	for _, l := range a {
		found := false
		for _, r := range b {
			if selectorEqual(l, r, ci) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func comparePair(cmp Comparator, l, r model.Value, ci bool) bool {
	if cmp.IsNumeric() {
		lf, lok := numericValue(l)
		rf, rok := numericValue(r)
		if !lok || !rok {
			return false
		}
		switch cmp {
		case ComparatorGT:
			return lf > rf
		case ComparatorGTE:
			return lf >= rf
		case ComparatorLT:
			return lf < rf
		case ComparatorLTE:
			return lf <= rf
		}
	}
	switch cmp {
	case ComparatorEqual:
		return selectorEqual(l, r, ci)
	case ComparatorNotEqual:
		return !selectorEqual(l, r, ci)
	case ComparatorStartsWith:
		return hasAffix(strings.HasPrefix, l, r, ci)
	case ComparatorEndsWith:
		return hasAffix(strings.HasSuffix, l, r, ci)
	case ComparatorContains:
		return hasAffix(strings.Contains, l, r, ci)
	}
	return false
}

func hasAffix(test func(string, string) bool, l, r model.Value, ci bool) bool {
	ls, rs := valueText(l), valueText(r)
	if ci {
		ls, rs = strings.ToLower(ls), strings.ToLower(rs)
	}
	return test(ls, rs)
}

// selectorEqual is the loose equality of selector comparisons: numbers
// compare numerically regardless of integer or float representation,
// everything else compares by text form.
func selectorEqual(l, r model.Value, ci bool) bool {
	if lf, lok := numericValue(l); lok {
		if rf, rok := numericValue(r); rok {
			return lf == rf
		}
	}
	ls, rs := valueText(l), valueText(r)
	if ci {
		return strings.EqualFold(ls, rs)
	}
	return ls == rs
}

func numericValue(v model.Value) (float64, bool) {
	switch val := v.(type) {
	case model.Number:
		return val.AsFloat(), true
	case model.String:
		f, err := strconv.ParseFloat(string(val), 64)
		return f, err == nil
	}
	return 0, false
}

// valueText is the text form used by string comparators. Strings are
// unquoted; aggregates have no text form and never match.
func valueText(v model.Value) string {
	switch val := v.(type) {
	case model.String:
		return string(val)
	case model.Number:
		return val.String()
	case model.Boolean:
		return val.String()
	case model.Null:
		return ""
	}
	return ""
}
