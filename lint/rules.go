package lint

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/anvil-idl/anvil/model"
	"github.com/anvil-idl/anvil/selector"
)

// UnresolvedReferences reports placeholder shapes left over from trait
// applications that never met a definition, and structural references to
// shapes absent from both the model and the prelude. Both are errors: the
// model is not usable until every name resolves.
type UnresolvedReferences struct{}

func (UnresolvedReferences) Name() string { return "unresolved-references" }

func (UnresolvedReferences) Check(m *model.Model) []Issue {
	var issues []Issue
	prelude := model.Prelude()
	for _, id := range m.ShapeIDs() {
		shape, _ := m.Shape(id)
		if shape.IsUnresolved() {
			issues = append(issues, Issue{
				Severity: Error,
				Rule:     "unresolved-references",
				Shape:    id,
				Message:  "shape has trait applications but no definition",
			})
			continue
		}
		for _, ref := range shape.References() {
			if m.HasShape(ref.Target) || prelude.HasShape(ref.Target) {
				continue
			}
			issues = append(issues, Issue{
				Severity: Error,
				Rule:     "unresolved-references",
				Shape:    id,
				Message:  fmt.Sprintf("%s reference targets undefined shape %s", ref.Rel, ref.Target),
			})
		}
	}
	return issues
}

// NamingConventions warns about names that stray from the conventional
// casing: UpperCamelCase shape names, lowerCamelCase member names, and
// all-lowercase namespaces.
type NamingConventions struct{}

func (NamingConventions) Name() string { return "naming-conventions" }

func (NamingConventions) Check(m *model.Model) []Issue {
	var issues []Issue
	warn := func(id model.ShapeID, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: Warning,
			Rule:     "naming-conventions",
			Shape:    id,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	for _, id := range m.ShapeIDs() {
		shape, _ := m.Shape(id)
		if ns := id.Namespace().String(); ns != strings.ToLower(ns) {
			warn(id, "namespace %q should be all lowercase", ns)
		}
		name := id.Name().String()
		// Trait definitions conventionally use lowerCamelCase names.
		if shape.Traits.Has(model.TraitTrait) {
			if !startsLower(name) {
				warn(id, "trait name %q should start with a lowercase letter", name)
			}
		} else if !shape.IsUnresolved() && startsLower(name) {
			warn(id, "shape name %q should start with an uppercase letter", name)
		}
		for _, member := range shapeMembers(shape) {
			if !startsLower(member.Name.String()) {
				warn(id.ToMember(member.Name), "member name %q should start with a lowercase letter", member.Name)
			}
		}
	}
	return issues
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r) || r == '_'
	}
	return false
}

func shapeMembers(shape *model.TopLevelShape) []*model.MemberShape {
	var out []*model.MemberShape
	collect := func(members *model.Members) {
		for _, name := range members.Names() {
			member, _ := members.Get(name)
			out = append(out, member)
		}
	}
	switch body := shape.Body.(type) {
	case *model.StructureShape:
		collect(body.Members)
	case *model.UnionShape:
		collect(body.Members)
	case *model.ResourceShape:
		collect(body.Identifiers)
	}
	return out
}

// serviceClosure selects everything transitively reachable from a service.
var serviceClosure = selector.MustParse("service ~>")

// UnreferencedShapes flags shapes outside every service closure. Trait
// definitions and services themselves are exempt; a model with no services
// produces no findings, since everything is then a library shape.
type UnreferencedShapes struct{}

func (UnreferencedShapes) Name() string { return "unreferenced-shapes" }

func (UnreferencedShapes) Check(m *model.Model) []Issue {
	services, err := selector.Evaluate(selector.MustParse("service"), m)
	if err != nil || len(services) == 0 {
		return nil
	}
	reachable := make(map[model.ShapeID]struct{})
	for _, id := range services {
		reachable[id] = struct{}{}
	}
	closure, err := selector.Evaluate(serviceClosure, m)
	if err != nil {
		return nil
	}
	for _, id := range closure {
		reachable[id] = struct{}{}
	}

	var issues []Issue
	for _, id := range m.ShapeIDs() {
		if _, ok := reachable[id]; ok {
			continue
		}
		// Prelude shapes are ambient vocabulary, not part of any closure.
		if id.Namespace() == model.PreludeNamespace {
			continue
		}
		shape, _ := m.Shape(id)
		if shape.Traits.Has(model.TraitTrait) || shape.IsUnresolved() {
			continue
		}
		issues = append(issues, Issue{
			Severity: Info,
			Rule:     "unreferenced-shapes",
			Shape:    id,
			Message:  "shape is not reachable from any service",
		})
	}
	return issues
}
