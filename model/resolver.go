package model

import "strings"

// Resolve converts a possibly-relative name appearing in one source artifact
// into an absolute ShapeID.
//
// A name containing '#' is parsed directly as an absolute ID. A bare name is
// tried against candidates in fixed precedence, first match wins:
//
//  1. current#name, if such a shape exists in the in-progress model;
//  2. the import whose shape name equals the bare name, if exactly one
//     matches (more than one is an AmbiguousName error);
//  3. prelude#name, if present in the prelude.
//
// Resolution is a pure function of its inputs: the prelude is passed
// explicitly rather than read as ambient state, so alternate preludes are
// trivial to test against.
func Resolve(name string, current Namespace, imports []ShapeID, inProgress *Model, prelude *Model) (ShapeID, error) {
	if strings.Contains(name, "#") {
		return ParseShapeID(name)
	}

	id, err := ParseShapeID(name)
	if err != nil {
		return ShapeID{}, err
	}

	local := id.WithNamespace(current)
	if inProgress != nil && inProgress.HasShape(local) {
		return local, nil
	}

	var matches []ShapeID
	for _, imported := range imports {
		if imported.Name() == id.Name() {
			matches = append(matches, imported)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0].ToMember(id.Member()), nil
	case 0:
	default:
		return ShapeID{}, &ResolutionError{
			Kind:       AmbiguousName,
			Name:       name,
			Namespace:  current,
			Candidates: matches,
		}
	}

	if prelude != nil {
		fromPrelude := id.WithNamespace(PreludeNamespace)
		if prelude.HasShape(fromPrelude) {
			return fromPrelude, nil
		}
	}

	return ShapeID{}, &ResolutionError{Kind: UnresolvedName, Name: name, Namespace: current}
}
