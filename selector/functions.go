package selector

import (
	"fmt"

	"github.com/anvil-idl/anvil/model"
)

// callFunction dispatches a :name(...) call. The function set is closed; an
// unrecognized name is an UnknownFunctionError rather than an empty result
// so typos surface instead of silently matching nothing.
func (e *evaluator) callFunction(fn *Function, candidates []model.ShapeID) ([]model.ShapeID, error) {
	switch fn.Name {
	case "test":
		return e.filterByArgs(fn, candidates, true)
	case "not":
		if len(fn.Args) != 1 {
			return nil, arityError(fn, "exactly one selector")
		}
		return e.filterByArgs(fn, candidates, false)
	case "is":
		return e.mapThroughArgs(fn, candidates)
	case "topdown":
		if len(fn.Args) < 1 || len(fn.Args) > 2 {
			return nil, arityError(fn, "a qualifier and an optional disqualifier")
		}
		return e.topdownMatch(fn, candidates)
	default:
		return nil, &UnknownFunctionError{Name: string(fn.Name)}
	}
}

func arityError(fn *Function, want string) error {
	return fmt.Errorf("%w: :%s takes %s", ErrEvaluation, fn.Name, want)
}

// filterByArgs keeps candidates for which any argument selector, evaluated
// from the candidate, yields a non-empty result (or an empty result, for
// :not).
func (e *evaluator) filterByArgs(fn *Function, candidates []model.ShapeID, wantMatch bool) ([]model.ShapeID, error) {
	return e.filter(candidates, func(_ *model.TopLevelShape, id model.ShapeID) (bool, error) {
		for _, arg := range fn.Args {
			result, err := e.run(arg, []model.ShapeID{id})
			if err != nil {
				return false, err
			}
			if len(result) > 0 {
				return wantMatch, nil
			}
		}
		return !wantMatch, nil
	})
}

// mapThroughArgs implements :is, replacing each candidate with the union of
// the argument selectors' results evaluated from it.
func (e *evaluator) mapThroughArgs(fn *Function, candidates []model.ShapeID) ([]model.ShapeID, error) {
	var out []model.ShapeID
	seen := make(map[model.ShapeID]struct{})
	for _, id := range candidates {
		for _, arg := range fn.Args {
			result, err := e.run(arg, []model.ShapeID{id})
			if err != nil {
				return nil, err
			}
			for _, r := range result {
				if _, ok := seen[r]; ok {
					continue
				}
				seen[r] = struct{}{}
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// Relationship kinds that form the service containment hierarchy walked by
// :topdown.
var hierarchyRels = map[model.Identifier]bool{
	model.RelOperation:    true,
	model.RelCollectionOp: true,
	model.RelResource:     true,
	model.RelCreate:       true,
	model.RelPut:          true,
	model.RelRead:         true,
	model.RelUpdate:       true,
	model.RelDelete:       true,
	model.RelList:         true,
}

// topdownMatch keeps candidates that match the qualifier selector
// themselves or inherit a match from an ancestor in the service hierarchy.
// The optional disqualifier cuts inheritance off at the shape it matches,
// without affecting shapes the qualifier matches directly.
func (e *evaluator) topdownMatch(fn *Function, candidates []model.ShapeID) ([]model.ShapeID, error) {
	qualifier := fn.Args[0]
	var disqualifier *Selector
	if len(fn.Args) == 2 {
		disqualifier = fn.Args[1]
	}

	memoKey := fn.String()
	if e.topdown == nil {
		e.topdown = make(map[string]map[model.ShapeID]int8)
	}
	memo := e.topdown[memoKey]
	if memo == nil {
		memo = make(map[model.ShapeID]int8)
		e.topdown[memoKey] = memo
	}

	const (
		pending = 1
		yes     = 2
		no      = 3
	)

	matchesSelf := func(sel *Selector, id model.ShapeID) (bool, error) {
		result, err := e.run(sel, []model.ShapeID{id})
		if err != nil {
			return false, err
		}
		for _, r := range result {
			if r == id {
				return true, nil
			}
		}
		return false, nil
	}

	var inherits func(id model.ShapeID) (bool, error)
	inherits = func(id model.ShapeID) (bool, error) {
		switch memo[id] {
		case yes:
			return true, nil
		case no, pending:
			return false, nil
		}
		memo[id] = pending

		matched, err := matchesSelf(qualifier, id)
		if err != nil {
			return false, err
		}
		if !matched {
			disqualified := false
			if disqualifier != nil {
				if disqualified, err = matchesSelf(disqualifier, id); err != nil {
					return false, err
				}
			}
			if !disqualified {
				for _, edge := range e.reverseEdges(id) {
					if !hierarchyRels[edge.Rel] {
						continue
					}
					matched, err = inherits(edge.From)
					if err != nil {
						return false, err
					}
					if matched {
						break
					}
				}
			}
		}

		if matched {
			memo[id] = yes
		} else {
			memo[id] = no
		}
		return matched, nil
	}

	return e.filter(candidates, func(_ *model.TopLevelShape, id model.ShapeID) (bool, error) {
		return inherits(id)
	})
}
