package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	current := Namespace("example.weather")
	prelude := Prelude()

	inProgress := NewModel("")
	mustAdd(inProgress, NewShape(MustShapeID("example.weather#Forecast"), &StructureShape{Members: NewMembers()}))

	imports := []ShapeID{
		MustShapeID("example.geo#City"),
		MustShapeID("example.time#Instant"),
	}

	t.Run("absolute names parse directly", func(t *testing.T) {
		id, err := Resolve("other.ns#Thing", current, imports, inProgress, prelude)
		require.NoError(t, err)
		assert.Equal(t, "other.ns#Thing", id.String())
	})

	t.Run("malformed absolute names are syntax errors", func(t *testing.T) {
		_, err := Resolve("other.ns#Thing#oops", current, imports, inProgress, prelude)
		assert.ErrorIs(t, err, ErrSyntax)
	})

	t.Run("in-namespace shape wins", func(t *testing.T) {
		id, err := Resolve("Forecast", current, imports, inProgress, prelude)
		require.NoError(t, err)
		assert.Equal(t, "example.weather#Forecast", id.String())
	})

	t.Run("unambiguous import is second", func(t *testing.T) {
		id, err := Resolve("City", current, imports, inProgress, prelude)
		require.NoError(t, err)
		assert.Equal(t, "example.geo#City", id.String())
	})

	t.Run("in-namespace shape shadows an import of the same name", func(t *testing.T) {
		shadowed := append(imports, MustShapeID("example.other#Forecast"))
		id, err := Resolve("Forecast", current, shadowed, inProgress, prelude)
		require.NoError(t, err)
		assert.Equal(t, "example.weather#Forecast", id.String())
	})

	t.Run("prelude is last", func(t *testing.T) {
		id, err := Resolve("String", current, imports, inProgress, prelude)
		require.NoError(t, err)
		assert.Equal(t, "anvil.api#String", id.String())
	})

	t.Run("import shadows prelude", func(t *testing.T) {
		withString := append(imports, MustShapeID("example.text#String"))
		id, err := Resolve("String", current, withString, inProgress, prelude)
		require.NoError(t, err)
		assert.Equal(t, "example.text#String", id.String())
	})

	t.Run("ambiguous imports fail", func(t *testing.T) {
		ambiguous := append(imports, MustShapeID("example.maps#City"))
		_, err := Resolve("City", current, ambiguous, inProgress, prelude)
		var resolution *ResolutionError
		require.ErrorAs(t, err, &resolution)
		assert.Equal(t, AmbiguousName, resolution.Kind)
		assert.Len(t, resolution.Candidates, 2)
	})

	t.Run("no candidate at all fails", func(t *testing.T) {
		_, err := Resolve("Missing", current, imports, inProgress, prelude)
		var resolution *ResolutionError
		require.ErrorAs(t, err, &resolution)
		assert.Equal(t, UnresolvedName, resolution.Kind)
		assert.ErrorIs(t, err, ErrResolution)
	})
}

func TestPrelude(t *testing.T) {
	p := Prelude()

	t.Run("supplies the built-in simple shapes", func(t *testing.T) {
		for _, name := range []string{"String", "Integer", "Timestamp", "Document", "PrimitiveLong"} {
			assert.True(t, p.HasShape(NewShapeID(string(PreludeNamespace), name, "")), name)
		}
	})

	t.Run("standard traits are marked as traits", func(t *testing.T) {
		for _, id := range []ShapeID{TraitRequired, TraitDocumentation, TraitTags, TraitError} {
			shape, ok := p.Shape(id)
			require.True(t, ok, id.String())
			assert.True(t, shape.Traits.Has(TraitTrait), id.String())
		}
	})

	t.Run("loaded once", func(t *testing.T) {
		assert.Same(t, p, Prelude())
	})
}
