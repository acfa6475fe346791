package jsonast

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvil-idl/anvil/model"
)

const weatherDoc = `{
  "anvil": "1.0",
  "metadata": {
    "zeta": "first",
    "alpha": "second",
    "counts": [1, 1.0]
  },
  "shapes": {
    "example.weather#Weather": {
      "type": "service",
      "version": "2024-01-01",
      "operations": ["example.weather#GetForecast"],
      "resources": ["example.weather#City"]
    },
    "example.weather#City": {
      "type": "resource",
      "identifiers": {
        "cityId": "example.weather#CityID"
      },
      "read": "example.weather#GetCity"
    },
    "example.weather#CityID": {
      "type": "string",
      "traits": {
        "anvil.api#length": {"min": 1}
      }
    },
    "example.weather#GetForecast": {
      "type": "operation",
      "input": {"target": "example.weather#ForecastInput"},
      "output": "example.weather#Forecast"
    },
    "example.weather#GetCity": {
      "type": "operation",
      "output": "example.weather#CityOutput"
    },
    "example.weather#ForecastInput": {
      "type": "structure",
      "members": {
        "cityId": {
          "target": "example.weather#CityID",
          "traits": {
            "anvil.api#required": {}
          }
        }
      }
    },
    "example.weather#Forecast": {
      "type": "structure",
      "members": {
        "chanceOfRain": {"target": "anvil.api#Float"},
        "city": {"target": "example.weather#CityID"}
      },
      "traits": {
        "anvil.api#documentation": "The forecast for a city."
      }
    },
    "example.weather#CityOutput": {
      "type": "structure",
      "members": {
        "name": {"target": "anvil.api#String"}
      }
    }
  }
}`

func TestRead(t *testing.T) {
	m, err := Read(strings.NewReader(weatherDoc))
	require.NoError(t, err)

	t.Run("version and shape count", func(t *testing.T) {
		assert.Equal(t, "1.0", m.Version())
		assert.Equal(t, 8, m.Len())
	})

	t.Run("metadata keeps document order", func(t *testing.T) {
		assert.Equal(t, []string{"zeta", "alpha", "counts"}, m.Metadata().Keys())
	})

	t.Run("integers and floats stay distinct", func(t *testing.T) {
		v, ok := m.Metadata().Get("counts")
		require.True(t, ok)
		arr := v.(model.Array)
		require.Len(t, arr, 2)
		assert.False(t, arr[0].(model.Number).IsFloat())
		assert.True(t, arr[1].(model.Number).IsFloat())
	})

	t.Run("reference objects and plain strings both resolve", func(t *testing.T) {
		shape, ok := m.Shape(model.MustShapeID("example.weather#GetForecast"))
		require.True(t, ok)
		op := shape.Body.(*model.OperationShape)
		assert.Equal(t, "example.weather#ForecastInput", op.Input.String())
		assert.Equal(t, "example.weather#Forecast", op.Output.String())
	})

	t.Run("member traits land on the member", func(t *testing.T) {
		member, ok := m.Member(model.MustShapeID("example.weather#ForecastInput$cityId"))
		require.True(t, ok)
		assert.True(t, member.Traits.Has(model.TraitRequired))
	})

	t.Run("service and resource bindings", func(t *testing.T) {
		shape, _ := m.Shape(model.MustShapeID("example.weather#Weather"))
		service := shape.Body.(*model.ServiceShape)
		assert.Equal(t, "2024-01-01", service.Version)
		require.Len(t, service.Operations, 1)

		shape, _ = m.Shape(model.MustShapeID("example.weather#City"))
		resource := shape.Body.(*model.ResourceShape)
		assert.Equal(t, "example.weather#GetCity", resource.Read.String())
		assert.Equal(t, 1, resource.Identifiers.Len())
	})
}

func TestReadApplyEntries(t *testing.T) {
	t.Run("apply to a member defined later in the document", func(t *testing.T) {
		doc := `{
  "anvil": "1.0",
  "shapes": {
    "example.a#Input$name": {
      "type": "apply",
      "traits": {"anvil.api#required": {}}
    },
    "example.a#Input": {
      "type": "structure",
      "members": {"name": {"target": "anvil.api#String"}}
    }
  }
}`
		m, err := ReadBytes([]byte(doc))
		require.NoError(t, err)
		member, ok := m.Member(model.MustShapeID("example.a#Input$name"))
		require.True(t, ok)
		assert.True(t, member.Traits.Has(model.TraitRequired))
	})

	t.Run("apply to an undefined shape leaves a placeholder", func(t *testing.T) {
		doc := `{
  "anvil": "1.0",
  "shapes": {
    "example.a#Elsewhere": {
      "type": "apply",
      "traits": {"anvil.api#deprecated": {}}
    }
  }
}`
		m, err := ReadBytes([]byte(doc))
		require.NoError(t, err)
		shape, ok := m.Shape(model.MustShapeID("example.a#Elsewhere"))
		require.True(t, ok)
		assert.True(t, shape.IsUnresolved())
		assert.True(t, shape.Traits.Has(model.TraitDeprecated))
	})

	t.Run("apply to a member of an undefined shape pends and re-encodes", func(t *testing.T) {
		doc := `{
  "anvil": "1.0",
  "shapes": {
    "example.a#Elsewhere$name": {
      "type": "apply",
      "traits": {"anvil.api#required": {}}
    }
  }
}`
		m, err := ReadBytes([]byte(doc))
		require.NoError(t, err)
		shape, ok := m.Shape(model.MustShapeID("example.a#Elsewhere"))
		require.True(t, ok)
		require.True(t, shape.IsUnresolved())

		// The pending application survives an encode and re-read.
		encoded, err := Encode(m)
		require.NoError(t, err)
		assert.Contains(t, string(encoded), `"example.a#Elsewhere$name"`)

		again, err := ReadBytes(encoded)
		require.NoError(t, err)
		definition := model.NewShape(model.MustShapeID("example.a#Elsewhere"),
			&model.StructureShape{Members: membersOf("name", "anvil.api#String")})
		require.NoError(t, again.AddShape(definition))
		member, ok := again.Member(model.MustShapeID("example.a#Elsewhere$name"))
		require.True(t, ok)
		assert.True(t, member.Traits.Has(model.TraitRequired))
	})
}

func membersOf(name, target string) *model.Members {
	members := model.NewMembers()
	members.Set(model.NewMember(model.Identifier(name), model.MustShapeID(target)))
	return members
}

func TestReadErrors(t *testing.T) {
	cases := map[string]string{
		"not an object":     `[1, 2]`,
		"bad shape key":     `{"anvil": "1.0", "shapes": {"not a shape id!": {"type": "string"}}}`,
		"unknown type":      `{"anvil": "1.0", "shapes": {"example.a#X": {"type": "frob"}}}`,
		"missing type":      `{"anvil": "1.0", "shapes": {"example.a#X": {}}}`,
		"memberless list":   `{"anvil": "1.0", "shapes": {"example.a#X": {"type": "list"}}}`,
		"targetless member": `{"anvil": "1.0", "shapes": {"example.a#X": {"type": "structure", "members": {"y": {}}}}}`,
		"bad version value": `{"anvil": 1}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	m, err := Read(strings.NewReader(weatherDoc))
	require.NoError(t, err)

	encoded, err := Encode(m)
	require.NoError(t, err)

	again, err := ReadBytes(encoded)
	require.NoError(t, err)

	t.Run("same registry", func(t *testing.T) {
		assert.Equal(t, m.Version(), again.Version())
		assert.Equal(t, m.ShapeIDs(), again.ShapeIDs())
	})

	t.Run("metadata survives with order and numeric identity", func(t *testing.T) {
		assert.Equal(t, m.Metadata().Keys(), again.Metadata().Keys())
		diff := cmp.Diff(model.Value(m.Metadata()), model.Value(again.Metadata()),
			cmp.Comparer(model.ValuesEqual))
		assert.Empty(t, diff)
		v, _ := again.Metadata().Get("counts")
		arr := v.(model.Array)
		assert.False(t, arr[0].(model.Number).IsFloat())
		assert.True(t, arr[1].(model.Number).IsFloat())
	})

	t.Run("traits survive", func(t *testing.T) {
		shape, ok := again.Shape(model.MustShapeID("example.weather#CityID"))
		require.True(t, ok)
		v, ok := shape.Traits.Get(model.TraitLength)
		require.True(t, ok)
		min, ok := v.(*model.Object).Get("min")
		require.True(t, ok)
		i, isInt := min.(model.Number).Int()
		require.True(t, isInt)
		assert.Equal(t, int64(1), i)
	})

	t.Run("merging the re-read artifact into the original is conflict-free", func(t *testing.T) {
		assert.Empty(t, m.Merge(again))
	})

	t.Run("encoding is deterministic", func(t *testing.T) {
		second, err := Encode(again)
		require.NoError(t, err)
		assert.Equal(t, string(encoded), string(second))
	})
}

func TestEncodeFloats(t *testing.T) {
	m := model.NewModel("")
	require.NoError(t, m.AddMetadata("ratio", model.Float(2)))

	encoded, err := Encode(m)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), "2.0")

	again, err := ReadBytes(encoded)
	require.NoError(t, err)
	v, _ := again.Metadata().Get("ratio")
	assert.True(t, v.(model.Number).IsFloat())
}
