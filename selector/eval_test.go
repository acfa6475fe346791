package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvil-idl/anvil/model"
)

// weatherModel assembles a small service closure exercising every shape
// kind the evaluator distinguishes and enough traits for attribute tests.
func weatherModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.NewModel("")

	add := func(shape *model.TopLevelShape) {
		require.NoError(t, m.AddShape(shape))
	}

	add(model.NewShape(model.MustShapeID("example.weather#Weather"), &model.ServiceShape{
		Version:    "2024-01-01",
		Operations: []model.ShapeID{model.MustShapeID("example.weather#GetForecast")},
		Resources:  []model.ShapeID{model.MustShapeID("example.weather#City")},
	}))

	ids := model.NewMembers()
	ids.Set(model.NewMember("cityId", model.MustShapeID("example.weather#CityID")))
	add(model.NewShape(model.MustShapeID("example.weather#City"), &model.ResourceShape{
		Identifiers: ids,
		Read:        model.MustShapeID("example.weather#GetCity"),
	}))

	cityID := model.NewShape(model.MustShapeID("example.weather#CityID"), &model.SimpleShape{Kind: model.SimpleString})
	cityID.Traits.Apply(model.TraitLength, model.ObjectOf("min", model.Integer(1)))
	add(cityID)

	add(model.NewShape(model.MustShapeID("example.weather#Temp"), &model.SimpleShape{Kind: model.SimpleInteger}))

	add(model.NewShape(model.MustShapeID("example.weather#TagList"), &model.ListShape{
		Member: model.NewMember("member", model.MustShapeID("anvil.api#String")),
	}))

	add(model.NewShape(model.MustShapeID("example.weather#GetForecast"), &model.OperationShape{
		Input:  model.MustShapeID("example.weather#ForecastInput"),
		Output: model.MustShapeID("example.weather#Forecast"),
	}))

	add(model.NewShape(model.MustShapeID("example.weather#GetCity"), &model.OperationShape{
		Output: model.MustShapeID("example.weather#CityOutput"),
	}))

	inputMembers := model.NewMembers()
	inputMembers.Set(model.NewMember("cityId", model.MustShapeID("example.weather#CityID")))
	add(model.NewShape(model.MustShapeID("example.weather#ForecastInput"), &model.StructureShape{Members: inputMembers}))

	forecastMembers := model.NewMembers()
	forecastMembers.Set(model.NewMember("chanceOfRain", model.MustShapeID("anvil.api#Float")))
	forecastMembers.Set(model.NewMember("city", model.MustShapeID("example.weather#CityID")))
	forecast := model.NewShape(model.MustShapeID("example.weather#Forecast"), &model.StructureShape{Members: forecastMembers})
	forecast.Traits.Apply(model.TraitDocumentation, model.String("The forecast for a city."))
	forecast.Traits.Apply(model.TraitTags, model.Array{model.String("a"), model.String("b")})
	forecast.Traits.Apply(model.MustShapeID("example.weather#myTrait"), model.ObjectOf("myKey", model.String("foo")))
	forecast.Traits.Apply(model.MustShapeID("example.weather#range"), model.ObjectOf("min", model.Integer(0), "max", model.Integer(100)))
	add(forecast)

	outputMembers := model.NewMembers()
	outputMembers.Set(model.NewMember("name", model.MustShapeID("anvil.api#String")))
	add(model.NewShape(model.MustShapeID("example.weather#CityOutput"), &model.StructureShape{Members: outputMembers}))

	return m
}

func evalIDs(t *testing.T, m *model.Model, src string) []string {
	t.Helper()
	ids, err := Evaluate(MustParse(src), m)
	require.NoError(t, err)
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func TestEvaluateShapeTypes(t *testing.T) {
	m := weatherModel(t)

	t.Run("star returns every shape once", func(t *testing.T) {
		ids, err := Evaluate(MustParse("*"), m)
		require.NoError(t, err)
		assert.Equal(t, m.ShapeIDs(), ids)
	})

	t.Run("kind filters", func(t *testing.T) {
		assert.Equal(t, []string{
			"example.weather#ForecastInput",
			"example.weather#Forecast",
			"example.weather#CityOutput",
		}, evalIDs(t, m, "structure"))
		assert.Equal(t, []string{"example.weather#Weather"}, evalIDs(t, m, "service"))
		assert.Equal(t, []string{"example.weather#City"}, evalIDs(t, m, "resource"))
	})

	t.Run("grouping filters", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Temp"}, evalIDs(t, m, "number"))
		assert.Equal(t, []string{"example.weather#CityID", "example.weather#Temp"}, evalIDs(t, m, "simpleType"))
		assert.Equal(t, []string{"example.weather#TagList"}, evalIDs(t, m, "collection"))
	})

	t.Run("member matches member IDs in an explicit start set", func(t *testing.T) {
		memberID := model.MustShapeID("example.weather#City$cityId")
		start := []model.ShapeID{model.MustShapeID("example.weather#City"), memberID}

		ids, err := EvaluateFrom(MustParse("member"), m, start)
		require.NoError(t, err)
		assert.Equal(t, []model.ShapeID{memberID}, ids)

		resources, err := EvaluateFrom(MustParse("resource"), m, start)
		require.NoError(t, err)
		assert.Equal(t, []model.ShapeID{model.MustShapeID("example.weather#City")}, resources)
	})
}

func TestEvaluateNeighbors(t *testing.T) {
	m := weatherModel(t)

	t.Run("forward deduplicates shared targets", func(t *testing.T) {
		// ForecastInput and Forecast both target CityID.
		assert.Equal(t, []string{
			"example.weather#CityID",
			"anvil.api#Float",
			"anvil.api#String",
		}, evalIDs(t, m, "structure >"))
	})

	t.Run("directed forward follows only the named relationships", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast", "example.weather#CityOutput"},
			evalIDs(t, m, "operation -[output]->"))
	})

	t.Run("reverse finds referrers", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Weather"}, evalIDs(t, m, "resource <"))
		assert.Equal(t, []string{"example.weather#City"}, evalIDs(t, m, "operation <-[read]-"))
	})

	t.Run("recursive closure reaches the whole service graph", func(t *testing.T) {
		assert.ElementsMatch(t, []string{
			"example.weather#GetForecast",
			"example.weather#City",
			"example.weather#ForecastInput",
			"example.weather#Forecast",
			"example.weather#CityID",
			"example.weather#GetCity",
			"anvil.api#Float",
			"example.weather#CityOutput",
			"anvil.api#String",
		}, evalIDs(t, m, "service ~>"))
	})

	t.Run("recursive closure terminates on cycles", func(t *testing.T) {
		cyclic := model.NewModel("")
		aMembers := model.NewMembers()
		aMembers.Set(model.NewMember("b", model.MustShapeID("example.cycle#B")))
		require.NoError(t, cyclic.AddShape(model.NewShape(model.MustShapeID("example.cycle#A"), &model.StructureShape{Members: aMembers})))
		bMembers := model.NewMembers()
		bMembers.Set(model.NewMember("a", model.MustShapeID("example.cycle#A")))
		require.NoError(t, cyclic.AddShape(model.NewShape(model.MustShapeID("example.cycle#B"), &model.StructureShape{Members: bMembers})))

		ids, err := EvaluateFrom(MustParse("~>"), cyclic, []model.ShapeID{model.MustShapeID("example.cycle#A")})
		require.NoError(t, err)
		assert.Equal(t, []model.ShapeID{
			model.MustShapeID("example.cycle#B"),
			model.MustShapeID("example.cycle#A"),
		}, ids)
	})
}

func TestEvaluateAttributes(t *testing.T) {
	m := weatherModel(t)

	t.Run("existence", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, "[trait|documentation]"))
		assert.Empty(t, evalIDs(t, m, "[trait|error]"))
	})

	t.Run("id components", func(t *testing.T) {
		assert.Len(t, evalIDs(t, m, `[id|namespace ^= "example."]`), m.Len())
		assert.Equal(t, []string{"example.weather#GetForecast", "example.weather#GetCity"},
			evalIDs(t, m, "[id|name = GetCity, GetForecast]"))
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, "[id|name = forecast i]"))
	})

	t.Run("trait value paths", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, `[myTrait|myKey = "foo"]`))
		assert.Equal(t, []string{"example.weather#CityID"}, evalIDs(t, m, "[trait|length|min >= 1]"))
		assert.Empty(t, evalIDs(t, m, "[trait|length|min > 1]"))
	})

	t.Run("trait map projections", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, `[trait|(keys) *= "myTrait"]`))
		assert.Equal(t, []string{"example.weather#CityID"}, evalIDs(t, m, "[trait|(length) = 1]"))
	})

	t.Run("service version", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Weather"}, evalIDs(t, m, `[service|version ^= "2024"]`))
	})

	t.Run("existence comparator", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, "[trait|documentation ?= true]"))
		assert.Len(t, evalIDs(t, m, "[trait|documentation ?= false]"), m.Len()-1)
	})

	t.Run("projection comparators", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, `[trait|tags {<} "a", "b", "c"]`))
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, `[trait|tags {<<} "a", "b", "c"]`))
		assert.Empty(t, evalIDs(t, m, `[trait|tags {<<} "a", "b"]`))
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, `[trait|tags {=} "b", "a"]`))
		assert.Empty(t, evalIDs(t, m, `[trait|tags {=} "a"]`))
	})

	t.Run("missing attributes never match", func(t *testing.T) {
		assert.Empty(t, evalIDs(t, m, `[trait|nope != "anything"]`))
	})
}

func TestEvaluateScopedAttributes(t *testing.T) {
	m := weatherModel(t)

	t.Run("correlated comparison within one trait value", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, "[@trait|range: @{min} < @{max}]"))
	})

	t.Run("conjunction must hold entirely", func(t *testing.T) {
		assert.Empty(t, evalIDs(t, m, "[@trait|range: @{min} < @{max} && @{min} > 50]"))
	})

	t.Run("keyless scope reads root attributes", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast"}, evalIDs(t, m, "[@: @{id|name} = Forecast]"))
	})
}

func TestEvaluateVariables(t *testing.T) {
	m := weatherModel(t)

	t.Run("definition binds, reference recalls", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#GetForecast", "example.weather#GetCity"},
			evalIDs(t, m, "$ops(operation) service ${ops}"))
	})

	t.Run("variables appear as attributes", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Weather"},
			evalIDs(t, m, `$ops(operation) [var|ops *= "GetCity"] service`))
	})

	t.Run("unbound reference fails", func(t *testing.T) {
		_, err := Evaluate(MustParse("${nope}"), m)
		var undefined *UndefinedVariableError
		require.ErrorAs(t, err, &undefined)
		assert.Equal(t, "nope", undefined.Name)
		assert.ErrorIs(t, err, ErrEvaluation)
	})

	t.Run("unbound reference surfaces after an empty filter", func(t *testing.T) {
		_, err := Evaluate(MustParse(`structure [trait|missing] ${missing}`), m)
		var undefined *UndefinedVariableError
		require.ErrorAs(t, err, &undefined)
		assert.Equal(t, "missing", undefined.Name)
	})
}

func TestEvaluateFunctions(t *testing.T) {
	m := weatherModel(t)

	t.Run("not inverts a filter", func(t *testing.T) {
		ids := evalIDs(t, m, ":not([trait|documentation])")
		assert.Len(t, ids, m.Len()-1)
		assert.NotContains(t, ids, "example.weather#Forecast")
	})

	t.Run("test probes without moving", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Weather"}, evalIDs(t, m, ":test(-[resource]->)"))
	})

	t.Run("is maps through nested selectors", func(t *testing.T) {
		assert.Equal(t, []string{"example.weather#Forecast", "example.weather#CityOutput"},
			evalIDs(t, m, "operation :is(-[output]->)"))
	})

	t.Run("topdown inherits through the service hierarchy", func(t *testing.T) {
		assert.ElementsMatch(t, []string{
			"example.weather#Weather",
			"example.weather#City",
			"example.weather#GetForecast",
			"example.weather#GetCity",
		}, evalIDs(t, m, ":topdown([id|name = Weather])"))
	})

	t.Run("topdown disqualifier cuts off a subtree", func(t *testing.T) {
		assert.ElementsMatch(t, []string{
			"example.weather#Weather",
			"example.weather#GetForecast",
		}, evalIDs(t, m, ":topdown([id|name = Weather], [id|name = City])"))
	})

	t.Run("unknown function fails", func(t *testing.T) {
		_, err := Evaluate(MustParse(":frobnicate(*)"), m)
		var unknown *UnknownFunctionError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "frobnicate", unknown.Name)
	})

	t.Run("wrong arity fails", func(t *testing.T) {
		_, err := Evaluate(MustParse(":not(*, *)"), m)
		assert.ErrorIs(t, err, ErrEvaluation)
	})
}
