package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	// Each case is in canonical form so parse-then-String must reproduce it
	// bit for bit.
	cases := []string{
		"*",
		"service",
		"structure > member",
		"number [trait|range]",
		"[trait|deprecated]",
		"[id]",
		"[id|namespace ^= \"example.\"]",
		"[id|name = Weather, Forecast i]",
		"[id|name != \"internal\"]",
		"[trait|documentation $= \".\"]",
		"[trait|title *= \"Weather\"]",
		"[trait|documentation ?= true]",
		"[trait|length|min >= 1]",
		"[trait|length|max <= 10]",
		"[trait|range|min > 0]",
		"[trait|range|max < 100]",
		"[trait|tags {=} \"a\", \"b\"]",
		"[trait|tags {!=} \"a\"]",
		"[trait|tags {<} \"a\", \"b\", \"c\"]",
		"[trait|tags {<<} \"a\", \"b\", \"c\"]",
		"[trait|enum|(values)|(length) = 3]",
		"[trait|paginated|(keys) = \"inputToken\"]",
		"[myTrait|myKey = \"foo\"]",
		"[trait|anvil.api#deprecated]",
		"[id = example.weather#Forecast]",
		"service > operation",
		"service < resource",
		"-[input, output]->",
		"<-[operation]-",
		"~> [trait|error]",
		":not([trait|documentation])",
		":test(-[resource]->)",
		":is(-[input]->, -[output]->)",
		":topdown([trait|deprecated], [trait|sensitive])",
		"$inputs(operation -[input]->) structure ${inputs}",
		"[@trait|range: @{min} < @{max}]",
		"[@: @{id|name} = Forecast]",
		"[@trait|enum|(values): @{name} = @{value} i && @{deprecated} != true]",
	}
	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			sel, err := Parse(src)
			require.NoError(t, err)
			assert.Equal(t, src, sel.String())
		})
	}
}

func TestParseNormalizesWhitespace(t *testing.T) {
	sel, err := Parse("  service\n\t> operation  [ trait|documentation ]")
	require.NoError(t, err)
	assert.Equal(t, "service > operation [trait|documentation]", sel.String())
}

func TestParseNumbers(t *testing.T) {
	sel, err := Parse("[trait|range|min = -3]")
	require.NoError(t, err)
	attr := sel.Expressions[0].(*AttributeSelector)
	num := attr.Comparison.Values[0].(NumberLiteral)
	i, ok := num.Value.Int()
	require.True(t, ok)
	assert.Equal(t, int64(-3), i)

	sel, err = Parse("[trait|range|max = 1.5]")
	require.NoError(t, err)
	attr = sel.Expressions[0].(*AttributeSelector)
	num = attr.Comparison.Values[0].(NumberLiteral)
	assert.True(t, num.Value.IsFloat())
	assert.Equal(t, 1.5, num.Value.AsFloat())
}

func TestParseQuoting(t *testing.T) {
	sel, err := Parse(`[trait|documentation = 'single "quoted"']`)
	require.NoError(t, err)
	attr := sel.Expressions[0].(*AttributeSelector)
	assert.Equal(t, TextLiteral(`single "quoted"`), attr.Comparison.Values[0])
}

func TestParseCaseFlag(t *testing.T) {
	t.Run("trailing i is the flag", func(t *testing.T) {
		sel, err := Parse(`[id|name = forecast i]`)
		require.NoError(t, err)
		attr := sel.Expressions[0].(*AttributeSelector)
		assert.True(t, attr.Comparison.CaseInsensitive)
		assert.Len(t, attr.Comparison.Values, 1)
	})

	t.Run("a lone i value is not the flag", func(t *testing.T) {
		sel, err := Parse(`[id|name = i]`)
		require.NoError(t, err)
		attr := sel.Expressions[0].(*AttributeSelector)
		assert.False(t, attr.Comparison.CaseInsensitive)
		require.Len(t, attr.Comparison.Values, 1)
		assert.Equal(t, "i", attr.Comparison.Values[0].(IDLiteral).ID.String())
	})
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty input":              "",
		"unknown shape type":       "structur",
		"unterminated attribute":   "[id",
		"missing comparison value": "[id = ]",
		"unterminated string":      `[id = "oops]`,
		"bare tilde":               "~",
		"unterminated variable":    "${ops",
		"unterminated function":    ":test(*",
		"empty function argument":  ":test()",
		"empty relation list":      "-[]->",
		"dangling comparator":      "[id =",
		"trailing garbage":         "service )",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestSyntaxErrorReportsFragment(t *testing.T) {
	_, err := Parse("service [id|name ~ 3]")
	var syntax *SyntaxError
	require.ErrorAs(t, err, &syntax)
	assert.Equal(t, 17, syntax.Offset)
	assert.Contains(t, syntax.Fragment, "~")
}
