package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anvil-idl/anvil/lint"
	"github.com/anvil-idl/anvil/model"
)

func TestFormatReport(t *testing.T) {
	t.Run("clean report", func(t *testing.T) {
		report := FormatReport(nil)
		assert.Contains(t, report, "no problems found")
	})

	t.Run("counts by severity", func(t *testing.T) {
		report := FormatReport([]lint.Issue{
			{Severity: lint.Error, Rule: "unresolved-references", Shape: model.MustShapeID("a.b#C"), Message: "boom"},
			{Severity: lint.Warning, Rule: "naming-conventions", Shape: model.MustShapeID("a.b#d"), Message: "casing"},
			{Severity: lint.Info, Rule: "unreferenced-shapes", Shape: model.MustShapeID("a.b#E"), Message: "orphan"},
		})
		assert.Contains(t, report, "3 problems (1 errors, 1 warnings, 1 info)")
		assert.Contains(t, report, "a.b#C")
		assert.Contains(t, report, "boom")
	})
}

func TestFormatIssue(t *testing.T) {
	issue := lint.Issue{Severity: lint.Warning, Rule: "naming-conventions", Shape: model.MustShapeID("a.b#c"), Message: "casing"}
	line := FormatIssue(issue)
	assert.Contains(t, line, "warning")
	assert.Contains(t, line, "naming-conventions")
	assert.Contains(t, line, "a.b#c")

	modelWide := lint.Issue{Severity: lint.Info, Rule: "meta", Message: "note"}
	assert.Contains(t, FormatIssue(modelWide), "note")
}
