// Package lint validates assembled models: structural checks that the
// merge rules cannot express, and advisory style checks. Rules never
// mutate the model and report findings as issues rather than errors, so a
// caller decides which severities fail its run.
package lint

import (
	"fmt"

	"github.com/anvil-idl/anvil/model"
)

// Severity ranks a finding.
type Severity int

// Severities, least severe first.
const (
	Info Severity = iota
	Warning
	Error
)

var severityNames = map[Severity]string{
	Info:    "info",
	Warning: "warning",
	Error:   "error",
}

func (s Severity) String() string { return severityNames[s] }

// Issue is one finding of one rule against one shape (or the model as a
// whole when Shape is zero).
type Issue struct {
	Severity Severity
	Rule     string
	Shape    model.ShapeID
	Message  string
}

func (i Issue) String() string {
	if i.Shape.IsZero() {
		return fmt.Sprintf("%s: %s: %s", i.Severity, i.Rule, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %s", i.Severity, i.Rule, i.Shape, i.Message)
}

// Rule checks one concern over a whole model.
type Rule interface {
	Name() string
	Check(m *model.Model) []Issue
}

// DefaultRules returns the standard rule set.
func DefaultRules() []Rule {
	return []Rule{
		UnresolvedReferences{},
		NamingConventions{},
		UnreferencedShapes{},
	}
}

// Run applies the given rules, or the default set when none are given, and
// returns every issue in rule order.
func Run(m *model.Model, rules ...Rule) []Issue {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	var issues []Issue
	for _, rule := range rules {
		issues = append(issues, rule.Check(m)...)
	}
	return issues
}

// HasErrors reports whether any issue is of Error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == Error {
			return true
		}
	}
	return false
}
