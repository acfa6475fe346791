package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anvil-idl/anvil/lint"
)

// Color palette — named constants for all ANSI 256 colors used in the CLI.
// These are the single source of truth; never use inline lipgloss.Color
// literals.
var (
	// ColorCyan is used for identifiable nouns: shape IDs, namespaces,
	// artifact paths.
	ColorCyan = lipgloss.Color("14")

	// ColorYellow is used for warning-level findings.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for error-level findings and conflicts.
	ColorRed = lipgloss.Color("196")

	// ColorBlue is used for info-level findings.
	ColorBlue = lipgloss.Color("39")

	// ColorGreenCheck is used for the clean-report checkmark.
	ColorGreenCheck = lipgloss.Color("10")
)

// Semantic styles — map diagnostic concepts to visual presentation.
var (
	// StyleShapeID styles shape identifiers wherever they appear.
	StyleShapeID = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleRule styles rule names in findings.
	StyleRule = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles report summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)

	// StyleClean styles the no-findings marker.
	StyleClean = lipgloss.NewStyle().Foreground(ColorGreenCheck)
)

// SeverityStyle returns the style for a finding severity.
func SeverityStyle(severity lint.Severity) lipgloss.Style {
	switch severity {
	case lint.Error:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
	case lint.Warning:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	default:
		return lipgloss.NewStyle().Foreground(ColorBlue)
	}
}

// FormatIssue renders one lint finding:
//
//	<severity> <rule>: <shape>: <message>
func FormatIssue(issue lint.Issue) string {
	var b strings.Builder
	b.WriteString(SeverityStyle(issue.Severity).Render(issue.Severity.String()))
	b.WriteByte(' ')
	b.WriteString(StyleRule.Render(issue.Rule + ":"))
	b.WriteByte(' ')
	if !issue.Shape.IsZero() {
		b.WriteString(StyleShapeID.Render(issue.Shape.String()))
		b.WriteString(": ")
	}
	b.WriteString(issue.Message)
	return b.String()
}

// FormatReport renders a full set of findings plus a summary line. A clean
// report renders as a single checkmarked line.
func FormatReport(issues []lint.Issue) string {
	if len(issues) == 0 {
		return StyleClean.Render("✔") + " no problems found"
	}
	var b strings.Builder
	counts := make(map[lint.Severity]int)
	for _, issue := range issues {
		counts[issue.Severity]++
		b.WriteString(FormatIssue(issue))
		b.WriteByte('\n')
	}
	b.WriteString(StyleSummary.Render(fmt.Sprintf(
		"%d problems (%d errors, %d warnings, %d info)",
		len(issues), counts[lint.Error], counts[lint.Warning], counts[lint.Info],
	)))
	return b.String()
}
