package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anvil-idl/anvil/internal/output"
	"github.com/anvil-idl/anvil/lint"
)

// NewLintCmd creates the lint command.
func NewLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [path...]",
		Short: "Check model artifacts for problems",
		Long: `Assemble the named artifacts and run the full rule set: structural
validation plus style and reachability checks. Findings of error severity
fail the command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := assembleModel(cmd.Context(), args)
			if err != nil {
				return err
			}

			issues := lint.Run(m)
			output.Println(output.FormatReport(issues))
			if lint.HasErrors(issues) {
				return ErrFindings
			}
			return nil
		},
	}
}

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path...]",
		Short: "Validate model artifacts",
		Long: `Assemble the named artifacts and run only the structural checks:
merge conflicts and unresolved references. Style rules are not applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := assembleModel(cmd.Context(), args)
			if err != nil {
				return err
			}

			issues := lint.Run(m, lint.UnresolvedReferences{})
			output.Println(output.FormatReport(issues))
			if lint.HasErrors(issues) {
				return ErrFindings
			}
			return nil
		},
	}
}
