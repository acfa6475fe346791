package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anvil-idl/anvil/internal/output"
	"github.com/anvil-idl/anvil/selector"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <selector> [path...]",
		Short: "Run a selector over assembled artifacts",
		Long: `Parse the selector expression, assemble the named artifacts, and print
the ID of every matching shape, one per line, in model order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selector.Parse(args[0])
			if err != nil {
				return err
			}

			m, err := assembleModel(cmd.Context(), args[1:])
			if err != nil {
				return err
			}

			ids, err := selector.Evaluate(sel, m)
			if err != nil {
				return err
			}
			output.Debug("selector evaluated", "selector", sel.String(), "matches", len(ids))
			for _, id := range ids {
				output.Println(id.String())
			}
			return nil
		},
	}
}
