package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-idl/anvil/internal/output"
	"github.com/anvil-idl/anvil/jsonast"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	var outFlag string

	cmd := &cobra.Command{
		Use:   "convert [path...]",
		Short: "Assemble artifacts into a single JSON model",
		Long: `Assemble the named artifacts and write the merged model in its JSON
form, to stdout or to the file named by --out. Assembly conflicts fail the
conversion; nothing is written on error.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := assembleModel(cmd.Context(), args)
			if err != nil {
				return err
			}

			encoded, err := jsonast.Encode(m)
			if err != nil {
				return err
			}
			if outFlag == "" {
				output.Print(string(encoded))
				return nil
			}
			if err := os.WriteFile(outFlag, encoded, 0o644); err != nil {
				return err
			}
			output.Info("wrote model", "path", outFlag, "shapes", m.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output file (default stdout)")
	return cmd
}
