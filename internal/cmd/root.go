package cmd

import (
	"github.com/spf13/cobra"

	"github.com/anvil-idl/anvil/internal/config"
	"github.com/anvil-idl/anvil/internal/output"
)

var (
	// Global flags.
	configFlag  string
	verboseFlag bool

	// Resolved configuration, loaded during PersistentPreRunE.
	anvilConfig *config.Config
)

// NewRootCmd creates the root command for the anvil CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "anvil",
		Short:         "Anvil IDL model tools",
		Long:          `Anvil assembles, validates, queries, and converts IDL model artifacts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: ANVIL_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewLintCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewQueryCmd())
	rootCmd.AddCommand(NewConvertCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals sets up logging and loads configuration.
func initializeGlobals() error {
	cfg, err := config.NewLoader().Load(configFlag)
	if err != nil {
		return err
	}
	anvilConfig = cfg

	output.SetupLogging(verboseFlag || cfg.Log.Verbose)
	return nil
}
