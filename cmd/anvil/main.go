// Package main is the entry point for the anvil CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/anvil-idl/anvil/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		// Findings are already printed as a report; anything else goes to
		// stderr before mapping the exit code.
		if !errors.Is(err, cmd.ErrFindings) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cmd.ExitCodeFromError(err))
	}
}
