package cmd

import (
	"context"
	"fmt"

	"github.com/anvil-idl/anvil/assembler"
	"github.com/anvil-idl/anvil/internal/output"
	"github.com/anvil-idl/anvil/model"
)

// assembleModel builds the model from the given artifact paths, falling
// back to the configured search paths and the ANVIL_PATH environment
// variable when no paths are named.
func assembleModel(ctx context.Context, paths []string) (*model.Model, error) {
	a := assembler.New(
		assembler.WithLogger(output.Logger),
		assembler.WithPrelude(),
	)
	if len(paths) > 0 {
		a.AddPath(paths...)
	} else {
		if anvilConfig != nil {
			a.AddPath(anvilConfig.SearchPaths...)
		}
		a.AddEnvPaths()
	}

	m, err := a.Assemble(ctx)
	if err != nil {
		return nil, fmt.Errorf("assemble model: %w", err)
	}
	return m, nil
}
