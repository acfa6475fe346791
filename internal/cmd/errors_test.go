package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anvil-idl/anvil/model"
	"github.com/anvil-idl/anvil/selector"
)

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"explicit exit error", NewExitError(errors.New("boom"), ExitNotFound), ExitNotFound},
		{"findings", fmt.Errorf("lint: %w", ErrFindings), ExitValidationError},
		{"merge conflict", fmt.Errorf("assemble: %w", &model.ShapeConflictError{ID: model.MustShapeID("a.b#C")}), ExitValidationError},
		{"model syntax", fmt.Errorf("parse: %w", model.ErrSyntax), ExitSyntaxError},
		{"selector syntax", fmt.Errorf("parse: %w", selector.ErrSyntax), ExitSyntaxError},
		{"selector evaluation", fmt.Errorf("query: %w", &selector.UnknownFunctionError{Name: "frob"}), ExitQueryError},
		{"missing file", fmt.Errorf("open: %w", fs.ErrNotExist), ExitNotFound},
		{"anything else", errors.New("boom"), ExitGeneralError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeFromError(tc.err))
		})
	}
}

func TestExitErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := NewExitError(fmt.Errorf("wrapped: %w", inner), ExitValidationError)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
}

func TestExitCodeName(t *testing.T) {
	assert.Equal(t, "Success", ExitCodeName(ExitSuccess))
	assert.Equal(t, "Validation Error", ExitCodeName(ExitValidationError))
	assert.Equal(t, "Unknown", ExitCodeName(99))
}
