package cmd

import (
	"errors"
	"io/fs"

	"github.com/anvil-idl/anvil/model"
	"github.com/anvil-idl/anvil/selector"
)

// ErrFindings indicates lint or validation findings of error severity. The
// findings themselves are printed as a report; the sentinel only carries
// the failure out to the exit-code mapping.
var ErrFindings = errors.New("validation failed")

// ExitError wraps an error with an explicit exit code.
type ExitError struct {
	Err  error
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrFindings), errors.Is(err, model.ErrConflict):
		return ExitValidationError
	case errors.Is(err, model.ErrSyntax), errors.Is(err, selector.ErrSyntax):
		return ExitSyntaxError
	case errors.Is(err, selector.ErrEvaluation):
		return ExitQueryError
	case errors.Is(err, fs.ErrNotExist):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}
