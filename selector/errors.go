package selector

import (
	"errors"
	"fmt"
)

// Sentinel errors for selector failures.
var (
	// ErrSyntax indicates malformed selector text.
	ErrSyntax = errors.New("selector syntax error")

	// ErrEvaluation indicates a failure during evaluation of a
	// syntactically valid selector.
	ErrEvaluation = errors.New("selector evaluation error")
)

// SyntaxError reports malformed selector text with the offending source
// fragment. A selector that fails to parse is never partially evaluated.
type SyntaxError struct {
	// Offset is the byte position at which parsing failed.
	Offset int

	// Fragment is the source text at and after the failure point.
	Fragment string

	// Message describes what was expected.
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("%s at offset %d (end of input)", e.Message, e.Offset)
	}
	return fmt.Sprintf("%s at offset %d: %q", e.Message, e.Offset, e.Fragment)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// UndefinedVariableError reports a ${name} reference with no prior binding
// in the current evaluation.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined selector variable %q", e.Name)
}

func (e *UndefinedVariableError) Unwrap() error { return ErrEvaluation }

// UnknownFunctionError reports a :name(...) call outside the closed set of
// built-in functions.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown selector function %q", e.Name)
}

func (e *UnknownFunctionError) Unwrap() error { return ErrEvaluation }
