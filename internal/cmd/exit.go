// Package cmd provides the anvil CLI commands.
package cmd

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError = 1

	// ExitValidationError indicates merge conflicts or findings of error
	// severity.
	ExitValidationError = 2

	// ExitSyntaxError indicates malformed artifact or selector text.
	ExitSyntaxError = 3

	// ExitNotFound indicates a missing artifact path.
	ExitNotFound = 4

	// ExitQueryError indicates a selector that parsed but failed to
	// evaluate.
	ExitQueryError = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitSyntaxError:
		return "Syntax Error"
	case ExitNotFound:
		return "Not Found"
	case ExitQueryError:
		return "Query Error"
	default:
		return "Unknown"
	}
}
