package main

import "fmt"

// commandError wraps a CLI-level failure (as opposed to a compiler
// diagnostic) with the operation that failed and a suggestion for
// resolving it, mirroring the teacher's command-error shape.
type commandError struct {
	operation  string
	cause      error
	suggestion string
}

func newCommandError(operation string, cause error, suggestion string) error {
	return &commandError{operation: operation, cause: cause, suggestion: suggestion}
}

func (e *commandError) Error() string {
	if e.suggestion == "" {
		return fmt.Sprintf("%s: %v", e.operation, e.cause)
	}
	return fmt.Sprintf("%s: %v\nsuggestion: %s", e.operation, e.cause, e.suggestion)
}

func (e *commandError) Unwrap() error { return e.cause }
