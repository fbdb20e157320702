// Package apperrors defines the error taxonomy shared by the catalog, the day
// store, and the import engine. Every public operation either fully succeeds
// with a single persist or fails with one of these; none of them is fatal to
// the process.
package apperrors

import (
	"fmt"
	"os"

	"github.com/averyross/scorecard/internal/logger"
)

// ValidationError reports a value that fails a metric's type, bound, required,
// or option-membership rule, or a catalog edit that violates the forward-only
// guardrail. The operation aborts with nothing persisted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an operation targeting a missing day entry or a metric
// version row that does not exist for the given date. Callers treat it as a
// reported no-op, not a failure.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NotFoundf(format string, args ...any) *NotFoundError {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// SchemaError reports an import payload with an unrecognized or
// newer-than-supported schema tag. The import is aborted entirely.
type SchemaError struct {
	Schema string
	Msg    string
}

func (e *SchemaError) Error() string { return e.Msg }

func Schemaf(schema, format string, args ...any) *SchemaError {
	return &SchemaError{Schema: schema, Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports an import payload that is not well-formed JSON.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string { return e.Msg }
func (e *ParseError) Unwrap() error { return e.Err }

func Parse(err error) *ParseError {
	return &ParseError{Msg: fmt.Sprintf("invalid payload: %v", err), Err: err}
}

// CorruptionError reports a persisted blob that failed to deserialize. Loaders
// recover by falling back to a seeded/empty structure; the error is surfaced so
// diagnostics can report it, never to crash.
type CorruptionError struct {
	Key string
	Err error
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("stored blob %q is corrupt: %v", e.Key, e.Err)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
