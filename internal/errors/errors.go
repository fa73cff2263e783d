// Package apperrors defines the error classes surfaced by the rsagcd command
// and server, and maps them onto process exit codes.
//
// Every wrapper type implements Unwrap so that errors.Is and errors.As can
// reach the sentinels of the bignum and batch packages.
package apperrors

import (
	"context"
	"errors"
	"fmt"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/bignum"
)

// Process exit codes.
const (
	ExitSuccess       = 0   // Run completed.
	ExitErrorGeneric  = 1   // Unclassified failure.
	ExitErrorTimeout  = 2   // The -timeout budget was exhausted.
	ExitErrorMismatch = 3   // Algorithms disagreed on at least one unit.
	ExitErrorConfig   = 4   // Invalid flags or environment.
	ExitErrorInput    = 5   // Malformed, zero or oversized operands.
	ExitErrorLaunch   = 6   // A kernel group failed during a batch.
	ExitWeakKeys      = 10  // Shared factors found and -strict was set.
	ExitErrorCanceled = 130 // Interrupted (SIGINT).
)

// ConfigError reports an invalid flag, environment variable or combination of
// them.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// RunError wraps a failure of a GCD computation or batch together with the
// algorithm that produced it.
type RunError struct {
	// Algorithm is the registered algorithm name, empty when unknown.
	Algorithm string
	// Cause is the underlying error.
	Cause error
}

func (e RunError) Error() string {
	if e.Algorithm == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Algorithm, e.Cause)
}

// Unwrap returns the underlying cause.
func (e RunError) Unwrap() error { return e.Cause }

// NewRunError wraps cause, or returns nil when cause is nil.
func NewRunError(algorithm string, cause error) error {
	if cause == nil {
		return nil
	}
	return RunError{Algorithm: algorithm, Cause: cause}
}

// ServerError represents a failure of the HTTP server lifecycle.
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, possibly nil.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError builds a ServerError. cause may be nil.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError prefixes err with a formatted context message. It returns nil
// when err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err stems from cancellation or a deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsInputError reports whether err was caused by the operands themselves
// rather than by the machinery running them.
func IsInputError(err error) bool {
	var verr ValidationError
	return errors.Is(err, bignum.ErrMalformedInput) ||
		errors.Is(err, bignum.ErrZeroInput) ||
		errors.Is(err, bignum.ErrCapacityViolation) ||
		errors.Is(err, bignum.ErrPreconditionViolation) ||
		errors.As(err, &verr)
}

// ExitCode classifies err into one of the process exit codes.
func ExitCode(err error) int {
	var cfg ConfigError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfg):
		return ExitErrorConfig
	case errors.Is(err, batch.ErrLaunch):
		return ExitErrorLaunch
	case IsInputError(err):
		return ExitErrorInput
	default:
		return ExitErrorGeneric
	}
}

// ValidationError reports a rejected request or configuration field.
type ValidationError struct {
	Field   string
	Message string
	// Value is the offending value, if any.
	Value any
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}
