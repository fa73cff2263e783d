package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/bignum"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	err := NewConfigError("invalid value %d for flag %s", 0, "-group-width")
	if got, want := err.Error(), "invalid value 0 for flag -group-width"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var cfg ConfigError
	if !errors.As(fmt.Errorf("parse: %w", err), &cfg) {
		t.Error("expected wrapped error to be a ConfigError")
	}
}

func TestRunError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		algorithm string
		cause     error
		want      string
	}{
		{"named", "binary", bignum.ErrZeroInput, "binary: " + bignum.ErrZeroInput.Error()},
		{"anonymous", "", context.Canceled, context.Canceled.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewRunError(tt.algorithm, tt.cause)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.cause)
			}
		})
	}
	if NewRunError("binary", nil) != nil {
		t.Error("NewRunError with nil cause should return nil")
	}
}

func TestServerError(t *testing.T) {
	t.Parallel()
	cause := errors.New("address in use")
	err := NewServerError("server failed to start", cause)
	if got, want := err.Error(), "server failed to start: address in use"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("expected ServerError to unwrap to its cause")
	}
	if got := NewServerError("stopped", nil).Error(); got != "stopped" {
		t.Errorf("Error() without cause = %q", got)
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "ignored") != nil {
		t.Error("WrapError(nil) should be nil")
	}
	err := WrapError(bignum.ErrMalformedInput, "key %d", 3)
	if !errors.Is(err, bignum.ErrMalformedInput) {
		t.Error("wrapped sentinel lost")
	}
	if got, want := err.Error(), "key 3: "+bignum.ErrMalformedInput.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	if !IsContextError(fmt.Errorf("x: %w", context.DeadlineExceeded)) {
		t.Error("deadline not recognized")
	}
	if !IsContextError(context.Canceled) {
		t.Error("cancel not recognized")
	}
	if IsContextError(errors.New("other")) {
		t.Error("plain error recognized as context error")
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	if got := NewValidationError("a", "must be hexadecimal", "zz").Error(); got != "validation error for 'a': must be hexadecimal" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewValidationError("", "empty body", nil).Error(); got != "validation error: empty body" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	launch := &batch.LaunchError{Algorithm: "binary", Group: 2, Err: errors.New("boom")}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"deadline", NewRunError("binary", context.DeadlineExceeded), ExitErrorTimeout},
		{"canceled", context.Canceled, ExitErrorCanceled},
		{"config", NewConfigError("bad"), ExitErrorConfig},
		{"launch", NewRunError("binary", launch), ExitErrorLaunch},
		{"malformed", &bignum.OpError{Op: "parse", Err: bignum.ErrMalformedInput}, ExitErrorInput},
		{"zero", fmt.Errorf("unit 4: %w", bignum.ErrZeroInput), ExitErrorInput},
		{"capacity", bignum.ErrCapacityViolation, ExitErrorInput},
		{"precondition", bignum.ErrPreconditionViolation, ExitErrorInput},
		{"validation", NewValidationError("b", "missing", nil), ExitErrorInput},
		{"generic", errors.New("disk on fire"), ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
