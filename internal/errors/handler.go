package apperrors

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/rsagcd/internal/batch"
)

// ColorProvider supplies terminal color codes. It lets this package format
// messages without importing the ui package.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

// DefaultColorProvider emits no escape codes.
type DefaultColorProvider struct{}

func (DefaultColorProvider) Yellow() string { return "" }
func (DefaultColorProvider) Red() string    { return "" }
func (DefaultColorProvider) Reset() string  { return "" }

// HandleRunError prints a status line describing err to out and returns the
// matching exit code. duration is included in the message when positive.
// colors may be nil.
func HandleRunError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	code := ExitCode(err)
	if code == ExitSuccess {
		return code
	}
	if colors == nil {
		colors = DefaultColorProvider{}
	}

	suffix := ""
	if duration > 0 {
		suffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", suffix)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), suffix, colors.Reset())
	case ExitErrorConfig:
		fmt.Fprintf(out, "Status: Failure (Configuration). %v\n", err)
	case ExitErrorInput:
		fmt.Fprintf(out, "Status: Failure (Invalid input). %v\n", err)
	case ExitErrorLaunch:
		var le *batch.LaunchError
		if errors.As(err, &le) {
			fmt.Fprintf(out, "%sStatus: Failure (Launch). Group %d of %s failed%s: %v%s\n",
				colors.Red(), le.Group, le.Algorithm, suffix, le.Err, colors.Reset())
		} else {
			fmt.Fprintf(out, "%sStatus: Failure (Launch)%s: %v%s\n", colors.Red(), suffix, err, colors.Reset())
		}
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return code
}
