// Command rsagcd finds RSA moduli that share a prime factor by computing the
// GCD of every pair of keys in lockstep batches.
package main

import (
	"context"
	"os"

	"github.com/agbru/rsagcd/internal/app"
	apperrors "github.com/agbru/rsagcd/internal/errors"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if app.HasVersionFlag(args[1:]) {
		app.PrintVersion(os.Stdout)
		return apperrors.ExitSuccess
	}
	application, err := app.New(args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitErrorConfig
	}
	return application.Run(context.Background(), os.Stdout)
}
