// Package app wires the configuration, the GCD engines and the output layers
// into the rsagcd command. It dispatches between the scan, server,
// calibration and version modes.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/calibration"
	"github.com/agbru/rsagcd/internal/cli"
	"github.com/agbru/rsagcd/internal/config"
	apperrors "github.com/agbru/rsagcd/internal/errors"
	"github.com/agbru/rsagcd/internal/gcd"
	"github.com/agbru/rsagcd/internal/keys"
	"github.com/agbru/rsagcd/internal/logging"
	"github.com/agbru/rsagcd/internal/orchestration"
	"github.com/agbru/rsagcd/internal/report"
	"github.com/agbru/rsagcd/internal/server"
	"github.com/agbru/rsagcd/internal/ui"
)

// Application is one configured invocation of rsagcd.
type Application struct {
	Config    config.AppConfig
	Factory   gcd.Factory
	ErrWriter io.Writer
}

// New parses args (program name first) and fills the tuning fields left at
// zero from the cached calibration profile, or from hardware heuristics when
// there is none.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := gcd.GlobalFactory()

	programName := "rsagcd"
	var cmdArgs []string
	if len(args) > 0 {
		programName = filepath.Base(args[0])
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	if withProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
		cfg = withProfile
	} else {
		cfg = calibration.ApplyAdaptive(cfg)
	}

	return &Application{Config: cfg, Factory: factory, ErrWriter: errWriter}, nil
}

// Run executes the configured mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	ui.InitTheme(a.Config.NoColor)
	if level, err := logging.ParseLevel(a.Config.LogLevel); err == nil {
		logging.Setup(level, a.ErrWriter)
	}

	switch {
	case a.Config.ServerMode:
		return a.runServer()
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	default:
		return a.runScan(ctx, out)
	}
}

func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config, server.WithLogger(logging.NewLogger(a.ErrWriter, "server")))
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	return calibration.RunCalibrationWithOptions(ctx, out, calibration.Options{
		Algorithm:   a.Config.Algo,
		ProfilePath: a.Config.CalibrationProfile,
		SaveProfile: true,
	})
}

// inputs holds the loaded moduli and their labels.
type inputs struct {
	keys    []keys.Key
	against []keys.Key
}

func (in inputs) names() []string {
	out := make([]string, len(in.keys))
	for i, k := range in.keys {
		out[i] = k.Source
	}
	return out
}

// loadInputs reads the PEM directory and the hex files of cfg, in that
// order, honoring the key limit.
func loadInputs(cfg config.AppConfig) (inputs, error) {
	var in inputs
	if cfg.KeysDir != "" {
		ks, err := keys.LoadDirectory(cfg.KeysDir, cfg.Limit)
		if err != nil {
			return in, fmt.Errorf("loading %s: %w", cfg.KeysDir, err)
		}
		in.keys = append(in.keys, ks...)
	}
	for _, path := range cfg.HexFiles {
		ks, err := keys.LoadHexFile(path)
		if err != nil {
			return in, fmt.Errorf("loading %s: %w", path, err)
		}
		in.keys = append(in.keys, ks...)
	}
	if cfg.Limit > 0 && len(in.keys) > cfg.Limit {
		in.keys = in.keys[:cfg.Limit]
	}
	if cfg.AgainstFile != "" {
		ks, err := keys.LoadHexFile(cfg.AgainstFile)
		if err != nil {
			return in, fmt.Errorf("loading %s: %w", cfg.AgainstFile, err)
		}
		in.against = ks
	}
	return in, nil
}

// buildJob turns the inputs into a launch description for cfg.Scheme.
func buildJob(cfg config.AppConfig, in inputs) (batch.Job, error) {
	scheme, err := batch.ParseScheme(cfg.Scheme)
	if err != nil {
		return batch.Job{}, err
	}
	moduli := keys.Moduli(in.keys)
	if scheme == batch.Direct {
		n := min(len(in.keys), len(in.against))
		if n == 0 {
			return batch.Job{}, apperrors.NewConfigError("direct scheme needs keys on both sides")
		}
		return batch.DirectJob(moduli, keys.Moduli(in.against), n), nil
	}
	if len(moduli) < 2 {
		return batch.Job{}, apperrors.NewConfigError("at least two keys are needed, found %d", len(moduli))
	}
	total := batch.TotalPairs(len(moduli))
	pairs := total
	if cfg.Pairs > 0 {
		pairs = min(cfg.Pairs, total)
	}
	return batch.SelectionJob(moduli, moduli, pairs, len(moduli)), nil
}

func (a *Application) runners(algorithms []string) ([]orchestration.Runner, error) {
	if a.Config.Host {
		return orchestration.HostRunners(a.Factory, algorithms)
	}
	opts := append(a.Config.BatchOptions(), batch.WithLogger(logging.NewConsoleLogger(a.ErrWriter, "batch", a.Config.NoColor)))
	return orchestration.DeviceRunners(algorithms, opts...), nil
}

// runScan loads the keys, runs every selected algorithm, cross-checks the
// results and reports the shared factors.
func (a *Application) runScan(ctx context.Context, out io.Writer) int {
	ctx, lc := SetupLifecycle(ctx, a.Config.Timeout)
	defer lc.Cleanup()
	start := time.Now()

	in, err := loadInputs(a.Config)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorInput
	}
	job, err := buildJob(a.Config, in)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCode(err)
	}

	algorithms := cli.SelectAlgorithms(a.Config.Algo, a.Factory.List())
	runners, err := a.runners(algorithms)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	verbose := !a.Config.JSONOutput && !a.Config.Quiet
	progressOut := out
	if !verbose {
		progressOut = io.Discard
	}
	if verbose {
		cli.PrintExecutionConfig(a.Config, cli.ScanSummary{
			Keys:       len(in.keys),
			Units:      job.Count,
			Workers:    a.Config.Workers,
			GroupWidth: a.Config.GroupWidth,
		}, out)
		cli.PrintExecutionMode(algorithms, out)
	}

	results := orchestration.ExecuteBatches(ctx, runners, job, progressOut)
	if code := orchestration.AnalyzeComparisonResults(results, progressOut); code != apperrors.ExitSuccess {
		if !verbose {
			reportFailure(a.ErrWriter, results, code)
		}
		return code
	}
	best := orchestration.Fastest(results)

	if a.Config.Verify {
		if err := orchestration.VerifyResults(ctx, job, best.Results); err != nil {
			fmt.Fprintf(a.ErrWriter, "Verification failed: %v\n", err)
			if apperrors.IsContextError(err) {
				return apperrors.HandleRunError(err, time.Since(start), a.ErrWriter, ui.Colors{})
			}
			return apperrors.ExitErrorMismatch
		}
	}

	findings, err := report.Analyze(job, best.Results, in.names())
	if err == nil && a.Config.Verify {
		err = report.Verify(findings)
	}
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorMismatch
	}

	summary := report.Summary{
		Algorithm:  best.Name,
		Scheme:     job.Scheme.String(),
		Keys:       len(in.keys),
		Units:      job.Count,
		Efficiency: best.Stats.Efficiency,
		Duration:   best.Duration,
		Verified:   a.Config.Verify,
		Findings:   findings,
	}
	if code := a.writeOutput(out, summary, best.Stats, in.names()); code != apperrors.ExitSuccess {
		return code
	}

	if a.Config.Strict && len(findings) > 0 {
		return apperrors.ExitWeakKeys
	}
	return apperrors.ExitSuccess
}

// reportFailure prints a one-line reason to w when the comparison table was
// suppressed.
func reportFailure(w io.Writer, results []orchestration.BatchResult, code int) {
	if code == apperrors.ExitErrorMismatch {
		fmt.Fprintln(w, "Error: algorithms disagree on the batch results")
		return
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "Error: %v\n", r.Err)
			return
		}
	}
}

func (a *Application) writeOutput(out io.Writer, s report.Summary, stats batch.Stats, names []string) int {
	switch {
	case a.Config.JSONOutput:
		if err := report.WriteJSON(out, s); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error writing JSON: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	case a.Config.Quiet:
		cli.DisplayQuietFindings(out, s.Findings, names)
	default:
		if a.Config.Details {
			cli.DisplayStats(out, stats)
		}
		if err := cli.DisplayFindings(out, s.Findings, s.Keys); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
	}

	if path := a.Config.OutputFile; path != "" {
		asJSON := a.Config.JSONOutput || strings.EqualFold(filepath.Ext(path), ".json")
		if err := cli.WriteReportFile(path, s, asJSON); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		if !a.Config.Quiet && !a.Config.JSONOutput {
			fmt.Fprintf(out, "\n%sReport saved to: %s%s%s\n", cli.ColorGreen(), cli.ColorCyan(), path, cli.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// IsHelpError reports whether err comes from -h or -help.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
