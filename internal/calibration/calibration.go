package calibration

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/cli"
	"github.com/agbru/rsagcd/internal/config"
	apperrors "github.com/agbru/rsagcd/internal/errors"
	"github.com/agbru/rsagcd/internal/ui"
)

// Options controls a calibration run.
type Options struct {
	// Algorithm is the engine benchmarked; empty selects config.DefaultAlgo.
	Algorithm string
	// ProfilePath is where the result is saved; empty selects the default.
	ProfilePath string
	SaveProfile bool
	// Timeout bounds the whole run; zero selects one minute.
	Timeout time.Duration
	// Units is the number of GCDs per trial; zero selects benchUnits.
	Units int
	// Hardware overrides detection, for tests.
	Hardware *Hardware
}

// RunCalibration benchmarks the candidate group widths with algorithm and
// saves the fastest to the default profile.
func RunCalibration(ctx context.Context, out io.Writer, algorithm string) int {
	return RunCalibrationWithOptions(ctx, out, Options{Algorithm: algorithm, SaveProfile: true})
}

// RunCalibrationWithOptions benchmarks every candidate group width on a
// fixed random direct job and prints the results. It returns a process exit
// code.
func RunCalibrationWithOptions(ctx context.Context, out io.Writer, opts Options) int {
	h := DetectHardware()
	if opts.Hardware != nil {
		h = *opts.Hardware
	}
	algorithm := opts.Algorithm
	if algorithm == "" || algorithm == "all" {
		algorithm = config.DefaultAlgo
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	units := opts.Units
	if units <= 0 {
		units = benchUnits
	}

	fmt.Fprintf(out, "--- Calibration Mode: Finding the Optimal Group Width ---\n")
	fmt.Fprintf(out, "%sHardware: %s%s\n", cli.ColorCyan(), h, cli.ColorReset())
	fmt.Fprintf(out, "Benchmarking %s on %d GCDs of %d-bit operands\n", algorithm, units, benchWords*bignum.WordBits)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	workers := EstimateWorkers(h)
	start := time.Now()
	r := newCalibrationRunner(ctx, timeout, benchJob(units, benchWords, benchSeed), algorithm, workers)
	best, results := r.findBestGroupWidth(CandidateGroupWidths(h), 0)

	if best == 0 {
		if err := firstError(results); err != nil {
			if ctx.Err() != nil {
				return apperrors.HandleRunError(ctx.Err(), time.Since(start), out, ui.Colors{})
			}
			fmt.Fprintf(out, "\n%sCalibration failed: %v%s\n", cli.ColorRed(), err, cli.ColorReset())
			return apperrors.ExitCode(err)
		}
		fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", cli.ColorYellow(), cli.ColorReset())
		return apperrors.ExitErrorCanceled
	}

	printCalibrationResults(out, results, best)
	printRecommendation(out, best, workers)

	if opts.SaveProfile {
		p := NewProfile(h)
		p.Algorithm = algorithm
		p.GroupWidth = best
		p.Workers = workers
		p.CalibrationTime = time.Since(start).String()
		if err := p.SaveProfile(opts.ProfilePath); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n", cli.ColorYellow(), err, cli.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n", cli.ColorGreen(), resolvePath(opts.ProfilePath), cli.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

func firstError(results []trialResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// LoadCachedCalibration fills the unset tuning fields of cfg from the
// profile at profilePath. It reports whether a profile valid for this
// machine was applied.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (config.AppConfig, bool) {
	return loadCached(cfg, profilePath, DetectHardware())
}

func loadCached(cfg config.AppConfig, profilePath string, h Hardware) (config.AppConfig, bool) {
	p, err := LoadProfile(profilePath)
	if err != nil || !p.IsValidFor(h) {
		return cfg, false
	}
	if cfg.GroupWidth == 0 {
		cfg.GroupWidth = ClampGroupWidth(p.GroupWidth)
	}
	if cfg.Workers == 0 {
		cfg.Workers = p.Workers
	}
	return cfg, true
}

// ApplyAdaptive fills the unset tuning fields of cfg from the hardware
// heuristics.
func ApplyAdaptive(cfg config.AppConfig) config.AppConfig {
	h := DetectHardware()
	if cfg.GroupWidth == 0 {
		cfg.GroupWidth = EstimateGroupWidth(h)
	}
	if cfg.Workers == 0 {
		cfg.Workers = EstimateWorkers(h)
	}
	return cfg
}
