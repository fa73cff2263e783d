// Package config defines the rsagcd configuration, parses it from
// command-line flags and RSAGCD_ environment variables, and validates it.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/agbru/rsagcd/internal/batch"
	apperrors "github.com/agbru/rsagcd/internal/errors"
	"github.com/agbru/rsagcd/internal/logging"
)

// EnvPrefix prefixes every environment variable read by rsagcd.
const EnvPrefix = "RSAGCD_"

// Defaults.
const (
	DefaultTimeout  = 30 * time.Minute
	DefaultPort     = "8080"
	DefaultAlgo     = "fast-binary"
	DefaultScheme   = "selection"
	DefaultLogLevel = "warn"
)

// AppConfig holds every setting of a run.
type AppConfig struct {
	// KeysDir is a directory of PEM files (public keys, certificates or
	// private keys) whose moduli are scanned.
	KeysDir string
	// HexFiles lists files of hexadecimal moduli, one per line. Positional
	// arguments are appended here.
	HexFiles []string
	// AgainstFile holds the second operand list of the direct scheme.
	AgainstFile string
	// Limit caps the number of keys loaded; 0 loads everything.
	Limit int

	// Algo is a registered algorithm name, or "all" to run and compare
	// every kernel on the same batch.
	Algo string
	// Scheme is "direct" or "selection".
	Scheme string
	// Pairs is the number of key pairs scanned by the selection scheme;
	// 0 means every pair.
	Pairs int
	// Workers bounds the groups running concurrently; 0 lets calibration
	// decide.
	Workers int
	// GroupWidth is the number of lanes per lockstep group; 0 lets
	// calibration decide.
	GroupWidth int
	// Host runs the sequential engines instead of the device kernels.
	Host bool
	// Verify checks every result against the reference implementation.
	Verify bool
	// Strict makes a run that finds weak keys exit with ExitWeakKeys.
	Strict bool
	Timeout time.Duration

	// OutputFile, when set, also receives the report (JSON with -json).
	OutputFile string
	JSONOutput bool
	Quiet      bool
	// Details prints per-algorithm launch statistics.
	Details bool
	NoColor bool
	LogLevel string

	ServerMode bool
	Port       string
	// Calibrate runs the group-width benchmark and exits.
	Calibrate bool
	// CalibrationProfile is the path of the cached calibration profile;
	// empty selects the default location in the home directory.
	CalibrationProfile string
	// Version prints build information and exits.
	Version bool
}

// BatchOptions converts the tuning settings into orchestrator options.
func (c AppConfig) BatchOptions() []batch.Option {
	return []batch.Option{batch.WithWorkers(c.Workers), batch.WithGroupWidth(c.GroupWidth)}
}

// HasInput reports whether any key source was configured.
func (c AppConfig) HasInput() bool {
	return c.KeysDir != "" || len(c.HexFiles) > 0
}

// Validate checks that the values are in range and mutually consistent.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Limit < 0 {
		return apperrors.NewConfigError("key limit cannot be negative: %d", c.Limit)
	}
	if c.Pairs < 0 {
		return apperrors.NewConfigError("pair count cannot be negative: %d", c.Pairs)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("worker count cannot be negative: %d", c.Workers)
	}
	if c.GroupWidth < 0 {
		return apperrors.NewConfigError("group width cannot be negative: %d", c.GroupWidth)
	}
	if c.Algo != "all" && !slices.Contains(availableAlgos, c.Algo) {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	scheme, err := batch.ParseScheme(c.Scheme)
	if err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if c.ServerMode || c.Calibrate || c.Version {
		return nil
	}
	if !c.HasInput() {
		return apperrors.NewConfigError("no keys given: use -keys DIR, -hex FILE or positional hex files")
	}
	switch scheme {
	case batch.Direct:
		if c.AgainstFile == "" {
			return apperrors.NewConfigError("the direct scheme needs -against FILE")
		}
		if c.Pairs != 0 {
			return apperrors.NewConfigError("-pairs only applies to the selection scheme")
		}
	case batch.Selection:
		if c.AgainstFile != "" {
			return apperrors.NewConfigError("-against only applies to the direct scheme")
		}
	}
	return nil
}

// ParseConfig parses args (without the program name) into an AppConfig,
// applies environment overrides for flags left unset and validates the
// result. Usage and errors are written to errorWriter.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Algorithm to use: 'all' or one of [%s].", strings.Join(availableAlgos, ", "))

	config := AppConfig{}
	fs.StringVar(&config.KeysDir, "keys", "", "Directory of PEM keys or certificates to scan.")
	fs.Func("hex", "File of hexadecimal moduli, one per line (repeatable).", func(v string) error {
		config.HexFiles = append(config.HexFiles, v)
		return nil
	})
	fs.StringVar(&config.AgainstFile, "against", "", "Hex moduli file paired line by line with the keys (direct scheme).")
	fs.IntVar(&config.Limit, "limit", 0, "Maximum number of keys to load (0 for no limit).")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.StringVar(&config.Scheme, "scheme", DefaultScheme, "Input scheme: 'direct' or 'selection'.")
	fs.IntVar(&config.Pairs, "pairs", 0, "Number of key pairs to scan in selection scheme (0 for all).")
	fs.IntVar(&config.Workers, "workers", 0, "Groups executing concurrently (0 to auto-detect).")
	fs.IntVar(&config.GroupWidth, "group-width", 0, "Lanes per lockstep group (0 to auto-detect).")
	fs.BoolVar(&config.Host, "host", false, "Run the sequential engines instead of the device kernels.")
	fs.BoolVar(&config.Verify, "verify", false, "Check every result against the reference implementation.")
	fs.BoolVar(&config.Strict, "strict", false, "Exit with a non-zero status when weak keys are found.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the scan.")
	fs.StringVar(&config.OutputFile, "output", "", "Also write the report to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file (shorthand).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output the report in JSON format.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode: print the vulnerable key sources only.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Details, "details", false, "Display launch statistics.")
	fs.BoolVar(&config.Details, "d", false, "Alias for -details.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn or error.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Benchmark group widths on this machine and exit.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path of the cached calibration profile.")
	fs.BoolVar(&config.Version, "version", false, "Print version information and exit.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	config.HexFiles = append(config.HexFiles, fs.Args()...)

	applyEnvOverrides(&config, fs)

	config.Algo = strings.ToLower(config.Algo)
	config.Scheme = strings.ToLower(config.Scheme)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.Join(errInvalid, err)
	}
	return config, nil
}

var errInvalid = errors.New("invalid configuration")
