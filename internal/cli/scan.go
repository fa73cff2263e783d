package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/rsagcd/internal/config"
	"github.com/agbru/rsagcd/internal/ui"
)

// SelectAlgorithms resolves the -algo setting against the registered names,
// which are assumed sorted. "all" selects every name; an unknown name
// selects nothing.
func SelectAlgorithms(algo string, registered []string) []string {
	if algo == "all" {
		return append([]string(nil), registered...)
	}
	for _, name := range registered {
		if name == algo {
			return []string{name}
		}
	}
	return nil
}

// ScanSummary describes the loaded inputs of a scan for the banner.
type ScanSummary struct {
	Keys       int
	Units      int
	Workers    int
	GroupWidth int
}

// PrintExecutionConfig writes the execution banner.
func PrintExecutionConfig(cfg config.AppConfig, s ScanSummary, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Scanning %s keys (%s units, %s scheme) with a timeout of %s.\n",
		paint(ColorMagenta, fmt.Sprint(s.Keys)), paint(ColorMagenta, fmt.Sprint(s.Units)),
		cfg.Scheme, paint(ColorYellow, cfg.Timeout.String()))
	fmt.Fprintf(out, "Environment: %s logical processors, Go %s.\n",
		paint(ColorCyan, fmt.Sprint(runtime.NumCPU())), paint(ColorCyan, runtime.Version()))
	if cfg.Host {
		fmt.Fprintf(out, "Engine: sequential host baseline.\n")
	} else {
		fmt.Fprintf(out, "Engine: device kernels, %s lanes per group, %s workers.\n",
			paint(ColorCyan, fmt.Sprint(s.GroupWidth)), paint(ColorCyan, fmt.Sprint(s.Workers)))
	}
}

// PrintExecutionMode states whether one algorithm runs or several are
// compared.
func PrintExecutionMode(algorithms []string, out io.Writer) {
	var mode string
	if len(algorithms) == 1 {
		mode = "Single batch with the " + paint(ColorGreen, algorithms[0]) + " algorithm"
	} else {
		mode = fmt.Sprintf("Parallel comparison of %d algorithms", len(algorithms))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", mode)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

// Color accessors of the active theme.
func ColorReset() string   { return ui.ColorReset() }
func ColorRed() string     { return ui.ColorRed() }
func ColorGreen() string   { return ui.ColorGreen() }
func ColorYellow() string  { return ui.ColorYellow() }
func ColorBlue() string    { return ui.ColorBlue() }
func ColorMagenta() string { return ui.ColorMagenta() }
func ColorCyan() string    { return ui.ColorCyan() }
func ColorBold() string    { return ui.ColorBold() }
