package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/report"
)

// DisplayStats prints the launch statistics of one batch.
func DisplayStats(out io.Writer, s batch.Stats) {
	fmt.Fprintf(out, "\n%s--- Launch statistics (%s) ---%s\n", ColorBold(), s.Algorithm, ColorReset())
	fmt.Fprintf(out, "Units                 : %s\n", paint(ColorCyan, fmt.Sprint(s.Units)))
	if s.Groups > 0 {
		fmt.Fprintf(out, "Groups x width        : %d x %d on %d workers\n", s.Groups, s.GroupWidth, s.Workers)
		fmt.Fprintf(out, "Iterations (max lane) : %d (%d)\n", s.Iterations, s.MaxIterations)
		fmt.Fprintf(out, "Lockstep efficiency   : %s\n", paint(ColorGreen, fmt.Sprintf("%.1f%%", 100*s.Efficiency)))
	}
	fmt.Fprintf(out, "Elapsed               : %s\n", paint(ColorYellow, FormatExecutionDuration(s.Duration)))
}

// DisplayFindings prints the findings of a scan over keys inputs.
func DisplayFindings(out io.Writer, findings []report.Finding, keys int) error {
	vulnerable := report.Vulnerable(findings)
	if len(findings) == 0 {
		fmt.Fprintf(out, "\n%s\n", paint(ColorGreen, fmt.Sprintf("No shared factors found among %d keys.", keys)))
		return nil
	}
	fmt.Fprintf(out, "\n%s--- Findings ---%s\n", ColorBold(), ColorReset())
	if err := report.WriteText(out, findings); err != nil {
		return err
	}
	for _, f := range findings {
		if f.Duplicate {
			continue
		}
		fmt.Fprintf(out, "  %s and %s share p = %s\n", f.SourceI, f.SourceJ, paint(ColorRed, shorten(f.Factor.Text(16))))
	}
	fmt.Fprintf(out, "\n%s\n", paint(ColorRed,
		fmt.Sprintf("%d of %d keys are vulnerable (%d findings).", len(vulnerable), keys, len(findings))))
	return nil
}

// DisplayQuietFindings prints the source of every vulnerable key, one per
// line, for scripting.
func DisplayQuietFindings(out io.Writer, findings []report.Finding, names []string) {
	for _, i := range report.Vulnerable(findings) {
		if i < len(names) {
			fmt.Fprintln(out, names[i])
		} else {
			fmt.Fprintf(out, "#%d\n", i)
		}
	}
}

// WriteReportFile writes s to path as JSON, or as a text table when asJSON
// is false, creating parent directories as needed.
func WriteReportFile(path string, s report.Summary, asJSON bool) (err error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if asJSON {
		return report.WriteJSON(f, s)
	}
	fmt.Fprintf(f, "# rsagcd report\n# Algorithm: %s\n# Scheme: %s\n# Keys: %d\n# Units: %d\n# Duration: %s\n\n",
		s.Algorithm, s.Scheme, s.Keys, s.Units, s.Duration)
	return report.WriteText(f, s.Findings)
}
