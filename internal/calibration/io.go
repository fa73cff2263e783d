package calibration

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/agbru/rsagcd/internal/cli"
	"github.com/agbru/rsagcd/internal/ui"
)

// printCalibrationResults prints one row per trial and marks best.
func printCalibrationResults(out io.Writer, results []trialResult, best int) {
	fmt.Fprintf(out, "\n--- Calibration Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sGroup width%s │ %sExecution Time%s │ %sEfficiency%s\n",
		ui.ColorUnderline(), cli.ColorReset(), ui.ColorUnderline(), cli.ColorReset(), ui.ColorUnderline(), cli.ColorReset())
	fmt.Fprintf(tw, "  %s┼%s┼%s\n", strings.Repeat("─", 12), strings.Repeat("─", 16), strings.Repeat("─", 12))
	for _, res := range results {
		durationStr := fmt.Sprintf("%sN/A%s", cli.ColorRed(), cli.ColorReset())
		efficiency := "-"
		if res.Err == nil {
			durationStr = cli.FormatExecutionDuration(res.Duration)
			efficiency = fmt.Sprintf("%.1f%%", res.Efficiency*100)
		}
		highlight := ""
		if res.GroupWidth == best && res.Err == nil {
			highlight = fmt.Sprintf(" %s(Optimal)%s", cli.ColorGreen(), cli.ColorReset())
		}
		fmt.Fprintf(tw, "  %s%-10d%s │ %s%-14s%s │ %s%s\n",
			cli.ColorCyan(), res.GroupWidth, cli.ColorReset(),
			cli.ColorYellow(), durationStr, cli.ColorReset(), efficiency, highlight)
	}
	tw.Flush()
}

func printRecommendation(out io.Writer, width, workers int) {
	fmt.Fprintf(out, "\n%sRecommendation for this machine: %s-group-width %d -workers %d%s\n",
		cli.ColorGreen(), cli.ColorYellow(), width, workers, cli.ColorReset())
}
