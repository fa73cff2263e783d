// Package orchestration runs one batch job under several algorithms at once
// and checks that they agree, unit by unit.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/cli"
	apperrors "github.com/agbru/rsagcd/internal/errors"
	"github.com/agbru/rsagcd/internal/ui"
)

// BatchResult is the outcome of one Runner on a job.
type BatchResult struct {
	Name     string
	Results  []*bignum.BigNum
	Stats    batch.Stats
	Duration time.Duration
	Err      error
}

// ProgressBufferMultiplier sizes the shared progress channel per runner.
const ProgressBufferMultiplier = 16

// ExecuteBatches runs job under every runner concurrently and returns their
// results in runner order. Progress is rendered to out while they run. A
// failing runner does not stop the others.
func ExecuteBatches(ctx context.Context, runners []Runner, job batch.Job, out io.Writer) []BatchResult {
	var g errgroup.Group
	results := make([]BatchResult, len(runners))
	progressChan := make(chan batch.Progress, len(runners)*ProgressBufferMultiplier)

	names := make([]string, len(runners))
	for i, r := range runners {
		names[i] = r.Name()
	}
	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, names, out)

	for i, r := range runners {
		g.Go(func() error {
			start := time.Now()
			res, stats, err := r.Run(ctx, job, progressChan)
			results[i] = BatchResult{
				Name:     r.Name(),
				Results:  res,
				Stats:    stats,
				Duration: time.Since(start),
				Err:      apperrors.NewRunError(r.Name(), err),
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()
	return results
}

// Fastest returns the successful result with the shortest duration, or nil
// when every runner failed.
func Fastest(results []BatchResult) *BatchResult {
	var best *BatchResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if best == nil || results[i].Duration < best.Duration {
			best = &results[i]
		}
	}
	return best
}

// Mismatch describes the first unit on which two algorithms disagree.
type Mismatch struct {
	Unit        int
	Left, Right string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("unit %d: %s and %s disagree", m.Unit, m.Left, m.Right)
}

// Compare checks every successful result against the first successful one
// and returns the disagreements, at most one per algorithm.
func Compare(results []BatchResult) []Mismatch {
	var ref *BatchResult
	var out []Mismatch
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if ref == nil {
			ref = r
			continue
		}
		if len(r.Results) != len(ref.Results) {
			out = append(out, Mismatch{Unit: min(len(r.Results), len(ref.Results)), Left: ref.Name, Right: r.Name})
			continue
		}
		for k := range r.Results {
			if r.Results[k].Cmp(ref.Results[k]) != bignum.Equal {
				out = append(out, Mismatch{Unit: k, Left: ref.Name, Right: r.Name})
				break
			}
		}
	}
	return out
}

// AnalyzeComparisonResults prints a summary table of results, fastest
// first, and returns the exit code of the comparison: success when at least
// one algorithm completed and all completed ones agree.
func AnalyzeComparisonResults(results []BatchResult, out io.Writer) int {
	sorted := append([]BatchResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if (sorted[i].Err == nil) != (sorted[j].Err == nil) {
			return sorted[i].Err == nil
		}
		return sorted[i].Duration < sorted[j].Duration
	})

	var firstError error
	successCount := 0

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sAlgorithm%s\t%sDuration%s\t%sEfficiency%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	for _, res := range sorted {
		status := fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			successCount++
		}
		efficiency := "-"
		if res.Err == nil && res.Stats.Groups > 0 {
			efficiency = fmt.Sprintf("%.1f%%", 100*res.Stats.Efficiency)
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), duration, ui.ColorReset(),
			efficiency, status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if successCount == 0 {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the batch.\n")
		return apperrors.HandleRunError(firstError, 0, out, ui.Colors{})
	}
	if mismatches := Compare(results); len(mismatches) > 0 {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the results of the algorithms.\n")
		for _, m := range mismatches {
			fmt.Fprintf(out, "  %s\n", m)
		}
		return apperrors.ExitErrorMismatch
	}
	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	return apperrors.ExitSuccess
}
