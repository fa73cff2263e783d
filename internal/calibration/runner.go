package calibration

import (
	"context"
	"time"

	"github.com/agbru/rsagcd/internal/batch"
)

// trialResult is the outcome of one candidate width.
type trialResult struct {
	GroupWidth int
	Duration   time.Duration
	Efficiency float64
	Err        error
}

// calibrationRunner runs timed trials of one job.
type calibrationRunner struct {
	ctx       context.Context
	perTrial  time.Duration
	job       batch.Job
	algorithm string
	workers   int
}

func newCalibrationRunner(ctx context.Context, timeout time.Duration, job batch.Job, algorithm string, workers int) *calibrationRunner {
	perTrial := max(timeout/8, 2*time.Second)
	return &calibrationRunner{ctx: ctx, perTrial: perTrial, job: job, algorithm: algorithm, workers: workers}
}

func (r *calibrationRunner) runTrial(width int) trialResult {
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()
	o := batch.New(batch.WithGroupWidth(width), batch.WithWorkers(r.workers))
	start := time.Now()
	_, stats, err := o.Run(ctx, r.job, r.algorithm)
	return trialResult{GroupWidth: width, Duration: time.Since(start), Efficiency: stats.Efficiency, Err: err}
}

// findBestGroupWidth runs every candidate and returns all trials with the
// fastest successful width, or fallback when none succeeded.
func (r *calibrationRunner) findBestGroupWidth(candidates []int, fallback int) (int, []trialResult) {
	best := fallback
	bestDur := time.Duration(1<<63 - 1)
	results := make([]trialResult, 0, len(candidates))
	for _, w := range candidates {
		if r.ctx.Err() != nil {
			break
		}
		res := r.runTrial(w)
		results = append(results, res)
		if res.Err == nil && res.Duration < bestDur {
			best, bestDur = w, res.Duration
		}
	}
	return best, results
}
