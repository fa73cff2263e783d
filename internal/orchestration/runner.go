package orchestration

import (
	"context"
	"time"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/gcd"
)

// Runner executes a whole batch job with one algorithm, reporting progress
// on progress, which may be nil.
type Runner interface {
	Name() string
	Run(ctx context.Context, job batch.Job, progress chan<- batch.Progress) ([]*bignum.BigNum, batch.Stats, error)
}

// DeviceRunner runs a job on the device kernels of Algorithm.
type DeviceRunner struct {
	Algorithm string
	// Options configure the orchestrator built for every run.
	Options []batch.Option
}

func (r DeviceRunner) Name() string { return r.Algorithm }

func (r DeviceRunner) Run(ctx context.Context, job batch.Job, progress chan<- batch.Progress) ([]*bignum.BigNum, batch.Stats, error) {
	opts := r.Options
	if progress != nil {
		opts = append(append([]batch.Option(nil), opts...), batch.WithProgress(progress))
	}
	return batch.New(opts...).Run(ctx, job, r.Algorithm)
}

// HostRunner runs a job unit by unit on a sequential algorithm.
type HostRunner struct {
	Algorithm gcd.Algorithm
}

func (r HostRunner) Name() string { return r.Algorithm.Name() }

func (r HostRunner) Run(ctx context.Context, job batch.Job, progress chan<- batch.Progress) ([]*bignum.BigNum, batch.Stats, error) {
	start := time.Now()
	results, err := batch.RunHost(ctx, r.Algorithm, job)
	stats := batch.Stats{
		Algorithm: r.Name(),
		Scheme:    job.Scheme,
		Units:     job.Count,
		Workers:   1,
		Duration:  time.Since(start),
	}
	if err != nil {
		return nil, stats, err
	}
	if progress != nil {
		select {
		case progress <- batch.Progress{Algorithm: r.Name(), Done: job.Count, Total: job.Count}:
		default:
		}
	}
	return results, stats, nil
}

// DeviceRunners returns one DeviceRunner per algorithm sharing opts.
func DeviceRunners(algorithms []string, opts ...batch.Option) []Runner {
	out := make([]Runner, len(algorithms))
	for i, name := range algorithms {
		out[i] = DeviceRunner{Algorithm: name, Options: opts}
	}
	return out
}

// HostRunners returns one HostRunner per algorithm, resolved through
// factory.
func HostRunners(factory gcd.Factory, algorithms []string) ([]Runner, error) {
	out := make([]Runner, len(algorithms))
	for i, name := range algorithms {
		alg, err := factory.Get(name)
		if err != nil {
			return nil, err
		}
		out[i] = HostRunner{Algorithm: alg}
	}
	return out, nil
}
