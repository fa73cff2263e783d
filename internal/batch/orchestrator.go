package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/device"
	"github.com/agbru/rsagcd/internal/logging"
	"github.com/agbru/rsagcd/internal/parallel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// errAbandoned stops the scheduling of further groups once a group failed.
var errAbandoned = errors.New("batch abandoned")

// Orchestrator launches batches of device kernels.
type Orchestrator struct {
	logger     logging.Logger
	workers    int
	groupWidth  int
	stepsPerBit int
	progress    chan<- Progress
}

// New returns an Orchestrator. By default it uses one worker per CPU, groups
// of DefaultGroupWidth lanes, device.DefaultStepsPerBit and a discarding
// logger.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:      logging.Nop(),
		workers:     parallel.DefaultWorkers(),
		groupWidth:  DefaultGroupWidth,
		stepsPerBit: device.DefaultStepsPerBit,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Workers returns the concurrency bound.
func (o *Orchestrator) Workers() int { return o.workers }

// GroupWidth returns the number of lanes per group.
func (o *Orchestrator) GroupWidth() int { return o.groupWidth }

// RunBatch computes C[k] = gcd(A[k], B[k]) for k < n with the named kernel.
// Entries of C that are nil are allocated. Nothing is written to C unless the
// whole batch succeeds.
func (o *Orchestrator) RunBatch(ctx context.Context, a, b, c []*bignum.BigNum, n int, algorithm string) (Stats, error) {
	if len(c) < n {
		return Stats{}, fmt.Errorf("batch: output holds %d entries, need %d: %w", len(c), n, bignum.ErrPreconditionViolation)
	}
	results, stats, err := o.Run(ctx, DirectJob(a, b, n), algorithm)
	if err != nil {
		return stats, err
	}
	return stats, store(c, results)
}

// RunBatchSelection computes R[k] = gcd(A[i], B[j]) for the first pairCount
// pairs (i, j) of the lexicographic enumeration of pairs of keyCount keys.
// It requires 1 <= pairCount <= keyCount(keyCount-1)/2. Nothing is written to
// R unless the whole batch succeeds.
func (o *Orchestrator) RunBatchSelection(ctx context.Context, a, b, r []*bignum.BigNum, pairCount, keyCount int, algorithm string) (Stats, error) {
	if len(r) < pairCount {
		return Stats{}, fmt.Errorf("batch: output holds %d entries, need %d: %w", len(r), pairCount, bignum.ErrPreconditionViolation)
	}
	results, stats, err := o.Run(ctx, SelectionJob(a, b, pairCount, keyCount), algorithm)
	if err != nil {
		return stats, err
	}
	return stats, store(r, results)
}

func store(dst, results []*bignum.BigNum) error {
	for k, res := range results {
		if dst[k] == nil {
			dst[k] = res
			continue
		}
		if err := dst[k].Set(res); err != nil {
			return fmt.Errorf("batch: storing result %d: %w", k, err)
		}
	}
	return nil
}

// Run validates job, stages it in device memory, launches every group and
// downloads the results after the final barrier. The context is observed
// between groups only; a group that has started always runs to completion.
func (o *Orchestrator) Run(ctx context.Context, job Job, algorithm string) ([]*bignum.BigNum, Stats, error) {
	kernel, err := device.Lookup(algorithm)
	if err != nil {
		return nil, Stats{Algorithm: algorithm, Scheme: job.Scheme}, fmt.Errorf("batch: %w: %w", err, bignum.ErrPreconditionViolation)
	}
	return o.run(ctx, job, algorithm, kernel)
}

func (o *Orchestrator) run(ctx context.Context, job Job, algorithm string, kernel device.Kernel) (results []*bignum.BigNum, stats Stats, err error) {
	tracer := otel.Tracer("batch")
	ctx, span := tracer.Start(ctx, "RunBatch")
	defer span.End()

	stats = Stats{
		Algorithm:  algorithm,
		Scheme:     job.Scheme,
		Units:      job.Count,
		GroupWidth: o.groupWidth,
		Workers:    o.workers,
	}
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
		status := "success"
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = "canceled"
		default:
			status = "error"
		}
		batchesTotal.WithLabelValues(algorithm, job.Scheme.String(), status).Inc()
		batchDuration.WithLabelValues(algorithm, job.Scheme.String()).Observe(stats.Duration.Seconds())
		span.SetAttributes(
			attribute.String("algorithm", algorithm),
			attribute.String("scheme", job.Scheme.String()),
			attribute.Int("units", job.Count),
			attribute.Float64("efficiency", stats.Efficiency),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			o.logger.Error("batch failed", err,
				logging.String("algorithm", algorithm),
				logging.String("scheme", job.Scheme.String()),
				logging.Int("units", job.Count))
			return
		}
		unitsTotal.WithLabelValues(algorithm, job.Scheme.String()).Add(float64(job.Count))
		o.logger.Info("batch completed",
			logging.String("algorithm", algorithm),
			logging.String("scheme", job.Scheme.String()),
			logging.Int("units", stats.Units),
			logging.Int("groups", stats.Groups),
			logging.Int64("iterations", stats.Iterations),
			logging.Float64("efficiency", stats.Efficiency),
			logging.Duration("duration", stats.Duration))
	}()

	capacity, err := validate(job)
	if err != nil {
		return nil, stats, err
	}
	if job.Count == 0 {
		stats.Efficiency = 1
		return []*bignum.BigNum{}, stats, nil
	}

	st, err := stage(job, capacity)
	if err != nil {
		return nil, stats, err
	}
	groups, err := o.launch(ctx, kernel, st, job, algorithm)
	if err != nil {
		return nil, stats, err
	}
	stats.accumulate(groups, algorithm)

	results = make([]*bignum.BigNum, job.Count)
	for k := range results {
		results[k] = bignum.New()
		if err := st.mem.Download(st.result(k), results[k]); err != nil {
			return nil, stats, err
		}
	}
	return results, stats, nil
}

// staging is the device-side layout of a job: input slots followed by one
// result slot per unit.
type staging struct {
	mem     *device.Memory
	offsetB int
	offsetR int
}

func (s *staging) result(k int) int { return s.offsetR + k }

func stage(job Job, capacity int) (*staging, error) {
	inputs := job.Count
	if job.Scheme == Selection {
		inputs = job.Keys
	}
	shared := sameInputs(job.A, job.B, inputs)
	offsetB := inputs
	if shared {
		offsetB = 0
	}
	st := &staging{offsetB: offsetB, offsetR: offsetB + inputs}
	st.mem = device.NewMemory(st.offsetR+job.Count, capacity)
	for i := 0; i < inputs; i++ {
		if err := st.mem.Upload(i, job.A[i]); err != nil {
			return nil, fmt.Errorf("batch: upload A[%d]: %w", i, err)
		}
		if shared {
			continue
		}
		if err := st.mem.Upload(offsetB+i, job.B[i]); err != nil {
			return nil, fmt.Errorf("batch: upload B[%d]: %w", i, err)
		}
	}
	return st, nil
}

type groupStat struct {
	lanes      int
	iterations int64
	max        int
}

// launch runs every group of the job and waits for all of them.
func (o *Orchestrator) launch(ctx context.Context, kernel device.Kernel, st *staging, job Job, algorithm string) ([]groupStat, error) {
	width := o.groupWidth
	nGroups := (job.Count + width - 1) / width
	groups := make([]groupStat, nGroups)

	// One set of lane workspaces per worker, allocated before launch.
	budget := device.StepBudget(st.mem.Capacity(), o.stepsPerBit)
	pool := make(chan []device.Workspace, o.workers)
	for w := 0; w < o.workers; w++ {
		pool <- device.NewWorkspaces(width, st.mem.Capacity(), budget)
	}

	var ec parallel.ErrorCollector
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for gi := 0; gi < nGroups; gi++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			lanes := <-pool
			defer func() { pool <- lanes }()

			first := gi * width
			last := min(first+width, job.Count)
			ok := ec.Capture(gi, func() {
				groups[gi] = runGroup(kernel, st, job, lanes, first, last)
			})
			if !ok {
				return errAbandoned
			}
			o.report(algorithm, int(done.Add(int64(last-first))), job.Count)
			return nil
		})
	}
	_ = g.Wait()

	if err := ec.Err(); err != nil {
		var pe *parallel.PanicError
		group := -1
		if errors.As(err, &pe) {
			group = pe.Worker
		}
		return nil, &LaunchError{Algorithm: algorithm, Group: group, Failed: ec.Count(), Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// runGroup executes the lanes [first, last) of one group. Lane l of the group
// uses workspace l and computes unit first+l.
func runGroup(kernel device.Kernel, st *staging, job Job, lanes []device.Workspace, first, last int) groupStat {
	gs := groupStat{lanes: last - first}
	for k := first; k < last; k++ {
		ia, ib := job.Pair(k)
		steps := kernel(&lanes[k-first], st.mem.Slot(ia), st.mem.Slot(st.offsetB+ib), st.mem.Slot(st.result(k)))
		gs.iterations += int64(steps)
		gs.max = max(gs.max, steps)
	}
	return gs
}

func (o *Orchestrator) report(algorithm string, done, total int) {
	if o.progress == nil {
		return
	}
	select {
	case o.progress <- Progress{Algorithm: algorithm, Done: done, Total: total}:
	default:
	}
}

func (s *Stats) accumulate(groups []groupStat, algorithm string) {
	var lockstep int64
	s.Groups = len(groups)
	for _, gs := range groups {
		s.Iterations += gs.iterations
		s.MaxIterations = max(s.MaxIterations, gs.max)
		lockstep += int64(gs.lanes) * int64(gs.max)
		eff := 1.0
		if gs.max > 0 {
			eff = float64(gs.iterations) / float64(int64(gs.lanes)*int64(gs.max))
		}
		lockstepEfficiency.WithLabelValues(algorithm).Observe(eff)
	}
	kernelIterations.WithLabelValues(algorithm).Add(float64(s.Iterations))
	s.Efficiency = 1
	if lockstep > 0 {
		s.Efficiency = float64(s.Iterations) / float64(lockstep)
	}
}
