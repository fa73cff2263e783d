// Package gcd provides sequential greatest-common-divisor algorithms over
// bignum.BigNum. It exposes an `Algorithm` interface that abstracts the
// reduction strategy (classic subtraction Euclid, binary Euclid and the fast
// binary variant) so that the batch and comparison layers can use them
// interchangeably. Every algorithm is wrapped by an Engine that validates
// inputs, handles the zero cases and records metrics.
package gcd

import (
	"context"
	"time"

	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// cancelCheckInterval is the number of reduction steps between two context
// checks in the core loops.
const cancelCheckInterval = 4096

var (
	gcdTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsagcd_gcd_total",
			Help: "The total number of sequential GCD computations processed",
		},
		[]string{"algorithm", "status"},
	)
	gcdDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rsagcd_gcd_duration_seconds",
			Help:    "The duration of sequential GCD computations in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
		},
		[]string{"algorithm"},
	)
)

// Algorithm is the public interface of a sequential GCD algorithm.
type Algorithm interface {
	// GCD returns gcd(a, b). The inputs are never modified. It reports
	// bignum.ErrMalformedInput for invalid operands, bignum.ErrZeroInput when
	// both are zero and the context error when cancelled.
	GCD(ctx context.Context, a, b *bignum.BigNum) (*bignum.BigNum, error)

	// Name returns the registry name of the algorithm (e.g. "binary").
	Name() string
}

// coreAlgorithm is the pure reduction loop. It receives private, non-zero,
// validated copies that it may destroy.
type coreAlgorithm interface {
	gcd(ctx context.Context, a, b *bignum.BigNum) (*bignum.BigNum, error)
	Name() string
}

// Engine decorates a coreAlgorithm with validation, zero handling,
// tracing, metrics and logging.
type Engine struct {
	core coreAlgorithm
}

// NewEngine wraps core. It panics if core is nil.
func NewEngine(core coreAlgorithm) Algorithm {
	if core == nil {
		panic("gcd: the `coreAlgorithm` implementation cannot be nil")
	}
	return &Engine{core: core}
}

// Name delegates to the wrapped algorithm.
func (e *Engine) Name() string {
	return e.core.Name()
}

// GCD validates a and b, resolves the zero cases, then runs the core loop on
// copies of the operands.
//
// Parameters:
//   - ctx: The context for cancellation; checked periodically by the loop.
//   - a, b: The operands. They are left untouched.
//
// Returns:
//   - *bignum.BigNum: A new growable number holding gcd(a, b).
//   - error: A validation, zero-input or context error.
func (e *Engine) GCD(ctx context.Context, a, b *bignum.BigNum) (result *bignum.BigNum, err error) {
	tracer := otel.Tracer("gcd")
	ctx, span := tracer.Start(ctx, "GCD")
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
		}
		name := e.core.Name()
		gcdTotal.WithLabelValues(name, status).Inc()
		gcdDuration.WithLabelValues(name).Observe(duration)
		span.SetAttributes(attribute.String("algorithm", name), attribute.String("status", status))

		log.Debug().
			Str("algo", name).
			Int("bits_a", bitsOrZero(a)).
			Int("bits_b", bitsOrZero(b)).
			Float64("duration", duration).
			Str("status", status).
			Msg("gcd completed")
	}()

	if err := a.Validate(); err != nil {
		return nil, &bignum.OpError{Op: "gcd", Err: err}
	}
	if err := b.Validate(); err != nil {
		return nil, &bignum.OpError{Op: "gcd", Err: err}
	}
	switch {
	case a.IsZero() && b.IsZero():
		return nil, &bignum.OpError{Op: "gcd", Err: bignum.ErrZeroInput}
	case a.IsZero():
		return b.Clone(), nil
	case b.IsZero():
		return a.Clone(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.core.gcd(ctx, a.Clone(), b.Clone())
}

func bitsOrZero(z *bignum.BigNum) int {
	if z.Validate() != nil {
		return 0
	}
	return z.NumBits()
}

// checkCancel reports the context error once every cancelCheckInterval
// steps.
func checkCancel(ctx context.Context, step int) error {
	if step%cancelCheckInterval != 0 {
		return nil
	}
	return ctx.Err()
}
