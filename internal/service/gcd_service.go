// Package service exposes GCD computation and shared-factor scanning to the
// HTTP server, applying the request size limits in one place.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/config"
	"github.com/agbru/rsagcd/internal/device"
	"github.com/agbru/rsagcd/internal/gcd"
	"github.com/agbru/rsagcd/internal/report"
)

var (
	// ErrOperandTooLarge is returned when an operand exceeds Limits.MaxBits.
	ErrOperandTooLarge = errors.New("operand exceeds maximum size")
	// ErrTooManyModuli is returned when a scan exceeds Limits.MaxModuli.
	ErrTooManyModuli = errors.New("too many moduli")
	// ErrTooFewModuli is returned when a scan has fewer than two moduli.
	ErrTooFewModuli = errors.New("at least two moduli are required")
	// ErrUnknownAlgorithm is returned for names the factory does not know.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	// ErrWorkLimit is returned when a kernel lane exceeds Limits.StepsPerBit.
	ErrWorkLimit = errors.New("scan exceeds work limit")
)

// Limits bounds the work a single request may ask for. Zero disables a
// bound.
type Limits struct {
	MaxBits   int
	MaxModuli int
	// StepsPerBit is the kernel step budget per bit of operand size. It
	// bounds subtraction Euclid on operands of very different sizes, which
	// lanes cannot abandon once launched.
	StepsPerBit int
}

// DefaultLimits allows 16384-bit operands and 2048 moduli per scan, about
// two million pairs, at the default kernel step budget.
func DefaultLimits() Limits {
	return Limits{MaxBits: 16384, MaxModuli: 2048, StepsPerBit: device.DefaultStepsPerBit}
}

// ScanResult is the outcome of an all-pairs scan.
type ScanResult struct {
	Stats    batch.Stats
	Findings []report.Finding
}

// Service is the interface consumed by the HTTP handlers.
type Service interface {
	// GCD returns gcd(a, b) computed by the named sequential algorithm.
	GCD(ctx context.Context, algo string, a, b *bignum.BigNum) (*bignum.BigNum, error)

	// Scan computes the GCD of every pair of moduli with the named batch
	// kernel and returns the non-trivial ones.
	Scan(ctx context.Context, algo string, moduli []*bignum.BigNum) (ScanResult, error)
}

// GCDService implements Service over a gcd.Factory and the batch
// orchestrator.
type GCDService struct {
	factory   gcd.Factory
	batchOpts []batch.Option
	limits    Limits
}

var _ Service = (*GCDService)(nil)

// NewGCDService returns a service using the tuning of cfg for scans.
func NewGCDService(factory gcd.Factory, cfg config.AppConfig, limits Limits) *GCDService {
	return &GCDService{factory: factory, batchOpts: cfg.BatchOptions(), limits: limits}
}

func (s *GCDService) resolve(algo string) (string, error) {
	if algo == "" {
		algo = config.DefaultAlgo
	}
	if !s.factory.Has(algo) {
		return "", fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algo)
	}
	return algo, nil
}

func (s *GCDService) checkSize(z *bignum.BigNum) error {
	if s.limits.MaxBits > 0 && z.NumBits() > s.limits.MaxBits {
		return fmt.Errorf("%w: %d bits, limit %d", ErrOperandTooLarge, z.NumBits(), s.limits.MaxBits)
	}
	return nil
}

// GCD validates the operands against the limits and runs the algorithm.
func (s *GCDService) GCD(ctx context.Context, algo string, a, b *bignum.BigNum) (*bignum.BigNum, error) {
	name, err := s.resolve(algo)
	if err != nil {
		return nil, err
	}
	for _, z := range []*bignum.BigNum{a, b} {
		if err := z.Validate(); err != nil {
			return nil, err
		}
		if err := s.checkSize(z); err != nil {
			return nil, err
		}
	}
	alg, err := s.factory.Get(name)
	if err != nil {
		return nil, err
	}
	return alg.GCD(ctx, a, b)
}

// Scan runs an all-pairs selection launch over moduli.
func (s *GCDService) Scan(ctx context.Context, algo string, moduli []*bignum.BigNum) (ScanResult, error) {
	name, err := s.resolve(algo)
	if err != nil {
		return ScanResult{}, err
	}
	switch {
	case len(moduli) < 2:
		return ScanResult{}, ErrTooFewModuli
	case s.limits.MaxModuli > 0 && len(moduli) > s.limits.MaxModuli:
		return ScanResult{}, fmt.Errorf("%w: %d, limit %d", ErrTooManyModuli, len(moduli), s.limits.MaxModuli)
	}
	for i, m := range moduli {
		if err := m.Validate(); err != nil {
			return ScanResult{}, fmt.Errorf("modulus %d: %w", i, err)
		}
		if err := s.checkSize(m); err != nil {
			return ScanResult{}, fmt.Errorf("modulus %d: %w", i, err)
		}
	}

	job := batch.AllPairsJob(moduli)
	opts := append(slices.Clip(s.batchOpts), batch.WithStepsPerBit(s.limits.StepsPerBit))
	results, stats, err := batch.New(opts...).Run(ctx, job, name)
	if errors.Is(err, device.ErrStepBudget) {
		return ScanResult{Stats: stats}, fmt.Errorf("%w: %w", ErrWorkLimit, err)
	}
	if err != nil {
		return ScanResult{Stats: stats}, err
	}
	findings, err := report.Analyze(job, results, nil)
	if err != nil {
		return ScanResult{Stats: stats}, err
	}
	return ScanResult{Stats: stats, Findings: findings}, nil
}
