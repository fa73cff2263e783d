package batch

import (
	"context"
	"fmt"

	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/gcd"
)

// RunHost computes the units of job one after another with a sequential
// algorithm. It is the baseline the device launches are checked against and
// is used when no parallel execution is wanted. The context is checked
// between units.
func RunHost(ctx context.Context, alg gcd.Algorithm, job Job) ([]*bignum.BigNum, error) {
	if _, err := validate(job); err != nil {
		return nil, err
	}
	results := make([]*bignum.BigNum, job.Count)
	for k := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ia, ib := job.Pair(k)
		g, err := alg.GCD(ctx, job.A[ia], job.B[ib])
		if err != nil {
			return nil, fmt.Errorf("batch: unit %d: %w", k, err)
		}
		results[k] = g
	}
	return results, nil
}
