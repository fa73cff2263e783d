package orchestration

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/gcd"
)

// verifyChunk is the number of units checked per task.
const verifyChunk = 256

// MismatchError reports a unit whose result differs from the reference.
type MismatchError struct {
	Unit      int
	Got, Want *bignum.BigNum
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("unit %d: got %s, reference %s", e.Unit, e.Got.Text(16), e.Want.Text(16))
}

// VerifyResults recomputes every unit of job with gcd.Reference and
// returns the first disagreement with results. Units are checked
// concurrently in chunks; the context is checked between chunks.
func VerifyResults(ctx context.Context, job batch.Job, results []*bignum.BigNum) error {
	if len(results) != job.Count {
		return fmt.Errorf("verify: %d results for %d units", len(results), job.Count)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for first := 0; first < job.Count; first += verifyChunk {
		if gctx.Err() != nil {
			break
		}
		last := min(first+verifyChunk, job.Count)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for k := first; k < last; k++ {
				ia, ib := job.Pair(k)
				want, err := gcd.Reference(job.A[ia], job.B[ib])
				if err != nil {
					return fmt.Errorf("verify unit %d: %w", k, err)
				}
				if results[k].Cmp(want) != bignum.Equal {
					return &MismatchError{Unit: k, Got: results[k], Want: want}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
