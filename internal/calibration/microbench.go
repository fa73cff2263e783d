package calibration

import (
	"math/rand"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/bignum"
)

const (
	// benchUnits is the number of GCDs per calibration trial.
	benchUnits = 4096
	// benchWords is the operand size of a trial, a 1024-bit modulus.
	benchWords = 32
	benchSeed  = 0x5eed
)

// benchJob builds a deterministic direct job of units random pairs of
// words-word operands. Every operand has its top bit set, which keeps the
// workload uniform across lanes.
func benchJob(units, words int, seed int64) batch.Job {
	rng := rand.New(rand.NewSource(seed))
	gen := func() []*bignum.BigNum {
		out := make([]*bignum.BigNum, units)
		for i := range out {
			ws := make([]bignum.Word, words)
			for j := range ws {
				ws[j] = bignum.Word(rng.Uint32())
			}
			ws[words-1] |= 1 << (bignum.WordBits - 1)
			ws[0] |= 1
			out[i] = bignum.FromWords(ws...)
		}
		return out
	}
	a, b := gen(), gen()
	return batch.DirectJob(a, b, units)
}
