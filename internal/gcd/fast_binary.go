package gcd

import (
	"context"

	"github.com/agbru/rsagcd/internal/bignum"
)

// FastBinaryEuclid is the binary algorithm with multi-bit shifts. The
// common factor of two is computed in one go from the trailing-zero counts,
// and after every subtraction the difference loses all of its factors of two
// in a single shift. Bit lengths are compared before falling back to a word
// comparison to pick the subtraction direction.
type FastBinaryEuclid struct{}

// Name returns "fast-binary".
func (FastBinaryEuclid) Name() string {
	return "fast-binary"
}

func (FastBinaryEuclid) gcd(ctx context.Context, a, b *bignum.BigNum) (*bignum.BigNum, error) {
	shift := min(a.TrailingZeros(), b.TrailingZeros())
	if err := a.Rsh(shift); err != nil {
		return nil, err
	}
	if err := b.Rsh(shift); err != nil {
		return nil, err
	}

	step := 0
	for !a.IsZero() && !b.IsZero() {
		if err := a.Rsh(a.TrailingZeros()); err != nil {
			return nil, err
		}
		if err := b.Rsh(b.TrailingZeros()); err != nil {
			return nil, err
		}
		if smaller(a, b) {
			a, b = b, a
		}
		if err := a.Sub(a, b); err != nil {
			return nil, err
		}
		step++
		if err := checkCancel(ctx, step); err != nil {
			return nil, err
		}
	}

	if a.IsZero() {
		a = b
	}
	if err := a.Lsh(shift); err != nil {
		return nil, err
	}
	return a, nil
}

func smaller(a, b *bignum.BigNum) bool {
	na, nb := a.NumBits(), b.NumBits()
	if na != nb {
		return na < nb
	}
	return a.Cmp(b) == bignum.Less
}
