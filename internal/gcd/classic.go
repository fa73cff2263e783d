package gcd

import (
	"context"

	"github.com/agbru/rsagcd/internal/bignum"
)

// ClassicEuclid is Euclid's original algorithm expressed with subtraction
// only: the larger operand is reduced below the smaller one by repeated
// subtraction, then the roles swap, until the smaller operand reaches zero.
type ClassicEuclid struct{}

// Name returns "classic".
func (ClassicEuclid) Name() string {
	return "classic"
}

func (ClassicEuclid) gcd(ctx context.Context, a, b *bignum.BigNum) (*bignum.BigNum, error) {
	step := 0
	for !b.IsZero() {
		for a.Cmp(b) != bignum.Less {
			if err := a.Sub(a, b); err != nil {
				return nil, err
			}
			step++
			if err := checkCancel(ctx, step); err != nil {
				return nil, err
			}
		}
		a, b = b, a
	}
	return a, nil
}
