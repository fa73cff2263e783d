package gcd

import (
	"context"

	"github.com/agbru/rsagcd/internal/bignum"
)

// BinaryEuclid is Stein's algorithm. The common power of two is removed one
// bit at a time, then each round strips the remaining factors of two from
// both operands and subtracts the smaller odd value from the larger.
type BinaryEuclid struct{}

// Name returns "binary".
func (BinaryEuclid) Name() string {
	return "binary"
}

func (BinaryEuclid) gcd(ctx context.Context, a, b *bignum.BigNum) (*bignum.BigNum, error) {
	var shift uint
	for !a.IsZero() && !b.IsZero() && !a.IsOdd() && !b.IsOdd() {
		if err := a.Rsh1(); err != nil {
			return nil, err
		}
		if err := b.Rsh1(); err != nil {
			return nil, err
		}
		shift++
	}

	step := 0
	for !a.IsZero() && !b.IsZero() {
		for !a.IsOdd() {
			if err := a.Rsh1(); err != nil {
				return nil, err
			}
		}
		for !b.IsOdd() {
			if err := b.Rsh1(); err != nil {
				return nil, err
			}
		}
		if a.Cmp(b) == bignum.Less {
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
