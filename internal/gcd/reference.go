//go:build !gmp

package gcd

import (
	"math/big"

	"github.com/agbru/rsagcd/internal/bignum"
)

// ReferenceName identifies the library behind Reference.
const ReferenceName = "math/big"

// Reference computes gcd(a, b) with an independent arbitrary-precision
// library. It is the baseline the hand-written algorithms are checked
// against; gcd(0, 0) is reported as zero.
func Reference(a, b *bignum.BigNum) (*bignum.BigNum, error) {
	if err := a.Validate(); err != nil {
		return nil, &bignum.OpError{Op: "reference", Err: err}
	}
	if err := b.Validate(); err != nil {
		return nil, &bignum.OpError{Op: "reference", Err: err}
	}
	switch {
	case a.IsZero():
		return b.Clone(), nil
	case b.IsZero():
		return a.Clone(), nil
	}
	g := new(big.Int).GCD(nil, nil, a.BigInt(), b.BigInt())
	return bignum.FromBigInt(g)
}
