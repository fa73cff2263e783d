//go:build gmp

package gcd

import (
	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/ncw/gmp"
)

// ReferenceName identifies the library behind Reference.
const ReferenceName = "gmp"

// Reference computes gcd(a, b) with GMP. It is the baseline the
// hand-written algorithms are checked against; gcd(0, 0) is reported as zero.
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
	x := new(gmp.Int).SetBytes(a.Bytes())
	y := new(gmp.Int).SetBytes(b.Bytes())
	g := new(gmp.Int).GCD(nil, nil, x, y)
	z := bignum.New()
	if err := z.SetBytes(g.Bytes()); err != nil {
		return nil, err
	}
	return z, nil
}
