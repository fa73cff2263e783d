package gcd

import (
	"context"
	"math/big"
	"testing"

	"github.com/agbru/rsagcd/internal/bignum"
)

// maxFuzzQuotient bounds the Euclidean quotients accepted by the fuzzer so
// that the subtraction-only algorithm stays fast.
const maxFuzzQuotient = 1 << 16

// FuzzGCDConsistency verifies that the three algorithms agree with each
// other and with math/big on arbitrary 128-bit operand pairs.
func FuzzGCDConsistency(f *testing.F) {
	f.Add(uint64(48), uint64(0), uint64(18), uint64(0))
	f.Add(uint64(1071), uint64(0), uint64(462), uint64(0))
	f.Add(uint64(0), uint64(0), uint64(5), uint64(0))
	f.Add(uint64(1<<63), uint64(3), uint64(1<<62), uint64(5))
	f.Add(^uint64(0), ^uint64(0), ^uint64(0)-2, ^uint64(0))

	engines := allEngines()
	f.Fuzz(func(t *testing.T, alo, ahi, blo, bhi uint64) {
		x := words128(alo, ahi)
		y := words128(blo, bhi)
		if x.Sign() == 0 && y.Sign() == 0 {
			return
		}
		if !smallQuotients(x, y) {
			return
		}
		want := new(big.Int).GCD(nil, nil, x, y)
		a, _ := bignum.FromBigInt(x)
		b, _ := bignum.FromBigInt(y)
		for name, alg := range engines {
			got, err := alg.GCD(context.Background(), a, b)
			if err != nil {
				t.Fatalf("%s failed for (%s, %s): %v", name, x, y, err)
			}
			if got.BigInt().Cmp(want) != 0 {
				t.Errorf("%s: gcd(%s, %s) = %s, want %s", name, x, y, got, want)
			}
		}
	})
}

func words128(lo, hi uint64) *big.Int {
	x := new(big.Int).SetUint64(hi)
	x.Lsh(x, 64)
	return x.Or(x, new(big.Int).SetUint64(lo))
}

func smallQuotients(x, y *big.Int) bool {
	a, b := new(big.Int).Set(x), new(big.Int).Set(y)
	limit := big.NewInt(maxFuzzQuotient)
	q, r := new(big.Int), new(big.Int)
	for b.Sign() != 0 {
		q.QuoRem(a, b, r)
		if q.Cmp(limit) > 0 {
			return false
		}
		a, b = b, new(big.Int).Set(r)
	}
	return true
}
