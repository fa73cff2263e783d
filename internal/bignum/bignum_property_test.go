package bignum

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// wordsGen produces little-endian word slices; an empty slice stands for
// zero.
func wordsGen() gopter.Gen {
	return gen.SliceOf(gen.UInt32())
}

func wordsToBig(ws []uint32) *big.Int {
	return FromWords(ws...).BigInt()
}

// TestArithmetic_PropertyBased checks every arithmetic primitive against
// math/big on random multi-word operands.
func TestArithmetic_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("sub matches math/big and stays normalized", prop.ForAll(
		func(x, y []uint32) bool {
			a, b := FromWords(x...), FromWords(y...)
			if a.Cmp(b) == Less {
				a, b = b, a
			}
			want := new(big.Int).Sub(a.BigInt(), b.BigInt())
			if err := a.Sub(a, b); err != nil {
				return false
			}
			return a.Validate() == nil && a.BigInt().Cmp(want) == 0
		},
		wordsGen(), wordsGen(),
	))

	properties.Property("add matches math/big", prop.ForAll(
		func(x, y []uint32) bool {
			want := new(big.Int).Add(wordsToBig(x), wordsToBig(y))
			z := New()
			if err := z.Add(FromWords(x...), FromWords(y...)); err != nil {
				return false
			}
			return z.Validate() == nil && z.BigInt().Cmp(want) == 0
		},
		wordsGen(), wordsGen(),
	))

	properties.Property("mul-word and add-word match math/big", prop.ForAll(
		func(x []uint32, m, a uint32) bool {
			want := new(big.Int).Mul(wordsToBig(x), new(big.Int).SetUint64(uint64(m)))
			want.Add(want, new(big.Int).SetUint64(uint64(a)))
			z := FromWords(x...)
			if z.MulWord(m) != nil || z.AddWord(a) != nil {
				return false
			}
			return z.Validate() == nil && z.BigInt().Cmp(want) == 0
		},
		wordsGen(), gen.UInt32(), gen.UInt32(),
	))

	properties.Property("compare agrees with math/big", prop.ForAll(
		func(x, y []uint32) bool {
			got, err := Compare(FromWords(x...), FromWords(y...))
			return err == nil && int(got) == wordsToBig(x).Cmp(wordsToBig(y))
		},
		wordsGen(), wordsGen(),
	))

	properties.Property("shift left then right is the identity", prop.ForAll(
		func(x []uint32, s uint) bool {
			z := FromWords(x...)
			orig := z.Clone()
			if z.Lsh(s) != nil || z.Rsh(s) != nil {
				return false
			}
			return z.Cmp(orig) == Equal
		},
		wordsGen(), gen.UIntRange(0, 300),
	))

	properties.Property("trailing zeros and bit length match math/big", prop.ForAll(
		func(x []uint32) bool {
			z := FromWords(x...)
			b := z.BigInt()
			if b.Sign() == 0 {
				return z.TrailingZeros() == 0 && z.NumBits() == 0
			}
			return z.TrailingZeros() == b.TrailingZeroBits() && z.NumBits() == b.BitLen()
		},
		wordsGen(),
	))

	properties.Property("hex and decimal text round-trip", prop.ForAll(
		func(x []uint32) bool {
			z := FromWords(x...)
			h, err := Parse(z.Text(16), 16)
			if err != nil {
				return false
			}
			d, err := Parse(z.String(), 10)
			if err != nil {
				return false
			}
			return h.Cmp(z) == Equal && d.Cmp(z) == Equal
		},
		wordsGen(),
	))

	properties.TestingRun(t)
}
