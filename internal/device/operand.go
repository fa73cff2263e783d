// Package device models the execution environment of a data-parallel
// accelerator: operands live in fixed-capacity slots carved out of a
// pre-sized arena, primitives never allocate, and the control flow of the
// kernels is driven by each lane's own data only. Comparison and swap are
// expressed with word masks instead of data-dependent branches so that lanes
// running the same kernel in lockstep do not diverge.
//
// Primitives in this package trust their caller. Capacity overflow and an
// exhausted step budget are fatal and reported with a panic carrying a
// *bignum.OpError that wraps bignum.ErrCapacityViolation or ErrStepBudget;
// the batch layer recovers it and turns it into a launch error.
package device

import (
	"fmt"

	"github.com/agbru/rsagcd/internal/bignum"
)

type Word = bignum.Word

// Operand is a fixed-capacity number in device memory. Words at or above the
// length are unspecified and never read.
type Operand struct {
	d   []Word
	top int
}

// Len returns the number of used words.
func (x *Operand) Len() int { return x.top }

// Cap returns the capacity in words.
func (x *Operand) Cap() int { return len(x.d) }

// Words returns the used words without copying.
func (x *Operand) Words() []Word { return x.d[:x.top] }

// IsZero reports whether x == 0.
func (x *Operand) IsZero() bool { return x.top == 1 && x.d[0] == 0 }

// IsOdd reports whether the lowest bit of x is set.
func (x *Operand) IsOdd() bool { return x.d[0]&1 == 1 }

// NumBits returns the bit length of x.
func (x *Operand) NumBits() int {
	return (x.top-1)*bignum.WordBits + bignum.NumBitsWord(x.d[x.top-1])
}

// TrailingZeros returns the number of trailing zero bits of x, or 0 for zero.
func (x *Operand) TrailingZeros() uint {
	for i := 0; i < x.top; i++ {
		if x.d[i] != 0 {
			return uint(i*bignum.WordBits + bignum.TrailingZerosWord(x.d[i]))
		}
	}
	return 0
}

// SetWord sets x to w.
func (x *Operand) SetWord(w Word) {
	x.d[0] = w
	x.top = 1
}

// CopyFrom sets x to the value of src.
func (x *Operand) CopyFrom(src *Operand) {
	x.require("copy", src.top)
	copy(x.d, src.d[:src.top])
	x.top = src.top
}

func (x *Operand) norm() {
	for x.top > 1 && x.d[x.top-1] == 0 {
		x.top--
	}
}

func (x *Operand) require(op string, n int) {
	if n > len(x.d) {
		panic(&bignum.OpError{
			Op:  "device " + op,
			Err: fmt.Errorf("%w: need %d words, have %d", bignum.ErrCapacityViolation, n, len(x.d)),
		})
	}
}

// ltMask returns all ones when x < y and zero otherwise.
func ltMask(x, y Word) Word {
	return Word(0) - Word((uint64(x)-uint64(y))>>63)
}

// wordAt returns word i of x, or zero when i is at or above the length.
// i must be below the capacity.
func wordAt(x *Operand, i int) Word {
	return x.d[i] & ltMask(Word(i), Word(x.top))
}

// Cmp compares a and b without early exit: every word up to the longer
// length is visited and the first difference from the top wins through a
// mask. Both operands must have the same capacity.
func Cmp(a, b *Operand) bignum.Ordering {
	n := max(a.top, b.top)
	var gt, lt Word
	for i := n - 1; i >= 0; i-- {
		x, y := wordAt(a, i), wordAt(b, i)
		undecided := ^(gt | lt)
		gt |= undecided & ltMask(y, x)
		lt |= undecided & ltMask(x, y)
	}
	return bignum.Ordering(int(gt&1) - int(lt&1))
}

// lessMask returns all ones when a < b.
func lessMask(a, b *Operand) Word {
	return Word(int32(Cmp(a, b)) >> 1)
}

// zeroMask returns all ones when x == 0.
func zeroMask(x *Operand) Word {
	return ltMask(x.d[0]|Word(x.top-1), 1)
}

// condSwap exchanges x and y when mask is all ones and leaves them alone
// when it is zero. Both operands must have the same capacity.
func condSwap(mask Word, x, y *Operand) {
	n := max(x.top, y.top)
	for i := 0; i < n; i++ {
		t := mask & (x.d[i] ^ y.d[i])
		x.d[i] ^= t
		y.d[i] ^= t
	}
	t := int(int32(mask)) & (x.top ^ y.top)
	x.top ^= t
	y.top ^= t
}

// Sub sets r = a - b. It requires a >= b; r may alias a or b.
func Sub(r, a, b *Operand) {
	n := a.top
	r.require("sub", n)
	var borrow uint64
	for i := 0; i < n; i++ {
		t := uint64(a.d[i]) - uint64(wordAt(b, i)) - borrow
		r.d[i] = bignum.Lo(t)
		borrow = (t >> bignum.WordBits) & 1
	}
	r.top = n
	r.norm()
}

// Rsh1 shifts x right by one bit.
func Rsh1(x *Operand) {
	Rsh(x, 1)
}

// Rsh shifts x right by s bits.
func Rsh(x *Operand, s uint) {
	if s/bignum.WordBits >= uint(x.top) {
		x.SetWord(0)
		return
	}
	ws := int(s / bignum.WordBits)
	n := x.top - ws
	bignum.ShrWords(x.d, x.d[ws:], n, s%bignum.WordBits)
	x.top = n
	x.norm()
}

// Lsh shifts x left by s bits. It panics when the result exceeds the
// capacity.
func Lsh(x *Operand, s uint) {
	if x.IsZero() || s == 0 {
		return
	}
	need := (x.NumBits() + int(s) + bignum.WordBits - 1) / bignum.WordBits
	x.require("lshift", need)
	ws := int(s / bignum.WordBits)
	n := x.top
	copy(x.d[ws:], x.d[:n])
	clear(x.d[:ws])
	if c := bignum.ShlWords(x.d[ws:], x.d[ws:], n, s%bignum.WordBits); c != 0 {
		x.d[ws+n] = c
	}
	x.top = need
}
