// Package bignum implements the unsigned multi-precision integers used by the
// GCD engines. A BigNum is a little-endian sequence of 32-bit words with an
// explicit length ("top"); the most significant used word is non-zero unless
// the value is zero, in which case the length is one.
//
// Growable numbers reallocate on demand. Fixed-capacity numbers, created with
// NewFixed, never reallocate and report ErrCapacityViolation instead.
package bignum

import "fmt"

// DefaultCapacity is the number of words pre-allocated by New.
const DefaultCapacity = 4

// Ordering is the result of comparing two numbers.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// BigNum is an unsigned arbitrary-precision integer.
//
// The zero value is not usable; numbers must be created with New, NewFixed or
// one of the From constructors. A released number is rejected by Validate.
type BigNum struct {
	d     []Word
	top   int
	fixed bool
}

// New returns a growable number holding zero.
func New() *BigNum {
	return &BigNum{d: make([]Word, DefaultCapacity), top: 1}
}

// NewFixed returns a zero number whose storage holds exactly capacity words
// and never grows. A capacity below one is raised to one.
func NewFixed(capacity int) *BigNum {
	if capacity < 1 {
		capacity = 1
	}
	return &BigNum{d: make([]Word, capacity), top: 1, fixed: true}
}

// FromWord returns a growable number holding w.
func FromWord(w Word) *BigNum {
	z := New()
	z.d[0] = w
	return z
}

// FromWords returns a growable number from little-endian words. Leading zero
// words are trimmed; an empty slice yields zero.
func FromWords(words ...Word) *BigNum {
	z := &BigNum{d: make([]Word, max(len(words), 1)), top: 1}
	copy(z.d, words)
	z.top = max(len(words), 1)
	z.norm()
	return z
}

// Release drops the storage of z. Any later use fails validation.
func (z *BigNum) Release() {
	z.d = nil
	z.top = 0
}

// Validate reports whether z satisfies the representation invariants.
func (z *BigNum) Validate() error {
	switch {
	case z == nil:
		return fmt.Errorf("%w: nil number", ErrMalformedInput)
	case z.d == nil:
		return fmt.Errorf("%w: number is released or uninitialized", ErrMalformedInput)
	case z.top < 1 || z.top > len(z.d):
		return fmt.Errorf("%w: length %d outside [1, %d]", ErrMalformedInput, z.top, len(z.d))
	case z.top > 1 && z.d[z.top-1] == 0:
		return fmt.Errorf("%w: most significant word is zero", ErrMalformedInput)
	}
	return nil
}

// Len returns the number of used words.
func (z *BigNum) Len() int { return z.top }

// Cap returns the number of words of storage.
func (z *BigNum) Cap() int { return len(z.d) }

// Fixed reports whether z was created with NewFixed.
func (z *BigNum) Fixed() bool { return z.fixed }

// Words returns a copy of the used words, least significant first.
func (z *BigNum) Words() []Word {
	out := make([]Word, z.top)
	copy(out, z.d[:z.top])
	return out
}

// IsZero reports whether z == 0.
func (z *BigNum) IsZero() bool { return z.top == 1 && z.d[0] == 0 }

// IsOne reports whether z == 1.
func (z *BigNum) IsOne() bool { return z.top == 1 && z.d[0] == 1 }

// IsOdd reports whether the lowest bit of z is set.
func (z *BigNum) IsOdd() bool { return z.d[0]&1 == 1 }

// NumBits returns the bit length of z; zero has length 0.
func (z *BigNum) NumBits() int {
	return (z.top-1)*WordBits + NumBitsWord(z.d[z.top-1])
}

// TrailingZeros returns the number of trailing zero bits of z. It returns 0
// for zero.
func (z *BigNum) TrailingZeros() uint {
	for i := 0; i < z.top; i++ {
		if z.d[i] != 0 {
			return uint(i*WordBits + TrailingZerosWord(z.d[i]))
		}
	}
	return 0
}

// Cmp compares z and x. Both must be valid numbers.
func (z *BigNum) Cmp(x *BigNum) Ordering {
	switch {
	case z.top > x.top:
		return Greater
	case z.top < x.top:
		return Less
	}
	return CmpWords(z.d, x.d, z.top)
}

// Compare returns the ordering of a and b after validating both.
func Compare(a, b *BigNum) (Ordering, error) {
	if err := a.Validate(); err != nil {
		return Equal, opErr("compare", err)
	}
	if err := b.Validate(); err != nil {
		return Equal, opErr("compare", err)
	}
	return a.Cmp(b), nil
}

func (z *BigNum) norm() {
	for z.top > 1 && z.d[z.top-1] == 0 {
		z.top--
	}
}

// reserve makes room for n words, preserving the used words.
func (z *BigNum) reserve(op string, n int) error {
	if n <= len(z.d) {
		return nil
	}
	if z.fixed {
		return opErr(op, fmt.Errorf("%w: need %d words, have %d", ErrCapacityViolation, n, len(z.d)))
	}
	d := make([]Word, max(n, 2*len(z.d)))
	copy(d, z.d[:z.top])
	z.d = d
	return nil
}

// SetWord sets z to w.
func (z *BigNum) SetWord(w Word) error {
	if z.d == nil {
		return opErr("set-word", ErrMalformedInput)
	}
	z.d[0] = w
	z.top = 1
	return nil
}

// SetWords sets z from little-endian words, trimming leading zeros.
func (z *BigNum) SetWords(words []Word) error {
	if z.d == nil {
		return opErr("set-words", ErrMalformedInput)
	}
	n := len(words)
	for n > 1 && words[n-1] == 0 {
		n--
	}
	if n == 0 {
		return z.SetWord(0)
	}
	if err := z.reserve("set-words", n); err != nil {
		return err
	}
	copy(z.d, words[:n])
	z.top = n
	return nil
}

// Set copies x into z.
func (z *BigNum) Set(x *BigNum) error {
	if err := x.Validate(); err != nil {
		return opErr("copy", err)
	}
	if z == x {
		return nil
	}
	if z.d == nil {
		return opErr("copy", ErrMalformedInput)
	}
	if err := z.reserve("copy", x.top); err != nil {
		return err
	}
	copy(z.d, x.d[:x.top])
	z.top = x.top
	return nil
}

// Clone returns a growable deep copy of z.
func (z *BigNum) Clone() *BigNum {
	c := &BigNum{d: make([]Word, max(len(z.d), 1)), top: z.top}
	copy(c.d, z.d[:z.top])
	return c
}

// Add sets z = a + b. z may alias either operand.
func (z *BigNum) Add(a, b *BigNum) error {
	if err := a.Validate(); err != nil {
		return opErr("add", err)
	}
	if err := b.Validate(); err != nil {
		return opErr("add", err)
	}
	if a.top < b.top {
		a, b = b, a
	}
	m, n := a.top, b.top
	if err := z.reserve("add", m); err != nil {
		return err
	}
	c := AddWords(z.d, a.d, b.d, n)
	c = AddWord(z.d[n:], a.d[n:], m-n, c)
	z.top = m
	if c != 0 {
		if err := z.reserve("add", m+1); err != nil {
			z.norm()
			return err
		}
		z.d[m] = c
		z.top++
	}
	return nil
}

// AddWord sets z = z + w.
func (z *BigNum) AddWord(w Word) error {
	if err := z.Validate(); err != nil {
		return opErr("add-word", err)
	}
	c := AddWord(z.d, z.d, z.top, w)
	if c != 0 {
		if err := z.reserve("add-word", z.top+1); err != nil {
			z.norm()
			return err
		}
		z.d[z.top] = c
		z.top++
	}
	return nil
}

// MulWord sets z = z * w.
func (z *BigNum) MulWord(w Word) error {
	if err := z.Validate(); err != nil {
		return opErr("mul-word", err)
	}
	if w == 0 {
		z.d[0] = 0
		z.top = 1
		return nil
	}
	c := MulWords(z.d, z.d, z.top, w)
	if c != 0 {
		if err := z.reserve("mul-word", z.top+1); err != nil {
			z.norm()
			return err
		}
		z.d[z.top] = c
		z.top++
	}
	return nil
}

// Sub sets z = a - b. It requires a >= b and reports
// ErrPreconditionViolation otherwise. z may alias either operand.
func (z *BigNum) Sub(a, b *BigNum) error {
	if err := a.Validate(); err != nil {
		return opErr("sub", err)
	}
	if err := b.Validate(); err != nil {
		return opErr("sub", err)
	}
	if a.Cmp(b) == Less {
		return opErr("sub", ErrPreconditionViolation)
	}
	m, n := a.top, b.top
	if err := z.reserve("sub", m); err != nil {
		return err
	}
	borrow := SubWords(z.d, a.d, b.d, n)
	SubWord(z.d[n:], a.d[n:], m-n, borrow)
	z.top = m
	z.norm()
	return nil
}

// Rsh1 shifts z right by one bit.
func (z *BigNum) Rsh1() error {
	return z.Rsh(1)
}

// Rsh shifts z right by s bits.
func (z *BigNum) Rsh(s uint) error {
	if err := z.Validate(); err != nil {
		return opErr("rshift", err)
	}
	if s/WordBits >= uint(z.top) {
		z.d[0] = 0
		z.top = 1
		return nil
	}
	ws := int(s / WordBits)
	n := z.top - ws
	ShrWords(z.d, z.d[ws:], n, s%WordBits)
	z.top = n
	z.norm()
	return nil
}

// Lsh shifts z left by s bits. A fixed-capacity number reports
// ErrCapacityViolation when the result does not fit.
func (z *BigNum) Lsh(s uint) error {
	if err := z.Validate(); err != nil {
		return opErr("lshift", err)
	}
	if z.IsZero() || s == 0 {
		return nil
	}
	need := (z.NumBits() + int(s) + WordBits - 1) / WordBits
	if err := z.reserve("lshift", need); err != nil {
		return err
	}
	ws := int(s / WordBits)
	n := z.top
	copy(z.d[ws:], z.d[:n])
	clear(z.d[:ws])
	if c := ShlWords(z.d[ws:], z.d[ws:], n, s%WordBits); c != 0 {
		z.d[ws+n] = c
	}
	z.top = need
	return nil
}
