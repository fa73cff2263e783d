package bignum

import "math/bits"

// Word is a single 32-bit limb. Numbers are stored least-significant limb
// first.
type Word = uint32

const (
	// WordBits is the number of bits in a Word.
	WordBits = 32
	// WordMask has every bit of a Word set.
	WordMask Word = 0xffffffff
)

// The routines below are the word-level kernels shared by the host numbers
// in this package and by the fixed-capacity device operands. They operate on
// the first n words of their arguments, use 64-bit intermediates for carries
// and never allocate.

// Lo returns the low half of a double word.
func Lo(t uint64) Word { return Word(t) }

// Hi returns the high half of a double word.
func Hi(t uint64) Word { return Word(t >> WordBits) }

// MulWords sets r[0:n] = a[0:n] * w and returns the carry-out word.
// r and a may be the same slice.
func MulWords(r, a []Word, n int, w Word) Word {
	var c uint64
	for i := 0; i < n; i++ {
		t := uint64(a[i])*uint64(w) + c
		r[i] = Lo(t)
		c = uint64(Hi(t))
	}
	return Word(c)
}

// AddWords sets r[0:n] = a[0:n] + b[0:n] and returns the carry (0 or 1).
func AddWords(r, a, b []Word, n int) Word {
	var c uint64
	for i := 0; i < n; i++ {
		t := uint64(a[i]) + uint64(b[i]) + c
		r[i] = Lo(t)
		c = t >> WordBits
	}
	return Word(c)
}

// AddWord sets r[0:n] = a[0:n] + w and returns the carry (0 or 1).
func AddWord(r, a []Word, n int, w Word) Word {
	c := uint64(w)
	for i := 0; i < n; i++ {
		t := uint64(a[i]) + c
		r[i] = Lo(t)
		c = t >> WordBits
	}
	return Word(c)
}

// SubWords sets r[0:n] = a[0:n] - b[0:n] and returns the borrow (0 or 1).
func SubWords(r, a, b []Word, n int) Word {
	var borrow uint64
	for i := 0; i < n; i++ {
		t := uint64(a[i]) - uint64(b[i]) - borrow
		r[i] = Lo(t)
		borrow = (t >> WordBits) & 1
	}
	return Word(borrow)
}

// SubWord sets r[0:n] = a[0:n] - w and returns the borrow (0 or 1).
func SubWord(r, a []Word, n int, w Word) Word {
	borrow := uint64(w)
	for i := 0; i < n; i++ {
		t := uint64(a[i]) - borrow
		r[i] = Lo(t)
		borrow = (t >> WordBits) & 1
	}
	return Word(borrow)
}

// CmpWords compares a[0:n] and b[0:n] as unsigned numbers.
func CmpWords(a, b []Word, n int) Ordering {
	for i := n - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return Greater
			}
			return Less
		}
	}
	return Equal
}

// ShrWords sets r[0:n] = a[0:n] >> s for 0 <= s < WordBits. r and a may be
// the same slice; r may also start below a in the same backing array.
func ShrWords(r, a []Word, n int, s uint) {
	if n == 0 {
		return
	}
	if s == 0 {
		copy(r[:n], a[:n])
		return
	}
	for i := 0; i < n-1; i++ {
		r[i] = a[i]>>s | a[i+1]<<(WordBits-s)
	}
	r[n-1] = a[n-1] >> s
}

// ShlWords sets r[0:n] = a[0:n] << s for 0 <= s < WordBits and returns the
// bits shifted out of the top word. Words are processed from the top down so
// that r and a may be the same slice.
func ShlWords(r, a []Word, n int, s uint) Word {
	if n == 0 {
		return 0
	}
	if s == 0 {
		copy(r[:n], a[:n])
		return 0
	}
	carry := a[n-1] >> (WordBits - s)
	for i := n - 1; i > 0; i-- {
		r[i] = a[i]<<s | a[i-1]>>(WordBits-s)
	}
	r[0] = a[0] << s
	return carry
}

// NumBitsWord returns the position of the highest set bit of w, or 0 when
// w is zero.
func NumBitsWord(w Word) int {
	return bits.Len32(w)
}

// TrailingZerosWord returns the number of trailing zero bits of w; it is
// WordBits when w is zero.
func TrailingZerosWord(w Word) int {
	return bits.TrailingZeros32(w)
}
