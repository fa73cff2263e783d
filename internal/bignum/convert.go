package bignum

import (
	"fmt"
	"math/big"
	"strings"
)

// decDigits is the number of decimal digits folded in per step; 10^9 is the
// largest power of ten that fits in a Word.
const decDigits = 9

// SetString sets z to the value of s in the given base (10 or 16). A "0x"
// prefix is accepted in base 16. Digits are folded in with MulWord and
// AddWord, so a fixed-capacity z reports ErrCapacityViolation when the value
// does not fit.
func (z *BigNum) SetString(s string, base int) error {
	if z.d == nil {
		return opErr("parse", ErrMalformedInput)
	}
	if base == 16 {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	}
	if s == "" {
		return opErr("parse", fmt.Errorf("%w: empty string", ErrMalformedInput))
	}
	switch base {
	case 10:
		return z.setDecimal(s)
	case 16:
		return z.setHex(s)
	default:
		return opErr("parse", fmt.Errorf("%w: unsupported base %d", ErrPreconditionViolation, base))
	}
}

func (z *BigNum) setDecimal(s string) error {
	z.d[0], z.top = 0, 1
	for len(s) > 0 {
		n := min(len(s), decDigits)
		var chunk, scale Word = 0, 1
		for _, c := range s[:n] {
			if c < '0' || c > '9' {
				return opErr("parse", fmt.Errorf("%w: invalid decimal digit %q", ErrMalformedInput, c))
			}
			chunk = chunk*10 + Word(c-'0')
			scale *= 10
		}
		if err := z.MulWord(scale); err != nil {
			return err
		}
		if err := z.AddWord(chunk); err != nil {
			return err
		}
		s = s[n:]
	}
	return nil
}

func (z *BigNum) setHex(s string) error {
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return z.SetWord(0)
	}
	n := (len(s) + 7) / 8
	if err := z.reserve("parse", n); err != nil {
		return err
	}
	clear(z.d[:n])
	for i := 0; i < len(s); i++ {
		c := s[len(s)-1-i]
		var v Word
		switch {
		case c >= '0' && c <= '9':
			v = Word(c - '0')
		case c >= 'a' && c <= 'f':
			v = Word(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = Word(c-'A') + 10
		default:
			z.d[0], z.top = 0, 1
			return opErr("parse", fmt.Errorf("%w: invalid hex digit %q", ErrMalformedInput, c))
		}
		z.d[i/8] |= v << (4 * uint(i%8))
	}
	z.top = n
	return nil
}

// Text returns the value of z in base 10 or 16 (lower case, no prefix).
func (z *BigNum) Text(base int) string {
	if z.Validate() != nil {
		return "<invalid>"
	}
	if base == 16 {
		var sb strings.Builder
		sb.Grow(z.top * 8)
		fmt.Fprintf(&sb, "%x", z.d[z.top-1])
		for i := z.top - 2; i >= 0; i-- {
			fmt.Fprintf(&sb, "%08x", z.d[i])
		}
		return sb.String()
	}
	return z.BigInt().Text(base)
}

// String returns the decimal representation of z.
func (z *BigNum) String() string {
	return z.Text(10)
}

// SetBytes interprets buf as a big-endian unsigned integer.
func (z *BigNum) SetBytes(buf []byte) error {
	if z.d == nil {
		return opErr("set-bytes", ErrMalformedInput)
	}
	for len(buf) > 0 && buf[0] == 0 {
		buf = buf[1:]
	}
	if len(buf) == 0 {
		return z.SetWord(0)
	}
	n := (len(buf) + 3) / 4
	if err := z.reserve("set-bytes", n); err != nil {
		return err
	}
	clear(z.d[:n])
	for i := 0; i < len(buf); i++ {
		z.d[i/4] |= Word(buf[len(buf)-1-i]) << (8 * uint(i%4))
	}
	z.top = n
	return nil
}

// Bytes returns the minimal big-endian encoding of z. Zero encodes as an
// empty slice.
func (z *BigNum) Bytes() []byte {
	if z.IsZero() {
		return []byte{}
	}
	nb := (z.NumBits() + 7) / 8
	buf := make([]byte, nb)
	for i := 0; i < nb; i++ {
		buf[nb-1-i] = byte(z.d[i/4] >> (8 * uint(i%4)))
	}
	return buf
}

// SetBigInt sets z to x. Negative values are rejected.
func (z *BigNum) SetBigInt(x *big.Int) error {
	if x.Sign() < 0 {
		return opErr("set-big", fmt.Errorf("%w: negative value", ErrPreconditionViolation))
	}
	return z.SetBytes(x.Bytes())
}

// BigInt returns z as a *big.Int.
func (z *BigNum) BigInt() *big.Int {
	return new(big.Int).SetBytes(z.Bytes())
}

// FromBigInt returns a growable number holding x.
func FromBigInt(x *big.Int) (*BigNum, error) {
	z := New()
	if err := z.SetBigInt(x); err != nil {
		return nil, err
	}
	return z, nil
}

// Parse returns a growable number parsed from s in the given base.
func Parse(s string, base int) (*BigNum, error) {
	z := New()
	if err := z.SetString(s, base); err != nil {
		return nil, err
	}
	return z, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// constant tables.
func MustParse(s string, base int) *BigNum {
	z, err := Parse(s, base)
	if err != nil {
		panic(err)
	}
	return z
}
