package bignum

import "errors"

// Sentinel errors reported by the sequential operations. Callers match them
// with errors.Is; the concrete value returned is usually an *OpError that
// records which operation failed.
var (
	// ErrMalformedInput is returned when a number is uninitialized, released,
	// has an out-of-range length or carries a most-significant zero word.
	ErrMalformedInput = errors.New("malformed input")

	// ErrCapacityViolation is returned when a result would not fit in the
	// storage of a fixed-capacity number.
	ErrCapacityViolation = errors.New("capacity violation")

	// ErrPreconditionViolation is returned when an operation is called with
	// operands outside its contract, such as subtracting a larger number from
	// a smaller one.
	ErrPreconditionViolation = errors.New("precondition violation")

	// ErrZeroInput is returned by GCD when both operands are zero.
	ErrZeroInput = errors.New("gcd of zero and zero is undefined")
)

// OpError describes a failed operation on a BigNum.
type OpError struct {
	Op  string
	Err error
}

// Error returns the formatted message, e.g. "bignum: sub: precondition violation".
func (e *OpError) Error() string {
	return "bignum: " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying sentinel error.
func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, err error) error {
	return &OpError{Op: op, Err: err}
}
