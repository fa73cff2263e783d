package device

import (
	"fmt"
	"sort"
)

// Kernel computes gcd(a, b) into r using the scratch operands of ws and
// returns the number of reduction steps it performed. a, b and r must share
// the workspace's capacity. Inputs are not modified; r may not alias them.
//
// If a and b are both zero the result is zero. That case is rejected before
// launch; the kernels only guarantee termination for it. A lane that exceeds
// the step budget of ws panics with an error wrapping ErrStepBudget.
type Kernel func(ws *Workspace, a, b, r *Operand) int

// Kernels maps algorithm names to their device kernels. The names match the
// sequential algorithms in package gcd.
var Kernels = map[string]Kernel{
	"classic":     ClassicEuclid,
	"binary":      BinaryEuclid,
	"fast-binary": FastBinaryEuclid,
}

// Lookup returns the kernel registered under name.
func Lookup(name string) (Kernel, error) {
	k, ok := Kernels[name]
	if !ok {
		return nil, fmt.Errorf("unknown kernel: %s", name)
	}
	return k, nil
}

// Names returns the kernel names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Kernels))
	for name := range Kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClassicEuclid runs subtraction-only Euclid. Each step masks the larger
// operand into x and replaces it with x - y, so the per-step control flow
// is the same in every lane.
func ClassicEuclid(ws *Workspace, a, b, r *Operand) int {
	x, y := ws.x, ws.y
	x.CopyFrom(a)
	y.CopyFrom(b)

	steps := 0
	for !x.IsZero() && !y.IsZero() {
		condSwap(lessMask(x, y), x, y)
		Sub(x, x, y)
		steps++
		ws.charge(steps)
	}
	condSwap(zeroMask(x), x, y)
	r.CopyFrom(x)
	return steps
}

// BinaryEuclid runs Stein's algorithm with single-bit shifts.
func BinaryEuclid(ws *Workspace, a, b, r *Operand) int {
	x, y := ws.x, ws.y
	x.CopyFrom(a)
	y.CopyFrom(b)

	var shift uint
	for !x.IsZero() && !y.IsZero() && (x.d[0]|y.d[0])&1 == 0 {
		Rsh1(x)
		Rsh1(y)
		shift++
	}

	steps := 0
	for !x.IsZero() && !y.IsZero() {
		for !x.IsOdd() {
			Rsh1(x)
		}
		for !y.IsOdd() {
			Rsh1(y)
		}
		condSwap(lessMask(x, y), x, y)
		Sub(x, x, y)
		steps++
		ws.charge(steps)
	}
	condSwap(zeroMask(x), x, y)
	Lsh(x, shift)
	r.CopyFrom(x)
	return steps
}

// FastBinaryEuclid runs the binary algorithm with multi-bit shifts: the
// common power of two comes from the trailing-zero counts and every
// difference is made odd in a single shift.
func FastBinaryEuclid(ws *Workspace, a, b, r *Operand) int {
	x, y := ws.x, ws.y
	x.CopyFrom(a)
	y.CopyFrom(b)

	shift := min(x.TrailingZeros(), y.TrailingZeros())
	Rsh(x, shift)
	Rsh(y, shift)

	steps := 0
	for !x.IsZero() && !y.IsZero() {
		Rsh(x, x.TrailingZeros())
		Rsh(y, y.TrailingZeros())
		condSwap(lessMask(x, y), x, y)
		Sub(x, x, y)
		steps++
		ws.charge(steps)
	}
	condSwap(zeroMask(x), x, y)
	Lsh(x, shift)
	r.CopyFrom(x)
	return steps
}
