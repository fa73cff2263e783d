package device

import (
	"errors"
	"fmt"

	"github.com/agbru/rsagcd/internal/bignum"
)

// Memory is a pre-sized arena of equally sized operand slots. It is
// allocated once on the host before a launch; kernels only read and write
// the slots.
type Memory struct {
	words    []Word
	slots    []Operand
	capacity int
}

// NewMemory allocates count slots of capacity words each, all holding zero.
func NewMemory(count, capacity int) *Memory {
	capacity = max(capacity, 1)
	m := &Memory{
		words:    make([]Word, count*capacity),
		slots:    make([]Operand, count),
		capacity: capacity,
	}
	for i := range m.slots {
		m.slots[i] = Operand{d: m.words[i*capacity : (i+1)*capacity : (i+1)*capacity], top: 1}
	}
	return m
}

// Len returns the number of slots.
func (m *Memory) Len() int { return len(m.slots) }

// Capacity returns the number of words per slot.
func (m *Memory) Capacity() int { return m.capacity }

// Slot returns the operand stored in slot i.
func (m *Memory) Slot(i int) *Operand { return &m.slots[i] }

// Upload copies x into slot i. It reports ErrMalformedInput for an invalid
// number and ErrCapacityViolation when x is wider than a slot.
func (m *Memory) Upload(i int, x *bignum.BigNum) error {
	if err := x.Validate(); err != nil {
		return &bignum.OpError{Op: "upload", Err: err}
	}
	if x.Len() > m.capacity {
		return &bignum.OpError{
			Op:  "upload",
			Err: fmt.Errorf("%w: %d words into a %d-word slot", bignum.ErrCapacityViolation, x.Len(), m.capacity),
		}
	}
	op := &m.slots[i]
	op.top = copy(op.d, x.Words())
	return nil
}

// Download copies slot i into dst on the host.
func (m *Memory) Download(i int, dst *bignum.BigNum) error {
	return dst.SetWords(m.slots[i].Words())
}

// DefaultStepsPerBit is the default kernel step budget per bit of slot
// capacity. The binary kernels need at most two steps per bit; only
// subtraction Euclid on operands of very different sizes comes near it.
const DefaultStepsPerBit = 1024

// ErrStepBudget is wrapped by the panic of a lane that ran out of steps.
var ErrStepBudget = errors.New("step budget exceeded")

// StepBudget returns the per-lane step limit for slots of capacity words at
// perBit steps per bit. It returns zero, meaning unbounded, when perBit is
// below one.
func StepBudget(capacity, perBit int) int {
	if perBit < 1 {
		return 0
	}
	return max(capacity, 1) * bignum.WordBits * perBit
}

// Workspace holds the per-lane scratch operands a kernel works on, so that
// inputs are never modified in place, and the lane's step budget.
type Workspace struct {
	x, y   *Operand
	budget int
}

// NewWorkspaces carves count workspaces out of a single arena whose slots
// have the given capacity. Each lane may run at most budget steps; zero
// leaves the lanes unbounded.
func NewWorkspaces(count, capacity, budget int) []Workspace {
	m := NewMemory(2*count, capacity)
	ws := make([]Workspace, count)
	for i := range ws {
		ws[i] = Workspace{x: m.Slot(2 * i), y: m.Slot(2*i + 1), budget: max(budget, 0)}
	}
	return ws
}

// Budget returns the step limit of the lane, zero when unbounded.
func (ws *Workspace) Budget() int { return ws.budget }

// charge panics once a lane has run more steps than its budget.
func (ws *Workspace) charge(steps int) {
	if ws.budget > 0 && steps > ws.budget {
		panic(&bignum.OpError{
			Op:  "device kernel",
			Err: fmt.Errorf("%w: more than %d steps", ErrStepBudget, ws.budget),
		})
	}
}
