package batch

import (
	"github.com/agbru/rsagcd/internal/logging"
)

// DefaultGroupWidth is the number of lanes that execute in lockstep, the
// width of a warp on common accelerators.
const DefaultGroupWidth = 32

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for launch summaries.
func WithLogger(logger logging.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkers bounds the number of groups executing concurrently. Values
// below one are ignored.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithGroupWidth sets the number of lanes per lockstep group. Values below
// one are ignored.
func WithGroupWidth(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.groupWidth = n
		}
	}
}

// WithProgress registers a channel that receives a Progress update after
// every completed group. Sends never block; updates are dropped when the
// channel is full.
func WithProgress(ch chan<- Progress) Option {
	return func(o *Orchestrator) {
		o.progress = ch
	}
}

// WithStepsPerBit sets the kernel step budget per bit of operand capacity.
// A lane that exceeds it fails the launch. Zero removes the budget; negative
// values are ignored.
func WithStepsPerBit(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.stepsPerBit = n
		}
	}
}
