// Package parallel provides the small concurrency helpers shared by the batch
// orchestrator and the algorithm comparison: first-error collection and panic
// capture for worker goroutines.
package parallel

import (
	"fmt"
	"runtime"
	"sync"
)

// ErrorCollector collects the first error from parallel goroutines.
// It is safe for concurrent use.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	g.Go(func() error {
//	    ec.Capture(group, func() { runGroup(group) })
//	    return nil
//	})
//	g.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	once  sync.Once
	mu    sync.Mutex
	err   error
	count int
}

// SetError records err if no error has been recorded yet. Nil errors are
// ignored; every non-nil error is counted.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
	})
}

// Err returns the first recorded error, or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Count returns the number of non-nil errors reported. The batch layer
// reports it as the number of failed groups.
func (c *ErrorCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// PanicError is a panic recovered from a worker goroutine.
type PanicError struct {
	// Worker identifies the goroutine, e.g. the group index of a launch.
	Worker int
	// Value is the recovered panic value.
	Value any
	// Stack is the goroutine stack at the time of the panic.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker %d panicked: %v", e.Worker, e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Capture runs f and records a panic escaping from it as a *PanicError. It
// reports whether f returned normally.
func (c *ErrorCollector) Capture(worker int, f func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			c.SetError(&PanicError{Worker: worker, Value: r, Stack: buf})
			ok = false
		}
	}()
	f()
	return true
}

// DefaultWorkers returns the default number of concurrent workers, one per
// logical CPU.
func DefaultWorkers() int {
	return runtime.NumCPU()
}
