// Package cli renders the terminal side of a scan: the execution banner, a
// spinner with a progress bar while batches run, and the findings once they
// complete.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/ui"
)

// FormatExecutionDuration formats d with a unit suited to its magnitude:
// microseconds below a millisecond, milliseconds below a second.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// ProgressRefreshRate is the spinner and progress bar refresh period.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width of the progress bar in characters.
	ProgressBarWidth = 40
	// TruncationLimit is the number of hex digits above which a modulus is
	// shortened in the findings display.
	TruncationLimit = 64
	// DisplayEdges is the number of digits kept at each end of a shortened
	// modulus.
	DisplayEdges = 16
)

// Spinner abstracts the terminal spinner so that DisplayProgress can be
// tested without a terminal.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }
func (rs *realSpinner) Stop()  { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState tracks the completed fraction of each concurrently running
// algorithm.
type ProgressState struct {
	index      map[string]int
	progresses []float64
}

// NewProgressState tracks the named algorithms, all starting at zero.
func NewProgressState(algorithms []string) *ProgressState {
	ps := &ProgressState{
		index:      make(map[string]int, len(algorithms)),
		progresses: make([]float64, len(algorithms)),
	}
	for i, name := range algorithms {
		ps.index[name] = i
	}
	return ps
}

// Update records a progress report. Reports for unknown algorithms are
// ignored, and an algorithm never moves backwards since reports from
// concurrent groups may arrive out of order.
func (ps *ProgressState) Update(p batch.Progress) {
	i, ok := ps.index[p.Algorithm]
	if !ok || p.Total <= 0 {
		return
	}
	v := min(float64(p.Done)/float64(p.Total), 1)
	ps.progresses[i] = max(ps.progresses[i], v)
}

// CalculateAverage returns the mean progress over all algorithms.
func (ps *ProgressState) CalculateAverage() float64 {
	if len(ps.progresses) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

func progressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	count := int(progress * float64(length))
	var b strings.Builder
	b.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			b.WriteRune('█')
		} else {
			b.WriteRune('░')
		}
	}
	return b.String()
}

// DisplayProgress renders a spinner and an averaged progress bar from the
// updates received on progressChan until the channel is closed, then prints
// a final complete bar. It signals wg when done. With no algorithms it only
// drains the channel.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan batch.Progress, algorithms []string, out io.Writer) {
	defer wg.Done()
	if len(algorithms) == 0 {
		for range progressChan {
		}
		return
	}

	label := "Progress"
	if len(algorithms) > 1 {
		label = "Avg progress"
	}

	state := NewProgressWithETA(algorithms)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	stopped := false
	defer func() {
		if !stopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				stopped = true
				fmt.Fprintf(out, "%s: %s\n", label, FormatProgressBarWithETA(1, time.Nanosecond, ProgressBarWidth))
				return
			}
			state.UpdateWithETA(update)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s: %s", label,
				FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth)))
		}
	}
}

// shorten abbreviates a long hex string to its edges.
func shorten(hex string) string {
	if len(hex) <= TruncationLimit {
		return hex
	}
	return hex[:DisplayEdges] + "..." + hex[len(hex)-DisplayEdges:]
}

// paint is shorthand for coloring one value with the active theme.
func paint(color func() string, s string) string { return ui.Paint(color(), s) }
