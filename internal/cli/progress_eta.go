package cli

import (
	"fmt"
	"time"

	"github.com/agbru/rsagcd/internal/batch"
)

// maxETA caps displayed estimates.
const maxETA = 24 * time.Hour

// ProgressWithETA adds a remaining-time estimate to ProgressState, based on
// an exponentially smoothed progress rate.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	// progressRate is in progress units per second.
	progressRate float64
	now          func() time.Time
}

// NewProgressWithETA starts tracking the named algorithms now.
func NewProgressWithETA(algorithms []string) *ProgressWithETA {
	start := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(algorithms),
		startTime:     start,
		lastUpdate:    start,
		now:           time.Now,
	}
}

// UpdateWithETA records p and returns the average progress and the
// estimated time remaining. The estimate is zero until enough time and
// progress have accumulated.
func (p *ProgressWithETA) UpdateWithETA(u batch.Progress) (progress float64, eta time.Duration) {
	p.Update(u)
	progress = p.CalculateAverage()

	now := p.now()
	elapsed := now.Sub(p.startTime)
	if elapsed < 100*time.Millisecond || progress <= 0.001 {
		p.lastUpdate = now
		p.lastProgress = progress
		return progress, 0
	}

	if dt := now.Sub(p.lastUpdate).Seconds(); dt > 0.05 {
		if delta := progress - p.lastProgress; delta > 0 {
			if p.progressRate > 0 {
				p.progressRate = 0.7*p.progressRate + 0.3*(delta/dt)
			} else {
				p.progressRate = progress / elapsed.Seconds()
			}
		}
		p.lastUpdate = now
		p.lastProgress = progress
	}
	return progress, p.GetETA()
}

// GetETA returns the estimate for the current progress without recording a
// new update.
func (p *ProgressWithETA) GetETA() time.Duration {
	progress := p.CalculateAverage()
	if p.progressRate <= 0 || progress >= 1 {
		return 0
	}
	eta := time.Duration((1 - progress) / p.progressRate * float64(time.Second))
	return min(eta, maxETA)
}

// FormatETA renders an estimate as "calculating...", "< 1s", "42s", "2m30s"
// or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h, m := int(eta.Hours()), int(eta.Minutes())%60
	if m > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
