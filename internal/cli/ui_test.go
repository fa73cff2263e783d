package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/testutil"
	"github.com/agbru/rsagcd/internal/ui"
)

type mockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *mockSpinner) Start() { m.mu.Lock(); m.started = true; m.mu.Unlock() }
func (m *mockSpinner) Stop()  { m.mu.Lock(); m.stopped = true; m.mu.Unlock() }

func (m *mockSpinner) UpdateSuffix(s string) {
	m.mu.Lock()
	m.suffix = s
	m.mu.Unlock()
}

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Nanosecond, "0µs"},
		{10 * time.Microsecond, "10µs"},
		{10 * time.Millisecond, "10ms"},
		{2 * time.Second, "2s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.d); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{1.7, "████"},
		{-1, "░░░░"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.progress, 4); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestProgressState(t *testing.T) {
	t.Parallel()
	ps := NewProgressState([]string{"binary", "classic"})
	ps.Update(batch.Progress{Algorithm: "binary", Done: 50, Total: 100})
	ps.Update(batch.Progress{Algorithm: "binary", Done: 30, Total: 100})
	ps.Update(batch.Progress{Algorithm: "unknown", Done: 100, Total: 100})
	ps.Update(batch.Progress{Algorithm: "classic", Done: 0, Total: 0})

	if got := ps.CalculateAverage(); got != 0.25 {
		t.Errorf("average = %v, want 0.25 (out-of-order report must not regress)", got)
	}
	if NewProgressState(nil).CalculateAverage() != 0 {
		t.Error("empty state should average to zero")
	}
}

// DisplayProgress swaps the package-level spinner constructor, so these
// tests do not run in parallel.
func TestDisplayProgress(t *testing.T) {
	saved := newSpinner
	t.Cleanup(func() { newSpinner = saved })
	mock := &mockSpinner{}
	newSpinner = func(...spinner.Option) Spinner { return mock }

	var buf bytes.Buffer
	var wg sync.WaitGroup
	ch := make(chan batch.Progress, 4)
	wg.Add(1)
	go DisplayProgress(&wg, ch, []string{"binary", "classic"}, &buf)
	ch <- batch.Progress{Algorithm: "binary", Done: 4, Total: 4}
	ch <- batch.Progress{Algorithm: "classic", Done: 4, Total: 4}
	close(ch)
	wg.Wait()

	if !mock.started || !mock.stopped {
		t.Errorf("spinner started=%v stopped=%v", mock.started, mock.stopped)
	}
	out := testutil.StripAnsiCodes(buf.String())
	if !strings.Contains(out, "Avg progress: 100.00%") {
		t.Errorf("final line missing, got %q", out)
	}
}

func TestDisplayProgressNoAlgorithms(t *testing.T) {
	var wg sync.WaitGroup
	ch := make(chan batch.Progress, 1)
	ch <- batch.Progress{Algorithm: "binary", Done: 1, Total: 1}
	close(ch)
	wg.Add(1)
	var buf bytes.Buffer
	DisplayProgress(&wg, ch, nil, &buf)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSelectAlgorithms(t *testing.T) {
	t.Parallel()
	registered := []string{"binary", "classic", "fast-binary"}
	if got := SelectAlgorithms("all", registered); len(got) != 3 {
		t.Errorf("all = %v", got)
	}
	if got := SelectAlgorithms("classic", registered); len(got) != 1 || got[0] != "classic" {
		t.Errorf("classic = %v", got)
	}
	if got := SelectAlgorithms("lehmer", registered); got != nil {
		t.Errorf("unknown = %v", got)
	}
}

func TestShorten(t *testing.T) {
	t.Parallel()
	short := strings.Repeat("a", TruncationLimit)
	if shorten(short) != short {
		t.Error("value at the limit should not be shortened")
	}
	long := strings.Repeat("b", DisplayEdges) + strings.Repeat("0", 100) + strings.Repeat("c", DisplayEdges)
	want := strings.Repeat("b", DisplayEdges) + "..." + strings.Repeat("c", DisplayEdges)
	if got := shorten(long); got != want {
		t.Errorf("shorten = %q, want %q", got, want)
	}
}

func TestPrintExecutionMode(t *testing.T) {
	saved := ui.GetCurrentTheme()
	t.Cleanup(func() { ui.SetCurrentTheme(saved) })
	ui.SetCurrentTheme(ui.NoColorTheme)

	var buf bytes.Buffer
	PrintExecutionMode([]string{"binary"}, &buf)
	if !strings.Contains(buf.String(), "Single batch with the binary algorithm") {
		t.Errorf("got %q", buf.String())
	}
	buf.Reset()
	PrintExecutionMode([]string{"binary", "classic", "fast-binary"}, &buf)
	if !strings.Contains(buf.String(), "Parallel comparison of 3 algorithms") {
		t.Errorf("got %q", buf.String())
	}
}
