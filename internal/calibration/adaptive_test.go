package calibration

import (
	"slices"
	"testing"

	"github.com/agbru/rsagcd/internal/batch"
)

func TestEstimateGroupWidth(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		h    Hardware
		want int
	}{
		{"avx512", Hardware{NumCPU: 8, HasAVX2: true, HasAVX512: true}, 64},
		{"avx2", Hardware{NumCPU: 8, HasAVX2: true}, batch.DefaultGroupWidth},
		{"asimd", Hardware{NumCPU: 8, HasASIMD: true}, 16},
		{"scalar", Hardware{NumCPU: 1}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EstimateGroupWidth(tt.h); got != tt.want {
				t.Errorf("EstimateGroupWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEstimateWorkers(t *testing.T) {
	t.Parallel()
	if got := EstimateWorkers(Hardware{NumCPU: 0}); got != 1 {
		t.Errorf("EstimateWorkers(0 cores) = %d, want 1", got)
	}
	if got := EstimateWorkers(Hardware{NumCPU: 12}); got != 12 {
		t.Errorf("EstimateWorkers(12 cores) = %d, want 12", got)
	}
}

func TestCandidateGroupWidths(t *testing.T) {
	t.Parallel()
	for _, h := range []Hardware{
		{NumCPU: 1},
		{NumCPU: 2, HasASIMD: true},
		{NumCPU: 16, HasAVX2: true, HasAVX512: true},
	} {
		got := CandidateGroupWidths(h)
		if !slices.IsSorted(got) {
			t.Errorf("CandidateGroupWidths(%v) = %v, not sorted", h, got)
		}
		if !slices.Contains(got, EstimateGroupWidth(h)) {
			t.Errorf("CandidateGroupWidths(%v) = %v, missing the estimate", h, got)
		}
	}
	if got := CandidateGroupWidths(Hardware{NumCPU: 2}); slices.Contains(got, 128) {
		t.Errorf("small machines should not try width 128: %v", got)
	}
}

func TestClampGroupWidth(t *testing.T) {
	t.Parallel()
	for in, want := range map[int]int{-3: 1, 0: 1, 32: 32, 1 << 20: 4096} {
		if got := ClampGroupWidth(in); got != want {
			t.Errorf("ClampGroupWidth(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestHardwareString(t *testing.T) {
	t.Parallel()
	h := Hardware{NumCPU: 4, GOARCH: "amd64", HasAVX2: true}
	if got, want := h.String(), "amd64, 4 cores, vector extensions: avx2"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := (Hardware{NumCPU: 1, GOARCH: "386"}).String(); got != "386, 1 cores, vector extensions: none" {
		t.Errorf("String() = %q", got)
	}
}

func TestBenchJobDeterministic(t *testing.T) {
	t.Parallel()
	a := benchJob(8, 4, 1)
	b := benchJob(8, 4, 1)
	for k := range a.Count {
		if a.A[k].Cmp(b.A[k]) != 0 || a.B[k].Cmp(b.B[k]) != 0 {
			t.Fatalf("unit %d differs between runs with the same seed", k)
		}
		if a.A[k].Len() != 4 || !a.A[k].IsOdd() {
			t.Fatalf("unit %d: operand has %d words, odd=%v", k, a.A[k].Len(), a.A[k].IsOdd())
		}
	}
}
