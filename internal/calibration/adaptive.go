// Package calibration chooses the lockstep group width and worker count of
// the batch orchestrator for the current machine, either from hardware
// heuristics or by benchmarking candidate widths.
package calibration

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/agbru/rsagcd/internal/batch"
)

// Hardware describes the features that drive the heuristics.
type Hardware struct {
	NumCPU    int
	GOARCH    string
	HasAVX2   bool
	HasAVX512 bool
	HasASIMD  bool
}

// DetectHardware reads the current machine's characteristics.
func DetectHardware() Hardware {
	return Hardware{
		NumCPU:    runtime.NumCPU(),
		GOARCH:    runtime.GOARCH,
		HasAVX2:   cpu.X86.HasAVX2,
		HasAVX512: cpu.X86.HasAVX512F && cpu.X86.HasAVX512BW,
		HasASIMD:  cpu.ARM64.HasASIMD,
	}
}

// Features lists the detected vector extensions.
func (h Hardware) Features() []string {
	var out []string
	if h.HasAVX2 {
		out = append(out, "avx2")
	}
	if h.HasAVX512 {
		out = append(out, "avx512")
	}
	if h.HasASIMD {
		out = append(out, "asimd")
	}
	return out
}

func (h Hardware) String() string {
	features := "none"
	if f := h.Features(); len(f) > 0 {
		features = strings.Join(f, ",")
	}
	return fmt.Sprintf("%s, %d cores, vector extensions: %s", h.GOARCH, h.NumCPU, features)
}

// EstimateGroupWidth returns a lane count without benchmarking. Wider vector
// units favor wider groups since a group's lanes share a workspace pool and
// stream through the same arena region.
func EstimateGroupWidth(h Hardware) int {
	switch {
	case h.HasAVX512:
		return 64
	case h.HasAVX2:
		return batch.DefaultGroupWidth
	case h.HasASIMD:
		return 16
	default:
		return 8
	}
}

// EstimateWorkers returns the number of groups to run concurrently.
func EstimateWorkers(h Hardware) int {
	return max(h.NumCPU, 1)
}

// CandidateGroupWidths returns the widths benchmarked by RunCalibration,
// in ascending order and always including the heuristic estimate.
func CandidateGroupWidths(h Hardware) []int {
	widths := []int{8, 16, 32, 64, 128}
	if h.NumCPU <= 2 {
		widths = widths[:4]
	}
	if est := EstimateGroupWidth(h); !slices.Contains(widths, est) {
		widths = append(widths, est)
	}
	slices.Sort(widths)
	return widths
}

// ClampGroupWidth bounds a width to [1, 4096].
func ClampGroupWidth(w int) int {
	return min(max(w, 1), 4096)
}
