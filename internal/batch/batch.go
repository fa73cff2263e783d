// Package batch launches many independent GCD computations over the device
// kernels. Units are split into fixed-width lockstep groups; groups run
// concurrently on a bounded pool of workers, and the launch completes only
// when every group has finished. Two input schemes are supported: direct
// (unit k pairs A[k] with B[k]) and selection (unit k pairs the k-th
// distinct key pair of a key set).
package batch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agbru/rsagcd/internal/bignum"
)

// Scheme selects how units map to inputs.
type Scheme int

const (
	// Direct computes gcd(A[k], B[k]) for k < Count.
	Direct Scheme = iota
	// Selection computes gcd(A[i], B[j]) for the k-th pair (i, j), i < j, of
	// the lexicographic enumeration of pairs of Keys keys, for k < Count.
	Selection
)

func (s Scheme) String() string {
	switch s {
	case Direct:
		return "direct"
	case Selection:
		return "selection"
	default:
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
}

// ParseScheme converts "direct" or "selection" to a Scheme.
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "direct":
		return Direct, nil
	case "selection":
		return Selection, nil
	default:
		return Direct, fmt.Errorf("unknown scheme %q (expected direct or selection)", name)
	}
}

// Job describes the inputs of one launch.
type Job struct {
	Scheme Scheme
	A, B   []*bignum.BigNum
	// Count is the number of units: the number of aligned pairs for Direct,
	// the number of key pairs for Selection.
	Count int
	// Keys is the number of keys considered by Selection.
	Keys int
}

// DirectJob returns a job computing gcd(a[k], b[k]) for every k < n.
func DirectJob(a, b []*bignum.BigNum, n int) Job {
	return Job{Scheme: Direct, A: a, B: b, Count: n}
}

// SelectionJob returns a job computing the first pairs key pairs of the
// first keys keys.
func SelectionJob(a, b []*bignum.BigNum, pairs, keys int) Job {
	return Job{Scheme: Selection, A: a, B: b, Count: pairs, Keys: keys}
}

// AllPairsJob returns a selection job over every pair of keys.
func AllPairsJob(keys []*bignum.BigNum) Job {
	return SelectionJob(keys, keys, TotalPairs(len(keys)), len(keys))
}

// Pair returns the input indices of unit k.
func (j Job) Pair(k int) (ia, ib int) {
	if j.Scheme == Selection {
		return PairAt(k, j.Keys)
	}
	return k, k
}

// Progress reports completed units of a launch.
type Progress struct {
	Algorithm string
	Done      int
	Total     int
}

// Stats summarizes a completed launch.
type Stats struct {
	Algorithm  string
	Scheme     Scheme
	Units      int
	Groups     int
	GroupWidth int
	Workers    int
	// Iterations is the total number of reduction steps over all lanes.
	Iterations int64
	// MaxIterations is the largest step count of a single lane.
	MaxIterations int
	// Efficiency is the share of lockstep steps doing useful work: total
	// lane steps over the sum, per group, of lane count times the slowest
	// lane's steps. It is 1 when every lane of every group takes as many
	// steps as the slowest lane of its group.
	Efficiency float64
	Duration   time.Duration
}

// ErrLaunch is matched by every *LaunchError.
var ErrLaunch = errors.New("launch failed")

// LaunchError reports a fatal failure of a group during a launch, such as a
// capacity violation or an exhausted step budget inside a kernel. The batch
// is abandoned and no results are written.
type LaunchError struct {
	Algorithm string
	// Group is the first group that failed.
	Group int
	// Failed counts the groups that failed before the launch drained.
	Failed int
	Err    error
}

func (e *LaunchError) Error() string {
	if e.Failed > 1 {
		return fmt.Sprintf("batch: %s launch failed in group %d (%d groups failed): %v", e.Algorithm, e.Group, e.Failed, e.Err)
	}
	return fmt.Sprintf("batch: %s launch failed in group %d: %v", e.Algorithm, e.Group, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Is reports a match against ErrLaunch.
func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// validate checks a job on the host before anything is launched. It returns
// the slot capacity in words needed by the inputs.
func validate(job Job) (capacity int, err error) {
	if job.Count < 0 {
		return 0, fmt.Errorf("batch: negative unit count %d: %w", job.Count, bignum.ErrPreconditionViolation)
	}
	inputs := job.Count
	switch job.Scheme {
	case Direct:
	case Selection:
		if job.Keys < 2 {
			return 0, fmt.Errorf("batch: selection needs at least 2 keys, got %d: %w", job.Keys, bignum.ErrPreconditionViolation)
		}
		if total := TotalPairs(job.Keys); job.Count < 1 || job.Count > total {
			return 0, fmt.Errorf("batch: pair count %d outside [1, %d]: %w", job.Count, total, bignum.ErrPreconditionViolation)
		}
		inputs = job.Keys
	default:
		return 0, fmt.Errorf("batch: unknown scheme %v: %w", job.Scheme, bignum.ErrPreconditionViolation)
	}
	if len(job.A) < inputs || len(job.B) < inputs {
		return 0, fmt.Errorf("batch: need %d inputs, got %d and %d: %w", inputs, len(job.A), len(job.B), bignum.ErrPreconditionViolation)
	}

	capacity = 1
	for i := 0; i < inputs; i++ {
		if err := job.A[i].Validate(); err != nil {
			return 0, fmt.Errorf("batch: A[%d]: %w", i, err)
		}
		if err := job.B[i].Validate(); err != nil {
			return 0, fmt.Errorf("batch: B[%d]: %w", i, err)
		}
		capacity = max(capacity, job.A[i].Len(), job.B[i].Len())
	}
	if err := checkZeroPairs(job, inputs); err != nil {
		return 0, err
	}
	return capacity, nil
}

// checkZeroPairs rejects units whose operands are both zero. The pair scan
// only runs when both input sets contain a zero.
func checkZeroPairs(job Job, inputs int) error {
	zeroA, zeroB := false, false
	for i := 0; i < inputs; i++ {
		zeroA = zeroA || job.A[i].IsZero()
		zeroB = zeroB || job.B[i].IsZero()
	}
	if !zeroA || !zeroB {
		return nil
	}
	for k := 0; k < job.Count; k++ {
		ia, ib := job.Pair(k)
		if job.A[ia].IsZero() && job.B[ib].IsZero() {
			return fmt.Errorf("batch: unit %d (A[%d], B[%d]): %w", k, ia, ib, bignum.ErrZeroInput)
		}
	}
	return nil
}

// sameInputs reports whether a and b share their first n elements, so the
// selection scheme can upload the key set once.
func sameInputs(a, b []*bignum.BigNum, n int) bool {
	return n > 0 && len(a) >= n && len(b) >= n && &a[0] == &b[0]
}
