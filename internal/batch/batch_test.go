package batch

import (
	"context"
	"errors"
	"math/big"
	"math/rand"
	"testing"

	"github.com/agbru/rsagcd/internal/bignum"
	"github.com/agbru/rsagcd/internal/device"
	"github.com/agbru/rsagcd/internal/gcd"
	"github.com/agbru/rsagcd/internal/testutil"
)

// randomOperands returns n values of exactly words words with the top bit
// set, which keeps Euclidean quotients small for subtraction-only kernels.
func randomOperands(rng *rand.Rand, n, words int) []*bignum.BigNum {
	out := make([]*bignum.BigNum, n)
	for i := range out {
		ws := make([]bignum.Word, words)
		for j := range ws {
			ws[j] = rng.Uint32()
		}
		ws[len(ws)-1] |= 0x80000000
		out[i] = bignum.FromWords(ws...)
	}
	return out
}

func TestRunBatchSelectionFindsSharedPrimes(t *testing.T) {
	t.Parallel()
	keys, p1, p2 := testutil.SharedPrimeKeys(t)
	for _, name := range device.Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			o := New(WithGroupWidth(4), WithWorkers(2))
			r := make([]*bignum.BigNum, TotalPairs(len(keys)))
			stats, err := o.RunBatchSelection(context.Background(), keys, keys, r, len(r), len(keys), name)
			if err != nil {
				t.Fatalf("RunBatchSelection: %v", err)
			}
			if stats.Units != 6 || stats.Groups != 2 {
				t.Errorf("stats = %+v", stats)
			}
			for k, g := range r {
				i, j := PairAt(k, len(keys))
				var want *big.Int
				switch {
				case i == 0 && j == 2:
					want = p1
				case i == 1 && j == 3:
					want = p2
				default:
					want = big.NewInt(1)
				}
				if g.BigInt().Cmp(want) != 0 {
					t.Errorf("pair (%d, %d): got %s, want %s", i, j, g, want)
				}
			}
		})
	}
}

func TestRunBatchSelectionRSA2048(t *testing.T) {
	t.Parallel()
	m1, m2, p := testutil.SharedPrime2048Keys(t)
	keys := []*bignum.BigNum{m1, m2}
	for _, name := range device.Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			r := make([]*bignum.BigNum, 1)
			if _, err := New().RunBatchSelection(context.Background(), keys, keys, r, 1, len(keys), name); err != nil {
				t.Fatalf("RunBatchSelection: %v", err)
			}
			if r[0].BigInt().Cmp(p) != 0 {
				t.Errorf("got %s, want %s", r[0].Text(16), p.Text(16))
			}
		})
	}
}

func TestRunBatchMatchesHost(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	const n = 37
	a := randomOperands(rng, n, 4)
	b := randomOperands(rng, n, 4)
	factory := gcd.NewDefaultFactory()

	for _, name := range device.Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			want, err := RunHost(context.Background(), factory.MustGet(name), DirectJob(a, b, n))
			if err != nil {
				t.Fatalf("RunHost: %v", err)
			}
			for _, width := range []int{1, 5, 32, 64} {
				c := make([]*bignum.BigNum, n)
				stats, err := New(WithGroupWidth(width), WithWorkers(3)).RunBatch(context.Background(), a, b, c, n, name)
				if err != nil {
					t.Fatalf("width %d: %v", width, err)
				}
				for k := range c {
					if c[k].Cmp(want[k]) != bignum.Equal {
						t.Fatalf("width %d unit %d: got %s, want %s", width, k, c[k], want[k])
					}
				}
				if wantGroups := (n + width - 1) / width; stats.Groups != wantGroups {
					t.Errorf("width %d: %d groups, want %d", width, stats.Groups, wantGroups)
				}
				if stats.Efficiency <= 0 || stats.Efficiency > 1 {
					t.Errorf("width %d: efficiency %f out of range", width, stats.Efficiency)
				}
				if width == 1 && stats.Efficiency != 1 {
					t.Errorf("single-lane groups should be fully efficient, got %f", stats.Efficiency)
				}
			}
		})
	}
}

func TestRunBatchSelectionSeparateInputs(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(11))
	a := randomOperands(rng, 6, 3)
	b := randomOperands(rng, 6, 3)
	job := SelectionJob(a, b, 10, 6)
	want, err := RunHost(context.Background(), gcd.NewDefaultFactory().MustGet("binary"), job)
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := New().Run(context.Background(), job, "binary")
	if err != nil {
		t.Fatal(err)
	}
	for k := range want {
		i, j := PairAt(k, 6)
		if got[k].Cmp(want[k]) != bignum.Equal {
			t.Errorf("unit %d = gcd(A[%d], B[%d]): got %s, want %s", k, i, j, got[k], want[k])
		}
	}
}

func TestRunBatchValidation(t *testing.T) {
	t.Parallel()
	keys, _, _ := testutil.SharedPrimeKeys(t)
	released := bignum.FromWord(5)
	released.Release()
	ctx := context.Background()
	o := New()

	tests := []struct {
		name string
		run  func(out []*bignum.BigNum) error
		want error
	}{
		{"zero pairs", func(out []*bignum.BigNum) error {
			_, err := o.RunBatchSelection(ctx, keys, keys, out, 0, 4, "binary")
			return err
		}, bignum.ErrPreconditionViolation},
		{"too many pairs", func(out []*bignum.BigNum) error {
			_, err := o.RunBatchSelection(ctx, keys, keys, out, 7, 4, "binary")
			return err
		}, bignum.ErrPreconditionViolation},
		{"one key", func(out []*bignum.BigNum) error {
			_, err := o.RunBatchSelection(ctx, keys, keys, out, 1, 1, "binary")
			return err
		}, bignum.ErrPreconditionViolation},
		{"short inputs", func(out []*bignum.BigNum) error {
			_, err := o.RunBatch(ctx, keys, keys[:2], out, 4, "binary")
			return err
		}, bignum.ErrPreconditionViolation},
		{"unknown algorithm", func(out []*bignum.BigNum) error {
			_, err := o.RunBatch(ctx, keys, keys, out, 4, "lehmer")
			return err
		}, bignum.ErrPreconditionViolation},
		{"malformed input", func(out []*bignum.BigNum) error {
			in := []*bignum.BigNum{keys[0], released, keys[2], keys[3]}
			_, err := o.RunBatch(ctx, keys, in, out, 4, "binary")
			return err
		}, bignum.ErrMalformedInput},
		{"double zero", func(out []*bignum.BigNum) error {
			in := []*bignum.BigNum{keys[0], bignum.New(), keys[2], bignum.New()}
			_, err := o.RunBatchSelection(ctx, in, in, out, 6, 4, "binary")
			return err
		}, bignum.ErrZeroInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := make([]*bignum.BigNum, 8)
			err := tt.run(out)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			for k, r := range out {
				if r != nil {
					t.Errorf("output %d written on failure", k)
				}
			}
		})
	}
}

func TestRunBatchSingleZeroOperand(t *testing.T) {
	t.Parallel()
	a := []*bignum.BigNum{bignum.New(), bignum.FromWord(12)}
	b := []*bignum.BigNum{bignum.FromWord(9), bignum.New()}
	c := make([]*bignum.BigNum, 2)
	if _, err := New().RunBatch(context.Background(), a, b, c, 2, "fast-binary"); err != nil {
		t.Fatal(err)
	}
	if c[0].String() != "9" || c[1].String() != "12" {
		t.Errorf("got %s, %s", c[0], c[1])
	}
}

func TestRunBatchCancelled(t *testing.T) {
	t.Parallel()
	keys, _, _ := testutil.SharedPrimeKeys(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := make([]*bignum.BigNum, 6)
	_, err := New().RunBatchSelection(ctx, keys, keys, out, 6, 4, "binary")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for k, r := range out {
		if r != nil {
			t.Errorf("output %d written after cancellation", k)
		}
	}
}

func TestLaunchFailureAbandonsBatch(t *testing.T) {
	t.Parallel()
	keys, _, _ := testutil.SharedPrimeKeys(t)
	failing := func(ws *device.Workspace, a, b, r *device.Operand) int {
		r.CopyFrom(a)
		device.Lsh(r, 1<<20)
		return 0
	}
	_, _, err := New(WithGroupWidth(2)).run(context.Background(), AllPairsJob(keys), "overflow", failing)
	if !errors.Is(err, ErrLaunch) {
		t.Fatalf("expected ErrLaunch, got %v", err)
	}
	var le *LaunchError
	if !errors.As(err, &le) || le.Algorithm != "overflow" || le.Group < 0 || le.Failed < 1 {
		t.Fatalf("unexpected launch error: %#v", err)
	}
	if !errors.Is(err, bignum.ErrCapacityViolation) {
		t.Errorf("capacity violation should be reachable, got %v", err)
	}
}

// powerOfTwo returns 2^n.
func powerOfTwo(t *testing.T, n uint) *bignum.BigNum {
	t.Helper()
	z := bignum.FromWord(1)
	if err := z.Lsh(n); err != nil {
		t.Fatal(err)
	}
	return z
}

func TestStepBudgetFailsLaunch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		bits uint
		opts []Option
	}{
		{"explicit budget", 4096, []Option{WithStepsPerBit(4)}},
		{"default budget", 1024, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			keys := []*bignum.BigNum{powerOfTwo(t, tt.bits), bignum.FromWord(3)}
			results, _, err := New(tt.opts...).Run(context.Background(), AllPairsJob(keys), "classic")
			if !errors.Is(err, ErrLaunch) || !errors.Is(err, device.ErrStepBudget) {
				t.Fatalf("expected a step budget launch failure, got %v", err)
			}
			if results != nil {
				t.Errorf("results written after a failed launch")
			}
		})
	}

	// The same pair is cheap for the binary kernels.
	keys := []*bignum.BigNum{powerOfTwo(t, 4096), bignum.FromWord(3)}
	results, _, err := New(WithStepsPerBit(4)).Run(context.Background(), AllPairsJob(keys), "fast-binary")
	if err != nil {
		t.Fatalf("fast-binary: %v", err)
	}
	if !results[0].IsOne() {
		t.Errorf("gcd(2^4096, 3) = %s, want 1", results[0])
	}
}

func TestLaunchErrorMessage(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	tests := []struct {
		err  *LaunchError
		want string
	}{
		{&LaunchError{Algorithm: "classic", Group: 3, Failed: 1, Err: cause}, "batch: classic launch failed in group 3: boom"},
		{&LaunchError{Algorithm: "classic", Group: 3, Failed: 4, Err: cause}, "batch: classic launch failed in group 3 (4 groups failed): boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestProgressReportsCompletion(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	a := randomOperands(rng, 20, 2)
	ch := make(chan Progress, 64)
	o := New(WithGroupWidth(4), WithWorkers(2), WithProgress(ch))
	if _, _, err := o.Run(context.Background(), AllPairsJob(a), "binary"); err != nil {
		t.Fatal(err)
	}
	close(ch)
	maxDone := 0
	for p := range ch {
		if p.Total != TotalPairs(20) || p.Algorithm != "binary" {
			t.Fatalf("unexpected update %+v", p)
		}
		maxDone = max(maxDone, p.Done)
	}
	if maxDone != TotalPairs(20) {
		t.Errorf("last progress %d, want %d", maxDone, TotalPairs(20))
	}
}

func TestEmptyDirectBatch(t *testing.T) {
	t.Parallel()
	stats, err := New().RunBatch(context.Background(), nil, nil, nil, 0, "classic")
	if err != nil || stats.Units != 0 {
		t.Fatalf("empty batch: %+v, %v", stats, err)
	}
}

func TestSchemeParsing(t *testing.T) {
	t.Parallel()
	for _, s := range []Scheme{Direct, Selection} {
		got, err := ParseScheme(s.String())
		if err != nil || got != s {
			t.Errorf("ParseScheme(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseScheme("mixed"); err == nil {
		t.Error("expected error for unknown scheme")
	}
	o := New(WithWorkers(0), WithGroupWidth(-1), WithLogger(nil))
	if o.Workers() < 1 || o.GroupWidth() != DefaultGroupWidth {
		t.Errorf("invalid options should be ignored: workers=%d width=%d", o.Workers(), o.GroupWidth())
	}
}
