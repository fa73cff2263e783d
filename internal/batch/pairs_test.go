package batch

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestPairEnumerationIsLexicographic(t *testing.T) {
	t.Parallel()
	for n := 2; n <= 40; n++ {
		k := 0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if got := PairIndex(i, j, n); got != k {
					t.Fatalf("PairIndex(%d, %d, %d) = %d, want %d", i, j, n, got, k)
				}
				if gi, gj := PairAt(k, n); gi != i || gj != j {
					t.Fatalf("PairAt(%d, %d) = (%d, %d), want (%d, %d)", k, n, gi, gj, i, j)
				}
				k++
			}
		}
		if k != TotalPairs(n) {
			t.Fatalf("TotalPairs(%d) = %d, enumerated %d", n, TotalPairs(n), k)
		}
	}
	if TotalPairs(0) != 0 || TotalPairs(1) != 0 {
		t.Error("TotalPairs of fewer than two keys should be zero")
	}
}

func TestPairAtFourKeys(t *testing.T) {
	t.Parallel()
	want := [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	for k, p := range want {
		if i, j := PairAt(k, 4); i != p[0] || j != p[1] {
			t.Errorf("PairAt(%d, 4) = (%d, %d), want %v", k, i, j, p)
		}
	}
}

// TestPairAt_PropertyBased checks the round trip on key sets far larger
// than the exhaustive test covers.
func TestPairAt_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("PairIndex(PairAt(k)) == k", prop.ForAll(
		func(n int, frac float64) bool {
			total := TotalPairs(n)
			k := min(int(frac*float64(total)), total-1)
			i, j := PairAt(k, n)
			return 0 <= i && i < j && j < n && PairIndex(i, j, n) == k
		},
		gen.IntRange(2, 3_000_000), gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}
