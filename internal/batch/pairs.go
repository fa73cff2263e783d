package batch

import "math"

// TotalPairs returns the number of unordered pairs of n keys, n(n-1)/2.
func TotalPairs(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// PairIndex returns the position of the pair (i, j), i < j < n, in the
// lexicographic enumeration (0,1), (0,2), ..., (0,n-1), (1,2), ...
func PairIndex(i, j, n int) int {
	return i*n - i*(i+1)/2 + (j - i - 1)
}

// PairAt is the inverse of PairIndex: it returns the k-th pair of the
// lexicographic enumeration of pairs of n keys. k must be below
// TotalPairs(n).
func PairAt(k, n int) (i, j int) {
	// Closed form from the triangular row offsets, corrected for floating
	// point error on large n.
	d := float64(4*n*(n-1)-7) - 8*float64(k)
	i = n - 2 - int(math.Floor(math.Sqrt(d)/2-0.5))
	i = max(0, min(i, n-2))
	for i > 0 && PairIndex(i, i+1, n) > k {
		i--
	}
	for i < n-2 && PairIndex(i+1, i+2, n) <= k {
		i++
	}
	j = k - PairIndex(i, i+1, n) + i + 1
	return i, j
}
