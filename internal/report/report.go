// Package report turns batch GCD results into findings: pairs of moduli
// that share a non-trivial factor, with the recovered factorization of
// each modulus. Findings are self-checking and render as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/agbru/rsagcd/internal/batch"
	"github.com/agbru/rsagcd/internal/bignum"
)

// Finding is a unit whose GCD is neither one nor zero.
type Finding struct {
	Unit     int
	I, J     int
	SourceI  string
	SourceJ  string
	ModulusI *big.Int
	ModulusJ *big.Int
	// Factor is the shared divisor.
	Factor *big.Int
	// CofactorI and CofactorJ are ModulusI/Factor and ModulusJ/Factor.
	CofactorI *big.Int
	CofactorJ *big.Int
	// Duplicate is set when both moduli are equal, so nothing is factored.
	Duplicate bool
}

// Test reports whether the factorization holds for both moduli.
func (f Finding) Test() bool {
	pi := new(big.Int).Mul(f.Factor, f.CofactorI)
	pj := new(big.Int).Mul(f.Factor, f.CofactorJ)
	return pi.Cmp(f.ModulusI) == 0 && pj.Cmp(f.ModulusJ) == 0
}

func (f Finding) String() string {
	if f.Duplicate {
		return fmt.Sprintf("DUPLICATE: %s %s N=%x", f.SourceI, f.SourceJ, f.ModulusI)
	}
	return fmt.Sprintf("SHARED: %s %s P=%x Q1=%x Q2=%x", f.SourceI, f.SourceJ, f.Factor, f.CofactorI, f.CofactorJ)
}

// Analyze inspects the results of job and returns one Finding per unit with
// a non-trivial GCD, in unit order. names labels the inputs by index and may
// be nil.
func Analyze(job batch.Job, results []*bignum.BigNum, names []string) ([]Finding, error) {
	if len(results) < job.Count {
		return nil, fmt.Errorf("report: %d results for %d units", len(results), job.Count)
	}
	var out []Finding
	for k := 0; k < job.Count; k++ {
		g := results[k]
		if g.IsZero() || g.IsOne() {
			continue
		}
		i, j := job.Pair(k)
		ni, nj := job.A[i].BigInt(), job.B[j].BigInt()
		factor := g.BigInt()
		f := Finding{
			Unit:      k,
			I:         i,
			J:         j,
			SourceI:   label(names, i),
			SourceJ:   label(names, j),
			ModulusI:  ni,
			ModulusJ:  nj,
			Factor:    factor,
			CofactorI: new(big.Int).Quo(ni, factor),
			CofactorJ: new(big.Int).Quo(nj, factor),
			Duplicate: ni.Cmp(nj) == 0,
		}
		out = append(out, f)
	}
	return out, nil
}

func label(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return fmt.Sprintf("#%d", i)
}

// Verify checks every finding and returns an error naming the first one
// whose factorization does not hold.
func Verify(findings []Finding) error {
	for _, f := range findings {
		if !f.Test() {
			return fmt.Errorf("report: unit %d (%s, %s): factor %x does not divide both moduli", f.Unit, f.SourceI, f.SourceJ, f.Factor)
		}
	}
	return nil
}

// Vulnerable returns the sorted indices of inputs that appear in at least
// one finding.
func Vulnerable(findings []Finding) []int {
	seen := make(map[int]bool)
	var out []int
	for _, f := range findings {
		for _, i := range []int{f.I, f.J} {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	sort.Ints(out)
	return out
}

// WriteText writes one line per finding as an aligned table.
func WriteText(w io.Writer, findings []Finding) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Unit\tKey A\tKey B\tKind\tShared factor (bits)\n")
	for _, f := range findings {
		kind := "shared-prime"
		if f.Duplicate {
			kind = "duplicate"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\n", f.Unit, f.SourceI, f.SourceJ, kind, f.Factor.BitLen())
	}
	return tw.Flush()
}

// Summary is the machine-readable outcome of a run.
type Summary struct {
	Algorithm  string
	Scheme     string
	Keys       int
	Units      int
	Efficiency float64
	Duration   time.Duration
	Verified   bool
	Findings   []Finding
}

type jsonFinding struct {
	Unit      int    `json:"unit"`
	KeyA      string `json:"key_a"`
	KeyB      string `json:"key_b"`
	IndexA    int    `json:"index_a"`
	IndexB    int    `json:"index_b"`
	Duplicate bool   `json:"duplicate"`
	Factor    string `json:"factor"`
	CofactorA string `json:"cofactor_a"`
	CofactorB string `json:"cofactor_b"`
}

type jsonSummary struct {
	Algorithm  string        `json:"algorithm"`
	Scheme     string        `json:"scheme"`
	Keys       int           `json:"keys"`
	Units      int           `json:"units"`
	Efficiency float64       `json:"efficiency"`
	DurationMs float64       `json:"duration_ms"`
	Verified   bool          `json:"verified"`
	Vulnerable []int         `json:"vulnerable"`
	Findings   []jsonFinding `json:"findings"`
}

// WriteJSON writes s as indented JSON with hexadecimal factors.
func WriteJSON(w io.Writer, s Summary) error {
	out := jsonSummary{
		Algorithm:  s.Algorithm,
		Scheme:     s.Scheme,
		Keys:       s.Keys,
		Units:      s.Units,
		Efficiency: s.Efficiency,
		DurationMs: float64(s.Duration.Microseconds()) / 1000,
		Verified:   s.Verified,
		Vulnerable: Vulnerable(s.Findings),
		Findings:   make([]jsonFinding, 0, len(s.Findings)),
	}
	if out.Vulnerable == nil {
		out.Vulnerable = []int{}
	}
	for _, f := range s.Findings {
		out.Findings = append(out.Findings, jsonFinding{
			Unit:      f.Unit,
			KeyA:      f.SourceI,
			KeyB:      f.SourceJ,
			IndexA:    f.I,
			IndexB:    f.J,
			Duplicate: f.Duplicate,
			Factor:    f.Factor.Text(16),
			CofactorA: f.CofactorI.Text(16),
			CofactorB: f.CofactorJ.Text(16),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
