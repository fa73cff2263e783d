package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

// GoldenData represents a single test case in the golden file. Values are
// lower-case hexadecimal without prefix.
type GoldenData struct {
	Name string `json:"name"`
	A    string `json:"a"`
	B    string `json:"b"`
	GCD  string `json:"gcd"`
}

func main() {
	outputDir := flag.String("out", "internal/gcd/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "gcd_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Every case keeps the quotients of the Euclidean steps small so that the
	// subtraction-only algorithm finishes quickly.
	var data []GoldenData
	for _, c := range goldenCases() {
		g := new(big.Int).GCD(nil, nil, c.a, c.b)
		data = append(data, GoldenData{
			Name: c.name,
			A:    c.a.Text(16),
			B:    c.b.Text(16),
			GCD:  g.Text(16),
		})
		fmt.Printf("Generated %s\n", c.name)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

type goldenCase struct {
	name string
	a, b *big.Int
}

func goldenCases() []goldenCase {
	m61 := mersenne(61)
	m127 := mersenne(127)
	m521 := mersenne(521)
	two32p1 := new(big.Int).Add(pow2(32), big.NewInt(1))

	return []goldenCase{
		{"textbook-48-18", big.NewInt(48), big.NewInt(18)},
		{"textbook-1071-462", big.NewInt(1071), big.NewInt(462)},
		{"coprime-17-5", big.NewInt(17), big.NewInt(5)},
		{"power-of-two-factor", mul(big.NewInt(3), pow2(130)), mul(big.NewInt(5), pow2(130))},
		{"fibonacci-consecutive", fib(300), fib(301)},
		{"fibonacci-indices", fib(420), fib(400)},
		{"shared-mersenne-prime", mul(m127, mersenne(89)), mul(m127, new(big.Int).Exp(big.NewInt(3), big.NewInt(56), nil))},
		{"even-shared", mul(big.NewInt(3), pow2(20), m61), mul(big.NewInt(5), pow2(17), m61)},
		{"zero-operand", big.NewInt(0), new(big.Int).Add(pow2(64), big.NewInt(13))},
		{"equal-operands", mul(m61, mersenne(31)), mul(m61, mersenne(31))},
		{"multiword-rsa-like", mul(m521, big.NewInt(1000000007)), mul(m521, big.NewInt(998244353))},
		{"word-boundary", mul(two32p1, mersenne(32)), mul(two32p1, new(big.Int).Sub(pow2(32), big.NewInt(3)))},
	}
}

func pow2(n uint) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), n)
}

func mersenne(n uint) *big.Int {
	return new(big.Int).Sub(pow2(n), big.NewInt(1))
}

func mul(xs ...*big.Int) *big.Int {
	r := big.NewInt(1)
	for _, x := range xs {
		r.Mul(r, x)
	}
	return r
}

// fib returns the n-th Fibonacci number using math/big.
func fib(n int) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for i := 0; i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}
