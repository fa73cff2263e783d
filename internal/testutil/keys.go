package testutil

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agbru/rsagcd/internal/bignum"
)

// fixturePrimes are 127-bit primes. Every pair of moduli built from them
// reduces in about a thousand subtraction steps, so even the
// subtraction-only algorithm finishes quickly.
var fixturePrimes = []string{
	"164365469419234244751457209049325304793",
	"167197030454323604741485469149744093459",
	"146441491244479520829164801097264398929",
	"132916965828881846516309705470070551421",
	"155052749721487387911035965771393146737",
	"143558677772328988085478603157608512467",
}

// SharedPrimeModuli returns four 254-bit two-prime moduli in which moduli 0
// and 2 share p1 and moduli 1 and 3 share p2. Every other pair is coprime.
func SharedPrimeModuli() (moduli []*big.Int, p1, p2 *big.Int) {
	ps := make([]*big.Int, len(fixturePrimes))
	for i, s := range fixturePrimes {
		ps[i], _ = new(big.Int).SetString(s, 10)
	}
	for _, f := range [][2]int{{0, 4}, {1, 3}, {0, 5}, {1, 2}} {
		moduli = append(moduli, new(big.Int).Mul(ps[f[0]], ps[f[1]]))
	}
	return moduli, ps[0], ps[1]
}

// SharedPrimeKeys returns SharedPrimeModuli as numbers.
func SharedPrimeKeys(t testing.TB) (keys []*bignum.BigNum, p1, p2 *big.Int) {
	t.Helper()
	moduli, p1, p2 := SharedPrimeModuli()
	for _, m := range moduli {
		k, err := bignum.FromBigInt(m)
		if err != nil {
			t.Fatal(err)
		}
		keys = append(keys, k)
	}
	return keys, p1, p2
}

// rsa2048Primes are 1024-bit primes with their two top bits set, so the
// product of any two of them has exactly 2048 bits.
var rsa2048Primes = [3]string{
	"eddfb58038728036c3fd8e560ed288afb2f7560baaaa15e0401a66b4381255b4a32607d3549637c64df3dbb80056455109999ab7c64701e8fe948e9a5f80114f" +
		"a739b95d3d810e5a0cb0597ff1c9531386ae8277bdbb11e969309f837fa097d771b16e3bf8a54904f60a3fc14860ec7a7329eb86181772c19078260be93f4ae9",
	"d467f171beaee830d2c9c5630a321f4a78e71b1dafdbc30c9878a9c1f5c231580aef41528c98ebe74131056da41e08caea12d7391fa1ec0c1bed11d75f043c3c" +
		"55c6124579f3bb1d8f417b6ee23d0ea41575e99a83f2d93f87d55657a4471e25f51139e8aaf0b961d16bb2937ea6d8f691701c1696ae44dd9b39aa61ecf69d49",
	"c2359cc60f0b25f655df3b2dabe32052560655d8db30f5db54f2edffd12753e54ef681bc21b9df537a2869a66a278af3c5e5b615a44ed0f3ed27b97d4a2e28f5" +
		"93180c8be70b382ab216b0456b1f997dc8cbe45fa2cb57224a02de33e843945f14d3264d824dc970dfb3afa0fbd3eef87104c5efd016cdfdfe3e6e3dfde8d90d",
}

// SharedPrime2048 returns the 2048-bit moduli p*q1 and p*q2 and their
// common factor p.
func SharedPrime2048() (m1, m2, p *big.Int) {
	var ps [3]*big.Int
	for i, s := range rsa2048Primes {
		ps[i], _ = new(big.Int).SetString(s, 16)
	}
	return new(big.Int).Mul(ps[0], ps[1]), new(big.Int).Mul(ps[0], ps[2]), ps[0]
}

// SharedPrime2048Keys returns SharedPrime2048 as numbers.
func SharedPrime2048Keys(t testing.TB) (m1, m2 *bignum.BigNum, p *big.Int) {
	t.Helper()
	a, b, p := SharedPrime2048()
	m1, err := bignum.FromBigInt(a)
	if err != nil {
		t.Fatal(err)
	}
	m2, err = bignum.FromBigInt(b)
	if err != nil {
		t.Fatal(err)
	}
	return m1, m2, p
}

// WriteHexFile writes moduli, one hexadecimal value per line, to a file
// named name in a fresh temporary directory and returns its path.
func WriteHexFile(t testing.TB, name string, moduli []*big.Int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("# test moduli\n")
	for _, m := range moduli {
		b.WriteString(m.Text(16))
		b.WriteByte('\n')
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
