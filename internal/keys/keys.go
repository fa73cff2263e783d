// Package keys loads RSA moduli for batch analysis, either from PEM files
// (public keys, certificates or private keys) or from plain text files of
// hexadecimal moduli, one per line.
package keys

import (
	"bufio"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agbru/rsagcd/internal/bignum"
)

// ErrNoRSAKey is returned when a PEM file holds no RSA key material.
var ErrNoRSAKey = errors.New("no RSA key found")

// Key is a modulus together with where it came from.
type Key struct {
	// Source is the file name, with a line number for hex files.
	Source  string
	Modulus *bignum.BigNum
}

// Bits returns the bit length of the modulus.
func (k Key) Bits() int {
	return k.Modulus.NumBits()
}

// Moduli returns the moduli of keys in order.
func Moduli(keys []Key) []*bignum.BigNum {
	out := make([]*bignum.BigNum, len(keys))
	for i, k := range keys {
		out[i] = k.Modulus
	}
	return out
}

// LoadPEMFile reads the first RSA key of a PEM file.
func LoadPEMFile(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Key{}, err
	}
	pub, err := ParsePEM(data)
	if err != nil {
		return Key{}, fmt.Errorf("%s: %w", path, err)
	}
	m, err := bignum.FromBigInt(pub.N)
	if err != nil {
		return Key{}, fmt.Errorf("%s: %w", path, err)
	}
	return Key{Source: filepath.Base(path), Modulus: m}, nil
}

// ParsePEM returns the first RSA public key found in data. Blocks of type
// PUBLIC KEY, RSA PUBLIC KEY, CERTIFICATE, RSA PRIVATE KEY and PRIVATE KEY
// are understood; other blocks are skipped.
func ParsePEM(data []byte) (*rsa.PublicKey, error) {
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			return nil, ErrNoRSAKey
		}
		data = rest

		var key any
		var err error
		switch block.Type {
		case "PUBLIC KEY":
			key, err = x509.ParsePKIXPublicKey(block.Bytes)
		case "RSA PUBLIC KEY":
			key, err = x509.ParsePKCS1PublicKey(block.Bytes)
		case "CERTIFICATE":
			var cert *x509.Certificate
			if cert, err = x509.ParseCertificate(block.Bytes); err == nil {
				key = cert.PublicKey
			}
		case "RSA PRIVATE KEY":
			key, err = x509.ParsePKCS1PrivateKey(block.Bytes)
		case "PRIVATE KEY":
			key, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s block: %w", block.Type, err)
		}
		switch k := key.(type) {
		case *rsa.PublicKey:
			return k, nil
		case *rsa.PrivateKey:
			return &k.PublicKey, nil
		}
	}
}

// LoadDirectory reads every *.pem file of dir in lexical order. A positive
// limit stops after that many keys.
func LoadDirectory(dir string, limit int) ([]Key, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pem") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var out []Key
	for _, name := range names {
		if limit > 0 && len(out) >= limit {
			break
		}
		k, err := LoadPEMFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// LoadHexFile reads hexadecimal moduli, one per line, from path. Only the
// first comma-separated field of a line is used; blank lines and lines
// starting with '#' are skipped, and repeated moduli are kept once.
func LoadHexFile(path string) ([]Key, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadHex(f, filepath.Base(path))
}

// ReadHex is LoadHexFile over an arbitrary reader; name labels the sources.
func ReadHex(r io.Reader, name string) ([]Key, error) {
	seen := make(map[string]struct{})
	var out []Key
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		field, _, _ := strings.Cut(sc.Text(), ",")
		field = strings.TrimSpace(field)
		if field == "" || strings.HasPrefix(field, "#") {
			continue
		}
		m, err := bignum.Parse(field, 16)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, line, err)
		}
		canonical := m.Text(16)
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, Key{Source: fmt.Sprintf("%s:%d", name, line), Modulus: m})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
