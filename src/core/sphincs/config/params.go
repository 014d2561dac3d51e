// MIT License
//
// Copyright (c) 2024 sphinx-core
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package params

import (
	"errors"
	"fmt"
	"sort"
)

// Hash function identifiers understood by the spxhash engines.
const (
	HashSHAKE256  = "SHAKE256"
	HashKECCAK256 = "KECCAK256"
)

// Default preset used when nothing else is configured.
const DefaultPreset = "toy"

// Parameters is the immutable configuration shared by signer and verifier.
// It is passed explicitly to every verification call.
type Parameters struct {
	Name   string `json:"name"`
	N      int    `json:"n"`      // Hash output size in bytes
	K      int    `json:"k"`      // Number of FORS trees
	A      int    `json:"a"`      // Height of each FORS tree
	D      int    `json:"d"`      // Number of hypertree layers
	HPrime int    `json:"hprime"` // Height of each hypertree layer
	Hash   string `json:"hash"`   // SHAKE256 or KECCAK256
}

// presets holds the built-in parameter sets, keyed by name.
var presets = map[string]Parameters{
	// Degenerate single-element instance: one FORS tree of height one, one layer of height one.
	"toy":        {Name: "toy", N: 32, K: 1, A: 1, D: 1, HPrime: 1, Hash: HashSHAKE256},
	"toy-keccak": {Name: "toy-keccak", N: 32, K: 1, A: 1, D: 1, HPrime: 1, Hash: HashKECCAK256},
	"small":      {Name: "small", N: 32, K: 4, A: 4, D: 2, HPrime: 3, Hash: HashSHAKE256},
	// FIPS 205 shaped sets (h = D * HPrime).
	"shake-128f": {Name: "shake-128f", N: 16, K: 33, A: 6, D: 22, HPrime: 3, Hash: HashSHAKE256},
	"shake-256f": {Name: "shake-256f", N: 32, K: 35, A: 9, D: 17, HPrime: 4, Hash: HashSHAKE256},
	"shake-256s": {Name: "shake-256s", N: 32, K: 22, A: 14, D: 8, HPrime: 8, Hash: HashSHAKE256},
}

// Lookup returns a copy of the named preset.
func Lookup(name string) (*Parameters, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown parameter set %q", name)
	}
	return &p, nil
}

// Presets lists the names of the built-in parameter sets in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the parameter set for internal consistency.
// It is meant to run once at load time, never per verification.
func (p *Parameters) Validate() error {
	if p == nil {
		return errors.New("parameters are nil")
	}
	switch p.N {
	case 16, 24, 32:
	default:
		return fmt.Errorf("hash output size %d not in {16, 24, 32}", p.N)
	}
	if p.K < 1 {
		return fmt.Errorf("FORS tree count must be positive, got %d", p.K)
	}
	if p.A < 1 || p.A > 24 {
		return fmt.Errorf("FORS tree height %d out of range [1, 24]", p.A)
	}
	if p.HPrime < 1 || p.HPrime > 32 {
		return fmt.Errorf("hypertree layer height %d out of range [1, 32]", p.HPrime)
	}
	if p.D < 1 {
		return fmt.Errorf("hypertree layer count must be positive, got %d", p.D)
	}
	// FORS leaf addresses carry i*2^A + idx in a 32-bit word.
	if uint64(p.K)<<uint(p.A) > 1<<32 {
		return fmt.Errorf("FORS address index needs more than 32 bits (k=%d, a=%d)", p.K, p.A)
	}
	// The tree index is carried in a uint64.
	if p.TreeBits() > 64 {
		return fmt.Errorf("tree index needs %d bits, at most 64 supported", p.TreeBits())
	}
	switch p.Hash {
	case HashSHAKE256:
	case HashKECCAK256:
		if p.N > 32 {
			return fmt.Errorf("%s cannot produce %d-byte hashes", p.Hash, p.N)
		}
	default:
		return fmt.Errorf("unsupported hash function %q", p.Hash)
	}
	return nil
}

// H returns the total hypertree height.
func (p *Parameters) H() int { return p.D * p.HPrime }

// TreeBits is the width of the tree index taken from the digest.
func (p *Parameters) TreeBits() int { return (p.D - 1) * p.HPrime }

// LeafBits is the width of the leaf index taken from the digest.
func (p *Parameters) LeafBits() int { return p.HPrime }

// MessageDigestSize is the number of digest bytes feeding the FORS indices.
func (p *Parameters) MessageDigestSize() int { return (p.K*p.A + 7) / 8 }

// TreeIndexSize is the number of digest bytes feeding the tree index.
func (p *Parameters) TreeIndexSize() int { return (p.TreeBits() + 7) / 8 }

// LeafIndexSize is the number of digest bytes feeding the leaf index.
func (p *Parameters) LeafIndexSize() int { return (p.LeafBits() + 7) / 8 }

// DigestSize is the full length of the message digest.
func (p *Parameters) DigestSize() int {
	return p.MessageDigestSize() + p.TreeIndexSize() + p.LeafIndexSize()
}

// PublicKeySize is the encoded size of a public key (root and seed).
func (p *Parameters) PublicKeySize() int { return 2 * p.N }

// ForsSignatureSize is the encoded size of the FORS part of a signature.
func (p *Parameters) ForsSignatureSize() int { return p.K * (p.A + 1) * p.N }

// HypertreeSignatureSize is the encoded size of the hypertree part of a signature.
func (p *Parameters) HypertreeSignatureSize() int { return p.D * p.HPrime * p.N }

// SignatureSize is the encoded size of a whole signature.
func (p *Parameters) SignatureSize() int {
	return p.N + p.ForsSignatureSize() + p.HypertreeSignatureSize()
}

// String renders the parameter set for logs.
func (p *Parameters) String() string {
	return fmt.Sprintf("%s(n=%d k=%d a=%d d=%d h'=%d %s)", p.Name, p.N, p.K, p.A, p.D, p.HPrime, p.Hash)
}
