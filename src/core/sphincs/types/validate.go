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

package types

import (
	"fmt"

	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
)

// ValidatePublicKey checks that both halves of the key are exactly n bytes.
func ValidatePublicKey(p *params.Parameters, pk *PublicKey) error {
	if pk == nil {
		return malformed("publicKey", 1, 0)
	}
	if len(pk.Root) != p.N {
		return malformed("publicKey.root", p.N, len(pk.Root))
	}
	if len(pk.Seed) != p.N {
		return malformed("publicKey.seed", p.N, len(pk.Seed))
	}
	return nil
}

// ValidateSignature checks every count and width in sig against p.
// It touches no hash function, so a malformed signature costs nothing
// beyond this walk.
func ValidateSignature(p *params.Parameters, sig *Signature) error {
	if sig == nil {
		return malformed("signature", 1, 0)
	}
	if len(sig.Randomizer) != p.N {
		return malformed("randomizer", p.N, len(sig.Randomizer))
	}
	if err := ValidateForsSignature(p, &sig.Fors); err != nil {
		return err
	}
	return ValidateHypertreeSignature(p, &sig.Hypertree)
}

// ValidateForsSignature checks the FORS part of a signature.
func ValidateForsSignature(p *params.Parameters, sig *ForsSignature) error {
	if len(sig.SecretLeaves) != p.K {
		return malformed("fors.secretLeaves", p.K, len(sig.SecretLeaves))
	}
	if len(sig.AuthPaths) != p.K {
		return malformed("fors.authPaths", p.K, len(sig.AuthPaths))
	}
	for i, leaf := range sig.SecretLeaves {
		if len(leaf) != p.N {
			return malformed(fmt.Sprintf("fors.secretLeaves[%d]", i), p.N, len(leaf))
		}
	}
	for i, path := range sig.AuthPaths {
		if err := checkPath(fmt.Sprintf("fors.authPaths[%d]", i), path, p.A, p.N); err != nil {
			return err
		}
	}
	return nil
}

// ValidateHypertreeSignature checks the hypertree part of a signature.
func ValidateHypertreeSignature(p *params.Parameters, sig *HypertreeSignature) error {
	if len(sig.AuthPaths) != p.D {
		return malformed("hypertree.authPaths", p.D, len(sig.AuthPaths))
	}
	for j, path := range sig.AuthPaths {
		if err := checkPath(fmt.Sprintf("hypertree.authPaths[%d]", j), path, p.HPrime, p.N); err != nil {
			return err
		}
	}
	return nil
}

func checkPath(field string, path [][]byte, height, n int) error {
	if len(path) != height {
		return malformed(field, height, len(path))
	}
	for i, node := range path {
		if len(node) != n {
			return malformed(fmt.Sprintf("%s[%d]", field, i), n, len(node))
		}
	}
	return nil
}
