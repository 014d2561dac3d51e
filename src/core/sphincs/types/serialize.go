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
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
)

// Wire layout
//
//	public key: root | seed
//	signature:  R | SK[0] .. SK[k-1] | FORS auth (tree-major) | HT auth (layer-major)
//
// Every element is exactly n bytes, so the encodings carry no length prefixes.

// MarshalPublicKey encodes pk as root followed by seed.
func MarshalPublicKey(pk *PublicKey) []byte {
	out := make([]byte, 0, len(pk.Root)+len(pk.Seed))
	out = append(out, pk.Root...)
	return append(out, pk.Seed...)
}

// UnmarshalPublicKey decodes a public key of exactly 2n bytes.
func UnmarshalPublicKey(p *params.Parameters, b []byte) (*PublicKey, error) {
	if len(b) != p.PublicKeySize() {
		return nil, malformed("publicKey", p.PublicKeySize(), len(b))
	}
	r := reader{buf: b, n: p.N}
	return &PublicKey{Root: r.next(), Seed: r.next()}, nil
}

// MarshalSignature encodes a structurally valid signature. The caller is
// expected to have run ValidateSignature; elements are copied as they are.
func MarshalSignature(sig *Signature) []byte {
	var out []byte
	out = append(out, sig.Randomizer...)
	for _, leaf := range sig.Fors.SecretLeaves {
		out = append(out, leaf...)
	}
	for _, path := range sig.Fors.AuthPaths {
		for _, node := range path {
			out = append(out, node...)
		}
	}
	for _, path := range sig.Hypertree.AuthPaths {
		for _, node := range path {
			out = append(out, node...)
		}
	}
	return out
}

// UnmarshalSignature decodes a signature whose length must match
// p.SignatureSize() exactly. The returned slices are copies of b.
func UnmarshalSignature(p *params.Parameters, b []byte) (*Signature, error) {
	if len(b) != p.SignatureSize() {
		return nil, malformed("signature", p.SignatureSize(), len(b))
	}
	r := reader{buf: b, n: p.N}

	sig := &Signature{Randomizer: r.next()}
	sig.Fors.SecretLeaves = r.list(p.K)
	sig.Fors.AuthPaths = make([][][]byte, p.K)
	for i := range sig.Fors.AuthPaths {
		sig.Fors.AuthPaths[i] = r.list(p.A)
	}
	sig.Hypertree.AuthPaths = make([][][]byte, p.D)
	for j := range sig.Hypertree.AuthPaths {
		sig.Hypertree.AuthPaths[j] = r.list(p.HPrime)
	}
	return sig, nil
}

// reader hands out consecutive n-byte elements. Bounds are checked by the
// caller against the total size up front.
type reader struct {
	buf []byte
	off int
	n   int
}

func (r *reader) next() []byte {
	out := make([]byte, r.n)
	copy(out, r.buf[r.off:r.off+r.n])
	r.off += r.n
	return out
}

func (r *reader) list(count int) [][]byte {
	out := make([][]byte, count)
	for i := range out {
		out[i] = r.next()
	}
	return out
}
