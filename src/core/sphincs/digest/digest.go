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

// Package digest splits a message digest into the FORS leaf indices and the
// hypertree coordinates of the signing key pair.
package digest

import (
	"github.com/holiman/uint256"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
)

// Indices are the positions selected by a message digest.
type Indices struct {
	Fors []uint32 // One leaf index per FORS tree, each below 2^a
	Tree uint64   // Tree index inside the bottom hypertree layer
	Leaf uint32   // Leaf index inside that tree
}

// Split interprets digest as md | tree index bytes | leaf index bytes.
//
// md is read as k big-endian a-bit integers. The tree and leaf byte strings
// are big-endian integers reduced modulo 2^((d-1)h') and 2^h'.
func Split(p *params.Parameters, digest []byte) (Indices, error) {
	if len(digest) != p.DigestSize() {
		return Indices{}, &types.StructuralError{Field: "digest", Want: p.DigestSize(), Got: len(digest)}
	}

	mdEnd := p.MessageDigestSize()
	treeEnd := mdEnd + p.TreeIndexSize()

	return Indices{
		Fors: BaseTwoB(digest[:mdEnd], p.A, p.K),
		Tree: reduce(digest[mdEnd:treeEnd], p.TreeBits()),
		Leaf: uint32(reduce(digest[treeEnd:], p.LeafBits())),
	}, nil
}

// BaseTwoB reads count consecutive b-bit big-endian integers from x.
// x must hold at least ceil(count*b/8) bytes and b must not exceed 24.
func BaseTwoB(x []byte, b, count int) []uint32 {
	out := make([]uint32, count)
	var (
		in    int
		bits  int
		total uint64
	)
	for i := range out {
		for bits < b {
			total = total<<8 | uint64(x[in])
			in++
			bits += 8
		}
		bits -= b
		out[i] = uint32(total >> uint(bits) & (1<<uint(b) - 1))
		total &= 1<<uint(bits) - 1
	}
	return out
}

// reduce returns the big-endian integer in b modulo 2^bits.
func reduce(b []byte, bits int) uint64 {
	if bits == 0 {
		return 0
	}
	x := new(uint256.Int).SetBytes(b)
	mask := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bits))
	mask.SubUint64(mask, 1)
	return x.And(x, mask).Uint64()
}
