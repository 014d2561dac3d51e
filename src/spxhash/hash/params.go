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

package spxhash

// SIPS-0001 https://github.com/sphinx-core/sips/wiki/SIPS-0001

// Domain is the one-byte tag prefixed to every hash input. Each semantically
// different computation owns its own tag so that no two of them can collide
// on the same input bytes.
type Domain byte

const (
	DomainForsLeaf  Domain = 0x01 // FORS secret leaf -> leaf node
	DomainForsNode  Domain = 0x02 // FORS internal node
	DomainForsRoots Domain = 0x03 // Aggregation of the k FORS roots
	DomainTreeNode  Domain = 0x04 // Hypertree internal node
	DomainMessage   Domain = 0x05 // Message digest
)

// Engine names, matching the hash field of a parameter set.
const (
	SHAKE256  = "SHAKE256"
	KECCAK256 = "KECCAK256"
)

const (
	keccakSize   = 32 // Keccak-256 output size in bytes
	counterBytes = 4  // Counter width used when expanding Keccak digests
)

// String renders the domain tag for diagnostics.
func (d Domain) String() string {
	switch d {
	case DomainForsLeaf:
		return "fors-leaf"
	case DomainForsNode:
		return "fors-node"
	case DomainForsRoots:
		return "fors-roots"
	case DomainTreeNode:
		return "tree-node"
	case DomainMessage:
		return "message"
	default:
		return "unknown"
	}
}
