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

// go/src/core/hashtree/hashtree.go
package hashtree

import (
	"crypto/subtle"
	"errors"

	"github.com/sphinx-core/spxverify/src/core/sphincs/address"
	spxhash "github.com/sphinx-core/spxverify/src/spxhash/hash"
)

// RootFromPath climbs from node to the root of a binary Merkle tree.
//
// adrs must carry the leaf position in TreeIndex; it is updated in place with
// the height and index of every parent computed. At level j the j-th bit of
// index decides the concatenation order: 0 puts the node on the left, 1 puts
// it on the right. The order is selected with constant-time copies so the
// walk has no branch on index bits.
func RootFromPath(engine spxhash.Engine, domain spxhash.Domain, seed []byte, adrs *address.Address, node []byte, index uint32, path [][]byte) []byte {
	n := len(node)
	pair := make([]byte, 2*n)
	left, right := pair[:n], pair[n:]

	for j, sibling := range path {
		bit := int((index >> uint(j)) & 1)

		// left = bit ? sibling : node, right = bit ? node : sibling
		copy(left, node)
		copy(right, sibling)
		subtle.ConstantTimeCopy(bit, left, sibling)
		subtle.ConstantTimeCopy(bit, right, node)

		adrs.TreeHeight = uint32(j + 1)
		adrs.TreeIndex >>= 1
		node = engine.Hash(domain, seed, adrs, pair)
	}
	return node
}

// Tree is a fully materialised binary Merkle tree. Levels[0] holds the
// leaves and the last level holds the root.
type Tree struct {
	Levels [][][]byte
}

// Build hashes leaves into a complete tree. offset is the global index of the
// first leaf, so the node at height z and position p is addressed with index
// (offset >> z) + p, matching what RootFromPath produces when climbing.
func Build(engine spxhash.Engine, domain spxhash.Domain, seed []byte, adrs *address.Address, offset uint32, leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 || len(leaves)&(len(leaves)-1) != 0 {
		return nil, errors.New("leaf count must be a positive power of two")
	}

	tree := &Tree{Levels: [][][]byte{leaves}}
	level := leaves
	for z := uint32(1); len(level) > 1; z++ {
		next := make([][]byte, len(level)/2)
		for p := range next {
			adrs.TreeHeight = z
			adrs.TreeIndex = (offset >> z) + uint32(p)
			next[p] = engine.Hash(domain, seed, adrs, level[2*p], level[2*p+1])
		}
		tree.Levels = append(tree.Levels, next)
		level = next
	}
	return tree, nil
}

// Root returns the tree root.
func (t *Tree) Root() []byte {
	return t.Levels[len(t.Levels)-1][0]
}

// Height is the number of levels above the leaves.
func (t *Tree) Height() int {
	return len(t.Levels) - 1
}

// AuthPath returns the siblings needed to climb from leaf index to the root.
func (t *Tree) AuthPath(index uint32) [][]byte {
	path := make([][]byte, t.Height())
	for j := range path {
		path[j] = t.Levels[j][(index>>uint(j))^1]
	}
	return path
}
