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

// Package hypertree climbs the d layers of Merkle trees from a FORS public
// key up to the candidate root of the SPHINCS+ public key.
package hypertree

import (
	"fmt"

	"github.com/sphinx-core/spxverify/src/core/hashtree"
	"github.com/sphinx-core/spxverify/src/core/sphincs/address"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	spxhash "github.com/sphinx-core/spxverify/src/spxhash/hash"
)

// VerifyHypertree returns the root reached by authenticating leaf through
// every layer. Layer 0 starts at tree idxTree, leaf idxLeaf; each following
// layer takes its leaf index from the low h' bits of the previous tree index.
// The incoming value is used as the leaf node as it is.
func VerifyHypertree(p *params.Parameters, engine spxhash.Engine, leaf []byte, sig *types.HypertreeSignature, seed []byte, idxTree uint64, idxLeaf uint32) ([]byte, error) {
	if sig == nil {
		return nil, &types.StructuralError{Field: "hypertree", Want: 1, Got: 0}
	}
	if err := types.ValidateHypertreeSignature(p, sig); err != nil {
		return nil, err
	}
	if len(leaf) != p.N {
		return nil, &types.StructuralError{Field: "hypertree.leaf", Want: p.N, Got: len(leaf)}
	}
	if len(seed) != p.N {
		return nil, &types.StructuralError{Field: "seed", Want: p.N, Got: len(seed)}
	}
	if engine.Size() != p.N {
		return nil, fmt.Errorf("engine produces %d-byte hashes, parameters need %d", engine.Size(), p.N)
	}

	leafMask := uint64(1)<<uint(p.HPrime) - 1

	node := leaf
	for j := 0; j < p.D; j++ {
		adrs := address.Address{
			Layer:     uint32(j),
			Tree:      idxTree,
			Type:      address.TypeHashTree,
			TreeIndex: idxLeaf,
		}
		node = hashtree.RootFromPath(engine, spxhash.DomainTreeNode, seed, &adrs, node, idxLeaf, sig.AuthPaths[j])

		idxLeaf = uint32(idxTree & leafMask)
		idxTree >>= uint(p.HPrime)
	}
	return node, nil
}
