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

// Package fors reconstructs the FORS public key committed to by a signature.
package fors

import (
	"fmt"

	"github.com/sphinx-core/spxverify/src/core/hashtree"
	"github.com/sphinx-core/spxverify/src/core/sphincs/address"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/digest"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	spxhash "github.com/sphinx-core/spxverify/src/spxhash/hash"
	"golang.org/x/sync/errgroup"
)

type options struct {
	workers int
}

// Option tunes how VerifyFors evaluates the k trees.
type Option func(*options)

// WithWorkers evaluates up to n trees concurrently. n <= 1 keeps the
// evaluation on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// VerifyFors recomputes the FORS public key from md and the revealed leaves.
//
// md carries the k leaf indices as a-bit big-endian integers. idxTree and
// idxLeaf place the FORS instance inside the bottom hypertree layer and are
// bound into every address. The result is the hash of the k tree roots in
// index order. Shape errors are reported before any hash is computed.
func VerifyFors(p *params.Parameters, engine spxhash.Engine, md []byte, sig *types.ForsSignature, seed []byte, idxTree uint64, idxLeaf uint32, opts ...Option) ([]byte, error) {
	if sig == nil {
		return nil, &types.StructuralError{Field: "fors", Want: 1, Got: 0}
	}
	if err := types.ValidateForsSignature(p, sig); err != nil {
		return nil, err
	}
	if len(md) != p.MessageDigestSize() {
		return nil, &types.StructuralError{Field: "fors.md", Want: p.MessageDigestSize(), Got: len(md)}
	}
	if len(seed) != p.N {
		return nil, &types.StructuralError{Field: "seed", Want: p.N, Got: len(seed)}
	}
	if engine.Size() != p.N {
		return nil, fmt.Errorf("engine produces %d-byte hashes, parameters need %d", engine.Size(), p.N)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	indices := digest.BaseTwoB(md, p.A, p.K)
	roots := make([][]byte, p.K)

	treeRoot := func(i int) {
		adrs := address.Address{
			Tree:      idxTree,
			Type:      address.TypeForsTree,
			KeyPair:   idxLeaf,
			TreeIndex: uint32(i)<<uint(p.A) + indices[i],
		}
		leaf := engine.Hash(spxhash.DomainForsLeaf, seed, &adrs, sig.SecretLeaves[i])
		roots[i] = hashtree.RootFromPath(engine, spxhash.DomainForsNode, seed, &adrs, leaf, indices[i], sig.AuthPaths[i])
	}

	if o.workers > 1 && p.K > 1 {
		var g errgroup.Group
		g.SetLimit(o.workers)
		for i := 0; i < p.K; i++ {
			i := i // per-iteration copy (go1.22 loopvar semantics under go 1.21 directive)
			g.Go(func() error {
				treeRoot(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := 0; i < p.K; i++ {
			treeRoot(i)
		}
	}

	// Roots are concatenated in tree order regardless of completion order.
	adrs := address.Address{Tree: idxTree, Type: address.TypeForsRoots, KeyPair: idxLeaf}
	return engine.Hash(spxhash.DomainForsRoots, seed, &adrs, roots...), nil
}
