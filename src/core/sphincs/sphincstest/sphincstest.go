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

// Package sphincstest builds deterministic SPHINCS+ signatures for tests.
//
// It is not a signer: secrets are derived from a caller supplied seed with no
// attempt at key hygiene, and the hypertree leaves are the roots of the layer
// below rather than one-time signature public keys. The output has exactly
// the shape and hash structure the verifier consumes.
package sphincstest

import (
	"encoding/binary"
	"fmt"

	"github.com/sphinx-core/spxverify/src/core/hashtree"
	"github.com/sphinx-core/spxverify/src/core/sphincs/address"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/digest"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	spxhash "github.com/sphinx-core/spxverify/src/spxhash/hash"
	"golang.org/x/crypto/sha3"
)

// FullHeightLimit is the largest total hypertree height for which the whole
// hypertree is materialised. Above it the fixture only builds the path a
// message takes, so the public key depends on the message.
const FullHeightLimit = 8

// Fixture signs messages for one parameter set and one secret.
type Fixture struct {
	Params *params.Parameters
	Engine spxhash.Engine
	Seed   []byte

	secret []byte
	layers [][]*hashtree.Tree // layers[j][tree], only when Full()
}

// New derives a fixture from secret. For small hypertrees every layer is
// built up front so that all signatures share one public key.
func New(p *params.Parameters, secret []byte) (*Fixture, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	engine, err := spxhash.NewEngine(p.Hash, p.N)
	if err != nil {
		return nil, err
	}
	f := &Fixture{Params: p, Engine: engine, secret: append([]byte(nil), secret...)}
	f.Seed = f.prf("seed", nil)

	if f.Full() {
		if err := f.buildLayers(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// MustNew is New for test setup code.
func MustNew(p *params.Parameters, secret []byte) *Fixture {
	f, err := New(p, secret)
	if err != nil {
		panic(err)
	}
	return f
}

// Full reports whether every signature verifies under the same public key.
func (f *Fixture) Full() bool {
	return f.Params.H() <= FullHeightLimit
}

// PublicKey returns the shared public key of a full fixture.
func (f *Fixture) PublicKey() (*types.PublicKey, bool) {
	if !f.Full() {
		return nil, false
	}
	top := f.layers[f.Params.D-1][0]
	return &types.PublicKey{Root: clone(top.Root()), Seed: clone(f.Seed)}, true
}

// Sign produces a signature over message and the public key it verifies
// under.
func (f *Fixture) Sign(message []byte) (*types.Signature, *types.PublicKey, error) {
	p := f.Params
	r := f.prf("randomizer", message)

	d := f.Engine.Digest(r, f.Seed, message, p.DigestSize())
	idx, err := digest.Split(p, d)
	if err != nil {
		return nil, nil, err
	}

	forsSig, forsPK, err := f.Fors(d[:p.MessageDigestSize()], idx.Tree, idx.Leaf)
	if err != nil {
		return nil, nil, err
	}
	htSig, root, err := f.Hypertree(forsPK, idx.Tree, idx.Leaf)
	if err != nil {
		return nil, nil, err
	}

	sig := &types.Signature{Randomizer: r, Fors: *forsSig, Hypertree: *htSig}
	return sig, &types.PublicKey{Root: root, Seed: clone(f.Seed)}, nil
}

// Fors signs md with the FORS instance at (idxTree, idxLeaf) and returns the
// signature with the instance public key.
func (f *Fixture) Fors(md []byte, idxTree uint64, idxLeaf uint32) (*types.ForsSignature, []byte, error) {
	p := f.Params
	if len(md) != p.MessageDigestSize() {
		return nil, nil, fmt.Errorf("md has %d bytes, want %d", len(md), p.MessageDigestSize())
	}
	indices := digest.BaseTwoB(md, p.A, p.K)

	trees, pk, err := f.forsTrees(idxTree, idxLeaf)
	if err != nil {
		return nil, nil, err
	}
	sig := &types.ForsSignature{
		SecretLeaves: make([][]byte, p.K),
		AuthPaths:    make([][][]byte, p.K),
	}
	for i, tree := range trees {
		sig.SecretLeaves[i] = f.forsSecret(idxTree, idxLeaf, uint32(i)<<uint(p.A)+indices[i])
		sig.AuthPaths[i] = tree.AuthPath(indices[i])
	}
	return sig, pk, nil
}

// Hypertree authenticates leaf from (idxTree, idxLeaf) through all layers and
// returns the resulting root. A full fixture requires leaf to be the FORS
// public key at that position; otherwise the root will not match.
func (f *Fixture) Hypertree(leaf []byte, idxTree uint64, idxLeaf uint32) (*types.HypertreeSignature, []byte, error) {
	p := f.Params
	sig := &types.HypertreeSignature{AuthPaths: make([][][]byte, p.D)}
	leafMask := uint64(1)<<uint(p.HPrime) - 1

	node := leaf
	for j := 0; j < p.D; j++ {
		if f.Full() {
			sig.AuthPaths[j] = f.layers[j][idxTree].AuthPath(idxLeaf)
		} else {
			sig.AuthPaths[j] = f.sparsePath(uint32(j), idxTree, idxLeaf)
		}
		adrs := address.Address{Layer: uint32(j), Tree: idxTree, Type: address.TypeHashTree, TreeIndex: idxLeaf}
		node = hashtree.RootFromPath(f.Engine, spxhash.DomainTreeNode, f.Seed, &adrs, node, idxLeaf, sig.AuthPaths[j])

		idxLeaf = uint32(idxTree & leafMask)
		idxTree >>= uint(p.HPrime)
	}
	return sig, node, nil
}

// forsTrees builds the k trees of one FORS instance and its public key.
func (f *Fixture) forsTrees(idxTree uint64, idxLeaf uint32) ([]*hashtree.Tree, []byte, error) {
	p := f.Params
	width := uint32(1) << uint(p.A)

	trees := make([]*hashtree.Tree, p.K)
	roots := make([][]byte, p.K)
	for i := range trees {
		offset := uint32(i) << uint(p.A)
		adrs := address.Address{Tree: idxTree, Type: address.TypeForsTree, KeyPair: idxLeaf}

		leaves := make([][]byte, width)
		for j := range leaves {
			adrs.TreeHeight = 0
			adrs.TreeIndex = offset + uint32(j)
			leaves[j] = f.Engine.Hash(spxhash.DomainForsLeaf, f.Seed, &adrs, f.forsSecret(idxTree, idxLeaf, adrs.TreeIndex))
		}
		tree, err := hashtree.Build(f.Engine, spxhash.DomainForsNode, f.Seed, &adrs, offset, leaves)
		if err != nil {
			return nil, nil, err
		}
		trees[i] = tree
		roots[i] = tree.Root()
	}

	adrs := address.Address{Tree: idxTree, Type: address.TypeForsRoots, KeyPair: idxLeaf}
	return trees, f.Engine.Hash(spxhash.DomainForsRoots, f.Seed, &adrs, roots...), nil
}

// buildLayers materialises every hypertree layer bottom-up.
func (f *Fixture) buildLayers() error {
	p := f.Params
	width := 1 << uint(p.HPrime)
	f.layers = make([][]*hashtree.Tree, p.D)

	for j := 0; j < p.D; j++ {
		count := 1 << uint((p.D-1-j)*p.HPrime)
		f.layers[j] = make([]*hashtree.Tree, count)
		for t := 0; t < count; t++ {
			leaves := make([][]byte, width)
			for l := range leaves {
				if j == 0 {
					_, pk, err := f.forsTrees(uint64(t), uint32(l))
					if err != nil {
						return err
					}
					leaves[l] = pk
				} else {
					leaves[l] = f.layers[j-1][t*width+l].Root()
				}
			}
			adrs := address.Address{Layer: uint32(j), Tree: uint64(t), Type: address.TypeHashTree}
			tree, err := hashtree.Build(f.Engine, spxhash.DomainTreeNode, f.Seed, &adrs, 0, leaves)
			if err != nil {
				return err
			}
			f.layers[j][t] = tree
		}
	}
	return nil
}

// sparsePath returns pseudo-random siblings for a layer that is never built.
func (f *Fixture) sparsePath(layer uint32, tree uint64, leaf uint32) [][]byte {
	path := make([][]byte, f.Params.HPrime)
	for z := range path {
		adrs := address.Address{
			Layer:      layer,
			Tree:       tree,
			Type:       address.TypeHashTree,
			TreeHeight: uint32(z),
			TreeIndex:  (leaf >> uint(z)) ^ 1,
		}
		path[z] = f.prf("sibling", adrs.Bytes())
	}
	return path
}

func (f *Fixture) forsSecret(idxTree uint64, idxLeaf, index uint32) []byte {
	adrs := address.Address{Tree: idxTree, Type: address.TypeForsTree, KeyPair: idxLeaf, TreeIndex: index}
	return f.prf("fors", adrs.Bytes())
}

// prf expands (label, secret, data) to n bytes.
func (f *Fixture) prf(label string, data []byte) []byte {
	h := sha3.NewShake256()
	var l [4]byte
	binary.BigEndian.PutUint32(l[:], uint32(len(label)))
	h.Write(l[:])
	h.Write([]byte(label))
	h.Write(f.secret)
	h.Write(data)
	out := make([]byte, f.Params.N)
	h.Read(out)
	return out
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
