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

// Package verify decides whether a SPHINCS+ signature is valid for a message
// under a public key.
//
// Verification is a pure function of its inputs: no state is kept between
// calls, nothing is logged and a Verifier may be shared between goroutines.
package verify

import (
	"crypto/subtle"
	"errors"

	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/digest"
	"github.com/sphinx-core/spxverify/src/core/sphincs/fors"
	"github.com/sphinx-core/spxverify/src/core/sphincs/hypertree"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	spxhash "github.com/sphinx-core/spxverify/src/spxhash/hash"
)

// Verifier checks signatures for one parameter set.
type Verifier struct {
	params      *params.Parameters
	engine      spxhash.Engine
	forsWorkers int
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithEngine replaces the hash engine selected by the parameters. The engine
// must produce n-byte hashes.
func WithEngine(engine spxhash.Engine) Option {
	return func(v *Verifier) { v.engine = engine }
}

// WithForsWorkers evaluates the FORS trees on up to n goroutines.
func WithForsWorkers(n int) Option {
	return func(v *Verifier) { v.forsWorkers = n }
}

// NewVerifier validates p once and binds it to a hash engine.
func NewVerifier(p *params.Parameters, opts ...Option) (*Verifier, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	v := &Verifier{params: p}
	for _, opt := range opts {
		opt(v)
	}
	if v.engine == nil {
		engine, err := spxhash.NewEngine(p.Hash, p.N)
		if err != nil {
			return nil, err
		}
		v.engine = engine
	}
	if v.engine.Size() != p.N {
		return nil, errors.New("hash engine output size does not match parameters")
	}
	return v, nil
}

// Params returns the parameter set the verifier was built with.
func (v *Verifier) Params() *params.Parameters { return v.params }

// Verify reports whether sig is a valid signature of message under pk.
// Malformed input is rejected like any other invalid signature.
func (v *Verifier) Verify(message []byte, sig *types.Signature, pk *types.PublicKey) bool {
	ok, _ := v.VerifyWithError(message, sig, pk)
	return ok
}

// VerifyWithError is Verify with the reason for structural rejection.
// It returns a *types.StructuralError for malformed input and (false, nil)
// when a well-formed signature does not verify.
func (v *Verifier) VerifyWithError(message []byte, sig *types.Signature, pk *types.PublicKey) (bool, error) {
	p := v.params
	if err := types.ValidatePublicKey(p, pk); err != nil {
		return false, err
	}
	if err := types.ValidateSignature(p, sig); err != nil {
		return false, err
	}

	d := v.engine.Digest(sig.Randomizer, pk.Seed, message, p.DigestSize())
	idx, err := digest.Split(p, d)
	if err != nil {
		return false, err
	}

	var opts []fors.Option
	if v.forsWorkers > 1 {
		opts = append(opts, fors.WithWorkers(v.forsWorkers))
	}
	forsPK, err := fors.VerifyFors(p, v.engine, d[:p.MessageDigestSize()], &sig.Fors, pk.Seed, idx.Tree, idx.Leaf, opts...)
	if err != nil {
		return false, err
	}

	root, err := hypertree.VerifyHypertree(p, v.engine, forsPK, &sig.Hypertree, pk.Seed, idx.Tree, idx.Leaf)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(root, pk.Root) == 1, nil
}

// Verify checks a single signature under p. Prefer NewVerifier when p is
// reused, since it validates the parameters only once.
func Verify(p *params.Parameters, message []byte, sig *types.Signature, pk *types.PublicKey) bool {
	v, err := NewVerifier(p)
	if err != nil {
		return false
	}
	return v.Verify(message, sig, pk)
}
