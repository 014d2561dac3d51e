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

package fors

import (
	"testing"

	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/sphincstest"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	spxhash "github.com/sphinx-core/spxverify/src/spxhash/hash"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, name string) (*params.Parameters, *sphincstest.Fixture) {
	t.Helper()
	p, err := params.Lookup(name)
	require.NoError(t, err)
	return p, sphincstest.MustNew(p, []byte("fors "+name))
}

func TestVerifyForsReconstructsPublicKey(t *testing.T) {
	p, f := setup(t, "small")
	md := []byte{0x0f, 0xa3} // indices 0, 15, 10, 3

	for _, pos := range []struct {
		tree uint64
		leaf uint32
	}{{0, 0}, {3, 5}, {7, 7}} {
		sig, want, err := f.Fors(md, pos.tree, pos.leaf)
		require.NoError(t, err)

		got, err := VerifyFors(p, f.Engine, md, sig, f.Seed, pos.tree, pos.leaf)
		require.NoError(t, err)
		require.Equal(t, want, got)

		// The same signature under another key pair address gives another key.
		other, err := VerifyFors(p, f.Engine, md, sig, f.Seed, pos.tree, pos.leaf^1)
		require.NoError(t, err)
		require.NotEqual(t, want, other)
	}
}

func TestVerifyForsWorkers(t *testing.T) {
	p, f := setup(t, "shake-128f")
	md := make([]byte, p.MessageDigestSize())
	for i := range md {
		md[i] = byte(i * 37)
	}
	sig, want, err := f.Fors(md, 12345, 6)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 2, 8, 64} {
		got, err := VerifyFors(p, f.Engine, md, sig, f.Seed, 12345, 6, WithWorkers(workers))
		require.NoError(t, err)
		require.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestVerifyForsOrderSensitive(t *testing.T) {
	p, f := setup(t, "small")
	md := []byte{0x11, 0x11} // every tree opens leaf 1
	sig, want, err := f.Fors(md, 2, 1)
	require.NoError(t, err)

	sig.SecretLeaves[0], sig.SecretLeaves[3] = sig.SecretLeaves[3], sig.SecretLeaves[0]
	sig.AuthPaths[0], sig.AuthPaths[3] = sig.AuthPaths[3], sig.AuthPaths[0]
	got, err := VerifyFors(p, f.Engine, md, sig, f.Seed, 2, 1, WithWorkers(4))
	require.NoError(t, err)
	require.NotEqual(t, want, got)
}

func TestVerifyForsStructuralErrors(t *testing.T) {
	p, f := setup(t, "small")
	md := []byte{0x12, 0x34}
	counting := spxhash.NewCounting(f.Engine)

	fresh := func() *types.ForsSignature {
		sig, _, err := f.Fors(md, 0, 0)
		require.NoError(t, err)
		return sig
	}

	tests := []struct {
		name  string
		md    []byte
		sig   func() *types.ForsSignature
		seed  []byte
		field string
	}{
		{"nil signature", md, func() *types.ForsSignature { return nil }, f.Seed, "fors"},
		{"short md", md[:1], fresh, f.Seed, "fors.md"},
		{"short seed", md, fresh, f.Seed[:4], "seed"},
		{"short path", md, func() *types.ForsSignature {
			s := fresh()
			s.AuthPaths[2] = s.AuthPaths[2][1:]
			return s
		}, f.Seed, "fors.authPaths[2]"},
		{"missing tree", md, func() *types.ForsSignature {
			s := fresh()
			s.SecretLeaves = s.SecretLeaves[:1]
			return s
		}, f.Seed, "fors.secretLeaves"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counting.Reset()
			out, err := VerifyFors(p, counting, tt.md, tt.sig(), tt.seed, 0, 0)
			require.Nil(t, out)
			var serr *types.StructuralError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, tt.field, serr.Field)
			require.Zero(t, counting.Calls())
		})
	}
}

func TestVerifyForsEngineMismatch(t *testing.T) {
	p, f := setup(t, "small")
	sig, _, err := f.Fors([]byte{0, 0}, 0, 0)
	require.NoError(t, err)

	short, err := spxhash.NewEngine(p.Hash, 16)
	require.NoError(t, err)
	_, err = VerifyFors(p, short, []byte{0, 0}, sig, f.Seed, 0, 0)
	require.Error(t, err)
	require.NotErrorIs(t, err, types.ErrMalformed)
}
