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

package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresetsValidate(t *testing.T) {
	require := require.New(t)

	for _, name := range Presets() {
		p, err := Lookup(name)
		require.NoError(err, name)
		require.NoError(p.Validate(), name)
		require.Equal(name, p.Name)
	}
}

func TestLookupReturnsCopy(t *testing.T) {
	require := require.New(t)

	p, err := Lookup("toy")
	require.NoError(err)
	p.K = 99

	again, err := Lookup("toy")
	require.NoError(err)
	require.Equal(1, again.K)
}

func TestDerivedSizes(t *testing.T) {
	require := require.New(t)

	toy, err := Lookup("toy")
	require.NoError(err)
	// R + one secret leaf + one FORS sibling + one hypertree sibling.
	require.Equal(4*32, toy.SignatureSize())
	require.Equal(64, toy.PublicKeySize())
	require.Equal(0, toy.TreeBits())
	require.Equal(2, toy.DigestSize())

	p, err := Lookup("shake-128f")
	require.NoError(err)
	require.Equal(66, p.H())
	require.Equal(63, p.TreeBits())
	require.Equal(25, p.MessageDigestSize())
	require.Equal(8, p.TreeIndexSize())
	require.Equal(1, p.LeafIndexSize())
	require.Equal(34, p.DigestSize())
	require.Equal(16+33*7*16+66*16, p.SignatureSize())
}

func TestValidateRejects(t *testing.T) {
	base := Parameters{Name: "t", N: 32, K: 1, A: 1, D: 1, HPrime: 1, Hash: HashSHAKE256}

	tests := []struct {
		name   string
		mutate func(p *Parameters)
	}{
		{"hash width", func(p *Parameters) { p.N = 20 }},
		{"no fors trees", func(p *Parameters) { p.K = 0 }},
		{"fors height", func(p *Parameters) { p.A = 0 }},
		{"layer height", func(p *Parameters) { p.HPrime = 33 }},
		{"no layers", func(p *Parameters) { p.D = 0 }},
		{"tree index overflow", func(p *Parameters) { p.D = 10; p.HPrime = 8 }},
		{"hash function", func(p *Parameters) { p.Hash = "MD5" }},
		{"fors address overflow", func(p *Parameters) { p.K = 257; p.A = 24 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			require.Error(t, p.Validate())
		})
	}
}

func TestValidateForsAddressBoundary(t *testing.T) {
	require := require.New(t)

	// 256 trees of height 24 fill the 32-bit leaf index exactly.
	p := Parameters{Name: "wide", N: 16, K: 256, A: 24, D: 1, HPrime: 1, Hash: HashSHAKE256}
	require.NoError(p.Validate())

	p.K = 257
	err := p.Validate()
	require.Error(err)
	require.Contains(err.Error(), "32 bits")

	_, err = Parse([]byte(`{"n":16,"k":257,"a":24,"d":1,"hprime":1,"hash":"SHAKE256"}`))
	require.Error(err)
}

func TestResolveFromFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "params.json")
	require.NoError(os.WriteFile(path, []byte(`{"name":"file","n":32,"k":2,"a":3,"d":2,"hprime":2,"hash":"keccak256"}`), 0o644))

	p, err := Resolve(path)
	require.NoError(err)
	require.Equal("file", p.Name)
	require.Equal(HashKECCAK256, p.Hash)

	_, err = Resolve("does-not-exist")
	require.Error(err)

	p, err = Resolve("")
	require.NoError(err)
	require.Equal(DefaultPreset, p.Name)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"n":32,"k":1,"a":1,"d":1,"hprime":1,"hash":"SHAKE256","w":16}`))
	require.Error(t, err)
}
