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

import (
	"sync/atomic"

	"github.com/sphinx-core/spxverify/src/core/sphincs/address"
)

// Engine is the tweakable hash every verifier component goes through.
// Implementations are stateless and safe for concurrent use.
type Engine interface {
	// Hash returns Size() bytes of H(domain | seed | adrs | inputs...).
	Hash(domain Domain, seed []byte, adrs *address.Address, inputs ...[]byte) []byte
	// Digest derives outLen bytes from the randomizer, public seed and message.
	Digest(randomizer, seed, message []byte, outLen int) []byte
	// Size is the hash output width in bytes.
	Size() int
	// Name identifies the underlying hash function.
	Name() string
}

// shakeEngine implements Engine on SHAKE256.
type shakeEngine struct {
	n int // Output size in bytes
}

// keccakEngine implements Engine on legacy Keccak-256, the hash an EVM
// contract has natively.
type keccakEngine struct {
	n int // Output size in bytes, at most 32
}

// Counting wraps an Engine and counts the hash invocations that go through it.
type Counting struct {
	Engine
	calls atomic.Uint64
}
