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
	"encoding/binary"
	"fmt"

	"github.com/sphinx-core/spxverify/src/core/sphincs/address"
	"golang.org/x/crypto/sha3"
)

// SIPS-0001 https://github.com/sphinx-core/sips/wiki/SIPS-0001

// NewEngine returns the engine for the named hash function with an n-byte output.
func NewEngine(name string, n int) (Engine, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid hash output size %d", n)
	}
	switch name {
	case SHAKE256:
		return &shakeEngine{n: n}, nil
	case KECCAK256:
		if n > keccakSize {
			return nil, fmt.Errorf("keccak-256 cannot produce %d-byte hashes", n)
		}
		return &keccakEngine{n: n}, nil
	default:
		return nil, fmt.Errorf("unsupported hash function %q", name)
	}
}

// writeAddress feeds the encoded address, or 32 zero bytes for a nil address.
func writeAddress(w interface{ Write([]byte) (int, error) }, adrs *address.Address) {
	var buf [address.Size]byte
	if adrs != nil {
		adrs.Put(buf[:])
	}
	w.Write(buf[:])
}

// Hash implements Engine.
func (e *shakeEngine) Hash(domain Domain, seed []byte, adrs *address.Address, inputs ...[]byte) []byte {
	h := sha3.NewShake256()
	h.Write([]byte{byte(domain)})
	h.Write(seed)
	writeAddress(h, adrs)
	for _, in := range inputs {
		h.Write(in)
	}
	out := make([]byte, e.n)
	h.Read(out)
	return out
}

// Digest implements Engine. SHAKE256 is an XOF, so any length is read directly.
func (e *shakeEngine) Digest(randomizer, seed, message []byte, outLen int) []byte {
	h := sha3.NewShake256()
	h.Write([]byte{byte(DomainMessage)})
	h.Write(randomizer)
	h.Write(seed)
	h.Write(message)
	out := make([]byte, outLen)
	h.Read(out)
	return out
}

// Size implements Engine.
func (e *shakeEngine) Size() int { return e.n }

// Name implements Engine.
func (e *shakeEngine) Name() string { return SHAKE256 }

// Hash implements Engine. The 32-byte Keccak output is truncated to n bytes.
func (e *keccakEngine) Hash(domain Domain, seed []byte, adrs *address.Address, inputs ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{byte(domain)})
	h.Write(seed)
	writeAddress(h, adrs)
	for _, in := range inputs {
		h.Write(in)
	}
	return h.Sum(nil)[:e.n]
}

// Digest implements Engine. The message is compressed once, then expanded in
// counter mode: out = K(m | 0) | K(m | 1) | ... truncated to outLen.
func (e *keccakEngine) Digest(randomizer, seed, message []byte, outLen int) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte{byte(DomainMessage)})
	h.Write(randomizer)
	h.Write(seed)
	h.Write(message)
	mseed := h.Sum(nil)

	out := make([]byte, 0, outLen+keccakSize)
	var ctr [counterBytes]byte
	for i := uint32(0); len(out) < outLen; i++ {
		binary.BigEndian.PutUint32(ctr[:], i)
		h.Reset()
		h.Write(mseed)
		h.Write(ctr[:])
		out = h.Sum(out)
	}
	return out[:outLen]
}

// Size implements Engine.
func (e *keccakEngine) Size() int { return e.n }

// Name implements Engine.
func (e *keccakEngine) Name() string { return KECCAK256 }

// NewCounting wraps engine so that every Hash and Digest call is counted.
func NewCounting(engine Engine) *Counting {
	return &Counting{Engine: engine}
}

// Hash implements Engine.
func (c *Counting) Hash(domain Domain, seed []byte, adrs *address.Address, inputs ...[]byte) []byte {
	c.calls.Add(1)
	return c.Engine.Hash(domain, seed, adrs, inputs...)
}

// Digest implements Engine.
func (c *Counting) Digest(randomizer, seed, message []byte, outLen int) []byte {
	c.calls.Add(1)
	return c.Engine.Digest(randomizer, seed, message, outLen)
}

// Calls returns the number of hash invocations so far.
func (c *Counting) Calls() uint64 { return c.calls.Load() }

// Reset zeroes the counter.
func (c *Counting) Reset() { c.calls.Store(0) }
