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

// Package abi translates Ethereum contract calldata for the on-chain
// verifier interface into verifier types and back.
//
// The contract method is
//
//	verify(bytes message, SPHINCS_SIG sig, SPHINCS_PK pk)
//
//	SPHINCS_SIG = (bytes32 R, (bytes32[] SK, bytes32[] AUTH) SIG_FORS, (bytes32[] AUTH) SIG_HT)
//	SPHINCS_PK  = (bytes32 PKseed, bytes32 PKroot)
//
// FORS and hypertree authentication paths travel as flat arrays of k*a and
// d*h' words and are split according to the parameter set.
package abi

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	"golang.org/x/crypto/sha3"
)

// Signature is the canonical method signature hashed into the selector.
const Signature = "verify(bytes,(bytes32,(bytes32[],bytes32[]),(bytes32[])),(bytes32,bytes32))"

const (
	wordSize     = 32
	selectorSize = 4
)

// ErrWordSize is returned for parameter sets whose hashes are not bytes32.
var ErrWordSize = errors.New("contract interface carries 32-byte hashes only")

// Call is a decoded verify invocation.
type Call struct {
	Message   []byte
	Signature *types.Signature
	PublicKey *types.PublicKey
}

// Selector returns the four byte method id.
func Selector() [selectorSize]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(Signature))
	var sel [selectorSize]byte
	copy(sel[:], h.Sum(nil))
	return sel
}

// EncodeVerifyCall produces calldata for verify(message, sig, pk). sig must
// be structurally valid for a parameter set with 32-byte hashes.
func EncodeVerifyCall(message []byte, sig *types.Signature, pk *types.PublicKey) ([]byte, error) {
	if len(pk.Root) != wordSize || len(pk.Seed) != wordSize || len(sig.Randomizer) != wordSize {
		return nil, ErrWordSize
	}

	skWords := sig.Fors.SecretLeaves
	var forsAuth, htAuth [][]byte
	for _, path := range sig.Fors.AuthPaths {
		forsAuth = append(forsAuth, path...)
	}
	for _, path := range sig.Hypertree.AuthPaths {
		htAuth = append(htAuth, path...)
	}
	for _, list := range [][][]byte{skWords, forsAuth, htAuth} {
		for _, w := range list {
			if len(w) != wordSize {
				return nil, ErrWordSize
			}
		}
	}

	// SIG_FORS: two dynamic arrays.
	skEnc := encodeWords(skWords)
	fors := concat(uintWord(2*wordSize), uintWord(uint64(2*wordSize+len(skEnc))), skEnc, encodeWords(forsAuth))
	// SIG_HT: one dynamic array.
	ht := concat(uintWord(wordSize), encodeWords(htAuth))
	// SPHINCS_SIG: R followed by the offsets of the two dynamic tuples.
	sigEnc := concat(sig.Randomizer, uintWord(3*wordSize), uintWord(uint64(3*wordSize+len(fors))), fors, ht)

	msgEnc := encodeBytes(message)
	sel := Selector()
	head := concat(
		uintWord(4*wordSize),
		uintWord(uint64(4*wordSize+len(msgEnc))),
		pk.Seed,
		pk.Root,
	)
	return concat(sel[:], head, msgEnc, sigEnc), nil
}

// DecodeVerifyCall parses calldata produced for the verify method. Every
// offset and length is bounds-checked; violations are reported as
// *types.StructuralError and the decoded signature is validated against p.
func DecodeVerifyCall(p *params.Parameters, data []byte) (*Call, error) {
	if p.N != wordSize {
		return nil, ErrWordSize
	}
	if len(data) < selectorSize {
		return nil, &types.StructuralError{Field: "calldata", Want: selectorSize, Got: len(data)}
	}
	sel := Selector()
	if string(data[:selectorSize]) != string(sel[:]) {
		return nil, fmt.Errorf("unknown method selector %x: %w", data[:selectorSize], types.ErrMalformed)
	}
	d := decoder{buf: data[selectorSize:]}

	msgOff, err := d.offset(0, 0)
	if err != nil {
		return nil, err
	}
	message, err := d.bytes(msgOff)
	if err != nil {
		return nil, err
	}
	sigOff, err := d.offset(0, wordSize)
	if err != nil {
		return nil, err
	}
	seed, err := d.word(2 * wordSize)
	if err != nil {
		return nil, err
	}
	root, err := d.word(3 * wordSize)
	if err != nil {
		return nil, err
	}

	r, err := d.word(sigOff)
	if err != nil {
		return nil, err
	}
	forsOff, err := d.offset(sigOff, sigOff+wordSize)
	if err != nil {
		return nil, err
	}
	htOff, err := d.offset(sigOff, sigOff+2*wordSize)
	if err != nil {
		return nil, err
	}
	skOff, err := d.offset(forsOff, forsOff)
	if err != nil {
		return nil, err
	}
	authOff, err := d.offset(forsOff, forsOff+wordSize)
	if err != nil {
		return nil, err
	}
	htAuthOff, err := d.offset(htOff, htOff)
	if err != nil {
		return nil, err
	}

	sk, err := d.words("sig.fors.sk", skOff)
	if err != nil {
		return nil, err
	}
	forsAuth, err := d.words("sig.fors.auth", authOff)
	if err != nil {
		return nil, err
	}
	htAuth, err := d.words("sig.ht.auth", htAuthOff)
	if err != nil {
		return nil, err
	}

	if len(forsAuth) != p.K*p.A {
		return nil, &types.StructuralError{Field: "sig.fors.auth", Want: p.K * p.A, Got: len(forsAuth)}
	}
	if len(htAuth) != p.D*p.HPrime {
		return nil, &types.StructuralError{Field: "sig.ht.auth", Want: p.D * p.HPrime, Got: len(htAuth)}
	}

	sig := &types.Signature{
		Randomizer: r,
		Fors: types.ForsSignature{
			SecretLeaves: sk,
			AuthPaths:    split(forsAuth, p.A),
		},
		Hypertree: types.HypertreeSignature{AuthPaths: split(htAuth, p.HPrime)},
	}
	if err := types.ValidateSignature(p, sig); err != nil {
		return nil, err
	}
	return &Call{
		Message:   message,
		Signature: sig,
		PublicKey: &types.PublicKey{Root: root, Seed: seed},
	}, nil
}

func split(words [][]byte, width int) [][][]byte {
	out := make([][][]byte, len(words)/width)
	for i := range out {
		out[i] = words[i*width : (i+1)*width]
	}
	return out
}

func uintWord(v uint64) []byte {
	w := uint256.NewInt(v).Bytes32()
	return w[:]
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func encodeWords(words [][]byte) []byte {
	out := uintWord(uint64(len(words)))
	for _, w := range words {
		out = append(out, w...)
	}
	return out
}

func encodeBytes(b []byte) []byte {
	padded := (len(b) + wordSize - 1) / wordSize * wordSize
	out := uintWord(uint64(len(b)))
	out = append(out, b...)
	return append(out, make([]byte, padded-len(b))...)
}
