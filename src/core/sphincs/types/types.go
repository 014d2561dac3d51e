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

// Package types holds the SPHINCS+ verification data model: public keys and
// signatures as produced by an external signer, their structural validation
// and their fixed-width wire encoding.
package types

// PublicKey is the verifier's view of a SPHINCS+ public key.
type PublicKey struct {
	Root []byte `json:"root"` // Root of the top hypertree layer
	Seed []byte `json:"seed"` // Public seed mixed into every hash call
}

// ForsSignature reveals one secret leaf and one authentication path per FORS tree.
type ForsSignature struct {
	SecretLeaves [][]byte   `json:"secretLeaves"` // k revealed leaves
	AuthPaths    [][][]byte `json:"authPaths"`    // k paths of a siblings each
}

// HypertreeSignature holds one authentication path per hypertree layer.
type HypertreeSignature struct {
	AuthPaths [][][]byte `json:"authPaths"` // d paths of h' siblings each
}

// Signature is a complete SPHINCS+ signature.
type Signature struct {
	Randomizer []byte             `json:"randomizer"` // Per-signature randomness R
	Fors       ForsSignature      `json:"fors"`
	Hypertree  HypertreeSignature `json:"hypertree"`
}
