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

// Package address encodes the hash address that binds every tweakable hash
// call to its position in the structure, so structurally identical subtrees
// at different coordinates never hash identically.
package address

import "encoding/binary"

// Size is the encoded length of an address.
const Size = 32

// Type identifies which structure a hash call belongs to.
type Type uint32

// Address types, numbered as in FIPS 205.
const (
	TypeHashTree  Type = 2
	TypeForsTree  Type = 3
	TypeForsRoots Type = 4
)

// Address is laid out as
//
//	layer(4) | tree(12) | type(4) | key pair(4) | tree height(4) | tree index(4)
//
// all big-endian. The upper four bytes of the tree field are always zero
// because tree indices are carried in a uint64.
type Address struct {
	Layer      uint32
	Tree       uint64
	Type       Type
	KeyPair    uint32
	TreeHeight uint32
	TreeIndex  uint32
}

// Bytes serialises the address for hashing.
func (a *Address) Bytes() []byte {
	var buf [Size]byte
	a.Put(buf[:])
	return buf[:]
}

// Put writes the encoded address into dst, which must hold Size bytes.
func (a *Address) Put(dst []byte) {
	_ = dst[Size-1]
	binary.BigEndian.PutUint32(dst[0:4], a.Layer)
	binary.BigEndian.PutUint32(dst[4:8], 0)
	binary.BigEndian.PutUint64(dst[8:16], a.Tree)
	binary.BigEndian.PutUint32(dst[16:20], uint32(a.Type))
	binary.BigEndian.PutUint32(dst[20:24], a.KeyPair)
	binary.BigEndian.PutUint32(dst[24:28], a.TreeHeight)
	binary.BigEndian.PutUint32(dst[28:32], a.TreeIndex)
}

// SetTypeAndClear switches the address type and zeroes the fields below it.
func (a *Address) SetTypeAndClear(t Type) {
	a.Type = t
	a.KeyPair = 0
	a.TreeHeight = 0
	a.TreeIndex = 0
}

// Copy returns an independent copy of the address.
func (a *Address) Copy() *Address {
	c := *a
	return &c
}
