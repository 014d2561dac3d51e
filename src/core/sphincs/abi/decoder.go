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

package abi

import (
	"github.com/holiman/uint256"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
)

// decoder reads head/tail encoded values. All positions are byte offsets
// into buf, which excludes the selector.
type decoder struct {
	buf []byte
}

func (d *decoder) malformed(field string, want, got int) error {
	return &types.StructuralError{Field: field, Want: want, Got: got}
}

// word returns a copy of the 32-byte word at pos.
func (d *decoder) word(pos int) ([]byte, error) {
	if pos < 0 || pos+wordSize > len(d.buf) {
		return nil, d.malformed("calldata", pos+wordSize, len(d.buf))
	}
	return append([]byte(nil), d.buf[pos:pos+wordSize]...), nil
}

// integer reads the word at pos as an integer that must fit inside buf.
func (d *decoder) integer(pos int) (int, error) {
	w, err := d.word(pos)
	if err != nil {
		return 0, err
	}
	v := new(uint256.Int).SetBytes(w)
	if !v.IsUint64() || v.Uint64() > uint64(len(d.buf)) {
		return 0, d.malformed("calldata.offset", len(d.buf), clamp(v))
	}
	return int(v.Uint64()), nil
}

// offset reads a relative offset stored at pos and resolves it against base.
func (d *decoder) offset(base, pos int) (int, error) {
	rel, err := d.integer(pos)
	if err != nil {
		return 0, err
	}
	abs := base + rel
	if abs+wordSize > len(d.buf) {
		return 0, d.malformed("calldata.offset", len(d.buf), abs)
	}
	return abs, nil
}

// bytes reads a length-prefixed byte string starting at pos.
func (d *decoder) bytes(pos int) ([]byte, error) {
	n, err := d.integer(pos)
	if err != nil {
		return nil, err
	}
	start := pos + wordSize
	if start+n > len(d.buf) {
		return nil, d.malformed("message", len(d.buf)-start, n)
	}
	return append([]byte(nil), d.buf[start:start+n]...), nil
}

// words reads a length-prefixed bytes32[] starting at pos.
func (d *decoder) words(field string, pos int) ([][]byte, error) {
	n, err := d.integer(pos)
	if err != nil {
		return nil, err
	}
	start := pos + wordSize
	if n > (len(d.buf)-start)/wordSize {
		return nil, d.malformed(field, (len(d.buf)-start)/wordSize, n)
	}
	out := make([][]byte, n)
	for i := range out {
		if out[i], err = d.word(start + i*wordSize); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func clamp(v *uint256.Int) int {
	if !v.IsUint64() || v.Uint64() > uint64(^uint(0)>>1) {
		return int(^uint(0) >> 1)
	}
	return int(v.Uint64())
}
