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

// go/src/common/hexutil.go
package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// Base58Prefix marks an input string as base58 rather than hex.
const Base58Prefix = "b58:"

// Bytes2Hex converts bytes to hexadecimal string
func Bytes2Hex(b []byte) string {
	return hex.EncodeToString(b)
}

// Hex2Bytes converts a hexadecimal string, with or without 0x, to bytes
func Hex2Bytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

// Bytes2Base58 encodes bytes with the Bitcoin base58 alphabet
func Bytes2Base58(b []byte) string {
	return base58.Encode(b)
}

// DecodeInput accepts hex (optionally 0x prefixed) or base58 prefixed with
// "b58:". Empty input decodes to an empty slice.
func DecodeInput(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, Base58Prefix) {
		body := strings.TrimPrefix(s, Base58Prefix)
		b := base58.Decode(body)
		// base58.Decode signals bad input with an empty result.
		if len(b) == 0 && body != "" {
			return nil, errors.New("invalid base58 input")
		}
		return b, nil
	}
	b, err := Hex2Bytes(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}

// FormatHash formats a byte slice as a 0x prefixed hex string
func FormatHash(hash []byte) string {
	return "0x" + hex.EncodeToString(hash)
}
