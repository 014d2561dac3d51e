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

package types

import (
	"errors"
	"fmt"
)

// ErrMalformed is matched by every structural error. It marks input that is
// broken in shape (wrong counts, widths or encodings) as opposed to a
// well-formed signature that simply does not verify.
var ErrMalformed = errors.New("malformed input")

// StructuralError describes which part of the input has the wrong shape.
type StructuralError struct {
	Field string // Path of the offending element, e.g. "fors.authPaths[2]"
	Want  int    // Expected count or byte width
	Got   int    // Observed count or byte width
}

// Error implements error.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed input: %s has length %d, want %d", e.Field, e.Got, e.Want)
}

// Is lets errors.Is(err, ErrMalformed) match any StructuralError.
func (e *StructuralError) Is(target error) bool {
	return target == ErrMalformed
}

func malformed(field string, want, got int) error {
	return &StructuralError{Field: field, Want: want, Got: got}
}
