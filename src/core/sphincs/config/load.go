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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Load reads a parameter set from a JSON file and validates it.
func Load(path string) (*Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON parameter set. Unknown fields are rejected.
func Parse(data []byte) (*Parameters, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p Parameters
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	p.Hash = strings.ToUpper(p.Hash)
	if p.Name == "" {
		p.Name = "custom"
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters %q: %w", p.Name, err)
	}
	return &p, nil
}

// Resolve accepts either a preset name or a path to a JSON parameter file.
func Resolve(nameOrPath string) (*Parameters, error) {
	if nameOrPath == "" {
		nameOrPath = DefaultPreset
	}
	if p, err := Lookup(nameOrPath); err == nil {
		return p, nil
	}
	if strings.HasSuffix(nameOrPath, ".json") {
		return Load(nameOrPath)
	}
	return nil, fmt.Errorf("unknown parameter set %q (presets: %s)", nameOrPath, strings.Join(Presets(), ", "))
}
