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

// go/src/common/config.go
package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DataDir is the default data directory
	DataDir = "data"

	// DefaultHTTPAddr is where the verification service listens by default
	DefaultHTTPAddr = ":8080"
)

// Config is the service configuration file.
type Config struct {
	Params       string `json:"params"`       // Preset name or path to a parameter JSON file
	Workers      int    `json:"workers"`      // Signatures verified concurrently
	ForsWorkers  int    `json:"forsWorkers"`  // FORS trees evaluated concurrently per signature
	CacheSize    int    `json:"cacheSize"`    // Cached verdicts, 0 disables the cache
	HTTPAddr     string `json:"httpAddr"`     // Listen address for serve
	DataDir      string `json:"dataDir"`      // Receipts are stored here when set
	KeepReceipts int    `json:"keepReceipts"` // Receipts kept after pruning, 0 keeps all
	LogLevel     string `json:"logLevel"`     // debug, info, warn or error
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Params:      "toy",
		Workers:     8,
		ForsWorkers: 1,
		CacheSize:   4096,
		HTTPAddr:    DefaultHTTPAddr,
		LogLevel:    "info",
	}
}

// LoadConfig reads a JSON configuration file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ForsWorkers < 0 || c.CacheSize < 0 || c.KeepReceipts < 0 {
		return errors.New("forsWorkers, cacheSize and keepReceipts must not be negative")
	}
	if c.Params == "" {
		return errors.New("params must name a preset or a parameter file")
	}
	return nil
}

// GetReceiptDBPath returns the standardized LevelDB path for verification receipts
func GetReceiptDBPath(dataDir string) string {
	return filepath.Join(dataDir, "receipts")
}

// WriteJSONToFile writes data as indented JSON, creating parent directories.
func WriteJSONToFile(data interface{}, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
