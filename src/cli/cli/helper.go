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

// go/src/cli/cli/helper.go
package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/sphinx-core/spxverify/src/common"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/receipt"
	spxhttp "github.com/sphinx-core/spxverify/src/http"
	logger "github.com/sphinx-core/spxverify/src/log"
)

// errInvalidSignature makes the process exit non-zero for a rejected signature.
var errInvalidSignature = errors.New("signature is not valid")

// loadSettings merges the config file with flags set on the command line
// and resolves the parameter set.
func loadSettings(cmd *cobra.Command, cfg *Config) (common.Config, *params.Parameters, error) {
	settings := common.DefaultConfig()
	if cfg.configFile != "" {
		loaded, err := common.LoadConfig(cfg.configFile)
		if err != nil {
			return settings, nil, err
		}
		settings = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("params") {
		settings.Params = cfg.params
	}
	if flags.Changed("log-level") {
		settings.LogLevel = cfg.logLevel
	}
	if flags.Changed("datadir") {
		settings.DataDir = cfg.dataDir
	}

	lvl, ok := logger.ParseLevel(settings.LogLevel)
	if !ok {
		return settings, nil, fmt.Errorf("unknown log level %q", settings.LogLevel)
	}
	logger.SetLevel(lvl)

	p, err := params.Resolve(settings.Params)
	if err != nil {
		return settings, nil, err
	}
	return settings, p, nil
}

// openReceipts opens the receipt store when a data directory is configured.
func openReceipts(settings common.Config) (*receipt.Store, error) {
	if settings.DataDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(settings.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := receipt.Open(common.GetReceiptDBPath(settings.DataDir))
	if err != nil {
		return nil, err
	}
	if settings.KeepReceipts > 0 {
		dropped, err := store.Prune(settings.KeepReceipts)
		if err != nil {
			store.Close()
			return nil, err
		}
		if dropped > 0 {
			logger.Infof("Pruned %d old receipts", dropped)
		}
	}
	return store, nil
}

// readMessage picks the message from exactly one of the message flags.
func readMessage(vc *verifyConfig) ([]byte, error) {
	set := 0
	for _, s := range []string{vc.message, vc.messageText, vc.messageFile} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("use only one of --message, --message-text and --message-file")
	}

	switch {
	case vc.messageFile != "":
		return os.ReadFile(vc.messageFile)
	case vc.messageText != "":
		return []byte(vc.messageText), nil
	default:
		return common.DecodeInput(vc.message)
	}
}

// readSignature takes the signature from a flag or a raw binary file.
func readSignature(vc *verifyConfig) ([]byte, error) {
	if vc.signatureFile != "" {
		if vc.signature != "" {
			return nil, errors.New("use only one of --signature and --signature-file")
		}
		return os.ReadFile(vc.signatureFile)
	}
	if vc.signature == "" {
		return nil, errors.New("--signature or --signature-file is required")
	}
	return common.DecodeInput(vc.signature)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// decodeBatchFile accepts either {"items": [...]} or a bare array.
func decodeBatchFile(data []byte, req *spxhttp.BatchRequest) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &req.Items)
	}
	return json.Unmarshal(trimmed, req)
}
