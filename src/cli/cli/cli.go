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

// go/src/cli/cli/cli.go
package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/sphinx-core/spxverify/src/common"
	"github.com/sphinx-core/spxverify/src/core/sphincs/batch"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/digest"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	"github.com/sphinx-core/spxverify/src/core/sphincs/verify"
	spxhttp "github.com/sphinx-core/spxverify/src/http"
	logger "github.com/sphinx-core/spxverify/src/log"
	spxhash "github.com/sphinx-core/spxverify/src/spxhash/hash"
)

// Execute runs the command line interface.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the spxverify command tree.
func NewRootCommand() *cobra.Command {
	cfg := &Config{}
	root := &cobra.Command{
		Use:           "spxverify",
		Short:         "Verify SPHINCS+ signatures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.configFile, "config", "", "Path to service configuration JSON file")
	root.PersistentFlags().StringVar(&cfg.params, "params", params.DefaultPreset, "Parameter preset name or path to a parameter JSON file")
	root.PersistentFlags().StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&cfg.dataDir, "datadir", "", "Directory for the receipt database (disabled when empty)")

	root.AddCommand(
		newVerifyCommand(cfg),
		newBatchCommand(cfg),
		newServeCommand(cfg),
		newParamsCommand(),
		newInspectCommand(cfg),
	)
	return root
}

func newVerifyCommand(cfg *Config) *cobra.Command {
	vc := &verifyConfig{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify one signature",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := loadSettings(cmd, cfg)
			if err != nil {
				return err
			}
			msg, err := readMessage(vc)
			if err != nil {
				return err
			}
			sigBytes, err := readSignature(vc)
			if err != nil {
				return err
			}
			pkBytes, err := common.DecodeInput(vc.publicKey)
			if err != nil {
				return fmt.Errorf("public key: %w", err)
			}

			out := VerifyOutputJSON{Params: p.Name}
			if vc.remote != "" {
				res, err := spxhttp.NewClient(vc.remote).Verify(cmd.Context(), spxhttp.VerifyRequest{
					Message:   hex.EncodeToString(msg),
					Signature: hex.EncodeToString(sigBytes),
					PublicKey: hex.EncodeToString(pkBytes),
				})
				if err != nil {
					return err
				}
				out.Valid, out.Error, out.RemoteAddr = res.Valid, res.Error, vc.remote
			} else {
				out, err = verifyLocal(p, vc.forsWorkers, msg, sigBytes, pkBytes)
				if err != nil {
					return err
				}
			}

			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if out.Error != "" {
				return errors.New(out.Error)
			}
			if !out.Valid {
				return errInvalidSignature
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&vc.message, "message", "", "Message as hex or b58: prefixed base58")
	cmd.Flags().StringVar(&vc.messageText, "message-text", "", "Message as a UTF-8 string")
	cmd.Flags().StringVar(&vc.messageFile, "message-file", "", "Read the message from a file")
	cmd.Flags().StringVar(&vc.signature, "signature", "", "Signature as hex or b58: prefixed base58")
	cmd.Flags().StringVar(&vc.signatureFile, "signature-file", "", "Read the raw signature from a file")
	cmd.Flags().StringVar(&vc.publicKey, "public-key", "", "Public key (root then seed) as hex or b58: prefixed base58")
	cmd.Flags().StringVar(&vc.remote, "remote", "", "Verify through a running server instead of locally")
	cmd.Flags().IntVar(&vc.forsWorkers, "fors-workers", 1, "FORS trees evaluated concurrently")
	_ = cmd.MarkFlagRequired("public-key")
	return cmd
}

// verifyLocal verifies in process and counts hash calls.
func verifyLocal(p *params.Parameters, forsWorkers int, msg, sigBytes, pkBytes []byte) (VerifyOutputJSON, error) {
	out := VerifyOutputJSON{Params: p.Name}

	sig, err := types.UnmarshalSignature(p, sigBytes)
	if err != nil {
		out.Error = err.Error()
		return out, nil
	}
	pk, err := types.UnmarshalPublicKey(p, pkBytes)
	if err != nil {
		out.Error = err.Error()
		return out, nil
	}

	engine, err := spxhash.NewEngine(p.Hash, p.N)
	if err != nil {
		return out, err
	}
	counting := spxhash.NewCounting(engine)
	v, err := verify.NewVerifier(p, verify.WithEngine(counting), verify.WithForsWorkers(forsWorkers))
	if err != nil {
		return out, err
	}

	start := time.Now()
	out.Valid, err = v.VerifyWithError(msg, sig, pk)
	out.Elapsed = time.Since(start).String()
	out.HashCalls = counting.Calls()
	if err != nil {
		out.Error = err.Error()
	}
	logger.Debugf("Verified with %s: valid=%v hash calls=%d", p, out.Valid, out.HashCalls)
	return out, nil
}

func newBatchCommand(cfg *Config) *cobra.Command {
	bc := &batchConfig{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Verify a JSON file of signatures concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, p, err := loadSettings(cmd, cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				settings.Workers = bc.workers
			}

			var req spxhttp.BatchRequest
			data, err := os.ReadFile(bc.file)
			if err != nil {
				return err
			}
			if err := decodeBatchFile(data, &req); err != nil {
				return err
			}
			items := make([]batch.Item, len(req.Items))
			for i, r := range req.Items {
				if items[i], err = spxhttp.DecodeRequest(r); err != nil {
					return fmt.Errorf("item %d: %w", i, err)
				}
			}

			v, err := batch.New(p, batchSettings(settings), logger.Logger(), nil)
			if err != nil {
				return err
			}
			store, err := openReceipts(settings)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				v.SetRecorder(store)
			}

			results, err := v.VerifyBatch(cmd.Context(), items)
			if err != nil {
				return err
			}
			resp := spxhttp.BatchResponse{Results: results}
			for _, r := range results {
				if r.Valid {
					resp.Valid++
				}
			}
			logger.Infof("Verified %d signatures, %d valid", len(results), resp.Valid)

			if bc.out != "" {
				return common.WriteJSONToFile(resp, bc.out)
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&bc.file, "file", "", "JSON file with {\"items\": [...]} or a bare array of requests")
	cmd.Flags().StringVar(&bc.out, "out", "", "Write results to this file instead of stdout")
	cmd.Flags().IntVar(&bc.workers, "workers", 8, "Signatures verified concurrently")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newServeCommand(cfg *Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve verification over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, p, err := loadSettings(cmd, cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				settings.HTTPAddr = addr
			}

			v, err := batch.New(p, batchSettings(settings), logger.Logger(), prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			store, err := openReceipts(settings)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				v.SetRecorder(store)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Infof("Serving %s on %s", p, settings.HTTPAddr)
			srv := spxhttp.NewServer(settings.HTTPAddr, v, logger.Logger(), prometheus.DefaultGatherer)
			if err := srv.Start(ctx); err != nil {
				return err
			}
			logger.Infof("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", common.DefaultHTTPAddr, "HTTP listen address")
	return cmd
}

func newParamsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "params",
		Short: "List the built-in parameter sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []ParamsInfoJSON
			for _, name := range params.Presets() {
				p, err := params.Lookup(name)
				if err != nil {
					return err
				}
				infos = append(infos, ParamsInfoJSON{
					Name: p.Name, N: p.N, K: p.K, A: p.A, D: p.D, HPrime: p.HPrime, Hash: p.Hash,
					PublicKeySize: p.PublicKeySize(), SignatureSize: p.SignatureSize(),
				})
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), infos)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-12s %3s %3s %3s %3s %3s %-10s %8s %10s\n", "NAME", "N", "K", "A", "D", "H'", "HASH", "PK", "SIG")
			for _, i := range infos {
				fmt.Fprintf(w, "%-12s %3d %3d %3d %3d %3d %-10s %8d %10d\n", i.Name, i.N, i.K, i.A, i.D, i.HPrime, i.Hash, i.PublicKeySize, i.SignatureSize)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newInspectCommand(cfg *Config) *cobra.Command {
	vc := &verifyConfig{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode a signature and show the positions a message selects",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := loadSettings(cmd, cfg)
			if err != nil {
				return err
			}
			sigBytes, err := readSignature(vc)
			if err != nil {
				return err
			}
			sig, err := types.UnmarshalSignature(p, sigBytes)
			if err != nil {
				return err
			}
			out := InspectOutputJSON{
				Params:     p.Name,
				Randomizer: hex.EncodeToString(sig.Randomizer),
				ForsTrees:  len(sig.Fors.SecretLeaves),
				Layers:     len(sig.Hypertree.AuthPaths),
				Bytes:      len(sigBytes),
			}

			// Index derivation needs the public seed and the message.
			if vc.publicKey != "" {
				msg, err := readMessage(vc)
				if err != nil {
					return err
				}
				pkBytes, err := common.DecodeInput(vc.publicKey)
				if err != nil {
					return err
				}
				pk, err := types.UnmarshalPublicKey(p, pkBytes)
				if err != nil {
					return err
				}
				engine, err := spxhash.NewEngine(p.Hash, p.N)
				if err != nil {
					return err
				}
				d := engine.Digest(sig.Randomizer, pk.Seed, msg, p.DigestSize())
				idx, err := digest.Split(p, d)
				if err != nil {
					return err
				}
				out.Digest = hex.EncodeToString(d)
				out.ForsIndices, out.TreeIndex, out.LeafIndex = idx.Fors, idx.Tree, idx.Leaf
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&vc.signature, "signature", "", "Signature as hex or b58: prefixed base58")
	cmd.Flags().StringVar(&vc.signatureFile, "signature-file", "", "Read the raw signature from a file")
	cmd.Flags().StringVar(&vc.publicKey, "public-key", "", "Public key, enables index derivation")
	cmd.Flags().StringVar(&vc.message, "message", "", "Message as hex or b58: prefixed base58")
	cmd.Flags().StringVar(&vc.messageText, "message-text", "", "Message as a UTF-8 string")
	cmd.Flags().StringVar(&vc.messageFile, "message-file", "", "Read the message from a file")
	return cmd
}

func batchSettings(settings common.Config) batch.Config {
	return batch.Config{
		Workers:     settings.Workers,
		ForsWorkers: settings.ForsWorkers,
		CacheSize:   settings.CacheSize,
	}
}

// ExitCode maps an Execute error to a process exit status: 1 for a rejected
// signature, 2 for anything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInvalidSignature):
		return 1
	default:
		return 2
	}
}
