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

// Package batch verifies many signatures concurrently and remembers verdicts.
//
// Each item is checked by the pure verifier on its own goroutine. The only
// shared state is an LRU cache of verdicts keyed by a keyed HighwayHash
// fingerprint of the inputs, plus the metrics and the optional receipt log.
package batch

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/minio/highwayhash"
	"github.com/prometheus/client_golang/prometheus"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/receipt"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	"github.com/sphinx-core/spxverify/src/core/sphincs/verify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls concurrency and caching.
type Config struct {
	Workers     int `json:"workers"`     // Items verified concurrently
	ForsWorkers int `json:"forsWorkers"` // FORS trees per item evaluated concurrently
	CacheSize   int `json:"cacheSize"`   // Cached verdicts, 0 disables the cache
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{Workers: 8, ForsWorkers: 1, CacheSize: 4096}
}

// Recorder receives a receipt for every verdict. *receipt.Store satisfies it.
type Recorder interface {
	Put(r receipt.Receipt) error
}

// Item is one verification request in wire encoding.
type Item struct {
	ID        string `json:"id,omitempty"`
	Message   []byte `json:"message"`
	Signature []byte `json:"signature"`
	PublicKey []byte `json:"publicKey"`
}

// Result is the verdict for one Item.
type Result struct {
	ID          string `json:"id,omitempty"`
	Fingerprint string `json:"fingerprint"`
	Valid       bool   `json:"valid"`
	Cached      bool   `json:"cached,omitempty"`
	Error       string `json:"error,omitempty"`

	err error
}

// Err returns the structural error behind a malformed verdict.
func (r Result) Err() error { return r.err }

// Verifier runs batches for one parameter set.
type Verifier struct {
	params   *params.Parameters
	verifier *verify.Verifier
	cfg      Config
	log      *zap.Logger
	metrics  *Metrics
	cache    *lru.Cache
	key      []byte
	recorder Recorder
}

// New builds a batch verifier. logger may be nil. Metrics are registered on
// reg when it is not nil.
func New(p *params.Parameters, cfg Config, logger *zap.Logger, reg prometheus.Registerer) (*Verifier, error) {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	v, err := verify.NewVerifier(p, verify.WithForsWorkers(cfg.ForsWorkers))
	if err != nil {
		return nil, err
	}
	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	b := &Verifier{
		params:   p,
		verifier: v,
		cfg:      cfg,
		log:      logger.With(zap.String("params", p.Name)),
		metrics:  metrics,
		key:      make([]byte, 32),
	}
	if _, err := rand.Read(b.key); err != nil {
		return nil, err
	}
	if cfg.CacheSize > 0 {
		if b.cache, err = lru.New(cfg.CacheSize); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// SetRecorder logs a receipt for every verdict produced from now on.
func (b *Verifier) SetRecorder(r Recorder) { b.recorder = r }

// Params returns the parameter set the verifier checks against.
func (b *Verifier) Params() *params.Parameters { return b.params }

// Metrics exposes the collectors, mainly for tests.
func (b *Verifier) Metrics() *Metrics { return b.metrics }

// CacheLen reports how many verdicts are cached.
func (b *Verifier) CacheLen() int {
	if b.cache == nil {
		return 0
	}
	return b.cache.Len()
}

// VerifyBatch verifies items concurrently. Results are returned in item
// order. If ctx is cancelled, in-flight work is discarded and ctx.Err() is
// returned.
func (b *Verifier) VerifyBatch(ctx context.Context, items []Item) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)
	for i := range items {
		if gctx.Err() != nil {
			break
		}
		i := i // per-iteration copy (go1.22 loopvar semantics under go 1.21 directive)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.VerifyItem(items[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	valid := 0
	for _, r := range results {
		if r.Valid {
			valid++
		}
	}
	b.log.Info("Batch verified",
		zap.Int("items", len(items)),
		zap.Int("valid", valid),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

// VerifyItem decodes and verifies a single item.
func (b *Verifier) VerifyItem(item Item) Result {
	fp := b.Fingerprint(item)
	res := Result{ID: item.ID, Fingerprint: hex.EncodeToString(fp[:])}

	if b.cache != nil {
		if cached, ok := b.cache.Get(fp); ok {
			b.metrics.CacheHits.Inc()
			res.Valid = cached.(bool)
			res.Cached = true
			b.log.Debug("Verdict served from cache", zap.String("id", item.ID), zap.Bool("valid", res.Valid))
			return res
		}
	}

	start := time.Now()
	valid, err := b.check(item)
	b.metrics.Duration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		res.err = err
		res.Error = err.Error()
		b.metrics.Verifications.WithLabelValues(LabelMalformed).Inc()
		b.log.Debug("Malformed verification input", zap.String("id", item.ID), zap.Error(err))
	case valid:
		res.Valid = true
		b.metrics.Verifications.WithLabelValues(LabelValid).Inc()
	default:
		b.metrics.Verifications.WithLabelValues(LabelInvalid).Inc()
	}

	// Malformed input is never cached.
	if err == nil && b.cache != nil {
		b.cache.Add(fp, valid)
	}
	b.record(res)
	return res
}

// Fingerprint identifies an item under this verifier's parameter set. The
// key is random per process, so fingerprints are not comparable across runs.
func (b *Verifier) Fingerprint(item Item) [highwayhash.Size]byte {
	h, err := highwayhash.New(b.key)
	if err != nil {
		panic(err)
	}
	var l [8]byte
	for _, field := range [][]byte{[]byte(b.params.Name), item.Message, item.Signature, item.PublicKey} {
		binary.BigEndian.PutUint64(l[:], uint64(len(field)))
		h.Write(l[:])
		h.Write(field)
	}
	var fp [highwayhash.Size]byte
	copy(fp[:], h.Sum(nil))
	return fp
}

func (b *Verifier) check(item Item) (bool, error) {
	sig, err := types.UnmarshalSignature(b.params, item.Signature)
	if err != nil {
		return false, err
	}
	pk, err := types.UnmarshalPublicKey(b.params, item.PublicKey)
	if err != nil {
		return false, err
	}
	return b.verifier.VerifyWithError(item.Message, sig, pk)
}

func (b *Verifier) record(res Result) {
	if b.recorder == nil {
		return
	}
	err := b.recorder.Put(receipt.Receipt{
		Fingerprint: res.Fingerprint,
		Params:      b.params.Name,
		Valid:       res.Valid,
		Error:       res.Error,
	})
	if err != nil {
		b.log.Warn("Failed to record receipt", zap.String("fingerprint", res.Fingerprint), zap.Error(err))
	}
}

// IsMalformed reports whether a result was rejected for its shape.
func IsMalformed(r Result) bool {
	return errors.Is(r.err, types.ErrMalformed)
}
