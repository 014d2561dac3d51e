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

package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	params "github.com/sphinx-core/spxverify/src/core/sphincs/config"
	"github.com/sphinx-core/spxverify/src/core/sphincs/receipt"
	"github.com/sphinx-core/spxverify/src/core/sphincs/sphincstest"
	"github.com/sphinx-core/spxverify/src/core/sphincs/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func items(t *testing.T, p *params.Parameters, n int) []Item {
	t.Helper()
	f := sphincstest.MustNew(p, []byte("batch"))
	out := make([]Item, n)
	for i := range out {
		msg := []byte(fmt.Sprintf("message %d", i))
		sig, pk, err := f.Sign(msg)
		require.NoError(t, err)
		out[i] = Item{
			ID:        fmt.Sprintf("item-%d", i),
			Message:   msg,
			Signature: types.MarshalSignature(sig),
			PublicKey: types.MarshalPublicKey(pk),
		}
	}
	return out
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, result string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if result == "" {
				return m.GetCounter().GetValue()
			}
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func newVerifier(t *testing.T, cfg Config) (*Verifier, *prometheus.Registry) {
	t.Helper()
	p, err := params.Lookup("small")
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	v, err := New(p, cfg, zap.NewNop(), reg)
	require.NoError(t, err)
	return v, reg
}

func TestVerifyBatchVerdicts(t *testing.T) {
	v, reg := newVerifier(t, Config{Workers: 4, CacheSize: 64})
	batch := items(t, v.Params(), 6)

	batch[1].Message = []byte("tampered")
	batch[2].Signature = batch[2].Signature[1:]
	batch[3].PublicKey = append(batch[3].PublicKey, 0)
	batch[4].Signature[len(batch[4].Signature)-1] ^= 1

	results, err := v.VerifyBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, results, len(batch))

	for i, r := range results {
		require.Equal(t, batch[i].ID, r.ID)
		require.Len(t, r.Fingerprint, 64)
	}
	require.True(t, results[0].Valid)
	require.False(t, results[1].Valid)
	require.False(t, IsMalformed(results[1]))
	require.True(t, IsMalformed(results[2]))
	require.Contains(t, results[2].Error, "signature")
	require.True(t, IsMalformed(results[3]))
	require.False(t, results[4].Valid)
	require.Empty(t, results[4].Error)
	require.True(t, results[5].Valid)

	require.Equal(t, 2.0, counterValue(t, reg, "spx_verify_total", LabelValid))
	require.Equal(t, 2.0, counterValue(t, reg, "spx_verify_total", LabelInvalid))
	require.Equal(t, 2.0, counterValue(t, reg, "spx_verify_total", LabelMalformed))
}

func TestVerifyBatchCache(t *testing.T) {
	v, reg := newVerifier(t, Config{Workers: 2, CacheSize: 64})
	batch := items(t, v.Params(), 3)
	batch[2].PublicKey = nil

	first, err := v.VerifyBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Equal(t, 2, v.CacheLen())

	second, err := v.VerifyBatch(context.Background(), batch)
	require.NoError(t, err)
	for i := range batch {
		require.Equal(t, first[i].Valid, second[i].Valid)
		require.Equal(t, first[i].Fingerprint, second[i].Fingerprint)
	}
	require.True(t, second[0].Cached)
	require.True(t, second[1].Cached)
	require.False(t, second[2].Cached)
	require.Equal(t, 2.0, counterValue(t, reg, "spx_verify_cache_hits_total", ""))
}

func TestVerifyBatchWithoutCache(t *testing.T) {
	v, _ := newVerifier(t, Config{Workers: 1})
	batch := items(t, v.Params(), 2)

	for i := 0; i < 2; i++ {
		results, err := v.VerifyBatch(context.Background(), batch)
		require.NoError(t, err)
		require.False(t, results[0].Cached)
		require.True(t, results[1].Valid)
	}
	require.Zero(t, v.CacheLen())
}

func TestVerifyBatchCancelled(t *testing.T) {
	v, _ := newVerifier(t, DefaultConfig())
	batch := items(t, v.Params(), 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := v.VerifyBatch(ctx, batch)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, results)
}

func TestFingerprintBindsEveryField(t *testing.T) {
	v, _ := newVerifier(t, DefaultConfig())
	item := items(t, v.Params(), 1)[0]
	base := v.Fingerprint(item)
	require.Equal(t, base, v.Fingerprint(item))

	moved := item
	moved.Message = append(append([]byte(nil), item.Message...), item.Signature[0])
	moved.Signature = item.Signature[1:]
	require.NotEqual(t, base, v.Fingerprint(moved))

	other := item
	other.PublicKey = append([]byte(nil), item.PublicKey...)
	other.PublicKey[0] ^= 1
	require.NotEqual(t, base, v.Fingerprint(other))
}

func TestRecorderReceivesReceipts(t *testing.T) {
	v, _ := newVerifier(t, DefaultConfig())
	store, err := receipt.OpenMemory()
	require.NoError(t, err)
	defer store.Close()
	v.SetRecorder(store)

	batch := items(t, v.Params(), 3)
	batch[0].Signature = nil
	results, err := v.VerifyBatch(context.Background(), batch)
	require.NoError(t, err)

	n, err := store.Count()
	require.NoError(t, err)
	require.Equal(t, 3, n)

	r, err := store.Get(results[0].Fingerprint)
	require.NoError(t, err)
	require.False(t, r.Valid)
	require.NotEmpty(t, r.Error)
	require.Equal(t, "small", r.Params)
}

func TestMetricsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	require.Error(t, err)

	_, err = NewMetrics(nil)
	require.NoError(t, err)
}
