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
	"github.com/prometheus/client_golang/prometheus"
)

// Verdict labels used on the verification counter.
const (
	LabelValid     = "valid"
	LabelInvalid   = "invalid"
	LabelMalformed = "malformed"
)

// Metrics tracks batch verification outcomes.
type Metrics struct {
	Verifications *prometheus.CounterVec
	Duration      prometheus.Histogram
	CacheHits     prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spx_verify_total",
				Help: "Number of signatures verified, by verdict",
			},
			[]string{"result"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "spx_verify_duration_seconds",
				Help:    "Time spent verifying a single signature",
				Buckets: prometheus.DefBuckets,
			},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "spx_verify_cache_hits_total",
				Help: "Number of verdicts served from the result cache",
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Verifications, m.Duration, m.CacheHits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
