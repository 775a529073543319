// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

// Package prometheus provides a prep.Statter which keeps its stats as
// Prometheus metrics. Counters become counters, gauges gauges, and
// histograms and timings histograms. Sets and tags are not exported.
package prometheus

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pilosa/prep"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pkg/errors"
)

var _ prep.Statter = &Statter{}

// Statter registers a metric the first time a name is used.
type Statter struct {
	namespace string
	reg       *prom.Registry

	lock       sync.Mutex
	counters   map[string]prom.Counter
	gauges     map[string]prom.Gauge
	histograms map[string]prom.Histogram
	log        prep.Logger
}

// NewStatter returns a Statter registering its metrics with reg under
// namespace. A nil reg gets a fresh registry.
func NewStatter(namespace string, reg *prom.Registry, log prep.Logger) *Statter {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	if log == nil {
		log = prep.NopLogger{}
	}
	return &Statter{
		namespace:  namespace,
		reg:        reg,
		counters:   make(map[string]prom.Counter),
		gauges:     make(map[string]prom.Gauge),
		histograms: make(map[string]prom.Histogram),
		log:        log,
	}
}

// Registry returns the registry the metrics live in.
func (s *Statter) Registry() *prom.Registry { return s.reg }

// Handler serves the metrics in the Prometheus text format.
func (s *Statter) Handler() http.Handler {
	return promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})
}

// MetricName turns a dotted stat name into a Prometheus metric name.
func MetricName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		}
		return '_'
	}, name)
}

func (s *Statter) register(c prom.Collector) prom.Collector {
	err := s.reg.Register(c)
	if err == nil {
		return c
	}
	if are, ok := err.(prom.AlreadyRegisteredError); ok {
		return are.ExistingCollector
	}
	s.log.Printf("%v", errors.Wrap(err, "registering metric"))
	return c
}

func (s *Statter) counter(name string) prom.Counter {
	s.lock.Lock()
	defer s.lock.Unlock()
	c, ok := s.counters[name]
	if !ok {
		c, _ = s.register(prom.NewCounter(prom.CounterOpts{
			Namespace: s.namespace,
			Name:      MetricName(name) + "_total",
			Help:      "prep counter " + name,
		})).(prom.Counter)
		s.counters[name] = c
	}
	return c
}

func (s *Statter) gauge(name string) prom.Gauge {
	s.lock.Lock()
	defer s.lock.Unlock()
	g, ok := s.gauges[name]
	if !ok {
		g, _ = s.register(prom.NewGauge(prom.GaugeOpts{
			Namespace: s.namespace,
			Name:      MetricName(name),
			Help:      "prep gauge " + name,
		})).(prom.Gauge)
		s.gauges[name] = g
	}
	return g
}

func (s *Statter) histogram(name string, buckets []float64) prom.Histogram {
	s.lock.Lock()
	defer s.lock.Unlock()
	h, ok := s.histograms[name]
	if !ok {
		h, _ = s.register(prom.NewHistogram(prom.HistogramOpts{
			Namespace: s.namespace,
			Name:      name,
			Help:      "prep histogram " + name,
			Buckets:   buckets,
		})).(prom.Histogram)
		s.histograms[name] = h
	}
	return h
}

// Count adds value to the counter name. Negative values are dropped.
func (s *Statter) Count(name string, value int64, rate float64, tags ...string) {
	if value < 0 {
		return
	}
	if c := s.counter(name); c != nil {
		c.Add(float64(value))
	}
}

// Gauge sets the gauge name.
func (s *Statter) Gauge(name string, value float64, rate float64, tags ...string) {
	if g := s.gauge(name); g != nil {
		g.Set(value)
	}
}

// Histogram observes value.
func (s *Statter) Histogram(name string, value float64, rate float64, tags ...string) {
	if h := s.histogram(MetricName(name), prom.DefBuckets); h != nil {
		h.Observe(value)
	}
}

// Set does nothing.
func (s *Statter) Set(name string, value string, rate float64, tags ...string) {}

// Timing observes value in seconds.
func (s *Statter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	if h := s.histogram(MetricName(name)+"_seconds", prom.DefBuckets); h != nil {
		h.Observe(value.Seconds())
	}
}
