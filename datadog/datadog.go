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

// Package datadog provides a prep.Statter which sends its stats to a
// DogStatsD agent.
package datadog

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/pilosa/prep"
	"github.com/pkg/errors"
)

var _ prep.Statter = &Statter{}

// Statter forwards stats to a statsd client. Tags are passed along as they
// are, so they should be in the "key:value" form.
type Statter struct {
	client statsd.ClientInterface
	log    prep.Logger
}

// NewStatter connects to the agent at addr, e.g. "127.0.0.1:8125". Every
// stat name is prefixed with "prep.".
func NewStatter(addr string, log prep.Logger, opts ...statsd.Option) (*Statter, error) {
	opts = append([]statsd.Option{statsd.WithNamespace("prep.")}, opts...)
	client, err := statsd.New(addr, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating statsd client")
	}
	return NewStatterFromClient(client, log), nil
}

// NewStatterFromClient wraps an existing client.
func NewStatterFromClient(client statsd.ClientInterface, log prep.Logger) *Statter {
	if log == nil {
		log = prep.NopLogger{}
	}
	return &Statter{client: client, log: log}
}

func (s *Statter) check(err error, name string) {
	if err != nil {
		s.log.Debugf("sending %s: %v", name, err)
	}
}

// Count implements prep.Statter.
func (s *Statter) Count(name string, value int64, rate float64, tags ...string) {
	s.check(s.client.Count(name, value, tags, rate), name)
}

// Gauge implements prep.Statter.
func (s *Statter) Gauge(name string, value float64, rate float64, tags ...string) {
	s.check(s.client.Gauge(name, value, tags, rate), name)
}

// Histogram implements prep.Statter.
func (s *Statter) Histogram(name string, value float64, rate float64, tags ...string) {
	s.check(s.client.Histogram(name, value, tags, rate), name)
}

// Set implements prep.Statter.
func (s *Statter) Set(name string, value string, rate float64, tags ...string) {
	s.check(s.client.Set(name, value, tags, rate), name)
}

// Timing implements prep.Statter.
func (s *Statter) Timing(name string, value time.Duration, rate float64, tags ...string) {
	s.check(s.client.Timing(name, value, tags, rate), name)
}

// Flush sends buffered stats.
func (s *Statter) Flush() error {
	return errors.Wrap(s.client.Flush(), "flushing statsd client")
}

// Close flushes and closes the client.
func (s *Statter) Close() error {
	return errors.Wrap(s.client.Close(), "closing statsd client")
}
