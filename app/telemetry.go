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

package app

import (
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/datadog"
	"github.com/pilosa/prep/prometheus"
	"github.com/pilosa/prep/termstat"
	"github.com/pkg/errors"
)

// Telemetry holds the logging and stats options every command shares.
type Telemetry struct {
	Verbose   bool   `help:"Enable verbose logging."`
	LogPath   string `help:"Log file to write to. Empty means stderr."`
	Stats     string `help:"Where stats go: none, term, prometheus or datadog."`
	StatsAddr string `help:"Address to serve prometheus metrics on, or of the DogStatsD agent. Empty picks the backend's default."`

	log     prep.Logger
	stats   prep.Statter
	closers []func() error
}

// NewTelemetry returns Telemetry with logging to stderr and no stats.
func NewTelemetry() *Telemetry {
	return &Telemetry{Stats: "none"}
}

// Log returns the logger set up by setup.
func (t *Telemetry) Log() prep.Logger {
	if t.log == nil {
		return prep.NopLogger{}
	}
	return t.log
}

// Statter returns the statter set up by setup.
func (t *Telemetry) Statter() prep.Statter {
	if t.stats == nil {
		return prep.NopStatter{}
	}
	return t.stats
}

func (t *Telemetry) setup(stderr io.Writer) error {
	logOut := stderr
	if t.LogPath != "" {
		f, err := os.OpenFile(t.LogPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return errors.Wrap(err, "opening log file")
		}
		t.closers = append(t.closers, f.Close)
		logOut = f
	}
	if t.Verbose {
		t.log = prep.NewVerboseLogger(logOut)
	} else {
		t.log = prep.NewStdLogger(logOut)
	}

	switch strings.ToLower(t.Stats) {
	case "", "none":
		t.stats = prep.NopStatter{}
	case "term":
		c := termstat.NewCollector(stderr, 2*time.Second)
		t.closers = append(t.closers, c.Close)
		t.stats = c
	case "prometheus":
		addr := t.StatsAddr
		if addr == "" {
			addr = ":9102"
		}
		s := prometheus.NewStatter("prep", nil, t.log)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return errors.Wrap(err, "listening for metrics requests")
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.Handler())
		srv := &http.Server{Handler: mux}
		go func() {
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				t.log.Printf("serving metrics: %v", err)
			}
		}()
		t.log.Printf("serving metrics on %s/metrics", ln.Addr())
		t.closers = append(t.closers, srv.Close)
		t.stats = s
	case "datadog":
		addr := t.StatsAddr
		if addr == "" {
			addr = "127.0.0.1:8125"
		}
		s, err := datadog.NewStatter(addr, t.log)
		if err != nil {
			return errors.Wrap(err, "setting up datadog")
		}
		t.closers = append(t.closers, s.Close)
		t.stats = s
	default:
		return errors.Errorf("unknown stats backend '%s'", t.Stats)
	}
	return nil
}

// options returns the Dataset options carrying the logger and statter.
func (t *Telemetry) options() []prep.DatasetOption {
	return []prep.DatasetOption{
		prep.OptDatasetLogger(t.Log()),
		prep.OptDatasetStatter(t.Statter()),
	}
}

// close releases what setup acquired, last first, and returns the first
// error.
func (t *Telemetry) close() error {
	var first error
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	t.closers = nil
	return first
}

// closeWith closes t and reports the error through err unless err is
// already set.
func (t *Telemetry) closeWith(err *error) {
	if cerr := t.close(); cerr != nil && *err == nil {
		*err = errors.Wrap(cerr, "closing telemetry")
	}
}
