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

// Package termstat provides a stats implementation which periodically logs the
// statistics to the given writer. It is meant for watching a prep run at the
// terminal in lieu of an actual collector like prometheus or datadog.
// Histograms and sets are not kept.
package termstat

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pilosa/prep"
)

var _ prep.Statter = &Collector{}

// Collector collects stats and prints them to the terminal.
type Collector struct {
	lock    sync.Mutex
	counts  map[string]int64
	gauges  map[string]float64
	timings map[string]time.Duration
	changed bool
	out     io.Writer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewCollector initializes a Collector which writes to out every interval
// until it is closed. An interval of zero means only Flush and Close write.
func NewCollector(out io.Writer, interval time.Duration) *Collector {
	t := &Collector{
		counts:  make(map[string]int64),
		gauges:  make(map[string]float64),
		timings: make(map[string]time.Duration),
		out:     out,
		done:    make(chan struct{}),
	}
	if interval > 0 {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			tick := time.NewTicker(interval)
			defer tick.Stop()
			for {
				select {
				case <-tick.C:
					t.write("\r")
				case <-t.done:
					return
				}
			}
		}()
	}
	return t
}

func sampled(rate float64) bool {
	return rate >= 1 || rand.Float64() <= rate
}

// Count adds value to the named stat at the specified rate.
func (t *Collector) Count(name string, value int64, rate float64, tags ...string) {
	if !sampled(rate) {
		return
	}
	t.lock.Lock()
	t.counts[name] += value
	t.changed = true
	t.lock.Unlock()
}

// Gauge sets the named stat to value.
func (t *Collector) Gauge(name string, value float64, rate float64, tags ...string) {
	t.lock.Lock()
	t.gauges[name] = value
	t.changed = true
	t.lock.Unlock()
}

// Histogram does nothing.
func (t *Collector) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set does nothing.
func (t *Collector) Set(name string, value string, rate float64, tags ...string) {}

// Timing adds value to the total time spent in name.
func (t *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {
	t.lock.Lock()
	t.timings[name] += value
	t.changed = true
	t.lock.Unlock()
}

// String renders every stat, sorted by name.
func (t *Collector) String() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.render()
}

func (t *Collector) render() string {
	stats := make([]string, 0, len(t.counts)+len(t.gauges)+len(t.timings))
	for name, v := range t.counts {
		stats = append(stats, fmt.Sprintf("%s: %d", name, v))
	}
	for name, v := range t.gauges {
		stats = append(stats, fmt.Sprintf("%s: %g", name, v))
	}
	for name, v := range t.timings {
		stats = append(stats, fmt.Sprintf("%s: %v", name, v))
	}
	sort.Strings(stats)
	return strings.Join(stats, " ")
}

func (t *Collector) write(prefix string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.changed {
		return
	}
	fmt.Fprint(t.out, prefix+t.render())
	t.changed = false
}

// Flush writes the stats on a line of their own if anything changed since
// the last write.
func (t *Collector) Flush() {
	t.write("\n")
}

// Close stops the periodic writes and flushes.
func (t *Collector) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	t.wg.Wait()
	t.Flush()
	return nil
}
