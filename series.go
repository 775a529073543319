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

package prep

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Smoother turns a series of numbers into a smoothed series. The result may
// be shorter than values, e.g. a moving average over a window of n yields
// len(values)-n+1 numbers.
type Smoother interface {
	Smooth(values []float64) []float64
}

// SmootherFunc can be wrapped around a function to make it implement
// Smoother.
type SmootherFunc func(values []float64) []float64

// Smooth implements Smoother.
func (f SmootherFunc) Smooth(values []float64) []float64 { return f(values) }

// Numbers returns the column at idx of every record as a float64, in record
// order. Surrounding whitespace is ignored; any other non-numeric value,
// including a blank one, fails with ErrMalformedNumericColumn.
func (d *Dataset) Numbers(idx int) ([]float64, error) {
	dialect := d.dialect
	vals, err := d.records.Map(func(record string) (string, bool, error) {
		val, err := column(dialect.Parse(record), idx)
		if err != nil {
			return "", false, err
		}
		val = strings.TrimSpace(val)
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			return "", false, errors.Wrapf(ErrMalformedNumericColumn, "column %d value '%s'", idx, val)
		}
		return val, true, nil
	}).Collect()
	if err != nil {
		return nil, err
	}
	xs := make([]float64, len(vals))
	for i, v := range vals {
		xs[i], _ = strconv.ParseFloat(v, 64)
	}
	return xs, nil
}

// Smooth returns the numbers of the column at idx, in record order, smoothed
// by s. Like ListFacets it is an action; the series is pulled into this
// process.
func (d *Dataset) Smooth(idx int, s Smoother) ([]float64, error) {
	start := time.Now()
	xs, err := d.Numbers(idx)
	if err != nil {
		return nil, errors.Wrapf(err, "reading series of column %d", idx)
	}
	ret := s.Smooth(xs)
	d.stats.Timing("smooth", time.Since(start), 1)
	d.log.Debugf("smoothed %d values of column %d into %d", len(xs), idx, len(ret))
	return ret, nil
}
