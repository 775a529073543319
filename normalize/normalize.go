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

// Package normalize rescales numeric columns. A Normalizer is fitted to a
// column of a Dataset once and then applied to every value of that column
// with Column, which uses prep.Dataset.Replace.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/pilosa/prep"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Normalizer maps a value of a column to its normalized value.
type Normalizer interface {
	Normalize(x float64) float64
}

// Stats describes the non-blank values of a column. Mean and StdDev count
// every record, not every distinct value; StdDev is the population standard
// deviation.
type Stats struct {
	Min, Max     float64
	Mean, StdDev float64
	N            int64
}

// Describe computes the Stats of the column at idx from its facets. Blank
// values are skipped; any other value must be a number.
func Describe(ds *prep.Dataset, idx int) (*Stats, error) {
	tf, err := ds.ListFacets(idx)
	if err != nil {
		return nil, err
	}
	xs := make([]float64, 0, tf.Count())
	ws := make([]float64, 0, tf.Count())
	for _, f := range tf.Facets() {
		v := strings.TrimSpace(f.Value)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.Wrapf(prep.ErrMalformedNumericColumn, "column %d value '%s'", idx, f.Value)
		}
		xs = append(xs, x)
		ws = append(ws, float64(f.Count))
	}
	if len(xs) == 0 {
		return nil, errors.Errorf("no numeric values in column %d", idx)
	}
	mean, variance := stat.PopMeanVariance(xs, ws)
	return &Stats{
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   mean,
		StdDev: math.Sqrt(variance),
		N:      int64(floats.Sum(ws)),
	}, nil
}

// MinMax maps [Stats.Min, Stats.Max] linearly onto [Lo, Hi]. If all values
// are equal they map to Lo.
type MinMax struct {
	Stats  *Stats
	Lo, Hi float64
}

// Normalize implements Normalizer.
func (m *MinMax) Normalize(x float64) float64 {
	span := m.Stats.Max - m.Stats.Min
	if span == 0 {
		return m.Lo
	}
	return (x-m.Stats.Min)/span*(m.Hi-m.Lo) + m.Lo
}

// ZScore maps a value to its number of standard deviations from the mean.
// If all values are equal they map to 0.
type ZScore struct {
	Stats *Stats
}

// Normalize implements Normalizer.
func (z *ZScore) Normalize(x float64) float64 {
	if z.Stats.StdDev == 0 {
		return 0
	}
	return stat.StdScore(x, z.Stats.Mean, z.Stats.StdDev)
}

// DecimalScaling divides by the smallest power of ten which brings every
// value into (-1, 1).
type DecimalScaling struct {
	scale float64
}

// NewDecimalScaling returns a DecimalScaling fitted to st.
func NewDecimalScaling(st *Stats) *DecimalScaling {
	maxAbs := math.Max(math.Abs(st.Min), math.Abs(st.Max))
	scale := 1.0
	for maxAbs/scale >= 1 {
		scale *= 10
	}
	return &DecimalScaling{scale: scale}
}

// Normalize implements Normalizer.
func (d *DecimalScaling) Normalize(x float64) float64 { return x / d.scale }

// Replacement returns a prep.ReplacementFunc applying n. Blank values stay
// blank; surrounding whitespace of numbers is dropped. A value which is not
// a number is left as it is, but Describe would have rejected such a column.
func Replacement(n Normalizer) prep.ReplacementFunc {
	return func(value string) string {
		v := strings.TrimSpace(value)
		if v == "" {
			return value
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return value
		}
		return strconv.FormatFloat(n.Normalize(x), 'f', -1, 64)
	}
}

// Column returns ds with the column at idx normalized by n.
func Column(ds *prep.Dataset, idx int, n Normalizer) *prep.Dataset {
	return ds.Replace(idx, Replacement(n))
}

// Named fits the normalizer named by method to the column at idx of ds:
// "min_max" onto [lo, hi], "z_score" or "decimal_scaling".
func Named(method string, ds *prep.Dataset, idx int, lo, hi float64) (Normalizer, error) {
	switch method {
	case "min_max", "z_score", "decimal_scaling":
	default:
		return nil, errors.Errorf("unknown normalization '%s'", method)
	}
	st, err := Describe(ds, idx)
	if err != nil {
		return nil, errors.Wrapf(err, "describing column %d", idx)
	}
	ds.Logger().Debugf("column %d: %+v", idx, *st)
	switch method {
	case "min_max":
		return &MinMax{Stats: st, Lo: lo, Hi: hi}, nil
	case "z_score":
		return &ZScore{Stats: st}, nil
	default:
		return NewDecimalScaling(st), nil
	}
}
