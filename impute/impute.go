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

// Package impute provides prep.MissingDataHandlers. Apart from Constant they
// look at the whole column once, through its facet table, and then fill
// every blank with the same value.
package impute

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pilosa/prep"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Constant fills blanks with value.
func Constant(value string) prep.MissingDataHandler {
	return prep.MissingDataHandlerFunc(func([]string) string { return value })
}

// present returns the facets of the column at idx which are not blank.
func present(ds *prep.Dataset, idx int) ([]prep.Facet, error) {
	tf, err := ds.ListFacets(idx)
	if err != nil {
		return nil, errors.Wrap(err, "listing facets")
	}
	facets := tf.Facets()
	ret := facets[:0]
	for _, f := range facets {
		if strings.TrimSpace(f.Value) != "" {
			ret = append(ret, f)
		}
	}
	if len(ret) == 0 {
		return nil, errors.Errorf("column %d has no values", idx)
	}
	return ret, nil
}

// Mode fills blanks with the most frequent value of the column at idx. Ties
// go to the lexicographically smallest value.
func Mode(ds *prep.Dataset, idx int) (prep.MissingDataHandler, error) {
	facets, err := present(ds, idx)
	if err != nil {
		return nil, err
	}
	// facets are sorted by value, so the first maximum wins ties.
	best := facets[0]
	for _, f := range facets[1:] {
		if f.Count > best.Count {
			best = f
		}
	}
	return Constant(best.Value), nil
}

// numbers parses the non-blank values of the column at idx together with
// their counts, sorted by value.
func numbers(ds *prep.Dataset, idx int) (xs, weights []float64, err error) {
	facets, err := present(ds, idx)
	if err != nil {
		return nil, nil, err
	}
	type num struct{ x, w float64 }
	nums := make([]num, len(facets))
	for i, f := range facets {
		x, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
		if err != nil {
			return nil, nil, errors.Wrapf(prep.ErrMalformedNumericColumn, "column %d value '%s'", idx, f.Value)
		}
		nums[i] = num{x: x, w: float64(f.Count)}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i].x < nums[j].x })
	xs, weights = make([]float64, len(nums)), make([]float64, len(nums))
	for i, n := range nums {
		xs[i], weights[i] = n.x, n.w
	}
	return xs, weights, nil
}

// Mean fills blanks with the arithmetic mean of the column at idx. Every
// non-blank value must be a number.
func Mean(ds *prep.Dataset, idx int) (prep.MissingDataHandler, error) {
	xs, ws, err := numbers(ds, idx)
	if err != nil {
		return nil, err
	}
	return Constant(format(stat.Mean(xs, ws))), nil
}

// Median fills blanks with the median of the column at idx. For an even
// number of values the lower of the two middle values is used, so the
// result is always a value from the column.
func Median(ds *prep.Dataset, idx int) (prep.MissingDataHandler, error) {
	xs, ws, err := numbers(ds, idx)
	if err != nil {
		return nil, err
	}
	return Constant(format(stat.Quantile(0.5, stat.Empirical, xs, ws))), nil
}

func format(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Named returns the handler for a strategy name as used in recipes: "mode",
// "mean", "median" or "constant", which uses value.
func Named(strategy string, ds *prep.Dataset, idx int, value string) (prep.MissingDataHandler, error) {
	switch strategy {
	case "constant":
		return Constant(value), nil
	case "mode", "":
		return Mode(ds, idx)
	case "mean":
		return Mean(ds, idx)
	case "median":
		return Median(ds, idx)
	default:
		return nil, errors.Errorf("unknown impute strategy '%s'", strategy)
	}
}
