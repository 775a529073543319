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
	"sort"
)

// Facet is a distinct column value with the number of records holding it.
type Facet struct {
	Value string
	Count int64
}

// TextFacets is the facet table of one column: every distinct value and its
// count. It is not safe for concurrent modification.
type TextFacets struct {
	counts map[string]int64
}

// NewTextFacets builds a facet table from reduced pairs. Pairs with the same
// key are added up.
func NewTextFacets(pairs []Pair) *TextFacets {
	tf := &TextFacets{counts: make(map[string]int64, len(pairs))}
	for _, p := range pairs {
		tf.counts[p.Key] += p.Value
	}
	return tf
}

// Count returns the number of distinct values.
func (tf *TextFacets) Count() int { return len(tf.counts) }

// Total returns the sum of all counts, which is the number of records the
// table was built from.
func (tf *TextFacets) Total() int64 {
	var total int64
	for _, c := range tf.counts {
		total += c
	}
	return total
}

// Get returns the count of value.
func (tf *TextFacets) Get(value string) (int64, bool) {
	c, ok := tf.counts[value]
	return c, ok
}

// Facets returns all facets sorted by value.
func (tf *TextFacets) Facets() []Facet {
	return tf.filter(func(Facet) bool { return true })
}

// Highest returns the facets with the highest count, sorted by value.
func (tf *TextFacets) Highest() []Facet {
	first := true
	var max int64
	for _, c := range tf.counts {
		if first || c > max {
			max, first = c, false
		}
	}
	return tf.filter(func(f Facet) bool { return f.Count == max })
}

// Lowest returns the facets with the lowest count, sorted by value.
func (tf *TextFacets) Lowest() []Facet {
	first := true
	var min int64
	for _, c := range tf.counts {
		if first || c < min {
			min, first = c, false
		}
	}
	return tf.filter(func(f Facet) bool { return f.Count == min })
}

// Between returns the facets whose count lies in [lo, hi], sorted by value.
func (tf *TextFacets) Between(lo, hi int64) []Facet {
	return tf.filter(func(f Facet) bool { return f.Count >= lo && f.Count <= hi })
}

func (tf *TextFacets) filter(keep func(Facet) bool) []Facet {
	ret := make([]Facet, 0)
	for v, c := range tf.counts {
		if f := (Facet{Value: v, Count: c}); keep(f) {
			ret = append(ret, f)
		}
	}
	sortFacets(ret)
	return ret
}

func sortFacets(fs []Facet) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].Value < fs[j].Value })
}

func pairsToFacets(pairs []Pair) []Facet {
	fs := make([]Facet, len(pairs))
	for i, p := range pairs {
		fs[i] = Facet{Value: p.Key, Count: p.Value}
	}
	return fs
}
