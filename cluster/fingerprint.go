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

// Package cluster holds clustering algorithms for prep.Dataset.Clusters.
// They all work by key collision: a Keyer reduces every facet value to a
// key, and values sharing a key form a cluster.
package cluster

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/pilosa/prep"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Keyer reduces a value to the key it is clustered under.
type Keyer interface {
	Key(value string) string
}

// KeyerFunc can be wrapped around a function to make it implement Keyer.
type KeyerFunc func(value string) string

// Key implements Keyer for KeyerFunc.
func (f KeyerFunc) Key(value string) string { return f(value) }

// KeyCollision is a prep.ClusteringAlgorithm which puts values with equal
// keys into one cluster.
type KeyCollision struct {
	Keyer Keyer
}

// NewKeyCollision returns a KeyCollision using k.
func NewKeyCollision(k Keyer) *KeyCollision {
	return &KeyCollision{Keyer: k}
}

// GetClusters implements prep.ClusteringAlgorithm. Every facet ends up in
// exactly one cluster and the result does not depend on the order of
// facets.
func (kc *KeyCollision) GetClusters(facets []prep.Facet) *prep.Clusters {
	cs := prep.NewClusters()
	for _, f := range facets {
		cs.Add(kc.Keyer.Key(f.Value), f)
	}
	return cs
}

// normalize lower cases s, strips diacritics and replaces punctuation and
// control characters by spaces. A transform.Transformer keeps state, so a
// new chain is built for every call.
func normalize(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	stripped, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		stripped = strings.ToLower(strings.TrimSpace(s))
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsControl(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, stripped)
}

// SimpleFingerprint keys a value by its normalized, sorted set of words:
// "Gödel, Kurt" and "kurt godel" share the key "godel kurt".
var SimpleFingerprint = KeyerFunc(func(value string) string {
	tokens := strings.Fields(normalize(value))
	return strings.Join(uniqueSorted(tokens), " ")
})

// NGramFingerprint keys a value by the sorted set of its character n-grams
// after normalization and removal of white space. It catches values which
// differ in spacing or in the order of short fragments.
type NGramFingerprint struct {
	N int
}

// Key implements Keyer.
func (ng NGramFingerprint) Key(value string) string {
	n := ng.N
	if n < 1 {
		n = 1
	}
	rs := []rune(strings.Join(strings.Fields(normalize(value)), ""))
	if len(rs) <= n {
		return string(rs)
	}
	grams := make([]string, 0, len(rs)-n+1)
	for i := 0; i+n <= len(rs); i++ {
		grams = append(grams, string(rs[i:i+n]))
	}
	return strings.Join(uniqueSorted(grams), "")
}

func uniqueSorted(ss []string) []string {
	sort.Strings(ss)
	out := ss[:0]
	for i, s := range ss {
		if i == 0 || s != ss[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// Named returns the algorithm called name: "fingerprint" or "ngram-N" for
// an n-gram fingerprint of size N (2 if omitted).
func Named(name string) (prep.ClusteringAlgorithm, bool) {
	switch {
	case name == "" || name == "fingerprint":
		return NewKeyCollision(SimpleFingerprint), true
	case name == "ngram":
		return NewKeyCollision(NGramFingerprint{N: 2}), true
	case strings.HasPrefix(name, "ngram-"):
		n, err := strconv.Atoi(strings.TrimPrefix(name, "ngram-"))
		if err != nil || n < 1 {
			return nil, false
		}
		return NewKeyCollision(NGramFingerprint{N: n}), true
	}
	return nil, false
}
