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

package prep_test

import (
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/local"
	"github.com/pilosa/prep/mock"
	"github.com/pilosa/prep/test"
	"github.com/pkg/errors"
)

func newDataset(records []string, opts ...prep.DatasetOption) *prep.Dataset {
	return prep.NewDataset(local.FromSlice(records, 3), prep.CSV, opts...)
}

func collect(t *testing.T, d *prep.Dataset) []string {
	t.Helper()
	recs, err := d.Collect()
	test.ErrNil(t, err, "Collect")
	return recs
}

func sorted(recs []string) []string {
	ret := append([]string(nil), recs...)
	sort.Strings(ret)
	return ret
}

func TestDeduplicate(t *testing.T) {
	d := newDataset([]string{"a,1", "b,2", "a,1", "c,3", "b,2", "a,1 "})
	dd, err := d.Deduplicate()
	test.ErrNil(t, err, "Deduplicate")
	first := sorted(collect(t, dd))
	test.MustBe(t, []string{"a,1", "a,1 ", "b,2", "c,3"}, first)

	ddd, err := dd.Deduplicate()
	test.ErrNil(t, err, "Deduplicate again")
	test.MustBe(t, first, sorted(collect(t, ddd)), "idempotence")

	// the receiver is untouched
	test.MustBe(t, 6, len(collect(t, d)))
}

func TestRemoveRows(t *testing.T) {
	stats := &mock.RecordingStatter{}
	d := newDataset([]string{"a,1", "b,", "c,3", "d,"}, prep.OptDatasetStatter(stats))
	got := collect(t, d.RemoveRows(func(r string) bool { return strings.HasSuffix(r, ",") }))
	test.MustBe(t, []string{"a,1", "c,3"}, got)
	test.MustBe(t, int64(2), stats.Counts()["rows.removed"])
}

func TestImpute(t *testing.T) {
	stats := &mock.RecordingStatter{}
	d := newDataset([]string{"a,1", "b,", "c,  ", "d,4"}, prep.OptDatasetStatter(stats))
	h := prep.MissingDataHandlerFunc(func(cols []string) string { return "x" + cols[0] })
	got := collect(t, d.Impute(1, h))
	test.MustBe(t, []string{"a,1", "b,xb", "c,xc", "d,4"}, got)
	test.MustBe(t, int64(2), stats.Counts()["impute.filled"])
}

func TestReplace(t *testing.T) {
	d := newDataset([]string{"N/A,1", "a,2", "n/a,3"})
	got := collect(t, d.Replace(0, prep.ReplaceValues(map[string]string{"N/A": "", "n/a": ""})))
	test.MustBe(t, []string{",1", "a,2", ",3"}, got)
}

func TestSplitByFieldLengths(t *testing.T) {
	d := newDataset([]string{"FirstName LastName MiddleName,850"})
	got := collect(t, d.SplitByFieldLengths(0, []int{9, 9}, false))
	test.MustBe(t, []string{"FirstName, LastName,850"}, got)

	got = collect(t, d.SplitByFieldLengths(0, []int{9, 9}, true))
	test.MustBe(t, []string{"FirstName LastName MiddleName,FirstName, LastName,850"}, got)

	short := newDataset([]string{"abc,1"})
	got = collect(t, short.SplitByFieldLengths(0, []int{2, 2, 2}, false))
	test.MustBe(t, []string{"ab,c,,1"}, got)
}

func TestSplitBySeparator(t *testing.T) {
	stats := &mock.RecordingStatter{}
	d := newDataset([]string{"John Smith,850", "Jane,900"}, prep.OptDatasetStatter(stats))
	got := collect(t, d.SplitBySeparator(0, " ", false))
	test.MustBe(t, []string{"John,Smith,850", "Jane,900"}, got)

	got = collect(t, d.SplitBySeparator(0, " ", true))
	test.MustBe(t, []string{"John Smith,John,Smith,850", "Jane,Jane,900"}, got)
	test.MustBe(t, int64(4), stats.Counts()["split.records"])
}

func TestColumnIndexOutOfRange(t *testing.T) {
	d := newDataset([]string{"a,b", "c"})
	for name, ds := range map[string]*prep.Dataset{
		"impute":  d.Impute(1, prep.MissingDataHandlerFunc(func([]string) string { return "" })),
		"replace": d.Replace(5, strings.ToUpper),
		"split":   d.SplitBySeparator(2, " ", false),
		"flagmap": d.MapByFlag("x", 3, strings.ToUpper),
	} {
		_, err := ds.Collect()
		if errors.Cause(err) != prep.ErrColumnIndexOutOfRange {
			t.Fatalf("%s: expected ErrColumnIndexOutOfRange, got %v", name, err)
		}
		var rerr *prep.RecordError
		if !errors.As(err, &rerr) {
			t.Fatalf("%s: expected a *prep.RecordError in %v", name, err)
		}
	}
	_, err := d.ListFacets(1)
	if errors.Cause(err) != prep.ErrColumnIndexOutOfRange {
		t.Fatalf("facets: expected ErrColumnIndexOutOfRange, got %v", err)
	}
}

func TestFlag(t *testing.T) {
	stats := &mock.RecordingStatter{}
	d := newDataset([]string{"a,1", "b,2", "c,1"}, prep.OptDatasetStatter(stats))
	p := prep.MarkerPredicateFunc(func(r string) bool {
		return strings.HasSuffix(r, "1,")
	})
	got := collect(t, d.Flag("*", p))
	test.MustBe(t, []string{"a,1,*", "b,2,", "c,1,*"}, got)
	test.MustBe(t, int64(2), stats.Counts()["flag.marked"])

	// every flagged record has exactly one more column
	for _, r := range got {
		test.MustBe(t, 3, len(prep.CSV.Parse(r)))
	}
}

func TestMapByFlag(t *testing.T) {
	stats := &mock.RecordingStatter{}
	d := newDataset([]string{"a,1,*", "b,2,", "c,1,*"}, prep.OptDatasetStatter(stats))
	got := collect(t, d.MapByFlag("*", 2, strings.ToUpper))
	test.MustBe(t, []string{"A,1,*", "b,2,", "C,1,*"}, got)
	test.MustBe(t, int64(2), stats.Counts()["mapbyflag.mapped"])
}

func TestChain(t *testing.T) {
	d := newDataset([]string{
		"John Smith,850,",
		"John Smith,850,",
		"Jane Doe,,x",
		"N/A,100,",
	})
	dd, err := d.Deduplicate()
	test.ErrNil(t, err, "Deduplicate")
	out := dd.
		Replace(0, prep.ReplaceValues(map[string]string{"N/A": "Unknown Person"})).
		Impute(1, prep.MissingDataHandlerFunc(func([]string) string { return "0" })).
		SplitBySeparator(0, " ", false)
	got := sorted(collect(t, out))
	test.MustBe(t, []string{"Jane,Doe,0,x", "John,Smith,850,", "Unknown,Person,100,"}, got)
	n, err := out.Count()
	test.ErrNil(t, err, "Count")
	test.MustBe(t, int64(3), n)
}

func TestListFacets(t *testing.T) {
	recs := []string{"a,x", "b,y", "c,x", "d,z", "e,x", "f,y", "g,"}
	d := newDataset(recs)
	tf, err := d.ListFacets(1)
	test.ErrNil(t, err, "ListFacets")
	test.MustBe(t, 4, tf.Count())
	test.MustBe(t, int64(len(recs)), tf.Total(), "total equals record count")
	c, ok := tf.Get("x")
	test.MustBe(t, true, ok)
	test.MustBe(t, int64(3), c)
	test.MustBe(t, []prep.Facet{{Value: "x", Count: 3}}, tf.Highest())
	test.MustBe(t, []prep.Facet{{Value: "", Count: 1}, {Value: "z", Count: 1}}, tf.Lowest())
	test.MustBe(t, []prep.Facet{{Value: "y", Count: 2}, {Value: "z", Count: 1}}, tf.Between(1, 2)[1:])
	test.MustBe(t, 4, len(tf.Facets()))
}

func TestCachedFacets(t *testing.T) {
	store := prep.NewMapFacetStore()
	d := newDataset([]string{"a,x", "b,y", "c,x"})
	tf, err := d.CachedFacets(store, "people", 1)
	test.ErrNil(t, err, "CachedFacets")
	test.MustBe(t, int64(3), tf.Total())

	// a different dataset under the same name is served from the store
	other := newDataset([]string{"q,q"})
	tf, err = other.CachedFacets(store, "people", 1)
	test.ErrNil(t, err, "CachedFacets cached")
	test.MustBe(t, int64(3), tf.Total())

	_, err = store.Load(prep.FacetKey("people", 0))
	if errors.Cause(err) != prep.ErrFacetsNotFound {
		t.Fatalf("expected ErrFacetsNotFound, got %v", err)
	}
}

func byLowerCase() prep.ClusteringAlgorithm {
	return prep.ClusteringFunc(func(facets []prep.Facet) *prep.Clusters {
		cs := prep.NewClusters()
		for _, f := range facets {
			cs.Add(strings.ToLower(f.Value), f)
		}
		return cs
	})
}

func TestClusters(t *testing.T) {
	d := newDataset([]string{"1,Apple", "2,apple", "3,APPLE", "4,pear", "5,Apple", "6,plum", "7,Plum"})
	cs, err := d.Clusters(1, byLowerCase())
	test.ErrNil(t, err, "Clusters")
	all := cs.All()
	test.MustBe(t, 3, len(all))
	test.MustBe(t, "apple", all[0].Key)
	test.MustBe(t, []prep.Facet{{Value: "APPLE", Count: 1}, {Value: "Apple", Count: 2}, {Value: "apple", Count: 1}}, all[0].Facets)

	// every facet appears in exactly one cluster
	tf, err := d.ListFacets(1)
	test.ErrNil(t, err, "ListFacets")
	seen := map[string]int{}
	var total int64
	for _, c := range all {
		for _, f := range c.Facets {
			seen[f.Value]++
		}
		total += c.Total()
	}
	test.MustBe(t, tf.Count(), len(seen))
	for v, n := range seen {
		test.MustBe(t, 1, n, v)
	}
	test.MustBe(t, tf.Total(), total)

	big := cs.ClustersWithSizeGreaterThan(1)
	test.MustBe(t, 2, len(big))
	test.MustBe(t, "plum", big[1].Key)
	test.MustBe(t, true, big[1].Contains("Plum"))
}

func TestClustersOversized(t *testing.T) {
	d := newDataset([]string{"a", "b", "c"}, prep.OptDatasetMaxFacets(2))
	_, err := d.Clusters(0, byLowerCase())
	if errors.Cause(err) != prep.ErrOversizedFacets {
		t.Fatalf("expected ErrOversizedFacets, got %v", err)
	}
}

func TestClustersAddKeepsOrder(t *testing.T) {
	cs := prep.NewClusters()
	for _, v := range []string{"pear", "Apple", "apple", "APPLE"} {
		cs.Add(strings.ToLower(v), prep.Facet{Value: v, Count: 1})
	}
	exp := []prep.Facet{{Value: "APPLE", Count: 1}, {Value: "Apple", Count: 1}, {Value: "apple", Count: 1}}

	var wg sync.WaitGroup
	results := make([][]*prep.Cluster, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cs.ClustersWithSizeGreaterThan(0)
		}(i)
	}
	wg.Wait()
	for _, all := range results {
		test.MustBe(t, 2, len(all))
		test.MustBe(t, exp, all[0].Facets)
		test.MustBe(t, "pear", all[1].Key)
	}
}

func TestImmutability(t *testing.T) {
	recs := []string{"a,1", "b,2"}
	d := newDataset(recs)
	_ = collect(t, d.Replace(0, strings.ToUpper))
	_ = collect(t, d.Flag("!", prep.MarkerPredicateFunc(func(string) bool { return true })))
	test.MustBe(t, []string{"a,1", "b,2"}, collect(t, d))
	test.MustBe(t, []string{"a,1", "b,2"}, recs)
}
