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
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultMaxFacets is the number of distinct values Clusters is willing to
// pull into one process unless told otherwise.
const DefaultMaxFacets = 1 << 20

// Dataset is a partitioned collection of delimited records together with the
// Dialect that describes them. Datasets are immutable: every transformation
// returns a new Dataset and leaves the receiver as it was. Transformations are
// lazy; errors surface from the action which evaluates them.
type Dataset struct {
	records   Collection
	dialect   Dialect
	log       Logger
	stats     Statter
	maxFacets int
}

// DatasetOption is a functional option for NewDataset.
type DatasetOption func(d *Dataset)

// OptDatasetLogger sets the Logger a Dataset and everything derived from it
// logs to.
func OptDatasetLogger(l Logger) DatasetOption {
	return func(d *Dataset) {
		if l != nil {
			d.log = l
		}
	}
}

// OptDatasetStatter sets the Statter a Dataset and everything derived from
// it reports to.
func OptDatasetStatter(s Statter) DatasetOption {
	return func(d *Dataset) {
		if s != nil {
			d.stats = s
		}
	}
}

// OptDatasetMaxFacets sets the largest facet table Clusters will
// materialize.
func OptDatasetMaxFacets(n int) DatasetOption {
	return func(d *Dataset) {
		if n > 0 {
			d.maxFacets = n
		}
	}
}

// NewDataset wraps records, which are described by dialect.
func NewDataset(records Collection, dialect Dialect, opts ...DatasetOption) *Dataset {
	d := &Dataset{
		records:   records,
		dialect:   dialect,
		log:       NopLogger{},
		stats:     NopStatter{},
		maxFacets: DefaultMaxFacets,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// derive returns a Dataset over records which shares everything else with d.
func (d *Dataset) derive(records Collection) *Dataset {
	nd := *d
	nd.records = records
	return &nd
}

// Dialect returns the Dialect of the Dataset.
func (d *Dataset) Dialect() Dialect { return d.dialect }

// Records returns the underlying Collection.
func (d *Dataset) Records() Collection { return d.records }

// Logger returns the Logger of the Dataset.
func (d *Dataset) Logger() Logger { return d.log }

// Statter returns the Statter of the Dataset.
func (d *Dataset) Statter() Statter { return d.stats }

// Collect evaluates the Dataset and returns every record.
func (d *Dataset) Collect() ([]string, error) {
	start := time.Now()
	recs, err := d.records.Collect()
	if err != nil {
		return nil, errors.Wrap(err, "collecting records")
	}
	d.stats.Timing("collect", time.Since(start), 1)
	d.log.Debugf("collected %d records from %d partitions in %v", len(recs), d.records.Partitions(), time.Since(start))
	return recs, nil
}

// Count evaluates the Dataset and returns the number of records.
func (d *Dataset) Count() (int64, error) {
	n, err := d.records.Count()
	return n, errors.Wrap(err, "counting records")
}

// mapColumns returns a Dataset whose records are parsed, handed to fn and
// joined again.
func (d *Dataset) mapColumns(fn func(columns []string) ([]string, error)) *Dataset {
	dialect := d.dialect
	return d.derive(d.records.Map(func(record string) (string, bool, error) {
		cols, err := fn(dialect.Parse(record))
		if err != nil {
			return "", false, err
		}
		return dialect.Join(cols), true, nil
	}))
}

// Deduplicate removes records which are byte-for-byte copies of another
// record. Exactly one copy of each distinct record survives; which one is
// unspecified. Unlike the other transformations it runs a reduction at once.
func (d *Dataset) Deduplicate() (*Dataset, error) {
	pairs, err := d.records.ReduceByKey(func(record string) (string, int64, error) {
		return record, 1, nil
	}, Sum)
	if err != nil {
		return nil, errors.Wrap(err, "reducing duplicate records")
	}
	d.log.Debugf("deduplicated to %d distinct records", pairs.Len())
	return d.derive(pairs.Keys()), nil
}

// RemoveRows drops every record for which p holds.
func (d *Dataset) RemoveRows(p RowPredicate) *Dataset {
	stats := d.stats
	return d.derive(d.records.Map(func(record string) (string, bool, error) {
		if p(record) {
			stats.Count("rows.removed", 1, 1)
			return "", false, nil
		}
		return record, true, nil
	}))
}

// Impute fills the column at idx using h wherever it is blank, i.e. empty
// after trimming white space. Other values are left as they are.
func (d *Dataset) Impute(idx int, h MissingDataHandler) *Dataset {
	stats := d.stats
	return d.mapColumns(func(columns []string) ([]string, error) {
		val, err := column(columns, idx)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(val) == "" {
			columns[idx] = h.HandleMissingData(columns)
			stats.Count("impute.filled", 1, 1)
		}
		return columns, nil
	})
}

// Replace sets the column at idx to fn of its current value in every record.
func (d *Dataset) Replace(idx int, fn ReplacementFunc) *Dataset {
	return d.mapColumns(func(columns []string) ([]string, error) {
		val, err := column(columns, idx)
		if err != nil {
			return nil, err
		}
		columns[idx] = fn(val)
		return columns, nil
	})
}

// Split replaces the column at idx by the columns s produces from it.
func (d *Dataset) Split(idx int, s ColumnSplitter) *Dataset {
	stats := d.stats
	return d.mapColumns(func(columns []string) ([]string, error) {
		out, err := s.Split(columns, idx)
		if err != nil {
			return nil, errors.Wrap(err, "splitting")
		}
		stats.Count("split.records", 1, 1)
		return out, nil
	})
}

// SplitBySeparator splits the column at idx on separator. If retain is set
// the original column is kept in front of the new ones.
func (d *Dataset) SplitBySeparator(idx int, separator string, retain bool) *Dataset {
	return d.Split(idx, SeparatorSplitter{Separator: separator, Retain: retain})
}

// SplitByFieldLengths splits the column at idx into fixed width fields. If
// retain is set the original column is kept in front of the new ones.
func (d *Dataset) SplitByFieldLengths(idx int, lengths []int, retain bool) *Dataset {
	ls := make([]int, len(lengths))
	copy(ls, lengths)
	return d.Split(idx, FieldLengthSplitter{Lengths: ls, Retain: retain})
}

// Flag appends a column to every record. The new column holds symbol for
// the records p matches and is empty for all others. p sees the record with
// the delimiter already appended.
func (d *Dataset) Flag(symbol string, p MarkerPredicate) *Dataset {
	dialect, stats := d.dialect, d.stats
	return d.derive(d.records.Map(func(record string) (string, bool, error) {
		rec := dialect.AppendDelimiter(record)
		if p.Evaluate(rec) {
			stats.Count("flag.marked", 1, 1)
			return rec + symbol, true, nil
		}
		return rec, true, nil
	}))
}

// MapByFlag applies fn to the records whose column at idx equals flag.
// Every other record passes through untouched.
func (d *Dataset) MapByFlag(flag string, idx int, fn MapFunction) *Dataset {
	dialect, stats := d.dialect, d.stats
	return d.derive(d.records.Map(func(record string) (string, bool, error) {
		val, err := column(dialect.Parse(record), idx)
		if err != nil {
			return "", false, err
		}
		if val != flag {
			return record, true, nil
		}
		stats.Count("mapbyflag.mapped", 1, 1)
		return fn(record), true, nil
	}))
}

// ListFacets counts how often each distinct value occurs in the column at
// idx.
func (d *Dataset) ListFacets(idx int) (*TextFacets, error) {
	pairs, err := d.facetPairs(idx)
	if err != nil {
		return nil, err
	}
	return NewTextFacets(pairs.Collect()), nil
}

func (d *Dataset) facetPairs(idx int) (PairCollection, error) {
	dialect := d.dialect
	start := time.Now()
	pairs, err := d.records.ReduceByKey(func(record string) (string, int64, error) {
		val, err := column(dialect.Parse(record), idx)
		return val, 1, err
	}, Sum)
	if err != nil {
		return nil, errors.Wrapf(err, "counting facets of column %d", idx)
	}
	d.stats.Timing("facets", time.Since(start), 1)
	d.log.Debugf("column %d has %d distinct values", idx, pairs.Len())
	return pairs, nil
}

// CachedFacets returns the facet table stored under name and idx, computing
// and saving it first if store doesn't have it yet.
func (d *Dataset) CachedFacets(store FacetStore, name string, idx int) (*TextFacets, error) {
	key := FacetKey(name, idx)
	tf, err := store.Load(key)
	if err == nil {
		d.log.Debugf("loaded facets '%s' from store", key)
		return tf, nil
	}
	if errors.Cause(err) != ErrFacetsNotFound {
		return nil, errors.Wrapf(err, "loading facets '%s'", key)
	}
	tf, err = d.ListFacets(idx)
	if err != nil {
		return nil, err
	}
	if err := store.Save(key, tf); err != nil {
		return nil, errors.Wrapf(err, "saving facets '%s'", key)
	}
	return tf, nil
}

// Clusters groups the values of the column at idx with alg. The facet table
// is the only thing pulled into this process; if it has more than the
// configured maximum of distinct values ErrOversizedFacets is returned
// instead.
func (d *Dataset) Clusters(idx int, alg ClusteringAlgorithm) (*Clusters, error) {
	pairs, err := d.facetPairs(idx)
	if err != nil {
		return nil, err
	}
	if n := pairs.Len(); n > d.maxFacets {
		return nil, errors.Wrapf(ErrOversizedFacets, "%d distinct values in column %d, limit %d", n, idx, d.maxFacets)
	}
	facets := pairsToFacets(pairs.Collect())
	d.log.Printf("clustering %d facets of column %d", len(facets), idx)
	return alg.GetClusters(facets), nil
}
