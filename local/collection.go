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

// Package local implements prep.Collection with goroutines of a single
// process. Partitions are plain string slices; pending Map stages are fused
// and evaluated partition by partition when an action runs.
package local

import (
	"context"
	"runtime"
	"sort"

	"github.com/pilosa/prep"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// Collection is an in-memory prep.Collection.
type Collection struct {
	parts       [][]string
	stages      []prep.MapFunc
	concurrency int
	buckets     int
}

// Option is a functional option for NewCollection.
type Option func(c *Collection)

// OptConcurrency sets how many partitions are evaluated at once. The
// default is GOMAXPROCS.
func OptConcurrency(n int) Option {
	return func(c *Collection) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// OptBuckets sets the number of shuffle buckets ReduceByKey hashes keys
// into. The default is the number of partitions.
func OptBuckets(n int) Option {
	return func(c *Collection) {
		if n > 0 {
			c.buckets = n
		}
	}
}

// NewCollection returns a Collection over parts. The slices are not copied
// and must not be modified afterwards.
func NewCollection(parts [][]string, opts ...Option) *Collection {
	c := &Collection{
		parts:       parts,
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.buckets == 0 {
		c.buckets = len(parts)
		if c.buckets == 0 {
			c.buckets = 1
		}
	}
	return c
}

// FromSlice spreads records over n partitions of nearly equal size,
// keeping their order.
func FromSlice(records []string, n int, opts ...Option) *Collection {
	if n < 1 {
		n = 1
	}
	parts := make([][]string, n)
	size, rest := len(records)/n, len(records)%n
	start := 0
	for i := range parts {
		end := start + size
		if i < rest {
			end++
		}
		parts[i] = records[start:end]
		start = end
	}
	return NewCollection(parts, opts...)
}

// Partitions implements prep.Collection.
func (c *Collection) Partitions() int { return len(c.parts) }

// Map implements prep.Collection. It only records fn; nothing is evaluated.
func (c *Collection) Map(fn prep.MapFunc) prep.Collection {
	nc := *c
	nc.stages = make([]prep.MapFunc, len(c.stages), len(c.stages)+1)
	copy(nc.stages, c.stages)
	nc.stages = append(nc.stages, fn)
	return &nc
}

// eval runs the pending stages over every partition, at most concurrency
// partitions at a time, and hands each surviving record to sink together
// with its partition and the offset of the input record it came from. sink
// is never called concurrently for the same partition. The first error
// cancels the remaining partitions.
func (c *Collection) eval(sink func(part, offset int, record string) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(c.concurrency)
	for p := range c.parts {
		p := p
		g.Go(func() error {
			for off, rec := range c.parts[p] {
				if off%1024 == 0 && ctx.Err() != nil {
					return nil
				}
				out, keep, err := c.apply(rec)
				if err != nil {
					return &prep.RecordError{Partition: p, Offset: off, Record: rec, Err: err}
				}
				if !keep {
					continue
				}
				if err := sink(p, off, out); err != nil {
					return &prep.RecordError{Partition: p, Offset: off, Record: rec, Err: err}
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (c *Collection) apply(rec string) (string, bool, error) {
	for _, stage := range c.stages {
		var keep bool
		var err error
		rec, keep, err = stage(rec)
		if err != nil || !keep {
			return "", false, err
		}
	}
	return rec, true, nil
}

// Collect implements prep.Collection. Records keep their partition order.
func (c *Collection) Collect() ([]string, error) {
	outs := make([][]string, len(c.parts))
	err := c.eval(func(p, _ int, rec string) error {
		outs[p] = append(outs[p], rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	n := 0
	for _, o := range outs {
		n += len(o)
	}
	ret := make([]string, 0, n)
	for _, o := range outs {
		ret = append(ret, o...)
	}
	return ret, nil
}

// Count implements prep.Collection.
func (c *Collection) Count() (int64, error) {
	counts := make([]int64, len(c.parts))
	err := c.eval(func(p, _ int, _ string) error {
		counts[p]++
		return nil
	})
	if err != nil {
		return 0, err
	}
	var n int64
	for _, cnt := range counts {
		n += cnt
	}
	return n, nil
}

// Reduce implements prep.Collection. Every partition is folded on its own,
// then the partial results are folded in partition order.
func (c *Collection) Reduce(fn prep.ReduceFunc) (string, bool, error) {
	type partial struct {
		val string
		ok  bool
	}
	partials := make([]partial, len(c.parts))
	err := c.eval(func(p, _ int, rec string) error {
		if !partials[p].ok {
			partials[p] = partial{val: rec, ok: true}
			return nil
		}
		v, err := fn(partials[p].val, rec)
		if err != nil {
			return err
		}
		partials[p].val = v
		return nil
	})
	if err != nil {
		return "", false, err
	}
	var acc partial
	for _, pt := range partials {
		if !pt.ok {
			continue
		}
		if !acc.ok {
			acc = pt
			continue
		}
		v, err := fn(acc.val, pt.val)
		if err != nil {
			return "", false, errors.Wrap(err, "combining partition results")
		}
		acc.val = v
	}
	return acc.val, acc.ok, nil
}

// ReduceByKey implements prep.Collection. Values are combined per partition
// first; the partial maps are then hashed into buckets by key and every
// bucket is merged on its own.
func (c *Collection) ReduceByKey(key prep.KeyFunc, combine prep.CombineFunc) (prep.PairCollection, error) {
	nb := c.buckets
	// shuffled[p][b] holds the combined values of partition p which hash
	// into bucket b.
	shuffled := make([][]map[string]int64, len(c.parts))
	for p := range shuffled {
		shuffled[p] = make([]map[string]int64, nb)
	}
	err := c.eval(func(p, _ int, rec string) error {
		k, v, err := key(rec)
		if err != nil {
			return err
		}
		b := int(xxh3.HashString(k) % uint64(nb))
		m := shuffled[p][b]
		if m == nil {
			m = make(map[string]int64)
			shuffled[p][b] = m
		}
		if old, ok := m[k]; ok {
			m[k] = combine(old, v)
		} else {
			m[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	buckets := make([][]prep.Pair, nb)
	g := errgroup.Group{}
	g.SetLimit(c.concurrency)
	for b := 0; b < nb; b++ {
		b := b
		g.Go(func() error {
			merged := make(map[string]int64)
			for p := range shuffled {
				for k, v := range shuffled[p][b] {
					if old, ok := merged[k]; ok {
						merged[k] = combine(old, v)
					} else {
						merged[k] = v
					}
				}
			}
			pairs := make([]prep.Pair, 0, len(merged))
			for k, v := range merged {
				pairs = append(pairs, prep.Pair{Key: k, Value: v})
			}
			sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
			buckets[b] = pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Pairs{buckets: buckets, concurrency: c.concurrency}, nil
}

// Pairs is the result of ReduceByKey, one slice per shuffle bucket.
type Pairs struct {
	buckets     [][]prep.Pair
	concurrency int
}

// Len implements prep.PairCollection.
func (ps *Pairs) Len() int {
	n := 0
	for _, b := range ps.buckets {
		n += len(b)
	}
	return n
}

// Collect implements prep.PairCollection.
func (ps *Pairs) Collect() []prep.Pair {
	ret := make([]prep.Pair, 0, ps.Len())
	for _, b := range ps.buckets {
		ret = append(ret, b...)
	}
	return ret
}

// Keys implements prep.PairCollection. Every bucket becomes one partition.
func (ps *Pairs) Keys() prep.Collection {
	parts := make([][]string, len(ps.buckets))
	for i, b := range ps.buckets {
		keys := make([]string, len(b))
		for j, p := range b {
			keys[j] = p.Key
		}
		parts[i] = keys
	}
	return NewCollection(parts, OptConcurrency(ps.concurrency))
}
