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
	"sync"

	"github.com/pkg/errors"
)

// FacetStore keeps facet tables by name so that a table only has to be built
// once per dataset and column. Implementations should be threadsafe.
type FacetStore interface {
	Save(name string, tf *TextFacets) error
	Load(name string) (*TextFacets, error)
	Close() error
}

// FacetKey is the name CachedFacets stores the facets of column idx of the
// dataset called name under.
func FacetKey(name string, idx int) string {
	return name + "/" + strconv.Itoa(idx)
}

// MapFacetStore is an in-memory FacetStore.
type MapFacetStore struct {
	lock   sync.RWMutex
	tables map[string]map[string]int64
}

// NewMapFacetStore creates a new MapFacetStore.
func NewMapFacetStore() *MapFacetStore {
	return &MapFacetStore{
		tables: make(map[string]map[string]int64),
	}
}

// Save stores a copy of tf under name, replacing any previous table.
func (m *MapFacetStore) Save(name string, tf *TextFacets) error {
	if tf == nil {
		return errors.New("nil facet table")
	}
	cp := make(map[string]int64, len(tf.counts))
	for v, c := range tf.counts {
		cp[v] = c
	}
	m.lock.Lock()
	m.tables[name] = cp
	m.lock.Unlock()
	return nil
}

// Load returns a copy of the table stored under name.
func (m *MapFacetStore) Load(name string) (*TextFacets, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	t, ok := m.tables[name]
	if !ok {
		return nil, errors.Wrapf(ErrFacetsNotFound, "name '%s'", name)
	}
	pairs := make([]Pair, 0, len(t))
	for v, c := range t {
		pairs = append(pairs, Pair{Key: v, Value: c})
	}
	return NewTextFacets(pairs), nil
}

// Close does nothing.
func (m *MapFacetStore) Close() error { return nil }
