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

// Package boltdb provides a prep.FacetStore which keeps facet tables in a
// BoltDB file.
package boltdb

import (
	"encoding/binary"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pilosa/prep"
	"github.com/pkg/errors"
)

var _ prep.FacetStore = &FacetStore{}

var facetBucket = []byte("facets")

// FacetStore is a prep.FacetStore backed by BoltDB. Each table is a nested
// bucket of the facets bucket, mapping values to big endian counts. Keys
// carry a one byte prefix because bolt has no room for the empty value.
type FacetStore struct {
	Db *bolt.DB
}

// NewFacetStore opens or creates the BoltDB file at filename.
func NewFacetStore(filename string) (*FacetStore, error) {
	db, err := bolt.Open(filename, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "opening db file '%v'", filename)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(facetBucket)
		return errors.Wrap(err, "creating facets bucket")
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensuring bucket existence")
	}
	return &FacetStore{Db: db}, nil
}

// Save replaces the table stored under name with tf.
func (fs *FacetStore) Save(name string, tf *prep.TextFacets) error {
	if tf == nil {
		return errors.New("nil facet table")
	}
	err := fs.Db.Update(func(tx *bolt.Tx) error {
		fb := tx.Bucket(facetBucket)
		if fb.Bucket([]byte(name)) != nil {
			if err := fb.DeleteBucket([]byte(name)); err != nil {
				return errors.Wrap(err, "deleting old table")
			}
		}
		tb, err := fb.CreateBucket([]byte(name))
		if err != nil {
			return errors.Wrap(err, "creating table bucket")
		}
		for _, f := range tf.Facets() {
			cnt := make([]byte, 8)
			binary.BigEndian.PutUint64(cnt, uint64(f.Count))
			if err := tb.Put(valueKey(f.Value), cnt); err != nil {
				return errors.Wrapf(err, "putting '%s'", f.Value)
			}
		}
		return nil
	})
	return errors.Wrapf(err, "saving facets '%s'", name)
}

// Load returns the table stored under name, or an error wrapping
// prep.ErrFacetsNotFound.
func (fs *FacetStore) Load(name string) (*prep.TextFacets, error) {
	var pairs []prep.Pair
	err := fs.Db.View(func(tx *bolt.Tx) error {
		tb := tx.Bucket(facetBucket).Bucket([]byte(name))
		if tb == nil {
			return errors.Wrapf(prep.ErrFacetsNotFound, "name '%s'", name)
		}
		pairs = make([]prep.Pair, 0, tb.Stats().KeyN)
		return tb.ForEach(func(k, v []byte) error {
			if len(k) == 0 || k[0] != valuePrefix || len(v) != 8 {
				return errors.Errorf("corrupt entry '%s' in table '%s'", k, name)
			}
			pairs = append(pairs, prep.Pair{Key: string(k[1:]), Value: int64(binary.BigEndian.Uint64(v))})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return prep.NewTextFacets(pairs), nil
}

const valuePrefix = 'v'

func valueKey(value string) []byte {
	return append([]byte{valuePrefix}, value...)
}

// Close syncs and closes the underlying db.
func (fs *FacetStore) Close() error {
	err := fs.Db.Sync()
	if err != nil {
		return errors.Wrap(err, "syncing db")
	}
	return fs.Db.Close()
}
