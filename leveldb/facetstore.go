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

// Package leveldb provides a prep.FacetStore which keeps facet tables in
// LevelDB.
package leveldb

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pilosa/prep"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var _ prep.FacetStore = &FacetStore{}

// FacetStore is a prep.FacetStore which uses two leveldbs: one listing the
// stored tables and one holding the counts of every table under
// "name\x00value" keys.
type FacetStore struct {
	lock    sync.Mutex
	tables  *leveldb.DB
	facets  *leveldb.DB
	dirname string
}

type errorList []error

func (errs errorList) Error() string {
	errstrings := make([]string, len(errs))
	for i, err := range errs {
		errstrings[i] = err.Error()
	}
	return strings.Join(errstrings, "; ")
}

// NewFacetStore opens or creates a FacetStore in dirname.
func NewFacetStore(dirname string) (*FacetStore, error) {
	err := os.MkdirAll(dirname, 0700)
	if err != nil {
		return nil, errors.Wrap(err, "making directory")
	}
	fs := &FacetStore{dirname: dirname}
	fs.tables, err = leveldb.OpenFile(filepath.Join(dirname, "tables"), &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %v", filepath.Join(dirname, "tables"))
	}
	fs.facets, err = leveldb.OpenFile(filepath.Join(dirname, "facets"), &opt.Options{})
	if err != nil {
		fs.tables.Close()
		return nil, errors.Wrapf(err, "opening leveldb at %v", filepath.Join(dirname, "facets"))
	}
	return fs, nil
}

func tablePrefix(name string) []byte {
	return []byte(name + "\x00")
}

// Save replaces the table stored under name with tf. name must not contain
// a NUL byte.
func (fs *FacetStore) Save(name string, tf *prep.TextFacets) error {
	if tf == nil {
		return errors.New("nil facet table")
	}
	if strings.IndexByte(name, 0) >= 0 {
		return errors.Errorf("invalid table name %q", name)
	}
	fs.lock.Lock()
	defer fs.lock.Unlock()

	prefix := tablePrefix(name)
	batch := new(leveldb.Batch)
	iter := fs.facets.NewIterator(util.BytesPrefix(prefix), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return errors.Wrap(err, "iterating old table")
	}
	for _, f := range tf.Facets() {
		cnt := make([]byte, binary.MaxVarintLen64)
		n := binary.PutVarint(cnt, f.Count)
		batch.Put(append(append([]byte(nil), prefix...), f.Value...), cnt[:n])
	}
	if err := fs.facets.Write(batch, nil); err != nil {
		return errors.Wrapf(err, "writing facets '%s'", name)
	}
	size := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(size, uint64(tf.Count()))
	return errors.Wrapf(fs.tables.Put([]byte(name), size[:n], nil), "registering table '%s'", name)
}

// Load returns the table stored under name, or an error wrapping
// prep.ErrFacetsNotFound.
func (fs *FacetStore) Load(name string) (*prep.TextFacets, error) {
	size, err := fs.tables.Get([]byte(name), nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.Wrapf(prep.ErrFacetsNotFound, "name '%s'", name)
	} else if err != nil {
		return nil, errors.Wrap(err, "fetching from tables")
	}
	n, _ := binary.Uvarint(size)

	prefix := tablePrefix(name)
	pairs := make([]prep.Pair, 0, n)
	iter := fs.facets.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		cnt, sz := binary.Varint(iter.Value())
		if sz <= 0 {
			return nil, errors.Errorf("corrupt count in table '%s'", name)
		}
		pairs = append(pairs, prep.Pair{Key: string(iter.Key()[len(prefix):]), Value: cnt})
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Wrap(err, "iterating table")
	}
	if uint64(len(pairs)) != n {
		return nil, errors.Errorf("table '%s' has %d facets, expected %d", name, len(pairs), n)
	}
	return prep.NewTextFacets(pairs), nil
}

// Close closes both of the underlying leveldb instances.
func (fs *FacetStore) Close() error {
	errs := make(errorList, 0)
	err := fs.tables.Close()
	if err != nil {
		errs = append(errs, errors.Wrap(err, "closing tables"))
	}
	err = fs.facets.Close()
	if err != nil {
		errs = append(errs, errors.Wrap(err, "closing facets"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
