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

package app

import (
	"fmt"
	"io"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/boltdb"
	"github.com/pilosa/prep/leveldb"
	"github.com/pkg/errors"
)

// FacetsMain prints the facet table of a column.
type FacetsMain struct {
	Column    int    `help:"Index of the column to count values of."`
	Order     string `help:"Which facets to print: all, highest or lowest."`
	Store     string `help:"Path of a facet store to cache the table in. Empty means no caching."`
	StoreType string `help:"Kind of facet store: bolt or leveldb."`
	Name      string `help:"Name the table is cached under. Defaults to the input's location."`

	input  *Input
	tel    *Telemetry
	stdout io.Writer
	stderr io.Writer
}

// NewFacetsMain returns a new FacetsMain.
func NewFacetsMain(stdout, stderr io.Writer) *FacetsMain {
	return &FacetsMain{
		Order:     "all",
		StoreType: "bolt",
		input:     NewInput(),
		tel:       NewTelemetry(),
		stdout:    stdout,
		stderr:    stderr,
	}
}

// Input returns the input options.
func (m *FacetsMain) Input() *Input { return m.input }

// Telemetry returns the logging and stats options.
func (m *FacetsMain) Telemetry() *Telemetry { return m.tel }

// OpenFacetStore opens a FacetStore of the given kind at path.
func OpenFacetStore(kind, path string) (prep.FacetStore, error) {
	switch kind {
	case "bolt", "boltdb", "":
		return boltdb.NewFacetStore(path)
	case "leveldb":
		return leveldb.NewFacetStore(path)
	default:
		return nil, errors.Errorf("unknown facet store '%s'", kind)
	}
}

// Run prints one "value<TAB>count" line per facet, sorted by value.
func (m *FacetsMain) Run() (err error) {
	if err := m.tel.setup(m.stderr); err != nil {
		return err
	}
	defer m.tel.closeWith(&err)

	ds, err := m.input.Load(m.tel, nil)
	if err != nil {
		return err
	}
	var tf *prep.TextFacets
	if m.Store != "" {
		store, err := OpenFacetStore(m.StoreType, m.Store)
		if err != nil {
			return errors.Wrap(err, "opening facet store")
		}
		defer func() {
			if cerr := store.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "closing facet store")
			}
		}()
		name := m.Name
		if name == "" {
			name = m.input.Name()
		}
		tf, err = ds.CachedFacets(store, name, m.Column)
	} else {
		tf, err = ds.ListFacets(m.Column)
	}
	if err != nil {
		return err
	}

	var facets []prep.Facet
	switch m.Order {
	case "all", "":
		facets = tf.Facets()
	case "highest":
		facets = tf.Highest()
	case "lowest":
		facets = tf.Lowest()
	default:
		return errors.Errorf("unknown order '%s'", m.Order)
	}
	for _, f := range facets {
		if _, err := fmt.Fprintf(m.stdout, "%s\t%d\n", f.Value, f.Count); err != nil {
			return errors.Wrap(err, "writing facets")
		}
	}
	m.tel.Log().Debugf("%d distinct values, %d records", tf.Count(), tf.Total())
	return nil
}
