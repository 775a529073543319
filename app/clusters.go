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
	"github.com/pilosa/prep/cluster"
	"github.com/pkg/errors"
)

// ClustersMain prints groups of values of a column which probably mean the
// same thing.
type ClustersMain struct {
	Column    int    `help:"Index of the column to cluster."`
	Algorithm string `help:"Clustering keyer: fingerprint, ngram or ngram-N."`
	MinSize   int    `help:"Only print clusters with more than this many distinct values."`
	MaxFacets int    `help:"Refuse to cluster columns with more distinct values than this."`

	input  *Input
	tel    *Telemetry
	stdout io.Writer
	stderr io.Writer
}

// NewClustersMain returns a new ClustersMain.
func NewClustersMain(stdout, stderr io.Writer) *ClustersMain {
	return &ClustersMain{
		Algorithm: "fingerprint",
		MinSize:   1,
		MaxFacets: prep.DefaultMaxFacets,
		input:     NewInput(),
		tel:       NewTelemetry(),
		stdout:    stdout,
		stderr:    stderr,
	}
}

// Input returns the input options.
func (m *ClustersMain) Input() *Input { return m.input }

// Telemetry returns the logging and stats options.
func (m *ClustersMain) Telemetry() *Telemetry { return m.tel }

// Run prints every cluster key followed by its values and their counts.
func (m *ClustersMain) Run() (err error) {
	alg, ok := cluster.Named(m.Algorithm)
	if !ok {
		return errors.Errorf("unknown clustering algorithm '%s'", m.Algorithm)
	}
	if err := m.tel.setup(m.stderr); err != nil {
		return err
	}
	defer m.tel.closeWith(&err)

	ds, err := m.input.Load(m.tel, nil, prep.OptDatasetMaxFacets(m.MaxFacets))
	if err != nil {
		return err
	}
	cs, err := ds.Clusters(m.Column, alg)
	if err != nil {
		return err
	}
	for _, c := range cs.ClustersWithSizeGreaterThan(m.MinSize) {
		if _, err := fmt.Fprintf(m.stdout, "%s\t%d values\t%d records\n", c.Key, c.Size(), c.Total()); err != nil {
			return errors.Wrap(err, "writing clusters")
		}
		for _, f := range c.Facets {
			fmt.Fprintf(m.stdout, "\t%s\t%d\n", f.Value, f.Count)
		}
	}
	return nil
}
