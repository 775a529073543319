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

package leveldb

import (
	"testing"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/test"
	"github.com/pkg/errors"
)

func TestFacetStore(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFacetStore(dir)
	test.ErrNil(t, err, "NewFacetStore")

	_, err = fs.Load("people/1")
	if errors.Cause(err) != prep.ErrFacetsNotFound {
		t.Fatalf("expected ErrFacetsNotFound, got %v", err)
	}

	tf := prep.NewTextFacets([]prep.Pair{{Key: "smith", Value: 3}, {Key: "", Value: 1}, {Key: "doe", Value: 2}})
	test.ErrNil(t, fs.Save("people/1", tf), "Save")
	// a table whose name extends the first must not leak into it
	test.ErrNil(t, fs.Save("people/10", prep.NewTextFacets([]prep.Pair{{Key: "x", Value: 1}})), "Save")
	test.ErrNil(t, fs.Close(), "Close")

	fs, err = NewFacetStore(dir)
	test.ErrNil(t, err, "reopening")
	defer fs.Close()
	got, err := fs.Load("people/1")
	test.ErrNil(t, err, "Load")
	test.MustBe(t, tf.Facets(), got.Facets())

	test.ErrNil(t, fs.Save("people/1", prep.NewTextFacets([]prep.Pair{{Key: "doe", Value: 5}})), "Save again")
	got, err = fs.Load("people/1")
	test.ErrNil(t, err, "Load again")
	test.MustBe(t, []prep.Facet{{Value: "doe", Count: 5}}, got.Facets())

	got, err = fs.Load("people/10")
	test.ErrNil(t, err, "Load other")
	test.MustBe(t, []prep.Facet{{Value: "x", Count: 1}}, got.Facets())

	if err := fs.Save("bad\x00name", got); err == nil {
		t.Fatal("expected error for NUL in name")
	}
}

func TestErrorList(t *testing.T) {
	errs := errorList{errors.New("a"), errors.New("b")}
	test.MustBe(t, "a; b", errs.Error())
}
