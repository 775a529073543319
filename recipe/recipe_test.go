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

package recipe_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/local"
	"github.com/pilosa/prep/mock"
	"github.com/pilosa/prep/predicate"
	"github.com/pilosa/prep/recipe"
	"github.com/pilosa/prep/test"
)

const full = `
dialect: csv
steps:
  - op: deduplicate
  - op: remove_rows
    where: 'cols[0] == ""'
  - op: replace
    column: 0
    values: {"N/A": "Unknown Person"}
  - op: impute
    column: 1
    strategy: median
  - op: split
    column: 0
    separator: " "
  - op: flag
    symbol: "*"
    where: 'int(cols[2]) > 500'
  - op: map_by_flag
    flag: "*"
    column: 3
    map: 'upper(record)'
`

func TestParseAndApply(t *testing.T) {
	r, err := recipe.Parse(strings.NewReader(full))
	test.ErrNil(t, err, "Parse")
	test.MustBe(t, 7, len(r.Steps))

	ds := prep.NewDataset(local.FromSlice([]string{
		"john smith,850",
		"john smith,850",
		",100",
		"N/A,",
		"jane doe,300",
	}, 2), prep.CSV)
	out, err := r.Apply(ds)
	test.ErrNil(t, err, "Apply")
	got, err := out.Collect()
	test.ErrNil(t, err, "Collect")
	sort.Strings(got)
	test.MustBe(t, []string{
		"JOHN,SMITH,850,*",
		"Unknown,Person,300,",
		"jane,doe,300,",
	}, got)
}

func TestParseSplitByLengths(t *testing.T) {
	r, err := recipe.Parse(strings.NewReader(`
steps:
  - op: split
    column: 0
    lengths: [9, 9]
`))
	test.ErrNil(t, err, "Parse")
	ds := prep.NewDataset(local.FromSlice([]string{"FirstName LastName MiddleName,850"}, 1), prep.CSV)
	out, err := r.Apply(ds)
	test.ErrNil(t, err, "Apply")
	got, err := out.Collect()
	test.ErrNil(t, err, "Collect")
	test.MustBe(t, []string{"FirstName, LastName,850"}, got)
}

func TestValidate(t *testing.T) {
	bad := map[string]string{
		"unknown op":       "steps:\n  - op: explode\n",
		"unknown key":      "steps:\n  - op: deduplicate\n    colour: red\n",
		"missing column":   "steps:\n  - op: replace\n    values: {a: b}\n",
		"bad expression":   "steps:\n  - op: remove_rows\n    where: 'cols['\n",
		"both splits":      "steps:\n  - op: split\n    column: 0\n    separator: ' '\n    lengths: [1]\n",
		"neither split":    "steps:\n  - op: split\n    column: 0\n",
		"unknown dialect":  "dialect: xml\nsteps: []\n",
		"unknown strategy": "steps:\n  - op: impute\n    column: 0\n    strategy: guess\n",
		"flag no symbol":   "steps:\n  - op: flag\n    where: 'true'\n",
		"empty":            "",
	}
	for name, doc := range bad {
		if _, err := recipe.Parse(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestDialectValue(t *testing.T) {
	r, err := recipe.Parse(strings.NewReader("dialect: tsv\nsteps: []\n"))
	test.ErrNil(t, err, "Parse")
	d, err := r.DialectValue()
	test.ErrNil(t, err, "DialectValue")
	test.MustBe(t, "\t", d.Delimiter())
}

func TestNormalizeStep(t *testing.T) {
	r, err := recipe.Parse(strings.NewReader(`
steps:
  - op: normalize
    column: 1
    strategy: min_max
    min: 0
    max: 100
  - op: normalize
    column: 2
    strategy: decimal_scaling
`))
	test.ErrNil(t, err, "Parse")
	ds := prep.NewDataset(local.FromSlice([]string{"a,10,5", "b,20,50", "c,,500", "d,50,"}, 2), prep.CSV)
	out, err := r.Apply(ds)
	test.ErrNil(t, err, "Apply")
	got, err := out.Collect()
	test.ErrNil(t, err, "Collect")
	test.MustBe(t, []string{"a,0,0.005", "b,25,0.05", "c,,0.5", "d,100,"}, got)

	for _, bad := range []string{
		"steps:\n  - op: normalize\n    column: 1\n",
		"steps:\n  - op: normalize\n    column: 1\n    strategy: log\n",
		"steps:\n  - op: normalize\n    column: 1\n    strategy: min_max\n    min: 1\n    max: 1\n",
		"steps:\n  - op: normalize\n    strategy: z_score\n",
	} {
		if _, err := recipe.Parse(strings.NewReader(bad)); err == nil {
			t.Fatalf("expected error parsing %q", bad)
		}
	}
}

func TestExpressionErrorsCounted(t *testing.T) {
	r, err := recipe.Parse(strings.NewReader(`
steps:
  - op: remove_rows
    where: 'cols[2] == "x"'
`))
	test.ErrNil(t, err, "Parse")
	stats := &mock.RecordingStatter{}
	ds := prep.NewDataset(local.FromSlice([]string{"a,b,x", "a,b", "a,b,y"}, 2), prep.CSV, prep.OptDatasetStatter(stats))
	out, err := r.Apply(ds)
	test.ErrNil(t, err, "Apply")
	got, err := out.Collect()
	test.ErrNil(t, err, "Collect")
	test.MustBe(t, []string{"a,b", "a,b,y"}, got)
	test.MustBe(t, int64(1), stats.Counts()[predicate.ErrorStat])
}
