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

package predicate_test

import (
	"testing"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/local"
	"github.com/pilosa/prep/mock"
	"github.com/pilosa/prep/predicate"
	"github.com/pilosa/prep/test"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		expression string
		record     string
		exp        bool
	}{
		{expression: `cols[1] == ""`, record: "a,,c", exp: true},
		{expression: `cols[1] == ""`, record: "a,b,c", exp: false},
		{expression: `record contains "N/A"`, record: "x,N/A", exp: true},
		{expression: `len(cols) > 2`, record: "a,b", exp: false},
		{expression: `cols[5] == "x"`, record: "a,b", exp: false},
		{expression: `int(cols[1]) >= 18`, record: "bob,21", exp: true},
	}
	for _, tst := range tests {
		p, err := predicate.Compile(tst.expression, prep.CSV)
		test.ErrNil(t, err, tst.expression)
		test.MustBe(t, tst.exp, p.Match(tst.record), tst.expression+" on "+tst.record)
		test.MustBe(t, tst.exp, p.Evaluate(tst.record), "Evaluate")
	}
}

func TestCompileErrors(t *testing.T) {
	for _, bad := range []string{"", "cols[", `"not a bool"`, "unknown_var == 1"} {
		if _, err := predicate.Compile(bad, prep.CSV); err == nil {
			t.Fatalf("expected error compiling '%s'", bad)
		}
	}
}

func TestCompileMap(t *testing.T) {
	fn, err := predicate.CompileMap(`upper(record)`, prep.CSV)
	test.ErrNil(t, err, "CompileMap")
	test.MustBe(t, "A,B", fn("a,b"))

	fn, err = predicate.CompileMap(`cols[3]`, prep.CSV)
	test.ErrNil(t, err, "CompileMap index")
	test.MustBe(t, "a,b", fn("a,b"), "failure keeps record")
}

func TestWithDataset(t *testing.T) {
	ds := prep.NewDataset(local.FromSlice([]string{"a,1", "b,", "c,3"}, 2), prep.CSV)
	p, err := predicate.Compile(`cols[1] == ""`, prep.CSV)
	test.ErrNil(t, err, "Compile")
	got, err := ds.RemoveRows(p.Match).Collect()
	test.ErrNil(t, err, "RemoveRows")
	test.MustBe(t, []string{"a,1", "c,3"}, got)

	flag, err := predicate.Compile(`cols[1] == "3"`, prep.CSV)
	test.ErrNil(t, err, "Compile flag")
	got, err = ds.Flag("*", flag).Collect()
	test.ErrNil(t, err, "Flag")
	test.MustBe(t, []string{"a,1,", "b,,", "c,3,*"}, got)
}

func TestRunTimeErrorsCounted(t *testing.T) {
	stats := &mock.RecordingStatter{}
	p, err := predicate.Compile(`cols[2] == "x"`, prep.CSV, predicate.OptStatter(stats))
	test.ErrNil(t, err, "Compile")
	test.MustBe(t, true, p.Match("a,b,x"))
	test.MustBe(t, false, p.Match("a,b"))
	test.MustBe(t, false, p.Match("a"))
	test.MustBe(t, int64(2), stats.Counts()[predicate.ErrorStat])

	fn, err := predicate.CompileMap(`cols[1]`, prep.CSV, predicate.OptStatter(stats))
	test.ErrNil(t, err, "CompileMap")
	test.MustBe(t, "b", fn("a,b"))
	test.MustBe(t, "a", fn("a"))
	test.MustBe(t, int64(3), stats.Counts()[predicate.ErrorStat])

	quiet, err := predicate.Compile(`cols[2] == "x"`, prep.CSV)
	test.ErrNil(t, err, "Compile without statter")
	test.MustBe(t, false, quiet.Match("a"))
}
