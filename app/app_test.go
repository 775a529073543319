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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/prep/test"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
	return p
}

const people = `john smith,850
jane doe,300
john smith,850
Jane Doe,
JANE  DOE.,120
`

func TestInputValidate(t *testing.T) {
	in := NewInput()
	if err := in.validate(); err == nil {
		t.Fatal("expected error without a source")
	}
	in.Path = "x"
	test.ErrNil(t, in.validate(), "validate")
	in.SQLQuery = "SELECT 1"
	if err := in.validate(); err == nil {
		t.Fatal("expected error with two sources")
	}
}

func TestRunMain(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	rec := writeFile(t, dir, "recipe.yaml", `
steps:
  - op: deduplicate
  - op: remove_rows
    where: 'cols[1] == ""'
  - op: split
    column: 0
    separator: " "
`)
	stdout := &bytes.Buffer{}
	m := NewRunMain(stdout, io.Discard)
	m.Recipe = rec
	m.Input().Path = in
	m.Input().Partitions = 2
	m.Output().Out = "-"
	test.ErrNil(t, m.Run(), "Run")

	got := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	test.MustBe(t, 3, len(got), stdout.String())
	for _, r := range got {
		if strings.Count(r, ",") < 2 {
			t.Fatalf("expected the name to be split in %q", r)
		}
	}

	m = NewRunMain(stdout, io.Discard)
	m.Input().Path = in
	m.Output().Out = "-"
	if err := m.Run(); err == nil {
		t.Fatal("expected error without recipe")
	}
}

func TestRunMainToDirectory(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	rec := writeFile(t, dir, "recipe.yaml", "steps:\n  - op: impute\n    column: 1\n    strategy: constant\n    value: \"0\"\n")
	m := NewRunMain(io.Discard, io.Discard)
	m.Recipe = rec
	m.Input().Path = in
	m.Input().Partitions = 1
	m.Output().Out = filepath.Join(dir, "out")
	m.Telemetry().Stats = "term"
	test.ErrNil(t, m.Run(), "Run")

	data, err := os.ReadFile(filepath.Join(dir, "out", "part-00000"))
	test.ErrNil(t, err, "reading output")
	test.MustBe(t, strings.Replace(people, "Jane Doe,\n", "Jane Doe,0\n", 1), string(data))
}

func TestFacetsMain(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	for _, kind := range []string{"bolt", "leveldb"} {
		stdout := &bytes.Buffer{}
		m := NewFacetsMain(stdout, io.Discard)
		m.Input().Path = in
		m.Column = 1
		m.Store = filepath.Join(dir, "facets-"+kind)
		m.StoreType = kind
		test.ErrNil(t, m.Run(), kind)
		test.MustBe(t, "\t1\n120\t1\n300\t1\n850\t2\n", stdout.String(), kind)

		// the second run is served from the store
		stdout.Reset()
		m = NewFacetsMain(stdout, io.Discard)
		m.Input().Path = in
		m.Column = 1
		m.Store = filepath.Join(dir, "facets-"+kind)
		m.StoreType = kind
		m.Order = "highest"
		test.ErrNil(t, m.Run(), kind+" again")
		test.MustBe(t, "850\t2\n", stdout.String(), kind)
	}

	m := NewFacetsMain(io.Discard, io.Discard)
	m.Input().Path = in
	m.Column = 5
	if err := m.Run(); err == nil {
		t.Fatal("expected error for missing column")
	}
	if _, err := OpenFacetStore("redis", dir); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestClustersMain(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "people.csv", people)
	stdout := &bytes.Buffer{}
	m := NewClustersMain(stdout, io.Discard)
	m.Input().Path = in
	test.ErrNil(t, m.Run(), "Run")
	test.MustBe(t, "doe jane\t3 values\t3 records\n\tJANE  DOE.\t1\n\tJane Doe\t1\n\tjane doe\t1\n", stdout.String())

	m = NewClustersMain(io.Discard, io.Discard)
	m.Input().Path = in
	m.Algorithm = "soundex"
	if err := m.Run(); err == nil {
		t.Fatal("expected error for unknown algorithm")
	}
}

func TestSmoothMain(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "temps.csv", "mon,10\ntue,12\nwed, 16\nthu,13\n")
	stdout := &bytes.Buffer{}
	m := NewSmoothMain(stdout, io.Discard)
	m.Input().Path = in
	m.Column = 1
	m.Window = 2
	test.ErrNil(t, m.Run(), "Run")
	test.MustBe(t, "11\n14\n14.5\n", stdout.String())

	stdout.Reset()
	m = NewSmoothMain(stdout, io.Discard)
	m.Input().Path = in
	m.Column = 1
	m.Method = "weighted"
	m.Weights = "0.25, 0.75"
	test.ErrNil(t, m.Run(), "Run weighted")
	test.MustBe(t, "11.5\n15\n13.75\n", stdout.String())

	m = NewSmoothMain(io.Discard, io.Discard)
	m.Input().Path = in
	m.Method = "weighted"
	m.Weights = "0.5,0.2"
	if err := m.Run(); err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}
}

func TestKeygenEncryptDecrypt(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "salaries.csv", "a,850\nb,300\nc,120.5\n")
	key := filepath.Join(dir, "key.json")
	pub := filepath.Join(dir, "pub.json")

	kg := NewKeygenMain(io.Discard)
	kg.Bits = 256
	kg.Out = key
	kg.Public = pub
	test.ErrNil(t, kg.Run(), "keygen")
	kp, err := ReadKeyFile(key)
	test.ErrNil(t, err, "ReadKeyFile")
	if kp.Private == nil {
		t.Fatal("key file lacks the private key")
	}
	pkp, err := ReadKeyFile(pub)
	test.ErrNil(t, err, "ReadKeyFile public")
	test.MustBe(t, kp.Public.ID(), pkp.Public.ID())
	if pkp.Private != nil {
		t.Fatal("public key file has the private key")
	}

	stdout := &bytes.Buffer{}
	em := NewEncryptMain(stdout, io.Discard)
	em.Key = key
	em.Column = 1
	em.Sum = true
	em.Input().Path = in
	em.Input().Partitions = 1
	em.Output().Out = filepath.Join(dir, "enc")
	test.ErrNil(t, em.Run(), "encrypt")
	test.MustBe(t, "sum\t1270.5\n", stdout.String())

	enc, err := os.ReadFile(filepath.Join(dir, "enc", "part-00000"))
	test.ErrNil(t, err, "reading encrypted output")
	for _, l := range strings.Split(strings.TrimSpace(string(enc)), "\n") {
		cols := strings.Split(l, ",")
		test.MustBe(t, 2, len(cols), l)
		if !strings.Contains(cols[1], ":") {
			t.Fatalf("column 1 of %q is not a ciphertext", l)
		}
	}

	em = NewEncryptMain(io.Discard, io.Discard)
	em.Key = pub
	em.Sum = true
	em.Input().Path = in
	if err := em.Run(); err == nil {
		t.Fatal("expected error summing with a public key only")
	}

	stdout.Reset()
	dm := NewDecryptMain(stdout, io.Discard)
	dm.Key = key
	dm.Column = 1
	dm.Input().Path = filepath.Join(dir, "enc")
	dm.Output().Out = "-"
	test.ErrNil(t, dm.Run(), "decrypt")
	test.MustBe(t, "a,850\nb,300\nc,120.5\n", stdout.String())
}
