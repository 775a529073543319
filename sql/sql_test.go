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

package sql_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/sql"
	_ "github.com/pilosa/prep/sql/all"
	"github.com/pilosa/prep/test"
)

func TestLoadSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "people.db"))
	test.ErrNil(t, err, "Open")
	defer db.Close()

	for _, stmt := range []string{
		"CREATE TABLE people (name TEXT, surname TEXT, salary INTEGER, rate REAL)",
		"INSERT INTO people VALUES ('john', 'smith', 850, 1.5)",
		"INSERT INTO people VALUES ('jane', NULL, 300, NULL)",
		"INSERT INTO people VALUES ('ann', 'lee', NULL, 2)",
	} {
		_, err := db.Exec(stmt)
		test.ErrNil(t, err, stmt)
	}

	c, err := sql.Load(context.Background(), db, "SELECT * FROM people ORDER BY salary DESC", prep.CSV, 2)
	test.ErrNil(t, err, "Load")
	test.MustBe(t, 2, c.Partitions())

	ds := prep.NewDataset(c, prep.CSV)
	got, err := ds.Collect()
	test.ErrNil(t, err, "Collect")
	test.MustBe(t, []string{"john,smith,850,1.5", "jane,,300,", "ann,lee,,2"}, got)
}

func TestQueryError(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "empty.db"))
	test.ErrNil(t, err, "Open")
	defer db.Close()
	if _, err := sql.Query(context.Background(), db, "SELECT * FROM nope", prep.TSV); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := sql.Open("nosuchdriver", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

// TestLoadPostgres needs a Postgres server. It runs when PREP_POSTGRES_DSN
// is set.
func TestLoadPostgres(t *testing.T) {
	dsn := os.Getenv("PREP_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PREP_POSTGRES_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	test.ErrNil(t, err, "Open")
	defer db.Close()

	recs, err := sql.Query(context.Background(), db, "SELECT 'a', 1, NULL UNION ALL SELECT 'b', 2, 'x' ORDER BY 2", prep.CSV)
	test.ErrNil(t, err, "Query")
	test.MustBe(t, []string{"a,1,", "b,2,x"}, recs)
}
