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

// Package sql loads the rows of a SQL query into partitions. Every row
// becomes one record, its columns joined with the Dataset's Dialect.
//
// Drivers are not registered by this package. Import the one needed, or
// github.com/pilosa/prep/sql/all for every supported database.
package sql

import (
	"context"
	"database/sql"
	"time"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/file"
	"github.com/pilosa/prep/local"
	"github.com/pkg/errors"
)

// PingTimeout bounds how long Open waits for the database to answer.
var PingTimeout = 10 * time.Second

// Open opens a database with a registered driver and checks that it is
// reachable.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", driver)
	}
	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "pinging %s database", driver)
	}
	return db, nil
}

// Load runs query and returns its rows as a Collection of numParts
// partitions, keeping the order the database returned them in. NULL
// becomes an empty column.
func Load(ctx context.Context, db *sql.DB, query string, dialect prep.Dialect, numParts int, opts ...local.Option) (*local.Collection, error) {
	recs, err := Query(ctx, db, query, dialect)
	if err != nil {
		return nil, err
	}
	return local.NewCollection(file.Chunk(recs, numParts), opts...), nil
}

// Query runs query and returns every row as a record.
func Query(ctx context.Context, db *sql.DB, query string, dialect prep.Dialect) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "running query")
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "getting columns")
	}

	vals := make([]sql.NullString, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	row := make([]string, len(cols))
	recs := make([]string, 0)
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrapf(err, "scanning row %d", len(recs))
		}
		for i, v := range vals {
			row[i] = v.String
		}
		recs = append(recs, dialect.Join(row))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}
	return recs, nil
}
