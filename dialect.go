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

package prep

import (
	"strings"

	"github.com/pkg/errors"
)

// Dialect describes how a record is broken into columns and put back
// together. Implementations must be safe for concurrent use and must never
// fail: a malformed record simply yields fewer columns.
type Dialect interface {
	// Delimiter returns the column separator.
	Delimiter() string

	// Parse splits a record into its column values.
	Parse(record string) []string

	// Join is the inverse of Parse.
	Join(columns []string) string

	// AppendDelimiter returns record followed by the delimiter, which turns
	// whatever is appended next into an additional column.
	AppendDelimiter(record string) string
}

// Delimited is a Dialect which separates columns with a fixed string and
// does no quoting. Join(Parse(x)) == x for every x, including ones with
// empty trailing columns.
type Delimited struct {
	delim string
	name  string
}

var (
	// CSV is the comma delimited Dialect.
	CSV Dialect = Delimited{delim: ",", name: "csv"}
	// TSV is the tab delimited Dialect.
	TSV Dialect = Delimited{delim: "\t", name: "tsv"}
)

// NewDialect returns a Delimited Dialect using delim. It panics if delim is
// empty.
func NewDialect(delim string) Delimited {
	if delim == "" {
		panic("prep: empty dialect delimiter")
	}
	return Delimited{delim: delim}
}

// Delimiter implements Dialect.
func (d Delimited) Delimiter() string { return d.delim }

// Parse implements Dialect.
func (d Delimited) Parse(record string) []string {
	return strings.Split(record, d.delim)
}

// Join implements Dialect.
func (d Delimited) Join(columns []string) string {
	return strings.Join(columns, d.delim)
}

// AppendDelimiter implements Dialect.
func (d Delimited) AppendDelimiter(record string) string {
	return record + d.delim
}

func (d Delimited) String() string {
	if d.name != "" {
		return d.name
	}
	return "delimited(" + d.delim + ")"
}

// DialectByName maps the names used in configuration files and on the
// command line to a Dialect.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv", "comma", "":
		return CSV, nil
	case "tsv", "tab":
		return TSV, nil
	case "pipe", "psv":
		return NewDialect("|"), nil
	case "semicolon", "ssv":
		return NewDialect(";"), nil
	default:
		return nil, errors.Errorf("unknown dialect '%s'", name)
	}
}
