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

// ColumnSplitter breaks one column of a parsed record into several. Split
// returns the complete new column slice; it must not modify columns.
type ColumnSplitter interface {
	Split(columns []string, idx int) ([]string, error)
}

// SeparatorSplitter splits a column on every occurrence of Separator. If
// Retain is set the original value stays in place and the new columns are
// inserted right after it.
type SeparatorSplitter struct {
	Separator string
	Retain    bool
}

// Split implements ColumnSplitter.
func (s SeparatorSplitter) Split(columns []string, idx int) ([]string, error) {
	if s.Separator == "" {
		return nil, errors.New("empty separator")
	}
	val, err := column(columns, idx)
	if err != nil {
		return nil, err
	}
	return arrange(columns, idx, strings.Split(val, s.Separator), s.Retain), nil
}

// FieldLengthSplitter splits a column into fixed width fields: the i-th new
// column holds the next Lengths[i] characters of the value. Characters past
// the last declared width are not emitted, and a value shorter than the
// declared widths yields short or empty trailing fields.
type FieldLengthSplitter struct {
	Lengths []int
	Retain  bool
}

// Split implements ColumnSplitter.
func (s FieldLengthSplitter) Split(columns []string, idx int) ([]string, error) {
	if len(s.Lengths) == 0 {
		return nil, errors.New("no field lengths")
	}
	val, err := column(columns, idx)
	if err != nil {
		return nil, err
	}
	runes := []rune(val)
	fields := make([]string, len(s.Lengths))
	start := 0
	for i, l := range s.Lengths {
		if l < 0 {
			return nil, errors.Errorf("negative field length %d at %d", l, i)
		}
		end := start + l
		if start > len(runes) {
			start = len(runes)
		}
		if end > len(runes) {
			end = len(runes)
		}
		fields[i] = string(runes[start:end])
		start += l
	}
	return arrange(columns, idx, fields, s.Retain), nil
}

// arrange builds a new column slice with fields in place of columns[idx],
// or following it if retain is set.
func arrange(columns []string, idx int, fields []string, retain bool) []string {
	out := make([]string, 0, len(columns)+len(fields))
	out = append(out, columns[:idx]...)
	if retain {
		out = append(out, columns[idx])
	}
	out = append(out, fields...)
	return append(out, columns[idx+1:]...)
}
