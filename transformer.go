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

// MissingDataHandler computes a replacement for a blank column. It receives
// all columns of the record so it can use the rest of the row as context.
type MissingDataHandler interface {
	HandleMissingData(columns []string) string
}

// MissingDataHandlerFunc can be wrapped around a function to make it
// implement the MissingDataHandler interface. Similar to http.HandlerFunc.
type MissingDataHandlerFunc func(columns []string) string

// HandleMissingData implements MissingDataHandler for MissingDataHandlerFunc.
func (f MissingDataHandlerFunc) HandleMissingData(columns []string) string {
	return f(columns)
}

// ReplacementFunc computes the new value of a column from its current value.
type ReplacementFunc func(value string) string

// ReplaceValues returns a ReplacementFunc which looks values up in
// replacements and leaves values it doesn't find alone.
func ReplaceValues(replacements map[string]string) ReplacementFunc {
	return func(value string) string {
		if r, ok := replacements[value]; ok {
			return r
		}
		return value
	}
}

// RowPredicate reports whether a raw record should be removed.
type RowPredicate func(record string) bool

// MarkerPredicate decides whether a record gets flagged. Evaluate is handed
// the record with the Dialect's delimiter already appended.
type MarkerPredicate interface {
	Evaluate(record string) bool
}

// MarkerPredicateFunc can be wrapped around a function to make it implement
// the MarkerPredicate interface.
type MarkerPredicateFunc func(record string) bool

// Evaluate implements MarkerPredicate for MarkerPredicateFunc.
func (f MarkerPredicateFunc) Evaluate(record string) bool { return f(record) }

// MapFunction rewrites a whole record.
type MapFunction func(record string) string
