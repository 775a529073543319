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
	"fmt"

	"github.com/pkg/errors"
)

// Error is a constant error value.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrColumnIndexOutOfRange is returned when a transformation addresses a
	// column a record doesn't have. Records are never padded or truncated to
	// make an index fit.
	ErrColumnIndexOutOfRange = Error("column index out of range")

	// ErrMalformedNumericColumn is returned when a column which must hold a
	// number doesn't.
	ErrMalformedNumericColumn = Error("column value is not a number")

	// ErrOversizedFacets is returned by Clusters when the facet table has
	// more distinct values than the Dataset is allowed to materialize.
	ErrOversizedFacets = Error("facet table too large to materialize")

	// ErrFacetsNotFound is returned from FacetStore.Load for unknown names.
	ErrFacetsNotFound = Error("facet table not found")
)

// RecordError reports the record which made an evaluation fail. The first
// failing record aborts the whole evaluation; use errors.Cause to get at the
// underlying sentinel.
type RecordError struct {
	Partition int
	Offset    int
	Record    string
	Err       error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("partition %d, record %d '%s': %v", e.Partition, e.Offset, e.Record, e.Err)
}

// Cause returns the error the record failed with. It satisfies the causer
// interface of github.com/pkg/errors.
func (e *RecordError) Cause() error { return e.Err }

// Unwrap is Cause for the standard library.
func (e *RecordError) Unwrap() error { return e.Err }

// column returns columns[idx] or a wrapped ErrColumnIndexOutOfRange.
func column(columns []string, idx int) (string, error) {
	if idx < 0 || idx >= len(columns) {
		return "", outOfRange(idx, len(columns))
	}
	return columns[idx], nil
}

func outOfRange(idx, n int) error {
	return errors.Wrapf(ErrColumnIndexOutOfRange, "column %d of %d", idx, n)
}
