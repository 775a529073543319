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

package file

import (
	"io"

	"github.com/pkg/errors"
)

// Range is the byte range [Start, End) of a file. The ranges LineRanges
// returns begin at the start of a line and end just past a line break or
// at the end of the file.
type Range struct {
	Start int64
	End   int64
}

// Len returns the number of bytes in r.
func (r Range) Len() int64 { return r.End - r.Start }

// Section returns a reader over r. Sections of the same file can be read
// concurrently since they only use ReadAt.
func (r Range) Section(f io.ReaderAt) *io.SectionReader {
	return io.NewSectionReader(f, r.Start, r.Len())
}

// LineRanges cuts the first size bytes of f into about numParts ranges of
// similar length. Split points are moved forward to the next line break, so
// no line is ever cut in two and a file with few long lines yields fewer
// ranges. An empty file yields a single empty range.
func LineRanges(f io.ReaderAt, size int64, numParts int) ([]Range, error) {
	if numParts < 1 {
		numParts = 1
	}
	target := size / int64(numParts)
	if target < 1 {
		target = 1
	}
	ranges := make([]Range, 0, numParts)
	var start int64
	for start < size {
		end := start + target
		if end >= size {
			end = size
		} else {
			// the byte before end may itself be the line break
			pos := end - 1
			idx, err := searchReader(io.NewSectionReader(f, pos, size-pos), '\n')
			switch {
			case err == io.EOF:
				end = size
			case err != nil:
				return nil, errors.Wrapf(err, "searching line break after offset %d", pos)
			default:
				end = pos + idx
			}
		}
		ranges = append(ranges, Range{Start: start, End: end})
		start = end
	}
	if len(ranges) == 0 {
		ranges = append(ranges, Range{})
	}
	return ranges, nil
}

// searchReader returns the number of bytes up to and including the first
// byte b in r. If r ends before b is found it returns the number of bytes
// read and io.EOF.
func searchReader(r io.Reader, b byte) (idx int64, err error) {
	buf := make([]byte, 4096)
	var n int
	for err == nil {
		n, err = r.Read(buf)
		for i := 0; i < n; i++ {
			if buf[i] == b {
				return idx + int64(i) + 1, nil
			}
		}
		idx += int64(n)
	}
	if err == io.EOF {
		return idx, io.EOF
	}
	return 0, err
}
