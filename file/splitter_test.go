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
	"reflect"
	"strings"
	"testing"
)

func TestRangeSection(t *testing.T) {
	data := strings.NewReader("abcdefghijklmnopqrstuvwxyz")
	tests := []struct {
		r   Range
		exp string
	}{
		{r: Range{Start: 0, End: 3}, exp: "abc"},
		{r: Range{Start: 1, End: 3}, exp: "bc"},
		{r: Range{Start: 22, End: 26}, exp: "wxyz"},
		{r: Range{Start: 0, End: 26}, exp: "abcdefghijklmnopqrstuvwxyz"},
		{r: Range{Start: 5, End: 5}, exp: ""},
	}
	for i, test := range tests {
		actual, err := io.ReadAll(test.r.Section(data))
		if err != nil {
			t.Fatal(err)
		}
		if string(actual) != test.exp {
			t.Fatalf("test %d: expected '%s', but got '%s'", i, test.exp, actual)
		}
	}
}

func TestSearchReader(t *testing.T) {
	tests := []struct {
		data   string
		start  int
		expIdx int64
		expErr error
	}{
		{data: "abcd\nefgh", start: 0, expIdx: 5, expErr: nil},
		{data: "abcd\nefgh", start: 4, expIdx: 1, expErr: nil},
		{data: "abcd\nefgh", start: 5, expIdx: 4, expErr: io.EOF},
		{data: string3000(), start: 1, expIdx: 2500, expErr: nil},
	}
	for i, test := range tests {
		actIdx, actErr := searchReader(strings.NewReader(test.data[test.start:]), '\n')
		if actIdx != test.expIdx || actErr != test.expErr {
			t.Fatalf("test %d: expected idx: %d, and err: %v, but got idx: %d and err: %v", i, test.expIdx, test.expErr, actIdx, actErr)
		}
	}
}

func TestLineRanges(t *testing.T) {
	tests := []struct {
		data     string
		numParts int
		exp      []string
	}{
		{data: "abcdef\ngh", numParts: 2, exp: []string{"abcdef\n", "gh"}},
		{data: "aaaa\nbbbb\ncccc\ndd\n", numParts: 4, exp: []string{"aaaa\n", "bbbb\n", "cccc\n", "dd\n"}},
		{data: "aaaa\nbbbb\n", numParts: 1, exp: []string{"aaaa\nbbbb\n"}},
		{data: "one long line without a break", numParts: 3, exp: []string{"one long line without a break"}},
		{data: "a\nb\n", numParts: 10, exp: []string{"a\n", "b\n"}},
		{data: "", numParts: 3, exp: []string{""}},
	}
	for i, test := range tests {
		f := strings.NewReader(test.data)
		ranges, err := LineRanges(f, int64(len(test.data)), test.numParts)
		if err != nil {
			t.Fatal(err)
		}
		var actual []string
		for _, r := range ranges {
			b, err := io.ReadAll(r.Section(f))
			if err != nil {
				t.Fatal(err)
			}
			actual = append(actual, string(b))
		}
		if !reflect.DeepEqual(actual, test.exp) {
			t.Fatalf("test %d: expected: %#v, but got %#v", i, test.exp, actual)
		}
	}
}

func string3000() string {
	var ret string
	for i := 0; i < 300; i++ {
		ret = ret + "1234567890"
		if i == 249 {
			ret += "\n"
		}
	}
	return ret
}
