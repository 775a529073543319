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
	"net/http"
	"strings"
	"time"

	"github.com/pilosa/prep/local"
	"github.com/pkg/errors"
)

// MaxRetries is how often LoadURL tries to fetch a URL before giving up.
var MaxRetries = 3

// IsURL reports whether path is fetched over http rather than read from
// disk.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// LoadURL fetches the records at url and spreads them over numParts
// partitions. Failed requests and 5xx responses are retried.
func LoadURL(url string, numParts int, opts ...local.Option) (*local.Collection, error) {
	var lines []string
	var err error
	for try := 0; try < MaxRetries; try++ {
		if try > 0 {
			time.Sleep(time.Duration(try) * 100 * time.Millisecond)
		}
		var retry bool
		lines, retry, err = fetchLines(url)
		if err == nil || !retry {
			break
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't fetch '%s' - tried up to %d times, latest", url, MaxRetries)
	}
	return local.NewCollection(Chunk(lines, numParts), opts...), nil
}

func fetchLines(url string) (lines []string, retry bool, err error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, true, errors.Wrap(err, "getting via http")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		bod, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, resp.StatusCode >= 500, errors.Errorf("status %d: %s", resp.StatusCode, bod)
	}
	lines, err = ReadLines(resp.Body)
	return lines, true, err
}
