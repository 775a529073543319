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

// Package file loads delimited records from local files into partitions and
// saves Datasets as directories of part files.
package file

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/local"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// MaxLineSize is the longest record ReadLines accepts.
const MaxLineSize = 64 << 20

// ReadLines returns every line of r without its line break. A trailing
// carriage return is dropped as well, and so is a final empty line.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), MaxLineSize)
	lines := make([]string, 0)
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning lines")
	}
	return lines, nil
}

// List returns the files at path: path itself if it is a file, or the
// regular files in it, sorted by name, if it is a directory. Hidden files
// and files starting with an underscore are skipped.
func List(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "statting path")
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading directory")
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	sort.Strings(files)
	return files, nil
}

// Load reads the file or directory at path into a Collection of about
// numParts partitions. Large files are split at line breaks, so a single
// file can fill several partitions; every file gets at least one. An http
// or https URL is fetched with LoadURL instead.
func Load(path string, numParts int, opts ...local.Option) (*local.Collection, error) {
	if IsURL(path) {
		return LoadURL(path, numParts, opts...)
	}
	files, err := List(path)
	if err != nil {
		return nil, err
	}
	perFile := 1
	if len(files) > 0 && numParts > len(files) {
		perFile = numParts / len(files)
	}

	type section struct {
		name string
		f    *os.File
		r    Range
	}
	opened := make([]*os.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	sections := make([]section, 0, len(files))
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %s", name)
		}
		opened = append(opened, f)
		info, err := f.Stat()
		if err != nil {
			return nil, errors.Wrapf(err, "statting %s", name)
		}
		ranges, err := LineRanges(f, info.Size(), perFile)
		if err != nil {
			return nil, errors.Wrapf(err, "splitting %s", name)
		}
		for _, r := range ranges {
			sections = append(sections, section{name: name, f: f, r: r})
		}
	}

	parts := make([][]string, len(sections))
	g := errgroup.Group{}
	g.SetLimit(8)
	for i, sec := range sections {
		i, sec := i, sec
		g.Go(func() error {
			lines, err := ReadLines(sec.r.Section(sec.f))
			if err != nil {
				return errors.Wrapf(err, "reading %s at %d", sec.name, sec.r.Start)
			}
			parts[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return local.NewCollection(parts, opts...), nil
}

// partGlob matches the names PartName produces.
const partGlob = "part-*"

func removeParts(dir string) error {
	stale, err := filepath.Glob(filepath.Join(dir, partGlob))
	if err != nil {
		return errors.Wrap(err, "listing part files")
	}
	for _, name := range stale {
		if err := os.Remove(name); err != nil {
			return errors.Wrapf(err, "removing stale part %s", name)
		}
	}
	return nil
}

// PartName returns the name of the i-th part file.
func PartName(i int) string {
	return fmt.Sprintf("part-%05d", i)
}

// Chunk spreads records over n slices of nearly equal size, keeping their
// order.
func Chunk(records []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	ret := make([][]string, n)
	size, rest := len(records)/n, len(records)%n
	start := 0
	for i := range ret {
		end := start + size
		if i < rest {
			end++
		}
		ret[i] = records[start:end]
		start = end
	}
	return ret
}

// Save evaluates ds and writes its records to dir, creating it if needed,
// as one part file per partition of the Dataset. Every record is followed
// by a line break. Part files of an earlier Save to dir are removed first,
// so loading dir afterwards yields exactly the records of ds.
func Save(dir string, ds *prep.Dataset) error {
	recs, err := ds.Collect()
	if err != nil {
		return errors.Wrap(err, "evaluating dataset")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	if err := removeParts(dir); err != nil {
		return err
	}
	for i, chunk := range Chunk(recs, ds.Records().Partitions()) {
		if err := writeLines(filepath.Join(dir, PartName(i)), chunk); err != nil {
			return err
		}
	}
	ds.Logger().Printf("wrote %d records to %s", len(recs), dir)
	return nil
}

func writeLines(name string, lines []string) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "creating part file")
	}
	w := bufio.NewWriter(f)
	err = WriteLines(w, lines)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing %s", name)
}

// WriteLines writes every line followed by a line break.
func WriteLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := io.WriteString(w, l); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
