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

// Package recipe reads a chain of Dataset transformations from YAML and
// applies it. A recipe looks like
//
//	dialect: csv
//	steps:
//	  - op: deduplicate
//	  - op: remove_rows
//	    where: 'cols[1] == ""'
//	  - op: impute
//	    column: 2
//	    strategy: median
//	  - op: split
//	    column: 0
//	    lengths: [9, 9]
//	  - op: flag
//	    symbol: "*"
//	    where: 'record contains "x"'
//	  - op: map_by_flag
//	    flag: "*"
//	    column: 3
//	    map: 'upper(record)'
//	  - op: normalize
//	    column: 2
//	    strategy: min_max
//	    min: 0
//	    max: 100
package recipe

import (
	"fmt"
	"io"
	"os"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/impute"
	"github.com/pilosa/prep/normalize"
	"github.com/pilosa/prep/predicate"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Operation names.
const (
	OpDeduplicate = "deduplicate"
	OpRemoveRows  = "remove_rows"
	OpImpute      = "impute"
	OpReplace     = "replace"
	OpSplit       = "split"
	OpFlag        = "flag"
	OpMapByFlag   = "map_by_flag"
	OpNormalize   = "normalize"
)

// Recipe is a parsed recipe file.
type Recipe struct {
	Dialect string `yaml:"dialect"`
	Steps   []Step `yaml:"steps"`
}

// Step is one transformation. Which fields are used depends on Op.
type Step struct {
	Op        string            `yaml:"op"`
	Column    *int              `yaml:"column"`
	Where     string            `yaml:"where"`
	Strategy  string            `yaml:"strategy"`
	Value     string            `yaml:"value"`
	Values    map[string]string `yaml:"values"`
	Separator string            `yaml:"separator"`
	Lengths   []int             `yaml:"lengths"`
	Retain    bool              `yaml:"retain"`
	Symbol    string            `yaml:"symbol"`
	Flag      string            `yaml:"flag"`
	Map       string            `yaml:"map"`
	Min       *float64          `yaml:"min"`
	Max       *float64          `yaml:"max"`
}

// bounds returns the target range of a min_max normalization, [0, 1] by
// default.
func (s Step) bounds() (lo, hi float64) {
	lo, hi = 0, 1
	if s.Min != nil {
		lo = *s.Min
	}
	if s.Max != nil {
		hi = *s.Max
	}
	return lo, hi
}

func (s Step) String() string {
	if s.Column != nil {
		return fmt.Sprintf("%s(column %d)", s.Op, *s.Column)
	}
	return s.Op
}

// Parse decodes and validates a recipe. Unknown keys are errors.
func Parse(r io.Reader) (*Recipe, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	rec := &Recipe{}
	if err := dec.Decode(rec); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty recipe")
		}
		return nil, errors.Wrap(err, "decoding recipe")
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ParseFile parses the recipe at path.
func ParseFile(path string) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening recipe")
	}
	defer f.Close()
	rec, err := Parse(f)
	return rec, errors.Wrapf(err, "parsing %s", path)
}

// DialectValue returns the Dialect the recipe names, CSV by default.
func (r *Recipe) DialectValue() (prep.Dialect, error) {
	return prep.DialectByName(r.Dialect)
}

// Validate checks that every step has the fields its operation needs and
// that its expressions compile.
func (r *Recipe) Validate() error {
	d, err := r.DialectValue()
	if err != nil {
		return err
	}
	for i, s := range r.Steps {
		if err := s.validate(d); err != nil {
			return errors.Wrapf(err, "step %d (%s)", i, s.Op)
		}
	}
	return nil
}

func (s Step) validate(d prep.Dialect) error {
	needColumn := func() error {
		if s.Column == nil {
			return errors.New("missing column")
		}
		if *s.Column < 0 {
			return errors.Errorf("negative column %d", *s.Column)
		}
		return nil
	}
	switch s.Op {
	case OpDeduplicate:
		return nil
	case OpRemoveRows:
		_, err := predicate.Compile(s.Where, d)
		return err
	case OpImpute:
		if err := needColumn(); err != nil {
			return err
		}
		switch s.Strategy {
		case "", "mode", "mean", "median", "constant":
			return nil
		}
		return errors.Errorf("unknown strategy '%s'", s.Strategy)
	case OpReplace:
		if len(s.Values) == 0 {
			return errors.New("no values to replace")
		}
		return needColumn()
	case OpSplit:
		if err := needColumn(); err != nil {
			return err
		}
		if (s.Separator == "") == (len(s.Lengths) == 0) {
			return errors.New("need exactly one of separator and lengths")
		}
		for _, l := range s.Lengths {
			if l < 0 {
				return errors.Errorf("negative length %d", l)
			}
		}
		return nil
	case OpFlag:
		if s.Symbol == "" {
			return errors.New("missing symbol")
		}
		_, err := predicate.Compile(s.Where, d)
		return err
	case OpMapByFlag:
		if err := needColumn(); err != nil {
			return err
		}
		_, err := predicate.CompileMap(s.Map, d)
		return err
	case OpNormalize:
		if err := needColumn(); err != nil {
			return err
		}
		switch s.Strategy {
		case "min_max":
			if lo, hi := s.bounds(); lo >= hi {
				return errors.Errorf("empty range [%v, %v]", lo, hi)
			}
			return nil
		case "z_score", "decimal_scaling":
			return nil
		}
		return errors.Errorf("unknown strategy '%s'", s.Strategy)
	default:
		return errors.Errorf("unknown operation '%s'", s.Op)
	}
}

// Apply runs the steps on ds in order. Most steps only extend the lazy
// chain; deduplicate, normalize and the statistical impute strategies
// evaluate what came before them.
func (r *Recipe) Apply(ds *prep.Dataset) (*prep.Dataset, error) {
	d := ds.Dialect()
	for i, s := range r.Steps {
		var err error
		ds, err = s.apply(ds, d)
		if err != nil {
			return nil, errors.Wrapf(err, "applying step %d (%s)", i, s.Op)
		}
		ds.Logger().Debugf("added step %d: %s", i, s)
	}
	return ds, nil
}

func (s Step) apply(ds *prep.Dataset, d prep.Dialect) (*prep.Dataset, error) {
	if err := s.validate(d); err != nil {
		return nil, err
	}
	switch s.Op {
	case OpDeduplicate:
		return ds.Deduplicate()
	case OpRemoveRows:
		p, err := predicate.Compile(s.Where, d, predicate.OptStatter(ds.Statter()))
		if err != nil {
			return nil, err
		}
		return ds.RemoveRows(p.Match), nil
	case OpImpute:
		h, err := impute.Named(s.Strategy, ds, *s.Column, s.Value)
		if err != nil {
			return nil, err
		}
		return ds.Impute(*s.Column, h), nil
	case OpReplace:
		return ds.Replace(*s.Column, prep.ReplaceValues(s.Values)), nil
	case OpSplit:
		if s.Separator != "" {
			return ds.SplitBySeparator(*s.Column, s.Separator, s.Retain), nil
		}
		return ds.SplitByFieldLengths(*s.Column, s.Lengths, s.Retain), nil
	case OpFlag:
		p, err := predicate.Compile(s.Where, d, predicate.OptStatter(ds.Statter()))
		if err != nil {
			return nil, err
		}
		return ds.Flag(s.Symbol, p), nil
	case OpMapByFlag:
		fn, err := predicate.CompileMap(s.Map, d, predicate.OptStatter(ds.Statter()))
		if err != nil {
			return nil, err
		}
		return ds.MapByFlag(s.Flag, *s.Column, fn), nil
	case OpNormalize:
		lo, hi := s.bounds()
		n, err := normalize.Named(s.Strategy, ds, *s.Column, lo, hi)
		if err != nil {
			return nil, err
		}
		return normalize.Column(ds, *s.Column, n), nil
	}
	return nil, errors.Errorf("unknown operation '%s'", s.Op)
}
