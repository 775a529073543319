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

// Package predicate compiles expr-lang expressions into prep strategies.
// Expressions see two variables: record, the raw record, and cols, the
// record parsed with the Dataset's Dialect. For example
//
//	cols[1] == "" || record contains "N/A"
//
// Expressions which fail at run time are counted as "predicate.errors" on
// the Statter given with OptStatter.
package predicate

import (
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pilosa/prep"
	"github.com/pkg/errors"
)

// ErrorStat is the name of the counter of run time expression failures.
const ErrorStat = "predicate.errors"

// Option is a functional option for Compile and CompileMap.
type Option func(o *options)

type options struct {
	stats prep.Statter
}

// OptStatter sets the Statter run time failures are counted on, usually the
// Statter of the Dataset the expression is used with.
func OptStatter(s prep.Statter) Option {
	return func(o *options) {
		o.stats = s
	}
}

func newOptions(opts []Option) *options {
	o := &options{stats: prep.NopStatter{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.stats == nil {
		o.stats = prep.NopStatter{}
	}
	return o
}

func env(dialect prep.Dialect, record string) map[string]interface{} {
	return map[string]interface{}{
		"record": record,
		"cols":   dialect.Parse(record),
	}
}

func compile(expression string, dialect prep.Dialect, opts ...expr.Option) (*vm.Program, error) {
	if expression == "" {
		return nil, errors.New("empty expression")
	}
	opts = append([]expr.Option{expr.Env(env(dialect, ""))}, opts...)
	prog, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "compiling '%s'", expression)
	}
	return prog, nil
}

// Predicate is a compiled boolean expression. A *Predicate is safe for
// concurrent use.
type Predicate struct {
	expression string
	dialect    prep.Dialect
	prog       *vm.Program
	stats      prep.Statter
}

// Compile compiles a boolean expression. Records are parsed with dialect.
func Compile(expression string, dialect prep.Dialect, opts ...Option) (*Predicate, error) {
	prog, err := compile(expression, dialect, expr.AsBool())
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &Predicate{expression: expression, dialect: dialect, prog: prog, stats: o.stats}, nil
}

// Match reports whether the expression holds for record. An expression
// which fails at run time, e.g. by indexing past the last column, does not
// hold. Match is a prep.RowPredicate.
func (p *Predicate) Match(record string) bool {
	out, err := expr.Run(p.prog, env(p.dialect, record))
	if err != nil {
		p.stats.Count(ErrorStat, 1, 1)
		return false
	}
	b, ok := out.(bool)
	return ok && b
}

// Evaluate implements prep.MarkerPredicate.
func (p *Predicate) Evaluate(record string) bool { return p.Match(record) }

// String returns the source expression.
func (p *Predicate) String() string { return p.expression }

// CompileMap compiles a string valued expression into a prep.MapFunction.
// If the expression fails at run time the record is returned unchanged.
func CompileMap(expression string, dialect prep.Dialect, opts ...Option) (prep.MapFunction, error) {
	prog, err := compile(expression, dialect, expr.AsKind(reflect.String))
	if err != nil {
		return nil, err
	}
	stats := newOptions(opts).stats
	return func(record string) string {
		out, err := expr.Run(prog, env(dialect, record))
		if err != nil {
			stats.Count(ErrorStat, 1, 1)
			return record
		}
		s, ok := out.(string)
		if !ok {
			stats.Count(ErrorStat, 1, 1)
			return record
		}
		return s
	}, nil
}
