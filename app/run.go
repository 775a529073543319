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

package app

import (
	"io"
	"time"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/recipe"
	"github.com/pkg/errors"
)

// RunMain applies a recipe to the input and writes the result.
type RunMain struct {
	Recipe string `help:"YAML file listing the steps to apply."`

	input  *Input
	output *Output
	tel    *Telemetry
	stdout io.Writer
	stderr io.Writer
}

// NewRunMain returns a new RunMain.
func NewRunMain(stdout, stderr io.Writer) *RunMain {
	return &RunMain{
		input:  NewInput(),
		output: NewOutput(),
		tel:    NewTelemetry(),
		stdout: stdout,
		stderr: stderr,
	}
}

// Input returns the input options.
func (m *RunMain) Input() *Input { return m.input }

// Output returns the output options.
func (m *RunMain) Output() *Output { return m.output }

// Telemetry returns the logging and stats options.
func (m *RunMain) Telemetry() *Telemetry { return m.tel }

// Run loads the input, applies the recipe and saves the result.
func (m *RunMain) Run() (err error) {
	if m.Recipe == "" {
		return errors.New("no recipe")
	}
	if err := m.tel.setup(m.stderr); err != nil {
		return err
	}
	defer m.tel.closeWith(&err)
	start := time.Now()

	r, err := recipe.ParseFile(m.Recipe)
	if err != nil {
		return err
	}
	var dialect prep.Dialect
	if r.Dialect != "" {
		if dialect, err = r.DialectValue(); err != nil {
			return err
		}
	}
	ds, err := m.input.Load(m.tel, dialect)
	if err != nil {
		return err
	}
	ds, err = r.Apply(ds)
	if err != nil {
		return err
	}
	if err := m.output.Save(ds, m.stdout); err != nil {
		return errors.Wrap(err, "saving output")
	}
	m.tel.Log().Printf("applied %d steps in %v", len(r.Steps), time.Since(start))
	return nil
}
