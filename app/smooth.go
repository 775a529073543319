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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pilosa/prep/smooth"
	"github.com/pkg/errors"
)

// SmoothMain prints a moving average of a numeric column, one value per
// line, in record order.
type SmoothMain struct {
	Column  int    `help:"Index of the numeric column to smooth."`
	Method  string `help:"Moving average: simple or weighted."`
	Window  int    `help:"Number of values a simple moving average spans."`
	Weights string `help:"Comma separated weights of a weighted moving average, oldest first. They must sum to 1."`

	input  *Input
	tel    *Telemetry
	stdout io.Writer
	stderr io.Writer
}

// NewSmoothMain returns a new SmoothMain.
func NewSmoothMain(stdout, stderr io.Writer) *SmoothMain {
	return &SmoothMain{
		Method: "simple",
		Window: 3,
		input:  NewInput(),
		tel:    NewTelemetry(),
		stdout: stdout,
		stderr: stderr,
	}
}

// Input returns the input options.
func (m *SmoothMain) Input() *Input { return m.input }

// Telemetry returns the logging and stats options.
func (m *SmoothMain) Telemetry() *Telemetry { return m.tel }

func parseWeights(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	ws := make([]float64, len(fields))
	for i, f := range fields {
		w, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing weight %d", i)
		}
		ws[i] = w
	}
	return ws, nil
}

// Run prints the smoothed series.
func (m *SmoothMain) Run() (err error) {
	weights, err := parseWeights(m.Weights)
	if err != nil {
		return err
	}
	s, err := smooth.Named(m.Method, m.Window, weights)
	if err != nil {
		return err
	}
	if err := m.tel.setup(m.stderr); err != nil {
		return err
	}
	defer m.tel.closeWith(&err)

	ds, err := m.input.Load(m.tel, nil)
	if err != nil {
		return err
	}
	xs, err := ds.Smooth(m.Column, s)
	if err != nil {
		return err
	}
	for _, x := range xs {
		if _, err := fmt.Fprintln(m.stdout, strconv.FormatFloat(x, 'f', -1, 64)); err != nil {
			return errors.Wrap(err, "writing series")
		}
	}
	return nil
}
