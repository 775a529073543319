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

	"github.com/pkg/errors"
)

// EncryptMain encrypts a numeric column with a Paillier public key.
type EncryptMain struct {
	Key     string `help:"Key file written by keygen."`
	Column  int    `help:"Index of the numeric column to encrypt."`
	Sum     bool   `help:"Print the decrypted sum of the encrypted column. Needs the private key."`
	Average bool   `help:"Print the decrypted average of the encrypted column. Needs the private key."`

	input  *Input
	output *Output
	tel    *Telemetry
	stdout io.Writer
	stderr io.Writer
}

// NewEncryptMain returns a new EncryptMain.
func NewEncryptMain(stdout, stderr io.Writer) *EncryptMain {
	return &EncryptMain{
		input:  NewInput(),
		output: NewOutput(),
		tel:    NewTelemetry(),
		stdout: stdout,
		stderr: stderr,
	}
}

// Input returns the input options.
func (m *EncryptMain) Input() *Input { return m.input }

// Output returns the output options.
func (m *EncryptMain) Output() *Output { return m.output }

// Telemetry returns the logging and stats options.
func (m *EncryptMain) Telemetry() *Telemetry { return m.tel }

// Run encrypts the column, writes the encrypted records if an output is
// set, and prints the requested aggregates.
func (m *EncryptMain) Run() (err error) {
	if !m.output.set() && !m.Sum && !m.Average {
		return errors.New("nothing to do: set an output, sum or average")
	}
	kp, err := ReadKeyFile(m.Key)
	if err != nil {
		return err
	}
	if (m.Sum || m.Average) && kp.Private == nil {
		return errors.New("sum and average need a key file with the private key")
	}
	if err := m.tel.setup(m.stderr); err != nil {
		return err
	}
	defer m.tel.closeWith(&err)

	ds, err := m.input.Load(m.tel, nil)
	if err != nil {
		return err
	}
	enc := ds.EncryptHomomorphically(kp, m.Column)
	if m.output.set() {
		if err := m.output.Save(enc.Dataset(), m.stdout); err != nil {
			return errors.Wrap(err, "saving encrypted records")
		}
	}
	if m.Sum {
		sum, err := enc.DecryptedSum(m.Column)
		if err != nil {
			return err
		}
		fmt.Fprintf(m.stdout, "sum\t%v\n", sum)
	}
	if m.Average {
		avg, err := enc.Average(m.Column)
		if err != nil {
			return err
		}
		fmt.Fprintf(m.stdout, "average\t%v\n", avg)
	}
	return nil
}

// DecryptMain decrypts a column encrypted by EncryptMain.
type DecryptMain struct {
	Key    string `help:"Key file with the private key."`
	Column int    `help:"Index of the encrypted column."`

	input  *Input
	output *Output
	tel    *Telemetry
	stdout io.Writer
	stderr io.Writer
}

// NewDecryptMain returns a new DecryptMain.
func NewDecryptMain(stdout, stderr io.Writer) *DecryptMain {
	return &DecryptMain{
		input:  NewInput(),
		output: NewOutput(),
		tel:    NewTelemetry(),
		stdout: stdout,
		stderr: stderr,
	}
}

// Input returns the input options.
func (m *DecryptMain) Input() *Input { return m.input }

// Output returns the output options.
func (m *DecryptMain) Output() *Output { return m.output }

// Telemetry returns the logging and stats options.
func (m *DecryptMain) Telemetry() *Telemetry { return m.tel }

// Run decrypts the column and writes the records.
func (m *DecryptMain) Run() (err error) {
	kp, err := ReadKeyFile(m.Key)
	if err != nil {
		return err
	}
	if kp.Private == nil {
		return errors.New("decrypting needs a key file with the private key")
	}
	if err := m.tel.setup(m.stderr); err != nil {
		return err
	}
	defer m.tel.closeWith(&err)

	ds, err := m.input.Load(m.tel, nil)
	if err != nil {
		return err
	}
	return m.output.Save(ds.AsEncrypted(kp).Decrypt(m.Column), m.stdout)
}
