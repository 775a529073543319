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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pilosa/prep/homomorphic"
	"github.com/pkg/errors"
)

// KeygenMain generates a Paillier key pair.
type KeygenMain struct {
	Bits   int    `help:"Size of the modulus in bits."`
	Out    string `help:"File to write the key pair to."`
	Public string `help:"File to write only the public key to. Empty means none."`

	stdout io.Writer
}

// NewKeygenMain returns a new KeygenMain.
func NewKeygenMain(stdout io.Writer) *KeygenMain {
	return &KeygenMain{
		Bits:   2048,
		Out:    "prep-key.json",
		stdout: stdout,
	}
}

// Run generates the key pair and writes it out.
func (m *KeygenMain) Run() error {
	if m.Out == "" {
		return errors.New("no output file")
	}
	kp, err := homomorphic.GenerateKeyPair(nil, m.Bits)
	if err != nil {
		return errors.Wrap(err, "generating key pair")
	}
	if err := WriteKeyFile(m.Out, kp); err != nil {
		return err
	}
	if m.Public != "" {
		if err := WriteKeyFile(m.Public, &homomorphic.KeyPair{Public: kp.Public}); err != nil {
			return err
		}
	}
	fmt.Fprintf(m.stdout, "wrote %d bit key %s to %s\n", kp.Public.Bits(), kp.Public.ID(), m.Out)
	return nil
}

// WriteKeyFile writes kp as JSON, readable only by the owner.
func WriteKeyFile(path string, kp *homomorphic.KeyPair) error {
	data, err := json.MarshalIndent(kp, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding key pair")
	}
	return errors.Wrapf(os.WriteFile(path, append(data, '\n'), 0600), "writing %s", path)
}

// ReadKeyFile reads a key pair written by WriteKeyFile.
func ReadKeyFile(path string) (*homomorphic.KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading key file")
	}
	kp := &homomorphic.KeyPair{}
	if err := json.Unmarshal(data, kp); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return kp, nil
}
