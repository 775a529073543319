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

package cmd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/prep/app"
	"github.com/pilosa/prep/test"
)

func TestRootHasSubcommands(t *testing.T) {
	rc := NewRootCommand(strings.NewReader(""), io.Discard, io.Discard)
	names := make(map[string]bool)
	for _, c := range rc.Commands() {
		names[c.Name()] = true
	}
	for _, exp := range []string{"run", "facets", "clusters", "keygen", "encrypt", "decrypt", "smooth"} {
		if !names[exp] {
			t.Errorf("missing subcommand %s", exp)
		}
	}
}

func TestKeygenFlags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "key.json")
	rc := NewRootCommand(strings.NewReader(""), io.Discard, io.Discard)
	rc.SetArgs([]string{"keygen", "--bits", "256", "--out", out})
	test.ErrNil(t, rc.Execute(), "Execute")
	test.MustBe(t, 256, KeygenMain.Bits)
	kp, err := app.ReadKeyFile(out)
	test.ErrNil(t, err, "ReadKeyFile")
	test.MustBe(t, 256, kp.Public.Bits())
}

func TestKeygenEnvAndConfig(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "key.json")
	conf := filepath.Join(dir, "prep.toml")
	err := os.WriteFile(conf, []byte("bits = 256\nout = \""+filepath.ToSlash(out)+"\"\n"), 0644)
	test.ErrNil(t, err, "writing config")

	rc := NewRootCommand(strings.NewReader(""), io.Discard, io.Discard)
	rc.SetArgs([]string{"keygen", "--config", conf})
	test.ErrNil(t, rc.Execute(), "Execute with config")
	test.MustBe(t, 256, KeygenMain.Bits)
	test.MustBe(t, filepath.ToSlash(out), KeygenMain.Out)

	// the environment beats the config file, flags beat both
	t.Setenv("PREP_BITS", "192")
	rc = NewRootCommand(strings.NewReader(""), io.Discard, io.Discard)
	rc.SetArgs([]string{"keygen", "--config", conf, "--out", out + ".2"})
	test.ErrNil(t, rc.Execute(), "Execute with env")
	test.MustBe(t, 192, KeygenMain.Bits)
	test.MustBe(t, out+".2", KeygenMain.Out)
}

func TestRunFlags(t *testing.T) {
	rc := NewRootCommand(strings.NewReader(""), io.Discard, io.Discard)
	for _, c := range rc.Commands() {
		if c.Name() != "run" {
			continue
		}
		for _, f := range []string{"recipe", "path", "kafka-topics", "dialect", "partitions", "out", "verbose", "stats"} {
			if c.Flags().Lookup(f) == nil {
				t.Errorf("run lacks flag --%s", f)
			}
		}
	}
}
