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

	"github.com/pilosa/prep/app"
	"github.com/spf13/cobra"
)

// KeygenMain is wrapped by NewKeygenCommand. It is exported so that its fields can be
// inspected after flags are parsed.
var KeygenMain *app.KeygenMain

// NewKeygenCommand returns a new cobra command wrapping KeygenMain.
func NewKeygenCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	KeygenMain = app.NewKeygenMain(stdout)
	com := &cobra.Command{
		Use:   "keygen",
		Short: "generate a Paillier key pair",
		Long:  `Writes a new key pair for encrypt and decrypt to a JSON file.
Keep it private; --public writes a copy without the private key.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return timed(stderr, KeygenMain.Run)
		},
	}
	flagStructs(com.Flags(), KeygenMain)
	return com
}

func init() {
	subcommandFns["keygen"] = NewKeygenCommand
}
