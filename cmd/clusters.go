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

// ClustersMain is wrapped by NewClustersCommand. It is exported so that its fields can be
// inspected after flags are parsed.
var ClustersMain *app.ClustersMain

// NewClustersCommand returns a new cobra command wrapping ClustersMain.
func NewClustersCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	ClustersMain = app.NewClustersMain(stdout, stderr)
	com := &cobra.Command{
		Use:   "clusters",
		Short: "print groups of values which probably mean the same",
		Long:  `Groups the distinct values of a column by fingerprint, so that
spellings like "Doe, Jane" and "jane doe" end up in one cluster.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return timed(stderr, ClustersMain.Run)
		},
	}
	flagStructs(com.Flags(), ClustersMain, ClustersMain.Input(), ClustersMain.Telemetry())
	return com
}

func init() {
	subcommandFns["clusters"] = NewClustersCommand
}
