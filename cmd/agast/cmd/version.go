// Copyright 2026 CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/mod/module"
)

func newVersionCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "print the agast version",
		Long: `version prints the version of the agast library that run evaluates
scripts with, the Go version the command was built with and, for builds
from a checkout, the source revision.
`,
		Args: cobra.NoArgs,
		RunE: mkRunE(c, runVersion),
	}
	return cmd
}

const (
	modulePath     = "cuelabs.dev/go/agast"
	defaultVersion = "(devel)"
)

// version may be set by a builder using
// -ldflags='-X cuelabs.dev/go/agast/cmd/agast/cmd.version=<version>'.
var version = defaultVersion

func runVersion(cmd *Command, args []string) error {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("no build information available")
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "agast version %s\n", libraryVersion(bi))
	fmt.Fprintf(w, "go version %s\n", bi.GoVersion)
	if rev := setting(bi, "vcs.revision"); rev != "" {
		if setting(bi, "vcs.modified") == "true" {
			rev += " (modified)"
		}
		fmt.Fprintf(w, "revision %s\n", rev)
	}
	return nil
}

// libraryVersion reports the version of the agast module linked into the
// command, whether it is the main module or a dependency of it.
func libraryVersion(bi *debug.BuildInfo) string {
	if version != defaultVersion {
		return version
	}
	m := &bi.Main
	if m.Path != modulePath {
		for _, dep := range bi.Deps {
			if dep.Path == modulePath {
				m = dep
				break
			}
		}
	}
	if m.Replace != nil {
		m = m.Replace
	}
	if m.Version != "" && m.Version != defaultVersion {
		return m.Version
	}

	rev := setting(bi, "vcs.revision")
	if rev == "" {
		return defaultVersion
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	// An invalid time yields a zero timestamp.
	t, _ := time.Parse(time.RFC3339Nano, setting(bi, "vcs.time"))
	return module.PseudoVersion("", "", t, rev)
}

func setting(bi *debug.BuildInfo, key string) string {
	for _, s := range bi.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
