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
	"fmt"

	"github.com/spf13/pflag"
)

// Common flags
const (
	flagEffects flagName = "effects"
	flagExpr    flagName = "expr"
	flagLog     flagName = "log"
	flagTree    flagName = "tree"
)

func addRunFlags(f *pflag.FlagSet) {
	f.Bool(string(flagEffects), false,
		"emit writes and panics as effect tags instead of printing them")
	f.StringArrayP(string(flagExpr), "e", nil,
		"script whose result is substituted for the next gap (may be repeated)")
	f.Bool(string(flagLog), false,
		"log every instruction to stderr")
	f.BoolP(string(flagTree), "t", false,
		"print the resulting tree after the tag stream")
}

type flagName string

// ensureAdded detects if a flag is being used without it first being
// added to the flagSet.
func (f flagName) ensureAdded(cmd *Command) {
	if cmd.Flags().Lookup(string(f)) == nil {
		panic(fmt.Sprintf("Cmd %q uses flag %q without adding it", cmd.Name(), f))
	}
}

func (f flagName) Bool(cmd *Command) bool {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetBool(string(f))
	return v
}

func (f flagName) StringArray(cmd *Command) []string {
	f.ensureAdded(cmd)
	v, _ := cmd.Flags().GetStringArray(string(f))
	return v
}
