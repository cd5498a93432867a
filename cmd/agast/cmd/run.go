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
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"cuelabs.dev/go/agast"
	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/internal/script"
)

func newRunCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] script",
		Short: "evaluate an instruction script",
		Long: `run evaluates the instructions of a script and prints each emitted
tag on its own line.

The script format is selected by the file extension: .agast (or no
extension) for the line format, .yaml or .yml for YAML and .toml for
TOML. A script named "-" is read from standard input in the line format.

Instructions that fail must be followed by a reject or panic; otherwise
run stops and reports the error together with the failing step.

Scripts passed with --expr are evaluated first. Each resulting root is
substituted, in order, for the gaps of the main script.
`,
		Args: cobra.ExactArgs(1),
		RunE: mkRunE(c, runRun),
	}
	addRunFlags(cmd.Flags())
	return cmd
}

func runRun(cmd *Command, args []string) error {
	instrs, err := readScript(cmd, args[0])
	if err != nil {
		errors.Print(cmd.Stderr(), err)
		return ErrPrintedError
	}

	w := cmd.OutOrStdout()
	opts := []agast.Option{agast.WithStdout(w)}
	if flagEffects.Bool(cmd) {
		opts = append(opts, agast.EmitEffects())
	}
	if flagLog.Bool(cmd) {
		h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, agast.WithLogger(slog.New(h)))
	}

	var exprs []agast.Node
	for _, file := range flagExpr.StringArray(cmd) {
		n, err := evalExpr(cmd, file)
		if err != nil {
			errors.Print(cmd.Stderr(), err)
			return ErrPrintedError
		}
		exprs = append(exprs, n)
	}
	if len(exprs) > 0 {
		opts = append(opts, agast.WithExpressions(exprs...))
	}

	c := agast.NewContext()
	for t, err := range agast.Evaluate(c, agast.Replay(instrs...), opts...) {
		if err != nil {
			errors.Print(cmd.Stderr(), err)
			return ErrPrintedError
		}
		fmt.Fprintln(w, t)
	}
	if root := c.Root(); flagTree.Bool(cmd) && root.Exists() {
		fmt.Fprint(w, root.Tree())
	}
	return nil
}

func readScript(cmd *Command, file string) ([]agast.Instruction, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	return script.Decode(file, data)
}

// evalExpr evaluates the script in file and returns the root of the
// result.
func evalExpr(cmd *Command, file string) (agast.Node, error) {
	instrs, err := readScript(cmd, file)
	if err != nil {
		return agast.Node{}, err
	}
	c := agast.NewContext()
	if _, err := agast.Run(c, agast.Replay(instrs...)); err != nil {
		return agast.Node{}, fmt.Errorf("%s: %w", file, err)
	}
	return c.Root(), nil
}
