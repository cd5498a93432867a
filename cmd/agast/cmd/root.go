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
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type runFunction func(cmd *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

// newRootCmd creates the base command when called without any subcommands
func newRootCmd() *Command {
	cmd := &cobra.Command{
		Use:   "agast",
		Short: "agast evaluates tree-construction instruction scripts.",
		Long: `agast runs scripts of VM instructions and prints the resulting
tag stream.

A script lists one instruction per line:

	open-fragment
	ref expr
	open Num -token -expression
	lit 1
	close Num
	close-fragment

Scripts may also be written in YAML or TOML; the file extension selects
the format. Run 'agast help run' for details.`,

		SilenceUsage: true,
	}

	c := &Command{Command: cmd, root: cmd}

	subCommands := []*cobra.Command{
		newRunCmd(c),
		newVersionCmd(c),
	}
	for _, sub := range subCommands {
		cmd.AddCommand(sub)
	}
	return c
}

// Main runs the agast tool and returns the code for passing to os.Exit.
func Main() int {
	err := mainErr(context.Background(), os.Args[1:])
	if err != nil {
		if err != ErrPrintedError {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func mainErr(ctx context.Context, args []string) error {
	cmd := New(args)
	return cmd.Run(ctx)
}

// A Command is the agast command tree together with the state of the
// current invocation.
type Command struct {
	// The currently active command.
	*cobra.Command

	root *cobra.Command

	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = true
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns a writer that should be used for error messages. Writing
// to it makes the command exit with a non-zero code.
func (c *Command) Stderr() io.Writer {
	return (*errWriter)(c)
}

// SetOutput sets the destination of both output and error messages.
func (c *Command) SetOutput(w io.Writer) {
	c.root.SetOut(w)
	c.root.SetErr(w)
}

// SetInput sets the source of scripts read from "-".
func (c *Command) SetInput(r io.Reader) {
	c.root.SetIn(r)
}

// ErrPrintedError indicates error messages have been printed to stderr.
var ErrPrintedError = errors.New("terminating because of errors")

// Run executes the command selected by the arguments passed to New.
func (c *Command) Run(ctx context.Context) error {
	if err := c.root.ExecuteContext(ctx); err != nil {
		return err
	}
	if c.hasErr {
		return ErrPrintedError
	}
	return nil
}

// New creates the agast command tree for the given arguments.
func New(args []string) *Command {
	cmd := newRootCmd()
	cmd.root.SetArgs(args)
	return cmd
}
