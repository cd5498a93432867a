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

package script

import (
	"testing"

	"github.com/go-quicktest/qt"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/internal/core/vm"
	"cuelabs.dev/go/agast/tag"
)

func TestParseLines(t *testing.T) {
	testCases := []struct {
		line string
		want Step
	}{{
		line: "branch",
		want: Step{Op: "branch"},
	}, {
		line: "branch recover",
		want: Step{Op: "branch", Recover: true},
	}, {
		line: "open Num -token -expression span=? n=3",
		want: Step{
			Op:         "open",
			Type:       "Num",
			Flags:      []string{"token", "expression"},
			Attributes: map[string]any{"span": "?", "n": 3},
		},
	}, {
		line: "open JSON:String",
		want: Step{Op: "open", Language: "JSON", Type: "String"},
	}, {
		line: "close",
		want: Step{Op: "close"},
	}, {
		line: "ref xs array gap",
		want: Step{Op: "ref", Name: "xs", Array: true, Gap: true},
	}, {
		line: `lit "a = -b # c"`,
		want: Step{Op: "lit", Value: "a = -b # c"},
	}, {
		line: "bind k null",
		want: Step{Op: "bind", Key: "k"},
	}, {
		line: "bind k true",
		want: Step{Op: "bind", Key: "k", Value: true},
	}, {
		line: "  gap  # trailing comment",
		want: Step{Op: "gap"},
	}}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			steps, err := ParseLines([]byte("\n" + tc.line + "\n"))
			qt.Assert(t, qt.IsNil(err))
			tc.want.Line = 2
			qt.Assert(t, qt.DeepEquals(steps, []Step{tc.want}))
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := ParseLines([]byte("open\nref\nbranch maybe\nlit 'unterminated\nnull\nclose A B\n"))
	var list errors.List
	qt.Assert(t, qt.IsTrue(errors.As(err, &list)))
	qt.Assert(t, qt.HasLen(list, 5))
	qt.Assert(t, qt.ErrorMatches(list[0], `protocol error: line 1: open: expected 1 to 1 arguments, found 0`))
	qt.Assert(t, qt.Equals(list[0].Position(), errors.Pos{Step: 1, Verb: "open"}))
	qt.Assert(t, qt.Equals(list[4].Position(), errors.Pos{Step: 2, Verb: "close"}))
}

func TestInstructions(t *testing.T) {
	steps := []Step{
		{Op: "doctype", Attributes: map[string]any{"version": 1}},
		{Op: "open-fragment", Flags: []string{"hasGap"}},
		{Op: "ref", Name: "x", Gap: true},
		{Op: "gap"},
		{Op: "ref", Name: "n"},
		{Op: "open", Type: "N", Flags: []string{"token"}, Attributes: map[string]any{"k": "?"}},
		{Op: "lit", Value: "v"},
		{Op: "bind", Key: "k", Value: "w"},
		{Op: "close", Type: "N"},
		{Op: "write", Value: "hello"},
		{Op: "close-fragment"},
	}
	instrs, err := Instructions(steps)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.HasLen(instrs, len(steps)))

	var got []string
	for _, instr := range instrs {
		got = append(got, instr.String())
	}
	qt.Assert(t, qt.DeepEquals(got, []string{
		`advance <!doctype version=1>`,
		`advance <$>`,
		`advance x$:`,
		`advance <//>`,
		`advance n:`,
		`advance <*N k=?>`,
		`advance 'v'`,
		`bindAttribute k=w`,
		`advance </N>`,
		`write "hello"`,
		`advance </>`,
	}))
	qt.Assert(t, qt.Equals(instrs[5].Tag.(*tag.OpenNode).Attributes["k"], tag.Unbound))
}

func TestInstructionErrors(t *testing.T) {
	_, err := Instructions([]Step{
		{Op: "open"},
		{Op: "open", Type: "A", Flags: []string{"bold"}},
		{Op: "ref"},
		{Op: "lit", Value: 3},
		{Op: "jump"},
		{Op: "bind"},
		{Op: "null", Line: 9},
		{Op: "gap", Line: 10},
		{Op: "accept"},
		{Op: "nope", Line: 12},
	})
	var list errors.List
	qt.Assert(t, qt.IsTrue(errors.As(err, &list)))
	qt.Assert(t, qt.HasLen(list, 7))
	qt.Assert(t, qt.ErrorMatches(list[6], `protocol error: line 12: unknown operation "nope"`))
	qt.Assert(t, qt.Equals(list[6].Position(), errors.Pos{Step: 10, Verb: "nope"}))
}

func TestDecode(t *testing.T) {
	want := []string{
		"advance <>",
		"branch recover",
		"advance n[]:",
		"advance <*+N k=?>",
		"advance '1'",
		"bindAttribute k=2",
		"advance </N>",
		"accept",
		"advance </>",
	}
	testCases := []struct {
		name string
		data string
	}{{
		name: "x.agast",
		data: `
open-fragment
branch recover
ref n array
open N -token -expression k=?
lit 1
bind k 2
close N
accept
close-fragment
`,
	}, {
		name: "x.yaml",
		data: `
- op: open-fragment
- op: branch
  recover: true
- op: ref
  name: n
  array: true
- op: open
  type: N
  flags: [token, expression]
  attributes: {k: "?"}
- op: lit
  value: "1"
- op: bind
  key: k
  value: 2
- op: close
  type: N
- op: accept
- op: close-fragment
`,
	}, {
		name: "x.toml",
		data: `
[[step]]
op = "open-fragment"

[[step]]
op = "branch"
recover = true

[[step]]
op = "ref"
name = "n"
array = true

[[step]]
op = "open"
type = "N"
flags = ["token", "expression"]
attributes = { k = "?" }

[[step]]
op = "lit"
value = "1"

[[step]]
op = "bind"
key = "k"
value = 2

[[step]]
op = "close"
type = "N"

[[step]]
op = "accept"

[[step]]
op = "close-fragment"
`,
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			instrs, err := Decode(tc.name, []byte(tc.data))
			qt.Assert(t, qt.IsNil(err))
			var got []string
			for _, instr := range instrs {
				got = append(got, instr.String())
			}
			qt.Assert(t, qt.DeepEquals(got, want))
			qt.Assert(t, qt.Equals(instrs[1].Verb, vm.Branch))
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("x.json", nil)
	qt.Assert(t, qt.ErrorMatches(err, `x.json: unknown script extension ".json"`))

	_, err = Decode("x.yaml", []byte("- op: open\n  colour: red\n"))
	qt.Assert(t, qt.ErrorMatches(err, `(?s)x.yaml: .*field colour not found.*`))

	_, err = Decode("x.toml", []byte("[[step]]\nop = \"gap\"\ncolour = \"red\"\n"))
	qt.Assert(t, qt.ErrorMatches(err, `x.toml: unknown fields \[step.colour\]`))
}
