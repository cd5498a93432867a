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

package vm

import (
	"slices"
	"testing"

	"github.com/go-quicktest/qt"

	"cuelabs.dev/go/agast/tag"
)

// replay is a Driver that issues a fixed list of instructions regardless of
// their results.
type replay struct {
	instrs []Instruction
	i      int

	// results holds the value and error of every executed instruction.
	values []any
	errs   []error

	// seen records, before each instruction, how many tags were emitted.
	out  *[]tag.Tag
	seen []int
}

func (r *replay) Start(*Context, *State) {}

func (r *replay) Next(v any, err error) (Instruction, bool) {
	if r.i > 0 {
		r.values = append(r.values, v)
		r.errs = append(r.errs, err)
	}
	if r.out != nil {
		r.seen = append(r.seen, len(*r.out))
	}
	if r.i >= len(r.instrs) {
		return Instruction{}, false
	}
	r.i++
	return r.instrs[r.i-1], true
}

func (r *replay) Stop()      {}
func (r *replay) Err() error { return nil }

type result struct {
	ctx    *Context
	driver *replay
	out    []tag.Tag
	err    error
}

func evaluate(t *testing.T, opts Options, instrs ...Instruction) *result {
	t.Helper()
	r := &result{ctx: NewContext()}
	r.driver = &replay{instrs: instrs, out: &r.out}
	for x, err := range Evaluate(r.ctx, r.driver, opts) {
		if err != nil {
			r.err = err
			break
		}
		r.out = append(r.out, x)
	}
	return r
}

func run(t *testing.T, instrs ...Instruction) *result {
	t.Helper()
	return evaluate(t, Options{}, instrs...)
}

func adv(t tag.Tag) Instruction { return Instruction{Verb: Advance, Tag: t} }

func bind(key string, value any) Instruction {
	return Instruction{Verb: BindAttribute, Key: key, Value: value}
}

var (
	branch        = Instruction{Verb: Branch}
	branchRecover = Instruction{Verb: Branch, Recover: true}
	accept        = Instruction{Verb: Accept}
	reject        = Instruction{Verb: Reject}
	panicInstr    = Instruction{Verb: Panic}
)

func write(v any) Instruction { return Instruction{Verb: Write, Value: v} }

func openNode(typ string) *tag.OpenNode {
	return tag.BuildOpenNode(tag.Flags{}, "", typ, nil)
}

func openToken(typ string) *tag.OpenNode {
	return tag.BuildOpenNode(tag.Flags{Token: true}, "", typ, nil)
}

func closeNode(typ string) *tag.CloseNode {
	return tag.BuildCloseNode("", typ)
}

func openFragment() *tag.OpenFragment {
	return tag.BuildOpenFragment(tag.Flags{}, nil)
}

// checkSame asserts that got holds exactly the tags of want, by identity.
func checkSame(t *testing.T, got []tag.Tag, want ...tag.Tag) {
	t.Helper()
	qt.Assert(t, qt.DeepEquals(tag.Strings(got), tag.Strings(want)))
	qt.Assert(t, qt.IsTrue(slices.Equal(got, want)), qt.Commentf("tags are equal but not identical"))
}
