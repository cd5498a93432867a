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

package agast

import (
	"iter"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/internal/core/vm"
	"cuelabs.dev/go/agast/tag"
)

// A Strategy drives construction by issuing instructions through m. It is
// passed the Context and the root State of the run.
//
// Every instruction returns the error the VM reported for it. A strategy
// that continues after an error must issue Reject or Panic next; anything
// else ends the run with that error. A non-nil return value ends the run
// with that error.
type Strategy func(c Context, s State, m *Machine) error

// ErrStopped is returned by Machine methods once the run has ended, for
// instance because the consumer of Evaluate stopped iterating. Strategies
// should return when they see it.
var ErrStopped = errors.Newf(errors.ProtocolError, "evaluation stopped")

// A Machine passes instructions from a strategy to the VM.
type Machine struct {
	yield   func(Instruction) bool
	stopped bool

	// value and err hold the result of the last instruction.
	value any
	err   error
}

// Do issues instr and returns its result.
func (m *Machine) Do(instr Instruction) (any, error) {
	if m.stopped || !m.yield(instr) {
		m.stopped = true
		return nil, ErrStopped
	}
	return m.value, m.err
}

// Advance appends t to the stream and returns it.
func (m *Machine) Advance(t tag.Tag) (tag.Tag, error) {
	v, err := m.Do(Advance(t))
	x, _ := v.(tag.Tag)
	return x, err
}

// BindAttribute binds attribute key of the innermost open node and returns
// the node's current opener.
func (m *Machine) BindAttribute(key string, value any) (tag.Tag, error) {
	v, err := m.Do(BindAttribute(key, value))
	x, _ := v.(tag.Tag)
	return x, err
}

// Branch starts a speculative State and returns it.
func (m *Machine) Branch() (State, error) {
	return m.state(Branch())
}

// BranchRecover starts a speculative State at which a panic stops.
func (m *Machine) BranchRecover() (State, error) {
	return m.state(BranchRecover())
}

// Accept commits the innermost State and returns its parent.
func (m *Machine) Accept() (State, error) {
	return m.state(Accept())
}

// Reject discards the innermost State and returns its parent.
func (m *Machine) Reject() (State, error) {
	return m.state(Reject())
}

// Panic discards States up to and including the innermost recovery point
// and returns the surviving State.
func (m *Machine) Panic() (State, error) {
	return m.state(Panic())
}

// Write emits v as a side effect.
func (m *Machine) Write(v any) error {
	_, err := m.Do(Write(v))
	return err
}

// State returns the innermost State.
func (m *Machine) State() (State, error) {
	return m.state(GetState())
}

// Context returns the Context of the run.
func (m *Machine) Context() (Context, error) {
	v, err := m.Do(GetContext())
	c, _ := v.(Context)
	return c, err
}

func (m *Machine) state(instr Instruction) (State, error) {
	v, err := m.Do(instr)
	s, _ := v.(State)
	return s, err
}

// driver runs a Strategy as a coroutine of the VM.
type driver struct {
	strategy Strategy
	m        Machine

	next func() (Instruction, bool)
	stop func()
	err  error
}

func (d *driver) Start(c *vm.Context, s *vm.State) {
	seq := func(yield func(Instruction) bool) {
		d.m.yield = yield
		d.err = d.strategy(Context{c}, State{s}, &d.m)
	}
	d.next, d.stop = iter.Pull(seq)
}

func (d *driver) Next(v any, err error) (Instruction, bool) {
	switch x := v.(type) {
	case *vm.State:
		v = State{x}
	case *vm.Context:
		v = Context{x}
	}
	d.m.value, d.m.err = v, err
	return d.next()
}

func (d *driver) Stop() {
	d.m.stopped = true
	d.stop()
}

func (d *driver) Err() error {
	if d.err == ErrStopped {
		return nil
	}
	return d.err
}

// Passthrough returns a strategy that advances tags in order.
func Passthrough(tags ...tag.Tag) Strategy {
	return func(_ Context, _ State, m *Machine) error {
		for _, t := range tags {
			if _, err := m.Advance(t); err != nil {
				return err
			}
		}
		return nil
	}
}

// Replay returns a strategy that issues instrs in order. Errors are left to
// the VM: a failed instruction must be followed by a reject or panic.
func Replay(instrs ...Instruction) Strategy {
	return func(_ Context, _ State, m *Machine) error {
		for _, instr := range instrs {
			if _, err := m.Do(instr); err == ErrStopped {
				return nil
			}
		}
		return nil
	}
}
