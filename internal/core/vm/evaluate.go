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
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/internal/agastdebug"
	"cuelabs.dev/go/agast/tag"
)

// Options configures a run of Evaluate.
type Options struct {
	// Expressions seeds the queue from which gaps are filled. A nil entry
	// fills a gap with a stub.
	Expressions []*Node

	// EmitEffects interleaves write and panic effects with the output.
	EmitEffects bool

	// Logger receives debug output. If nil, output is enabled with
	// AGAST_DEBUG=logeval=1.
	Logger *slog.Logger

	// Stdout receives the values of writes that are not emitted as effects.
	Stdout io.Writer
}

// A Driver runs a strategy as a coroutine of the VM.
type Driver interface {
	// Start is called once, before the first call to Next.
	Start(c *Context, s *State)

	// Next resumes the strategy with the result of its previous instruction
	// and returns its next one. It reports false when the strategy is done.
	Next(value any, err error) (Instruction, bool)

	// Stop terminates the strategy if it is still running.
	Stop()

	// Err returns the error the strategy finished with, if any.
	Err() error
}

// Evaluate runs the strategy driven by d and returns the tags that are
// finalized, in stream order. The sequence ends with a non-nil error if
// the run fails.
//
// A failing instruction reports its error to the strategy. The strategy
// may recover from it only by rejecting or panicking next; any other
// instruction, or the end of the strategy, aborts the run with the error.
func Evaluate(c *Context, d Driver, opts Options) iter.Seq2[tag.Tag, error] {
	return func(yield func(tag.Tag, error) bool) {
		if err := agastdebug.Init(); err != nil {
			yield(nil, err)
			return
		}
		if c.next[c.start] != nil || c.rootPath != nil {
			yield(nil, errors.Newf(errors.ProtocolError, "context %v was already evaluated", c.ID))
			return
		}
		c.configure()

		m := &machine{
			ctx:   c,
			s:     newState(c, opts.Expressions),
			opts:  opts,
			log:   newLogger(c, opts.Logger),
			yield: yield,
		}
		m.run(d)
	}
}

type machine struct {
	ctx   *Context
	s     *State
	opts  Options
	log   *slog.Logger
	yield func(tag.Tag, error) bool

	step int

	// stopped is set when the consumer stops iterating or the run failed.
	stopped bool

	// done is set when the run ended with a panic effect.
	done bool
}

func (m *machine) run(d Driver) {
	m.log.Debug("start")
	d.Start(m.ctx, m.s)
	defer d.Stop()

	var (
		value   any
		pending error
	)
	for {
		instr, ok := d.Next(value, pending)
		if !ok {
			break
		}
		m.step++
		if pending != nil && instr.Verb != Reject && instr.Verb != Panic {
			m.fail(pending)
			return
		}
		pending = nil

		m.log.Debug("exec",
			"step", m.step,
			"verb", instr.Verb.String(),
			"depth", m.s.depth,
			"instr", instr)

		var err error
		value, err = m.exec(instr)
		if err != nil {
			value = nil
			pending = errors.Augment(err, errors.Pos{Step: m.step, Verb: instr.Verb.String()})
			m.log.Debug("error", "step", m.step, "err", pending)
			continue
		}
		if m.stopped || m.done {
			return
		}
		m.emit()
		if m.stopped {
			return
		}
	}

	if err := d.Err(); err != nil {
		m.fail(err)
		return
	}
	if pending != nil {
		m.fail(pending)
		return
	}
	if err := m.s.finish(); err != nil {
		m.fail(errors.Augment(err, errors.Pos{Step: m.step, Verb: "end"}))
		return
	}
	m.log.Debug("done", "steps", m.step)
}

func (m *machine) exec(instr Instruction) (any, error) {
	s := m.s
	switch instr.Verb {
	case Branch:
		m.s = s.branch(instr.Recover)
		return m.s, nil

	case Accept:
		p, err := s.accept()
		if err != nil {
			return nil, err
		}
		m.s = p
		m.log.Debug("accept", "depth", p.depth)
		return p, nil

	case Reject:
		p, err := s.reject()
		if err != nil {
			return nil, err
		}
		m.s = p
		m.log.Debug("reject", "depth", p.depth)
		return p, nil

	case Advance:
		if err := s.advance(instr.Tag); err != nil {
			return nil, err
		}
		return s.result, nil

	case BindAttribute:
		return s.bindAttribute(instr.Key, instr.Value)

	case GetState:
		return s, nil

	case GetContext:
		return m.ctx, nil

	case Write:
		return nil, m.write(instr.Value)

	case Panic:
		return m.panic()
	}
	return nil, errors.Newf(errors.ProtocolError, "unexpected instruction %v", instr)
}

func (m *machine) write(v any) error {
	if m.opts.EmitEffects {
		if !m.yield(tag.BuildEffect("write", v), nil) {
			m.stopped = true
		}
		return nil
	}
	m.log.Info("write", "value", v)
	if w := m.opts.Stdout; w != nil {
		if _, err := fmt.Fprint(w, v); err != nil {
			return errors.Wrapf(err, errors.ProtocolError, "write")
		}
	}
	return nil
}

// panic rejects States up to and including the nearest recovery point and
// returns the surviving State. Without a recovery point the run ends.
func (m *machine) panic() (any, error) {
	for m.s.parent != nil {
		rejected := m.s
		p, err := rejected.reject()
		if err != nil {
			return nil, err
		}
		m.s = p
		if rejected.recover {
			m.log.Debug("recovered", "depth", p.depth)
			return p, nil
		}
	}
	m.log.Debug("panic", "step", m.step)
	if !m.opts.EmitEffects {
		err := errors.Newf(errors.PanicError, "strategy panicked without a recovery point")
		m.fail(errors.Augment(err, errors.Pos{Step: m.step, Verb: Panic.String()}))
		return nil, nil
	}
	m.emit()
	if !m.stopped && m.yield(tag.BuildEffect("panic", nil), nil) {
		m.done = true
	} else {
		m.stopped = true
	}
	return nil, nil
}

func (m *machine) emit() {
	if m.s.depth > 0 {
		return
	}
	tags := m.s.flush()
	if len(tags) > 0 {
		m.log.Debug("emit", "count", len(tags))
	}
	for _, t := range tags {
		if !m.yield(t, nil) {
			m.stopped = true
			return
		}
	}
}

func (m *machine) fail(err error) {
	m.log.LogAttrs(context.Background(), slog.LevelDebug, "fail", slog.String("err", err.Error()))
	m.yield(nil, err)
	m.stopped = true
}
