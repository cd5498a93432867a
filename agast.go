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

// Package agast builds streams of tags, and the trees they describe, under
// the direction of a grammar-specific strategy.
//
// A strategy issues instructions one at a time through a Machine: it
// advances tags, binds attributes, and brackets speculative work with
// Branch and Accept or Reject. Evaluate interprets the instructions and
// yields each tag once no enclosing branch can still be rejected and its
// node, if it opens one, has all its attributes bound.
//
// A minimal use looks like
//
//	c := agast.NewContext()
//	tags, err := agast.Run(c, agast.Passthrough(
//		tag.BuildOpenFragment(tag.Flags{}, nil),
//		tag.BuildCloseFragment(),
//	))
//
// after which c.Root() holds the finished tree.
package agast

import (
	"io"
	"iter"
	"log/slog"

	"cuelabs.dev/go/agast/internal/core/vm"
	"cuelabs.dev/go/agast/tag"
)

// Option configures a run of Evaluate.
type Option struct {
	apply func(o *vm.Options)
}

// WithExpressions seeds the queue from which gaps are filled, in order. A
// node that does not exist fills its gap with a stub.
func WithExpressions(nodes ...Node) Option {
	return Option{func(o *vm.Options) {
		for _, n := range nodes {
			o.Expressions = append(o.Expressions, n.n)
		}
	}}
}

// EmitEffects interleaves effect tags for writes and panics with the
// output. A panic without a recovery point then ends the output with a
// panic effect instead of failing.
func EmitEffects() Option {
	return Option{func(o *vm.Options) {
		o.EmitEffects = true
	}}
}

// WithLogger sends debug output to l.
func WithLogger(l *slog.Logger) Option {
	return Option{func(o *vm.Options) {
		o.Logger = l
	}}
}

// WithStdout sets the destination of writes that are not emitted as
// effects.
func WithStdout(w io.Writer) Option {
	return Option{func(o *vm.Options) {
		o.Stdout = w
	}}
}

// Evaluate runs strategy against c and returns the finalized tags. The
// sequence ends early with an error if the strategy violates the
// construction protocol or returns an error itself.
//
// A Context can be evaluated only once.
func Evaluate(c Context, strategy Strategy, opts ...Option) iter.Seq2[tag.Tag, error] {
	var o vm.Options
	for _, opt := range opts {
		opt.apply(&o)
	}
	return vm.Evaluate(c.c, &driver{strategy: strategy}, o)
}

// Run evaluates strategy and collects its output. On failure, it returns
// the tags emitted before the failure along with the error.
func Run(c Context, strategy Strategy, opts ...Option) ([]tag.Tag, error) {
	var tags []tag.Tag
	for t, err := range Evaluate(c, strategy, opts...) {
		if err != nil {
			return tags, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}
