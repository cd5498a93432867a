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

// Package vm implements the agast evaluator: a virtual machine that builds
// a stream of tags, and a tree of nodes derived from it, from instructions
// issued by a strategy. Construction is speculative: a strategy may branch,
// and later accept or reject everything built since.
//
// The main types are
//
//   - Context: the linkage store that orders tags and associates them with
//     paths and finished nodes.
//   - Path: a cursor over nesting depth with skip pointers for fast
//     ancestor queries.
//   - Node: a fragment or node under construction.
//   - Resolver: the per-node bookkeeping of property names.
//   - State: one frame of speculation.
//
// Evaluate drives a strategy and yields the tags that are no longer
// speculative.
package vm

import (
	"iter"
	"strings"

	"github.com/google/uuid"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/internal/agastdebug"
	"cuelabs.dev/go/agast/tag"
)

// A Context is the linkage store of a single run. It orders tags in a
// doubly linked list without modifying them, and associates tags with the
// paths they were advanced at and the nodes they finished.
//
// A Context is shared by all States of a run and is never branched.
type Context struct {
	// ID identifies the run in log output.
	ID uuid.UUID

	start tag.Tag

	next map[tag.Tag]tag.Tag
	prev map[tag.Tag]tag.Tag

	// paths maps every linked tag to the path at which it was advanced.
	paths map[tag.Tag]*Path

	// nodes maps the tags of finished nodes, and gaps and nulls, to the
	// node they denote.
	nodes map[tag.Tag]*Node

	// pairs maps the opener of a finished node to its closer and back.
	pairs map[tag.Tag]tag.Tag

	rootPath *Path
	root     *Node

	skipIndex bool
	strict    bool
}

// NewContext returns a new, empty Context.
func NewContext() *Context {
	start := tag.BuildStart()
	return &Context{
		ID:        uuid.New(),
		start:     start,
		next:      map[tag.Tag]tag.Tag{},
		prev:      map[tag.Tag]tag.Tag{},
		paths:     map[tag.Tag]*Path{},
		nodes:     map[tag.Tag]*Node{},
		pairs:     map[tag.Tag]tag.Tag{},
		skipIndex: true,
	}
}

// configure applies the AGAST_DEBUG flags, which must have been
// initialized.
func (c *Context) configure() {
	c.skipIndex = agastdebug.Flags.SkipIndex
	c.strict = agastdebug.Flags.Strict
}

// Start returns the sentinel that precedes the first tag of the stream.
func (c *Context) Start() tag.Tag { return c.start }

// Next returns the tag following t, or nil.
func (c *Context) Next(t tag.Tag) tag.Tag { return c.next[t] }

// Prev returns the tag preceding t, or nil. The first tag of a stream is
// preceded by Start.
func (c *Context) Prev(t tag.Tag) tag.Tag { return c.prev[t] }

// Linked reports whether t is part of the stream.
func (c *Context) Linked(t tag.Tag) bool {
	_, ok := c.prev[t]
	return ok || t == c.start
}

// PathFor returns the path at which t was advanced.
func (c *Context) PathFor(t tag.Tag) *Path { return c.paths[t] }

// NodeFor returns the finished node, gap or null that t belongs to. Nodes
// that are still open are only known to States; see State.NodeForTag.
func (c *Context) NodeFor(t tag.Tag) *Node { return c.nodes[t] }

// Pair returns the closer of a finished node's opener and vice versa.
func (c *Context) Pair(t tag.Tag) tag.Tag { return c.pairs[t] }

// Root returns the root node of a completed run, or nil.
func (c *Context) Root() *Node { return c.root }

// append links t after prev.
func (c *Context) append(prev, t tag.Tag) error {
	if c.Linked(t) {
		return errors.Newf(errors.DuplicateLinkError, "%v is already linked", t)
	}
	if n, ok := c.next[prev]; ok {
		return errors.Newf(errors.DuplicateLinkError, "%v is already followed by %v", prev, n)
	}
	c.prev[t] = prev
	c.next[prev] = t
	return nil
}

// unlinkAfter removes all tags following t from the stream, together with
// their associations. It returns the number of tags removed.
func (c *Context) unlinkAfter(t tag.Tag) int {
	n := 0
	x := c.next[t]
	delete(c.next, t)
	for x != nil {
		next := c.next[x]
		c.forget(x)
		x = next
		n++
	}
	return n
}

func (c *Context) forget(t tag.Tag) {
	delete(c.prev, t)
	delete(c.next, t)
	delete(c.paths, t)
	delete(c.nodes, t)
	if p, ok := c.pairs[t]; ok {
		delete(c.pairs, t)
		if c.pairs[p] == t {
			delete(c.pairs, p)
			// The opener may precede the unlinked range, but the node it
			// finished does not survive.
			delete(c.nodes, p)
		}
	}
}

// replace splices t into the stream position of old. old is no longer
// reachable afterwards.
func (c *Context) replace(old, t tag.Tag) {
	p := c.prev[old]
	c.prev[t] = p
	c.next[p] = t
	if n, ok := c.next[old]; ok {
		c.next[t] = n
		c.prev[n] = t
	}
	delete(c.prev, old)
	delete(c.next, old)
	if path, ok := c.paths[old]; ok {
		c.paths[t] = path
		delete(c.paths, old)
	}
}

// Tags returns the tags from start through end, inclusive. A nil start
// denotes the first tag of the stream; a nil end denotes the last.
func (c *Context) Tags(start, end tag.Tag) iter.Seq[tag.Tag] {
	if start == nil {
		start = c.next[c.start]
	}
	return func(yield func(tag.Tag) bool) {
		for t := start; t != nil; t = c.next[t] {
			if !yield(t) || t == end {
				return
			}
		}
	}
}

// TagsReverse returns the tags from end back to start, inclusive. A nil
// start denotes the first tag of the stream.
func (c *Context) TagsReverse(start, end tag.Tag) iter.Seq[tag.Tag] {
	return func(yield func(tag.Tag) bool) {
		for t := end; t != nil && t != c.start; t = c.prev[t] {
			if !yield(t) || t == start {
				return
			}
		}
	}
}

// OwnTags returns the tags strictly between start and end, skipping over
// nested fragments and nodes. For the opener and closer of a node these are
// the tags that belong to the node itself.
func (c *Context) OwnTags(start, end tag.Tag) iter.Seq[tag.Tag] {
	return func(yield func(tag.Tag) bool) {
		for t := c.next[start]; t != nil && t != end; t = c.next[t] {
			if tag.IsOpen(t) {
				if closer, ok := c.pairs[t]; ok {
					t = closer
					continue
				}
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Text returns the concatenated literals from start through end.
func (c *Context) Text(start, end tag.Tag) string {
	var b strings.Builder
	for t := range c.Tags(start, end) {
		if l, ok := t.(*tag.Literal); ok {
			b.WriteString(l.Value)
		}
	}
	return b.String()
}

// Cooked returns the text of the tags strictly between start and end,
// where escape nodes contribute the value of their "cooked" attribute and
// other nested nodes contribute nothing.
func (c *Context) Cooked(start, end tag.Tag) string {
	var b strings.Builder
	for t := c.next[start]; t != nil && t != end; t = c.next[t] {
		switch x := t.(type) {
		case *tag.Literal:
			b.WriteString(x.Value)
		case *tag.OpenNode, *tag.OpenFragment:
			if f := tag.FlagsOf(x); f.Escape {
				if s, ok := tag.AttributesOf(x)["cooked"].(string); ok {
					b.WriteString(s)
				}
			}
			if closer, ok := c.pairs[x]; ok {
				t = closer
			}
		}
	}
	return b.String()
}
