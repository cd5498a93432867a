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

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/tag"
)

// Status describes the position of a State in the branch stack.
type Status uint8

const (
	// Active is the status of the innermost State.
	Active Status = iota
	// Branched is the status of a State with a pending trial.
	Branched
	// Accepted is the terminal status of a State merged into its parent.
	Accepted
	// Rejected is the terminal status of a discarded State.
	Rejected
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Branched:
		return "branched"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// A State is one frame of speculative construction.
//
// Each State owns the nodes it has opened or modified. A State that needs to
// modify a node owned by one of its ancestors branches the node first and
// keeps the copy in its overlay, so that rejecting the State leaves the
// ancestors untouched.
type State struct {
	ctx    *Context
	parent *State
	depth  int

	path   *Path
	node   *Node
	result tag.Tag

	held        *Node
	expressions []*Node

	// nodes maps paths to the nodes this State owns. A nil entry hides the
	// node an ancestor holds for the same path.
	nodes map[*Path]*Node

	// undo reverts, in reverse order, the splices made by attribute binding.
	undo []func()

	recover bool
	status  Status

	// emitted is the last tag yielded. Only used by the root State.
	emitted tag.Tag
}

func newState(c *Context, expressions []*Node) *State {
	return &State{
		ctx:         c,
		result:      c.start,
		expressions: slices.Clip(expressions),
		nodes:       map[*Path]*Node{},
		emitted:     c.start,
	}
}

// Context returns the linkage store shared by all States of a run.
func (s *State) Context() *Context { return s.ctx }

// Parent returns the State s was branched from, or nil for the root.
func (s *State) Parent() *State { return s.parent }

// Depth reports the number of enclosing States.
func (s *State) Depth() int { return s.depth }

// Path returns the current path, or nil before the document is opened and
// after it is closed.
func (s *State) Path() *Path { return s.path }

// Node returns the innermost open node, or nil.
func (s *State) Node() *Node { return s.node }

// Result returns the last tag advanced.
func (s *State) Result() tag.Tag { return s.result }

// Held returns the node in the hold register, or nil.
func (s *State) Held() *Node { return s.held }

// Holding reports whether the hold register is occupied.
func (s *State) Holding() bool { return s.held != nil }

// Status reports the status of s.
func (s *State) Status() Status { return s.status }

// Recover reports whether a panic stops after rejecting s.
func (s *State) Recover() bool { return s.recover }

// NodeForPath returns the node at p as seen from s.
func (s *State) NodeForPath(p *Path) *Node { return s.nodeFor(p) }

// NodeForTag returns the node t belongs to: for finished nodes, gaps and
// nulls the node recorded in the Context, and for the opener of an open
// node that node as seen from s.
func (s *State) NodeForTag(t tag.Tag) *Node {
	if n, ok := s.ctx.nodes[t]; ok {
		return n
	}
	if n := s.nodeFor(s.ctx.paths[t]); n != nil && n.open == t {
		return n
	}
	return nil
}

// PathForTag returns the path t was advanced at.
func (s *State) PathForTag(t tag.Tag) *Path { return s.ctx.paths[t] }

func (s *State) nodeFor(p *Path) *Node {
	if p == nil {
		return nil
	}
	for x := s; x != nil; x = x.parent {
		if n, ok := x.nodes[p]; ok {
			return n
		}
	}
	return nil
}

// own returns a version of n that s may modify.
func (s *State) own(n *Node) *Node {
	if n == nil || n.owner == s {
		return n
	}
	b := n.branch()
	b.owner = s
	s.nodes[n.path] = b
	if s.node == n {
		s.node = b
	}
	return b
}

func (s *State) branch(recover bool) *State {
	b := &State{
		ctx:         s.ctx,
		parent:      s,
		depth:       s.depth + 1,
		path:        s.path,
		result:      s.result,
		held:        s.held,
		expressions: slices.Clip(s.expressions),
		nodes:       map[*Path]*Node{},
		recover:     recover,
	}
	b.node = s.node
	b.own(s.node)
	s.status = Branched
	return b
}

// accept merges s into its parent and returns the parent.
func (s *State) accept() (*State, error) {
	p := s.parent
	if p == nil {
		return nil, errors.Newf(errors.AcceptedRootError, "cannot accept the root state")
	}

	node := s.node
	for path, n := range s.nodes {
		switch {
		case n == nil:
			p.nodes[path] = nil
		case n.close == nil && n.origin != nil && n.origin.owner == p:
			n.origin.accept(n)
			p.nodes[path] = n.origin
			if n == node {
				node = n.origin
			}
		default:
			n.owner = p
			p.nodes[path] = n
		}
	}
	s.ctx.Assertf(node == nil || node.owner == p, "accepted node %v is not owned by the parent", node)

	p.path = s.path
	p.node = node
	p.result = s.result
	p.held = s.held
	p.expressions = s.expressions
	if p.depth > 0 {
		p.undo = append(p.undo, s.undo...)
	}
	p.status = Active
	s.status = Accepted
	return p, nil
}

// reject discards s and returns its parent. All tags advanced since the
// parent's result are unlinked. If s left a slot of the parent's node
// half-open or started naming a slot the parent does not know of, the slot
// is completed in the parent with a null.
func (s *State) reject() (*State, error) {
	p := s.parent
	if p == nil {
		return nil, errors.Newf(errors.RejectedRootError, "cannot reject the root state")
	}
	c := s.ctx

	for i := len(s.undo) - 1; i >= 0; i-- {
		s.undo[i]()
	}
	ref := s.abandonedReference()
	c.unlinkAfter(p.result)

	p.status = Active
	s.status = Rejected

	if _, ok := p.result.(*tag.Reference); ok {
		if err := p.advance(tag.BuildNull()); err != nil {
			return nil, err
		}
		return p, nil
	}
	n := p.node
	if ref == nil || n == nil || n.IsToken() || n.resolver.Has(ref.Name) {
		return p, nil
	}
	if err := p.advance(tag.BuildReference(ref.Name, ref.IsArray)); err != nil {
		return nil, err
	}
	if err := p.advance(tag.BuildNull()); err != nil {
		return nil, err
	}
	return p, nil
}

// abandonedReference returns the reference with which s started filling a
// slot of its parent's path, or nil. It must be called before the tags of s
// are unlinked.
func (s *State) abandonedReference() *tag.Reference {
	p := s.parent
	if p.path == nil {
		return nil
	}
	if s.path != nil && s.path.depth > p.path.depth {
		low, err := s.path.At(p.path.depth + 1)
		if err != nil || low.parent != p.path {
			return nil
		}
		return low.reference
	}
	ref, ok := s.ctx.next[p.result].(*tag.Reference)
	if !ok {
		return nil
	}
	if path := s.ctx.paths[ref]; path == nil || path.parent != p.path {
		return nil
	}
	return ref
}

// link appends t after the current result.
func (s *State) link(t tag.Tag, p *Path) error {
	if err := s.ctx.append(s.result, t); err != nil {
		return err
	}
	if p != nil {
		s.ctx.paths[t] = p
	}
	s.result = t
	return nil
}

// advance validates t against the current position and, if it is legal,
// links it into the stream and applies it to the tree.
func (s *State) advance(t tag.Tag) error {
	if t == nil {
		return errors.Newf(errors.ProtocolError, "cannot advance nil tag")
	}
	if s.ctx.Linked(t) {
		return errors.Newf(errors.DuplicateLinkError, "%v is already linked", t)
	}
	switch s.result.(type) {
	case *tag.Reference:
		switch t.(type) {
		case *tag.OpenNode, *tag.OpenFragment, *tag.Gap, *tag.Null, *tag.Array:
		default:
			return errors.Newf(errors.ProtocolError, "%v is not a valid target of reference %v", t, s.result)
		}
	case *tag.Shift:
		switch t.(type) {
		case *tag.OpenNode, *tag.OpenFragment:
		default:
			return errors.Newf(errors.ProtocolError, "%v cannot follow a shift", t)
		}
	}

	switch x := t.(type) {
	case *tag.Doctype:
		return s.advanceDoctype(x)
	case *tag.OpenFragment, *tag.OpenNode:
		return s.advanceOpen(x)
	case *tag.CloseFragment, *tag.CloseNode:
		return s.advanceClose(x)
	case *tag.Reference:
		return s.advanceReference(x)
	case *tag.Literal:
		return s.advanceLiteral(x)
	case *tag.Gap:
		return s.advanceGap(x)
	case *tag.Null:
		return s.advanceNull(x)
	case *tag.Array:
		return s.advanceArray(x)
	case *tag.Shift:
		return s.advanceShift(x)
	}
	return errors.Newf(errors.ProtocolError, "cannot advance %v", t)
}

func (s *State) advanceDoctype(t *tag.Doctype) error {
	if s.ctx.rootPath != nil {
		return errors.Newf(errors.ProtocolError, "%v must precede the document", t)
	}
	path := newRootPath()
	if err := s.link(t, path); err != nil {
		return err
	}
	s.setRootPath(path)
	s.path = path
	return nil
}

func (s *State) setRootPath(p *Path) {
	c := s.ctx
	c.rootPath = p
	if s.depth > 0 {
		s.undo = append(s.undo, func() { c.rootPath = nil })
	}
}

func (s *State) advanceOpen(t tag.Tag) error {
	c := s.ctx
	flags := tag.FlagsOf(t)

	if s.node != nil && s.node.IsToken() && !flags.Escape {
		return errors.Newf(errors.InvalidLocationError,
			"only escapes may be opened in token %v", s.node)
	}

	var path *Path
	switch s.result.(type) {
	case *tag.Reference, *tag.Shift:
		path = s.path
	default:
		switch _, fragment := t.(*tag.OpenFragment); {
		case s.node == nil:
			if tag.IsClose(s.result) {
				return errors.Newf(errors.ProtocolError, "cannot open %v: document already closed", t)
			}
			path = c.rootPath
			if path == nil {
				path = newRootPath()
			}
		case flags.Embedded():
			path = s.path.push(c, nil)
		case fragment && isOpenFragment(s.result):
			path = s.path.push(c, nil)
		default:
			return errors.Newf(errors.InvalidLocationError,
				"%v must follow a reference, a shift or a fragment opener", t)
		}
	}

	if err := s.link(t, path); err != nil {
		return err
	}
	if c.rootPath == nil {
		s.setRootPath(path)
	}
	n := newNode(c, path, t, s)
	s.nodes[path] = n
	s.node = n
	s.path = path
	return nil
}

func isOpenFragment(t tag.Tag) bool {
	_, ok := t.(*tag.OpenFragment)
	return ok
}

func (s *State) advanceClose(t tag.Tag) error {
	c := s.ctx
	n := s.node
	if n == nil {
		return errors.Newf(errors.ProtocolError, "%v closes no node", t)
	}
	if s.held != nil {
		return errors.Newf(errors.ProtocolError, "cannot close %v while holding %v", n, s.held)
	}
	if err := n.checkClose(t); err != nil {
		return err
	}
	if err := s.link(t, n.path); err != nil {
		return err
	}

	n = s.own(n)
	n.finish(t)
	c.nodes[n.open] = n
	c.nodes[t] = n
	c.pairs[n.open] = t
	c.pairs[t] = n.open

	parent := s.own(s.nodeFor(n.path.parent))
	if parent != nil {
		if ref := n.path.reference; ref != nil {
			parent.record(ref, n)
		} else {
			parent.embed(n)
		}
	}
	s.path = n.path.parent
	s.node = parent
	return nil
}

func (s *State) advanceReference(t *tag.Reference) error {
	n := s.node
	if n == nil || n.IsToken() {
		return errors.Newf(errors.InvalidLocationError, "reference %v must be inside a non-token node", t)
	}
	if t.HasGap && !n.Flags().HasGap {
		return errors.Newf(errors.ProtocolError, "gap reference %v in gapless node %v", t, n)
	}
	if err := n.resolver.check(t); err != nil {
		return err
	}
	path := s.path.push(s.ctx, t)
	if err := s.link(t, path); err != nil {
		return err
	}
	n = s.own(n)
	if err := n.resolver.consume(t); err != nil {
		return err
	}
	n.push(t)
	if t.IsArray {
		n.ensureArray(t)
	}
	s.path = path
	return nil
}

func (s *State) advanceLiteral(t *tag.Literal) error {
	n := s.node
	if n == nil || !n.IsToken() {
		return errors.Newf(errors.InvalidLiteralPlacementError, "literal %v must be inside a token", t)
	}
	if s.held != nil {
		return errors.Newf(errors.ProtocolError, "cannot advance literal %v while holding %v", t, s.held)
	}
	if err := s.link(t, s.path); err != nil {
		return err
	}
	s.own(n).push(t)
	return nil
}

// slot returns the reference of the slot the current result opened.
func (s *State) slot(t tag.Tag) (*tag.Reference, error) {
	ref, ok := s.result.(*tag.Reference)
	if !ok {
		return nil, errors.Newf(errors.ProtocolError, "%v must follow a reference", t)
	}
	return ref, nil
}

func (s *State) advanceGap(t *tag.Gap) error {
	ref, err := s.slot(t)
	if err != nil {
		return err
	}
	if s.held == nil && !s.node.Flags().HasGap {
		return errors.Newf(errors.ProtocolError, "%v in %v: node must allow gaps", t, s.node)
	}
	path := s.path
	if err := s.link(t, path); err != nil {
		return err
	}

	var target *Node
	switch {
	case s.held != nil:
		target = s.held
		s.held = nil
	case len(s.expressions) > 0:
		target = s.expressions[0]
		s.expressions = s.expressions[1:]
	}
	if target == nil {
		target = newStub(s.ctx, path, t)
	}
	s.ctx.nodes[t] = target

	n := s.own(s.node)
	n.push(t)
	n.record(ref, target)
	s.path = path.parent
	return nil
}

func (s *State) advanceNull(t *tag.Null) error {
	ref, err := s.slot(t)
	if err != nil {
		return err
	}
	path := s.path
	if err := s.link(t, path); err != nil {
		return err
	}
	stub := newStub(s.ctx, path, t)
	s.ctx.nodes[t] = stub

	n := s.own(s.node)
	n.push(t)
	if ref.IsArray {
		n.ensureArray(ref)
	} else {
		n.record(ref, stub)
	}
	s.path = path.parent
	return nil
}

func (s *State) advanceArray(t *tag.Array) error {
	ref, err := s.slot(t)
	if err != nil {
		return err
	}
	if !ref.IsArray {
		return errors.Newf(errors.ProtocolError, "%v must follow an array reference, not %v", t, ref)
	}
	path := s.path
	if err := s.link(t, path); err != nil {
		return err
	}
	n := s.own(s.node)
	n.push(t)
	n.ensureArray(ref)
	s.path = path.parent
	return nil
}

func (s *State) advanceShift(t *tag.Shift) error {
	c := s.ctx
	if _, ok := s.result.(*tag.CloseNode); !ok {
		return errors.Newf(errors.ProtocolError, "%v must follow a node closer", t)
	}
	finished := c.nodes[s.result]
	if finished == nil || !finished.Flags().Expression {
		return errors.Newf(errors.ProtocolError, "cannot shift %v: not an expression", finished)
	}
	if s.held != nil {
		return errors.Newf(errors.ProtocolError, "cannot shift %v while holding %v", finished, s.held)
	}
	ref := finished.path.reference
	if ref == nil || s.node == nil || s.nodeFor(finished.path.parent) != s.node {
		return errors.Newf(errors.ProtocolError, "cannot shift %v: not in a property", finished)
	}
	if err := s.link(t, finished.path); err != nil {
		return err
	}
	n := s.own(s.node)
	if !n.unrecord(ref, finished) {
		return errors.Newf(errors.ProtocolError, "cannot shift %v: not the last value of %q", finished, ref.Name)
	}
	n.push(t)
	s.nodes[finished.path] = nil
	s.held = finished
	s.path = finished.path
	return nil
}

// bindAttribute binds an attribute of the innermost open node and returns
// the node's current opener.
func (s *State) bindAttribute(key string, value any) (tag.Tag, error) {
	if s.node == nil {
		return nil, errors.Newf(errors.ProtocolError, "no node to bind attribute %q to", key)
	}
	n := s.own(s.node)
	old, bound, err := n.bindAttribute(key, value)
	if err != nil {
		return nil, err
	}
	if bound != nil {
		c := s.ctx
		c.replace(old, bound)
		if s.result == old {
			s.result = bound
		}
		if s.depth > 0 {
			s.undo = append(s.undo, func() { c.replace(bound, old) })
		}
	}
	return n.open, nil
}

// flush returns the tags that became visible since the last call. Tags are
// visible once they are linked at depth 0, up to the first opener of a node
// with unbound attributes.
func (s *State) flush() []tag.Tag {
	if s.depth > 0 {
		return nil
	}
	var out []tag.Tag
	for t := s.ctx.next[s.emitted]; t != nil && !s.gated(t); t = s.ctx.next[t] {
		out = append(out, t)
		s.emitted = t
	}
	return out
}

func (s *State) gated(t tag.Tag) bool {
	if _, ok := t.(*tag.OpenNode); !ok {
		return false
	}
	if _, ok := s.ctx.nodes[t]; ok {
		return false
	}
	n := s.nodeFor(s.ctx.paths[t])
	return n != nil && n.open == t && len(n.unbound) > 0
}

// finish checks that s is the unwound root State and records the root node.
func (s *State) finish() error {
	switch {
	case s.depth > 0:
		return errors.Newf(errors.UnwindError, "state stack is at depth %d", s.depth)
	case s.node != nil:
		return errors.Newf(errors.UnwindError, "path stack: %v is open", s.node)
	case s.held != nil:
		return errors.Newf(errors.UnwindError, "hold register: holding %v", s.held)
	}
	if s.ctx.rootPath != nil {
		s.ctx.root = s.nodeFor(s.ctx.rootPath)
	}
	return nil
}
