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

// A Context gives read access to the stream of a run. The zero value is
// not usable; see NewContext.
type Context struct{ c *vm.Context }

// NewContext returns a Context for a single run of Evaluate.
func NewContext() Context { return Context{vm.NewContext()} }

// ID returns a unique identifier of the run, as used in log output.
func (c Context) ID() string { return c.c.ID.String() }

// Next returns the tag following t, or nil.
func (c Context) Next(t tag.Tag) tag.Tag { return c.c.Next(t) }

// Prev returns the tag preceding t, or nil for the first tag.
func (c Context) Prev(t tag.Tag) tag.Tag {
	p := c.c.Prev(t)
	if p == c.c.Start() {
		return nil
	}
	return p
}

// Tags returns the tags from start through end. A nil start or end denotes
// the first or last tag of the stream.
func (c Context) Tags(start, end tag.Tag) iter.Seq[tag.Tag] { return c.c.Tags(start, end) }

// TagsReverse returns the tags from end back through start.
func (c Context) TagsReverse(start, end tag.Tag) iter.Seq[tag.Tag] {
	return c.c.TagsReverse(start, end)
}

// OwnTags returns the tags strictly between start and end, skipping nested
// fragments and nodes.
func (c Context) OwnTags(start, end tag.Tag) iter.Seq[tag.Tag] {
	return c.c.OwnTags(start, end)
}

// Text returns the literals from start through end.
func (c Context) Text(start, end tag.Tag) string { return c.c.Text(start, end) }

// Cooked returns the text strictly between start and end, with escapes
// replaced by their cooked value.
func (c Context) Cooked(start, end tag.Tag) string { return c.c.Cooked(start, end) }

// PathFor returns the path at which t was advanced.
func (c Context) PathFor(t tag.Tag) Path { return Path{c.c.PathFor(t)} }

// NodeFor returns the finished node, gap or null t belongs to.
func (c Context) NodeFor(t tag.Tag) Node { return Node{c.c.NodeFor(t)} }

// Pair returns the closer of a finished node's opener and vice versa.
func (c Context) Pair(t tag.Tag) tag.Tag { return c.c.Pair(t) }

// Root returns the root node once a run has completed.
func (c Context) Root() Node { return Node{c.c.Root()} }

// A State is a frame of speculative construction.
type State struct{ s *vm.State }

// Depth reports the number of enclosing speculative States.
func (s State) Depth() int { return s.s.Depth() }

// Result returns the last tag advanced.
func (s State) Result() tag.Tag { return s.s.Result() }

// Path returns the current path.
func (s State) Path() Path { return Path{s.s.Path()} }

// Node returns the innermost open node.
func (s State) Node() Node { return Node{s.s.Node()} }

// Holding reports whether a shifted node is held.
func (s State) Holding() bool { return s.s.Holding() }

// Status reports whether s is active, branched, accepted or rejected.
func (s State) Status() string { return s.s.Status().String() }

// Context returns the Context of s.
func (s State) Context() Context { return Context{s.s.Context()} }

// NodeForTag returns the node t belongs to as seen from s.
func (s State) NodeForTag(t tag.Tag) Node { return Node{s.s.NodeForTag(t)} }

// PathForTag returns the path at which t was advanced.
func (s State) PathForTag(t tag.Tag) Path { return Path{s.s.PathForTag(t)} }

// NodeForPath returns the node at p as seen from s.
func (s State) NodeForPath(p Path) Node { return Node{s.s.NodeForPath(p.p)} }

// A Path is a position in the nesting of a tree. The zero Path, returned
// where no path exists, reports depth -1 and has no ancestors.
type Path struct{ p *vm.Path }

// Exists reports whether p denotes a path.
func (p Path) Exists() bool { return p.p != nil }

// Depth reports the number of ancestors of p.
func (p Path) Depth() int {
	if p.p == nil {
		return -1
	}
	return p.p.Depth()
}

// Parent returns the enclosing path.
func (p Path) Parent() Path {
	if p.p == nil {
		return Path{}
	}
	return Path{p.p.Parent()}
}

// Reference returns the reference that created p, or nil.
func (p Path) Reference() *tag.Reference {
	if p.p == nil {
		return nil
	}
	return p.p.Reference()
}

// At returns the ancestor of p at the given depth.
func (p Path) At(depth int) (Path, error) {
	if p.p == nil {
		return Path{}, errors.Newf(errors.InvalidDepthError, "no path to find depth %d in", depth)
	}
	q, err := p.p.At(depth)
	return Path{q}, err
}

// Parents returns the ancestors of p, nearest first.
func (p Path) Parents(includeSelf bool) iter.Seq[Path] {
	return func(yield func(Path) bool) {
		if p.p == nil {
			return
		}
		for q := range p.p.Parents(includeSelf) {
			if !yield(Path{q}) {
				return
			}
		}
	}
}

func (p Path) String() string {
	if p.p == nil {
		return "<nil>"
	}
	return p.p.String()
}

// A Node is a fragment or node of a tree. The zero Node, returned where no
// node exists, behaves as an empty node without tags.
type Node struct{ n *vm.Node }

// Exists reports whether n denotes a node.
func (n Node) Exists() bool { return n.n != nil }

// Type returns the type of a node, or "" for fragments, gaps and nulls.
func (n Node) Type() string {
	if n.n == nil {
		return ""
	}
	return n.n.Type()
}

// Language returns the language of a node.
func (n Node) Language() string {
	if n.n == nil {
		return ""
	}
	return n.n.Language()
}

// Flags returns the flags of the node's opener.
func (n Node) Flags() tag.Flags {
	if n.n == nil {
		return tag.Flags{}
	}
	return n.n.Flags()
}

// Attributes returns the attributes of the node's opener.
func (n Node) Attributes() tag.Attributes {
	if n.n == nil {
		return nil
	}
	return n.n.Attributes()
}

// UnboundAttributes returns the sorted keys of unbound attributes.
func (n Node) UnboundAttributes() []string {
	if n.n == nil {
		return nil
	}
	return n.n.UnboundAttributes()
}

// OpenTag returns the opener of n. For gaps and nulls this is the gap or
// null itself.
func (n Node) OpenTag() tag.Tag {
	if n.n == nil {
		return nil
	}
	return n.n.OpenTag()
}

// CloseTag returns the closer of n, or nil while n is open.
func (n Node) CloseTag() tag.Tag {
	if n.n == nil {
		return nil
	}
	return n.n.CloseTag()
}

// IsFragment reports whether n is a fragment.
func (n Node) IsFragment() bool { return n.n != nil && n.n.IsFragment() }

// IsStub reports whether n stands for a gap or null.
func (n Node) IsStub() bool { return n.n != nil && n.n.IsStub() }

// Path returns the path at which n was opened.
func (n Node) Path() Path {
	if n.n == nil {
		return Path{}
	}
	return Path{n.n.Path()}
}

// Property returns the value of a singular property, or the last element
// of an array property.
func (n Node) Property(name string) (Node, bool) {
	if n.n == nil {
		return Node{}, false
	}
	p, ok := n.n.Property(name)
	if !ok {
		return Node{}, false
	}
	return Node{p.Node()}, true
}

// PropertyNodes returns the elements of an array property, or the value of
// a singular one.
func (n Node) PropertyNodes(name string) []Node {
	if n.n == nil {
		return nil
	}
	p, _ := n.n.Property(name)
	nodes := make([]Node, len(p.Nodes))
	for i, x := range p.Nodes {
		nodes[i] = Node{x}
	}
	return nodes
}

// PropertyNames returns the property names in order of first reference.
func (n Node) PropertyNames() []string {
	if n.n == nil {
		return nil
	}
	return n.n.PropertyNames()
}

// Children returns the node's own tags and embedded nodes, in order.
// Embedded nodes are yielded with a nil tag.
func (n Node) Children() iter.Seq2[tag.Tag, Node] {
	return func(yield func(tag.Tag, Node) bool) {
		if n.n == nil {
			return
		}
		for _, c := range n.n.Children() {
			var x Node
			if c.Node != nil {
				x = Node{c.Node}
			}
			if !yield(c.Tag, x) {
				return
			}
		}
	}
}

// Text returns the source text of a finished node.
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	return n.n.Text()
}

// Cooked returns the cooked text of a finished node.
func (n Node) Cooked() string {
	if n.n == nil {
		return ""
	}
	return n.n.Cooked()
}

// Tree returns an indented rendering of n and its descendants.
func (n Node) Tree() string {
	if n.n == nil {
		return ""
	}
	return n.n.Tree()
}

func (n Node) String() string { return n.n.String() }
