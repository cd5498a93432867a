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
	"maps"
	"slices"
	"strings"

	"github.com/mpvl/unique"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/tag"
)

// A Node is a fragment or node of the tree, or a stub standing in for a
// gap or null.
//
// Only open nodes are mutable, and only by the State that owns them. A
// State that needs to modify a node owned by an ancestor State first
// branches it. Branching copies containers, not the nodes they refer to:
// properties only ever refer to finished nodes, which are immutable.
type Node struct {
	ctx  *Context
	path *Path

	open  tag.Tag
	close tag.Tag

	children   []Child
	properties map[string]Property
	names      []string

	unbound  map[string]bool
	resolver *Resolver

	owner  *State
	origin *Node
}

// A Child is an element of a node's children: either one of its own tags
// or an embedded trivia or escape node.
type Child struct {
	Tag  tag.Tag
	Node *Node
}

// A Property is the value of a named slot of a node.
type Property struct {
	Reference *tag.Reference
	Nodes     []*Node
}

// Node returns the value of a singular property, or nil.
func (p Property) Node() *Node {
	if len(p.Nodes) == 0 {
		return nil
	}
	return p.Nodes[len(p.Nodes)-1]
}

// IsArray reports whether p is array-valued.
func (p Property) IsArray() bool {
	return p.Reference != nil && p.Reference.IsArray
}

func newNode(c *Context, path *Path, open tag.Tag, owner *State) *Node {
	n := &Node{
		ctx:        c,
		path:       path,
		open:       open,
		children:   []Child{{Tag: open}},
		properties: map[string]Property{},
		unbound:    map[string]bool{},
		resolver:   newResolver(),
		owner:      owner,
	}
	for _, k := range tag.UnboundKeys(open) {
		n.unbound[k] = true
	}
	return n
}

// newStub returns a finished node that stands for the gap or null t.
func newStub(c *Context, path *Path, t tag.Tag) *Node {
	return &Node{
		ctx:        c,
		path:       path,
		open:       t,
		close:      t,
		children:   []Child{{Tag: t}},
		properties: map[string]Property{},
		resolver:   newResolver(),
	}
}

// Context returns the context in which n was built.
func (n *Node) Context() *Context { return n.ctx }

// Path returns the path at which n was opened.
func (n *Node) Path() *Path { return n.path }

// OpenTag returns the opener of n.
func (n *Node) OpenTag() tag.Tag { return n.open }

// CloseTag returns the closer of n, or nil while n is open.
func (n *Node) CloseTag() tag.Tag { return n.close }

// Flags returns the flags of n.
func (n *Node) Flags() tag.Flags { return tag.FlagsOf(n.open) }

// Attributes returns the attributes of n.
func (n *Node) Attributes() tag.Attributes { return tag.AttributesOf(n.open) }

// Type returns the type of a node, or "" for fragments and stubs.
func (n *Node) Type() string {
	if o, ok := n.open.(*tag.OpenNode); ok {
		return o.Type
	}
	return ""
}

// Language returns the language of a node, or "".
func (n *Node) Language() string {
	if o, ok := n.open.(*tag.OpenNode); ok {
		return o.Language
	}
	return ""
}

// IsFragment reports whether n is a fragment.
func (n *Node) IsFragment() bool {
	_, ok := n.open.(*tag.OpenFragment)
	return ok
}

// IsStub reports whether n stands for a gap or null.
func (n *Node) IsStub() bool {
	switch n.open.(type) {
	case *tag.Gap, *tag.Null:
		return true
	}
	return false
}

// IsToken reports whether n may contain literals.
func (n *Node) IsToken() bool { return n.Flags().Token }

// Resolver returns the reference bookkeeping of n.
func (n *Node) Resolver() *Resolver { return n.resolver }

// Children returns the tags of n and its embedded nodes, in order.
func (n *Node) Children() []Child { return slices.Clip(n.children) }

// Property returns the value of the named property.
func (n *Node) Property(name string) (Property, bool) {
	p, ok := n.properties[name]
	return p, ok
}

// PropertyNames returns the property names of n in the order in which they
// were first referenced.
func (n *Node) PropertyNames() []string { return slices.Clone(n.names) }

// UnboundAttributes returns the sorted keys of the declared attributes of
// n that are still unbound.
func (n *Node) UnboundAttributes() []string {
	keys := slices.Collect(maps.Keys(n.unbound))
	unique.Strings(&keys)
	return keys
}

// Text returns the source text of n: all literals from its opener through
// its closer.
func (n *Node) Text() string {
	if n.IsStub() || n.close == nil {
		return ""
	}
	return n.ctx.Text(n.open, n.close)
}

// Cooked returns the cooked text of n. See Context.Cooked.
func (n *Node) Cooked() string {
	if n.IsStub() || n.close == nil {
		return ""
	}
	return n.ctx.Cooked(n.open, n.close)
}

func (n *Node) push(t tag.Tag) {
	n.children = append(n.children, Child{Tag: t})
}

func (n *Node) embed(child *Node) {
	n.children = append(n.children, Child{Node: child})
}

// record stores child as the value of the slot named by ref: a singular
// slot is overwritten, an array slot is appended to.
func (n *Node) record(ref *tag.Reference, child *Node) {
	p, ok := n.properties[ref.Name]
	if !ok {
		p.Reference = ref
		n.names = append(n.names, ref.Name)
	}
	if ref.IsArray {
		p.Nodes = append(p.Nodes, child)
	} else {
		p.Nodes = []*Node{child}
	}
	n.properties[ref.Name] = p
}

// ensureArray makes sure the array slot named by ref exists.
func (n *Node) ensureArray(ref *tag.Reference) {
	if _, ok := n.properties[ref.Name]; ok {
		return
	}
	n.properties[ref.Name] = Property{Reference: ref}
	n.names = append(n.names, ref.Name)
}

// unrecord removes child, which must be the last value recorded, from the
// slot named by ref.
func (n *Node) unrecord(ref *tag.Reference, child *Node) bool {
	p, ok := n.properties[ref.Name]
	if !ok || p.Node() != child {
		return false
	}
	p.Nodes = slices.Clip(p.Nodes[:len(p.Nodes)-1])
	n.properties[ref.Name] = p
	return true
}

// bindAttribute binds the declared attribute key of n. If value is not nil,
// the opener of n is replaced by a new tag carrying the attribute; the old
// and new tags are returned so that the caller can update the stream.
func (n *Node) bindAttribute(key string, value any) (old, new tag.Tag, err error) {
	if !n.unbound[key] {
		return nil, nil, errors.Newf(errors.UnknownAttributeError,
			"%v has no unbound attribute %q", n.open, key)
	}
	open, ok := n.open.(*tag.OpenNode)
	if !ok {
		return nil, nil, errors.Newf(errors.ProtocolError,
			"cannot bind attribute %q of %v", key, n.open)
	}
	switch key {
	case "span":
		return nil, nil, errors.Newf(errors.TooLateError,
			"attribute %q of %v is fixed when the node is opened", key, n.open)
	case "balancedSpan":
		return nil, nil, errors.Newf(errors.ProtocolError,
			"binding attribute %q is not supported", key)
	}

	delete(n.unbound, key)
	if value == nil {
		return nil, nil, nil
	}
	bound := tag.WithAttribute(open, key, value)
	n.open = bound
	// children may share its array with the node n was branched from.
	n.children = slices.Clone(n.children)
	n.children[0] = Child{Tag: bound}
	return open, bound, nil
}

// checkClose reports whether t may close n.
func (n *Node) checkClose(t tag.Tag) error {
	if len(n.unbound) > 0 {
		return errors.Newf(errors.UnboundAttributesError,
			"cannot close %v: attributes %s are unbound",
			n.open, strings.Join(n.UnboundAttributes(), ", "))
	}
	switch x := t.(type) {
	case *tag.CloseFragment:
		if n.IsFragment() {
			return nil
		}
	case *tag.CloseNode:
		open, ok := n.open.(*tag.OpenNode)
		if !ok {
			break
		}
		if x.Type != "" && x.Type != open.Type {
			break
		}
		if x.Language != "" && open.Language != "" && x.Language != open.Language {
			break
		}
		return nil
	}
	return errors.Newf(errors.TypeMismatchError, "%v does not match %v", t, n.open)
}

// finish closes n with t, which must have passed checkClose.
func (n *Node) finish(t tag.Tag) {
	n.close = t
	n.push(t)
}

// branch returns a copy of n that shares all finished substructure.
func (n *Node) branch() *Node {
	props := maps.Clone(n.properties)
	for k, p := range props {
		p.Nodes = slices.Clip(p.Nodes)
		props[k] = p
	}
	return &Node{
		ctx:        n.ctx,
		path:       n.path,
		open:       n.open,
		close:      n.close,
		children:   slices.Clip(n.children),
		properties: props,
		names:      slices.Clip(n.names),
		unbound:    maps.Clone(n.unbound),
		resolver:   n.resolver.branch(),
		origin:     n,
	}
}

// accept replaces the state of n with that of child, a branch of n.
func (n *Node) accept(child *Node) {
	n.open = child.open
	n.close = child.close
	n.children = child.children
	n.properties = child.properties
	n.names = child.names
	n.unbound = child.unbound
	n.resolver.accept(child.resolver)
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.open.String()
}
