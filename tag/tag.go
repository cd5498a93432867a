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

// Package tag defines the immutable events that make up an agast stream.
//
// Tags carry no links to each other. Their order, and their association with
// tree nodes, is recorded externally by the evaluator. A tag is identified by
// its address: two tags with the same contents are different tags.
//
// Tags must not be modified after they are built. Use the Build functions in
// this package to create them.
package tag

// A Kind identifies the variant of a Tag.
type Kind uint8

const (
	StartKind Kind = iota
	DoctypeKind
	OpenFragmentKind
	CloseFragmentKind
	OpenNodeKind
	CloseNodeKind
	ReferenceKind
	LiteralKind
	GapKind
	NullKind
	ArrayKind
	ShiftKind
	EffectKind
)

var kindNames = [...]string{
	StartKind:         "Start",
	DoctypeKind:       "Doctype",
	OpenFragmentKind:  "OpenFragmentTag",
	CloseFragmentKind: "CloseFragmentTag",
	OpenNodeKind:      "OpenNodeTag",
	CloseNodeKind:     "CloseNodeTag",
	ReferenceKind:     "Reference",
	LiteralKind:       "Literal",
	GapKind:           "Gap",
	NullKind:          "Null",
	ArrayKind:         "Array",
	ShiftKind:         "Shift",
	EffectKind:        "Effect",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// A Tag is a single event in a stream.
type Tag interface {
	Kind() Kind
	String() string

	isTag()
}

// Flags qualify fragments and nodes.
type Flags struct {
	// Token marks a node that may contain literals.
	Token bool
	// Escape marks an escape sequence inside a token. Escape nodes are
	// embedded in their parent rather than stored in a named property.
	Escape bool
	// Trivia marks content such as whitespace or comments. Trivia is
	// embedded in its parent rather than stored in a named property.
	Trivia bool
	// Expression marks a node that may be shifted into the hold register.
	Expression bool
	// Intrinsic marks a node whose text is fully determined by its type.
	Intrinsic bool
	// HasGap marks a node that may contain gaps.
	HasGap bool
}

// Embedded reports whether a node with these flags is recorded as an
// embedded child instead of a named property.
func (f Flags) Embedded() bool { return f.Trivia || f.Escape }

// Attributes holds the attributes of a doctype, fragment or node. An
// attribute whose value is Unbound has been declared but not yet bound.
type Attributes map[string]any

type unbound struct{}

func (unbound) String() string { return "?" }

// Unbound is the value of a declared attribute that is yet to be bound.
var Unbound any = unbound{}

// header forces tags to have non-zero size so that each built tag has a
// distinct address.
type header struct{ _ byte }

func (header) isTag() {}

// Start is the sentinel that precedes the first tag of every stream. It is
// never emitted.
type Start struct{ header }

// Doctype opens a document.
type Doctype struct {
	header
	Attributes Attributes
}

// OpenFragment opens an anonymous container.
type OpenFragment struct {
	header
	Flags      Flags
	Attributes Attributes
}

// CloseFragment closes the innermost fragment.
type CloseFragment struct{ header }

// OpenNode opens a typed node.
type OpenNode struct {
	header
	Flags      Flags
	Language   string
	Type       string
	Attributes Attributes
}

// CloseNode closes the innermost node. An empty Type matches any open
// node.
type CloseNode struct {
	header
	Language string
	Type     string
}

// Reference names the slot of the enclosing node that the next node, gap
// or null fills.
type Reference struct {
	header
	Name    string
	IsArray bool
	HasGap  bool
}

// Literal holds raw text of a token node.
type Literal struct {
	header
	Value string
}

// Gap is a deferred child slot.
type Gap struct{ header }

// Null records that a slot is empty.
type Null struct{ header }

// Array initializes an array-valued slot.
type Array struct{ header }

// Shift suspends the most recently closed expression node so that
// construction can resume inside its slot.
type Shift struct{ header }

// Effect is a side-channel event. It is never linked into a stream.
type Effect struct {
	header
	Name  string
	Value any
}

func (*Start) Kind() Kind         { return StartKind }
func (*Doctype) Kind() Kind       { return DoctypeKind }
func (*OpenFragment) Kind() Kind  { return OpenFragmentKind }
func (*CloseFragment) Kind() Kind { return CloseFragmentKind }
func (*OpenNode) Kind() Kind      { return OpenNodeKind }
func (*CloseNode) Kind() Kind     { return CloseNodeKind }
func (*Reference) Kind() Kind     { return ReferenceKind }
func (*Literal) Kind() Kind       { return LiteralKind }
func (*Gap) Kind() Kind           { return GapKind }
func (*Null) Kind() Kind          { return NullKind }
func (*Array) Kind() Kind         { return ArrayKind }
func (*Shift) Kind() Kind         { return ShiftKind }
func (*Effect) Kind() Kind        { return EffectKind }

// IsOpen reports whether t opens a fragment or node.
func IsOpen(t Tag) bool {
	switch t.(type) {
	case *OpenFragment, *OpenNode:
		return true
	}
	return false
}

// IsClose reports whether t closes a fragment or node.
func IsClose(t Tag) bool {
	switch t.(type) {
	case *CloseFragment, *CloseNode:
		return true
	}
	return false
}

// FlagsOf returns the flags of an opening tag, or the zero value.
func FlagsOf(t Tag) Flags {
	switch x := t.(type) {
	case *OpenFragment:
		return x.Flags
	case *OpenNode:
		return x.Flags
	}
	return Flags{}
}

// AttributesOf returns the attributes of t, or nil.
func AttributesOf(t Tag) Attributes {
	switch x := t.(type) {
	case *Doctype:
		return x.Attributes
	case *OpenFragment:
		return x.Attributes
	case *OpenNode:
		return x.Attributes
	}
	return nil
}

// UnboundKeys returns the declared but unbound attribute keys of t in
// unspecified order.
func UnboundKeys(t Tag) []string {
	var keys []string
	for k, v := range AttributesOf(t) {
		if v == Unbound {
			keys = append(keys, k)
		}
	}
	return keys
}
