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

package tag

import "maps"

// BuildStart returns a new stream-start sentinel.
func BuildStart() *Start { return &Start{} }

// BuildDoctype returns a new doctype tag.
func BuildDoctype(attrs Attributes) *Doctype {
	return &Doctype{Attributes: maps.Clone(attrs)}
}

// BuildOpenFragment returns a new fragment opener.
func BuildOpenFragment(flags Flags, attrs Attributes) *OpenFragment {
	return &OpenFragment{Flags: flags, Attributes: maps.Clone(attrs)}
}

// BuildCloseFragment returns a new fragment closer.
func BuildCloseFragment() *CloseFragment { return &CloseFragment{} }

// BuildOpenNode returns a new node opener. Attributes with the value
// Unbound are declared but not yet bound.
func BuildOpenNode(flags Flags, language, typ string, attrs Attributes) *OpenNode {
	return &OpenNode{
		Flags:      flags,
		Language:   language,
		Type:       typ,
		Attributes: maps.Clone(attrs),
	}
}

// BuildCloseNode returns a new node closer.
func BuildCloseNode(language, typ string) *CloseNode {
	return &CloseNode{Language: language, Type: typ}
}

// BuildReference returns a new reference.
func BuildReference(name string, isArray bool) *Reference {
	return &Reference{Name: name, IsArray: isArray}
}

// BuildGapReference returns a new reference to a slot that may hold a gap.
func BuildGapReference(name string, isArray bool) *Reference {
	return &Reference{Name: name, IsArray: isArray, HasGap: true}
}

// BuildLiteral returns a new literal.
func BuildLiteral(value string) *Literal { return &Literal{Value: value} }

// BuildGap returns a new gap.
func BuildGap() *Gap { return &Gap{} }

// BuildNull returns a new null.
func BuildNull() *Null { return &Null{} }

// BuildArray returns a new array initializer.
func BuildArray() *Array { return &Array{} }

// BuildShift returns a new shift.
func BuildShift() *Shift { return &Shift{} }

// BuildEffect returns a new effect.
func BuildEffect(name string, value any) *Effect {
	return &Effect{Name: name, Value: value}
}

// WithAttribute returns a copy of the opener t in which key is set to
// value. A nil value removes key. The result is a new tag.
func WithAttribute(t *OpenNode, key string, value any) *OpenNode {
	attrs := maps.Clone(t.Attributes)
	if attrs == nil {
		attrs = Attributes{}
	}
	if value == nil {
		delete(attrs, key)
	} else {
		attrs[key] = value
	}
	return &OpenNode{
		Flags:      t.Flags,
		Language:   t.Language,
		Type:       t.Type,
		Attributes: attrs,
	}
}
