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
	"fmt"
	"strings"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/tag"
)

// A Verb identifies the operation of an Instruction.
type Verb uint8

const (
	InvalidVerb Verb = iota

	// Branch pushes a new State. If Recover is set, a panic stops after
	// rejecting it.
	Branch

	// Accept merges the innermost State into its parent.
	Accept

	// Reject discards the innermost State.
	Reject

	// Advance appends Tag to the stream.
	Advance

	// BindAttribute binds attribute Key of the innermost open node to Value.
	BindAttribute

	// GetState returns the innermost State.
	GetState

	// GetContext returns the Context.
	GetContext

	// Write emits Value as a side effect.
	Write

	// Panic rejects States up to the nearest recovery point.
	Panic
)

var verbNames = [...]string{
	InvalidVerb:   "invalid",
	Branch:        "branch",
	Accept:        "accept",
	Reject:        "reject",
	Advance:       "advance",
	BindAttribute: "bindAttribute",
	GetState:      "getState",
	GetContext:    "getContext",
	Write:         "write",
	Panic:         "panic",
}

func (v Verb) String() string {
	if int(v) < len(verbNames) {
		return verbNames[v]
	}
	return fmt.Sprintf("Verb(%d)", v)
}

// ParseVerb returns the verb with the given name.
func ParseVerb(s string) (Verb, error) {
	for v, name := range verbNames {
		if v != int(InvalidVerb) && name == s {
			return Verb(v), nil
		}
	}
	return InvalidVerb, errors.Newf(errors.ProtocolError, "unknown verb %q", s)
}

// An Instruction is a single request of a strategy to the VM.
type Instruction struct {
	Verb Verb

	// Tag is the tag to advance.
	Tag tag.Tag

	// Key and Value are the attribute to bind, or Value the text to write.
	Key   string
	Value any

	// Recover marks a branch as a recovery point.
	Recover bool
}

func (i Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Verb.String())
	switch i.Verb {
	case Branch:
		if i.Recover {
			b.WriteString(" recover")
		}
	case Advance:
		if i.Tag != nil {
			b.WriteString(" ")
			b.WriteString(i.Tag.String())
		}
	case BindAttribute:
		fmt.Fprintf(&b, " %s=%v", i.Key, i.Value)
	case Write:
		fmt.Fprintf(&b, " %q", fmt.Sprint(i.Value))
	}
	return b.String()
}
