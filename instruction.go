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
	"cuelabs.dev/go/agast/internal/core/vm"
	"cuelabs.dev/go/agast/tag"
)

// An Instruction is a single request of a strategy.
type Instruction = vm.Instruction

// Advance returns an instruction that appends t to the stream.
func Advance(t tag.Tag) Instruction {
	return Instruction{Verb: vm.Advance, Tag: t}
}

// BindAttribute returns an instruction that binds attribute key of the
// innermost open node. A nil value marks the attribute as bound without
// changing the node's opener.
func BindAttribute(key string, value any) Instruction {
	return Instruction{Verb: vm.BindAttribute, Key: key, Value: value}
}

// Branch returns an instruction that starts a speculative State.
func Branch() Instruction { return Instruction{Verb: vm.Branch} }

// BranchRecover returns an instruction that starts a speculative State at
// which panics stop.
func BranchRecover() Instruction {
	return Instruction{Verb: vm.Branch, Recover: true}
}

// Accept returns an instruction that commits the innermost State.
func Accept() Instruction { return Instruction{Verb: vm.Accept} }

// Reject returns an instruction that discards the innermost State.
func Reject() Instruction { return Instruction{Verb: vm.Reject} }

// Panic returns an instruction that discards States up to the innermost
// recovery point.
func Panic() Instruction { return Instruction{Verb: vm.Panic} }

// Write returns an instruction that emits v as a side effect.
func Write(v any) Instruction { return Instruction{Verb: vm.Write, Value: v} }

// GetState returns an instruction that yields the innermost State.
func GetState() Instruction { return Instruction{Verb: vm.GetState} }

// GetContext returns an instruction that yields the Context.
func GetContext() Instruction { return Instruction{Verb: vm.GetContext} }
