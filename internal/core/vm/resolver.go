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

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/tag"
)

// A Resolver records the property names referenced within a single node.
// A name may be referenced more than once only if its first reference
// declared it to be an array.
type Resolver struct {
	names map[string]resolved
}

type resolved struct {
	first *tag.Reference
	count int
}

func newResolver() *Resolver {
	return &Resolver{names: map[string]resolved{}}
}

// check reports whether consuming ref would succeed.
func (r *Resolver) check(ref *tag.Reference) error {
	x, ok := r.names[ref.Name]
	if ok && !x.first.IsArray {
		return errors.Newf(errors.DoubleReferenceError,
			"property %q is not an array and was already referenced", ref.Name)
	}
	return nil
}

// consume records a use of ref.
func (r *Resolver) consume(ref *tag.Reference) error {
	if err := r.check(ref); err != nil {
		return err
	}
	x, ok := r.names[ref.Name]
	if !ok {
		x.first = ref
	}
	x.count++
	r.names[ref.Name] = x
	return nil
}

// Has reports whether name was referenced.
func (r *Resolver) Has(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Count reports how often name was referenced.
func (r *Resolver) Count(name string) int {
	return r.names[name].count
}

// IsArray reports whether name was first referenced as an array.
func (r *Resolver) IsArray(name string) bool {
	x, ok := r.names[name]
	return ok && x.first.IsArray
}

func (r *Resolver) branch() *Resolver {
	return &Resolver{names: maps.Clone(r.names)}
}

// accept replaces the counters of r with those of a branch of r.
func (r *Resolver) accept(child *Resolver) {
	r.names = child.names
}
