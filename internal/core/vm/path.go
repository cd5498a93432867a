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
	"iter"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/tag"
)

// A Path denotes a position in the nesting of the tree under construction.
// Reference tags push a path for the slot they name; trivia and escape
// nodes push an anonymous path. Paths are immutable and therefore shared
// freely between States.
type Path struct {
	parent    *Path
	depth     int
	reference *tag.Reference

	// skips holds ancestors at increasing distances. See skip.go.
	skips []*Path
}

func newRootPath() *Path { return &Path{} }

// push returns a child of p for the slot named by ref, which may be nil for
// anonymous paths.
func (p *Path) push(c *Context, ref *tag.Reference) *Path {
	q := &Path{
		parent:    p,
		depth:     p.depth + 1,
		reference: ref,
	}
	if c == nil || c.skipIndex {
		q.skips = buildSkips(q)
	}
	return q
}

// Parent returns the enclosing path, or nil for the root.
func (p *Path) Parent() *Path { return p.parent }

// Depth reports the number of ancestors of p.
func (p *Path) Depth() int { return p.depth }

// Reference returns the reference that created p, or nil.
func (p *Path) Reference() *tag.Reference { return p.reference }

// At returns the ancestor of p at the given depth. It fails with an
// InvalidDepthError if depth exceeds the depth of p.
func (p *Path) At(depth int) (*Path, error) {
	if depth < 0 || depth > p.depth {
		return nil, errors.Newf(errors.InvalidDepthError,
			"no ancestor at depth %d of path at depth %d", depth, p.depth)
	}
	return skipTo(p, depth), nil
}

// Parents returns p's ancestors, nearest first, optionally preceded by p.
func (p *Path) Parents(includeSelf bool) iter.Seq[*Path] {
	return func(yield func(*Path) bool) {
		q := p
		if !includeSelf {
			q = p.parent
		}
		for ; q != nil; q = q.parent {
			if !yield(q) {
				return
			}
		}
	}
}

func (p *Path) String() string {
	if p.reference == nil {
		return "#" + itoa(p.depth)
	}
	return p.reference.String() + "#" + itoa(p.depth)
}
