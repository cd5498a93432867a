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

import "strconv"

// Skip pointers.
//
// Grammars may nest to depths proportional to the size of their input, so
// walking parent links to find an ancestor is linear in depth. Each path
// therefore stores up to skipLevels ancestors, where level i is
// skipDistance(i) levels up. A level is only stored when the depth of the
// path is a multiple of its distance, which keeps the total number of skip
// pointers linear in the number of paths.
//
// Skip pointers are computed once, at push time, from the skip pointers of
// existing ancestors.

const (
	skipLevels = 3
	skipShift  = 4
)

// skipDistance reports the distance of level i: 16, 256, 4096.
func skipDistance(i int) int {
	return 1 << (skipShift * (i + 1))
}

func buildSkips(p *Path) []*Path {
	var skips []*Path
	for i := 0; i < skipLevels; i++ {
		d := skipDistance(i)
		if p.depth%d != 0 {
			break
		}
		skips = append(skips, skipTo(p.parent, p.depth-d))
	}
	return skips
}

// skipTo returns the ancestor of p at depth, which must not exceed the
// depth of p.
func skipTo(p *Path, depth int) *Path {
	for p.depth > depth {
		next := p.parent
		for i := len(p.skips) - 1; i >= 0; i-- {
			if s := p.skips[i]; s.depth >= depth {
				next = s
				break
			}
		}
		p = next
	}
	return p
}

func itoa(i int) string { return strconv.Itoa(i) }
