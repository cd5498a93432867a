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
	"testing"

	"github.com/go-quicktest/qt"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/tag"
)

func deepPath(c *Context, depth int) *Path {
	p := newRootPath()
	for i := 0; i < depth; i++ {
		p = p.push(c, tag.BuildReference("n", false))
	}
	return p
}

func TestPathAt(t *testing.T) {
	const depth = 5000

	skipped := deepPath(nil, depth)
	walked := deepPath(&Context{}, depth)
	qt.Assert(t, qt.HasLen(walked.skips, 0))

	for d := 0; d <= depth; d++ {
		got, err := skipped.At(d)
		qt.Assert(t, qt.IsNil(err))

		want := skipped
		for want.depth > d {
			want = want.parent
		}
		qt.Assert(t, qt.Equals(got, want))

		other, err := walked.At(d)
		qt.Assert(t, qt.IsNil(err))
		qt.Assert(t, qt.Equals(other.Depth(), got.Depth()))
	}
}

func TestPathAtFromEveryDepth(t *testing.T) {
	p := deepPath(nil, 600)
	for q := range p.Parents(true) {
		for d := 0; d <= q.Depth(); d += 7 {
			got, err := q.At(d)
			qt.Assert(t, qt.IsNil(err))
			qt.Assert(t, qt.Equals(got.Depth(), d))
		}
	}
}

func TestPathAtInvalid(t *testing.T) {
	p := deepPath(nil, 3)
	_, err := p.At(4)
	qt.Assert(t, qt.ErrorIs(err, errors.InvalidDepthError))
	_, err = p.At(-1)
	qt.Assert(t, qt.ErrorIs(err, errors.InvalidDepthError))
}

func TestSkips(t *testing.T) {
	p := deepPath(nil, 4096)
	testCases := []struct {
		depth int
		skips []int
	}{
		{depth: 4096, skips: []int{4080, 3840, 0}},
		{depth: 4095, skips: nil},
		{depth: 256, skips: []int{240, 0}},
		{depth: 32, skips: []int{16}},
		{depth: 17, skips: nil},
		{depth: 16, skips: []int{0}},
	}
	for _, tc := range testCases {
		q, err := p.At(tc.depth)
		qt.Assert(t, qt.IsNil(err))
		var got []int
		for _, s := range q.skips {
			got = append(got, s.depth)
		}
		qt.Assert(t, qt.DeepEquals(got, tc.skips), qt.Commentf("depth %d", tc.depth))
	}
}

func TestParents(t *testing.T) {
	p := deepPath(nil, 3)
	var depths []int
	for q := range p.Parents(false) {
		depths = append(depths, q.Depth())
	}
	qt.Assert(t, qt.DeepEquals(depths, []int{2, 1, 0}))

	depths = depths[:0]
	for q := range p.Parents(true) {
		depths = append(depths, q.Depth())
		if q.Depth() == 2 {
			break
		}
	}
	qt.Assert(t, qt.DeepEquals(depths, []int{3, 2}))
	qt.Assert(t, qt.Equals(p.String(), "n:#3"))
}
