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

func TestNodeBranch(t *testing.T) {
	c := NewContext()
	open := tag.BuildOpenNode(tag.Flags{}, "", "N", tag.Attributes{"k": tag.Unbound})
	n := newNode(c, newRootPath(), open, nil)
	leaf := newStub(c, nil, tag.BuildNull())
	xs := tag.BuildReference("xs", true)
	n.record(xs, leaf)

	b := n.branch()
	b.record(xs, leaf)
	b.record(tag.BuildReference("y", false), leaf)
	b.push(tag.BuildLiteral("x"))
	_, _, err := b.bindAttribute("k", nil)
	qt.Assert(t, qt.IsNil(err))

	p, _ := n.Property("xs")
	qt.Assert(t, qt.HasLen(p.Nodes, 1))
	qt.Assert(t, qt.HasLen(n.Children(), 1))
	qt.Assert(t, qt.DeepEquals(n.PropertyNames(), []string{"xs"}))
	qt.Assert(t, qt.DeepEquals(n.UnboundAttributes(), []string{"k"}))

	n.accept(b)
	p, _ = n.Property("xs")
	qt.Assert(t, qt.HasLen(p.Nodes, 2))
	qt.Assert(t, qt.HasLen(n.Children(), 2))
	qt.Assert(t, qt.DeepEquals(n.PropertyNames(), []string{"xs", "y"}))
	qt.Assert(t, qt.HasLen(n.UnboundAttributes(), 0))
}

func TestNodeBindAttribute(t *testing.T) {
	c := NewContext()
	open := tag.BuildOpenNode(tag.Flags{}, "", "N", tag.Attributes{
		"b": tag.Unbound,
		"a": tag.Unbound,
	})
	n := newNode(c, newRootPath(), open, nil)
	qt.Assert(t, qt.DeepEquals(n.UnboundAttributes(), []string{"a", "b"}))

	err := n.checkClose(tag.BuildCloseNode("", "N"))
	qt.Assert(t, qt.ErrorIs(err, errors.UnboundAttributesError))
	qt.Assert(t, qt.ErrorMatches(err, `.*attributes a, b are unbound`))

	old, bound, err := n.bindAttribute("a", "x")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals[tag.Tag](old, open))
	qt.Assert(t, qt.Equals(n.OpenTag(), bound))
	qt.Assert(t, qt.Equals(n.Attributes()["a"], any("x")))
	qt.Assert(t, qt.Equals(open.Attributes["a"], tag.Unbound))

	_, _, err = n.bindAttribute("a", "y")
	qt.Assert(t, qt.ErrorIs(err, errors.UnknownAttributeError))
}

func TestNodeCheckClose(t *testing.T) {
	c := NewContext()
	testCases := []struct {
		open  tag.Tag
		close tag.Tag
		want  error
	}{{
		open:  tag.BuildOpenNode(tag.Flags{}, "L", "N", nil),
		close: tag.BuildCloseNode("L", "N"),
	}, {
		open:  tag.BuildOpenNode(tag.Flags{}, "L", "N", nil),
		close: tag.BuildCloseNode("", ""),
	}, {
		open:  tag.BuildOpenNode(tag.Flags{}, "L", "N", nil),
		close: tag.BuildCloseNode("M", "N"),
		want:  errors.TypeMismatchError,
	}, {
		open:  tag.BuildOpenFragment(tag.Flags{}, nil),
		close: tag.BuildCloseFragment(),
	}, {
		open:  tag.BuildOpenFragment(tag.Flags{}, nil),
		close: tag.BuildCloseNode("", ""),
		want:  errors.TypeMismatchError,
	}}
	for _, tc := range testCases {
		n := newNode(c, newRootPath(), tc.open, nil)
		err := n.checkClose(tc.close)
		if tc.want == nil {
			qt.Check(t, qt.IsNil(err), qt.Commentf("%v %v", tc.open, tc.close))
		} else {
			qt.Check(t, qt.ErrorIs(err, tc.want), qt.Commentf("%v %v", tc.open, tc.close))
		}
	}
}

func TestNodeUnrecord(t *testing.T) {
	c := NewContext()
	n := newNode(c, newRootPath(), tag.BuildOpenFragment(tag.Flags{}, nil), nil)
	x, y := newStub(c, nil, tag.BuildNull()), newStub(c, nil, tag.BuildNull())
	ref := tag.BuildReference("xs", true)
	n.record(ref, x)
	n.record(ref, y)

	qt.Assert(t, qt.IsFalse(n.unrecord(ref, x)))
	qt.Assert(t, qt.IsTrue(n.unrecord(ref, y)))
	p, _ := n.Property("xs")
	qt.Assert(t, qt.HasLen(p.Nodes, 1))
	qt.Assert(t, qt.Equals(p.Node(), x))
}
