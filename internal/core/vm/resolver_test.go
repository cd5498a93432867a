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

func TestResolver(t *testing.T) {
	r := newResolver()
	qt.Assert(t, qt.IsNil(r.consume(tag.BuildReference("a", false))))
	qt.Assert(t, qt.ErrorIs(r.consume(tag.BuildReference("a", false)), errors.DoubleReferenceError))
	qt.Assert(t, qt.ErrorIs(r.check(tag.BuildReference("a", true)), errors.DoubleReferenceError))

	qt.Assert(t, qt.IsNil(r.consume(tag.BuildReference("xs", true))))
	qt.Assert(t, qt.IsNil(r.consume(tag.BuildReference("xs", true))))
	qt.Assert(t, qt.IsNil(r.consume(tag.BuildReference("xs", false))))
	qt.Assert(t, qt.Equals(r.Count("xs"), 3))
	qt.Assert(t, qt.IsTrue(r.IsArray("xs")))
	qt.Assert(t, qt.IsFalse(r.IsArray("a")))
	qt.Assert(t, qt.IsFalse(r.Has("b")))
}

func TestResolverBranch(t *testing.T) {
	r := newResolver()
	qt.Assert(t, qt.IsNil(r.consume(tag.BuildReference("a", false))))

	b := r.branch()
	qt.Assert(t, qt.IsNil(b.consume(tag.BuildReference("b", false))))
	qt.Assert(t, qt.IsFalse(r.Has("b")))
	qt.Assert(t, qt.IsTrue(b.Has("a")))

	r.accept(b)
	qt.Assert(t, qt.IsTrue(r.Has("b")))
	qt.Assert(t, qt.ErrorIs(r.consume(tag.BuildReference("b", false)), errors.DoubleReferenceError))
}
