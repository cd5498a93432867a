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

package envflag

import (
	"testing"

	"github.com/go-quicktest/qt"
)

type testFlags struct {
	Strict    bool
	LogEval   int
	SkipIndex bool   `envflag:"default:true"`
	Name      string `envflag:"default:agast"`
}

var defaults = testFlags{SkipIndex: true, Name: "agast"}

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		env     string
		want    testFlags
		wantErr string
		invalid bool
	}{{
		name: "Empty",
		env:  "",
		want: defaults,
	}, {
		name: "JustCommas",
		env:  ",,",
		want: defaults,
	}, {
		name: "BoolShorthand",
		env:  "strict",
		want: testFlags{Strict: true, SkipIndex: true, Name: "agast"},
	}, {
		name: "CaseInsensitive",
		env:  "LogEval=1,SKIPINDEX=false",
		want: testFlags{LogEval: 1, Name: "agast"},
	}, {
		name: "String",
		env:  "name=other,",
		want: testFlags{SkipIndex: true, Name: "other"},
	}, {
		name:    "Unknown",
		env:     "ratchet,strict",
		want:    testFlags{Strict: true, SkipIndex: true, Name: "agast"},
		wantErr: `unknown flag "ratchet"`,
	}, {
		name:    "IntNeedsValue",
		env:     "logeval",
		want:    defaults,
		wantErr: `value needed for int flag "logeval"`,
	}, {
		name:    "BadInt",
		env:     "logeval=many",
		want:    defaults,
		wantErr: `invalid int value for logeval: .*`,
		invalid: true,
	}}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got testFlags
			err := Parse(&got, tc.env)
			qt.Check(t, qt.Equals(got, tc.want))
			if tc.wantErr == "" {
				qt.Assert(t, qt.IsNil(err))
				return
			}
			qt.Assert(t, qt.ErrorMatches(err, tc.wantErr))
			if tc.invalid {
				qt.Assert(t, qt.ErrorIs(err, ErrInvalid))
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Setenv("TEST_AGAST_FLAGS", "strict,logeval=2")
	var got testFlags
	qt.Assert(t, qt.IsNil(Init(&got, "TEST_AGAST_FLAGS")))
	qt.Assert(t, qt.Equals(got, testFlags{Strict: true, LogEval: 2, SkipIndex: true, Name: "agast"}))

	t.Setenv("TEST_AGAST_FLAGS", "bogus")
	qt.Assert(t, qt.ErrorMatches(Init(&got, "TEST_AGAST_FLAGS"),
		`cannot parse TEST_AGAST_FLAGS: unknown flag "bogus"`))
}

func TestBadTag(t *testing.T) {
	var flags struct {
		X bool `envflag:"deprecated"`
	}
	qt.Assert(t, qt.ErrorMatches(Parse(&flags, ""), `unknown envflag tag "deprecated"`))
}
