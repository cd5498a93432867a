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

// Package agastdebug holds the AGAST_DEBUG flags.
package agastdebug

import (
	"sync"

	"cuelabs.dev/go/agast/internal/envflag"
)

// Flags holds the set of global AGAST_DEBUG flags. It is initialized by Init.
var Flags Config

// Config holds the set of known AGAST_DEBUG flags.
type Config struct {
	// LogEval sets the log level for the evaluator.
	// There are currently only two levels:
	//
	//	0: no logging
	//	1: logging
	LogEval int

	// Strict enables internal consistency checks that panic on failure.
	Strict bool

	// SkipIndex enables the ancestor skip pointers of paths. Disabling it
	// makes ancestor lookups walk parent links one at a time.
	SkipIndex bool `envflag:"default:true"`
}

// Init initializes Flags. Note: this isn't named "init" because we want
// the failure mode to be one of error not panic, which would be the only
// option if it was a top level init function.
func Init() error {
	return initOnce()
}

var initOnce = sync.OnceValue(func() error {
	return envflag.Init(&Flags, "AGAST_DEBUG")
})
