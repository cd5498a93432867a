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
	"log/slog"
	"os"

	"cuelabs.dev/go/agast/internal/agastdebug"
)

// Assertf panics if b is false and strict checking is enabled. It is used
// for conditions that break an internal invariant but that are likely to be
// caught later as regular errors.
func (c *Context) Assertf(b bool, format string, args ...interface{}) {
	if c.strict && !b {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

// newLogger returns the logger for a run of c.
func newLogger(c *Context, l *slog.Logger) *slog.Logger {
	if l == nil {
		if agastdebug.Flags.LogEval == 0 {
			return slog.New(slog.DiscardHandler)
		}
		l = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return l.With("run", c.ID.String())
}
