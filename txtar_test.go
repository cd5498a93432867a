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

package agast_test

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"cuelabs.dev/go/agast"
	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/internal/script"
)

// updateGoldenFiles rewrites the out, tree and err sections of the
// testdata archives with the actual results.
var updateGoldenFiles = os.Getenv("AGAST_UPDATE") != ""

// TestScripts runs each testdata/*.txtar archive. An archive holds the
// instructions in a section named script.agast, script.yaml or
// script.toml, and optionally expression roots in expr sections. A comment
// line "#effects" enables effect emission.
//
// The emitted tags are compared with the out section, the root tree with
// the tree section and a failure with the err section. Sections that would
// be empty are omitted.
func TestScripts(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Not(qt.HasLen(files, 0)))

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".txtar")
		t.Run(name, func(t *testing.T) {
			a, err := txtar.ParseFile(file)
			qt.Assert(t, qt.IsNil(err))

			var opts []agast.Option
			for _, line := range strings.Split(string(a.Comment), "\n") {
				if strings.TrimSpace(line) == "#effects" {
					opts = append(opts, agast.EmitEffects())
				}
			}

			var instrs []agast.Instruction
			var exprs []agast.Node
			for _, f := range a.Files {
				switch strings.TrimSuffix(f.Name, filepath.Ext(f.Name)) {
				case "script":
					instrs, err = script.Decode(f.Name, f.Data)
					qt.Assert(t, qt.IsNil(err))
				case "expr":
					exprs = append(exprs, evalExpr(t, f))
				}
			}
			qt.Assert(t, qt.Not(qt.IsNil(instrs)), qt.Commentf("no script section"))
			if len(exprs) > 0 {
				opts = append(opts, agast.WithExpressions(exprs...))
			}

			c := agast.NewContext()
			var out, errs bytes.Buffer
			for tg, err := range agast.Evaluate(c, agast.Replay(instrs...), opts...) {
				if err != nil {
					errors.Print(&errs, err)
					continue
				}
				out.WriteString(tg.String())
				out.WriteByte('\n')
			}
			results := map[string]string{
				"out": out.String(),
				"err": errs.String(),
			}
			if root := c.Root(); root.Exists() {
				results["tree"] = root.Tree()
			}

			if checkGolden(t, a, results) && updateGoldenFiles {
				err := os.WriteFile(file, txtar.Format(a), 0o644)
				qt.Assert(t, qt.IsNil(err))
			}
		})
	}
}

func evalExpr(t *testing.T, f txtar.File) agast.Node {
	t.Helper()
	instrs, err := script.Decode(f.Name, f.Data)
	qt.Assert(t, qt.IsNil(err))
	c := agast.NewContext()
	_, err = agast.Run(c, agast.Replay(instrs...))
	qt.Assert(t, qt.IsNil(err), qt.Commentf("evaluating %s", f.Name))
	return c.Root()
}

// checkGolden compares results with the corresponding sections of a and
// reports whether a was modified. Without updateGoldenFiles any difference
// is an error.
func checkGolden(t *testing.T, a *txtar.Archive, results map[string]string) (changed bool) {
	t.Helper()
	names := []string{"out", "tree", "err"}
	for _, name := range names {
		got := results[name]
		i := slices.IndexFunc(a.Files, func(f txtar.File) bool { return f.Name == name })
		var want string
		if i >= 0 {
			want = string(a.Files[i].Data)
		}
		if got == want {
			continue
		}
		if !updateGoldenFiles {
			t.Errorf("result for %s differs (-want +got):\n%s", name, cmp.Diff(want, got))
			continue
		}
		changed = true
		switch {
		case got == "":
			a.Files = slices.Delete(a.Files, i, i+1)
		case i < 0:
			a.Files = append(a.Files, txtar.File{Name: name, Data: []byte(got)})
		default:
			a.Files[i].Data = []byte(got)
		}
	}
	return changed
}
