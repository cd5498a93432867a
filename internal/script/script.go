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

// Package script decodes instruction scripts.
//
// Scripts come in three encodings, selected by file extension. The line
// format (.agast) has one instruction per line:
//
//	# comment
//	open-fragment
//	ref expr
//	open Num -token -expression value=?
//	lit "1"
//	bind value 1
//	close Num
//	close-fragment
//
// YAML (.yaml, .yml) and TOML (.toml) scripts hold a list of steps with
// the same operations as fields:
//
//	- op: open
//	  type: Num
//	  flags: [token, expression]
//	  attributes: {value: "?"}
//
//	[[step]]
//	op = "lit"
//	value = "1"
//
// In all encodings an attribute value of "?" declares an unbound
// attribute.
package script

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"cuelabs.dev/go/agast/errors"
	"cuelabs.dev/go/agast/internal/core/vm"
	"cuelabs.dev/go/agast/tag"
)

// A Step is a decoded, not yet validated, instruction.
type Step struct {
	Op string `yaml:"op" toml:"op"`

	// Node and fragment openers and closers.
	Type       string         `yaml:"type,omitempty" toml:"type,omitempty"`
	Language   string         `yaml:"language,omitempty" toml:"language,omitempty"`
	Flags      []string       `yaml:"flags,omitempty" toml:"flags,omitempty"`
	Attributes map[string]any `yaml:"attributes,omitempty" toml:"attributes,omitempty"`

	// References.
	Name  string `yaml:"name,omitempty" toml:"name,omitempty"`
	Array bool   `yaml:"array,omitempty" toml:"array,omitempty"`
	Gap   bool   `yaml:"gap,omitempty" toml:"gap,omitempty"`

	// Branches.
	Recover bool `yaml:"recover,omitempty" toml:"recover,omitempty"`

	// Attribute binding, literals and writes.
	Key   string `yaml:"key,omitempty" toml:"key,omitempty"`
	Value any    `yaml:"value,omitempty" toml:"value,omitempty"`

	// Line is the source line of the step, if known.
	Line int `yaml:"-" toml:"-"`
}

// Decode decodes the script in data, using the extension of filename to
// select the encoding.
func Decode(filename string, data []byte) ([]vm.Instruction, error) {
	var (
		steps []Step
		err   error
	)
	switch ext := filepath.Ext(filename); ext {
	case ".agast", ".txt", "":
		steps, err = ParseLines(data)
	case ".yaml", ".yml":
		steps, err = decodeYAML(data)
	case ".toml":
		steps, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%s: unknown script extension %q", filename, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	instrs, err := Instructions(steps)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return instrs, nil
}

func decodeYAML(data []byte) ([]Step, error) {
	var steps []Step
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func decodeTOML(data []byte) ([]Step, error) {
	var doc struct {
		Step []Step `toml:"step"`
	}
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, err
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("unknown fields %v", keys)
	}
	return doc.Step, nil
}

// ParseLines parses the line format.
func ParseLines(data []byte) ([]Step, error) {
	var (
		steps []Step
		errs  errors.List
	)
	for i, line := range strings.Split(string(data), "\n") {
		args, err := shlex.Split(line)
		if err != nil {
			errs.AddNewf(errors.Pos{Step: len(steps) + 1}, errors.ProtocolError, "line %d: %v", i+1, err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		st, err := parseLine(args)
		if err != nil {
			errs.Add(errors.Augment(atLine(err, i+1), errors.Pos{Step: len(steps) + 1, Verb: args[0]}))
			continue
		}
		st.Line = i + 1
		steps = append(steps, st)
	}
	return steps, errs.Err()
}

func parseLine(args []string) (Step, error) {
	st := Step{Op: args[0]}
	args = args[1:]
	switch st.Op {
	case "lit", "write":
		if len(args) != 1 {
			return st, errors.Newf(errors.ProtocolError, "%s: expected 1 argument, found %d", st.Op, len(args))
		}
		st.Value = args[0]
		return st, nil
	}

	var pos []string
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "-") && len(a) > 1:
			st.Flags = append(st.Flags, a[1:])
		case strings.Contains(a, "="):
			k, v, _ := strings.Cut(a, "=")
			if st.Attributes == nil {
				st.Attributes = map[string]any{}
			}
			st.Attributes[k] = parseValue(v)
		default:
			pos = append(pos, a)
		}
	}

	want := func(lo, hi int) error {
		if len(pos) < lo || len(pos) > hi {
			return errors.Newf(errors.ProtocolError, "%s: expected %d to %d arguments, found %d", st.Op, lo, hi, len(pos))
		}
		return nil
	}
	switch st.Op {
	case "branch":
		if err := want(0, 1); err != nil {
			return st, err
		}
		if len(pos) == 1 {
			if pos[0] != "recover" {
				return st, errors.Newf(errors.ProtocolError, "branch: unknown modifier %q", pos[0])
			}
			st.Recover = true
		}
	case "open":
		if err := want(1, 1); err != nil {
			return st, err
		}
		st.Type = pos[0]
		if lang, typ, ok := strings.Cut(pos[0], ":"); ok {
			st.Language, st.Type = lang, typ
		}
	case "close":
		if err := want(0, 1); err != nil {
			return st, err
		}
		if len(pos) == 1 {
			st.Type = pos[0]
			if lang, typ, ok := strings.Cut(pos[0], ":"); ok {
				st.Language, st.Type = lang, typ
			}
		}
	case "ref":
		if err := want(1, 3); err != nil {
			return st, err
		}
		st.Name = pos[0]
		for _, mod := range pos[1:] {
			switch mod {
			case "array":
				st.Array = true
			case "gap":
				st.Gap = true
			default:
				return st, errors.Newf(errors.ProtocolError, "ref: unknown modifier %q", mod)
			}
		}
	case "bind":
		if err := want(2, 2); err != nil {
			return st, err
		}
		st.Key, st.Value = pos[0], parseValue(pos[1])
	default:
		return st, want(0, 0)
	}
	return st, nil
}

// parseValue interprets an attribute or binding value of the line format.
func parseValue(s string) any {
	switch s {
	case "?":
		return "?"
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}

// Instructions validates steps and converts them to instructions.
func Instructions(steps []Step) ([]vm.Instruction, error) {
	var errs errors.List
	instrs := make([]vm.Instruction, 0, len(steps))
	for i, st := range steps {
		instr, err := st.Instruction()
		if err != nil {
			if st.Line > 0 {
				err = atLine(err, st.Line)
			}
			errs.Add(errors.Augment(err, errors.Pos{Step: i + 1, Verb: st.Op}))
			continue
		}
		instrs = append(instrs, instr)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return instrs, nil
}

// Instruction converts st to an instruction.
func (st Step) Instruction() (vm.Instruction, error) {
	advance := func(t tag.Tag) (vm.Instruction, error) {
		return vm.Instruction{Verb: vm.Advance, Tag: t}, nil
	}
	switch st.Op {
	case "branch":
		return vm.Instruction{Verb: vm.Branch, Recover: st.Recover}, nil
	case "accept":
		return vm.Instruction{Verb: vm.Accept}, nil
	case "reject":
		return vm.Instruction{Verb: vm.Reject}, nil
	case "panic":
		return vm.Instruction{Verb: vm.Panic}, nil
	case "state":
		return vm.Instruction{Verb: vm.GetState}, nil
	case "context":
		return vm.Instruction{Verb: vm.GetContext}, nil
	case "write":
		return vm.Instruction{Verb: vm.Write, Value: st.Value}, nil
	case "bind":
		if st.Key == "" {
			return vm.Instruction{}, errors.Newf(errors.ProtocolError, "bind: missing key")
		}
		return vm.Instruction{Verb: vm.BindAttribute, Key: st.Key, Value: st.Value}, nil
	case "doctype":
		return advance(tag.BuildDoctype(attributes(st.Attributes)))
	case "open-fragment":
		flags, err := parseFlags(st.Flags)
		if err != nil {
			return vm.Instruction{}, err
		}
		return advance(tag.BuildOpenFragment(flags, attributes(st.Attributes)))
	case "close-fragment":
		return advance(tag.BuildCloseFragment())
	case "open":
		if st.Type == "" {
			return vm.Instruction{}, errors.Newf(errors.ProtocolError, "open: missing type")
		}
		flags, err := parseFlags(st.Flags)
		if err != nil {
			return vm.Instruction{}, err
		}
		return advance(tag.BuildOpenNode(flags, st.Language, st.Type, attributes(st.Attributes)))
	case "close":
		return advance(tag.BuildCloseNode(st.Language, st.Type))
	case "ref":
		if st.Name == "" {
			return vm.Instruction{}, errors.Newf(errors.ProtocolError, "ref: missing name")
		}
		if st.Gap {
			return advance(tag.BuildGapReference(st.Name, st.Array))
		}
		return advance(tag.BuildReference(st.Name, st.Array))
	case "lit":
		s, ok := st.Value.(string)
		if !ok {
			return vm.Instruction{}, errors.Newf(errors.ProtocolError, "lit: value must be a string")
		}
		return advance(tag.BuildLiteral(s))
	case "gap":
		return advance(tag.BuildGap())
	case "null":
		return advance(tag.BuildNull())
	case "array":
		return advance(tag.BuildArray())
	case "shift":
		return advance(tag.BuildShift())
	}
	return vm.Instruction{}, errors.Newf(errors.ProtocolError, "unknown operation %q", st.Op)
}

func atLine(err error, line int) error {
	var e errors.Error
	if !errors.As(err, &e) {
		return err
	}
	format, args := e.Msg()
	return errors.Newf(e.Code(), "line %d: "+format, append([]interface{}{line}, args...)...)
}

func attributes(m map[string]any) tag.Attributes {
	if len(m) == 0 {
		return nil
	}
	attrs := make(tag.Attributes, len(m))
	for k, v := range m {
		if v == "?" {
			v = tag.Unbound
		}
		attrs[k] = v
	}
	return attrs
}

func parseFlags(names []string) (tag.Flags, error) {
	var f tag.Flags
	for _, name := range names {
		switch strings.ToLower(name) {
		case "token":
			f.Token = true
		case "escape":
			f.Escape = true
		case "trivia":
			f.Trivia = true
		case "expression":
			f.Expression = true
		case "intrinsic":
			f.Intrinsic = true
		case "hasgap":
			f.HasGap = true
		default:
			return f, errors.Newf(errors.ProtocolError, "unknown flag %q", name)
		}
	}
	return f, nil
}
