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

// Package envflag parses comma-separated lists of flags, typically taken
// from an environment variable, into the fields of a struct.
package envflag

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Init calls Parse with the value of the environment variable envVar.
func Init[T any](flags *T, envVar string) error {
	if err := Parse(flags, os.Getenv(envVar)); err != nil {
		return fmt.Errorf("cannot parse %s: %w", envVar, err)
	}
	return nil
}

// Parse sets the fields of flags from their `envflag` struct tags and from
// env.
//
// A field tag of the form `envflag:"default:value"` sets the initial value
// of a field. Fields of kind bool, int and string are supported.
//
// env is a comma-separated list of name=value pairs. Names match field
// names case-insensitively. For boolean fields the value may be omitted,
// in which case it is true. Empty elements are ignored, so that lists may
// be concatenated without care for separators. All malformed elements are
// reported together.
func Parse[T any](flags *T, env string) error {
	fs, err := fieldsOf(reflect.ValueOf(flags).Elem())
	if err != nil {
		return err
	}

	var errs []error
	for _, elem := range strings.Split(env, ",") {
		if elem == "" {
			continue
		}
		if err := fs.set(elem); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type fieldSet struct {
	v      reflect.Value
	byName map[string]int
}

func fieldsOf(v reflect.Value) (*fieldSet, error) {
	fs := &fieldSet{v: v, byName: map[string]int{}}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := strings.ToLower(f.Name)
		fs.byName[name] = i

		tag, ok := f.Tag.Lookup("envflag")
		if !ok {
			continue
		}
		key, def, _ := strings.Cut(tag, ":")
		if key != "default" {
			return nil, fmt.Errorf("unknown envflag tag %q", tag)
		}
		x, err := parseValue(name, f.Type.Kind(), def)
		if err != nil {
			return nil, err
		}
		v.Field(i).Set(reflect.ValueOf(x))
	}
	return fs, nil
}

func (fs *fieldSet) set(elem string) error {
	name, str, hasValue := strings.Cut(elem, "=")
	i, ok := fs.byName[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown flag %q", elem)
	}
	field := fs.v.Field(i)

	switch {
	case hasValue:
	case field.Kind() == reflect.Bool:
		str = "true"
	default:
		return fmt.Errorf("value needed for %s flag %q", field.Kind(), name)
	}

	x, err := parseValue(name, field.Kind(), str)
	if err != nil {
		return err
	}
	field.Set(reflect.ValueOf(x))
	return nil
}

func parseValue(name string, kind reflect.Kind, str string) (x any, err error) {
	switch kind {
	case reflect.Bool:
		x, err = strconv.ParseBool(str)
	case reflect.Int:
		x, err = strconv.Atoi(str)
	case reflect.String:
		x = str
	default:
		return nil, invalidError{fmt.Errorf("unsupported kind %s", kind)}
	}
	if err != nil {
		return nil, invalidError{fmt.Errorf("invalid %s value for %s: %v", kind, name, err)}
	}
	return x, nil
}

// ErrInvalid indicates a malformed value.
var ErrInvalid = errors.New("invalid value")

type invalidError struct{ error }

func (invalidError) Is(err error) bool { return err == ErrInvalid }
