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

// Package errors defines the errors reported by the agast evaluator.
//
// Every error carries an ErrorCode. Codes implement error, so callers
// can test for a kind of failure with the standard library:
//
//	if errors.Is(err, agasterrors.DoubleReferenceError) { ... }
package errors // import "cuelabs.dev/go/agast/errors"

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// ErrorCode indicates the kind of an error. All codes denote violations of
// the instruction protocol by a strategy, not recoverable I/O faults.
type ErrorCode int8

//go:generate go tool stringer -type=ErrorCode -linecomment

const (
	// A ProtocolError is an unknown verb or an unexpected combination of
	// verb, tag and state.
	ProtocolError ErrorCode = iota // protocol error

	// A DuplicateLinkError means a tag was linked into the stream twice.
	DuplicateLinkError // duplicate link

	// A DoubleReferenceError means a singular property name was referenced
	// twice in the same node.
	DoubleReferenceError // double reference

	// An InvalidLiteralPlacementError means a literal was advanced outside
	// a token node.
	InvalidLiteralPlacementError // invalid literal placement

	// An InvalidLocationError means a node or fragment was opened where no
	// reference precedes it.
	InvalidLocationError // invalid location

	// A TypeMismatchError means a closing tag does not match its opener.
	TypeMismatchError // type mismatch

	// An UnboundAttributesError means a node was closed while some of its
	// declared attributes were still unbound.
	UnboundAttributesError // unbound attributes

	// An UnknownAttributeError means an attribute was bound that was not
	// declared unbound.
	UnknownAttributeError // unknown attribute

	// A TooLateError means an attribute was bound that is fixed when the
	// node is opened.
	TooLateError // too late

	// An InvalidDepthError means an ancestor was requested at a depth
	// beyond the current depth.
	InvalidDepthError // invalid depth

	// An AcceptedRootError means accept was issued without an open branch.
	AcceptedRootError // accepted root

	// A RejectedRootError means reject was issued without an open branch.
	RejectedRootError // rejected root

	// An UnwindError means the strategy completed with open branches, open
	// nodes or a held node.
	UnwindError // did not unwind

	// A PanicError means a panic reached the root state.
	PanicError // panic
)

// Error implements error, allowing codes to be used as targets of
// errors.Is.
func (c ErrorCode) Error() string { return c.String() }

// Pos identifies the instruction at which an error occurred.
type Pos struct {
	// Step is the 1-based index of the instruction, or 0 if unknown.
	Step int
	// Verb is the verb of the instruction.
	Verb string
}

// IsValid reports whether p identifies an instruction.
func (p Pos) IsValid() bool { return p.Step > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.Verb == "" {
		return fmt.Sprintf("step %d", p.Step)
	}
	return fmt.Sprintf("step %d (%s)", p.Step, p.Verb)
}

// Error is the common error type of agast.
type Error interface {
	error

	// Code reports the kind of error.
	Code() ErrorCode

	// Position reports the instruction at which the error occurred.
	Position() Pos

	// Msg returns the unformatted error message and its arguments.
	Msg() (format string, args []interface{})
}

type codeError struct {
	code   ErrorCode
	pos    Pos
	format string
	args   []interface{}

	// The underlying error that triggered this one, if any.
	err error
}

// Newf creates an Error with the given code and message.
func Newf(code ErrorCode, format string, args ...interface{}) Error {
	return &codeError{code: code, format: format, args: args}
}

// Wrapf creates an Error with the given code and message that wraps err.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) Error {
	return &codeError{code: code, format: format, args: args, err: err}
}

// Augment returns err positioned at pos. The position of an error that
// already has one is left unchanged. Errors that do not implement Error
// are wrapped as a ProtocolError.
func Augment(err error, pos Pos) Error {
	if err == nil {
		return nil
	}
	var e *codeError
	if !errors.As(err, &e) {
		return &codeError{code: ProtocolError, pos: pos, err: err}
	}
	if e.pos.IsValid() {
		return e
	}
	c := *e
	c.pos = pos
	return &c
}

func (e *codeError) Code() ErrorCode { return e.code }
func (e *codeError) Position() Pos   { return e.pos }

func (e *codeError) Msg() (string, []interface{}) {
	if e.format == "" && e.err != nil {
		return "%v", []interface{}{e.err}
	}
	return e.format, e.args
}

func (e *codeError) Error() string {
	var b strings.Builder
	b.WriteString(e.code.String())
	if e.format != "" {
		b.WriteString(": ")
		fmt.Fprintf(&b, e.format, e.args...)
	}
	if e.err != nil {
		b.WriteString(": ")
		b.WriteString(e.err.Error())
	}
	return b.String()
}

func (e *codeError) Unwrap() error { return e.err }

func (e *codeError) Is(target error) bool {
	c, ok := target.(ErrorCode)
	return ok && c == e.code
}

// CodeOf reports the code of the first Error in err's chain. Errors
// without a code are reported as ProtocolError.
func CodeOf(err error) ErrorCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return ProtocolError
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// List is a list of Errors.
// The zero value for a List is an empty List ready to use.
type List []Error

// Add adds err to the list. Errors that do not implement Error are
// wrapped as a ProtocolError.
func (p *List) Add(err error) {
	if err == nil {
		return
	}
	var e Error
	if !errors.As(err, &e) {
		e = &codeError{code: ProtocolError, err: err}
	}
	*p = append(*p, e)
}

// AddNewf adds a new Error at the given position.
func (p *List) AddNewf(pos Pos, code ErrorCode, format string, args ...interface{}) {
	*p = append(*p, &codeError{code: code, pos: pos, format: format, args: args})
}

// Sort sorts the list by position.
func (p List) Sort() {
	slices.SortStableFunc(p, func(a, b Error) int {
		return a.Position().Step - b.Position().Step
	})
}

// An List implements the error interface.
func (p List) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", p[0], len(p)-1)
}

// Err returns an error equivalent to this error list.
// If the list is empty, Err returns nil.
func (p List) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// Print is a utility function that prints a list of errors to w,
// one error per line, if the err parameter is a List. Otherwise
// it prints the err string.
func Print(w io.Writer, err error) {
	var list List
	if errors.As(err, &list) {
		for _, e := range list {
			printError(w, e)
		}
	} else if err != nil {
		printError(w, err)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%v", err)
	var e Error
	if errors.As(err, &e) && e.Position().IsValid() {
		fmt.Fprintf(w, ":\n    %v", e.Position())
	}
	fmt.Fprintln(w)
}
