// Copyright 2024 The Mm0 Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mm0err is the error vocabulary shared by every core component
// (spec §7). It is modeled on the Kind-tagged error the teacher codebase
// threads through its HCL layer (github.com/mineiros-io/terramate/errors,
// used pervasively by hcl.go as errors.Kind / errors.Is but not itself
// part of the retrieval pack), rebuilt here for this domain.
package mm0err

import (
	"errors"
	"fmt"

	"github.com/monocodus-demonstrations/mm0/span"
)

// Kind classifies an Error without pinning down its message, so callers
// can test "is this a redeclaration error" without string matching.
type Kind string

// The kinds named in spec §7, grouped by the category heading used there.
const (
	// Structural
	ErrMalformedBinder  Kind = "malformed binder"
	ErrBadDeclArgs      Kind = "bad declaration arguments"
	ErrMissingReturn    Kind = "missing return type"

	// Naming
	ErrUnknownAtom    Kind = "unknown atom"
	ErrNotFound       Kind = "sort, term, or theorem not found"
	ErrShadowedByLocal Kind = "shadowed by local variable"

	// Typing
	ErrMissingCoercion   Kind = "missing coercion"
	ErrExpectedBound     Kind = "expected bound, got regular"
	ErrSortMismatch      Kind = "sort mismatch"
	ErrArity             Kind = "arity mismatch"
	ErrDisjointVariable  Kind = "disjoint variable violation"
	ErrDummyDependency   Kind = "dummy dependency violation"

	// Consistency (global)
	ErrRedeclared        Kind = "redeclared"
	ErrNotationConflict  Kind = "notation conflict"
	ErrCoercionCycle     Kind = "coercion cycle"
	ErrCoercionDiamond   Kind = "coercion diamond"
	ErrMultipleProvable  Kind = "multiple provable targets"

	// Resource
	ErrOverflow       Kind = "resource overflow"
	ErrStackOverflow  Kind = "stack overflow"

	// Runtime (scripting)
	ErrTypeMismatch         Kind = "builtin type mismatch"
	ErrArgCount             Kind = "invalid argument count"
	ErrContinuationExpired  Kind = "continuation has expired"
	ErrTimeout              Kind = "timeout"
	ErrCancelled            Kind = "cancelled"
	ErrNotCallable          Kind = "not callable"

	// Proof
	ErrUnsolvedGoal  Kind = "unsolved goal"
	ErrMissingProof  Kind = "missing proof"
	ErrSorry         Kind = "sorry"

	// Configuration
	ErrConfig Kind = "configuration error"
)

// Secondary is a located annotation attached to an Error, used for
// multi-span diagnostics such as "redeclared here, originally declared
// here" (spec §6 "an optional list of secondary spans with attached
// messages").
type Secondary struct {
	Span    span.File
	Message string
}

// Level is a diagnostic severity (spec §6).
type Level int

// Diagnostic levels, matching the builtin atoms `error`, `warn`, `info`
// (spec §3, §6).
const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
)

// Frame is one entry of a located stack trace (spec §6 "an optional
// stack-trace payload (per-frame span + procedure name)").
type Frame struct {
	Span Span
	Proc string
}

// Span is an alias kept local to this package so error call sites don't
// need to import span.File directly; it is the same byte-range type.
type Span = span.File

// Error is the core's uniform error value. Every core-raised error is an
// *Error; external errors (I/O, etc.) are wrapped with Kind left empty.
type Error struct {
	Kind       Kind
	Level      Level
	Primary    Span
	Message    string
	Secondary  []Secondary
	Trace      []Frame
	Err        error

	// Session is the correlation id of the elaboration run that raised
	// this error (see mm0log.NewSessionID), attached for log cross-referencing.
	Session string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// New builds a located Error of the given kind.
func New(kind Kind, primary Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Level: LevelError, Primary: primary, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a Kind and primary span to an existing error.
func Wrap(kind Kind, primary Span, err error) *Error {
	return &Error{Kind: kind, Level: LevelError, Primary: primary, Err: err}
}

// WithSecondary returns a copy of e with an additional secondary span.
func (e *Error) WithSecondary(sp Span, message string) *Error {
	e2 := *e
	e2.Secondary = append(append([]Secondary{}, e.Secondary...), Secondary{Span: sp, Message: message})
	return &e2
}

// WithTrace returns a copy of e with a stack frame prepended, so frames
// added innermost first end up ordered outermost first. The lisp/eval
// evaluator does not call it, so the errors it raises carry no Trace.
func (e *Error) WithTrace(f Frame) *Error {
	e2 := *e
	e2.Trace = append([]Frame{f}, e.Trace...)
	return &e2
}

// Is reports whether err is (or wraps) an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// List aggregates the errors produced while elaborating one declaration
// (spec §7 "errors are accumulated where they do not invalidate further
// checks"). A List with no entries is considered success.
type List struct {
	Errs []*Error
}

// Add appends err to the list; a nil err is ignored.
func (l *List) Add(err *Error) {
	if err == nil {
		return
	}
	l.Errs = append(l.Errs, err)
}

// HasErrors reports whether any entry is at LevelError (warnings/info do
// not block a commit).
func (l *List) HasErrors() bool {
	for _, e := range l.Errs {
		if e.Level == LevelError {
			return true
		}
	}
	return false
}

// Error renders the list as a single error for callers that want a plain
// `error`, joining messages; structured consumers should range over Errs
// directly instead.
func (l *List) Error() string {
	if len(l.Errs) == 0 {
		return ""
	}
	msg := l.Errs[0].Error()
	for _, e := range l.Errs[1:] {
		msg += "; " + e.Error()
	}
	return msg
}

// AsError returns l as an error if it HasErrors, else nil, for use at a
// function boundary that wants a plain `error` return.
func (l *List) AsError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}
