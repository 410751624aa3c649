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

// Package testenv is the assertion and fixture-building helper package
// shared by every package's tests. AssertKind and AssertNoError mirror the
// teacher's test/errors assertion helpers against mm0err instead of
// errors.Kind; the declaration builders let a test populate an
// *env.Environment with sorts, terms and theorems directly, without
// going through a surface-syntax parser this core does not own.
package testenv

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/monocodus-demonstrations/mm0/env"
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

// AssertKind asserts that got is non-nil and carries the same mm0err.Kind
// as want.
func AssertKind(t *testing.T, got *mm0err.Error, want mm0err.Kind) {
	t.Helper()
	if got == nil {
		t.Fatalf("got nil error, want kind %q", want)
	}
	if got.Kind != want {
		t.Fatalf("got error kind %q, want %q (message: %s)", got.Kind, want, got.Message)
	}
}

// AssertNoError fails the test if err is non-nil.
func AssertNoError(t *testing.T, err *mm0err.Error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
}

// NewLogger returns a discard-sink logger suitable for tests that need to
// construct an env.Environment or eval.Evaluator but don't care about log
// output.
func NewLogger() zerolog.Logger {
	return zerolog.Nop()
}

// Fixture wraps a freshly built Environment with convenience span/atom
// helpers, so a test declaring a handful of sorts/terms/theorems doesn't
// need to fabricate its own span.File values.
type Fixture struct {
	Env *env.Environment
	n   int
}

// New returns an empty Fixture over a fresh Environment.
func New() *Fixture {
	return &Fixture{Env: env.New(NewLogger())}
}

// Span returns a fresh, distinct span.File each call, sufficient for
// redeclaration-span-equality checks in tests that don't care about real
// byte offsets.
func (f *Fixture) Span() span.File {
	f.n++
	return span.File{Name: "test.mm1", Span: span.Span{Start: f.n, End: f.n + 1}}
}

// Sort declares a sort named name with the given modifiers, failing the
// test on error.
func (f *Fixture) Sort(t *testing.T, name string, mods term.Modifier) ids.SortID {
	t.Helper()
	atom := f.Env.InternAtom(name)
	sp := f.Span()
	id, err := f.Env.AddSort(atom, sp, sp, mods)
	AssertNoError(t, err)
	return id
}

// Term declares a term constructor named name, with no value, taking args
// and returning ret.
func (f *Fixture) Term(t *testing.T, name string, args []term.Arg, ret term.Type) ids.TermID {
	t.Helper()
	atom := f.Env.InternAtom(name)
	sp := f.Span()
	id, err := f.Env.AddTerm(atom, sp, func() term.Term {
		return term.NewTerm(atom, sp, sp, 0, args, ret)
	})
	AssertNoError(t, err)
	return id
}

// Axiom declares an axiom named name: args, hypotheses hyps, conclusion
// ret, no proof ever attached.
func (f *Fixture) Axiom(t *testing.T, name string, args []term.Arg, hyps []term.ExprNode, ret term.ExprNode) ids.ThmID {
	t.Helper()
	atom := f.Env.InternAtom(name)
	sp := f.Span()
	id, err := f.Env.AddThm(atom, sp, func() term.Thm {
		return term.NewThm(atom, sp, sp, 0, args, nil, hyps, ret)
	})
	AssertNoError(t, err)
	return id
}

// Arg builds a term.Arg named name of the given type.
func (f *Fixture) Arg(name string, ty term.Type) term.Arg {
	return term.Arg{Atom: f.Env.InternAtom(name), Type: ty}
}
