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

package elab_test

import (
	"testing"

	"github.com/monocodus-demonstrations/mm0/elab"
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/internal/testenv"
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

func sp(n int) span.File { return span.File{Name: "t.mm1", Span: span.Span{Start: n, End: n + 1}} }

func newElab(f *testenv.Fixture) (*elab.Elaborator, *lctx.LocalContext) {
	lc := lctx.New()
	return elab.New(f.Env, lc, testenv.NewLogger()), lc
}

func TestBinderPassDeclaresBoundAndRegAndHyps(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	x := f.Env.InternAtom("x")
	y := f.Env.InternAtom("y")
	h := f.Env.InternAtom("h")

	el, _ := newElab(f)
	specs := []elab.BinderSpec{
		{Atom: x, SortAtom: setAtom, Deps: nil, Span: sp(0)},
		{Atom: y, SortAtom: setAtom, Deps: []ids.AtomID{x}, Span: sp(1)},
		{Atom: h, IsHyp: true, Formula: lisp.Atom(y), Span: sp(2)},
	}
	res := el.BinderPass(specs)
	if el.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", el.Errors().Errs)
	}
	if len(res.Args) != 2 {
		t.Fatalf("expected 2 non-hyp args, got %d", len(res.Args))
	}
	if !res.Args[0].Type.IsBound() || res.Args[0].Type.Sort() != setSort {
		t.Fatalf("expected x bound:set, got %#v", res.Args[0].Type)
	}
	if res.Args[1].Type.IsBound() {
		t.Fatalf("expected y to be a regular binder")
	}
	if res.Args[1].Type.Deps() != 1 {
		t.Fatalf("expected y to depend on x's bit (1), got %d", res.Args[1].Type.Deps())
	}
	if len(res.Hyps) != 1 || res.Hyps[0].Atom != h {
		t.Fatalf("expected one hyp binder for h, got %v", res.Hyps)
	}
}

func TestBinderPassRejectsVarAfterHyp(t *testing.T) {
	f := testenv.New()
	f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	x := f.Env.InternAtom("x")
	y := f.Env.InternAtom("y")
	h := f.Env.InternAtom("h")

	el, _ := newElab(f)
	el.BinderPass([]elab.BinderSpec{
		{Atom: x, SortAtom: setAtom, Deps: nil, Span: sp(0)},
		{Atom: h, IsHyp: true, Formula: lisp.Atom(x), Span: sp(1)},
		{Atom: y, SortAtom: setAtom, Deps: nil, Span: sp(2)},
	})
	found := false
	for _, err := range el.Errors().Errs {
		if err.Kind == mm0err.ErrMalformedBinder {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrMalformedBinder among %v", el.Errors().Errs)
	}
}

func TestBinderPassRejectsUndeclaredSort(t *testing.T) {
	f := testenv.New()
	notASort := f.Env.InternAtom("not-a-sort")
	x := f.Env.InternAtom("x")

	el, _ := newElab(f)
	el.BinderPass([]elab.BinderSpec{{Atom: x, SortAtom: notASort, Deps: nil, Span: sp(0)}})
	testenv.AssertKind(t, el.Errors().Errs[0], mm0err.ErrNotFound)
}

func TestBinderPassRejectsDepOnUndeclaredBoundVar(t *testing.T) {
	f := testenv.New()
	f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	x := f.Env.InternAtom("x")
	y := f.Env.InternAtom("y")

	el, _ := newElab(f)
	el.BinderPass([]elab.BinderSpec{
		{Atom: y, SortAtom: setAtom, Deps: []ids.AtomID{x}, Span: sp(0)},
	})
	testenv.AssertKind(t, el.Errors().Errs[0], mm0err.ErrBadDeclArgs)
}

func TestBinderPassEnforcesMaxBoundVars(t *testing.T) {
	f := testenv.New()
	f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")

	el, _ := newElab(f)
	var specs []elab.BinderSpec
	for i := 0; i < term.MaxBoundVars+1; i++ {
		specs = append(specs, elab.BinderSpec{
			Atom:     f.Env.InternAtom(string(rune('a' + i))),
			SortAtom: setAtom,
			Deps:     nil,
			Span:     sp(i),
		})
	}
	el.BinderPass(specs)
	if !el.Errors().HasErrors() {
		t.Fatalf("expected an overflow error beyond MaxBoundVars")
	}
	last := el.Errors().Errs[len(el.Errors().Errs)-1]
	testenv.AssertKind(t, last, mm0err.ErrOverflow)
}
