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
	"github.com/monocodus-demonstrations/mm0/internal/testenv"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/term"
)

func TestElabTermDeclaresBareConstructorWithNoValue(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	x := f.Env.InternAtom("x")
	c := f.Env.InternAtom("c")

	el, _ := newElab(f)
	specs := []elab.BinderSpec{{Atom: x, SortAtom: setAtom, Deps: nil, Span: sp(0)}}
	id, err := el.ElabTerm(c, sp(1), sp(1), 0, specs, setAtom)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tm := f.Env.Term(id)
	if tm.HasVal() {
		t.Fatalf("expected a bare term constructor to have no value")
	}
	if len(tm.Args) != 1 || !tm.Args[0].Type.IsBound() || tm.Args[0].Type.Sort() != setSort {
		t.Fatalf("expected one bound:set arg, got %#v", tm.Args)
	}
	if tm.Ret.Sort() != setSort || tm.Ret.Deps() != 1 {
		t.Fatalf("expected return set depending on bit 0, got %#v", tm.Ret)
	}
}

func TestElabTermRejectsHypBinders(t *testing.T) {
	f := testenv.New()
	setAtom := f.Env.InternAtom("set")
	f.Sort(t, "set", 0)
	h := f.Env.InternAtom("h")
	c := f.Env.InternAtom("c")

	el, _ := newElab(f)
	specs := []elab.BinderSpec{{Atom: h, IsHyp: true, Formula: lisp.Atom(setAtom), Span: sp(0)}}
	_, err := el.ElabTerm(c, sp(1), sp(1), 0, specs, setAtom)
	testenv.AssertKind(t, err, mm0err.ErrBadDeclArgs)
}

func TestElabDefForwardDeclarationRequiresStatedReturnSort(t *testing.T) {
	f := testenv.New()
	setAtom := f.Env.InternAtom("set")
	f.Sort(t, "set", 0)
	d := f.Env.InternAtom("d")

	el, _ := newElab(f)
	_, err := el.ElabDef(d, sp(0), sp(0), 0, nil, 0, lisp.Undef)
	testenv.AssertKind(t, err, mm0err.ErrMissingReturn)
}

func TestElabDefForwardDeclarationWithStatedReturnSortHasNoValue(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	d := f.Env.InternAtom("d")

	el, _ := newElab(f)
	id, err := el.ElabDef(d, sp(0), sp(0), 0, nil, setAtom, lisp.Undef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tm := f.Env.Term(id)
	if !tm.HasVal() || tm.Val() != nil {
		t.Fatalf("expected a forward-declared def: HasVal true, Val nil, got HasVal=%v Val=%v", tm.HasVal(), tm.Val())
	}
	if tm.Ret.Sort() != setSort {
		t.Fatalf("expected stated return sort set, got %#v", tm.Ret)
	}
}

func TestElabDefWithStatedReturnSortElaboratesBodyAgainstIt(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	x := f.Env.InternAtom("x")
	d := f.Env.InternAtom("d")

	el, _ := newElab(f)
	specs := []elab.BinderSpec{{Atom: x, SortAtom: setAtom, Deps: nil, Span: sp(0)}}
	id, err := el.ElabDef(d, sp(1), sp(1), 0, specs, setAtom, lisp.Atom(x))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tm := f.Env.Term(id)
	if !tm.HasVal() || tm.Val() == nil {
		t.Fatalf("expected a fully elaborated def body")
	}
	if tm.Ret.Sort() != setSort {
		t.Fatalf("expected stated return sort set, got %#v", tm.Ret)
	}
}

func TestElabDefWithNoStatedReturnInfersFromBody(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	x := f.Env.InternAtom("x")
	d := f.Env.InternAtom("d")

	el, _ := newElab(f)
	specs := []elab.BinderSpec{{Atom: x, SortAtom: setAtom, Deps: nil, Span: sp(0)}}
	id, err := el.ElabDef(d, sp(1), sp(1), 0, specs, 0, lisp.Atom(x))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tm := f.Env.Term(id)
	if tm.Ret.Sort() != setSort {
		t.Fatalf("expected return sort inferred as set from the body, got %#v", tm.Ret)
	}
}

func TestElabDefRejectsHypBinders(t *testing.T) {
	f := testenv.New()
	setAtom := f.Env.InternAtom("set")
	f.Sort(t, "set", 0)
	h := f.Env.InternAtom("h")
	d := f.Env.InternAtom("d")

	el, _ := newElab(f)
	specs := []elab.BinderSpec{{Atom: h, IsHyp: true, Formula: lisp.Atom(setAtom), Span: sp(0)}}
	_, err := el.ElabDef(d, sp(1), sp(1), 0, specs, setAtom, lisp.Undef)
	testenv.AssertKind(t, err, mm0err.ErrBadDeclArgs)
}

func TestElabAxiomCommitsStatementWithNoProof(t *testing.T) {
	f := testenv.New()
	wff := f.Sort(t, "wff", term.ModProvable)
	f.Term(t, "p", nil, term.Reg(wff, 0))
	pAtom := f.Env.InternAtom("p")
	qAtom := f.Env.InternAtom("q")
	f.Term(t, "q", nil, term.Reg(wff, 0))
	h := f.Env.InternAtom("h")
	ax := f.Env.InternAtom("ax-p-implies-q")

	el, _ := newElab(f)
	specs := []elab.BinderSpec{{Atom: h, IsHyp: true, Formula: lisp.Atom(pAtom), Span: sp(0)}}
	id, err := el.ElabAxiom(ax, sp(1), sp(1), 0, specs, lisp.Atom(qAtom))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	thm := f.Env.Thm(id)
	if thm.HasProof() {
		t.Fatalf("expected an axiom to never carry a proof")
	}
	if len(thm.Hyps) != 1 {
		t.Fatalf("expected one hypothesis, got %d", len(thm.Hyps))
	}
}
