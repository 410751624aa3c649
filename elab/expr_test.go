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
	"github.com/monocodus-demonstrations/mm0/term"
)

func TestElabExprVarRefAtMatchingTargetIsIdentity(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	x := f.Env.InternAtom("x")

	el, _ := newElab(f)
	res := el.BinderPass([]elab.BinderSpec{{Atom: x, SortAtom: setAtom, Deps: nil, Span: sp(0)}})
	if el.Errors().HasErrors() {
		t.Fatalf("unexpected binder errors: %v", el.Errors().Errs)
	}

	arena := elab.NewExprArena(res.Args, res.Anon)
	idx, sort, err := el.ElabExpr(arena, lisp.Atom(x), lisp.TargetBoundOf(setAtom), sp(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected x's seeded Ref(0), got %d", idx)
	}
	if sort != setSort {
		t.Fatalf("expected sort %d, got %d", setSort, sort)
	}
}

func TestElabExprZeroArgTermApplicationIsProvable(t *testing.T) {
	f := testenv.New()
	wff := f.Sort(t, "wff", term.ModProvable)
	cID := f.Term(t, "c", nil, term.Reg(wff, 0))
	_ = cID
	cAtom := f.Env.InternAtom("c")

	el, _ := newElab(f)
	arena := elab.NewExprArena(nil, nil)
	_, sort, err := el.ElabExpr(arena, lisp.Atom(cAtom), lisp.Provable(), sp(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sort != wff {
		t.Fatalf("expected sort wff (%d), got %d", wff, sort)
	}
}

func TestElabExprInsertsCoercionChainForMismatchedSort(t *testing.T) {
	f := testenv.New()
	nat := f.Sort(t, "nat", 0)
	real := f.Sort(t, "real", 0)
	natAtom := f.Env.InternAtom("nat")
	realAtom := f.Env.InternAtom("real")

	coeID := f.Term(t, "nat_real", []term.Arg{f.Arg("n", term.Reg(nat, 0))}, term.Reg(real, 0))
	if err := f.Env.AddCoercion(nat, real, sp(0), coeID); err != nil {
		t.Fatalf("declaring coercion: %v", err)
	}

	x := f.Env.InternAtom("x")
	el, _ := newElab(f)
	res := el.BinderPass([]elab.BinderSpec{{Atom: x, SortAtom: natAtom, Deps: nil, Span: sp(1)}})
	if el.Errors().HasErrors() {
		t.Fatalf("unexpected binder errors: %v", el.Errors().Errs)
	}

	arena := elab.NewExprArena(res.Args, res.Anon)
	idx, sort, err := el.ElabExpr(arena, lisp.Atom(x), lisp.TargetRegOf(realAtom), sp(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sort != real {
		t.Fatalf("expected coerced sort real (%d), got %d", real, sort)
	}
	if idx == 0 {
		t.Fatalf("expected a new wrapping node distinct from x's seeded Ref(0)")
	}
	node := arena.Dedup.Node(idx)
	if !node.IsApp() || node.AppTerm() != coeID {
		t.Fatalf("expected the coercion term applied at the outer node, got %#v", node)
	}
}

func TestElabExprBoundTargetRejectsRegularVariable(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	_ = setSort
	setAtom := f.Env.InternAtom("set")
	x := f.Env.InternAtom("x")
	y := f.Env.InternAtom("y")

	el, _ := newElab(f)
	res := el.BinderPass([]elab.BinderSpec{
		{Atom: x, SortAtom: setAtom, Deps: nil, Span: sp(0)},
		{Atom: y, SortAtom: setAtom, Deps: []ids.AtomID{}, Span: sp(1)},
	})
	if el.Errors().HasErrors() {
		t.Fatalf("unexpected binder errors: %v", el.Errors().Errs)
	}

	arena := elab.NewExprArena(res.Args, res.Anon)
	_, _, err := el.ElabExpr(arena, lisp.Atom(y), lisp.TargetBoundOf(setAtom), sp(2))
	testenv.AssertKind(t, err, mm0err.ErrExpectedBound)
}

func TestElabExprFirstSightOfUnknownAtomReservesSlotAndAddsCandidate(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	w := f.Env.InternAtom("w")

	el, lc := newElab(f)
	arena := elab.NewExprArena(nil, nil)
	idx, sort, err := el.ElabExpr(arena, lisp.Atom(w), lisp.TargetRegOf(setAtom), sp(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sort != 0 {
		t.Fatalf("expected no committed sort yet, got %d", sort)
	}
	infer, _, ok := lc.LookupVar(w)
	if !ok || infer.Kind() != lctx.SortUnknown {
		t.Fatalf("expected w declared Unknown, got %v ok=%v", infer, ok)
	}
	cands := infer.Candidates()
	if len(cands) != 1 || cands[0].Sort != setSort {
		t.Fatalf("expected one candidate sort (set), got %v", cands)
	}
	if _, ok := arena.VarIdx[w]; !ok || arena.VarIdx[w] != idx {
		t.Fatalf("expected w's placeholder slot reserved in VarIdx at %d", idx)
	}
}
