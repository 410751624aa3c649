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
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/term"
)

func TestDummyFinalizationSingleCandidatePicksItsSort(t *testing.T) {
	f := testenv.New()
	setSort := f.Sort(t, "set", 0)
	setAtom := f.Env.InternAtom("set")
	w := f.Env.InternAtom("w")

	el, lc := newElab(f)
	arena := elab.NewExprArena(nil, nil)
	idx, _, err := el.ElabExpr(arena, lisp.Atom(w), lisp.TargetRegOf(setAtom), sp(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	el.DummyFinalization(arena)
	if el.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", el.Errors().Errs)
	}

	infer, _, ok := lc.LookupVar(w)
	if !ok || infer.Kind() != lctx.SortBound || infer.Sort() != setSort {
		t.Fatalf("expected w finalized to Bound:set, got %v ok=%v", infer, ok)
	}
	node := arena.Dedup.Node(idx)
	if !node.IsDummy() || node.DummySort() != setSort {
		t.Fatalf("expected arena slot backfilled with Dummy(w, set), got %#v", node)
	}
}

func TestDummyFinalizationPicksSmallestSortCoercibleToEveryCandidate(t *testing.T) {
	f := testenv.New()
	nat := f.Sort(t, "nat", 0)
	real := f.Sort(t, "real", 0)
	natAtom := f.Env.InternAtom("nat")
	realAtom := f.Env.InternAtom("real")
	coeID := f.Term(t, "nat_real", []term.Arg{f.Arg("n", term.Reg(nat, 0))}, term.Reg(real, 0))
	if err := f.Env.AddCoercion(nat, real, sp(0), coeID); err != nil {
		t.Fatalf("declaring coercion: %v", err)
	}

	w := f.Env.InternAtom("w")
	el, lc := newElab(f)
	arena := elab.NewExprArena(nil, nil)
	idx1, _, err := el.ElabExpr(arena, lisp.Atom(w), lisp.TargetRegOf(natAtom), sp(1))
	if err != nil {
		t.Fatalf("unexpected error on first reference: %v", err)
	}
	idx2, _, err := el.ElabExpr(arena, lisp.Atom(w), lisp.TargetRegOf(realAtom), sp(2))
	if err != nil {
		t.Fatalf("unexpected error on second reference: %v", err)
	}
	if idx1 != idx2 {
		t.Fatalf("expected both references to resolve to the same reserved slot, got %d and %d", idx1, idx2)
	}

	el.DummyFinalization(arena)
	if el.Errors().HasErrors() {
		t.Fatalf("unexpected errors: %v", el.Errors().Errs)
	}

	infer, _, ok := lc.LookupVar(w)
	if !ok || infer.Kind() != lctx.SortBound || infer.Sort() != nat {
		t.Fatalf("expected w finalized to the smallest coercible sort nat, got %v ok=%v", infer, ok)
	}
}

func TestDummyFinalizationReportsIncompatibleCandidates(t *testing.T) {
	f := testenv.New()
	nat := f.Sort(t, "nat", 0)
	real := f.Sort(t, "real", 0)
	_ = nat
	_ = real
	natAtom := f.Env.InternAtom("nat")
	realAtom := f.Env.InternAtom("real")
	// No coercion declared between nat and real in either direction.

	w := f.Env.InternAtom("w")
	el, _ := newElab(f)
	arena := elab.NewExprArena(nil, nil)
	if _, _, err := el.ElabExpr(arena, lisp.Atom(w), lisp.TargetRegOf(natAtom), sp(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := el.ElabExpr(arena, lisp.Atom(w), lisp.TargetRegOf(realAtom), sp(2)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	el.DummyFinalization(arena)
	if !el.Errors().HasErrors() {
		t.Fatalf("expected an incompatible-candidates error")
	}
	testenv.AssertKind(t, el.Errors().Errs[len(el.Errors().Errs)-1], mm0err.ErrSortMismatch)
}
