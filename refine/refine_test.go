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

package refine_test

import (
	"math/big"
	"testing"

	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/notation"
	"github.com/monocodus-demonstrations/mm0/refine"
	"github.com/monocodus-demonstrations/mm0/span"
)

func sp(n int) span.File { return span.File{Name: "t.mm1", Span: span.Span{Start: n, End: n + 1}} }

func noNames(a ids.AtomID) string { return "a" + big.NewInt(int64(a)).String() }

func TestUnifyTwoEqualAtomsSucceeds(t *testing.T) {
	if err := refine.Unify(lisp.Atom(3), lisp.Atom(3), sp(0), noNames); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnifyMismatchedAtomsReportsSortMismatch(t *testing.T) {
	err := refine.Unify(lisp.Atom(3), lisp.Atom(4), sp(0), noNames)
	if err == nil || err.Kind != mm0err.ErrSortMismatch {
		t.Fatalf("expected ErrSortMismatch, got %v", err)
	}
}

func TestUnifyAssignsUnboundMVar(t *testing.T) {
	m := lisp.NewMVar(0, lisp.InferTarget{}, sp(0))
	if err := refine.Unify(m.Value(), lisp.Atom(7), sp(0), noNames); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.IsAssigned() {
		t.Fatalf("expected mvar to be assigned")
	}
	if m.Get().Kind() != lisp.KindAtom || m.Get().AtomID() != 7 {
		t.Fatalf("expected mvar assigned to atom 7, got %v", m.Get())
	}
}

func TestUnifyPropagatesThroughAlreadyAssignedMVar(t *testing.T) {
	m := lisp.NewMVar(0, lisp.InferTarget{}, sp(0))
	m.Assign(lisp.Atom(7))
	if err := refine.Unify(m.Value(), lisp.Atom(7), sp(0), noNames); err != nil {
		t.Fatalf("unexpected error unifying against matching assigned value: %v", err)
	}
	err := refine.Unify(m.Value(), lisp.Atom(8), sp(0), noNames)
	if err == nil || err.Kind != mm0err.ErrSortMismatch {
		t.Fatalf("expected ErrSortMismatch against mismatching assigned value, got %v", err)
	}
}

func TestUnifyRecursesStructurallyOverLists(t *testing.T) {
	a := lisp.List(lisp.Atom(1), lisp.Atom(2), lisp.Atom(3))
	b := lisp.List(lisp.Atom(1), lisp.Atom(2), lisp.Atom(3))
	if err := refine.Unify(a, b, sp(0), noNames); err != nil {
		t.Fatalf("unexpected error on structurally equal lists: %v", err)
	}
	c := lisp.List(lisp.Atom(1), lisp.Atom(9), lisp.Atom(3))
	if err := refine.Unify(a, c, sp(0), noNames); err == nil {
		t.Fatalf("expected mismatch on differing list element")
	}
}

func TestUnifyListsOfDifferentLengthMismatch(t *testing.T) {
	a := lisp.List(lisp.Atom(1), lisp.Atom(2))
	b := lisp.List(lisp.Atom(1))
	err := refine.Unify(a, b, sp(0), noNames)
	if err == nil || err.Kind != mm0err.ErrSortMismatch {
		t.Fatalf("expected ErrSortMismatch for arity mismatch, got %v", err)
	}
}

func termAtom(atoms map[ids.TermID]ids.AtomID) refine.TermAtom {
	return func(t ids.TermID) ids.AtomID { return atoms[t] }
}

func sortName(names map[ids.SortID]string) func(ids.SortID) string {
	return func(s ids.SortID) string { return names[s] }
}

func TestCoerceToIsIdentityWhenSortsMatch(t *testing.T) {
	p := notation.New()
	v := lisp.Atom(5)
	out, err := refine.CoerceTo(p, 1, 1, v, sp(0), termAtom(nil), sortName(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind() != lisp.KindAtom || out.AtomID() != 5 {
		t.Fatalf("expected v returned unchanged, got %v", out)
	}
}

func TestCoerceToMissingCoercionIsFatal(t *testing.T) {
	p := notation.New()
	_, err := refine.CoerceTo(p, 1, 2, lisp.Atom(5), sp(0), termAtom(nil), sortName(map[ids.SortID]string{1: "nat", 2: "int"}))
	if err == nil || err.Kind != mm0err.ErrMissingCoercion {
		t.Fatalf("expected ErrMissingCoercion, got %v", err)
	}
}

func TestCoerceToWrapsValueInDeclaredTerm(t *testing.T) {
	p := notation.New()
	if err := p.AddCoercionRaw(1, 2, sp(0), 42, sortName(nil)); err != nil {
		t.Fatalf("unexpected error declaring coercion: %v", err)
	}
	atoms := map[ids.TermID]ids.AtomID{42: 100}
	out, err := refine.CoerceTo(p, 1, 2, lisp.Atom(5), sp(0), termAtom(atoms), sortName(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.IsList() || len(out.ListVal()) != 2 {
		t.Fatalf("expected a 2-element application, got %v", out)
	}
	if out.ListVal()[0].AtomID() != 100 {
		t.Fatalf("expected wrapped in atom 100, got %v", out.ListVal()[0])
	}
	if out.ListVal()[1].AtomID() != 5 {
		t.Fatalf("expected original value preserved as argument, got %v", out.ListVal()[1])
	}
}

func TestCoerceToFlattensTransitiveChainInOrder(t *testing.T) {
	p := notation.New()
	if err := p.AddCoercionRaw(1, 2, sp(0), 10, sortName(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.AddCoercionRaw(2, 3, sp(1), 20, sortName(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	atoms := map[ids.TermID]ids.AtomID{10: 110, 20: 120}
	out, err := refine.CoerceTo(p, 1, 3, lisp.Atom(5), sp(0), termAtom(atoms), sortName(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Innermost application is the first link (1->2); outermost is the
	// second (2->3), since each link wraps the previous result.
	if out.ListVal()[0].AtomID() != 120 {
		t.Fatalf("expected outer wrap to be the 2->3 term, got %v", out.ListVal()[0])
	}
	inner := out.ListVal()[1]
	if inner.ListVal()[0].AtomID() != 110 {
		t.Fatalf("expected inner wrap to be the 1->2 term, got %v", inner.ListVal()[0])
	}
}

func TestCoerceToProvableFollowsCoeProv(t *testing.T) {
	p := notation.New()
	if err := p.AddCoercionRaw(1, 2, sp(0), 10, sortName(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.UpdateCoeProv(func(s ids.SortID) bool { return s == 2 }, sortName(nil)); err != nil {
		t.Fatalf("unexpected error computing coe_prov: %v", err)
	}
	atoms := map[ids.TermID]ids.AtomID{10: 110}
	out, err := refine.CoerceToProvable(p, 1, lisp.Atom(5), sp(0), termAtom(atoms), sortName(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ListVal()[0].AtomID() != 110 {
		t.Fatalf("expected wrapped via coe_prov target, got %v", out)
	}
}

func TestCheckDisjointPassesWhenBitsetsDisjoint(t *testing.T) {
	deps := []uint64{0b001, 0b010, 0b100}
	pairs := []refine.DisjointPair{{0, 1}, {1, 2}}
	if err := refine.CheckDisjoint(deps, pairs, sp(0), func(i int) string { return "x" }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckDisjointReportsEveryOffendingPair(t *testing.T) {
	deps := []uint64{0b011, 0b010, 0b100}
	pairs := []refine.DisjointPair{{0, 1}, {1, 2}}
	err := refine.CheckDisjoint(deps, pairs, sp(0), func(i int) string { return "x" })
	if err == nil || err.Kind != mm0err.ErrDisjointVariable {
		t.Fatalf("expected ErrDisjointVariable, got %v", err)
	}
}

func TestEnterFocusSplitsGoalsAndExitFocusRestoresOnSolve(t *testing.T) {
	l := lctx.New()
	g1 := lisp.NewGoal(lisp.Atom(1), sp(0))
	g2 := lisp.NewGoal(lisp.Atom(2), sp(1))
	g3 := lisp.NewGoal(lisp.Atom(3), sp(2))
	l.SetGoals([]*lisp.Goal{g1, g2, g3})

	focused, frame := refine.EnterFocus(l)
	if focused != g1 {
		t.Fatalf("expected first goal focused")
	}
	if len(l.Goals()) != 1 {
		t.Fatalf("expected only the focused goal to remain in the local context")
	}

	focused.Solve(lisp.Atom(99))
	if err := refine.ExitFocus(l, frame, func(g *lisp.Goal) string { return "goal" }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l.Goals()) != 2 || l.Goals()[0] != g2 || l.Goals()[1] != g3 {
		t.Fatalf("expected saved goals restored, got %v", l.Goals())
	}
}

func TestExitFocusReportsUnsolvedGoalsWithNoCloser(t *testing.T) {
	l := lctx.New()
	g1 := lisp.NewGoal(lisp.Atom(1), sp(0))
	l.SetGoals([]*lisp.Goal{g1})
	_, frame := refine.EnterFocus(l)

	err := refine.ExitFocus(l, frame, func(g *lisp.Goal) string { return "goal" })
	if err == nil || err.Kind != mm0err.ErrUnsolvedGoal {
		t.Fatalf("expected ErrUnsolvedGoal, got %v", err)
	}
}

type solvingCloser struct{ target *lisp.Goal }

func (c *solvingCloser) Call(args []lisp.Value) (lisp.Value, *mm0err.Error) {
	c.target.Solve(lisp.Atom(0))
	return lisp.Value{}, nil
}

func TestExitFocusInvokesCloserToAttemptClosure(t *testing.T) {
	l := lctx.New()
	g1 := lisp.NewGoal(lisp.Atom(1), sp(0))
	l.SetGoals([]*lisp.Goal{g1})
	_, frame := refine.EnterFocus(l)
	l.SetCloser(&solvingCloser{target: g1})

	if err := refine.ExitFocus(l, frame, func(g *lisp.Goal) string { return "goal" }); err != nil {
		t.Fatalf("expected closer to resolve the goal, got error: %v", err)
	}
}

func TestHaveRecordsNamedSubproofRetrievableByGetProof(t *testing.T) {
	l := lctx.New()
	refine.Have(l, 7, lisp.Atom(1), lisp.Atom(2))
	stmt, proof, ok := l.GetProof(7)
	if !ok {
		t.Fatalf("expected subproof to be recorded")
	}
	if stmt.AtomID() != 1 || proof.AtomID() != 2 {
		t.Fatalf("unexpected stmt/proof recorded: %v %v", stmt, proof)
	}
}

type recordingHook struct {
	gotArgs []lisp.Value
}

func (h *recordingHook) Call(args []lisp.Value) (lisp.Value, *mm0err.Error) {
	h.gotArgs = args
	return lisp.Atom(0), nil
}

type noopCallback struct{}

func (noopCallback) Call(args []lisp.Value) (lisp.Value, *mm0err.Error) { return lisp.Atom(0), nil }

func TestInvokeExtraArgsPassesCallbackAndLeftoverArgs(t *testing.T) {
	hook := &recordingHook{}
	leftover := []lisp.Value{lisp.Atom(1), lisp.Atom(2)}
	_, err := refine.InvokeExtraArgs(hook, noopCallback{}, leftover, sp(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hook.gotArgs) != 3 {
		t.Fatalf("expected callback plus 2 leftover args, got %d", len(hook.gotArgs))
	}
	if !hook.gotArgs[0].IsProc() {
		t.Fatalf("expected first arg to be the wrapped callback, got %v", hook.gotArgs[0])
	}
	if hook.gotArgs[1].AtomID() != 1 || hook.gotArgs[2].AtomID() != 2 {
		t.Fatalf("leftover args not forwarded in order: %v", hook.gotArgs[1:])
	}
}

func TestInvokeExtraArgsWithNilHookIsFatal(t *testing.T) {
	_, err := refine.InvokeExtraArgs(nil, noopCallback{}, nil, sp(0))
	if err == nil || err.Kind != mm0err.ErrArity {
		t.Fatalf("expected ErrArity when no hook installed, got %v", err)
	}
}
