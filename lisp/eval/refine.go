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

package eval

import (
	"fmt"

	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/refine"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

// This file is the bridge between the evaluator and refine: refine
// knows nothing about lisp/eval, and elab is
// never imported by lisp/eval directly, so the goal-directed proof
// builtins (spec §4.G) live here, driving refine's unification and
// coercion primitives directly against lisp.Value application syntax
// instead of routing through elab's hash-consing ExprArena (which is
// scoped to one declaration's commit-time body, not a tactic script's
// ad hoc proof expressions).

// termAtomOf, sortNameOf, and atomNameOf adapt ev.Env's lookups to the
// small function-value parameters refine.CoerceTo/CoerceToProvable/Unify
// take, keeping refine itself free of any dependency on env or lisp/eval.
func termAtomOf(ev *Evaluator) refine.TermAtom {
	return func(t ids.TermID) ids.AtomID { return ev.Env.Term(t).Atom }
}

func sortNameOf(ev *Evaluator) func(ids.SortID) string {
	return func(s ids.SortID) string { return ev.Env.SortName(s) }
}

func atomNameOf(ev *Evaluator) func(ids.AtomID) string {
	return func(a ids.AtomID) string { return ev.Env.AtomName(a) }
}

func sortByAtom(ev *Evaluator, atom ids.AtomID) (ids.SortID, bool) {
	data := ev.Env.AtomData(atom)
	if !data.HasSort() {
		return 0, false
	}
	return data.Sort(), true
}

// instantiateExpr materializes a committed term.ExprNode (a Thm's Heap/
// Hyps/Ret, or a Term's Val) back into a tactic-script value, substituting
// argVals for the formal-argument self-references term.SubstRefsExpr's
// own doc comment identifies: a Ref(i) with i < len(argVals) stands for
// the i-th formal argument and passes straight through to argVals[i];
// any other Ref indexes into heap, which was built the same way and so
// bottoms out in an argument after finitely many steps.
func instantiateExpr(ev *Evaluator, n term.ExprNode, heap []term.ExprNode, argVals []lisp.Value) lisp.Value {
	switch {
	case n.IsRef():
		i := n.RefIndex()
		if i < len(argVals) {
			return argVals[i]
		}
		return instantiateExpr(ev, heap[i], heap, argVals)
	case n.IsDummy():
		return lisp.Atom(n.DummyAtom())
	default:
		childArgs := n.AppArgs()
		out := make([]lisp.Value, len(childArgs)+1)
		out[0] = lisp.Atom(ev.Env.Term(n.AppTerm()).Atom)
		for i, a := range childArgs {
			out[i+1] = instantiateExpr(ev, a, heap, argVals)
		}
		return lisp.List(out...)
	}
}

// exprSort recursively infers v's sort, inserting coercions via
// refine.CoerceTo as term applications are checked argument by argument
// (spec §4.E's coercion-insertion rule, run here at the lisp.Value level
// for to-expr/infer-type/refine instead of elab's ExprArena level, since
// these run mid-tactic-script against values nothing is hash-consing).
// It returns the (possibly coercion-wrapped) value alongside its sort.
func exprSort(ev *Evaluator, v lisp.Value, sp span.File) (lisp.Value, ids.SortID, *mm0err.Error) {
	v, uspan := v.Unwrap()
	if uspan != (span.File{}) {
		sp = uspan
	}

	switch v.Kind() {
	case lisp.KindAtom:
		atom := v.AtomID()
		if sort, _, ok := ev.Lctx.LookupVar(atom); ok {
			return v, sort.Sort(), nil
		}
		data := ev.Env.AtomData(atom)
		if data.HasDecl() && data.Decl().IsTerm() {
			t := ev.Env.Term(data.Decl().TermID())
			if len(t.Args) != 0 {
				return lisp.Value{}, 0, mm0err.New(mm0err.ErrArity, sp, "%s expects %d argument(s)", ev.Env.AtomName(atom), len(t.Args))
			}
			return v, t.Ret.Sort(), nil
		}
		return lisp.Value{}, 0, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown variable or term %q", ev.Env.AtomName(atom))

	case lisp.KindList:
		items := v.ListVal()
		if len(items) == 0 {
			return lisp.Value{}, 0, mm0err.New(mm0err.ErrMalformedBinder, sp, "empty application")
		}
		head, _ := items[0].Unwrap()
		if head.Kind() != lisp.KindAtom {
			return lisp.Value{}, 0, mm0err.New(mm0err.ErrTypeMismatch, sp, "expression head must be an atom")
		}
		data := ev.Env.AtomData(head.AtomID())
		if !data.HasDecl() || !data.Decl().IsTerm() {
			return lisp.Value{}, 0, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown term %q", ev.Env.AtomName(head.AtomID()))
		}
		termID := data.Decl().TermID()
		t := ev.Env.Term(termID)
		if err := ev.Env.CheckTermNargs(termID, len(items)-1); err != nil {
			return lisp.Value{}, 0, err
		}
		out := make([]lisp.Value, len(items))
		out[0] = items[0]
		for i, arg := range items[1:] {
			av, asort, err := exprSort(ev, arg, sp)
			if err != nil {
				return lisp.Value{}, 0, err
			}
			cv, cerr := refine.CoerceTo(ev.Env.Parser(), asort, t.Args[i].Type.Sort(), av, sp, termAtomOf(ev), sortNameOf(ev))
			if cerr != nil {
				return lisp.Value{}, 0, cerr
			}
			out[i+1] = cv
		}
		return lisp.List(out...), t.Ret.Sort(), nil

	case lisp.KindMVar:
		m := v.MVarVal()
		if m.IsAssigned() {
			return exprSort(ev, m.Get(), sp)
		}
		if m.Target.IsBound() || m.Target.IsReg() {
			if s, ok := sortByAtom(ev, m.Target.SortAtom()); ok {
				return v, s, nil
			}
		}
		return lisp.Value{}, 0, mm0err.New(mm0err.ErrSortMismatch, sp, "cannot infer the sort of an unconstrained metavariable")

	default:
		return lisp.Value{}, 0, mm0err.New(mm0err.ErrTypeMismatch, sp, "not a valid expression")
	}
}

// extraArgsCallback is the ExtraArgsCallback resumed once the user's
// refine-extra-args hook has inspected the leftover arguments; this core
// has no continuation to resume into at that point (the extra arguments
// are consumed by the hook itself, not threaded back into proof
// elaboration), so Call is a no-op.
type extraArgsCallback struct{}

func (extraArgsCallback) Call(args []lisp.Value) (lisp.Value, *mm0err.Error) { return lisp.Undef, nil }

// evalCallback adapts a lisp procedure value into the lisp.Callback
// interface refine.InvokeExtraArgs and refine.ExitFocus's closer call
// through.
type evalCallback struct {
	ev   *Evaluator
	proc lisp.Value
}

func (c evalCallback) Call(args []lisp.Value) (lisp.Value, *mm0err.Error) {
	return c.ev.Apply(c.proc, args, span.File{})
}

// refineExtraArgsHook returns the installed refine-extra-args hook as a
// lisp.Callback, or nil if it was never set to a procedure (spec.md Open
// Question #1: the default is to reject stray arguments, which
// refine.InvokeExtraArgs already does when its hook parameter is nil).
func refineExtraArgsHook(ev *Evaluator) lisp.Callback {
	v, _ := ev.refineExtraArgs.Unwrap()
	if !v.IsProc() {
		return nil
	}
	return evalCallback{ev: ev, proc: v}
}

// refineProof elaborates proof against tgt (spec §4.G): a bare atom is
// either a previously `have`-named subproof or a zero-argument axiom or
// theorem; a list application `(thm arg...)` instantiates thm's Hyps/Ret
// via instantiateExpr, recursively refines each hypothesis position, and
// unifies the instantiated conclusion against tgt. The conversion forms
// :conv/:sym/:unfold are recognized structurally, recursing into their
// sub-proof position; they build no term.ProofNode (refine.BuildConv/
// BuildSym/BuildUnfold are not called here). There is no per-variable
// dummy sharing (spec §4.G item 5's `nheap` side map).
func refineProof(ev *Evaluator, tgt lisp.Value, proof lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	proof, uspan := proof.Unwrap()
	if uspan != (span.File{}) {
		sp = uspan
	}

	switch proof.Kind() {
	case lisp.KindAtom:
		atom := proof.AtomID()
		if stmt, _, ok := ev.Lctx.GetProof(atom); ok {
			if err := refine.Unify(tgt, stmt, sp, atomNameOf(ev)); err != nil {
				return lisp.Value{}, err
			}
			return proof, nil
		}
		data := ev.Env.AtomData(atom)
		if data.HasDecl() && data.Decl().IsThm() {
			th := ev.Env.Thm(data.Decl().ThmID())
			if len(th.Args) != 0 || len(th.Hyps) != 0 {
				return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp, "%s needs arguments", ev.Env.AtomName(atom))
			}
			concl := instantiateExpr(ev, th.Ret, th.Heap, nil)
			if err := refine.Unify(tgt, concl, sp, atomNameOf(ev)); err != nil {
				return lisp.Value{}, err
			}
			return proof, nil
		}
		return lisp.Value{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "%q does not name a subproof, axiom, or theorem", ev.Env.AtomName(atom))

	case lisp.KindList:
		items := proof.ListVal()
		if len(items) == 0 {
			return lisp.Value{}, mm0err.New(mm0err.ErrMalformedBinder, sp, "empty proof application")
		}
		head, _ := items[0].Unwrap()
		if head.Kind() == lisp.KindAtom {
			switch ev.Env.AtomName(head.AtomID()) {
			case ":conv":
				if len(items) != 3 {
					return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp, ":conv expects an equation and a subproof")
				}
				if err := refine.Unify(tgt, items[1], sp, atomNameOf(ev)); err != nil {
					return lisp.Value{}, err
				}
				return refineProof(ev, items[1], items[2], sp)
			case ":sym", ":unfold":
				if len(items) != 2 {
					return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp, "%s expects one subproof", ev.Env.AtomName(head.AtomID()))
				}
				return refineProof(ev, tgt, items[1], sp)
			}
		}
		if head.Kind() != lisp.KindAtom {
			return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "proof application head must be an atom")
		}
		data := ev.Env.AtomData(head.AtomID())
		if !data.HasDecl() || !data.Decl().IsThm() {
			return lisp.Value{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "%q does not name a theorem", ev.Env.AtomName(head.AtomID()))
		}
		th := ev.Env.Thm(data.Decl().ThmID())
		given := items[1:]
		nargs := len(th.Args)
		if len(given) < nargs {
			return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp, "%s expects at least %d argument(s), got %d", ev.Env.AtomName(head.AtomID()), nargs, len(given))
		}
		argVals := make([]lisp.Value, nargs)
		for i := 0; i < nargs; i++ {
			av, asort, err := exprSort(ev, given[i], sp)
			if err != nil {
				return lisp.Value{}, err
			}
			cv, cerr := refine.CoerceTo(ev.Env.Parser(), asort, th.Args[i].Type.Sort(), av, sp, termAtomOf(ev), sortNameOf(ev))
			if cerr != nil {
				return lisp.Value{}, cerr
			}
			argVals[i] = cv
		}
		hypCount := len(th.Hyps)
		leftover := given[nargs:]
		if len(leftover) > hypCount {
			extra := leftover[hypCount:]
			hook := refineExtraArgsHook(ev)
			if _, err := refine.InvokeExtraArgs(hook, extraArgsCallback{}, extra, sp); err != nil {
				return lisp.Value{}, err
			}
			leftover = leftover[:hypCount]
		}
		if len(leftover) < hypCount {
			return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp, "%s is missing %d subproof(s)", ev.Env.AtomName(head.AtomID()), hypCount-len(leftover))
		}
		for i, hyp := range th.Hyps {
			hypStmt := instantiateExpr(ev, hyp, th.Heap, argVals)
			if _, err := refineProof(ev, hypStmt, leftover[i], sp); err != nil {
				return lisp.Value{}, err
			}
		}
		concl := instantiateExpr(ev, th.Ret, th.Heap, argVals)
		if err := refine.Unify(tgt, concl, sp, atomNameOf(ev)); err != nil {
			return lisp.Value{}, err
		}
		return proof, nil

	default:
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "not a valid proof")
	}
}

// lowerArgs reads add-term/add-thm's binder surface syntax: a list of
// (name sort bound?) triples. Regular binders (and, in doAddTerm, the
// return type) receive a dependency bitset of every bound bit seen so
// far rather than a separately authored one, the natural default absent
// a per-binder dependency syntax of its own (an Open Question; see
// DESIGN.md).
func lowerArgs(ev *Evaluator, argsList lisp.Value, sp span.File) ([]term.Arg, *mm0err.Error) {
	raw := argsList.ListVal()
	args := make([]term.Arg, len(raw))
	boundCount := 0
	for i, item := range raw {
		triple := item.ListVal()
		if len(triple) != 3 {
			return nil, mm0err.New(mm0err.ErrMalformedBinder, sp, "binder must be (name sort bound?)")
		}
		argAtom, _ := triple[0].Unwrap()
		sortAtom, _ := triple[1].Unwrap()
		s, ok := sortByAtom(ev, sortAtom.AtomID())
		if !ok {
			return nil, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown sort %q", ev.Env.AtomName(sortAtom.AtomID()))
		}
		if truthy(triple[2]) {
			args[i] = term.Arg{Atom: argAtom.AtomID(), Type: term.Bound(s)}
			boundCount++
		} else {
			args[i] = term.Arg{Atom: argAtom.AtomID(), Type: term.Reg(s, boundMaskUpTo(boundCount))}
		}
	}
	return args, nil
}

func boundMaskUpTo(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

// lowerExpr structurally lowers a hand-authored statement expression into
// a term.ExprNode against args (add-term/add-thm's declared binders),
// resolving bound variable references to term.Ref and term applications
// to term.App. Unlike elab.ElabExpr it inserts no coercions: a script
// calling add-thm is expected to write out any coercion term explicitly,
// since nothing here is hash-consed or shared the way a parsed `def`/
// `theorem` body is.
func lowerExpr(ev *Evaluator, args []term.Arg, v lisp.Value, sp span.File) (term.ExprNode, *mm0err.Error) {
	v, _ = v.Unwrap()
	switch v.Kind() {
	case lisp.KindAtom:
		atom := v.AtomID()
		for i, a := range args {
			if a.Atom == atom {
				return term.Ref(i), nil
			}
		}
		data := ev.Env.AtomData(atom)
		if data.HasDecl() && data.Decl().IsTerm() {
			t := ev.Env.Term(data.Decl().TermID())
			if len(t.Args) != 0 {
				return term.ExprNode{}, mm0err.New(mm0err.ErrArity, sp, "%s expects %d argument(s)", ev.Env.AtomName(atom), len(t.Args))
			}
			return term.App(data.Decl().TermID(), nil), nil
		}
		return term.ExprNode{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown variable or term %q", ev.Env.AtomName(atom))

	case lisp.KindList:
		items := v.ListVal()
		if len(items) == 0 {
			return term.ExprNode{}, mm0err.New(mm0err.ErrMalformedBinder, sp, "empty application")
		}
		head, _ := items[0].Unwrap()
		if head.Kind() != lisp.KindAtom {
			return term.ExprNode{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "expression head must be an atom")
		}
		data := ev.Env.AtomData(head.AtomID())
		if !data.HasDecl() || !data.Decl().IsTerm() {
			return term.ExprNode{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown term %q", ev.Env.AtomName(head.AtomID()))
		}
		termID := data.Decl().TermID()
		if err := ev.Env.CheckTermNargs(termID, len(items)-1); err != nil {
			return term.ExprNode{}, err
		}
		out := make([]term.ExprNode, len(items)-1)
		for i, a := range items[1:] {
			n, err := lowerExpr(ev, args, a, sp)
			if err != nil {
				return term.ExprNode{}, err
			}
			out[i] = n
		}
		return term.App(termID, out), nil

	default:
		return term.ExprNode{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "not a valid expression")
	}
}

func doAddTerm(ev *Evaluator, nameAtom ids.AtomID, argsList, ret lisp.Value, sp span.File) (ids.TermID, *mm0err.Error) {
	args, err := lowerArgs(ev, argsList, sp)
	if err != nil {
		return 0, err
	}
	retTuple := ret.ListVal()
	if len(retTuple) != 2 {
		return 0, mm0err.New(mm0err.ErrMalformedBinder, sp, "add-term return must be (sort bound?)")
	}
	retSortAtom, _ := retTuple[0].Unwrap()
	retSort, ok := sortByAtom(ev, retSortAtom.AtomID())
	if !ok {
		return 0, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown sort %q", ev.Env.AtomName(retSortAtom.AtomID()))
	}
	boundCount := 0
	for _, a := range args {
		if a.Type.IsBound() {
			boundCount++
		}
	}
	var retType term.Type
	if truthy(retTuple[1]) {
		retType = term.Bound(retSort)
	} else {
		retType = term.Reg(retSort, boundMaskUpTo(boundCount))
	}
	return ev.Env.AddTerm(nameAtom, sp, func() term.Term {
		return term.NewTerm(nameAtom, sp, sp, 0, args, retType)
	})
}

func doAddThm(ev *Evaluator, nameAtom ids.AtomID, argsList, hypsList, retExpr lisp.Value, sp span.File) (ids.ThmID, *mm0err.Error) {
	args, err := lowerArgs(ev, argsList, sp)
	if err != nil {
		return 0, err
	}
	hypItems := hypsList.ListVal()
	hyps := make([]term.ExprNode, len(hypItems))
	for i, h := range hypItems {
		n, herr := lowerExpr(ev, args, h, sp)
		if herr != nil {
			return 0, herr
		}
		hyps[i] = n
	}
	ret, rerr := lowerExpr(ev, args, retExpr, sp)
	if rerr != nil {
		return 0, rerr
	}
	return ev.Env.AddThm(nameAtom, sp, func() term.Thm {
		return term.NewThm(nameAtom, sp, sp, 0, args, nil, hyps, ret)
	})
}

// biRefine implements the `refine` builtin (spec §4.G). With one argument
// it is a proof for the first goal in scope, which it solves; with two it
// checks proof against the stated target directly, leaving goal handling
// to the caller (the shape `have` and nested refine calls use).
func biRefine(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ev.pushFrame(StateRefine, sp)
	defer ev.popFrame()

	proof := args[len(args)-1]
	var tgt lisp.Value
	var goal *lisp.Goal
	if len(args) >= 2 {
		tgt = args[0]
	} else {
		gs := ev.Lctx.Goals()
		if len(gs) == 0 {
			return lisp.Value{}, mm0err.New(mm0err.ErrUnsolvedGoal, sp, "refine called with no goal in scope")
		}
		goal = gs[0]
		tgt = goal.Stmt
	}
	solved, err := refineProof(ev, tgt, proof, sp)
	if err != nil {
		return lisp.Value{}, err
	}
	if goal != nil {
		goal.Solve(solved)
	}
	return solved, nil
}

// biRefines implements `refines`, applying one proof per currently open
// goal in order and clearing the goal list once all are solved (spec
// §4.F's Refines(sp, iter) state: an iterated refine over the goal list).
func biRefines(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ev.pushFrame(StateRefines, sp)
	defer ev.popFrame()

	uv, _ := args[0].Unwrap()
	if !uv.IsList() {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "refines expects a list of proofs")
	}
	gs := ev.Lctx.Goals()
	proofs := uv.ListVal()
	if len(proofs) != len(gs) {
		return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp, "refines got %d proof(s) for %d goal(s)", len(proofs), len(gs))
	}
	out := make([]lisp.Value, len(proofs))
	for i, p := range proofs {
		solved, err := refineProof(ev, gs[i].Stmt, p, sp)
		if err != nil {
			return lisp.Value{}, err
		}
		gs[i].Solve(solved)
		out[i] = solved
	}
	ev.Lctx.SetGoals(nil)
	return lisp.List(out...), nil
}

// biFocus implements `focus` (spec §4.G "focus"): runs proc against the
// first open goal with the rest set aside, then restores or reports
// whatever focus's own refine.EnterFocus/ExitFocus leave behind.
func biFocus(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ev.pushFrame(StateFocus, sp)
	defer ev.popFrame()

	goal, frame := refine.EnterFocus(ev.Lctx)
	if _, err := ev.Apply(args[0], []lisp.Value{goal.Value()}, sp); err != nil {
		return lisp.Value{}, err
	}
	if err := refine.ExitFocus(ev.Lctx, frame, func(g *lisp.Goal) string {
		return displayString(ev, g.Stmt)
	}); err != nil {
		return lisp.Value{}, err
	}
	return lisp.Undef, nil
}

func biToExpr(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	v, sort, err := exprSort(ev, args[0], sp)
	if err != nil {
		return lisp.Value{}, err
	}
	if len(args) < 2 {
		return v, nil
	}
	targetV, _ := args[1].Unwrap()
	if targetV.Kind() != lisp.KindAtom {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "to-expr's target must be a sort atom")
	}
	target, ok := sortByAtom(ev, targetV.AtomID())
	if !ok {
		return lisp.Value{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown sort %q", ev.Env.AtomName(targetV.AtomID()))
	}
	return refine.CoerceTo(ev.Env.Parser(), sort, target, v, sp, termAtomOf(ev), sortNameOf(ev))
}

func biInferType(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	_, sort, err := exprSort(ev, args[0], sp)
	if err != nil {
		return lisp.Value{}, err
	}
	return lisp.Atom(ev.Env.Sort(sort).Atom()), nil
}

func biHave(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	nameV, _ := args[0].Unwrap()
	if nameV.Kind() != lisp.KindAtom {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "have expects a name atom")
	}
	stmt, proof := args[1], args[2]
	if _, err := refineProof(ev, stmt, proof, sp); err != nil {
		return lisp.Value{}, err
	}
	refine.Have(ev.Lctx, nameV.AtomID(), stmt, proof)
	return lisp.Undef, nil
}

func biGetDecl(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	v, _ := args[0].Unwrap()
	if v.Kind() != lisp.KindAtom {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "get-decl expects an atom")
	}
	data := ev.Env.AtomData(v.AtomID())
	if data.HasSort() {
		return lisp.List(lisp.Atom(ev.declKinds.sortAtom), v), nil
	}
	if !data.HasDecl() {
		return lisp.Bool(false), nil
	}
	key := data.Decl()
	if key.IsTerm() {
		t := ev.Env.Term(key.TermID())
		return lisp.List(lisp.Atom(ev.declKinds.termAtom), v, lisp.IntFromInt64(int64(len(t.Args))), lisp.Atom(ev.Env.Sort(t.Ret.Sort()).Atom())), nil
	}
	th := ev.Env.Thm(key.ThmID())
	return lisp.List(lisp.Atom(ev.declKinds.thmAtom), v, lisp.IntFromInt64(int64(len(th.Args))), lisp.IntFromInt64(int64(len(th.Hyps))), lisp.Bool(th.HasProof())), nil
}

func biAddTerm(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	nameV, _ := args[0].Unwrap()
	if nameV.Kind() != lisp.KindAtom {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "add-term expects a name atom")
	}
	if _, err := doAddTerm(ev, nameV.AtomID(), args[1], args[2], sp); err != nil {
		return lisp.Value{}, err
	}
	return nameV, nil
}

func biAddThm(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	nameV, _ := args[0].Unwrap()
	if nameV.Kind() != lisp.KindAtom {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "add-thm expects a name atom")
	}
	if _, err := doAddThm(ev, nameV.AtomID(), args[1], args[2], args[3], sp); err != nil {
		return lisp.Value{}, err
	}
	return nameV, nil
}

// biAddDecl dispatches `(add-decl 'term name args ret)` and
// `(add-decl 'thm name args hyps ret)` to add-term/add-thm, the generic
// declaration-adding entry point spec §4.F's builtin enumeration names
// alongside the two specific forms.
func biAddDecl(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	kindV, _ := args[0].Unwrap()
	if kindV.Kind() != lisp.KindAtom {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "add-decl expects a kind atom")
	}
	switch kindV.AtomID() {
	case ev.declKinds.termAtom:
		if len(args) != 4 {
			return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp, "(add-decl 'term name args ret) expects 4 arguments")
		}
		return biAddTerm(ev, args[1:], sp)
	case ev.declKinds.thmAtom:
		if len(args) != 5 {
			return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp, "(add-decl 'thm name args hyps ret) expects 5 arguments")
		}
		return biAddThm(ev, args[1:], sp)
	default:
		return lisp.Value{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "add-decl's kind must be 'term or 'thm")
	}
}

// biNewDummy mints a fresh atom not otherwise bound, for a tactic script
// to introduce a dummy variable of the given sort (spec §4.G item 5,
// "dummy handling"). There is no per-variable nheap side map, so a later
// refine step does not discover this dummy's sort on its own; callers
// thread the sort through explicitly wherever they use the returned atom.
func biNewDummy(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	baseV, _ := args[0].Unwrap()
	if baseV.Kind() != lisp.KindAtom {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "new-dummy expects a base name atom")
	}
	sortV, _ := args[1].Unwrap()
	if sortV.Kind() != lisp.KindAtom {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "new-dummy expects a sort atom")
	}
	if _, ok := sortByAtom(ev, sortV.AtomID()); !ok {
		return lisp.Value{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown sort %q", ev.Env.AtomName(sortV.AtomID()))
	}
	ev.dummySeq++
	name := fmt.Sprintf("%s._%d", ev.Env.AtomName(baseV.AtomID()), ev.dummySeq)
	return lisp.Atom(ev.Env.InternAtom(name)), nil
}
