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

package elab

import (
	"github.com/monocodus-demonstrations/mm0/dedup"
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

// ElabTerm declares a bare `term` constructor: binders become Term.Args,
// a return sort is required, and there is no body (spec §4.E
// "term: no body; binders -> Term.args; return sort required; Term.val =
// None").
func (el *Elaborator) ElabTerm(atom ids.AtomID, sp, full span.File, mods term.Modifier, specs []BinderSpec, retSortAtom ids.AtomID) (ids.TermID, *mm0err.Error) {
	res := el.BinderPass(specs)
	if len(res.Hyps) > 0 {
		el.addErr(mm0err.New(mm0err.ErrBadDeclArgs, full, "term declarations may not have hypothesis binders"))
	}
	retSort, ok := el.sortByAtom(retSortAtom)
	if !ok {
		el.addErr(mm0err.New(mm0err.ErrNotFound, full, "%q is not a declared sort", el.env.AtomName(retSortAtom)))
	}
	if el.errs.HasErrors() {
		return 0, el.errs.Errs[len(el.errs.Errs)-1]
	}
	ret := term.Reg(retSort, allBoundDeps(res.Args))
	id, err := el.env.AddTerm(atom, sp, func() term.Term {
		return term.NewTerm(atom, sp, full, mods, res.Args, ret)
	})
	return id, el.addErr(err)
}

// ElabDef declares a `def`: a term whose body, if given, is elaborated
// and hash-consed, with dummies finalized along the way (spec §4.E
// "def: optional body; sort inferred from body if no return type given;
// body hash-consed via 4.D; dummies are the bound variables introduced
// only in the body; Term.val = Some(Some(Expr)) or Some(None)"). A zero
// retSortAtom means no return type was stated, so the body's own
// inferred sort becomes Ret; body.IsUndef() means a forward declaration
// with no body at all yet (spec §4.A two-phase declaration).
func (el *Elaborator) ElabDef(atom ids.AtomID, sp, full span.File, mods term.Modifier, specs []BinderSpec, retSortAtom ids.AtomID, body lisp.Value) (ids.TermID, *mm0err.Error) {
	res := el.BinderPass(specs)
	if len(res.Hyps) > 0 {
		el.addErr(mm0err.New(mm0err.ErrBadDeclArgs, full, "def declarations may not have hypothesis binders"))
	}

	var stated ids.SortID
	hasStated := retSortAtom != 0
	if hasStated {
		var ok bool
		stated, ok = el.sortByAtom(retSortAtom)
		if !ok {
			el.addErr(mm0err.New(mm0err.ErrNotFound, full, "%q is not a declared sort", el.env.AtomName(retSortAtom)))
		}
	}

	if body.IsUndef() {
		if !hasStated {
			el.addErr(mm0err.New(mm0err.ErrMissingReturn, full, "forward-declared def needs a stated return sort"))
		}
		if el.errs.HasErrors() {
			return 0, el.errs.Errs[len(el.errs.Errs)-1]
		}
		ret := term.Reg(stated, allBoundDeps(res.Args))
		id, err := el.env.AddTerm(atom, sp, func() term.Term {
			t := term.NewTerm(atom, sp, full, mods, res.Args, ret)
			t.SetForwardDeclared()
			return t
		})
		return id, el.addErr(err)
	}

	a := NewExprArena(res.Args, res.Anon)
	target := lisp.Unknown()
	if hasStated {
		target = lisp.TargetRegOf(retSortAtom)
	}
	bodyIdx, bodySort, err := el.ElabExpr(a, body, target, full)
	if err != nil {
		return 0, err
	}
	el.DummyFinalization(a)

	retSort := bodySort
	if hasStated {
		retSort = stated
	}
	if el.errs.HasErrors() {
		return 0, el.errs.Errs[len(el.errs.Errs)-1]
	}

	built := dedup.Build(a.Dedup, func(h term.ExprNode, built []term.ExprNode) term.ExprNode {
		return term.SubstRefsExpr(h, built)
	}, term.Ref)
	ret := term.Reg(retSort, allBoundDeps(res.Args))
	id, aerr := el.env.AddTerm(atom, sp, func() term.Term {
		t := term.NewTerm(atom, sp, full, mods, res.Args, ret)
		t.SetVal(term.Expr{Heap: built.Heap, Head: built.Val[bodyIdx]})
		return t
	})
	return id, el.addErr(aerr)
}

// ElabAxiomStmt elaborates the shared statement-building half of `axiom`
// and `theorem`: binders (including hypotheses) plus a stated conclusion
// (spec §4.E "axiom: binders (incl. hypotheses) + stated conclusion;
// Thm.proof = None" / "theorem: binders + stated conclusion; proof
// expected; see §4.G"). The caller attaches a proof afterward for
// theorem (via refine), or leaves it unset for axiom.
func (el *Elaborator) ElabAxiomStmt(atom ids.AtomID, sp, full span.File, mods term.Modifier, specs []BinderSpec, conclusion lisp.Value) (*ExprArena, term.Thm, *mm0err.Error) {
	res := el.BinderPass(specs)
	a := NewExprArena(res.Args, res.Anon)

	hyps := make([]int, len(res.Hyps))
	for i, h := range res.Hyps {
		idx, _, err := el.ElabExpr(a, h.Formula, lisp.Provable(), h.Span)
		if err != nil {
			return nil, term.Thm{}, err
		}
		hyps[i] = idx
	}
	concIdx, _, err := el.ElabExpr(a, conclusion, lisp.Provable(), full)
	if err != nil {
		return nil, term.Thm{}, err
	}
	el.DummyFinalization(a)
	if el.errs.HasErrors() {
		return nil, term.Thm{}, el.errs.Errs[len(el.errs.Errs)-1]
	}

	built := dedup.Build(a.Dedup, func(h term.ExprNode, built []term.ExprNode) term.ExprNode {
		return term.SubstRefsExpr(h, built)
	}, term.Ref)

	hypNodes := make([]term.ExprNode, len(hyps))
	for i, idx := range hyps {
		hypNodes[i] = built.Val[idx]
	}

	thm := term.NewThm(atom, sp, full, mods, res.Args, built.Heap, hypNodes, built.Val[concIdx])
	return a, thm, nil
}

// ElabAxiom declares an `axiom`: the theorem record with no proof slot
// ever set.
func (el *Elaborator) ElabAxiom(atom ids.AtomID, sp, full span.File, mods term.Modifier, specs []BinderSpec, conclusion lisp.Value) (ids.ThmID, *mm0err.Error) {
	_, thm, err := el.ElabAxiomStmt(atom, sp, full, mods, specs, conclusion)
	if err != nil {
		return 0, err
	}
	id, aerr := el.env.AddThm(atom, sp, func() term.Thm { return thm })
	return id, el.addErr(aerr)
}

// allBoundDeps is the dependency bitset covering every bound variable a
// declaration introduced, the conventional Ret/App dependency set for a
// term whose result is allowed to mention any of its bound arguments.
func allBoundDeps(args []term.Arg) uint64 {
	var numBound uint
	for _, a := range args {
		if a.Type.IsBound() {
			numBound++
		}
	}
	if numBound >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << numBound) - 1
}
