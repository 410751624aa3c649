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
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/notation"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

// ExprArena is the dedup arena used while elaborating one declaration's
// expressions (its body, and/or its stated hypotheses/conclusion), keyed
// by term.ExprKey (spec §4.D collaborating with §4.E). VarIdx maps each
// local variable atom that has a heap slot (an argument from the binder
// pass, or a dummy whose placeholder slot elabAtom reserved at its first
// reference, later filled in by DummyFinalization) to its arena index;
// ElabExpr consults and extends it.
type ExprArena struct {
	Dedup  *dedup.Dedup[term.ExprNode]
	VarIdx map[ids.AtomID]int
}

// NewExprArena seeds an arena with one Ref(i) per declared argument, in
// binder order (spec §4.D "new(args) seeds the arena with one Ref(i) per
// formal argument"). anon marks, parallel to args, which binders were
// anonymous and so are never added to VarIdx (spec §4.E "Anonymous (_)
// binders are tracked by index only" — they get a heap slot like any
// other argument, but no expression can reference one by name).
func NewExprArena(args []term.Arg, anon []bool) *ExprArena {
	deps := make([]uint64, len(args))
	for i, a := range args {
		deps[i] = a.Type.Deps()
		if a.Type.IsBound() {
			bit := uint64(0)
			for j := 0; j < i; j++ {
				if args[j].Type.IsBound() {
					bit++
				}
			}
			deps[i] = uint64(1) << bit
		}
	}
	d := dedup.NewWithArgs(term.ExprKey, term.Ref, deps)
	varIdx := make(map[ids.AtomID]int, len(args))
	for i, a := range args {
		if i < len(anon) && anon[i] {
			continue
		}
		varIdx[a.Atom] = i
	}
	return &ExprArena{Dedup: d, VarIdx: varIdx}
}

// ElabExpr elaborates v against target, returning the arena index of the
// (possibly coerced) result and the sort it was coerced to (spec §4.E
// "Expression elaboration. Input is a lisp expression ... and an
// InferTarget. Output is a coerced lisp expression suitable for
// hash-consing" — realized here as a coerced arena node, since this core
// fuses coercion insertion directly into the hash-consing walk rather
// than materializing an intermediate coerced lisp tree).
func (el *Elaborator) ElabExpr(a *ExprArena, v lisp.Value, target lisp.InferTarget, sp span.File) (int, ids.SortID, *mm0err.Error) {
	v, uspan := v.Unwrap()
	if uspan != (span.File{}) {
		sp = uspan
	}

	switch v.Kind() {
	case lisp.KindAtom:
		return el.elabAtom(a, v.AtomID(), target, sp)
	case lisp.KindList:
		items := v.ListVal()
		if len(items) == 0 {
			return 0, 0, el.addErr(mm0err.New(mm0err.ErrMalformedBinder, sp, "empty application"))
		}
		head, _ := items[0].Unwrap()
		if head.Kind() != lisp.KindAtom {
			return 0, 0, el.addErr(mm0err.New(mm0err.ErrNotFound, sp, "application head must be a term atom"))
		}
		termID, ok := el.termByAtom(head.AtomID())
		if !ok {
			return 0, 0, el.addErr(mm0err.New(mm0err.ErrNotFound, sp,
				"%q does not name a declared term", el.env.AtomName(head.AtomID())))
		}
		return el.elabApp(a, termID, items[1:], target, sp)
	default:
		return 0, 0, el.addErr(mm0err.New(mm0err.ErrSortMismatch, sp, "expected an expression"))
	}
}

// elabAtom handles a bare atom: a local variable, or a zero-argument
// term application (spec §4.E "An atom denoting a term with zero
// arguments is treated as the application (term)").
func (el *Elaborator) elabAtom(a *ExprArena, atom ids.AtomID, target lisp.InferTarget, sp span.File) (int, ids.SortID, *mm0err.Error) {
	if idx, ok := a.VarIdx[atom]; ok {
		return el.elabVarRef(a, atom, idx, target, sp)
	}
	if termID, ok := el.termByAtom(atom); ok {
		return el.elabApp(a, termID, nil, target, sp)
	}

	// First sight of a bare name that is neither a declared variable nor
	// a term: treat it as an implicitly-introduced dummy of unknown sort,
	// reserving its arena slot immediately so later references in the
	// same body resolve through elabVarRef like any other local (spec
	// §4.E "A variable that occurs inside a formula before being
	// declared acquires an Unknown entry; on later declaration the entry
	// is refined"). DummyFinalization backfills this placeholder's sort
	// once the whole body has been walked.
	el.lc.DeclareVar(atom, false, sp, lctx.UnknownSort())
	idx := a.Dedup.AddDirect(term.Dummy(atom, 0))
	a.VarIdx[atom] = idx
	if sortID, ok := el.concreteTargetSort(target); ok {
		mv := el.lc.NewMVar(lisp.Unknown(), sp)
		infer, _, _ := el.lc.LookupVar(atom)
		infer.AddCandidate(sortID, mv)
		el.lc.RefineVar(atom, infer)
	}
	return idx, 0, nil
}

// elabVarRef resolves a reference to an already heap-slotted local
// variable, checking it against target and inserting a coercion if the
// sorts differ (spec §4.E "its inferred sort is compared to the target.
// If the target is Bound but the variable is Reg, error").
func (el *Elaborator) elabVarRef(a *ExprArena, atom ids.AtomID, idx int, target lisp.InferTarget, sp span.File) (int, ids.SortID, *mm0err.Error) {
	infer, _, ok := el.lc.LookupVar(atom)
	if !ok {
		return 0, 0, el.addErr(mm0err.New(mm0err.ErrUnknownAtom, sp, "%q is unbound", el.env.AtomName(atom)))
	}
	if infer.Kind() == lctx.SortUnknown {
		if sortID, ok := el.concreteTargetSort(target); ok {
			mv := el.lc.NewMVar(lisp.Unknown(), sp)
			infer.AddCandidate(sortID, mv)
			el.lc.RefineVar(atom, infer)
		}
		return idx, 0, nil
	}
	if target.IsBound() && infer.Kind() != lctx.SortBound {
		return 0, 0, el.addErr(mm0err.New(mm0err.ErrExpectedBound, sp,
			"%q is a regular variable, expected a bound variable", el.env.AtomName(atom)))
	}
	return el.coerceNode(a, idx, infer.Sort(), target, sp)
}

// elabApp elaborates a term application's arguments each against its
// binder's own target, then wraps the result and coerces it to target
// (spec §4.E "A list starting with term t reads t's arity, elaborates
// each argument at the declared binder's target, and wraps the
// result").
func (el *Elaborator) elabApp(a *ExprArena, termID ids.TermID, argExprs []lisp.Value, target lisp.InferTarget, sp span.File) (int, ids.SortID, *mm0err.Error) {
	if err := el.env.CheckTermNargs(termID, len(argExprs)); err != nil {
		return 0, 0, el.addErr(err)
	}
	t := el.env.Term(termID)

	children := make([]term.ExprNode, len(argExprs))
	var deps uint64
	for i, argv := range argExprs {
		sortAtom := el.env.Sort(t.Args[i].Type.Sort()).Atom()
		binderTarget := targetForBinder(t.Args[i].Type, sortAtom)
		idx, _, err := el.ElabExpr(a, argv, binderTarget, sp)
		if err != nil {
			return 0, 0, err
		}
		children[i] = term.Ref(idx)
		deps |= a.Dedup.Deps(idx)
	}

	idx := a.Dedup.AddDirect(term.App(termID, children))
	a.Dedup.SetDeps(idx, deps)

	return el.coerceNode(a, idx, t.Ret.Sort(), target, sp)
}

// targetForBinder builds the InferTarget a binder's own Type implies for
// elaborating the argument expression passed in that position.
func targetForBinder(ty term.Type, sortAtom ids.AtomID) lisp.InferTarget {
	if ty.IsBound() {
		return lisp.TargetBoundOf(sortAtom)
	}
	return lisp.TargetRegOf(sortAtom)
}

// concreteTargetSort resolves target to a SortID when it names one
// directly (Bound/Reg); Provable and Unknown targets have no single
// sort to report here (Provable resolves per-candidate at coercion
// time, via coe_prov).
func (el *Elaborator) concreteTargetSort(target lisp.InferTarget) (ids.SortID, bool) {
	switch target.Kind() {
	case lisp.TargetBound, lisp.TargetReg:
		return el.sortByAtom(target.SortAtom())
	default:
		return 0, false
	}
}

// coerceNode wraps the arena node at idx (currently of sort from) in
// whatever coercion chain reaches target, or through coe_prov for a
// Provable target (spec §4.E "If the resulting sort differs from the
// target: attempt coercion via coes (or through coe_prov for a provable
// target). Missing coercion is a typed error.").
func (el *Elaborator) coerceNode(a *ExprArena, idx int, from ids.SortID, target lisp.InferTarget, sp span.File) (int, ids.SortID, *mm0err.Error) {
	switch target.Kind() {
	case lisp.TargetUnknown:
		return idx, from, nil
	case lisp.TargetProvable:
		if el.env.IsProvable(from) {
			return idx, from, nil
		}
		to, ok := el.env.Parser().CoeProv(from)
		if !ok {
			return 0, 0, el.addErr(mm0err.New(mm0err.ErrMissingCoercion, sp,
				"%s does not coerce to any provable sort", el.env.SortName(from)))
		}
		return el.applyCoeChain(a, idx, from, to, sp)
	case lisp.TargetBound, lisp.TargetReg:
		to, ok := el.sortByAtom(target.SortAtom())
		if !ok {
			return 0, 0, el.addErr(mm0err.New(mm0err.ErrNotFound, sp,
				"%q is not a declared sort", el.env.AtomName(target.SortAtom())))
		}
		if from == to {
			return idx, from, nil
		}
		return el.applyCoeChain(a, idx, from, to, sp)
	default:
		return idx, from, nil
	}
}

func (el *Elaborator) applyCoeChain(a *ExprArena, idx int, from, to ids.SortID, sp span.File) (int, ids.SortID, *mm0err.Error) {
	coe, ok := el.env.Parser().Coercion(from, to)
	if !ok {
		return 0, 0, el.addErr(mm0err.New(mm0err.ErrMissingCoercion, sp,
			"no coercion from %s to %s", el.env.SortName(from), el.env.SortName(to)))
	}
	deps := a.Dedup.Deps(idx)
	for _, t := range coeLinks(coe, nil) {
		node := term.App(t, []term.ExprNode{term.Ref(idx)})
		idx = a.Dedup.AddDirect(node)
		a.Dedup.SetDeps(idx, deps)
	}
	return idx, to, nil
}

// coeLinks flattens a (possibly transitively composed) Coe into its
// single-term steps in application order, the expr-arena counterpart of
// refine.coeLinks (refine operates on lisp.Value application syntax;
// this operates on already hash-consed arena indices, so the two cannot
// share one implementation without one package importing the other).
func coeLinks(c notation.Coe, out []ids.TermID) []ids.TermID {
	if c.IsOne() {
		return append(out, c.Term())
	}
	out = coeLinks(c.Left(), out)
	return coeLinks(c.Right(), out)
}

// termByAtom resolves a term name atom to its TermID via the
// environment's per-atom data.
func (el *Elaborator) termByAtom(atom ids.AtomID) (ids.TermID, bool) {
	data := el.env.AtomData(atom)
	if data == nil || !data.HasDecl() || !data.Decl().IsTerm() {
		return 0, false
	}
	return data.Decl().TermID(), true
}
