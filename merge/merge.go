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

package merge

import (
	"fmt"

	"github.com/monocodus-demonstrations/mm0/env"
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/notation"
	"github.com/monocodus-demonstrations/mm0/term"
)

// Merge folds other into self, re-issuing every one of other's
// statements against self's own add_sort/add_term/add_thm and parser
// environment (spec §4.H). Redeclaration errors are collected in the
// returned list rather than aborting the merge; atom/sort/term/thm
// overflow errors returned by the underlying add_* calls are collected
// the same way, since the environment itself is the authority on what
// counts as fatal versus recoverable (spec §4.H "Redeclaration errors are
// collected, not fatal; atom/sort/term/thm overflow is fatal" — fatal
// here means the merge stops making progress on that entity, not that
// the whole merge panics; the caller inspects the returned list).
//
// self and other must share a compatible FormatVersion; callers check
// env.CheckFormatVersionCompat before calling Merge (spec §4.A "merge...
// can refuse to merge an environment produced by an incompatible format
// version").
func Merge(self, other *env.Environment) *mm0err.List {
	errs := &mm0err.List{}
	r := New()

	// Step 1+2: re-intern every atom other ever named, and copy its
	// global scripting binding or graveyard entry across (spec §4.H
	// steps 1-2).
	total := other.Close().Atoms
	for i := 0; i < total; i++ {
		a := ids.AtomID(i)
		r.Atom[a] = self.InternAtom(other.AtomName(a))
	}
	for i := 0; i < total; i++ {
		a := ids.AtomID(i)
		data := other.AtomData(a)
		selfData := self.AtomData(r.atom(a))
		if data.HasBinding() {
			sp, v := data.Binding()
			selfData.Bind(sp, lisp.RemapAtoms(v, r.atom))
		}
		if data.HasGraveyard() {
			selfData.SetGraveyard(data.GraveyardEntry())
		}
	}

	// Step 3: replay other.stmts in order, remapping each statement's
	// body through r as it is built, and recording the newly assigned ID
	// so later statements referencing it see a consistent index (spec
	// §4.H step 3).
	for _, st := range other.Stmts() {
		atom := st.Atom()
		newAtom := r.atom(atom)
		switch {
		case st.IsSort():
			sortID := other.AtomData(atom).Sort()
			s := other.Sort(sortID)
			newID, err := self.AddSort(newAtom, s.Span(), s.FullSpan(), s.Mods())
			if err != nil {
				errs.Add(err)
				continue
			}
			r.Sort[sortID] = newID

		case st.IsDecl():
			key := other.AtomData(atom).Decl()
			if key.IsTerm() {
				if err := r.mergeTerm(self, other, newAtom, key.TermID()); err != nil {
					errs.Add(err)
				}
			} else {
				if err := r.mergeThm(self, other, newAtom, key.ThmID()); err != nil {
					errs.Add(err)
				}
			}

		case st.IsGlobal():
			// The binding itself was already copied in step 2; the
			// trace entry only orders it relative to sorts/decls.
		}
	}

	// Step 4: merge the parser environment (spec §4.H step 4, §4.C).
	pr := notation.Remap{Sort: r.sort, Term: r.term}
	errs2 := self.Parser().Merge(other.Parser(), pr, self.IsProvable, self.SortName)
	errs.Errs = append(errs.Errs, errs2.Errs...)

	return errs
}

func (r *Remapper) mergeTerm(self, other *env.Environment, newAtom ids.AtomID, termID ids.TermID) *mm0err.Error {
	t := other.Term(termID)
	args := r.remapArgs(t.Args)
	ret := r.remapType(t.Ret)
	var val *term.Expr
	if t.HasVal() {
		if v := t.Val(); v != nil {
			e := term.Expr{Heap: r.remapExprs(v.Heap), Head: r.remapExpr(v.Head)}
			val = &e
		}
	}
	newID, err := self.AddTerm(newAtom, t.Span, func() term.Term {
		nt := term.NewTerm(newAtom, t.Span, t.Full, t.Mods, args, ret)
		if t.HasVal() {
			if val != nil {
				nt.SetVal(*val)
			} else {
				nt.SetForwardDeclared()
			}
		}
		return nt
	})
	if err != nil {
		return err
	}
	r.Term[termID] = newID
	return nil
}

func (r *Remapper) mergeThm(self, other *env.Environment, newAtom ids.AtomID, thmID ids.ThmID) *mm0err.Error {
	th := other.Thm(thmID)
	args := r.remapArgs(th.Args)
	heap := r.remapExprs(th.Heap)
	hyps := r.remapExprs(th.Hyps)
	ret := r.remapExpr(th.Ret)
	var proof *term.Proof
	if th.HasProof() {
		if p := th.Proof(); p != nil {
			np := term.Proof{
				Heap: r.remapProofs(p.Heap),
				Hyps: r.remapProofs(p.Hyps),
				Head: r.remapProof(p.Head),
			}
			proof = &np
		}
	}
	newID, err := self.AddThm(newAtom, th.Span, func() term.Thm {
		nt := term.NewThm(newAtom, th.Span, th.Full, th.Mods, args, heap, hyps, ret)
		if proof != nil {
			nt.SetProof(*proof)
		}
		return nt
	})
	if err != nil {
		return err
	}
	r.Thm[thmID] = newID
	return nil
}

func (r *Remapper) remapType(t term.Type) term.Type {
	if t.IsBound() {
		return term.Bound(r.sort(t.Sort()))
	}
	return term.Reg(r.sort(t.Sort()), t.Deps())
}

func (r *Remapper) remapArgs(args []term.Arg) []term.Arg {
	out := make([]term.Arg, len(args))
	for i, a := range args {
		out[i] = term.Arg{Atom: r.atom(a.Atom), Type: r.remapType(a.Type)}
	}
	return out
}

func (r *Remapper) remapExpr(n term.ExprNode) term.ExprNode {
	switch {
	case n.IsRef():
		return n
	case n.IsDummy():
		return term.Dummy(r.atom(n.DummyAtom()), r.sort(n.DummySort()))
	default:
		args := make([]term.ExprNode, len(n.AppArgs()))
		for i, a := range n.AppArgs() {
			args[i] = r.remapExpr(a)
		}
		return term.App(r.term(n.AppTerm()), args)
	}
}

func (r *Remapper) remapExprs(ns []term.ExprNode) []term.ExprNode {
	if ns == nil {
		return nil
	}
	out := make([]term.ExprNode, len(ns))
	for i, n := range ns {
		out[i] = r.remapExpr(n)
	}
	return out
}

func (r *Remapper) remapProof(n term.ProofNode) term.ProofNode {
	switch n.Kind() {
	case term.ProofRef:
		return n
	case term.ProofDummy:
		return term.PDummy(r.atom(n.DummyAtom()), r.sort(n.DummySort()))
	case term.ProofTerm:
		return term.PTerm(r.term(n.Term()), r.remapProofs(n.Args()))
	case term.ProofHyp:
		return term.PHyp(n.HypIndex(), r.remapProof(n.HypProof()))
	case term.ProofThm:
		return term.PThm(r.thm(n.Thm()), r.remapProofs(n.Args()), r.remapProof(n.ThmResult()))
	case term.ProofConv:
		return term.PConv(r.remapProof(n.ConvTarget()), r.remapProof(n.ConvEq()), r.remapProof(n.ConvProof()))
	case term.ProofRefl:
		return term.PRefl()
	case term.ProofSym:
		return term.PSym(r.remapProof(n.SymProof()))
	case term.ProofCong:
		return term.PCong(r.term(n.Term()), r.remapProofs(n.Args()))
	case term.ProofUnfold:
		return term.PUnfold(r.term(n.Term()), r.remapProofs(n.Args()), r.remapProof(n.UnfoldResult()), r.remapProof(n.UnfoldSubLHS()))
	default:
		panic(fmt.Sprintf("merge: unhandled proof node kind %d", n.Kind()))
	}
}

func (r *Remapper) remapProofs(ns []term.ProofNode) []term.ProofNode {
	if ns == nil {
		return nil
	}
	out := make([]term.ProofNode, len(ns))
	for i, n := range ns {
		out[i] = r.remapProof(n)
	}
	return out
}
