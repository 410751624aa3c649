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
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

// BinderSpec is one already-parsed binder of a declaration (spec §4.E
// "binder pass"; this core takes the math parser's output as given,
// per SPEC_FULL.md's "no mixfix math parser" non-goal). A variable
// binder names SortAtom and, for a regular (non-bound) binder, the atoms
// of the bound variables it depends on in Deps; a hypothesis binder sets
// IsHyp and carries its formula instead.
type BinderSpec struct {
	Atom     ids.AtomID
	Anon     bool
	SortAtom ids.AtomID
	Deps     []ids.AtomID // nil marks a bound binder `{x: s}`; non-nil (possibly empty) marks regular `(x: s a b)`
	IsHyp    bool
	Formula  lisp.Value
	Span     span.File
}

// BinderResult is the binder pass's output: the committed variable args
// (suitable for Term.Args/Thm.Args) and the hypothesis specs, left
// unelaborated since only axiom/theorem statements need them elaborated
// into expressions, and that elaboration needs the Args' heap indices
// already assigned (spec §4.E "Hypothesis binders ... are elaborated as
// expressions with InferTarget::Provable").
type BinderResult struct {
	Args []term.Arg
	Anon []bool // parallel to Args: true when that binder was anonymous (`_`)
	Hyps []BinderSpec
}

// BinderPass processes specs in order, declaring each variable binder in
// el's LocalContext and checking a regular binder's Deps refer only to
// already-declared bound variables, never to a hypothesis or a binder
// declared later (spec §4.E "check that bound binders have no
// dependency list and that regular binders' dependency list refers to
// previously declared bound variables and not to dummies"; dummies never
// appear in a binder list in the first place, so the dummy half of that
// check is vacuous here and only matters once dummy finalization runs
// inside a def body). Hypothesis binders must follow every variable
// binder (spec §4.E "Hypothesis binders ... must follow all variable
// binders"); a variable binder appearing after one is a fatal error for
// that binder but does not stop the pass from processing the rest.
func (el *Elaborator) BinderPass(specs []BinderSpec) BinderResult {
	var res BinderResult
	var boundAtoms []ids.AtomID
	boundBit := make(map[ids.AtomID]uint64)
	seenHyp := false

	for _, s := range specs {
		if s.IsHyp {
			seenHyp = true
			res.Hyps = append(res.Hyps, s)
			continue
		}
		if seenHyp {
			el.addErr(mm0err.New(mm0err.ErrMalformedBinder, s.Span,
				"variable binder may not follow a hypothesis binder"))
			continue
		}

		sortID, ok := el.sortByAtom(s.SortAtom)
		if !ok {
			el.addErr(mm0err.New(mm0err.ErrNotFound, s.Span,
				"%q is not a declared sort", el.env.AtomName(s.SortAtom)))
			continue
		}

		isBound := s.Deps == nil
		var infer lctx.InferSort
		var typ term.Arg

		if isBound {
			if len(boundAtoms) >= term.MaxBoundVars {
				el.addErr(mm0err.New(mm0err.ErrOverflow, s.Span,
					"declaration introduces more than %d bound variables", term.MaxBoundVars))
				continue
			}
			bit := uint64(1) << len(boundAtoms)
			boundAtoms = append(boundAtoms, s.Atom)
			if !s.Anon {
				boundBit[s.Atom] = bit
			}
			infer = lctx.Bound(sortID)
			typ = term.Arg{Atom: s.Atom, Type: term.Bound(sortID)}
		} else {
			var deps uint64
			for _, dep := range s.Deps {
				bit, ok := boundBit[dep]
				if !ok {
					el.addErr(mm0err.New(mm0err.ErrBadDeclArgs, s.Span,
						"%q is not a previously declared bound variable", el.env.AtomName(dep)))
					continue
				}
				deps |= bit
			}
			infer = lctx.Reg(sortID, deps)
			typ = term.Arg{Atom: s.Atom, Type: term.Reg(sortID, deps)}
		}

		el.lc.DeclareVar(s.Atom, s.Anon, s.Span, infer)
		res.Args = append(res.Args, typ)
		res.Anon = append(res.Anon, s.Anon)
	}

	return res
}

// sortByAtom resolves a sort name atom to its SortID via the
// environment's per-atom data (spec §4.B "optional pointer to a declared
// sort").
func (el *Elaborator) sortByAtom(atom ids.AtomID) (ids.SortID, bool) {
	data := el.env.AtomData(atom)
	if data == nil || !data.HasSort() {
		return 0, false
	}
	return data.Sort(), true
}
