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
	"strings"

	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

// DummyFinalization runs once a def body has been fully walked,
// committing a final sort to every local variable that elabAtom
// auto-declared as Unknown along the way: it picks the sort with
// pickDummySort, writes a term.Dummy node with a fresh dependency bit
// into the variable's arena slot, and refines the variable to Bound.
// Every such variable becomes a Bound dummy, whatever the declaration
// kind; none is classified as Reg. Each still-unassigned candidate
// metavariable is assigned the bare variable atom; no coercion is
// applied to it.
func (el *Elaborator) DummyFinalization(a *ExprArena) {
	for _, v := range el.lc.Vars() {
		if v.Anon {
			continue
		}
		if v.Sort.Kind() != lctx.SortUnknown {
			continue
		}

		sortID, err := el.pickDummySort(v.Sort, v.Span)
		if err != nil {
			el.addErr(err)
			continue
		}

		// elabAtom already reserved an arena slot at first sight for any
		// dummy actually referenced in the body; a var that never got
		// past the binder pass with a concrete sort (possible only if a
		// caller declares one directly) has none yet.
		idx, hasSlot := a.VarIdx[v.Atom]
		if hasSlot {
			a.Dedup.SetNode(idx, term.Dummy(v.Atom, sortID))
		} else {
			idx = a.Dedup.AddDirect(term.Dummy(v.Atom, sortID))
			a.VarIdx[v.Atom] = idx
		}
		bit := a.Dedup.NewDummyBit()
		a.Dedup.SetDeps(idx, bit)
		el.lc.RefineVar(v.Atom, lctx.Bound(sortID))

		for _, c := range v.Sort.Candidates() {
			if !c.MVar.IsAssigned() {
				c.MVar.Assign(lisp.Atom(v.Atom))
			}
		}
	}
}

// pickDummySort chooses the smallest sort that coerces to every sort a
// variable was used at (spec §4.E "the smallest sort that coerces to all
// observed sorts is chosen; if none exists, error with the enumeration
// of incompatible sorts").
func (el *Elaborator) pickDummySort(infer lctx.InferSort, sp span.File) (ids.SortID, *mm0err.Error) {
	cands := infer.Candidates()
	if len(cands) == 0 {
		return 0, mm0err.New(mm0err.ErrSortMismatch, sp, "variable's sort could not be inferred: never used")
	}
	if len(cands) == 1 {
		return cands[0].Sort, nil
	}

	for _, c := range cands {
		coercesToAll := true
		for _, other := range cands {
			if other.Sort == c.Sort {
				continue
			}
			if _, ok := el.env.Parser().Coercion(c.Sort, other.Sort); !ok {
				coercesToAll = false
				break
			}
		}
		if coercesToAll {
			return c.Sort, nil
		}
	}

	names := make([]string, len(cands))
	for i, c := range cands {
		names[i] = el.env.SortName(c.Sort)
	}
	return 0, mm0err.New(mm0err.ErrSortMismatch, sp,
		"incompatible sorts inferred for the same variable: %s", strings.Join(names, ", "))
}
