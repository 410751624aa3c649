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

package refine

import (
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/notation"
	"github.com/monocodus-demonstrations/mm0/span"
)

// TermAtom resolves a declared coercion term's TermID to the atom that
// names it, so CoerceTo can wrap a value in `(atom v)` without needing a
// full environment lookup table of its own.
type TermAtom = func(ids.TermID) ids.AtomID

// CoerceTo wraps v (currently of sort from) in whatever chain of
// coercion terms the parser environment has recorded to reach sort to
// (spec §4.E "If the resulting sort differs from the target: attempt
// coercion via coes (or through coe_prov for a provable target). Missing
// coercion is a typed error."). It does not consult coe_prov; a provable
// target goes through CoerceToProvable. It returns v unchanged when from
// already equals to, and ErrMissingCoercion when no chain is recorded.
func CoerceTo(p *notation.ParserEnv, from, to ids.SortID, v lisp.Value, sp span.File, termAtom TermAtom, sortName func(ids.SortID) string) (lisp.Value, *mm0err.Error) {
	if from == to {
		return v, nil
	}
	coe, ok := p.Coercion(from, to)
	if !ok {
		return lisp.Value{}, mm0err.New(mm0err.ErrMissingCoercion, sp,
			"no coercion from %s to %s", sortName(from), sortName(to))
	}
	return applyCoe(coe, v, termAtom), nil
}

// CoerceToProvable coerces v from sort `from` to whatever provable sort
// coe_prov records as reachable from it.
func CoerceToProvable(p *notation.ParserEnv, from ids.SortID, v lisp.Value, sp span.File, termAtom TermAtom, sortName func(ids.SortID) string) (lisp.Value, *mm0err.Error) {
	target, ok := p.CoeProv(from)
	if !ok {
		return lisp.Value{}, mm0err.New(mm0err.ErrMissingCoercion, sp,
			"%s does not coerce to any provable sort", sortName(from))
	}
	return CoerceTo(p, from, target, v, sp, termAtom, sortName)
}

// applyCoe walks a (possibly transitively composed) Coe chain, wrapping v
// in one term application per link, innermost first: the chain's first
// link is applied to v directly and its last link is the outermost
// application.
func applyCoe(c notation.Coe, v lisp.Value, termAtom TermAtom) lisp.Value {
	links := coeLinks(c, nil)
	for _, term := range links {
		v = lisp.List(lisp.Atom(termAtom(term)), v)
	}
	return v
}

// coeLinks flattens a Coe tree into its constituent single-term steps in
// application order (left-to-right through the sort chain).
func coeLinks(c notation.Coe, out []ids.TermID) []ids.TermID {
	if c.IsOne() {
		return append(out, c.Term())
	}
	out = coeLinks(c.Left(), out)
	return coeLinks(c.Right(), out)
}
