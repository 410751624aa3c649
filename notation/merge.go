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

package notation

import (
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/mm0err"
)

// Remap translates IDs from another environment's namespace into this
// one's, supplied by the merge package's Remapper (spec §4.H).
type Remap struct {
	Sort func(ids.SortID) ids.SortID
	Term func(ids.TermID) ids.TermID
}

// remapNota remaps a notation's term ID; its Literals reference binder
// positions, not IDs, so they need no translation.
func remapNota(n NotaInfo, r Remap) NotaInfo {
	n.Term = r.Term(n.Term)
	return n
}

// Merge re-issues every constant/precedence/notation/coercion add from
// other into p, remapping term and sort IDs through r and collecting
// (rather than aborting on) user-visible conflicts, exactly as spec §4.C
// describes for ParserEnv.merge. isProvable/sortName support the
// coercion-graph recomputation triggered by newly merged coercions.
func (p *ParserEnv) Merge(other *ParserEnv, r Remap, isProvable func(ids.SortID) bool, sortName func(ids.SortID) string) *mm0err.List {
	var errs mm0err.List

	for tok, c := range other.consts {
		if err := p.AddConstant(tok, c.span, c.prec); err != nil {
			errs.Add(err)
		}
	}
	for prec, e := range other.precs {
		if err := p.AddPrecAssoc(prec, e.span, e.rassoc); err != nil {
			errs.Add(err)
		}
	}
	for tok, n := range other.prefix {
		if err := p.AddPrefix(tok, remapNota(n, r)); err != nil {
			errs.Add(err)
		}
	}
	for tok, n := range other.infix {
		if err := p.AddInfix(tok, remapNota(n, r)); err != nil {
			errs.Add(err)
		}
	}
	for s1, m := range other.coes {
		for s2, c := range m {
			if !c.one {
				continue // transitive edges are rebuilt by AddCoercionRaw below
			}
			rs1, rs2, rterm := r.Sort(s1), r.Sort(s2), r.Term(c.term)
			if err := p.AddCoercionRaw(rs1, rs2, c.span, rterm, sortName); err != nil {
				errs.Add(err)
			} else {
				p.MarkHasCoe(rterm)
			}
		}
	}
	if err := p.UpdateCoeProv(isProvable, sortName); err != nil {
		errs.Add(err)
	}

	p.leftDelim, p.rightDelim = mergeDelims(p.leftDelim, other.leftDelim), mergeDelims(p.rightDelim, other.rightDelim)

	return &errs
}

func mergeDelims(a, b delimSet) delimSet {
	for i := range a {
		a[i] |= b[i]
	}
	return a
}
