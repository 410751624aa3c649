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

// Package merge implements cross-environment merge (spec §4.H): folding
// a previously elaborated *env.Environment into another, re-issuing each
// of its statements through the target's own add_sort/add_term/add_thm
// so redeclaration checking, the 128-sort limit, and the parser
// environment's conflict detection all run exactly as they would for a
// freshly elaborated file.
package merge

import (
	"github.com/monocodus-demonstrations/mm0/ids"
)

// Remapper translates every ID namespace of a donor environment into the
// IDs its contents were assigned once re-added to the recipient (spec
// §4.H "a running Remapper{sort, term, thm, atom}... When the newly
// assigned ID differs from other's, record that shift in the remapper so
// subsequent items see consistent indices"). Atom remaps are seeded
// entirely up front, since every atom is re-interned before any
// statement replays; Sort/Term/Thm remaps fill in as each statement is
// replayed, in other.Stmts order, so a later statement's dependencies on
// an earlier one always find their entry already recorded.
type Remapper struct {
	Atom map[ids.AtomID]ids.AtomID
	Sort map[ids.SortID]ids.SortID
	Term map[ids.TermID]ids.TermID
	Thm  map[ids.ThmID]ids.ThmID
}

// New returns an empty Remapper ready to be populated during a merge.
func New() *Remapper {
	return &Remapper{
		Atom: make(map[ids.AtomID]ids.AtomID),
		Sort: make(map[ids.SortID]ids.SortID),
		Term: make(map[ids.TermID]ids.TermID),
		Thm:  make(map[ids.ThmID]ids.ThmID),
	}
}

// atom, sort, term, thm look up a donor-namespace ID's recipient-
// namespace counterpart. Every ID a replayed statement can reference was
// recorded by an earlier step of the same merge (atoms up front, sorts/
// terms/thms as their declaring statement replays), so a missing entry
// would mean other.stmts listed a use before its declaration — a donor
// environment invariant violation, not a condition this package guards
// against defensively.
func (r *Remapper) atom(a ids.AtomID) ids.AtomID { return r.Atom[a] }
func (r *Remapper) sort(s ids.SortID) ids.SortID { return r.Sort[s] }
func (r *Remapper) term(t ids.TermID) ids.TermID { return r.Term[t] }
func (r *Remapper) thm(t ids.ThmID) ids.ThmID    { return r.Thm[t] }
