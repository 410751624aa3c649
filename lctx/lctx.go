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

// Package lctx is the elaborator's per-declaration scratch state (spec
// §4.I): the local variables seen so far, the metavariables and goals
// live during refine, and the named subproofs `have` introduces. One
// LocalContext is reused across declarations via Clear rather than
// reallocated, mirroring the teacher's pattern of resetting accumulator
// fields in place (see globals.go's map-reset-in-place style) instead of
// constructing a fresh struct per use.
package lctx

import (
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/span"
)

// InferSort is what is currently known about a local variable's sort
// (spec §4.E "record the variable in the local context with
// InferSort::Bound / InferSort::Reg / InferSort::Unknown").
type InferSort struct {
	kind    InferSortKind
	sort    ids.SortID
	deps    uint64
	unknown []unknownSort // only for Unknown: the sorts this var must inhabit, and each one's reserved mvar
}

type unknownSort struct {
	sort ids.SortID
	mvar *lisp.MVar
}

// InferSortKind discriminates InferSort's variants.
type InferSortKind uint8

const (
	SortBound InferSortKind = iota
	SortReg
	SortUnknown
)

func Bound(s ids.SortID) InferSort { return InferSort{kind: SortBound, sort: s} }
func Reg(s ids.SortID, deps uint64) InferSort {
	return InferSort{kind: SortReg, sort: s, deps: deps}
}
func UnknownSort() InferSort { return InferSort{kind: SortUnknown} }

func (s InferSort) Kind() InferSortKind { return s.kind }
func (s InferSort) Sort() ids.SortID    { return s.sort }
func (s InferSort) Deps() uint64        { return s.deps }

// AddCandidate records that the still-unknown variable must (also)
// inhabit sort, reserving mvar for that possibility (spec §4.E
// "Unknown-sort variables accumulate the set of sorts they must inhabit,
// plus ... a fresh metavariable reserved for the eventual assignment").
func (s *InferSort) AddCandidate(sort ids.SortID, mvar *lisp.MVar) {
	for _, u := range s.unknown {
		if u.sort == sort {
			return
		}
	}
	s.unknown = append(s.unknown, unknownSort{sort: sort, mvar: mvar})
}

// Candidates returns the sorts (and their reserved mvars) an Unknown
// variable must inhabit.
func (s InferSort) Candidates() []struct {
	Sort ids.SortID
	MVar *lisp.MVar
} {
	out := make([]struct {
		Sort ids.SortID
		MVar *lisp.MVar
	}, len(s.unknown))
	for i, u := range s.unknown {
		out[i] = struct {
			Sort ids.SortID
			MVar *lisp.MVar
		}{u.sort, u.mvar}
	}
	return out
}

// Var is one entry of the ordered variable list: every variable
// DeclareVar introduced, in order, including anonymous binders and the
// dummies elab declares at their first reference in a body; dummies are
// not kept apart from the other variables. Atom is meaningless when Anon
// is true.
type Var struct {
	Atom ids.AtomID
	Anon bool
	Span span.File
	Sort InferSort
}

type namedVar struct {
	isNew bool
	sort  *InferSort
}

// subproof is a `have`-introduced named subproof (spec §4.I "named
// subproofs (atom -> index into proof-order)"; original_source
// `LocalContext.add_proof`).
type subproof struct {
	stmt  lisp.Value
	proof lisp.Value
}

// LocalContext holds one declaration's elaboration-time scratch state.
type LocalContext struct {
	named map[ids.AtomID]*namedVar
	vars  []Var

	mvars []*lisp.MVar
	goals []*lisp.Goal

	proofOrder []ids.AtomID
	proofs     map[ids.AtomID]subproof

	closer lisp.Callback
}

// New returns an empty LocalContext.
func New() *LocalContext {
	return &LocalContext{
		named:  make(map[ids.AtomID]*namedVar),
		proofs: make(map[ids.AtomID]subproof),
	}
}

// Clear resets all fields but retains the underlying allocations (spec
// §4.I "clear() resets all fields but retains allocations").
func (l *LocalContext) Clear() {
	for k := range l.named {
		delete(l.named, k)
	}
	l.vars = l.vars[:0]
	l.mvars = l.mvars[:0]
	l.goals = l.goals[:0]
	l.proofOrder = l.proofOrder[:0]
	for k := range l.proofs {
		delete(l.proofs, k)
	}
	l.closer = nil
}

// LookupVar reports the current InferSort for atom, and whether this is
// the variable's first mention (isNew) in this declaration.
func (l *LocalContext) LookupVar(atom ids.AtomID) (sort InferSort, isNew, ok bool) {
	nv, ok := l.named[atom]
	if !ok {
		return InferSort{}, false, false
	}
	return *nv.sort, nv.isNew, true
}

// DeclareVar introduces atom with the given InferSort and appends it to
// the ordered variable list; an anonymous binder (anon true) is appended
// as well, with Anon set (spec §4.I "Anonymous (_) binders are tracked by
// index only").
func (l *LocalContext) DeclareVar(atom ids.AtomID, anon bool, sp span.File, sort InferSort) *Var {
	s := sort
	l.named[atom] = &namedVar{isNew: true, sort: &s}
	l.vars = append(l.vars, Var{Atom: atom, Anon: anon, Span: sp, Sort: s})
	return &l.vars[len(l.vars)-1]
}

// RefineVar overwrites a previously Unknown variable's InferSort once it
// has been determined (spec §4.E "on later declaration the entry is
// refined").
func (l *LocalContext) RefineVar(atom ids.AtomID, sort InferSort) {
	if nv, ok := l.named[atom]; ok {
		*nv.sort = sort
	}
	for i := range l.vars {
		if l.vars[i].Atom == atom {
			l.vars[i].Sort = sort
		}
	}
}

// Vars returns the ordered variable list, dummies included.
func (l *LocalContext) Vars() []Var { return l.vars }

// NewMVar allocates and tracks a fresh metavariable (spec §4.I "live
// metavariables").
func (l *LocalContext) NewMVar(target lisp.InferTarget, sp span.File) *lisp.MVar {
	m := lisp.NewMVar(len(l.mvars), target, sp)
	l.mvars = append(l.mvars, m)
	return m
}

// MVars returns the live metavariable list.
func (l *LocalContext) MVars() []*lisp.MVar { return l.mvars }

// CleanMVars compacts the metavariable list to just the unassigned
// entries, renumbering them so their printed names stay short (spec
// §4.I "clean_mvars() compacts the metavariable list, renumbering
// remaining entries").
func (l *LocalContext) CleanMVars() {
	live := l.mvars[:0]
	for _, m := range l.mvars {
		if !m.IsAssigned() {
			m.Index = len(live)
			live = append(live, m)
		}
	}
	l.mvars = live
}

// SetGoals replaces the goal list.
func (l *LocalContext) SetGoals(gs []*lisp.Goal) { l.goals = gs }

// Goals returns the current goal list.
func (l *LocalContext) Goals() []*lisp.Goal { return l.goals }

// PushGoal appends a goal.
func (l *LocalContext) PushGoal(g *lisp.Goal) { l.goals = append(l.goals, g) }

// SetCloser installs a user-supplied closer callback for `focus` (spec
// §4.G "an installed closer callback").
func (l *LocalContext) SetCloser(c lisp.Callback) { l.closer = c }

// Closer returns the installed closer, if any.
func (l *LocalContext) Closer() lisp.Callback { return l.closer }

// AddProof inserts a new named subproof reachable by atom
// (original_source `LocalContext.add_proof`; spec §4.G "have ... inserts
// a new named subproof into the local context").
func (l *LocalContext) AddProof(atom ids.AtomID, stmt, proof lisp.Value) {
	if _, exists := l.proofs[atom]; !exists {
		l.proofOrder = append(l.proofOrder, atom)
	}
	l.proofs[atom] = subproof{stmt: stmt, proof: proof}
}

// GetProof looks up a named subproof's statement and proof value.
func (l *LocalContext) GetProof(atom ids.AtomID) (stmt, proof lisp.Value, ok bool) {
	sp, ok := l.proofs[atom]
	return sp.stmt, sp.proof, ok
}

// ProofOrder returns the atoms named by AddProof in insertion order.
func (l *LocalContext) ProofOrder() []ids.AtomID { return l.proofOrder }
