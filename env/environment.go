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

package env

import (
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/rs/zerolog"

	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/notation"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

// FormatVersion is the semantic version this build of the engine stamps
// onto every environment it produces, checked by Merge against another
// environment's version before attempting the merge (spec §4.B, §4.H;
// SPEC_FULL.md "the environment carries a FormatVersion ... checked with
// hashicorp/go-version constraints, mirroring the teacher's init.go
// version-constraint check").
const FormatVersion = "1.0.0"

// Environment owns every Sort/Term/Thm/AtomData (spec §3 "Ownership").
// Handles into its tables remain valid for the environment's lifetime.
type Environment struct {
	log zerolog.Logger

	atoms     map[string]ids.AtomID
	atomNames []string
	atomData  []*AtomData

	sorts ids.Table[ids.SortID, term.Sort]
	terms ids.Table[ids.TermID, term.Term]
	thms  ids.Table[ids.ThmID, term.Thm]

	parser *notation.ParserEnv

	stmts []term.StmtTrace

	formatVersion string
}

// New returns an empty environment logging through l.
func New(l zerolog.Logger) *Environment {
	return &Environment{
		log:           l.With().Str("component", "env.Environment").Logger(),
		atoms:         make(map[string]ids.AtomID),
		parser:        notation.New(),
		formatVersion: FormatVersion,
	}
}

// InternAtom maps name to its unique handle, minting one on first sight
// (spec §4.B "intern_atom(&str) -> AtomID: string-equal input yields the
// same handle; creates a new entry on miss").
func (e *Environment) InternAtom(name string) ids.AtomID {
	if a, ok := e.atoms[name]; ok {
		return a
	}
	a := ids.AtomID(len(e.atomNames))
	e.atoms[name] = a
	e.atomNames = append(e.atomNames, name)
	e.atomData = append(e.atomData, &AtomData{Name: name})
	e.log.Trace().Str("atom", name).Uint32("id", uint32(a)).Msg("interned atom")
	return a
}

// AtomName returns the interned name for atom.
func (e *Environment) AtomName(atom ids.AtomID) string { return e.atomNames[atom] }

// AtomData returns the mutable per-atom record for atom.
func (e *Environment) AtomData(atom ids.AtomID) *AtomData { return e.atomData[atom] }

// SortName returns the declared name of sort s.
func (e *Environment) SortName(s ids.SortID) string { return e.sorts.Get(s).Name() }

// Sort, Term, Thm retrieve a declared entity by ID.
func (e *Environment) Sort(id ids.SortID) term.Sort { return e.sorts.Get(id) }
func (e *Environment) Term(id ids.TermID) term.Term { return e.terms.Get(id) }
func (e *Environment) Thm(id ids.ThmID) term.Thm     { return e.thms.Get(id) }

// TermPtr and ThmPtr retrieve a pointer for in-place mutation (setting a
// def's value or a theorem's proof once elaboration finishes).
func (e *Environment) TermPtr(id ids.TermID) *term.Term { return e.terms.GetPtr(id) }
func (e *Environment) ThmPtr(id ids.ThmID) *term.Thm     { return e.thms.GetPtr(id) }

// Parser returns the parser environment (spec §4.C).
func (e *Environment) Parser() *notation.ParserEnv { return e.parser }

// Stmts returns the statement trace in commit order.
func (e *Environment) Stmts() []term.StmtTrace { return e.stmts }

// IsProvable reports whether sort s carries the provable modifier, used
// by the parser environment's coe_prov recomputation.
func (e *Environment) IsProvable(s ids.SortID) bool {
	return e.sorts.Get(s).Mods().Has(term.ModProvable)
}

// AddSort declares a new sort, or confirms an identical redeclaration
// (spec §4.B "if the atom already names a sort with the same modifiers,
// return the existing ID (idempotent); otherwise error").
func (e *Environment) AddSort(atom ids.AtomID, nameSpan, fullSpan span.File, mods term.Modifier) (ids.SortID, *mm0err.Error) {
	data := e.atomData[atom]
	if data.HasSort() {
		existing := e.sorts.Get(data.Sort())
		if existing.SameAs(mods) {
			return data.Sort(), nil
		}
		return 0, mm0err.New(mm0err.ErrRedeclared, nameSpan,
			"sort %q redeclared with different modifiers", data.Name).
			WithSecondary(existing.Span(), "first declared here")
	}
	if e.sorts.Len() > ids.MaxSortID {
		return 0, mm0err.New(mm0err.ErrOverflow, nameSpan, "too many sorts (max %d)", ids.MaxSortID+1)
	}
	s := term.NewSort(atom, data.Name, nameSpan, fullSpan, mods)
	id := e.sorts.Push(s)
	data.setSort(id)
	e.stmts = append(e.stmts, term.TraceSort(atom))
	e.log.Debug().Str("sort", data.Name).Msg("declared sort")
	return id, nil
}

// AddTerm declares a new term/def, or confirms an identical
// redeclaration by name span. build is only invoked once the
// redeclaration check passes, so a rejected redeclaration never pays the
// cost of building its body (spec §4.B "the value is produced by a thunk
// so the body is only built after the redeclaration check").
func (e *Environment) AddTerm(atom ids.AtomID, nameSpan span.File, build func() term.Term) (ids.TermID, *mm0err.Error) {
	data := e.atomData[atom]
	if data.HasDecl() {
		key := data.Decl()
		if !key.IsTerm() {
			return 0, mm0err.New(mm0err.ErrRedeclared, nameSpan, "%q is already declared as a theorem", data.Name)
		}
		existing := e.terms.Get(key.TermID())
		if existing.Span == nameSpan {
			return key.TermID(), nil
		}
		return 0, mm0err.New(mm0err.ErrRedeclared, nameSpan, "term %q redeclared", data.Name).
			WithSecondary(existing.Span, "first declared here")
	}
	if uint64(e.terms.Len()) >= uint64(ids.MaxID) {
		return 0, mm0err.New(mm0err.ErrOverflow, nameSpan, "too many terms")
	}
	t := build()
	id := e.terms.Push(t)
	data.setDecl(term.TermKey(id))
	e.stmts = append(e.stmts, term.TraceDecl(atom))
	e.log.Debug().Str("term", data.Name).Msg("declared term")
	return id, nil
}

// AddThm declares a new axiom/theorem, symmetric to AddTerm (spec §4.B
// "add_thm ... symmetric").
func (e *Environment) AddThm(atom ids.AtomID, nameSpan span.File, build func() term.Thm) (ids.ThmID, *mm0err.Error) {
	data := e.atomData[atom]
	if data.HasDecl() {
		key := data.Decl()
		if !key.IsThm() {
			return 0, mm0err.New(mm0err.ErrRedeclared, nameSpan, "%q is already declared as a term", data.Name)
		}
		existing := e.thms.Get(key.ThmID())
		if existing.Span == nameSpan {
			return key.ThmID(), nil
		}
		return 0, mm0err.New(mm0err.ErrRedeclared, nameSpan, "theorem %q redeclared", data.Name).
			WithSecondary(existing.Span, "first declared here")
	}
	if uint64(e.thms.Len()) >= uint64(ids.MaxID) {
		return 0, mm0err.New(mm0err.ErrOverflow, nameSpan, "too many theorems")
	}
	t := build()
	id := e.thms.Push(t)
	data.setDecl(term.ThmKey(id))
	e.stmts = append(e.stmts, term.TraceDecl(atom))
	e.log.Debug().Str("thm", data.Name).Msg("declared theorem")
	return id, nil
}

// CheckTermNargs verifies that termID has exactly n arguments, reporting
// a located error against the declaration's span on mismatch (spec §4.B
// "check_term_nargs(term, n): arity check with located error pointing to
// the declaration").
func (e *Environment) CheckTermNargs(termID ids.TermID, n int) *mm0err.Error {
	t := e.terms.Get(termID)
	if len(t.Args) != n {
		return mm0err.New(mm0err.ErrArity, t.Span, "term %q expects %d arguments, got %d",
			e.atomNames[t.Atom], len(t.Args), n)
	}
	return nil
}

// AddCoercion declares term as a coercion from sort s1 to s2, after
// confirming it has exactly one argument of sort s1 and returns sort s2
// (spec §4.B "add_coercion(s1, s2, span, term): delegates to the parser
// environment after confirming term arity 1 and sort signature").
func (e *Environment) AddCoercion(s1, s2 ids.SortID, sp span.File, termID ids.TermID) *mm0err.Error {
	t := e.terms.Get(termID)
	if err := e.CheckTermNargs(termID, 1); err != nil {
		return err
	}
	if t.Args[0].Type.Sort() != s1 {
		return mm0err.New(mm0err.ErrSortMismatch, sp, "coercion argument must have sort %s", e.SortName(s1))
	}
	if t.Ret.Sort() != s2 {
		return mm0err.New(mm0err.ErrSortMismatch, sp, "coercion must return sort %s", e.SortName(s2))
	}
	if err := e.parser.AddCoercionRaw(s1, s2, sp, termID, e.SortName); err != nil {
		return err
	}
	e.parser.MarkHasCoe(termID)
	return e.parser.UpdateCoeProv(e.IsProvable, e.SortName)
}

// CheckFormatVersionCompat reports whether otherVersion is merge-
// compatible with this environment's FormatVersion, per a
// "~> major.minor" constraint built from ownVersion: otherVersion needs
// the same major version and at least the same minor version
// (SPEC_FULL.md "checked with hashicorp/go-version constraints").
func CheckFormatVersionCompat(ownVersion, otherVersion string) error {
	own, err := version.NewVersion(ownVersion)
	if err != nil {
		return err
	}
	other, err := version.NewVersion(otherVersion)
	if err != nil {
		return err
	}
	segs := own.Segments()
	constraint, err := version.NewConstraint(fmt.Sprintf("~> %d.%d", segs[0], segs[1]))
	if err != nil {
		return err
	}
	if !constraint.Check(other) {
		return mm0err.New(mm0err.ErrRedeclared, span.Zero,
			"incompatible environment format version %s (want %s)", otherVersion, ownVersion)
	}
	return nil
}

// FormatVersion returns this environment's stamped format version.
func (e *Environment) FormatVersion() string { return e.formatVersion }

// Snapshot is a read-only, frozen view of an environment's sizes and
// counts, safe to read from another goroutine while the owning
// environment continues to mutate (SPEC_FULL.md "Environment.Close() /
// snapshotting: a read-only frozen view usable for cross-goroutine
// diagnostics ... for the CLI's stats subcommand, without exposing
// mutation").
type Snapshot struct {
	Sorts, Terms, Thms, Atoms int
	FormatVersion             string
}

// Close takes a Snapshot of e's current sizes.
func (e *Environment) Close() Snapshot {
	return Snapshot{
		Sorts:         e.sorts.Len(),
		Terms:         e.terms.Len(),
		Thms:          e.thms.Len(),
		Atoms:         len(e.atomNames),
		FormatVersion: e.formatVersion,
	}
}
