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

package term

import (
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/span"
)

// Arg is one binder of a Term or Thm: a name (for pretty-printing and
// tactic-script lookup) and a Type.
type Arg struct {
	Atom ids.AtomID
	Type Type
}

// Term is a declared term constructor or definition. A term with no Val
// is a bare constructor (`term`); a term with a Val of nil is a def whose
// body has not yet been elaborated (forward declaration, spec §4.A
// "two-phase declaration: ... a term/def may be forward-declared before
// its value is known"); a term with a non-nil Val is a fully elaborated
// def.
type Term struct {
	Atom ids.AtomID
	Span span.File
	Full span.File
	Mods Modifier
	Args []Arg
	Ret  Type

	valSet bool
	val    *Expr
}

// NewTerm builds a term/constructor declaration with no value yet.
func NewTerm(atom ids.AtomID, sp, full span.File, mods Modifier, args []Arg, ret Type) Term {
	return Term{Atom: atom, Span: sp, Full: full, Mods: mods, Args: args, Ret: ret}
}

// HasVal reports whether the def's value slot has been set at all
// (distinguishing "term" from "def", independent of whether the def's
// body has finished elaborating).
func (t Term) HasVal() bool { return t.valSet }

// Val returns the def's body, or nil if it is still a forward
// declaration awaiting its value.
func (t Term) Val() *Expr { return t.val }

// SetForwardDeclared marks t as a def whose value is not yet known.
func (t *Term) SetForwardDeclared() { t.valSet = true; t.val = nil }

// SetVal records t's fully elaborated body.
func (t *Term) SetVal(e Expr) { t.valSet = true; t.val = &e }

// IsDef reports whether t was declared with `def` rather than `term`.
func (t Term) IsDef() bool { return t.valSet }

// Thm is a declared axiom or theorem. Args are the theorem's bound and
// regular variables; Heap/Hyps/Ret give the statement in the same
// deduped-node vocabulary as Term.Val, with Hyps naming the hypotheses'
// statements. Proof is nil until the theorem's proof has been checked
// (spec §4.A "a theorem may be declared with its statement alone, proof
// pending").
type Thm struct {
	Atom ids.AtomID
	Span span.File
	Full span.File
	Mods Modifier
	Args []Arg
	Heap []ExprNode
	Hyps []ExprNode
	Ret  ExprNode

	proofSet bool
	proof    *Proof
}

// NewThm builds an axiom/theorem declaration with no proof yet. An axiom
// never acquires one; a theorem does once its tactic script (or `sorry`)
// finishes (spec §4.A, §4.F).
func NewThm(atom ids.AtomID, sp, full span.File, mods Modifier, args []Arg, heap, hyps []ExprNode, ret ExprNode) Thm {
	return Thm{Atom: atom, Span: sp, Full: full, Mods: mods, Args: args, Heap: heap, Hyps: hyps, Ret: ret}
}

// HasProof reports whether SetProof has been called on t. There is no
// separate axiom flag (Mods carries none in this model): callers
// distinguish axiom from theorem at the declaration-kind level, before
// calling NewThm, and an axiom is a Thm on which SetProof is never called.
func (t Thm) HasProof() bool { return t.proofSet }

// Proof returns the checked proof, or nil if none has been attached yet.
func (t Thm) Proof() *Proof { return t.proof }

// SetProof records t's checked proof.
func (t *Thm) SetProof(p Proof) { t.proofSet = true; t.proof = &p }

// DeclKey names a Term or Thm from the shared atom namespace the two
// occupy together (original_source `DeclKey::Term(TermID) | Thm(ThmID)`):
// a term and a theorem may never share a name, so one lookup by atom
// yields at most one DeclKey.
type DeclKey struct {
	isThm bool
	term  ids.TermID
	thm   ids.ThmID
}

// TermKey and ThmKey construct the two DeclKey variants.
func TermKey(id ids.TermID) DeclKey { return DeclKey{term: id} }
func ThmKey(id ids.ThmID) DeclKey   { return DeclKey{isThm: true, thm: id} }

// IsTerm and IsThm discriminate the variant.
func (k DeclKey) IsTerm() bool { return !k.isThm }
func (k DeclKey) IsThm() bool  { return k.isThm }

// TermID and ThmID are valid when IsTerm/IsThm respectively.
func (k DeclKey) TermID() ids.TermID { return k.term }
func (k DeclKey) ThmID() ids.ThmID   { return k.thm }

// StmtTrace orders an environment's top-level statements for replay and
// for the cross-environment merge's dependency walk (original_source
// `StmtTrace::Sort(AtomID) | Decl(AtomID) | Global(AtomID)`, spec §4.I
// "the environment records the order statements were committed in").
// Global names a top-level `do` block's side effects (global scripting
// state mutation) rather than a sort or declaration.
type StmtTrace struct {
	kind traceKind
	atom ids.AtomID
}

type traceKind uint8

const (
	traceSort traceKind = iota
	traceDecl
	traceGlobal
)

func TraceSort(atom ids.AtomID) StmtTrace   { return StmtTrace{kind: traceSort, atom: atom} }
func TraceDecl(atom ids.AtomID) StmtTrace   { return StmtTrace{kind: traceDecl, atom: atom} }
func TraceGlobal(atom ids.AtomID) StmtTrace { return StmtTrace{kind: traceGlobal, atom: atom} }

func (s StmtTrace) IsSort() bool   { return s.kind == traceSort }
func (s StmtTrace) IsDecl() bool   { return s.kind == traceDecl }
func (s StmtTrace) IsGlobal() bool { return s.kind == traceGlobal }

// Atom is the named sort, declaration, or global-block atom, valid for
// all three variants (original_source StmtTrace::atom()).
func (s StmtTrace) Atom() ids.AtomID { return s.atom }
