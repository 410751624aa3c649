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

// Package term holds the data model shared by the environment, the
// elaborator and the hash-cons engine: sorts, binder types, the
// expression and proof DAG node types, and the Term/Thm declarations
// that own them (spec §3, §4.A-ish "data model").
//
// The accessor-method-over-private-fields shape here (a constructor plus
// small Name()/Desc()-style getters) follows the teacher's stack.S type.
package term

import (
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/span"
)

// Modifier is a bit in a sort's or declaration's modifier set.
type Modifier uint8

// Sort modifiers (spec §3 "modifier bitset (subset of {pure, strict,
// provable, free})"). Term/Thm visibility modifiers live alongside these
// since both are small bitsets over the same underlying type.
const (
	ModPure Modifier = 1 << iota
	ModStrict
	ModProvable
	ModFree

	ModPub
	ModAbstract
	ModLocal
)

// Has reports whether m contains flag.
func (m Modifier) Has(flag Modifier) bool { return m&flag != 0 }

// Sort is a declared universe of terms.
type Sort struct {
	atom ids.AtomID
	name string
	span span.File
	full span.File
	mods Modifier
}

// NewSort builds a Sort. It does not check the 128-sort limit (spec
// §4.A); env.Environment.AddSort checks it.
func NewSort(atom ids.AtomID, name string, nameSpan, fullSpan span.File, mods Modifier) Sort {
	return Sort{atom: atom, name: name, span: nameSpan, full: fullSpan, mods: mods}
}

// Atom is the sort's name as an interned atom.
func (s Sort) Atom() ids.AtomID { return s.atom }

// Name is the sort's name as a string, cached alongside the atom so
// pretty-printing never needs to look the atom back up.
func (s Sort) Name() string { return s.name }

// Span is the span of the sort's name token.
func (s Sort) Span() span.File { return s.span }

// FullSpan is the span of the entire `sort ...;` statement.
func (s Sort) FullSpan() span.File { return s.full }

// Mods is the sort's modifier bitset.
func (s Sort) Mods() Modifier { return s.mods }

// SameAs reports whether s is the idempotent redeclaration of an
// identically-named, identically-modified sort (spec §4.B add_sort).
func (s Sort) SameAs(mods Modifier) bool { return s.mods == mods }

// Type is the type of a binder or return value: either a bound variable
// of a sort, carrying no dependencies, or a regular variable/return with
// a dependency bitset over the enclosing bound variables (spec §3
// "Type (of a binder/return)").
type Type struct {
	sort ids.SortID
	deps uint64 // zero and ignored when bound
	bound bool
}

// Bound constructs the type of a bound variable of sort s.
func Bound(s ids.SortID) Type { return Type{sort: s, bound: true} }

// Reg constructs the type of a regular variable/return of sort s with the
// given dependency bitset.
func Reg(s ids.SortID, deps uint64) Type { return Type{sort: s, deps: deps} }

// Sort is the type's sort.
func (t Type) Sort() ids.SortID { return t.sort }

// IsBound reports whether t is a bound-variable type.
func (t Type) IsBound() bool { return t.bound }

// Deps is the dependency bitset; it is always 0 for a bound type (spec
// §3: "Bound(sort) — ... carrying no dependencies").
func (t Type) Deps() uint64 {
	if t.bound {
		return 0
	}
	return t.deps
}

// MaxBoundVars is the largest number of bound variables a single
// declaration may introduce (spec §3, bitset width constraint).
const MaxBoundVars = 55
