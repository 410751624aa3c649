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

// Package env is the environment (spec §4.B): the process-wide atom
// interner, the append-only sort/term/thm tables, the parser environment
// they feed, and the statement trace recording commit order.
package env

import (
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

// Graveyard records where a global scripting binding was last deleted,
// kept for go-to-definition (spec §3 "optional 'graveyard' entry
// (location of last deletion, retained for go-to-definition)").
type Graveyard struct {
	Span span.File
}

// AtomData is the per-atom record the environment owns (spec §3
// "Atoms... Per-atom data: canonical name; optional global scripting
// binding...; optional graveyard entry; optional pointer to a declared
// sort; optional pointer to a declared term-or-theorem").
type AtomData struct {
	Name string

	hasBinding bool
	binding    atomBinding

	hasGraveyard bool
	graveyard    Graveyard

	hasSort bool
	sort    ids.SortID

	hasDecl bool
	decl    term.DeclKey
}

type atomBinding struct {
	span span.File
	val  lisp.Value
}

// HasBinding and Binding report whether this atom has a global scripting
// binding (spec §3 "optional global scripting binding (with its source
// span and value)").
func (d *AtomData) HasBinding() bool { return d.hasBinding }
func (d *AtomData) Binding() (span.File, lisp.Value) { return d.binding.span, d.binding.val }

// Bind sets this atom's global scripting binding.
func (d *AtomData) Bind(sp span.File, v lisp.Value) {
	d.hasBinding = true
	d.binding = atomBinding{span: sp, val: v}
}

// Unbind removes this atom's global scripting binding and records a
// graveyard entry at sp.
func (d *AtomData) Unbind(sp span.File) {
	d.hasBinding = false
	d.binding = atomBinding{}
	d.SetGraveyard(Graveyard{Span: sp})
}

// HasSort and Sort report whether this atom names a declared sort.
func (d *AtomData) HasSort() bool      { return d.hasSort }
func (d *AtomData) Sort() ids.SortID   { return d.sort }
func (d *AtomData) setSort(s ids.SortID) { d.hasSort = true; d.sort = s }

// HasDecl and Decl report whether this atom names a declared term or
// theorem.
func (d *AtomData) HasDecl() bool       { return d.hasDecl }
func (d *AtomData) Decl() term.DeclKey  { return d.decl }
func (d *AtomData) setDecl(k term.DeclKey) { d.hasDecl = true; d.decl = k }

// HasGraveyard and Graveyard report the last-deletion record, if any.
func (d *AtomData) HasGraveyard() bool     { return d.hasGraveyard }
func (d *AtomData) GraveyardEntry() Graveyard { return d.graveyard }

// SetGraveyard records a deletion (spec §3 "#undef assignment removes
// [a global binding] but records a graveyard entry").
func (d *AtomData) SetGraveyard(g Graveyard) { d.hasGraveyard = true; d.graveyard = g }
