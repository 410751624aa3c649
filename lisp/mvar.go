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

package lisp

import "github.com/monocodus-demonstrations/mm0/span"

// MVar is a metavariable awaiting assignment during refine's unification
// (spec §3 "meta-variable MVar(index, InferTarget)"; spec §4.I "live
// metavariables", §4.G "when a metavariable faces a concrete term, assign
// it"). Index is the metavariable's position in the owning local
// context's list, used to print short names (`?a`, `?b`, ...) and to
// support LocalContext.CleanMVars renumbering.
type MVar struct {
	Index  int
	Target InferTarget
	Span   span.File

	assigned bool
	value    Value
}

// NewMVar constructs an unassigned metavariable.
func NewMVar(index int, target InferTarget, sp span.File) *MVar {
	return &MVar{Index: index, Target: target, Span: sp}
}

// Value wraps m as a lisp Value.
func (m *MVar) Value() Value { return fromMVar(m) }

// IsAssigned reports whether Assign has been called.
func (m *MVar) IsAssigned() bool { return m.assigned }

// Assign records v as this metavariable's value, propagating to every
// holder of the shared *MVar pointer (spec §4.G "assign it, propagating
// to the shared reference cell").
func (m *MVar) Assign(v Value) { m.assigned = true; m.value = v }

// Get returns the assigned value; callers must check IsAssigned first.
func (m *MVar) Get() Value { return m.value }

// Goal is a proof obligation: a statement expression awaiting a proof
// (spec §3 "goal Goal(expr)").
type Goal struct {
	Stmt Value
	Span span.File

	solved bool
	proof  Value
}

// NewGoal constructs an unsolved goal for stmt.
func NewGoal(stmt Value, sp span.File) *Goal { return &Goal{Stmt: stmt, Span: sp} }

// Value wraps g as a lisp Value.
func (g *Goal) Value() Value { return fromGoal(g) }

// IsSolved reports whether Solve has been called.
func (g *Goal) IsSolved() bool { return g.solved }

// Solve records proof as this goal's solution.
func (g *Goal) Solve(proof Value) { g.solved = true; g.proof = proof }

// Proof returns the recorded solution; callers must check IsSolved first.
func (g *Goal) Proof() Value { return g.proof }
