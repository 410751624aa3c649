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

// Package refine is the goal-directed proof elaboration engine (spec
// §4.G): unification of expressions and metavariables, coercion
// insertion during proof elaboration, the overridable refine-extra-args
// hook, disjoint-variable checking, conversion-proof construction, and
// focus/have block management.
//
// This package imports neither env nor lisp/eval: it knows nothing about
// the tactic evaluator's IR or trampoline. lisp/eval depends on refine
// (its refine/to-expr/have/infer-type builtins in lisp/eval/refine.go
// call into this package), never the reverse, so the unification and proof-building
// logic here can be exercised directly by tests without constructing an
// Evaluator.
package refine

import (
	"github.com/monocodus-demonstrations/mm0/ids"
)

// State names the refine engine's states (spec §4.G "Goals{gs, es} /
// RefineProof{tgt, p} / RefineExpr{tgt, e} / Ret(v)") as a closed enum.
// Nothing in this module uses State or Callback: lisp/eval's refine
// builtins (lisp/eval/refine.go) run refinement as ordinary recursive Go
// calls, with no State-tagged frames.
type State uint8

const (
	// StateGoals iterates parallel goal/proof-expression sequences.
	StateGoals State = iota
	// StateRefineProof elaborates a lisp value as a proof of a target,
	// where the target may be a metavariable to unify.
	StateRefineProof
	// StateRefineExpr elaborates a lisp value as an expression against an
	// InferTarget, used by to-expr and recursively during proof
	// elaboration.
	StateRefineExpr
	// StateRet returns a value to the tactic evaluator.
	StateRet
)

// Callback names the three refine-specific continuations a suspended
// State may carry (spec §4.G "callbacks: CoerceTo(tgt), DeferGoals(saved),
// Typed(p)").
type Callback uint8

const (
	CallbackCoerceTo Callback = iota
	CallbackDeferGoals
	CallbackTyped
)

// sortName/termName/atomName helpers shared across this package's files
// take a lookup function rather than an *env.Environment directly, so
// unify.go/coerce.go stay testable against a bare map without
// constructing a full Environment.
type nameLookup = func(ids.AtomID) string
