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

// Package eval is the tactic-script evaluator (spec §4.F), run over a
// compiled intermediate representation of the lisp values the do-block
// parser hands it.
//
// The engine's top-level loop, which repeatedly dispatches on "what am I
// looking at", follows the teacher's hcl/eval/partial.go engine; here the
// tape is a compiled Ir tree instead of an HCL token list. eval handles a
// tail position in place by reassigning its current node, and recurses on
// the Go stack for non-tail subexpressions, with that recursion capped by
// the evaluator's maximum depth. There is no explicit operand stack or
// continuation-state tape.
package eval

import (
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/span"
)

// IrKind discriminates Ir's variants.
type IrKind uint8

const (
	IrConst IrKind = iota
	IrVar
	IrIf
	IrApp
	IrLambda
	IrDef
	IrSet
	IrBegin
	IrAnd
	IrOr
	IrMatch
)

// Ir is one node of compiled tactic-script code (spec §4.F "Eval(ir) —
// reduce an intermediate representation node").
type Ir struct {
	kind IrKind
	span span.File

	val  lisp.Value // IrConst
	atom ids.AtomID  // IrVar, IrDef, IrSet

	cond, then, els *Ir // IrIf
	body            []*Ir

	head *Ir   // IrApp
	args []*Ir // IrApp, IrBegin, IrAnd, IrOr

	params  lisp.Value // IrLambda: proper or dotted list of parameter atoms
	rawBody lisp.Value // IrLambda: uncompiled body, recompiled per call so the
	// resulting Proc can be handed to lisp.Lambda unchanged (lisp must not
	// import eval's Ir type, see lisp/proc.go)

	scrutinee *Ir
	branches  []MatchBranch
}

// MatchBranch is one `match` arm: a pattern plus the body to run when it
// fires.
type MatchBranch struct {
	Pattern Pattern
	Body    *Ir
}

func constIr(sp span.File, v lisp.Value) *Ir     { return &Ir{kind: IrConst, span: sp, val: v} }
func varIr(sp span.File, a ids.AtomID) *Ir       { return &Ir{kind: IrVar, span: sp, atom: a} }
func ifIr(sp span.File, c, t, e *Ir) *Ir         { return &Ir{kind: IrIf, span: sp, cond: c, then: t, els: e} }
func appIr(sp span.File, head *Ir, args []*Ir) *Ir {
	return &Ir{kind: IrApp, span: sp, head: head, args: args}
}
func lambdaIr(sp span.File, params, rawBody lisp.Value) *Ir {
	return &Ir{kind: IrLambda, span: sp, params: params, rawBody: rawBody}
}
func defIr(sp span.File, a ids.AtomID, v *Ir) *Ir { return &Ir{kind: IrDef, span: sp, atom: a, body: []*Ir{v}} }
func setIr(sp span.File, a ids.AtomID, v *Ir) *Ir { return &Ir{kind: IrSet, span: sp, atom: a, body: []*Ir{v}} }
func beginIr(sp span.File, body []*Ir) *Ir         { return &Ir{kind: IrBegin, span: sp, args: body} }
func andIr(sp span.File, args []*Ir) *Ir           { return &Ir{kind: IrAnd, span: sp, args: args} }
func orIr(sp span.File, args []*Ir) *Ir            { return &Ir{kind: IrOr, span: sp, args: args} }
func matchIr(sp span.File, scrutinee *Ir, branches []MatchBranch) *Ir {
	return &Ir{kind: IrMatch, span: sp, scrutinee: scrutinee, branches: branches}
}

func (n *Ir) Kind() IrKind    { return n.kind }
func (n *Ir) Span() span.File { return n.span }
