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

import (
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
)

// ProcKind discriminates Proc's variants (spec §3 "procedure (builtin,
// lambda-closure with captured environment, match-continuation,
// proof-thunk, refine-callback, external compiler object)").
type ProcKind uint8

const (
	ProcBuiltin ProcKind = iota
	ProcLambda
	ProcContinuation
	ProcProofThunk
	ProcRefineCallback
	ProcCompilerObj
)

// Arity is a builtin or lambda's expected argument count (spec §4.F "each
// with an arity spec (Exact(n) or AtLeast(n))").
type Arity struct {
	N        int
	AtLeast  bool
}

func Exact(n int) Arity   { return Arity{N: n} }
func AtLeastN(n int) Arity { return Arity{N: n, AtLeast: true} }

// Accepts reports whether an application of n arguments satisfies a.
func (a Arity) Accepts(n int) bool {
	if a.AtLeast {
		return n >= a.N
	}
	return n == a.N
}

// Continuation is a first-class one-shot resumption captured mid-match
// (spec §4.F "Match continuations"). The lisp/eval package supplies the
// concrete implementation, which resumes matching at the branch after the
// one that captured it;
// lisp itself only needs the interface so Value can hold one without
// importing the evaluator.
type Continuation interface {
	// Invoke resumes the capture point with args as the match result.
	// Calling an already-Expired continuation is an error (spec: "Calling
	// an expired continuation is an error").
	Invoke(args []Value) (Value, *mm0err.Error)
	Expired() bool
}

// Thunk lazily produces a proof value, used for proofs that are
// referenced before they are forced (spec §3 "lazy proof thunks").
type Thunk interface {
	Force() (Value, *mm0err.Error)
}

// Callback is an evaluator-supplied procedure invoked by the refine
// engine, e.g. the `refine-extra-args` hook or a `focus` closer (spec
// §4.G "the overridable refine-extra-args user hook", §4.G "focus").
type Callback interface {
	Call(args []Value) (Value, *mm0err.Error)
}

// Proc is a callable lisp value.
type Proc struct {
	kind ProcKind
	name string // builtin name, or a lambda/thunk's display name if any

	arity Arity

	// ProcLambda
	params Value // a proper or dotted list of parameter atoms
	body   Value
	env    *Env

	// ProcContinuation
	cont Continuation

	// ProcProofThunk
	thunk Thunk

	// ProcRefineCallback
	callback Callback

	span span.File
}

// Builtin constructs a reference to a builtin procedure by name; the
// lisp/eval package's builtin table resolves name to an implementation
// at call time (spec §4.F builtin dispatch table).
func Builtin(name string, arity Arity) Value {
	return fromProc(&Proc{kind: ProcBuiltin, name: name, arity: arity})
}

// Lambda constructs a closure capturing env, with formal parameters
// params (a proper list, or dotted for a variadic tail) and body.
func Lambda(params, body Value, env *Env, sp span.File) Value {
	return fromProc(&Proc{kind: ProcLambda, params: params, body: body, env: env, span: sp})
}

// ContinuationProc wraps an evaluator-supplied Continuation.
func ContinuationProc(c Continuation) Value {
	return fromProc(&Proc{kind: ProcContinuation, cont: c})
}

// ProofThunkProc wraps an evaluator-supplied Thunk.
func ProofThunkProc(t Thunk) Value {
	return fromProc(&Proc{kind: ProcProofThunk, thunk: t})
}

// RefineCallbackProc wraps an evaluator-supplied Callback.
func RefineCallbackProc(c Callback) Value {
	return fromProc(&Proc{kind: ProcRefineCallback, callback: c})
}

// CompilerObj constructs an opaque external-compiler-object procedure
// value, named name. This core does not itself implement a compiler
// backend (see spec.md Non-goals: no binary output format); the variant
// exists only so a value passed in from an external MMC-style compiler
// integration round-trips through the tactic language without the
// evaluator needing to know its internals.
func CompilerObj(name string) Value {
	return fromProc(&Proc{kind: ProcCompilerObj, name: name})
}

func (p *Proc) Kind() ProcKind   { return p.kind }
func (p *Proc) Name() string     { return p.name }
func (p *Proc) Arity() Arity     { return p.arity }
func (p *Proc) Params() Value    { return p.params }
func (p *Proc) Body() Value      { return p.body }
func (p *Proc) ClosureEnv() *Env { return p.env }
func (p *Proc) Continuation() Continuation { return p.cont }
func (p *Proc) Thunk() Thunk             { return p.thunk }
func (p *Proc) Callback() Callback       { return p.callback }
func (p *Proc) Span() span.File          { return p.span }
