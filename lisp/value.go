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

// Package lisp is the tagged value type of the embedded tactic-script
// language (spec §3 "Lisp values") plus the small pieces of mutable state
// (ref-cells, atom maps, metavariables, goals) those values close over.
// Values share storage the way the teacher's cty.Value tree does: a
// tagged struct wrapping whichever payload the Kind calls for, copied by
// reference for the container kinds and by value for the scalars.
package lisp

import (
	"math/big"

	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/span"
)

// Kind discriminates Value's variants (spec §3 "atom, bool, string, big
// integer, list, dotted list, undef; mutable ref-cell; atom->value map
// ...; meta-variable; goal; annotated; procedure").
type Kind uint8

const (
	KindUndef Kind = iota
	KindAtom
	KindBool
	KindString
	KindInt
	KindList
	KindDottedList
	KindRef
	KindAtomMap
	KindMVar
	KindGoal
	KindAnnotated
	KindProc
)

// Value is one node of a lisp tree.
type Value struct {
	kind Kind

	atom ids.AtomID
	b    bool
	str  string
	i    *big.Int

	list []Value
	tail *Value // KindDottedList: the improper tail after list

	ref *Value // KindRef: the mutable cell's current contents

	atomMap *AtomMap

	mvar   *MVar
	goal   *Goal

	ann  span.File
	anns *Value

	proc *Proc
}

// Undef is the canonical `#undef` value.
var Undef = Value{kind: KindUndef}

func Atom(a ids.AtomID) Value   { return Value{kind: KindAtom, atom: a} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func String(s string) Value     { return Value{kind: KindString, str: s} }
func Int(i *big.Int) Value      { return Value{kind: KindInt, i: i} }
func IntFromInt64(i int64) Value { return Value{kind: KindInt, i: big.NewInt(i)} }
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// DottedList builds `(items... . tail)`; tail must not itself be a proper
// list (that degenerates to List).
func DottedList(items []Value, tail Value) Value {
	return Value{kind: KindDottedList, list: items, tail: &tail}
}

// NewRef builds a mutable reference cell initialized to v.
func NewRef(v Value) Value { r := v; return Value{kind: KindRef, ref: &r} }

func fromAtomMap(m *AtomMap) Value { return Value{kind: KindAtomMap, atomMap: m} }
func fromMVar(m *MVar) Value       { return Value{kind: KindMVar, mvar: m} }
func fromGoal(g *Goal) Value       { return Value{kind: KindGoal, goal: g} }
func fromProc(p *Proc) Value       { return Value{kind: KindProc, proc: p} }

// Annotated wraps v with a source span, used to carry location
// information through evaluation without changing the value's logical
// identity (spec §3 "annotated (span-decorated) wrapper").
func Annotated(sp span.File, v Value) Value {
	return Value{kind: KindAnnotated, ann: sp, anns: &v}
}

// Kind reports v's variant.
func (v Value) Kind() Kind { return v.kind }

// Unwrap strips any number of Annotated wrappers, returning the
// underlying value and the innermost span found (Zero if none).
func (v Value) Unwrap() (Value, span.File) {
	sp := span.Zero
	for v.kind == KindAnnotated {
		sp = v.ann
		v = *v.anns
	}
	return v, sp
}

func (v Value) AtomID() ids.AtomID { return v.atom }
func (v Value) BoolVal() bool      { return v.b }
func (v Value) StringVal() string  { return v.str }
func (v Value) IntVal() *big.Int   { return v.i }
func (v Value) ListVal() []Value   { return v.list }
func (v Value) Tail() Value        { return *v.tail }
func (v Value) RefGet() Value      { return *v.ref }
func (v Value) RefSet(nv Value)    { *v.ref = nv }
func (v Value) AtomMapVal() *AtomMap { return v.atomMap }
func (v Value) MVarVal() *MVar     { return v.mvar }
func (v Value) GoalVal() *Goal     { return v.goal }
func (v Value) ProcVal() *Proc     { return v.proc }

// IsUndef, IsList, IsProc etc. are the common predicates builtins need.
func (v Value) IsUndef() bool { return v.kind == KindUndef }
func (v Value) IsList() bool  { return v.kind == KindList }
func (v Value) IsProc() bool  { return v.kind == KindProc }
func (v Value) IsAtom() bool  { return v.kind == KindAtom }

// IsNil reports whether v is the empty proper list, lisp's `()`.
func (v Value) IsNil() bool { return v.kind == KindList && len(v.list) == 0 }

// InferTarget is the expected shape of an expression being elaborated
// (spec §3 "InferTarget ∈ {Unknown, Provable, Bound(sort-atom),
// Reg(sort-atom)}").
type InferTarget struct {
	kind     TargetKind
	sortAtom ids.AtomID
}

// TargetKind discriminates InferTarget's variants.
type TargetKind uint8

const (
	TargetUnknown TargetKind = iota
	TargetProvable
	TargetBound
	TargetReg
)

func Unknown() InferTarget  { return InferTarget{kind: TargetUnknown} }
func Provable() InferTarget { return InferTarget{kind: TargetProvable} }
func TargetBoundOf(sortAtom ids.AtomID) InferTarget {
	return InferTarget{kind: TargetBound, sortAtom: sortAtom}
}
func TargetRegOf(sortAtom ids.AtomID) InferTarget {
	return InferTarget{kind: TargetReg, sortAtom: sortAtom}
}

func (t InferTarget) Kind() TargetKind    { return t.kind }
func (t InferTarget) SortAtom() ids.AtomID { return t.sortAtom }
func (t InferTarget) IsUnknown() bool  { return t.kind == TargetUnknown }
func (t InferTarget) IsProvable() bool { return t.kind == TargetProvable }
func (t InferTarget) IsBound() bool    { return t.kind == TargetBound }
func (t InferTarget) IsReg() bool      { return t.kind == TargetReg }
