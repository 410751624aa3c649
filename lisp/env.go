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

import "github.com/monocodus-demonstrations/mm0/ids"

// Env is one frame of lexical scope: a set of local bindings plus a
// parent frame to fall back to. Lambda closures capture an *Env by
// reference, giving them the "immutable snapshot of the enclosing
// lexical context by shared reference" ownership spec §3 describes —
// immutable in the sense that a closure never mutates its captured
// frame, even though the frame chain as a whole is an ordinary mutable
// Go map for the scope that is still being built.
type Env struct {
	parent *Env
	vars   map[ids.AtomID]Value
}

// NewEnv returns a fresh top-level frame with no parent.
func NewEnv() *Env { return &Env{vars: make(map[ids.AtomID]Value)} }

// Child returns a new frame nested inside e.
func (e *Env) Child() *Env { return &Env{parent: e, vars: make(map[ids.AtomID]Value)} }

// Lookup searches e and its ancestors for atom.
func (e *Env) Lookup(atom ids.AtomID) (Value, bool) {
	for f := e; f != nil; f = f.parent {
		if v, ok := f.vars[atom]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Bind sets atom's binding in this frame only (shadowing any ancestor
// binding for the lifetime of this frame).
func (e *Env) Bind(atom ids.AtomID, v Value) { e.vars[atom] = v }

// Assign mutates atom's binding in whichever frame of e's ancestor chain
// currently holds it, for `set!`. It reports false if atom is unbound
// anywhere in the chain, in which case the caller should treat this as an
// unbound-variable error rather than silently creating a new binding.
func (e *Env) Assign(atom ids.AtomID, v Value) bool {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.vars[atom]; ok {
			f.vars[atom] = v
			return true
		}
	}
	return false
}
