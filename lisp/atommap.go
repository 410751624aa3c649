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

// AtomMap is a persistent (copy-on-clone) atom -> Value map (spec §3
// "atom->value map (persistent copy-on-clone)"). Clone is O(n) rather than
// structural-sharing, which is sufficient at the sizes these scripts use
// and keeps the type a plain Go map instead of a hand-rolled HAMT.
type AtomMap struct {
	m map[ids.AtomID]Value
}

// NewAtomMap returns an empty map.
func NewAtomMap() *AtomMap { return &AtomMap{m: make(map[ids.AtomID]Value)} }

// Get looks up atom, returning (value, true) if bound.
func (m *AtomMap) Get(atom ids.AtomID) (Value, bool) {
	v, ok := m.m[atom]
	return v, ok
}

// Set binds atom to v, overwriting any existing binding.
func (m *AtomMap) Set(atom ids.AtomID, v Value) { m.m[atom] = v }

// Delete removes atom's binding, if any.
func (m *AtomMap) Delete(atom ids.AtomID) { delete(m.m, atom) }

// Len reports the number of bindings.
func (m *AtomMap) Len() int { return len(m.m) }

// Clone returns an independent copy, so mutating the clone never affects
// the original (spec §3 "persistent copy-on-clone").
func (m *AtomMap) Clone() *AtomMap {
	out := make(map[ids.AtomID]Value, len(m.m))
	for k, v := range m.m {
		out[k] = v
	}
	return &AtomMap{m: out}
}

// Value wraps m as a lisp Value.
func (m *AtomMap) Value() Value { return fromAtomMap(m) }

// Range iterates the map in unspecified order.
func (m *AtomMap) Range(f func(atom ids.AtomID, v Value) bool) {
	for k, v := range m.m {
		if !f(k, v) {
			return
		}
	}
}
