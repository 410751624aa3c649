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

// RemapAtoms rewrites every AtomID reachable inside v through remap,
// used by the merge package to translate a global scripting binding
// copied from another environment into this environment's atom
// namespace (spec §4.H "copy any global scripting binding (remapping
// lisp values)"). Ref cells, atom maps, metavariables, goals, and
// procedures are returned unchanged: they are mutable or closure-carrying
// values a structural copy cannot safely rewrite, and global bindings at
// the top level of a script are overwhelmingly atoms, lists, and
// annotated wrappers around them.
func RemapAtoms(v Value, remap func(ids.AtomID) ids.AtomID) Value {
	switch v.kind {
	case KindAtom:
		return Atom(remap(v.atom))
	case KindList:
		return List(remapList(v.list, remap)...)
	case KindDottedList:
		tail := RemapAtoms(*v.tail, remap)
		return DottedList(remapList(v.list, remap), tail)
	case KindAnnotated:
		return Annotated(v.ann, RemapAtoms(*v.anns, remap))
	default:
		return v
	}
}

func remapList(items []Value, remap func(ids.AtomID) ids.AtomID) []Value {
	out := make([]Value, len(items))
	for i, it := range items {
		out[i] = RemapAtoms(it, remap)
	}
	return out
}
