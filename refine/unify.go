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

package refine

import (
	"fmt"
	"strings"

	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
)

// Unify makes a and b equal, assigning any unassigned metavariable it
// meets and propagating the assignment through the shared *MVar pointer
// (spec §4.G "when a metavariable faces a concrete term, assign it,
// propagating to the shared reference cell; when two concrete terms
// meet, recurse structurally; disagreement is a typed error with both
// sides pretty-printed"). names renders atoms for the mismatch message.
func Unify(a, b lisp.Value, sp span.File, names nameLookup) *mm0err.Error {
	a, _ = a.Unwrap()
	b, _ = b.Unwrap()

	if a.Kind() == lisp.KindMVar {
		return unifyMVar(a, b, sp, names)
	}
	if b.Kind() == lisp.KindMVar {
		return unifyMVar(b, a, sp, names)
	}

	if a.Kind() != b.Kind() {
		return mismatch(sp, a, b, names)
	}

	switch a.Kind() {
	case lisp.KindAtom:
		if a.AtomID() != b.AtomID() {
			return mismatch(sp, a, b, names)
		}
		return nil
	case lisp.KindInt:
		if a.IntVal().Cmp(b.IntVal()) != 0 {
			return mismatch(sp, a, b, names)
		}
		return nil
	case lisp.KindString:
		if a.StringVal() != b.StringVal() {
			return mismatch(sp, a, b, names)
		}
		return nil
	case lisp.KindBool:
		if a.BoolVal() != b.BoolVal() {
			return mismatch(sp, a, b, names)
		}
		return nil
	case lisp.KindList:
		al, bl := a.ListVal(), b.ListVal()
		if len(al) != len(bl) {
			return mismatch(sp, a, b, names)
		}
		for i := range al {
			if err := Unify(al[i], bl[i], sp, names); err != nil {
				return err
			}
		}
		return nil
	default:
		return mismatch(sp, a, b, names)
	}
}

// unifyMVar handles the case where mv (already confirmed to be a
// metavariable) faces other: if mv is already assigned, unify its value
// against other instead of reassigning; otherwise assign other directly.
func unifyMVar(mv, other lisp.Value, sp span.File, names nameLookup) *mm0err.Error {
	m := mv.MVarVal()
	if m.IsAssigned() {
		return Unify(m.Get(), other, sp, names)
	}
	m.Assign(other)
	return nil
}

func mismatch(sp span.File, a, b lisp.Value, names nameLookup) *mm0err.Error {
	return mm0err.New(mm0err.ErrSortMismatch, sp,
		"cannot unify %s with %s", render(a, names), render(b, names))
}

// render is a minimal diagnostic pretty-printer, deliberately independent
// of lisp/eval's own pretty-printer (refine must not import lisp/eval).
func render(v lisp.Value, names nameLookup) string {
	v, _ = v.Unwrap()
	switch v.Kind() {
	case lisp.KindAtom:
		return names(v.AtomID())
	case lisp.KindInt:
		return v.IntVal().String()
	case lisp.KindString:
		return fmt.Sprintf("%q", v.StringVal())
	case lisp.KindBool:
		if v.BoolVal() {
			return "#t"
		}
		return "#f"
	case lisp.KindMVar:
		return fmt.Sprintf("?m%d", v.MVarVal().Index)
	case lisp.KindList:
		parts := make([]string, len(v.ListVal()))
		for i, e := range v.ListVal() {
			parts[i] = render(e, names)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case lisp.KindUndef:
		return "#undef"
	default:
		return "#<value>"
	}
}
