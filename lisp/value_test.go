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

package lisp_test

import (
	"math/big"
	"testing"

	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/span"
)

func TestUnwrapStripsNestedAnnotations(t *testing.T) {
	inner := lisp.IntFromInt64(42)
	sp1 := span.File{Name: "a", Span: span.Span{Start: 1, End: 2}}
	sp2 := span.File{Name: "a", Span: span.Span{Start: 3, End: 4}}
	wrapped := lisp.Annotated(sp1, lisp.Annotated(sp2, inner))

	v, sp := wrapped.Unwrap()
	if v.Kind() != lisp.KindInt || v.IntVal().Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("Unwrap should recover the innermost value")
	}
	if sp != sp2 {
		t.Fatalf("Unwrap should report the innermost span, got %v", sp)
	}
}

func TestUnwrapOnPlainValueReturnsZeroSpan(t *testing.T) {
	v, sp := lisp.IntFromInt64(1).Unwrap()
	if v.Kind() != lisp.KindInt {
		t.Fatalf("expected the value itself back unchanged")
	}
	if sp != span.Zero {
		t.Fatalf("expected span.Zero for an unannotated value, got %v", sp)
	}
}

func TestIsNilOnlyTrueForEmptyProperList(t *testing.T) {
	if !lisp.List().IsNil() {
		t.Fatalf("an empty List() should be nil")
	}
	if lisp.List(lisp.IntFromInt64(1)).IsNil() {
		t.Fatalf("a non-empty list should not be nil")
	}
	if lisp.DottedList(nil, lisp.IntFromInt64(1)).IsNil() {
		t.Fatalf("a dotted list should never be nil")
	}
}

func TestRefGetSetMutatesSharedCell(t *testing.T) {
	cell := lisp.NewRef(lisp.IntFromInt64(1))
	cell.RefSet(lisp.IntFromInt64(2))
	if cell.RefGet().IntVal().Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("RefSet should be visible through RefGet on the same Value")
	}
}

func TestDottedListTailAndListVal(t *testing.T) {
	dl := lisp.DottedList([]lisp.Value{lisp.IntFromInt64(1), lisp.IntFromInt64(2)}, lisp.IntFromInt64(3))
	if len(dl.ListVal()) != 2 {
		t.Fatalf("expected two proper-list elements before the tail")
	}
	if dl.Tail().IntVal().Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("expected tail value 3")
	}
}

func TestPredicatesDiscriminateKinds(t *testing.T) {
	a := lisp.Atom(7)
	l := lisp.List(lisp.IntFromInt64(1))
	if !a.IsAtom() || a.IsList() || a.IsProc() || a.IsUndef() {
		t.Fatalf("an atom should satisfy only IsAtom")
	}
	if !l.IsList() || l.IsAtom() {
		t.Fatalf("a list should satisfy only IsList")
	}
	if !lisp.Undef.IsUndef() {
		t.Fatalf("the canonical Undef value should satisfy IsUndef")
	}
}

func TestInferTargetVariantsAreMutuallyExclusive(t *testing.T) {
	cases := []lisp.InferTarget{lisp.Unknown(), lisp.Provable(), lisp.TargetBoundOf(3), lisp.TargetRegOf(4)}
	for i, c := range cases {
		count := 0
		for _, b := range []bool{c.IsUnknown(), c.IsProvable(), c.IsBound(), c.IsReg()} {
			if b {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("case %d: expected exactly one predicate true, got %d", i, count)
		}
	}
	if cases[2].SortAtom() != 3 || cases[3].SortAtom() != 4 {
		t.Fatalf("Bound/Reg should carry their sort atom through")
	}
}

func TestAtomMapValueRoundTripsThroughValue(t *testing.T) {
	m := lisp.NewAtomMap()
	m.Set(1, lisp.IntFromInt64(9))
	v := m.Value()
	if v.Kind() != lisp.KindAtomMap {
		t.Fatalf("expected KindAtomMap")
	}
	got, ok := v.AtomMapVal().Get(1)
	if !ok || got.IntVal().Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("expected the atom map contents to survive wrapping in a Value")
	}
}
