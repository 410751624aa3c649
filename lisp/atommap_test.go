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

	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
)

func TestAtomMapSetGetDelete(t *testing.T) {
	m := lisp.NewAtomMap()
	m.Set(1, lisp.IntFromInt64(10))
	if v, ok := m.Get(1); !ok || v.IntVal().Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("expected Get to return the value just Set")
	}
	m.Delete(1)
	if _, ok := m.Get(1); ok {
		t.Fatalf("expected Get to report not-ok after Delete")
	}
}

func TestAtomMapCloneIsIndependent(t *testing.T) {
	m := lisp.NewAtomMap()
	m.Set(1, lisp.IntFromInt64(1))
	clone := m.Clone()
	clone.Set(1, lisp.IntFromInt64(2))
	clone.Set(2, lisp.IntFromInt64(3))

	orig, _ := m.Get(1)
	if orig.IntVal().Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("mutating a clone must not affect the original map")
	}
	if m.Len() != 1 {
		t.Fatalf("expected original map length to stay 1, got %d", m.Len())
	}
	if clone.Len() != 2 {
		t.Fatalf("expected clone length 2, got %d", clone.Len())
	}
}

func TestAtomMapRangeVisitsEveryEntry(t *testing.T) {
	m := lisp.NewAtomMap()
	m.Set(1, lisp.IntFromInt64(1))
	m.Set(2, lisp.IntFromInt64(2))
	m.Set(3, lisp.IntFromInt64(3))

	seen := map[ids.AtomID]bool{}
	m.Range(func(atom ids.AtomID, v lisp.Value) bool {
		seen[atom] = true
		return true
	})
	if len(seen) != 3 {
		t.Fatalf("expected Range to visit all 3 entries, saw %d", len(seen))
	}
}

func TestAtomMapRangeStopsOnFalse(t *testing.T) {
	m := lisp.NewAtomMap()
	m.Set(1, lisp.IntFromInt64(1))
	m.Set(2, lisp.IntFromInt64(2))

	visited := 0
	m.Range(func(atom ids.AtomID, v lisp.Value) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Fatalf("expected Range to stop after the first callback returns false, visited %d", visited)
	}
}
