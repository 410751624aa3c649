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

package env_test

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/monocodus-demonstrations/mm0/env"
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/internal/testenv"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

func sp(n int) span.File { return span.File{Name: "t.mm1", Span: span.Span{Start: n, End: n + 1}} }

func TestAddSortIdempotentRedeclaration(t *testing.T) {
	e := env.New(zerolog.Nop())
	wff := e.InternAtom("wff")

	id1, err := e.AddSort(wff, sp(0), sp(0), term.ModProvable)
	testenv.AssertNoError(t, err)

	id2, err := e.AddSort(wff, sp(0), sp(0), term.ModProvable)
	testenv.AssertNoError(t, err)
	if id1 != id2 {
		t.Fatalf("identical redeclaration should return the same SortID")
	}

	_, err = e.AddSort(wff, sp(1), sp(1), term.ModPure)
	testenv.AssertKind(t, err, mm0err.ErrRedeclared)
}

func TestAddTermRedeclarationAcrossKinds(t *testing.T) {
	e := env.New(zerolog.Nop())
	sortAtom := e.InternAtom("wff")
	sortID, err := e.AddSort(sortAtom, sp(0), sp(0), term.ModProvable)
	testenv.AssertNoError(t, err)

	imAtom := e.InternAtom("im")
	termSpan := sp(1)
	_, err = e.AddTerm(imAtom, termSpan, func() term.Term {
		return term.NewTerm(imAtom, termSpan, termSpan, 0,
			[]term.Arg{{Atom: e.InternAtom("a"), Type: term.Reg(sortID, 0)}, {Atom: e.InternAtom("b"), Type: term.Reg(sortID, 0)}},
			term.Reg(sortID, 0))
	})
	testenv.AssertNoError(t, err)

	// Redeclaring the same atom as a theorem must fail: terms and
	// theorems share one namespace per atom (spec §4.B).
	_, err = e.AddThm(imAtom, sp(2), func() term.Thm {
		return term.NewThm(imAtom, sp(2), sp(2), 0, nil, nil, nil, term.Ref(0))
	})
	testenv.AssertKind(t, err, mm0err.ErrRedeclared)
}

func TestCheckFormatVersionCompat(t *testing.T) {
	if err := env.CheckFormatVersionCompat("1.0.0", "1.2.0"); err != nil {
		t.Fatalf("same-major versions should be compatible: %v", err)
	}
	if err := env.CheckFormatVersionCompat("1.0.0", "2.0.0"); err == nil {
		t.Fatalf("different-major versions should be rejected")
	}
}

func TestAddCoercionDiamond(t *testing.T) {
	e := env.New(zerolog.Nop())
	nat := mustSort(t, e, "nat")
	int_ := mustSort(t, e, "int")
	real := mustSort(t, e, "real")

	natToInt := mustCoeTerm(t, e, "nat_int", nat, int_)
	intToReal := mustCoeTerm(t, e, "int_real", int_, real)
	natToReal := mustCoeTerm(t, e, "nat_real", nat, real)

	testenv.AssertNoError(t, e.AddCoercion(nat, int_, sp(10), natToInt))
	testenv.AssertNoError(t, e.AddCoercion(int_, real, sp(11), intToReal))

	// A direct nat->real coercion now conflicts with the composite path
	// nat->int->real (spec §4.C "coercion diamond").
	err := e.AddCoercion(nat, real, sp(12), natToReal)
	if err == nil {
		t.Fatalf("expected a coercion diamond error")
	}
}

func mustSort(t *testing.T, e *env.Environment, name string) ids.SortID {
	t.Helper()
	a := e.InternAtom(name)
	id, err := e.AddSort(a, sp(0), sp(0), 0)
	testenv.AssertNoError(t, err)
	return id
}

func mustCoeTerm(t *testing.T, e *env.Environment, name string, from, to ids.SortID) ids.TermID {
	t.Helper()
	atom := e.InternAtom(name)
	s := sp(0)
	id, err := e.AddTerm(atom, s, func() term.Term {
		return term.NewTerm(atom, s, s, 0,
			[]term.Arg{{Atom: e.InternAtom("x"), Type: term.Reg(from, 0)}},
			term.Reg(to, 0))
	})
	testenv.AssertNoError(t, err)
	return id
}
