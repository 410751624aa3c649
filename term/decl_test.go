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

package term_test

import (
	"testing"

	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

func sp(n int) span.File { return span.File{Name: "t.mm1", Span: span.Span{Start: n, End: n + 1}} }

func TestNewTermStartsWithoutAVal(t *testing.T) {
	tm := term.NewTerm(1, sp(0), sp(0), 0, nil, term.Reg(0, 0))
	if tm.HasVal() {
		t.Fatalf("a freshly built term constructor should have no Val yet")
	}
	if tm.Val() != nil {
		t.Fatalf("Val() should be nil before SetVal/SetForwardDeclared")
	}
}

func TestSetForwardDeclaredMarksDefWithoutValue(t *testing.T) {
	tm := term.NewTerm(1, sp(0), sp(0), 0, nil, term.Reg(0, 0))
	tm.SetForwardDeclared()
	if !tm.IsDef() {
		t.Fatalf("SetForwardDeclared should mark this as a def")
	}
	if tm.Val() != nil {
		t.Fatalf("a forward-declared def has no value yet")
	}
}

func TestSetValRecordsBody(t *testing.T) {
	tm := term.NewTerm(1, sp(0), sp(0), 0, nil, term.Reg(0, 0))
	body := term.Expr{Head: term.Dummy(9, 0)}
	tm.SetVal(body)
	if !tm.IsDef() {
		t.Fatalf("SetVal should mark this as a def")
	}
	if tm.Val() == nil || !tm.Val().Head.IsDummy() {
		t.Fatalf("Val() should return the recorded body")
	}
}

func TestThmHasProofLifecycle(t *testing.T) {
	th := term.NewThm(1, sp(0), sp(0), 0, nil, nil, nil, term.Ref(0))
	if th.HasProof() {
		t.Fatalf("a freshly declared theorem should have no proof")
	}
	th.SetProof(term.Proof{Head: term.PRefl()})
	if !th.HasProof() {
		t.Fatalf("SetProof should mark the theorem proved")
	}
	if th.Proof() == nil || th.Proof().Head.Kind() != term.ProofRefl {
		t.Fatalf("Proof() should return the recorded proof")
	}
}

func TestDeclKeyDiscriminatesTermAndThm(t *testing.T) {
	tk := term.TermKey(5)
	hk := term.ThmKey(7)

	if !tk.IsTerm() || tk.IsThm() {
		t.Fatalf("TermKey should report IsTerm")
	}
	if !hk.IsThm() || hk.IsTerm() {
		t.Fatalf("ThmKey should report IsThm")
	}
	if tk.TermID() != 5 {
		t.Fatalf("expected TermID 5, got %d", tk.TermID())
	}
	if hk.ThmID() != 7 {
		t.Fatalf("expected ThmID 7, got %d", hk.ThmID())
	}
}

func TestStmtTraceVariantsAreMutuallyExclusive(t *testing.T) {
	cases := []term.StmtTrace{term.TraceSort(1), term.TraceDecl(2), term.TraceGlobal(3)}
	flags := make([][3]bool, len(cases))
	for i, c := range cases {
		flags[i] = [3]bool{c.IsSort(), c.IsDecl(), c.IsGlobal()}
	}
	for i, f := range flags {
		trueCount := 0
		for _, b := range f {
			if b {
				trueCount++
			}
		}
		if trueCount != 1 {
			t.Fatalf("case %d: expected exactly one of IsSort/IsDecl/IsGlobal, got %v", i, f)
		}
	}
	if cases[0].Atom() != 1 || cases[1].Atom() != 2 || cases[2].Atom() != 3 {
		t.Fatalf("Atom() should round-trip the atom passed to the constructor")
	}
}
