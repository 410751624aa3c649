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

	"github.com/madlambda/spells/assert"

	"github.com/monocodus-demonstrations/mm0/term"
)

func TestExprKeyDistinguishesVariants(t *testing.T) {
	ref := term.Ref(3)
	dummy := term.Dummy(7, 2)
	app := term.App(5, []term.ExprNode{term.Ref(0), term.Ref(1)})

	keys := map[string]term.ExprNode{
		term.ExprKey(ref):   ref,
		term.ExprKey(dummy): dummy,
		term.ExprKey(app):   app,
	}
	assert.EqualInts(t, 3, len(keys), "each variant should produce a distinct key")
}

func TestExprKeyIsStableAcrossEqualStructure(t *testing.T) {
	a := term.App(5, []term.ExprNode{term.Ref(0), term.Dummy(9, 1)})
	b := term.App(5, []term.ExprNode{term.Ref(0), term.Dummy(9, 1)})
	assert.EqualStrings(t, term.ExprKey(a), term.ExprKey(b), "structurally identical nodes must hash identically")
}

func TestExprKeyDistinguishesDifferentArgs(t *testing.T) {
	a := term.App(5, []term.ExprNode{term.Ref(0)})
	b := term.App(5, []term.ExprNode{term.Ref(1)})
	if term.ExprKey(a) == term.ExprKey(b) {
		t.Fatalf("nodes with different ref args must not collide")
	}
}

func TestProofKeyDistinguishesConversionForms(t *testing.T) {
	conv := term.PConv(term.PRef(0), term.PRef(1), term.PRef(2))
	sym := term.PSym(term.PRef(0))
	refl := term.PRefl()

	keys := []string{term.ProofKey(conv), term.ProofKey(sym), term.ProofKey(refl)}
	seen := map[string]bool{}
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate proof key %q among distinct conversion forms", k)
		}
		seen[k] = true
	}
}

func TestSubstRefsReplacesOnlyImmediateRefs(t *testing.T) {
	built := []term.ProofNode{term.PDummy(1, 0), term.PRefl()}

	// t(ref(0), ref(1)) -> t(built[0], built[1])
	n := term.PTerm(4, []term.ProofNode{term.PRef(0), term.PRef(1)})
	got := term.SubstRefs(n, built)

	if got.Kind() != term.ProofTerm {
		t.Fatalf("expected a ProofTerm, got kind %v", got.Kind())
	}
	assert.EqualStrings(t, term.ProofKey(built[0]), term.ProofKey(got.Args()[0]), "first ref should resolve to built[0]")
	assert.EqualStrings(t, term.ProofKey(built[1]), term.ProofKey(got.Args()[1]), "second ref should resolve to built[1]")
}

func TestSubstRefsLeavesLeafKindsUnchanged(t *testing.T) {
	built := []term.ProofNode{term.PRefl()}
	dummy := term.PDummy(3, 1)
	got := term.SubstRefs(dummy, built)
	assert.EqualStrings(t, term.ProofKey(dummy), term.ProofKey(got), "a Dummy node has no Ref children to substitute")
}

func TestExprToProofNodeLiftsApplicationRecursively(t *testing.T) {
	e := term.App(2, []term.ExprNode{term.Ref(0), term.Dummy(5, 1)})
	p := term.ExprToProofNode(e)
	if p.Kind() != term.ProofTerm {
		t.Fatalf("expected ProofTerm, got %v", p.Kind())
	}
	assert.EqualInts(t, 2, len(p.Args()), "lifted application should keep arity")
	if p.Args()[0].Kind() != term.ProofRef || p.Args()[1].Kind() != term.ProofDummy {
		t.Fatalf("lifted children should preserve their original variant")
	}
}

func TestDerefFollowsRefChainThroughHeap(t *testing.T) {
	heap := []term.ProofNode{term.PRef(1), term.PRefl()}
	got := term.Deref(term.PRef(0), heap)
	if got.Kind() != term.ProofRefl {
		t.Fatalf("expected Deref to chase through heap[0]->heap[1], got kind %v", got.Kind())
	}
}
