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
)

func TestChildFrameShadowsParentBinding(t *testing.T) {
	parent := lisp.NewEnv()
	parent.Bind(1, lisp.IntFromInt64(1))
	child := parent.Child()
	child.Bind(1, lisp.IntFromInt64(2))

	v, ok := child.Lookup(1)
	if !ok || v.IntVal().Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("child binding should shadow parent")
	}
	pv, ok := parent.Lookup(1)
	if !ok || pv.IntVal().Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("parent's own binding should be unaffected by the child's shadow")
	}
}

func TestLookupFallsThroughToAncestors(t *testing.T) {
	parent := lisp.NewEnv()
	parent.Bind(1, lisp.IntFromInt64(7))
	child := parent.Child()

	v, ok := child.Lookup(1)
	if !ok || v.IntVal().Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("expected the child to inherit the parent's binding")
	}
}

func TestLookupUnboundAtomReturnsFalse(t *testing.T) {
	e := lisp.NewEnv()
	if _, ok := e.Lookup(99); ok {
		t.Fatalf("expected an unbound atom to report not-ok")
	}
}

func TestAssignMutatesAncestorFrameInPlace(t *testing.T) {
	parent := lisp.NewEnv()
	parent.Bind(1, lisp.IntFromInt64(1))
	child := parent.Child()

	if !child.Assign(1, lisp.IntFromInt64(5)) {
		t.Fatalf("Assign should find the binding in the parent frame")
	}
	v, _ := parent.Lookup(1)
	if v.IntVal().Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("Assign should mutate the frame that actually holds the binding")
	}
}

func TestAssignUnboundAtomReturnsFalse(t *testing.T) {
	e := lisp.NewEnv()
	if e.Assign(1, lisp.IntFromInt64(1)) {
		t.Fatalf("Assign on an unbound atom should report false, not silently create a binding")
	}
	if _, ok := e.Lookup(1); ok {
		t.Fatalf("a failed Assign must not create a new binding")
	}
}
