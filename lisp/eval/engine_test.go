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

package eval_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/monocodus-demonstrations/mm0/env"
	"github.com/monocodus-demonstrations/mm0/internal/testenv"
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/lisp/eval"
	"github.com/monocodus-demonstrations/mm0/mm0err"
)

func newEvaluator() (*eval.Evaluator, *env.Environment) {
	e := env.New(zerolog.Nop())
	ev := eval.New(e, lctx.New(), zerolog.Nop(), context.Background(), time.Time{})
	return ev, e
}

func atom(e *env.Environment, name string) lisp.Value { return lisp.Atom(e.InternAtom(name)) }

func sym(e *env.Environment, names ...string) []lisp.Value {
	out := make([]lisp.Value, len(names))
	for i, n := range names {
		out[i] = atom(e, n)
	}
	return out
}

func TestEvalArithmeticBuiltin(t *testing.T) {
	ev, e := newEvaluator()
	// (+ 1 2 3)
	form := lisp.List(atom(e, "+"), lisp.IntFromInt64(1), lisp.IntFromInt64(2), lisp.IntFromInt64(3))
	v, err := ev.EvalTopLevel(form)
	testenv.AssertNoError(t, err)
	if v.Kind() != lisp.KindInt || v.IntVal().Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("expected 6, got %v", v)
	}
}

func TestEvalIfAndComparison(t *testing.T) {
	ev, e := newEvaluator()
	// (if (< 1 2) "yes" "no")
	form := lisp.List(atom(e, "if"),
		lisp.List(atom(e, "<"), lisp.IntFromInt64(1), lisp.IntFromInt64(2)),
		lisp.String("yes"), lisp.String("no"))
	v, err := ev.EvalTopLevel(form)
	testenv.AssertNoError(t, err)
	if v.Kind() != lisp.KindString || v.StringVal() != "yes" {
		t.Fatalf("expected %q, got %v", "yes", v)
	}
}

// TestTailRecursiveLoopDoesNotOverflow defines a tail-recursive summation
// loop and runs it for more iterations than DefaultMaxDepth, exercising
// the trampoline's tail-call Ret-frame reuse: a non-tail-optimized
// recursive implementation would exceed the recursion cap.
func TestTailRecursiveLoopDoesNotOverflow(t *testing.T) {
	ev, e := newEvaluator()

	// (def loop (fn (n acc) (if (= n 0) acc (loop (- n 1) (+ acc n)))))
	loopBody := lisp.List(atom(e, "if"),
		lisp.List(atom(e, "="), atom(e, "n"), lisp.IntFromInt64(0)),
		atom(e, "acc"),
		lisp.List(atom(e, "loop"),
			lisp.List(atom(e, "-"), atom(e, "n"), lisp.IntFromInt64(1)),
			lisp.List(atom(e, "+"), atom(e, "acc"), atom(e, "n"))))
	def := lisp.List(atom(e, "def"), atom(e, "loop"),
		lisp.List(atom(e, "fn"), lisp.List(sym(e, "n", "acc")...), loopBody))
	_, err := ev.EvalTopLevel(def)
	testenv.AssertNoError(t, err)

	// (loop 10000 0), well beyond DefaultMaxDepth if this recursed natively.
	call := lisp.List(atom(e, "loop"), lisp.IntFromInt64(10000), lisp.IntFromInt64(0))
	v, err := ev.EvalTopLevel(call)
	testenv.AssertNoError(t, err)

	want := big.NewInt(10000 * 10001 / 2)
	if v.Kind() != lisp.KindInt || v.IntVal().Cmp(want) != 0 {
		t.Fatalf("expected triangular sum %v, got %v", want, v)
	}
}

func TestMatchDestructuringAndWildcard(t *testing.T) {
	ev, e := newEvaluator()
	// (match (list 1 2) ((a b) (+ a b)) (_ -1))
	scrutinee := lisp.List(atom(e, "list"), lisp.IntFromInt64(1), lisp.IntFromInt64(2))
	arm1 := lisp.List(lisp.List(sym(e, "a", "b")...), lisp.List(atom(e, "+"), atom(e, "a"), atom(e, "b")))
	arm2 := lisp.List(atom(e, "_"), lisp.IntFromInt64(-1))
	form := lisp.List(atom(e, "match"), scrutinee, arm1, arm2)

	v, err := ev.EvalTopLevel(form)
	testenv.AssertNoError(t, err)
	if v.Kind() != lisp.KindInt || v.IntVal().Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("expected 3, got %v", v)
	}
}

func TestMatchFallsThroughToWildcardOnMismatch(t *testing.T) {
	ev, e := newEvaluator()
	// (match (list 1) ((a b) 'two) (_ 'other))
	scrutinee := lisp.List(atom(e, "list"), lisp.IntFromInt64(1))
	arm1 := lisp.List(lisp.List(sym(e, "a", "b")...), lisp.List(atom(e, "quote"), atom(e, "two")))
	arm2 := lisp.List(atom(e, "_"), lisp.List(atom(e, "quote"), atom(e, "other")))
	form := lisp.List(atom(e, "match"), scrutinee, arm1, arm2)

	v, err := ev.EvalTopLevel(form)
	testenv.AssertNoError(t, err)
	if v.Kind() != lisp.KindAtom || e.AtomName(v.AtomID()) != "other" {
		t.Fatalf("expected the wildcard arm to fire, got %v", v)
	}
}

func TestSetBangMutatesEnclosingBinding(t *testing.T) {
	ev, e := newEvaluator()
	// (begin (def x 1) (set! x 2) x)
	form := lisp.List(atom(e, "begin"),
		lisp.List(atom(e, "def"), atom(e, "x"), lisp.IntFromInt64(1)),
		lisp.List(atom(e, "set!"), atom(e, "x"), lisp.IntFromInt64(2)),
		atom(e, "x"))
	v, err := ev.EvalTopLevel(form)
	testenv.AssertNoError(t, err)
	if v.Kind() != lisp.KindInt || v.IntVal().Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("expected 2, got %v", v)
	}
}

func TestSetBangOnUnboundAtomErrors(t *testing.T) {
	ev, e := newEvaluator()
	form := lisp.List(atom(e, "set!"), atom(e, "nope"), lisp.IntFromInt64(1))
	_, err := ev.EvalTopLevel(form)
	testenv.AssertKind(t, err, mm0err.ErrUnknownAtom)
}

func TestRecursionDepthCapOnNonTailRecursion(t *testing.T) {
	ev, e := newEvaluator()
	// (def f (fn (n) (if (= n 0) 0 (+ 1 (f (- n 1)))))) — the (+ 1 ...)
	// wrapper makes the recursive call non-tail, so it must hit the depth
	// cap rather than looping forever via the trampoline.
	body := lisp.List(atom(e, "if"),
		lisp.List(atom(e, "="), atom(e, "n"), lisp.IntFromInt64(0)),
		lisp.IntFromInt64(0),
		lisp.List(atom(e, "+"), lisp.IntFromInt64(1),
			lisp.List(atom(e, "f"), lisp.List(atom(e, "-"), atom(e, "n"), lisp.IntFromInt64(1)))))
	def := lisp.List(atom(e, "def"), atom(e, "f"),
		lisp.List(atom(e, "fn"), lisp.List(sym(e, "n")...), body))
	_, err := ev.EvalTopLevel(def)
	testenv.AssertNoError(t, err)

	call := lisp.List(atom(e, "f"), lisp.IntFromInt64(eval.DefaultMaxDepth*2))
	_, err = ev.EvalTopLevel(call)
	testenv.AssertKind(t, err, mm0err.ErrStackOverflow)
}
