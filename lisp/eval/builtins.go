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

package eval

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
)

// registerBuiltins populates ev's builtin table (spec §4.F's enumeration).
// Each entry is registered through RegisterBuiltin, which also auto-binds
// the name into the global scope (spec.md Open Question #3).
func registerBuiltins(ev *Evaluator) {
	// Reporting.
	ev.RegisterBuiltin("display", lisp.Exact(1), biDisplay)
	ev.RegisterBuiltin("print", lisp.Exact(1), biDisplay)
	ev.RegisterBuiltin("error", lisp.Exact(1), biError)
	ev.RegisterBuiltin("report-at", lisp.Exact(3), biReportAt)
	ev.RegisterBuiltin("set-reporting!", lisp.Exact(1), biSetReporting)
	ev.RegisterBuiltin("check-proofs!", lisp.Exact(1), biSetCheckProofs)

	// Bigint arithmetic and ordering.
	ev.RegisterBuiltin("+", lisp.AtLeastN(0), biAdd)
	ev.RegisterBuiltin("*", lisp.AtLeastN(0), biMul)
	ev.RegisterBuiltin("-", lisp.AtLeastN(1), biSub)
	ev.RegisterBuiltin("//", lisp.Exact(2), biIntDiv)
	ev.RegisterBuiltin("%", lisp.Exact(2), biMod)
	ev.RegisterBuiltin("<", lisp.AtLeastN(2), biLt)
	ev.RegisterBuiltin("<=", lisp.AtLeastN(2), biLe)
	ev.RegisterBuiltin(">", lisp.AtLeastN(2), biGt)
	ev.RegisterBuiltin(">=", lisp.AtLeastN(2), biGe)
	ev.RegisterBuiltin("=", lisp.AtLeastN(2), biNumEq)

	// Lists.
	ev.RegisterBuiltin("cons", lisp.Exact(2), biCons)
	ev.RegisterBuiltin("head", lisp.Exact(1), biHead)
	ev.RegisterBuiltin("tail", lisp.Exact(1), biTail)
	ev.RegisterBuiltin("nth", lisp.Exact(2), biNth)
	ev.RegisterBuiltin("list", lisp.AtLeastN(0), biList)
	ev.RegisterBuiltin("len", lisp.Exact(1), biLen)
	ev.RegisterBuiltin("map", lisp.AtLeastN(1), biMap)
	ev.RegisterBuiltin("null?", lisp.Exact(1), biIsNull)

	// Equality and predicates.
	ev.RegisterBuiltin("equal?", lisp.Exact(2), biEqual)
	ev.RegisterBuiltin("not", lisp.Exact(1), biNot)
	ev.RegisterBuiltin("atom?", lisp.Exact(1), biIsAtom)
	ev.RegisterBuiltin("string?", lisp.Exact(1), biIsString)
	ev.RegisterBuiltin("number?", lisp.Exact(1), biIsNumber)
	ev.RegisterBuiltin("mvar?", lisp.Exact(1), biIsMVar)
	ev.RegisterBuiltin("goal?", lisp.Exact(1), biIsGoal)

	// Strings and atoms.
	ev.RegisterBuiltin("->string", lisp.Exact(1), biToString)
	ev.RegisterBuiltin("string-append", lisp.AtLeastN(0), biStringAppend)
	ev.RegisterBuiltin("->atom", lisp.Exact(1), biToAtom)
	ev.RegisterBuiltin("pp", lisp.Exact(1), biPrettyPrint)

	// Atom maps.
	ev.RegisterBuiltin("atom-map!", lisp.AtLeastN(0), biAtomMapNew)
	ev.RegisterBuiltin("lookup", lisp.Exact(2), biAtomMapLookup)
	ev.RegisterBuiltin("insert!", lisp.Exact(3), biAtomMapInsert)

	// Ref cells.
	ev.RegisterBuiltin("ref!", lisp.Exact(1), biRefNew)
	ev.RegisterBuiltin("get!", lisp.Exact(1), biRefGet)
	ev.RegisterBuiltin("set-ref!", lisp.Exact(2), biRefSet)

	// Spans.
	ev.RegisterBuiltin("copy-span", lisp.Exact(2), biCopySpan)
	ev.RegisterBuiltin("stack-span", lisp.Exact(0), biStackSpan)

	// Async and cancellation (Open Question #2: async is synchronous in
	// this core, so `async` simply invokes its argument and returns its
	// result directly instead of a future/promise handle).
	ev.RegisterBuiltin("async", lisp.AtLeastN(1), biAsync)
	ev.RegisterBuiltin("set-timeout!", lisp.Exact(1), biSetTimeout)

	// Goal/metavariable inspection.
	ev.RegisterBuiltin("goals", lisp.Exact(0), biGoals)
	ev.RegisterBuiltin("set-goals!", lisp.Exact(1), biSetGoals)
	ev.RegisterBuiltin("goal-type", lisp.Exact(1), biGoalType)

	// refine-extra-args hook (Open Question #1: the value is stored without
	// a callability check; refine treats a non-procedure value as no hook
	// installed, so the first proof application with leftover arguments
	// fails with ErrArity, and nothing fails at redefinition time).
	ev.RegisterBuiltin("set-refine-extra-args!", lisp.Exact(1), biSetRefineExtraArgs)

	// Goal-directed proof elaboration (spec §4.G), wired directly against
	// refine's unification/coercion primitives rather than through elab
	// (see refine.go's package-level doc comment).
	ev.RegisterBuiltin("refine", lisp.AtLeastN(1), biRefine)
	ev.RegisterBuiltin("refines", lisp.Exact(1), biRefines)
	ev.RegisterBuiltin("focus", lisp.Exact(1), biFocus)
	ev.RegisterBuiltin("to-expr", lisp.AtLeastN(1), biToExpr)
	ev.RegisterBuiltin("infer-type", lisp.Exact(1), biInferType)
	ev.RegisterBuiltin("have", lisp.Exact(3), biHave)
	ev.RegisterBuiltin("get-decl", lisp.Exact(1), biGetDecl)
	ev.RegisterBuiltin("add-decl!", lisp.AtLeastN(4), biAddDecl)
	ev.RegisterBuiltin("add-term!", lisp.Exact(3), biAddTerm)
	ev.RegisterBuiltin("add-thm!", lisp.Exact(4), biAddThm)
	ev.RegisterBuiltin("new-dummy!", lisp.Exact(2), biNewDummy)
}

func biDisplay(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ev.log.Info().Str("span", sp.String()).Msg(displayString(ev, args[0]))
	return lisp.Undef, nil
}

func biError(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	v, _ := args[0].Unwrap()
	msg := displayString(ev, v)
	return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "%s", msg)
}

func biReportAt(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	level, err := reportLevelArg(ev, args[0], sp)
	if err != nil {
		return lisp.Value{}, err
	}
	loc, _ := args[1].Unwrap()
	reportSpan := sp
	if loc.Kind() == lisp.KindString {
		reportSpan = span.File{Name: loc.StringVal()}
	}
	msg := displayString(ev, args[2])
	if level <= ev.reportLevel {
		ev.log.Info().Str("span", reportSpan.String()).Str("level", msg).Msg("report-at")
	}
	return lisp.Undef, nil
}

func reportLevelArg(ev *Evaluator, v lisp.Value, sp span.File) (mm0err.Level, *mm0err.Error) {
	uv, _ := v.Unwrap()
	if !uv.IsAtom() {
		return 0, mm0err.New(mm0err.ErrTypeMismatch, sp, "expected a reporting-level atom")
	}
	switch ev.Env.AtomName(uv.AtomID()) {
	case "error":
		return mm0err.LevelError, nil
	case "warn":
		return mm0err.LevelWarn, nil
	default:
		return mm0err.LevelInfo, nil
	}
}

func biSetReporting(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if uv.Kind() != lisp.KindBool {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "set-reporting! expects a bool")
	}
	if uv.BoolVal() {
		ev.SetReportLevel(mm0err.LevelInfo)
	} else {
		ev.SetReportLevel(mm0err.LevelError)
	}
	return lisp.Undef, nil
}

func biSetCheckProofs(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if uv.Kind() != lisp.KindBool {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "check-proofs! expects a bool")
	}
	ev.SetCheckProofs(uv.BoolVal())
	return lisp.Undef, nil
}

func bigArgs(args []lisp.Value, sp span.File) ([]*big.Int, *mm0err.Error) {
	out := make([]*big.Int, len(args))
	for i, a := range args {
		uv, _ := a.Unwrap()
		if uv.Kind() != lisp.KindInt {
			return nil, mm0err.New(mm0err.ErrTypeMismatch, sp, "expected an integer argument")
		}
		out[i] = uv.IntVal()
	}
	return out, nil
}

func biAdd(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ns, err := bigArgs(args, sp)
	if err != nil {
		return lisp.Value{}, err
	}
	sum := big.NewInt(0)
	for _, n := range ns {
		sum.Add(sum, n)
	}
	return lisp.Int(sum), nil
}

func biMul(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ns, err := bigArgs(args, sp)
	if err != nil {
		return lisp.Value{}, err
	}
	prod := big.NewInt(1)
	for _, n := range ns {
		prod.Mul(prod, n)
	}
	return lisp.Int(prod), nil
}

func biSub(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ns, err := bigArgs(args, sp)
	if err != nil {
		return lisp.Value{}, err
	}
	if len(ns) == 1 {
		return lisp.Int(new(big.Int).Neg(ns[0])), nil
	}
	res := new(big.Int).Set(ns[0])
	for _, n := range ns[1:] {
		res.Sub(res, n)
	}
	return lisp.Int(res), nil
}

func biIntDiv(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ns, err := bigArgs(args, sp)
	if err != nil {
		return lisp.Value{}, err
	}
	if ns[1].Sign() == 0 {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "division by zero")
	}
	q := new(big.Int)
	q.Quo(ns[0], ns[1])
	return lisp.Int(q), nil
}

func biMod(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ns, err := bigArgs(args, sp)
	if err != nil {
		return lisp.Value{}, err
	}
	if ns[1].Sign() == 0 {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "modulo by zero")
	}
	m := new(big.Int)
	m.Rem(ns[0], ns[1])
	return lisp.Int(m), nil
}

func biChainCmp(args []lisp.Value, sp span.File, ok func(cmp int) bool) (lisp.Value, *mm0err.Error) {
	ns, err := bigArgs(args, sp)
	if err != nil {
		return lisp.Value{}, err
	}
	for i := 1; i < len(ns); i++ {
		if !ok(ns[i-1].Cmp(ns[i])) {
			return lisp.Bool(false), nil
		}
	}
	return lisp.Bool(true), nil
}

func biLt(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return biChainCmp(args, sp, func(c int) bool { return c < 0 })
}
func biLe(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return biChainCmp(args, sp, func(c int) bool { return c <= 0 })
}
func biGt(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return biChainCmp(args, sp, func(c int) bool { return c > 0 })
}
func biGe(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return biChainCmp(args, sp, func(c int) bool { return c >= 0 })
}
func biNumEq(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return biChainCmp(args, sp, func(c int) bool { return c == 0 })
}

func biCons(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	head, tail := args[0], args[1]
	tu, _ := tail.Unwrap()
	switch tu.Kind() {
	case lisp.KindList:
		items := append([]lisp.Value{head}, tu.ListVal()...)
		return lisp.List(items...), nil
	case lisp.KindDottedList:
		items := append([]lisp.Value{head}, tu.ListVal()...)
		return lisp.DottedList(items, tu.Tail()), nil
	default:
		return lisp.DottedList([]lisp.Value{head}, tail), nil
	}
}

func biHead(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if (!uv.IsList() && uv.Kind() != lisp.KindDottedList) || len(uv.ListVal()) == 0 {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "head expects a non-empty list")
	}
	return uv.ListVal()[0], nil
}

func biTail(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if (!uv.IsList() && uv.Kind() != lisp.KindDottedList) || len(uv.ListVal()) == 0 {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "tail expects a non-empty list")
	}
	rest := uv.ListVal()[1:]
	if uv.Kind() == lisp.KindDottedList {
		if len(rest) == 0 {
			return uv.Tail(), nil
		}
		return lisp.DottedList(rest, uv.Tail()), nil
	}
	return lisp.List(rest...), nil
}

func biNth(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	idx, _ := args[0].Unwrap()
	if idx.Kind() != lisp.KindInt {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "nth expects an integer index")
	}
	lv, _ := args[1].Unwrap()
	if !lv.IsList() {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "nth expects a list")
	}
	i := int(idx.IntVal().Int64())
	if i < 0 || i >= len(lv.ListVal()) {
		return lisp.Undef, nil
	}
	return lv.ListVal()[i], nil
}

func biList(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return lisp.List(args...), nil
}

func biLen(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if !uv.IsList() {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "len expects a list")
	}
	return lisp.IntFromInt64(int64(len(uv.ListVal()))), nil
}

// biMap applies its first argument (a procedure) pointwise across one or
// more equal-length lists, recursing back through Apply rather than the
// trampoline since this is a leaf builtin call (spec §4.F "map").
func biMap(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	proc := args[0]
	lists := args[1:]
	if len(lists) == 0 {
		return lisp.List(), nil
	}
	n := -1
	unwrapped := make([][]lisp.Value, len(lists))
	for i, l := range lists {
		uv, _ := l.Unwrap()
		if !uv.IsList() {
			return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "map expects list arguments")
		}
		unwrapped[i] = uv.ListVal()
		if n == -1 || len(uv.ListVal()) < n {
			n = len(uv.ListVal())
		}
	}
	ev.pushFrame(StateMapProc, sp)
	defer ev.popFrame()
	out := make([]lisp.Value, n)
	for i := 0; i < n; i++ {
		callArgs := make([]lisp.Value, len(unwrapped))
		for j := range unwrapped {
			callArgs[j] = unwrapped[j][i]
		}
		v, err := ev.Apply(proc, callArgs, sp)
		if err != nil {
			return lisp.Value{}, err
		}
		out[i] = v
	}
	return lisp.List(out...), nil
}

func biIsNull(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	return lisp.Bool(uv.IsNil()), nil
}

func biEqual(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return lisp.Bool(literalEqual(args[0], args[1])), nil
}

func biNot(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return lisp.Bool(!truthy(args[0])), nil
}

func biIsAtom(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	return lisp.Bool(uv.IsAtom()), nil
}

func biIsString(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	return lisp.Bool(uv.Kind() == lisp.KindString), nil
}

func biIsNumber(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	return lisp.Bool(uv.Kind() == lisp.KindInt), nil
}

func biIsMVar(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	return lisp.Bool(uv.Kind() == lisp.KindMVar), nil
}

func biIsGoal(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	return lisp.Bool(uv.Kind() == lisp.KindGoal), nil
}

// displayString renders v for `display`/`error`/`report-at`; `->string`
// and `pp` (biPrettyPrint) use this same rendering.
func displayString(ev *Evaluator, v lisp.Value) string {
	uv, _ := v.Unwrap()
	switch uv.Kind() {
	case lisp.KindString:
		return uv.StringVal()
	case lisp.KindAtom:
		return ev.Env.AtomName(uv.AtomID())
	case lisp.KindInt:
		return uv.IntVal().String()
	case lisp.KindBool:
		if uv.BoolVal() {
			return "#t"
		}
		return "#f"
	case lisp.KindUndef:
		return "#undef"
	case lisp.KindList, lisp.KindDottedList:
		var b strings.Builder
		b.WriteByte('(')
		for i, it := range uv.ListVal() {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(displayString(ev, it))
		}
		if uv.Kind() == lisp.KindDottedList {
			b.WriteString(" . ")
			b.WriteString(displayString(ev, uv.Tail()))
		}
		b.WriteByte(')')
		return b.String()
	default:
		return fmt.Sprintf("#<%v>", uv.Kind())
	}
}

func biToString(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return lisp.String(displayString(ev, args[0])), nil
}

func biStringAppend(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	var b strings.Builder
	for _, a := range args {
		uv, _ := a.Unwrap()
		if uv.Kind() != lisp.KindString {
			return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "string-append expects string arguments")
		}
		b.WriteString(uv.StringVal())
	}
	return lisp.String(b.String()), nil
}

func biToAtom(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if uv.Kind() != lisp.KindString {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "->atom expects a string")
	}
	return lisp.Atom(ev.Env.InternAtom(uv.StringVal())), nil
}

func biPrettyPrint(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return lisp.String(displayString(ev, args[0])), nil
}

func biAtomMapNew(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	m := lisp.NewAtomMap()
	for i := 0; i+1 < len(args); i += 2 {
		k, _ := args[i].Unwrap()
		if !k.IsAtom() {
			return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "atom-map! expects atom keys")
		}
		m.Set(k.AtomID(), args[i+1])
	}
	return m.Value(), nil
}

func biAtomMapLookup(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	mv, _ := args[0].Unwrap()
	if mv.Kind() != lisp.KindAtomMap {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "lookup expects an atom-map")
	}
	k, _ := args[1].Unwrap()
	if !k.IsAtom() {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "lookup expects an atom key")
	}
	if v, ok := mv.AtomMapVal().Get(k.AtomID()); ok {
		return v, nil
	}
	return lisp.Undef, nil
}

func biAtomMapInsert(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	mv, _ := args[0].Unwrap()
	if mv.Kind() != lisp.KindAtomMap {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "insert! expects an atom-map")
	}
	k, _ := args[1].Unwrap()
	if !k.IsAtom() {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "insert! expects an atom key")
	}
	if args[2].IsUndef() {
		mv.AtomMapVal().Delete(k.AtomID())
	} else {
		mv.AtomMapVal().Set(k.AtomID(), args[2])
	}
	return lisp.Undef, nil
}

func biRefNew(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return lisp.NewRef(args[0]), nil
}

func biRefGet(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if uv.Kind() != lisp.KindRef {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "get! expects a ref cell")
	}
	return uv.RefGet(), nil
}

func biRefSet(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if uv.Kind() != lisp.KindRef {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "set-ref! expects a ref cell")
	}
	uv.RefSet(args[1])
	return lisp.Undef, nil
}

func biCopySpan(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	_, srcSp := args[0].Unwrap()
	return lisp.Annotated(srcSp, args[1]), nil
}

func biStackSpan(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return lisp.Annotated(sp, lisp.Undef), nil
}

// biAsync invokes its procedure argument immediately and returns its
// result directly (Open Question #2: no deferred scheduling).
func biAsync(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	return ev.Apply(args[0], args[1:], sp)
}

func biSetTimeout(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if uv.Kind() != lisp.KindInt {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "set-timeout! expects a millisecond count")
	}
	ms := uv.IntVal().Int64()
	if ms <= 0 {
		ev.deadline = time.Time{}
	} else {
		ev.deadline = time.Now().Add(time.Duration(ms) * time.Millisecond)
	}
	return lisp.Undef, nil
}

func biGoals(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	gs := ev.Lctx.Goals()
	out := make([]lisp.Value, len(gs))
	for i, g := range gs {
		out[i] = g.Value()
	}
	return lisp.List(out...), nil
}

func biSetGoals(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if !uv.IsList() {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "set-goals! expects a list of goals")
	}
	gs := make([]*lisp.Goal, 0, len(uv.ListVal()))
	for _, it := range uv.ListVal() {
		itv, _ := it.Unwrap()
		if itv.Kind() != lisp.KindGoal {
			return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "set-goals! expects goal values")
		}
		gs = append(gs, itv.GoalVal())
	}
	ev.Lctx.SetGoals(gs)
	return lisp.Undef, nil
}

func biGoalType(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	uv, _ := args[0].Unwrap()
	if uv.Kind() != lisp.KindGoal {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, sp, "goal-type expects a goal")
	}
	return uv.GoalVal().Stmt, nil
}

func biSetRefineExtraArgs(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	ev.refineExtraArgs = args[0]
	return lisp.Undef, nil
}
