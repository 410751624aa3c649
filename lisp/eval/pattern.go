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
	"math/big"

	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
)

// PatternKind discriminates Pattern's variants (spec §4.F "match/Pattern
// states").
type PatternKind uint8

const (
	PatWildcard PatternKind = iota
	PatBind
	PatLiteral
	PatList
	PatAnd
	PatOr
	PatTest
)

// Pattern is one compiled match arm pattern.
type Pattern struct {
	kind PatternKind

	atom ids.AtomID  // PatBind
	lit  lisp.Value  // PatLiteral

	items []Pattern // PatList, PatAnd, PatOr
	tail  *Pattern  // PatList: pattern for the dotted tail, nil for a proper list

	test *Ir // PatTest: an expression evaluating to the predicate, which is
	// applied to the scrutinee; on success the scrutinee is also bound to
	// the atom named by testBind
	testBind ids.AtomID
}

func Wildcard() Pattern                  { return Pattern{kind: PatWildcard} }
func Bind(a ids.AtomID) Pattern          { return Pattern{kind: PatBind, atom: a} }
func Literal(v lisp.Value) Pattern       { return Pattern{kind: PatLiteral, lit: v} }
func ListPat(items []Pattern, tail *Pattern) Pattern {
	return Pattern{kind: PatList, items: items, tail: tail}
}
func AndPat(ps []Pattern) Pattern { return Pattern{kind: PatAnd, items: ps} }
func OrPat(ps []Pattern) Pattern  { return Pattern{kind: PatOr, items: ps} }
func TestPat(bind ids.AtomID, pred *Ir) Pattern {
	return Pattern{kind: PatTest, testBind: bind, test: pred}
}

// bindings accumulates pattern-variable assignments discovered while
// matching; it is applied to the match env only once the whole pattern
// succeeds, so a failed alternative in an Or pattern never leaks partial
// bindings (spec §4.F "binding is transactional per pattern").
type bindings struct {
	atoms []ids.AtomID
	vals  []lisp.Value
}

func (b *bindings) bind(a ids.AtomID, v lisp.Value) {
	b.atoms = append(b.atoms, a)
	b.vals = append(b.vals, v)
}

func (b *bindings) apply(env *lisp.Env) {
	for i, a := range b.atoms {
		env.Bind(a, b.vals[i])
	}
}

// matchPattern reports whether p matches v against lexical scope env,
// accumulating any bindings it introduces. ev is needed only for PatTest,
// which must run its predicate through the same evaluator (predicates are
// arbitrary tactic-script expressions, spec §4.F "a test pattern guards
// the match with an arbitrary predicate call").
func matchPattern(ev *Evaluator, p Pattern, v lisp.Value, env *lisp.Env, b *bindings) (bool, *mm0err.Error) {
	v, _ = v.Unwrap()
	switch p.kind {
	case PatWildcard:
		return true, nil
	case PatBind:
		b.bind(p.atom, v)
		return true, nil
	case PatLiteral:
		return literalEqual(p.lit, v), nil
	case PatList:
		if !v.IsList() && v.Kind() != lisp.KindDottedList {
			return false, nil
		}
		items := v.ListVal()
		if p.tail == nil {
			if v.Kind() != lisp.KindList || len(items) != len(p.items) {
				return false, nil
			}
		} else if len(items) < len(p.items) {
			return false, nil
		}
		for i, ip := range p.items {
			ok, eerr := matchPattern(ev, ip, items[i], env, b)
			if eerr != nil || !ok {
				return false, eerr
			}
		}
		if p.tail != nil {
			var rest lisp.Value
			if v.Kind() == lisp.KindDottedList && len(items) == len(p.items) {
				rest = v.Tail()
			} else {
				rest = lisp.List(items[len(p.items):]...)
			}
			return matchPattern(ev, *p.tail, rest, env, b)
		}
		return true, nil
	case PatAnd:
		for _, sub := range p.items {
			ok, eerr := matchPattern(ev, sub, v, env, b)
			if eerr != nil || !ok {
				return false, eerr
			}
		}
		return true, nil
	case PatOr:
		for _, sub := range p.items {
			trial := &bindings{}
			ok, eerr := matchPattern(ev, sub, v, env, trial)
			if eerr != nil {
				return false, eerr
			}
			if ok {
				b.atoms = append(b.atoms, trial.atoms...)
				b.vals = append(b.vals, trial.vals...)
				return true, nil
			}
		}
		return false, nil
	case PatTest:
		pred, eerr := ev.eval(p.test, env)
		if eerr != nil {
			return false, eerr
		}
		res, eerr := ev.Apply(pred, []lisp.Value{v}, p.test.span)
		if eerr != nil {
			return false, eerr
		}
		if res.Kind() == lisp.KindBool && !res.BoolVal() {
			return false, nil
		}
		b.bind(p.testBind, v)
		return true, nil
	}
	return false, nil
}

func literalEqual(a, b lisp.Value) bool {
	a, _ = a.Unwrap()
	b, _ = b.Unwrap()
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case lisp.KindAtom:
		return a.AtomID() == b.AtomID()
	case lisp.KindBool:
		return a.BoolVal() == b.BoolVal()
	case lisp.KindString:
		return a.StringVal() == b.StringVal()
	case lisp.KindInt:
		return bigEqual(a.IntVal(), b.IntVal())
	case lisp.KindList:
		al, bl := a.ListVal(), b.ListVal()
		if len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !literalEqual(al[i], bl[i]) {
				return false
			}
		}
		return true
	case lisp.KindUndef:
		return true
	}
	return false
}

func bigEqual(a, b *big.Int) bool { return a.Cmp(b) == 0 }
