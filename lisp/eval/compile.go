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
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
)

// compile lowers a raw lisp.Value (a parsed tactic-script s-expression)
// into an Ir tree the trampoline in eval can run (spec §4.F "Eval(ir) —
// reduce an intermediate representation node"). The reserved keywords
// (if, fn, def, set!, begin, and, or, match, quote) are treated as
// syntax rather than ordinary bindable names, a simplification this core
// takes over the full hygiene a production Scheme needs.
func (ev *Evaluator) compile(v lisp.Value) (*Ir, *mm0err.Error) {
	uv, sp := v.Unwrap()

	switch {
	case uv.IsAtom():
		return varIr(sp, uv.AtomID()), nil

	case uv.IsList() && len(uv.ListVal()) > 0 && uv.ListVal()[0].IsAtom():
		items := uv.ListVal()
		head := items[0].AtomID()
		rest := items[1:]

		switch head {
		case ev.forms.quote:
			if len(rest) != 1 {
				return nil, mm0err.New(mm0err.ErrArgCount, sp, "quote expects 1 argument")
			}
			return constIr(sp, rest[0]), nil

		case ev.forms.if_:
			if len(rest) != 2 && len(rest) != 3 {
				return nil, mm0err.New(mm0err.ErrArgCount, sp, "if expects 2 or 3 arguments")
			}
			cond, err := ev.compile(rest[0])
			if err != nil {
				return nil, err
			}
			then, err := ev.compile(rest[1])
			if err != nil {
				return nil, err
			}
			var els *Ir
			if len(rest) == 3 {
				els, err = ev.compile(rest[2])
				if err != nil {
					return nil, err
				}
			}
			return ifIr(sp, cond, then, els), nil

		case ev.forms.fn:
			if len(rest) < 1 {
				return nil, mm0err.New(mm0err.ErrArgCount, sp, "fn expects a parameter list")
			}
			return lambdaIr(sp, rest[0], ev.wrapBegin(rest[1:])), nil

		case ev.forms.define:
			if len(rest) != 2 || !rest[0].IsAtom() {
				return nil, mm0err.New(mm0err.ErrBadDeclArgs, sp, "def expects (def name value)")
			}
			val, err := ev.compile(rest[1])
			if err != nil {
				return nil, err
			}
			return defIr(sp, rest[0].AtomID(), val), nil

		case ev.forms.setBang:
			if len(rest) != 2 || !rest[0].IsAtom() {
				return nil, mm0err.New(mm0err.ErrBadDeclArgs, sp, "set! expects (set! name value)")
			}
			val, err := ev.compile(rest[1])
			if err != nil {
				return nil, err
			}
			return setIr(sp, rest[0].AtomID(), val), nil

		case ev.forms.begin:
			return ev.compileSeq(sp, rest)

		case ev.forms.and:
			args, err := ev.compileEach(rest)
			if err != nil {
				return nil, err
			}
			return andIr(sp, args), nil

		case ev.forms.or:
			args, err := ev.compileEach(rest)
			if err != nil {
				return nil, err
			}
			return orIr(sp, args), nil

		case ev.forms.match:
			if len(rest) < 1 {
				return nil, mm0err.New(mm0err.ErrArgCount, sp, "match expects a scrutinee")
			}
			scrutinee, err := ev.compile(rest[0])
			if err != nil {
				return nil, err
			}
			branches := make([]MatchBranch, 0, len(rest)-1)
			for _, armV := range rest[1:] {
				arm := armV.ListVal()
				if len(arm) < 1 {
					return nil, mm0err.New(mm0err.ErrBadDeclArgs, sp, "match arm expects a pattern")
				}
				pat, err := ev.compilePattern(arm[0])
				if err != nil {
					return nil, err
				}
				body, err := ev.compileSeq(sp, arm[1:])
				if err != nil {
					return nil, err
				}
				branches = append(branches, MatchBranch{Pattern: pat, Body: body})
			}
			return matchIr(sp, scrutinee, branches), nil

		default:
			headIr, err := ev.compile(items[0])
			if err != nil {
				return nil, err
			}
			args, err := ev.compileEach(rest)
			if err != nil {
				return nil, err
			}
			return appIr(sp, headIr, args), nil
		}

	case uv.IsList() && len(uv.ListVal()) > 0:
		headIr, err := ev.compile(uv.ListVal()[0])
		if err != nil {
			return nil, err
		}
		args, err := ev.compileEach(uv.ListVal()[1:])
		if err != nil {
			return nil, err
		}
		return appIr(sp, headIr, args), nil

	default:
		return constIr(sp, uv), nil
	}
}

func (ev *Evaluator) compileEach(vs []lisp.Value) ([]*Ir, *mm0err.Error) {
	out := make([]*Ir, len(vs))
	for i, v := range vs {
		ir, err := ev.compile(v)
		if err != nil {
			return nil, err
		}
		out[i] = ir
	}
	return out, nil
}

func (ev *Evaluator) compileSeq(sp span.File, vs []lisp.Value) (*Ir, *mm0err.Error) {
	args, err := ev.compileEach(vs)
	if err != nil {
		return nil, err
	}
	return beginIr(sp, args), nil
}

// wrapBegin packages a lambda's body forms back into a raw `(begin ...)`
// lisp.Value so it can be recompiled on each call (see Ir.rawBody).
func (ev *Evaluator) wrapBegin(forms []lisp.Value) lisp.Value {
	if len(forms) == 1 {
		return forms[0]
	}
	items := make([]lisp.Value, 0, len(forms)+1)
	items = append(items, lisp.Atom(ev.forms.begin))
	items = append(items, forms...)
	return lisp.List(items...)
}

// compilePattern lowers one match arm's pattern (spec §4.F "Pattern" —
// wildcard, binding, literal, list/dotted-list destructuring, and a
// guarded test form `(? pred pat)`).
func (ev *Evaluator) compilePattern(v lisp.Value) (Pattern, *mm0err.Error) {
	uv, _ := v.Unwrap()
	switch {
	case uv.IsAtom():
		if uv.AtomID() == ev.forms.underscore {
			return Wildcard(), nil
		}
		return Bind(uv.AtomID()), nil

	case uv.IsList() && len(uv.ListVal()) > 0 && uv.ListVal()[0].IsAtom() && uv.ListVal()[0].AtomID() == ev.forms.quote:
		items := uv.ListVal()
		if len(items) != 2 {
			return Pattern{}, mm0err.New(mm0err.ErrArgCount, span.Zero, "quote pattern expects 1 argument")
		}
		return Literal(items[1]), nil

	case uv.IsList() && len(uv.ListVal()) > 0 && uv.ListVal()[0].IsAtom() && uv.ListVal()[0].AtomID() == ev.forms.question:
		items := uv.ListVal()
		if len(items) < 2 {
			return Pattern{}, mm0err.New(mm0err.ErrArgCount, span.Zero, "? pattern expects a predicate expression")
		}
		pred, err := ev.compile(items[1])
		if err != nil {
			return Pattern{}, err
		}
		pats := []Pattern{TestPat(ev.Env.InternAtom(" test"), pred)}
		for _, it := range items[2:] {
			p, err := ev.compilePattern(it)
			if err != nil {
				return Pattern{}, err
			}
			pats = append(pats, p)
		}
		if len(pats) == 1 {
			return pats[0], nil
		}
		return AndPat(pats), nil

	case uv.IsList():
		items := uv.ListVal()
		pats := make([]Pattern, len(items))
		for i, it := range items {
			p, err := ev.compilePattern(it)
			if err != nil {
				return Pattern{}, err
			}
			pats[i] = p
		}
		return ListPat(pats, nil), nil

	case uv.Kind() == lisp.KindDottedList:
		items := uv.ListVal()
		pats := make([]Pattern, len(items))
		for i, it := range items {
			p, err := ev.compilePattern(it)
			if err != nil {
				return Pattern{}, err
			}
			pats[i] = p
		}
		tail, err := ev.compilePattern(uv.Tail())
		if err != nil {
			return Pattern{}, err
		}
		return ListPat(pats, &tail), nil

	default:
		return Literal(uv), nil
	}
}
