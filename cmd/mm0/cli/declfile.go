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

// declfile decodes a standalone HCL declarations file into an
// *env.Environment, independent of the tactic evaluator. cmd/mm0 has no
// lisp s-expression reader available to it (none exists anywhere in the
// lisp package; building one is a surface-syntax math parser, which
// spec.md's Non-goals exclude), so a CLI-only file format is used
// instead: `sort`/`term`/`axiom` blocks decoded with gohcl's struct-tag
// decoder, grounded on the same hashicorp/hcl/v2 stack the teacher's
// hcl.go parses `terramate.tsk.hcl` with, here via gohcl rather than
// hcl.BodySchema/Content since this format's shape is static (fixed Go
// structs) rather than the teacher's dynamically merged multi-file
// blocks.
//
// A declaration's statement is written as a flat list of names rather
// than a nested expression: `concl = ["imp", "a", "b"]` applies term
// `imp` to the two simple names `a` and `b`, each resolved either to a
// binder or to a zero-argument term, exactly as lowerExpr in
// lisp/eval/refine.go resolves a KindAtom. Nesting an application inside
// an argument position is not supported by this format; a file that
// needs one is a file for lisp/eval's `add-term!`/`add-thm!` builtins,
// not for this CLI. A theorem's proof is out of scope for the same
// reason lisp scripts are: there is nothing here to drive `refine`
// against, so this file format only ever produces axioms and forward
// term declarations, never a proved theorem.
package cli

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/monocodus-demonstrations/mm0/env"
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
	"github.com/monocodus-demonstrations/mm0/term"
)

type binderDecl struct {
	Name  string `hcl:"name"`
	Sort  string `hcl:"sort"`
	Bound bool   `hcl:"bound,optional"`
}

type exprDecl struct {
	Concl []string `hcl:"concl"`
}

type sortDecl struct {
	Name     string `hcl:"name,label"`
	Pure     bool   `hcl:"pure,optional"`
	Strict   bool   `hcl:"strict,optional"`
	Provable bool   `hcl:"provable,optional"`
	Free     bool   `hcl:"free,optional"`
}

type termDecl struct {
	Name     string       `hcl:"name,label"`
	Args     []binderDecl `hcl:"arg,block"`
	RetSort  string       `hcl:"ret_sort"`
	RetBound bool         `hcl:"ret_bound,optional"`
}

type axiomDecl struct {
	Name  string       `hcl:"name,label"`
	Args  []binderDecl `hcl:"arg,block"`
	Hyps  []exprDecl   `hcl:"hyp,block"`
	Concl []string     `hcl:"concl"`
}

type declFile struct {
	Sorts  []sortDecl  `hcl:"sort,block"`
	Terms  []termDecl  `hcl:"term,block"`
	Axioms []axiomDecl `hcl:"axiom,block"`
}

// elaborateFile parses and decodes src as a declarations file and
// declares everything it names into e, in file order, accumulating
// errors the same way elab's declaration pipeline does (spec §7 "errors
// are accumulated where they do not invalidate further checks").
func elaborateFile(e *env.Environment, src []byte, filename string) *mm0err.List {
	errs := &mm0err.List{}

	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		errs.Add(mm0err.Wrap(mm0err.ErrConfig, span.File{Name: filename}, diags))
		return errs
	}

	var decl declFile
	if diags := gohcl.DecodeBody(file.Body, nil, &decl); diags.HasErrors() {
		errs.Add(mm0err.Wrap(mm0err.ErrConfig, span.File{Name: filename}, diags))
		return errs
	}

	sp := span.File{Name: filename}

	for _, s := range decl.Sorts {
		atom := e.InternAtom(s.Name)
		var mods term.Modifier
		if s.Pure {
			mods |= term.ModPure
		}
		if s.Strict {
			mods |= term.ModStrict
		}
		if s.Provable {
			mods |= term.ModProvable
		}
		if s.Free {
			mods |= term.ModFree
		}
		if _, err := e.AddSort(atom, sp, sp, mods); err != nil {
			errs.Add(err)
		}
	}

	for _, t := range decl.Terms {
		atom := e.InternAtom(t.Name)
		args, err := lowerBinders(e, t.Args, sp)
		if err != nil {
			errs.Add(err)
			continue
		}
		retSort, ok := sortNamed(e, t.RetSort)
		if !ok {
			errs.Add(mm0err.New(mm0err.ErrUnknownAtom, sp, "term %q: unknown return sort %q", t.Name, t.RetSort))
			continue
		}
		retType := term.Reg(retSort, boundMaskUpTo(countBound(args)))
		if t.RetBound {
			retType = term.Bound(retSort)
		}
		if _, err := e.AddTerm(atom, sp, func() term.Term {
			return term.NewTerm(atom, sp, sp, 0, args, retType)
		}); err != nil {
			errs.Add(err)
		}
	}

	for _, a := range decl.Axioms {
		atom := e.InternAtom(a.Name)
		args, err := lowerBinders(e, a.Args, sp)
		if err != nil {
			errs.Add(err)
			continue
		}
		hyps := make([]term.ExprNode, len(a.Hyps))
		bad := false
		for i, h := range a.Hyps {
			n, herr := lowerApplication(e, args, h.Concl, sp)
			if herr != nil {
				errs.Add(herr)
				bad = true
				continue
			}
			hyps[i] = n
		}
		if bad {
			continue
		}
		ret, rerr := lowerApplication(e, args, a.Concl, sp)
		if rerr != nil {
			errs.Add(rerr)
			continue
		}
		if _, err := e.AddThm(atom, sp, func() term.Thm {
			return term.NewThm(atom, sp, sp, 0, args, nil, hyps, ret)
		}); err != nil {
			errs.Add(err)
		}
	}

	return errs
}

func sortNamed(e *env.Environment, name string) (ids.SortID, bool) {
	atom := e.InternAtom(name)
	data := e.AtomData(atom)
	if !data.HasSort() {
		return 0, false
	}
	return data.Sort(), true
}

func countBound(args []term.Arg) int {
	n := 0
	for _, a := range args {
		if a.Type.IsBound() {
			n++
		}
	}
	return n
}

func boundMaskUpTo(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << n) - 1
}

func lowerBinders(e *env.Environment, raw []binderDecl, sp span.File) ([]term.Arg, *mm0err.Error) {
	args := make([]term.Arg, len(raw))
	boundCount := 0
	for i, b := range raw {
		s, ok := sortNamed(e, b.Sort)
		if !ok {
			return nil, mm0err.New(mm0err.ErrUnknownAtom, sp, "binder %q: unknown sort %q", b.Name, b.Sort)
		}
		argAtom := e.InternAtom(b.Name)
		if b.Bound {
			args[i] = term.Arg{Atom: argAtom, Type: term.Bound(s)}
			boundCount++
		} else {
			args[i] = term.Arg{Atom: argAtom, Type: term.Reg(s, boundMaskUpTo(boundCount))}
		}
	}
	return args, nil
}

// lowerApplication lowers tokens (a `concl`/`hyp` list: a term name
// followed by its argument names) into a term.ExprNode against args, the
// flat, non-nested counterpart of lisp/eval/refine.go's lowerExpr.
func lowerApplication(e *env.Environment, args []term.Arg, tokens []string, sp span.File) (term.ExprNode, *mm0err.Error) {
	if len(tokens) == 0 {
		return term.ExprNode{}, mm0err.New(mm0err.ErrMalformedBinder, sp, "empty application")
	}
	if len(tokens) == 1 {
		return lowerName(e, args, tokens[0], sp)
	}
	head := tokens[0]
	data := e.AtomData(e.InternAtom(head))
	if !data.HasDecl() || !data.Decl().IsTerm() {
		return term.ExprNode{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown term %q", head)
	}
	termID := data.Decl().TermID()
	if err := e.CheckTermNargs(termID, len(tokens)-1); err != nil {
		return term.ExprNode{}, err
	}
	out := make([]term.ExprNode, len(tokens)-1)
	for i, tok := range tokens[1:] {
		n, err := lowerName(e, args, tok, sp)
		if err != nil {
			return term.ExprNode{}, err
		}
		out[i] = n
	}
	return term.App(termID, out), nil
}

func lowerName(e *env.Environment, args []term.Arg, name string, sp span.File) (term.ExprNode, *mm0err.Error) {
	atom := e.InternAtom(name)
	for i, a := range args {
		if a.Atom == atom {
			return term.Ref(i), nil
		}
	}
	data := e.AtomData(atom)
	if data.HasDecl() && data.Decl().IsTerm() {
		t := e.Term(data.Decl().TermID())
		if len(t.Args) != 0 {
			return term.ExprNode{}, mm0err.New(mm0err.ErrArity, sp, "%s expects %d argument(s)", name, len(t.Args))
		}
		return term.App(data.Decl().TermID(), nil), nil
	}
	return term.ExprNode{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown variable or term %q", name)
}
