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

// Package notation is the parser environment (spec §4.C): the tables a
// math-expression parser consults to know how a declared term may be
// written infix/prefix, what coerces to what, and which sort is the
// "provable" target of a coercion chain.
//
// The coercion graph is kept transitively closed, so its cycle/diamond
// detection (AddCoercionRaw) checks only the edges a new coercion adds.
// The recursive, explicit-visited-set walk in reachable follows the way
// the teacher's order.go walks a stack dependency DAG (BuildOrderTree /
// CheckCycle / IsSubtree).
package notation

import (
	"fmt"
	"sort"

	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
)

// Prec is a notation precedence level.
type Prec uint32

// MaxPrec is the highest legal precedence, reserved for atoms.
const MaxPrec Prec = 1 << 20

// Literal is one element of a notation's argument pattern
// (original_source `Literal::Var(usize, Prec) | Const(ArcString)`).
type Literal struct {
	isConst bool
	varIdx  int
	prec    Prec
	constTok string
}

// LitVar references binder argIdx, parsed at precedence prec.
func LitVar(argIdx int, prec Prec) Literal { return Literal{varIdx: argIdx, prec: prec} }

// LitConst is a literal token appearing in the notation.
func LitConst(tok string) Literal { return Literal{isConst: true, constTok: tok} }

func (l Literal) IsConst() bool   { return l.isConst }
func (l Literal) VarIndex() int   { return l.varIdx }
func (l Literal) VarPrec() Prec   { return l.prec }
func (l Literal) ConstTok() string { return l.constTok }

// NotaInfo records one declared prefix or infix notation for a term.
type NotaInfo struct {
	Span   span.File
	Term   ids.TermID
	NArgs  int
	RAssoc *bool // nil for prefix notations, which have no associativity
	Lits   []Literal
}

// constEntry/precEntry pair a first-declaration span with the value that
// span committed to, so a later conflicting add can report "first
// declared here".
type constEntry struct {
	span span.File
	prec Prec
}

type precEntry struct {
	span   span.File
	rassoc bool
}

// delimSet is a 256-bit (32-byte) bitmap of the byte values declared as
// left or right delimiters; it records no spans.
type delimSet [32]byte

func (d *delimSet) set(b byte)      { d[b/8] |= 1 << (b % 8) }
func (d delimSet) has(b byte) bool  { return d[b/8]&(1<<(b%8)) != 0 }

// Coe is a coercion path from one sort to another: either a single
// user-declared coercion term, or the transitive composition of two
// shorter paths through an intermediate sort (original_source
// `Coe::One(FileSpan, TermID) | Trans(Arc<Coe>, SortID, Arc<Coe>)`).
type Coe struct {
	one  bool
	span span.File
	term ids.TermID

	left  *Coe
	mid   ids.SortID
	right *Coe
}

// CoeOne is a single user-declared coercion.
func CoeOne(sp span.File, term ids.TermID) Coe { return Coe{one: true, span: sp, term: term} }

// CoeTrans composes left (A -> mid) with right (mid -> B) into A -> B.
func CoeTrans(left Coe, mid ids.SortID, right Coe) Coe {
	return Coe{left: &left, mid: mid, right: &right}
}

// IsOne reports whether c is a single user-declared coercion rather than
// a transitive composition.
func (c Coe) IsOne() bool { return c.one }

// Term is valid when IsOne: the single coercion term c realizes.
func (c Coe) Term() ids.TermID { return c.term }

// Left and Right are valid when !IsOne: the two shorter paths c composes.
func (c Coe) Left() Coe  { return *c.left }
func (c Coe) Right() Coe { return *c.right }

// String renders the coercion chain for cycle/diamond error messages:
// srcName followed by each intermediate sort, joined by " -> ". The final
// target sort is not rendered, since a Coe does not record it: a chain
// from a through b to c renders as "a -> b", and a single coercion as
// just "a".
func (c Coe) String(sortName func(ids.SortID) string, srcName string) string {
	if c.one {
		return srcName
	}
	return c.left.String(sortName, srcName) + " -> " + sortName(c.mid) + c.right.tailArrows(sortName)
}

func (c Coe) tailArrows(sortName func(ids.SortID) string) string {
	if c.one {
		return ""
	}
	return " -> " + sortName(c.mid) + c.right.tailArrows(sortName)
}

// ParserEnv holds every table the math parser consults (spec §4.C).
type ParserEnv struct {
	leftDelim  delimSet
	rightDelim delimSet

	consts map[string]constEntry
	precs  map[Prec]precEntry

	prefix map[string]NotaInfo
	infix  map[string]NotaInfo

	coes     map[ids.SortID]map[ids.SortID]Coe
	coeProv  map[ids.SortID]ids.SortID
	declNota map[ids.TermID]declNota
}

type declNota struct {
	hasCoe bool
	notas  []NotaInfo
}

// New returns an empty parser environment.
func New() *ParserEnv {
	return &ParserEnv{
		consts:   make(map[string]constEntry),
		precs:    make(map[Prec]precEntry),
		prefix:   make(map[string]NotaInfo),
		infix:    make(map[string]NotaInfo),
		coes:     make(map[ids.SortID]map[ids.SortID]Coe),
		coeProv:  make(map[ids.SortID]ids.SortID),
		declNota: make(map[ids.TermID]declNota),
	}
}

// SetDelim records tok's characters as left and/or right math-delimiters.
func (p *ParserEnv) SetDelim(tok string, left, right bool) {
	for i := 0; i < len(tok); i++ {
		if left {
			p.leftDelim.set(tok[i])
		}
		if right {
			p.rightDelim.set(tok[i])
		}
	}
}

// IsLeftDelim and IsRightDelim test the delimiter bitmaps.
func (p *ParserEnv) IsLeftDelim(b byte) bool  { return p.leftDelim.has(b) }
func (p *ParserEnv) IsRightDelim(b byte) bool { return p.rightDelim.has(b) }

// AddConstant adds tok at precedence prec, or confirms an identical
// existing declaration (spec §4.C "adds or confirms identical prec;
// conflicting prec is an incompatibility error with both spans").
func (p *ParserEnv) AddConstant(tok string, sp span.File, prec Prec) *mm0err.Error {
	if existing, ok := p.consts[tok]; ok {
		if existing.prec == prec {
			return nil
		}
		return mm0err.New(mm0err.ErrNotationConflict, sp,
			"constant %q already declared at precedence %d", tok, existing.prec).
			WithSecondary(existing.span, "first declared here")
	}
	p.consts[tok] = constEntry{span: sp, prec: prec}
	return nil
}

// AddPrecAssoc adds precedence prec's associativity, or confirms an
// identical existing declaration.
func (p *ParserEnv) AddPrecAssoc(prec Prec, sp span.File, rassoc bool) *mm0err.Error {
	if existing, ok := p.precs[prec]; ok {
		if existing.rassoc == rassoc {
			return nil
		}
		return mm0err.New(mm0err.ErrNotationConflict, sp,
			"precedence %d already has a different associativity", prec).
			WithSecondary(existing.span, "first declared here")
	}
	p.precs[prec] = precEntry{span: sp, rassoc: rassoc}
	return nil
}

// AddPrefix adds tok as a prefix notation, or confirms an identical one.
func (p *ParserEnv) AddPrefix(tok string, nota NotaInfo) *mm0err.Error {
	if existing, ok := p.prefix[tok]; ok {
		if notaEqual(existing, nota) {
			return nil
		}
		return mm0err.New(mm0err.ErrNotationConflict, nota.Span,
			"prefix notation %q already declared differently", tok).
			WithSecondary(existing.Span, "first declared here")
	}
	p.prefix[tok] = nota
	p.recordDeclNota(nota)
	return nil
}

// AddInfix adds tok as an infix notation, or confirms an identical one.
func (p *ParserEnv) AddInfix(tok string, nota NotaInfo) *mm0err.Error {
	if existing, ok := p.infix[tok]; ok {
		if notaEqual(existing, nota) {
			return nil
		}
		return mm0err.New(mm0err.ErrNotationConflict, nota.Span,
			"infix notation %q already declared differently", tok).
			WithSecondary(existing.Span, "first declared here")
	}
	p.infix[tok] = nota
	p.recordDeclNota(nota)
	return nil
}

func (p *ParserEnv) recordDeclNota(nota NotaInfo) {
	dn := p.declNota[nota.Term]
	dn.notas = append(dn.notas, nota)
	p.declNota[nota.Term] = dn
}

func notaEqual(a, b NotaInfo) bool {
	if a.Term != b.Term || a.NArgs != b.NArgs || len(a.Lits) != len(b.Lits) {
		return false
	}
	if (a.RAssoc == nil) != (b.RAssoc == nil) {
		return false
	}
	if a.RAssoc != nil && *a.RAssoc != *b.RAssoc {
		return false
	}
	for i := range a.Lits {
		if a.Lits[i] != b.Lits[i] {
			return false
		}
	}
	return true
}

// Coercion looks up the direct or transitive coercion from s1 to s2, if
// any has been declared.
func (p *ParserEnv) Coercion(s1, s2 ids.SortID) (Coe, bool) {
	m, ok := p.coes[s1]
	if !ok {
		return Coe{}, false
	}
	c, ok := m[s2]
	return c, ok
}

// CoeProv returns the provable-sort target reachable by coercion from s,
// if one has been established by UpdateCoeProv.
func (p *ParserEnv) CoeProv(s ids.SortID) (ids.SortID, bool) {
	t, ok := p.coeProv[s]
	return t, ok
}

// AddCoercionRaw expands the coercion graph with a new edge s1 -> s2
// (realized by term, declared at sp), transitively composing it with
// every existing path that abuts it, exactly as spec §4.C prescribes:
// for every sl with sl -> s1, add sl -> s2; add s1 -> s2 itself; for
// every sr with s2 -> sr, add s1 -> sr. sortName is used only to render
// diagnostics.
func (p *ParserEnv) AddCoercionRaw(s1, s2 ids.SortID, sp span.File, term ids.TermID, sortName func(ids.SortID) string) *mm0err.Error {
	direct := CoeOne(sp, term)

	type edge struct {
		from, to ids.SortID
		c        Coe
	}
	var newEdges []edge
	newEdges = append(newEdges, edge{s1, s2, direct})

	for sl, m := range p.coes {
		if c, ok := m[s1]; ok {
			newEdges = append(newEdges, edge{sl, s2, CoeTrans(c, s1, direct)})
		}
	}
	if m, ok := p.coes[s2]; ok {
		for sr, c := range m {
			newEdges = append(newEdges, edge{s1, sr, CoeTrans(direct, s2, c)})
			for sl, lm := range p.coes {
				if lc, ok := lm[s1]; ok {
					newEdges = append(newEdges, edge{sl, sr, CoeTrans(CoeTrans(lc, s1, direct), s2, c)})
				}
			}
		}
	}

	for _, e := range newEdges {
		if e.from == e.to {
			return mm0err.New(mm0err.ErrCoercionCycle, sp,
				"coercion cycle: %s", e.c.String(sortName, sortName(e.from)))
		}
	}
	for _, e := range newEdges {
		if m, ok := p.coes[e.from]; ok {
			if existing, ok := m[e.to]; ok {
				if !coeEqual(existing, e.c) {
					return mm0err.New(mm0err.ErrCoercionDiamond, sp,
						"coercion diamond %s -> %s:\n  %s\n  %s",
						sortName(e.from), sortName(e.to),
						existing.String(sortName, sortName(e.from)),
						e.c.String(sortName, sortName(e.from)))
				}
				continue
			}
		}
	}
	for _, e := range newEdges {
		if p.coes[e.from] == nil {
			p.coes[e.from] = make(map[ids.SortID]Coe)
		}
		p.coes[e.from][e.to] = e.c
	}
	return nil
}

func coeEqual(a, b Coe) bool {
	if a.one != b.one {
		return false
	}
	if a.one {
		return a.term == b.term
	}
	return a.mid == b.mid && coeEqual(*a.left, *b.left) && coeEqual(*a.right, *b.right)
}

// UpdateCoeProv recomputes coeProv by scanning every s1 -> s2 edge where
// s2 is in the provable set; two distinct provable targets reachable from
// one source is an error (spec §4.C).
func (p *ParserEnv) UpdateCoeProv(isProvable func(ids.SortID) bool, sortName func(ids.SortID) string) *mm0err.Error {
	p.coeProv = make(map[ids.SortID]ids.SortID)
	var froms []ids.SortID
	for from := range p.coes {
		froms = append(froms, from)
	}
	sort.Slice(froms, func(i, j int) bool { return froms[i] < froms[j] })

	for _, from := range froms {
		for to := range p.coes[from] {
			if !isProvable(to) {
				continue
			}
			if existing, ok := p.coeProv[from]; ok && existing != to {
				return mm0err.New(mm0err.ErrMultipleProvable, span.Zero,
					"sort %s coerces to multiple provable sorts %s and %s",
					sortName(from), sortName(existing), sortName(to))
			}
			p.coeProv[from] = to
		}
	}
	return nil
}

// HasCoe reports whether term participates in any declared coercion.
func (p *ParserEnv) HasCoe(term ids.TermID) bool { return p.declNota[term].hasCoe }

// MarkHasCoe records that term is a coercion. AddCoercionRaw does not set
// this mark itself; callers set it separately (Merge does so after each
// edge it adds).
func (p *ParserEnv) MarkHasCoe(term ids.TermID) {
	dn := p.declNota[term]
	dn.hasCoe = true
	p.declNota[term] = dn
}

// Notations returns every prefix/infix notation declared for term.
func (p *ParserEnv) Notations(term ids.TermID) []NotaInfo {
	return p.declNota[term].notas
}

// reachable walks the coercion graph from src the same explicit-
// visited-set way order.go's buildOrderTree walks a stack's After list,
// listing every sort reachable from src. Nothing in this module calls it.
func (p *ParserEnv) reachable(src ids.SortID) []ids.SortID {
	visited := map[ids.SortID]struct{}{src: {}}
	var out []ids.SortID
	p.walkCoe(src, visited, &out)
	return out
}

func (p *ParserEnv) walkCoe(from ids.SortID, visited map[ids.SortID]struct{}, out *[]ids.SortID) {
	for to := range p.coes[from] {
		if _, ok := visited[to]; ok {
			continue
		}
		visited[to] = struct{}{}
		*out = append(*out, to)
		p.walkCoe(to, visited, out)
	}
}

// String is a debug rendering of the coercion graph, not used in normal
// diagnostics (those go through Coe.String with caller-supplied names).
func (p *ParserEnv) String() string {
	return fmt.Sprintf("ParserEnv{consts=%d prefix=%d infix=%d coes=%d}",
		len(p.consts), len(p.prefix), len(p.infix), len(p.coes))
}
