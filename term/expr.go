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

package term

import "github.com/monocodus-demonstrations/mm0/ids"

// ExprNode is one node of a dedup-owned expression DAG (spec §3 "Data
// model (expr/proof DAG)"). The three variants mirror exactly the three
// ways an argument, a dummy, or a term application can appear once a
// declaration's value has been hash-consed: a back-reference into the
// owning Expr's heap, a dummy variable of known sort, or a term applied
// to already-deduped child nodes.
//
// Ref/Dummy/App carry no span: spans live only at the Expr/Term level
// where a user-facing diagnostic might need to point at them.
type ExprNode struct {
	kind  exprKind
	ref   int         // Ref
	dummy ids.AtomID  // Dummy
	sort  ids.SortID  // Dummy
	term  ids.TermID  // App
	args  []ExprNode  // App
}

type exprKind uint8

const (
	exprRef exprKind = iota
	exprDummy
	exprApp
)

// Ref builds a back-reference to heap slot i (an argument or an earlier
// shared subterm promoted to the heap by the dedup engine).
func Ref(i int) ExprNode { return ExprNode{kind: exprRef, ref: i} }

// Dummy builds a reference to a fresh local variable of sort s, named
// atom for pretty-printing.
func Dummy(atom ids.AtomID, s ids.SortID) ExprNode {
	return ExprNode{kind: exprDummy, dummy: atom, sort: s}
}

// App builds the application of term t to already-built argument nodes.
func App(t ids.TermID, args []ExprNode) ExprNode {
	return ExprNode{kind: exprApp, term: t, args: args}
}

// IsRef, IsDummy, IsApp discriminate the variant.
func (n ExprNode) IsRef() bool   { return n.kind == exprRef }
func (n ExprNode) IsDummy() bool { return n.kind == exprDummy }
func (n ExprNode) IsApp() bool   { return n.kind == exprApp }

// RefIndex is valid when IsRef.
func (n ExprNode) RefIndex() int { return n.ref }

// DummyAtom and DummySort are valid when IsDummy.
func (n ExprNode) DummyAtom() ids.AtomID { return n.dummy }
func (n ExprNode) DummySort() ids.SortID { return n.sort }

// AppTerm and AppArgs are valid when IsApp.
func (n ExprNode) AppTerm() ids.TermID  { return n.term }
func (n ExprNode) AppArgs() []ExprNode { return n.args }

// Expr is a dedup-owned expression: a heap of shared subterms (indexed by
// the Ref nodes inside it) plus a head node giving the expression's
// value (spec §3 "Expr{heap, head}").
type Expr struct {
	Heap []ExprNode
	Head ExprNode
}

// ProofNode unifies expressions, proofs, and conversions into a single
// DAG node type (spec §3 "Proof-term DAG" / "ProofNode"), following
// original_source's ProofNode exactly: a proof of `a = b` or `|- p` is
// built from the same node kinds used for plain expressions, plus
// hypothesis references, theorem applications and the four conversion
// forms.
type ProofNode struct {
	kind ProofKind

	ref  int        // Ref
	atom ids.AtomID // Dummy
	srt  ids.SortID // Dummy

	trm  ids.TermID  // Term, Cong, Unfold
	args []ProofNode // Term, Cong, Unfold

	hyp  int        // Hyp
	prf  *ProofNode // Hyp (the subproof this hypothesis index names)

	thm    ids.ThmID   // Thm
	thmRes *ProofNode  // Thm's stated conclusion, cached for refine

	conv *[3]ProofNode // Conv: {tgt, eq-proof, proof-of-a} (see PConv)

	unfoldRes    *ProofNode // Unfold
	unfoldSubLHS *ProofNode // Unfold: substituted LHS prior to folding back
}

// ProofKind discriminates ProofNode's variants (original_source
// environment.rs ProofNode).
type ProofKind uint8

const (
	ProofRef ProofKind = iota
	ProofDummy
	ProofTerm
	ProofHyp
	ProofThm
	ProofConv
	ProofRefl
	ProofSym
	ProofCong
	ProofUnfold
)

// PRef is a back-reference into the enclosing Proof's heap.
func PRef(i int) ProofNode { return ProofNode{kind: ProofRef, ref: i} }

// PDummy names a fresh local variable of sort s.
func PDummy(atom ids.AtomID, s ids.SortID) ProofNode {
	return ProofNode{kind: ProofDummy, atom: atom, srt: s}
}

// PTerm is the plain (non-proof) application of term t, appearing inside
// a proof wherever an expression is needed (e.g. a Cong's result type).
func PTerm(t ids.TermID, args []ProofNode) ProofNode {
	return ProofNode{kind: ProofTerm, trm: t, args: args}
}

// PHyp references hypothesis index i of the enclosing Proof, whose
// statement is proof (cached so a consumer need not re-walk Proof.Hyps).
func PHyp(i int, proof ProofNode) ProofNode {
	return ProofNode{kind: ProofHyp, hyp: i, prf: &proof}
}

// PThm applies theorem thm to args (hypothesis and expression proofs
// interleaved per the theorem's binder order), yielding res.
func PThm(thm ids.ThmID, args []ProofNode, res ProofNode) ProofNode {
	return ProofNode{kind: ProofThm, thm: thm, args: args, thmRes: &res}
}

// PConv wraps a proof `p : a = b` and a proof-of-eq around a proof of a
// to produce a proof of b (original_source Conv(Box<(tgt, eq, proof)>)):
// conv is {tgt, eq-proof, proof-of-a}.
func PConv(tgt, eq, proof ProofNode) ProofNode {
	return ProofNode{kind: ProofConv, conv: &[3]ProofNode{tgt, eq, proof}}
}

// PRefl is a proof of `a = a`.
func PRefl() ProofNode { return ProofNode{kind: ProofRefl} }

// PSym flips a proof of `a = b` into a proof of `b = a`; args holds the
// single wrapped proof.
func PSym(proof ProofNode) ProofNode { return ProofNode{kind: ProofSym, args: []ProofNode{proof}} }

// PCong proves `t(a...) = t(b...)` from pointwise equality proofs of the
// arguments.
func PCong(t ids.TermID, args []ProofNode) ProofNode {
	return ProofNode{kind: ProofCong, trm: t, args: args}
}

// PUnfold proves `t(a...) = res` by substituting args into t's
// definition, yielding subLHS prior to folding back into res.
func PUnfold(t ids.TermID, args []ProofNode, res, subLHS ProofNode) ProofNode {
	return ProofNode{kind: ProofUnfold, trm: t, args: args, unfoldRes: &res, unfoldSubLHS: &subLHS}
}

// Kind reports the node's variant.
func (n ProofNode) Kind() ProofKind { return n.kind }

func (n ProofNode) RefIndex() int          { return n.ref }
func (n ProofNode) DummyAtom() ids.AtomID  { return n.atom }
func (n ProofNode) DummySort() ids.SortID  { return n.srt }
func (n ProofNode) Term() ids.TermID       { return n.trm }
func (n ProofNode) Args() []ProofNode      { return n.args }
func (n ProofNode) HypIndex() int          { return n.hyp }
func (n ProofNode) HypProof() ProofNode    { return *n.prf }
func (n ProofNode) Thm() ids.ThmID         { return n.thm }
func (n ProofNode) ThmResult() ProofNode   { return *n.thmRes }
func (n ProofNode) ConvTarget() ProofNode  { return n.conv[0] }
func (n ProofNode) ConvEq() ProofNode      { return n.conv[1] }
func (n ProofNode) ConvProof() ProofNode   { return n.conv[2] }
func (n ProofNode) SymProof() ProofNode    { return n.args[0] }
func (n ProofNode) UnfoldResult() ProofNode   { return *n.unfoldRes }
func (n ProofNode) UnfoldSubLHS() ProofNode   { return *n.unfoldSubLHS }

// Deref follows a chain of Ref nodes resolved against heap until it
// reaches a non-Ref node, mirroring original_source's ProofNode::deref:
// heap slots are themselves ProofNodes, so a Ref can point at another
// Ref.
func Deref(n ProofNode, heap []ProofNode) ProofNode {
	for n.kind == ProofRef {
		n = heap[n.ref]
	}
	return n
}

// ExprToProofNode lifts a plain expression node into the proof DAG
// (original_source `impl From<&ExprNode> for ProofNode`), used when a
// proof needs to mention a term that was only ever elaborated as an
// expression (e.g. a theorem's stated conclusion before it is proved).
func ExprToProofNode(n ExprNode) ProofNode {
	switch {
	case n.IsRef():
		return PRef(n.RefIndex())
	case n.IsDummy():
		return PDummy(n.DummyAtom(), n.DummySort())
	default:
		args := make([]ProofNode, len(n.AppArgs()))
		for i, a := range n.AppArgs() {
			args[i] = ExprToProofNode(a)
		}
		return PTerm(n.AppTerm(), args)
	}
}

// Proof is a dedup-owned proof term: a heap of shared subterms, a list of
// hypothesis statements (the antecedents available via PHyp), and a head
// node giving the proof's conclusion (spec §3 "Proof{heap, hyps, head}").
type Proof struct {
	Heap []ProofNode
	Hyps []ProofNode
	Head ProofNode
}
