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

import (
	"fmt"
	"strings"
)

// ExprKey and ProofKey are the canonical string keys dedup.Dedup needs for
// structural deduplication (spec §4.D "a map hash(H) -> index"). By the
// time a node is inserted into an arena its children are themselves
// arena-index Ref nodes (the hash-consing discipline: every subterm gets
// its own slot before the node that contains it is built), so these keys
// only need to distinguish one level of structure at a time, not walk
// arbitrarily deep trees.
func ExprKey(n ExprNode) string {
	switch {
	case n.IsRef():
		return fmt.Sprintf("r%d", n.RefIndex())
	case n.IsDummy():
		return fmt.Sprintf("d%d:%d", n.DummyAtom(), n.DummySort())
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "a%d(", n.AppTerm())
		for i, a := range n.AppArgs() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(ExprKey(a))
		}
		b.WriteByte(')')
		return b.String()
	}
}

// ProofKey is ExprKey's counterpart for ProofNode.
func ProofKey(n ProofNode) string {
	var b strings.Builder
	proofKey(&b, n)
	return b.String()
}

func proofKey(b *strings.Builder, n ProofNode) {
	switch n.Kind() {
	case ProofRef:
		fmt.Fprintf(b, "r%d", n.RefIndex())
	case ProofDummy:
		fmt.Fprintf(b, "d%d:%d", n.DummyAtom(), n.DummySort())
	case ProofTerm:
		fmt.Fprintf(b, "t%d(", n.Term())
		proofKeyArgs(b, n.Args())
		b.WriteByte(')')
	case ProofHyp:
		fmt.Fprintf(b, "h%d", n.HypIndex())
	case ProofThm:
		fmt.Fprintf(b, "T%d(", n.Thm())
		proofKeyArgs(b, n.Args())
		b.WriteByte(')')
	case ProofConv:
		b.WriteString("c(")
		proofKey(b, n.ConvTarget())
		b.WriteByte(',')
		proofKey(b, n.ConvEq())
		b.WriteByte(',')
		proofKey(b, n.ConvProof())
		b.WriteByte(')')
	case ProofRefl:
		b.WriteString("refl")
	case ProofSym:
		b.WriteString("sym(")
		proofKey(b, n.SymProof())
		b.WriteByte(')')
	case ProofCong:
		fmt.Fprintf(b, "g%d(", n.Term())
		proofKeyArgs(b, n.Args())
		b.WriteByte(')')
	case ProofUnfold:
		fmt.Fprintf(b, "u%d(", n.Term())
		proofKeyArgs(b, n.Args())
		b.WriteByte(')')
	}
}

func proofKeyArgs(b *strings.Builder, args []ProofNode) {
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		proofKey(b, a)
	}
}

// SubstRefs replaces every immediate Ref(i) child of n with built[i],
// leaving every other node unchanged. This realizes dedup.Build's mk
// callback for ProofNode arenas: arena entries reference earlier slots via
// Ref because the hash-consing discipline gives every subterm its own slot
// before the node containing it is built, so substitution only ever needs
// to look one level deep.
func SubstRefs(n ProofNode, built []ProofNode) ProofNode {
	resolve := func(c ProofNode) ProofNode {
		if c.Kind() == ProofRef {
			return built[c.RefIndex()]
		}
		return c
	}
	switch n.Kind() {
	case ProofRef:
		return built[n.RefIndex()]
	case ProofDummy, ProofRefl:
		return n
	case ProofHyp:
		return PHyp(n.HypIndex(), resolve(n.HypProof()))
	case ProofTerm:
		return PTerm(n.Term(), substArgs(n.Args(), resolve))
	case ProofThm:
		return PThm(n.Thm(), substArgs(n.Args(), resolve), resolve(n.ThmResult()))
	case ProofConv:
		return PConv(resolve(n.ConvTarget()), resolve(n.ConvEq()), resolve(n.ConvProof()))
	case ProofSym:
		return PSym(resolve(n.SymProof()))
	case ProofCong:
		return PCong(n.Term(), substArgs(n.Args(), resolve))
	case ProofUnfold:
		return PUnfold(n.Term(), substArgs(n.Args(), resolve), resolve(n.UnfoldResult()), resolve(n.UnfoldSubLHS()))
	}
	return n
}

func substArgs(args []ProofNode, resolve func(ProofNode) ProofNode) []ProofNode {
	out := make([]ProofNode, len(args))
	for i, a := range args {
		out[i] = resolve(a)
	}
	return out
}

// SubstRefsExpr is SubstRefs's counterpart for ExprNode arenas, realizing
// dedup.Build's mk callback when elab builds a Term/Thm's heap out of an
// ExprArena (spec §4.D, §4.E). A seeded formal-argument entry is stored
// as Ref(i) at its own arena index i (dedup.NewWithArgs's self-pointing
// seed, spec §4.D "new(args) seeds the arena with one Ref(i) per formal
// argument"); len(built) equals the current index while that entry is
// being materialized, so RefIndex() >= len(built) identifies this
// self-reference and the node passes through unchanged, standing for the
// argument itself rather than a substitution. Any other Ref names an
// earlier, already-built index and is resolved through built.
func SubstRefsExpr(n ExprNode, built []ExprNode) ExprNode {
	resolve := func(c ExprNode) ExprNode {
		if c.IsRef() && c.RefIndex() < len(built) {
			return built[c.RefIndex()]
		}
		return c
	}
	switch {
	case n.IsRef():
		return resolve(n)
	case n.IsDummy():
		return n
	default:
		args := make([]ExprNode, len(n.AppArgs()))
		for i, a := range n.AppArgs() {
			args[i] = resolve(a)
		}
		return App(n.AppTerm(), args)
	}
}
