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
	"github.com/monocodus-demonstrations/mm0/dedup"
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/term"
)

// AwaitingProof is a theorem declaration suspended between its statement
// being elaborated and its proof being checked (spec §5 "Suspension
// points"; SUPPLEMENTED FEATURES #6, grounded on local_context.rs's
// AwaitingProof/finish). A `do` block may declare a theorem's statement,
// return control to the surrounding script, and only later supply (or
// never supply, for `sorry`) the tactic proof that completes it; this
// struct is what is held onto across that gap.
type AwaitingProof struct {
	name string

	Thm   term.Thm
	Dedup *dedup.Dedup[term.ProofNode]
	Lctx  *lctx.LocalContext

	// HypIndices maps each declared hypothesis to the proof heap index
	// that names it, so `have`/refine can resolve a hypothesis by name
	// without re-walking Thm.Hyps.
	HypIndices []int
}

// NewAwaitingProof begins a suspended proof for a theorem named name,
// reusing lc as the proof's local context.
func NewAwaitingProof(name string, thm term.Thm, lc *lctx.LocalContext, hypIndices []int) *AwaitingProof {
	return &AwaitingProof{
		name:       name,
		Thm:        thm,
		Dedup:      dedup.New(term.ProofKey),
		Lctx:       lc,
		HypIndices: hypIndices,
	}
}

// Atom is the theorem's name, the naming convention local_context.rs uses
// for AwaitingProof::atom().
func (a *AwaitingProof) Atom() string { return a.name }

// Finish hash-conses head (the checked proof of the theorem's conclusion)
// against a.Dedup and materializes the final term.Proof, following the
// single linear Build pass of spec §4.D: every arena entry's immediate
// Ref children are resolved against already-built earlier entries via
// term.SubstRefs.
func (a *AwaitingProof) Finish(head term.ProofNode) term.Proof {
	headIdx := a.Dedup.AddDirect(head)
	built := dedup.Build(a.Dedup,
		func(h term.ProofNode, built []term.ProofNode) term.ProofNode { return term.SubstRefs(h, built) },
		func(i int) term.ProofNode { return term.PRef(i) },
	)
	hyps := make([]term.ProofNode, len(a.HypIndices))
	for i, idx := range a.HypIndices {
		hyps[i] = built.Val[idx]
	}
	return term.Proof{Heap: built.Heap, Hyps: hyps, Head: built.Val[headIdx]}
}
