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

package refine

import (
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/term"
)

// BuildConv wraps proof (a proof of src) as a proof of tgt given a proof
// that src and tgt are definitionally equal (spec §4.G item 6: ":conv,
// :sym, :unfold are recognized builtin forms and produce conversion
// nodes").
func BuildConv(tgt term.ProofNode, eq term.ProofNode, proof term.ProofNode) term.ProofNode {
	return term.PConv(tgt, eq, proof)
}

// BuildSym flips a proof of equality/conversion the other direction.
func BuildSym(eq term.ProofNode) term.ProofNode {
	return term.PSym(eq)
}

// BuildUnfold records that term t, applied to args, unfolds to res via
// the substituted-in definition body subLHS.
func BuildUnfold(t ids.TermID, args []term.ProofNode, res, subLHS term.ProofNode) term.ProofNode {
	return term.PUnfold(t, args, res, subLHS)
}

// AsConv wraps an expression proof in a reflexivity node when the caller
// needs a conversion-shaped proof but no actual rewriting occurred (spec
// §4.G "Conversion-coercing of an expression term is automatic via a
// Refl wrapper (as_conv)"). tgt is the term the Refl proves equal to
// itself; proof is left untouched, since a reflexive conversion never
// changes which proof discharges the goal, only how it is packaged for a
// caller expecting a :conv node.
func AsConv(tgt term.ProofNode, proof term.ProofNode) term.ProofNode {
	return term.PConv(tgt, term.PRefl(), proof)
}
