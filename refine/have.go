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
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
)

// Have records a freshly elaborated subproof under name in l, so later
// proof expressions in the same script can refer back to it by atom
// (spec §4.G "have": "inserts a new named subproof into the local
// context"). The caller has already done the two jobs spec §4.G
// describes before this point: elaborating the proof expression (against
// stmt, if stated, or inferring stmt from the elaborated proof
// otherwise). Have itself is just the bookkeeping step.
func Have(l *lctx.LocalContext, name ids.AtomID, stmt, proof lisp.Value) {
	l.AddProof(name, stmt, proof)
}
