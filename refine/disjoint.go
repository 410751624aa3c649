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
	"fmt"
	"strings"

	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
)

// DisjointPair names two argument positions a theorem's binders require
// to never share a bound variable.
type DisjointPair struct {
	I, J int
}

// CheckDisjoint verifies every required pair in pairs against the
// argument dependency bitsets deps (spec §4.G "compute each argument's
// bound-variable-bitset via the dedup; for each pair (i, j) that the
// theorem requires to be disjoint, require deps_i & deps_j = 0.
// Violation reports all offending pairs and is fatal for that
// application."). argName renders an argument index for the message.
func CheckDisjoint(deps []uint64, pairs []DisjointPair, sp span.File, argName func(int) string) *mm0err.Error {
	var bad []string
	for _, pr := range pairs {
		if deps[pr.I]&deps[pr.J] != 0 {
			bad = append(bad, fmt.Sprintf("(%s, %s)", argName(pr.I), argName(pr.J)))
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return mm0err.New(mm0err.ErrDisjointVariable, sp,
		"disjoint variable violation(s): %s", strings.Join(bad, ", "))
}
