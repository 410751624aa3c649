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
	"strings"

	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
)

// FocusFrame is what EnterFocus hands back: the goals set aside while the
// caller's nested script works on the first one (spec §4.G "focus":
// "Pushes all but the first goal onto a saved list").
type FocusFrame struct {
	saved []*lisp.Goal
}

// EnterFocus splits l's current goal list into the goal to work on and a
// FocusFrame remembering the rest. It panics if l has no goals, since
// focus with nothing to focus on is a caller bug, not a recoverable
// elaboration error.
func EnterFocus(l *lctx.LocalContext) (*lisp.Goal, *FocusFrame) {
	gs := l.Goals()
	if len(gs) == 0 {
		panic("refine: EnterFocus called with no goals")
	}
	saved := append([]*lisp.Goal(nil), gs[1:]...)
	l.SetGoals(gs[:1])
	return gs[0], &FocusFrame{saved: saved}
}

// ExitFocus restores whatever goals the nested script left unresolved
// alongside the frame's saved goals (spec §4.G "after the nested script,
// either the focused goal is solved (saved goals become the new goal
// list) or an installed closer callback is invoked to attempt closure;
// if neither works, report every remaining focused goal with its
// expected statement and fail").
//
// goalName renders a goal's expected statement for the failure message.
func ExitFocus(l *lctx.LocalContext, frame *FocusFrame, goalName func(*lisp.Goal) string) *mm0err.Error {
	remaining := l.Goals()
	unsolved := make([]*lisp.Goal, 0, len(remaining))
	for _, g := range remaining {
		if !g.IsSolved() {
			unsolved = append(unsolved, g)
		}
	}

	if len(unsolved) == 0 {
		l.SetGoals(frame.saved)
		return nil
	}

	if closer := l.Closer(); closer != nil {
		vals := make([]lisp.Value, len(unsolved))
		for i, g := range unsolved {
			vals[i] = g.Value()
		}
		if _, err := closer.Call(vals); err == nil {
			stillUnsolved := false
			for _, g := range unsolved {
				if !g.IsSolved() {
					stillUnsolved = true
					break
				}
			}
			if !stillUnsolved {
				l.SetGoals(frame.saved)
				return nil
			}
		}
	}

	names := make([]string, len(unsolved))
	for i, g := range unsolved {
		names[i] = goalName(g)
	}
	return mm0err.New(mm0err.ErrUnsolvedGoal, unsolved[0].Span,
		"focus left %d goal(s) unsolved: %s", len(unsolved), strings.Join(names, "; "))
}
