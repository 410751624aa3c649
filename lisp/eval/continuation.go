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

// matchContinuation implements lisp.Continuation, resuming a `match` at
// the branch immediately after the one that captured it (spec §4.F "Match
// continuations: a first-class one-shot resumption captured mid-match").
// Invoking it replays findMatch over the remaining branches against a new
// scrutinee built from Invoke's arguments.
type matchContinuation struct {
	ev        *Evaluator
	env       *lisp.Env
	remaining []MatchBranch
	sp        span.File
	expired   bool
}

func (c *matchContinuation) Invoke(args []lisp.Value) (lisp.Value, *mm0err.Error) {
	if c.expired {
		return lisp.Value{}, mm0err.New(mm0err.ErrContinuationExpired, c.sp, "continuation has expired")
	}
	c.expired = true
	var scrutinee lisp.Value
	switch len(args) {
	case 0:
		scrutinee = lisp.Undef
	case 1:
		scrutinee = args[0]
	default:
		scrutinee = lisp.List(args...)
	}
	body, menv, rest, ok, err := c.ev.findMatch(scrutinee, c.remaining, c.env, c.sp)
	if err != nil {
		return lisp.Value{}, err
	}
	if !ok {
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, c.sp, "no matching pattern")
	}
	c.ev.pendingCont = &matchContinuation{ev: c.ev, env: c.env, remaining: rest, sp: c.sp}
	return c.ev.eval(body, menv)
}

func (c *matchContinuation) Expired() bool { return c.expired }
