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
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
)

// ExtraArgsCallback is resumed by the refine-extra-args hook once it has
// decided what to do with the leftover arguments; it is the Callback
// side of the CallbackDeferGoals/CallbackTyped continuation (spec §4.G
// callbacks).
type ExtraArgsCallback interface {
	lisp.Callback
}

// InvokeExtraArgs calls the user-overridable refine-extra-args hook when
// a proof application receives more arguments than the theorem's
// binders+hypotheses account for (spec §4.G item 3: "call the
// overridable refine-extra-args user hook with a callback and the
// leftover arguments"). hook is looked up by the caller from the global
// environment the same way any other user-rebindable builtin is; if hook
// is nil (never bound) this is a fatal error rather than a silent no-op,
// since the default behavior for stray arguments is to reject them.
func InvokeExtraArgs(hook lisp.Callback, cb ExtraArgsCallback, leftover []lisp.Value, sp mm0err.Span) (lisp.Value, *mm0err.Error) {
	if hook == nil {
		return lisp.Value{}, mm0err.New(mm0err.ErrArity, sp,
			"unexpected extra argument(s) and no refine-extra-args hook installed")
	}
	args := make([]lisp.Value, 0, len(leftover)+1)
	args = append(args, lisp.RefineCallbackProc(cb))
	args = append(args, leftover...)
	return hook.Call(args)
}
