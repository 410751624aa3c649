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

// Package elab runs the per-declaration elaboration pipeline (spec
// §4.E): the binder pass, expression elaboration with coercion
// insertion, dummy finalization, and the four declaration kinds
// (term/def/axiom/theorem). It depends on env/lctx/lisp/notation/term/
// dedup, not on refine, and it is never imported by lisp/eval directly:
// the evaluator's refine/to-expr/have/infer-type builtins call into
// refine and do not go through this package.
//
// Errors accumulate on the Elaborator rather than aborting the current
// declaration (spec §4.E "Error recovery: the elaborator accumulates
// errors rather than aborting the declaration; when errors exist at
// commit time, the declaration is skipped but subsequent declarations
// still proceed"); callers check Errors().HasErrors() before committing
// a declaration's Term/Thm into the Environment.
package elab

import (
	"github.com/rs/zerolog"

	"github.com/monocodus-demonstrations/mm0/env"
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/mm0err"
)

// Elaborator runs one declaration's binder pass, expression elaboration,
// and commit against a shared Environment and a reused LocalContext
// (spec §4.E "the elaborator runs per declaration"; spec §4.I "one
// LocalContext per declaration, reused via Clear").
type Elaborator struct {
	env *env.Environment
	lc  *lctx.LocalContext
	log zerolog.Logger

	errs mm0err.List
}

// New builds an Elaborator over e, scratching through lc across
// declarations (the caller is responsible for calling lc.Clear() between
// declarations; New does not do it implicitly, since a caller running a
// batch of declarations against one LocalContext controls that
// lifecycle, not this constructor).
func New(e *env.Environment, lc *lctx.LocalContext, l zerolog.Logger) *Elaborator {
	return &Elaborator{
		env: e,
		lc:  lc,
		log: l.With().Str("component", "elab.Elaborator").Logger(),
	}
}

// Errors returns the accumulated error list for the declaration(s)
// elaborated so far through this Elaborator. Reset is the caller's job
// (construct a new Elaborator, or truncate Errors().Errs) between
// declarations that should not see each other's errors.
func (el *Elaborator) Errors() *mm0err.List { return &el.errs }

// addErr records a non-nil error and returns it, so call sites can both
// record and propagate in one line: `return el.addErr(err)`.
func (el *Elaborator) addErr(err *mm0err.Error) *mm0err.Error {
	if err != nil {
		el.errs.Add(err)
	}
	return err
}
