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
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/monocodus-demonstrations/mm0/env"
	"github.com/monocodus-demonstrations/mm0/ids"
	"github.com/monocodus-demonstrations/mm0/lctx"
	"github.com/monocodus-demonstrations/mm0/lisp"
	"github.com/monocodus-demonstrations/mm0/mm0err"
	"github.com/monocodus-demonstrations/mm0/span"
)

// PollInterval is how often, in evaluation steps, the engine checks for
// cancellation or a deadline (spec §5 "cancellation and timeout are
// polled rather than preemptive, checked every ~256 reduction steps").
const PollInterval = 256

// DefaultMaxDepth caps non-tail recursion (spec §5 "a configurable
// recursion depth cap guards against native stack overflow from deeply
// nested non-tail evaluation"); tail calls bypass this entirely via the
// trampoline in eval.
const DefaultMaxDepth = 4096

// State tags a frame pushed while a builtin is running a sub-evaluation
// that spec §4.F gives its own named continuation state (MapProc, Refine,
// Refines, Focus), so a mid-evaluation backtrace can report which of
// these the evaluator is nested inside even though none of them drive the
// trampoline directly (eval's Ir loop and Apply's recursion already serve
// that role; see eval's doc comment). Eval/Ret/App/Match/Pattern are not
// tagged separately since the Go call stack through eval/Apply already
// reflects them one-to-one.
type State uint8

const (
	StateMapProc State = iota
	StateRefine
	StateRefines
	StateFocus
)

func (s State) String() string {
	switch s {
	case StateMapProc:
		return "map-proc"
	case StateRefine:
		return "refine"
	case StateRefines:
		return "refines"
	case StateFocus:
		return "focus"
	default:
		return "state"
	}
}

// Frame is one entry of the evaluator's backtrace of named continuation
// states (spec §4.F states as a "serializable" stack).
type Frame struct {
	State State
	Span  span.File
}

// BuiltinFunc implements one builtin procedure (spec §4.F "a table of
// builtins, keyed by atom, each with an arity spec").
type BuiltinFunc func(ev *Evaluator, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error)

type builtinEntry struct {
	fn    BuiltinFunc
	arity lisp.Arity
}

// specialForms caches the AtomIDs of every reserved syntactic keyword, so
// compile need not call InternAtom on every recognition check.
type specialForms struct {
	quote, if_, fn, define, setBang, begin, and, or, match, underscore, question ids.AtomID
}

// Evaluator is the tactic-script state machine (spec §4.F). One Evaluator
// is built per elaboration session and reused across every top-level `do`
// block and theorem proof script in that session.
type Evaluator struct {
	Env  *env.Environment
	Lctx *lctx.LocalContext

	topEnv *lisp.Env
	log    zerolog.Logger

	builtins map[string]builtinEntry
	forms    specialForms

	maxDepth int
	depth    int
	steps    uint64

	ctx      context.Context
	deadline time.Time

	reportLevel mm0err.Level
	checkProofs bool

	refineExtraArgs lisp.Value
	pendingCont     *matchContinuation

	frames []Frame

	declKinds struct {
		sortAtom, termAtom, thmAtom ids.AtomID
	}
	dummySeq int
}

// New builds an Evaluator bound to e and lc, logging through log. ctx
// governs cancellation; a zero deadline means no per-evaluation timeout
// (spec §5 "Resource limits ... configurable stack depth, step budget,
// and wall-clock deadline").
func New(e *env.Environment, lc *lctx.LocalContext, log zerolog.Logger, ctx context.Context, deadline time.Time) *Evaluator {
	if ctx == nil {
		ctx = context.Background()
	}
	ev := &Evaluator{
		Env:         e,
		Lctx:        lc,
		topEnv:      lisp.NewEnv(),
		log:         log.With().Str("component", "lisp/eval.Evaluator").Logger(),
		builtins:    make(map[string]builtinEntry),
		maxDepth:    DefaultMaxDepth,
		ctx:         ctx,
		deadline:    deadline,
		reportLevel: mm0err.LevelInfo,
		checkProofs: true,
	}
	ev.forms = specialForms{
		quote:      e.InternAtom("quote"),
		if_:        e.InternAtom("if"),
		fn:         e.InternAtom("fn"),
		define:     e.InternAtom("def"),
		setBang:    e.InternAtom("set!"),
		begin:      e.InternAtom("begin"),
		and:        e.InternAtom("and"),
		or:         e.InternAtom("or"),
		match:      e.InternAtom("match"),
		underscore: e.InternAtom("_"),
		question:   e.InternAtom("?"),
	}
	ev.declKinds.sortAtom = e.InternAtom("sort")
	ev.declKinds.termAtom = e.InternAtom("term")
	ev.declKinds.thmAtom = e.InternAtom("thm")
	registerBuiltins(ev)
	return ev
}

// SetMaxDepth overrides the non-tail recursion cap, e.g. from config.
func (ev *Evaluator) SetMaxDepth(n int) { ev.maxDepth = n }

// SetReportLevel and SetCheckProofs implement the `set-reporting` and
// proof-checking-toggle builtins' effect on evaluator state (spec §4.F).
func (ev *Evaluator) SetReportLevel(l mm0err.Level) { ev.reportLevel = l }
func (ev *Evaluator) ReportLevel() mm0err.Level     { return ev.reportLevel }
func (ev *Evaluator) SetCheckProofs(b bool)         { ev.checkProofs = b }
func (ev *Evaluator) CheckProofs() bool             { return ev.checkProofs }

// TopEnv returns the global lexical scope top-level `def` forms bind into.
func (ev *Evaluator) TopEnv() *lisp.Env { return ev.topEnv }

// pushFrame and popFrame maintain the named-state backtrace around a
// MapProc/Refine/Refines/Focus builtin's sub-evaluation (spec §4.F).
func (ev *Evaluator) pushFrame(s State, sp span.File) { ev.frames = append(ev.frames, Frame{State: s, Span: sp}) }
func (ev *Evaluator) popFrame()                       { ev.frames = ev.frames[:len(ev.frames)-1] }

// Frames returns the current named-state backtrace, outermost first.
func (ev *Evaluator) Frames() []Frame { return append([]Frame(nil), ev.frames...) }

// RegisterBuiltin adds or overrides a builtin binding under name,
// auto-binding it into the global scope immediately (spec.md Open
// Question #3: builtins are bound automatically, not lazily on first use;
// a user `def` of the same atom afterward replaces the global binding.
// get-decl/add-decl look up declarations in the environment and never
// consult these bindings, so such a redefinition does not affect them).
func (ev *Evaluator) RegisterBuiltin(name string, arity lisp.Arity, fn BuiltinFunc) {
	ev.builtins[name] = builtinEntry{fn: fn, arity: arity}
	atom := ev.Env.InternAtom(name)
	ev.topEnv.Bind(atom, lisp.Builtin(name, arity))
}

// EvalTopLevel compiles and evaluates one top-level form (a `do` block
// entry, or a theorem's tactic proof script) against the global scope.
func (ev *Evaluator) EvalTopLevel(v lisp.Value) (lisp.Value, *mm0err.Error) {
	ir, err := ev.compile(v)
	if err != nil {
		return lisp.Value{}, err
	}
	return ev.eval(ir, ev.topEnv)
}

func truthy(v lisp.Value) bool {
	v, _ = v.Unwrap()
	return !(v.Kind() == lisp.KindBool && !v.BoolVal())
}

// pollCancellation is checked every PollInterval steps rather than on
// every reduction, keeping the hot path free of a context read (spec §5).
func (ev *Evaluator) pollCancellation(sp span.File) *mm0err.Error {
	select {
	case <-ev.ctx.Done():
		return mm0err.New(mm0err.ErrCancelled, sp, "elaboration cancelled")
	default:
	}
	if !ev.deadline.IsZero() && time.Now().After(ev.deadline) {
		return mm0err.New(mm0err.ErrTimeout, sp, "tactic evaluation exceeded its deadline")
	}
	return nil
}

// eval is the trampoline at the heart of the evaluator: a single Go stack
// frame that loops as long as the current node is in tail position,
// reassigning cur/curEnv instead of recursing (spec §4.F "tail calls reuse
// the Ret frame rather than growing the stack"), and recurses into itself
// only for genuinely non-tail subexpressions (an if's condition, an
// application's operands, all but the last form of a begin). This mirrors
// the teacher's hcl/eval engine: a position/stack pair walked by a loop
// instead of pushed onto Go's call stack, generalized here from an HCL
// token tape to a compiled Ir tree.
func (ev *Evaluator) eval(cur *Ir, curEnv *lisp.Env) (lisp.Value, *mm0err.Error) {
	ev.depth++
	if ev.depth > ev.maxDepth {
		ev.depth--
		return lisp.Value{}, mm0err.New(mm0err.ErrStackOverflow, cur.span, "tactic evaluation exceeded maximum recursion depth %d", ev.maxDepth)
	}
	defer func() { ev.depth-- }()

	for {
		ev.steps++
		if ev.steps%PollInterval == 0 {
			if err := ev.pollCancellation(cur.span); err != nil {
				return lisp.Value{}, err
			}
		}

		switch cur.kind {
		case IrConst:
			return cur.val, nil

		case IrVar:
			if v, ok := curEnv.Lookup(cur.atom); ok {
				return v, nil
			}
			return lisp.Value{}, mm0err.New(mm0err.ErrUnknownAtom, cur.span, "unbound variable %q", ev.Env.AtomName(cur.atom))

		case IrIf:
			cv, err := ev.eval(cur.cond, curEnv)
			if err != nil {
				return lisp.Value{}, err
			}
			if truthy(cv) {
				cur = cur.then
			} else if cur.els != nil {
				cur = cur.els
			} else {
				return lisp.Undef, nil
			}
			continue

		case IrBegin:
			if len(cur.args) == 0 {
				return lisp.Undef, nil
			}
			for _, sub := range cur.args[:len(cur.args)-1] {
				if _, err := ev.eval(sub, curEnv); err != nil {
					return lisp.Value{}, err
				}
			}
			cur = cur.args[len(cur.args)-1]
			continue

		case IrAnd:
			if len(cur.args) == 0 {
				return lisp.Bool(true), nil
			}
			for _, sub := range cur.args[:len(cur.args)-1] {
				v, err := ev.eval(sub, curEnv)
				if err != nil {
					return lisp.Value{}, err
				}
				if !truthy(v) {
					return v, nil
				}
			}
			cur = cur.args[len(cur.args)-1]
			continue

		case IrOr:
			if len(cur.args) == 0 {
				return lisp.Bool(false), nil
			}
			for _, sub := range cur.args[:len(cur.args)-1] {
				v, err := ev.eval(sub, curEnv)
				if err != nil {
					return lisp.Value{}, err
				}
				if truthy(v) {
					return v, nil
				}
			}
			cur = cur.args[len(cur.args)-1]
			continue

		case IrDef:
			v, err := ev.eval(cur.body[0], curEnv)
			if err != nil {
				return lisp.Value{}, err
			}
			ev.Env.AtomData(cur.atom).Bind(cur.span, v)
			ev.topEnv.Bind(cur.atom, v)
			return v, nil

		case IrSet:
			v, err := ev.eval(cur.body[0], curEnv)
			if err != nil {
				return lisp.Value{}, err
			}
			if !curEnv.Assign(cur.atom, v) {
				return lisp.Value{}, mm0err.New(mm0err.ErrUnknownAtom, cur.span, "unbound variable %q", ev.Env.AtomName(cur.atom))
			}
			return v, nil

		case IrLambda:
			return lisp.Lambda(cur.params, cur.rawBody, curEnv, cur.span), nil

		case IrMatch:
			scrutinee, err := ev.eval(cur.scrutinee, curEnv)
			if err != nil {
				return lisp.Value{}, err
			}
			body, menv, rest, ok, err := ev.findMatch(scrutinee, cur.branches, curEnv, cur.span)
			if err != nil {
				return lisp.Value{}, err
			}
			if !ok {
				return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, cur.span, "no matching pattern")
			}
			ev.pendingCont = &matchContinuation{ev: ev, env: curEnv, remaining: rest, sp: cur.span}
			cur, curEnv = body, menv
			continue

		case IrApp:
			headVal, err := ev.eval(cur.head, curEnv)
			if err != nil {
				return lisp.Value{}, err
			}
			args := make([]lisp.Value, len(cur.args))
			for i, a := range cur.args {
				args[i], err = ev.eval(a, curEnv)
				if err != nil {
					return lisp.Value{}, err
				}
			}
			headVal, _ = headVal.Unwrap()
			if !headVal.IsProc() {
				return lisp.Value{}, mm0err.New(mm0err.ErrNotCallable, cur.span, "value is not callable")
			}
			p := headVal.ProcVal()
			if !p.Arity().Accepts(len(args)) {
				return lisp.Value{}, mm0err.New(mm0err.ErrArgCount, cur.span, "%s expects %s arguments, got %d", p.Name(), arityDesc(p.Arity()), len(args))
			}
			if p.Kind() == lisp.ProcLambda {
				child, aerr := bindParams(p.Params(), args, p.ClosureEnv(), cur.span)
				if aerr != nil {
					return lisp.Value{}, aerr
				}
				bodyIr, cerr := ev.compile(p.Body())
				if cerr != nil {
					return lisp.Value{}, cerr
				}
				cur, curEnv = bodyIr, child
				continue
			}
			return ev.applyNonLambda(p, args, cur.span)
		}
		return lisp.Value{}, mm0err.New(mm0err.ErrTypeMismatch, cur.span, "malformed compiled expression")
	}
}

// Apply invokes proc with args from outside the trampoline (builtins like
// `map`/`async`/`focus` that need to call back into the evaluator). It is
// recursive rather than tail-looped, which is acceptable here since these
// are leaf builtin calls, not user tail recursion.
func (ev *Evaluator) Apply(proc lisp.Value, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	proc, _ = proc.Unwrap()
	if !proc.IsProc() {
		return lisp.Value{}, mm0err.New(mm0err.ErrNotCallable, sp, "value is not callable")
	}
	p := proc.ProcVal()
	if !p.Arity().Accepts(len(args)) {
		return lisp.Value{}, mm0err.New(mm0err.ErrArgCount, sp, "%s expects %s arguments, got %d", p.Name(), arityDesc(p.Arity()), len(args))
	}
	if p.Kind() == lisp.ProcLambda {
		child, err := bindParams(p.Params(), args, p.ClosureEnv(), sp)
		if err != nil {
			return lisp.Value{}, err
		}
		bodyIr, err := ev.compile(p.Body())
		if err != nil {
			return lisp.Value{}, err
		}
		return ev.eval(bodyIr, child)
	}
	return ev.applyNonLambda(p, args, sp)
}

func (ev *Evaluator) applyNonLambda(p *lisp.Proc, args []lisp.Value, sp span.File) (lisp.Value, *mm0err.Error) {
	switch p.Kind() {
	case lisp.ProcBuiltin:
		entry, ok := ev.builtins[p.Name()]
		if !ok {
			return lisp.Value{}, mm0err.New(mm0err.ErrUnknownAtom, sp, "unknown builtin %q", p.Name())
		}
		return entry.fn(ev, args, sp)
	case lisp.ProcContinuation:
		return p.Continuation().Invoke(args)
	case lisp.ProcProofThunk:
		if len(args) != 0 {
			return lisp.Value{}, mm0err.New(mm0err.ErrArgCount, sp, "proof thunk takes no arguments")
		}
		return p.Thunk().Force()
	case lisp.ProcRefineCallback:
		return p.Callback().Call(args)
	default:
		return lisp.Value{}, mm0err.New(mm0err.ErrNotCallable, sp, "value is not callable")
	}
}

func arityDesc(a lisp.Arity) string {
	if a.AtLeast {
		return "at least " + strconv.Itoa(a.N)
	}
	return strconv.Itoa(a.N)
}

// bindParams binds args into a fresh child of parent according to params
// (a proper list of atoms, or a dotted list whose tail atom collects the
// variadic remainder), per lisp.Lambda's formal parameter convention.
func bindParams(params lisp.Value, args []lisp.Value, parent *lisp.Env, sp span.File) (*lisp.Env, *mm0err.Error) {
	child := parent.Child()
	if params.Kind() == lisp.KindDottedList {
		names := params.ListVal()
		if len(args) < len(names) {
			return nil, mm0err.New(mm0err.ErrArgCount, sp, "expected at least %d arguments, got %d", len(names), len(args))
		}
		for i, n := range names {
			child.Bind(n.AtomID(), args[i])
		}
		child.Bind(params.Tail().AtomID(), lisp.List(args[len(names):]...))
		return child, nil
	}
	names := params.ListVal()
	if len(args) != len(names) {
		return nil, mm0err.New(mm0err.ErrArgCount, sp, "expected %d arguments, got %d", len(names), len(args))
	}
	for i, n := range names {
		child.Bind(n.AtomID(), args[i])
	}
	return child, nil
}

// findMatch returns the first branch whose pattern matches scrutinee,
// along with the bound child environment and the branches after it (for a
// continuation captured inside its body), without evaluating the body
// itself: the caller splices (body, env) back into the trampoline so a
// tail-position match arm stays tail-called (spec §4.F "match ... the
// chosen arm's body is itself in tail position").
func (ev *Evaluator) findMatch(scrutinee lisp.Value, branches []MatchBranch, env *lisp.Env, sp span.File) (body *Ir, menv *lisp.Env, rest []MatchBranch, ok bool, err *mm0err.Error) {
	for i, br := range branches {
		b := &bindings{}
		matched, eerr := matchPattern(ev, br.Pattern, scrutinee, env, b)
		if eerr != nil {
			return nil, nil, nil, false, eerr
		}
		if !matched {
			continue
		}
		child := env.Child()
		b.apply(child)
		return br.Body, child, branches[i+1:], true, nil
	}
	_ = sp
	return nil, nil, nil, false, nil
}
