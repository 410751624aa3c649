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

// Package dedup is the hash-cons arena shared by expression and proof
// elaboration (spec §4.D). It structurally deduplicates the hash nodes a
// caller builds while walking a lisp value, tracking which entries end up
// referenced more than once so the final build pass can emit those as
// heap references instead of inlining them repeatedly.
//
// H is a caller-supplied hash-node type (term.ExprHash or a similar
// proof-side type). Because H can embed variable-length argument slices,
// it is not itself `comparable`, so deduplication keys off a caller
// supplied canonical string form rather than using H as a Go map key
// directly (stack.S's getter-over-private-field shape informs the
// Dedup/entry split below, though the hashing problem itself has no
// analog in the teacher).
package dedup

// entry is one arena slot: the hash node itself, whether it has been
// referenced more than once, and its bound-variable dependency bitset.
type entry[H any] struct {
	node   H
	shared bool
	deps   uint64
	taken  bool // build() bookkeeping: an inline value may only be taken once
}

// Dedup is a hash-cons arena of nodes of type H.
type Dedup[H any] struct {
	keyOf func(H) string

	byHash map[string]int
	byPtr  map[any]int // soft pointer-identity cache, see Add
	items  []entry[H]

	bv uint64 // next unused bound-variable dependency bit
}

// New creates an empty arena. keyOf must produce identical strings for
// structurally identical nodes and distinct strings otherwise; it is the
// caller's canonicalization of H (spec §4.D "a map hash(H) -> index").
func New[H any](keyOf func(H) string) *Dedup[H] {
	return &Dedup[H]{
		keyOf:  keyOf,
		byHash: make(map[string]int),
		byPtr:  make(map[any]int),
	}
}

// NewWithArgs seeds the arena with one Ref(i) hash per formal argument
// (spec §4.D "new(args) seeds the arena with one Ref(i) per formal
// argument, each marked shared"). refOf builds the Ref(i) hash node for
// slot i; deps gives each argument's own dependency bitset (the singleton
// bound-variable bit for a bound argument, or its declared deps for a
// regular one). The returned arena's bv counter starts just past the
// highest bit any bound argument occupies, ready for NewDummyBit.
func NewWithArgs[H any](keyOf func(H) string, refOf func(i int) H, deps []uint64) *Dedup[H] {
	d := New(keyOf)
	for i, dep := range deps {
		idx := d.AddDirect(refOf(i))
		d.items[idx].shared = true
		d.items[idx].deps = dep
		if dep != 0 && dep&(dep-1) == 0 && dep >= d.bv {
			d.bv = dep << 1
		}
	}
	if d.bv == 0 {
		d.bv = 1
	}
	return d
}

// NewDummyBit mints a fresh, unique dependency bit for a newly introduced
// dummy variable (spec §4.D "Dummy -> a fresh bit (bv, then bv *= 2)").
func (d *Dedup[H]) NewDummyBit() uint64 {
	bit := d.bv
	d.bv *= 2
	if d.bv == 0 {
		d.bv = 1 << 63
	}
	return bit
}

// Len reports the number of distinct entries in the arena.
func (d *Dedup[H]) Len() int { return len(d.items) }

// Node returns the hash node stored at index i.
func (d *Dedup[H]) Node(i int) H { return d.items[i].node }

// Deps returns the dependency bitset recorded for index i.
func (d *Dedup[H]) Deps(i int) uint64 { return d.items[i].deps }

// IsShared reports whether index i has been referenced more than once.
func (d *Dedup[H]) IsShared(i int) bool { return d.items[i].shared }

// AddDirect inserts h if absent; if an identical node is already present,
// it is marked shared and its existing index is returned (spec §4.D
// "add_direct(h): insert if absent; if present, mark shared and return
// existing index").
func (d *Dedup[H]) AddDirect(h H) int {
	key := d.keyOf(h)
	if i, ok := d.byHash[key]; ok {
		d.items[i].shared = true
		return i
	}
	i := len(d.items)
	d.items = append(d.items, entry[H]{node: h})
	d.byHash[key] = i
	return i
}

// SetDeps records the dependency bitset for the entry at index i, which
// may be any existing entry; callers compute deps from a hash node's
// already-deduped children, which requires the child indices AddDirect
// returned, so this is a separate step rather than a parameter to
// AddDirect.
func (d *Dedup[H]) SetDeps(i int, deps uint64) { d.items[i].deps = deps }

// SetNode overwrites the hash node at index i with a replacement,
// keeping the index and sharing/deps bookkeeping intact. This backfills
// a placeholder entry reserved before its final content was known (spec
// §4.E: an implicitly-introduced dummy variable gets its arena slot at
// first sight in the body, but its committed sort is only known once
// dummy finalization has walked the whole body).
func (d *Dedup[H]) SetNode(i int, h H) { d.items[i].node = h }

// Add is AddDirect plus a pointer-identity cache record keyed on ptr, a
// fast path for repeated dedup calls against the same lisp subtree that
// skips re-traversal and re-hashing on a cache hit (spec §4.D "a
// pointer-identity map lisp-value-pointer -> index ... a soft cache,
// correct even if entries go stale").
func (d *Dedup[H]) Add(ptr any, h H) int {
	i := d.AddDirect(h)
	if ptr != nil {
		d.byPtr[ptr] = i
	}
	return i
}

// Lookup consults the pointer-identity cache for ptr. A miss (ok==false)
// means the caller must build the hash node itself, normally via a
// type-specific from-lisp conversion (spec §4.D "dedup(nh, lisp-value):
// pointer-cache lookup; on miss, build the hash ...").
func (d *Dedup[H]) Lookup(ptr any) (idx int, ok bool) {
	if ptr == nil {
		return 0, false
	}
	idx, ok = d.byPtr[ptr]
	return idx, ok
}

// MapInj builds a new arena of type T from an injective mapping f applied
// to every entry of d, reusing each entry's shared flag and deps (spec
// §4.D "map_inj(f): create a new Dedup<T> from an injective hash mapping,
// reusing sharing flags and deps"). keyOf is the key function for the new
// arena's hash type T.
func MapInj[H, T any](d *Dedup[H], keyOf func(T) string, f func(H) T) *Dedup[T] {
	out := &Dedup[T]{
		keyOf:  keyOf,
		byHash: make(map[string]int, len(d.items)),
		items:  make([]entry[T], len(d.items)),
		bv:     d.bv,
	}
	for i, e := range d.items {
		mapped := f(e.node)
		out.items[i] = entry[T]{node: mapped, shared: e.shared, deps: e.deps}
		out.byHash[keyOf(mapped)] = i
	}
	return out
}

// Built is the result of Build: Val holds one entry per arena slot in
// index order (a Ref into Heap for a shared entry, the node itself
// materialized inline otherwise), and Heap holds the materialized form of
// every shared entry, indexed by heap position (spec §4.D "build(dedup)
// -> (val[], heap[])").
type Built[M any] struct {
	Val  []M
	Heap []M
}

// Build performs the single linear pass described in spec §4.D. Arena
// entries are visited in index order, so by the time entry i is
// materialized, every index it could reference (an earlier argument or
// subterm) has already been built; mk receives the raw node plus the
// slice of already-built values (indexed exactly like the arena, i.e.
// built[j] is only valid for j < i) and is responsible for resolving
// whatever child indices H encodes into built[...] lookups. Taking
// built[j] for a non-shared j more than once across all of Build's mk
// calls is a programmer error in the caller's H encoding (spec §4.D
// "Taking an inline value twice is a programmer error") — Build does not
// police this since it does not know how mk interprets H's children.
//
// refOf builds the Ref(heapIndex) value of type M standing in for a
// shared entry wherever it is referenced from a later slot.
func Build[H, M any](d *Dedup[H], mk func(h H, built []M) M, refOf func(heapIndex int) M) Built[M] {
	built := make([]M, len(d.items))
	var heap []M

	for i, e := range d.items {
		m := mk(e.node, built[:i])
		if e.shared {
			heapIdx := len(heap)
			heap = append(heap, m)
			built[i] = refOf(heapIdx)
		} else {
			built[i] = m
		}
	}
	return Built[M]{Val: built, Heap: heap}
}
