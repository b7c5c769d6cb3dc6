// Package reduce computes weak-head normal forms and decides definitional
// equality.
//
// Reduction is lazy: Whnf exposes the head of a term and stops. The rules
// are beta, delta (definitions and universe aliases), iota (an eliminator
// applied to a constructor) and numeral expansion (a literal seen by an
// eliminator or compared against a constructor form steps to zero or
// succ of its predecessor).
package reduce

import (
	"frkernel/internal/env"
	"frkernel/internal/source"
	"frkernel/internal/term"
)

// Irrelevance decides proof irrelevance: it reports whether a and b are
// both proofs of the same proposition. The checker supplies it; the engine
// alone has no notion of typing.
type Irrelevance func(ctx *term.Context, a, b term.ID) bool

// Engine reduces terms against an environment view. It caches weak-head
// normal forms and is not safe for concurrent use; create one per check.
type Engine struct {
	arena *term.Arena
	env   env.Reader
	irrel Irrelevance
	whnf  map[term.ID]term.ID
	core  map[term.ID]term.ID
	Stats Stats
}

// Stats counts reduction steps, for tracing.
type Stats struct {
	Beta, Delta, Iota, Numeral uint64
	CacheHits                  uint64
}

func New(a *term.Arena, r env.Reader) *Engine {
	return &Engine{
		arena: a,
		env:   r,
		whnf:  make(map[term.ID]term.ID, 64),
		core:  make(map[term.ID]term.ID, 64),
	}
}

// SetIrrelevance installs the proof-irrelevance hook used by DefEq.
func (e *Engine) SetIrrelevance(f Irrelevance) { e.irrel = f }

// Arena returns the arena terms live in.
func (e *Engine) Arena() *term.Arena { return e.arena }

// Whnf reduces t until its head is neither a redex nor an unfoldable name.
func (e *Engine) Whnf(t term.ID) term.ID {
	return e.reduce(t, true)
}

// WhnfCore is Whnf without delta: definitions stay folded.
func (e *Engine) WhnfCore(t term.ID) term.ID {
	return e.reduce(t, false)
}

func (e *Engine) reduce(t term.ID, delta bool) term.ID {
	cache := e.core
	if delta {
		cache = e.whnf
	}
	if out, ok := cache[t]; ok {
		e.Stats.CacheHits++
		return out
	}
	out := t
	for {
		next, ok := e.step(out, delta)
		if !ok {
			break
		}
		out = next
	}
	cache[t] = out
	return out
}

// step performs one head reduction.
func (e *Engine) step(t term.ID, delta bool) (term.ID, bool) {
	head, args := e.arena.Spine(t)
	n := e.arena.Node(head)
	switch n.Kind {
	case term.KindLam:
		if len(args) == 0 {
			return t, false
		}
		e.Stats.Beta++
		body := e.arena.Instantiate(n.B, args[0])
		return e.arena.Apps(body, args[1:]...), true
	case term.KindConst:
		if !delta {
			return t, false
		}
		entry, ok := e.env.Lookup(n.Name)
		if !ok || !entry.Unfoldable() {
			return t, false
		}
		e.Stats.Delta++
		return e.arena.Apps(entry.Value, args...), true
	case term.KindElim:
		return e.iota(head, n.Name, args, delta)
	}
	return t, false
}

// NumeralStep unfolds one layer of a numeral literal: 0 to zero, n+1 to
// succ n. It fails when numerals are unbound or t is not a literal.
func (e *Engine) NumeralStep(t term.ID) (term.ID, bool) {
	n := e.arena.Node(t)
	if n.Kind != term.KindNat {
		return t, false
	}
	num, ok := e.env.Numerals()
	if !ok {
		return t, false
	}
	e.Stats.Numeral++
	if n.Index == 0 {
		return e.arena.Ctor(num.Zero), true
	}
	return e.arena.App(e.arena.Ctor(num.Succ), e.arena.Nat(n.Index-1)), true
}

// inductive looks up the description of an inductive by name.
func (e *Engine) inductive(name source.StringID) (*env.Inductive, bool) {
	entry, ok := e.env.Lookup(name)
	if !ok || entry.Kind != env.EntryInductive {
		return nil, false
	}
	return entry.Inductive, true
}

func (e *Engine) constructor(name source.StringID) (*env.Constructor, bool) {
	entry, ok := e.env.Lookup(name)
	if !ok || entry.Kind != env.EntryConstructor {
		return nil, false
	}
	return entry.Constructor, true
}
