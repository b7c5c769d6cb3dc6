package reduce

import "frkernel/internal/term"

// DefEq decides definitional equality of s and t in ctx.
//
// Both sides are first reduced without delta so that equal applications of
// the same definition can be compared argument-wise before anything is
// unfolded; only then are they reduced fully and compared structurally.
// Binders are compared under a fresh local pushed onto ctx, which is
// restored before returning. Sorts are equal only when identical.
func (e *Engine) DefEq(ctx *term.Context, s, t term.ID) bool {
	if s == t {
		return true
	}
	if ctx == nil {
		ctx = term.NewContext()
	}
	return e.defeq(ctx, s, t)
}

func (e *Engine) defeq(ctx *term.Context, s, t term.ID) bool {
	if s == t {
		return true
	}
	s, t = e.WhnfCore(s), e.WhnfCore(t)
	if s == t {
		return true
	}
	if e.sameDefinitionApp(ctx, s, t) {
		return true
	}
	s, t = e.Whnf(s), e.Whnf(t)
	if s == t {
		return true
	}
	if e.structural(ctx, s, t) {
		return true
	}
	return e.irrel != nil && e.irrel(ctx, s, t)
}

// sameDefinitionApp compares two applications of the same name
// argument-wise, without unfolding the name.
func (e *Engine) sameDefinitionApp(ctx *term.Context, s, t term.ID) bool {
	a := e.arena
	hs, as := a.Spine(s)
	ht, bs := a.Spine(t)
	if hs != ht || len(as) != len(bs) || len(as) == 0 || a.Kind(hs) != term.KindConst {
		return false
	}
	return e.argsEqual(ctx, as, bs)
}

func (e *Engine) argsEqual(ctx *term.Context, as, bs []term.ID) bool {
	for i := range as {
		if !e.defeq(ctx, as[i], bs[i]) {
			return false
		}
	}
	return true
}

// structural compares two weak-head normal forms.
func (e *Engine) structural(ctx *term.Context, s, t term.ID) bool {
	a := e.arena
	sn, tn := a.Node(s), a.Node(t)

	switch {
	case sn.Kind == term.KindSort || tn.Kind == term.KindSort:
		return false // distinct IDs, so distinct universes or a non-sort
	case sn.Kind.Binder() && sn.Kind == tn.Kind:
		if !e.defeq(ctx, sn.A, tn.A) {
			return false
		}
		return e.under(ctx, sn.A, func(x term.ID) bool {
			return e.defeq(ctx, a.Instantiate(sn.B, x), a.Instantiate(tn.B, x))
		})
	case sn.Kind == term.KindLam:
		return e.eta(ctx, sn, t)
	case tn.Kind == term.KindLam:
		return e.eta(ctx, tn, s)
	case sn.Kind == term.KindNat && tn.Kind == term.KindNat:
		return false
	case sn.Kind == term.KindNat:
		return e.numeral(ctx, s, t)
	case tn.Kind == term.KindNat:
		return e.numeral(ctx, t, s)
	}

	hs, as := a.Spine(s)
	ht, bs := a.Spine(t)
	if hs != ht || len(as) != len(bs) {
		return false
	}
	switch a.Kind(hs) {
	case term.KindPi, term.KindLam:
		return false
	}
	return e.argsEqual(ctx, as, bs)
}

// eta compares fn(x: A) => b with a non-lambda f as b against f x.
func (e *Engine) eta(ctx *term.Context, lam term.Node, f term.ID) bool {
	a := e.arena
	return e.under(ctx, lam.A, func(x term.ID) bool {
		return e.defeq(ctx, a.Instantiate(lam.B, x), a.App(f, x))
	})
}

// numeral compares a literal with a term that is not a literal by
// unfolding one layer of the literal.
func (e *Engine) numeral(ctx *term.Context, lit, other term.ID) bool {
	head, _ := e.arena.Spine(other)
	if e.arena.Kind(head) != term.KindCtor {
		return false
	}
	step, ok := e.NumeralStep(lit)
	if !ok {
		return false
	}
	return e.defeq(ctx, step, other)
}

// under runs f with a fresh local of type dom pushed onto ctx.
func (e *Engine) under(ctx *term.Context, dom term.ID, f func(x term.ID) bool) bool {
	mark := ctx.Len()
	x := ctx.Push(e.arena, "x", dom)
	defer ctx.Truncate(mark)
	return f(x)
}
