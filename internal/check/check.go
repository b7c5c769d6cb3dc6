// Package check implements bidirectional type checking.
//
// Infer synthesises the type of a term; Check verifies a term against an
// expected type, pushing lambdas through the expected function type and
// deferring everything else to Infer followed by definitional equality.
// Binders are opened with fresh locals recorded in a term.Context owned by
// the call.
package check

import (
	"fmt"

	"frkernel/internal/env"
	"frkernel/internal/inductive"
	"frkernel/internal/kerr"
	"frkernel/internal/reduce"
	"frkernel/internal/source"
	"frkernel/internal/term"
)

type elimKey struct {
	ind source.StringID
	u   term.Universe
}

// Checker types terms against an environment view. Like the engine it
// wraps, it is meant for one goroutine.
type Checker struct {
	a     *term.Arena
	env   env.Reader
	eng   *reduce.Engine
	elims map[elimKey]term.ID
}

func New(a *term.Arena, r env.Reader) *Checker {
	c := &Checker{
		a:     a,
		env:   r,
		eng:   reduce.New(a, r),
		elims: make(map[elimKey]term.ID),
	}
	c.eng.SetIrrelevance(c.irrelevant)
	return c
}

// Engine exposes the reduction engine the checker decides equality with.
func (c *Checker) Engine() *reduce.Engine { return c.eng }

// Whnf reduces t to weak-head normal form.
func (c *Checker) Whnf(t term.ID) term.ID { return c.eng.Whnf(t) }

// DefEq decides definitional equality, proof irrelevance included.
func (c *Checker) DefEq(ctx *term.Context, s, t term.ID) bool {
	return c.eng.DefEq(ctx, s, t)
}

func (c *Checker) name(id source.StringID) string {
	return c.a.Names().MustLookup(id)
}

// Infer returns the type of t in ctx. A nil ctx is the empty context.
func (c *Checker) Infer(ctx *term.Context, t term.ID) (term.ID, error) {
	if ctx == nil {
		ctx = term.NewContext()
	}
	return c.infer(ctx, t)
}

func (c *Checker) infer(ctx *term.Context, t term.ID) (term.ID, error) {
	a := c.a
	n, ok := a.Lookup(t)
	if !ok {
		return term.NoID, kerr.New(kerr.UnboundVariable, "invalid term %d", t)
	}
	switch n.Kind {
	case term.KindVar:
		return term.NoID, kerr.New(kerr.UnboundVariable, "bound variable ^%d escapes its binder", n.Index)
	case term.KindLocal:
		l, ok := ctx.Lookup(t)
		if !ok {
			return term.NoID, kerr.New(kerr.UnboundVariable, "local %s is not in scope", term.Format(a, ctx, t))
		}
		return l.Type, nil
	case term.KindSort:
		if n.Universe() == term.Top {
			return term.NoID, kerr.New(kerr.UniverseError, "Sort %s has no universe above it", n.Universe())
		}
		return a.Sort(n.Universe().Succ()), nil
	case term.KindPi:
		du, err := c.inferUniverse(ctx, n.A)
		if err != nil {
			return term.NoID, err
		}
		var cu term.Universe
		err = c.under(ctx, n.A, func(x term.ID) error {
			var err error
			cu, err = c.inferUniverse(ctx, a.Instantiate(n.B, x))
			return err
		})
		if err != nil {
			return term.NoID, err
		}
		return a.Sort(term.PiUniverse(du, cu)), nil
	case term.KindLam:
		if _, err := c.inferUniverse(ctx, n.A); err != nil {
			return term.NoID, err
		}
		var body term.ID
		err := c.under(ctx, n.A, func(x term.ID) error {
			ty, err := c.infer(ctx, a.Instantiate(n.B, x))
			body = a.Abstract(ty, x)
			return err
		})
		if err != nil {
			return term.NoID, err
		}
		return a.Pi(n.A, body), nil
	case term.KindApp:
		return c.inferApp(ctx, t)
	case term.KindConst:
		entry, ok := c.env.Lookup(n.Name)
		if !ok {
			return term.NoID, kerr.New(kerr.UnboundVariable, "%s is not declared", c.name(n.Name))
		}
		switch entry.Kind {
		case env.EntryUniverse, env.EntryAxiom, env.EntryDefinition:
			return entry.Type, nil
		default:
			return term.NoID, kerr.New(kerr.UnboundVariable, "%s is a %s, not a constant", c.name(n.Name), entry.Kind)
		}
	case term.KindInd:
		ind, err := c.inductive(n.Name)
		if err != nil {
			return term.NoID, err
		}
		return ind.Type, nil
	case term.KindCtor:
		entry, ok := c.env.Lookup(n.Name)
		if !ok || entry.Kind != env.EntryConstructor {
			return term.NoID, kerr.New(kerr.UnknownConstructor, "%s is not a constructor", c.name(n.Name))
		}
		return entry.Type, nil
	case term.KindElim:
		return c.elimType(n.Name, n.Universe())
	case term.KindNat:
		num, ok := c.env.Numerals()
		if !ok {
			return term.NoID, kerr.New(kerr.UnknownInductive, "numeral %d used before numerals are bound", n.Index)
		}
		return a.Ind(num.Inductive), nil
	}
	return term.NoID, kerr.New(kerr.UnboundVariable, "unexpected %s term", n.Kind)
}

// inferApp walks an application spine, checking each argument against the
// domain of the current function type and substituting it into the
// codomain.
func (c *Checker) inferApp(ctx *term.Context, t term.ID) (term.ID, error) {
	a := c.a
	head, args := a.Spine(t)
	fnTy, err := c.infer(ctx, head)
	if err != nil {
		return term.NoID, err
	}
	fn := head
	for _, arg := range args {
		pi := c.eng.Whnf(fnTy)
		pn := a.Node(pi)
		if pn.Kind != term.KindPi {
			return term.NoID, kerr.New(kerr.NotAFunctionType, "%s has type %s and cannot be applied",
				term.Format(a, ctx, fn), term.Format(a, ctx, fnTy))
		}
		if err := c.check(ctx, arg, pn.A); err != nil {
			return term.NoID, err
		}
		fnTy = a.Instantiate(pn.B, arg)
		fn = a.App(fn, arg)
	}
	return fnTy, nil
}

// Check verifies that t has type expected in ctx.
func (c *Checker) Check(ctx *term.Context, t, expected term.ID) error {
	if ctx == nil {
		ctx = term.NewContext()
	}
	return c.check(ctx, t, expected)
}

func (c *Checker) check(ctx *term.Context, t, expected term.ID) error {
	a := c.a
	if n := a.Node(t); n.Kind == term.KindLam {
		if en := a.Node(c.eng.Whnf(expected)); en.Kind == term.KindPi {
			if _, err := c.inferUniverse(ctx, n.A); err != nil {
				return err
			}
			if !c.eng.DefEq(ctx, n.A, en.A) {
				return kerr.Mismatch(a, ctx, en.A, n.A, "lambda binds the wrong domain")
			}
			return c.under(ctx, n.A, func(x term.ID) error {
				return c.check(ctx, a.Instantiate(n.B, x), a.Instantiate(en.B, x))
			})
		}
	}
	inferred, err := c.infer(ctx, t)
	if err != nil {
		return err
	}
	if c.eng.DefEq(ctx, inferred, expected) {
		return nil
	}
	return c.mismatch(ctx, t, expected, inferred)
}

func (c *Checker) mismatch(ctx *term.Context, t, expected, inferred term.ID) error {
	a := c.a
	what := term.Format(a, ctx, t)
	if a.Kind(c.eng.Whnf(expected)) == term.KindSort && a.Kind(c.eng.Whnf(inferred)) == term.KindSort {
		return kerr.UniverseMismatch(a, ctx, expected, inferred, "%s lives in the wrong universe", what)
	}
	return kerr.Mismatch(a, ctx, expected, inferred, "%s has the wrong type", what)
}

// InferUniverse returns the universe u such that t : Sort u, failing with
// UniverseError when t is not a type.
func (c *Checker) InferUniverse(ctx *term.Context, t term.ID) (term.Universe, error) {
	if ctx == nil {
		ctx = term.NewContext()
	}
	return c.inferUniverse(ctx, t)
}

func (c *Checker) inferUniverse(ctx *term.Context, t term.ID) (term.Universe, error) {
	ty, err := c.infer(ctx, t)
	if err != nil {
		return 0, err
	}
	n := c.a.Node(c.eng.Whnf(ty))
	if n.Kind != term.KindSort {
		return 0, kerr.New(kerr.UniverseError, "%s is not a type: it has type %s",
			term.Format(c.a, ctx, t), term.Format(c.a, ctx, ty))
	}
	return n.Universe(), nil
}

func (c *Checker) inductive(name source.StringID) (*env.Inductive, error) {
	entry, ok := c.env.Lookup(name)
	if !ok || entry.Kind != env.EntryInductive {
		return nil, kerr.New(kerr.UnknownInductive, "%s is not an inductive type", c.name(name))
	}
	return entry.Inductive, nil
}

// elimType synthesises, once per inductive and universe, the eliminator's
// type.
func (c *Checker) elimType(name source.StringID, u term.Universe) (term.ID, error) {
	key := elimKey{name, u}
	if ty, ok := c.elims[key]; ok {
		return ty, nil
	}
	ind, err := c.inductive(name)
	if err != nil {
		return term.NoID, err
	}
	if u == term.Top {
		return term.NoID, kerr.New(kerr.UniverseError, "%s cannot be eliminated into the top universe", c.name(name))
	}
	if !inductive.AllowsElim(ind, u) {
		return term.NoID, kerr.New(kerr.UniverseError,
			"proposition %s cannot be eliminated into %s", c.name(name), u)
	}
	ctors := make([]*env.Constructor, 0, len(ind.Ctors))
	for _, cn := range ind.Ctors {
		entry, ok := c.env.Lookup(cn)
		if !ok || entry.Kind != env.EntryConstructor {
			return term.NoID, kerr.New(kerr.UnknownConstructor, "constructor %s of %s is missing", c.name(cn), c.name(name))
		}
		ctors = append(ctors, entry.Constructor)
	}
	ty := inductive.EliminatorType(c.a, ind, ctors, u)
	c.elims[key] = ty
	return ty, nil
}

// under opens a binder of type dom with a fresh local for the duration of f.
func (c *Checker) under(ctx *term.Context, dom term.ID, f func(x term.ID) error) error {
	mark := ctx.Len()
	x := ctx.Push(c.a, fmt.Sprintf("x%d", mark), dom)
	defer ctx.Truncate(mark)
	return f(x)
}

// irrelevant identifies any two proofs of the same proposition.
func (c *Checker) irrelevant(ctx *term.Context, s, t term.ID) bool {
	ts, err := c.infer(ctx, s)
	if err != nil {
		return false
	}
	if u, err := c.inferUniverse(ctx, ts); err != nil || !u.IsProp() {
		return false
	}
	tt, err := c.infer(ctx, t)
	if err != nil {
		return false
	}
	return c.eng.DefEq(ctx, ts, tt)
}
