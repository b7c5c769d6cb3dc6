package inductive

import (
	"slices"

	"frkernel/internal/env"
	"frkernel/internal/term"
)

// EliminatorType builds the type of the eliminator of ind into u:
//
//	Fn(params...,
//	   motive: Fn(indices..., x: I params indices) -> Sort u,
//	   minor_c...,
//	   indices..., x: I params indices) -> motive indices x
//
// The minor premise of constructor c takes c's fields, then one induction
// hypothesis per recursive field, and returns motive idx_c (c params fields).
// A recursive field f: Fn(ys...) -> I params idx has the hypothesis
// Fn(ys...) -> motive idx (f ys...).
func EliminatorType(a *term.Arena, ind *env.Inductive, ctors []*env.Constructor, u term.Universe) term.ID {
	self := a.Ind(ind.Name)
	var xs, doms []term.ID
	bind := func(dom term.ID) term.ID {
		x := a.FreshLocal()
		xs = append(xs, x)
		doms = append(doms, dom)
		return x
	}

	t := ind.Type
	params := make([]term.ID, 0, ind.NumParams)
	for range ind.NumParams {
		n := a.Node(t)
		x := bind(n.A)
		params = append(params, x)
		t = a.Instantiate(n.B, x)
	}
	indexTele := t // Fn(indices...) -> Sort

	motive := bind(motiveType(a, self, params, indexTele, ind.NumIndices, u))
	for _, c := range ctors {
		bind(minorType(a, c, params, motive))
	}
	is, idoms, _ := open(a, indexTele, ind.NumIndices)
	xs = append(xs, is...)
	doms = append(doms, idoms...)
	major := bind(a.Apps(self, slices.Concat(params, is)...))
	body := a.Apps(motive, append(slices.Clone(is), major)...)
	return a.Close(term.KindPi, body, xs, doms)
}

// MotiveType is the type of motives of ind into u once params are fixed.
// Exposed for callers that build eliminator applications.
func MotiveType(a *term.Arena, ind *env.Inductive, params []term.ID, u term.Universe) term.ID {
	t := ind.Type
	for _, p := range params {
		t = a.Instantiate(a.Node(t).B, p)
	}
	return motiveType(a, a.Ind(ind.Name), params, t, ind.NumIndices, u)
}

func motiveType(a *term.Arena, self term.ID, params []term.ID, indexTele term.ID, k int, u term.Universe) term.ID {
	is, idoms, _ := open(a, indexTele, k)
	x := a.FreshLocal()
	xdom := a.Apps(self, slices.Concat(params, is)...)
	return a.Close(term.KindPi, a.Sort(u), append(is, x), append(idoms, xdom))
}

func minorType(a *term.Arena, c *env.Constructor, params []term.ID, motive term.ID) term.ID {
	np := len(params)
	t := c.Type
	for _, p := range params {
		t = a.Instantiate(a.Node(t).B, p)
	}
	var fs, fdoms, ihs, ihdoms []term.ID
	for _, field := range c.Fields {
		n := a.Node(t)
		f := a.FreshLocal()
		fs = append(fs, f)
		fdoms = append(fdoms, n.A)
		if field.Recursive {
			ys, ydoms, cod := open(a, n.A, -1)
			_, cargs := a.Spine(cod)
			target := a.Apps(motive, cargs[np:]...)
			target = a.App(target, a.Apps(f, ys...))
			ihs = append(ihs, a.FreshLocal())
			ihdoms = append(ihdoms, a.Close(term.KindPi, target, ys, ydoms))
		}
		t = a.Instantiate(n.B, f)
	}
	_, rargs := a.Spine(t)
	body := a.Apps(motive, rargs[np:]...)
	body = a.App(body, a.Apps(a.Ctor(c.Name), slices.Concat(params, fs)...))
	return a.Close(term.KindPi, body, slices.Concat(fs, ihs), slices.Concat(fdoms, ihdoms))
}

// open peels n leading Pi binders of t (all of them when n < 0) by
// instantiating each with a fresh local.
func open(a *term.Arena, t term.ID, n int) (xs, doms []term.ID, rest term.ID) {
	for n != 0 {
		node := a.Node(t)
		if node.Kind != term.KindPi {
			break
		}
		x := a.FreshLocal()
		xs = append(xs, x)
		doms = append(doms, node.A)
		t = a.Instantiate(node.B, x)
		n--
	}
	return xs, doms, t
}

// AllowsElim reports whether ind may be eliminated into u.
func AllowsElim(ind *env.Inductive, u term.Universe) bool {
	return u.IsProp() || ind.LargeElim
}
