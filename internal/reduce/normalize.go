package reduce

import "frkernel/internal/term"

// Normalize reduces t to full normal form by repeated weak-head reduction
// under binders and in argument positions. Constructor forms of the
// numeral inductive are folded back into literals, so the normal form of
// succ (succ zero) is 2.
//
// Normalize terminates on well-typed terms only.
func (e *Engine) Normalize(t term.ID) term.ID {
	memo := make(map[term.ID]term.ID)
	return e.normalize(t, memo)
}

func (e *Engine) normalize(t term.ID, memo map[term.ID]term.ID) term.ID {
	if out, ok := memo[t]; ok {
		return out
	}
	a := e.arena
	w := e.Whnf(t)
	n := a.Node(w)
	var out term.ID
	switch n.Kind {
	case term.KindPi, term.KindLam:
		dom := e.normalize(n.A, memo)
		x := a.FreshLocal()
		body := e.normalize(a.Instantiate(n.B, x), memo)
		out = a.Intern(term.Node{Kind: n.Kind, A: dom, B: a.Abstract(body, x)})
	case term.KindApp:
		head, args := a.Spine(w)
		for i, arg := range args {
			args[i] = e.normalize(arg, memo)
		}
		out = e.foldNumeral(a.Apps(head, args...))
	default:
		out = e.foldNumeral(w)
	}
	memo[t] = out
	return out
}

// foldNumeral rewrites zero to 0 and succ n to n+1 for the numeral
// inductive.
func (e *Engine) foldNumeral(t term.ID) term.ID {
	num, ok := e.env.Numerals()
	if !ok {
		return t
	}
	a := e.arena
	n := a.Node(t)
	switch n.Kind {
	case term.KindCtor:
		if n.Name == num.Zero {
			return a.Nat(0)
		}
	case term.KindApp:
		fn, arg := a.Node(n.A), a.Node(n.B)
		if fn.Kind == term.KindCtor && fn.Name == num.Succ && arg.Kind == term.KindNat && arg.Index < ^uint32(0) {
			return a.Nat(arg.Index + 1)
		}
	}
	return t
}
