package term

import "fmt"

type depthKey struct {
	id    ID
	depth uint32
}

// Shift adds d to every loose bound variable of t whose index is at least
// cutoff. A negative d must not push any variable below cutoff.
func (a *Arena) Shift(t ID, d int32, cutoff uint32) ID {
	if d == 0 {
		return t
	}
	memo := make(map[depthKey]ID)
	var walk func(id ID, depth uint32) ID
	walk = func(id ID, depth uint32) ID {
		if a.Loose(id) <= cutoff+depth {
			return id
		}
		key := depthKey{id, depth}
		if out, ok := memo[key]; ok {
			return out
		}
		n := a.Node(id)
		var out ID
		switch n.Kind {
		case KindVar:
			shifted := int64(n.Index) + int64(d)
			if shifted < int64(cutoff+depth) {
				panic(fmt.Sprintf("term: shift by %d moves variable %d below cutoff %d", d, n.Index, cutoff+depth))
			}
			out = a.Var(uint32(shifted))
		case KindPi, KindLam:
			out = a.Intern(Node{Kind: n.Kind, A: walk(n.A, depth), B: walk(n.B, depth+1)})
		case KindApp:
			out = a.App(walk(n.A, depth), walk(n.B, depth))
		default:
			out = id
		}
		memo[key] = out
		return out
	}
	return walk(t, 0)
}

// Subst eliminates the bound variable with index k from t.
//
// t lives in a context Γ, x, Δ where |Δ| = k and x is the variable being
// replaced; u lives in Γ. The result lives in Γ, Δ: occurrences of x become
// u (shifted past Δ and any binders crossed inside t), variables from Δ keep
// their indices, and variables from Γ drop by one.
func (a *Arena) Subst(t ID, k uint32, u ID) ID {
	if a.Loose(t) <= k {
		return t
	}
	memo := make(map[depthKey]ID)
	var walk func(id ID, depth uint32) ID
	walk = func(id ID, depth uint32) ID {
		if a.Loose(id) <= k+depth {
			return id
		}
		key := depthKey{id, depth}
		if out, ok := memo[key]; ok {
			return out
		}
		n := a.Node(id)
		var out ID
		switch n.Kind {
		case KindVar:
			switch {
			case n.Index == k+depth:
				out = a.Shift(u, int32(k+depth), 0)
			default: // n.Index > k+depth, smaller ones are filtered above
				out = a.Var(n.Index - 1)
			}
		case KindPi, KindLam:
			out = a.Intern(Node{Kind: n.Kind, A: walk(n.A, depth), B: walk(n.B, depth+1)})
		case KindApp:
			out = a.App(walk(n.A, depth), walk(n.B, depth))
		default:
			out = id
		}
		memo[key] = out
		return out
	}
	return walk(t, 0)
}

// Instantiate replaces the innermost bound variable of a binder body with u:
// the beta rule's body[x := u].
func (a *Arena) Instantiate(body, u ID) ID {
	return a.Subst(body, 0, u)
}

// InstantiateN substitutes args for the n = len(args) innermost bound
// variables of body at once. args[0] replaces the outermost of them, so
// InstantiateN(body, x, y) equals Instantiate(Instantiate(body', x), y) for the
// telescope body' = λx. λy. body. Every arg lives in the outer context.
func (a *Arena) InstantiateN(body ID, args ...ID) ID {
	n := uint32(len(args))
	if n == 0 || a.Loose(body) == 0 {
		return body
	}
	memo := make(map[depthKey]ID)
	var walk func(id ID, depth uint32) ID
	walk = func(id ID, depth uint32) ID {
		if a.Loose(id) <= depth {
			return id
		}
		key := depthKey{id, depth}
		if out, ok := memo[key]; ok {
			return out
		}
		node := a.Node(id)
		var out ID
		switch node.Kind {
		case KindVar:
			j := node.Index - depth
			if j < n {
				out = a.Shift(args[n-1-j], int32(depth), 0)
			} else {
				out = a.Var(node.Index - n)
			}
		case KindPi, KindLam:
			out = a.Intern(Node{Kind: node.Kind, A: walk(node.A, depth), B: walk(node.B, depth+1)})
		case KindApp:
			out = a.App(walk(node.A, depth), walk(node.B, depth))
		default:
			out = id
		}
		memo[key] = out
		return out
	}
	return walk(body, 0)
}

// Abstract turns locals into bound variables, the inverse of opening
// binders: locals[0] becomes the outermost of the n new binders and
// locals[n-1] the innermost (index 0). Loose variables already in t are
// shifted past the new binders.
func (a *Arena) Abstract(t ID, locals ...ID) ID {
	n := uint32(len(locals))
	if n == 0 {
		return t
	}
	pos := make(map[ID]uint32, n)
	for i, l := range locals {
		pos[l] = uint32(i)
	}
	memo := make(map[depthKey]ID)
	var walk func(id ID, depth uint32) ID
	walk = func(id ID, depth uint32) ID {
		if !a.HasLocals(id) && a.Loose(id) <= depth {
			return id
		}
		key := depthKey{id, depth}
		if out, ok := memo[key]; ok {
			return out
		}
		node := a.Node(id)
		var out ID
		switch node.Kind {
		case KindLocal:
			if i, ok := pos[id]; ok {
				out = a.Var(depth + n - 1 - i)
			} else {
				out = id
			}
		case KindVar:
			out = a.Var(node.Index + n) // node.Index >= depth here
		case KindPi, KindLam:
			out = a.Intern(Node{Kind: node.Kind, A: walk(node.A, depth), B: walk(node.B, depth+1)})
		case KindApp:
			out = a.App(walk(node.A, depth), walk(node.B, depth))
		default:
			out = id
		}
		memo[key] = out
		return out
	}
	return walk(t, 0)
}

// Mentions reports whether any node of t satisfies pred.
func (a *Arena) Mentions(t ID, pred func(Node) bool) bool {
	seen := make(map[ID]struct{})
	var walk func(id ID) bool
	walk = func(id ID) bool {
		if id == NoID {
			return false
		}
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		n := a.Node(id)
		if pred(n) {
			return true
		}
		switch n.Kind {
		case KindPi, KindLam, KindApp:
			return walk(n.A) || walk(n.B)
		}
		return false
	}
	return walk(t)
}

// MentionsLocal reports whether the local l occurs in t.
func (a *Arena) MentionsLocal(t, l ID) bool {
	if !a.HasLocals(t) {
		return false
	}
	target := a.Node(l)
	return a.Mentions(t, func(n Node) bool { return n == target })
}
