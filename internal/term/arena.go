package term

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"frkernel/internal/source"
)

// meta caches structural facts computed once per node.
type meta struct {
	loose  uint32 // 1 + highest loose de Bruijn index, 0 when closed
	locals bool   // mentions at least one KindLocal
}

// Arena hash-conses terms: structurally equal nodes share one ID, so
// syntactic (and therefore alpha) equality is an ID comparison.
// Safe for concurrent use; nodes are never removed.
type Arena struct {
	mu        sync.RWMutex
	nodes     []Node
	meta      []meta
	index     map[Node]ID
	names     *source.Interner
	nextLocal uint32
}

// NewArena constructs an arena with its own name table.
func NewArena() *Arena {
	return NewArenaWithNames(source.NewInterner())
}

// NewArenaWithNames constructs an arena sharing an existing name table.
func NewArenaWithNames(names *source.Interner) *Arena {
	a := &Arena{
		index: make(map[Node]ID, 256),
		names: names,
	}
	a.nodes = append(a.nodes, Node{}) // reserve 0 as NoID
	a.meta = append(a.meta, meta{})
	return a
}

// Names returns the arena's name table.
func (a *Arena) Names() *source.Interner {
	return a.names
}

// Len counts interned nodes including the NoID sentinel.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

// Intern ensures the descriptor has a stable ID.
func (a *Arena) Intern(n Node) ID {
	if n.Kind == KindInvalid {
		return NoID
	}
	a.mu.RLock()
	id, ok := a.index[n]
	a.mu.RUnlock()
	if ok {
		return id
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.index[n]; ok {
		return id
	}
	return a.internLocked(n)
}

func (a *Arena) internLocked(n Node) ID {
	m := a.computeMeta(n)
	size, err := safecast.Conv[uint32](len(a.nodes))
	if err != nil {
		panic(fmt.Errorf("len(nodes) overflow: %w", err))
	}
	id := ID(size)
	a.nodes = append(a.nodes, n)
	a.meta = append(a.meta, m)
	a.index[n] = id
	return id
}

// computeMeta runs under a.mu; children always precede their parents.
func (a *Arena) computeMeta(n Node) meta {
	switch n.Kind {
	case KindVar:
		return meta{loose: n.Index + 1}
	case KindLocal:
		return meta{locals: true}
	case KindPi, KindLam:
		dom, body := a.meta[n.A], a.meta[n.B]
		loose := dom.loose
		if body.loose > 1 && body.loose-1 > loose {
			loose = body.loose - 1
		}
		return meta{loose: loose, locals: dom.locals || body.locals}
	case KindApp:
		fn, arg := a.meta[n.A], a.meta[n.B]
		return meta{loose: max(fn.loose, arg.loose), locals: fn.locals || arg.locals}
	default:
		return meta{}
	}
}

// Lookup returns the descriptor for id.
func (a *Arena) Lookup(id ID) (Node, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id == NoID || int(id) >= len(a.nodes) {
		return Node{}, false
	}
	return a.nodes[id], true
}

// Node returns the descriptor for id and panics when id is invalid.
func (a *Arena) Node(id ID) Node {
	n, ok := a.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("term: invalid ID %d", id))
	}
	return n
}

// Kind returns the kind of id, KindInvalid for unknown ids.
func (a *Arena) Kind(id ID) Kind {
	n, _ := a.Lookup(id)
	return n.Kind
}

// Loose returns 1 + the highest loose bound variable of id (0 when closed).
func (a *Arena) Loose(id ID) uint32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(id) >= len(a.meta) {
		return 0
	}
	return a.meta[id].loose
}

// HasLocals reports whether id mentions a free local.
func (a *Arena) HasLocals(id ID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if int(id) >= len(a.meta) {
		return false
	}
	return a.meta[id].locals
}

// Closed reports whether id has neither loose bound variables nor locals,
// which is what top-level declarations require.
func (a *Arena) Closed(id ID) bool {
	return a.Loose(id) == 0 && !a.HasLocals(id)
}

// Constructors -----------------------------------------------------------

func (a *Arena) Var(index uint32) ID {
	return a.Intern(Node{Kind: KindVar, Index: index})
}

func (a *Arena) Sort(u Universe) ID {
	return a.Intern(Node{Kind: KindSort, Index: uint32(u)})
}

func (a *Arena) Pi(dom, cod ID) ID {
	return a.Intern(Node{Kind: KindPi, A: dom, B: cod})
}

func (a *Arena) Lam(dom, body ID) ID {
	return a.Intern(Node{Kind: KindLam, A: dom, B: body})
}

func (a *Arena) App(fn, arg ID) ID {
	return a.Intern(Node{Kind: KindApp, A: fn, B: arg})
}

// Apps applies fn to args left to right.
func (a *Arena) Apps(fn ID, args ...ID) ID {
	for _, arg := range args {
		fn = a.App(fn, arg)
	}
	return fn
}

func (a *Arena) Const(name source.StringID) ID {
	return a.Intern(Node{Kind: KindConst, Name: name})
}

func (a *Arena) Ind(name source.StringID) ID {
	return a.Intern(Node{Kind: KindInd, Name: name})
}

func (a *Arena) Ctor(name source.StringID) ID {
	return a.Intern(Node{Kind: KindCtor, Name: name})
}

// Elim references the eliminator of inductive ind with motives into u.
func (a *Arena) Elim(ind source.StringID, u Universe) ID {
	return a.Intern(Node{Kind: KindElim, Name: ind, Index: uint32(u)})
}

// Nat is the numeral n of whichever inductive the environment binds
// numerals to.
func (a *Arena) Nat(n uint32) ID {
	return a.Intern(Node{Kind: KindNat, Index: n})
}

// FreshLocal allocates a local that no other term mentions yet.
func (a *Arena) FreshLocal() ID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.nextLocal == ^uint32(0) {
		panic("term: locals exhausted")
	}
	a.nextLocal++
	return a.internLocked(Node{Kind: KindLocal, Index: a.nextLocal})
}

// Spine splits nested applications into head and arguments.
func (a *Arena) Spine(id ID) (ID, []ID) {
	var rev []ID
	for {
		n, ok := a.Lookup(id)
		if !ok || n.Kind != KindApp {
			break
		}
		rev = append(rev, n.B)
		id = n.A
	}
	args := make([]ID, len(rev))
	for i, arg := range rev {
		args[len(rev)-1-i] = arg
	}
	return id, args
}

// Named helpers intern the name first; handy for tests and builders.

func (a *Arena) ConstNamed(name string) ID { return a.Const(a.names.Intern(name)) }
func (a *Arena) IndNamed(name string) ID   { return a.Ind(a.names.Intern(name)) }
func (a *Arena) CtorNamed(name string) ID  { return a.Ctor(a.names.Intern(name)) }

// ElimNamed references the eliminator of the named inductive.
func (a *Arena) ElimNamed(ind string, u Universe) ID {
	return a.Elim(a.names.Intern(ind), u)
}
