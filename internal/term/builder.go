package term

// Builder constructs terms in higher-order style: binder bodies are Go
// functions receiving the bound variable, so callers never compute de Bruijn
// indices. Binder names are kept only as display hints in the builder's
// context and never reach the arena.
type Builder struct {
	arena *Arena
	ctx   *Context
}

func NewBuilder(a *Arena) *Builder {
	return &Builder{arena: a, ctx: NewContext()}
}

// Arena returns the arena terms are interned in.
func (b *Builder) Arena() *Arena { return b.arena }

// Context exposes the locals bound so far, for formatting open terms.
func (b *Builder) Context() *Context { return b.ctx }

// Pi builds Fn(name: dom) -> body(x).
func (b *Builder) Pi(name string, dom ID, body func(x ID) ID) ID {
	return b.bind(KindPi, name, dom, body)
}

// Lam builds fn(name: dom) => body(x).
func (b *Builder) Lam(name string, dom ID, body func(x ID) ID) ID {
	return b.bind(KindLam, name, dom, body)
}

// Arrow builds the non-dependent Fn(_: dom) -> cod.
func (b *Builder) Arrow(dom, cod ID) ID {
	return b.arena.Pi(dom, b.arena.Shift(cod, 1, 0))
}

func (b *Builder) bind(kind Kind, name string, dom ID, body func(x ID) ID) ID {
	mark := b.ctx.Len()
	x := b.ctx.Push(b.arena, name, dom)
	inner := body(x)
	b.ctx.Truncate(mark)
	return b.arena.Intern(Node{Kind: kind, A: dom, B: b.arena.Abstract(inner, x)})
}

// Param names one entry of a telescope.
type Param struct {
	Name string
	Type func(prev []ID) ID
}

// Telescope binds params in order (each type may use the earlier locals),
// calls body with all of them, and returns the body closed over the
// telescope with binder kind.
func (b *Builder) Telescope(kind Kind, params []Param, body func(xs []ID) ID) ID {
	mark := b.ctx.Len()
	xs := make([]ID, 0, len(params))
	doms := make([]ID, 0, len(params))
	for _, p := range params {
		dom := p.Type(xs)
		doms = append(doms, dom)
		xs = append(xs, b.ctx.Push(b.arena, p.Name, dom))
	}
	out := body(xs)
	b.ctx.Truncate(mark)
	return b.arena.Close(kind, out, xs, doms)
}

// Apps applies fn to args.
func (b *Builder) Apps(fn ID, args ...ID) ID { return b.arena.Apps(fn, args...) }

// Close abstracts locals xs (with types doms, which may mention earlier xs)
// out of body and wraps the result in binders of the given kind, outermost
// first.
func (a *Arena) Close(kind Kind, body ID, xs, doms []ID) ID {
	out := body
	for i := len(xs) - 1; i >= 0; i-- {
		// doms[i] may still mention xs[:i]; later iterations abstract them.
		out = a.Intern(Node{Kind: kind, A: doms[i], B: a.Abstract(out, xs[i])})
	}
	return out
}
