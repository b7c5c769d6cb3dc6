package inductive

import (
	"slices"

	"frkernel/internal/env"
	"frkernel/internal/kerr"
	"frkernel/internal/source"
	"frkernel/internal/term"
)

// Options tune inductive processing.
type Options struct {
	// Naturals is the inductive numeral literals are bound to when it is
	// declared with the zero/succ shape. Empty disables numerals.
	Naturals string
}

// Result lists what Process staged.
type Result struct {
	Inductive    *env.Inductive
	Constructors []*env.Constructor
	// Eliminator is the type of the eliminator into the inductive's own
	// universe, checked during processing.
	Eliminator term.ID
	Numerals   bool
}

type processor struct {
	a     *term.Arena
	o     *env.Overlay
	typer Typer
	decl  Decl

	name   source.StringID
	self   term.ID
	params []term.ID
	nidx   int
}

// Process checks d and stages the inductive and its constructors in o.
// On error o may hold partial entries and must be discarded.
func Process(a *term.Arena, o *env.Overlay, typer Typer, d Decl, opts Options) (*Result, error) {
	if d.Name == "" {
		return nil, kerr.New(kerr.UnknownInductive, "inductive declaration without a name")
	}
	names := a.Names()
	p := &processor{
		a:     a,
		o:     o,
		typer: typer,
		decl:  d,
		name:  names.Intern(d.Name),
		nidx:  len(d.Indices),
	}
	p.self = a.Ind(p.name)
	if err := p.checkNames(); err != nil {
		return nil, err
	}

	ctx := term.NewContext()
	binders := slices.Concat(d.Params, d.Indices)
	xs := make([]term.ID, 0, len(binders))
	doms := make([]term.ID, 0, len(binders))
	for _, b := range binders {
		dom := a.InstantiateN(b.Type, xs...)
		if a.Loose(dom) > 0 {
			return nil, kerr.New(kerr.UnboundVariable, "binder %s refers past the start of the telescope", b.Name)
		}
		if _, err := typer.InferUniverse(ctx, dom); err != nil {
			return nil, err
		}
		xs = append(xs, ctx.Push(a, b.Name, dom))
		doms = append(doms, dom)
	}
	np := len(d.Params)
	p.params = xs[:np]

	ind := &env.Inductive{
		Name:       p.name,
		NumParams:  np,
		NumIndices: p.nidx,
		Universe:   d.Universe,
		Type:       a.Close(term.KindPi, a.Sort(d.Universe), xs, doms),
	}
	// Staged first so constructor types can mention the inductive.
	if err := o.Add(&env.Entry{Kind: env.EntryInductive, Name: p.name, Type: ind.Type, Inductive: ind}); err != nil {
		return nil, err
	}

	ctx.Truncate(np)
	res := &Result{Inductive: ind}
	for i, c := range d.Constructors {
		ctor, err := p.constructor(ctx, i, c, doms[:np])
		if err != nil {
			return nil, err
		}
		ind.Ctors = append(ind.Ctors, ctor.Name)
		res.Constructors = append(res.Constructors, ctor)
	}
	ind.LargeElim = largeElim(ind.Universe, res.Constructors)

	for _, ctor := range res.Constructors {
		entry := &env.Entry{Kind: env.EntryConstructor, Name: ctor.Name, Type: ctor.Type, Constructor: ctor}
		if err := o.Add(entry); err != nil {
			return nil, err
		}
	}

	res.Eliminator = EliminatorType(a, ind, res.Constructors, ind.Universe)
	if _, err := typer.InferUniverse(term.NewContext(), res.Eliminator); err != nil {
		return nil, err
	}

	if opts.Naturals != "" && d.Name == opts.Naturals {
		if num, ok := p.numerals(res); ok {
			if _, bound := o.Numerals(); !bound {
				o.BindNumerals(num)
				res.Numerals = true
			}
		}
	}
	return res, nil
}

func (p *processor) checkNames() error {
	if _, exists := p.o.Lookup(p.name); exists {
		return kerr.New(kerr.DuplicateName, "%s is already declared", p.decl.Name)
	}
	seen := make(map[string]struct{}, len(p.decl.Constructors))
	for _, c := range p.decl.Constructors {
		if _, dup := seen[c.Name]; dup {
			return kerr.New(kerr.DuplicateName, "constructor %s is declared twice", QualifiedName(p.decl.Name, c.Name))
		}
		seen[c.Name] = struct{}{}
		q := QualifiedName(p.decl.Name, c.Name)
		if id, ok := p.a.Names().Find(q); ok {
			if _, exists := p.o.Lookup(id); exists {
				return kerr.New(kerr.DuplicateName, "%s is already declared", q)
			}
		}
	}
	return nil
}

// constructor checks one constructor in the parameter context ctx.
func (p *processor) constructor(ctx *term.Context, ordinal int, c Constructor, paramDoms []term.ID) (*env.Constructor, error) {
	a := p.a
	qualified := QualifiedName(p.decl.Name, c.Name)
	ty := a.InstantiateN(c.Type, p.params...)
	if a.Loose(ty) > 0 {
		return nil, kerr.New(kerr.UnboundVariable, "type of %s refers to a binder outside the parameters", qualified)
	}
	if _, err := p.typer.InferUniverse(ctx, ty); err != nil {
		return nil, err
	}

	mark := ctx.Len()
	defer ctx.Truncate(mark)
	var fields []env.Field
	var locals, doms []term.ID
	t := ty
	for {
		w := p.typer.Whnf(t)
		n := a.Node(w)
		if n.Kind != term.KindPi {
			t = w
			break
		}
		recursive, err := p.positive(qualified, len(fields), n.A)
		if err != nil {
			return nil, err
		}
		u, err := p.typer.InferUniverse(ctx, n.A)
		if err != nil {
			return nil, err
		}
		if !term.Dominates(p.decl.Universe, u) {
			return nil, kerr.New(kerr.UniverseError,
				"argument %d of %s lives in %s, above the inductive's universe %s", len(fields), qualified, u, p.decl.Universe)
		}
		x := ctx.Push(a, "", n.A)
		fields = append(fields, env.Field{Universe: u, Recursive: recursive})
		locals = append(locals, x)
		doms = append(doms, n.A)
		t = a.Instantiate(n.B, x)
	}
	if err := p.result(qualified, t); err != nil {
		return nil, err
	}

	return &env.Constructor{
		Name:      a.Names().Intern(qualified),
		Inductive: p.name,
		Ordinal:   ordinal,
		Type:      a.Close(term.KindPi, t, slices.Concat(p.params, locals), slices.Concat(paramDoms, doms)),
		Fields:    fields,
	}, nil
}

// result checks that a constructor returns the inductive applied to the
// unchanged parameters followed by indices that do not mention it.
func (p *processor) result(ctor string, t term.ID) error {
	a := p.a
	head, args := a.Spine(t)
	if head != p.self {
		return kerr.New(kerr.MalformedIndices, "%s must construct %s, got %s", ctor, p.decl.Name, term.Format(a, nil, t))
	}
	np := len(p.params)
	if len(args) != np+p.nidx {
		return kerr.New(kerr.MalformedIndices, "%s returns %s applied to %d arguments, want %d",
			ctor, p.decl.Name, len(args), np+p.nidx)
	}
	for i, param := range p.params {
		if args[i] != param {
			return kerr.New(kerr.MalformedIndices, "%s changes parameter %s in its result", ctor, p.decl.Params[i].Name)
		}
	}
	for i, idx := range args[np:] {
		if a.MentionsInductive(idx, p.name) {
			return kerr.New(kerr.MalformedIndices, "index %d of %s mentions %s", i, ctor, p.decl.Name)
		}
	}
	return nil
}

// largeElim: data eliminates anywhere; a proposition only when it has at
// most one constructor and that constructor carries proofs alone.
func largeElim(u term.Universe, ctors []*env.Constructor) bool {
	if !u.IsProp() {
		return true
	}
	switch len(ctors) {
	case 0:
		return true
	case 1:
		for _, f := range ctors[0].Fields {
			if !f.Universe.IsProp() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numerals recognises the zero/succ shape.
func (p *processor) numerals(res *Result) (env.Numerals, bool) {
	ind := res.Inductive
	if ind.NumParams != 0 || ind.NumIndices != 0 || len(res.Constructors) != 2 {
		return env.Numerals{}, false
	}
	zero, succ := res.Constructors[0], res.Constructors[1]
	if zero.NumFields() != 0 || succ.NumFields() != 1 || succ.Type != p.a.Pi(p.self, p.self) {
		return env.Numerals{}, false
	}
	return env.Numerals{Inductive: p.name, Zero: zero.Name, Succ: succ.Name}, true
}
