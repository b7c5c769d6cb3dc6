// Package kernel is the entry point for declaring things: it runs each
// declaration against a staged overlay and commits only what checks.
package kernel

import (
	"context"
	"fmt"
	"strconv"

	"frkernel/internal/check"
	"frkernel/internal/env"
	"frkernel/internal/inductive"
	"frkernel/internal/kerr"
	"frkernel/internal/reduce"
	"frkernel/internal/term"
	"frkernel/internal/trace"
)

// Options configure a kernel.
type Options struct {
	// Naturals names the inductive numerals bind to; "" disables them.
	Naturals string
	// Tracer receives per-declaration spans when the context carries none.
	Tracer trace.Tracer
}

func DefaultOptions() Options {
	return Options{Naturals: "Nat", Tracer: trace.Nop}
}

// Kernel owns an arena and the environment checked against it. Its methods
// may be called from several goroutines; each declaration commits
// atomically.
type Kernel struct {
	a    *term.Arena
	env  *env.Environment
	opts Options
}

func New(opts Options) *Kernel {
	return NewWithArena(term.NewArena(), opts)
}

// NewWithArena declares into an existing arena, e.g. one restored from a
// bundle.
func NewWithArena(a *term.Arena, opts Options) *Kernel {
	return NewWithEnv(a, env.New(a.Names()), opts)
}

// NewWithEnv resumes from an environment already checked against a.
func NewWithEnv(a *term.Arena, e *env.Environment, opts Options) *Kernel {
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Kernel{a: a, env: e, opts: opts}
}

func (k *Kernel) Arena() *term.Arena     { return k.a }
func (k *Kernel) Env() *env.Environment  { return k.env }
func (k *Kernel) Options() Options       { return k.opts }
func (k *Kernel) Builder() *term.Builder { return term.NewBuilder(k.a) }

// Lookup finds a committed entry by name.
func (k *Kernel) Lookup(name string) (*env.Entry, bool) { return k.env.LookupName(name) }

// Checker returns a checker over the committed environment.
func (k *Kernel) Checker() *check.Checker { return check.New(k.a, k.env) }

// DeclareUniverseAxiom binds name to the sort u.
func (k *Kernel) DeclareUniverseAxiom(name string, u term.Universe) error {
	return k.Declare(UniverseDecl(name, u))
}

// DeclareAxiom postulates name : ty.
func (k *Kernel) DeclareAxiom(name string, ty term.ID) error {
	return k.Declare(AxiomDecl(name, ty))
}

// DeclareInductive processes d: positivity, index shape, universe checks
// and eliminator synthesis. Nothing is registered unless all of it passes.
func (k *Kernel) DeclareInductive(d InductiveDecl) error {
	return k.Declare(InductiveDeclOf(d))
}

// DeclareDefinition checks that ty is a type and value : ty, then binds
// name to value.
func (k *Kernel) DeclareDefinition(name string, ty, value term.ID) error {
	return k.Declare(DefinitionDecl(name, ty, value))
}

// Declare runs one declaration of any kind.
func (k *Kernel) Declare(d Decl) error {
	return k.DeclareContext(context.Background(), d)
}

// DeclareContext is Declare with tracing taken from ctx.
func (k *Kernel) DeclareContext(ctx context.Context, d Decl) error {
	tr := trace.FromContext(ctx)
	if !tr.Enabled() {
		tr = k.opts.Tracer
	}
	span := trace.Begin(tr, trace.ScopeDecl, d.Name, trace.CurrentSpan(ctx))
	span.WithExtra("kind", d.Kind.String())

	stats, err := k.declare(d)
	span.WithExtra("beta", strconv.FormatUint(stats.Beta, 10)).
		WithExtra("delta", strconv.FormatUint(stats.Delta, 10)).
		WithExtra("iota", strconv.FormatUint(stats.Iota, 10))
	if err != nil {
		err = kerr.WithDecl(err, d.Name)
		span.End(kerr.KindOf(err).String())
		return err
	}
	span.End("ok")
	return nil
}

func (k *Kernel) declare(d Decl) (reduce.Stats, error) {
	if d.Name == "" {
		return reduce.Stats{}, kerr.New(kerr.Unknown, "%s declaration without a name", d.Kind)
	}
	o := k.env.Begin()
	c := check.New(k.a, o)
	var err error
	switch d.Kind {
	case DeclUniverse:
		err = k.universe(o, d)
	case DeclAxiom:
		err = k.axiom(o, c, d)
	case DeclInductive:
		err = k.inductive(o, c, d)
	case DeclDefinition:
		err = k.definition(o, c, d)
	default:
		err = kerr.New(kerr.Unknown, "unknown declaration kind %s", d.Kind)
	}
	if err == nil {
		err = k.env.Commit(o)
	}
	return c.Engine().Stats, err
}

func (k *Kernel) universe(o *env.Overlay, d Decl) error {
	if d.Universe == term.Top {
		return kerr.New(kerr.UniverseError, "universe %s has no universe above it", d.Universe)
	}
	return o.Add(&env.Entry{
		Kind:  env.EntryUniverse,
		Name:  k.a.Names().Intern(d.Name),
		Type:  k.a.Sort(d.Universe.Succ()),
		Value: k.a.Sort(d.Universe),
	})
}

func (k *Kernel) axiom(o *env.Overlay, c *check.Checker, d Decl) error {
	if err := k.closed(d.Type, "type"); err != nil {
		return err
	}
	if _, err := c.InferUniverse(nil, d.Type); err != nil {
		return err
	}
	return o.Add(&env.Entry{Kind: env.EntryAxiom, Name: k.a.Names().Intern(d.Name), Type: d.Type})
}

func (k *Kernel) inductive(o *env.Overlay, c *check.Checker, d Decl) error {
	if d.Inductive == nil {
		return kerr.New(kerr.UnknownInductive, "inductive declaration %s has no body", d.Name)
	}
	if d.Inductive.Name != d.Name {
		return kerr.New(kerr.UnknownInductive, "declaration %s describes inductive %s", d.Name, d.Inductive.Name)
	}
	_, err := inductive.Process(k.a, o, c, *d.Inductive, inductive.Options{Naturals: k.opts.Naturals})
	return err
}

func (k *Kernel) definition(o *env.Overlay, c *check.Checker, d Decl) error {
	if err := k.closed(d.Type, "type"); err != nil {
		return err
	}
	if err := k.closed(d.Value, "value"); err != nil {
		return err
	}
	if _, err := c.InferUniverse(nil, d.Type); err != nil {
		return err
	}
	if err := c.Check(nil, d.Value, d.Type); err != nil {
		return err
	}
	return o.Add(&env.Entry{
		Kind:  env.EntryDefinition,
		Name:  k.a.Names().Intern(d.Name),
		Type:  d.Type,
		Value: d.Value,
	})
}

func (k *Kernel) closed(t term.ID, what string) error {
	if _, ok := k.a.Lookup(t); !ok {
		return kerr.New(kerr.UnboundVariable, "%s is missing", what)
	}
	if !k.a.Closed(t) {
		return kerr.New(kerr.UnboundVariable, "%s %s has free variables", what, term.Format(k.a, nil, t))
	}
	return nil
}

// Process declares decls in order and returns one result per declaration.
// A failure does not stop later declarations; deciding that is up to the
// caller.
func (k *Kernel) Process(decls []Decl) []error {
	return k.ProcessContext(context.Background(), decls)
}

// ProcessContext is Process that stops at cancellation, reporting ctx's
// error for every declaration not attempted.
func (k *Kernel) ProcessContext(ctx context.Context, decls []Decl) []error {
	errs := make([]error, len(decls))
	for i, d := range decls {
		if err := ctx.Err(); err != nil {
			errs[i] = fmt.Errorf("%s not declared: %w", d.Name, err)
			continue
		}
		errs[i] = k.DeclareContext(ctx, d)
	}
	return errs
}
