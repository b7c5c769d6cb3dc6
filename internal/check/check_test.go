package check

import (
	"testing"

	"frkernel/internal/env"
	"frkernel/internal/inductive"
	"frkernel/internal/kerr"
	"frkernel/internal/term"
)

type world struct {
	a   *term.Arena
	b   *term.Builder
	env *env.Environment

	nat, zero, succ, vec, cons, vnil, tru, trivial term.ID
}

func declare(t *testing.T, w *world, d inductive.Decl) {
	t.Helper()
	o := w.env.Begin()
	if _, err := inductive.Process(w.a, o, New(w.a, o), d, inductive.Options{Naturals: "Nat"}); err != nil {
		t.Fatalf("declare %s: %v", d.Name, err)
	}
	if err := w.env.Commit(o); err != nil {
		t.Fatalf("commit %s: %v", d.Name, err)
	}
}

func axiom(t *testing.T, w *world, name string, ty term.ID) term.ID {
	t.Helper()
	o := w.env.Begin()
	if err := o.Add(&env.Entry{Kind: env.EntryAxiom, Name: w.a.Names().Intern(name), Type: ty}); err != nil {
		t.Fatalf("axiom %s: %v", name, err)
	}
	if err := w.env.Commit(o); err != nil {
		t.Fatalf("commit %s: %v", name, err)
	}
	return w.a.ConstNamed(name)
}

// overParam builds a constructor type mentioning the parameter T and
// abstracts T back into a loose variable.
func (w *world) overParam(body func(T term.ID) term.ID) term.ID {
	T := w.a.FreshLocal()
	return w.a.Abstract(body(T), T)
}

func newWorld(t *testing.T) *world {
	t.Helper()
	a := term.NewArena()
	w := &world{
		a:       a,
		b:       term.NewBuilder(a),
		env:     env.New(a.Names()),
		nat:     a.IndNamed("Nat"),
		zero:    a.CtorNamed("Nat::zero"),
		succ:    a.CtorNamed("Nat::succ"),
		vec:     a.IndNamed("Vec"),
		cons:    a.CtorNamed("Vec::cons"),
		vnil:    a.CtorNamed("Vec::nil"),
		tru:     a.IndNamed("True"),
		trivial: a.CtorNamed("True::trivial"),
	}
	b := w.b
	declare(t, w, inductive.Decl{
		Name:     "Nat",
		Universe: term.Set,
		Constructors: []inductive.Constructor{
			{Name: "zero", Type: w.nat},
			{Name: "succ", Type: b.Arrow(w.nat, w.nat)},
		},
	})
	declare(t, w, inductive.Decl{
		Name:     "Vec",
		Params:   []inductive.Binder{{Name: "T", Type: a.Sort(term.Set)}},
		Indices:  []inductive.Binder{{Name: "n", Type: w.nat}},
		Universe: term.Set,
		Constructors: []inductive.Constructor{
			{Name: "nil", Type: w.overParam(func(T term.ID) term.ID { return a.Apps(w.vec, T, a.Nat(0)) })},
			{Name: "cons", Type: w.overParam(func(T term.ID) term.ID {
				return b.Pi("n", w.nat, func(n term.ID) term.ID {
					return b.Arrow(T, b.Arrow(a.Apps(w.vec, T, n), a.Apps(w.vec, T, a.App(w.succ, n))))
				})
			})},
		},
	})
	declare(t, w, inductive.Decl{
		Name:         "True",
		Universe:     term.Prop,
		Constructors: []inductive.Constructor{{Name: "trivial", Type: w.tru}},
	})
	return w
}

func wantKind(t *testing.T, err error, k kerr.Kind) {
	t.Helper()
	if !kerr.Is(err, k) {
		t.Fatalf("got %v, want %s", err, k)
	}
}

func TestInferSortsAndFunctionTypes(t *testing.T) {
	w := newWorld(t)
	c := New(w.a, w.env)
	a, b := w.a, w.b

	cases := []struct {
		name string
		term term.ID
		want term.ID
	}{
		{"Prop : Set", a.Sort(term.Prop), a.Sort(term.Set)},
		{"Set : Type 0", a.Sort(term.Set), a.Sort(term.Type(0))},
		{"Nat -> Nat : Set", b.Arrow(w.nat, w.nat), a.Sort(term.Set)},
		{"impredicative Prop", b.Pi("P", a.Sort(term.Prop), func(p term.ID) term.ID { return p }), a.Sort(term.Prop)},
		{"Prop domain keeps data codomain", b.Arrow(w.tru, w.nat), a.Sort(term.Set)},
		{"Set -> Set : Type 0", b.Arrow(a.Sort(term.Set), a.Sort(term.Set)), a.Sort(term.Type(0))},
		{"numeral", a.Nat(4), w.nat},
		{"True : Prop", w.tru, a.Sort(term.Prop)},
		{"trivial : True", w.trivial, w.tru},
		{"Vec", w.vec, b.Arrow(a.Sort(term.Set), b.Arrow(w.nat, a.Sort(term.Set)))},
	}
	for _, tc := range cases {
		got, err := c.Infer(nil, tc.term)
		if err != nil {
			t.Fatalf("%s: Infer: %v", tc.name, err)
		}
		if !c.DefEq(nil, got, tc.want) {
			t.Fatalf("%s: inferred %s, want %s", tc.name, term.Format(a, nil, got), term.Format(a, nil, tc.want))
		}
	}
}

func TestTrueLivesInProp(t *testing.T) {
	w := newWorld(t)
	c := New(w.a, w.env)
	u, err := c.InferUniverse(nil, w.tru)
	if err != nil || u != term.Prop {
		t.Fatalf("InferUniverse(True) = %s, %v", u, err)
	}
	if err := c.Check(nil, w.trivial, w.tru); err != nil {
		t.Fatalf("trivial : True: %v", err)
	}
}

func TestDependentApplication(t *testing.T) {
	w := newWorld(t)
	c := New(w.a, w.env)
	a, b := w.a, w.b
	set := a.Sort(term.Set)
	idTy := b.Pi("T", set, func(T term.ID) term.ID { return b.Arrow(T, T) })
	id := b.Lam("T", set, func(T term.ID) term.ID {
		return b.Lam("x", T, func(x term.ID) term.ID { return x })
	})
	if err := c.Check(nil, id, idTy); err != nil {
		t.Fatalf("id : %s: %v", term.Format(a, nil, idTy), err)
	}
	got, err := c.Infer(nil, a.Apps(id, w.nat, a.Nat(3)))
	if err != nil {
		t.Fatalf("Infer(id Nat 3): %v", err)
	}
	if got != w.nat {
		t.Fatalf("id Nat 3 : %s, want Nat", term.Format(a, nil, got))
	}
	wantKind(t, c.Check(nil, a.Apps(id, w.nat, w.trivial), w.nat), kerr.TypeMismatch)
}

func TestVecIndexDiscipline(t *testing.T) {
	w := newWorld(t)
	c := New(w.a, w.env)
	a := w.a
	ctx := term.NewContext()
	T := ctx.Push(a, "T", a.Sort(term.Set))
	n := ctx.Push(a, "n", w.nat)
	m := ctx.Push(a, "m", w.nat)
	x := ctx.Push(a, "x", T)
	vn := ctx.Push(a, "vn", a.Apps(w.vec, T, n))
	vm := ctx.Push(a, "vm", a.Apps(w.vec, T, m))

	good := a.Apps(w.cons, T, n, x, vn)
	if err := c.Check(ctx, good, a.Apps(w.vec, T, a.App(w.succ, n))); err != nil {
		t.Fatalf("cons n x vn : Vec T (succ n): %v", err)
	}
	bad := a.Apps(w.cons, T, n, x, vm)
	wantKind(t, c.Check(ctx, bad, a.Apps(w.vec, T, a.App(w.succ, n))), kerr.TypeMismatch)

	one := a.Apps(w.cons, w.nat, a.Nat(0), a.Nat(9), a.App(w.vnil, w.nat))
	if err := c.Check(nil, one, a.Apps(w.vec, w.nat, a.Nat(1))); err != nil {
		t.Fatalf("singleton : Vec Nat 1: %v", err)
	}
	wantKind(t, c.Check(nil, one, a.Apps(w.vec, w.nat, a.Nat(2))), kerr.TypeMismatch)
}

func TestErrorTaxonomy(t *testing.T) {
	w := newWorld(t)
	c := New(w.a, w.env)
	a, b := w.a, w.b
	stranger := a.FreshLocal()

	cases := []struct {
		name string
		err  error
		want kerr.Kind
	}{
		{"loose variable", c.Check(nil, a.Var(0), w.nat), kerr.UnboundVariable},
		{"unknown constant", c.Check(nil, a.ConstNamed("missing"), w.nat), kerr.UnboundVariable},
		{"local out of scope", c.Check(nil, stranger, w.nat), kerr.UnboundVariable},
		{"applying a numeral", c.Check(nil, a.App(a.Nat(1), a.Nat(2)), w.nat), kerr.NotAFunctionType},
		{"wrong argument", c.Check(nil, a.App(w.succ, w.trivial), w.nat), kerr.TypeMismatch},
		{"lambda against non-function", c.Check(nil, b.Lam("x", w.nat, func(x term.ID) term.ID { return x }), w.nat), kerr.TypeMismatch},
		{"lambda domain", c.Check(nil, b.Lam("x", w.tru, func(term.ID) term.ID { return a.Nat(0) }), b.Arrow(w.nat, w.nat)), kerr.TypeMismatch},
		{"data where Prop is required", c.Check(nil, w.nat, a.Sort(term.Prop)), kerr.UniverseError},
		{"not a type", func() error { _, err := c.InferUniverse(nil, a.Nat(0)); return err }(), kerr.UniverseError},
		{"Pi over a term", func() error { _, err := c.Infer(nil, b.Arrow(a.Nat(0), w.nat)); return err }(), kerr.UniverseError},
		{"unknown constructor", c.Check(nil, a.CtorNamed("Nat::three"), w.nat), kerr.UnknownConstructor},
		{"unknown inductive", c.Check(nil, a.IndNamed("Fin"), a.Sort(term.Set)), kerr.UnknownInductive},
		{"unknown eliminator", func() error { _, err := c.Infer(nil, a.ElimNamed("Fin", term.Set)); return err }(), kerr.UnknownInductive},
		{"constructor used as inductive", c.Check(nil, a.IndNamed("Nat::zero"), a.Sort(term.Set)), kerr.UnknownInductive},
	}
	for _, tc := range cases {
		if !kerr.Is(tc.err, tc.want) {
			t.Fatalf("%s: got %v, want %s", tc.name, tc.err, tc.want)
		}
	}
}

func TestNumeralsNeedBinding(t *testing.T) {
	a := term.NewArena()
	c := New(a, env.New(a.Names()))
	if _, err := c.Infer(nil, a.Nat(0)); !kerr.Is(err, kerr.UnknownInductive) {
		t.Fatalf("unbound numerals: got %v", err)
	}
}

func TestEliminatorTyping(t *testing.T) {
	w := newWorld(t)
	c := New(w.a, w.env)
	a, b := w.a, w.b
	double := b.Lam("n", w.nat, func(n term.ID) term.ID {
		motive := b.Lam("_", w.nat, func(term.ID) term.ID { return w.nat })
		step := b.Lam("k", w.nat, func(term.ID) term.ID {
			return b.Lam("ih", w.nat, func(ih term.ID) term.ID { return a.App(w.succ, a.App(w.succ, ih)) })
		})
		return a.Apps(a.ElimNamed("Nat", term.Set), motive, a.Nat(0), step, n)
	})
	if err := c.Check(nil, double, b.Arrow(w.nat, w.nat)); err != nil {
		t.Fatalf("double : Nat -> Nat: %v", err)
	}
	if got := c.Engine().Normalize(a.App(double, a.Nat(3))); got != a.Nat(6) {
		t.Fatalf("double 3 = %s", term.Format(a, nil, got))
	}

	badMotive := a.Apps(a.ElimNamed("Nat", term.Set), b.Lam("_", w.nat, func(term.ID) term.ID { return a.Sort(term.Set) }))
	wantKind(t, func() error { _, err := c.Infer(nil, badMotive); return err }(), kerr.UniverseError)
}

func TestLargeElimination(t *testing.T) {
	w := newWorld(t)
	c := New(w.a, w.env)
	if _, err := c.Infer(nil, w.a.ElimNamed("True", term.Set)); err != nil {
		t.Fatalf("True has one proof-free constructor and eliminates into Set: %v", err)
	}
	either := w.a.IndNamed("Either")
	declare(t, w, inductive.Decl{
		Name:     "Either",
		Universe: term.Prop,
		Constructors: []inductive.Constructor{
			{Name: "left", Type: either},
			{Name: "right", Type: either},
		},
	})
	c = New(w.a, w.env)
	if _, err := c.Infer(nil, w.a.ElimNamed("Either", term.Prop)); err != nil {
		t.Fatalf("elimination into Prop is always allowed: %v", err)
	}
	if _, err := c.Infer(nil, w.a.ElimNamed("Either", term.Set)); !kerr.Is(err, kerr.UniverseError) {
		t.Fatalf("large elimination of a two-constructor proposition: got %v", err)
	}
}

func TestProofIrrelevance(t *testing.T) {
	w := newWorld(t)
	p := axiom(t, w, "p", w.tru)
	q := axiom(t, w, "q", w.tru)
	m := axiom(t, w, "m", w.nat)
	k := axiom(t, w, "k", w.nat)
	c := New(w.a, w.env)
	if !c.DefEq(nil, p, q) {
		t.Fatalf("proofs of True must be interchangeable")
	}
	if !c.DefEq(nil, p, w.trivial) {
		t.Fatalf("an axiom proof equals the canonical proof")
	}
	if c.DefEq(nil, m, k) {
		t.Fatalf("distinct natural numbers must stay distinct")
	}
}
