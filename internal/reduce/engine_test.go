package reduce

import (
	"testing"

	"frkernel/internal/env"
	"frkernel/internal/source"
	"frkernel/internal/term"
)

// fixture is a hand-built environment with Nat, a Tree branching over Nat,
// an axiom and a definition, bypassing the inductive processor.
type fixture struct {
	a    *term.Arena
	b    *term.Builder
	env  *env.Environment
	nat  term.ID
	zero term.ID
	succ term.ID
	tree term.ID
	leaf term.ID
	node term.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	a := term.NewArena()
	names := a.Names()
	f := &fixture{
		a:    a,
		b:    term.NewBuilder(a),
		env:  env.New(names),
		nat:  a.IndNamed("Nat"),
		zero: a.CtorNamed("Nat::zero"),
		succ: a.CtorNamed("Nat::succ"),
		tree: a.IndNamed("Tree"),
		leaf: a.CtorNamed("Tree::leaf"),
		node: a.CtorNamed("Tree::node"),
	}
	set := a.Sort(term.Set)
	o := f.env.Begin()
	add := func(e *env.Entry) {
		if err := o.Add(e); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	id := func(s string) source.StringID { return names.Intern(s) }

	add(&env.Entry{Kind: env.EntryInductive, Name: id("Nat"), Type: set, Inductive: &env.Inductive{
		Name: id("Nat"), Universe: term.Set, Type: set, LargeElim: true,
		Ctors: []source.StringID{id("Nat::zero"), id("Nat::succ")},
	}})
	add(&env.Entry{Kind: env.EntryConstructor, Name: id("Nat::zero"), Type: f.nat, Constructor: &env.Constructor{
		Name: id("Nat::zero"), Inductive: id("Nat"), Ordinal: 0, Type: f.nat,
	}})
	succTy := f.b.Arrow(f.nat, f.nat)
	add(&env.Entry{Kind: env.EntryConstructor, Name: id("Nat::succ"), Type: succTy, Constructor: &env.Constructor{
		Name: id("Nat::succ"), Inductive: id("Nat"), Ordinal: 1, Type: succTy,
		Fields: []env.Field{{Universe: term.Set, Recursive: true}},
	}})
	o.BindNumerals(env.Numerals{Inductive: id("Nat"), Zero: id("Nat::zero"), Succ: id("Nat::succ")})

	add(&env.Entry{Kind: env.EntryInductive, Name: id("Tree"), Type: set, Inductive: &env.Inductive{
		Name: id("Tree"), Universe: term.Set, Type: set, LargeElim: true,
		Ctors: []source.StringID{id("Tree::leaf"), id("Tree::node")},
	}})
	add(&env.Entry{Kind: env.EntryConstructor, Name: id("Tree::leaf"), Type: f.tree, Constructor: &env.Constructor{
		Name: id("Tree::leaf"), Inductive: id("Tree"), Ordinal: 0, Type: f.tree,
	}})
	nodeTy := f.b.Arrow(f.b.Arrow(f.nat, f.tree), f.tree)
	add(&env.Entry{Kind: env.EntryConstructor, Name: id("Tree::node"), Type: nodeTy, Constructor: &env.Constructor{
		Name: id("Tree::node"), Inductive: id("Tree"), Ordinal: 1, Type: nodeTy,
		Fields: []env.Field{{Universe: term.Set, Recursive: true}},
	}})

	add(&env.Entry{Kind: env.EntryAxiom, Name: id("a"), Type: f.nat})
	two := a.App(f.succ, a.App(f.succ, f.zero))
	add(&env.Entry{Kind: env.EntryDefinition, Name: id("two"), Type: f.nat, Value: two})
	add(&env.Entry{Kind: env.EntryUniverse, Name: id("Small"), Type: a.Sort(term.Type(0)), Value: set})
	if err := f.env.Commit(o); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return f
}

// count is Nat::rec[Set] (fn _ => Nat) zero (fn _ ih => succ ih).
func (f *fixture) count(major term.ID) term.ID {
	motive := f.b.Lam("_", f.nat, func(term.ID) term.ID { return f.nat })
	step := f.b.Lam("n", f.nat, func(term.ID) term.ID {
		return f.b.Lam("ih", f.nat, func(ih term.ID) term.ID { return f.a.App(f.succ, ih) })
	})
	return f.a.Apps(f.a.ElimNamed("Nat", term.Set), motive, f.zero, step, major)
}

func TestBetaIdentity(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	idNat := f.b.Lam("x", f.nat, func(x term.ID) term.ID { return x })
	for _, arg := range []term.ID{f.zero, f.a.ConstNamed("a"), f.a.Nat(7), idNat} {
		if got := e.Whnf(f.a.App(idNat, arg)); got != arg {
			t.Fatalf("(fn x => x) %s reduced to %s", term.Format(f.a, nil, arg), term.Format(f.a, nil, got))
		}
	}
}

func TestDeltaUnfoldsDefinitionsOnly(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	two := f.a.ConstNamed("two")
	if got := e.Whnf(two); got != f.a.App(f.succ, f.a.App(f.succ, f.zero)) {
		t.Fatalf("Whnf(two) = %s", term.Format(f.a, nil, got))
	}
	if got := e.WhnfCore(two); got != two {
		t.Fatalf("WhnfCore must not unfold definitions")
	}
	if got := e.Whnf(f.a.ConstNamed("a")); got != f.a.ConstNamed("a") {
		t.Fatalf("axioms must not unfold")
	}
	if got := e.Whnf(f.a.ConstNamed("Small")); got != f.a.Sort(term.Set) {
		t.Fatalf("universe aliases unfold to their sort, got %s", term.Format(f.a, nil, got))
	}
}

func TestCountingMotiveYieldsLiteral(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	major := f.a.App(f.succ, f.a.App(f.succ, f.zero))
	if got := e.Normalize(f.count(major)); got != f.a.Nat(2) {
		t.Fatalf("count (succ (succ zero)) = %s, want 2", term.Format(f.a, nil, got))
	}
	if e.Stats.Iota != 3 {
		t.Fatalf("iota steps = %d, want 3", e.Stats.Iota)
	}
}

func TestEliminatorExpandsNumerals(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	if got := e.Normalize(f.count(f.a.Nat(3))); got != f.a.Nat(3) {
		t.Fatalf("count 3 = %s, want 3", term.Format(f.a, nil, got))
	}
	if got := e.Normalize(f.count(f.a.ConstNamed("two"))); got != f.a.Nat(2) {
		t.Fatalf("count two = %s, want 2", term.Format(f.a, nil, got))
	}
}

func TestStuckEliminator(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	open := f.count(f.a.ConstNamed("a"))
	if got := e.Whnf(open); got != open {
		t.Fatalf("eliminator on an axiom must be stuck, got %s", term.Format(f.a, nil, got))
	}
	partial, _ := f.a.Spine(open)
	partial = f.a.App(partial, f.zero)
	if got := e.Whnf(partial); got != partial {
		t.Fatalf("under-applied eliminator must be stuck")
	}
}

func TestHypothesisUnderBinders(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	// rec leaf => 5 | node g ih => ih 0, applied to node (fn _ => leaf).
	motive := f.b.Lam("_", f.tree, func(term.ID) term.ID { return f.nat })
	nodeCase := f.b.Lam("g", f.b.Arrow(f.nat, f.tree), func(term.ID) term.ID {
		return f.b.Lam("ih", f.b.Arrow(f.nat, f.nat), func(ih term.ID) term.ID {
			return f.a.App(ih, f.a.Nat(0))
		})
	})
	major := f.a.App(f.node, f.b.Lam("_", f.nat, func(term.ID) term.ID { return f.leaf }))
	rec := f.a.Apps(f.a.ElimNamed("Tree", term.Set), motive, f.a.Nat(5), nodeCase, major)
	if got := e.Normalize(rec); got != f.a.Nat(5) {
		t.Fatalf("tree recursion = %s, want 5", term.Format(f.a, nil, got))
	}
}

func TestDefEq(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	ax := f.a.ConstNamed("a")
	succFn := f.b.Lam("n", f.nat, func(n term.ID) term.ID { return f.a.App(f.succ, n) })

	cases := []struct {
		name string
		s, t term.ID
		want bool
	}{
		{"numeral against constructors", f.a.Nat(2), f.a.App(f.succ, f.a.App(f.succ, f.zero)), true},
		{"numeral against definition", f.a.ConstNamed("two"), f.a.Nat(2), true},
		{"distinct numerals", f.a.Nat(2), f.a.Nat(3), false},
		{"open numeral", f.a.App(f.succ, ax), f.a.Nat(1), false},
		{"eta", succFn, f.succ, true},
		{"eta reversed", f.succ, succFn, true},
		{"sorts are not cumulative", f.a.Sort(term.Prop), f.a.Sort(term.Set), false},
		{"alias against its sort", f.a.ConstNamed("Small"), f.a.Sort(term.Set), true},
		{"pi domains", f.b.Arrow(f.nat, f.nat), f.b.Arrow(f.tree, f.nat), false},
		{"pi under binder", f.b.Arrow(f.nat, f.a.ConstNamed("two")), f.b.Arrow(f.nat, f.a.Nat(2)), true},
		{"beta inside argument", f.a.App(f.succ, f.a.App(succFn, ax)), f.a.App(f.succ, f.a.App(f.succ, ax)), true},
		{"different heads", f.a.App(f.succ, ax), ax, false},
	}
	for _, tc := range cases {
		if got := e.DefEq(nil, tc.s, tc.t); got != tc.want {
			t.Fatalf("%s: DefEq(%s, %s) = %v, want %v", tc.name,
				term.Format(f.a, nil, tc.s), term.Format(f.a, nil, tc.t), got, tc.want)
		}
	}
}

func TestDefEqComparesDefinitionsLazily(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	ctx := term.NewContext()
	x := ctx.Push(f.a, "x", f.nat)
	double := f.a.ConstNamed("double")
	if !e.DefEq(ctx, f.a.App(double, x), f.a.App(double, x)) {
		t.Fatalf("identical terms must be equal")
	}
	idNat := f.b.Lam("y", f.nat, func(y term.ID) term.ID { return y })
	two := f.a.ConstNamed("two")
	before := e.Stats.Delta
	if !e.DefEq(ctx, f.a.App(two, x), f.a.App(two, f.a.App(idNat, x))) {
		t.Fatalf("same definition applied to the same argument")
	}
	if e.Stats.Delta != before {
		t.Fatalf("argument-wise comparison must not unfold")
	}
	if ctx.Len() != 1 {
		t.Fatalf("DefEq leaked locals into the context")
	}
}

func TestIrrelevanceHook(t *testing.T) {
	f := newFixture(t)
	e := New(f.a, f.env)
	p, q := f.a.ConstNamed("p"), f.a.ConstNamed("q")
	if e.DefEq(nil, p, q) {
		t.Fatalf("distinct axioms are not equal without the hook")
	}
	var calls int
	e.SetIrrelevance(func(_ *term.Context, s, u term.ID) bool {
		calls++
		return (s == p && u == q) || (s == q && u == p)
	})
	if !e.DefEq(nil, p, q) || calls == 0 {
		t.Fatalf("hook must decide equality of proofs")
	}
}
