package kernel_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"frkernel/internal/env"
	"frkernel/internal/kernel"
	"frkernel/internal/kerr"
	"frkernel/internal/prelude"
	"frkernel/internal/term"
	"frkernel/internal/testkit"
	"frkernel/internal/trace"
)

type lib struct {
	k *kernel.Kernel
	a *term.Arena
	b *term.Builder

	nat, succ, zero, vec, cons, vnil, tru, trivial term.ID
}

func newLib(t *testing.T, opts kernel.Options) *lib {
	t.Helper()
	k := kernel.New(opts)
	if err := prelude.Load(k); err != nil {
		t.Fatalf("prelude: %v", err)
	}
	a := k.Arena()
	return &lib{
		k:       k,
		a:       a,
		b:       k.Builder(),
		nat:     a.IndNamed("Nat"),
		succ:    a.CtorNamed("Nat::succ"),
		zero:    a.CtorNamed("Nat::zero"),
		vec:     a.IndNamed("Vec"),
		cons:    a.CtorNamed("Vec::cons"),
		vnil:    a.CtorNamed("Vec::nil"),
		tru:     a.IndNamed("True"),
		trivial: a.CtorNamed("True::trivial"),
	}
}

func wantKind(t *testing.T, err error, k kerr.Kind) *kerr.Error {
	t.Helper()
	var e *kerr.Error
	if !errors.As(err, &e) || e.Kind != k {
		t.Fatalf("got %v, want %s", err, k)
	}
	return e
}

func TestPreludeRegistersEverything(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	want := map[string]env.EntryKind{
		"Prop":          env.EntryUniverse,
		"Set":           env.EntryUniverse,
		"Type":          env.EntryUniverse,
		"id":            env.EntryDefinition,
		"Nat":           env.EntryInductive,
		"Nat::zero":     env.EntryConstructor,
		"Nat::succ":     env.EntryConstructor,
		"Vec":           env.EntryInductive,
		"Vec::nil":      env.EntryConstructor,
		"Vec::cons":     env.EntryConstructor,
		"True":          env.EntryInductive,
		"True::trivial": env.EntryConstructor,
	}
	got := make(map[string]env.EntryKind)
	for name := range want {
		if entry, ok := l.k.Lookup(name); ok {
			got[name] = entry.Kind
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("prelude entries (-want +got):\n%s", diff)
	}
	if _, ok := l.k.Env().Numerals(); !ok {
		t.Fatalf("prelude must bind numerals")
	}
}

func TestTrivialProvesTrue(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	if err := l.k.DeclareDefinition("t", l.tru, l.trivial); err != nil {
		t.Fatalf("trivial : True: %v", err)
	}
	u, err := l.k.Checker().InferUniverse(nil, l.tru)
	if err != nil || !u.IsProp() {
		t.Fatalf("True lives in %v (%v), want Prop", u, err)
	}
}

func TestIdentityAppliesDependently(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	a, b := l.a, l.b
	idNat := a.App(a.ConstNamed("id"), l.nat)
	if err := l.k.DeclareDefinition("idNat", b.Arrow(l.nat, l.nat), idNat); err != nil {
		t.Fatalf("idNat: %v", err)
	}
	err := l.k.DeclareDefinition("idBad", b.Arrow(l.nat, l.tru), idNat)
	wantKind(t, err, kerr.TypeMismatch)
}

func TestVecIndexDiscipline(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	a, b := l.a, l.b
	ty := b.Pi("n", l.nat, func(n term.ID) term.ID {
		return b.Arrow(a.Apps(l.vec, l.nat, n), a.Apps(l.vec, l.nat, a.App(l.succ, n)))
	})
	good := b.Lam("n", l.nat, func(n term.ID) term.ID {
		return b.Lam("v", a.Apps(l.vec, l.nat, n), func(v term.ID) term.ID {
			return a.Apps(l.cons, l.nat, n, a.Nat(0), v)
		})
	})
	if err := l.k.DeclareDefinition("push", ty, good); err != nil {
		t.Fatalf("push: %v", err)
	}

	before := l.k.Env().Len()
	badTy := b.Pi("n", l.nat, func(n term.ID) term.ID {
		return b.Pi("m", l.nat, func(m term.ID) term.ID {
			return b.Arrow(a.Apps(l.vec, l.nat, m), a.Apps(l.vec, l.nat, a.App(l.succ, n)))
		})
	})
	bad := b.Lam("n", l.nat, func(n term.ID) term.ID {
		return b.Lam("m", l.nat, func(m term.ID) term.ID {
			return b.Lam("v", a.Apps(l.vec, l.nat, m), func(v term.ID) term.ID {
				return a.Apps(l.cons, l.nat, n, a.Nat(0), v)
			})
		})
	})
	e := wantKind(t, l.k.DeclareDefinition("pushBad", badTy, bad), kerr.TypeMismatch)
	if e.Decl != "pushBad" {
		t.Fatalf("error names %q, want pushBad", e.Decl)
	}
	if l.k.Env().Len() != before {
		t.Fatalf("failed definition changed the environment")
	}
	if _, ok := l.k.Lookup("pushBad"); ok {
		t.Fatalf("pushBad was registered")
	}
}

func TestVecLengthComputes(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	a, b := l.a, l.b
	vecNat := func(n term.ID) term.ID { return a.Apps(l.vec, l.nat, n) }
	ty := b.Pi("n", l.nat, func(n term.ID) term.ID { return b.Arrow(vecNat(n), l.nat) })
	motive := b.Lam("n", l.nat, func(n term.ID) term.ID {
		return b.Lam("v", vecNat(n), func(term.ID) term.ID { return l.nat })
	})
	step := b.Lam("k", l.nat, func(k term.ID) term.ID {
		return b.Lam("x", l.nat, func(term.ID) term.ID {
			return b.Lam("w", vecNat(k), func(term.ID) term.ID {
				return b.Lam("ih", l.nat, func(ih term.ID) term.ID { return a.App(l.succ, ih) })
			})
		})
	})
	length := b.Lam("n", l.nat, func(n term.ID) term.ID {
		return b.Lam("v", vecNat(n), func(v term.ID) term.ID {
			return a.Apps(a.ElimNamed("Vec", term.Set), l.nat, motive, a.Nat(0), step, n, v)
		})
	})
	if err := l.k.DeclareDefinition("length", ty, length); err != nil {
		t.Fatalf("length: %v", err)
	}

	xs := a.Apps(l.cons, l.nat, a.Nat(1), a.Nat(7),
		a.Apps(l.cons, l.nat, a.Nat(0), a.Nat(3), a.App(l.vnil, l.nat)))
	call := a.Apps(a.ConstNamed("length"), a.Nat(2), xs)
	c := l.k.Checker()
	if err := c.Check(nil, call, l.nat); err != nil {
		t.Fatalf("length call: %v", err)
	}
	if got := c.Engine().Normalize(call); got != a.Nat(2) {
		t.Fatalf("length = %s, want 2", term.Format(a, nil, got))
	}
}

func TestNegativeInductiveIsRejectedAtomically(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	a, b := l.a, l.b
	self := a.IndNamed("Bad")
	before := l.k.Env().Len()
	err := l.k.DeclareInductive(kernel.InductiveDecl{
		Name:     "Bad",
		Universe: term.Set,
		Constructors: []kernel.ConstructorDecl{
			{Name: "ok", Type: self},
			{Name: "mk", Type: b.Arrow(b.Arrow(self, l.nat), self)},
		},
	})
	e := wantKind(t, err, kerr.PositivityViolation)
	if e.Decl != "Bad" {
		t.Fatalf("error names %q, want Bad", e.Decl)
	}
	for _, name := range []string{"Bad", "Bad::ok", "Bad::mk"} {
		if _, ok := l.k.Lookup(name); ok {
			t.Fatalf("%s leaked into the environment", name)
		}
	}
	if l.k.Env().Len() != before {
		t.Fatalf("environment grew from %d to %d", before, l.k.Env().Len())
	}
	if err := testkit.CheckEnvInvariants(l.a, l.k.Env()); err != nil {
		t.Fatalf("after rejection: %v", err)
	}
	if err := testkit.CheckArenaInvariants(l.a); err != nil {
		t.Fatal(err)
	}
}

func TestPropInductiveRejectsDataFields(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	squash := l.a.IndNamed("Squash")
	before := l.k.Env().Len()
	err := l.k.DeclareInductive(kernel.InductiveDecl{
		Name:         "Squash",
		Universe:     term.Prop,
		Constructors: []kernel.ConstructorDecl{{Name: "mk", Type: l.b.Arrow(l.nat, squash)}},
	})
	wantKind(t, err, kerr.UniverseError)
	if l.k.Env().Len() != before {
		t.Fatalf("rejected Squash changed the environment")
	}

	proof := l.a.IndNamed("Proof")
	err = l.k.DeclareInductive(kernel.InductiveDecl{
		Name:         "Proof",
		Universe:     term.Prop,
		Constructors: []kernel.ConstructorDecl{{Name: "mk", Type: l.b.Arrow(l.tru, proof)}},
	})
	if err != nil {
		t.Fatalf("a Prop inductive wrapping a proof: %v", err)
	}
}

func TestRerunIsRejected(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	before := l.k.Env().Len()
	for _, err := range l.k.Process(prelude.Decls(l.a)) {
		wantKind(t, err, kerr.DuplicateName)
	}
	if l.k.Env().Len() != before {
		t.Fatalf("re-run changed the environment")
	}
}

func TestDeclarationErrors(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	a, b := l.a, l.b
	cases := []struct {
		name string
		decl kernel.Decl
		want kerr.Kind
	}{
		{"open type", kernel.AxiomDecl("open", a.Var(0)), kerr.UnboundVariable},
		{"axiom of a non-type", kernel.AxiomDecl("zeroAx", a.Nat(0)), kerr.UniverseError},
		{"undeclared name", kernel.DefinitionDecl("ghost", l.nat, a.ConstNamed("nothing")), kerr.UnboundVariable},
		{"applying a numeral", kernel.DefinitionDecl("app", l.nat, a.App(a.Nat(1), a.Nat(2))), kerr.NotAFunctionType},
		{"unknown constructor", kernel.DefinitionDecl("c", l.nat, a.CtorNamed("Nat::three")), kerr.UnknownConstructor},
		{"unknown inductive", kernel.AxiomDecl("ax", a.IndNamed("List")), kerr.UnknownInductive},
		{"Set is not in Set", kernel.DefinitionDecl("s", a.Sort(term.Set), a.Sort(term.Set)), kerr.UniverseError},
		{"missing body", kernel.Decl{Kind: kernel.DeclInductive, Name: "Empty"}, kerr.UnknownInductive},
		{"duplicate", kernel.UniverseDecl("Set", term.Set), kerr.DuplicateName},
		{"unnamed", kernel.AxiomDecl("", l.nat), kerr.Unknown},
		{"lambda against a non-function", kernel.DefinitionDecl("f", l.nat, b.Lam("x", l.nat, func(x term.ID) term.ID { return x })), kerr.TypeMismatch},
		{"top universe alias", kernel.UniverseDecl("Top", term.Top), kerr.UniverseError},
		{"axiom of the top sort", kernel.AxiomDecl("x", a.Sort(term.Top)), kerr.UniverseError},
		{"top sort as a value", kernel.DefinitionDecl("y", a.Sort(term.Top), a.Sort(term.Top)), kerr.UniverseError},
		{"eliminating into the top universe", kernel.AxiomDecl("z", a.App(a.ElimNamed("Nat", term.Top), l.zero)), kerr.UniverseError},
	}
	for _, tc := range cases {
		e := wantKind(t, l.k.Declare(tc.decl), tc.want)
		if e.Decl != tc.decl.Name {
			t.Fatalf("%s: error names %q, want %q", tc.name, e.Decl, tc.decl.Name)
		}
	}
}

func TestUniverseAliasUnfolds(t *testing.T) {
	l := newLib(t, kernel.DefaultOptions())
	a := l.a
	if err := l.k.DeclareDefinition("NatAgain", a.ConstNamed("Set"), l.nat); err != nil {
		t.Fatalf("Nat : Set alias: %v", err)
	}
	wantKind(t, l.k.DeclareDefinition("Wrong", a.ConstNamed("Prop"), l.nat), kerr.UniverseError)
}

func TestDeclarationsAreTraced(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	opts := kernel.DefaultOptions()
	opts.Tracer = ring
	l := newLib(t, opts)
	_ = l.k.DeclareAxiom("open", l.a.Var(3))

	var ends []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd {
			ends = append(ends, ev.Name+":"+ev.Detail)
		}
	}
	want := []string{
		"Prop:ok", "Set:ok", "Type:ok", "id:ok", "Nat:ok", "Vec:ok", "True:ok",
		"open:UnboundVariable",
	}
	if diff := cmp.Diff(want, ends); diff != "" {
		t.Fatalf("trace (-want +got):\n%s", diff)
	}
}
