// Package prelude builds the standard fragment: universe aliases, the
// polymorphic identity, natural numbers, length-indexed vectors and the
// trivially true proposition.
package prelude

import (
	"frkernel/internal/kernel"
	"frkernel/internal/term"
)

// Names of the prelude declarations, in declaration order.
const (
	Prop = "Prop"
	Set  = "Set"
	Type = "Type"
	ID   = "id"
	Nat  = "Nat"
	Vec  = "Vec"
	True = "True"
)

// Decls builds the prelude in a's terms.
func Decls(a *term.Arena) []kernel.Decl {
	b := term.NewBuilder(a)
	set := a.Sort(term.Set)
	nat := a.IndNamed(Nat)
	vec := a.IndNamed(Vec)
	succ := a.CtorNamed("Nat::succ")

	idType := b.Pi("T", set, func(T term.ID) term.ID { return b.Arrow(T, T) })
	idValue := b.Lam("T", set, func(T term.ID) term.ID {
		return b.Lam("x", T, func(x term.ID) term.ID { return x })
	})

	// Constructor types see the parameter T as loose variable 0.
	overT := func(body func(T term.ID) term.ID) term.ID {
		T := a.FreshLocal()
		return a.Abstract(body(T), T)
	}

	return []kernel.Decl{
		kernel.UniverseDecl(Prop, term.Prop),
		kernel.UniverseDecl(Set, term.Set),
		kernel.UniverseDecl(Type, term.Type(0)),
		kernel.DefinitionDecl(ID, idType, idValue),
		kernel.InductiveDeclOf(kernel.InductiveDecl{
			Name:     Nat,
			Universe: term.Set,
			Constructors: []kernel.ConstructorDecl{
				{Name: "zero", Type: nat},
				{Name: "succ", Type: b.Arrow(nat, nat)},
			},
		}),
		kernel.InductiveDeclOf(kernel.InductiveDecl{
			Name:     Vec,
			Params:   []kernel.Binder{{Name: "T", Type: set}},
			Indices:  []kernel.Binder{{Name: "n", Type: nat}},
			Universe: term.Set,
			Constructors: []kernel.ConstructorDecl{
				{Name: "nil", Type: overT(func(T term.ID) term.ID { return a.Apps(vec, T, a.Nat(0)) })},
				{Name: "cons", Type: overT(func(T term.ID) term.ID {
					return b.Pi("n", nat, func(n term.ID) term.ID {
						return b.Arrow(T, b.Arrow(a.Apps(vec, T, n), a.Apps(vec, T, a.App(succ, n))))
					})
				})},
			},
		}),
		kernel.InductiveDeclOf(kernel.InductiveDecl{
			Name:         True,
			Universe:     term.Prop,
			Constructors: []kernel.ConstructorDecl{{Name: "trivial", Type: a.IndNamed(True)}},
		}),
	}
}

// Load declares the prelude into k and returns the first failure.
func Load(k *kernel.Kernel) error {
	for _, err := range k.Process(Decls(k.Arena())) {
		if err != nil {
			return err
		}
	}
	return nil
}
