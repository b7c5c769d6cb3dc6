package kernel

import (
	"fmt"

	"frkernel/internal/inductive"
	"frkernel/internal/term"
)

// InductiveDecl describes a family of inductive types. Binder and
// constructor types refer to earlier binders as loose bound variables.
type InductiveDecl = inductive.Decl

type (
	Binder          = inductive.Binder
	ConstructorDecl = inductive.Constructor
)

// DeclKind selects the environment operation a Decl stands for.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclUniverse
	DeclAxiom
	DeclInductive
	DeclDefinition
)

func (k DeclKind) String() string {
	switch k {
	case DeclUniverse:
		return "universe"
	case DeclAxiom:
		return "axiom"
	case DeclInductive:
		return "inductive"
	case DeclDefinition:
		return "definition"
	default:
		return fmt.Sprintf("DeclKind(%d)", uint8(k))
	}
}

// Decl is one top-level declaration. Terms refer to the arena of the
// kernel they are declared in.
type Decl struct {
	Kind      DeclKind       `msgpack:"kind"`
	Name      string         `msgpack:"name"`
	Universe  term.Universe  `msgpack:"universe,omitempty"`
	Type      term.ID        `msgpack:"type,omitempty"`
	Value     term.ID        `msgpack:"value,omitempty"`
	Inductive *InductiveDecl `msgpack:"inductive,omitempty"`
}

func UniverseDecl(name string, u term.Universe) Decl {
	return Decl{Kind: DeclUniverse, Name: name, Universe: u}
}

func AxiomDecl(name string, ty term.ID) Decl {
	return Decl{Kind: DeclAxiom, Name: name, Type: ty}
}

func InductiveDeclOf(d InductiveDecl) Decl {
	return Decl{Kind: DeclInductive, Name: d.Name, Inductive: &d}
}

func DefinitionDecl(name string, ty, value term.ID) Decl {
	return Decl{Kind: DeclDefinition, Name: name, Type: ty, Value: value}
}

// Terms lists the terms a declaration mentions, for dependency analysis.
func (d Decl) Terms() []term.ID {
	var out []term.ID
	add := func(t term.ID) {
		if t != term.NoID {
			out = append(out, t)
		}
	}
	add(d.Type)
	add(d.Value)
	if ind := d.Inductive; ind != nil {
		for _, b := range ind.Params {
			add(b.Type)
		}
		for _, b := range ind.Indices {
			add(b.Type)
		}
		for _, c := range ind.Constructors {
			add(c.Type)
		}
	}
	return out
}

// Defines lists the names a successful declaration adds.
func (d Decl) Defines() []string {
	if d.Kind != DeclInductive || d.Inductive == nil {
		return []string{d.Name}
	}
	out := make([]string, 0, 1+len(d.Inductive.Constructors))
	out = append(out, d.Inductive.Name)
	for _, c := range d.Inductive.Constructors {
		out = append(out, inductive.QualifiedName(d.Inductive.Name, c.Name))
	}
	return out
}
