// Package inductive validates inductive family declarations and synthesises
// their eliminators.
package inductive

import (
	"frkernel/internal/term"
)

// Binder is one parameter or index of an inductive. Type may refer to the
// preceding binders of the same declaration as loose bound variables, the
// nearest one being index 0. Index binders see every parameter.
type Binder struct {
	Name string
	Type term.ID
}

// Constructor is one constructor as written. Type sees the parameters as
// loose bound variables and must end in Name params... indices...; the
// constructor is registered as Name::<constructor>.
type Constructor struct {
	Name string
	Type term.ID
}

// Decl is an inductive family declaration.
type Decl struct {
	Name         string
	Params       []Binder
	Indices      []Binder
	Universe     term.Universe
	Constructors []Constructor
}

// QualifiedName joins an inductive and constructor name the way
// constructors are registered.
func QualifiedName(inductive, ctor string) string {
	return inductive + "::" + ctor
}

// Typer is the slice of the type checker the processor needs. It must read
// through the same overlay the processor stages into.
type Typer interface {
	InferUniverse(ctx *term.Context, t term.ID) (term.Universe, error)
	Whnf(t term.ID) term.ID
}
