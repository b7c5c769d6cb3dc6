package term

import (
	"fmt"

	"frkernel/internal/source"
)

// ID uniquely identifies a term inside an Arena.
type ID uint32

// NoID marks the absence of a term.
const NoID ID = 0

// Kind enumerates the term variants.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVar          // loose bound variable, Index = de Bruijn index
	KindLocal        // free local from an opened binder, Index = unique id
	KindSort         // universe literal, Index = Universe
	KindPi           // dependent function type, A = domain, B = codomain
	KindLam          // abstraction, A = domain, B = body
	KindApp          // application, A = function, B = argument
	KindConst        // top-level definition, axiom or universe alias
	KindInd          // inductive type reference
	KindCtor         // constructor reference, Name is qualified (Nat::succ)
	KindElim         // eliminator of inductive Name into universe Index
	KindNat          // numeral literal, Index = value
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVar:
		return "var"
	case KindLocal:
		return "local"
	case KindSort:
		return "sort"
	case KindPi:
		return "pi"
	case KindLam:
		return "lam"
	case KindApp:
		return "app"
	case KindConst:
		return "const"
	case KindInd:
		return "ind"
	case KindCtor:
		return "ctor"
	case KindElim:
		return "elim"
	case KindNat:
		return "nat"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Binder reports whether terms of this kind bind a variable in B.
func (k Kind) Binder() bool {
	return k == KindPi || k == KindLam
}

// Node is the compact descriptor of one term. Binders carry no names, so
// alpha-equivalent terms have equal descriptors and therefore equal IDs.
type Node struct {
	Kind  Kind
	Name  source.StringID
	Index uint32
	A     ID
	B     ID
}

// Universe returns the universe stored in a KindSort or KindElim node.
func (n Node) Universe() Universe {
	return Universe(n.Index)
}
