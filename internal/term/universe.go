package term

import (
	"fmt"
	"math"
)

// Universe is a level in the hierarchy Prop < Set < Type 0 < Type 1 < ...
// Prop is impredicative and proof-irrelevant; it is a distinguished bottom,
// not a lower rung of the predicative tower: there is no cumulativity.
type Universe uint32

const (
	Prop Universe = 0
	Set  Universe = 1

	// Top is the highest representable universe. Sort Top has no type, so
	// it may not appear in checked terms.
	Top Universe = math.MaxUint32
)

// Type returns the higher universe Type n.
func Type(n uint32) Universe {
	if n > math.MaxUint32-2 {
		panic(fmt.Errorf("universe Type %d overflows", n))
	}
	return Universe(n + 2)
}

func (u Universe) IsProp() bool { return u == Prop }

// Succ is the universe the sort u inhabits: Prop : Set, Set : Type 0,
// Type n : Type (n+1). Callers reject Top first.
func (u Universe) Succ() Universe {
	if u == Top {
		panic("universe successor overflows")
	}
	return u + 1
}

func (u Universe) String() string {
	switch u {
	case Prop:
		return "Prop"
	case Set:
		return "Set"
	default:
		return fmt.Sprintf("Type %d", uint32(u)-2)
	}
}

// Max returns the larger of two universes.
func Max(a, b Universe) Universe {
	if a > b {
		return a
	}
	return b
}

// PiUniverse is the universe of Fn(x: A) -> B given A : dom and B : cod.
// A Prop codomain makes the whole type a proposition; a Prop domain does not
// raise the level of a data codomain.
func PiUniverse(dom, cod Universe) Universe {
	switch {
	case cod.IsProp():
		return Prop
	case dom.IsProp():
		return cod
	default:
		return Max(dom, cod)
	}
}

// Dominates reports whether an inductive living in target may take a
// constructor argument whose type lives in arg. A proposition carries only
// proofs; a proof fits in any data universe.
func Dominates(target, arg Universe) bool {
	if target.IsProp() {
		return arg.IsProp()
	}
	return arg.IsProp() || arg <= target
}
