package env

import (
	"fmt"

	"frkernel/internal/source"
	"frkernel/internal/term"
)

// EntryKind tells which declaration form produced an entry.
type EntryKind uint8

const (
	EntryInvalid EntryKind = iota
	EntryUniverse
	EntryAxiom
	EntryInductive
	EntryConstructor
	EntryDefinition
)

func (k EntryKind) String() string {
	switch k {
	case EntryUniverse:
		return "universe"
	case EntryAxiom:
		return "axiom"
	case EntryInductive:
		return "inductive"
	case EntryConstructor:
		return "constructor"
	case EntryDefinition:
		return "definition"
	default:
		return fmt.Sprintf("EntryKind(%d)", k)
	}
}

// Entry is one committed declaration. Entries are immutable once committed.
type Entry struct {
	Kind EntryKind
	Name source.StringID
	// Type is the closed type of the declared name.
	Type term.ID
	// Value is the body of a definition or the Sort a universe alias
	// stands for; NoID for everything else.
	Value term.ID

	Inductive   *Inductive   // EntryInductive
	Constructor *Constructor // EntryConstructor
}

// Unfoldable reports whether delta reduction may replace the name by Value.
func (e *Entry) Unfoldable() bool {
	return (e.Kind == EntryDefinition || e.Kind == EntryUniverse) && e.Value != term.NoID
}

// Inductive describes a checked inductive family.
type Inductive struct {
	Name       source.StringID
	NumParams  int
	NumIndices int
	Universe   term.Universe
	// Type is Fn(params..., indices...) -> Sort Universe.
	Type  term.ID
	Ctors []source.StringID // in declaration order
	// LargeElim reports whether motives may live outside Prop. Always true
	// for data types.
	LargeElim bool
}

// Field describes one constructor argument after the parameters.
type Field struct {
	Universe term.Universe
	// Recursive arguments have the form Fn(ys...) -> I params indices.
	Recursive bool
}

// Constructor describes one checked constructor.
type Constructor struct {
	Name      source.StringID // qualified, I::c
	Inductive source.StringID
	Ordinal   int
	// Type is Fn(params..., fields...) -> I params indices, with every
	// field domain kept in the syntactic shape positivity was checked on.
	Type   term.ID
	Fields []Field
}

// NumFields counts the constructor arguments after the parameters.
func (c *Constructor) NumFields() int { return len(c.Fields) }

// Numerals names the inductive numeral literals denote and its two
// constructors.
type Numerals struct {
	Inductive source.StringID
	Zero      source.StringID
	Succ      source.StringID
}
