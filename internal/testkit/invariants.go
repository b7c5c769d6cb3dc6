// Package testkit holds invariant checks shared by package tests.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"frkernel/internal/env"
	"frkernel/internal/term"
)

// CheckArenaInvariants verifies the structural invariants of an arena:
//  1. slot 0 is the invalid sentinel and every other node is reachable by
//     Lookup;
//  2. children precede their parents;
//  3. no node is interned twice.
func CheckArenaInvariants(a *term.Arena) error {
	if a == nil {
		return fmt.Errorf("nil arena")
	}
	n, err := safecast.Conv[uint32](a.Len())
	if err != nil {
		return fmt.Errorf("arena length overflow: %w", err)
	}
	if _, ok := a.Lookup(term.NoID); ok {
		return fmt.Errorf("NoID resolves to a node")
	}
	seen := make(map[term.Node]term.ID, n)
	for i := uint32(1); i < n; i++ {
		id := term.ID(i)
		node, ok := a.Lookup(id)
		if !ok {
			return fmt.Errorf("node %d missing", id)
		}
		switch node.Kind {
		case term.KindPi, term.KindLam, term.KindApp:
			if node.A == term.NoID || node.B == term.NoID || node.A >= id || node.B >= id {
				return fmt.Errorf("node %d (%s) has children %d, %d", id, node.Kind, node.A, node.B)
			}
		}
		if prev, dup := seen[node]; dup {
			return fmt.Errorf("node %d duplicates node %d", id, prev)
		}
		seen[node] = id
	}
	return nil
}

// CheckEnvInvariants verifies that every committed entry is well formed:
// types are closed terms of a, unfoldable values are closed, inductives list
// committed constructors that point back at them.
func CheckEnvInvariants(a *term.Arena, e *env.Environment) error {
	for _, entry := range e.Entries() {
		name := e.Names().MustLookup(entry.Name)
		if _, ok := a.Lookup(entry.Type); !ok {
			return fmt.Errorf("%s: type %d is not in the arena", name, entry.Type)
		}
		if !a.Closed(entry.Type) {
			return fmt.Errorf("%s: type is not closed", name)
		}
		if entry.Unfoldable() && !a.Closed(entry.Value) {
			return fmt.Errorf("%s: value is not closed", name)
		}
		switch entry.Kind {
		case env.EntryInductive:
			if entry.Inductive == nil {
				return fmt.Errorf("%s: inductive entry without body", name)
			}
			for i, cn := range entry.Inductive.Ctors {
				c, ok := e.Lookup(cn)
				if !ok || c.Kind != env.EntryConstructor {
					return fmt.Errorf("%s: constructor %d is not committed", name, i)
				}
				if c.Constructor.Inductive != entry.Name || c.Constructor.Ordinal != i {
					return fmt.Errorf("%s: constructor %s points at the wrong inductive or ordinal",
						name, e.Names().MustLookup(cn))
				}
			}
		case env.EntryConstructor:
			if entry.Constructor == nil {
				return fmt.Errorf("%s: constructor entry without body", name)
			}
		}
	}
	if num, ok := e.Numerals(); ok {
		ind, ok := e.Lookup(num.Inductive)
		if !ok || ind.Kind != env.EntryInductive {
			return fmt.Errorf("numerals bound to a missing inductive")
		}
	}
	return nil
}
