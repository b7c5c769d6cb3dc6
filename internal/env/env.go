// Package env holds the global registry of checked declarations.
//
// The Environment is append-only: entries are never removed or changed
// after Commit. A declaration is processed against an Overlay that stages
// its entries on top of the committed state; committing the overlay makes
// all of them visible at once, discarding it leaves no trace.
package env

import (
	"slices"
	"sync"

	"frkernel/internal/kerr"
	"frkernel/internal/source"
)

// Reader is the read-only view the checker and the reduction engine use.
type Reader interface {
	Lookup(name source.StringID) (*Entry, bool)
	Numerals() (Numerals, bool)
}

// Environment is safe for concurrent readers alongside a committing writer.
type Environment struct {
	mu       sync.RWMutex
	names    *source.Interner
	entries  map[source.StringID]*Entry
	order    []source.StringID
	numerals *Numerals
}

func New(names *source.Interner) *Environment {
	return &Environment{
		names:   names,
		entries: make(map[source.StringID]*Entry, 64),
	}
}

// Names returns the name table entries are keyed by.
func (e *Environment) Names() *source.Interner { return e.names }

func (e *Environment) Lookup(name source.StringID) (*Entry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.entries[name]
	return entry, ok
}

// LookupName resolves a textual name without interning it.
func (e *Environment) LookupName(name string) (*Entry, bool) {
	id, ok := e.names.Find(name)
	if !ok {
		return nil, false
	}
	return e.Lookup(id)
}

func (e *Environment) Numerals() (Numerals, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.numerals == nil {
		return Numerals{}, false
	}
	return *e.numerals, true
}

// Len counts committed entries.
func (e *Environment) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}

// Order returns committed names in commit order.
func (e *Environment) Order() []source.StringID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.order)
}

// Entries returns committed entries in commit order.
func (e *Environment) Entries() []*Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Entry, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.entries[name])
	}
	return out
}

// Begin opens an overlay for staging one declaration.
func (e *Environment) Begin() *Overlay {
	return &Overlay{base: e, staged: make(map[source.StringID]*Entry, 4)}
}

// Commit appends every staged entry of o, or none of them when any name is
// already taken.
func (e *Environment) Commit(o *Overlay) error {
	if o.base != e {
		panic("env: overlay committed to a foreign environment")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, name := range o.order {
		if _, exists := e.entries[name]; exists {
			return kerr.New(kerr.DuplicateName, "%s is already declared", e.names.MustLookup(name))
		}
	}
	if o.numerals != nil && e.numerals != nil {
		return kerr.New(kerr.DuplicateName, "numerals are already bound to %s", e.names.MustLookup(e.numerals.Inductive))
	}
	for _, name := range o.order {
		e.entries[name] = o.staged[name]
		e.order = append(e.order, name)
	}
	if o.numerals != nil {
		n := *o.numerals
		e.numerals = &n
	}
	o.committed = true
	return nil
}

// Restore rebuilds an environment from entries in commit order, as
// produced by Entries. Used by the snapshot cache.
func Restore(names *source.Interner, entries []*Entry, numerals *Numerals) (*Environment, error) {
	e := New(names)
	o := e.Begin()
	for _, entry := range entries {
		if err := o.Add(entry); err != nil {
			return nil, err
		}
	}
	if numerals != nil {
		o.BindNumerals(*numerals)
	}
	if err := e.Commit(o); err != nil {
		return nil, err
	}
	return e, nil
}
