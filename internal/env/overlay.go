package env

import (
	"frkernel/internal/kerr"
	"frkernel/internal/source"
)

// Overlay stages the entries of one declaration. Lookups see staged
// entries first, then the committed environment. An overlay belongs to a
// single goroutine.
type Overlay struct {
	base      *Environment
	staged    map[source.StringID]*Entry
	order     []source.StringID
	numerals  *Numerals
	committed bool
}

// Base returns the environment the overlay will be committed to.
func (o *Overlay) Base() *Environment { return o.base }

func (o *Overlay) Lookup(name source.StringID) (*Entry, bool) {
	if entry, ok := o.staged[name]; ok {
		return entry, true
	}
	return o.base.Lookup(name)
}

func (o *Overlay) Numerals() (Numerals, bool) {
	if o.numerals != nil {
		return *o.numerals, true
	}
	return o.base.Numerals()
}

// Add stages entry, failing when its name is already visible.
func (o *Overlay) Add(entry *Entry) error {
	if o.committed {
		panic("env: overlay reused after commit")
	}
	if _, exists := o.Lookup(entry.Name); exists {
		return kerr.New(kerr.DuplicateName, "%s is already declared", o.base.names.MustLookup(entry.Name))
	}
	o.staged[entry.Name] = entry
	o.order = append(o.order, entry.Name)
	return nil
}

// BindNumerals makes numeral literals denote n once the overlay commits.
func (o *Overlay) BindNumerals(n Numerals) {
	o.numerals = &n
}

// Staged returns the staged names in order.
func (o *Overlay) Staged() []source.StringID {
	return o.order
}
