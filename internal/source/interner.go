package source

import (
	"fmt"
	"slices"
	"sync"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// StringID identifies an interned name.
type StringID uint32

// NoStringID is reserved for the empty name.
const NoStringID StringID = 0

// Interner maps declaration and binder names to stable StringIDs.
// Names are NFC-normalised on the way in, so `Nat::succ` typed with
// precomposed or decomposed code points resolves to the same entry.
// Safe for concurrent use.
type Interner struct {
	mu    sync.RWMutex
	byID  []string            // byID[0] = "" for NoStringID
	index map[string]StringID // normalised name -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern inserts the name and returns its ID, reusing an existing entry.
func (i *Interner) Intern(s string) StringID {
	key := norm.NFC.String(s)

	i.mu.RLock()
	id, ok := i.index[key]
	i.mu.RUnlock()
	if ok {
		return id
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("name table overflow: %w", err))
	}
	id = StringID(n)
	i.byID = append(i.byID, key)
	i.index[key] = id
	return id
}

// Find returns the ID of an already interned name without inserting it.
func (i *Interner) Find(s string) (StringID, bool) {
	key := norm.NFC.String(s)
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.index[key]
	return id, ok
}

// Lookup returns the name for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on an unknown id.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Has reports whether id was produced by this interner.
func (i *Interner) Has(id StringID) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return int(id) < len(i.byID)
}

// Len counts entries including NoStringID, so it is never below 1.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}

// Snapshot returns a copy of all names ordered by ID.
func (i *Interner) Snapshot() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.byID)
}

// Restore builds an interner whose IDs match a previous Snapshot.
func Restore(names []string) (*Interner, error) {
	in := NewInterner()
	for idx, name := range names {
		if idx == 0 {
			if name != "" {
				return nil, fmt.Errorf("name snapshot: slot 0 must be empty, got %q", name)
			}
			continue
		}
		if got := in.Intern(name); int(got) != idx {
			return nil, fmt.Errorf("name snapshot: %q restored as %d, want %d", name, got, idx)
		}
	}
	return in, nil
}
