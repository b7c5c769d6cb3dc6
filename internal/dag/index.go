// Package dag orders declarations by the names they use, so that
// independent ones can be checked together.
package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// NodeID is a declaration's position in the input list.
type NodeID uint32

// Node is one declaration as far as ordering is concerned.
type Node struct {
	Name    string
	Defines []string // names the declaration adds
	Uses    []string // global names its terms refer to
}

// Index maps every defined name to its definers, in declaration order.
type Index struct {
	Definers map[string][]NodeID
}

func BuildIndex(nodes []Node) Index {
	idx := Index{Definers: make(map[string][]NodeID, len(nodes))}
	for i, n := range nodes {
		id := mustID(i)
		for _, name := range n.Defines {
			idx.Definers[name] = append(idx.Definers[name], id)
		}
	}
	return idx
}

// Before returns the definers of name that precede id.
func (idx Index) Before(name string, id NodeID) []NodeID {
	defs := idx.Definers[name]
	n := 0
	for n < len(defs) && defs[n] < id {
		n++
	}
	return defs[:n]
}

// Blocker reports the first earlier definer of a name n uses when every
// earlier definer of that name failed, as judged by ok, and the name is not
// known from elsewhere. Such a node cannot succeed and is skipped rather
// than checked. Names nothing earlier defines do not block; checking
// reports them.
func (idx Index) Blocker(n Node, id NodeID, ok func(NodeID) bool, known func(string) bool) (NodeID, bool) {
	for _, name := range n.Uses {
		if slices.Contains(n.Defines, name) || known(name) {
			continue
		}
		defs := idx.Before(name, id)
		if len(defs) == 0 || slices.ContainsFunc(defs, ok) {
			continue
		}
		return defs[0], true
	}
	return 0, false
}

func mustID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("declaration id overflow: %w", err))
	}
	return id
}
