package term

import (
	"fmt"

	"frkernel/internal/source"
)

// Snapshot is the serialisable form of an arena: its name table, its nodes
// in ID order, and the local counter.
type Snapshot struct {
	Names     []string
	Nodes     []Node
	NextLocal uint32
}

// Snapshot copies the arena's current state.
func (a *Arena) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	nodes := make([]Node, len(a.nodes))
	copy(nodes, a.nodes)
	return Snapshot{
		Names:     a.names.Snapshot(),
		Nodes:     nodes,
		NextLocal: a.nextLocal,
	}
}

// Restore rebuilds an arena whose IDs match the snapshot. Every node must
// reference only names in the table and children with smaller IDs.
func Restore(s Snapshot) (*Arena, error) {
	names, err := source.Restore(s.Names)
	if err != nil {
		return nil, err
	}
	if len(s.Nodes) == 0 || s.Nodes[0] != (Node{}) {
		return nil, fmt.Errorf("term snapshot: slot 0 must be the invalid sentinel")
	}
	a := NewArenaWithNames(names)
	a.mu.Lock()
	defer a.mu.Unlock()
	for idx, n := range s.Nodes[1:] {
		id := ID(idx + 1)
		if err := validateNode(n, id, len(s.Names)); err != nil {
			return nil, err
		}
		if _, dup := a.index[n]; dup {
			return nil, fmt.Errorf("term snapshot: node %d duplicates an earlier node", id)
		}
		if got := a.internLocked(n); got != id {
			return nil, fmt.Errorf("term snapshot: node restored as %d, want %d", got, id)
		}
		if n.Kind == KindLocal && n.Index > s.NextLocal {
			return nil, fmt.Errorf("term snapshot: local %d beyond counter %d", n.Index, s.NextLocal)
		}
	}
	a.nextLocal = s.NextLocal
	return a, nil
}

func validateNode(n Node, id ID, names int) error {
	switch n.Kind {
	case KindVar, KindLocal, KindSort, KindNat:
		if n.A != NoID || n.B != NoID || n.Name != source.NoStringID {
			return fmt.Errorf("term snapshot: leaf node %d (%s) has children", id, n.Kind)
		}
		if n.Kind == KindSort && n.Universe() == Top {
			return fmt.Errorf("term snapshot: node %d is the sort of the top universe", id)
		}
	case KindPi, KindLam, KindApp:
		if n.A == NoID || n.B == NoID || n.A >= id || n.B >= id {
			return fmt.Errorf("term snapshot: node %d (%s) has invalid children %d, %d", id, n.Kind, n.A, n.B)
		}
	case KindConst, KindInd, KindCtor, KindElim:
		if n.Name == source.NoStringID || int(n.Name) >= names {
			return fmt.Errorf("term snapshot: node %d (%s) has invalid name %d", id, n.Kind, n.Name)
		}
		if n.A != NoID || n.B != NoID {
			return fmt.Errorf("term snapshot: node %d (%s) has children", id, n.Kind)
		}
		if n.Kind == KindElim && n.Universe() == Top {
			return fmt.Errorf("term snapshot: node %d eliminates into the top universe", id)
		}
	default:
		return fmt.Errorf("term snapshot: node %d has unknown kind %d", id, n.Kind)
	}
	return nil
}
