package dag

import "slices"

type Topo struct {
	Order   []NodeID   // linear order
	Batches [][]NodeID // waves of mutually independent declarations
	Cyclic  bool
	Cycles  []NodeID // nodes left over in a cycle
}

// ToposortKahn layers g into batches. Every node in a batch depends only on
// nodes of earlier batches; batches list nodes in declaration order.
func ToposortKahn(g Graph) *Topo {
	n := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]NodeID, 0, n)}

	current := make([]NodeID, 0, n)
	for i := range n {
		if indeg[i] == 0 {
			current = append(current, mustID(i))
		}
	}
	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)
		var next []NodeID
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != n {
		topo.Cyclic = true
		for i := range n {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, mustID(i))
			}
		}
	}
	return topo
}
