package dag

import "slices"

// Graph edges all point from an earlier declaration to a later one. There
// are three kinds:
//   - use: the later one refers to a name the earlier defines;
//   - redefinition: both define the same name, so the later one sees the
//     earlier and fails the same way it would in sequence;
//   - forward: the earlier one refers to a name only the later defines, so
//     the later one must not commit first.
//
// Names used but defined by nothing earlier are recorded as unresolved.
type Graph struct {
	Edges      [][]NodeID // Edges[from] = nodes waiting for from
	Indeg      []int
	Unresolved [][]string // Unresolved[n] = names n uses that nothing earlier defines
}

func BuildGraph(idx Index, nodes []Node) Graph {
	g := Graph{
		Edges:      make([][]NodeID, len(nodes)),
		Indeg:      make([]int, len(nodes)),
		Unresolved: make([][]string, len(nodes)),
	}
	edges := make(map[[2]NodeID]struct{})
	edge := func(from, to NodeID) {
		if _, dup := edges[[2]NodeID{from, to}]; dup {
			return
		}
		edges[[2]NodeID{from, to}] = struct{}{}
		g.Edges[from] = append(g.Edges[from], to)
		g.Indeg[to]++
	}
	for i, n := range nodes {
		id := mustID(i)
		for _, name := range n.Defines {
			for _, from := range idx.Before(name, id) {
				edge(from, id)
			}
		}
		for _, name := range n.Uses {
			if slices.Contains(n.Defines, name) {
				continue
			}
			defs := idx.Definers[name]
			earlier := idx.Before(name, id)
			for _, from := range earlier {
				edge(from, id)
			}
			for _, later := range defs[len(earlier):] {
				edge(id, later)
			}
			if len(earlier) == 0 && !slices.Contains(g.Unresolved[i], name) {
				g.Unresolved[i] = append(g.Unresolved[i], name)
			}
		}
		slices.Sort(g.Unresolved[i])
	}
	for from := range g.Edges {
		slices.Sort(g.Edges[from])
	}
	return g
}
