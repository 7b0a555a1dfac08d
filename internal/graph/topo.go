package graph

import (
	"sort"

	"github.com/vk/flowgraph/internal/ident"
)

// TopoOrder returns a topological ordering of node ids over the committed
// graph, the pure query the execution collaborator schedules from. Ties
// break by id, so the ordering is deterministic. Committed graphs are acyclic
// by construction; a cycle here means a core defect and surfaces as a
// ConsistencyError.
func (m *Model) TopoOrder() ([]ident.NodeID, error) {
	adj := m.adjacency()
	indegree := make(map[ident.NodeID]int, len(m.nodes))
	for id := range m.nodes {
		indegree[id] = 0
	}
	for _, tos := range adj {
		for _, to := range tos {
			indegree[to]++
		}
	}

	var ready []ident.NodeID
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	order := make([]ident.NodeID, 0, len(m.nodes))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for _, next := range adj[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				ready = insertSorted(ready, next)
			}
		}
	}

	if len(order) != len(m.nodes) {
		return nil, consistencyf("committed graph contains a cycle; %d of %d nodes ordered",
			len(order), len(m.nodes))
	}
	return order, nil
}

func insertSorted(ids []ident.NodeID, id ident.NodeID) []ident.NodeID {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
