package graph

import (
	"sort"

	"github.com/vk/flowgraph/internal/ident"
)

// This file is the connection analyzer: the validation pipeline run by
// Connect before anything mutates, and the reachability machinery it shares
// with the full-graph audit and the topological ordering.

// Propose runs the full validation pipeline for a prospective connection
// without committing anything: directional check, single-consumer check,
// type check, then cycle check. A nil return means Connect with the same
// arguments would succeed on the current graph.
func (m *Model) Propose(src, dst ident.PinID) error {
	_, _, err := m.validateConnection(src, dst)
	return err
}

func (m *Model) validateConnection(src, dst ident.PinID) (*Pin, *Pin, error) {
	sp, err := m.pinByID(src)
	if err != nil {
		return nil, nil, err
	}
	tp, err := m.pinByID(dst)
	if err != nil {
		return nil, nil, err
	}

	// (a) directional: output feeds input, and the resolved owning nodes are
	// distinct. A same-node proposal is the degenerate one-node cycle.
	if !sp.IsOutput() {
		return nil, nil, validationf(InvalidDirection, "pin %s (%s) is not an output", sp.ID, sp.Name)
	}
	if !tp.IsInput() {
		return nil, nil, validationf(InvalidDirection, "pin %s (%s) is not an input", tp.ID, tp.Name)
	}
	srcNodes := m.resolveNodes(sp)
	dstNodes := m.resolveNodes(tp)
	for _, sn := range srcNodes {
		for _, dn := range dstNodes {
			if sn == dn {
				return nil, nil, &ValidationError{
					Code: CycleDetected,
					Msg:  "source and target resolve to the same node",
					Path: []ident.NodeID{sn, sn},
				}
			}
		}
	}

	// (b) single consumer: the target input accepts at most one incoming
	// connection, counting the implicit boundary leg if the pin is already
	// fed through an interface pin.
	for _, c := range m.conns {
		if c.Target == dst {
			return nil, nil, validationf(DuplicateInputConnection,
				"input pin %s (%s) already has a producer", tp.ID, tp.Name)
		}
	}

	// (c) type compatibility.
	if !m.types.Compatible(sp.Type, tp.Type) {
		return nil, nil, validationf(IncompatibleTypes,
			"type %s does not flow into %s", sp.Type, tp.Type)
	}

	// (d) cycle: if the source's node is reachable forward from the target's
	// node, committing the edge would close a cycle.
	if path, found := m.findPath(dstNodes, srcNodes); found {
		cycle := append([]ident.NodeID{path[len(path)-1]}, path...)
		return nil, nil, &ValidationError{
			Code: CycleDetected,
			Msg:  "connection would close a cycle",
			Path: cycle,
		}
	}

	return sp, tp, nil
}

// resolveNodes resolves a pin to the concrete nodes it stands for. A node
// pin is its own node; an interface pin stands for the nodes of every
// internal pin bound to it, walked recursively through nested boundaries.
func (m *Model) resolveNodes(p *Pin) []ident.NodeID {
	seen := make(map[ident.NodeID]struct{})
	m.collectNodes(p, seen, make(map[ident.PinID]struct{}))
	out := make([]ident.NodeID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Model) collectNodes(p *Pin, acc map[ident.NodeID]struct{}, visiting map[ident.PinID]struct{}) {
	if p == nil {
		return
	}
	if _, loop := visiting[p.ID]; loop {
		return
	}
	visiting[p.ID] = struct{}{}
	if !p.Interface {
		acc[p.Node] = struct{}{}
		return
	}
	g, ok := m.groups[p.Group]
	if !ok {
		return
	}
	for _, origin := range g.origins(p.ID) {
		m.collectNodes(m.pins[origin], acc, visiting)
	}
}

// originPins expands a pin to itself plus every internal pin it represents,
// through nested boundaries.
func (m *Model) originPins(p *Pin) map[ident.PinID]struct{} {
	acc := make(map[ident.PinID]struct{})
	m.collectOriginPins(p, acc)
	return acc
}

func (m *Model) collectOriginPins(p *Pin, acc map[ident.PinID]struct{}) {
	if p == nil {
		return
	}
	if _, loop := acc[p.ID]; loop {
		return
	}
	acc[p.ID] = struct{}{}
	if !p.Interface {
		return
	}
	if g, ok := m.groups[p.Group]; ok {
		for _, origin := range g.origins(p.ID) {
			m.collectOriginPins(m.pins[origin], acc)
		}
	}
}

// Connected reports whether a committed connection logically links src to
// dst, looking through any interface pin chains between them.
func (m *Model) Connected(src, dst ident.PinID) bool {
	for _, cid := range m.sortedConnIDs() {
		c := m.conns[cid]
		if c.Implicit {
			continue
		}
		srcSet := m.originPins(m.pins[c.Source])
		if _, ok := srcSet[src]; !ok {
			continue
		}
		dstSet := m.originPins(m.pins[c.Target])
		if _, ok := dstSet[dst]; ok {
			return true
		}
	}
	return false
}

// adjacency builds the node-level edge lists implied by explicit
// connections, with interface pins resolved to concrete nodes. Neighbor
// lists are sorted so traversals are deterministic.
func (m *Model) adjacency() map[ident.NodeID][]ident.NodeID {
	edges := make(map[ident.NodeID]map[ident.NodeID]struct{})
	for _, c := range m.conns {
		if c.Implicit {
			continue
		}
		for _, from := range m.resolveNodes(m.pins[c.Source]) {
			for _, to := range m.resolveNodes(m.pins[c.Target]) {
				if edges[from] == nil {
					edges[from] = make(map[ident.NodeID]struct{})
				}
				edges[from][to] = struct{}{}
			}
		}
	}
	adj := make(map[ident.NodeID][]ident.NodeID, len(edges))
	for from, tos := range edges {
		list := make([]ident.NodeID, 0, len(tos))
		for to := range tos {
			list = append(list, to)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		adj[from] = list
	}
	return adj
}

// findPath searches forward from any node in from for any node in to,
// breadth first, returning the discovered node path inclusive of both ends.
func (m *Model) findPath(from, to []ident.NodeID) ([]ident.NodeID, bool) {
	adj := m.adjacency()
	targets := make(map[ident.NodeID]struct{}, len(to))
	for _, t := range to {
		targets[t] = struct{}{}
	}

	parent := make(map[ident.NodeID]ident.NodeID)
	visited := make(map[ident.NodeID]struct{}, len(from))
	queue := append([]ident.NodeID(nil), from...)
	for _, f := range from {
		visited[f] = struct{}{}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, hit := targets[cur]; hit {
			return rebuildPath(parent, cur), true
		}
		for _, next := range adj[cur] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			parent[next] = cur
			queue = append(queue, next)
		}
	}
	return nil, false
}

func rebuildPath(parent map[ident.NodeID]ident.NodeID, end ident.NodeID) []ident.NodeID {
	path := []ident.NodeID{end}
	for {
		prev, ok := parent[end]
		if !ok {
			break
		}
		path = append([]ident.NodeID{prev}, path...)
		end = prev
	}
	return path
}
