package graph

import "github.com/vk/flowgraph/internal/signature"

// Audit re-verifies every structural invariant over the committed graph,
// intended after bulk imports and in tests. A non-nil result is always a
// ConsistencyError: committed state violating an invariant is a defect in
// the core, not user error.
func (m *Model) Audit() error {
	// Invariant: every pin belongs to exactly one live owner, and the owner
	// lists it.
	for id, p := range m.pins {
		if id != p.ID {
			return consistencyf("pin registry key %s does not match pin id %s", id, p.ID)
		}
		switch {
		case p.Interface:
			if p.Node != "" {
				return consistencyf("interface pin %s carries a node owner", id)
			}
			g, ok := m.groups[p.Group]
			if !ok {
				return consistencyf("interface pin %s references missing group %s", id, p.Group)
			}
			if !containsPinID(g.Interface, id) {
				return consistencyf("interface pin %s not listed by group %s", id, g.ID)
			}
			if len(g.origins(id)) == 0 {
				return consistencyf("interface pin %s has no crossing class", id)
			}
		default:
			n, ok := m.nodes[p.Node]
			if !ok {
				return consistencyf("pin %s references missing node %s", id, p.Node)
			}
			if !containsPinID(n.Inputs, id) && !containsPinID(n.Outputs, id) {
				return consistencyf("pin %s not listed by node %s", id, n.ID)
			}
		}
	}

	// Invariant: connections resolve to live pins; explicit ones run from an
	// output to an input of distinct nodes.
	for id, c := range m.conns {
		sp, ok := m.pins[c.Source]
		if !ok {
			return consistencyf("connection %s references missing source pin %s", id, c.Source)
		}
		tp, ok := m.pins[c.Target]
		if !ok {
			return consistencyf("connection %s references missing target pin %s", id, c.Target)
		}
		if c.Implicit {
			continue
		}
		if !sp.IsOutput() || !tp.IsInput() {
			return consistencyf("connection %s is not output-to-input", id)
		}
		for _, sn := range m.resolveNodes(sp) {
			for _, tn := range m.resolveNodes(tp) {
				if sn == tn {
					return consistencyf("connection %s loops on node %s", id, sn)
				}
			}
		}
	}

	// Invariant: an input pin has at most one producer, counting implicit
	// boundary legs.
	incoming := make(map[string]int)
	for _, c := range m.conns {
		tp := m.pins[c.Target]
		if tp != nil && tp.Direction == signature.Input {
			incoming[c.Target.String()]++
		}
	}
	for pin, count := range incoming {
		if count > 1 {
			return consistencyf("input pin %s has %d producers", pin, count)
		}
	}

	// Invariant: group membership and parent links form a forest, and
	// interface bookkeeping is closed.
	for id, g := range m.groups {
		if id != g.ID {
			return consistencyf("group registry key %s does not match group id %s", id, g.ID)
		}
		seen := map[string]bool{id.String(): true}
		for cur := g.Parent; !cur.IsZero(); {
			if seen[cur.String()] {
				return consistencyf("group %s participates in a parent cycle", id)
			}
			seen[cur.String()] = true
			pg, ok := m.groups[cur]
			if !ok {
				return consistencyf("group %s references missing ancestor %s", id, cur)
			}
			cur = pg.Parent
		}
		if pg, ok := m.groups[g.Parent]; ok {
			if _, listed := pg.Children[id]; !listed {
				return consistencyf("group %s not listed as child of %s", id, pg.ID)
			}
		}
		for child := range g.Children {
			cg, ok := m.groups[child]
			if !ok {
				return consistencyf("group %s lists missing child %s", id, child)
			}
			if cg.Parent != id {
				return consistencyf("group %s lists child %s with parent %s", id, child, cg.Parent)
			}
		}
		for member := range g.Members {
			n, ok := m.nodes[member]
			if !ok {
				return consistencyf("group %s lists missing member %s", id, member)
			}
			if n.Parent != id {
				return consistencyf("node %s is listed by group %s but parented to %q", member, id, n.Parent)
			}
		}
		for internal, iface := range g.binding {
			if _, ok := m.pins[internal]; !ok {
				return consistencyf("group %s binds missing internal pin %s", id, internal)
			}
			if _, ok := m.pins[iface]; !ok {
				return consistencyf("group %s binds missing interface pin %s", id, iface)
			}
			if !containsPinID(g.Interface, iface) {
				return consistencyf("group %s binding targets unlisted interface pin %s", id, iface)
			}
		}
	}
	for id, n := range m.nodes {
		if n.Parent.IsZero() {
			continue
		}
		g, ok := m.groups[n.Parent]
		if !ok {
			return consistencyf("node %s references missing group %s", id, n.Parent)
		}
		if _, listed := g.Members[id]; !listed {
			return consistencyf("node %s not listed by its group %s", id, n.Parent)
		}
	}

	// Invariant: the committed graph is acyclic. Reruns the full edge check,
	// the post-bulk-import part of the audit.
	if _, err := m.TopoOrder(); err != nil {
		return err
	}
	return nil
}
