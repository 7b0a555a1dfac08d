package graph

import (
	"github.com/vk/flowgraph/internal/events"
	"github.com/vk/flowgraph/internal/ident"
)

// CreateGroup collapses a node selection into a new group. All members must
// exist and share the same immediate scope, which becomes the new group's
// parent; anything else would tear the group forest and is rejected as
// IllegalNesting. Crossing connections (exactly one endpoint inside the
// selection) are partitioned into crossing classes by their internal pin,
// one interface pin is generated per class, and each crossing connection is
// rewired to the interface pin with an implicit leg covering the internal
// side.
func (m *Model) CreateGroup(name string, members ...ident.NodeID) (*Group, error) {
	if len(members) == 0 {
		return nil, validationf(IllegalNesting, "group %q needs at least one member", name)
	}

	memberSet := make(map[ident.NodeID]struct{}, len(members))
	var parent ident.GroupID
	for i, id := range members {
		n, ok := m.nodes[id]
		if !ok {
			return nil, validationf(UnknownEntity, "node %s not found", id)
		}
		if _, dup := memberSet[id]; dup {
			return nil, validationf(IllegalNesting, "node %s selected twice", id)
		}
		if i == 0 {
			parent = n.Parent
		} else if n.Parent != parent {
			return nil, validationf(IllegalNesting,
				"members span different scopes: node %s is not in scope %q", id, parent)
		}
		memberSet[id] = struct{}{}
	}

	g := &Group{
		ID:       ident.NewGroupID(),
		Name:     name,
		Parent:   parent,
		Children: make(map[ident.GroupID]struct{}),
		Members:  memberSet,
		binding:  make(map[ident.PinID]ident.PinID),
		origin:   make(map[ident.ConnectionID]ident.PinID),
	}

	// Commit: reparent members, then rewire crossings.
	var evts []events.Event
	m.groups[g.ID] = g
	if pg, ok := m.groups[parent]; ok {
		pg.Children[g.ID] = struct{}{}
		for id := range memberSet {
			delete(pg.Members, id)
		}
	}
	for id := range memberSet {
		m.nodes[id].Parent = g.ID
	}

	for _, cid := range m.sortedConnIDs() {
		c := m.conns[cid]
		srcInside := m.pinWithinGroup(c.Source, g.ID)
		dstInside := m.pinWithinGroup(c.Target, g.ID)
		if srcInside == dstInside {
			continue
		}
		internalID := c.Source
		if dstInside {
			internalID = c.Target
		}
		internal := m.pins[internalID]

		ip := m.ensureInterfacePin(g, internal, &evts)
		m.ensureImplicitLeg(internal, ip, &evts)
		m.rekeyEnclosingBinding(c, internal.ID, ip.ID)
		g.origin[c.ID] = internal.ID
		if dstInside {
			c.Target = ip.ID
		} else {
			c.Source = ip.ID
		}
	}

	evts = append(evts, events.GroupCreated{Group: g.ID})
	m.bus.Publish(evts...)
	return g, nil
}

// DissolveGroup removes a group: interface pins disappear, crossing
// connections are rewired back to their internal endpoints, and members and
// child groups return to the dissolved group's parent scope. Creating a
// group and dissolving it restores the original connection endpoints
// exactly.
func (m *Model) DissolveGroup(id ident.GroupID) error {
	g, ok := m.groups[id]
	if !ok {
		return validationf(UnknownEntity, "group %s not found", id)
	}

	var evts []events.Event
	for _, ipID := range append([]ident.PinID(nil), g.Interface...) {
		origins := g.origins(ipID)
		if len(origins) == 0 {
			// Orphaned boundary pin; Audit would flag it, but dissolving
			// just drops it.
			delete(m.pins, ipID)
			evts = append(evts, events.InterfacePinChanged{Group: g.ID, Pin: ipID, Reason: "removed"})
			continue
		}
		originSet := make(map[ident.PinID]struct{}, len(origins))
		for _, o := range origins {
			originSet[o] = struct{}{}
		}

		for _, c := range m.connsTouching(ipID) {
			other := c.Source
			if other == ipID {
				other = c.Target
			}
			if _, internal := originSet[other]; internal && c.Implicit {
				// The boundary leg itself.
				delete(m.conns, c.ID)
				m.forgetOrigin(c.ID)
				evts = append(evts, events.ConnectionRemoved{Connection: c.ID})
				continue
			}
			if c.Implicit {
				// A leg of the enclosing boundary: re-thread the whole
				// crossing class through the outer interface pin.
				m.reanchorEnclosingLeg(c, ipID, origins, &evts)
				continue
			}
			// External connection: reattach to its own recorded origin.
			anchor := origins[0]
			if o, ok := g.origin[c.ID]; ok {
				if _, live := originSet[o]; live {
					anchor = o
				}
			}
			if c.Source == ipID {
				c.Source = anchor
			} else {
				c.Target = anchor
			}
		}
		delete(m.pins, ipID)
		evts = append(evts, events.InterfacePinChanged{Group: g.ID, Pin: ipID, Reason: "removed"})
	}

	parent := g.Parent
	pg := m.groups[parent]
	for n := range g.Members {
		m.nodes[n].Parent = parent
		if pg != nil {
			pg.Members[n] = struct{}{}
		}
	}
	for c := range g.Children {
		m.groups[c].Parent = parent
		if pg != nil {
			pg.Children[c] = struct{}{}
		}
	}
	if pg != nil {
		delete(pg.Children, g.ID)
	}
	delete(m.groups, id)

	evts = append(evts, events.GroupDissolved{Group: id})
	m.bus.Publish(evts...)
	return nil
}

// pinWithinGroup reports whether a pin's outward face sits inside the given
// group: its owning node is a member of the group or of a descendant, or it
// is an interface pin of a descendant boundary.
func (m *Model) pinWithinGroup(pin ident.PinID, group ident.GroupID) bool {
	p, ok := m.pins[pin]
	if !ok {
		return false
	}
	var cur ident.GroupID
	if p.Interface {
		if g, ok := m.groups[p.Group]; ok {
			cur = g.Parent
		}
	} else if n, ok := m.nodes[p.Node]; ok {
		cur = n.Parent
	}
	for steps := 0; !cur.IsZero() && steps <= len(m.groups); steps++ {
		if cur == group {
			return true
		}
		g, ok := m.groups[cur]
		if !ok {
			return false
		}
		cur = g.Parent
	}
	return false
}

// rekeyEnclosingBinding keeps an outer group's crossing-class key current
// when the inner endpoint of its implicit leg is replaced. The outer
// interface pin id itself never changes, which is what keeps boundary pin
// identity stable across nested regrouping.
func (m *Model) rekeyEnclosingBinding(c *Connection, oldKey, newKey ident.PinID) {
	if !c.Implicit {
		return
	}
	otherID := c.Source
	if otherID == oldKey {
		otherID = c.Target
	}
	op, ok := m.pins[otherID]
	if !ok || !op.Interface {
		return
	}
	gx, ok := m.groups[op.Group]
	if !ok {
		return
	}
	if gx.binding[oldKey] == op.ID {
		delete(gx.binding, oldKey)
		gx.binding[newKey] = op.ID
		for cid, o := range gx.origin {
			if o == oldKey {
				gx.origin[cid] = newKey
			}
		}
	}
}

// reanchorEnclosingLeg rewires an enclosing group's boundary leg off a
// dissolving interface pin. Each origin of the dissolved crossing class is
// rebound to the enclosing interface pin; the existing leg carries the first
// origin, further origins get their own legs.
func (m *Model) reanchorEnclosingLeg(c *Connection, dissolving ident.PinID, origins []ident.PinID, evts *[]events.Event) {
	otherID := c.Source
	if otherID == dissolving {
		otherID = c.Target
	}
	op, ok := m.pins[otherID]
	if !ok || !op.Interface {
		return
	}
	gx, ok := m.groups[op.Group]
	if !ok {
		return
	}

	delete(gx.binding, dissolving)
	first := origins[0]
	gx.binding[first] = op.ID
	for cid, o := range gx.origin {
		if o == dissolving {
			gx.origin[cid] = first
		}
	}
	if c.Source == dissolving {
		c.Source = first
	} else {
		c.Target = first
	}
	for _, o := range origins[1:] {
		gx.binding[o] = op.ID
		if p, live := m.pins[o]; live {
			m.ensureImplicitLeg(p, op, evts)
		}
	}
}
