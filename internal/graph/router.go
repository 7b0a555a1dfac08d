package graph

import (
	"fmt"

	"github.com/vk/flowgraph/internal/events"
	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/pintype"
)

// This file is the connection router. It threads explicit connections
// through every group boundary between their endpoints, one interface pin
// and one implicit leg per boundary, and unwinds those chains when the
// connections or crossings go away.

// Connect validates and commits a connection from an output pin to an input
// pin. Endpoints may live in different group scopes: the committed edge is
// threaded through the boundary chain, reusing interface pins where a
// crossing class already exists and creating them (with implicit internal
// legs) where it does not. The returned connection is the outermost explicit
// segment; its id is the stable identity of the user's edge.
func (m *Model) Connect(src, dst ident.PinID) (*Connection, error) {
	sp, tp, err := m.validateConnection(src, dst)
	if err != nil {
		return nil, err
	}

	srcChain, err := m.scopeChain(sp)
	if err != nil {
		return nil, err
	}
	dstChain, err := m.scopeChain(tp)
	if err != nil {
		return nil, err
	}
	srcBoundaries, dstBoundaries := trimCommonScope(srcChain, dstChain)

	// Validation passed; everything below commits.
	var evts []events.Event
	curSrc, srcBelow := sp, sp
	for _, g := range srcBoundaries {
		ip := m.ensureInterfacePin(g, curSrc, &evts)
		m.ensureImplicitLeg(curSrc, ip, &evts)
		srcBelow, curSrc = curSrc, ip
	}
	curDst, dstBelow := tp, tp
	for _, g := range dstBoundaries {
		ip := m.ensureInterfacePin(g, curDst, &evts)
		m.ensureImplicitLeg(curDst, ip, &evts)
		dstBelow, curDst = curDst, ip
	}

	c := &Connection{
		ID:     ident.NewConnectionID(),
		Source: curSrc.ID,
		Target: curDst.ID,
		State:  StateValid,
	}
	m.conns[c.ID] = c
	if n := len(srcBoundaries); n > 0 {
		srcBoundaries[n-1].origin[c.ID] = srcBelow.ID
	}
	if n := len(dstBoundaries); n > 0 {
		dstBoundaries[n-1].origin[c.ID] = dstBelow.ID
	}
	evts = append(evts, events.ConnectionAdded{Connection: c.ID})
	m.bus.Publish(evts...)
	return c, nil
}

// scopeChain returns the groups enclosing a pin's outward face, innermost
// first. A node pin starts at its node's group; an interface pin sits on its
// group's boundary, so its outward face starts at that group's parent.
func (m *Model) scopeChain(p *Pin) ([]*Group, error) {
	var start ident.GroupID
	if p.Interface {
		g, ok := m.groups[p.Group]
		if !ok {
			return nil, consistencyf("interface pin %s references missing group %s", p.ID, p.Group)
		}
		start = g.Parent
	} else {
		n, ok := m.nodes[p.Node]
		if !ok {
			return nil, consistencyf("pin %s references missing node %s", p.ID, p.Node)
		}
		start = n.Parent
	}

	var chain []*Group
	for cur := start; !cur.IsZero(); {
		g, ok := m.groups[cur]
		if !ok {
			return nil, consistencyf("group chain references missing group %s", cur)
		}
		chain = append(chain, g)
		if len(chain) > len(m.groups) {
			return nil, consistencyf("group parent chain does not terminate at %s", cur)
		}
		cur = g.Parent
	}
	return chain, nil
}

// trimCommonScope strips the shared ancestor suffix from two scope chains,
// leaving only the boundaries each side must cross to reach the lowest
// common scope.
func trimCommonScope(a, b []*Group) ([]*Group, []*Group) {
	ai, bi := len(a), len(b)
	for ai > 0 && bi > 0 && a[ai-1].ID == b[bi-1].ID {
		ai--
		bi--
	}
	return a[:ai], b[:bi]
}

// ensureInterfacePin returns the boundary pin representing the given
// internal pin on group g, creating it if the crossing class is new.
// Identity is stable: the lookup is keyed by the internal pin id, so
// recomputing an unchanged crossing set reuses the same pin ids.
func (m *Model) ensureInterfacePin(g *Group, internal *Pin, evts *[]events.Event) *Pin {
	if ipID, ok := g.binding[internal.ID]; ok {
		return m.pins[ipID]
	}

	// Only output classes may merge. A merged input boundary pin would
	// collect one producer per member of the class, breaking the
	// single-consumer rule for inputs.
	if m.relaxedFanIn && internal.IsOutput() {
		for _, ipID := range g.Interface {
			ip := m.pins[ipID]
			if ip.Name != internal.Name || ip.Direction != internal.Direction {
				continue
			}
			g.binding[internal.ID] = ip.ID
			if unified, ok := m.types.Unify(ip.Type, internal.Type); !ok {
				ip.Type = pintype.Any
				ip.Conflict = true
				*evts = append(*evts, events.InterfacePinChanged{
					Group: g.ID, Pin: ip.ID,
					Reason: "type inference conflict, falling back to any",
				})
			} else if !ip.Type.Equals(unified) {
				ip.Type = unified
				*evts = append(*evts, events.InterfacePinChanged{
					Group: g.ID, Pin: ip.ID, Reason: "type widened",
				})
			}
			return ip
		}
	}

	ip := &Pin{
		ID:        ident.NewPinID(),
		Name:      m.interfacePinName(g, internal.Name),
		Direction: internal.Direction,
		Type:      internal.Type,
		Group:     g.ID,
		Interface: true,
	}
	m.pins[ip.ID] = ip
	g.Interface = append(g.Interface, ip.ID)
	g.binding[internal.ID] = ip.ID
	*evts = append(*evts, events.InterfacePinChanged{Group: g.ID, Pin: ip.ID, Reason: "created"})
	return ip
}

// interfacePinName keeps boundary pin names unique within a group.
func (m *Model) interfacePinName(g *Group, base string) string {
	taken := make(map[string]bool, len(g.Interface))
	for _, ipID := range g.Interface {
		if ip, ok := m.pins[ipID]; ok {
			taken[ip.Name] = true
		}
	}
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

// ensureImplicitLeg guarantees the single internal connection between an
// in-group pin and its interface pin. Orientation follows the value flow:
// outward for outputs, inward for inputs.
func (m *Model) ensureImplicitLeg(internal, iface *Pin, evts *[]events.Event) {
	src, dst := internal.ID, iface.ID
	if internal.IsInput() {
		src, dst = iface.ID, internal.ID
	}
	for _, c := range m.conns {
		if c.Implicit && c.Source == src && c.Target == dst {
			return
		}
	}
	c := &Connection{
		ID:       ident.NewConnectionID(),
		Source:   src,
		Target:   dst,
		State:    StateValid,
		Implicit: true,
	}
	m.conns[c.ID] = c
	*evts = append(*evts, events.ConnectionAdded{Connection: c.ID})
}

// cleanupInterface removes an interface pin once nothing depends on it: when
// its crossing class lost its last external connection, or when every
// internal pin it represented is gone. Removal unwinds recursively in both
// directions along the boundary chain.
func (m *Model) cleanupInterface(p *Pin, evts *[]events.Event) {
	if p == nil || !p.Interface {
		return
	}
	if _, live := m.pins[p.ID]; !live {
		return
	}
	g, ok := m.groups[p.Group]
	if !ok {
		return
	}

	origins := g.origins(p.ID)
	originSet := make(map[ident.PinID]struct{}, len(origins))
	for _, o := range origins {
		originSet[o] = struct{}{}
	}
	external := 0
	for _, c := range m.connsTouching(p.ID) {
		other := c.Source
		if other == p.ID {
			other = c.Target
		}
		if _, internal := originSet[other]; !internal {
			external++
		}
	}
	if len(origins) > 0 && external > 0 {
		return
	}

	var remotes []*Pin
	for _, c := range m.connsTouching(p.ID) {
		delete(m.conns, c.ID)
		m.forgetOrigin(c.ID)
		*evts = append(*evts, events.ConnectionRemoved{Connection: c.ID})
		other := c.Source
		if other == p.ID {
			other = c.Target
		}
		if rp, live := m.pins[other]; live {
			remotes = append(remotes, rp)
		}
	}
	for _, o := range origins {
		delete(g.binding, o)
	}
	for _, gid := range m.sortedGroupIDs() {
		grp := m.groups[gid]
		if ip, ok := grp.binding[p.ID]; ok {
			delete(grp.binding, p.ID)
			if rp, live := m.pins[ip]; live {
				remotes = append(remotes, rp)
			}
		}
	}
	g.removeInterfaceID(p.ID)
	delete(m.pins, p.ID)
	*evts = append(*evts, events.InterfacePinChanged{Group: g.ID, Pin: p.ID, Reason: "removed"})

	for _, r := range remotes {
		m.cleanupInterface(r, evts)
	}
}

// propagateInterfaceType recomputes the types of interface pins bound to the
// given pin after its type changed, walking outward through nested
// boundaries.
func (m *Model) propagateInterfaceType(p *Pin, evts *[]events.Event) {
	for _, gid := range m.sortedGroupIDs() {
		g := m.groups[gid]
		ipID, ok := g.binding[p.ID]
		if !ok {
			continue
		}
		ip := m.pins[ipID]
		if ip == nil {
			continue
		}

		unified := pintype.Invalid
		conflict := false
		for _, o := range g.origins(ipID) {
			op := m.pins[o]
			if op == nil {
				continue
			}
			if !unified.IsValid() {
				unified = op.Type
				continue
			}
			next, ok := m.types.Unify(unified, op.Type)
			if !ok {
				conflict = true
			}
			unified = next
		}
		if !unified.IsValid() {
			continue
		}

		if !ip.Type.Equals(unified) || ip.Conflict != conflict {
			ip.Type = unified
			ip.Conflict = conflict
			reason := "type changed"
			if conflict {
				reason = "type inference conflict, falling back to any"
			}
			*evts = append(*evts, events.InterfacePinChanged{Group: g.ID, Pin: ip.ID, Reason: reason})
			m.propagateInterfaceType(ip, evts)
		}
	}
}
