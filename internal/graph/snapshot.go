package graph

import (
	"fmt"
	"sort"

	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/pintype"
	"github.com/vk/flowgraph/internal/signature"
	"github.com/vk/flowgraph/internal/snapshot"
)

// Snapshot produces the structural snapshot of the committed graph for the
// persistence collaborator. Output is deterministic: every slice is sorted
// by id, except order-bearing ones (node pin lists, group interfaces), which
// keep their model order inside their entities.
func (m *Model) Snapshot() (*snapshot.Graph, error) {
	out := &snapshot.Graph{}

	for _, nid := range m.NodeIDs() {
		n := m.nodes[nid]
		sn := snapshot.Node{
			ID:       n.ID,
			Name:     n.Name,
			TypeName: n.TypeName,
			Meta:     n.Meta,
		}
		for _, decl := range n.Signature.Pins {
			enc, err := snapshot.EncodeDecl(decl)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", n.Name, err)
			}
			sn.Signature = append(sn.Signature, enc)
		}
		out.Nodes = append(out.Nodes, sn)
	}

	pinIDs := make([]ident.PinID, 0, len(m.pins))
	for id := range m.pins {
		pinIDs = append(pinIDs, id)
	}
	sort.Slice(pinIDs, func(i, j int) bool { return pinIDs[i] < pinIDs[j] })
	for _, pid := range pinIDs {
		p := m.pins[pid]
		out.Pins = append(out.Pins, snapshot.Pin{
			ID:        p.ID,
			Name:      p.Name,
			Direction: p.Direction.String(),
			Type:      p.Type.String(),
			Node:      p.Node,
			Group:     p.Group,
			Interface: p.Interface,
			Conflict:  p.Conflict,
		})
	}

	for _, cid := range m.sortedConnIDs() {
		c := m.conns[cid]
		out.Connections = append(out.Connections, snapshot.Connection{
			ID:       c.ID,
			Source:   c.Source,
			Target:   c.Target,
			State:    c.State.String(),
			Reason:   c.Reason,
			Implicit: c.Implicit,
		})
	}

	for _, gid := range m.sortedGroupIDs() {
		g := m.groups[gid]
		sg := snapshot.Group{
			ID:        g.ID,
			Name:      g.Name,
			Parent:    g.Parent,
			Members:   g.MemberIDs(),
			Interface: append([]ident.PinID(nil), g.Interface...),
		}
		internals := make([]ident.PinID, 0, len(g.binding))
		for internal := range g.binding {
			internals = append(internals, internal)
		}
		sort.Slice(internals, func(i, j int) bool { return internals[i] < internals[j] })
		for _, internal := range internals {
			sg.Bindings = append(sg.Bindings, snapshot.Binding{
				Internal:  internal,
				Interface: g.binding[internal],
			})
		}
		lifted := make([]ident.ConnectionID, 0, len(g.origin))
		for cid := range g.origin {
			lifted = append(lifted, cid)
		}
		sort.Slice(lifted, func(i, j int) bool { return lifted[i] < lifted[j] })
		for _, cid := range lifted {
			sg.Origins = append(sg.Origins, snapshot.Origin{
				Connection: cid,
				Internal:   g.origin[cid],
			})
		}
		out.Groups = append(out.Groups, sg)
	}

	return out, nil
}

// FromSnapshot rebuilds a model from a structural snapshot and audits the
// result, so a corrupted snapshot cannot smuggle an invariant violation into
// a live model. The returned model uses the given options, like New.
func FromSnapshot(snap *snapshot.Graph, opts ...Option) (*Model, error) {
	m := New(opts...)

	for _, sn := range snap.Nodes {
		n := &Node{
			ID:       sn.ID,
			Name:     sn.Name,
			TypeName: sn.TypeName,
			Meta:     sn.Meta,
		}
		if n.Meta == nil {
			n.Meta = make(map[string]string)
		}
		for _, d := range sn.Signature {
			decl, err := snapshot.DecodeDecl(d)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", sn.Name, err)
			}
			n.Signature.Pins = append(n.Signature.Pins, decl)
		}
		m.nodes[n.ID] = n
	}

	for _, sg := range snap.Groups {
		g := &Group{
			ID:        sg.ID,
			Name:      sg.Name,
			Parent:    sg.Parent,
			Children:  make(map[ident.GroupID]struct{}),
			Members:   make(map[ident.NodeID]struct{}),
			Interface: append([]ident.PinID(nil), sg.Interface...),
			binding:   make(map[ident.PinID]ident.PinID),
			origin:    make(map[ident.ConnectionID]ident.PinID),
		}
		for _, member := range sg.Members {
			g.Members[member] = struct{}{}
			if n, ok := m.nodes[member]; ok {
				n.Parent = g.ID
			}
		}
		for _, b := range sg.Bindings {
			g.binding[b.Internal] = b.Interface
		}
		for _, o := range sg.Origins {
			g.origin[o.Connection] = o.Internal
		}
		m.groups[g.ID] = g
	}
	for _, g := range m.groups {
		if pg, ok := m.groups[g.Parent]; ok {
			pg.Children[g.ID] = struct{}{}
		}
	}

	for _, sp := range snap.Pins {
		typ, err := pintype.Parse(sp.Type)
		if err != nil {
			return nil, fmt.Errorf("pin %s: %w", sp.ID, err)
		}
		dir, err := signature.ParseDirection(sp.Direction)
		if err != nil {
			return nil, fmt.Errorf("pin %s: %w", sp.ID, err)
		}
		p := &Pin{
			ID:        sp.ID,
			Name:      sp.Name,
			Direction: dir,
			Type:      typ,
			Node:      sp.Node,
			Group:     sp.Group,
			Interface: sp.Interface,
			Conflict:  sp.Conflict,
		}
		if n, ok := m.nodes[p.Node]; ok && !p.Interface {
			// Rebuild pin order from the signature, and carry the default
			// over from the matching declaration.
			for _, decl := range n.Signature.Pins {
				if decl.Name == p.Name {
					p.Default = decl.Default
					break
				}
			}
			if p.IsInput() {
				n.Inputs = append(n.Inputs, p.ID)
			} else {
				n.Outputs = append(n.Outputs, p.ID)
			}
		}
		m.pins[p.ID] = p
	}
	// Node pin order must follow signature declaration order, not snapshot
	// pin order.
	for _, n := range m.nodes {
		m.sortPinsBySignature(n)
	}

	for _, sc := range snap.Connections {
		c := &Connection{
			ID:       sc.ID,
			Source:   sc.Source,
			Target:   sc.Target,
			Reason:   sc.Reason,
			Implicit: sc.Implicit,
		}
		if sc.State == StateInvalid.String() {
			c.State = StateInvalid
		}
		m.conns[c.ID] = c
	}

	if err := m.Audit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) sortPinsBySignature(n *Node) {
	rank := make(map[string]int, len(n.Signature.Pins))
	for i, decl := range n.Signature.Pins {
		rank[decl.Name] = i
	}
	byRank := func(ids []ident.PinID) {
		sort.SliceStable(ids, func(i, j int) bool {
			pi, pj := m.pins[ids[i]], m.pins[ids[j]]
			if pi == nil || pj == nil {
				return false
			}
			return rank[pi.Name] < rank[pj.Name]
		})
	}
	byRank(n.Inputs)
	byRank(n.Outputs)
}
