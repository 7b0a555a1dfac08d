package graph

import (
	"sort"

	"github.com/vk/flowgraph/internal/events"
	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/pintype"
	"github.com/vk/flowgraph/internal/signature"
)

// Model is the sole mutation and query mediator over nodes, pins,
// connections, and groups. Entities live in id-indexed registries and refer
// to each other by id only, so deletion can never dangle a pointer.
//
// Every mutating operation validates fully before touching any registry: on
// failure a typed error is returned and the model is unchanged. On success
// the operation commits and publishes events describing exactly the entities
// changed, in emission order.
//
// The model performs no internal locking. It is designed for exclusive-owner
// access from one logical execution context; a multi-threaded host must
// serialize all calls into it.
type Model struct {
	types        *pintype.System
	bus          *events.Bus
	relaxedFanIn bool

	nodes  map[ident.NodeID]*Node
	pins   map[ident.PinID]*Pin
	conns  map[ident.ConnectionID]*Connection
	groups map[ident.GroupID]*Group
}

// Option configures a Model.
type Option func(*Model)

// WithTypeSystem replaces the default pin type compatibility rules.
func WithTypeSystem(ts *pintype.System) Option {
	return func(m *Model) { m.types = ts }
}

// WithBus attaches an existing event bus instead of a fresh one.
func WithBus(b *events.Bus) Option {
	return func(m *Model) { m.bus = b }
}

// WithRelaxedFanIn lets interface pins of matching name and direction merge
// into a single boundary pin representing several internal peers. Type
// disagreements between peers then resolve to Any with a recorded conflict
// instead of extra pins.
func WithRelaxedFanIn() Option {
	return func(m *Model) { m.relaxedFanIn = true }
}

// New returns an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		types:  pintype.Default,
		bus:    events.NewBus(),
		nodes:  make(map[ident.NodeID]*Node),
		pins:   make(map[ident.PinID]*Pin),
		conns:  make(map[ident.ConnectionID]*Connection),
		groups: make(map[ident.GroupID]*Group),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bus returns the event bus collaborators subscribe to.
func (m *Model) Bus() *events.Bus { return m.bus }

// NodeByID returns a node by id.
func (m *Model) NodeByID(id ident.NodeID) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// PinByID returns a pin by id.
func (m *Model) PinByID(id ident.PinID) (*Pin, bool) {
	p, ok := m.pins[id]
	return p, ok
}

// ConnectionByID returns a connection by id.
func (m *Model) ConnectionByID(id ident.ConnectionID) (*Connection, bool) {
	c, ok := m.conns[id]
	return c, ok
}

// GroupByID returns a group by id.
func (m *Model) GroupByID(id ident.GroupID) (*Group, bool) {
	g, ok := m.groups[id]
	return g, ok
}

// NodeIDs returns all node ids, sorted.
func (m *Model) NodeIDs() []ident.NodeID {
	out := make([]ident.NodeID, 0, len(m.nodes))
	for id := range m.nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ConnectionIDs returns all connection ids, implicit legs included, sorted.
func (m *Model) ConnectionIDs() []ident.ConnectionID {
	return m.sortedConnIDs()
}

// GroupIDs returns all group ids, sorted.
func (m *Model) GroupIDs() []ident.GroupID {
	return m.sortedGroupIDs()
}

// PinOf resolves a pin of the given node by name.
func (m *Model) PinOf(node ident.NodeID, name string) (*Pin, bool) {
	n, ok := m.nodes[node]
	if !ok {
		return nil, false
	}
	for _, pid := range n.PinIDs() {
		if p, ok := m.pins[pid]; ok && p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// AddNode creates a node from a signature descriptor, generating its pins in
// declaration order, and emits NodeAdded.
func (m *Model) AddNode(name string, sig signature.Descriptor) (*Node, error) {
	return m.AddNodeOfType(name, "", sig)
}

// AddNodeOfType is AddNode with a catalog type name recorded on the node.
func (m *Model) AddNodeOfType(name, typeName string, sig signature.Descriptor) (*Node, error) {
	sig = sig.Normalize()
	if err := sig.Validate(); err != nil {
		return nil, validationf(InvalidSignature, "rejecting node %q: %v", name, err)
	}

	n := &Node{
		ID:        ident.NewNodeID(),
		Name:      name,
		TypeName:  typeName,
		Signature: sig,
		Meta:      make(map[string]string),
	}
	for _, decl := range sig.Pins {
		p := &Pin{
			ID:        ident.NewPinID(),
			Name:      decl.Name,
			Direction: decl.Direction,
			Type:      decl.Type,
			Node:      n.ID,
			Default:   decl.Default,
		}
		m.pins[p.ID] = p
		if p.IsInput() {
			n.Inputs = append(n.Inputs, p.ID)
		} else {
			n.Outputs = append(n.Outputs, p.ID)
		}
	}
	m.nodes[n.ID] = n
	m.bus.Publish(events.NodeAdded{Node: n.ID})
	return n, nil
}

// RemoveNode destroys a node, cascading removal of its pins and every
// connection touching them, directly or through interface pin chains. Other
// entities are untouched.
func (m *Model) RemoveNode(id ident.NodeID) error {
	n, ok := m.nodes[id]
	if !ok {
		return validationf(UnknownEntity, "node %s not found", id)
	}

	var evts []events.Event
	for _, pid := range n.PinIDs() {
		if p, live := m.pins[pid]; live {
			m.deletePinCascade(p, &evts)
		}
	}
	if g, ok := m.groups[n.Parent]; ok {
		delete(g.Members, id)
	}
	delete(m.nodes, id)
	evts = append(evts, events.NodeRemoved{Node: id})
	m.bus.Publish(evts...)
	return nil
}

// Disconnect removes an explicit connection and garbage-collects any
// interface pins left without a crossing.
func (m *Model) Disconnect(id ident.ConnectionID) error {
	c, ok := m.conns[id]
	if !ok {
		return validationf(UnknownEntity, "connection %s not found", id)
	}
	if c.Implicit {
		return validationf(ManagedConnection, "connection %s is an internal boundary leg", id)
	}

	src, dst := m.pins[c.Source], m.pins[c.Target]
	delete(m.conns, id)
	m.forgetOrigin(id)
	evts := []events.Event{events.ConnectionRemoved{Connection: id}}
	m.cleanupInterface(src, &evts)
	m.cleanupInterface(dst, &evts)
	m.bus.Publish(evts...)
	return nil
}

// SetSignature regenerates a node's pins from a new descriptor, diffing by
// pin name. Pins whose name and direction persist keep their id and
// connections; a persisting pin whose type changed keeps its id and has its
// connections re-validated (breaking edits surface as ConnectionInvalidated,
// the connections stay committed so the editor can show them); pins absent
// from the new descriptor are deleted, cascading connection removal.
func (m *Model) SetSignature(id ident.NodeID, sig signature.Descriptor) error {
	n, ok := m.nodes[id]
	if !ok {
		return validationf(UnknownEntity, "node %s not found", id)
	}
	sig = sig.Normalize()
	if err := sig.Validate(); err != nil {
		return validationf(InvalidSignature, "rejecting signature for node %q: %v", n.Name, err)
	}

	oldByName := make(map[string]*Pin)
	for _, pid := range n.PinIDs() {
		if p, live := m.pins[pid]; live {
			oldByName[p.Name] = p
		}
	}

	var evts []events.Event
	var typeChanged []*Pin
	kept := make(map[ident.PinID]bool)
	var inputs, outputs []ident.PinID

	for _, decl := range sig.Pins {
		old, exists := oldByName[decl.Name]
		if exists && old.Direction == decl.Direction {
			if !old.Type.Equals(decl.Type) {
				old.Type = decl.Type
				typeChanged = append(typeChanged, old)
			}
			old.Default = decl.Default
			kept[old.ID] = true
			if decl.Direction == signature.Input {
				inputs = append(inputs, old.ID)
			} else {
				outputs = append(outputs, old.ID)
			}
			continue
		}
		// New pin, or a direction flip, which is a remove-and-replace.
		p := &Pin{
			ID:        ident.NewPinID(),
			Name:      decl.Name,
			Direction: decl.Direction,
			Type:      decl.Type,
			Node:      n.ID,
			Default:   decl.Default,
		}
		m.pins[p.ID] = p
		if p.IsInput() {
			inputs = append(inputs, p.ID)
		} else {
			outputs = append(outputs, p.ID)
		}
	}

	for _, pid := range n.PinIDs() {
		if kept[pid] {
			continue
		}
		if p, live := m.pins[pid]; live && !containsPinID(inputs, pid) && !containsPinID(outputs, pid) {
			m.deletePinCascade(p, &evts)
		}
	}

	n.Inputs, n.Outputs = inputs, outputs
	n.Signature = sig

	for _, p := range typeChanged {
		m.propagateInterfaceType(p, &evts)
	}
	if len(typeChanged) > 0 {
		m.revalidateConnections(&evts)
	}
	m.bus.Publish(evts...)
	return nil
}

// --- internal helpers ---

func (m *Model) pinByID(id ident.PinID) (*Pin, error) {
	p, ok := m.pins[id]
	if !ok {
		return nil, validationf(UnknownEntity, "pin %s not found", id)
	}
	return p, nil
}

func (m *Model) sortedConnIDs() []ident.ConnectionID {
	out := make([]ident.ConnectionID, 0, len(m.conns))
	for id := range m.conns {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Model) sortedGroupIDs() []ident.GroupID {
	out := make([]ident.GroupID, 0, len(m.groups))
	for id := range m.groups {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// forgetOrigin drops a removed connection from every group's origin
// bookkeeping.
func (m *Model) forgetOrigin(id ident.ConnectionID) {
	for _, g := range m.groups {
		delete(g.origin, id)
	}
}

// connsTouching returns connections with either endpoint at the pin, sorted
// by id for deterministic cascades.
func (m *Model) connsTouching(pin ident.PinID) []*Connection {
	var out []*Connection
	for _, cid := range m.sortedConnIDs() {
		c := m.conns[cid]
		if c.Source == pin || c.Target == pin {
			out = append(out, c)
		}
	}
	return out
}

// deletePinCascade removes a pin, every connection touching it, and any
// boundary bindings anchored on it, then garbage-collects interface pins the
// removals stranded.
func (m *Model) deletePinCascade(p *Pin, evts *[]events.Event) {
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
	for _, gid := range m.sortedGroupIDs() {
		grp := m.groups[gid]
		if ip, ok := grp.binding[p.ID]; ok {
			delete(grp.binding, p.ID)
			if rp, live := m.pins[ip]; live {
				remotes = append(remotes, rp)
			}
		}
	}
	delete(m.pins, p.ID)
	if n, ok := m.nodes[p.Node]; ok {
		n.removePinID(p.ID)
	}
	for _, r := range remotes {
		m.cleanupInterface(r, evts)
	}
}

// revalidateConnections re-checks type compatibility of every explicit
// connection, flipping state in both directions and announcing each flip.
func (m *Model) revalidateConnections(evts *[]events.Event) {
	for _, cid := range m.sortedConnIDs() {
		c := m.conns[cid]
		if c.Implicit {
			continue
		}
		sp, tp := m.pins[c.Source], m.pins[c.Target]
		if sp == nil || tp == nil {
			continue
		}
		compatible := m.types.Compatible(sp.Type, tp.Type)
		switch {
		case !compatible && c.State == StateValid:
			c.State = StateInvalid
			c.Reason = "type " + sp.Type.String() + " no longer flows into " + tp.Type.String()
			*evts = append(*evts, events.ConnectionInvalidated{Connection: c.ID, Reason: c.Reason})
		case compatible && c.State == StateInvalid:
			c.State = StateValid
			c.Reason = ""
			*evts = append(*evts, events.ConnectionInvalidated{Connection: c.ID, Valid: true})
		}
	}
}

func containsPinID(ids []ident.PinID, id ident.PinID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
