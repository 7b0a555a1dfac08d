package graph

import (
	"sort"

	"github.com/vk/flowgraph/internal/ident"
)

// Group is a named, nested container of nodes. Groups form a forest via
// Parent pointers and Children sets; a node belongs to at most one immediate
// group. Interface holds the boundary pins computed from crossing
// connections, in creation order.
type Group struct {
	ID     ident.GroupID
	Name   string
	Parent ident.GroupID

	Children map[ident.GroupID]struct{}
	Members  map[ident.NodeID]struct{}

	Interface []ident.PinID

	// binding keys every in-group pin that anchors a crossing class to the
	// interface pin representing it. Interface pin identity is stable under
	// recomputation because it is looked up here, never recreated.
	binding map[ident.PinID]ident.PinID

	// origin records, per connection attached to an interface pin from
	// outside, the internal pin the connection was lifted from. A merged
	// crossing class gives an interface pin several origins; dissolution
	// restores each edge to its own.
	origin map[ident.ConnectionID]ident.PinID
}

// InterfaceFor returns the interface pin representing the given internal
// pin, if any.
func (g *Group) InterfaceFor(internal ident.PinID) (ident.PinID, bool) {
	ip, ok := g.binding[internal]
	return ip, ok
}

// origins returns the internal pins represented by the given interface pin,
// sorted for determinism. Strict boundary rules give every interface pin
// exactly one origin; the relaxed fan-in option allows several.
func (g *Group) origins(iface ident.PinID) []ident.PinID {
	var out []ident.PinID
	for internal, ip := range g.binding {
		if ip == iface {
			out = append(out, internal)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MemberIDs returns the immediate member nodes, sorted.
func (g *Group) MemberIDs() []ident.NodeID {
	out := make([]ident.NodeID, 0, len(g.Members))
	for id := range g.Members {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ChildIDs returns the immediate child groups, sorted.
func (g *Group) ChildIDs() []ident.GroupID {
	out := make([]ident.GroupID, 0, len(g.Children))
	for id := range g.Children {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g *Group) removeInterfaceID(id ident.PinID) {
	for i, v := range g.Interface {
		if v == id {
			g.Interface = append(g.Interface[:i], g.Interface[i+1:]...)
			return
		}
	}
}
