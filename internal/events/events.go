// Package events carries committed graph mutations to interested
// collaborators (rendering, execution). Delivery is synchronous and in
// emission order; what a subscriber does with an event is outside the graph
// core's contract.
package events

import "github.com/vk/flowgraph/internal/ident"

// Event is one committed mutation. The concrete variants below form a closed
// set; subscribers switch on the type.
type Event interface {
	event()
}

// NodeAdded announces a new node and its generated pins.
type NodeAdded struct {
	Node ident.NodeID
}

// NodeRemoved announces a node deletion. Cascaded connection removals arrive
// as separate ConnectionRemoved events before it.
type NodeRemoved struct {
	Node ident.NodeID
}

// ConnectionAdded announces a committed connection.
type ConnectionAdded struct {
	Connection ident.ConnectionID
}

// ConnectionRemoved announces a disconnect or cascaded removal.
type ConnectionRemoved struct {
	Connection ident.ConnectionID
}

// ConnectionInvalidated announces that a committed connection became invalid
// after a signature edit changed a pin type, or recovered its validity.
type ConnectionInvalidated struct {
	Connection ident.ConnectionID
	Reason     string
	// Valid is true when re-validation restored the connection.
	Valid bool
}

// GroupCreated announces a new group; its interface pins arrive as
// InterfacePinChanged events before it.
type GroupCreated struct {
	Group ident.GroupID
}

// GroupDissolved announces a dissolved group.
type GroupDissolved struct {
	Group ident.GroupID
}

// InterfacePinChanged announces that a group boundary pin appeared,
// disappeared, or changed type. Reason distinguishes the cases, including
// the soft type-inference conflict fallback to Any.
type InterfacePinChanged struct {
	Group  ident.GroupID
	Pin    ident.PinID
	Reason string
}

func (NodeAdded) event()             {}
func (NodeRemoved) event()           {}
func (ConnectionAdded) event()       {}
func (ConnectionRemoved) event()     {}
func (ConnectionInvalidated) event() {}
func (GroupCreated) event()          {}
func (GroupDissolved) event()        {}
func (InterfacePinChanged) event()   {}
