package graph

import (
	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/signature"
)

// Node is an entity owning an ordered set of input and output pins generated
// from a signature descriptor. Pin order is stable: it follows declaration
// order in the descriptor.
type Node struct {
	ID   ident.NodeID
	Name string
	// TypeName is the optional catalog type this node was instantiated from.
	TypeName  string
	Signature signature.Descriptor

	// Inputs and Outputs hold pin ids in declaration order.
	Inputs  []ident.PinID
	Outputs []ident.PinID

	// Parent is the node's immediate group, or zero at root scope.
	Parent ident.GroupID

	// Meta carries opaque collaborator data (e.g. editor position). The core
	// never interprets it; it round-trips through snapshots.
	Meta map[string]string
}

// PinIDs returns all pin ids, inputs first, each side in declaration order.
func (n *Node) PinIDs() []ident.PinID {
	ids := make([]ident.PinID, 0, len(n.Inputs)+len(n.Outputs))
	ids = append(ids, n.Inputs...)
	ids = append(ids, n.Outputs...)
	return ids
}

func (n *Node) removePinID(id ident.PinID) {
	n.Inputs = removeID(n.Inputs, id)
	n.Outputs = removeID(n.Outputs, id)
}

func removeID(ids []ident.PinID, id ident.PinID) []ident.PinID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
