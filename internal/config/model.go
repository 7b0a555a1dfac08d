package config

import (
	"fmt"
	"strings"

	"github.com/vk/flowgraph/internal/signature"
)

// Document is the unified, format-agnostic representation of a loaded
// project: the node-type manifests plus the graph declaration built from
// them.
type Document struct {
	Types map[string]signature.Descriptor
	Graph *GraphDecl
}

// GraphDecl represents the user's graph declaration.
type GraphDecl struct {
	Nodes       []*NodeDecl
	Connections []*ConnectionDecl
	Groups      []*GroupDecl
}

// NodeDecl is the format-agnostic representation of a `node` block: an
// instance of a catalog type.
type NodeDecl struct {
	TypeName string
	Name     string
}

// ConnectionDecl is the format-agnostic representation of a `connect` block.
type ConnectionDecl struct {
	From Address
	To   Address
}

// GroupDecl is the format-agnostic representation of a `group` block.
type GroupDecl struct {
	Name    string
	Members []string
}

// Address names a pin as "node.pin", the form connection declarations use.
type Address struct {
	Node string
	Pin  string
}

func (a Address) String() string {
	return a.Node + "." + a.Pin
}

// ParseAddress splits a "node.pin" reference.
func ParseAddress(s string) (Address, error) {
	node, pin, ok := strings.Cut(s, ".")
	if !ok || node == "" || pin == "" {
		return Address{}, fmt.Errorf("address %q is not of the form node.pin", s)
	}
	return Address{Node: node, Pin: pin}, nil
}
