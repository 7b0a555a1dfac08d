package graph

import (
	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/pintype"
	"github.com/vk/flowgraph/internal/signature"
	"github.com/zclconf/go-cty/cty"
)

// Pin is a typed, directional connection point. A node pin belongs to exactly
// one node for its entire lifetime; an interface pin belongs to exactly one
// group boundary. Exactly one of Node and Group is set.
type Pin struct {
	ID        ident.PinID
	Name      string
	Direction signature.Direction
	Type      pintype.Type

	// Node owns the pin when it was generated from a signature.
	Node ident.NodeID
	// Group owns the pin when it sits on a group boundary.
	Group ident.GroupID

	// Interface is true for group boundary pins.
	Interface bool
	// Conflict is true when type inference could not assign the pin a single
	// type and fell back to Any.
	Conflict bool

	// Default optionally carries the declared fallback value for an
	// unconnected input. Opaque to the graph core.
	Default *cty.Value
}

// IsInput reports whether the pin consumes a value.
func (p *Pin) IsInput() bool { return p.Direction == signature.Input }

// IsOutput reports whether the pin produces a value.
func (p *Pin) IsOutput() bool { return p.Direction == signature.Output }
