package graph

import "github.com/vk/flowgraph/internal/ident"

// State is a committed connection's validity. Proposals that fail validation
// are never committed, so the only way a committed connection becomes
// Invalid is a later signature edit changing a pin type under it.
type State int

const (
	StateValid State = iota
	StateInvalid
)

func (s State) String() string {
	if s == StateInvalid {
		return "invalid"
	}
	return "valid"
}

// Connection is a directed typed edge from one output pin to one input pin.
//
// Implicit connections are the internal boundary legs the router creates
// between an in-group pin and its interface pin. They are owned by the
// router: user-facing operations neither create nor remove them directly,
// and the direction rule (output source, input target) applies only to
// explicit connections.
type Connection struct {
	ID     ident.ConnectionID
	Source ident.PinID
	Target ident.PinID

	State State
	// Reason describes why the connection is invalid; empty when valid.
	Reason string

	Implicit bool
}
