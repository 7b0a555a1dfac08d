// Package ident defines the typed identifiers used to key every entity
// registry in the graph model. Entities never hold pointers to each other;
// they refer to one another exclusively through these ids.
package ident

import "github.com/google/uuid"

// NodeID identifies a node.
type NodeID string

// PinID identifies a pin, whether owned by a node or generated on a group
// boundary.
type PinID string

// ConnectionID identifies a connection.
type ConnectionID string

// GroupID identifies a group.
type GroupID string

// NewNodeID returns a fresh, globally unique node id.
func NewNodeID() NodeID { return NodeID("node-" + uuid.NewString()) }

// NewPinID returns a fresh, globally unique pin id.
func NewPinID() PinID { return PinID("pin-" + uuid.NewString()) }

// NewConnectionID returns a fresh, globally unique connection id.
func NewConnectionID() ConnectionID { return ConnectionID("conn-" + uuid.NewString()) }

// NewGroupID returns a fresh, globally unique group id.
func NewGroupID() GroupID { return GroupID("group-" + uuid.NewString()) }

func (id NodeID) String() string       { return string(id) }
func (id PinID) String() string        { return string(id) }
func (id ConnectionID) String() string { return string(id) }
func (id GroupID) String() string      { return string(id) }

// IsZero reports whether the id is unset.
func (id NodeID) IsZero() bool       { return id == "" }
func (id PinID) IsZero() bool        { return id == "" }
func (id ConnectionID) IsZero() bool { return id == "" }
func (id GroupID) IsZero() bool      { return id == "" }
