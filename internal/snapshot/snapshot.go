// Package snapshot defines the structural snapshot exchanged with the
// persistence collaborator: a plain nested record of every entity, with no
// behavior attached. The graph model produces and consumes it losslessly;
// how it reaches disk is not this module's concern.
package snapshot

import (
	"encoding/json"
	"fmt"

	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/pintype"
	"github.com/vk/flowgraph/internal/signature"
)

// Graph is the root record. Slices are sorted by id when produced by the
// model, making snapshots directly comparable.
type Graph struct {
	Nodes       []Node       `json:"nodes"`
	Pins        []Pin        `json:"pins"`
	Connections []Connection `json:"connections"`
	Groups      []Group      `json:"groups"`
}

// Node carries a node and its signature. Meta is opaque editor payload
// (e.g. canvas position) that round-trips untouched.
type Node struct {
	ID        ident.NodeID      `json:"id"`
	Name      string            `json:"name"`
	TypeName  string            `json:"type_name,omitempty"`
	Signature []PinDecl         `json:"signature"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// PinDecl is one signature entry. Default, when present, is the
// ctyjson-encoded literal for an unconnected input.
type PinDecl struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Direction string          `json:"direction"`
	Default   json.RawMessage `json:"default,omitempty"`
}

// Pin records one live pin, node-owned or boundary.
type Pin struct {
	ID        ident.PinID   `json:"id"`
	Name      string        `json:"name"`
	Direction string        `json:"direction"`
	Type      string        `json:"type"`
	Node      ident.NodeID  `json:"node,omitempty"`
	Group     ident.GroupID `json:"group,omitempty"`
	Interface bool          `json:"interface,omitempty"`
	Conflict  bool          `json:"conflict,omitempty"`
}

// Connection records one edge, boundary legs included.
type Connection struct {
	ID       ident.ConnectionID `json:"id"`
	Source   ident.PinID        `json:"source"`
	Target   ident.PinID        `json:"target"`
	State    string             `json:"state"`
	Reason   string             `json:"reason,omitempty"`
	Implicit bool               `json:"implicit,omitempty"`
}

// Binding records one crossing class: the internal pin and the interface pin
// representing it.
type Binding struct {
	Internal  ident.PinID `json:"internal"`
	Interface ident.PinID `json:"interface"`
}

// Origin records the internal pin a boundary-attached connection was lifted
// from, so dissolution can restore merged classes edge by edge.
type Origin struct {
	Connection ident.ConnectionID `json:"connection"`
	Internal   ident.PinID        `json:"internal"`
}

// Group records one group and its boundary bookkeeping.
type Group struct {
	ID        ident.GroupID  `json:"id"`
	Name      string         `json:"name"`
	Parent    ident.GroupID  `json:"parent,omitempty"`
	Members   []ident.NodeID `json:"members"`
	Interface []ident.PinID  `json:"interface,omitempty"`
	Bindings  []Binding      `json:"bindings,omitempty"`
	Origins   []Origin       `json:"origins,omitempty"`
}

// Encode renders the snapshot as indented JSON.
func Encode(g *Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &g, nil
}

// EncodeDecl converts a live signature declaration into its snapshot form.
func EncodeDecl(d signature.PinDecl) (PinDecl, error) {
	out := PinDecl{
		Name:      d.Name,
		Type:      d.Type.String(),
		Direction: d.Direction.String(),
	}
	if d.Default != nil {
		raw, err := ctyjson.Marshal(*d.Default, d.Type.Cty())
		if err != nil {
			return PinDecl{}, fmt.Errorf("failed to encode default for pin %q: %w", d.Name, err)
		}
		out.Default = raw
	}
	return out, nil
}

// DecodeDecl is the inverse of EncodeDecl.
func DecodeDecl(d PinDecl) (signature.PinDecl, error) {
	typ, err := pintype.Parse(d.Type)
	if err != nil {
		return signature.PinDecl{}, fmt.Errorf("pin %q: %w", d.Name, err)
	}
	dir, err := signature.ParseDirection(d.Direction)
	if err != nil {
		return signature.PinDecl{}, fmt.Errorf("pin %q: %w", d.Name, err)
	}
	decl := signature.PinDecl{Name: d.Name, Type: typ, Direction: dir}
	if len(d.Default) > 0 {
		val, err := ctyjson.Unmarshal(d.Default, typ.Cty())
		if err != nil {
			return signature.PinDecl{}, fmt.Errorf("failed to decode default for pin %q: %w", d.Name, err)
		}
		decl.Default = &val
	}
	return decl, nil
}
