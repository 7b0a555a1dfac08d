package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Node-Type Manifest Schemas ---

// InputDefinition defines a single input pin of a node type.
type InputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
}

// OutputDefinition defines a single output pin of a node type.
type OutputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

// NodeTypeDefinition represents the HCL manifest for a catalog node type.
type NodeTypeDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
}

// --- Graph Declaration Schemas ---

// Node represents a `node` block: an instance of a catalog type under a
// local name.
type Node struct {
	TypeName string `hcl:"node_type,label"`
	Name     string `hcl:"instance_name,label"`
}

// Connect represents a `connect` block wiring one output address to one
// input address.
type Connect struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// Group represents a `group` block collapsing named nodes into a group.
type Group struct {
	Name    string   `hcl:"name,label"`
	Members []string `hcl:"members"`
}

// fileRoot decodes all possible top-level blocks from any file. Manifests
// and graph declarations may be mixed freely across files.
type fileRoot struct {
	NodeTypes   []*NodeTypeDefinition `hcl:"node_type,block"`
	Nodes       []*Node               `hcl:"node,block"`
	Connections []*Connect            `hcl:"connect,block"`
	Groups      []*Group              `hcl:"group,block"`
	Remain      hcl.Body              `hcl:",remain"`
}
