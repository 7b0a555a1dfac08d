package builder

import (
	"context"
	"fmt"

	"github.com/vk/flowgraph/internal/config"
	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/graph"
	"github.com/vk/flowgraph/internal/ident"
	"github.com/vk/flowgraph/internal/registry"
)

// Result is a fully constructed editor state: the live model, the catalog it
// draws types from, and the declaration-name index into the model.
type Result struct {
	Model    *graph.Model
	Registry *registry.Registry
	// NodesByName maps declaration instance names to model ids.
	NodesByName map[string]ident.NodeID
}

// Build constructs a validated graph model from a loaded document. It runs
// in passes the way the document is layered: catalog registration, node
// instantiation, connections, then grouping, with a full audit at the end.
func Build(ctx context.Context, doc *config.Document, opts ...graph.Option) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.")

	res := &Result{
		Model:       graph.New(opts...),
		Registry:    registry.New(),
		NodesByName: make(map[string]ident.NodeID),
	}

	for name, desc := range doc.Types {
		if err := res.Registry.Register(name, desc); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: catalog registration complete.", "type_count", res.Registry.Len())

	if doc.Graph == nil {
		logger.Info("Build: document has no graph declaration.")
		return res, nil
	}

	for _, decl := range doc.Graph.Nodes {
		if _, exists := res.NodesByName[decl.Name]; exists {
			return nil, fmt.Errorf("node %q declared more than once", decl.Name)
		}
		desc, ok := res.Registry.Lookup(decl.TypeName)
		if !ok {
			return nil, fmt.Errorf("node %q references unknown node_type %q", decl.Name, decl.TypeName)
		}
		n, err := res.Model.AddNodeOfType(decl.Name, decl.TypeName, desc)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", decl.Name, err)
		}
		res.NodesByName[decl.Name] = n.ID
	}
	logger.Debug("Build: node creation complete.", "node_count", len(res.NodesByName))

	for _, decl := range doc.Graph.Connections {
		src, err := res.resolvePin(decl.From)
		if err != nil {
			return nil, err
		}
		dst, err := res.resolvePin(decl.To)
		if err != nil {
			return nil, err
		}
		if _, err := res.Model.Connect(src, dst); err != nil {
			return nil, fmt.Errorf("connect %s -> %s: %w", decl.From, decl.To, err)
		}
	}
	logger.Debug("Build: connection pass complete.", "connection_count", len(doc.Graph.Connections))

	for _, decl := range doc.Graph.Groups {
		members := make([]ident.NodeID, 0, len(decl.Members))
		for _, name := range decl.Members {
			id, ok := res.NodesByName[name]
			if !ok {
				return nil, fmt.Errorf("group %q references unknown node %q", decl.Name, name)
			}
			members = append(members, id)
		}
		if _, err := res.Model.CreateGroup(decl.Name, members...); err != nil {
			return nil, fmt.Errorf("group %q: %w", decl.Name, err)
		}
	}
	logger.Debug("Build: grouping pass complete.", "group_count", len(doc.Graph.Groups))

	if err := res.Model.Audit(); err != nil {
		return nil, fmt.Errorf("constructed graph failed its audit: %w", err)
	}
	logger.Info("Build: graph construction successful.")
	return res, nil
}

// resolvePin resolves a declaration address to a live pin id.
func (r *Result) resolvePin(addr config.Address) (ident.PinID, error) {
	nodeID, ok := r.NodesByName[addr.Node]
	if !ok {
		return "", fmt.Errorf("address %s references unknown node %q", addr, addr.Node)
	}
	p, ok := r.Model.PinOf(nodeID, addr.Pin)
	if !ok {
		return "", fmt.Errorf("address %s references unknown pin %q on node %q", addr, addr.Pin, addr.Node)
	}
	return p.ID, nil
}
