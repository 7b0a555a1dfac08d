package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/flowgraph/internal/config"
	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/fsutil"
	"github.com/vk/flowgraph/internal/signature"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load orchestrates the HCL loading process. It is agnostic to the origin of
// the paths and accepts any valid block from any file: node-type manifests
// and graph declarations may live together or apart.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	document := &config.Document{
		Types: make(map[string]signature.Descriptor),
		Graph: &config.GraphDecl{},
	}

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, def := range root.NodeTypes {
			desc, err := l.translateNodeType(ctx, def)
			if err != nil {
				return nil, err
			}
			if _, dup := document.Types[def.Type]; dup {
				return nil, fmt.Errorf("node_type %q defined more than once", def.Type)
			}
			document.Types[def.Type] = desc
		}
		for _, n := range root.Nodes {
			document.Graph.Nodes = append(document.Graph.Nodes, &config.NodeDecl{
				TypeName: n.TypeName,
				Name:     n.Name,
			})
		}
		for _, c := range root.Connections {
			from, err := config.ParseAddress(c.From)
			if err != nil {
				return nil, fmt.Errorf("connect block in %s: %w", file, err)
			}
			to, err := config.ParseAddress(c.To)
			if err != nil {
				return nil, fmt.Errorf("connect block in %s: %w", file, err)
			}
			document.Graph.Connections = append(document.Graph.Connections, &config.ConnectionDecl{
				From: from,
				To:   to,
			})
		}
		for _, g := range root.Groups {
			document.Graph.Groups = append(document.Graph.Groups, &config.GroupDecl{
				Name:    g.Name,
				Members: g.Members,
			})
		}
	}

	logger.Debug("HCL loading complete.",
		"types", len(document.Types),
		"nodes", len(document.Graph.Nodes),
		"connections", len(document.Graph.Connections),
		"groups", len(document.Graph.Groups),
	)
	return document, nil
}

// findAllHCLFiles walks all given paths and returns a flat, de-duplicated
// list of .hcl files, sorted within each directory walk.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path does not exist: %s", path)
			}
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(path, ".hcl") {
				if _, dup := seen[path]; !dup {
					seen[path] = struct{}{}
					allFiles = append(allFiles, path)
				}
			}
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				allFiles = append(allFiles, p)
			}
		}
	}
	return allFiles, nil
}
