package registry

import (
	"fmt"
	"sort"

	"github.com/vk/flowgraph/internal/signature"
)

// Registry is the node-type catalog for a single application instance: the
// named signature descriptors nodes can be instantiated from. Manifests
// populate it at load time; the builder and editor host query it afterwards.
type Registry struct {
	definitions map[string]signature.Descriptor
}

// New creates an empty Registry instance.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]signature.Descriptor),
	}
}

// Register adds a node type under its catalog name. The descriptor is
// normalized first, so untyped pins land in the catalog as Any. Registering
// a name twice or a structurally invalid descriptor is rejected.
func (r *Registry) Register(name string, desc signature.Descriptor) error {
	if name == "" {
		return fmt.Errorf("node type name must not be empty")
	}
	if _, dup := r.definitions[name]; dup {
		return fmt.Errorf("node type %q is already registered", name)
	}
	desc = desc.Normalize()
	if err := desc.Validate(); err != nil {
		return fmt.Errorf("node type %q: %w", name, err)
	}
	r.definitions[name] = desc
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (signature.Descriptor, bool) {
	d, ok := r.definitions[name]
	return d, ok
}

// Types returns the registered catalog names, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered node types.
func (r *Registry) Len() int { return len(r.definitions) }
