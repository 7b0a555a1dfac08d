package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/vk/flowgraph/internal/signature"
)

// translateNodeType converts a decoded node_type manifest block into a
// catalog descriptor, resolving type expressions and carrying input
// defaults.
func (l *Loader) translateNodeType(ctx context.Context, def *NodeTypeDefinition) (signature.Descriptor, error) {
	var pins []signature.PinDecl

	for _, in := range def.Inputs {
		typ, err := typeExprToPinType(ctx, in.Type)
		if err != nil {
			return signature.Descriptor{}, fmt.Errorf("node_type %q, input %q: %w", def.Type, in.Name, err)
		}
		pins = append(pins, signature.PinDecl{
			Name:      in.Name,
			Type:      typ,
			Direction: signature.Input,
			Default:   in.Default,
		})
	}
	for _, out := range def.Outputs {
		typ, err := typeExprToPinType(ctx, out.Type)
		if err != nil {
			return signature.Descriptor{}, fmt.Errorf("node_type %q, output %q: %w", def.Type, out.Name, err)
		}
		pins = append(pins, signature.PinDecl{
			Name:      out.Name,
			Type:      typ,
			Direction: signature.Output,
		})
	}

	desc := signature.New(pins...)
	if err := desc.Validate(); err != nil {
		return signature.Descriptor{}, fmt.Errorf("node_type %q: %w", def.Type, err)
	}
	return desc, nil
}
