// This file contains the logic for parsing HCL type expressions (e.g.,
// `string`, `list(int)`) into their corresponding pin types.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/flowgraph/internal/ctxlog"
	"github.com/vk/flowgraph/internal/pintype"
)

// typeExprToPinType converts an HCL type expression into its pin type
// equivalent.
func typeExprToPinType(ctx context.Context, expr hcl.Expression) (pintype.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Type expression is nil, defaulting to any.")
		return pintype.Any, nil
	}

	// A type switch over the concrete expression types is the reliable way
	// to tell a bare keyword from a constructor call.
	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		logger.Debug("Parsing type expression as a constructor call.", "call", v.Name)
		if v.Name != "list" {
			return pintype.Invalid, fmt.Errorf("unknown type constructor function %q", v.Name)
		}
		if len(v.Args) != 1 {
			return pintype.Invalid, fmt.Errorf("list requires exactly one type argument, got %d", len(v.Args))
		}
		elem, err := typeExprToPinType(ctx, v.Args[0])
		if err != nil {
			return pintype.Invalid, err
		}
		logger.Debug("Parsed list element type.", "type", elem.String())
		return pintype.List(elem), nil

	case *hclsyntax.ScopeTraversalExpr:
		// This handles bare type keywords like `string` or `int`.
		if len(v.Traversal) != 1 {
			return pintype.Invalid, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		rootName := v.Traversal.RootName()
		logger.Debug("Parsing type expression as a primitive.", "keyword", rootName)
		typ, err := pintype.Parse(rootName)
		if err != nil {
			return pintype.Invalid, fmt.Errorf("unknown pin type %q", rootName)
		}
		return typ, nil

	default:
		return pintype.Invalid, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}
