// This file contains the logic for parsing HCL type expressions (e.g.
// `string`, `list(number)`, `buffer`) into their cty.Type equivalents.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// ParseType parses a type expression given as text, such as "map(number)".
func ParseType(ctx context.Context, src string) (cty.Type, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "<type>", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type %q: %w", src, diags)
	}
	return typeExprToCtyType(ctx, expr)
}

// typeExprToCtyType converts an HCL type expression into its cty.Type
// equivalent. Graph sockets need concrete types, so `any` is rejected.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.NilType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		return keywordType(v.Traversal.RootName())

	case *hclsyntax.FunctionCallExpr:
		ctxlog.FromContext(ctx).Debug("Parsing type constructor.", "call", v.Name)
		if len(v.Args) != 1 {
			return cty.NilType, fmt.Errorf("the %s() type constructor requires exactly one argument, got %d", v.Name, len(v.Args))
		}
		if v.Name == "object" {
			return objectType(ctx, v.Args[0])
		}
		elem, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.NilType, err
		}
		if elem.Equals(types.BufferCty) {
			return cty.NilType, fmt.Errorf("%s(buffer) is not supported: buffers cannot be nested", v.Name)
		}
		switch v.Name {
		case "list":
			return cty.List(elem), nil
		case "map":
			return cty.Map(elem), nil
		case "set":
			return cty.Set(elem), nil
		}
		return cty.NilType, fmt.Errorf("unknown type constructor %q", v.Name)
	}
	return cty.NilType, fmt.Errorf("unsupported expression for type definition: %T", expr)
}

func keywordType(name string) (cty.Type, error) {
	switch name {
	case "string":
		return cty.String, nil
	case "number":
		return cty.Number, nil
	case "bool":
		return cty.Bool, nil
	case "buffer":
		return types.BufferCty, nil
	case "any":
		return cty.NilType, fmt.Errorf("type any is not allowed: sockets need a concrete type")
	}
	return cty.NilType, fmt.Errorf("unknown type %q", name)
}

// objectType parses the argument of object({ key = type, ... }).
func objectType(ctx context.Context, arg hcl.Expression) (cty.Type, error) {
	obj, ok := arg.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.NilType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", arg)
	}

	attrs := make(map[string]cty.Type, len(obj.Items))
	for _, item := range obj.Items {
		key := hcl.ExprAsKeyword(item.KeyExpr)
		if key == "" {
			if v, diags := item.KeyExpr.Value(nil); !diags.HasErrors() && v.Type().Equals(cty.String) && !v.IsNull() {
				key = v.AsString()
			}
		}
		if key == "" {
			return cty.NilType, fmt.Errorf("invalid key in object type definition: keys must be identifiers or quoted strings")
		}
		at, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return cty.NilType, fmt.Errorf("in object attribute %q: %w", key, err)
		}
		if at.Equals(types.BufferCty) {
			return cty.NilType, fmt.Errorf("in object attribute %q: buffers cannot be nested", key)
		}
		attrs[key] = at
	}
	return cty.Object(attrs), nil
}
