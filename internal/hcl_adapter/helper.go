package hcl_adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// evalContext is available to parameter expressions. It has functions but
// no variables: parameters are fixed at build time.
var evalContext = &hcl.EvalContext{
	Functions: map[string]function.Function{
		"abs":        stdlib.AbsoluteFunc,
		"concat":     stdlib.ConcatFunc,
		"format":     stdlib.FormatFunc,
		"join":       stdlib.JoinFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"lower":      stdlib.LowerFunc,
		"max":        stdlib.MaxFunc,
		"min":        stdlib.MinFunc,
		"upper":      stdlib.UpperFunc,
	},
}

// isExprDefined checks if an HCL expression was actually present in the
// source. gohcl fills omitted optional attributes with zero-width
// placeholder expressions, so a nil check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checked if HCL attribute was defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}

// socketRef converts a `node.<name>.<socket>` traversal.
func socketRef(expr hcl.Expression) (config.SocketRef, error) {
	trav, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(trav) != 3 || trav.RootName() != "node" {
		return config.SocketRef{}, fmt.Errorf("%s: expected a socket reference like node.<name>.<socket>", expr.Range())
	}
	nodeName, ok1 := trav[1].(hcl.TraverseAttr)
	socket, ok2 := trav[2].(hcl.TraverseAttr)
	if !ok1 || !ok2 {
		return config.SocketRef{}, fmt.Errorf("%s: expected a socket reference like node.<name>.<socket>", expr.Range())
	}
	return config.SocketRef{Node: nodeName.Name, Socket: socket.Name}, nil
}

func socketRefList(expr hcl.Expression) ([]config.SocketRef, error) {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	refs := make([]config.SocketRef, 0, len(items))
	for _, item := range items {
		ref, err := socketRef(item)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// socketRefMap converts `{ input = node.<name>.<socket>, ... }`.
func socketRefMap(expr hcl.Expression) (map[string]config.SocketRef, error) {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		return nil, diags
	}
	refs := make(map[string]config.SocketRef, len(pairs))
	for _, kv := range pairs {
		key := hcl.ExprAsKeyword(kv.Key)
		if key == "" {
			v, diags := kv.Key.Value(nil)
			if diags.HasErrors() || v.IsNull() || !v.Type().Equals(cty.String) {
				return nil, fmt.Errorf("%s: input names must be identifiers or strings", kv.Key.Range())
			}
			key = v.AsString()
		}
		if _, dup := refs[key]; dup {
			return nil, fmt.Errorf("%s: input %q linked twice", kv.Key.Range(), key)
		}
		ref, err := socketRef(kv.Value)
		if err != nil {
			return nil, err
		}
		refs[key] = ref
	}
	return refs, nil
}

// traversalString renders a reference such as node.five.value.
func traversalString(t hcl.Traversal) string {
	var sb strings.Builder
	for _, step := range t {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			sb.WriteString(s.Name)
		case hcl.TraverseAttr:
			sb.WriteString("." + s.Name)
		default:
			sb.WriteString("[...]")
		}
	}
	return sb.String()
}
