// This file contains the logic for translating node and compile blocks into
// the format-agnostic model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// translateNode converts a `node "<kind>" "<name>"` block.
func translateNode(ctx context.Context, block *hcl.Block) (*config.NodeDecl, error) {
	kind, name := block.Labels[0], block.Labels[1]
	logger := ctxlog.FromContext(ctx).With("node_kind", kind, "node_name", name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL node block.")

	var body nodeBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, diags
	}

	decl := &config.NodeDecl{
		Kind:   kind,
		Name:   name,
		Params: make(map[string]cty.Value),
		Source: block.DefRange.String(),
	}

	if isExprDefined(ctx, body.Type, "type") {
		ty, err := typeExprToCtyType(ctx, body.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: node %q: %w", body.Type.Range(), name, err)
		}
		decl.Type = ty
	}

	if isExprDefined(ctx, body.Inputs, "inputs") {
		inputs, err := socketRefMap(body.Inputs)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		decl.Inputs = inputs
	}

	attrs, diags := body.Remain.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	names := make([]string, 0, len(attrs))
	for attr := range attrs {
		names = append(names, attr)
	}
	sort.Strings(names)
	for _, attr := range names {
		if refs := attrs[attr].Expr.Variables(); len(refs) > 0 {
			return nil, fmt.Errorf("node %q: parameter %q refers to %s: parameters are constant, link values through inputs",
				name, attr, traversalString(refs[0]))
		}
		val, diags := attrs[attr].Expr.Value(evalContext)
		if diags.HasErrors() {
			return nil, fmt.Errorf("node %q: parameter %q: %w", name, attr, diags)
		}
		decl.Params[attr] = val
	}
	logger.Debug("Translated HCL node block.", "inputs", len(decl.Inputs), "params", names)
	return decl, nil
}

// translateFunction converts a `compile "<name>"` block.
func translateFunction(ctx context.Context, block *hcl.Block) (*config.FunctionDecl, error) {
	name := block.Labels[0]
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("function", name))

	var body compileBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, diags
	}

	decl := &config.FunctionDecl{Name: name, Source: block.DefRange.String()}
	var err error
	if isExprDefined(ctx, body.Inputs, "inputs") {
		if decl.Inputs, err = socketRefList(body.Inputs); err != nil {
			return nil, fmt.Errorf("compile %q: inputs: %w", name, err)
		}
	}
	if decl.Outputs, err = socketRefList(body.Outputs); err != nil {
		return nil, fmt.Errorf("compile %q: outputs: %w", name, err)
	}
	return decl, nil
}
