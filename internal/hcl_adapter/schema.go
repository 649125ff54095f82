package hcl_adapter

import "github.com/hashicorp/hcl/v2"

var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "node", LabelNames: []string{"kind", "name"}},
		{Type: "compile", LabelNames: []string{"name"}},
	},
}

// nodeBody is the body of a `node` block.
type nodeBody struct {
	Type   hcl.Expression `hcl:"type,optional"`
	Inputs hcl.Expression `hcl:"inputs,optional"`
	Remain hcl.Body       `hcl:",remain"`
}

// compileBody is the body of a `compile` block.
type compileBody struct {
	Inputs  hcl.Expression `hcl:"inputs,optional"`
	Outputs hcl.Expression `hcl:"outputs"`
}
