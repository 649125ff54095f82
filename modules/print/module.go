// Package print provides the print kind, which logs the values passing
// through it.
package print

import (
	"log/slog"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the print kind.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("print", "logs value and passes it through unchanged", NewPrint)
}

// Params are the parameters of the print kind.
type Params struct {
	Label string `gridc:"label,optional"`
}

// NewPrint builds a print node. Its type is the declared type or the type of
// whatever is linked into value, string by default. The output is the input
// value itself, so printing never copies it.
func NewPrint(cfg registry.NodeConfig) (*node.Node, error) {
	var p Params
	if err := registry.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}
	ty := cfg.Type
	if ty == cty.NilType {
		ty = cty.String
		if linked, ok := cfg.InputTypes["value"]; ok {
			ty = linked
		}
	}
	t, err := types.FromCty(ty)
	if err != nil {
		return nil, err
	}

	label := p.Label
	if label == "" {
		label = cfg.Name
	}
	op := func(args []cty.Value) ([]cty.Value, error) {
		out, err := types.FormatJSON(args[0])
		if err != nil {
			return nil, err
		}
		slog.Info("Printing value.", "label", label, "type", t.Name(), "value", string(out))
		return nil, nil
	}

	n := node.New("print", cfg.Name, node.BuildFunc(func(_ *node.Node, b backend.Builder, in []backend.Value) []backend.Value {
		b.Call("print", op, in, nil)
		return in
	}))
	n.AddInput("value", t)
	n.AddOutput("value", t)
	return n, nil
}
