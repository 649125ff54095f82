// Package text provides string node kinds.
package text

import (
	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the text kinds.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("concat", "result = a + separator + b", NewConcat)
	r.RegisterKind("format", "result = value formatted with a printf-style spec", NewFormat)
	r.RegisterKind("length", "result = number of characters of a", simple("length", stdlib.StrlenFunc, types.Number))
	r.RegisterKind("upper", "result = a in upper case", simple("upper", stdlib.UpperFunc, types.String))
	r.RegisterKind("lower", "result = a in lower case", simple("lower", stdlib.LowerFunc, types.String))
}

// ConcatParams are the parameters of the concat kind.
type ConcatParams struct {
	Separator string `gridc:"separator,optional"`
}

// NewConcat builds a concat node.
func NewConcat(cfg registry.NodeConfig) (*node.Node, error) {
	var p ConcatParams
	if err := registry.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}
	sep := p.Separator
	n := node.New("concat", cfg.Name, node.Call("concat", func(args []cty.Value) ([]cty.Value, error) {
		return []cty.Value{cty.StringVal(args[0].AsString() + sep + args[1].AsString())}, nil
	}))
	n.AddInput("a", types.String)
	n.AddInput("b", types.String)
	n.AddOutput("result", types.String)
	return n, nil
}

// FormatParams are the parameters of the format kind.
type FormatParams struct {
	Format string `gridc:"format,optional"`
}

// NewFormat builds a format node. Its input type is the declared type,
// number by default.
func NewFormat(cfg registry.NodeConfig) (*node.Node, error) {
	var p FormatParams
	if err := registry.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}
	spec := p.Format
	if spec == "" {
		spec = "%v"
	}
	in := types.Number
	if cfg.Type != cty.NilType {
		t, err := types.FromCty(cfg.Type)
		if err != nil {
			return nil, err
		}
		in = t
	}
	format := cty.StringVal(spec)
	n := node.New("format", cfg.Name, node.Call("format", func(args []cty.Value) ([]cty.Value, error) {
		v, err := stdlib.Format(format, args[0])
		if err != nil {
			return nil, err
		}
		return []cty.Value{v}, nil
	}))
	n.AddInput("value", in)
	n.AddOutput("result", types.String)
	return n, nil
}

func simple(kind string, f function.Function, result *types.Type) registry.Factory {
	return func(cfg registry.NodeConfig) (*node.Node, error) {
		if err := registry.DecodeParams(cfg.Params, &struct{}{}); err != nil {
			return nil, err
		}
		n := node.New(kind, cfg.Name, node.Call(kind, func(args []cty.Value) ([]cty.Value, error) {
			v, err := f.Call(args)
			if err != nil {
				return nil, err
			}
			return []cty.Value{v}, nil
		}))
		n.AddInput("a", types.String)
		n.AddOutput("result", result)
		return n, nil
	}
}
