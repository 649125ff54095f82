// Package arith provides number node kinds.
package arith

import (
	"errors"

	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ErrDivisionByZero is returned by a compiled function dividing by zero.
var ErrDivisionByZero = errors.New("division by zero")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the arithmetic kinds.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("add", "result = a + b", binary("add", stdlib.AddFunc, types.Number))
	r.RegisterKind("sub", "result = a - b", binary("sub", stdlib.SubtractFunc, types.Number))
	r.RegisterKind("mul", "result = a * b", binary("mul", stdlib.MultiplyFunc, types.Number))
	r.RegisterKind("div", "result = a / b, failing on b = 0", binary("div", divide, types.Number))
	r.RegisterKind("mod", "result = a % b, failing on b = 0", binary("mod", modulo, types.Number))
	r.RegisterKind("greater", "result = a > b", binary("greater", stdlib.GreaterThanFunc, types.Bool))
	r.RegisterKind("less", "result = a < b", binary("less", stdlib.LessThanFunc, types.Bool))
	r.RegisterKind("max", "result = max(a, b)", binary("max", stdlib.MaxFunc, types.Number))
	r.RegisterKind("min", "result = min(a, b)", binary("min", stdlib.MinFunc, types.Number))
	r.RegisterKind("negate", "result = -a", unary("negate", stdlib.NegateFunc))
	r.RegisterKind("abs", "result = |a|", unary("abs", stdlib.AbsoluteFunc))
	r.RegisterKind("double", "result = 2a", unary("double", double))
}

var divide = guardZero(stdlib.DivideFunc)

var modulo = guardZero(stdlib.ModuloFunc)

var double = function.New(&function.Spec{
	Params: []function.Parameter{{Name: "a", Type: cty.Number}},
	Type:   function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return args[0].Multiply(cty.NumberIntVal(2)), nil
	},
})

// guardZero wraps a binary number function so that a zero divisor is an
// error instead of an infinity.
func guardZero(f function.Function) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "a", Type: cty.Number},
			{Name: "b", Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.Number),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			if args[1].Equals(cty.Zero).True() {
				return cty.NilVal, ErrDivisionByZero
			}
			return f.Call(args)
		},
	})
}

func binary(kind string, f function.Function, result *types.Type) registry.Factory {
	return func(cfg registry.NodeConfig) (*node.Node, error) {
		if err := registry.DecodeParams(cfg.Params, &struct{}{}); err != nil {
			return nil, err
		}
		n := node.New(kind, cfg.Name, node.Call(kind, call(f)))
		n.AddInput("a", types.Number)
		n.AddInput("b", types.Number)
		n.AddOutput("result", result)
		return n, nil
	}
}

func unary(kind string, f function.Function) registry.Factory {
	return func(cfg registry.NodeConfig) (*node.Node, error) {
		if err := registry.DecodeParams(cfg.Params, &struct{}{}); err != nil {
			return nil, err
		}
		n := node.New(kind, cfg.Name, node.Call(kind, call(f)))
		n.AddInput("a", types.Number)
		n.AddOutput("result", types.Number)
		return n, nil
	}
}

// call adapts a cty function to a single-result backend op.
func call(f function.Function) func([]cty.Value) ([]cty.Value, error) {
	return func(args []cty.Value) ([]cty.Value, error) {
		v, err := f.Call(args)
		if err != nil {
			return nil, err
		}
		return []cty.Value{v}, nil
	}
}
