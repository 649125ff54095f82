// Package core provides the structural node kinds: constants, identity and
// select.
package core

import (
	"fmt"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the core kinds.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("const", "a constant value; output value", NewConst)
	r.RegisterKind("identity", "passes its input a through to value", NewIdentity)
	r.RegisterKind("select", "value = cond ? a : b", NewSelect)
}

// ConstParams are the parameters of the const kind.
type ConstParams struct {
	Value cty.Value `gridc:"value"`
}

// NewConst builds a const node. The output type is the declared type, or the
// type of the value when none is declared.
func NewConst(cfg registry.NodeConfig) (*node.Node, error) {
	var p ConstParams
	if err := registry.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}

	want := cfg.Type
	if want == cty.NilType {
		want = p.Value.Type()
	}
	if want.Equals(types.BufferCty) {
		return newBufferConst(cfg.Name, p.Value)
	}
	val, err := convert.Convert(p.Value, want)
	if err != nil {
		return nil, fmt.Errorf("value does not conform to %s: %w", types.TypeName(want), err)
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value must be known")
	}
	t, err := types.FromCty(want)
	if err != nil {
		return nil, err
	}

	n := node.New("const", cfg.Name, node.BuildFunc(func(n *node.Node, b backend.Builder, _ []backend.Value) []backend.Value {
		return []backend.Value{b.Const(n.Output(0).Type.Repr(b.Context()), val)}
	}))
	n.AddOutput("value", t)
	return n, nil
}

// newBufferConst creates a fresh buffer on every invocation, since the
// function hands ownership of it downstream.
func newBufferConst(name string, v cty.Value) (*node.Node, error) {
	s, err := convert.Convert(v, cty.String)
	if err != nil || s.IsNull() || !s.IsKnown() {
		return nil, fmt.Errorf("a buffer constant needs a string value")
	}
	data := []byte(s.AsString())
	n := node.New("const", name, node.Call("buffer.new", func([]cty.Value) ([]cty.Value, error) {
		return []cty.Value{types.BufferVal(types.NewBuffer(data))}, nil
	}))
	n.AddOutput("value", types.BufferType)
	return n, nil
}

// NewIdentity builds an identity node. Its type is the declared type or the
// type of whatever is linked into a.
func NewIdentity(cfg registry.NodeConfig) (*node.Node, error) {
	if err := registry.DecodeParams(cfg.Params, &struct{}{}); err != nil {
		return nil, err
	}
	t, err := socketType(cfg, "a")
	if err != nil {
		return nil, err
	}
	n := node.New("identity", cfg.Name, node.BuildFunc(func(_ *node.Node, _ backend.Builder, in []backend.Value) []backend.Value {
		return []backend.Value{in[0]}
	}))
	n.AddInput("a", t)
	n.AddOutput("value", t)
	return n, nil
}

// NewSelect builds a select node over inputs cond, a and b.
func NewSelect(cfg registry.NodeConfig) (*node.Node, error) {
	if err := registry.DecodeParams(cfg.Params, &struct{}{}); err != nil {
		return nil, err
	}
	t, err := socketType(cfg, "a")
	if err != nil {
		return nil, err
	}

	// Every input is released after the call, so the chosen value gets an
	// extra reference first.
	retain := func(v cty.Value) (cty.Value, error) { return v, nil }
	if !types.IsTrivial(t) {
		retain = func(v cty.Value) (cty.Value, error) {
			b, err := types.BufferFrom(v)
			if err != nil {
				return cty.NilVal, err
			}
			return types.BufferVal(b.Retain()), nil
		}
	}

	n := node.New("select", cfg.Name, node.Call("select", func(args []cty.Value) ([]cty.Value, error) {
		if args[0].IsNull() {
			return nil, fmt.Errorf("select condition is null")
		}
		chosen := args[2]
		if args[0].True() {
			chosen = args[1]
		}
		out, err := retain(chosen)
		if err != nil {
			return nil, err
		}
		return []cty.Value{out}, nil
	}))
	n.AddInput("cond", types.Bool)
	n.AddInput("a", t)
	n.AddInput("b", t)
	n.AddOutput("value", t)
	return n, nil
}

func socketType(cfg registry.NodeConfig, input string) (*types.Type, error) {
	ty := cfg.Type
	if ty == cty.NilType {
		linked, ok := cfg.InputTypes[input]
		if !ok {
			return nil, fmt.Errorf("cannot infer the type: declare type or link input %q", input)
		}
		ty = linked
	}
	return types.FromCty(ty)
}
