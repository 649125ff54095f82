// Package buffer provides node kinds over reference-counted byte buffers.
// Every kind consumes its buffer inputs: it reads them and releases them.
package buffer

import (
	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the buffer kinds.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("buffer_from_string", "buffer = bytes of a", kind("buffer_from_string",
		[]*types.Type{types.String}, types.BufferType, fromString))
	r.RegisterKind("buffer_concat", "buffer = a followed by b", kind("buffer_concat",
		[]*types.Type{types.BufferType, types.BufferType}, types.BufferType, concat))
	r.RegisterKind("buffer_len", "result = size of a in bytes", kind("buffer_len",
		[]*types.Type{types.BufferType}, types.Number, length))
	r.RegisterKind("buffer_to_string", "result = a as a string", kind("buffer_to_string",
		[]*types.Type{types.BufferType}, types.String, toString))
}

func fromString(args []cty.Value) (cty.Value, error) {
	return types.BufferVal(types.NewBuffer([]byte(args[0].AsString()))), nil
}

func concat(args []cty.Value) (cty.Value, error) {
	a, err := types.BufferFrom(args[0])
	if err != nil {
		return cty.NilVal, err
	}
	b, err := types.BufferFrom(args[1])
	if err != nil {
		return cty.NilVal, err
	}
	data := make([]byte, 0, len(a.Bytes())+len(b.Bytes()))
	data = append(data, a.Bytes()...)
	data = append(data, b.Bytes()...)
	return types.BufferVal(types.NewBuffer(data)), nil
}

func length(args []cty.Value) (cty.Value, error) {
	a, err := types.BufferFrom(args[0])
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NumberIntVal(int64(len(a.Bytes()))), nil
}

func toString(args []cty.Value) (cty.Value, error) {
	a, err := types.BufferFrom(args[0])
	if err != nil {
		return cty.NilVal, err
	}
	return cty.StringVal(string(a.Bytes())), nil
}

var inputNames = []string{"a", "b"}

func kind(name string, inputs []*types.Type, output *types.Type, f func([]cty.Value) (cty.Value, error)) registry.Factory {
	outName := "result"
	if output == types.BufferType {
		outName = "buffer"
	}
	return func(cfg registry.NodeConfig) (*node.Node, error) {
		if err := registry.DecodeParams(cfg.Params, &struct{}{}); err != nil {
			return nil, err
		}
		n := node.New(name, cfg.Name, node.Call(name, func(args []cty.Value) ([]cty.Value, error) {
			v, err := f(args)
			if err != nil {
				return nil, err
			}
			return []cty.Value{v}, nil
		}))
		for i, t := range inputs {
			n.AddInput(inputNames[i], t)
		}
		n.AddOutput(outName, output)
		return n, nil
	}
}
