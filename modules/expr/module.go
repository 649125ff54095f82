// Package expr provides the expr node kind: a CEL expression over the
// node's inputs.
//
// Every linked input becomes a CEL variable of the same name. Numbers are
// CEL doubles, so literals mixed with them must be written as doubles
// (a * 2.0). The result is converted to the declared type.
package expr

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
	celtypes "github.com/google/cel-go/common/types"
	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the expr kind.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("expr", "result = CEL expression over the linked inputs", New)
}

// Params are the parameters of the expr kind.
type Params struct {
	Expression string `gridc:"expression"`
}

// New builds an expr node. The expression is compiled and type-checked here,
// so that errors surface when the graph is built.
func New(cfg registry.NodeConfig) (*node.Node, error) {
	var p Params
	if err := registry.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}
	if cfg.Type == cty.NilType {
		return nil, fmt.Errorf("declare the result type with the type attribute")
	}
	result, err := types.FromCty(cfg.Type)
	if err != nil {
		return nil, err
	}
	if !types.IsTrivial(result) {
		return nil, fmt.Errorf("result type %s is not supported in expressions", result)
	}

	names := make([]string, 0, len(cfg.InputTypes))
	for name := range cfg.InputTypes {
		names = append(names, name)
	}
	sort.Strings(names)

	inputs := make([]*types.Type, len(names))
	envOpts := make([]cel.EnvOption, 0, len(names))
	for i, name := range names {
		ty := cfg.InputTypes[name]
		ct, err := celType(ty)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		if inputs[i], err = types.FromCty(ty); err != nil {
			return nil, fmt.Errorf("input %q: %w", name, err)
		}
		envOpts = append(envOpts, cel.Variable(name, ct))
	}

	env, err := cel.NewEnv(envOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating expression environment: %w", err)
	}
	ast, issues := env.Compile(p.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if err := checkOutput(ast.OutputType(), cfg.Type); err != nil {
		return nil, err
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	want := cfg.Type
	n := node.New("expr", cfg.Name, node.Call("expr", func(args []cty.Value) ([]cty.Value, error) {
		activation := make(map[string]any, len(names))
		for i, name := range names {
			native, err := toNative(args[i])
			if err != nil {
				return nil, fmt.Errorf("input %q: %w", name, err)
			}
			activation[name] = native
		}
		out, _, err := prg.Eval(activation)
		if err != nil {
			return nil, fmt.Errorf("evaluating %q: %w", p.Expression, err)
		}
		native, err := goNative(out)
		if err != nil {
			return nil, err
		}
		v, err := toCty(native, want)
		if err != nil {
			return nil, fmt.Errorf("result of %q: %w", p.Expression, err)
		}
		return []cty.Value{v}, nil
	}))
	for i, name := range names {
		n.AddInput(name, inputs[i])
	}
	n.AddOutput("result", result)
	return n, nil
}

func celType(ty cty.Type) (*cel.Type, error) {
	switch {
	case ty.Equals(cty.Number):
		return cel.DoubleType, nil
	case ty.Equals(cty.String):
		return cel.StringType, nil
	case ty.Equals(cty.Bool):
		return cel.BoolType, nil
	case ty.IsListType(), ty.IsSetType():
		elem, err := celType(ty.ElementType())
		if err != nil {
			return nil, err
		}
		return cel.ListType(elem), nil
	case ty.IsMapType():
		elem, err := celType(ty.ElementType())
		if err != nil {
			return nil, err
		}
		return cel.MapType(cel.StringType, elem), nil
	case ty.IsObjectType():
		return cel.MapType(cel.StringType, cel.DynType), nil
	case ty.IsTupleType():
		return cel.ListType(cel.DynType), nil
	}
	return nil, fmt.Errorf("type %s has no expression equivalent", types.TypeName(ty))
}

// checkOutput rejects expressions whose static type cannot produce want.
func checkOutput(got *cel.Type, want cty.Type) error {
	kind := got.Kind()
	if kind == celtypes.DynKind {
		return nil
	}
	ok := true
	switch {
	case want.Equals(cty.Number):
		ok = kind == celtypes.DoubleKind || kind == celtypes.IntKind || kind == celtypes.UintKind
	case want.Equals(cty.String):
		ok = kind == celtypes.StringKind
	case want.Equals(cty.Bool):
		ok = kind == celtypes.BoolKind
	case want.IsListType(), want.IsSetType(), want.IsTupleType():
		ok = kind == celtypes.ListKind
	case want.IsMapType(), want.IsObjectType():
		ok = kind == celtypes.MapKind
	}
	if !ok {
		return fmt.Errorf("expression has type %s, declared type is %s", got, types.TypeName(want))
	}
	return nil
}
