// Package env provides node kinds that read the process environment when the
// compiled function is called.
package env

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the environment kinds.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("env", "value = the environment variable name, or default", NewEnv)
	r.RegisterKind("env_vars", "all = every environment variable", NewEnvVars)
}

// EnvParams are the parameters of the env kind.
type EnvParams struct {
	Name    string    `gridc:"name"`
	Default cty.Value `gridc:"default,optional"`
}

// NewEnv builds an env node. A variable that is unset and has no default
// fails the call.
func NewEnv(cfg registry.NodeConfig) (*node.Node, error) {
	var p EnvParams
	if err := registry.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}
	if p.Name == "" {
		return nil, errors.New("name must not be empty")
	}
	name := p.Name
	var def *string
	if !p.Default.IsNull() {
		v, err := convert.Convert(p.Default, cty.String)
		if err != nil {
			return nil, fmt.Errorf("default: %w", err)
		}
		s := v.AsString()
		def = &s
	}
	n := node.New("env", cfg.Name, node.Call("env", func([]cty.Value) ([]cty.Value, error) {
		v, ok := os.LookupEnv(name)
		if !ok {
			if def == nil {
				return nil, fmt.Errorf("environment variable %s is not set", name)
			}
			v = *def
		}
		return []cty.Value{cty.StringVal(v)}, nil
	}))
	n.AddOutput("value", types.String)
	return n, nil
}

var envMap = types.MustFromCty(cty.Map(cty.String))

// NewEnvVars builds an env_vars node.
func NewEnvVars(cfg registry.NodeConfig) (*node.Node, error) {
	if err := registry.DecodeParams(cfg.Params, &struct{}{}); err != nil {
		return nil, err
	}
	n := node.New("env_vars", cfg.Name, node.Call("env_vars", func([]cty.Value) ([]cty.Value, error) {
		all := make(map[string]cty.Value)
		for _, e := range os.Environ() {
			if k, v, ok := strings.Cut(e, "="); ok && k != "" {
				all[k] = cty.StringVal(v)
			}
		}
		if len(all) == 0 {
			return []cty.Value{cty.MapValEmpty(cty.String)}, nil
		}
		return []cty.Value{cty.MapVal(all)}, nil
	}))
	n.AddOutput("all", envMap)
	return n, nil
}
