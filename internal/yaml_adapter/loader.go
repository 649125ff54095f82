package yaml_adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/fsutil"
	"github.com/specialistvlad/gridc/internal/hcl_adapter"
	ctyyaml "github.com/zclconf/go-cty-yaml"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML loader.
func NewLoader() *Loader {
	return &Loader{}
}

type document struct {
	Nodes   []nodeDoc     `yaml:"nodes"`
	Compile []functionDoc `yaml:"compile"`
}

type nodeDoc struct {
	Kind   string            `yaml:"kind"`
	Name   string            `yaml:"name"`
	Type   string            `yaml:"type"`
	Inputs map[string]string `yaml:"inputs"`
	Params yaml.Node         `yaml:"params"`
}

type functionDoc struct {
	Name    string   `yaml:"name"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
}

// Load parses every .yaml and .yml file found at the given paths.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := fsutil.CollectFiles(paths, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .yaml files found in %v", paths)
	}

	model := &config.Model{}
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		m, err := l.LoadBytes(ctx, src, file)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}
	logger.Debug("YAML loading complete.", "files", len(files), "nodes", len(model.Nodes), "functions", len(model.Functions))
	return model, nil
}

// LoadBytes parses one YAML document held in memory.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}

	model := &config.Model{}
	for i := range doc.Nodes {
		decl, err := translateNode(ctx, &doc.Nodes[i], fmt.Sprintf("%s:nodes[%d]", filename, i))
		if err != nil {
			return nil, fmt.Errorf("%s: node %q: %w", filename, doc.Nodes[i].Name, err)
		}
		model.Nodes = append(model.Nodes, decl)
	}
	for _, f := range doc.Compile {
		decl, err := translateFunction(f, filename)
		if err != nil {
			return nil, fmt.Errorf("%s: compile %q: %w", filename, f.Name, err)
		}
		model.Functions = append(model.Functions, decl)
	}
	return model, nil
}

func translateNode(ctx context.Context, n *nodeDoc, source string) (*config.NodeDecl, error) {
	decl := &config.NodeDecl{
		Kind:   n.Kind,
		Name:   n.Name,
		Source: source,
	}
	if n.Type != "" {
		ty, err := hcl_adapter.ParseType(ctx, n.Type)
		if err != nil {
			return nil, err
		}
		decl.Type = ty
	}
	if len(n.Inputs) > 0 {
		decl.Inputs = make(map[string]config.SocketRef, len(n.Inputs))
		for input, ref := range n.Inputs {
			r, err := config.ParseSocketRef(ref)
			if err != nil {
				return nil, fmt.Errorf("input %q: %w", input, err)
			}
			decl.Inputs[input] = r
		}
	}
	params, err := decodeParams(&n.Params)
	if err != nil {
		return nil, err
	}
	decl.Params = params
	return decl, nil
}

// decodeParams converts the params mapping into cty values by re-encoding
// it and handing it to the cty YAML decoder.
func decodeParams(node *yaml.Node) (map[string]cty.Value, error) {
	params := make(map[string]cty.Value)
	if node.Kind == 0 {
		return params, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("params must be a mapping")
	}
	src, err := yaml.Marshal(node)
	if err != nil {
		return nil, err
	}
	ty, err := ctyyaml.ImpliedType(src)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	val, err := ctyyaml.Unmarshal(src, ty)
	if err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	if val.IsNull() {
		return params, nil
	}
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		params[k.AsString()] = v
	}
	return params, nil
}

func translateFunction(f functionDoc, filename string) (*config.FunctionDecl, error) {
	decl := &config.FunctionDecl{Name: f.Name, Source: filename}
	var err error
	if decl.Inputs, err = parseRefs(f.Inputs); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if decl.Outputs, err = parseRefs(f.Outputs); err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}
	return decl, nil
}

func parseRefs(refs []string) ([]config.SocketRef, error) {
	var out []config.SocketRef
	for _, s := range refs {
		r, err := config.ParseSocketRef(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
