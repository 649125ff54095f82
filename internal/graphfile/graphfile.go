// Package graphfile picks the loader for a graph definition file by its
// format and compiles the functions a definition declares.
package graphfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/builder"
	"github.com/specialistvlad/gridc/internal/compiler"
	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/fsutil"
	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/hcl_adapter"
	"github.com/specialistvlad/gridc/internal/yaml_adapter"
)

// Loader loads graph definitions from files or from memory.
type Loader interface {
	config.Loader
	LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error)
}

// ForFormat returns the loader of a format name: hcl, yaml or yml.
func ForFormat(format string) (Loader, error) {
	switch strings.ToLower(format) {
	case "", "hcl":
		return hcl_adapter.NewLoader(), nil
	case "yaml", "yml":
		return yaml_adapter.NewLoader(), nil
	}
	return nil, fmt.Errorf("unsupported graph format %q: use hcl or yaml", format)
}

// ForPath returns the loader for a file or directory. Directories holding
// YAML files and no HCL files are YAML; everything else is HCL.
func ForPath(path string) Loader {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yaml_adapter.NewLoader()
	case ".hcl":
		return hcl_adapter.NewLoader()
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		hcl, _ := fsutil.FindFilesByExtension(path, ".hcl")
		yaml, _ := fsutil.FindFilesByExtension(path, ".yaml", ".yml")
		if len(hcl) == 0 && len(yaml) > 0 {
			return yaml_adapter.NewLoader()
		}
	}
	return hcl_adapter.NewLoader()
}

// Load loads every path with its own loader and merges the results.
func Load(ctx context.Context, paths ...string) (*config.Model, error) {
	model := &config.Model{}
	for _, p := range paths {
		m, err := ForPath(p).Load(ctx, p)
		if err != nil {
			return nil, err
		}
		model.Merge(m)
	}
	return model, nil
}

// Compile compiles the named functions of a built graph, or all of them
// when no name is given. On error, functions compiled so far are released.
func Compile(ctx context.Context, res *builder.Result, be backend.Backend, names ...string) ([]*compiler.Function, error) {
	sigs := res.Functions
	if len(names) > 0 {
		sigs = sigs[:0:0]
		for _, name := range names {
			sig, ok := res.Function(name)
			if !ok {
				return nil, fmt.Errorf("no function named %q", name)
			}
			sigs = append(sigs, sig)
		}
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("the graph declares no function to compile")
	}

	fns := make([]*compiler.Function, 0, len(sigs))
	for _, sig := range sigs {
		fn, err := compiler.Compile(ctx, res.Graph, sig.Inputs, sig.Outputs, be, compiler.WithName(sig.Name))
		if err != nil {
			for _, f := range fns {
				f.Release()
			}
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

// Highlight returns the nodes a function needs, for use with ToDot.
func Highlight(res *builder.Result, name string) ([]graph.NodeID, error) {
	sig, ok := res.Function(name)
	if !ok {
		return nil, fmt.Errorf("no function named %q", name)
	}
	g := res.Graph
	if err := g.Validate(sig.Inputs, sig.Outputs); err != nil {
		return nil, fmt.Errorf("invalid graph for %s: %w", name, err)
	}
	return g.RequiredNodes(g.RequiredSockets(sig.Inputs, sig.Outputs), sig.Inputs), nil
}
