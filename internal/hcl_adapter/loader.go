package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found at the given paths, which may be files
// or directories, and merges their blocks into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		m, err := l.translateFile(ctx, f.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		model.Merge(m)
	}

	logger.Debug("HCL loading complete.", "nodes", len(model.Nodes), "functions", len(model.Functions))
	return model, nil
}

// LoadBytes parses one HCL document held in memory. filename is only used
// in error messages.
func (l *Loader) LoadBytes(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}
	return l.translateFile(ctx, f.Body)
}

func (l *Loader) translateFile(ctx context.Context, body hcl.Body) (*config.Model, error) {
	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	model := &config.Model{}
	for _, block := range content.Blocks {
		switch block.Type {
		case "node":
			decl, err := translateNode(ctx, block)
			if err != nil {
				return nil, err
			}
			model.Nodes = append(model.Nodes, decl)
		case "compile":
			decl, err := translateFunction(ctx, block)
			if err != nil {
				return nil, err
			}
			model.Functions = append(model.Functions, decl)
		}
	}
	return model, nil
}
