package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/registry"
)

// Result is a built graph together with its declared functions.
type Result struct {
	Graph     *graph.Graph
	Functions []*Signature
}

// Signature is the resolved interface of one declared function.
type Signature struct {
	Name    string
	Inputs  []graph.Socket
	Outputs []graph.Socket
	Source  string
}

// Function returns the named signature.
func (r *Result) Function(name string) (*Signature, bool) {
	for _, s := range r.Functions {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Build constructs a graph from a model using the node kinds of r.
func Build(ctx context.Context, model *config.Model, r *registry.Registry) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid graph definition: %w", err)
	}

	g := graph.New()
	if err := createNodes(ctx, model, r, g); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node creation complete.", "node_count", g.Len())

	if err := linkNodes(ctx, model, g); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.", "link_count", g.Links().Len())

	sigs, err := resolveFunctions(model, g)
	if err != nil {
		return nil, err
	}

	if err := g.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	logger.Info("Graph built.", "nodes", g.Len(), "links", g.Links().Len(), "functions", len(sigs))
	return &Result{Graph: g, Functions: sigs}, nil
}
