package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// createNodes instantiates every declaration, upstream nodes first.
func createNodes(ctx context.Context, model *config.Model, r *registry.Registry, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)

	order, err := declOrder(model)
	if err != nil {
		return err
	}

	for _, decl := range order {
		nodeLogger := logger.With("node", decl.Name, "kind", decl.Kind)

		inputTypes := make(map[string]cty.Type, len(decl.Inputs))
		for input, ref := range decl.Inputs {
			from, err := outputSocket(g, ref)
			if err != nil {
				return fmt.Errorf("%s: node %q: input %q: %w", decl.Source, decl.Name, input, err)
			}
			inputTypes[input] = g.SocketType(from).Cty()
		}

		n, err := r.NewNode(decl.Kind, registry.NodeConfig{
			Name:       decl.Name,
			Type:       decl.Type,
			InputTypes: inputTypes,
			Params:     decl.Params,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", decl.Source, err)
		}
		g.AddNode(n)
		nodeLogger.Debug("Created node.", "inputs", n.NumInputs(), "outputs", n.NumOutputs())
	}
	return nil
}

// declOrder sorts the declarations so that every node follows the nodes
// its inputs refer to. Declaration order is kept otherwise.
func declOrder(model *config.Model) ([]*config.NodeDecl, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	byName := make(map[string]*config.NodeDecl, len(model.Nodes))
	for _, d := range model.Nodes {
		byName[d.Name] = d
	}

	state := make(map[string]int, len(model.Nodes))
	var stack []string
	order := make([]*config.NodeDecl, 0, len(model.Nodes))

	var visit func(d *config.NodeDecl) error
	visit = func(d *config.NodeDecl) error {
		switch state[d.Name] {
		case done:
			return nil
		case visiting:
			return declCycle(stack, d.Name)
		}
		state[d.Name] = visiting
		stack = append(stack, d.Name)

		for _, input := range sortedInputs(d) {
			ref := d.Inputs[input]
			up, ok := byName[ref.Node]
			if !ok {
				return fmt.Errorf("%s: node %q: input %q refers to unknown node %q", d.Source, d.Name, input, ref.Node)
			}
			if err := visit(up); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[d.Name] = done
		order = append(order, d)
		return nil
	}

	for _, d := range model.Nodes {
		if err := visit(d); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// declCycle reports the cycle closing at name in data-flow order.
func declCycle(stack []string, name string) error {
	start := len(stack) - 1
	for start > 0 && stack[start] != name {
		start--
	}
	var names []string
	for i := len(stack) - 1; i >= start; i-- {
		names = append(names, stack[i])
	}
	names = append(names, stack[len(stack)-1])
	return &graph.CycleError{Nodes: names}
}

func sortedInputs(d *config.NodeDecl) []string {
	names := make([]string, 0, len(d.Inputs))
	for name := range d.Inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
