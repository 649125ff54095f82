package builder

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/graph"
)

// linkNodes turns every input reference into a link.
func linkNodes(ctx context.Context, model *config.Model, g *graph.Graph) error {
	logger := ctxlog.FromContext(ctx)

	for _, decl := range model.Nodes {
		id, _ := g.Find(decl.Name)
		n := g.Node(id)
		for _, input := range sortedInputs(decl) {
			ref := decl.Inputs[input]
			idx, ok := n.InputIndex(input)
			if !ok {
				return fmt.Errorf("%s: node %q (%s) has no input %q", decl.Source, decl.Name, decl.Kind, input)
			}
			from, err := outputSocket(g, ref)
			if err != nil {
				return fmt.Errorf("%s: node %q: input %q: %w", decl.Source, decl.Name, input, err)
			}
			if err := g.AddLink(from, graph.In(id, idx)); err != nil {
				return fmt.Errorf("%s: %w", decl.Source, err)
			}
			logger.Debug("Linked sockets.", "from", ref.String(), "to", decl.Name+"."+input)
		}
	}
	return nil
}

// resolveFunctions resolves the sockets of every compile declaration.
func resolveFunctions(model *config.Model, g *graph.Graph) ([]*Signature, error) {
	sigs := make([]*Signature, 0, len(model.Functions))
	for _, f := range model.Functions {
		sig := &Signature{Name: f.Name, Source: f.Source}
		for _, ref := range f.Inputs {
			s, err := findSocket(g, ref, graph.Input)
			if err != nil {
				return nil, fmt.Errorf("compile %q: inputs: %w", f.Name, err)
			}
			sig.Inputs = append(sig.Inputs, s)
		}
		for _, ref := range f.Outputs {
			s, err := findSocket(g, ref, graph.Output)
			if err != nil {
				return nil, fmt.Errorf("compile %q: outputs: %w", f.Name, err)
			}
			sig.Outputs = append(sig.Outputs, s)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

func outputSocket(g *graph.Graph, ref config.SocketRef) (graph.Socket, error) {
	id, ok := g.Find(ref.Node)
	if !ok {
		return graph.Socket{}, fmt.Errorf("unknown node %q", ref.Node)
	}
	idx, ok := g.Node(id).OutputIndex(ref.Socket)
	if !ok {
		return graph.Socket{}, fmt.Errorf("node %q has no output %q", ref.Node, ref.Socket)
	}
	return graph.Out(id, idx), nil
}

// findSocket resolves ref, trying the preferred direction first.
func findSocket(g *graph.Graph, ref config.SocketRef, prefer graph.Direction) (graph.Socket, error) {
	id, ok := g.Find(ref.Node)
	if !ok {
		return graph.Socket{}, fmt.Errorf("unknown node %q", ref.Node)
	}
	n := g.Node(id)
	in, hasIn := n.InputIndex(ref.Socket)
	out, hasOut := n.OutputIndex(ref.Socket)
	switch {
	case hasIn && (prefer == graph.Input || !hasOut):
		return graph.In(id, in), nil
	case hasOut:
		return graph.Out(id, out), nil
	}
	return graph.Socket{}, fmt.Errorf("node %q has no socket %q", ref.Node, ref.Socket)
}
