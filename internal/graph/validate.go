package graph

import (
	"errors"
	"fmt"
)

// Validate checks that the graph can be compiled for the provided sockets
// inputs and the requested sockets outputs. It reports every socket that
// does not exist, every input provided twice, every required input without an
// origin and the first cycle among the required nodes.
func (g *Graph) Validate(inputs, outputs []Socket) error {
	var errs []error

	provided := make(SocketSet, len(inputs))
	for _, s := range inputs {
		if err := g.checkExists(s); err != nil {
			errs = append(errs, err)
			continue
		}
		if provided.Has(s) {
			errs = append(errs, fmt.Errorf("%s: %w", g.SocketName(s), ErrDuplicateInput))
			continue
		}
		provided.Add(s)
	}
	for _, s := range outputs {
		if err := g.checkExists(s); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	// Walk the required region without panicking so that every missing
	// origin is reported.
	seen := make(SocketSet)
	var nodes []NodeID
	nodeSeen := make(map[NodeID]bool)

	var walk func(s Socket)
	walk = func(s Socket) {
		if seen.Has(s) {
			return
		}
		seen.Add(s)
		if provided.Has(s) {
			return
		}
		if s.IsInput() {
			from, ok := g.links.OriginOf(s)
			if !ok {
				errs = append(errs, &MissingOriginError{Socket: s, Name: g.SocketName(s)})
				return
			}
			walk(from)
			return
		}
		if !nodeSeen[s.Node] {
			nodeSeen[s.Node] = true
			nodes = append(nodes, s.Node)
		}
		for i := 0; i < g.nodes[s.Node].NumInputs(); i++ {
			walk(In(s.Node, i))
		}
	}
	for _, s := range outputs {
		walk(s)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return g.detectCycles(nodes, provided)
}
