package graph

// DetectCycles checks the whole graph for dependency cycles.
func (g *Graph) DetectCycles() error {
	ids := make([]NodeID, len(g.nodes))
	for i := range ids {
		ids[i] = NodeID(i)
	}
	return g.detectCycles(ids, nil)
}

// detectCycles runs a depth-first search with three colours over the given
// nodes, following links upstream. Inputs in stop are treated as unlinked.
func (g *Graph) detectCycles(ids []NodeID, stop SocketSet) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[NodeID]int, len(ids))
	var stack []NodeID

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return g.cycleError(stack, id)
		}

		state[id] = visiting
		stack = append(stack, id)

		n := g.nodes[id]
		for i := 0; i < n.NumInputs(); i++ {
			in := In(id, i)
			if stop.Has(in) {
				continue
			}
			if from, ok := g.links.OriginOf(in); ok {
				if err := visit(from.Node); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id] = done
		return nil
	}

	for _, id := range ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// cycleError reports the cycle closing at id, in data-flow order.
func (g *Graph) cycleError(stack []NodeID, id NodeID) error {
	start := len(stack) - 1
	for start > 0 && stack[start] != id {
		start--
	}
	var names []string
	for i := len(stack) - 1; i >= start; i-- {
		names = append(names, g.nodes[stack[i]].Name)
	}
	names = append(names, g.nodes[stack[len(stack)-1]].Name)
	return &CycleError{Nodes: names}
}
