package graph

// RequiredSockets returns R, the sockets whose values must be produced to
// compute outputs given inputs. A provided socket is a boundary: it is
// required when reached, but nothing upstream of it is. Producing any output
// of a node requires every input of that node.
//
// It panics with a ContractViolation if a required input has no origin or if
// the required region contains a cycle.
func (g *Graph) RequiredSockets(inputs, outputs []Socket) SocketSet {
	provided := NewSocketSet(inputs...)
	required := make(SocketSet)
	onStack := make(SocketSet)

	var visit func(s Socket)
	visit = func(s Socket) {
		if required.Has(s) {
			if onStack.Has(s) {
				violatef("cycle through %s", g.SocketName(s))
			}
			return
		}
		required.Add(s)
		if provided.Has(s) {
			return
		}

		onStack.Add(s)
		if s.IsInput() {
			from, ok := g.links.OriginOf(s)
			if !ok {
				violatef("required input %s has no origin", g.SocketName(s))
			}
			visit(from)
		} else {
			for i := 0; i < g.nodes[s.Node].NumInputs(); i++ {
				visit(In(s.Node, i))
			}
		}
		delete(onStack, s)
	}

	for _, s := range outputs {
		visit(s)
	}
	return required
}

// RequiredNodes returns the nodes that must be built for R, in ID order.
// These are the owners of the output sockets in R that are not provided.
func (g *Graph) RequiredNodes(required SocketSet, inputs []Socket) []NodeID {
	provided := NewSocketSet(inputs...)
	marked := make([]bool, len(g.nodes))
	for s := range required {
		if !s.IsInput() && !provided.Has(s) {
			marked[s.Node] = true
		}
	}
	var ids []NodeID
	for i, ok := range marked {
		if ok {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}
