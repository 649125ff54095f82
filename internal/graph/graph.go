package graph

import (
	"fmt"

	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/types"
)

// Graph owns a set of nodes and the links between them. A graph is built
// with AddNode and AddLink and is read-only once compilation starts.
type Graph struct {
	nodes  []*node.Node
	byName map[string]NodeID
	links  LinkSet
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byName: make(map[string]NodeID),
		links:  newLinkSet(),
	}
}

// AddNode seals n and adds it to the graph. A node belongs to exactly one
// graph, and node names must be unique within it.
func (g *Graph) AddNode(n *node.Node) NodeID {
	if n.Sealed() {
		panic(fmt.Sprintf("graph: %s is already part of a graph", n))
	}
	if _, ok := g.byName[n.Name]; ok {
		panic(fmt.Sprintf("graph: duplicate node name %q", n.Name))
	}
	n.Seal()
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byName[n.Name] = id
	return id
}

// AddLink links the output socket from into the input socket to.
func (g *Graph) AddLink(from, to Socket) error {
	if err := g.checkSocket(from, Output); err != nil {
		return err
	}
	if err := g.checkSocket(to, Input); err != nil {
		return err
	}
	ft, tt := g.SocketType(from), g.SocketType(to)
	if ft != tt {
		return &TypeMismatchError{
			From: g.SocketName(from), FromType: ft.Name(),
			To: g.SocketName(to), ToType: tt.Name(),
		}
	}
	return g.links.add(Link{From: from, To: to})
}

func (g *Graph) checkSocket(s Socket, dir Direction) error {
	if s.Dir != dir {
		return &UnknownSocketError{Socket: s, Reason: fmt.Sprintf("expected an %s socket", dirName(dir))}
	}
	return g.checkExists(s)
}

func (g *Graph) checkExists(s Socket) error {
	if s.Node < 0 || int(s.Node) >= len(g.nodes) {
		return &UnknownSocketError{Socket: s, Reason: "no such node"}
	}
	n := g.nodes[s.Node]
	count := n.NumInputs()
	if s.Dir == Output {
		count = n.NumOutputs()
	}
	if s.Index < 0 || s.Index >= count {
		return &UnknownSocketError{Socket: s, Reason: fmt.Sprintf("%s has %d %s sockets", n, count, dirName(s.Dir))}
	}
	return nil
}

func dirName(d Direction) string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) *node.Node { return g.nodes[id] }

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*node.Node {
	return append([]*node.Node(nil), g.nodes...)
}

// Find looks up a node by name.
func (g *Graph) Find(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}

// Links returns the link set.
func (g *Graph) Links() *LinkSet { return &g.links }

// SocketDecl returns the declaration behind a socket.
func (g *Graph) SocketDecl(s Socket) node.SocketDecl {
	n := g.nodes[s.Node]
	if s.Dir == Input {
		return n.Input(s.Index)
	}
	return n.Output(s.Index)
}

// SocketType returns the type of a socket.
func (g *Graph) SocketType(s Socket) *types.Type { return g.SocketDecl(s).Type }

// SocketName returns "node.socket" for s.
func (g *Graph) SocketName(s Socket) string {
	return g.nodes[s.Node].Name + "." + g.SocketDecl(s).Name
}
