package config

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a graph
// definition: its nodes and the functions to compile from them.
type Model struct {
	Nodes     []*NodeDecl     `validate:"dive"`
	Functions []*FunctionDecl `validate:"dive"`
}

// NodeDecl is the format-agnostic representation of one node.
type NodeDecl struct {
	Kind string `validate:"required"`
	Name string `validate:"required,identifier"`
	// Type is the declared type, or cty.NilType when none is given.
	Type cty.Type
	// Inputs maps input socket names to the output socket linked into them.
	Inputs map[string]SocketRef
	// Params holds every other attribute.
	Params map[string]cty.Value
	// Source locates the declaration, e.g. "graph.hcl:3,1-20".
	Source string
}

// FunctionDecl names a function to compile and its interface. Inputs refer
// to input sockets that become parameters, Outputs to the sockets returned.
type FunctionDecl struct {
	Name    string `validate:"required,identifier"`
	Inputs  []SocketRef
	Outputs []SocketRef `validate:"min=1"`
	Source  string
}

// SocketRef addresses a socket by node and socket name. The direction
// follows from where the reference is used.
type SocketRef struct {
	Node   string
	Socket string
}

func (r SocketRef) String() string {
	return r.Node + "." + r.Socket
}

// ParseSocketRef parses "node.socket".
func ParseSocketRef(s string) (SocketRef, error) {
	node, socket, ok := strings.Cut(s, ".")
	if !ok || node == "" || socket == "" || strings.Contains(socket, ".") {
		return SocketRef{}, fmt.Errorf("invalid socket reference %q: expected <node>.<socket>", s)
	}
	return SocketRef{Node: node, Socket: socket}, nil
}

// Node returns the declaration of the named node.
func (m *Model) Node(name string) (*NodeDecl, bool) {
	for _, n := range m.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Function returns the named function declaration.
func (m *Model) Function(name string) (*FunctionDecl, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Merge appends the declarations of other to m.
func (m *Model) Merge(other *Model) {
	m.Nodes = append(m.Nodes, other.Nodes...)
	m.Functions = append(m.Functions, other.Functions...)
}
