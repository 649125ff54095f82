package node

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/types"
)

// ErrSealed is the panic value raised when a sealed node is modified.
var ErrSealed = errors.New("node is sealed")

// SocketDecl describes one input or output socket.
type SocketDecl struct {
	Name string
	Type *types.Type
}

// Builder lowers a node into a function body. It returns exactly one value
// per declared output, in declaration order.
type Builder interface {
	Build(n *Node, b backend.Builder, in []backend.Value) []backend.Value
}

// BuildFunc adapts a function to the Builder interface.
type BuildFunc func(n *Node, b backend.Builder, in []backend.Value) []backend.Value

// Build implements Builder.
func (f BuildFunc) Build(n *Node, b backend.Builder, in []backend.Value) []backend.Value {
	return f(n, b, in)
}

// Node is a typed operation.
type Node struct {
	// Kind is the registered kind of the node, e.g. "add".
	Kind string
	// Name is the instance name, unique within a graph definition.
	Name string

	inputs  []SocketDecl
	outputs []SocketDecl
	builder Builder
	sealed  bool
}

// New creates an unsealed node without sockets.
func New(kind, name string, builder Builder) *Node {
	if builder == nil {
		panic(fmt.Sprintf("node %s %q has no builder", kind, name))
	}
	return &Node{Kind: kind, Name: name, builder: builder}
}

// AddInput declares the next input socket and returns its index.
func (n *Node) AddInput(name string, t *types.Type) int {
	n.inputs = n.declare(n.inputs, "input", name, t)
	return len(n.inputs) - 1
}

// AddOutput declares the next output socket and returns its index.
func (n *Node) AddOutput(name string, t *types.Type) int {
	n.outputs = n.declare(n.outputs, "output", name, t)
	return len(n.outputs) - 1
}

func (n *Node) declare(list []SocketDecl, dir, name string, t *types.Type) []SocketDecl {
	if n.sealed {
		panic(fmt.Errorf("adding %s %q to %s: %w", dir, name, n, ErrSealed))
	}
	if t == nil {
		panic(fmt.Sprintf("%s %q of %s has no type", dir, name, n))
	}
	for _, d := range list {
		if d.Name == name {
			panic(fmt.Sprintf("%s %q of %s declared twice", dir, name, n))
		}
	}
	return append(list, SocketDecl{Name: name, Type: t})
}

// Seal freezes the socket lists.
func (n *Node) Seal() { n.sealed = true }

// Sealed reports whether the node has been sealed.
func (n *Node) Sealed() bool { return n.sealed }

// NumInputs returns the number of input sockets.
func (n *Node) NumInputs() int { return len(n.inputs) }

// NumOutputs returns the number of output sockets.
func (n *Node) NumOutputs() int { return len(n.outputs) }

// Input returns the i-th input socket declaration.
func (n *Node) Input(i int) SocketDecl { return n.inputs[i] }

// Output returns the i-th output socket declaration.
func (n *Node) Output(i int) SocketDecl { return n.outputs[i] }

// InputIndex looks up an input socket by name.
func (n *Node) InputIndex(name string) (int, bool) { return indexOf(n.inputs, name) }

// OutputIndex looks up an output socket by name.
func (n *Node) OutputIndex(name string) (int, bool) { return indexOf(n.outputs, name) }

func indexOf(list []SocketDecl, name string) (int, bool) {
	for i, d := range list {
		if d.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Build lowers the node. in holds one value per input socket.
func (n *Node) Build(b backend.Builder, in []backend.Value) []backend.Value {
	return n.builder.Build(n, b, in)
}

// OutputReprs returns the representations of the output types in bctx. The
// representations must have been resolved before the build starts.
func (n *Node) OutputReprs(bctx backend.Context) []backend.Representation {
	reprs := make([]backend.Representation, len(n.outputs))
	for i, d := range n.outputs {
		reprs[i] = d.Type.Repr(bctx)
	}
	return reprs
}

// ReleaseInputs frees every input value except the ones at the kept indices.
func (n *Node) ReleaseInputs(b backend.Builder, in []backend.Value, keep ...int) {
next:
	for i, v := range in {
		for _, k := range keep {
			if k == i {
				continue next
			}
		}
		n.inputs[i].Type.BuildFree(b, v)
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("%s %q", n.Kind, n.Name)
}

// Call returns a Builder that emits one call of op over all inputs and then
// releases the inputs. op receives the input values in declaration order and
// returns one value per output.
func Call(name string, op backend.Op) Builder {
	return BuildFunc(func(n *Node, b backend.Builder, in []backend.Value) []backend.Value {
		out := b.Call(name, op, in, n.OutputReprs(b.Context()))
		n.ReleaseInputs(b, in)
		return out
	})
}
