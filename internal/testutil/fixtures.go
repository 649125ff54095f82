package testutil

import (
	"fmt"
	"testing"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/backend/closure"
	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// ConstNode has no inputs and one output "value" holding v.
func ConstNode(rec *BuildRecorder, name string, t *types.Type, v cty.Value) *node.Node {
	n := node.New("const", name, rec.Wrap(node.BuildFunc(func(n *node.Node, b backend.Builder, _ []backend.Value) []backend.Value {
		return []backend.Value{b.Const(n.Output(0).Type.Repr(b.Context()), v)}
	})))
	n.AddOutput("value", t)
	return n
}

// DoubleNode multiplies its input "a" by two into "result".
func DoubleNode(rec *BuildRecorder, name string, t *types.Type) *node.Node {
	n := node.New("double", name, rec.Wrap(node.Call("double", func(args []cty.Value) ([]cty.Value, error) {
		return []cty.Value{args[0].Multiply(cty.NumberIntVal(2))}, nil
	})))
	n.AddInput("a", t)
	n.AddOutput("result", t)
	return n
}

// IdentityNode moves its input "a" to its output "value".
func IdentityNode(rec *BuildRecorder, name string, t *types.Type) *node.Node {
	n := node.New("identity", name, rec.Wrap(node.BuildFunc(func(_ *node.Node, _ backend.Builder, in []backend.Value) []backend.Value {
		return []backend.Value{in[0]}
	})))
	n.AddInput("a", t)
	n.AddOutput("value", t)
	return n
}

// ProduceNode creates a fresh buffer holding data on every invocation. It has
// one output "buffer" of type t, and a second output "size" of type num.
func ProduceNode(rec *BuildRecorder, name string, t, num *types.Type, data string) *node.Node {
	n := node.New("produce", name, rec.Wrap(node.Call("produce", func([]cty.Value) ([]cty.Value, error) {
		return []cty.Value{
			types.BufferVal(types.NewBuffer([]byte(data))),
			cty.NumberIntVal(int64(len(data))),
		}, nil
	})))
	n.AddOutput("buffer", t)
	n.AddOutput("size", num)
	return n
}

// ConsumeNode reads the length of its buffer input "buffer" into "length"
// and releases the buffer.
func ConsumeNode(rec *BuildRecorder, name string, t, num *types.Type) *node.Node {
	n := node.New("consume", name, rec.Wrap(node.Call("consume", func(args []cty.Value) ([]cty.Value, error) {
		buf, err := types.BufferFrom(args[0])
		if err != nil {
			return nil, err
		}
		return []cty.Value{cty.NumberIntVal(int64(len(buf.Bytes())))}, nil
	})))
	n.AddInput("buffer", t)
	n.AddOutput("length", num)
	return n
}

// Lowered is a graph lowered through the closure engine.
type Lowered struct {
	Function   backend.Function
	Generation *graph.Generation
	Events     []graph.Event
}

// Lower resolves every socket type of g, generates the function for the
// given interface and finalizes it.
func Lower(t *testing.T, g *graph.Graph, inputs, outputs []graph.Socket) *Lowered {
	t.Helper()

	e := closure.New()
	for _, n := range g.Nodes() {
		for i := 0; i < n.NumInputs(); i++ {
			_, err := n.Input(i).Type.Representation(e.Context())
			require.NoError(t, err)
		}
		for i := 0; i < n.NumOutputs(); i++ {
			_, err := n.Output(i).Type.Representation(e.Context())
			require.NoError(t, err)
		}
	}

	params := make([]backend.Representation, len(inputs))
	for i, s := range inputs {
		params[i] = g.SocketType(s).Repr(e.Context())
	}
	fb := e.NewFunction("test", params)
	values := make([]backend.Value, len(inputs))
	for i := range values {
		values[i] = fb.Param(i)
	}

	low := &Lowered{}
	low.Generation = g.Generate(fb, inputs, values, outputs, graph.ObserverFunc(func(ev graph.Event) {
		low.Events = append(low.Events, ev)
	}))

	fn, err := e.Finalize(fb, low.Generation.Values)
	require.NoError(t, err, "finalize")
	low.Function = fn
	t.Cleanup(fn.Release)
	return low
}

// Count returns the number of events of the given kind.
func (l *Lowered) Count(kind graph.EventKind) int {
	count := 0
	for _, ev := range l.Events {
		if ev.Kind == kind {
			count++
		}
	}
	return count
}

// Int converts a number value to int64, failing the test otherwise.
func Int(t *testing.T, v cty.Value) int64 {
	t.Helper()
	require.True(t, v.Type().Equals(cty.Number), "expected number, got %s", v.Type().FriendlyName())
	i, acc := v.AsBigFloat().Int64()
	require.Equal(t, 0, int(acc), fmt.Sprintf("%s is not an integer", v.AsBigFloat().String()))
	return i
}

// Run lowers a graph holding only n, with every input of n as a parameter
// and every output as a result, and invokes it with args.
func Run(t *testing.T, n *node.Node, args ...cty.Value) ([]cty.Value, error) {
	t.Helper()
	g := graph.New()
	id := g.AddNode(n)
	inputs := make([]graph.Socket, n.NumInputs())
	for i := range inputs {
		inputs[i] = graph.In(id, i)
	}
	outputs := make([]graph.Socket, n.NumOutputs())
	for i := range outputs {
		outputs[i] = graph.Out(id, i)
	}
	return Lower(t, g, inputs, outputs).Function.Invoke(args...)
}
