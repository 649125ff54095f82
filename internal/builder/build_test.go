package builder

import (
	"context"
	"testing"

	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/modules/arith"
	"github.com/specialistvlad/gridc/modules/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newRegistry() *registry.Registry {
	return registry.New().Load(&core.Module{}, &arith.Module{})
}

func ref(node, socket string) config.SocketRef {
	return config.SocketRef{Node: node, Socket: socket}
}

// chain declares its nodes downstream first to exercise the ordering.
func chain() *config.Model {
	return &config.Model{
		Nodes: []*config.NodeDecl{
			{Kind: "add", Name: "sum", Inputs: map[string]config.SocketRef{"a": ref("pass", "value"), "b": ref("five", "value")}},
			{Kind: "identity", Name: "pass", Inputs: map[string]config.SocketRef{"a": ref("five", "value")}},
			{Kind: "const", Name: "five", Params: map[string]cty.Value{"value": cty.NumberIntVal(5)}},
		},
		Functions: []*config.FunctionDecl{
			{Name: "main", Outputs: []config.SocketRef{ref("sum", "result")}},
			{Name: "partial", Inputs: []config.SocketRef{ref("sum", "a")}, Outputs: []config.SocketRef{ref("sum", "result"), ref("sum", "b")}},
		},
	}
}

func TestBuild(t *testing.T) {
	res, err := Build(context.Background(), chain(), newRegistry())
	require.NoError(t, err)

	g := res.Graph
	require.Equal(t, 3, g.Len())
	assert.Equal(t, "five", g.Node(0).Name, "upstream nodes are created first")
	assert.Equal(t, "pass", g.Node(1).Name)
	assert.Equal(t, "sum", g.Node(2).Name)
	assert.Equal(t, 3, g.Links().Len())

	five, _ := g.Find("five")
	sum, _ := g.Find("sum")
	origin, ok := g.Links().OriginOf(graph.In(sum, 1))
	require.True(t, ok)
	assert.Equal(t, graph.Out(five, 0), origin)

	main, ok := res.Function("main")
	require.True(t, ok)
	assert.Empty(t, main.Inputs)
	assert.Equal(t, []graph.Socket{graph.Out(sum, 0)}, main.Outputs)

	partial, ok := res.Function("partial")
	require.True(t, ok)
	assert.Equal(t, []graph.Socket{graph.In(sum, 0)}, partial.Inputs)
	assert.Equal(t, []graph.Socket{graph.Out(sum, 0), graph.In(sum, 1)}, partial.Outputs)

	_, ok = res.Function("missing")
	assert.False(t, ok)
}

func TestBuild_IdentityInfersItsType(t *testing.T) {
	m := &config.Model{Nodes: []*config.NodeDecl{
		{Kind: "const", Name: "s", Params: map[string]cty.Value{"value": cty.StringVal("x")}},
		{Kind: "identity", Name: "pass", Inputs: map[string]config.SocketRef{"a": ref("s", "value")}},
	}}
	res, err := Build(context.Background(), m, newRegistry())
	require.NoError(t, err)
	id, _ := res.Graph.Find("pass")
	assert.Equal(t, "string", res.Graph.Node(id).Output(0).Type.Name())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *config.Model)
		want   string
	}{
		{
			name:   "duplicate node",
			mutate: func(m *config.Model) { m.Nodes = append(m.Nodes, &config.NodeDecl{Kind: "const", Name: "five"}) },
			want:   `node "five" declared twice`,
		},
		{
			name:   "unknown kind",
			mutate: func(m *config.Model) { m.Nodes[2].Kind = "nope" },
			want:   `unknown node kind "nope"`,
		},
		{
			name:   "unknown upstream node",
			mutate: func(m *config.Model) { m.Nodes[1].Inputs["a"] = ref("ghost", "value") },
			want:   `node "pass": input "a" refers to unknown node "ghost"`,
		},
		{
			name:   "unknown output",
			mutate: func(m *config.Model) { m.Nodes[1].Inputs["a"] = ref("five", "nothing") },
			want:   `node "five" has no output "nothing"`,
		},
		{
			name:   "unknown input",
			mutate: func(m *config.Model) { m.Nodes[0].Inputs["c"] = ref("five", "value") },
			want:   `node "sum" (add) has no input "c"`,
		},
		{
			name: "type mismatch",
			mutate: func(m *config.Model) {
				m.Nodes[2].Params["value"] = cty.StringVal("five")
			},
			want: "type mismatch",
		},
		{
			name:   "unknown function socket",
			mutate: func(m *config.Model) { m.Functions[0].Outputs[0] = ref("sum", "total") },
			want:   `compile "main": outputs: node "sum" has no socket "total"`,
		},
		{
			name:   "unknown function node",
			mutate: func(m *config.Model) { m.Functions[1].Inputs[0] = ref("ghost", "a") },
			want:   `compile "partial": inputs: unknown node "ghost"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := chain()
			tt.mutate(m)
			_, err := Build(context.Background(), m, newRegistry())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestBuild_Cycle(t *testing.T) {
	m := &config.Model{Nodes: []*config.NodeDecl{
		{Kind: "add", Name: "x", Inputs: map[string]config.SocketRef{"a": ref("y", "result"), "b": ref("one", "value")}},
		{Kind: "add", Name: "y", Inputs: map[string]config.SocketRef{"a": ref("x", "result"), "b": ref("one", "value")}},
		{Kind: "const", Name: "one", Params: map[string]cty.Value{"value": cty.NumberIntVal(1)}},
	}}
	_, err := Build(context.Background(), m, newRegistry())
	ce, ok := graph.AsCycleError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, []string{"y", "x", "y"}, ce.Nodes)
}
