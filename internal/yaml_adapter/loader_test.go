package yaml_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gridc/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const chain = `
nodes:
  - kind: const
    name: five
    type: number
    params:
      value: 5
  - kind: double
    name: d
    inputs:
      a: five.value
  - kind: concat
    name: c
    params:
      separator: ", "
      tags: [x, y]
compile:
  - name: main
    inputs: [d.a]
    outputs: [d.result, five.value]
`

func TestLoadBytes(t *testing.T) {
	m, err := NewLoader().LoadBytes(context.Background(), []byte(chain), "graph.yaml")
	require.NoError(t, err)
	require.Len(t, m.Nodes, 3)

	five := m.Nodes[0]
	assert.Equal(t, "const", five.Kind)
	assert.True(t, five.Type.Equals(cty.Number))
	assert.True(t, five.Params["value"].Equals(cty.NumberIntVal(5)).True())
	assert.Equal(t, "graph.yaml:nodes[0]", five.Source)

	d := m.Nodes[1]
	assert.Equal(t, cty.NilType, d.Type)
	assert.Empty(t, d.Params)
	assert.Equal(t, map[string]config.SocketRef{"a": {Node: "five", Socket: "value"}}, d.Inputs)

	c := m.Nodes[2]
	assert.Equal(t, ", ", c.Params["separator"].AsString())
	assert.Equal(t, 2, c.Params["tags"].LengthInt())

	require.Len(t, m.Functions, 1)
	fn := m.Functions[0]
	assert.Equal(t, []config.SocketRef{{Node: "d", Socket: "a"}}, fn.Inputs)
	assert.Equal(t, []config.SocketRef{{Node: "d", Socket: "result"}, {Node: "five", Socket: "value"}}, fn.Outputs)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("nodes:\n  - {kind: const, name: x, params: {value: 1}}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("compile:\n  - {name: f, outputs: [x.value]}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.hcl"), []byte(`node "const" "y" {}`), 0o644))

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, m.Nodes, 1)
	assert.Len(t, m.Functions, 1)

	_, err = NewLoader().Load(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no .yaml files found")
}

func TestLoadBytes_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "nodes: [", "failed to parse YAML"},
		{"unknown field", "nodes:\n  - {kind: const, name: x, value: 1}\n", "field value not found"},
		{"bad type", "nodes:\n  - {kind: const, name: x, type: 'list('}\n", "invalid type"},
		{"bad reference", "nodes:\n  - {kind: double, name: d, inputs: {a: five}}\n", `input "a": invalid socket reference "five"`},
		{"params not a mapping", "nodes:\n  - {kind: const, name: x, params: [1]}\n", "params must be a mapping"},
		{"bad output", "compile:\n  - {name: f, outputs: [x]}\n", `compile "f": outputs: invalid socket reference`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadBytes(context.Background(), []byte(tt.src), "test.yaml")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
