package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gridc/internal/config"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const chain = `
node "const" "five" {
  type  = number
  value = 5
}

node "double" "d" {
  inputs = { a = node.five.value }
}

compile "main" {
  inputs  = [node.d.a]
  outputs = [node.d.result, node.five.value]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "graph.hcl", chain)

	m, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, m.Nodes, 2)
	require.Len(t, m.Functions, 1)

	five := m.Nodes[0]
	assert.Equal(t, "const", five.Kind)
	assert.Equal(t, "five", five.Name)
	assert.True(t, five.Type.Equals(cty.Number))
	assert.True(t, five.Params["value"].Equals(cty.NumberIntVal(5)).True())
	assert.Contains(t, five.Source, "graph.hcl:2")

	d := m.Nodes[1]
	assert.Equal(t, cty.NilType, d.Type)
	assert.Empty(t, d.Params)
	assert.Equal(t, map[string]config.SocketRef{"a": {Node: "five", Socket: "value"}}, d.Inputs)

	fn := m.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, []config.SocketRef{{Node: "d", Socket: "a"}}, fn.Inputs)
	assert.Equal(t, []config.SocketRef{{Node: "d", Socket: "result"}, {Node: "five", Socket: "value"}}, fn.Outputs)
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.hcl", `node "const" "x" { value = "x" }`)
	writeFile(t, dir, "b.hcl", `compile "f" { outputs = [node.x.value] }`)
	writeFile(t, dir, "notes.txt", `not hcl`)

	m, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, m.Nodes, 1)
	assert.Len(t, m.Functions, 1)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `node "const" {`, "failed to parse HCL"},
		{"unknown block", `step "a" "b" {}`, `Unsupported block type`},
		{"bad reference", `node "double" "d" { inputs = { a = five.value } }`, "expected a socket reference like node.<name>.<socket>"},
		{"bad type", `node "const" "c" { type = any }`, "type any is not allowed"},
		{"variables in params", `node "const" "c" { value = node.x.value }`, `parameter "value" refers to node.x.value`},
		{"missing outputs", `compile "f" {}`, `Missing required argument`},
		{"duplicate input", `node "add" "s" { inputs = { a = node.x.v, a = node.y.v } }`, `input "a" linked twice`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadBytes(context.Background(), []byte(tt.src), "test.hcl")
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.hcl"))
	assert.ErrorContains(t, err, "error accessing path")

	_, err = NewLoader().Load(context.Background(), t.TempDir())
	assert.ErrorContains(t, err, "no .hcl files found")
}

func TestLoad_ParamFunctions(t *testing.T) {
	m, err := NewLoader().LoadBytes(context.Background(), []byte(`
node "const" "greeting" {
  value = upper(format("hello %s", "grid"))
}
`), "test.hcl")
	require.NoError(t, err)
	assert.Equal(t, "HELLO GRID", m.Nodes[0].Params["value"].AsString())
}

func TestParseType(t *testing.T) {
	tests := []struct {
		src  string
		want cty.Type
	}{
		{"number", cty.Number},
		{"string", cty.String},
		{"bool", cty.Bool},
		{"buffer", types.BufferCty},
		{"list(number)", cty.List(cty.Number)},
		{"set(string)", cty.Set(cty.String)},
		{"map(list(bool))", cty.Map(cty.List(cty.Bool))},
		{"object({ a = number, \"b\" = string })", cty.Object(map[string]cty.Type{"a": cty.Number, "b": cty.String})},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := ParseType(context.Background(), tt.src)
			require.NoError(t, err)
			assert.True(t, tt.want.Equals(got), "got %s", got.FriendlyName())
		})
	}

	for src, want := range map[string]string{
		"any":                  "type any is not allowed",
		"float":                `unknown type "float"`,
		"tuple(number)":        `unknown type constructor "tuple"`,
		"list(buffer)":         "buffers cannot be nested",
		"list(number, string)": "requires exactly one argument",
		"object(number)":       "must be an object literal",
		"5":                    "unsupported expression",
		"list(":                "invalid type",
	} {
		_, err := ParseType(context.Background(), src)
		assert.ErrorContains(t, err, want, src)
	}
}
