package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSocketRef(t *testing.T) {
	ref, err := ParseSocketRef("double.result")
	require.NoError(t, err)
	assert.Equal(t, SocketRef{Node: "double", Socket: "result"}, ref)
	assert.Equal(t, "double.result", ref.String())

	for _, bad := range []string{"", "double", ".result", "double.", "a.b.c"} {
		_, err := ParseSocketRef(bad)
		assert.ErrorContains(t, err, "expected <node>.<socket>", bad)
	}
}

func TestModel_Validate(t *testing.T) {
	valid := func() *Model {
		return &Model{
			Nodes: []*NodeDecl{
				{Kind: "const", Name: "five", Source: "a.hcl:1"},
				{Kind: "double", Name: "d", Inputs: map[string]SocketRef{"a": {"five", "value"}}, Source: "a.hcl:5"},
			},
			Functions: []*FunctionDecl{
				{Name: "main", Outputs: []SocketRef{{"d", "result"}}},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("duplicate node", func(t *testing.T) {
		m := valid()
		m.Nodes = append(m.Nodes, &NodeDecl{Kind: "const", Name: "five", Source: "b.hcl:1"})
		assert.EqualError(t, m.Validate(), `node "five" declared twice (a.hcl:1 and b.hcl:1)`)
	})

	t.Run("duplicate function", func(t *testing.T) {
		m := valid()
		m.Functions = append(m.Functions, &FunctionDecl{Name: "main", Outputs: []SocketRef{{"five", "value"}}})
		assert.EqualError(t, m.Validate(), `function "main" declared twice`)
	})

	t.Run("structural rules", func(t *testing.T) {
		m := valid()
		m.Nodes[0].Kind = ""
		m.Nodes[1].Name = "not a name"
		m.Functions[0].Outputs = nil
		err := m.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Model.Nodes[0].Kind: failed on the 'required' rule")
		assert.Contains(t, err.Error(), "Model.Nodes[1].Name: failed on the 'identifier' rule")
		assert.Contains(t, err.Error(), "Model.Functions[0].Outputs: failed on the 'min' rule")
	})
}

func TestModel_Lookup(t *testing.T) {
	m := &Model{}
	m.Merge(&Model{Nodes: []*NodeDecl{{Kind: "const", Name: "x"}}})
	m.Merge(&Model{Functions: []*FunctionDecl{{Name: "f"}}})

	n, ok := m.Node("x")
	require.True(t, ok)
	assert.Equal(t, "const", n.Kind)
	_, ok = m.Node("y")
	assert.False(t, ok)

	_, ok = m.Function("f")
	assert.True(t, ok)
}
