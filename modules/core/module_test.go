package core

import (
	"testing"

	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/testutil"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newRegistry() *registry.Registry {
	return registry.New().Load(&Module{})
}

func TestConst(t *testing.T) {
	r := newRegistry()

	t.Run("infers the type from the value", func(t *testing.T) {
		n, err := r.NewNode("const", registry.NodeConfig{
			Name:   "five",
			Params: map[string]cty.Value{"value": cty.NumberIntVal(5)},
		})
		require.NoError(t, err)
		assert.Same(t, types.Number, n.Output(0).Type)

		res, err := testutil.Run(t, n)
		require.NoError(t, err)
		assert.Equal(t, int64(5), testutil.Int(t, res[0]))
	})

	t.Run("converts to the declared type", func(t *testing.T) {
		n, err := r.NewNode("const", registry.NodeConfig{
			Name:   "s",
			Type:   cty.String,
			Params: map[string]cty.Value{"value": cty.NumberIntVal(7)},
		})
		require.NoError(t, err)

		res, err := testutil.Run(t, n)
		require.NoError(t, err)
		assert.Equal(t, "7", res[0].AsString())
	})

	t.Run("rejects a value of the wrong type", func(t *testing.T) {
		_, err := r.NewNode("const", registry.NodeConfig{
			Name:   "bad",
			Type:   cty.Number,
			Params: map[string]cty.Value{"value": cty.StringVal("x")},
		})
		assert.ErrorContains(t, err, `const "bad": value does not conform to number`)
	})

	t.Run("requires a value", func(t *testing.T) {
		_, err := r.NewNode("const", registry.NodeConfig{Name: "empty"})
		assert.ErrorContains(t, err, "missing required parameter")
	})

	t.Run("buffer constants are fresh on every call", func(t *testing.T) {
		n, err := r.NewNode("const", registry.NodeConfig{
			Name:   "greeting",
			Type:   types.BufferCty,
			Params: map[string]cty.Value{"value": cty.StringVal("hello")},
		})
		require.NoError(t, err)
		assert.Same(t, types.BufferType, n.Output(0).Type)

		first, err := testutil.Run(t, n)
		require.NoError(t, err)
		buf, err := types.BufferFrom(first[0])
		require.NoError(t, err)
		assert.Equal(t, "hello", string(buf.Bytes()))
		assert.Equal(t, 1, buf.Refs())
		types.ReleaseValue(first[0])
	})
}

func TestIdentity(t *testing.T) {
	r := newRegistry()

	n, err := r.NewNode("identity", registry.NodeConfig{
		Name:       "pass",
		InputTypes: map[string]cty.Type{"a": cty.String},
	})
	require.NoError(t, err)
	res, err := testutil.Run(t, n, cty.StringVal("through"))
	require.NoError(t, err)
	assert.Equal(t, "through", res[0].AsString())

	_, err = r.NewNode("identity", registry.NodeConfig{Name: "lost"})
	assert.ErrorContains(t, err, `cannot infer the type: declare type or link input "a"`)
}

func TestSelect(t *testing.T) {
	r := newRegistry()

	n, err := r.NewNode("select", registry.NodeConfig{Name: "pick", Type: cty.Number})
	require.NoError(t, err)
	assert.Same(t, types.Bool, n.Input(0).Type)

	res, err := testutil.Run(t, n, cty.True, cty.NumberIntVal(1), cty.NumberIntVal(2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), testutil.Int(t, res[0]))

	res, err = testutil.Run(t, n, cty.False, cty.NumberIntVal(1), cty.NumberIntVal(2))
	require.NoError(t, err)
	assert.Equal(t, int64(2), testutil.Int(t, res[0]))

	_, err = testutil.Run(t, n, cty.NullVal(cty.Bool), cty.NumberIntVal(1), cty.NumberIntVal(2))
	assert.EqualError(t, err, "test: argument 0 is null")
}

func TestSelect_Buffers(t *testing.T) {
	r := newRegistry()
	n, err := r.NewNode("select", registry.NodeConfig{Name: "pick", Type: types.BufferCty})
	require.NoError(t, err)

	a := types.NewBuffer([]byte("a"))
	b := types.NewBuffer([]byte("b"))
	res, err := testutil.Run(t, n, cty.True, types.BufferVal(a), types.BufferVal(b))
	require.NoError(t, err)

	chosen, err := types.BufferFrom(res[0])
	require.NoError(t, err)
	assert.Same(t, a, chosen)
	assert.Equal(t, 1, a.Refs(), "the caller owns the result")
	assert.Equal(t, 0, b.Refs(), "the other branch is released")
	types.ReleaseValue(res[0])
}
