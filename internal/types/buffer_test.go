package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestBuffer_RefCounting(t *testing.T) {
	src := []byte("hello")
	b := NewBuffer(src)
	src[0] = 'j'

	assert.Equal(t, "hello", string(b.Bytes()))
	assert.Equal(t, 1, b.Refs())

	b.Retain()
	assert.Equal(t, 2, b.Refs())
	assert.False(t, b.Release())
	assert.True(t, b.Release())

	assert.Panics(t, func() { b.Release() })
}

func TestBuffer_RetainAfterFreePanics(t *testing.T) {
	b := NewBuffer(nil)
	require.True(t, b.Release())
	assert.Panics(t, func() { b.Retain() })
}

func TestBufferFrom(t *testing.T) {
	b := NewBuffer([]byte("x"))
	got, err := BufferFrom(BufferVal(b))
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = BufferFrom(cty.StringVal("x"))
	assert.ErrorContains(t, err, "expected buffer, got string")

	_, err = BufferFrom(cty.NullVal(BufferCty))
	assert.Error(t, err)
}

func TestReleaseValue_IgnoresPlainValues(t *testing.T) {
	assert.NotPanics(t, func() { ReleaseValue(cty.NumberIntVal(1)) })
}
