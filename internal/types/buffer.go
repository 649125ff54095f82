package types

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"
)

// Buffer is a reference-counted byte buffer. A new buffer holds one
// reference; the bytes are dropped when the last reference is released.
type Buffer struct {
	refs atomic.Int32
	data []byte
}

// NewBuffer creates a buffer with a single reference to a copy of data.
func NewBuffer(data []byte) *Buffer {
	b := &Buffer{data: append([]byte(nil), data...)}
	b.refs.Store(1)
	return b
}

// Retain adds a reference and returns the buffer.
func (b *Buffer) Retain() *Buffer {
	if b.refs.Add(1) <= 1 {
		panic("types: retain of a released buffer")
	}
	return b
}

// Release drops a reference. It reports whether the buffer was freed.
func (b *Buffer) Release() bool {
	n := b.refs.Add(-1)
	if n < 0 {
		panic("types: buffer released more times than retained")
	}
	if n == 0 {
		b.data = nil
		return true
	}
	return false
}

// Refs returns the current reference count.
func (b *Buffer) Refs() int { return int(b.refs.Load()) }

// Bytes returns the buffer contents. The slice must not be modified.
func (b *Buffer) Bytes() []byte { return b.data }

// BufferCty is the runtime type of buffer values.
var BufferCty = cty.Capsule("buffer", reflect.TypeOf((*Buffer)(nil)).Elem())

// BufferVal wraps b in a cty value.
func BufferVal(b *Buffer) cty.Value {
	return cty.CapsuleVal(BufferCty, b)
}

// BufferFrom unwraps a buffer value.
func BufferFrom(v cty.Value) (*Buffer, error) {
	if !v.Type().Equals(BufferCty) {
		return nil, fmt.Errorf("expected buffer, got %s", v.Type().FriendlyName())
	}
	if v.IsNull() || !v.IsKnown() {
		return nil, fmt.Errorf("buffer value is null or unknown")
	}
	return v.EncapsulatedValue().(*Buffer), nil
}

func retainBuffer(v cty.Value) (cty.Value, error) {
	b, err := BufferFrom(v)
	if err != nil {
		return cty.NilVal, err
	}
	return BufferVal(b.Retain()), nil
}

func releaseBuffer(v cty.Value) {
	if b, err := BufferFrom(v); err == nil {
		b.Release()
	}
}

// ReleaseValue drops the buffer reference held by v, if any. Callers of a
// compiled function own its results and release them with ReleaseValue.
func ReleaseValue(v cty.Value) {
	if v.Type().Equals(BufferCty) {
		releaseBuffer(v)
	}
}
