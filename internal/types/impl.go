package types

import (
	"fmt"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/zclconf/go-cty/cty"
)

// Trivial is the Impl of plain values: a copy is the value itself and a free
// is a no-op.
type Trivial struct{}

func (Trivial) CreateRepresentation(t *Type, bctx backend.Context) (backend.Representation, error) {
	return bctx.DeclareType(t.Name(), t.Cty())
}

func (Trivial) BuildCopy(_ *Type, _ backend.Builder, v backend.Value) backend.Value { return v }

func (Trivial) BuildFree(*Type, backend.Builder, backend.Value) {}

// RefCounted is the Impl of values that hold a counted reference to shared
// data. Copies emit a call to Retain, frees emit Release.
type RefCounted struct {
	Retain  func(v cty.Value) (cty.Value, error)
	Release func(v cty.Value)
}

func (RefCounted) CreateRepresentation(t *Type, bctx backend.Context) (backend.Representation, error) {
	return bctx.DeclareType(t.Name(), t.Cty())
}

func (rc RefCounted) BuildCopy(t *Type, b backend.Builder, v backend.Value) backend.Value {
	retain := rc.Retain
	out := b.Call(t.Name()+".retain", func(args []cty.Value) ([]cty.Value, error) {
		dup, err := retain(args[0])
		if err != nil {
			return nil, err
		}
		return []cty.Value{dup}, nil
	}, []backend.Value{v}, []backend.Representation{v.Repr})
	return out[0]
}

func (rc RefCounted) BuildFree(t *Type, b backend.Builder, v backend.Value) {
	b.Release(t.Name()+".release", rc.Release, v)
}

// Drop releases v outside generated code.
func (rc RefCounted) Drop(_ *Type, v cty.Value) {
	if rc.Release != nil {
		rc.Release(v)
	}
}

// Dropper is implemented by impls whose values must be released when they
// are discarded outside generated code, such as the partial results of a
// failed call.
type Dropper interface {
	Drop(t *Type, v cty.Value)
}

// IsTrivial reports whether values of t need no copy or free code.
func IsTrivial(t *Type) bool {
	_, ok := t.impl.(Trivial)
	return ok
}

func mustBeTrivial(ty cty.Type) error {
	var bad error
	walkType(ty, func(inner cty.Type) {
		if bad == nil && inner.IsCapsuleType() {
			bad = fmt.Errorf("%s cannot be nested inside %s", inner.FriendlyName(), ty.FriendlyName())
		}
	})
	return bad
}

func walkType(ty cty.Type, fn func(cty.Type)) {
	fn(ty)
	switch {
	case ty.IsListType(), ty.IsSetType(), ty.IsMapType():
		walkType(ty.ElementType(), fn)
	case ty.IsObjectType():
		for _, at := range ty.AttributeTypes() {
			walkType(at, fn)
		}
	case ty.IsTupleType():
		for _, et := range ty.TupleElementTypes() {
			walkType(et, fn)
		}
	}
}
