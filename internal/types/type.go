package types

import (
	"fmt"
	"sync"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/singleflight"
)

// Impl is the behaviour behind a Type.
type Impl interface {
	// CreateRepresentation materializes t in a backend context.
	CreateRepresentation(t *Type, bctx backend.Context) (backend.Representation, error)
	// BuildCopy emits code that duplicates v and returns the duplicate.
	BuildCopy(t *Type, b backend.Builder, v backend.Value) backend.Value
	// BuildFree emits code that releases v.
	BuildFree(t *Type, b backend.Builder, v backend.Value)
}

// Type is a logical value kind. Types are compared by identity.
type Type struct {
	name string
	ty   cty.Type
	impl Impl

	mu    sync.RWMutex
	reprs map[string]backend.Representation
	group singleflight.Group
}

// New creates a type. The name is used in listings and must be unique among
// the types compiled against one context.
func New(name string, ty cty.Type, impl Impl) *Type {
	if impl == nil {
		panic(fmt.Sprintf("types: type %q has no implementation", name))
	}
	return &Type{
		name:  name,
		ty:    ty,
		impl:  impl,
		reprs: make(map[string]backend.Representation),
	}
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Cty returns the runtime type of the type's values.
func (t *Type) Cty() cty.Type { return t.ty }

// Impl returns the implementation behind the type.
func (t *Type) Impl() Impl { return t.impl }

func (t *Type) String() string { return t.name }

// Representation returns the representation of t in bctx, creating it on the
// first request for that context.
func (t *Type) Representation(bctx backend.Context) (backend.Representation, error) {
	id := bctx.ID()

	t.mu.RLock()
	repr, ok := t.reprs[id]
	t.mu.RUnlock()
	if ok {
		return repr, nil
	}

	v, err, _ := t.group.Do(id, func() (any, error) {
		t.mu.RLock()
		repr, ok := t.reprs[id]
		t.mu.RUnlock()
		if ok {
			return repr, nil
		}

		repr, err := t.impl.CreateRepresentation(t, bctx)
		if err != nil {
			return nil, fmt.Errorf("creating representation of %s: %w", t.name, err)
		}
		t.mu.Lock()
		t.reprs[id] = repr
		t.mu.Unlock()
		return repr, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(backend.Representation), nil
}

// Repr is Representation for callers that resolved the type beforehand. It
// panics if the representation cannot be created.
func (t *Type) Repr(bctx backend.Context) backend.Representation {
	repr, err := t.Representation(bctx)
	if err != nil {
		panic(err)
	}
	return repr
}

// Cached reports whether a representation for bctx already exists.
func (t *Type) Cached(bctx backend.Context) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.reprs[bctx.ID()]
	return ok
}

// BuildCopy emits a copy of v.
func (t *Type) BuildCopy(b backend.Builder, v backend.Value) backend.Value {
	return t.impl.BuildCopy(t, b, v)
}

// BuildFree emits the release of v.
func (t *Type) BuildFree(b backend.Builder, v backend.Value) {
	t.impl.BuildFree(t, b, v)
}

// Drop discards a value of t that is owned outside generated code. Empty
// values are ignored.
func (t *Type) Drop(v cty.Value) {
	if v.Type() == cty.NilType {
		return
	}
	if d, ok := t.impl.(Dropper); ok {
		d.Drop(t, v)
	}
}
