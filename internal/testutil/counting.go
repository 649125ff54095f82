package testutil

import (
	"sync"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// TypeCounter records the hooks invoked on a counting type.
type TypeCounter struct {
	mu      sync.Mutex
	creates int
	copies  int
	frees   int
}

// Creates returns the number of CreateRepresentation calls.
func (c *TypeCounter) Creates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creates
}

// Copies returns the number of BuildCopy calls.
func (c *TypeCounter) Copies() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copies
}

// Frees returns the number of BuildFree calls.
func (c *TypeCounter) Frees() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frees
}

type countingImpl struct {
	base types.Impl
	c    *TypeCounter
}

func (ci countingImpl) CreateRepresentation(t *types.Type, bctx backend.Context) (backend.Representation, error) {
	ci.c.mu.Lock()
	ci.c.creates++
	ci.c.mu.Unlock()
	return ci.base.CreateRepresentation(t, bctx)
}

func (ci countingImpl) BuildCopy(t *types.Type, b backend.Builder, v backend.Value) backend.Value {
	ci.c.mu.Lock()
	ci.c.copies++
	ci.c.mu.Unlock()
	return ci.base.BuildCopy(t, b, v)
}

func (ci countingImpl) BuildFree(t *types.Type, b backend.Builder, v backend.Value) {
	ci.c.mu.Lock()
	ci.c.frees++
	ci.c.mu.Unlock()
	ci.base.BuildFree(t, b, v)
}

func (ci countingImpl) Drop(t *types.Type, v cty.Value) {
	if d, ok := ci.base.(types.Dropper); ok {
		d.Drop(t, v)
	}
}

// NewCountingType creates a type that counts its hooks and delegates them to
// base.
func NewCountingType(name string, ty cty.Type, base types.Impl) (*types.Type, *TypeCounter) {
	c := &TypeCounter{}
	return types.New(name, ty, countingImpl{base: base, c: c}), c
}

// NewRefType creates a counting reference-counted type whose values are
// *types.Buffer capsules.
func NewRefType(name string) (*types.Type, *TypeCounter) {
	return NewCountingType(name, types.BufferCty, types.BufferType.Impl())
}

// BuildRecorder records which nodes were built, in order.
type BuildRecorder struct {
	mu    sync.Mutex
	order []string
}

// Wrap returns a Builder that records the node name before delegating to b.
func (r *BuildRecorder) Wrap(b node.Builder) node.Builder {
	return node.BuildFunc(func(n *node.Node, fb backend.Builder, in []backend.Value) []backend.Value {
		r.mu.Lock()
		r.order = append(r.order, n.Name)
		r.mu.Unlock()
		return b.Build(n, fb, in)
	})
}

// Count returns how many times the named node was built.
func (r *BuildRecorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.order {
		if n == name {
			count++
		}
	}
	return count
}

// Order returns the built node names in build order.
func (r *BuildRecorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}
