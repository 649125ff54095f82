package closure

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/zclconf/go-cty/cty"
)

// Repr is the representation of a type inside one Context.
type Repr struct {
	ctxID string
	index int
	name  string
	ty    cty.Type
}

// TypeName implements backend.Representation.
func (r *Repr) TypeName() string { return r.name }

// Cty implements backend.Representation.
func (r *Repr) Cty() cty.Type { return r.ty }

// Index is the position of the type in its context's type table.
func (r *Repr) Index() int { return r.index }

// Context is the closure engine's target context. It owns the type table
// shared by every function built against it.
type Context struct {
	id string

	mu     sync.Mutex
	types  []*Repr
	byName map[string]*Repr
}

// NewContext creates an empty context with a fresh identity.
func NewContext() *Context {
	return &Context{
		id:     uuid.NewString(),
		byName: make(map[string]*Repr),
	}
}

// ID implements backend.Context.
func (c *Context) ID() string { return c.id }

// DeclareType implements backend.Context.
func (c *Context) DeclareType(name string, ty cty.Type) (backend.Representation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byName[name]; ok {
		if !existing.ty.Equals(ty) {
			return nil, fmt.Errorf("type %q already declared as %s, cannot redeclare as %s",
				name, existing.ty.FriendlyName(), ty.FriendlyName())
		}
		return existing, nil
	}

	r := &Repr{ctxID: c.id, index: len(c.types), name: name, ty: ty}
	c.types = append(c.types, r)
	c.byName[name] = r
	return r, nil
}

// Declarations returns the number of types declared in the context.
func (c *Context) Declarations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.types)
}

// owns reports whether the representation was declared by this context.
func (c *Context) owns(r backend.Representation) bool {
	cr, ok := r.(*Repr)
	return ok && cr.ctxID == c.id
}

// typeTable renders the declared types for listings.
func (c *Context) typeTable() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.types))
	for _, r := range c.types {
		names = append(names, r.name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		r := c.byName[name]
		fmt.Fprintf(&sb, "type %%%s = %s\n", r.name, r.ty.FriendlyName())
	}
	return sb.String()
}
