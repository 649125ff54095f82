// Package backend defines the narrow contract between graph lowering and a
// code-emission engine.
//
// The compiler never talks to a concrete engine. It asks a Backend for a
// target Context (against which types materialize their representations),
// opens a function-building scope with NewFunction, lets nodes and types emit
// operations into that scope through the Builder interface, and finally hands
// the assembled body to Finalize, which turns it into an invocable Function.
//
// Values flowing through a Builder are opaque handles. Ownership of the
// runtime data behind a handle is a property of the generated program, not of
// the handle: the graph lowering decides statically who owns what and emits
// explicit copy and release operations accordingly.
package backend

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Representation is the context-specific form of a logical type.
type Representation interface {
	// TypeName is the name the representation carries in listings.
	TypeName() string
	// Cty is the runtime type of values carried by this representation.
	Cty() cty.Type
}

// Context is a target context. Types are materialized once per context.
type Context interface {
	// ID uniquely identifies the context.
	ID() string
	// DeclareType registers a named type in this context and returns its
	// representation. Declaring the same name twice with a different runtime
	// type is an error.
	DeclareType(name string, ty cty.Type) (Representation, error)
}

// Value is a handle to a value produced inside a function being built.
type Value struct {
	ID   int
	Repr Representation
}

// IsValid reports whether the handle refers to an emitted value.
func (v Value) IsValid() bool {
	return v.Repr != nil
}

func (v Value) String() string {
	return fmt.Sprintf("%%%d", v.ID)
}

// Op is the runtime behaviour of a single emitted call.
type Op func(args []cty.Value) ([]cty.Value, error)

// ReleaseOp is the runtime behaviour of a single emitted release.
type ReleaseOp func(v cty.Value)

// Builder is a function-building scope. It is accepted by node builds and by
// the copy/free hooks of types.
type Builder interface {
	// Context returns the target context of the function.
	Context() Context
	// Name returns the name of the function being built.
	Name() string
	// Param returns the handle of the i-th function parameter.
	Param(i int) Value
	// Const emits a constant.
	Const(repr Representation, v cty.Value) Value
	// Call emits a call of op with the given arguments, producing one value
	// per entry of results.
	Call(name string, op Op, args []Value, results []Representation) []Value
	// Release emits the release of v. The value must not be used afterwards.
	Release(name string, op ReleaseOp, v Value)
	// Comment attaches a comment to the listing.
	Comment(format string, args ...any)
}

// Function is a finalized, invocable function.
type Function interface {
	// Invoke runs the function. It takes one argument per parameter and
	// returns one value per result.
	Invoke(args ...cty.Value) ([]cty.Value, error)
	// Listing returns the generated intermediate listing.
	Listing() string
	// Release frees the engine resources held by the function.
	Release()
}

// Backend is a code-emission engine bound to a single target context.
type Backend interface {
	Context() Context
	NewFunction(name string, params []Representation) Builder
	Finalize(b Builder, results []Value) (Function, error)
}

// RejectError is returned by Finalize when the engine refuses a function body.
type RejectError struct {
	Function string
	Reasons  []string
}

func (e *RejectError) Error() string {
	switch len(e.Reasons) {
	case 0:
		return fmt.Sprintf("backend rejected function %q", e.Function)
	case 1:
		return fmt.Sprintf("backend rejected function %q: %s", e.Function, e.Reasons[0])
	}
	return fmt.Sprintf("backend rejected function %q: %d problems, first: %s", e.Function, len(e.Reasons), e.Reasons[0])
}
