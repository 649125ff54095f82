package closure

import (
	"fmt"

	"github.com/specialistvlad/gridc/internal/backend"
)

// Engine is the closure code-emission engine. Each Engine is bound to one
// Context; create several engines to compile against independent contexts.
type Engine struct {
	ctx *Context
}

var _ backend.Backend = (*Engine)(nil)

// New creates an engine with a fresh context.
func New() *Engine {
	return &Engine{ctx: NewContext()}
}

// NewWithContext creates an engine sharing an existing context, so that
// several engines reuse the same type table.
func NewWithContext(ctx *Context) *Engine {
	return &Engine{ctx: ctx}
}

// Context implements backend.Backend.
func (e *Engine) Context() backend.Context { return e.ctx }

// NewFunction implements backend.Backend.
func (e *Engine) NewFunction(name string, params []backend.Representation) backend.Builder {
	fb := newFunctionBuilder(e.ctx, name, params)
	for _, repr := range params {
		fb.checkRepr(repr)
	}
	return fb
}

// Finalize implements backend.Backend. It verifies the body and lowers it
// into closures. A body that fails verification is rejected with a
// *backend.RejectError.
func (e *Engine) Finalize(b backend.Builder, results []backend.Value) (backend.Function, error) {
	fb, ok := b.(*FunctionBuilder)
	if !ok {
		return nil, &backend.RejectError{Function: b.Name(), Reasons: []string{fmt.Sprintf("builder %T was not created by this engine", b)}}
	}
	if fb.ctx != e.ctx {
		return nil, &backend.RejectError{Function: fb.name, Reasons: []string{"builder belongs to a different context"}}
	}
	if fb.final {
		return nil, &backend.RejectError{Function: fb.name, Reasons: []string{"function already finalized"}}
	}

	for _, r := range results {
		fb.checkValue("return", r)
	}
	problems := append([]string(nil), fb.problems...)
	problems = append(problems, verify(fb, results)...)
	if len(problems) > 0 {
		return nil, &backend.RejectError{Function: fb.name, Reasons: problems}
	}

	fb.final = true
	return lower(fb, results), nil
}

// verify walks the body in order and checks ownership discipline: a released
// register can neither be used nor released again, and no result may be a
// released register.
func verify(fb *FunctionBuilder, results []backend.Value) []string {
	var problems []string
	released := make(map[int]string)

	for _, in := range fb.body {
		switch in.kind {
		case instrCall:
			for _, a := range in.args {
				if by, ok := released[a]; ok {
					problems = append(problems, fmt.Sprintf("call %s uses %%%d after %s released it", in.name, a, by))
				}
			}
		case instrRelease:
			a := in.args[0]
			if by, ok := released[a]; ok {
				problems = append(problems, fmt.Sprintf("%s releases %%%d which %s already released", in.name, a, by))
				continue
			}
			released[a] = in.name
		}
	}

	for _, r := range results {
		if by, ok := released[r.ID]; ok {
			problems = append(problems, fmt.Sprintf("result %s was released by %s", r, by))
		}
	}
	return problems
}
