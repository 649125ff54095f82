package compiler

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// Invoker is the callable form of a compiled function.
type Invoker func(args ...cty.Value) ([]cty.Value, error)

// Function is a compiled graph. It owns the backend function and releases it
// together with itself.
type Function struct {
	id       string
	name     string
	fn       backend.Function
	inputs   []graph.Socket
	outputs  []graph.Socket
	params   []*types.Type
	results  []*types.Type
	stats    graph.Stats
	required int

	releaseOnce sync.Once
}

// ID uniquely identifies the compilation.
func (f *Function) ID() string { return f.id }

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// Pointer returns the invocable function.
func (f *Function) Pointer() Invoker { return f.fn.Invoke }

// Params returns the argument types, in order.
func (f *Function) Params() []*types.Type { return f.params }

// Results returns the result types, in order.
func (f *Function) Results() []*types.Type { return f.results }

// Inputs returns the provided sockets the arguments bind to.
func (f *Function) Inputs() []graph.Socket { return f.inputs }

// Outputs returns the requested sockets the results come from.
func (f *Function) Outputs() []graph.Socket { return f.outputs }

// Stats returns the forwarding statistics of the generation.
func (f *Function) Stats() graph.Stats { return f.stats }

// PrintCode returns the generated listing.
func (f *Function) PrintCode() string { return f.fn.Listing() }

// Call invokes the function. Once the argument count matches it consumes
// the arguments, also when it fails. The caller owns the results; release
// buffer results with types.ReleaseValue.
func (f *Function) Call(ctx context.Context, args ...cty.Value) ([]cty.Value, error) {
	if len(args) != len(f.params) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", f.name, len(f.params), len(args))
	}
	out, err := f.fn.Invoke(args...)
	if err != nil {
		for i, v := range out {
			f.results[i].Drop(v)
		}
		ctxlog.FromContext(ctx).Debug("Function call failed.", "function", f.name, "id", f.id, "error", err)
		return nil, err
	}
	return out, nil
}

// Release frees the backend function. It is safe to call more than once.
func (f *Function) Release() {
	f.releaseOnce.Do(f.fn.Release)
}
