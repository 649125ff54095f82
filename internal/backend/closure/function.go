package closure

import (
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/zclconf/go-cty/cty"
)

// ErrReleased is returned when a released function is invoked.
var ErrReleased = errors.New("function has been released")

// step is one lowered instruction. Release steps also run when the function
// unwinds after a failure.
type step struct {
	run     func(regs []cty.Value) error
	release bool
}

// Function is a finalized closure program.
type Function struct {
	name    string
	params  []backend.Value
	results []backend.Value
	nregs   int
	listing string

	mu       sync.RWMutex
	steps    []step
	released bool
}

var _ backend.Function = (*Function)(nil)

func lower(fb *FunctionBuilder, results []backend.Value) *Function {
	f := &Function{
		name:    fb.name,
		params:  fb.params,
		results: append([]backend.Value(nil), results...),
		nregs:   len(fb.regs),
		listing: render(fb, results),
	}
	for _, in := range fb.body {
		if s, ok := lowerInstr(in, fb.regs); ok {
			f.steps = append(f.steps, s)
		}
	}
	return f
}

func lowerInstr(in instr, regs []backend.Representation) (step, bool) {
	switch in.kind {
	case instrConst:
		dst, v := in.results[0], in.value
		return step{run: func(r []cty.Value) error {
			r[dst] = v
			return nil
		}}, true
	case instrCall:
		name, op, args, dsts := in.name, in.op, in.args, in.results
		want := make([]backend.Representation, len(dsts))
		for i, d := range dsts {
			want[i] = regs[d]
		}
		return step{run: func(r []cty.Value) error {
			in := make([]cty.Value, len(args))
			for i, a := range args {
				in[i] = r[a]
			}
			out, err := call(op, in)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if len(out) != len(dsts) {
				return fmt.Errorf("%s: produced %d values, expected %d", name, len(out), len(dsts))
			}
			// Conforming results are stored even when a sibling is rejected,
			// so unwinding releases them.
			var bad error
			for i, d := range dsts {
				if out[i].IsKnown() && !out[i].IsNull() && !conforms(out[i], want[i]) {
					if bad == nil {
						bad = fmt.Errorf("%s: result %d has type %s, expected %s",
							name, i, out[i].Type().FriendlyName(), want[i].Cty().FriendlyName())
					}
					continue
				}
				r[d] = out[i]
			}
			return bad
		}}, true
	case instrRelease:
		rel, src := in.release, in.args[0]
		return step{release: true, run: func(r []cty.Value) error {
			if r[src].Type() == cty.NilType {
				return nil
			}
			rel(r[src])
			r[src] = cty.NilVal
			return nil
		}}, true
	default:
		return step{}, false
	}
}

// call runs op, turning a panic into an error.
func call(op backend.Op, args []cty.Value) (out []cty.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(args)
}

// Invoke implements backend.Function. Once the argument count matches, the
// function owns the arguments. When it fails, the releases still pending in
// the body run and the results that were already produced are returned with
// the error; the caller owns those.
func (f *Function) Invoke(args ...cty.Value) ([]cty.Value, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.released {
		return nil, ErrReleased
	}
	if len(args) != len(f.params) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", f.name, len(f.params), len(args))
	}

	regs := make([]cty.Value, f.nregs)
	var bad error
	for i, p := range f.params {
		if err := checkArg(args[i], p.Repr); err != nil {
			if bad == nil {
				bad = fmt.Errorf("%s: argument %d %w", f.name, i, err)
			}
			continue
		}
		regs[p.ID] = args[i]
	}
	if bad != nil {
		return f.unwind(regs, 0), bad
	}

	for i, s := range f.steps {
		if err := s.run(regs); err != nil {
			return f.unwind(regs, i+1), fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return f.collect(regs), nil
}

// unwind runs the release steps from index from on and collects the results
// that hold a value.
func (f *Function) unwind(regs []cty.Value, from int) []cty.Value {
	for _, s := range f.steps[from:] {
		if s.release {
			_ = s.run(regs)
		}
	}
	return f.collect(regs)
}

func (f *Function) collect(regs []cty.Value) []cty.Value {
	out := make([]cty.Value, len(f.results))
	for i, r := range f.results {
		out[i] = regs[r.ID]
	}
	return out
}

func checkArg(v cty.Value, repr backend.Representation) error {
	if !conforms(v, repr) {
		ty := "nothing"
		if v.Type() != cty.NilType {
			ty = v.Type().FriendlyName()
		}
		return fmt.Errorf("has type %s, expected %s", ty, repr.Cty().FriendlyName())
	}
	if v.IsNull() {
		return errors.New("is null")
	}
	if !v.IsWhollyKnown() {
		return errors.New("is not known")
	}
	return nil
}

// Listing implements backend.Function.
func (f *Function) Listing() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listing
}

// Release implements backend.Function.
func (f *Function) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = nil
	f.released = true
}
