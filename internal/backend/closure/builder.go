package closure

import (
	"fmt"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/zclconf/go-cty/cty"
)

type instrKind int

const (
	instrConst instrKind = iota
	instrCall
	instrRelease
	instrComment
)

// instr is one entry of a function body, in emission order.
type instr struct {
	kind    instrKind
	name    string
	op      backend.Op
	release backend.ReleaseOp
	args    []int
	results []int
	value   cty.Value
	text    string
}

// FunctionBuilder implements backend.Builder for the closure engine.
type FunctionBuilder struct {
	name   string
	ctx    *Context
	params []backend.Value
	regs   []backend.Representation
	body   []instr

	// problems found while emitting; reported by Finalize.
	problems []string
	final    bool
}

func newFunctionBuilder(ctx *Context, name string, params []backend.Representation) *FunctionBuilder {
	fb := &FunctionBuilder{name: name, ctx: ctx}
	for _, repr := range params {
		fb.params = append(fb.params, fb.alloc(repr))
	}
	return fb
}

// Context implements backend.Builder.
func (fb *FunctionBuilder) Context() backend.Context { return fb.ctx }

// Name implements backend.Builder.
func (fb *FunctionBuilder) Name() string { return fb.name }

// Param implements backend.Builder.
func (fb *FunctionBuilder) Param(i int) backend.Value {
	if i < 0 || i >= len(fb.params) {
		fb.problemf("parameter index %d out of range (function has %d)", i, len(fb.params))
		return backend.Value{ID: -1}
	}
	return fb.params[i]
}

// Const implements backend.Builder.
func (fb *FunctionBuilder) Const(repr backend.Representation, v cty.Value) backend.Value {
	fb.checkRepr(repr)
	if v.IsKnown() && !v.IsNull() && repr != nil && !conforms(v, repr) {
		fb.problemf("constant of type %s does not conform to %%%s", v.Type().FriendlyName(), repr.TypeName())
	}
	out := fb.alloc(repr)
	fb.body = append(fb.body, instr{kind: instrConst, results: []int{out.ID}, value: v})
	return out
}

// Call implements backend.Builder.
func (fb *FunctionBuilder) Call(name string, op backend.Op, args []backend.Value, results []backend.Representation) []backend.Value {
	if op == nil {
		fb.problemf("call %s has no operation", name)
	}
	in := make([]int, len(args))
	for i, a := range args {
		fb.checkValue(name, a)
		in[i] = a.ID
	}
	out := make([]backend.Value, len(results))
	ids := make([]int, len(results))
	for i, repr := range results {
		fb.checkRepr(repr)
		out[i] = fb.alloc(repr)
		ids[i] = out[i].ID
	}
	fb.body = append(fb.body, instr{kind: instrCall, name: name, op: op, args: in, results: ids})
	return out
}

// Release implements backend.Builder.
func (fb *FunctionBuilder) Release(name string, op backend.ReleaseOp, v backend.Value) {
	if op == nil {
		fb.problemf("release %s has no operation", name)
	}
	fb.checkValue(name, v)
	fb.body = append(fb.body, instr{kind: instrRelease, name: name, release: op, args: []int{v.ID}})
}

// Comment implements backend.Builder.
func (fb *FunctionBuilder) Comment(format string, args ...any) {
	fb.body = append(fb.body, instr{kind: instrComment, text: fmt.Sprintf(format, args...)})
}

func (fb *FunctionBuilder) alloc(repr backend.Representation) backend.Value {
	v := backend.Value{ID: len(fb.regs), Repr: repr}
	fb.regs = append(fb.regs, repr)
	return v
}

func (fb *FunctionBuilder) checkRepr(repr backend.Representation) {
	if repr == nil {
		fb.problemf("missing representation")
		return
	}
	if !fb.ctx.owns(repr) {
		fb.problemf("representation %%%s belongs to a different context", repr.TypeName())
	}
}

func (fb *FunctionBuilder) checkValue(user string, v backend.Value) {
	if v.ID < 0 || v.ID >= len(fb.regs) || fb.regs[v.ID] != v.Repr {
		fb.problemf("%s uses foreign value %s", user, v)
	}
}

func (fb *FunctionBuilder) problemf(format string, args ...any) {
	fb.problems = append(fb.problems, fmt.Sprintf(format, args...))
}

// conforms reports whether a runtime value may live in a register of repr.
func conforms(v cty.Value, repr backend.Representation) bool {
	if v.Type() == cty.NilType {
		return false
	}
	want := repr.Cty()
	if want == cty.DynamicPseudoType {
		return true
	}
	return v.Type().Equals(want)
}
