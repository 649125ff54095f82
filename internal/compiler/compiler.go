package compiler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultName is the name of compiled functions unless WithName is given.
const DefaultName = "main"

type options struct {
	name     string
	observer graph.Observer
}

// Option configures Compile.
type Option func(*options)

// WithName sets the name of the generated function.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithObserver receives the forwarding decisions taken during generation.
func WithObserver(obs graph.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Compile lowers g into a function of be. The function takes one argument
// per socket in inputs and returns one result per socket in outputs, both in
// the given order.
func Compile(ctx context.Context, g *graph.Graph, inputs, outputs []graph.Socket, be backend.Backend, opts ...Option) (*Function, error) {
	o := options{name: DefaultName}
	for _, opt := range opts {
		opt(&o)
	}
	logger := ctxlog.FromContext(ctx).With("function", o.name)
	start := time.Now()

	ctx, span := tracer.Start(ctx, "compile",
		trace.WithAttributes(
			attribute.String("gridc.function", o.name),
			attribute.Int("gridc.nodes", g.Len()),
			attribute.Int("gridc.inputs", len(inputs)),
			attribute.Int("gridc.outputs", len(outputs)),
		),
	)
	defer span.End()

	fn, err := compile(ctx, g, inputs, outputs, be, o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordCompile(ctx, o.name, "error", 0, 0, time.Since(start).Seconds())
		logger.Debug("Compilation failed.", "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("gridc.required_sockets", fn.required),
		attribute.Int("gridc.builds", fn.stats.Builds),
		attribute.Int("gridc.copies", fn.stats.Copies),
		attribute.Int("gridc.frees", fn.stats.Frees),
	)
	span.SetStatus(codes.Ok, "")
	recordCompile(ctx, o.name, "ok", fn.stats.Copies, fn.stats.Frees, time.Since(start).Seconds())
	logger.Debug("Compiled graph.",
		"id", fn.id,
		"builds", fn.stats.Builds,
		"moves", fn.stats.Moves,
		"copies", fn.stats.Copies,
		"frees", fn.stats.Frees,
		"duration", time.Since(start),
	)
	return fn, nil
}

func compile(ctx context.Context, g *graph.Graph, inputs, outputs []graph.Socket, be backend.Backend, o options) (*Function, error) {
	_, span := tracer.Start(ctx, "compile.validate")
	err := g.Validate(inputs, outputs)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("invalid graph for %s: %w", o.name, err)
	}

	_, span = tracer.Start(ctx, "compile.required")
	required := g.RequiredSockets(inputs, outputs)
	nodes := g.RequiredNodes(required, inputs)
	span.SetAttributes(attribute.Int("gridc.required_sockets", len(required)), attribute.Int("gridc.required_nodes", len(nodes)))
	span.End()

	bctx := be.Context()
	if err := resolve(g, bctx, nodes, inputs, outputs); err != nil {
		return nil, err
	}

	paramTypes := socketTypes(g, inputs)
	resultTypes := socketTypes(g, outputs)
	params := make([]backend.Representation, len(inputs))
	for i, t := range paramTypes {
		params[i] = t.Repr(bctx)
	}

	_, span = tracer.Start(ctx, "compile.generate")
	fb := be.NewFunction(o.name, params)
	args := make([]backend.Value, len(inputs))
	for i := range args {
		args[i] = fb.Param(i)
	}
	gen := g.Generate(fb, inputs, args, outputs, o.observer)
	span.End()

	_, span = tracer.Start(ctx, "compile.finalize")
	bfn, err := be.Finalize(fb, gen.Values)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, fmt.Errorf("finalizing %s: %w", o.name, err)
	}
	span.End()

	return &Function{
		id:       uuid.NewString(),
		name:     o.name,
		fn:       bfn,
		inputs:   append([]graph.Socket(nil), inputs...),
		outputs:  append([]graph.Socket(nil), outputs...),
		params:   paramTypes,
		results:  resultTypes,
		stats:    gen.Stats,
		required: len(required),
	}, nil
}

// resolve creates the representation of every type the generation touches.
// Node builds rely on them being cached.
func resolve(g *graph.Graph, bctx backend.Context, nodes []graph.NodeID, inputs, outputs []graph.Socket) error {
	seen := make(map[*types.Type]bool)
	add := func(t *types.Type) error {
		if seen[t] {
			return nil
		}
		seen[t] = true
		if _, err := t.Representation(bctx); err != nil {
			return fmt.Errorf("resolving type %s: %w", t.Name(), err)
		}
		return nil
	}

	for _, id := range nodes {
		n := g.Node(id)
		for i := 0; i < n.NumInputs(); i++ {
			if err := add(n.Input(i).Type); err != nil {
				return err
			}
		}
		for i := 0; i < n.NumOutputs(); i++ {
			if err := add(n.Output(i).Type); err != nil {
				return err
			}
		}
	}
	for _, s := range append(append([]graph.Socket(nil), inputs...), outputs...) {
		if err := add(g.SocketType(s)); err != nil {
			return err
		}
	}
	return nil
}

func socketTypes(g *graph.Graph, sockets []graph.Socket) []*types.Type {
	out := make([]*types.Type, len(sockets))
	for i, s := range sockets {
		out[i] = g.SocketType(s)
	}
	return out
}
