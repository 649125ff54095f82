package graph_test

import (
	"testing"

	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/testutil"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// Linear chain without fan-out: In(5) -> Double -> Out.
func TestGenerate_LinearChain(t *testing.T) {
	num, counter := testutil.NewCountingType("num", cty.Number, types.Trivial{})
	rec := &testutil.BuildRecorder{}
	g := graph.New()
	in := g.AddNode(testutil.ConstNode(rec, "in", num, cty.NumberIntVal(5)))
	d := g.AddNode(testutil.DoubleNode(rec, "double", num))
	out := g.AddNode(testutil.IdentityNode(rec, "out", num))
	require.NoError(t, g.AddLink(graph.Out(in, 0), graph.In(d, 0)))
	require.NoError(t, g.AddLink(graph.Out(d, 0), graph.In(out, 0)))

	outputs := []graph.Socket{graph.Out(out, 0)}
	require.NoError(t, g.Validate(nil, outputs))
	low := testutil.Lower(t, g, nil, outputs)

	assert.Equal(t, 1, rec.Count("double"))
	assert.Equal(t, []string{"in", "double", "out"}, rec.Order())
	assert.Equal(t, 0, counter.Copies())
	assert.Equal(t, 0, low.Count(graph.EventFree))
	assert.Equal(t, graph.Stats{Builds: 3, Moves: 2}, low.Generation.Stats)

	res, err := low.Function.Invoke()
	require.NoError(t, err)
	assert.Equal(t, int64(10), testutil.Int(t, res[0]))
}

// Two-way fan-out of a reference-counted value.
func TestGenerate_FanOutCopiesOnce(t *testing.T) {
	ref, counter := testutil.NewRefType("ref")
	rec := &testutil.BuildRecorder{}
	g := graph.New()
	p := g.AddNode(testutil.ProduceNode(rec, "produce", ref, types.Number, "abc"))
	a := g.AddNode(testutil.ConsumeNode(rec, "consume_a", ref, types.Number))
	b := g.AddNode(testutil.ConsumeNode(rec, "consume_b", ref, types.Number))
	require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(a, 0)))
	require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(b, 0)))

	outputs := []graph.Socket{graph.Out(a, 0), graph.Out(b, 0)}
	low := testutil.Lower(t, g, nil, outputs)

	assert.Equal(t, 1, rec.Count("produce"))
	assert.Equal(t, 1, counter.Copies())
	assert.Equal(t, 1, low.Count(graph.EventCopy))

	// The only generator free is the unused "size" sibling output.
	var frees []graph.Socket
	for _, ev := range low.Events {
		if ev.Kind == graph.EventFree {
			frees = append(frees, ev.Socket)
		}
	}
	assert.Equal(t, []graph.Socket{graph.Out(p, 1)}, frees)

	var moved, copied graph.Socket
	for _, ev := range low.Events {
		switch ev.Kind {
		case graph.EventMove:
			if ev.Socket == graph.Out(p, 0) {
				moved = ev.Target
			}
		case graph.EventCopy:
			copied = ev.Target
		}
	}
	assert.Equal(t, graph.In(a, 0), moved, "first linked consumer owns the value")
	assert.Equal(t, graph.In(b, 0), copied)

	res, err := low.Function.Invoke()
	require.NoError(t, err)
	assert.Equal(t, int64(3), testutil.Int(t, res[0]))
	assert.Equal(t, int64(3), testutil.Int(t, res[1]))
	assert.Contains(t, low.Function.Listing(), "call ref.retain(")
}

// Dead branches are pruned: Unused is never built and Produce moves its
// value to Used.
func TestGenerate_DeadBranchPruning(t *testing.T) {
	ref, counter := testutil.NewRefType("ref")
	rec := &testutil.BuildRecorder{}
	g := graph.New()
	p := g.AddNode(testutil.ProduceNode(rec, "produce", ref, types.Number, "hello"))
	used := g.AddNode(testutil.ConsumeNode(rec, "used", ref, types.Number))
	unused := g.AddNode(testutil.ConsumeNode(rec, "unused", ref, types.Number))
	require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(used, 0)))
	require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(unused, 0)))

	outputs := []graph.Socket{graph.Out(used, 0)}
	low := testutil.Lower(t, g, nil, outputs)

	assert.Equal(t, 0, rec.Count("unused"))
	assert.Equal(t, 1, rec.Count("used"))
	assert.Equal(t, 0, counter.Copies())
	assert.False(t, low.Generation.Required.Has(graph.In(unused, 0)))

	var moves []graph.Event
	for _, ev := range low.Events {
		if ev.Kind == graph.EventMove && ev.Socket == graph.Out(p, 0) {
			moves = append(moves, ev)
		}
	}
	require.Len(t, moves, 1)
	assert.Equal(t, graph.In(used, 0), moves[0].Target)

	res, err := low.Function.Invoke()
	require.NoError(t, err)
	assert.Equal(t, int64(5), testutil.Int(t, res[0]))
}

// An input inside R without an origin is a contract violation, never a
// silent default.
func TestGenerate_UnlinkedRequiredInputPanics(t *testing.T) {
	rec := &testutil.BuildRecorder{}
	g := graph.New()
	d := g.AddNode(testutil.DoubleNode(rec, "double", types.Number))
	outputs := []graph.Socket{graph.Out(d, 0)}

	var missing *graph.MissingOriginError
	require.ErrorAs(t, g.Validate(nil, outputs), &missing)

	assert.PanicsWithValue(t, graph.ContractViolation{Msg: "required input double.a has no origin"}, func() {
		testutil.Lower(t, g, nil, outputs)
	})
	assert.Equal(t, 0, rec.Count("double"))
}

func TestGenerate_FanOutCopyCount(t *testing.T) {
	for k := 0; k <= 4; k++ {
		ref, counter := testutil.NewRefType("ref")
		rec := &testutil.BuildRecorder{}
		g := graph.New()
		p := g.AddNode(testutil.ProduceNode(rec, "produce", ref, types.Number, "xy"))
		outputs := []graph.Socket{graph.Out(p, 1)}
		for i := 0; i < k; i++ {
			c := g.AddNode(testutil.ConsumeNode(rec, "consume_"+string(rune('a'+i)), ref, types.Number))
			require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(c, 0)))
			outputs = append(outputs, graph.Out(c, 0))
		}

		low := testutil.Lower(t, g, nil, outputs)

		wantCopies := max(k-1, 0)
		assert.Equal(t, wantCopies, counter.Copies(), "k=%d", k)
		freesOfBuffer := 0
		for _, ev := range low.Events {
			if ev.Kind == graph.EventFree && ev.Socket == graph.Out(p, 0) {
				freesOfBuffer++
			}
		}
		if k == 0 {
			assert.Equal(t, 1, freesOfBuffer, "k=0 frees the dead value")
		} else {
			assert.Equal(t, 0, freesOfBuffer, "k=%d", k)
		}
		assert.Equal(t, 1, rec.Count("produce"))

		res, err := low.Function.Invoke()
		require.NoError(t, err)
		for _, v := range res {
			assert.Equal(t, int64(2), testutil.Int(t, v))
		}
	}
}

func TestGenerate_OnlyRequiredSocketsAreTouched(t *testing.T) {
	ref, _ := testutil.NewRefType("ref")
	rec := &testutil.BuildRecorder{}
	g := graph.New()
	p := g.AddNode(testutil.ProduceNode(rec, "produce", ref, types.Number, "data"))
	a := g.AddNode(testutil.ConsumeNode(rec, "a", ref, types.Number))
	b := g.AddNode(testutil.ConsumeNode(rec, "b", ref, types.Number))
	d := g.AddNode(testutil.DoubleNode(rec, "d", types.Number))
	unrelated := g.AddNode(testutil.DoubleNode(rec, "unrelated", types.Number))
	require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(a, 0)))
	require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(b, 0)))
	require.NoError(t, g.AddLink(graph.Out(a, 0), graph.In(d, 0)))
	require.NoError(t, g.AddLink(graph.Out(b, 0), graph.In(unrelated, 0)))

	outputs := []graph.Socket{graph.Out(d, 0)}
	low := testutil.Lower(t, g, nil, outputs)
	r := low.Generation.Required
	assert.Equal(t, r, g.RequiredSockets(nil, outputs))

	built := map[graph.NodeID]bool{}
	var freedOutsideR []graph.Socket
	for _, ev := range low.Events {
		switch ev.Kind {
		case graph.EventBuild:
			assert.True(t, r.Has(graph.Out(ev.Node, 0)), "built node %d outside R", ev.Node)
			built[ev.Node] = true
		case graph.EventCopy, graph.EventMove:
			assert.True(t, r.Has(ev.Socket))
			assert.True(t, r.Has(ev.Target))
		case graph.EventFree:
			if r.Has(ev.Socket) {
				continue
			}
			// The only frees outside R are unused outputs of built nodes.
			assert.False(t, ev.Socket.IsInput(), "freed input %s outside R", ev.Socket)
			assert.True(t, built[ev.Node], "freed %s before its node was built", ev.Socket)
			freedOutsideR = append(freedOutsideR, ev.Socket)
		}
	}
	assert.Equal(t, []graph.Socket{graph.Out(p, 1)}, freedOutsideR)
	assert.True(t, r.Has(graph.Out(p, 0)), "the freed size sits next to a required buffer")
	assert.Equal(t, 0, rec.Count("b"))
	assert.Equal(t, 0, rec.Count("unrelated"))

	res, err := low.Function.Invoke()
	require.NoError(t, err)
	assert.Equal(t, int64(8), testutil.Int(t, res[0]))
}

func TestGenerate_Deterministic(t *testing.T) {
	build := func() string {
		ref, _ := testutil.NewRefType("ref")
		rec := &testutil.BuildRecorder{}
		g := graph.New()
		p := g.AddNode(testutil.ProduceNode(rec, "produce", ref, types.Number, "abcd"))
		a := g.AddNode(testutil.ConsumeNode(rec, "a", ref, types.Number))
		b := g.AddNode(testutil.ConsumeNode(rec, "b", ref, types.Number))
		require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(a, 0)))
		require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(b, 0)))
		low := testutil.Lower(t, g, nil, []graph.Socket{graph.Out(b, 0), graph.Out(a, 0)})
		return low.Function.Listing()
	}
	assert.Equal(t, build(), build())
}

func TestGenerate_ProvidedSockets(t *testing.T) {
	t.Run("provided input is used and the upstream is pruned", func(t *testing.T) {
		rec := &testutil.BuildRecorder{}
		g := graph.New()
		c := g.AddNode(testutil.ConstNode(rec, "c", types.Number, cty.NumberIntVal(100)))
		d := g.AddNode(testutil.DoubleNode(rec, "d", types.Number))
		require.NoError(t, g.AddLink(graph.Out(c, 0), graph.In(d, 0)))

		low := testutil.Lower(t, g, []graph.Socket{graph.In(d, 0)}, []graph.Socket{graph.Out(d, 0)})
		assert.Equal(t, []string{"d"}, rec.Order())

		res, err := low.Function.Invoke(cty.NumberIntVal(21))
		require.NoError(t, err)
		assert.Equal(t, int64(42), testutil.Int(t, res[0]))
	})

	t.Run("unused provided buffers are released", func(t *testing.T) {
		ref, counter := testutil.NewRefType("ref")
		rec := &testutil.BuildRecorder{}
		g := graph.New()
		a := g.AddNode(testutil.ConsumeNode(rec, "a", ref, types.Number))
		b := g.AddNode(testutil.ConsumeNode(rec, "b", ref, types.Number))

		low := testutil.Lower(t, g,
			[]graph.Socket{graph.In(a, 0), graph.In(b, 0)},
			[]graph.Socket{graph.Out(a, 0)})
		assert.Equal(t, 0, rec.Count("b"))
		assert.Equal(t, 1, low.Count(graph.EventFree))

		used := types.NewBuffer([]byte("12"))
		unused := types.NewBuffer([]byte("345"))
		res, err := low.Function.Invoke(types.BufferVal(used), types.BufferVal(unused))
		require.NoError(t, err)
		assert.Equal(t, int64(2), testutil.Int(t, res[0]))
		assert.Equal(t, 0, used.Refs())
		assert.Equal(t, 0, unused.Refs())
		assert.Equal(t, 0, counter.Copies())
	})

	t.Run("provided output is forwarded", func(t *testing.T) {
		rec := &testutil.BuildRecorder{}
		g := graph.New()
		c := g.AddNode(testutil.ConstNode(rec, "c", types.Number, cty.NumberIntVal(1)))
		d := g.AddNode(testutil.DoubleNode(rec, "d", types.Number))
		require.NoError(t, g.AddLink(graph.Out(c, 0), graph.In(d, 0)))

		low := testutil.Lower(t, g, []graph.Socket{graph.Out(c, 0)}, []graph.Socket{graph.Out(d, 0)})
		assert.Equal(t, []string{"d"}, rec.Order())
		res, err := low.Function.Invoke(cty.NumberIntVal(7))
		require.NoError(t, err)
		assert.Equal(t, int64(14), testutil.Int(t, res[0]))
	})
}

func TestGenerate_RequestedValuesKeepTheirOwner(t *testing.T) {
	ref, counter := testutil.NewRefType("ref")
	rec := &testutil.BuildRecorder{}
	g := graph.New()
	p := g.AddNode(testutil.ProduceNode(rec, "produce", ref, types.Number, "abc"))
	c := g.AddNode(testutil.ConsumeNode(rec, "c", ref, types.Number))
	require.NoError(t, g.AddLink(graph.Out(p, 0), graph.In(c, 0)))

	// The buffer is both a result and consumed by c, and requested twice.
	outputs := []graph.Socket{graph.Out(p, 0), graph.Out(c, 0), graph.Out(p, 0), graph.In(c, 0)}
	low := testutil.Lower(t, g, nil, outputs)
	assert.Equal(t, 1, rec.Count("produce"))
	// One copy for c, one for the repeated result and one reserved for the
	// requested input of c.
	assert.Equal(t, 3, counter.Copies())

	res, err := low.Function.Invoke()
	require.NoError(t, err)
	require.Len(t, res, 4)

	buf, err := types.BufferFrom(res[0])
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf.Bytes()))
	assert.Equal(t, int64(3), testutil.Int(t, res[1]))
	// Three results share the buffer, c released its own reference.
	assert.Equal(t, 3, buf.Refs())
	for _, i := range []int{0, 2, 3} {
		types.ReleaseValue(res[i])
	}
	assert.Equal(t, 0, buf.Refs())
}
