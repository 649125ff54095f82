package graph

import (
	"github.com/specialistvlad/gridc/internal/backend"
)

// EventKind classifies generation events.
type EventKind int

const (
	// EventBuild: a node was built.
	EventBuild EventKind = iota
	// EventMove: a value was handed to its only consumer.
	EventMove
	// EventCopy: a value was duplicated for a consumer or a result.
	EventCopy
	// EventFree: a value without consumers was released.
	EventFree
)

func (k EventKind) String() string {
	switch k {
	case EventBuild:
		return "build"
	case EventMove:
		return "move"
	case EventCopy:
		return "copy"
	case EventFree:
		return "free"
	}
	return "unknown"
}

// Event describes one decision taken during generation. Socket is the socket
// whose value was moved, copied or freed; Target is the receiving socket.
type Event struct {
	Kind   EventKind
	Node   NodeID
	Socket Socket
	Target Socket
}

// Observer receives generation events in emission order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

// Stats counts the work done by one generation.
type Stats struct {
	Builds int `json:"builds"`
	Moves  int `json:"moves"`
	Copies int `json:"copies"`
	Frees  int `json:"frees"`
}

// Generation is the result of Generate.
type Generation struct {
	// Values holds one value per requested socket.
	Values []backend.Value
	// Required is R.
	Required SocketSet
	Stats    Stats
}

type generator struct {
	g   *Graph
	b   backend.Builder
	obs Observer

	provided  SocketSet
	required  SocketSet
	wanted    SocketSet
	memo      map[Socket]backend.Value
	forwarded SocketSet
	consumed  SocketSet
	built     map[NodeID]bool
	building  map[NodeID]bool
	// reserved holds the result copies of requested input sockets whose
	// value was consumed by a build.
	reserved map[Socket]backend.Value

	stats Stats
}

// Generate emits into b the code computing outputs from inputs. params holds
// the values of the provided sockets, in the order of inputs; Generate takes
// ownership of them. The caller owns the returned values.
//
// Every required node is built exactly once. Values are forwarded as
// described in the package documentation, and provided values nobody
// consumes are released.
func (g *Graph) Generate(b backend.Builder, inputs []Socket, params []backend.Value, outputs []Socket, obs Observer) *Generation {
	if len(inputs) != len(params) {
		violatef("%d provided sockets but %d parameter values", len(inputs), len(params))
	}

	gen := &generator{
		g:         g,
		b:         b,
		obs:       obs,
		provided:  make(SocketSet, len(inputs)),
		required:  g.RequiredSockets(inputs, outputs),
		wanted:    NewSocketSet(outputs...),
		memo:      make(map[Socket]backend.Value),
		forwarded: make(SocketSet),
		consumed:  make(SocketSet),
		built:     make(map[NodeID]bool),
		building:  make(map[NodeID]bool),
		reserved:  make(map[Socket]backend.Value),
	}
	for i, s := range inputs {
		if gen.provided.Has(s) {
			violatef("%s provided twice", g.SocketName(s))
		}
		gen.provided.Add(s)
		gen.memo[s] = params[i]
	}

	for _, s := range outputs {
		gen.generate(s)
	}
	gen.sweep(inputs)

	values := make([]backend.Value, len(outputs))
	claimed := make(map[Socket]backend.Value, len(outputs))
	for i, s := range outputs {
		if v, ok := claimed[s]; ok {
			values[i] = gen.copy(s, s, v)
			continue
		}
		v, ok := gen.reserved[s]
		if !ok {
			v = gen.memo[s]
		}
		claimed[s] = v
		values[i] = v
	}

	return &Generation{Values: values, Required: gen.required, Stats: gen.stats}
}

func (gen *generator) generate(s Socket) backend.Value {
	if v, ok := gen.memo[s]; ok {
		return v
	}
	if !gen.required.Has(s) {
		violatef("%s is not required", gen.g.SocketName(s))
	}

	if s.IsInput() {
		from, ok := gen.g.links.OriginOf(s)
		if !ok {
			violatef("required input %s has no origin", gen.g.SocketName(s))
		}
		gen.generate(from)
		if !gen.forwarded.Has(from) {
			gen.forward(from)
		}
		v, ok := gen.memo[s]
		if !ok {
			violatef("forwarding %s did not reach %s", gen.g.SocketName(from), gen.g.SocketName(s))
		}
		return v
	}

	gen.build(s.Node)
	return gen.memo[s]
}

// build lowers node id and forwards all of its outputs.
func (gen *generator) build(id NodeID) {
	n := gen.g.nodes[id]
	if gen.built[id] {
		violatef("%s built twice", n)
	}
	if gen.building[id] {
		violatef("cycle through %s", n)
	}
	gen.building[id] = true

	in := make([]backend.Value, n.NumInputs())
	for i := range in {
		in[i] = gen.generate(In(id, i))
	}
	for i := range in {
		s := In(id, i)
		if gen.wanted.Has(s) {
			gen.reserved[s] = gen.copy(s, s, in[i])
		}
		gen.consumed.Add(s)
	}

	gen.b.Comment("%s", n)
	out := n.Build(gen.b, in)
	if len(out) != n.NumOutputs() {
		violatef("%s returned %d values for %d outputs", n, len(out), n.NumOutputs())
	}
	delete(gen.building, id)
	gen.built[id] = true
	gen.stats.Builds++
	gen.emit(Event{Kind: EventBuild, Node: id})

	for i, v := range out {
		s := Out(id, i)
		if !v.IsValid() {
			violatef("%s produced no value for %s", n, gen.g.SocketName(s))
		}
		if gen.provided.Has(s) {
			gen.free(s, v)
			continue
		}
		gen.memo[s] = v
		gen.forward(s)
	}
}

// forward hands the value of the output socket s to its required consumers.
func (gen *generator) forward(s Socket) {
	gen.forwarded.Add(s)
	v := gen.memo[s]

	var targets []Socket
	for _, t := range gen.g.links.TargetsOf(s) {
		if !gen.required.Has(t) {
			continue
		}
		if _, ok := gen.memo[t]; ok {
			continue
		}
		targets = append(targets, t)
	}

	if gen.wanted.Has(s) {
		for _, t := range targets {
			gen.memo[t] = gen.copy(s, t, v)
		}
		return
	}

	switch len(targets) {
	case 0:
		gen.free(s, v)
	default:
		gen.memo[targets[0]] = v
		gen.stats.Moves++
		gen.emit(Event{Kind: EventMove, Node: s.Node, Socket: s, Target: targets[0]})
		for _, t := range targets[1:] {
			gen.memo[t] = gen.copy(s, t, v)
		}
	}
}

// sweep releases provided values that nothing consumed.
func (gen *generator) sweep(inputs []Socket) {
	for _, s := range inputs {
		if s.IsInput() {
			if !gen.consumed.Has(s) && !gen.wanted.Has(s) {
				gen.free(s, gen.memo[s])
			}
			continue
		}
		if !gen.forwarded.Has(s) {
			gen.forward(s)
		}
	}
}

func (gen *generator) copy(s, target Socket, v backend.Value) backend.Value {
	dup := gen.g.SocketType(s).BuildCopy(gen.b, v)
	gen.stats.Copies++
	gen.emit(Event{Kind: EventCopy, Node: s.Node, Socket: s, Target: target})
	return dup
}

func (gen *generator) free(s Socket, v backend.Value) {
	gen.g.SocketType(s).BuildFree(gen.b, v)
	gen.stats.Frees++
	gen.emit(Event{Kind: EventFree, Node: s.Node, Socket: s})
}

func (gen *generator) emit(e Event) {
	if gen.obs != nil {
		gen.obs.Observe(e)
	}
}
