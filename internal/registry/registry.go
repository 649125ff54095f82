package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// Module is the interface that all node modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// NodeConfig is everything a Factory gets to build one node.
type NodeConfig struct {
	// Name is the instance name from the graph definition.
	Name string
	// Type is the value of the "type" attribute, or cty.NilType when the
	// definition has none.
	Type cty.Type
	// InputTypes holds the type of the upstream socket of every linked input,
	// keyed by input name. Kinds with free-form inputs declare their sockets
	// from it.
	InputTypes map[string]cty.Type
	// Params holds the remaining attributes of the definition.
	Params map[string]cty.Value
}

// Factory builds a node from its configuration.
type Factory func(cfg NodeConfig) (*node.Node, error)

// Kind is a registered node kind.
type Kind struct {
	Name    string
	Summary string
	Factory Factory
}

// Registry holds the node kinds and named types of one application instance.
type Registry struct {
	kinds map[string]*Kind
	types map[string]*types.Type
}

// New creates a registry that knows the built-in types.
func New() *Registry {
	r := &Registry{
		kinds: make(map[string]*Kind),
		types: make(map[string]*types.Type),
	}
	for _, t := range []*types.Type{types.Number, types.Bool, types.String, types.BufferType} {
		r.RegisterType(t)
	}
	return r
}

// Load registers every module.
func (r *Registry) Load(modules ...Module) *Registry {
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// RegisterKind registers a node kind. Registering a kind twice panics.
func (r *Registry) RegisterKind(name, summary string, factory Factory) {
	if _, exists := r.kinds[name]; exists {
		panic(fmt.Sprintf("node kind '%s' already registered", name))
	}
	slog.Debug("Registering node kind.", "kind", name)
	r.kinds[name] = &Kind{Name: name, Summary: summary, Factory: factory}
}

// RegisterType makes a named type available to graph definitions.
func (r *Registry) RegisterType(t *types.Type) {
	if _, exists := r.types[t.Name()]; exists {
		panic(fmt.Sprintf("type '%s' already registered", t.Name()))
	}
	r.types[t.Name()] = t
}

// Kind looks up a node kind.
func (r *Registry) Kind(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []*Kind {
	out := make([]*Kind, 0, len(r.kinds))
	for _, k := range r.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Type looks up a named type.
func (r *Registry) Type(name string) (*types.Type, bool) {
	t, ok := r.types[name]
	return t, ok
}

// NewNode builds a node of the given kind.
func (r *Registry) NewNode(kind string, cfg NodeConfig) (*node.Node, error) {
	k, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
	n, err := k.Factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", kind, cfg.Name, err)
	}
	return n, nil
}
