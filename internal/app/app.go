package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/backend/closure"
	"github.com/specialistvlad/gridc/internal/builder"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/graphfile"
	"github.com/specialistvlad/gridc/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	registry   *registry.Registry
	backend    backend.Backend
	config     *Config
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Command output goes
// to outW and logs to logW. Without modules, the built-in ones are loaded.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New().Load(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "kinds", len(reg.Kinds()))

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		backend:  closure.New(),
		config:   cfg,
	}
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	switch a.config.Command {
	case CommandCompile:
		return a.compileFiles(ctx)
	case CommandRun:
		return a.runFunction(ctx)
	case CommandDot:
		return a.printDot(ctx)
	case CommandWatch:
		return a.watch(ctx)
	case CommandServe:
		return a.serve(ctx)
	}
	return fmt.Errorf("unknown command %q", a.config.Command)
}

// build loads and builds the graph at path.
func (a *App) build(ctx context.Context, paths ...string) (*builder.Result, error) {
	model, err := graphfile.Load(ctx, paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	res, err := builder.Build(ctx, model, a.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return res, nil
}

func (a *App) functionNames() []string {
	if a.config.Function == "" {
		return nil
	}
	return []string{a.config.Function}
}
