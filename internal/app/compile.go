package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/gridc/internal/compiler"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/graphfile"
	"golang.org/x/sync/errgroup"
)

// compileFiles compiles every configured file concurrently and reports the
// results in file order.
func (a *App) compileFiles(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	paths := a.config.Paths
	results := make([][]*compiler.Function, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.Workers)
	for i, path := range paths {
		g.Go(func() error {
			fns, err := a.compilePath(gctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = fns
			return nil
		})
	}
	err := g.Wait()
	defer func() {
		for _, fns := range results {
			for _, fn := range fns {
				fn.Release()
			}
		}
	}()
	if err != nil {
		return err
	}

	for i, fns := range results {
		for _, fn := range fns {
			writeSummary(a.outW, paths[i], fn)
			if a.config.PrintCode {
				fmt.Fprintln(a.outW, fn.PrintCode())
			}
		}
	}
	logger.Info("Compilation finished.", "files", len(paths))
	return nil
}

func (a *App) compilePath(ctx context.Context, path string) ([]*compiler.Function, error) {
	res, err := a.build(ctx, path)
	if err != nil {
		return nil, err
	}
	return graphfile.Compile(ctx, res, a.backend, a.functionNames()...)
}

func writeSummary(w io.Writer, path string, fn *compiler.Function) {
	st := fn.Stats()
	fmt.Fprintf(w, "%s: %s(%s) -> (%s) builds=%d moves=%d copies=%d frees=%d\n",
		path, fn.Name(),
		strings.Join(typeNames(fn.Params()), ", "),
		strings.Join(typeNames(fn.Results()), ", "),
		st.Builds, st.Moves, st.Copies, st.Frees,
	)
}
