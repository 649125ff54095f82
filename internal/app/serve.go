package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridc/internal/server"
)

// serve runs the HTTP service until ctx is cancelled.
func (a *App) serve(ctx context.Context) error {
	srv, err := server.New(ctx, a.registry, a.backend, server.Options{CacheSize: a.config.CacheSize})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", a.config.Port))
}
