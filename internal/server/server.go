package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/gridc/internal/backend"
	"github.com/specialistvlad/gridc/internal/compiler"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/registry"
)

// DefaultCacheSize is the number of compiled functions kept by default.
const DefaultCacheSize = 64

// maxBodyBytes limits request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	CacheSize int
}

// Server serves compilations of one registry on one backend.
type Server struct {
	registry *registry.Registry
	backend  backend.Backend
	cache    *lru.Cache[string, *compiler.Function]
	metrics  *metrics
	logger   *slog.Logger
	router   chi.Router
}

// New creates a server. The logger is taken from ctx.
func New(ctx context.Context, r *registry.Registry, be backend.Backend, opts Options) (*Server, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	s := &Server{
		registry: r,
		backend:  be,
		metrics:  newMetrics(),
		logger:   ctxlog.FromContext(ctx),
	}
	cache, err := lru.NewWithEvict(opts.CacheSize, func(id string, fn *compiler.Function) {
		s.logger.Debug("Releasing cached function.", "id", id, "function", fn.Name())
		fn.Release()
		s.metrics.evictions.Inc()
	})
	if err != nil {
		return nil, fmt.Errorf("creating function cache: %w", err)
	}
	s.cache = cache
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.health)
	r.Post("/compile", s.compile)
	r.Post("/run/{id}", s.run)
	r.Delete("/functions/{id}", s.release)
	r.Post("/dot", s.dot)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases every cached function.
func (s *Server) Close() {
	s.cache.Purge()
	s.metrics.cached.Set(0)
}

// logRequests logs each request and counts it by route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := ctxlog.WithLogger(r.Context(), s.logger.With("request_id", middleware.GetReqID(r.Context())))

		next.ServeHTTP(ww, r.WithContext(ctx))

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		s.logger.Debug("HTTP request.",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and releases the cache.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting.", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Shutting down server...")
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}
