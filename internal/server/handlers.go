package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/specialistvlad/gridc/internal/builder"
	"github.com/specialistvlad/gridc/internal/compiler"
	"github.com/specialistvlad/gridc/internal/ctxlog"
	"github.com/specialistvlad/gridc/internal/graph"
	"github.com/specialistvlad/gridc/internal/graphfile"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// FunctionInfo describes a compiled function.
type FunctionInfo struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Params  []string    `json:"params"`
	Results []string    `json:"results"`
	Stats   graph.Stats `json:"stats"`
	Listing string      `json:"listing"`
}

// CompileResponse is the body of a successful /compile.
type CompileResponse struct {
	Functions []FunctionInfo `json:"functions"`
}

// RunResponse is the body of a successful /run.
type RunResponse struct {
	Results []json.RawMessage `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// load parses and builds the graph in the request body.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (*builder.Result, error) {
	format := r.URL.Query().Get("format")
	loader, err := graphfile.ForFormat(format)
	if err != nil {
		return nil, err
	}
	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	name := "request." + format
	if format == "" {
		name = "request.hcl"
	}
	model, err := loader.LoadBytes(r.Context(), src, name)
	if err != nil {
		return nil, err
	}
	return builder.Build(r.Context(), model, s.registry)
}

func (s *Server) compile(w http.ResponseWriter, r *http.Request) {
	res, err := s.load(w, r)
	if err != nil {
		s.metrics.compiles.WithLabelValues("error").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var names []string
	if name := r.URL.Query().Get("function"); name != "" {
		names = append(names, name)
	}
	fns, err := graphfile.Compile(r.Context(), res, s.backend, names...)
	if err != nil {
		s.metrics.compiles.WithLabelValues("error").Inc()
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	resp := CompileResponse{}
	for _, fn := range fns {
		s.cache.Add(fn.ID(), fn)
		resp.Functions = append(resp.Functions, describe(fn))
		s.metrics.compiles.WithLabelValues("ok").Inc()
	}
	s.metrics.cached.Set(float64(s.cache.Len()))
	ctxlog.FromContext(r.Context()).Info("Compiled functions.", "count", len(fns))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	fn, ok := s.cache.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no compiled function %q", chi.URLParam(r, "id")))
		return
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, fmt.Errorf("arguments must be a JSON array: %w", err))
		return
	}
	if len(raw) != len(fn.Params()) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%s takes %d arguments, got %d", fn.Name(), len(fn.Params()), len(raw)))
		return
	}

	args := make([]cty.Value, 0, len(raw))
	for i, t := range fn.Params() {
		v, err := types.ParseJSON(t, raw[i])
		if err != nil {
			releaseAll(args)
			writeError(w, http.StatusBadRequest, fmt.Errorf("argument %d: %w", i, err))
			return
		}
		args = append(args, v)
	}

	results, err := fn.Call(r.Context(), args...)
	if err != nil {
		s.metrics.calls.WithLabelValues("error").Inc()
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	defer releaseAll(results)

	resp := RunResponse{Results: make([]json.RawMessage, len(results))}
	for i, v := range results {
		if resp.Results[i], err = types.FormatJSON(v); err != nil {
			s.metrics.calls.WithLabelValues("error").Inc()
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	s.metrics.calls.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) release(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.cache.Remove(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no compiled function %q", id))
		return
	}
	s.metrics.cached.Set(float64(s.cache.Len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	res, err := s.load(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var highlight []graph.NodeID
	if name := r.URL.Query().Get("function"); name != "" {
		if highlight, err = graphfile.Highlight(res, name); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Graph.ToDot(highlight...))
}

func describe(fn *compiler.Function) FunctionInfo {
	info := FunctionInfo{
		ID:      fn.ID(),
		Name:    fn.Name(),
		Params:  []string{},
		Results: []string{},
		Stats:   fn.Stats(),
		Listing: fn.PrintCode(),
	}
	for _, t := range fn.Params() {
		info.Params = append(info.Params, t.Name())
	}
	for _, t := range fn.Results() {
		info.Results = append(info.Results, t.Name())
	}
	return info
}

func releaseAll(values []cty.Value) {
	for _, v := range values {
		types.ReleaseValue(v)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
