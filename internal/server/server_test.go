package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/specialistvlad/gridc/internal/backend/closure"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/modules/arith"
	"github.com/specialistvlad/gridc/modules/buffer"
	"github.com/specialistvlad/gridc/modules/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const divideHCL = `
node "div" "q" {}
compile "divide" {
  inputs  = [node.q.a, node.q.b]
  outputs = [node.q.result]
}
`

const divideYAML = `
nodes:
  - {kind: div, name: q}
compile:
  - {name: divide, inputs: [q.a, q.b], outputs: [q.result]}
`

func newServer(t *testing.T, cacheSize int) (*Server, *httptest.Server) {
	t.Helper()
	r := registry.New().Load(&core.Module{}, &arith.Module{}, &buffer.Module{})
	s, err := New(context.Background(), r, closure.New(), Options{CacheSize: cacheSize})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func compileGraph(t *testing.T, ts *httptest.Server, query, body string) FunctionInfo {
	t.Helper()
	resp, data := post(t, ts.URL+"/compile"+query, body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var cr CompileResponse
	require.NoError(t, json.Unmarshal(data, &cr))
	require.Len(t, cr.Functions, 1)
	return cr.Functions[0]
}

func TestHealth(t *testing.T) {
	_, ts := newServer(t, 0)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))
}

func TestCompileAndRun(t *testing.T) {
	for _, tc := range []struct{ query, body string }{
		{"", divideHCL},
		{"?format=yaml", divideYAML},
	} {
		_, ts := newServer(t, 0)
		fn := compileGraph(t, ts, tc.query, tc.body)
		assert.Equal(t, "divide", fn.Name)
		assert.Equal(t, []string{"number", "number"}, fn.Params)
		assert.Equal(t, []string{"number"}, fn.Results)
		assert.Equal(t, 1, fn.Stats.Builds)
		assert.Contains(t, fn.Listing, "define @divide(")

		resp, data := post(t, ts.URL+"/run/"+fn.ID, "[10, 4]")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
		var rr RunResponse
		require.NoError(t, json.Unmarshal(data, &rr))
		require.Len(t, rr.Results, 1)
		assert.JSONEq(t, "2.5", string(rr.Results[0]))

		resp, data = post(t, ts.URL+"/run/"+fn.ID, "[1, 0]")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, string(data), "division by zero")

		resp, data = post(t, ts.URL+"/run/"+fn.ID, "[1]")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(data), "divide takes 2 arguments, got 1")

		resp, _ = post(t, ts.URL+"/run/"+fn.ID, `["x", 1]`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestRun_Buffers(t *testing.T) {
	_, ts := newServer(t, 0)
	fn := compileGraph(t, ts, "", `
node "buffer_concat" "cat" {}
compile "join" {
  inputs  = [node.cat.a, node.cat.b]
  outputs = [node.cat.buffer]
}
`)
	assert.Equal(t, []string{"buffer", "buffer"}, fn.Params)

	resp, data := post(t, ts.URL+"/run/"+fn.ID, `["grid", "c"]`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"results": ["gridc"]}`, string(data))
}

func TestCompile_Errors(t *testing.T) {
	_, ts := newServer(t, 0)

	resp, data := post(t, ts.URL+"/compile?format=json", divideHCL)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), "unsupported graph format")

	resp, data = post(t, ts.URL+"/compile", `node "nope" "x" {}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(data), `unknown node kind \"nope\"`)

	resp, data = post(t, ts.URL+"/compile", `
node "div" "q" {}
compile "broken" { outputs = [node.q.result] }
`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), "is required but not linked")

	resp, _ = post(t, ts.URL+"/run/unknown", "[]")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCache_ReleasesEvictedFunctions(t *testing.T) {
	s, ts := newServer(t, 1)
	first := compileGraph(t, ts, "", divideHCL)
	second := compileGraph(t, ts, "", divideHCL)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, s.cache.Len())

	resp, _ := post(t, ts.URL+"/run/"+first.ID, "[1, 1]")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/functions/"+second.ID, nil)
	require.NoError(t, err)
	dresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	dresp.Body.Close()
	assert.Equal(t, http.StatusNoContent, dresp.StatusCode)
	assert.Zero(t, s.cache.Len())
}

func TestDot(t *testing.T) {
	_, ts := newServer(t, 0)
	resp, data := post(t, ts.URL+"/dot?function=divide", divideHCL)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, "text/vnd.graphviz; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(string(data), "digraph gridc {"))
	assert.Contains(t, string(data), "fillcolor")
}

func TestMetrics(t *testing.T) {
	_, ts := newServer(t, 0)
	compileGraph(t, ts, "", divideHCL)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `gridc_server_compiles_total{result="ok"} 1`)
	assert.Contains(t, string(body), `gridc_http_requests_total{code="200",route="/compile"} 1`)
	assert.Contains(t, string(body), "gridc_cached_functions 1")
}
