// Package http_request provides the http_request kind, which performs one
// HTTP request every time the compiled function runs.
package http_request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/gridc/internal/node"
	"github.com/specialistvlad/gridc/internal/registry"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the http_request kind.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterKind("http_request", "status and body of a request to url; methods with a body consume a buffer", New)
}

// Params are the parameters of the http_request kind.
type Params struct {
	Method      string `gridc:"method,optional"`
	Timeout     string `gridc:"timeout,optional"`
	ContentType string `gridc:"content_type,optional"`
}

// DefaultTimeout bounds a request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// New builds an http_request node. Every node owns one client, so calls of
// the same compiled function reuse connections.
func New(cfg registry.NodeConfig) (*node.Node, error) {
	var p Params
	if err := registry.DecodeParams(cfg.Params, &p); err != nil {
		return nil, err
	}
	method := strings.ToUpper(p.Method)
	if method == "" {
		method = http.MethodGet
	}
	timeout := DefaultTimeout
	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		timeout = d
	}
	withBody := method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	contentType := p.ContentType

	op := func(args []cty.Value) ([]cty.Value, error) {
		url := args[0].AsString()
		var body io.Reader
		if withBody {
			buf, err := types.BufferFrom(args[1])
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(buf.Bytes())
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		if withBody && contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		slog.Debug("Making HTTP request.", "method", method, "url", url)
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		slog.Debug("Received HTTP response.", "status", resp.Status, "bytes", len(data))
		return []cty.Value{
			cty.NumberIntVal(int64(resp.StatusCode)),
			types.BufferVal(types.NewBuffer(data)),
		}, nil
	}

	n := node.New("http_request", cfg.Name, node.Call("http_request", op))
	n.AddInput("url", types.String)
	if withBody {
		n.AddInput("body", types.BufferType)
	}
	n.AddOutput("status", types.Number)
	n.AddOutput("body", types.BufferType)
	return n, nil
}
