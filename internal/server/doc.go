// Package server exposes the compiler over HTTP.
//
//	GET    /health           liveness probe
//	POST   /compile          compile a graph file, cache the function
//	POST   /run/{id}         call a cached function with a JSON array of arguments
//	DELETE /functions/{id}   release a cached function
//	POST   /dot              render a graph file as DOT
//	GET    /metrics          Prometheus metrics
//
// /compile and /dot take the graph definition as the request body and its
// format in the format query parameter (hcl by default).
package server
