// Package compiler is the entry point that turns a graph into a callable
// function.
//
// Compile validates the graph for the requested interface, resolves the
// representations of every type it will touch in the backend context,
// generates the function body and finalizes it. Validation and backend
// failures are returned as errors; nothing in a successful compilation can
// fail afterwards.
package compiler
