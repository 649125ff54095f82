// Package node defines the typed operations that make up a graph.
//
// A Node carries an ordered list of named, typed input and output sockets and
// a Builder that lowers the operation into a backend function body. Sockets
// can only be declared while the node is unsealed; adding the node to a graph
// seals it.
//
// Ownership: Build receives ownership of every input value. It must either
// move each input into one of its outputs or release it (ReleaseInputs does
// that for the common case), and it hands ownership of every output value to
// the caller.
package node
