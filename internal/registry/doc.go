// Package registry maps the node kinds and type names used in graph
// definition files to the Go code implementing them.
//
// Modules register their kinds during startup. A kind is a Factory that turns
// a decoded NodeConfig into a node.Node with its sockets declared. Parameters
// are decoded into tagged Go structs with DecodeParams, which reports unknown
// or missing parameters and type mismatches up front, so that a graph file
// and the code behind it cannot silently drift apart.
package registry
