// Package graph owns node graphs and lowers them into backend functions.
//
// # Data Model
//
// A Graph is an arena: nodes live in a slice and are referred to by NodeID,
// and a Socket is the value triple (node, direction, index). Links run from
// an output socket to an input socket; every input has at most one origin.
//
// # Compilation
//
// Lowering a graph for a set of provided sockets I and requested sockets O
// runs in three steps:
//
//  1. Validate checks the interface sockets and the part of the graph
//     reachable from O, and returns typed errors (MissingOriginError,
//     CycleError, ...) for malformed graphs.
//  2. RequiredSockets computes R, the sockets reachable backward from O
//     without crossing I. Nothing outside R is ever built.
//  3. Generate walks R depth-first, builds each required node once and
//     forwards every produced value to its consumers.
//
// # Forwarding
//
// A value with k required, not yet generated consumers is freed when k is 0,
// moved to its only consumer when k is 1, and otherwise moved to the first
// consumer (in link order) and copied once for each of the others. As a
// result every value has exactly one owner at every point of the generated
// function. Values requested in O are never moved away: their consumers get
// copies.
//
// Generate and RequiredSockets assume a validated graph. A structural
// problem found during traversal is a programming error and panics with a
// ContractViolation.
package graph
