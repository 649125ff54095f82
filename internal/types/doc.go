// Package types is the logical type system of the compiler.
//
// A Type pairs a cty runtime type with an Impl that knows how to materialize
// the type in a backend context and how to emit copies and frees of its
// values. Representations are cached per context: however many graphs are
// compiled against the same context, and however many goroutines compile
// concurrently, CreateRepresentation runs at most once per (Type, context).
//
// Two implementations ship with the package:
//
//   - Trivial: plain values. Copies alias the value, frees emit nothing.
//   - RefCounted: heap values with an explicit retain/release protocol,
//     used by the buffer type.
package types
