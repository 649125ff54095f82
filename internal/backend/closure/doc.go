// Package closure is a backend.Backend that lowers a function body into a
// chain of Go closures operating on a register file of cty values.
//
// Every emitted value occupies one register. Finalize verifies the body
// (arity, use after release, double release, foreign handles), prints a
// listing of the intermediate form and produces a backend.Function whose
// Invoke runs the closures in emission order.
package closure
