// Package app wires the loaders, the registry, the compiler and the HTTP
// service into the gridc commands.
package app
