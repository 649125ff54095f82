// Package config defines the format-agnostic model of a graph definition
// file, along with the Loader interface that format adapters implement.
//
// The Model is the single source of truth for the builder package. Concrete
// loaders, such as for HCL and YAML, live in separate packages.
package config
