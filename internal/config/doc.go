// Package config defines the format-agnostic document model produced by
// loaders and consumed by the graph builder, keeping the rest of the
// application independent of the manifest syntax.
package config
