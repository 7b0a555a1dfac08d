package config

import "context"

// Loader is the interface for a format-specific document loader.
type Loader interface {
	// Load reads manifests and graph declarations from the given paths and
	// translates them into the format-agnostic document.
	Load(ctx context.Context, paths ...string) (*Document, error)
}
