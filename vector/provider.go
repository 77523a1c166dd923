// Package vector provides the COLD-tier similarity-search backend used by
// the memory manager (spec §4.2): a uniform Provider interface with an
// embedded chromem-go implementation as the zero-config default and an
// optional Qdrant implementation for networked deployments.
package vector

import "context"

// Result is one similarity-search hit.
type Result struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]any
}

// Provider is the uniform vector-store backend (spec §4.2, §1 scope
// exclusion: "vector-store engine" — the concrete engine is pluggable,
// this interface is what the memory manager depends on).
type Provider interface {
	// Upsert stores or replaces a vector under id within collection.
	Upsert(ctx context.Context, collection, id string, vec []float32, metadata map[string]any) error

	// Search returns the topK nearest vectors to vec within collection.
	Search(ctx context.Context, collection string, vec []float32, topK int) ([]Result, error)

	// CreateCollection ensures collection exists, sized for dimension.
	CreateCollection(ctx context.Context, collection string, dimension int) error

	// Delete removes a single document by id.
	Delete(ctx context.Context, collection, id string) error

	// DeleteCollection removes a collection and all of its documents.
	DeleteCollection(ctx context.Context, collection string) error

	// Name identifies the backend for logging.
	Name() string

	// Close releases any held resources.
	Close() error
}
