package driven

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// VectorStore persists chunk vectors in named collections and answers
// nearest-neighbour queries. Every collection uses cosine distance.
//
// Implementations include an in-memory store, a sqlite store and Qdrant.
type VectorStore interface {
	// CreateCollection creates an empty collection.
	// Returns domain.ErrAlreadyExists if the name is taken.
	CreateCollection(ctx context.Context, name string) error

	// DeleteCollection removes a collection and its vectors.
	// Returns domain.ErrCollectionNotFound if it does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// HasCollection reports whether a collection exists.
	HasCollection(ctx context.Context, name string) (bool, error)

	// Add stores records in a collection.
	// Returns domain.ErrCollectionNotFound if it does not exist.
	Add(ctx context.Context, name string, records []domain.VectorRecord) error

	// Query returns up to topK matches ordered by ascending distance,
	// keeping only records whose metadata satisfies filter.
	// Returns domain.ErrCollectionNotFound if the collection does not exist.
	Query(ctx context.Context, name string, vector []float32, topK int, filter domain.MetadataFilter) ([]domain.VectorMatch, error)

	// Count returns the number of records in a collection.
	Count(ctx context.Context, name string) (int, error)

	// Close releases resources.
	Close() error
}
