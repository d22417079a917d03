package driving

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// IndexService embeds chunks into per-paper collections and searches them.
type IndexService interface {
	// Embed returns one vector per text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// CreateCollection creates an empty collection, dropping any existing one.
	CreateCollection(ctx context.Context, name string) error

	// IndexChunks stores chunks and returns their embedding ids in input order.
	IndexChunks(ctx context.Context, name string, chunks []domain.Chunk) ([]string, error)

	// Search returns up to topK results ordered by ascending distance.
	Search(ctx context.Context, name, query string, topK int, filter domain.MetadataFilter) ([]domain.RetrievedResult, error)

	// DeleteCollection drops a collection and reports whether one was removed.
	DeleteCollection(ctx context.Context, name string) bool
}
