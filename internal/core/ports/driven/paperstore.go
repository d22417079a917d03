package driven

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// PaperStore persists papers.
type PaperStore interface {
	// Save creates or updates a paper.
	Save(ctx context.Context, paper *domain.Paper) error

	// Get retrieves a paper by ID.
	// Returns domain.ErrNotFound if the paper does not exist.
	Get(ctx context.Context, id string) (*domain.Paper, error)

	// List returns all papers, newest first.
	List(ctx context.Context) ([]domain.Paper, error)

	// Delete removes a paper.
	Delete(ctx context.Context, id string) error
}

// ChunkStore persists chunk records of indexed papers.
type ChunkStore interface {
	// SaveChunks stores chunk records, replacing records with the same ID.
	SaveChunks(ctx context.Context, chunks []domain.ChunkRecord) error

	// GetChunks returns the chunk records of a paper ordered by chunk index.
	GetChunks(ctx context.Context, paperID string) ([]domain.ChunkRecord, error)

	// DeleteChunks removes every chunk record of a paper.
	DeleteChunks(ctx context.Context, paperID string) error
}
