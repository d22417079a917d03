package driving

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// PaperService manages papers and runs the ingest pipeline.
type PaperService interface {
	// AddPaper registers the PDF at path without processing it.
	AddPaper(ctx context.Context, path, title string) (*domain.Paper, error)

	// Process extracts, summarises, chunks and indexes a paper.
	Process(ctx context.Context, paperID string) (*domain.Paper, error)

	// Reindex re-chunks stored text and rebuilds the paper's collection.
	Reindex(ctx context.Context, paperID string) (*domain.Paper, error)

	// Get retrieves a paper by ID.
	Get(ctx context.Context, paperID string) (*domain.Paper, error)

	// List returns all papers.
	List(ctx context.Context) ([]domain.Paper, error)

	// Chunks returns the chunk records of a paper.
	Chunks(ctx context.Context, paperID string) ([]domain.ChunkRecord, error)

	// Delete removes a paper, its records and its collection.
	Delete(ctx context.Context, paperID string) error
}
