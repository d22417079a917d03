package driven

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// Extractor reads a PDF into an ExtractedDocument.
// Both operations fail with domain.ErrExtraction when the file cannot be
// opened or parsed.
type Extractor interface {
	// Extract reads text, metadata and sections with the fast backend.
	Extract(ctx context.Context, path string) (*domain.ExtractedDocument, error)

	// ExtractWithTables additionally detects tables, at lower speed.
	ExtractWithTables(ctx context.Context, path string) (*domain.ExtractedDocument, error)
}

// PDFBackend is a single PDF reading implementation used by an Extractor.
type PDFBackend interface {
	// Name identifies the backend in logs.
	Name() string

	// Read returns the pages and metadata of the PDF at path.
	// Tables are only returned by backends that detect them.
	Read(ctx context.Context, path string) (pages []domain.Page, meta domain.PDFMetadata, tables []domain.Table, err error)
}
