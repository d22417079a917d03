package driven

import "github.com/custodia-labs/paperqa/internal/core/domain"

// Chunker splits extracted text into bounded, overlapping chunks.
// Malformed input fails with domain.ErrChunking.
type Chunker interface {
	// ChunkText splits text recursively, copying metadata into every chunk.
	ChunkText(text string, metadata map[string]any) ([]domain.Chunk, error)

	// ChunkBySections splits each section independently with a running index.
	ChunkBySections(sections []domain.SectionText) ([]domain.Chunk, error)

	// SmartChunk accumulates paragraphs and tags each chunk with its page.
	SmartChunk(text string, pageMapping []domain.PageRange) ([]domain.Chunk, error)
}

// DocumentLayout derives chunker inputs from extracted documents.
type DocumentLayout interface {
	// SectionTexts returns the text of every detected section in offset order.
	SectionTexts(doc *domain.ExtractedDocument) []domain.SectionText

	// PageMapping returns the inclusive byte range of each page.
	PageMapping(doc *domain.ExtractedDocument) []domain.PageRange

	// FromFullText rebuilds pages and sections from stored full text.
	FromFullText(fullText string) *domain.ExtractedDocument
}
