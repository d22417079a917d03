package domain

import "time"

// PaperStatus tracks a paper through the ingest pipeline.
type PaperStatus string

// Paper statuses.
const (
	PaperStatusUploading   PaperStatus = "uploading"
	PaperStatusProcessing  PaperStatus = "processing"
	PaperStatusSummarizing PaperStatus = "summarizing"
	PaperStatusEmbedding   PaperStatus = "embedding"
	PaperStatusReady       PaperStatus = "ready"
	PaperStatusFailed      PaperStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s PaperStatus) IsValid() bool {
	switch s {
	case PaperStatusUploading, PaperStatusProcessing, PaperStatusSummarizing,
		PaperStatusEmbedding, PaperStatusReady, PaperStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once processing has finished either way.
func (s PaperStatus) IsTerminal() bool {
	return s == PaperStatusReady || s == PaperStatusFailed
}

// Paper is a research paper tracked by the store.
type Paper struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ArxivID  string `json:"arxiv_id,omitempty"`
	Authors  string `json:"authors,omitempty"`
	PDFPath  string `json:"pdf_path" validate:"required"`
	NumPages int    `json:"num_pages"`

	Status PaperStatus `json:"status" validate:"required"`

	FullText string `json:"-"`

	ShortSummary  string `json:"short_summary,omitempty"`
	MediumSummary string `json:"medium_summary,omitempty"`
	LongSummary   string `json:"long_summary,omitempty"`

	// KeyFindings holds the findings extracted from the paper.
	KeyFindings []string `json:"key_findings,omitempty"`
	Methodology string   `json:"methodology,omitempty"`
	Conclusion  string   `json:"conclusion,omitempty"`

	CollectionName  string `json:"collection_name,omitempty"`
	NumChunks       int    `json:"num_chunks"`
	ProcessingError string `json:"processing_error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// ChunkRecord is a chunk as written to the chunk store.
type ChunkRecord struct {
	ID           string `json:"id"`
	PaperID      string `json:"paper_id" validate:"required"`
	Content      string `json:"content"`
	ChunkIndex   int    `json:"chunk_index" validate:"gte=0"`
	PageNumber   int    `json:"page_number" validate:"gte=0"`
	SectionTitle string `json:"section_title"`
	EmbeddingID  string `json:"embedding_id" validate:"required"`

	// ChunkType is a canonical section name or "other".
	ChunkType string `json:"chunk_type" validate:"required"`
}

// ChunkTypeFor maps a section label to a chunk type.
func ChunkTypeFor(section string) string {
	if IsChunkType(section) {
		return section
	}
	return SectionOther
}
