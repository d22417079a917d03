package domain

// Chunk is a bounded excerpt of document text.
// ChunkIndex values are contiguous from 0 within one chunking run.
type Chunk struct {
	// Content is the chunk text.
	Content string

	// ChunkIndex is the emission order within the document.
	ChunkIndex int

	// PageNumber is the source page, 0 when unknown.
	PageNumber int

	// Section is the section the chunk came from, "other" by default.
	Section string

	// Metadata holds additional key-value pairs.
	Metadata map[string]any
}

// SectionOrDefault returns the chunk section or "other".
func (c Chunk) SectionOrDefault() string {
	if c.Section == "" {
		return SectionOther
	}
	return c.Section
}

// ChunkMetadata is the record stored with every indexed vector.
type ChunkMetadata struct {
	ChunkIndex int    `json:"chunk_index"`
	PageNumber int    `json:"page_number"`
	Section    string `json:"section"`
}

// MetadataFor builds the stored metadata of a chunk.
func MetadataFor(c Chunk) ChunkMetadata {
	return ChunkMetadata{
		ChunkIndex: c.ChunkIndex,
		PageNumber: c.PageNumber,
		Section:    c.SectionOrDefault(),
	}
}

// Field returns the metadata value for a filter key.
func (m ChunkMetadata) Field(key string) (any, bool) {
	switch key {
	case "chunk_index":
		return m.ChunkIndex, true
	case "page_number":
		return m.PageNumber, true
	case "section":
		return m.Section, true
	default:
		return nil, false
	}
}

// IndexedChunk is a chunk stored in a vector collection.
type IndexedChunk struct {
	Chunk

	// EmbeddingID is the identifier assigned when the chunk was indexed.
	EmbeddingID string

	// Embedding is the vector of the chunk content.
	Embedding []float32
}
