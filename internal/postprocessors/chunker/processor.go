// Package chunker splits extracted paper text into overlapping,
// size-bounded chunks tagged with position metadata.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// separators are tried in order: paragraph, line, sentence, word, character.
// A separator is kept at the start of the piece that follows it.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits text into chunks. Sizes are counted in characters (runes).
type Chunker struct {
	chunkSize int
	overlap   int
	splitter  textsplitter.RecursiveCharacter
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a new chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	c.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithSeparators(separators),
		textsplitter.WithChunkSize(c.chunkSize),
		textsplitter.WithChunkOverlap(c.overlap),
		textsplitter.WithKeepSeparator(true),
	)

	return c
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// split runs the recursive splitter over text.
func (c *Chunker) split(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrChunking)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	pieces, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrChunking, err)
	}
	return pieces, nil
}

// ChunkText splits text with the recursive splitter. Each chunk receives a
// copy of metadata; a string "section" entry becomes the chunk section.
func (c *Chunker) ChunkText(text string, metadata map[string]any) ([]domain.Chunk, error) {
	pieces, err := c.split(text)
	if err != nil {
		return nil, err
	}

	section := domain.SectionOther
	if s, ok := metadata["section"].(string); ok && s != "" {
		section = s
	}

	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		meta := make(map[string]any, len(metadata))
		for k, v := range metadata {
			meta[k] = v
		}
		chunks = append(chunks, domain.Chunk{
			Content:    piece,
			ChunkIndex: i,
			Section:    section,
			Metadata:   meta,
		})
	}

	return chunks, nil
}

// ChunkBySections splits each section independently. The chunk index runs
// across all sections; section_chunk_index restarts for each section.
func (c *Chunker) ChunkBySections(sections []domain.SectionText) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	index := 0

	for _, sec := range sections {
		pieces, err := c.split(sec.Text)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", sec.Name, err)
		}
		for j, piece := range pieces {
			chunks = append(chunks, domain.Chunk{
				Content:    piece,
				ChunkIndex: index,
				Section:    sec.Name,
				Metadata: map[string]any{
					"section":             sec.Name,
					"section_chunk_index": j,
				},
			})
			index++
		}
	}

	return chunks, nil
}

// SmartChunk accumulates paragraphs until the next one would exceed the
// chunk size. When a page mapping is given, each chunk is tagged with the
// page whose range contains the buffer length at flush time; otherwise
// page 1.
func (c *Chunker) SmartChunk(text string, pageMapping []domain.PageRange) ([]domain.Chunk, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrChunking)
	}
	for _, r := range pageMapping {
		if r.Start > r.End {
			return nil, fmt.Errorf("%w: page %d range %d-%d is inverted", domain.ErrChunking, r.Page, r.Start, r.End)
		}
	}

	var chunks []domain.Chunk
	flush := func(buf string, page int) {
		content := strings.TrimSpace(buf)
		if content == "" {
			return
		}
		chunks = append(chunks, domain.Chunk{
			Content:    content,
			PageNumber: page,
			Section:    domain.SectionOther,
			Metadata:   map[string]any{"page_number": page},
		})
	}

	buf := ""
	page := 1
	for _, para := range strings.Split(text, "\n\n") {
		if utf8.RuneCountInString(buf)+utf8.RuneCountInString(para) > c.chunkSize {
			flush(buf, page)
			buf = para
		} else {
			buf += "\n\n" + para
		}
		if len(pageMapping) > 0 {
			page = pageFor(len(buf), pageMapping)
		}
	}
	flush(buf, page)

	for i := range chunks {
		chunks[i].ChunkIndex = i
	}

	return chunks, nil
}

// pageFor returns the page whose range contains offset, or 1.
func pageFor(offset int, mapping []domain.PageRange) int {
	for _, r := range mapping {
		if r.Contains(offset) {
			return r.Page
		}
	}
	return 1
}
