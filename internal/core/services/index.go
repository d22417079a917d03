package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService embeds chunks into per-paper vector collections and
// answers similarity searches against them.
type IndexService struct {
	embedder    driven.EmbeddingService
	vectorStore driven.VectorStore
}

// NewIndexService creates a new index service.
func NewIndexService(embedder driven.EmbeddingService, vectorStore driven.VectorStore) *IndexService {
	return &IndexService{
		embedder:    embedder,
		vectorStore: vectorStore,
	}
}

// Embed returns one vector per text, in order. It never returns partial results.
func (s *IndexService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, domain.ErrEmbeddingUnavailable)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		logger.Error("embed %d texts with %s: %v", len(texts), s.embedder.ModelName(), err)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbedding, len(vectors), len(texts))
	}
	return vectors, nil
}

// CreateCollection creates an empty collection, dropping any existing one.
func (s *IndexService) CreateCollection(ctx context.Context, name string) error {
	err := s.vectorStore.DeleteCollection(ctx, name)
	if err != nil && !errors.Is(err, domain.ErrCollectionNotFound) {
		return fmt.Errorf("%w: drop collection %q: %w", domain.ErrIndexing, name, err)
	}
	if err == nil {
		logger.Debug("dropped existing collection %s", name)
	}

	if err := s.vectorStore.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("%w: create collection %q: %w", domain.ErrIndexing, name, err)
	}
	return nil
}

// IndexChunks embeds and stores chunks, returning their embedding ids in
// input order.
func (s *IndexService) IndexChunks(ctx context.Context, name string, chunks []domain.Chunk) ([]string, error) {
	ok, err := s.vectorStore.HasCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: collection %q: %w", domain.ErrIndexing, name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: collection %q: %w", domain.ErrIndexing, name, domain.ErrCollectionNotFound)
	}
	if len(chunks) == 0 {
		return []string{}, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(chunks))
	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		ids[i] = uuid.New().String()
		records[i] = domain.VectorRecord{
			ID:       ids[i],
			Vector:   vectors[i],
			Document: c.Content,
			Metadata: domain.MetadataFor(c),
		}
	}

	if err := s.vectorStore.Add(ctx, name, records); err != nil {
		logger.Error("index %d chunks into %s: %v", len(chunks), name, err)
		return nil, fmt.Errorf("%w: collection %q: %w", domain.ErrIndexing, name, err)
	}

	logger.Debug("indexed %d chunks into %s", len(chunks), name)
	return ids, nil
}

// Search returns up to topK chunks nearest to query, ordered by ascending
// cosine distance. A non-positive topK uses domain.DefaultTopK.
func (s *IndexService) Search(
	ctx context.Context,
	name, query string,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.RetrievedResult, error) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}

	ok, err := s.vectorStore.HasCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: collection %q: %w", domain.ErrSearch, name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: collection %q: %w", domain.ErrSearch, name, domain.ErrCollectionNotFound)
	}

	vectors, err := s.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}

	matches, err := s.vectorStore.Query(ctx, name, vectors[0], topK, filter)
	if err != nil {
		logger.Error("search %s: %v", name, err)
		return nil, fmt.Errorf("%w: collection %q: %w", domain.ErrSearch, name, err)
	}

	results := make([]domain.RetrievedResult, len(matches))
	for i, m := range matches {
		results[i] = domain.RetrievedResult{
			ID:              m.ID,
			Content:         m.Document,
			Metadata:        m.Metadata,
			Distance:        m.Distance,
			SimilarityScore: 1 - m.Distance,
		}
	}
	domain.SortByDistance(results)

	logger.Debug("search %s: %d results for %q", name, len(results), query)
	return results, nil
}

// DeleteCollection drops a collection and reports whether one was removed.
// Failures are logged, never returned.
func (s *IndexService) DeleteCollection(ctx context.Context, name string) bool {
	if err := s.vectorStore.DeleteCollection(ctx, name); err != nil {
		if !errors.Is(err, domain.ErrCollectionNotFound) {
			logger.Warn("delete collection %s: %v", name, err)
		}
		return false
	}
	return true
}
