// Package cached memoises embeddings in an in-process LRU cache.
// Repeated questions against the same paper skip the embedding backend.
package cached

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultSize is the number of vectors kept when no size is given.
const DefaultSize = 4096

// EmbeddingService caches vectors from an inner service keyed by model and text.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// New wraps inner with a cache of size entries. It returns nil when inner is nil.
func New(inner driven.EmbeddingService, size int) (driven.EmbeddingService, error) {
	if inner == nil {
		return nil, nil
	}
	if size <= 0 {
		size = DefaultSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &EmbeddingService{inner: inner, cache: cache}, nil
}

func (s *EmbeddingService) key(text string) string {
	return s.inner.ModelName() + "\x00" + text
}

// Embed returns the cached vector or asks the inner service.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	k := s.key(text)
	if vec, ok := s.cache.Get(k); ok {
		return vec, nil
	}
	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(k, vec)
	return vec, nil
}

// EmbedBatch only sends the texts that miss the cache. Output order
// matches texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if vec, ok := s.cache.Get(s.key(text)); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := s.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("embedding backend returned %d vectors for %d texts", len(vecs), len(missing))
	}
	for j, vec := range vecs {
		out[missingIdx[j]] = vec
		s.cache.Add(s.key(missing[j]), vec)
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int { return s.cache.Len() }

func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close purges the cache and closes the inner service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.inner.Close()
}
