package ratelimit

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService rate limits calls to an inner embedding backend.
// A batch counts as one request.
type EmbeddingService struct {
	inner   driven.EmbeddingService
	limiter *Limiter
}

// WrapEmbedding returns inner guarded by limiter, or nil if inner is nil.
func WrapEmbedding(inner driven.EmbeddingService, limiter *Limiter) driven.EmbeddingService {
	if inner == nil {
		return nil
	}
	return &EmbeddingService{inner: inner, limiter: limiter}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := s.inner.Embed(ctx, text)
	s.limiter.RecordUnavailable(err)
	return vec, err
}

func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vecs, err := s.inner.EmbedBatch(ctx, texts)
	s.limiter.RecordUnavailable(err)
	return vecs, err
}

func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

func (s *EmbeddingService) Close() error { return s.inner.Close() }
