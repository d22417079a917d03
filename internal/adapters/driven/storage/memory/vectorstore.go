package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
// Queries scan every record of the collection.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string][]domain.VectorRecord
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		collections: make(map[string][]domain.VectorRecord),
	}
}

// CreateCollection creates an empty collection.
func (s *VectorStore) CreateCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("%w: collection %s", domain.ErrAlreadyExists, name)
	}
	s.collections[name] = []domain.VectorRecord{}
	return nil
}

// DeleteCollection removes a collection and its vectors.
func (s *VectorStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	delete(s.collections, name)
	return nil
}

// HasCollection reports whether a collection exists.
func (s *VectorStore) HasCollection(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// Add stores records in a collection. Records with an existing ID replace it.
func (s *VectorStore) Add(_ context.Context, name string, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}

	index := make(map[string]int, len(existing))
	for i, r := range existing {
		index[r.ID] = i
	}
	for _, r := range records {
		r.Vector = append([]float32(nil), r.Vector...)
		if i, dup := index[r.ID]; dup {
			existing[i] = r
			continue
		}
		index[r.ID] = len(existing)
		existing = append(existing, r)
	}
	s.collections[name] = existing
	return nil
}

// Query returns up to topK matches ordered by ascending cosine distance.
func (s *VectorStore) Query(
	_ context.Context,
	name string,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}

	matches := make([]domain.VectorMatch, 0, len(records))
	for _, r := range records {
		if !filter.Matches(r.Metadata) {
			continue
		}
		matches = append(matches, domain.VectorMatch{
			ID:       r.ID,
			Document: r.Document,
			Metadata: r.Metadata,
			Distance: domain.CosineDistance(vector, r.Vector),
		})
	}
	return domain.RankMatches(matches, topK), nil
}

// Count returns the number of records in a collection.
func (s *VectorStore) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records, ok := s.collections[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return len(records), nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
