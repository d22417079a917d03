package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure PaperStore implements the interfaces.
var (
	_ driven.PaperStore = (*PaperStore)(nil)
	_ driven.ChunkStore = (*PaperStore)(nil)
)

// PaperStore is an in-memory implementation of driven.PaperStore and
// driven.ChunkStore.
type PaperStore struct {
	mu     sync.RWMutex
	papers map[string]domain.Paper
	chunks map[string][]domain.ChunkRecord
}

// NewPaperStore creates a new in-memory paper store.
func NewPaperStore() *PaperStore {
	return &PaperStore{
		papers: make(map[string]domain.Paper),
		chunks: make(map[string][]domain.ChunkRecord),
	}
}

// Save stores or updates a paper.
func (s *PaperStore) Save(_ context.Context, paper *domain.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *paper
	p.KeyFindings = append([]string(nil), paper.KeyFindings...)
	s.papers[paper.ID] = p
	return nil
}

// Get retrieves a paper by ID.
func (s *PaperStore) Get(_ context.Context, id string) (*domain.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.papers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// List returns all papers, newest first.
func (s *PaperStore) List(_ context.Context) ([]domain.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Paper, 0, len(s.papers))
	for id := range s.papers {
		result = append(result, s.papers[id])
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes a paper and its chunk records.
func (s *PaperStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.papers, id)
	delete(s.chunks, id)
	return nil
}

// SaveChunks stores chunk records, replacing records with the same ID.
func (s *PaperStore) SaveChunks(_ context.Context, chunks []domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		existing := s.chunks[c.PaperID]
		replaced := false
		for i := range existing {
			if existing[i].ID == c.ID {
				existing[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, c)
		}
		s.chunks[c.PaperID] = existing
	}
	return nil
}

// GetChunks returns the chunk records of a paper ordered by chunk index.
func (s *PaperStore) GetChunks(_ context.Context, paperID string) ([]domain.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := append([]domain.ChunkRecord(nil), s.chunks[paperID]...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ChunkIndex < result[j].ChunkIndex
	})
	return result, nil
}

// DeleteChunks removes every chunk record of a paper.
func (s *PaperStore) DeleteChunks(_ context.Context, paperID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chunks, paperID)
	return nil
}
