package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure UsageStore implements the interface.
var _ driven.UsageStore = (*UsageStore)(nil)

// UsageStore is an append-only in-memory usage log.
type UsageStore struct {
	mu      sync.RWMutex
	records []domain.UsageRecord
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{}
}

// Record appends a usage record.
func (s *UsageStore) Record(_ context.Context, rec domain.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// ListUsage returns records created at or after since, oldest first.
func (s *UsageStore) ListUsage(_ context.Context, since time.Time) ([]domain.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.UsageRecord
	for _, r := range s.records {
		if !r.CreatedAt.Before(since) {
			result = append(result, r)
		}
	}
	return result, nil
}
