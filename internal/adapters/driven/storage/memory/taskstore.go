package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure TaskStore implements the interface.
var _ driven.TaskStore = (*TaskStore)(nil)

// TaskStore keeps the latest update of each task.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]domain.TaskUpdate
	order []string
}

// NewTaskStore creates a new in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]domain.TaskUpdate)}
}

// Report records an update, replacing the previous update with the same ID.
func (s *TaskStore) Report(_ context.Context, update domain.TaskUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[update.ID]; !ok {
		s.order = append(s.order, update.ID)
	}
	s.tasks[update.ID] = update
	return nil
}

// ListTasks returns the latest update of each task of a paper in the
// order the tasks were first reported.
func (s *TaskStore) ListTasks(_ context.Context, paperID string) ([]domain.TaskUpdate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.TaskUpdate
	for _, id := range s.order {
		if t := s.tasks[id]; t.PaperID == paperID {
			result = append(result, t)
		}
	}
	return result, nil
}
