package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// ==================== Task Store ====================

// taskStore implements driven.TaskStore.
type taskStore struct {
	store *Store
}

var _ driven.TaskStore = (*taskStore)(nil)

// Report records an update, replacing the previous update with the same ID.
func (s *taskStore) Report(ctx context.Context, update domain.TaskUpdate) error {
	if update.ID == "" {
		update.ID = uuid.New().String()
	}
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = time.Now()
	}

	result, err := marshalJSON(update.Result)
	if err != nil {
		return fmt.Errorf("marshalling task result: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO processing_tasks (id, paper_id, task_type, status, progress_percentage,
			error_message, result, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			paper_id = excluded.paper_id,
			task_type = excluded.task_type,
			status = excluded.status,
			progress_percentage = excluded.progress_percentage,
			error_message = excluded.error_message,
			result = excluded.result,
			updated_at = excluded.updated_at
	`, update.ID, update.PaperID, string(update.Type), string(update.Status),
		update.ProgressPercentage, update.ErrorMessage, result, update.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving task: %w", err)
	}
	return nil
}

// ListTasks returns the latest update of each task of a paper in the
// order the tasks were first reported.
func (s *taskStore) ListTasks(ctx context.Context, paperID string) ([]domain.TaskUpdate, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, paper_id, task_type, status, progress_percentage, error_message, result, updated_at
		FROM processing_tasks WHERE paper_id = ?
		ORDER BY seq
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.TaskUpdate //nolint:prealloc // size unknown from query
	for rows.Next() {
		var t domain.TaskUpdate
		var taskType, status, result string
		if err := rows.Scan(&t.ID, &t.PaperID, &taskType, &status, &t.ProgressPercentage,
			&t.ErrorMessage, &result, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Type = domain.TaskType(taskType)
		t.Status = domain.TaskStatus(status)
		if err := unmarshalJSON(result, &t.Result); err != nil {
			return nil, fmt.Errorf("unmarshalling task result: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// ==================== Usage Store ====================

// usageStore implements driven.UsageStore.
type usageStore struct {
	store *Store
}

var _ driven.UsageStore = (*usageStore)(nil)

// Record stores a usage record. Cost is kept as decimal text.
func (s *usageStore) Record(ctx context.Context, rec domain.UsageRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO model_usage (id, operation_type, model_name, prompt_tokens,
			completion_tokens, total_tokens, estimated_cost, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, string(rec.OperationType), rec.ModelName, rec.PromptTokens,
		rec.CompletionTokens, rec.TotalTokens, rec.EstimatedCost, rec.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving usage: %w", err)
	}
	return nil
}

// ListUsage returns records created at or after since, oldest first.
func (s *usageStore) ListUsage(ctx context.Context, since time.Time) ([]domain.UsageRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, operation_type, model_name, prompt_tokens, completion_tokens,
			total_tokens, estimated_cost, created_at
		FROM model_usage WHERE created_at >= ?
		ORDER BY created_at, rowid
	`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying usage: %w", err)
	}
	defer rows.Close()

	var records []domain.UsageRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.UsageRecord
		var op string
		if err := rows.Scan(&r.ID, &op, &r.ModelName, &r.PromptTokens, &r.CompletionTokens,
			&r.TotalTokens, &r.EstimatedCost, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning usage: %w", err)
		}
		r.OperationType = domain.OperationType(op)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage: %w", err)
	}
	return records, nil
}
