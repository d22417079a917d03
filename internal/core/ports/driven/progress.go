package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// ProgressReporter receives task updates after each pipeline stage.
// Callers log a returned error and carry on.
type ProgressReporter interface {
	Report(ctx context.Context, update domain.TaskUpdate) error
}

// TaskStore reads back reported task updates.
type TaskStore interface {
	ProgressReporter

	// ListTasks returns the latest update of each task of a paper.
	ListTasks(ctx context.Context, paperID string) ([]domain.TaskUpdate, error)
}

// UsageRecorder accounts for model invocations.
// Callers log a returned error and carry on.
type UsageRecorder interface {
	Record(ctx context.Context, rec domain.UsageRecord) error
}

// UsageStore reads back recorded usage.
type UsageStore interface {
	UsageRecorder

	// ListUsage returns records created at or after since, oldest first.
	ListUsage(ctx context.Context, since time.Time) ([]domain.UsageRecord, error)
}

// TokenCounter estimates the number of tokens a model sees for text.
type TokenCounter interface {
	Count(text string) int
}
