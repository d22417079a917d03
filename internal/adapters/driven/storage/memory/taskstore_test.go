package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func TestTaskStore_KeepsLatestPerTask(t *testing.T) {
	store := NewTaskStore()
	ctx := context.Background()

	require.NoError(t, store.Report(ctx, domain.TaskUpdate{ID: "t1", PaperID: "p1", Type: domain.TaskTypePDFExtraction, Status: domain.TaskStatusProcessing}))
	require.NoError(t, store.Report(ctx, domain.TaskUpdate{ID: "t2", PaperID: "p1", Type: domain.TaskTypeEmbedding, Status: domain.TaskStatusPending}))
	require.NoError(t, store.Report(ctx, domain.TaskUpdate{ID: "t1", PaperID: "p1", Type: domain.TaskTypePDFExtraction, Status: domain.TaskStatusComplete, ProgressPercentage: 100}))
	require.NoError(t, store.Report(ctx, domain.TaskUpdate{ID: "t3", PaperID: "p2", Type: domain.TaskTypeEmbedding, Status: domain.TaskStatusFailed}))

	tasks, err := store.ListTasks(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.Equal(t, domain.TaskStatusComplete, tasks[0].Status)
	assert.Equal(t, 100, tasks[0].ProgressPercentage)
	assert.Equal(t, "t2", tasks[1].ID)
}

func TestUsageStore_ListSince(t *testing.T) {
	store := NewUsageStore()
	ctx := context.Background()
	now := time.Now()

	old := domain.NewUsageRecord(domain.OperationQA, "gpt-4o-mini", 100, 20)
	old.CreatedAt = now.Add(-48 * time.Hour)
	recent := domain.NewUsageRecord(domain.OperationSummarization, "gpt-4o-mini", 1000, 200)
	recent.CreatedAt = now

	require.NoError(t, store.Record(ctx, old))
	require.NoError(t, store.Record(ctx, recent))

	all, err := store.ListUsage(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	day, err := store.ListUsage(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, domain.OperationSummarization, day[0].OperationType)
	assert.True(t, day[0].EstimatedCost.GreaterThanOrEqual(decimal.Zero))
}
