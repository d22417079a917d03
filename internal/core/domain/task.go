package domain

import "time"

// TaskType identifies a stage of paper processing.
type TaskType string

// Task types.
const (
	TaskTypePDFExtraction TaskType = "pdf_extraction"
	TaskTypeSummarization TaskType = "summarization"
	TaskTypeEmbedding     TaskType = "embedding"
	TaskTypeKeyInsight    TaskType = "key_insight"
)

// TaskStatus is the state of a task.
type TaskStatus string

// Task statuses.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusComplete   TaskStatus = "complete"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskUpdate reports the progress of one processing stage.
type TaskUpdate struct {
	ID      string   `json:"id"`
	PaperID string   `json:"paper_id" validate:"required"`
	Type    TaskType `json:"task_type" validate:"required,oneof=pdf_extraction summarization embedding key_insight"`

	Status TaskStatus `json:"status" validate:"required,oneof=pending processing complete failed"`

	// ProgressPercentage is between 0 and 100.
	ProgressPercentage int `json:"progress_percentage" validate:"gte=0,lte=100"`

	ErrorMessage string         `json:"error_message,omitempty"`
	Result       map[string]any `json:"result,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
