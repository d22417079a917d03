package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType identifies the kind of model invocation.
type OperationType string

// Operation types.
const (
	OperationSummarization      OperationType = "summarization"
	OperationQA                 OperationType = "qa"
	OperationEmbedding          OperationType = "embedding"
	OperationKeyInsight         OperationType = "key_insight"
	OperationQuestionSuggestion OperationType = "question_suggestion"
)

// UsageRecord accounts for a single model invocation.
type UsageRecord struct {
	ID               string          `json:"id"`
	OperationType    OperationType   `json:"operation_type" validate:"required"`
	ModelName        string          `json:"model_name" validate:"required"`
	PromptTokens     int             `json:"prompt_tokens" validate:"gte=0"`
	CompletionTokens int             `json:"completion_tokens" validate:"gte=0"`
	TotalTokens      int             `json:"total_tokens" validate:"gte=0"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ModelPrice is the cost per thousand tokens for a model.
type ModelPrice struct {
	Prompt     decimal.Decimal
	Completion decimal.Decimal
}

// ModelPrices returns known prices per thousand tokens.
// Models not listed, including every local model, cost nothing.
func ModelPrices() map[string]ModelPrice {
	return map[string]ModelPrice{
		"gpt-4o-mini": {
			Prompt:     decimal.RequireFromString("0.00015"),
			Completion: decimal.RequireFromString("0.0006"),
		},
		"gpt-4o": {
			Prompt:     decimal.RequireFromString("0.0025"),
			Completion: decimal.RequireFromString("0.01"),
		},
		"text-embedding-3-small": {
			Prompt: decimal.RequireFromString("0.00002"),
		},
		"text-embedding-3-large": {
			Prompt: decimal.RequireFromString("0.00013"),
		},
		"claude-3-5-sonnet-latest": {
			Prompt:     decimal.RequireFromString("0.003"),
			Completion: decimal.RequireFromString("0.015"),
		},
	}
}

// EstimateCost prices a call, rounded to six decimal places.
func EstimateCost(model string, promptTokens, completionTokens int) decimal.Decimal {
	price, ok := ModelPrices()[model]
	if !ok {
		return decimal.Zero
	}
	thousand := decimal.NewFromInt(1000)
	cost := price.Prompt.Mul(decimal.NewFromInt(int64(promptTokens))).Div(thousand).
		Add(price.Completion.Mul(decimal.NewFromInt(int64(completionTokens))).Div(thousand))
	return cost.Round(6)
}

// NewUsageRecord builds a record with totals and cost filled in.
func NewUsageRecord(op OperationType, model string, promptTokens, completionTokens int) UsageRecord {
	return UsageRecord{
		OperationType:    op,
		ModelName:        model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		EstimatedCost:    EstimateCost(model, promptTokens, completionTokens),
		CreatedAt:        time.Now(),
	}
}
