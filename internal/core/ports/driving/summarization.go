package driving

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// SummarizationService summarises paper text.
type SummarizationService interface {
	// Summarize returns a summary of at most maxLength words.
	Summarize(ctx context.Context, text string, maxLength, minLength int, strategy domain.SummaryStrategy) string

	// GenerateMultiLengthSummaries returns short, medium and long summaries.
	GenerateMultiLengthSummaries(ctx context.Context, text string) domain.Summaries

	// ExtractKeyInsights returns structured insights, or empty defaults on failure.
	ExtractKeyInsights(ctx context.Context, text string) domain.KeyInsights
}
