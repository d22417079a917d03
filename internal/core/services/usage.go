package services

import (
	"context"
	"unicode/utf8"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// usageMeter records model calls. A nil recorder disables recording and a
// nil counter counts characters.
type usageMeter struct {
	recorder driven.UsageRecorder
	counter  driven.TokenCounter
}

// count returns the token count of text.
func (m usageMeter) count(text string) int {
	if m.counter == nil {
		return utf8.RuneCountInString(text)
	}
	return m.counter.Count(text)
}

// record stores a usage record for one call. Failures are logged.
func (m usageMeter) record(ctx context.Context, op domain.OperationType, model, prompt, completion string) {
	if m.recorder == nil {
		return
	}
	rec := domain.NewUsageRecord(op, model, m.count(prompt), m.count(completion))
	if err := m.recorder.Record(ctx, rec); err != nil {
		logger.Warn("record %s usage for %s: %v", op, model, err)
	}
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
