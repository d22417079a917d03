package ratelimit

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// LLMService rate limits calls to an inner LLM.
type LLMService struct {
	inner   driven.LLMService
	limiter *Limiter
}

// WrapLLM returns inner guarded by limiter. A nil inner stays nil so that
// callers can keep treating a missing LLM as absent.
func WrapLLM(inner driven.LLMService, limiter *Limiter) driven.LLMService {
	if inner == nil {
		return nil
	}
	return &LLMService{inner: inner, limiter: limiter}
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.inner.Generate(ctx, prompt, opts)
	s.limiter.RecordUnavailable(err)
	return out, err
}

func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.inner.Chat(ctx, messages, opts)
	s.limiter.RecordUnavailable(err)
	return out, err
}

func (s *LLMService) Summarise(ctx context.Context, content string, maxLength, minLength int) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.inner.Summarise(ctx, content, maxLength, minLength)
	s.limiter.RecordUnavailable(err)
	return out, err
}

func (s *LLMService) ModelName() string { return s.inner.ModelName() }

// Ping is not rate limited.
func (s *LLMService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

func (s *LLMService) Close() error { return s.inner.Close() }
