// Package ai builds the model backends named in AppSettings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/paperqa/internal/adapters/driven/embedding/cached"
	ollamaembed "github.com/custodia-labs/paperqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/paperqa/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/paperqa/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/paperqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/paperqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	// SummariserService produces abstractive summaries. Nil means the
	// extractive fallback is used.
	SummariserService driven.LLMService
	// Warnings explain every configured service that was dropped.
	Warnings []string
	FellBack bool
}

// Close closes every service that was created.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
	if r.SummariserService != nil {
		r.SummariserService.Close()
	}
}

// Initialise creates every model backend named in settings, validates
// connectivity and wraps them with rate limiting and the embedding cache.
// Unreachable services are dropped with a warning instead of failing.
func Initialise(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	limiter := ratelimit.NewLimiter(settings.RateLimit)

	embedding, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.warn(err)
	} else if embedding != nil {
		wrapped, cacheErr := cached.New(ratelimit.WrapEmbedding(embedding, limiter), cached.DefaultSize)
		if cacheErr != nil {
			embedding.Close()
			result.warn(cacheErr)
		} else {
			result.EmbeddingService = wrapped
		}
	}

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.warn(err)
	} else {
		result.LLMService = ratelimit.WrapLLM(llm, limiter)
	}

	summariser, err := CreateAndValidateLLMService(&settings.Summariser)
	if err != nil {
		result.warn(err)
	} else {
		result.SummariserService = ratelimit.WrapLLM(summariser, limiter)
	}

	return result
}

func (r *InitResult) warn(err error) {
	r.Warnings = append(r.Warnings, err.Error())
	r.FellBack = true
}

// CreateAndValidateEmbeddingService builds the configured embedder and
// pings it. It returns nil, nil when no provider is set.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	return reachable(svc, err, domain.ErrEmbeddingUnavailable)
}

// CreateAndValidateLLMService builds the configured LLM and pings it. It
// returns nil, nil when no provider is set.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	return reachable(svc, err, domain.ErrLLMUnavailable)
}

type backend interface {
	Ping(ctx context.Context) error
	Close() error
}

// reachable closes and discards svc unless it answers a ping within
// pingTimeout. Errors wrap unavailable and point at the settings command.
func reachable[S backend](svc S, err error, unavailable error) (S, error) {
	var none S
	if err != nil {
		return none, fmt.Errorf("%w: %w. Run 'paperqa settings' to fix", unavailable, err)
	}
	if any(svc) == nil {
		return none, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return none, fmt.Errorf("%w: service unreachable (%w). Run 'paperqa settings' to fix", unavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService builds an embedder without contacting it.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService builds an LLM client without contacting it.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding looks up the vector size of known models.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
