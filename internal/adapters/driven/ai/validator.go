package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// probeText is embedded once to confirm the vector size a model produces.
const probeText = "paperqa dimension probe"

// ConfigValidator checks settings against the live providers before they
// are saved. An embedding model is also probed, since vectors whose size
// differs from Dimensions() cannot be stored in a collection.
type ConfigValidator struct {
	timeout       time.Duration
	newEmbeddings func(*domain.EmbeddingSettings) (driven.EmbeddingService, error)
	newLLM        func(*domain.LLMSettings) (driven.LLMService, error)
}

// NewConfigValidator returns a validator using the provider factories.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		timeout:       pingTimeout,
		newEmbeddings: CreateEmbeddingService,
		newLLM:        CreateLLMService,
	}
}

// ValidateEmbedding pings the provider and probes the vector size.
// Unconfigured settings are valid.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := v.newEmbeddings(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		return err
	}
	vec, err := svc.Embed(ctx, probeText)
	if err != nil {
		return fmt.Errorf("probe %s: %w", svc.ModelName(), err)
	}
	if len(vec) != svc.Dimensions() {
		return fmt.Errorf("%w: %s returns %d dimensions, expected %d",
			domain.ErrInvalidInput, svc.ModelName(), len(vec), svc.Dimensions())
	}
	return nil
}

// ValidateLLM pings the provider. Unconfigured settings are valid.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}
	svc, err := v.newLLM(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return svc.Ping(ctx)
}
