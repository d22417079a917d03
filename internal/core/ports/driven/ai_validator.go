package driven

import "github.com/custodia-labs/paperqa/internal/core/domain"

// AIConfigValidator checks model settings against the live provider before
// SettingsService accepts them. Unconfigured settings are valid.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
}
