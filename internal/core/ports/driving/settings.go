package driving

import "github.com/custodia-labs/paperqa/internal/core/domain"

// SettingsService reads and writes the persisted AppSettings. Every write
// is checked against the struct tags and provider rules before it is saved.
type SettingsService interface {
	// Get merges stored values over the defaults.
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// Set parses value for a dotted key such as "chunking.size" and saves.
	// Unknown keys return domain.ErrInvalidInput.
	Set(key, value string) error
	// Keys lists the keys Set accepts, sorted.
	Keys() []string

	// SetEmbeddingProvider rejects providers without an embeddings API.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	Validate() error
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig and ValidateLLMConfig contact the configured
	// provider. They return nil when no provider is set.
	ValidateEmbeddingConfig() error
	ValidateLLMConfig() error
}
