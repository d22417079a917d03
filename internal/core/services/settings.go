package services

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keySummariserProvider = "summariser.provider"
	keySummariserModel    = "summariser.model"
	keySummariserBaseURL  = "summariser.base_url"
	keySummariserAPIKey   = "summariser.api_key"
	keyChunkSize          = "chunking.size"
	keyChunkOverlap       = "chunking.overlap"
	keyChunkStrategy      = "chunking.strategy"
	keyVectorProvider     = "vector_store.provider"
	keyVectorURL          = "vector_store.url"
	keyVectorAPIKey       = "vector_store.api_key"
	keyRetrievalTopK      = "retrieval.top_k"
	keyRateRPS            = "rate_limit.requests_per_second"
	keyRateBurst          = "rate_limit.burst"
	keyRateBackoff        = "rate_limit.backoff_seconds"
)

// settingSetters apply a single string value to settings, keyed by config key.
var settingSetters = map[string]func(*domain.AppSettings, string) error{
	keyEmbedProvider: func(s *domain.AppSettings, v string) error {
		s.Embedding.Provider = domain.AIProvider(v)
		return nil
	},
	keyEmbedModel:   func(s *domain.AppSettings, v string) error { s.Embedding.Model = v; return nil },
	keyEmbedBaseURL: func(s *domain.AppSettings, v string) error { s.Embedding.BaseURL = v; return nil },
	keyEmbedAPIKey:  func(s *domain.AppSettings, v string) error { s.Embedding.APIKey = v; return nil },
	keyLLMProvider: func(s *domain.AppSettings, v string) error {
		s.LLM.Provider = domain.AIProvider(v)
		return nil
	},
	keyLLMModel:   func(s *domain.AppSettings, v string) error { s.LLM.Model = v; return nil },
	keyLLMBaseURL: func(s *domain.AppSettings, v string) error { s.LLM.BaseURL = v; return nil },
	keyLLMAPIKey:  func(s *domain.AppSettings, v string) error { s.LLM.APIKey = v; return nil },
	keySummariserProvider: func(s *domain.AppSettings, v string) error {
		s.Summariser.Provider = domain.AIProvider(v)
		return nil
	},
	keySummariserModel:   func(s *domain.AppSettings, v string) error { s.Summariser.Model = v; return nil },
	keySummariserBaseURL: func(s *domain.AppSettings, v string) error { s.Summariser.BaseURL = v; return nil },
	keySummariserAPIKey:  func(s *domain.AppSettings, v string) error { s.Summariser.APIKey = v; return nil },
	keyChunkSize:         intSetter(func(s *domain.AppSettings, n int) { s.Chunking.Size = n }),
	keyChunkOverlap:      intSetter(func(s *domain.AppSettings, n int) { s.Chunking.Overlap = n }),
	keyChunkStrategy: func(s *domain.AppSettings, v string) error {
		s.Chunking.Strategy = domain.ChunkStrategy(v)
		return nil
	},
	keyVectorProvider: func(s *domain.AppSettings, v string) error {
		s.VectorStore.Provider = domain.VectorStoreProvider(v)
		return nil
	},
	keyVectorURL:     func(s *domain.AppSettings, v string) error { s.VectorStore.URL = v; return nil },
	keyVectorAPIKey:  func(s *domain.AppSettings, v string) error { s.VectorStore.APIKey = v; return nil },
	keyRetrievalTopK: intSetter(func(s *domain.AppSettings, n int) { s.Retrieval.TopK = n }),
	keyRateRPS: func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", domain.ErrInvalidInput, v)
		}
		s.RateLimit.RequestsPerSecond = f
		return nil
	},
	keyRateBurst:   intSetter(func(s *domain.AppSettings, n int) { s.RateLimit.Burst = n }),
	keyRateBackoff: intSetter(func(s *domain.AppSettings, n int) { s.RateLimit.BackoffSeconds = n }),
}

func intSetter(apply func(*domain.AppSettings, int)) func(*domain.AppSettings, string) error {
	return func(s *domain.AppSettings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, v)
		}
		apply(s, n)
		return nil
	}
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, filling unset keys with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Summariser: domain.LLMSettings{
			Provider: s.getProvider(keySummariserProvider, defaults.Summariser.Provider),
			Model:    s.configStore.GetString(keySummariserModel),
			BaseURL:  s.configStore.GetString(keySummariserBaseURL),
			APIKey:   s.configStore.GetString(keySummariserAPIKey),
		},
		Chunking: domain.ChunkingSettings{
			Size:     s.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap:  s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
			Strategy: s.getChunkStrategy(defaults.Chunking.Strategy),
		},
		VectorStore: domain.VectorStoreSettings{
			Provider: s.getVectorProvider(defaults.VectorStore.Provider),
			URL:      s.configStore.GetString(keyVectorURL),
			APIKey:   s.configStore.GetString(keyVectorAPIKey),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyRetrievalTopK, defaults.Retrieval.TopK),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(keyRateRPS, defaults.RateLimit.RequestsPerSecond),
			Burst:             s.getInt(keyRateBurst, defaults.RateLimit.Burst),
			BackoffSeconds:    s.getIntAllowZero(keyRateBackoff, defaults.RateLimit.BackoffSeconds),
		},
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keySummariserProvider, settings.Summariser.Provider.String()},
		{keySummariserModel, settings.Summariser.Model},
		{keySummariserBaseURL, settings.Summariser.BaseURL},
		{keyChunkSize, settings.Chunking.Size},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyChunkStrategy, string(settings.Chunking.Strategy)},
		{keyVectorProvider, string(settings.VectorStore.Provider)},
		{keyVectorURL, settings.VectorStore.URL},
		{keyRetrievalTopK, settings.Retrieval.TopK},
		{keyRateRPS, settings.RateLimit.RequestsPerSecond},
		{keyRateBurst, settings.RateLimit.Burst},
		{keyRateBackoff, settings.RateLimit.BackoffSeconds},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// API keys are only written when set so a key held in the
	// environment is never copied into the config file.
	secrets := []struct{ key, value string }{
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
		{keySummariserAPIKey, settings.Summariser.APIKey},
		{keyVectorAPIKey, settings.VectorStore.APIKey},
	}
	for _, sec := range secrets {
		if sec.value == "" || sec.value == s.configStore.GetString(sec.key) {
			continue
		}
		if err := s.configStore.Set(sec.key, sec.value); err != nil {
			return fmt.Errorf("save %s: %w", sec.key, err)
		}
	}

	return nil
}

// Set updates a single setting by its dotted key and saves the result.
func (s *SettingsService) Set(key, value string) error {
	apply, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := apply(settings, value); err != nil {
		return err
	}
	return s.Save(settings)
}

// Keys returns every key accepted by Set, sorted.
func (s *SettingsService) Keys() []string {
	return SettingKeys()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}

	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(settings)
}

// ValidateSettings checks struct tags and provider combinations.
func ValidateSettings(settings *domain.AppSettings) error {
	if err := validateRecord(settings); err != nil {
		return err
	}
	if !settings.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, settings.LLM.Provider)
	}
	if settings.Summariser.Provider != "" && !settings.Summariser.Provider.IsValid() {
		return fmt.Errorf("%w: invalid summariser provider: %s", domain.ErrInvalidInput, settings.Summariser.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a local provider's URL, defaulting to Ollama's port.
// Cloud providers use their built-in endpoint.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getChunkStrategy(defaultVal domain.ChunkStrategy) domain.ChunkStrategy {
	strategy := domain.ChunkStrategy(s.configStore.GetString(keyChunkStrategy))
	if !strategy.IsValid() {
		return defaultVal
	}
	return strategy
}

func (s *SettingsService) getVectorProvider(defaultVal domain.VectorStoreProvider) domain.VectorStoreProvider {
	provider := domain.VectorStoreProvider(s.configStore.GetString(keyVectorProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
