package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperqa/internal/core/domain"
)

type stubValidator struct {
	embedErr error
	llmErr   error
	embedded *domain.EmbeddingSettings
	llm      *domain.LLMSettings
}

func (v *stubValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	v.embedded = cfg
	return v.embedErr
}

func (v *stubValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	v.llm = cfg
	return v.llmErr
}

func TestSettingsService_GetReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
	assert.Equal(t, defaults, service.GetDefaults())
}

func TestSettingsService_GetReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("chunking.size", 1500)
	_ = store.Set("chunking.overlap", 0)
	_ = store.Set("chunking.strategy", "sections")
	_ = store.Set("vector_store.provider", "qdrant")
	_ = store.Set("vector_store.url", "http://localhost:6333")
	_ = store.Set("retrieval.top_k", 8)
	_ = store.Set("rate_limit.requests_per_second", 2.5)

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, 1500, settings.Chunking.Size)
	assert.Equal(t, 0, settings.Chunking.Overlap)
	assert.Equal(t, domain.ChunkStrategySections, settings.Chunking.Strategy)
	assert.Equal(t, domain.VectorStoreQdrant, settings.VectorStore.Provider)
	assert.Equal(t, "http://localhost:6333", settings.VectorStore.URL)
	assert.Equal(t, 8, settings.Retrieval.TopK)
	assert.Equal(t, 2.5, settings.RateLimit.RequestsPerSecond)
}

func TestSettingsService_GetInvalidValuesReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")
	_ = store.Set("chunking.strategy", "paragraphs")
	_ = store.Set("vector_store.provider", "chroma")

	settings, err := NewSettingsService(store, nil).Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Chunking.Strategy, settings.Chunking.Strategy)
	assert.Equal(t, defaults.VectorStore.Provider, settings.VectorStore.Provider)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.LLM = domain.LLMSettings{Provider: domain.AIProviderAnthropic, Model: "claude-3-5-sonnet-latest", APIKey: "sk-ant"}
	settings.Chunking.Size = 800
	settings.Chunking.Overlap = 100
	settings.Retrieval.TopK = 3
	settings.RateLimit.BackoffSeconds = 4

	require.NoError(t, service.Save(&settings))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *got)
	assert.Equal(t, "sk-ant", store.GetString("llm.api_key"))
}

func TestSettingsService_SaveKeepsStoredAPIKey(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.api_key", "sk-existing")
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	require.NoError(t, service.Save(&settings))
	assert.Equal(t, "sk-existing", store.GetString("embedding.api_key"))
}

func TestSettingsService_SaveRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.AppSettings)
	}{
		{"overlap not below size", func(s *domain.AppSettings) { s.Chunking.Overlap = s.Chunking.Size }},
		{"zero chunk size", func(s *domain.AppSettings) { s.Chunking.Size = 0 }},
		{"unknown strategy", func(s *domain.AppSettings) { s.Chunking.Strategy = "paragraphs" }},
		{"qdrant without url", func(s *domain.AppSettings) { s.VectorStore.Provider = domain.VectorStoreQdrant }},
		{"top k too large", func(s *domain.AppSettings) { s.Retrieval.TopK = 51 }},
		{"bad base url", func(s *domain.AppSettings) { s.Embedding.BaseURL = "not a url" }},
		{"unknown llm provider", func(s *domain.AppSettings) { s.LLM.Provider = "cohere" }},
		{"negative rate", func(s *domain.AppSettings) { s.RateLimit.RequestsPerSecond = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			settings := domain.DefaultAppSettings()
			tt.mutate(&settings)

			err := NewSettingsService(store, nil).Save(&settings)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			_, written := store.Get("chunking.size")
			assert.False(t, written, "nothing is written on validation failure")
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("chunking.strategy", "recursive"))
	require.NoError(t, service.Set("retrieval.top_k", "10"))
	require.NoError(t, service.Set("rate_limit.requests_per_second", "0.5"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkStrategyRecursive, settings.Chunking.Strategy)
	assert.Equal(t, 10, settings.Retrieval.TopK)
	assert.Equal(t, 0.5, settings.RateLimit.RequestsPerSecond)

	assert.ErrorIs(t, service.Set("search.mode", "hybrid"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("retrieval.top_k", "many"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.Set("chunking.overlap", "5000"), domain.ErrInvalidInput)
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()
	assert.Contains(t, keys, "chunking.strategy")
	assert.Contains(t, keys, "vector_store.provider")
	assert.IsIncreasing(t, keys)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "sk-test"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Empty(t, settings.Embedding.BaseURL)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "mxbai-embed-large", ""))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "mxbai-embed-large", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)

	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key"), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, service.SetEmbeddingProvider("bogus", "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant"))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderAnthropic, settings.LLM.Provider)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)

	assert.ErrorIs(t, service.SetLLMProvider(domain.AIProviderOpenAI, "", ""), domain.ErrInvalidInput)
}

func TestSettingsService_ValidateConfigs(t *testing.T) {
	assert.NoError(t, NewSettingsService(memory.NewConfigStore(), nil).ValidateEmbeddingConfig())

	validator := &stubValidator{llmErr: errors.New("unreachable")}
	service := NewSettingsService(memory.NewConfigStore(), validator)

	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.embedded)
	assert.Equal(t, domain.AIProviderOllama, validator.embedded.Provider)

	assert.EqualError(t, service.ValidateLLMConfig(), "unreachable")
	assert.NoError(t, service.Validate())
}
