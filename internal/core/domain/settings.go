package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"required"`

	// Model is the embedding model name.
	Model string `validate:"required"`

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string `validate:"omitempty,url"`

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkStrategy selects how extracted text is split into chunks.
type ChunkStrategy string

// Chunk strategies.
const (
	// ChunkStrategyRecursive splits the full text with the recursive splitter.
	ChunkStrategyRecursive ChunkStrategy = "recursive"

	// ChunkStrategySections splits each detected section independently.
	ChunkStrategySections ChunkStrategy = "sections"

	// ChunkStrategySmart accumulates paragraphs and tags page numbers.
	ChunkStrategySmart ChunkStrategy = "smart"
)

// IsValid returns true if the strategy is recognised.
func (s ChunkStrategy) IsValid() bool {
	switch s {
	case ChunkStrategyRecursive, ChunkStrategySections, ChunkStrategySmart:
		return true
	default:
		return false
	}
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	// Size is the maximum characters per chunk.
	Size int `validate:"gt=0"`

	// Overlap is the characters shared between consecutive chunks.
	Overlap int `validate:"gte=0,ltfield=Size"`

	Strategy ChunkStrategy `validate:"required,oneof=recursive sections smart"`
}

// VectorStoreProvider identifies a vector store backend.
type VectorStoreProvider string

// Vector store providers.
const (
	VectorStoreSQLite VectorStoreProvider = "sqlite"
	VectorStoreMemory VectorStoreProvider = "memory"
	VectorStoreQdrant VectorStoreProvider = "qdrant"
)

// IsValid returns true if the provider is recognised.
func (p VectorStoreProvider) IsValid() bool {
	switch p {
	case VectorStoreSQLite, VectorStoreMemory, VectorStoreQdrant:
		return true
	default:
		return false
	}
}

// VectorStoreSettings configures the vector store.
type VectorStoreSettings struct {
	Provider VectorStoreProvider `validate:"required,oneof=sqlite memory qdrant"`

	// URL is the Qdrant endpoint.
	URL string `validate:"required_if=Provider qdrant,omitempty,url"`

	// APIKey is sent to Qdrant when set.
	APIKey string
}

// RetrievalSettings configures question answering retrieval.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `validate:"gt=0,lte=50"`
}

// RateLimitSettings bounds calls to model backends.
type RateLimitSettings struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64 `validate:"gte=0"`

	// Burst is the number of calls allowed at once.
	Burst int `validate:"gte=0"`

	// BackoffSeconds pauses all calls after a backend reports it is
	// overloaded. Zero disables the pause.
	BackoffSeconds int `validate:"gte=0"`
}

// Backoff returns BackoffSeconds as a duration.
func (r RateLimitSettings) Backoff() time.Duration {
	return time.Duration(r.BackoffSeconds) * time.Second
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds the provider used for answers, insights and LLM summaries.
	LLM LLMSettings

	// Summariser holds the provider used for abstractive summaries.
	// When unconfigured, summaries use the extractive fallback.
	Summariser LLMSettings

	Chunking ChunkingSettings

	VectorStore VectorStoreSettings

	Retrieval RetrievalSettings

	RateLimit RateLimitSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Embedding and LLM default to a local Ollama instance.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModels()[AIProviderOllama],
		},
		// Summariser is left unconfigured
		Summariser: LLMSettings{},
		Chunking: ChunkingSettings{
			Size:     1000,
			Overlap:  200,
			Strategy: ChunkStrategySmart,
		},
		VectorStore: VectorStoreSettings{
			Provider: VectorStoreSQLite,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		RateLimit: RateLimitSettings{
			RequestsPerSecond: 0,
			Burst:             1,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
