package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

type probeEmbedder struct {
	dims    int
	vecLen  int
	pingErr error
	closed  bool
}

func (p *probeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return make([]float32, p.vecLen), nil
}

func (p *probeEmbedder) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, nil
}

func (p *probeEmbedder) Dimensions() int            { return p.dims }
func (p *probeEmbedder) ModelName() string          { return "probe-model" }
func (p *probeEmbedder) Ping(context.Context) error { return p.pingErr }
func (p *probeEmbedder) Close() error {
	p.closed = true
	return nil
}

type pingLLM struct {
	driven.LLMService
	pingErr error
}

func (p *pingLLM) Ping(context.Context) error { return p.pingErr }
func (p *pingLLM) Close() error               { return nil }

func validatorWith(emb *probeEmbedder, llm *pingLLM) *ConfigValidator {
	return &ConfigValidator{
		timeout: time.Second,
		newEmbeddings: func(*domain.EmbeddingSettings) (driven.EmbeddingService, error) {
			return emb, nil
		},
		newLLM: func(*domain.LLMSettings) (driven.LLMService, error) {
			return llm, nil
		},
	}
}

var ollamaEmbedding = &domain.EmbeddingSettings{Provider: domain.AIProviderOllama, Model: "nomic-embed-text"}

func TestConfigValidator_Unconfigured(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "m"}))
	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Provider: "unknown"}))
}

func TestConfigValidator_AnthropicHasNoEmbeddings(t *testing.T) {
	err := NewConfigValidator().ValidateEmbedding(&domain.EmbeddingSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "k",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic does not support embeddings")
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		emb     *probeEmbedder
		wantErr error
	}{
		{name: "matching size", emb: &probeEmbedder{dims: 4, vecLen: 4}},
		{name: "size mismatch", emb: &probeEmbedder{dims: 768, vecLen: 384}, wantErr: domain.ErrInvalidInput},
		{name: "unreachable", emb: &probeEmbedder{pingErr: domain.ErrEmbeddingUnavailable}, wantErr: domain.ErrEmbeddingUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatorWith(tt.emb, nil).ValidateEmbedding(ollamaEmbedding)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.True(t, tt.emb.closed)
		})
	}
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	settings := &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.2"}

	require.NoError(t, validatorWith(nil, &pingLLM{}).ValidateLLM(settings))

	down := errors.New("connection refused")
	require.ErrorIs(t, validatorWith(nil, &pingLLM{pingErr: down}).ValidateLLM(settings), down)
}
