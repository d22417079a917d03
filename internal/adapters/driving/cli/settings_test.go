package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

func TestSettingsShow(t *testing.T) {
	t.Run("prints sections", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		out := mustExecute(t, "settings", "show")

		assert.Contains(t, out, "[Embedding]")
		assert.Contains(t, out, "Ollama (local)")
		assert.Contains(t, out, "Provider: same as LLM")
		assert.Contains(t, out, "Strategy: smart")
		assert.Contains(t, out, "Provider: sqlite")
		assert.Contains(t, out, "Top K: 5")
		assert.Contains(t, out, "Requests/s: unlimited")
		assert.Contains(t, out, "Configuration is valid.")
	})

	t.Run("json masks keys", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.settings.LLM.APIKey = "sk-1234567890abcdef"

		out := mustExecute(t, "settings", "--json")

		var got domain.AppSettings
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "sk-1...cdef", got.LLM.APIKey)
		assert.Empty(t, got.Embedding.APIKey)
	})

	t.Run("invalid configuration warns", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		SetServices(Services{Settings: &failingValidateSettings{mockSettingsService: ts.settings}})

		out := mustExecute(t, "settings")
		assert.Contains(t, out, "Warning: missing API key")
	})
}

type failingValidateSettings struct {
	*mockSettingsService
}

func (f *failingValidateSettings) Validate() error {
	return errors.New("missing API key")
}

func TestSettingsSet(t *testing.T) {
	t.Run("sets key", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		out := mustExecute(t, "settings", "set", "chunking.strategy", "sections")

		assert.Equal(t, "sections", ts.settings.set["chunking.strategy"])
		assert.Contains(t, out, "Set chunking.strategy")
	})

	t.Run("requires key and value", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := execute(t, "settings", "set", "chunking.size")
		require.Error(t, err)
	})

	t.Run("rejected value", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.err = domain.ErrInvalidInput

		_, err := execute(t, "settings", "set", "chunking.size", "-1")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestSettingsKeys(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out := mustExecute(t, "settings", "keys")
	assert.Equal(t, "chunking.size\nretrieval.top_k\n", out)
}

func TestSettingsWizard(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("1\n\n1\nllama3.1\n2\n\n"))
	defer rootCmd.SetIn(nil)

	out := mustExecute(t, "settings", "wizard")

	assert.Equal(t, domain.AIProviderOllama, ts.settings.settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", ts.settings.settings.Embedding.Model)
	assert.Equal(t, "llama3.1", ts.settings.settings.LLM.Model)
	assert.Equal(t, "qdrant", ts.settings.set["vector_store.provider"])
	assert.Equal(t, "http://localhost:6333", ts.settings.set["vector_store.url"])
	assert.Contains(t, out, "Configuration Complete!")
}

func TestSettingsEmbedding_RequiresAPIKey(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("2\n\n\n"))
	defer rootCmd.SetIn(nil)

	_, err := execute(t, "settings", "embedding")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 1},
		{"2", 2},
		{"0", 1},
		{"9", 1},
		{"abc", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseChoice(tt.input, 3, 1), "input %q", tt.input)
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghwxyz"))
	assert.Empty(t, maskIfSet(""))
}
