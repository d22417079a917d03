package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".paperqa")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".paperqa", "config.toml"), store.Path())
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	require.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "llama3.2"))
	require.NoError(t, store.Set("retrieval.top_k", 7))
	require.NoError(t, store.Set("rate_limit.requests_per_second", 2.5))
	require.NoError(t, store.Set("feature.enabled", true))

	assert.Equal(t, "llama3.2", store.GetString("llm.model"))
	assert.Equal(t, 7, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 2.5, store.GetFloat("rate_limit.requests_per_second"), 1e-9)
	assert.True(t, store.GetBool("feature.enabled"))

	assert.Equal(t, "", store.GetString("retrieval.top_k"), "wrong type")
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("llm.model"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, store.Set("chunking.size", 800))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[embedding]")
	assert.NotContains(t, string(raw), `"embedding.provider"`)

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", reloaded.GetString("embedding.provider"))
	assert.Equal(t, "nomic-embed-text", reloaded.GetString("embedding.model"))
	assert.Equal(t, 800, reloaded.GetInt("chunking.size"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EnvOverride(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("retrieval.top_k", 5))

	t.Setenv("PAPERQA_RETRIEVAL_TOP_K", "9")
	t.Setenv("PAPERQA_RATE_LIMIT_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("PAPERQA_LLM_PROVIDER", "anthropic")

	assert.Equal(t, 9, store.GetInt("retrieval.top_k"))
	assert.InDelta(t, 0.5, store.GetFloat("rate_limit.requests_per_second"), 1e-9)
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "PAPERQA_EMBEDDING_API_KEY", EnvKey("embedding.api_key"))
}

func TestConfigStore_LoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("chunking.size", n)
			_ = store.GetInt("chunking.size")
		}(i)
	}
	wg.Wait()
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"top":   true,
	})

	assert.Equal(t, map[string]any{
		"a":   map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"top": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b": 1, "a.c.d": "x", "top": true}, flattenMap(nested, ""))
}
