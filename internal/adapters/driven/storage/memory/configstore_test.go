package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("chunking.size", 1000))
	require.NoError(t, store.Set("chunking.overlap", int64(200)))
	require.NoError(t, store.Set("rate_limit.requests_per_second", 1.5))
	require.NoError(t, store.Set("flag", true))

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, 1000, store.GetInt("chunking.size"))
	assert.Equal(t, 200, store.GetInt("chunking.overlap"))
	assert.Equal(t, 1, store.GetInt("rate_limit.requests_per_second"))
	assert.InDelta(t, 1.5, store.GetFloat("rate_limit.requests_per_second"), 1e-9)
	assert.InDelta(t, 1000.0, store.GetFloat("chunking.size"), 1e-9)
	assert.True(t, store.GetBool("flag"))
}

func TestConfigStore_MissingAndMistyped(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("n", 3))

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("n"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("n"))
}

func TestConfigStore_NoopPersistence(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("k", n)
			_ = store.GetInt("k")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("k")
	assert.True(t, ok)
}
