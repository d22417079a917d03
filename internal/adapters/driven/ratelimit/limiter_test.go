package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

func TestNewLimiter_UnlimitedByDefault(t *testing.T) {
	l := NewLimiter(domain.RateLimitSettings{})
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow())
	}
}

func TestLimiter_Burst(t *testing.T) {
	l := NewLimiter(domain.RateLimitSettings{RequestsPerSecond: 0.001, Burst: 2})

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := NewLimiter(domain.RateLimitSettings{RequestsPerSecond: 0.001, Burst: 1})
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, l.Wait(ctx))
}

func TestLimiter_RecordUnavailable(t *testing.T) {
	l := NewLimiter(domain.RateLimitSettings{BackoffSeconds: 60})

	l.RecordUnavailable(fmt.Errorf("bad request"))
	assert.True(t, l.Allow(), "non-retryable errors do not back off")

	l.RecordUnavailable(fmt.Errorf("x: %w", domain.ErrLLMUnavailable))
	assert.False(t, l.Allow())
}

type stubLLM struct {
	calls int
	err   error
}

func (s *stubLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	s.calls++
	return "gen", s.err
}

func (s *stubLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	s.calls++
	return "chat", s.err
}

func (s *stubLLM) Summarise(context.Context, string, int, int) (string, error) {
	s.calls++
	return "sum", s.err
}

func (s *stubLLM) ModelName() string          { return "stub" }
func (s *stubLLM) Ping(context.Context) error { return nil }
func (s *stubLLM) Close() error               { return nil }

func TestWrapLLM(t *testing.T) {
	assert.Nil(t, WrapLLM(nil, NewLimiter(domain.RateLimitSettings{})))

	inner := &stubLLM{}
	svc := WrapLLM(inner, NewLimiter(domain.RateLimitSettings{}))
	ctx := context.Background()

	out, err := svc.Generate(ctx, "p", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "gen", out)

	out, err = svc.Summarise(ctx, "c", 10, 5)
	require.NoError(t, err)
	assert.Equal(t, "sum", out)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "stub", svc.ModelName())
}

func TestWrapLLM_CancelledContextSkipsCall(t *testing.T) {
	inner := &stubLLM{}
	svc := WrapLLM(inner, NewLimiter(domain.RateLimitSettings{RequestsPerSecond: 0.001, Burst: 1}))

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Chat(ctx, nil, driven.ChatOptions{})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

type stubEmbedder struct{ batches int }

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) { return []float32{1}, nil }
func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.batches++
	return make([][]float32, len(texts)), nil
}
func (s *stubEmbedder) Dimensions() int            { return 1 }
func (s *stubEmbedder) ModelName() string          { return "stub-embed" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

func TestWrapEmbedding(t *testing.T) {
	assert.Nil(t, WrapEmbedding(nil, NewLimiter(domain.RateLimitSettings{})))

	inner := &stubEmbedder{}
	svc := WrapEmbedding(inner, NewLimiter(domain.RateLimitSettings{}))

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)
	assert.Equal(t, 1, inner.batches)
	assert.Equal(t, 1, svc.Dimensions())
}
