package cached

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder returns a vector derived from text length and counts texts sent.
type countingEmbedder struct {
	sent   []string
	err    error
	closed bool
}

func (m *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, text)
	return []float32{float32(len(text))}, nil
}

func (m *countingEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		m.sent = append(m.sent, t)
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (m *countingEmbedder) Dimensions() int              { return 1 }
func (m *countingEmbedder) ModelName() string            { return "counting" }
func (m *countingEmbedder) Ping(_ context.Context) error { return nil }
func (m *countingEmbedder) Close() error {
	m.closed = true
	return nil
}

func TestNew_NilInner(t *testing.T) {
	svc, err := New(nil, 10)
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestEmbed_HitsCache(t *testing.T) {
	inner := &countingEmbedder{}
	svc, err := New(inner, 10)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.Embed(ctx, "query")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "query")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"query"}, inner.sent)
}

func TestEmbedBatch_OnlyMissesSent(t *testing.T) {
	inner := &countingEmbedder{}
	svc, err := New(inner, 10)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = svc.Embed(ctx, "bb")
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(ctx, []string{"a", "bb", "ccc"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{1}, {2}, {3}}, vecs)
	assert.Equal(t, []string{"bb", "a", "ccc"}, inner.sent)
	assert.Equal(t, 3, svc.(*EmbeddingService).Len())
}

func TestEmbed_ErrorNotCached(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("down")}
	svc, err := New(inner, 10)
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, 0, svc.(*EmbeddingService).Len())
}

func TestEviction(t *testing.T) {
	inner := &countingEmbedder{}
	svc, err := New(inner, 2)
	require.NoError(t, err)

	ctx := context.Background()
	for _, q := range []string{"a", "b", "c", "a"} {
		_, err := svc.Embed(ctx, q)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c", "a"}, inner.sent)
}

func TestClose(t *testing.T) {
	inner := &countingEmbedder{}
	svc, err := New(inner, 2)
	require.NoError(t, err)
	_, _ = svc.Embed(context.Background(), "x")

	require.NoError(t, svc.Close())
	assert.True(t, inner.closed)
	assert.Equal(t, 0, svc.(*EmbeddingService).Len())
}
