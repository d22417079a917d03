package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService with bag-of-words
// vectors, so texts sharing words are close.
type mockEmbedder struct {
	mu       sync.Mutex
	err      error
	failures int // number of calls that fail before succeeding
	calls    int
}

const mockDims = 256

func embedWords(text string) []float32 {
	v := make([]float32, mockDims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,:;?!()")))
		v[h.Sum32()%mockDims]++
	}
	return v
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return nil, fmt.Errorf("embed: %w", domain.ErrEmbeddingUnavailable)
	}
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedWords(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return mockDims }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockLLM implements driven.LLMService, recording prompts.
type mockLLM struct {
	mu         sync.Mutex
	response   string
	respond    func(prompt string) string
	err        error
	summary    string
	summaryErr error
	prompts    []string
	opts       []driven.GenerateOptions
	summarised []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	if m.respond != nil {
		return m.respond(prompt), nil
	}
	return m.response, nil
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.Generate(ctx, messages[len(messages)-1].Content, driven.GenerateOptions{})
}

func (m *mockLLM) Summarise(_ context.Context, content string, _, _ int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summarised = append(m.summarised, content)
	if m.summaryErr != nil {
		return "", m.summaryErr
	}
	return m.summary, nil
}

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPrompts implements driven.PromptStore with fixed templates.
type mockPrompts struct {
	err error
}

var testPrompts = map[string]string{
	driven.PromptAnswer:           "History:\n%s\n\nContext:\n%s\n\nQuestion: %s\nAnswer:",
	driven.PromptSummarise:        "Summarize in %s.\n\n%s\n\nSummary:",
	driven.PromptKeyInsights:      "Extract JSON insights.\n\n%s\n\nJSON output:",
	driven.PromptSuggestQuestions: "Suggest questions.\n\n%s\n\nQuestions:",
}

func (m *mockPrompts) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := testPrompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPrompts) Reload() {}

// mockReporter implements driven.ProgressReporter.
type mockReporter struct {
	mu      sync.Mutex
	updates []domain.TaskUpdate
}

func (m *mockReporter) Report(_ context.Context, update domain.TaskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
	return nil
}

// last returns the final update of each task type.
func (m *mockReporter) last() map[domain.TaskType]domain.TaskUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.TaskType]domain.TaskUpdate)
	for _, u := range m.updates {
		out[u.Type] = u
	}
	return out
}

// mockUsage implements driven.UsageRecorder.
type mockUsage struct {
	mu      sync.Mutex
	records []domain.UsageRecord
	err     error
}

func (m *mockUsage) Record(_ context.Context, rec domain.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return m.err
}

// mockCounter implements driven.TokenCounter by counting words.
type mockCounter struct{}

func (mockCounter) Count(text string) int { return len(strings.Fields(text)) }

// mockExtractor implements driven.Extractor.
type mockExtractor struct {
	doc   *domain.ExtractedDocument
	err   error
	paths []string
}

func (m *mockExtractor) Extract(_ context.Context, path string) (*domain.ExtractedDocument, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func (m *mockExtractor) ExtractWithTables(ctx context.Context, path string) (*domain.ExtractedDocument, error) {
	return m.Extract(ctx, path)
}
