package mcp

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// mockPaperService is a mock implementation of driving.PaperService.
type mockPaperService struct {
	papers []domain.Paper
	paper  *domain.Paper
	err    error
}

func (m *mockPaperService) AddPaper(_ context.Context, _, _ string) (*domain.Paper, error) {
	return m.paper, m.err
}

func (m *mockPaperService) Process(_ context.Context, _ string) (*domain.Paper, error) {
	return m.paper, m.err
}

func (m *mockPaperService) Reindex(_ context.Context, _ string) (*domain.Paper, error) {
	return m.paper, m.err
}

func (m *mockPaperService) Get(_ context.Context, _ string) (*domain.Paper, error) {
	return m.paper, m.err
}

func (m *mockPaperService) List(_ context.Context) ([]domain.Paper, error) {
	return m.papers, m.err
}

func (m *mockPaperService) Chunks(_ context.Context, _ string) ([]domain.ChunkRecord, error) {
	return nil, m.err
}

func (m *mockPaperService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer   *domain.Answer
	messages []domain.Message
	err      error

	started       []string
	askedIn       string
	askedQuestion string
}

func (m *mockChatService) StartConversation(_ context.Context, paperID, _ string) (*domain.Conversation, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.started = append(m.started, paperID)
	return &domain.Conversation{ID: "conv-new", PaperID: paperID}, nil
}

func (m *mockChatService) Ask(_ context.Context, conversationID, question string, _ int) (*domain.Answer, error) {
	m.askedIn = conversationID
	m.askedQuestion = question
	return m.answer, m.err
}

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.Message, error) {
	return m.messages, m.err
}

func (m *mockChatService) SuggestQuestions(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	results    []domain.RetrievedResult
	err        error
	collection string
	filter     domain.MetadataFilter
}

func (m *mockIndexService) Embed(_ context.Context, _ []string) ([][]float32, error) {
	return nil, m.err
}

func (m *mockIndexService) CreateCollection(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIndexService) IndexChunks(_ context.Context, _ string, _ []domain.Chunk) ([]string, error) {
	return nil, m.err
}

func (m *mockIndexService) Search(
	_ context.Context,
	name, _ string,
	_ int,
	filter domain.MetadataFilter,
) ([]domain.RetrievedResult, error) {
	m.collection = name
	m.filter = filter
	return m.results, m.err
}

func (m *mockIndexService) DeleteCollection(_ context.Context, _ string) bool {
	return true
}

// mockSummarizationService is a mock implementation of driving.SummarizationService.
type mockSummarizationService struct {
	summary  string
	strategy domain.SummaryStrategy
	maxLen   int
}

func (m *mockSummarizationService) Summarize(
	_ context.Context,
	_ string,
	maxLength, _ int,
	strategy domain.SummaryStrategy,
) string {
	m.maxLen = maxLength
	m.strategy = strategy
	return m.summary
}

func (m *mockSummarizationService) GenerateMultiLengthSummaries(_ context.Context, _ string) domain.Summaries {
	return domain.Summaries{}
}

func (m *mockSummarizationService) ExtractKeyInsights(_ context.Context, _ string) domain.KeyInsights {
	return domain.EmptyKeyInsights()
}

func readyPaper() *domain.Paper {
	return &domain.Paper{
		ID:             "paper-1",
		Title:          "Attention Is All You Need",
		Status:         domain.PaperStatusReady,
		FullText:       "The Transformer relies entirely on attention.",
		ShortSummary:   "short",
		MediumSummary:  "medium",
		LongSummary:    "long",
		CollectionName: "paper_paper-1",
	}
}
