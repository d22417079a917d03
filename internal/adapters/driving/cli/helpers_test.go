package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

type mockPaperService struct {
	papers  []domain.Paper
	chunks  []domain.ChunkRecord
	err     error
	deleted []string

	processed []string
	reindexed []string
}

func testPaper() *domain.Paper {
	return &domain.Paper{
		ID:             "paper-1",
		Title:          "Attention Is All You Need",
		Authors:        "Vaswani et al.",
		ArxivID:        "1706.03762",
		PDFPath:        "/papers/attention.pdf",
		NumPages:       15,
		Status:         domain.PaperStatusReady,
		FullText:       "[Page 1]\nThe Transformer relies entirely on attention.",
		ShortSummary:   "A short summary.",
		MediumSummary:  "A medium summary.",
		LongSummary:    "A long summary.",
		KeyFindings:    []string{"Attention suffices"},
		Methodology:    "Self-attention",
		CollectionName: "paper_paper-1",
		NumChunks:      42,
	}
}

func (m *mockPaperService) AddPaper(_ context.Context, path, title string) (*domain.Paper, error) {
	if m.err != nil {
		return nil, m.err
	}
	if title == "" {
		title = "attention"
	}
	return &domain.Paper{ID: "paper-new", Title: title, PDFPath: path, Status: domain.PaperStatusUploading}, nil
}

func (m *mockPaperService) Process(_ context.Context, paperID string) (*domain.Paper, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.processed = append(m.processed, paperID)
	p := testPaper()
	p.ID = paperID
	return p, nil
}

func (m *mockPaperService) Reindex(_ context.Context, paperID string) (*domain.Paper, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.reindexed = append(m.reindexed, paperID)
	p := testPaper()
	p.ID = paperID
	return p, nil
}

func (m *mockPaperService) Get(_ context.Context, paperID string) (*domain.Paper, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.papers {
		if m.papers[i].ID == paperID {
			p := m.papers[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockPaperService) List(_ context.Context) ([]domain.Paper, error) {
	return m.papers, m.err
}

func (m *mockPaperService) Chunks(_ context.Context, _ string) ([]domain.ChunkRecord, error) {
	return m.chunks, m.err
}

func (m *mockPaperService) Delete(_ context.Context, paperID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, paperID)
	return nil
}

type mockChatService struct {
	answer    *domain.Answer
	messages  []domain.Message
	questions []string
	err       error

	started []string
	askedIn string
	topK    int
}

func (m *mockChatService) StartConversation(_ context.Context, paperID, _ string) (*domain.Conversation, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.started = append(m.started, paperID)
	return &domain.Conversation{ID: "conv-1", PaperID: paperID}, nil
}

func (m *mockChatService) Ask(_ context.Context, conversationID, _ string, topK int) (*domain.Answer, error) {
	m.askedIn = conversationID
	m.topK = topK
	return m.answer, m.err
}

func (m *mockChatService) History(_ context.Context, _ string) ([]domain.Message, error) {
	return m.messages, m.err
}

func (m *mockChatService) SuggestQuestions(_ context.Context, _ string) ([]string, error) {
	return m.questions, m.err
}

type mockIndexService struct {
	results    []domain.RetrievedResult
	err        error
	collection string
	topK       int
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
	topK int,
	filter domain.MetadataFilter,
) ([]domain.RetrievedResult, error) {
	m.collection = name
	m.topK = topK
	m.filter = filter
	return m.results, m.err
}

func (m *mockIndexService) DeleteCollection(_ context.Context, _ string) bool {
	return m.err == nil
}

type mockSummarizationService struct {
	summary  string
	insights domain.KeyInsights
	strategy domain.SummaryStrategy
	maxLen   int
	calls    int
}

func (m *mockSummarizationService) Summarize(
	_ context.Context,
	_ string,
	maxLength, _ int,
	strategy domain.SummaryStrategy,
) string {
	m.calls++
	m.maxLen = maxLength
	m.strategy = strategy
	return m.summary
}

func (m *mockSummarizationService) GenerateMultiLengthSummaries(_ context.Context, _ string) domain.Summaries {
	return domain.Summaries{Short: m.summary, Medium: m.summary, Long: m.summary}
}

func (m *mockSummarizationService) ExtractKeyInsights(_ context.Context, _ string) domain.KeyInsights {
	return m.insights
}

type mockSettingsService struct {
	settings domain.AppSettings
	err      error
	set      map[string]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	if m.err != nil {
		return m.err
	}
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.err != nil {
		return m.err
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"chunking.size", "retrieval.top_k"}
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding.Provider = provider
	m.settings.Embedding.Model = model
	m.settings.Embedding.APIKey = apiKey
	return m.err
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return m.err
}

func (m *mockSettingsService) Validate() error {
	return m.err
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) ValidateEmbeddingConfig() error {
	return m.err
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.err
}

type mockExtractor struct {
	doc    *domain.ExtractedDocument
	err    error
	tables bool
}

func (m *mockExtractor) Extract(_ context.Context, _ string) (*domain.ExtractedDocument, error) {
	return m.doc, m.err
}

func (m *mockExtractor) ExtractWithTables(_ context.Context, _ string) (*domain.ExtractedDocument, error) {
	m.tables = true
	return m.doc, m.err
}

type mockTaskStore struct {
	tasks []domain.TaskUpdate
}

func (m *mockTaskStore) Report(_ context.Context, update domain.TaskUpdate) error {
	m.tasks = append(m.tasks, update)
	return nil
}

func (m *mockTaskStore) ListTasks(_ context.Context, _ string) ([]domain.TaskUpdate, error) {
	return m.tasks, nil
}

type mockUsageStore struct {
	records []domain.UsageRecord
	since   time.Time
}

func (m *mockUsageStore) Record(_ context.Context, rec domain.UsageRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *mockUsageStore) ListUsage(_ context.Context, since time.Time) ([]domain.UsageRecord, error) {
	m.since = since
	return m.records, nil
}

// testServices holds the mocks wired by setupTestServices.
type testServices struct {
	papers        *mockPaperService
	chat          *mockChatService
	index         *mockIndexService
	summarization *mockSummarizationService
	settings      *mockSettingsService
	extractor     *mockExtractor
	tasks         *mockTaskStore
	usage         *mockUsageStore
	inbox         *mockInboxService
}

type mockInboxService struct {
	imported []domain.Paper
	watched  []domain.Paper
	err      error
	dir      string
	opts     domain.InboxOptions
}

func (m *mockInboxService) Import(_ context.Context, dir string, opts domain.InboxOptions) ([]domain.Paper, error) {
	m.dir, m.opts = dir, opts
	return m.imported, m.err
}

func (m *mockInboxService) Watch(_ context.Context, dir string, opts domain.InboxOptions, added func(domain.Paper)) error {
	m.dir, m.opts = dir, opts
	for _, p := range m.watched {
		added(p)
	}
	return m.err
}

// setupTestServices wires mock services into the command tree and returns
// them with a cleanup function restoring the previous state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		papers: &mockPaperService{papers: []domain.Paper{*testPaper()}},
		chat: &mockChatService{
			answer: &domain.Answer{
				Answer: "The Transformer uses self-attention.",
				Sources: []domain.Source{
					{ChunkID: "emb-1", ContentPreview: "self-attention", Page: 3, Section: "methodology", SimilarityScore: 0.9},
				},
				Confidence: 0.9,
				TokensUsed: domain.TokenUsage{Prompt: 120, Completion: 12},
			},
			questions: []string{"What is attention?", "How is it trained?"},
		},
		index: &mockIndexService{
			results: []domain.RetrievedResult{{
				ID:              "emb-1",
				Content:         "Multi-head attention allows the model to attend jointly.",
				Metadata:        domain.ChunkMetadata{ChunkIndex: 4, PageNumber: 3, Section: "methodology"},
				SimilarityScore: 0.88,
			}},
		},
		summarization: &mockSummarizationService{
			summary: "A fresh summary.",
			insights: domain.KeyInsights{
				KeyFindings: []string{"Attention suffices"},
				Methodology: "Self-attention",
				Limitations: []string{},
			},
		},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings()},
		extractor: &mockExtractor{},
		tasks:     &mockTaskStore{},
		inbox: &mockInboxService{
			imported: []domain.Paper{{ID: "paper-2", PDFPath: "/inbox/bert.pdf", Status: domain.PaperStatusUploading}},
			watched:  []domain.Paper{{ID: "paper-3", PDFPath: "/inbox/gpt.pdf", Status: domain.PaperStatusReady}},
		},
		usage: &mockUsageStore{records: []domain.UsageRecord{
			{OperationType: domain.OperationQA, ModelName: "gpt-4o-mini", PromptTokens: 1000, CompletionTokens: 100, EstimatedCost: decimal.RequireFromString("0.00021")},
			{OperationType: domain.OperationQA, ModelName: "gpt-4o-mini", PromptTokens: 500, CompletionTokens: 50, EstimatedCost: decimal.RequireFromString("0.0001")},
			{OperationType: domain.OperationEmbedding, ModelName: "nomic-embed-text", PromptTokens: 300},
		}},
	}

	SetServices(Services{
		Papers:        ts.papers,
		Chat:          ts.chat,
		Index:         ts.index,
		Summarization: ts.summarization,
		Settings:      ts.settings,
		Extractor:     ts.extractor,
		Tasks:         ts.tasks,
		Usage:         ts.usage,
		Inbox:         ts.inbox,
	})

	return ts, func() {
		SetServices(Services{})
	}
}

// resetFlags restores flag variables that persist between executions.
func resetFlags() {
	jsonFlag = false
	verboseFlag = false
	logJSONFlag = false
	addTitle = ""
	addProcess = false
	reindexFlag = false
	chunkLimit = 0
	extractTable = false
	searchTopK = domain.DefaultTopK
	searchSection = ""
	searchPage = 0
	askTopK = 0
	askConversation = ""
	summaryLength = "medium"
	summaryMethod = ""
	usageSince = 24 * time.Hour
	watchProcess = false
	watchReprocess = false
	watchOnce = false
	mcpPort = 0
	mcpHost = "localhost"
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// mustExecute runs the root command and fails the test on error.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, out)
	return out
}
