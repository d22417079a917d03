package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperqa/internal/core/domain"
)

type chatFixture struct {
	papers        *memory.PaperStore
	conversations *memory.ConversationStore
	llm           *mockLLM
	chat          *ChatService
	paper         *domain.Paper
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	ctx := context.Background()

	papers := memory.NewPaperStore()
	conversations := memory.NewConversationStore()
	index := NewIndexService(&mockEmbedder{}, memory.NewVectorStore())
	llm := &mockLLM{response: "The model uses attention."}
	qa := NewQAService(llm, &mockPrompts{})

	paper := &domain.Paper{
		ID:             "p1",
		Title:          "Attention Is All You Need",
		PDFPath:        "/tmp/attention.pdf",
		Status:         domain.PaperStatusReady,
		CollectionName: domain.CollectionName("p1"),
		ShortSummary:   "A paper about attention.",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, papers.Save(ctx, paper))
	require.NoError(t, index.CreateCollection(ctx, paper.CollectionName))
	_, err := index.IndexChunks(ctx, paper.CollectionName, []domain.Chunk{
		{Content: "The model relies on attention only.", ChunkIndex: 0, PageNumber: 2, Section: "methodology"},
		{Content: "Training took three days.", ChunkIndex: 1, PageNumber: 5, Section: "results"},
	})
	require.NoError(t, err)

	return &chatFixture{
		papers:        papers,
		conversations: conversations,
		llm:           llm,
		chat:          NewChatService(papers, conversations, index, qa, 0),
		paper:         paper,
	}
}

func TestChatService_StartConversation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	conv, err := f.chat.StartConversation(ctx, "p1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "p1", conv.PaperID)
	assert.Equal(t, "Questions about Attention Is All You Need", conv.Title)

	named, err := f.chat.StartConversation(ctx, "p1", "Reading group")
	require.NoError(t, err)
	assert.Equal(t, "Reading group", named.Title)

	_, err = f.chat.StartConversation(ctx, "missing", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatService_Ask(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	conv, err := f.chat.StartConversation(ctx, "p1", "")
	require.NoError(t, err)

	answer, err := f.chat.Ask(ctx, conv.ID, "  What does the model rely on?  ", 1)
	require.NoError(t, err)
	assert.Equal(t, "The model uses attention.", answer.Answer)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "methodology", answer.Sources[0].Section)
	assert.Equal(t, 2, answer.Sources[0].Page)
	assert.Contains(t, f.llm.lastPrompt(), "No previous conversation.")

	messages, err := f.chat.History(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, "What does the model rely on?", messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.Equal(t, answer.ChunkIDs(), messages[1].CitedChunks)
	assert.Equal(t, answer.Confidence, messages[1].ConfidenceScore)

	f.llm.response = "Three days."
	_, err = f.chat.Ask(ctx, conv.ID, "How long was training?", 0)
	require.NoError(t, err)
	prompt := f.llm.lastPrompt()
	assert.Contains(t, prompt, "User: What does the model rely on?")
	assert.Contains(t, prompt, "Assistant: The model uses attention.")

	messages, err = f.chat.History(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestChatService_AskEmptyAnswerStoresNeitherTurn(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	conv, err := f.chat.StartConversation(ctx, "p1", "")
	require.NoError(t, err)

	f.llm.response = "   "
	answer, err := f.chat.Ask(ctx, conv.ID, "What is the dataset?", 1)
	require.NoError(t, err)
	assert.Empty(t, answer.Answer)

	messages, err := f.chat.History(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	f.llm.response = "WMT 2014."
	_, err = f.chat.Ask(ctx, conv.ID, "Which benchmark?", 1)
	require.NoError(t, err)
	assert.NotContains(t, f.llm.lastPrompt(), "What is the dataset?")

	messages, err = f.chat.History(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
}

func TestChatService_AskErrors(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	conv, err := f.chat.StartConversation(ctx, "p1", "")
	require.NoError(t, err)

	_, err = f.chat.Ask(ctx, conv.ID, "   ", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.chat.Ask(ctx, "missing", "Why?", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	f.llm.err = domain.ErrLLMUnavailable
	_, err = f.chat.Ask(ctx, conv.ID, "Why?", 5)
	assert.ErrorIs(t, err, domain.ErrAnswerGeneration)
	messages, err := f.chat.History(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, messages, "failed answers must not be stored")

	f.paper.Status = domain.PaperStatusEmbedding
	require.NoError(t, f.papers.Save(ctx, f.paper))
	_, err = f.chat.Ask(ctx, conv.ID, "Why?", 5)
	assert.ErrorIs(t, err, domain.ErrPaperNotReady)
}

func TestChatService_SuggestQuestions(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.llm.response = "- What is attention?\n- Why no recurrence?"
	got, err := f.chat.SuggestQuestions(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"What is attention?", "Why no recurrence?"}, got)
	assert.Contains(t, f.llm.lastPrompt(), "A paper about attention.")

	f.paper.ShortSummary = ""
	require.NoError(t, f.papers.Save(ctx, f.paper))
	got, err = f.chat.SuggestQuestions(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, DefaultQuestions(), got)

	_, err = f.chat.SuggestQuestions(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
