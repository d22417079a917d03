package tui

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

type mockPaperService struct {
	papers []domain.Paper
}

func (m *mockPaperService) AddPaper(_ context.Context, path, title string) (*domain.Paper, error) {
	return &domain.Paper{ID: "new", PDFPath: path, Title: title}, nil
}

func (m *mockPaperService) Process(_ context.Context, id string) (*domain.Paper, error) {
	return &domain.Paper{ID: id, Title: "Processed", Status: domain.PaperStatusReady}, nil
}

func (m *mockPaperService) Reindex(_ context.Context, id string) (*domain.Paper, error) {
	return &domain.Paper{ID: id}, nil
}

func (m *mockPaperService) Get(context.Context, string) (*domain.Paper, error) {
	return nil, domain.ErrNotFound
}

func (m *mockPaperService) List(context.Context) ([]domain.Paper, error) {
	return m.papers, nil
}

func (m *mockPaperService) Chunks(context.Context, string) ([]domain.ChunkRecord, error) {
	return nil, nil
}

func (m *mockPaperService) Delete(context.Context, string) error {
	return nil
}

type mockChatService struct{}

func (m *mockChatService) StartConversation(_ context.Context, paperID, title string) (*domain.Conversation, error) {
	return &domain.Conversation{ID: "conv-1", PaperID: paperID, Title: title}, nil
}

func (m *mockChatService) Ask(context.Context, string, string, int) (*domain.Answer, error) {
	return &domain.Answer{Answer: "It uses attention.", Confidence: 0.7}, nil
}

func (m *mockChatService) History(context.Context, string) ([]domain.Message, error) {
	return nil, nil
}

func (m *mockChatService) SuggestQuestions(context.Context, string) ([]string, error) {
	return []string{"What is attention?"}, nil
}

func validPorts() *Ports {
	return &Ports{
		Papers: &mockPaperService{papers: []domain.Paper{
			{ID: "paper-1", Title: "Attention Is All You Need", Status: domain.PaperStatusReady},
		}},
		Chat: &mockChatService{},
	}
}
