package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// ListPapersInput is the input schema for the list_papers tool.
type ListPapersInput struct {
	ReadyOnly bool `json:"ready_only,omitempty" jsonschema:"only list papers that are ready for questions"`
}

// ListPapersOutput is the output schema for the list_papers tool.
type ListPapersOutput struct {
	Papers []PaperOutput `json:"papers"`
	Count  int           `json:"count"`
}

// PaperOutput summarises a paper.
type PaperOutput struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Authors      string `json:"authors,omitempty"`
	ArxivID      string `json:"arxiv_id,omitempty"`
	Status       string `json:"status"`
	NumPages     int    `json:"num_pages"`
	ShortSummary string `json:"short_summary,omitempty"`
}

// SearchPaperInput is the input schema for the search_paper tool.
type SearchPaperInput struct {
	PaperID string `json:"paper_id" jsonschema:"the paper to search"`
	Query   string `json:"query" jsonschema:"what to look for"`
	TopK    int    `json:"top_k,omitempty" jsonschema:"number of chunks to return (default 5)"`
	Section string `json:"section,omitempty" jsonschema:"restrict results to a section such as methodology or results"`
}

// SearchPaperOutput is the output schema for the search_paper tool.
type SearchPaperOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput is a retrieved chunk with its location.
type ChunkOutput struct {
	ChunkID         string  `json:"chunk_id"`
	Content         string  `json:"content"`
	Section         string  `json:"section"`
	Page            int     `json:"page"`
	SimilarityScore float64 `json:"similarity_score"`
}

// AskPaperInput is the input schema for the ask_paper tool.
type AskPaperInput struct {
	PaperID        string `json:"paper_id" jsonschema:"the paper to ask about"`
	Question       string `json:"question" jsonschema:"the question to answer"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"continue an earlier conversation"`
	TopK           int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve"`
}

// AskPaperOutput is the output schema for the ask_paper tool.
type AskPaperOutput struct {
	ConversationID string          `json:"conversation_id"`
	Answer         string          `json:"answer"`
	Sources        []domain.Source `json:"sources"`
	Confidence     float64         `json:"confidence"`
}

// SummarizePaperInput is the input schema for the summarize_paper tool.
type SummarizePaperInput struct {
	PaperID  string `json:"paper_id" jsonschema:"the paper to summarise"`
	Length   string `json:"length,omitempty" jsonschema:"short, medium or long (default medium)"`
	Strategy string `json:"strategy,omitempty" jsonschema:"regenerate with abstractive, llm or extractive"`
}

// SummarizePaperOutput is the output schema for the summarize_paper tool.
type SummarizePaperOutput struct {
	PaperID string `json:"paper_id"`
	Length  string `json:"length"`
	Summary string `json:"summary"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_papers",
		Description: "List the research papers in the library",
	}, s.handleListPapers)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_paper",
		Description: "Answer a question about a paper, citing the section and page of each source",
	}, s.handleAskPaper)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize_paper",
		Description: "Return a short, medium or long summary of a paper",
	}, s.handleSummarizePaper)

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_paper",
			Description: "Semantic search over the chunks of a paper",
		}, s.handleSearchPaper)
	}
}

func (s *Server) handleListPapers(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListPapersInput,
) (*mcp.CallToolResult, ListPapersOutput, error) {
	papers, err := s.ports.Papers.List(ctx)
	if err != nil {
		return nil, ListPapersOutput{}, fmt.Errorf("listing papers: %w", err)
	}

	output := ListPapersOutput{Papers: []PaperOutput{}}
	for i := range papers {
		if input.ReadyOnly && papers[i].Status != domain.PaperStatusReady {
			continue
		}
		output.Papers = append(output.Papers, PaperOutput{
			ID:           papers[i].ID,
			Title:        papers[i].Title,
			Authors:      papers[i].Authors,
			ArxivID:      papers[i].ArxivID,
			Status:       string(papers[i].Status),
			NumPages:     papers[i].NumPages,
			ShortSummary: papers[i].ShortSummary,
		})
	}
	output.Count = len(output.Papers)

	return nil, output, nil
}

func (s *Server) handleSearchPaper(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchPaperInput,
) (*mcp.CallToolResult, SearchPaperOutput, error) {
	paper, err := s.ports.Papers.Get(ctx, input.PaperID)
	if err != nil {
		return nil, SearchPaperOutput{}, fmt.Errorf("getting paper: %w", err)
	}
	if paper.Status != domain.PaperStatusReady {
		return nil, SearchPaperOutput{}, fmt.Errorf("%w: paper %s is %s", domain.ErrPaperNotReady, paper.ID, paper.Status)
	}

	var filter domain.MetadataFilter
	if input.Section != "" {
		filter = domain.MetadataFilter{"section": input.Section}
	}
	results, err := s.ports.Index.Search(ctx, paper.CollectionName, input.Query, input.TopK, filter)
	if err != nil {
		return nil, SearchPaperOutput{}, err
	}

	output := SearchPaperOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = ChunkOutput{
			ChunkID:         r.ID,
			Content:         r.Content,
			Section:         r.Metadata.Section,
			Page:            r.Metadata.PageNumber,
			SimilarityScore: r.SimilarityScore,
		}
	}

	return nil, output, nil
}

func (s *Server) handleAskPaper(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskPaperInput,
) (*mcp.CallToolResult, AskPaperOutput, error) {
	conversationID := input.ConversationID
	if conversationID == "" {
		conv, err := s.ports.Chat.StartConversation(ctx, input.PaperID, "")
		if err != nil {
			return nil, AskPaperOutput{}, fmt.Errorf("starting conversation: %w", err)
		}
		conversationID = conv.ID
	}

	answer, err := s.ports.Chat.Ask(ctx, conversationID, input.Question, input.TopK)
	if err != nil {
		return nil, AskPaperOutput{}, err
	}

	return nil, AskPaperOutput{
		ConversationID: conversationID,
		Answer:         answer.Answer,
		Sources:        answer.Sources,
		Confidence:     answer.Confidence,
	}, nil
}

func (s *Server) handleSummarizePaper(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizePaperInput,
) (*mcp.CallToolResult, SummarizePaperOutput, error) {
	length := summaryLength(input.Length)
	paper, err := s.ports.Papers.Get(ctx, input.PaperID)
	if err != nil {
		return nil, SummarizePaperOutput{}, fmt.Errorf("getting paper: %w", err)
	}

	summary := storedSummary(paper, length.Name)
	if input.Strategy != "" || summary == "" {
		if s.ports.Summarization == nil || paper.FullText == "" {
			return nil, SummarizePaperOutput{}, fmt.Errorf("%w: no %s summary for paper %s", domain.ErrPaperNotReady, length.Name, paper.ID)
		}
		strategy := domain.SummaryStrategy(input.Strategy)
		if input.Strategy != "" && !strategy.IsValid() {
			return nil, SummarizePaperOutput{}, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidInput, input.Strategy)
		}
		summary = s.ports.Summarization.Summarize(ctx, paper.FullText, length.MaxLength, length.MinLength, strategy)
	}

	return nil, SummarizePaperOutput{
		PaperID: paper.ID,
		Length:  length.Name,
		Summary: summary,
	}, nil
}

// summaryLength returns the named length, defaulting to medium.
func summaryLength(name string) domain.SummaryLength {
	var medium domain.SummaryLength
	for _, l := range domain.SummaryLengths() {
		if l.Name == name {
			return l
		}
		if l.Name == "medium" {
			medium = l
		}
	}
	return medium
}

func storedSummary(p *domain.Paper, length string) string {
	switch length {
	case "short":
		return p.ShortSummary
	case "long":
		return p.LongSummary
	default:
		return p.MediumSummary
	}
}
