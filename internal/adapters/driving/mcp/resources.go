package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for paperqa resources.
	uriScheme = "paperqa://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "papers",
		Name:        "papers",
		Description: "List of all papers with their processing status",
		MIMEType:    "application/json",
	}, s.handlePapersResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "papers/{paperId}",
		Name:        "paper",
		Description: "Metadata, summaries and key findings of a paper",
		MIMEType:    "application/json",
	}, s.handlePaperResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "conversations/{conversationId}",
		Name:        "conversation",
		Description: "Messages of a conversation about a paper",
		MIMEType:    "application/json",
	}, s.handleConversationResource)
}

func (s *Server) handlePapersResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	papers, err := s.ports.Papers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}

	type paperInfo struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Status string `json:"status"`
		URI    string `json:"uri"`
	}

	infos := make([]paperInfo, len(papers))
	for i := range papers {
		infos[i] = paperInfo{
			ID:     papers[i].ID,
			Title:  papers[i].Title,
			Status: string(papers[i].Status),
			URI:    uriScheme + "papers/" + papers[i].ID,
		}
	}

	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handlePaperResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	paperID := extractID(req.Params.URI, "papers/")
	if paperID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	paper, err := s.ports.Papers.Get(ctx, paperID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting paper: %w", err)
	}

	return jsonResource(req.Params.URI, paper)
}

func (s *Server) handleConversationResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	conversationID := extractID(req.Params.URI, "conversations/")
	if conversationID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	messages, err := s.ports.Chat.History(ctx, conversationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}

	return jsonResource(req.Params.URI, messages)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractID extracts the trailing ID from a URI like paperqa://papers/{id}.
// Nested paths are rejected.
func extractID(uri, kind string) string {
	prefix := uriScheme + kind
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
