package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Version is reported to clients during initialisation.
const Version = "0.1.0"

// Endpoint paths served by RunHTTP.
const (
	MCPPath    = "/mcp"
	HealthPath = "/healthz"
)

// instructions tells the client how the tools fit together.
const instructions = `paperqa answers questions about research papers.
Call list_papers first; only papers with status "ready" can be searched or asked about.
ask_paper returns an answer with sources (section and page) and a confidence score.
Pass the returned conversation_id back to ask follow-up questions.`

// Server exposes a paper library over MCP.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers the tools and resources the ports support.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "paperqa", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the HTTP routes: streamable MCP at MCPPath and a library
// health summary at HealthPath.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(MCPPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil))
	mux.HandleFunc(HealthPath, s.handleHealth)
	return mux
}

// health is the HealthPath response body.
type health struct {
	Status   string         `json:"status"`
	Papers   int            `json:"papers"`
	ByStatus map[string]int `json:"by_status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	papers, err := s.ports.Papers.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	body := health{Status: "ok", Papers: len(papers), ByStatus: map[string]int{}}
	for i := range papers {
		body.ByStatus[string(papers[i].Status)]++
	}
	if body.ByStatus[string(domain.PaperStatusReady)] == 0 && len(papers) > 0 {
		body.Status = "no ready papers"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// RunHTTP serves Handler on addr until ctx ends.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp http shutdown: %v", err)
		}
	}()

	logger.Info("mcp server listening on %s%s", addr, MCPPath)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
