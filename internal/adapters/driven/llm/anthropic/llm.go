// Package anthropic answers and summarises with the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/paperqa/internal/adapters/driven/llm"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/transport"
	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
)

// Config configures the adapter. Only APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls POST /v1/messages.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	StopSeqs    []string  `json:"stop_sequences,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string    `json:"stop_reason"`
	Error      *apiError `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewLLMService validates cfg and fills defaults.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate sends prompt as a single user turn.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	return s.send(ctx, messagesRequest{
		Messages:    []message{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		StopSeqs:    opts.StopWords,
	})
}

// Chat moves system messages into the system field and merges repeated
// roles so the turns alternate.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	system, turns := llm.SplitSystem(messages)
	if len(turns) == 0 {
		return "", fmt.Errorf("anthropic: no user message")
	}

	req := messagesRequest{
		System:      system,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, t := range turns {
		req.Messages = append(req.Messages, message{Role: t.Role, Content: t.Content})
	}
	return s.send(ctx, req)
}

func (s *LLMService) send(ctx context.Context, body messagesRequest) (string, error) {
	body.Model = s.model
	if body.MaxTokens <= 0 {
		body.MaxTokens = DefaultMaxTokens
	}
	if body.Temperature < 0 {
		body.Temperature = 0
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/messages", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := s.do(req)
	if err != nil {
		return "", err
	}

	var resp messagesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", resp.Error.Message)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic: no text content returned")
	}
	if resp.StopReason == "max_tokens" {
		logger.Warn("anthropic: %s reply cut at %d tokens", s.model, body.MaxTokens)
	}
	return text.String(), nil
}

// do adds credentials, sends req and returns the body of a 200 response.
func (s *LLMService) do(req *http.Request) ([]byte, error) {
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transport.SendError(err, domain.ErrLLMUnavailable)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e messagesResponse
		if json.Unmarshal(data, &e) == nil && e.Error != nil {
			data = []byte(e.Error.Message)
		}
		return nil, transport.StatusError("anthropic", resp.StatusCode, data, domain.ErrLLMUnavailable)
	}
	return data, nil
}

// Summarise writes a summary of maxLength to minLength words.
func (s *LLMService) Summarise(ctx context.Context, content string, maxLength, minLength int) (string, error) {
	prompt, opts := llm.SummaryPrompt(content, maxLength, minLength)
	out, err := s.Generate(ctx, prompt, opts)
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	return llm.CleanSummary(out), nil
}

func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without generating text.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("anthropic: create ping request: %w", err)
	}
	if _, err := s.do(req); err != nil {
		return fmt.Errorf("anthropic: ping: %w", err)
	}
	return nil
}

func (s *LLMService) Close() error {
	return nil
}
