// Package mcp provides an MCP (Model Context Protocol) server adapter for paperqa.
// It lets AI assistants list papers, search them and ask grounded questions.
package mcp

import "errors"

// ErrMissingPaperService is returned when the paper service is not provided.
var ErrMissingPaperService = errors.New("mcp: paper service is required")

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
