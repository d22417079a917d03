//go:build !cgo

package mupdf

import (
	"context"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.PDFBackend = (*Backend)(nil)

// Backend extracts page text with MuPDF.
// This is a stub for builds without CGO.
type Backend struct{}

// New creates a MuPDF backend.
// This is a stub for builds without CGO.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "mupdf"
}

// Read is unavailable without CGO.
func (b *Backend) Read(_ context.Context, _ string) ([]domain.Page, domain.PDFMetadata, []domain.Table, error) {
	return nil, domain.PDFMetadata{}, nil, domain.ErrNotImplemented
}
