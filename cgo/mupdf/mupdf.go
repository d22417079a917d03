//go:build cgo

package mupdf

import (
	"context"
	"fmt"

	fitz "github.com/gen2brain/go-fitz"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure Backend implements the interface.
var _ driven.PDFBackend = (*Backend)(nil)

// Backend extracts page text with MuPDF.
type Backend struct{}

// New creates a MuPDF backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "mupdf"
}

// Read extracts page text and metadata. MuPDF does not detect tables.
func (b *Backend) Read(ctx context.Context, path string) ([]domain.Page, domain.PDFMetadata, []domain.Table, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, domain.PDFMetadata{}, nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	meta := metadataFrom(doc.Metadata())

	n := doc.NumPage()
	pages := make([]domain.Page, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, meta, nil, err
		}
		text, err := doc.Text(i)
		if err != nil {
			return nil, meta, nil, fmt.Errorf("read page %d: %w", i+1, err)
		}
		pages = append(pages, domain.Page{PageNumber: i + 1, Text: text})
	}

	return pages, meta, nil, nil
}

func metadataFrom(m map[string]string) domain.PDFMetadata {
	return domain.PDFMetadata{
		Title:        m["title"],
		Author:       m["author"],
		Subject:      m["subject"],
		Keywords:     m["keywords"],
		Creator:      m["creator"],
		Producer:     m["producer"],
		CreationDate: m["creationDate"],
	}
}
