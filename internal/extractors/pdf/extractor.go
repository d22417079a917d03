// Package pdf extracts text, metadata and sections from research papers.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads PDFs with a fast primary backend and a slower
// alternative backend that also detects tables.
type Extractor struct {
	primary     driven.PDFBackend
	alternative driven.PDFBackend
}

// New creates an extractor. Either backend may be nil, but not both.
func New(primary, alternative driven.PDFBackend) *Extractor {
	return &Extractor{
		primary:     primary,
		alternative: alternative,
	}
}

// Extract reads a PDF with the primary backend. When the primary backend
// is not available in this build, the alternative backend is used and its
// tables are discarded.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.ExtractedDocument, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	backend := e.primary
	if backend == nil {
		backend = e.alternative
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: no PDF backend configured", domain.ErrExtraction)
	}

	pages, meta, _, err := backend.Read(ctx, path)
	if errors.Is(err, domain.ErrNotImplemented) && e.alternative != nil && backend != e.alternative {
		logger.Warn("pdf backend %s unavailable in this build, using %s", backend.Name(), e.alternative.Name())
		backend = e.alternative
		pages, meta, _, err = backend.Read(ctx, path)
	}
	if err != nil {
		return nil, wrapExtraction(path, backend, err)
	}

	doc := NewDocument(pages, meta, nil)
	logger.Debug("extracted %s with %s: %d pages, %d sections", path, backend.Name(), len(pages), len(doc.Sections))
	return doc, nil
}

// ExtractWithTables reads a PDF with the alternative backend, which also
// returns detected tables.
func (e *Extractor) ExtractWithTables(ctx context.Context, path string) (*domain.ExtractedDocument, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}
	if e.alternative == nil {
		return nil, fmt.Errorf("%w: no table-aware backend configured", domain.ErrExtraction)
	}

	pages, meta, tables, err := e.alternative.Read(ctx, path)
	if err != nil {
		return nil, wrapExtraction(path, e.alternative, err)
	}

	doc := NewDocument(pages, meta, tables)
	logger.Debug("extracted %s with %s: %d pages, %d tables", path, e.alternative.Name(), len(pages), len(tables))
	return doc, nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", domain.ErrExtraction, path)
	}
	return nil
}

func wrapExtraction(path string, backend driven.PDFBackend, err error) error {
	if errors.Is(err, domain.ErrExtraction) {
		return err
	}
	logger.Error("extract %s with %s: %v", path, backend.Name(), err)
	return fmt.Errorf("%w: %s: %w", domain.ErrExtraction, path, err)
}
