package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure InboxService implements the interface.
var _ driving.InboxService = (*InboxService)(nil)

// InboxService registers PDFs found in a directory as papers.
type InboxService struct {
	papers driving.PaperService
	open   driven.PaperSourceOpener
}

// NewInboxService creates an inbox importer.
func NewInboxService(papers driving.PaperService, open driven.PaperSourceOpener) *InboxService {
	return &InboxService{papers: papers, open: open}
}

// Import registers every PDF under dir whose path is not yet known.
func (s *InboxService) Import(ctx context.Context, dir string, opts domain.InboxOptions) ([]domain.Paper, error) {
	source, err := s.open(dir)
	if err != nil {
		return nil, fmt.Errorf("open inbox %s: %w", dir, err)
	}
	defer source.Close()

	known, err := s.knownPaths(ctx)
	if err != nil {
		return nil, err
	}
	return s.importAll(ctx, source, known, opts)
}

// Watch imports dir and then registers PDFs as they appear. It returns nil
// when ctx is cancelled.
func (s *InboxService) Watch(ctx context.Context, dir string, opts domain.InboxOptions, added func(domain.Paper)) error {
	source, err := s.open(dir)
	if err != nil {
		return fmt.Errorf("open inbox %s: %w", dir, err)
	}
	defer source.Close()

	known, err := s.knownPaths(ctx)
	if err != nil {
		return err
	}
	imported, err := s.importAll(ctx, source, known, opts)
	if err != nil {
		return err
	}
	for _, p := range imported {
		notify(added, p)
	}

	events, err := source.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch inbox %s: %w", dir, err)
	}
	logger.Info("watching %s for new papers", dir)

	for path := range events {
		paper, err := s.importOne(ctx, path, known, opts)
		if err != nil {
			logger.Warn("inbox: %s: %v", path, err)
			continue
		}
		if paper != nil {
			notify(added, *paper)
		}
	}
	return nil
}

func notify(added func(domain.Paper), p domain.Paper) {
	if added != nil {
		added(p)
	}
}

// knownPaths maps registered PDF paths to their paper IDs.
func (s *InboxService) knownPaths(ctx context.Context) (map[string]string, error) {
	papers, err := s.papers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	known := make(map[string]string, len(papers))
	for _, p := range papers {
		known[p.PDFPath] = p.ID
	}
	return known, nil
}

func (s *InboxService) importAll(
	ctx context.Context,
	source driven.PaperSource,
	known map[string]string,
	opts domain.InboxOptions,
) ([]domain.Paper, error) {
	paths, err := source.Scan(ctx)
	if err != nil {
		return nil, err
	}

	var imported []domain.Paper
	for _, path := range paths {
		if _, ok := known[path]; ok {
			continue
		}
		paper, err := s.importOne(ctx, path, known, opts)
		if err != nil {
			if ctx.Err() != nil {
				return imported, ctx.Err()
			}
			logger.Warn("inbox: %s: %v", path, err)
			continue
		}
		imported = append(imported, *paper)
	}
	logger.Info("inbox: imported %d of %d PDFs", len(imported), len(paths))
	return imported, nil
}

// importOne registers path, or reprocesses it when known and opts.Reprocess
// is set. It returns nil for a known path that is left alone.
func (s *InboxService) importOne(
	ctx context.Context,
	path string,
	known map[string]string,
	opts domain.InboxOptions,
) (*domain.Paper, error) {
	if id, ok := known[path]; ok {
		if !opts.Reprocess {
			return nil, nil
		}
		logger.Info("inbox: %s changed, reprocessing paper %s", path, id)
		return s.papers.Process(ctx, id)
	}

	paper, err := s.papers.AddPaper(ctx, path, "")
	if err != nil {
		return nil, err
	}
	known[path] = paper.ID

	if !opts.Process {
		return paper, nil
	}
	processed, err := s.papers.Process(ctx, paper.ID)
	if err != nil {
		// The paper stays registered in the failed state.
		logger.Warn("inbox: process %s: %v", paper.ID, err)
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		paper.Status = domain.PaperStatusFailed
		paper.ProcessingError = err.Error()
		return paper, nil
	}
	return processed, nil
}
