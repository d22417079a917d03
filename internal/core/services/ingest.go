package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/ports/driving"
	"github.com/custodia-labs/paperqa/internal/logger"
)

// Ensure PaperProcessor implements the interface.
var _ driving.PaperService = (*PaperProcessor)(nil)

// Default retry policy for retryable stages.
const (
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = time.Second
	arxivSearchRunes   = 4000
	progressIndexStart = 10
)

var arxivPattern = regexp.MustCompile(`arXiv:\s*(\d{4}\.\d{4,5})(v\d+)?`)

// PaperProcessor registers papers and runs the ingest pipeline:
// extraction, summaries, key insights, chunking and indexing.
type PaperProcessor struct {
	papers        driven.PaperStore
	chunks        driven.ChunkStore
	conversations driven.ConversationStore
	extractor     driven.Extractor
	layout        driven.DocumentLayout
	chunker       driven.Chunker
	summaries     driving.SummarizationService
	index         driving.IndexService
	progress      driven.ProgressReporter

	strategy   domain.ChunkStrategy
	maxRetries uint64
	retryDelay time.Duration

	// Per-paper locks serialise pipeline runs for one paper.
	mu    sync.Mutex
	locks map[string]*paperLock
}

// NewPaperProcessor creates a new paper processor.
func NewPaperProcessor(
	papers driven.PaperStore,
	chunks driven.ChunkStore,
	conversations driven.ConversationStore,
	extractor driven.Extractor,
	layout driven.DocumentLayout,
	chunker driven.Chunker,
	summaries driving.SummarizationService,
	index driving.IndexService,
) *PaperProcessor {
	return &PaperProcessor{
		papers:        papers,
		chunks:        chunks,
		conversations: conversations,
		extractor:     extractor,
		layout:        layout,
		chunker:       chunker,
		summaries:     summaries,
		index:         index,
		strategy:      domain.ChunkStrategySmart,
		maxRetries:    DefaultMaxRetries,
		retryDelay:    DefaultRetryDelay,
		locks:         make(map[string]*paperLock),
	}
}

// SetProgressReporter sets where task updates are reported. nil disables reporting.
func (p *PaperProcessor) SetProgressReporter(progress driven.ProgressReporter) {
	p.progress = progress
}

// SetChunkStrategy selects how text is split. Invalid strategies are ignored.
func (p *PaperProcessor) SetChunkStrategy(strategy domain.ChunkStrategy) {
	if strategy.IsValid() {
		p.strategy = strategy
	}
}

// SetRetryPolicy configures retries of retryable stages.
func (p *PaperProcessor) SetRetryPolicy(maxRetries uint64, delay time.Duration) {
	p.maxRetries = maxRetries
	if delay > 0 {
		p.retryDelay = delay
	}
}

// AddPaper registers the PDF at path without processing it.
func (p *PaperProcessor) AddPaper(ctx context.Context, path, title string) (*domain.Paper, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, abs)
	}

	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}
	now := time.Now()
	paper := &domain.Paper{
		ID:        uuid.New().String(),
		Title:     title,
		PDFPath:   abs,
		Status:    domain.PaperStatusUploading,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateRecord(paper); err != nil {
		return nil, err
	}
	if err := p.papers.Save(ctx, paper); err != nil {
		return nil, fmt.Errorf("save paper: %w", err)
	}

	logger.Info("added paper %s (%s)", paper.ID, paper.Title)
	return paper, nil
}

// Process runs the full pipeline for a paper. On a fatal error the paper
// and the running task are marked failed and the error is returned.
func (p *PaperProcessor) Process(ctx context.Context, paperID string) (*domain.Paper, error) {
	unlock := p.lock(paperID)
	defer unlock()

	paper, err := p.papers.Get(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("get paper %s: %w", paperID, err)
	}
	log := logger.With("paper", paper.ID)
	log.Infof("processing %s", paper.PDFPath)

	// Extraction
	extractTask := p.newTask(paper.ID, domain.TaskTypePDFExtraction)
	if err := p.setStatus(ctx, paper, domain.PaperStatusProcessing); err != nil {
		return nil, p.fail(ctx, paper, extractTask, err)
	}
	p.report(ctx, extractTask, domain.TaskStatusProcessing, 0, nil)

	doc, err := p.extractor.Extract(ctx, paper.PDFPath)
	if err != nil {
		return nil, p.fail(ctx, paper, extractTask, err)
	}
	applyDocument(paper, doc)
	p.report(ctx, extractTask, domain.TaskStatusComplete, 100, map[string]any{
		"num_pages":    paper.NumPages,
		"num_sections": len(doc.Sections),
	})

	// Summaries
	summaryTask := p.newTask(paper.ID, domain.TaskTypeSummarization)
	if err := p.setStatus(ctx, paper, domain.PaperStatusSummarizing); err != nil {
		return nil, p.fail(ctx, paper, summaryTask, err)
	}
	p.report(ctx, summaryTask, domain.TaskStatusProcessing, 0, nil)
	summaries := p.summaries.GenerateMultiLengthSummaries(ctx, paper.FullText)
	paper.ShortSummary = summaries.Short
	paper.MediumSummary = summaries.Medium
	paper.LongSummary = summaries.Long
	p.report(ctx, summaryTask, domain.TaskStatusComplete, 100, nil)

	// Key insights are best effort.
	insightTask := p.newTask(paper.ID, domain.TaskTypeKeyInsight)
	p.report(ctx, insightTask, domain.TaskStatusProcessing, 0, nil)
	insights := p.summaries.ExtractKeyInsights(ctx, paper.FullText)
	paper.KeyFindings = insights.KeyFindings
	paper.Methodology = insights.Methodology
	paper.Conclusion = insights.Conclusions
	p.report(ctx, insightTask, domain.TaskStatusComplete, 100, map[string]any{
		"key_findings": len(insights.KeyFindings),
	})

	if ctx.Err() != nil {
		return nil, p.fail(ctx, paper, insightTask, ctx.Err())
	}

	if err := p.embed(ctx, paper, doc); err != nil {
		return nil, err
	}

	log.Infof("paper ready with %d chunks", paper.NumChunks)
	return paper, nil
}

// Reindex re-chunks the stored full text and rebuilds the collection.
func (p *PaperProcessor) Reindex(ctx context.Context, paperID string) (*domain.Paper, error) {
	unlock := p.lock(paperID)
	defer unlock()

	paper, err := p.papers.Get(ctx, paperID)
	if err != nil {
		return nil, fmt.Errorf("get paper %s: %w", paperID, err)
	}
	if paper.FullText == "" {
		return nil, fmt.Errorf("%w: paper %s has no extracted text", domain.ErrPaperNotReady, paper.ID)
	}

	if err := p.embed(ctx, paper, p.layout.FromFullText(paper.FullText)); err != nil {
		return nil, err
	}

	logger.Info("reindexed paper %s with %d chunks", paper.ID, paper.NumChunks)
	return paper, nil
}

// embed chunks the document, rebuilds the paper's collection, stores the
// chunk records and marks the paper ready.
func (p *PaperProcessor) embed(ctx context.Context, paper *domain.Paper, doc *domain.ExtractedDocument) error {
	task := p.newTask(paper.ID, domain.TaskTypeEmbedding)
	if err := p.setStatus(ctx, paper, domain.PaperStatusEmbedding); err != nil {
		return p.fail(ctx, paper, task, err)
	}
	p.report(ctx, task, domain.TaskStatusProcessing, 0, nil)

	chunks, err := p.chunk(doc)
	if err != nil {
		return p.fail(ctx, paper, task, err)
	}
	p.report(ctx, task, domain.TaskStatusProcessing, progressIndexStart, map[string]any{
		"num_chunks": len(chunks),
	})

	collection := domain.CollectionName(paper.ID)
	var ids []string
	err = p.withRetry(ctx, "index "+collection, func(ctx context.Context) error {
		if err := p.index.CreateCollection(ctx, collection); err != nil {
			return err
		}
		var indexErr error
		ids, indexErr = p.index.IndexChunks(ctx, collection, chunks)
		return indexErr
	})
	if err != nil {
		return p.fail(ctx, paper, task, err)
	}

	records := make([]domain.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.ChunkRecord{
			ID:           uuid.New().String(),
			PaperID:      paper.ID,
			Content:      c.Content,
			ChunkIndex:   c.ChunkIndex,
			PageNumber:   c.PageNumber,
			SectionTitle: c.SectionOrDefault(),
			EmbeddingID:  ids[i],
			ChunkType:    domain.ChunkTypeFor(c.Section),
		}
		if err := validateRecord(records[i]); err != nil {
			return p.fail(ctx, paper, task, err)
		}
	}
	if err := p.chunks.DeleteChunks(ctx, paper.ID); err != nil {
		return p.fail(ctx, paper, task, fmt.Errorf("delete old chunks: %w", err))
	}
	if err := p.chunks.SaveChunks(ctx, records); err != nil {
		return p.fail(ctx, paper, task, fmt.Errorf("save chunks: %w", err))
	}

	now := time.Now()
	paper.CollectionName = collection
	paper.NumChunks = len(chunks)
	paper.ProcessingError = ""
	paper.ProcessedAt = &now
	if err := p.setStatus(ctx, paper, domain.PaperStatusReady); err != nil {
		return err
	}
	p.report(ctx, task, domain.TaskStatusComplete, 100, map[string]any{
		"num_chunks":      len(chunks),
		"collection_name": collection,
	})
	return nil
}

// chunk splits the document with the configured strategy.
func (p *PaperProcessor) chunk(doc *domain.ExtractedDocument) ([]domain.Chunk, error) {
	switch p.strategy {
	case domain.ChunkStrategyRecursive:
		return p.chunker.ChunkText(doc.FullText, nil)
	case domain.ChunkStrategySections:
		sections := p.layout.SectionTexts(doc)
		if len(sections) == 0 {
			return p.chunker.ChunkText(doc.FullText, nil)
		}
		return p.chunker.ChunkBySections(sections)
	default:
		return p.chunker.SmartChunk(doc.FullText, p.layout.PageMapping(doc))
	}
}

// withRetry runs fn, retrying errors domain.IsRetryable accepts.
func (p *PaperProcessor) withRetry(ctx context.Context, op string, fn func(context.Context) error) error {
	backoff := retry.WithMaxRetries(p.maxRetries, retry.NewExponential(p.retryDelay))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err != nil && domain.IsRetryable(err) {
			logger.Warn("%s attempt %d failed, retrying: %v", op, attempt, err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// Get retrieves a paper by ID.
func (p *PaperProcessor) Get(ctx context.Context, paperID string) (*domain.Paper, error) {
	return p.papers.Get(ctx, paperID)
}

// List returns all papers, newest first.
func (p *PaperProcessor) List(ctx context.Context) ([]domain.Paper, error) {
	return p.papers.List(ctx)
}

// Chunks returns the chunk records of a paper ordered by chunk index.
func (p *PaperProcessor) Chunks(ctx context.Context, paperID string) ([]domain.ChunkRecord, error) {
	if _, err := p.papers.Get(ctx, paperID); err != nil {
		return nil, fmt.Errorf("get paper %s: %w", paperID, err)
	}
	return p.chunks.GetChunks(ctx, paperID)
}

// Delete removes a paper, its chunk records and conversations, and drops
// its collection on a best-effort basis.
func (p *PaperProcessor) Delete(ctx context.Context, paperID string) error {
	unlock := p.lock(paperID)
	defer unlock()

	paper, err := p.papers.Get(ctx, paperID)
	if err != nil {
		return fmt.Errorf("get paper %s: %w", paperID, err)
	}

	collection := paper.CollectionName
	if collection == "" {
		collection = domain.CollectionName(paper.ID)
	}
	if !p.index.DeleteCollection(ctx, collection) {
		logger.Debug("no collection %s to drop", collection)
	}

	if err := p.chunks.DeleteChunks(ctx, paper.ID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := p.conversations.DeleteConversations(ctx, paper.ID); err != nil {
		return fmt.Errorf("delete conversations: %w", err)
	}
	if err := p.papers.Delete(ctx, paper.ID); err != nil {
		return fmt.Errorf("delete paper: %w", err)
	}

	logger.Info("deleted paper %s", paper.ID)
	return nil
}

// paperLock is a mutex shared by the runs holding or waiting for it.
type paperLock struct {
	sync.Mutex
	refs int
}

// lock acquires the lock of one paper and returns its release function.
// The entry is dropped once no run holds or waits for it.
func (p *PaperProcessor) lock(paperID string) func() {
	p.mu.Lock()
	l, ok := p.locks[paperID]
	if !ok {
		l = &paperLock{}
		p.locks[paperID] = l
	}
	l.refs++
	p.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, paperID)
		}
		p.mu.Unlock()
	}
}

func (p *PaperProcessor) setStatus(ctx context.Context, paper *domain.Paper, status domain.PaperStatus) error {
	paper.Status = status
	paper.UpdatedAt = time.Now()
	if err := p.papers.Save(ctx, paper); err != nil {
		return fmt.Errorf("save paper %s: %w", paper.ID, err)
	}
	return nil
}

// fail marks the paper and task failed and returns err.
func (p *PaperProcessor) fail(ctx context.Context, paper *domain.Paper, task domain.TaskUpdate, err error) error {
	logger.Error("paper %s failed at %s: %v", paper.ID, task.Type, err)

	paper.ProcessingError = err.Error()
	// Persist the failure even if ctx was cancelled.
	saveCtx := context.WithoutCancel(ctx)
	if saveErr := p.setStatus(saveCtx, paper, domain.PaperStatusFailed); saveErr != nil {
		logger.Error("mark paper %s failed: %v", paper.ID, saveErr)
	}
	task.ErrorMessage = err.Error()
	p.report(saveCtx, task, domain.TaskStatusFailed, task.ProgressPercentage, nil)
	return err
}

func (p *PaperProcessor) newTask(paperID string, taskType domain.TaskType) domain.TaskUpdate {
	return domain.TaskUpdate{
		ID:      uuid.New().String(),
		PaperID: paperID,
		Type:    taskType,
		Status:  domain.TaskStatusPending,
	}
}

// report sends a task update. Failures are logged and ignored.
func (p *PaperProcessor) report(
	ctx context.Context,
	task domain.TaskUpdate,
	status domain.TaskStatus,
	progress int,
	result map[string]any,
) {
	if p.progress == nil {
		return
	}
	task.Status = status
	task.ProgressPercentage = progress
	task.Result = result
	task.UpdatedAt = time.Now()
	if err := validateRecord(task); err != nil {
		logger.Warn("invalid task update for %s: %v", task.PaperID, err)
		return
	}
	if err := p.progress.Report(ctx, task); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("report %s %s for %s: %v", task.Type, status, task.PaperID, err)
	}
}

// applyDocument copies extraction results onto the paper.
func applyDocument(paper *domain.Paper, doc *domain.ExtractedDocument) {
	paper.FullText = doc.FullText
	paper.NumPages = doc.NumPages()
	if paper.Title == "" || paper.Title == strings.TrimSuffix(filepath.Base(paper.PDFPath), filepath.Ext(paper.PDFPath)) {
		if t := strings.TrimSpace(doc.Metadata.Title); t != "" {
			paper.Title = t
		}
	}
	if paper.Authors == "" {
		paper.Authors = strings.TrimSpace(doc.Metadata.Author)
	}
	if paper.ArxivID == "" {
		paper.ArxivID = FindArxivID(doc.FullText)
	}
}

// FindArxivID returns the first arXiv identifier near the start of text.
func FindArxivID(text string) string {
	if m := arxivPattern.FindStringSubmatch(truncate(text, arxivSearchRunes)); m != nil {
		return m[1]
	}
	return ""
}
