package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// ==================== Paper Store ====================

// paperStore implements driven.PaperStore.
type paperStore struct {
	store *Store
}

var _ driven.PaperStore = (*paperStore)(nil)

const paperColumns = `id, title, arxiv_id, authors, pdf_path, num_pages, status, full_text,
	short_summary, medium_summary, long_summary, key_findings, methodology, conclusion,
	collection_name, num_chunks, processing_error, created_at, updated_at, processed_at`

// Save stores or updates a paper.
func (s *paperStore) Save(ctx context.Context, paper *domain.Paper) error {
	findings, err := marshalJSON(paper.KeyFindings)
	if err != nil {
		return fmt.Errorf("marshalling key findings: %w", err)
	}

	now := time.Now().UTC()
	if paper.CreatedAt.IsZero() {
		paper.CreatedAt = now
	}
	if paper.UpdatedAt.IsZero() {
		paper.UpdatedAt = now
	}

	var processedAt sql.NullTime
	if paper.ProcessedAt != nil {
		processedAt = sql.NullTime{Time: *paper.ProcessedAt, Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO papers (`+paperColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			arxiv_id = excluded.arxiv_id,
			authors = excluded.authors,
			pdf_path = excluded.pdf_path,
			num_pages = excluded.num_pages,
			status = excluded.status,
			full_text = excluded.full_text,
			short_summary = excluded.short_summary,
			medium_summary = excluded.medium_summary,
			long_summary = excluded.long_summary,
			key_findings = excluded.key_findings,
			methodology = excluded.methodology,
			conclusion = excluded.conclusion,
			collection_name = excluded.collection_name,
			num_chunks = excluded.num_chunks,
			processing_error = excluded.processing_error,
			updated_at = excluded.updated_at,
			processed_at = excluded.processed_at
	`, paper.ID, paper.Title, paper.ArxivID, paper.Authors, paper.PDFPath, paper.NumPages,
		string(paper.Status), paper.FullText, paper.ShortSummary, paper.MediumSummary,
		paper.LongSummary, findings, paper.Methodology, paper.Conclusion,
		paper.CollectionName, paper.NumChunks, paper.ProcessingError,
		paper.CreatedAt, paper.UpdatedAt, processedAt)
	if err != nil {
		return fmt.Errorf("saving paper: %w", err)
	}
	return nil
}

// Get retrieves a paper by ID.
func (s *paperStore) Get(ctx context.Context, id string) (*domain.Paper, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)

	paper, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return paper, err
}

// List returns all papers, newest first.
func (s *paperStore) List(ctx context.Context) ([]domain.Paper, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+paperColumns+` FROM papers ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []domain.Paper //nolint:prealloc // size unknown from query
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *paper)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}
	return papers, nil
}

// Delete removes a paper. Chunk records and conversations cascade.
func (s *paperStore) Delete(ctx context.Context, id string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM papers WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting paper: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPaper scans a paper row selected with paperColumns.
func scanPaper(row rowScanner) (*domain.Paper, error) {
	var p domain.Paper
	var status, findings string
	var processedAt sql.NullTime

	if err := row.Scan(&p.ID, &p.Title, &p.ArxivID, &p.Authors, &p.PDFPath, &p.NumPages,
		&status, &p.FullText, &p.ShortSummary, &p.MediumSummary, &p.LongSummary,
		&findings, &p.Methodology, &p.Conclusion, &p.CollectionName, &p.NumChunks,
		&p.ProcessingError, &p.CreatedAt, &p.UpdatedAt, &processedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning paper: %w", err)
	}

	p.Status = domain.PaperStatus(status)
	if processedAt.Valid {
		t := processedAt.Time
		p.ProcessedAt = &t
	}
	if err := unmarshalJSON(findings, &p.KeyFindings); err != nil {
		return nil, fmt.Errorf("unmarshalling key findings: %w", err)
	}
	return &p, nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveChunks stores chunk records in one transaction.
func (s *chunkStore) SaveChunks(ctx context.Context, chunks []domain.ChunkRecord) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO paper_chunks (id, paper_id, content, chunk_index, page_number, section_title, embedding_id, chunk_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			paper_id = excluded.paper_id,
			content = excluded.content,
			chunk_index = excluded.chunk_index,
			page_number = excluded.page_number,
			section_title = excluded.section_title,
			embedding_id = excluded.embedding_id,
			chunk_type = excluded.chunk_type
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.PaperID, c.Content, c.ChunkIndex,
			c.PageNumber, c.SectionTitle, c.EmbeddingID, c.ChunkType); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks returns the chunk records of a paper ordered by chunk index.
func (s *chunkStore) GetChunks(ctx context.Context, paperID string) ([]domain.ChunkRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, paper_id, content, chunk_index, page_number, section_title, embedding_id, chunk_type
		FROM paper_chunks WHERE paper_id = ?
		ORDER BY chunk_index
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.ChunkRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.ChunkRecord
		if err := rows.Scan(&c.ID, &c.PaperID, &c.Content, &c.ChunkIndex, &c.PageNumber,
			&c.SectionTitle, &c.EmbeddingID, &c.ChunkType); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// DeleteChunks removes every chunk record of a paper.
func (s *chunkStore) DeleteChunks(ctx context.Context, paperID string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM paper_chunks WHERE paper_id = ?", paperID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}
