package sqlite

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// vectorStore implements driven.VectorStore on the vector_* tables.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// filterColumns maps metadata filter keys to vector_records columns.
var filterColumns = map[string]string{
	"chunk_index": "chunk_index",
	"page_number": "page_number",
	"section":     "section",
}

// CreateCollection creates an empty collection.
func (s *vectorStore) CreateCollection(ctx context.Context, name string) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO vector_collections (name, distance, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, domain.DistanceCosine, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: collection %s", domain.ErrAlreadyExists, name)
	}
	return nil
}

// DeleteCollection removes a collection. Its records cascade.
func (s *vectorStore) DeleteCollection(ctx context.Context, name string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM vector_collections WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return nil
}

// HasCollection reports whether a collection exists.
func (s *vectorStore) HasCollection(ctx context.Context, name string) (bool, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vector_collections WHERE name = ?", name).Scan(&n); err != nil {
		return false, fmt.Errorf("checking collection: %w", err)
	}
	return n > 0, nil
}

// Add stores records in a collection. Records with an existing ID replace
// it and keep their original position.
func (s *vectorStore) Add(ctx context.Context, name string, records []domain.VectorRecord) error {
	ok, err := s.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) FROM vector_records WHERE collection = ?", name).Scan(&seq); err != nil {
		return fmt.Errorf("reading sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_records (collection, id, seq, embedding, document, chunk_index, page_number, section)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			embedding = excluded.embedding,
			document = excluded.document,
			chunk_index = excluded.chunk_index,
			page_number = excluded.page_number,
			section = excluded.section
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		seq++
		if _, err := stmt.ExecContext(ctx, name, r.ID, seq, float32SliceToBytes(r.Vector),
			r.Document, r.Metadata.ChunkIndex, r.Metadata.PageNumber, r.Metadata.Section); err != nil {
			return fmt.Errorf("saving vector: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query returns up to topK matches ordered by ascending cosine distance.
// Metadata filters are evaluated in SQL; distances are computed in Go.
func (s *vectorStore) Query(
	ctx context.Context,
	name string,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.VectorMatch, error) {
	ok, err := s.HasCollection(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}

	where, args, err := filterClause(filter)
	if err != nil {
		return nil, err
	}
	args = append([]any{name}, args...)

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, embedding, document, chunk_index, page_number, section
		FROM vector_records WHERE collection = ?`+where+`
		ORDER BY seq
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var matches []domain.VectorMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.VectorMatch
		var blob []byte
		if err := rows.Scan(&m.ID, &blob, &m.Document, &m.Metadata.ChunkIndex,
			&m.Metadata.PageNumber, &m.Metadata.Section); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		m.Distance = domain.CosineDistance(vector, bytesToFloat32Slice(blob))
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return domain.RankMatches(matches, topK), nil
}

// filterClause renders a metadata filter as AND-ed equality conditions.
func filterClause(filter domain.MetadataFilter) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	if err := filter.Validate(); err != nil {
		return "", nil, err
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		b.WriteString(" AND ")
		b.WriteString(filterColumns[k])
		b.WriteString(" = ?")
		args = append(args, filter[k])
	}
	return b.String(), args, nil
}

// Count returns the number of records in a collection.
func (s *vectorStore) Count(ctx context.Context, name string) (int, error) {
	ok, err := s.HasCollection(ctx, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}

	var n int
	if err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vector_records WHERE collection = ?", name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the database.
func (s *vectorStore) Close() error {
	return nil
}
