// Package qdrant provides a driven.VectorStore backed by a Qdrant server
// over its REST API.
package qdrant

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/custodia-labs/paperqa/internal/adapters/driven/transport"
	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultURL     = "http://localhost:6333"
	DefaultTimeout = 30 * time.Second
)

// payloadRecordID holds the caller's record ID when it is not a UUID.
const payloadRecordID = "record_id"

// Config holds configuration for the Qdrant vector store.
type Config struct {
	// URL is the Qdrant REST endpoint (default: http://localhost:6333).
	URL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Dimension is the vector size collections are created with (required).
	Dimension int

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store is a Qdrant implementation of driven.VectorStore.
type Store struct {
	client    *resty.Client
	dimension int
}

// NewStore creates a new Qdrant vector store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("qdrant: %w: vector dimension is required", domain.ErrInvalidInput)
	}
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("api-key", cfg.APIKey)
	}

	return &Store{client: client, dimension: cfg.Dimension}, nil
}

// apiError is the error envelope returned by Qdrant.
type apiError struct {
	Status struct {
		Error string `json:"error"`
	} `json:"status"`
}

type point struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

type scoredPoint struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

type condition struct {
	Key   string         `json:"key"`
	Match map[string]any `json:"match"`
}

type searchFilter struct {
	Must []condition `json:"must"`
}

type searchRequest struct {
	Vector      []float32     `json:"vector"`
	Limit       int           `json:"limit"`
	Filter      *searchFilter `json:"filter,omitempty"`
	WithPayload bool          `json:"with_payload"`
}

// CreateCollection creates an empty cosine collection.
func (s *Store) CreateCollection(ctx context.Context, name string) error {
	ok, err := s.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: collection %s", domain.ErrAlreadyExists, name)
	}

	body := map[string]any{
		"vectors": map[string]any{"size": s.dimension, "distance": "Cosine"},
	}
	_, err = s.do(ctx, http.MethodPut, "/collections/{name}", name, body, nil)
	return err
}

// DeleteCollection removes a collection and its points.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	if err := s.requireCollection(ctx, name); err != nil {
		return err
	}
	_, err := s.do(ctx, http.MethodDelete, "/collections/{name}", name, nil, nil)
	return err
}

// HasCollection reports whether a collection exists.
func (s *Store) HasCollection(ctx context.Context, name string) (bool, error) {
	status, err := s.do(ctx, http.MethodGet, "/collections/{name}", name, nil, nil)
	if status == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add upserts points. IDs that are not UUIDs are mapped to a name-based
// UUID and kept in the payload.
func (s *Store) Add(ctx context.Context, name string, records []domain.VectorRecord) error {
	if err := s.requireCollection(ctx, name); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	points := make([]point, len(records))
	for i, r := range records {
		points[i] = point{
			ID:     pointID(r.ID),
			Vector: r.Vector,
			Payload: map[string]any{
				payloadRecordID: r.ID,
				"document":      r.Document,
				"chunk_index":   r.Metadata.ChunkIndex,
				"page_number":   r.Metadata.PageNumber,
				"section":       r.Metadata.Section,
			},
		}
	}

	_, err := s.do(ctx, http.MethodPut, "/collections/{name}/points?wait=true", name,
		map[string]any{"points": points}, nil)
	return err
}

// Query runs a filtered similarity search. Qdrant returns cosine
// similarity, which is converted to distance.
func (s *Store) Query(
	ctx context.Context,
	name string,
	vector []float32,
	topK int,
	filter domain.MetadataFilter,
) ([]domain.VectorMatch, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireCollection(ctx, name); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	req := searchRequest{Vector: vector, Limit: topK, WithPayload: true}
	if len(filter) > 0 {
		keys := make([]string, 0, len(filter))
		for key := range filter {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		req.Filter = &searchFilter{}
		for _, key := range keys {
			req.Filter.Must = append(req.Filter.Must, condition{
				Key:   key,
				Match: map[string]any{"value": filter[key]},
			})
		}
	}

	var resp struct {
		Result []scoredPoint `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, "/collections/{name}/points/search", name, req, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.VectorMatch, 0, len(resp.Result))
	for _, p := range resp.Result {
		matches = append(matches, domain.VectorMatch{
			ID:       stringField(p.Payload, payloadRecordID, fmt.Sprint(p.ID)),
			Document: stringField(p.Payload, "document", ""),
			Metadata: domain.ChunkMetadata{
				ChunkIndex: intField(p.Payload, "chunk_index"),
				PageNumber: intField(p.Payload, "page_number"),
				Section:    stringField(p.Payload, "section", domain.SectionOther),
			},
			Distance: 1 - p.Score,
		})
	}
	return domain.RankMatches(matches, topK), nil
}

// Count returns the exact number of points in a collection.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	if err := s.requireCollection(ctx, name); err != nil {
		return 0, err
	}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, "/collections/{name}/points/count", name,
		map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

func (s *Store) requireCollection(ctx context.Context, name string) error {
	ok, err := s.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return nil
}

// do sends a request and decodes the result into out when non-nil.
// It returns the HTTP status alongside any classified error.
func (s *Store) do(ctx context.Context, method, path, name string, body, out any) (int, error) {
	req := s.client.R().
		SetContext(ctx).
		SetPathParam("name", name).
		SetError(&apiError{})
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return 0, transport.SendError(err, domain.ErrVectorStoreUnavailable)
	}
	if resp.IsError() {
		msg := resp.Body()
		var apiErr *apiError
		if e, ok := resp.Error().(*apiError); ok {
			apiErr = e
		}
		if apiErr != nil && apiErr.Status.Error != "" {
			msg = []byte(apiErr.Status.Error)
		}
		return resp.StatusCode(), transport.StatusError("qdrant", resp.StatusCode(), msg, domain.ErrVectorStoreUnavailable)
	}
	return resp.StatusCode(), nil
}

// pointID returns id if it is a UUID, otherwise a stable UUID derived from it.
func pointID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id)).String()
}

func stringField(payload map[string]any, key, fallback string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func intField(payload map[string]any, key string) int {
	// JSON numbers decode as float64.
	if v, ok := payload[key].(float64); ok {
		return int(v)
	}
	return 0
}
