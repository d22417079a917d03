package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is unreachable.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrBackendTimeout indicates an embedding, LLM or vector store call ran out of time.
	ErrBackendTimeout = errors.New("backend timeout")

	// ErrCollectionNotFound indicates a vector collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrPaperNotReady indicates a paper has not finished processing.
	ErrPaperNotReady = errors.New("paper not ready")

	// Pipeline stage errors.

	// ErrExtraction indicates a PDF could not be opened or parsed.
	ErrExtraction = errors.New("extraction failed")

	// ErrChunking indicates malformed chunker input.
	ErrChunking = errors.New("chunking failed")

	// ErrEmbedding indicates the embedding backend failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndexing indicates chunks could not be stored in a collection.
	ErrIndexing = errors.New("indexing failed")

	// ErrSearch indicates a similarity search could not be performed.
	ErrSearch = errors.New("search failed")

	// ErrAnswerGeneration indicates the LLM failed while answering a question.
	ErrAnswerGeneration = errors.New("answer generation failed")
)

// IsTimeout reports whether err was caused by a backend deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrBackendTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsRetryable reports whether a failed stage may succeed if run again.
// Timeouts and unreachable backends are retryable; malformed input and
// missing collections are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return IsTimeout(err) ||
		errors.Is(err, ErrLLMUnavailable) ||
		errors.Is(err, ErrEmbeddingUnavailable) ||
		errors.Is(err, ErrVectorStoreUnavailable)
}
