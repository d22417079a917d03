package driven

import "context"

// EmbeddingService turns chunk text and queries into vectors. The same
// model must embed a collection and the queries run against it, so
// Dimensions must match the size the collection was created with.
type EmbeddingService interface {
	// Embed returns the vector of one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text in input order, or an error;
	// never a partial result.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks reachability without embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
