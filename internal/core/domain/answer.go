package domain

// PreviewLength is the number of characters kept in a source preview.
const PreviewLength = 200

// Answer is the result of one question answering call.
// It is not persisted by the service that produces it.
type Answer struct {
	Answer string `json:"answer"`

	// Sources has one entry per retrieved chunk, in retrieval order.
	Sources []Source `json:"sources"`

	// Confidence is the mean of the top three similarity scores, in [0,1].
	Confidence float64 `json:"confidence"`

	TokensUsed TokenUsage `json:"tokens_used"`
}

// Source cites a retrieved chunk in an answer.
type Source struct {
	ChunkID         string  `json:"chunk_id"`
	ContentPreview  string  `json:"content_preview"`
	Page            int     `json:"page"`
	Section         string  `json:"section"`
	SimilarityScore float64 `json:"similarity_score"`
}

// TokenUsage is approximate token accounting for a model call.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}

// Total returns prompt plus completion tokens.
func (u TokenUsage) Total() int {
	return u.Prompt + u.Completion
}

// ChunkIDs returns the cited chunk identifiers in order.
func (a *Answer) ChunkIDs() []string {
	ids := make([]string, 0, len(a.Sources))
	for _, s := range a.Sources {
		ids = append(ids, s.ChunkID)
	}
	return ids
}
