package domain

import (
	"fmt"
	"math"
	"sort"
)

// DefaultTopK is the number of results returned by a search when unset.
const DefaultTopK = 5

// RetrievedResult is a chunk returned by similarity search.
type RetrievedResult struct {
	// ID is the embedding identifier of the chunk.
	ID string `json:"id"`

	Content string `json:"content"`

	Metadata ChunkMetadata `json:"metadata"`

	// Distance is the cosine distance to the query, 0 for identical direction.
	Distance float64 `json:"distance"`

	// SimilarityScore is exactly 1 - Distance.
	SimilarityScore float64 `json:"similarity_score"`
}

// MetadataFilter restricts a search to chunks whose metadata equals every
// given value. Keys are chunk_index, page_number and section.
type MetadataFilter map[string]any

// Validate rejects unknown keys and values of the wrong kind. Chunk index
// and page number must be integral, as vector stores match them exactly.
func (f MetadataFilter) Validate() error {
	for key, val := range f {
		switch key {
		case "section":
			if _, ok := val.(string); !ok {
				return fmt.Errorf("%w: filter %q must be a string", ErrInvalidInput, key)
			}
		case "chunk_index", "page_number":
			n, ok := toFloat(val)
			if !ok || math.IsInf(n, 0) || n != math.Trunc(n) {
				return fmt.Errorf("%w: filter %q must be a whole number, got %v", ErrInvalidInput, key, val)
			}
		default:
			return fmt.Errorf("%w: unknown filter key %q", ErrInvalidInput, key)
		}
	}
	return nil
}

// Matches reports whether metadata satisfies every condition in the filter.
func (f MetadataFilter) Matches(m ChunkMetadata) bool {
	for key, want := range f {
		got, ok := m.Field(key)
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		return af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// CosineDistance returns 1 - cosine similarity of a and b.
// Zero vectors are treated as orthogonal to everything.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// SortByDistance orders results by ascending distance, keeping input
// order for ties.
func SortByDistance(results []RetrievedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
}
