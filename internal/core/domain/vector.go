package domain

import "sort"

// DistanceCosine is the only distance metric collections are created with.
const DistanceCosine = "cosine"

// VectorRecord is one entry written to a vector collection.
type VectorRecord struct {
	ID       string
	Vector   []float32
	Document string
	Metadata ChunkMetadata
}

// VectorMatch is one nearest-neighbour hit from a vector collection.
type VectorMatch struct {
	ID       string
	Document string
	Metadata ChunkMetadata
	Distance float64
}

// CollectionName returns the vector collection name for a paper.
func CollectionName(paperID string) string {
	return "paper_" + paperID
}

// RankMatches orders matches by ascending distance, keeping insertion order
// for ties, and truncates to topK. A non-positive topK keeps everything.
func RankMatches(matches []VectorMatch, topK int) []VectorMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
