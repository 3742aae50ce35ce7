package retriever

import (
	"math"
	"sort"

	"github.com/lovepop1/emotiaisupport/schema"
)

// DistanceFunc measures dissimilarity between two vectors. Smaller values
// mean more relevant; implementations must keep that convention so ranking
// stays consistent across the system.
type DistanceFunc func(a, b []float32) float64

// distanceEpsilon bounds floating-point noise when comparing distances.
// Documents whose distances differ by less than this are treated as tied
// and keep their corpus insertion order.
const distanceEpsilon = 1e-9

// CosineDistance returns 1 - cosine similarity, in [0, 2]. Vectors of
// mismatched dimensionality or zero norm are not comparable and rank last.
func CosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return math.MaxFloat64
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return math.MaxFloat64
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// Rank orders documents by ascending distance to the query vector and
// returns at most k results. Documents without an embedding are skipped.
// The sort is stable: ties within distanceEpsilon preserve the order the
// documents appear in the input slice.
func Rank(docs []schema.Document, query []float32, k int, dist DistanceFunc) []schema.SearchResult {
	if k <= 0 || len(docs) == 0 {
		return nil
	}
	if dist == nil {
		dist = CosineDistance
	}

	results := make([]schema.SearchResult, 0, len(docs))
	for _, doc := range docs {
		if !doc.Embedded() {
			continue
		}
		results = append(results, schema.SearchResult{
			Document: doc,
			Distance: dist(query, doc.Vector),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[j].Distance-results[i].Distance > distanceEpsilon
	})

	if len(results) > k {
		results = results[:k]
	}
	return results
}
