package retrieval

import (
	"math"

	"github.com/grimaldi89/martechito/internal/index"
)

// maximalMarginalRelevance selects up to k candidates maximizing relevance
// to the query while penalizing similarity to already-selected results:
//
//	score(c) = (1-λ)·sim(query, c) − λ·max sim(c, selected)
//
// λ=0 reduces to pure relevance ranking, λ=1 to pure diversity. Candidates
// must arrive best-first with their embeddings populated; their Similarity
// field is the query similarity.
func maximalMarginalRelevance(candidates []index.Result, k int, lambda float64) []index.Result {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]index.Result, 0, k)
	remaining := make([]index.Result, len(candidates))
	copy(remaining, candidates)

	// The most relevant candidate is always selected first.
	selected = append(selected, remaining[0])
	remaining = remaining[1:]

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for i, c := range remaining {
			redundancy := 0.0
			for _, s := range selected {
				if sim := cosine(c.Embedding, s.Embedding); sim > redundancy {
					redundancy = sim
				}
			}
			score := (1-lambda)*float64(c.Similarity) - lambda*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

// cosine returns the cosine similarity of two vectors, 0 for degenerate
// input.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
