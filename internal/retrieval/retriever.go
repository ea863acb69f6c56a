// Package retrieval performs similarity search against the vector index
// under a selectable strategy: a plain similarity threshold, or top-k with
// a diversity trade-off (maximal marginal relevance).
package retrieval

import (
	"context"

	"github.com/grimaldi89/martechito/internal/embeddings"
	"github.com/grimaldi89/martechito/internal/index"
)

// Searcher is the slice of the index store the retriever needs.
type Searcher interface {
	SearchThreshold(ctx context.Context, vector []float32, threshold float32) ([]index.Result, error)
	Candidates(ctx context.Context, vector []float32, n int) ([]index.Result, error)
	Count() int
}

// Retriever embeds queries and searches the index. An empty result set is a
// valid outcome, not an error.
type Retriever struct {
	embedder embeddings.Embedder
	searcher Searcher
	fallback Strategy
}

// New creates a retriever with the given default strategy.
func New(embedder embeddings.Embedder, searcher Searcher, fallback Strategy) *Retriever {
	return &Retriever{embedder: embedder, searcher: searcher, fallback: fallback}
}

// Retrieve runs the query under the given strategy; a nil strategy uses the
// retriever's default.
func (r *Retriever) Retrieve(ctx context.Context, query string, strategy *Strategy) ([]index.Result, error) {
	s := r.fallback
	if strategy != nil {
		s = *strategy
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	queryVec := vectors[0]

	switch s.Kind {
	case KindMMR:
		// Over-fetch so the re-ranker has redundancy to trade away.
		pool := 4 * s.K
		if pool < 20 {
			pool = 20
		}
		candidates, err := r.searcher.Candidates(ctx, queryVec, pool)
		if err != nil {
			return nil, err
		}
		return maximalMarginalRelevance(candidates, s.K, s.Lambda), nil
	default:
		return r.searcher.SearchThreshold(ctx, queryVec, s.Threshold)
	}
}
