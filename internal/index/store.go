package index

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/grimaldi89/martechito/internal/faults"
)

// Store inserts and searches points in the manager's collection.
type Store struct {
	manager *Manager
}

// NewStore creates a point store over the given collection manager.
func NewStore(m *Manager) *Store {
	return &Store{manager: m}
}

// Add bulk-inserts points. Every vector must match the collection's declared
// dimension or the whole insert is rejected before anything is written.
// Points with an already-present ID replace the stored point.
func (s *Store) Add(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	dim := s.manager.Dimension()
	for _, p := range points {
		if len(p.Vector) != dim {
			return fmt.Errorf("point %s: vector dimension %d does not match collection dimension %d",
				p.ID, len(p.Vector), dim)
		}
	}

	col, err := s.manager.collection()
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, len(points))
	for i, p := range points {
		docs[i] = chromem.Document{
			ID:        p.ID,
			Content:   p.Text,
			Embedding: p.Vector,
			Metadata:  metaToMap(p.Meta),
		}
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return faults.Upstream("index insert", err)
	}
	return nil
}

// SearchThreshold returns every point whose cosine similarity to the query
// vector is >= threshold, best first. The result set is unbounded and may be
// empty; an empty set is not an error.
func (s *Store) SearchThreshold(ctx context.Context, vector []float32, threshold float32) ([]Result, error) {
	return s.search(ctx, vector, s.Count(), threshold)
}

// Candidates returns the n most similar points with their embeddings, for
// strategies that re-rank (n is capped at the collection size).
func (s *Store) Candidates(ctx context.Context, vector []float32, n int) ([]Result, error) {
	if count := s.Count(); n > count {
		n = count
	}
	return s.search(ctx, vector, n, -1)
}

func (s *Store) search(ctx context.Context, vector []float32, limit int, threshold float32) ([]Result, error) {
	if limit <= 0 {
		return nil, nil
	}

	col, err := s.manager.collection()
	if err != nil {
		return nil, err
	}

	results, err := col.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		return nil, faults.Upstream("index search", err)
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Similarity < threshold {
			continue
		}
		out = append(out, Result{
			ID:         r.ID,
			Text:       r.Content,
			Meta:       mapToMeta(r.Metadata),
			Similarity: r.Similarity,
			Embedding:  r.Embedding,
		})
	}
	return out, nil
}

// Count returns the number of points in the collection, zero when the
// collection does not exist yet.
func (s *Store) Count() int {
	col, err := s.manager.collection()
	if err != nil {
		return 0
	}
	return col.Count()
}
