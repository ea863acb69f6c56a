package embeddings

import "context"

// Embedder defines the interface for generating text embeddings.
type Embedder interface {
	// Embed generates one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the width of the vectors this embedder produces.
	Dimensions() int

	// Name returns the identifier of the embedding model.
	Name() string
}
