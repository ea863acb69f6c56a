package config

// modelDimensions maps known embedding models to their native vector width.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// DefaultConfig returns a Config with sensible defaults. Required settings
// (see Validate) are intentionally left empty so that a missing value is
// caught at startup instead of silently defaulted.
func DefaultConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			Model:       "gpt-4o",
			MaxTokens:   2048,
			Temperature: 0,
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-3-small",
		},
		Index: IndexConfig{
			Path:       "data/index",
			Collection: "",
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Catalog: CatalogConfig{
			Path: "data/catalog.db",
		},
		ObjectStore: ObjectStoreConfig{
			Root: "data/objects",
		},
		Retrieval: RetrievalConfig{
			Strategy:  "threshold",
			Threshold: 0.5,
			K:         6,
			Lambda:    0.25,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Include: []string{"**"},
	}
}

// EmbeddingDimensions returns the configured vector width, falling back to
// the model's native width. Zero means the model is unknown and dimensions
// must be set explicitly.
func (c *Config) EmbeddingDimensions() int {
	if c.Embedding.Dimensions > 0 {
		return c.Embedding.Dimensions
	}
	return modelDimensions[c.Embedding.Model]
}
